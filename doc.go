// Package stepAuth provides a multi-step account registration and login engine
// with Argon2id password hashing, one-time numeric confirmation codes, JWT
// session tokens, and a Redis-backed account store.
//
// The package is designed for concurrent server workloads: Engine methods are safe to call
// from multiple goroutines after initialization through [Builder.Build].
//
// # Flows
//
// Registration is three observable steps: [Engine.BeginSignup] creates an
// unconfirmed account and issues a confirmation code, [Engine.ConfirmSignup]
// consumes the code, and [Engine.CompleteProfile] records profile fields and
// issues the first session token. Login is two steps: [Engine.BeginLogin]
// checks credentials and issues a short-lived login code, and
// [Engine.ConfirmLogin] consumes the code and returns a session token plus
// the sanitized profile.
//
// # Architecture boundaries
//
// stepAuth is the public surface. It exposes [Engine], [Builder], [Config],
// and value types (SignupResult, LoginChallenge, Profile, MetricsSnapshot).
// Account persistence lives under account/, hashing under password/, token
// handling under jwt/, delivery under notify/.
//
// # What this package must NOT do
//
//   - Return password hashes or pending codes in any Profile payload.
//   - Distinguish unknown emails from wrong passwords in login errors.
//   - Read environment variables; the dev/prod switch is [Config.Environment].
package stepAuth
