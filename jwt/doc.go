// Package jwt issues and verifies the session tokens handed out after
// profile completion and login confirmation. A [Manager] binds the account
// ID and role into signed claims (HS256 or Ed25519) and enforces expiry,
// method, and optional issuer/audience checks on parse.
package jwt
