// Package notify provides code-delivery backends for the registration
// engine: an SMTP mailer, a log writer for development, and a func adapter
// for custom transports. All of them satisfy the engine's Notifier
// interface.
package notify
