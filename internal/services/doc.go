// Package services defines shared utilities consumed by the compiler, the
// render pipeline, and the HTTP transport.
//
// Key responsibilities:
//   - Context helpers that stamp render IDs, component names, and correlation
//     identifiers for logging.
//   - Structured error markers plus the Wrap helper, so transports can tell
//     client input failures from engine and internal failures.
//
// Use these helpers when wiring new pipeline logic so error classification and
// observability stay uniform across the CLI and the server.
package services
