// Package cli provides the brightstudy command-line client.
//
// It wires configuration, the local content library, the progress database,
// the remote catalog client and the sync engine, and exposes them as cobra
// commands plus an interactive REPL.
//
// Commands:
//   - preview, apply, install <kind> <id>, installed, lessons
//   - serve (HTTP API and scheduled sync)
//   - repl (interactive shell over the same operations)
//   - adapt <lesson_id> <mode>, dupes [--apply], token
//
// Without a remote URL the client runs offline: local commands work and
// anything that needs the catalog reports the remote as unavailable.
package cli
