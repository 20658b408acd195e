// Package cli provides the interactive stock advisor command-line client.
//
// It wires configuration, the credential store, the session, navigation, the
// request pipeline and the API services, then runs a REPL. On start the
// stored credential (if any) is validated before the first prompt.
//
// Key features:
//   - Login / Register / Logout
//   - Dashboard, stock, sector and news views behind the access gate
//   - Saved analyses and notes
//   - A redirect notice whenever the server rejects the session
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App and runREPL for details.
package cli
