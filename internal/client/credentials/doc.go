// Package credentials owns the bearer credential of the current client
// profile.
//
// The credential lives in the profile's SQLite metadata table so it
// survives restarts. When that storage cannot be opened, read or written
// the Store degrades to keeping the credential in memory for the rest of
// the process; the degradation is logged once and reported by
// (*Store).Degraded. No other package persists the credential.
package credentials
