// Package auth provides authentication for LoanLedger.
//
// It implements a stateless claim-in-cookie session model:
//   - HS256 JWT session tokens (golang-jwt/jwt/v5) with a fixed
//     one-hour expiry
//   - An HttpOnly, SameSite=Lax "token" cookie carrying the signed token
//   - A SQLite-backed credential store of user accounts
//
// There is no server-side session table: a session exists entirely in
// the signed claims the client presents. Introducing revocation would
// require a token blacklist as a new collaborator.
//
// Passwords are stored and compared as plaintext exact-match values to
// remain behaviour-compatible with the system this service replaces.
// The comparison is constant-time, but the storage model is a known
// hazard — see DESIGN.md before building anything new on it.
package auth
