// Package auth provides authentication and entitlement checks for techhub.
//
// # Principals
//
// Every authenticated caller is one of two principal types:
//
//   - UserPrincipal: a community member; external tools access is gated by
//     the per-user external_features bit
//   - AdminPrincipal: the site operator authenticated via the master
//     password; always entitled, may mutate server tools and settings
//
// Handlers retrieve the caller with FromContext and make access decisions
// through the Principal interface. There is no boolean admin flag carried in
// session state; the principal type is the authority.
//
// # Tokens
//
// Sessions use HS256 JWTs. The "sub" claim holds the username; admin tokens
// additionally carry "adm": true. User tokens are re-resolved against the
// identity store on every request so entitlement revocation takes effect
// without waiting for token expiry.
//
// # Middleware
//
// Middleware validates the bearer token and attaches the Principal.
// RequireAdmin layers on top for the admin surface.
package auth
