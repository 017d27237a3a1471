// Package tokencache serves valid Xolta bearer tokens while keeping browser logins rare.
//
// Tokens are stored on disk under a hash of the credential and reused until their
// validity window closes. A per-instance memo short-circuits repeated GetToken calls,
// and concurrent callers for the same credential share a single login.
package tokencache
