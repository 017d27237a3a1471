// Package store persists cached bearer tokens between process runs.
//
// Each record lives in its own file named after the credential hash and holds
// the token together with its absolute expiry time in epoch seconds.
package store
