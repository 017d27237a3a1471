// Package app wires configuration, storage, the browser authenticator and the token
// cache together and implements the actions behind each CLI command.
package app
