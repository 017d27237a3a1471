// Package auth acquires Xolta API bearer tokens by driving a headless browser
// through the B2C sign-in form.
//
// The browser is only a vehicle: the token is read from the identity provider's
// responses, which are intercepted while the login page talks to it. Every attempt
// runs in a fresh, isolated browser profile that is removed afterwards.
package auth
