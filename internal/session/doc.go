// Package session holds the authenticated identity for the running client.
//
// [Store] is the single owner of the user's credential and profile fields.
// The gateway reads the token through it on every protected call and clears
// it on an authorization failure; the TUI's navigator subscribes via
// [Store.Watch] and redirects to the login view whenever the identity
// becomes absent. [Store.Generation] lets the view layer detect responses
// that arrived after a session transition and discard them.
package session
