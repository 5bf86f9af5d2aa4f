// Package repositories implements local persistence for the marquee client.
//
// Exactly one value survives across restarts: the credential token, held in
// a single-row sqlite table managed by [TokenRepository]. Profile fields are
// never persisted; a full identity is always re-derived from the service
// when the client starts with a stored token.
package repositories
