// Package models defines the domain records shared across the marquee client.
//
// The package contains two categories of types:
//
// 1. Session records:
//   - [Identity] : The authenticated user's credential and profile fields
//   - [IdentityPatch] : A typed partial update with compile-time-checked keys
//
// 2. Catalog records, supplied read-only by the remote service:
//   - [Movie] : Movie summary with server-computed average rating
//   - [Category] : Navigable slice of the catalog
//   - [ResultSet] : Labelled collection of movies currently on display
//
// Result set labels are one of "recommended", "category:<name>" or
// "search:<query>", built through [CategoryLabel] and [SearchLabel].
package models
