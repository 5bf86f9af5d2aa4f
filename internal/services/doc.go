// Package services implements the HTTP client surface for the remote movie
// catalog service.
//
// [Gateway] is the authenticated choke point: it attaches the bearer
// credential read transiently from the session store, throttles outbound
// requests, and classifies every outcome into exactly one of three buckets
// (success, unauthorized, remote failure). An unauthorized outcome clears
// the session store as a side effect; a remote failure never does.
//
// [Catalog] layers the service's logical operations over the gateway:
// authenticate, register, recommended movies, categories, movies by
// category, search, rating submission, and profile fetch/update. It also
// owns startup rehydration of a persisted token into a full identity.
package services
