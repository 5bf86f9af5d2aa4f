package shared

import "fmt"

var (
	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Session errors. ErrUnauthorized is the classification every protected
	// call collapses to when the service rejects or lacks a credential; it
	// always coincides with the session being cleared.
	ErrAuthFailed       = fmt.Errorf("authentication failed")
	ErrNotAuthenticated = fmt.Errorf("not authenticated")
	ErrUnauthorized     = fmt.Errorf("unauthorized")
	ErrNoToken          = fmt.Errorf("no stored credential")

	// Remote service errors. These never clear the session.
	ErrRemoteFailure = fmt.Errorf("remote request failed")

	// Input validation errors, caught before any network call
	ErrValidation      = fmt.Errorf("validation failed")
	ErrInvalidRating   = fmt.Errorf("rating must be between 1 and 5")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)
