package ui

import (
	"github.com/ferntree/marquee/internal/models"
	"github.com/ferntree/marquee/internal/session"
)

// sessionChangedMsg is delivered by the navigator's watch command whenever
// the session store transitions between authenticated and absent.
type sessionChangedMsg session.Event

// loginResultMsg carries the outcome of an authenticate call.
type loginResultMsg struct {
	identity models.Identity
	err      error
}

// Fetch results are stamped with the session generation current when the
// fetch was issued; stale results never populate view state.

type recommendedMsg struct {
	gen    uint64
	movies []models.Movie
	err    error
}

type categoriesMsg struct {
	gen        uint64
	categories []models.Category
	err        error
}

type categoryMoviesMsg struct {
	gen    uint64
	name   string
	movies []models.Movie
	err    error
}

type searchResultsMsg struct {
	gen    uint64
	query  string
	movies []models.Movie
	err    error
}

type ratingSubmittedMsg struct {
	title  string
	rating int
	err    error
}

type profileSavedMsg struct {
	patch models.IdentityPatch
	err   error
}
