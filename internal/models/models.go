package models

import "fmt"

// Identity is the authenticated user's credential and profile fields.
//
// An Identity is either wholly absent or wholly present with a non-empty
// token; there is no partially-authenticated state. The session store owns
// the only long-lived copy — every other component takes a transient read
// per operation.
type Identity struct {
	ID         int
	Email      string
	Token      string
	Name       string
	DOB        string
	Address    string
	Image      string
	Categories []string
}

// Valid reports whether the identity satisfies the presence invariant.
func (i Identity) Valid() bool {
	return i.Token != ""
}

// IdentityPatch is a typed partial update for profile edits. Nil fields are
// left untouched; the credential token is deliberately not patchable.
type IdentityPatch struct {
	Email      *string
	Name       *string
	DOB        *string
	Address    *string
	Image      *string
	Categories *[]string
}

// IsZero reports whether the patch carries no fields.
func (p IdentityPatch) IsZero() bool {
	return p.Email == nil && p.Name == nil && p.DOB == nil &&
		p.Address == nil && p.Image == nil && p.Categories == nil
}

// Apply merges the patch into a copy of the given identity and returns it.
// The token always carries over unchanged.
func (p IdentityPatch) Apply(identity Identity) Identity {
	if p.Email != nil {
		identity.Email = *p.Email
	}
	if p.Name != nil {
		identity.Name = *p.Name
	}
	if p.DOB != nil {
		identity.DOB = *p.DOB
	}
	if p.Address != nil {
		identity.Address = *p.Address
	}
	if p.Image != nil {
		identity.Image = *p.Image
	}
	if p.Categories != nil {
		categories := make([]string, len(*p.Categories))
		copy(categories, *p.Categories)
		identity.Categories = categories
	}
	return identity
}

// Movie is a read-only summary supplied by the catalog service. The client
// never mutates one; rating aggregation lives on the server.
type Movie struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Image       string  `json:"image"`
	Rating      float64 `json:"rating"`
}

// Category labels a navigable slice of the catalog.
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// LabelRecommended is the label of the initial result set shown after a
// successful authenticated entry.
const LabelRecommended = "recommended"

// CategoryLabel returns the result set label for a category view.
func CategoryLabel(name string) string {
	return fmt.Sprintf("category:%s", name)
}

// SearchLabel returns the result set label for a search.
func SearchLabel(query string) string {
	return fmt.Sprintf("search:%s", query)
}

// ResultSet is a labelled, ordered collection of movie summaries. Exactly
// one result set is active (rendered as the primary grid) at a time; search
// results are an additional, independently visible set.
type ResultSet struct {
	Label  string
	Movies []Movie
}

// Recommended builds the recommended result set.
func Recommended(movies []Movie) ResultSet {
	return ResultSet{Label: LabelRecommended, Movies: movies}
}

// ByCategory builds a category result set.
func ByCategory(name string, movies []Movie) ResultSet {
	return ResultSet{Label: CategoryLabel(name), Movies: movies}
}

// FromSearch builds a search result set.
func FromSearch(query string, movies []Movie) ResultSet {
	return ResultSet{Label: SearchLabel(query), Movies: movies}
}
