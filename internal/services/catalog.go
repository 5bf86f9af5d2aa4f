package services

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/ferntree/marquee/internal/models"
	"github.com/ferntree/marquee/internal/shared"
	"github.com/golang-jwt/jwt/v5"
	"github.com/patrickmn/go-cache"
)

const categoriesCacheKey = "categories"

// Catalog provides typed access to the movie catalog service. All protected
// operations pass through the gateway's classification; input validation
// happens here, before any network call.
type Catalog struct {
	gateway *Gateway
	cache   *cache.Cache
	logger  *log.Logger
}

// NewCatalog creates a Catalog over the given gateway. The category list is
// cached for a few minutes; [Catalog.InvalidateCache] clears it on logout so
// entries never cross a session boundary.
func NewCatalog(gateway *Gateway, logger *log.Logger) *Catalog {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	return &Catalog{
		gateway: gateway,
		cache:   cache.New(5*time.Minute, 10*time.Minute),
		logger:  logger,
	}
}

type loginPayload struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type authResponse struct {
	AccessToken string   `json:"access_token"`
	ID          int      `json:"id"`
	Name        string   `json:"name"`
	DOB         string   `json:"dob"`
	Address     string   `json:"address"`
	Categories  []string `json:"categories"`
}

// Authenticate exchanges credentials for a complete identity. This and
// [Catalog.Register] are the only operations callable without a session.
func (c *Catalog) Authenticate(ctx context.Context, email, password string) (models.Identity, error) {
	if email == "" || password == "" {
		return models.Identity{}, fmt.Errorf("%w: email and password are required", shared.ErrValidation)
	}

	var resp authResponse
	err := c.gateway.DoPublic(ctx, http.MethodPost, "/auth/login", loginPayload{Username: email, Password: password}, &resp)
	if err != nil {
		return models.Identity{}, err
	}

	if resp.AccessToken == "" {
		return models.Identity{}, fmt.Errorf("%w: service returned no access token", shared.ErrAuthFailed)
	}

	return models.Identity{
		ID:         resp.ID,
		Email:      email,
		Token:      resp.AccessToken,
		Name:       resp.Name,
		DOB:        resp.DOB,
		Address:    resp.Address,
		Categories: resp.Categories,
	}, nil
}

// RegistrationForm carries the signup fields. Validated locally before the
// request is sent.
type RegistrationForm struct {
	Name       string   `json:"name" validate:"required"`
	Email      string   `json:"email" validate:"required,email"`
	Password   string   `json:"password" validate:"required,min=8"`
	Address    string   `json:"address"`
	DOB        string   `json:"dob" validate:"omitempty,datetime=2006-01-02"`
	Categories []string `json:"categories"`
}

// Register creates a new account. Callable without a session.
func (c *Catalog) Register(ctx context.Context, form RegistrationForm) error {
	if err := shared.Validate(form); err != nil {
		return err
	}
	return c.gateway.DoPublic(ctx, http.MethodPost, "/auth/signup", form, nil)
}

// Recommended retrieves the recommended movie list for the current user.
func (c *Catalog) Recommended(ctx context.Context) ([]models.Movie, error) {
	var movies []models.Movie
	if err := c.gateway.Do(ctx, http.MethodGet, "/movies/recommended", nil, &movies); err != nil {
		return nil, err
	}
	return movies, nil
}

// Categories retrieves the category list, serving a cached copy when fresh.
func (c *Catalog) Categories(ctx context.Context) ([]models.Category, error) {
	if cached, ok := c.cache.Get(categoriesCacheKey); ok {
		if categories, ok := cached.([]models.Category); ok {
			return categories, nil
		}
	}

	var categories []models.Category
	if err := c.gateway.Do(ctx, http.MethodGet, "/categories", nil, &categories); err != nil {
		return nil, err
	}

	c.cache.Set(categoriesCacheKey, categories, cache.DefaultExpiration)
	return categories, nil
}

// MoviesByCategory retrieves the movies filed under a category.
func (c *Catalog) MoviesByCategory(ctx context.Context, categoryID string) ([]models.Movie, error) {
	if categoryID == "" {
		return nil, fmt.Errorf("%w: category id", shared.ErrMissingArgument)
	}

	var movies []models.Movie
	path := fmt.Sprintf("/movies/%s", url.PathEscape(categoryID))
	if err := c.gateway.Do(ctx, http.MethodGet, path, nil, &movies); err != nil {
		return nil, err
	}
	return movies, nil
}

// Search retrieves movies matching the query string.
func (c *Catalog) Search(ctx context.Context, query string) ([]models.Movie, error) {
	if query == "" {
		return nil, fmt.Errorf("%w: search query", shared.ErrMissingArgument)
	}

	var movies []models.Movie
	path := fmt.Sprintf("/movies/search?query=%s", url.QueryEscape(query))
	if err := c.gateway.Do(ctx, http.MethodGet, path, nil, &movies); err != nil {
		return nil, err
	}
	return movies, nil
}

type ratingPayload struct {
	MovieID string `json:"movieId" validate:"required"`
	Rating  int    `json:"rating" validate:"min=1,max=5"`
}

// Rate submits a rating in the closed range [1,5] for a movie. Values
// outside the range are rejected locally, before any network call. The
// submission never mutates a locally held movie record; the next fetch is
// the only source of a refreshed average.
func (c *Catalog) Rate(ctx context.Context, userID int, movieID string, rating int) error {
	payload := ratingPayload{MovieID: movieID, Rating: rating}
	if err := shared.Validate(payload); err != nil {
		if movieID != "" {
			return fmt.Errorf("%w: got %d", shared.ErrInvalidRating, rating)
		}
		return err
	}

	path := fmt.Sprintf("/users/%d/rate", userID)
	return c.gateway.Do(ctx, http.MethodPost, path, payload, nil)
}

// Profile carries the editable profile fields, both as fetched from and as
// submitted to the service.
type Profile struct {
	Name       string   `json:"name" validate:"required"`
	Address    string   `json:"address"`
	Image      string   `json:"image"`
	DOB        string   `json:"dob" validate:"omitempty,datetime=2006-01-02"`
	Categories []string `json:"categories"`
}

// UserProfile retrieves the profile for the given user id.
func (c *Catalog) UserProfile(ctx context.Context, userID int) (*Profile, error) {
	var profile Profile
	path := fmt.Sprintf("/users/%d/profile", userID)
	if err := c.gateway.Do(ctx, http.MethodGet, path, nil, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// UpdateProfile replaces the profile for the given user id. The form is
// validated locally first; the credential token is unaffected by profile
// changes.
func (c *Catalog) UpdateProfile(ctx context.Context, userID int, profile Profile) error {
	if err := shared.Validate(profile); err != nil {
		return err
	}

	path := fmt.Sprintf("/users/%d/profile", userID)
	return c.gateway.Do(ctx, http.MethodPut, path, profile, nil)
}

// InvalidateCache drops every cached response. Called on logout so nothing
// cached under one identity is served to another.
func (c *Catalog) InvalidateCache() {
	c.cache.Flush()
}

// tokenClaims are the claims carried by the service's access tokens. They
// are parsed without verification: the client holds no signing key, and the
// server re-checks the token on every protected call anyway.
type tokenClaims struct {
	UserID int    `json:"id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

func identityClaims(token string) (*tokenClaims, error) {
	var claims tokenClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return nil, fmt.Errorf("%w: malformed token: %v", shared.ErrAuthFailed, err)
	}

	if claims.UserID == 0 && claims.Subject != "" {
		if id, err := strconv.Atoi(claims.Subject); err == nil {
			claims.UserID = id
		}
	}
	if claims.UserID == 0 {
		return nil, fmt.Errorf("%w: token carries no user id", shared.ErrAuthFailed)
	}

	return &claims, nil
}

// Rehydrate rebuilds a complete identity from a previously persisted token.
// The token alone is never trusted as a session: the user id is recovered
// from the token's claims and the profile is re-fetched, so the resulting
// identity is wholly present or not at all. A rejected token surfaces as
// [shared.ErrUnauthorized].
func (c *Catalog) Rehydrate(ctx context.Context, token string) (models.Identity, error) {
	claims, err := identityClaims(token)
	if err != nil {
		return models.Identity{}, err
	}

	var profile Profile
	path := fmt.Sprintf("/users/%d/profile", claims.UserID)
	if err := c.gateway.DoWithToken(ctx, http.MethodGet, path, token, nil, &profile); err != nil {
		return models.Identity{}, err
	}

	c.logger.Debug("session rehydrated", "user", claims.UserID)

	return models.Identity{
		ID:         claims.UserID,
		Email:      claims.Email,
		Token:      token,
		Name:       profile.Name,
		DOB:        profile.DOB,
		Address:    profile.Address,
		Image:      profile.Image,
		Categories: profile.Categories,
	}, nil
}
