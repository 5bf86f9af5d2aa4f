package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/ferntree/marquee/internal/models"
	"github.com/ferntree/marquee/internal/repositories"
	"github.com/ferntree/marquee/internal/services"
	"github.com/ferntree/marquee/internal/session"
	"github.com/ferntree/marquee/internal/shared"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	LoginView ViewState = iota
	BrowseView
	ProfileView
)

// browseState tracks which result set is active and whether search results
// are additionally visible. Exactly one result set is primary at a time;
// search never replaces it.
type browseState struct {
	active        models.ResultSet
	searchResults models.ResultSet
	searchVisible bool
	categories    []models.Category
	catIndex      int
	movieList     list.Model
	searchInput   textinput.Model
	searchFocused bool
}

// Model represents the TUI application state.
type Model struct {
	ctx     context.Context
	store   *session.Store
	catalog *services.Catalog
	tokens  *repositories.TokenRepository
	logger  *log.Logger

	view   ViewState
	width  int
	height int
	status string

	login   loginForm
	browse  browseState
	profile profileForm

	events <-chan session.Event
	help   help.Model
	keys   keyMap
}

// ModelOpts contains the dependencies for creating a Model.
type ModelOpts struct {
	Store   *session.Store
	Catalog *services.Catalog
	Tokens  *repositories.TokenRepository
	Logger  *log.Logger
}

// NewModel creates a new TUI model. The starting view follows the session
// store: authenticated sessions land on the browse view, everything else on
// the login form.
func NewModel(ctx context.Context, opts ModelOpts) *Model {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}

	searchInput := textinput.New()
	searchInput.Placeholder = "Search movies..."

	m := &Model{
		ctx:     ctx,
		store:   opts.Store,
		catalog: opts.Catalog,
		tokens:  opts.Tokens,
		logger:  opts.Logger,
		view:    LoginView,
		login:   newLoginForm(),
		browse: browseState{
			active:      models.Recommended(nil),
			movieList:   list.New(nil, list.NewDefaultDelegate(), 0, 0),
			searchInput: searchInput,
		},
		events: opts.Store.Watch(),
		help:   help.New(),
		keys:   newKeyMap(),
	}
	m.browse.movieList.Title = "Recommended Movies"
	m.browse.movieList.SetShowHelp(false)

	if _, ok := opts.Store.Current(); ok {
		m.view = BrowseView
	}

	return m
}

// Init arms the session watcher and, when already authenticated, issues the
// two independent entry fetches.
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.watchSession(), textinput.Blink}
	if m.view == BrowseView {
		cmds = append(cmds, m.fetchRecommended(), m.fetchCategories())
	}
	return tea.Batch(cmds...)
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.browse.movieList.SetSize(msg.Width-4, msg.Height-10)
		return m, nil

	case sessionChangedMsg:
		return m.handleSessionChange(session.Event(msg))

	case tea.KeyMsg:
		switch m.view {
		case LoginView:
			return m.handleLoginKeys(msg)
		case BrowseView:
			return m.handleBrowseKeys(msg)
		case ProfileView:
			return m.handleProfileKeys(msg)
		}

	case loginResultMsg:
		return m.handleLoginResult(msg)

	case recommendedMsg:
		if m.dropStale(msg.gen) {
			return m, nil
		}
		if msg.err != nil {
			return m.handleFetchError("failed to fetch recommended movies", msg.err)
		}
		// apply only while recommended is still the active set; a category
		// selected in the meantime wins
		if m.browse.active.Label == models.LabelRecommended {
			m.browse.active = models.Recommended(msg.movies)
			m.browse.movieList.SetItems(movieItems(msg.movies))
			m.browse.movieList.Title = "Recommended Movies"
		}
		return m, nil

	case categoriesMsg:
		if m.dropStale(msg.gen) {
			return m, nil
		}
		if msg.err != nil {
			return m.handleFetchError("failed to fetch categories", msg.err)
		}
		m.browse.categories = msg.categories
		if m.browse.catIndex >= len(msg.categories) {
			m.browse.catIndex = 0
		}
		return m, nil

	case categoryMoviesMsg:
		if m.dropStale(msg.gen) {
			return m, nil
		}
		if msg.err != nil {
			return m.handleFetchError(fmt.Sprintf("failed to fetch category %q", msg.name), msg.err)
		}
		m.browse.active = models.ByCategory(msg.name, msg.movies)
		m.browse.movieList.SetItems(movieItems(msg.movies))
		m.browse.movieList.Title = msg.name
		return m, nil

	case searchResultsMsg:
		if m.dropStale(msg.gen) {
			return m, nil
		}
		if msg.err != nil {
			return m.handleFetchError(fmt.Sprintf("search %q failed", msg.query), msg.err)
		}
		m.browse.searchResults = models.FromSearch(msg.query, msg.movies)
		m.browse.searchVisible = true
		return m, nil

	case ratingSubmittedMsg:
		if msg.err != nil {
			if errors.Is(msg.err, shared.ErrUnauthorized) {
				return m, nil
			}
			m.status = styles.err.Render(fmt.Sprintf("Failed to rate %q: %v", msg.title, msg.err))
			return m, nil
		}
		m.status = styles.ok.Render(fmt.Sprintf("Rated %q %d/5", msg.title, msg.rating))
		return m, nil

	case profileSavedMsg:
		m.profile.busy = false
		if msg.err != nil {
			if errors.Is(msg.err, shared.ErrUnauthorized) {
				return m, nil
			}
			m.profile.errText = fmt.Sprintf("%v", msg.err)
			return m, nil
		}
		if err := m.store.Patch(msg.patch); err != nil {
			m.logger.Warn("profile patch skipped", "error", err)
		}
		m.status = styles.ok.Render("Profile updated")
		m.view = BrowseView
		return m, nil
	}

	return m.updateFocused(msg)
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	switch m.view {
	case LoginView:
		return m.renderLogin()
	case BrowseView:
		return m.renderBrowse()
	case ProfileView:
		return m.renderProfile()
	default:
		return ""
	}
}

// handleSessionChange is the navigator: whenever the identity becomes
// absent while a protected view is displayed, redirect to the login view
// before any further protected fetch can be issued. Repeated logout signals
// collapse here to a single observable transition.
//
// The store is consulted instead of the event payload: watcher sends happen
// outside the store's lock, so a coalesced event can be older than the
// store's latest transition (a logout raced by a fresh login must not
// redirect).
func (m *Model) handleSessionChange(event session.Event) (tea.Model, tea.Cmd) {
	if _, authenticated := m.store.Current(); !authenticated && m.view != LoginView {
		m.logger.Info("session ended, redirecting to login")
		m.resetBrowse()
		m.login = newLoginForm()
		m.login.errText = "Session expired. Sign in again."
		m.view = LoginView
		m.catalog.InvalidateCache()
		if m.tokens != nil {
			if err := m.tokens.Clear(); err != nil {
				m.logger.Warn("failed to clear stored token", "error", err)
			}
		}
	}
	return m, m.watchSession()
}

func (m *Model) resetBrowse() {
	m.browse.active = models.Recommended(nil)
	m.browse.searchResults = models.ResultSet{}
	m.browse.searchVisible = false
	m.browse.categories = nil
	m.browse.catIndex = 0
	m.browse.searchFocused = false
	m.browse.searchInput.SetValue("")
	m.browse.movieList.SetItems(nil)
	m.browse.movieList.Title = "Recommended Movies"
	m.status = ""
}

func (m *Model) handleLoginResult(msg loginResultMsg) (tea.Model, tea.Cmd) {
	m.login.busy = false
	if msg.err != nil {
		if errors.Is(msg.err, shared.ErrAuthFailed) {
			m.login.errText = "Invalid email or password."
		} else {
			m.login.errText = fmt.Sprintf("Login failed: %v", msg.err)
		}
		return m, nil
	}

	if err := m.store.Login(msg.identity); err != nil {
		m.login.errText = fmt.Sprintf("Login failed: %v", err)
		return m, nil
	}
	if m.tokens != nil {
		if err := m.tokens.Save(msg.identity.Token); err != nil {
			m.logger.Warn("failed to persist token", "error", err)
		}
	}

	return m.enterBrowse()
}

// enterBrowse transitions to the authenticated entry view and issues the
// two independent entry fetches. They are unordered relative to each other
// and each updates only its own piece of state.
func (m *Model) enterBrowse() (tea.Model, tea.Cmd) {
	m.resetBrowse()
	m.view = BrowseView
	return m, tea.Batch(m.fetchRecommended(), m.fetchCategories())
}

func (m *Model) handleFetchError(prefix string, err error) (tea.Model, tea.Cmd) {
	// unauthorized is handled centrally by the navigator redirect
	if errors.Is(err, shared.ErrUnauthorized) {
		return m, nil
	}
	m.status = styles.err.Render(fmt.Sprintf("%s: %v", prefix, err))
	return m, nil
}

// dropStale reports whether a fetch result belongs to an earlier session
// generation or arrived after the identity became absent. Such results must
// not populate view state.
func (m *Model) dropStale(gen uint64) bool {
	if _, ok := m.store.Current(); !ok {
		return true
	}
	return gen != m.store.Generation()
}

func (m *Model) handleLoginKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "tab", "shift+tab", "up", "down":
		m.login.cycle()
		return m, nil
	case "enter":
		if m.login.busy {
			return m, nil
		}
		if m.login.email() == "" || m.login.password() == "" {
			m.login.errText = "Email and password are required."
			return m, nil
		}
		m.login.busy = true
		m.login.errText = ""
		return m, m.submitLogin()
	}

	return m, m.login.update(msg)
}

func (m *Model) handleBrowseKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.browse.searchFocused {
		switch msg.String() {
		case "enter":
			query := strings.TrimSpace(m.browse.searchInput.Value())
			m.browse.searchFocused = false
			m.browse.searchInput.Blur()
			if query == "" {
				return m, nil
			}
			return m, m.fetchSearch(query)
		case "esc":
			m.browse.searchFocused = false
			m.browse.searchInput.Blur()
			return m, nil
		}
		var cmd tea.Cmd
		m.browse.searchInput, cmd = m.browse.searchInput.Update(msg)
		return m, cmd
	}

	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "/":
		m.browse.searchFocused = true
		m.browse.searchInput.Focus()
		return m, textinput.Blink
	case "x":
		m.browse.searchVisible = false
		return m, nil
	case "tab":
		if n := len(m.browse.categories); n > 0 {
			m.browse.catIndex = (m.browse.catIndex + 1) % n
		}
		return m, nil
	case "shift+tab":
		if n := len(m.browse.categories); n > 0 {
			m.browse.catIndex = (m.browse.catIndex - 1 + n) % n
		}
		return m, nil
	case "g":
		if m.browse.catIndex < len(m.browse.categories) {
			category := m.browse.categories[m.browse.catIndex]
			return m, m.fetchCategoryMovies(category)
		}
		return m, nil
	case "r":
		return m, m.fetchRecommended()
	case "1", "2", "3", "4", "5":
		if item, ok := m.browse.movieList.SelectedItem().(movieItem); ok {
			rating := int(msg.String()[0] - '0')
			return m, m.submitRating(item.movie, rating)
		}
		return m, nil
	case "o":
		if item, ok := m.browse.movieList.SelectedItem().(movieItem); ok && item.movie.Image != "" {
			if err := shared.OpenBrowser(item.movie.Image); err != nil {
				m.status = styles.warn.Render(fmt.Sprintf("Could not open poster: %v", err))
			}
		}
		return m, nil
	case "p":
		if identity, ok := m.store.Current(); ok {
			m.profile = newProfileForm(identity)
			m.view = ProfileView
		}
		return m, nil
	case "ctrl+l":
		m.logger.Info("user requested logout")
		m.store.Logout() // the navigator handles the redirect
		return m, nil
	}

	var cmd tea.Cmd
	m.browse.movieList, cmd = m.browse.movieList.Update(msg)
	return m, cmd
}

func (m *Model) handleProfileKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.view = BrowseView
		return m, nil
	case "tab", "down":
		m.profile.cycle(false)
		return m, nil
	case "shift+tab", "up":
		m.profile.cycle(true)
		return m, nil
	case "enter":
		if m.profile.busy {
			return m, nil
		}
		identity, ok := m.store.Current()
		if !ok {
			return m, nil
		}
		m.profile.busy = true
		m.profile.errText = ""
		return m, m.saveProfile(identity)
	}

	return m, m.profile.update(msg)
}

func (m *Model) updateFocused(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case BrowseView:
		m.browse.movieList, cmd = m.browse.movieList.Update(msg)
	}
	return m, cmd
}

// watchSession blocks on the store's watcher channel and surfaces the next
// transition as a message.
func (m *Model) watchSession() tea.Cmd {
	return func() tea.Msg {
		return sessionChangedMsg(<-m.events)
	}
}

func (m *Model) submitLogin() tea.Cmd {
	email, password := m.login.email(), m.login.password()
	return func() tea.Msg {
		identity, err := m.catalog.Authenticate(m.ctx, email, password)
		return loginResultMsg{identity: identity, err: err}
	}
}

func (m *Model) fetchRecommended() tea.Cmd {
	gen := m.store.Generation()
	return func() tea.Msg {
		movies, err := m.catalog.Recommended(m.ctx)
		return recommendedMsg{gen: gen, movies: movies, err: err}
	}
}

func (m *Model) fetchCategories() tea.Cmd {
	gen := m.store.Generation()
	return func() tea.Msg {
		categories, err := m.catalog.Categories(m.ctx)
		return categoriesMsg{gen: gen, categories: categories, err: err}
	}
}

func (m *Model) fetchCategoryMovies(category models.Category) tea.Cmd {
	gen := m.store.Generation()
	return func() tea.Msg {
		movies, err := m.catalog.MoviesByCategory(m.ctx, category.ID)
		return categoryMoviesMsg{gen: gen, name: category.Name, movies: movies, err: err}
	}
}

func (m *Model) fetchSearch(query string) tea.Cmd {
	gen := m.store.Generation()
	return func() tea.Msg {
		movies, err := m.catalog.Search(m.ctx, query)
		return searchResultsMsg{gen: gen, query: query, movies: movies, err: err}
	}
}

func (m *Model) submitRating(movie models.Movie, rating int) tea.Cmd {
	identity, ok := m.store.Current()
	if !ok {
		return nil
	}
	return func() tea.Msg {
		err := m.catalog.Rate(m.ctx, identity.ID, movie.ID, rating)
		return ratingSubmittedMsg{title: movie.Title, rating: rating, err: err}
	}
}

func (m *Model) saveProfile(identity models.Identity) tea.Cmd {
	patch := m.profile.patch(identity)
	profile := services.Profile{
		Name:       strings.TrimSpace(m.profile.inputs[profileName].Value()),
		Address:    strings.TrimSpace(m.profile.inputs[profileAddress].Value()),
		DOB:        strings.TrimSpace(m.profile.inputs[profileDOB].Value()),
		Image:      strings.TrimSpace(m.profile.inputs[profileImage].Value()),
		Categories: m.profile.categories(),
	}
	return func() tea.Msg {
		if err := m.catalog.UpdateProfile(m.ctx, identity.ID, profile); err != nil {
			return profileSavedMsg{err: err}
		}
		return profileSavedMsg{patch: patch}
	}
}
