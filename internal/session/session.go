package session

import (
	"fmt"
	"sync"

	"github.com/ferntree/marquee/internal/models"
	"github.com/ferntree/marquee/internal/shared"
)

// Event reports a session transition to watchers.
type Event struct {
	Authenticated bool
	Generation    uint64
}

// Store owns the current authenticated identity, or none. It is the only
// writer of the credential token; the gateway and views read through it per
// operation and never cache the identity beyond a single request.
type Store struct {
	mu         sync.Mutex
	identity   *models.Identity
	generation uint64
	watchers   []chan Event
}

// NewStore creates an unauthenticated Store.
func NewStore() *Store {
	return &Store{}
}

// Login replaces any previous identity with the supplied complete one.
func (s *Store) Login(identity models.Identity) error {
	if !identity.Valid() {
		return fmt.Errorf("%w: identity without credential token", shared.ErrAuthFailed)
	}

	s.mu.Lock()
	id := identity
	s.identity = &id
	s.generation++
	event := Event{Authenticated: true, Generation: s.generation}
	watchers := s.snapshotWatchers()
	s.mu.Unlock()

	notify(watchers, event)
	return nil
}

// Logout sets the identity to absent. Idempotent: once unauthenticated,
// further calls change nothing and emit no events, so concurrent 401s from
// in-flight requests collapse to a single observable transition.
func (s *Store) Logout() {
	s.mu.Lock()
	if s.identity == nil {
		s.mu.Unlock()
		return
	}
	s.identity = nil
	s.generation++
	event := Event{Authenticated: false, Generation: s.generation}
	watchers := s.snapshotWatchers()
	s.mu.Unlock()

	notify(watchers, event)
}

// Patch merges the non-nil fields of the patch into the current identity.
// The credential token is never touched. Calling Patch while no identity is
// present is a precondition violation and returns [shared.ErrNotAuthenticated].
func (s *Store) Patch(patch models.IdentityPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.identity == nil {
		return fmt.Errorf("%w: cannot patch an absent identity", shared.ErrNotAuthenticated)
	}

	patched := patch.Apply(*s.identity)
	s.identity = &patched
	return nil
}

// Current returns a copy of the identity and whether one is present.
func (s *Store) Current() (models.Identity, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.identity == nil {
		return models.Identity{}, false
	}
	return *s.identity, true
}

// Token returns the credential token, or "" when unauthenticated.
func (s *Store) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.identity == nil {
		return ""
	}
	return s.identity.Token
}

// Generation returns the transition counter. A fetch stamped with an older
// generation than the store's current one must not populate view state.
func (s *Store) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation
}

// Watch registers a channel that receives session transitions. Sends never
// block; a consumer that falls behind observes the latest event only.
func (s *Store) Watch() <-chan Event {
	ch := make(chan Event, 1)

	s.mu.Lock()
	s.watchers = append(s.watchers, ch)
	s.mu.Unlock()

	return ch
}

func (s *Store) snapshotWatchers() []chan Event {
	watchers := make([]chan Event, len(s.watchers))
	copy(watchers, s.watchers)
	return watchers
}

func notify(watchers []chan Event, event Event) {
	for _, ch := range watchers {
		// drop a stale pending event so the latest one wins
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- event:
		default:
		}
	}
}
