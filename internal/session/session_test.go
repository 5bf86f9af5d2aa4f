package session

import (
	"errors"
	"sync"
	"testing"

	"github.com/ferntree/marquee/internal/models"
	"github.com/ferntree/marquee/internal/shared"
)

func identityFixture() models.Identity {
	return models.Identity{
		ID:         1,
		Email:      "a@b.com",
		Token:      "T1",
		Name:       "Ada",
		Categories: []string{"Action"},
	}
}

func TestStore(t *testing.T) {
	t.Run("Login", func(t *testing.T) {
		t.Run("Replaces Identity Wholesale", func(t *testing.T) {
			store := NewStore()
			if err := store.Login(identityFixture()); err != nil {
				t.Fatalf("login failed: %v", err)
			}

			current, ok := store.Current()
			if !ok {
				t.Fatal("expected identity to be present")
			}
			if current.Email != "a@b.com" || current.Token != "T1" {
				t.Errorf("unexpected identity: %+v", current)
			}

			second := identityFixture()
			second.Email = "c@d.com"
			second.Token = "T2"
			if err := store.Login(second); err != nil {
				t.Fatalf("second login failed: %v", err)
			}

			current, _ = store.Current()
			if current.Email != "c@d.com" || current.Token != "T2" {
				t.Errorf("expected wholesale replacement, got %+v", current)
			}
		})

		t.Run("Rejects Identity Without Token", func(t *testing.T) {
			store := NewStore()
			err := store.Login(models.Identity{Email: "a@b.com"})
			if !errors.Is(err, shared.ErrAuthFailed) {
				t.Errorf("expected ErrAuthFailed, got %v", err)
			}
			if _, ok := store.Current(); ok {
				t.Error("store should remain unauthenticated")
			}
		})
	})

	t.Run("Logout", func(t *testing.T) {
		t.Run("Is Idempotent", func(t *testing.T) {
			store := NewStore()
			store.Login(identityFixture())

			store.Logout()
			genAfterFirst := store.Generation()

			store.Logout()
			store.Logout()

			if _, ok := store.Current(); ok {
				t.Error("expected identity to be absent")
			}
			if store.Generation() != genAfterFirst {
				t.Error("repeated logouts must not advance the generation")
			}
		})

		t.Run("Concurrent Logouts Yield One Transition", func(t *testing.T) {
			store := NewStore()
			store.Login(identityFixture())
			events := store.Watch()

			var wg sync.WaitGroup
			for range 3 {
				wg.Add(1)
				go func() {
					defer wg.Done()
					store.Logout()
				}()
			}
			wg.Wait()

			// exactly one coalesced event, reporting unauthenticated
			event := <-events
			if event.Authenticated {
				t.Error("expected unauthenticated event")
			}
			select {
			case extra := <-events:
				t.Errorf("expected no further events, got %+v", extra)
			default:
			}
		})
	})

	t.Run("Patch", func(t *testing.T) {
		t.Run("Token Invariant Under Patches", func(t *testing.T) {
			store := NewStore()
			store.Login(identityFixture())

			name := "Grace"
			address := "2 Side St"
			for _, patch := range []models.IdentityPatch{
				{Name: &name},
				{Address: &address},
			} {
				if err := store.Patch(patch); err != nil {
					t.Fatalf("patch failed: %v", err)
				}
			}

			current, _ := store.Current()
			if current.Token != "T1" {
				t.Errorf("token changed under patch: %q", current.Token)
			}
			if current.Name != "Grace" || current.Address != "2 Side St" {
				t.Errorf("patch fields not applied: %+v", current)
			}
		})

		t.Run("Absent Identity Is A Precondition Violation", func(t *testing.T) {
			store := NewStore()
			name := "Grace"
			err := store.Patch(models.IdentityPatch{Name: &name})
			if !errors.Is(err, shared.ErrNotAuthenticated) {
				t.Errorf("expected ErrNotAuthenticated, got %v", err)
			}
		})
	})

	t.Run("Generation", func(t *testing.T) {
		store := NewStore()
		if store.Generation() != 0 {
			t.Error("expected initial generation 0")
		}

		store.Login(identityFixture())
		afterLogin := store.Generation()
		if afterLogin == 0 {
			t.Error("login should advance the generation")
		}

		store.Logout()
		if store.Generation() <= afterLogin {
			t.Error("logout should advance the generation")
		}
	})

	t.Run("Watch", func(t *testing.T) {
		t.Run("Coalesces To Latest Event", func(t *testing.T) {
			store := NewStore()
			events := store.Watch()

			store.Login(identityFixture())
			store.Logout()

			event := <-events
			if event.Authenticated {
				t.Error("expected the latest (unauthenticated) event to win")
			}
		})

		t.Run("Slow Watcher Never Blocks Mutations", func(t *testing.T) {
			store := NewStore()
			store.Watch() // never drained

			for range 10 {
				store.Login(identityFixture())
				store.Logout()
			}
		})
	})

	t.Run("Token", func(t *testing.T) {
		store := NewStore()
		if store.Token() != "" {
			t.Error("expected empty token when unauthenticated")
		}
		store.Login(identityFixture())
		if store.Token() != "T1" {
			t.Errorf("expected T1, got %s", store.Token())
		}
	})
}
