package main

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/ferntree/marquee/internal/shared"
	tu "github.com/ferntree/marquee/internal/testing"
	"github.com/golang-jwt/jwt/v5"
	"github.com/urfave/cli/v3"
	_ "github.com/mattn/go-sqlite3"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := shared.RunMigrations(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	return db
}

func signedTestToken(t *testing.T, userID int, email string) string {
	t.Helper()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id":    userID,
		"email": email,
		"exp":   time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return signed
}

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}
			httpClient := &http.Client{}

			runner := NewRunner(RunnerOpts{
				Config:     config,
				ConfigPath: "/test/path/config.toml",
				Logger:     logger,
				Output:     output,
				HTTPClient: httpClient,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.configPath != "/test/path/config.toml" {
				t.Errorf("expected configPath to be set, got %s", runner.configPath)
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
			if runner.httpClient != httpClient {
				t.Error("expected httpClient to be set")
			}
			if runner.store == nil {
				t.Error("expected session store to be built")
			}
			if runner.gateway == nil {
				t.Error("expected gateway to be built")
			}
			if runner.catalog == nil {
				t.Error("expected catalog to be built")
			}
		})

		t.Run("with nil config uses defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{
				Config: nil,
			})

			if runner.config == nil {
				t.Error("expected default config to be set")
			}
		})

		t.Run("with nil logger uses default", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{
				Logger: nil,
			})

			if runner.logger == nil {
				t.Error("expected default logger to be set")
			}
		})

		t.Run("with nil output uses stdout", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{
				Output: nil,
			})

			if runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
		})

		t.Run("with nil httpClient builds one from config timeout", func(t *testing.T) {
			config := shared.DefaultConfig()
			config.API.TimeoutSeconds = 7

			runner := NewRunner(RunnerOpts{Config: config})

			if runner.httpClient == nil {
				t.Fatal("expected httpClient to be built")
			}
			if runner.httpClient.Timeout != 7*time.Second {
				t.Errorf("expected 7s timeout, got %v", runner.httpClient.Timeout)
			}
		})

		t.Run("with injected database initializes token repository", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{DB: newTestDB(t)})

			if runner.tokens == nil {
				t.Error("expected token repository to be initialized")
			}
		})
	})

	t.Run("writeJSON", func(t *testing.T) {
		t.Run("writes formatted JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			data := map[string]string{"key": "value"}
			err := runner.writeJSON(data, true)

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if !strings.Contains(result, `"key": "value"`) {
				t.Errorf("expected formatted JSON, got %s", result)
			}
			if !strings.HasSuffix(result, "\n") {
				t.Error("expected output to end with newline")
			}
		})

		t.Run("writes compact JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			data := map[string]string{"key": "value"}
			err := runner.writeJSON(data, false)

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			expected := `{"key":"value"}` + "\n"
			if result != expected {
				t.Errorf("expected %q, got %q", expected, result)
			}
		})

		t.Run("handles marshal error with non-serializable data", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			// channels cannot be marshaled to JSON
			data := make(chan int)
			err := runner.writeJSON(data, false)

			if err == nil {
				t.Fatal("expected error for non-serializable data")
			}
			if !strings.Contains(err.Error(), "failed to marshal JSON") {
				t.Errorf("expected marshal error, got %v", err)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			failing := &tu.FWriter{}
			runner := NewRunner(RunnerOpts{Output: failing})

			data := map[string]string{"key": "value"}
			err := runner.writeJSON(data, false)

			if err == nil {
				t.Fatal("expected error from failing writer")
			}
			if !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})

		t.Run("handles newline write failure", func(t *testing.T) {
			data := map[string]string{"key": "value"}
			limitedWriter := tu.NewLimitedWriter(1, 0, &bytes.Buffer{})
			runner := NewRunner(RunnerOpts{Output: &limitedWriter})

			err := runner.writeJSON(data, false)

			if err == nil {
				t.Fatal("expected error writing newline")
			}
			if !strings.Contains(err.Error(), "failed to write newline") {
				t.Errorf("expected newline write error, got %v", err)
			}
		})
	})

	t.Run("writePlain", func(t *testing.T) {
		t.Run("writes plain text successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			err := runner.writePlain("hello %s", "world")

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if result != "hello world" {
				t.Errorf("expected 'hello world', got %q", result)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			failing := &tu.FWriter{}
			runner := NewRunner(RunnerOpts{Output: failing})

			err := runner.writePlain("test")

			if err == nil {
				t.Fatal("expected error from failing writer")
			}
			if !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})
	})

	t.Run("register", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{})
		commands := runner.register()

		if len(commands) == 0 {
			t.Error("expected at least one command to be registered")
		}

		for i, cmd := range commands {
			if cmd == nil {
				t.Errorf("command at index %d is nil", i)
			}
		}
	})

	t.Run("MoviesCategory labels with the category name", func(t *testing.T) {
		token := signedTestToken(t, 7, "a@b.com")

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			switch r.URL.Path {
			case "/users/7/profile":
				json.NewEncoder(w).Encode(map[string]any{"name": "Ada"})
			case "/categories":
				json.NewEncoder(w).Encode([]map[string]string{
					{"id": "3", "name": "Horror"},
				})
			case "/movies/3":
				json.NewEncoder(w).Encode([]map[string]any{
					{"id": "m1", "title": "The Thing", "rating": 4.5},
				})
			default:
				t.Errorf("unexpected path: %s", r.URL.Path)
				w.WriteHeader(http.StatusNotFound)
			}
		}))
		defer server.Close()

		config := shared.DefaultConfig()
		config.API.BaseURL = server.URL
		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{Config: config, DB: newTestDB(t), Output: output})

		if err := runner.tokens.Save(token); err != nil {
			t.Fatalf("failed to seed token: %v", err)
		}

		app := &cli.Command{Name: "marquee", Commands: runner.register()}
		if err := app.Run(context.Background(), []string{"marquee", "movies", "category", "3"}); err != nil {
			t.Fatalf("command failed: %v", err)
		}

		result := output.String()
		if !strings.Contains(result, "category:Horror") {
			t.Errorf("expected the category name in the label, got %q", result)
		}
		if strings.Contains(result, "category:3") {
			t.Errorf("label should not use the raw category id, got %q", result)
		}
		if !strings.Contains(result, "The Thing") {
			t.Errorf("expected the movie listing, got %q", result)
		}
	})

	t.Run("rehydrate", func(t *testing.T) {
		t.Run("without stored token", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{DB: newTestDB(t)})

			err := runner.rehydrate(context.Background())

			if !errors.Is(err, shared.ErrNotAuthenticated) {
				t.Errorf("expected ErrNotAuthenticated, got %v", err)
			}
		})

		t.Run("rebuilds session from stored token", func(t *testing.T) {
			token := signedTestToken(t, 7, "a@b.com")

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/users/7/profile" {
					t.Errorf("unexpected path: %s", r.URL.Path)
				}
				if got := r.Header.Get("Authorization"); got != "Bearer "+token {
					t.Errorf("unexpected authorization header: %s", got)
				}
				w.Header().Set("Content-Type", "application/json")
				json.NewEncoder(w).Encode(map[string]any{
					"name":       "Ada",
					"dob":        "1990-01-02",
					"categories": []string{"Horror"},
				})
			}))
			defer server.Close()

			config := shared.DefaultConfig()
			config.API.BaseURL = server.URL
			runner := NewRunner(RunnerOpts{Config: config, DB: newTestDB(t)})

			if err := runner.tokens.Save(token); err != nil {
				t.Fatalf("failed to seed token: %v", err)
			}

			if err := runner.rehydrate(context.Background()); err != nil {
				t.Fatalf("rehydrate failed: %v", err)
			}

			identity, ok := runner.store.Current()
			if !ok {
				t.Fatal("expected an authenticated session")
			}
			if identity.ID != 7 {
				t.Errorf("expected user id 7, got %d", identity.ID)
			}
			if identity.Email != "a@b.com" {
				t.Errorf("expected email from claims, got %s", identity.Email)
			}
			if identity.Name != "Ada" {
				t.Errorf("expected name from profile, got %s", identity.Name)
			}
			if identity.Token != token {
				t.Error("expected the stored token to be carried into the session")
			}
		})

		t.Run("no-op when already authenticated", func(t *testing.T) {
			token := signedTestToken(t, 7, "a@b.com")
			calls := 0

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls++
				w.Header().Set("Content-Type", "application/json")
				json.NewEncoder(w).Encode(map[string]any{"name": "Ada"})
			}))
			defer server.Close()

			config := shared.DefaultConfig()
			config.API.BaseURL = server.URL
			runner := NewRunner(RunnerOpts{Config: config, DB: newTestDB(t)})

			if err := runner.tokens.Save(token); err != nil {
				t.Fatalf("failed to seed token: %v", err)
			}

			if err := runner.rehydrate(context.Background()); err != nil {
				t.Fatalf("first rehydrate failed: %v", err)
			}
			if err := runner.rehydrate(context.Background()); err != nil {
				t.Fatalf("second rehydrate failed: %v", err)
			}

			if calls != 1 {
				t.Errorf("expected a single profile fetch, got %d", calls)
			}
		})

		t.Run("clears a rejected token", func(t *testing.T) {
			token := signedTestToken(t, 7, "a@b.com")

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusUnauthorized)
			}))
			defer server.Close()

			config := shared.DefaultConfig()
			config.API.BaseURL = server.URL
			runner := NewRunner(RunnerOpts{Config: config, DB: newTestDB(t)})

			if err := runner.tokens.Save(token); err != nil {
				t.Fatalf("failed to seed token: %v", err)
			}

			err := runner.rehydrate(context.Background())
			if !errors.Is(err, shared.ErrNotAuthenticated) {
				t.Errorf("expected ErrNotAuthenticated, got %v", err)
			}

			if _, err := runner.tokens.Load(); !errors.Is(err, shared.ErrNoToken) {
				t.Errorf("expected the rejected token to be cleared, got %v", err)
			}

			if _, ok := runner.store.Current(); ok {
				t.Error("expected no session after a rejected token")
			}
		})

		t.Run("malformed token surfaces without a session", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{DB: newTestDB(t)})

			if err := runner.tokens.Save("not-a-jwt"); err != nil {
				t.Fatalf("failed to seed token: %v", err)
			}

			err := runner.rehydrate(context.Background())
			if !errors.Is(err, shared.ErrNotAuthenticated) {
				t.Errorf("expected ErrNotAuthenticated, got %v", err)
			}
			if _, ok := runner.store.Current(); ok {
				t.Error("expected no session from a malformed token")
			}
		})
	})
}
