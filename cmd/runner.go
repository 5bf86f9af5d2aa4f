package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/ferntree/marquee/internal/repositories"
	"github.com/ferntree/marquee/internal/services"
	"github.com/ferntree/marquee/internal/session"
	"github.com/ferntree/marquee/internal/shared"
	"github.com/urfave/cli/v3"
	"golang.org/x/time/rate"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	store      *session.Store
	gateway    *services.Gateway
	catalog    *services.Catalog
	tokens     *repositories.TokenRepository
	db         *sql.DB
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
	DB         *sql.DB
}

// NewRunner creates a new Runner with the provided configuration. The session
// store, gateway and catalog are built here so every command shares one
// session for the lifetime of the process.
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{
			Timeout: time.Duration(opts.Config.API.TimeoutSeconds) * time.Second,
		}
	}

	store := session.NewStore()
	gateway := services.NewGateway(services.GatewayOpts{
		BaseURL:    opts.Config.API.BaseURL,
		HTTPClient: opts.HTTPClient,
		Session:    store,
		Limiter:    rate.NewLimiter(rate.Limit(opts.Config.Client.RequestsPerSecond), opts.Config.Client.Burst),
		Logger:     opts.Logger,
	})

	r := &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		store:      store,
		gateway:    gateway,
		catalog:    services.NewCatalog(gateway, opts.Logger),
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
	}

	if opts.DB != nil {
		r.db = opts.DB
		r.tokens = repositories.NewTokenRepository(opts.DB)
	}

	return r
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, moviesCommand, rateCommand, profileCommand, browseCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// database lazily opens the local database, runs migrations and initializes
// the token repository. Commands that never touch persisted state never open
// the file.
func (r *Runner) database() (*sql.DB, error) {
	if r.db != nil {
		return r.db, nil
	}

	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	r.db = db
	r.tokens = repositories.NewTokenRepository(db)
	return db, nil
}

// rehydrate rebuilds the session from the persisted token. The stored token
// alone is never treated as a session: the profile is re-fetched so the
// identity is wholly present or not at all. A rejected token is cleared so
// the next run starts clean.
func (r *Runner) rehydrate(ctx context.Context) error {
	if _, ok := r.store.Current(); ok {
		return nil
	}

	if _, err := r.database(); err != nil {
		return err
	}

	token, err := r.tokens.Load()
	if errors.Is(err, shared.ErrNoToken) {
		return fmt.Errorf("%w: no stored session, run 'marquee auth login'", shared.ErrNotAuthenticated)
	}
	if err != nil {
		return err
	}

	identity, err := r.catalog.Rehydrate(ctx, token)
	if err != nil {
		if errors.Is(err, shared.ErrUnauthorized) || errors.Is(err, shared.ErrAuthFailed) {
			if clearErr := r.tokens.Clear(); clearErr != nil {
				r.logger.Warn("failed to clear rejected token", "error", clearErr)
			}
			return fmt.Errorf("%w: stored session was rejected, run 'marquee auth login'", shared.ErrNotAuthenticated)
		}
		return err
	}

	return r.store.Login(identity)
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
