package main

import (
	"context"
	"fmt"

	"github.com/ferntree/marquee/internal/services"
	"github.com/ferntree/marquee/internal/shared"
	"github.com/urfave/cli/v3"
)

// AuthLogin exchanges credentials for a session and persists its token so
// later invocations can rebuild the session without a password.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	email := cmd.String("email")
	password := cmd.String("password")

	identity, err := r.catalog.Authenticate(ctx, email, password)
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	if err := r.store.Login(identity); err != nil {
		return err
	}

	if _, err := r.database(); err != nil {
		return err
	}
	if err := r.tokens.Save(identity.Token); err != nil {
		r.logger.Warn("failed to persist session token", "error", err)
	}

	r.logger.Info("signed in", "user", identity.ID)
	return r.writePlain("✓ Signed in as %s\n", identity.Email)
}

// AuthLogout discards the in-memory session and the persisted token. Safe to
// run when already signed out.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	if _, err := r.database(); err != nil {
		return err
	}

	if err := r.tokens.Clear(); err != nil {
		return err
	}
	r.store.Logout()
	r.catalog.InvalidateCache()

	return r.writePlain("✓ Signed out\n")
}

// AuthWhoami rebuilds the session from the stored token and prints the
// current identity.
func (r *Runner) AuthWhoami(ctx context.Context, cmd *cli.Command) error {
	if err := r.rehydrate(ctx); err != nil {
		return err
	}

	identity, ok := r.store.Current()
	if !ok {
		return shared.ErrNotAuthenticated
	}

	if cmd.Bool("json") {
		return r.writeJSON(map[string]any{
			"id":         identity.ID,
			"email":      identity.Email,
			"name":       identity.Name,
			"categories": identity.Categories,
		}, true)
	}

	r.writePlain("Signed in as %s", identity.Email)
	if identity.Name != "" {
		r.writePlain(" (%s)", identity.Name)
	}
	return r.writePlain("\n")
}

// AuthRegister creates a new account. The new user still has to sign in
// afterwards; registration never starts a session.
func (r *Runner) AuthRegister(ctx context.Context, cmd *cli.Command) error {
	form := services.RegistrationForm{
		Name:       cmd.String("name"),
		Email:      cmd.String("email"),
		Password:   cmd.String("password"),
		Address:    cmd.String("address"),
		DOB:        cmd.String("dob"),
		Categories: cmd.StringSlice("category"),
	}

	if err := r.catalog.Register(ctx, form); err != nil {
		return fmt.Errorf("registration failed: %w", err)
	}

	r.writePlain("✓ Account created for %s\n", form.Email)
	return r.writePlain("Run 'marquee auth login' to sign in.\n")
}
