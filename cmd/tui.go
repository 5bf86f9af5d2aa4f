package main

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/ferntree/marquee/internal/shared"
	"github.com/ferntree/marquee/internal/ui"
	"github.com/urfave/cli/v3"
)

// Browse launches the interactive catalog browser. A stored session is
// rebuilt first when possible; otherwise the TUI starts on its login form.
func (r *Runner) Browse(ctx context.Context, cmd *cli.Command) error {
	if _, err := r.database(); err != nil {
		return err
	}

	if err := r.rehydrate(ctx); err != nil {
		if !errors.Is(err, shared.ErrNotAuthenticated) {
			return err
		}
		r.logger.Debug("starting unauthenticated", "reason", err)
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger("./tmp/marquee-tui.log")
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}

	model := ui.NewModel(ctx, ui.ModelOpts{
		Store:   r.store,
		Catalog: r.catalog,
		Tokens:  r.tokens,
		Logger:  fileLogger,
	})
	p := tea.NewProgram(model, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
