package main

import (
	"context"
	"fmt"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/netdecker/internal/shared"
	"github.com/desertthunder/netdecker/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive deck browser.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	// Logs go to a file while the alt screen is active. This must happen before open so the
	// engine and fetchers pick up the file logger.
	dir, err := shared.AppDataDir()
	if err != nil {
		return err
	}
	if err := r.redirectLogs(filepath.Join(dir, "tui.log")); err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	if err := r.open(); err != nil {
		return err
	}

	model := ui.NewModel(ctx, r.decks, r.ledger, r.engine)
	p := tea.NewProgram(model, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
