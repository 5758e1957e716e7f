package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/niliflix/internal/shared"
	"github.com/desertthunder/niliflix/internal/ui"
	"github.com/urfave/cli/v3"
)

// tuiLogPath receives log output while the TUI owns the terminal.
const tuiLogPath = "./tmp/niliflix-tui.log"

// TUI launches the interactive movie browser.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	if !r.session.Current().Authenticated() {
		return fmt.Errorf("%w: run niliflix login first", shared.ErrUnauthenticated)
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger(tuiLogPath)
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	shared.SetLogLevel(fileLogger, r.config.Log.Level)
	r.SetLogger(fileLogger)

	model := ui.NewModel(ctx, r.catalog, r.favorites, r.profile, fileLogger)
	defer model.Close()

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
