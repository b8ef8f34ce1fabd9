package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/postify/postify/internal/player"
	"github.com/postify/postify/internal/shared"
	"github.com/postify/postify/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive library browser.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger("./tmp/postify-tui.log")
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	cat, db, err := r.openCatalog()
	if err != nil {
		return err
	}
	defer db.Close()

	controller := player.NewController(cat, r.logger)
	cat.SetUnbinder(controller)
	sink := player.NewExecSink(r.config.Player.Command, r.config.Player.Args, controller, r.logger)
	controller.SetSink(sink)

	model := ui.NewModel(ctx, cat, controller)
	p := tea.NewProgram(model)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return controller.Stop()
}
