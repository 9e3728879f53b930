// Package client assembles the dashboard application: session restoration,
// background refresh, and the TUI lifecycle.
package client

import (
	"context"
	"errors"

	"github.com/luozhen/go-chat-keeper/internal/config"
	"github.com/luozhen/go-chat-keeper/internal/logger"
	"github.com/luozhen/go-chat-keeper/internal/service"
	"github.com/luozhen/go-chat-keeper/internal/tui"
)

type App struct {
	services *service.ClientServices
	tui      *tui.TUI
	workers  config.ClientWorkers
	log      *logger.Logger
}

func NewApp(services *service.ClientServices, ui *tui.TUI, workers config.ClientWorkers, log *logger.Logger) (*App, error) {
	return &App{services: services, tui: ui, workers: workers, log: log}, nil
}

// Run drives the dashboard until the user quits. Session restoration and the
// refresh loop are owned by the TUI; on exit the refresher is closed so an
// in-flight fetch cannot resurrect state after the screen is gone.
func (a *App) Run() error {
	ctx := context.Background()
	defer a.services.Close()

	err := a.tui.Run(ctx, a.workers.RefreshInterval)
	if errors.Is(err, tui.ErrUserQuit) {
		a.log.Info().Msg("dashboard closed by user")
		return nil
	}
	return err
}
