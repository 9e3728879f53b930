// Package tui renders the conversation dashboard: one row per provider with
// message counts and context usage, a restored-session banner, and a
// confirmation overlay guarding destructive clears.
package tui

import (
	"context"
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/luozhen/go-chat-keeper/internal/logger"
	"github.com/luozhen/go-chat-keeper/internal/service"
)

var ErrUserQuit = errors.New("user quit")

type TUI struct {
	services *service.ClientServices
	log      *logger.Logger
}

func New(services *service.ClientServices, log *logger.Logger) (*TUI, error) {
	return &TUI{services: services, log: log}, nil
}

// Run blocks until the user quits the dashboard. The periodic refresh loop is
// started here, after the on-apply hook is wired, so every accepted snapshot
// is pushed into the program and the view repaints without user input.
func (t *TUI) Run(ctx context.Context, refreshInterval time.Duration) error {
	model := newDashboardModel(ctx, t.services)
	program := tea.NewProgram(model, tea.WithAltScreen())

	t.services.Refresher.SetOnApply(func(snap service.Snapshot) {
		program.Send(statesRefreshedMsg{snap: snap})
	})
	t.services.Refresher.Start(ctx, refreshInterval)
	defer t.services.Refresher.Stop()

	_, err := program.Run()
	if err != nil {
		return err
	}
	return ErrUserQuit
}
