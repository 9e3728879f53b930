package tui

import (
	"github.com/luozhen/go-chat-keeper/internal/service"
	"github.com/luozhen/go-chat-keeper/models"
)

type restoreDoneMsg struct {
	info models.SessionInfo
	err  error
}

// statesRefreshedMsg carries a freshly applied snapshot. Sent both by manual
// refresh commands and, via program.Send, by the background refresh loop.
type statesRefreshedMsg struct {
	snap service.Snapshot
}

type refreshFailedMsg struct {
	err error
}

type mutationDoneMsg struct {
	kind service.MutationKind
	err  error
}

type copiedMsg struct {
	err error
}

// clearBannerMsg expires the restored-session banner. gen guards against an
// old timer clearing a banner that was re-armed in the meantime.
type clearBannerMsg struct {
	gen int
}

// clearIndicatorMsg expires the transient status line, same generation rule.
type clearIndicatorMsg struct {
	gen int
}
