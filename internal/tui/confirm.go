package tui

import (
	"fmt"
	"strings"

	"github.com/luozhen/go-chat-keeper/internal/service"
	"github.com/luozhen/go-chat-keeper/models"
)

type confirmModel struct {
	pending service.PendingMutation
}

func (m confirmModel) View() string {
	var content string
	switch m.pending.Kind {
	case service.MutationClearAll:
		content = fmt.Sprintf("Clear ALL conversations (%s)?\n\n", joinTargets(m.pending.Targets))
	default:
		content = fmt.Sprintf("Clear %s conversation?\n\n", targetName(m.pending.Targets))
	}
	content += "y yes    n no"
	return overlayBoxStyle.Render(content)
}

func targetName(targets []models.ProviderID) string {
	if len(targets) == 0 {
		return "?"
	}
	return models.MetaFor(targets[0]).DisplayName
}

func joinTargets(targets []models.ProviderID) string {
	names := make([]string, 0, len(targets))
	for _, id := range targets {
		names = append(names, models.MetaFor(id).DisplayName)
	}
	return strings.Join(names, ", ")
}
