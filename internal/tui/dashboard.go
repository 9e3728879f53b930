package tui

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/luozhen/go-chat-keeper/internal/service"
	"github.com/luozhen/go-chat-keeper/models"
)

const (
	bannerDuration       = 3 * time.Second
	indicatorSuccessTime = 2 * time.Second
	indicatorFailureTime = 3 * time.Second

	usageBarWidth = 20
)

type dashboardModel struct {
	ctx      context.Context
	services *service.ClientServices

	restoring bool
	snap      service.Snapshot
	idx       int

	confirming bool
	pending    service.PendingMutation
	mutating   bool

	banner    string
	bannerGen int

	indicator    string
	indicatorErr bool
	indicatorGen int

	errMsg string
}

func newDashboardModel(ctx context.Context, services *service.ClientServices) dashboardModel {
	return dashboardModel{
		ctx:       ctx,
		services:  services,
		restoring: true,
	}
}

func (m dashboardModel) Init() tea.Cmd {
	return m.cmdRestore()
}

// ── commands ─────────────────────────────────────────────────────────────────

func (m dashboardModel) cmdRestore() tea.Cmd {
	return func() tea.Msg {
		info, err := m.services.Restoration.Run(m.ctx)
		return restoreDoneMsg{info: info, err: err}
	}
}

func (m dashboardModel) cmdRefresh() tea.Cmd {
	return func() tea.Msg {
		if err := m.services.Refresher.Refresh(m.ctx); err != nil {
			return refreshFailedMsg{err: err}
		}
		return statesRefreshedMsg{snap: m.services.Store.Snapshot()}
	}
}

func (m dashboardModel) cmdConfirm(kind service.MutationKind) tea.Cmd {
	return func() tea.Msg {
		return mutationDoneMsg{kind: kind, err: m.services.Mutations.Confirm(m.ctx)}
	}
}

func (m dashboardModel) cmdCopyRow(text string) tea.Cmd {
	return func() tea.Msg {
		return copiedMsg{err: clipboard.WriteAll(text)}
	}
}

func (m *dashboardModel) showBanner(text string) tea.Cmd {
	m.banner = text
	m.bannerGen++
	gen := m.bannerGen
	return tea.Tick(bannerDuration, func(time.Time) tea.Msg {
		return clearBannerMsg{gen: gen}
	})
}

func (m *dashboardModel) showIndicator(text string, isErr bool) tea.Cmd {
	m.indicator = text
	m.indicatorErr = isErr
	m.indicatorGen++
	gen := m.indicatorGen
	d := indicatorSuccessTime
	if isErr {
		d = indicatorFailureTime
	}
	return tea.Tick(d, func(time.Time) tea.Msg {
		return clearIndicatorMsg{gen: gen}
	})
}

// ── update ───────────────────────────────────────────────────────────────────

func (m dashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case restoreDoneMsg:
		m.restoring = false
		m.snap = m.services.Store.Snapshot()
		if msg.err != nil {
			m.errMsg = fmt.Sprintf("Session restore failed: %v", msg.err)
			return m, nil
		}
		m.errMsg = ""
		if msg.info.HasActiveConversation {
			cmd := m.showBanner(fmt.Sprintf(
				"Restored session: %s (%d messages)",
				joinTargets(msg.info.Providers), msg.info.MessageCount))
			return m, cmd
		}
		return m, nil

	case statesRefreshedMsg:
		// A snapshot stamped older than what we already show is a late
		// arrival; the store has already discarded it, skip the repaint.
		if msg.snap.Seq < m.snap.Seq {
			return m, nil
		}
		m.snap = msg.snap
		m.clampCursor()
		m.errMsg = ""
		return m, nil

	case refreshFailedMsg:
		return m, m.showIndicator(fmt.Sprintf("Refresh failed: %v", msg.err), true)

	case mutationDoneMsg:
		m.mutating = false
		if msg.err != nil {
			return m, m.showIndicator(fmt.Sprintf("Clear failed: %v", msg.err), true)
		}
		m.snap = m.services.Store.Snapshot()
		m.clampCursor()
		if msg.kind == service.MutationClearAll {
			return m, m.showIndicator("All conversations cleared", false)
		}
		return m, m.showIndicator("Conversation cleared", false)

	case copiedMsg:
		if msg.err != nil {
			return m, m.showIndicator(fmt.Sprintf("Copy failed: %v", msg.err), true)
		}
		return m, m.showIndicator("Copied", false)

	case clearBannerMsg:
		if msg.gen == m.bannerGen {
			m.banner = ""
		}
		return m, nil

	case clearIndicatorMsg:
		if msg.gen == m.indicatorGen {
			m.indicator = ""
		}
		return m, nil
	}

	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	if key.Matches(keyMsg, keys.quit) {
		return m, tea.Quit
	}

	if m.confirming {
		return m.updateConfirming(keyMsg)
	}
	if m.restoring || m.mutating {
		return m, nil
	}
	return m.updateBrowsing(keyMsg)
}

func (m dashboardModel) updateConfirming(keyMsg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(keyMsg, keys.yes):
		m.confirming = false
		m.mutating = true
		return m, m.cmdConfirm(m.pending.Kind)
	case key.Matches(keyMsg, keys.no), key.Matches(keyMsg, keys.esc):
		m.confirming = false
		_ = m.services.Mutations.Cancel()
	}
	return m, nil
}

func (m dashboardModel) updateBrowsing(keyMsg tea.KeyMsg) (tea.Model, tea.Cmd) {
	rows := m.rowOrder()

	switch {
	case key.Matches(keyMsg, keys.up):
		if m.idx > 0 {
			m.idx--
		}
	case key.Matches(keyMsg, keys.down):
		if m.idx < len(rows)-1 {
			m.idx++
		}
	case key.Matches(keyMsg, keys.refresh):
		return m, m.cmdRefresh()
	case key.Matches(keyMsg, keys.clearOne):
		if m.idx >= len(rows) {
			return m, nil
		}
		pending, err := m.services.Mutations.BeginClearOne(rows[m.idx])
		if err != nil {
			return m, m.showIndicator(err.Error(), true)
		}
		m.pending = pending
		m.confirming = true
	case key.Matches(keyMsg, keys.clearAll):
		pending, err := m.services.Mutations.BeginClearAll()
		if err != nil {
			// an empty project is informational, not a failure
			return m, m.showIndicator(err.Error(), !errors.Is(err, service.ErrNothingToClear))
		}
		m.pending = pending
		m.confirming = true
	case key.Matches(keyMsg, keys.copyRow):
		if m.idx >= len(rows) {
			return m, nil
		}
		return m, m.cmdCopyRow(m.rowSummaryText(rows[m.idx]))
	case key.Matches(keyMsg, keys.esc):
		if m.banner != "" {
			m.banner = ""
			m.bannerGen++
		}
	}
	return m, nil
}

func (m *dashboardModel) clampCursor() {
	n := len(m.rowOrder())
	if m.idx >= n {
		m.idx = n - 1
	}
	if m.idx < 0 {
		m.idx = 0
	}
}

// rowOrder lists every provider in the snapshot: registry order first, then
// unknown ids sorted, so rows never jump around between refreshes.
func (m dashboardModel) rowOrder() []models.ProviderID {
	var out []models.ProviderID
	for _, meta := range models.KnownProviders() {
		if _, ok := m.snap.States[meta.ID]; ok {
			out = append(out, meta.ID)
		}
	}
	var extras []models.ProviderID
	for id := range m.snap.States {
		if !models.IsKnown(id) {
			extras = append(extras, id)
		}
	}
	sort.Slice(extras, func(i, j int) bool { return extras[i] < extras[j] })
	return append(out, extras...)
}

// ── view ─────────────────────────────────────────────────────────────────────

func (m dashboardModel) View() string {
	if m.confirming {
		return appStyle.Render(confirmModel{pending: m.pending}.View())
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("chat-keeper"))
	b.WriteString("\n\n")

	if m.banner != "" {
		b.WriteString(bannerStyle.Render(m.banner))
		b.WriteString("\n\n")
	}

	switch {
	case m.restoring:
		b.WriteString("Restoring session...\n")
	case len(m.snap.States) == 0:
		b.WriteString(inactiveStyle.Render("No conversations."))
		b.WriteString("\n")
	default:
		rows := m.rowOrder()
		for i, id := range rows {
			b.WriteString(m.renderRow(id, i == m.idx))
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(m.renderAggregate())
		b.WriteString("\n")
	}

	if m.mutating {
		b.WriteString("\nClearing...\n")
	}
	if m.indicator != "" {
		b.WriteString("\n")
		if m.indicatorErr {
			b.WriteString(errorStyle.Render(m.indicator))
		} else {
			b.WriteString(bannerStyle.Render(m.indicator))
		}
		b.WriteString("\n")
	}
	if m.errMsg != "" {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render(m.errMsg))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render("↑/↓ select   r refresh   d clear   x clear all   c copy   q quit"))

	return appStyle.Render(b.String())
}

func (m dashboardModel) renderRow(id models.ProviderID, selected bool) string {
	st := m.snap.States[id]
	meta := models.MetaFor(id)

	cursor := "  "
	if selected {
		cursor = "> "
	}

	line := fmt.Sprintf("%s%s %-10s %s  %s",
		cursor, meta.Icon, meta.DisplayName, renderMessages(st), renderUsageBar(st))

	if !st.HasMessages() {
		return inactiveStyle.Render(line)
	}
	if selected {
		return selectedStyle.Render(line)
	}
	return line
}

func renderMessages(st models.ProviderConversationState) string {
	if !st.HasMessages() {
		return fmt.Sprintf("%-22s", "idle")
	}
	out := fmt.Sprintf("%d msg (%du/%da)", st.TotalMessages, st.UserMessages, st.AssistantMessages)
	if st.HasSystemPrompt {
		out += " +sys"
	}
	return fmt.Sprintf("%-22s", out)
}

// renderUsageBar clamps only for drawing; the printed percentage stays true
// and an over-limit conversation gets an explicit marker.
func renderUsageBar(st models.ProviderConversationState) string {
	usage := st.UsagePercentage
	filled := int(usage / 100 * usageBarWidth)
	if filled > usageBarWidth {
		filled = usageBarWidth
	}
	if filled < 0 {
		filled = 0
	}

	bar := strings.Repeat("█", filled) + strings.Repeat("░", usageBarWidth-filled)
	label := fmt.Sprintf("%.1f%%", usage)
	if st.OptimizationApplied {
		label += " ⚡"
	}

	if usage > 100 {
		return overUsageStyle.Render(fmt.Sprintf("[%s] %s !", bar, label))
	}
	return fmt.Sprintf("[%s] %s", bar, label)
}

func (m dashboardModel) renderAggregate() string {
	agg := m.services.Store.Aggregate()
	return helpStyle.Render(fmt.Sprintf(
		"%d active  |  %d tokens total  |  peak usage %.1f%%",
		agg.ActiveCount, agg.TotalTokens, agg.MaxUsagePercentage))
}

func (m dashboardModel) rowSummaryText(id models.ProviderID) string {
	st := m.snap.States[id]
	meta := models.MetaFor(id)
	return fmt.Sprintf("%s: %d messages (%d user / %d assistant), %d/%d tokens (%.1f%%)",
		meta.DisplayName, st.TotalMessages, st.UserMessages, st.AssistantMessages,
		st.EstimatedTokens, st.ContextWindow, st.UsagePercentage)
}
