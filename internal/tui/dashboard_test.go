package tui

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/luozhen/go-chat-keeper/internal/logger"
	"github.com/luozhen/go-chat-keeper/internal/service"
	"github.com/luozhen/go-chat-keeper/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubConversationService struct {
	providers map[models.ProviderID]models.ProviderStatus
	stats     models.StatsResponse
	err       error
}

func (s *stubConversationService) GetProviders(context.Context, string) (map[models.ProviderID]models.ProviderStatus, error) {
	return s.providers, s.err
}

func (s *stubConversationService) GetSummary(context.Context, string, models.ProviderID) (models.ConversationSummary, error) {
	return models.ConversationSummary{}, s.err
}

func (s *stubConversationService) GetStats(context.Context, string) (models.StatsResponse, error) {
	return s.stats, s.err
}

func (s *stubConversationService) ClearHistory(context.Context, string, models.ProviderID) error {
	return s.err
}

func (s *stubConversationService) ResetAll(context.Context, string) (models.ResetAllResponse, error) {
	return models.ResetAllResponse{Success: s.err == nil}, s.err
}

func newModelUnderTest(t *testing.T, svc *stubConversationService) (dashboardModel, *service.ClientServices) {
	t.Helper()
	services := service.NewClientServices(svc, "proj-1", nil, logger.Nop())
	t.Cleanup(services.Close)
	return newDashboardModel(context.Background(), services), services
}

func keyPress(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

// ── restoration banner ───────────────────────────────────────────────────────

func TestDashboard_RestoredBanner_NamesProvidersAndCount(t *testing.T) {
	m, _ := newModelUnderTest(t, &stubConversationService{})

	updated, cmd := m.Update(restoreDoneMsg{info: models.SessionInfo{
		HasActiveConversation: true,
		Providers:             []models.ProviderID{models.ProviderDeepSeek, models.ProviderQwen},
		MessageCount:          8,
	}})
	model := updated.(dashboardModel)

	require.NotNil(t, cmd, "banner schedules its own expiry tick")
	assert.Equal(t, "Restored session: DeepSeek, Qwen (8 messages)", model.banner)
	assert.Contains(t, model.View(), "DeepSeek, Qwen")
	assert.Contains(t, model.View(), "8 messages")
}

func TestDashboard_NoBanner_WhenNothingRestored(t *testing.T) {
	m, _ := newModelUnderTest(t, &stubConversationService{})

	updated, cmd := m.Update(restoreDoneMsg{info: models.SessionInfo{}})
	model := updated.(dashboardModel)

	assert.Nil(t, cmd)
	assert.Empty(t, model.banner)
}

func TestDashboard_Banner_DismissedByEsc(t *testing.T) {
	m, _ := newModelUnderTest(t, &stubConversationService{})

	updated, _ := m.Update(restoreDoneMsg{info: models.SessionInfo{
		HasActiveConversation: true,
		Providers:             []models.ProviderID{models.ProviderDeepSeek},
		MessageCount:          5,
	}})
	model := updated.(dashboardModel)
	require.NotEmpty(t, model.banner)
	genBefore := model.bannerGen

	updated, _ = model.Update(tea.KeyMsg{Type: tea.KeyEsc})
	model = updated.(dashboardModel)

	assert.Empty(t, model.banner)
	assert.Greater(t, model.bannerGen, genBefore, "the pending expiry tick must not touch a later banner")
}

func TestDashboard_Banner_AutoClearsOnExpiry(t *testing.T) {
	m, _ := newModelUnderTest(t, &stubConversationService{})

	updated, _ := m.Update(restoreDoneMsg{info: models.SessionInfo{
		HasActiveConversation: true,
		Providers:             []models.ProviderID{models.ProviderQwen},
		MessageCount:          3,
	}})
	model := updated.(dashboardModel)
	require.NotEmpty(t, model.banner)

	// a tick from an earlier banner generation is ignored
	updated, _ = model.Update(clearBannerMsg{gen: model.bannerGen - 1})
	model = updated.(dashboardModel)
	assert.NotEmpty(t, model.banner)

	updated, _ = model.Update(clearBannerMsg{gen: model.bannerGen})
	model = updated.(dashboardModel)
	assert.Empty(t, model.banner)
}

// ── clear-all on an empty project ────────────────────────────────────────────

func TestDashboard_ClearAllOnEmptyProject_InformationalIndicator(t *testing.T) {
	svc := &stubConversationService{providers: map[models.ProviderID]models.ProviderStatus{}}
	m, services := newModelUnderTest(t, svc)

	_, err := services.Restoration.Run(context.Background())
	require.NoError(t, err)

	updated, _ := m.Update(restoreDoneMsg{info: models.SessionInfo{}})
	model := updated.(dashboardModel)

	updated, cmd := model.Update(keyPress('x'))
	model = updated.(dashboardModel)

	require.NotNil(t, cmd)
	assert.False(t, model.indicatorErr, "an empty project reads as information, not failure")
	assert.Contains(t, model.indicator, "no conversations")
	assert.False(t, model.confirming)
}
