package service

import (
	"testing"
	"time"

	"github.com/luozhen/go-chat-keeper/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func activeState(id models.ProviderID, total, tokens, window int) models.ProviderConversationState {
	return models.ProviderConversationState{
		Provider:        id,
		Active:          true,
		TotalMessages:   total,
		EstimatedTokens: tokens,
		ContextWindow:   window,
		UsagePercentage: models.UsagePercentage(tokens, window),
	}
}

// ── ReplaceAll / State / Snapshot ────────────────────────────────────────────

func TestStateStore_Empty(t *testing.T) {
	s := NewStateStore()

	_, ok := s.State(models.ProviderDeepSeek)
	assert.False(t, ok)

	snap := s.Snapshot()
	assert.Empty(t, snap.States)
	assert.Zero(t, snap.Seq)
}

func TestStateStore_ReplaceAll_DropsAbsentProviders(t *testing.T) {
	s := NewStateStore()
	now := time.Now()

	s.ReplaceAll(map[models.ProviderID]models.ProviderConversationState{
		models.ProviderDeepSeek: activeState(models.ProviderDeepSeek, 5, 100, 1000),
		models.ProviderQwen:     activeState(models.ProviderQwen, 3, 50, 1000),
	}, 1, now)

	s.ReplaceAll(map[models.ProviderID]models.ProviderConversationState{
		models.ProviderQwen: activeState(models.ProviderQwen, 4, 60, 1000),
	}, 2, now)

	_, ok := s.State(models.ProviderDeepSeek)
	assert.False(t, ok, "provider absent from the new fetch must be dropped")

	st, ok := s.State(models.ProviderQwen)
	require.True(t, ok)
	assert.Equal(t, 4, st.TotalMessages)
	assert.Equal(t, uint64(2), s.Seq())
}

func TestStateStore_Snapshot_IsACopy(t *testing.T) {
	s := NewStateStore()
	s.ReplaceAll(map[models.ProviderID]models.ProviderConversationState{
		models.ProviderKimi: activeState(models.ProviderKimi, 2, 10, 100),
	}, 1, time.Now())

	snap := s.Snapshot()
	snap.States[models.ProviderKimi] = models.ProviderConversationState{Provider: models.ProviderKimi}
	delete(snap.States, models.ProviderKimi)

	st, ok := s.State(models.ProviderKimi)
	require.True(t, ok)
	assert.Equal(t, 2, st.TotalMessages, "mutating a snapshot must not touch the store")
}

func TestStateStore_ReplaceAll_CopiesInput(t *testing.T) {
	s := NewStateStore()
	in := map[models.ProviderID]models.ProviderConversationState{
		models.ProviderDoubao: activeState(models.ProviderDoubao, 7, 10, 100),
	}
	s.ReplaceAll(in, 1, time.Now())

	delete(in, models.ProviderDoubao)

	_, ok := s.State(models.ProviderDoubao)
	assert.True(t, ok, "the store must hold its own copy of the input map")
}

// ── Aggregate ────────────────────────────────────────────────────────────────

func TestStateStore_Aggregate(t *testing.T) {
	s := NewStateStore()
	inactive := models.ProviderConversationState{
		Provider:        models.ProviderKimi,
		EstimatedTokens: 200,
		ContextWindow:   1000,
		UsagePercentage: 20,
	}
	s.ReplaceAll(map[models.ProviderID]models.ProviderConversationState{
		models.ProviderDeepSeek: activeState(models.ProviderDeepSeek, 5, 8000, 10000),
		models.ProviderQwen:     activeState(models.ProviderQwen, 3, 12000, 10000),
		models.ProviderKimi:     inactive,
	}, 1, time.Now())

	agg := s.Aggregate()

	assert.Equal(t, 2, agg.ActiveCount, "inactive providers do not count as active")
	assert.Equal(t, 20200, agg.TotalTokens, "token totals include inactive providers")
	assert.InDelta(t, 120.0, agg.MaxUsagePercentage, 0.001, "max usage stays unclamped")
}

func TestStateStore_Aggregate_Empty(t *testing.T) {
	agg := NewStateStore().Aggregate()
	assert.Zero(t, agg.ActiveCount)
	assert.Zero(t, agg.TotalTokens)
	assert.Zero(t, agg.MaxUsagePercentage)
}

// ── ActiveProviders ──────────────────────────────────────────────────────────

func TestStateStore_ActiveProviders_RegistryOrder(t *testing.T) {
	s := NewStateStore()
	s.ReplaceAll(map[models.ProviderID]models.ProviderConversationState{
		models.ProviderQwen:     activeState(models.ProviderQwen, 3, 0, 100),
		models.ProviderDoubao:   activeState(models.ProviderDoubao, 1, 0, 100),
		models.ProviderDeepSeek: activeState(models.ProviderDeepSeek, 5, 0, 100),
		models.ProviderKimi:     {Provider: models.ProviderKimi, Active: true}, // zero messages
	}, 1, time.Now())

	got := s.ActiveProviders()

	assert.Equal(t, []models.ProviderID{
		models.ProviderDeepSeek,
		models.ProviderQwen,
		models.ProviderDoubao,
	}, got)
}

func TestStateStore_ActiveProviders_UnknownIDsSortedAfterKnown(t *testing.T) {
	s := NewStateStore()
	s.ReplaceAll(map[models.ProviderID]models.ProviderConversationState{
		"zephyr":              activeState("zephyr", 1, 0, 100),
		"aurora":              activeState("aurora", 2, 0, 100),
		models.ProviderDoubao: activeState(models.ProviderDoubao, 1, 0, 100),
	}, 1, time.Now())

	got := s.ActiveProviders()

	assert.Equal(t, []models.ProviderID{models.ProviderDoubao, "aurora", "zephyr"}, got)
}
