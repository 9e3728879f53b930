package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/luozhen/go-chat-keeper/internal/logger"
	"github.com/luozhen/go-chat-keeper/internal/store"
	"github.com/luozhen/go-chat-keeper/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHandlers(t *testing.T) (http.Handler, store.HistoryRepository) {
	t.Helper()
	db, err := store.NewSQLiteDB(":memory:", logger.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo := store.NewHistoryRepository(db, logger.Nop())
	return NewHandlers(repo, logger.Nop()).Init(), repo
}

func seedProject(t *testing.T, repo store.HistoryRepository, projectID string, provider models.ProviderID, roles ...string) {
	t.Helper()
	for i, role := range roles {
		require.NoError(t, repo.Append(context.Background(), models.ConversationMessage{
			ProjectID:      projectID,
			Provider:       provider,
			SequenceNumber: i + 1,
			Role:           role,
			Content:        "hello world",
		}))
	}
}

func doRequest(t *testing.T, handler http.Handler, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

// ── GET /providers ───────────────────────────────────────────────────────────

func TestGetProviders_ListsAllKnownProviders(t *testing.T) {
	handler, repo := newTestHandlers(t)
	seedProject(t, repo, "proj-1", models.ProviderDeepSeek, "system", "user", "assistant")

	rec := doRequest(t, handler, http.MethodGet, "/api/conversation/proj-1/providers")

	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[models.ProviderID]models.ProviderStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp, 4, "every registry provider gets an entry")

	ds := resp[models.ProviderDeepSeek]
	assert.True(t, ds.Active)
	require.NotNil(t, ds.Summary)
	assert.Equal(t, 3, ds.Summary.TotalMessages)
	assert.Equal(t, 1, ds.Summary.UserMessages)
	assert.Equal(t, 1, ds.Summary.AssistantMessages)
	assert.True(t, ds.Summary.HasSystemPrompt)

	qw := resp[models.ProviderQwen]
	assert.False(t, qw.Active)
	assert.Nil(t, qw.Summary)
}

func TestGetProviders_EmptyProject(t *testing.T) {
	handler, _ := newTestHandlers(t)

	rec := doRequest(t, handler, http.MethodGet, "/api/conversation/empty/providers")

	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[models.ProviderID]models.ProviderStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	for id, status := range resp {
		assert.False(t, status.Active, "provider %s must be inactive", id)
	}
}

// ── GET /summary ─────────────────────────────────────────────────────────────

func TestGetSummary(t *testing.T) {
	handler, repo := newTestHandlers(t)
	seedProject(t, repo, "proj-1", models.ProviderQwen, "user", "assistant", "user")

	rec := doRequest(t, handler, http.MethodGet, "/api/conversation/proj-1/summary?provider=qwen")

	require.Equal(t, http.StatusOK, rec.Code)

	var summary models.ConversationSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
	assert.Equal(t, 3, summary.TotalMessages)
	assert.Equal(t, 2, summary.UserMessages)
	assert.False(t, summary.HasSystemPrompt)
	assert.Equal(t, "qwen", summary.Provider)
}

func TestGetSummary_UnsupportedProvider(t *testing.T) {
	handler, _ := newTestHandlers(t)

	rec := doRequest(t, handler, http.MethodGet, "/api/conversation/proj-1/summary?provider=claude")

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Unsupported provider")
}

func TestGetSummary_MissingProvider(t *testing.T) {
	handler, _ := newTestHandlers(t)

	rec := doRequest(t, handler, http.MethodGet, "/api/conversation/proj-1/summary")

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, strings.ToLower(rec.Body.String()), "provider")
}

// ── GET /stats ───────────────────────────────────────────────────────────────

func TestGetStats(t *testing.T) {
	handler, repo := newTestHandlers(t)
	seedProject(t, repo, "proj-1", models.ProviderKimi, "user", "assistant")

	rec := doRequest(t, handler, http.MethodGet, "/api/conversation/proj-1/stats")

	require.Equal(t, http.StatusOK, rec.Code)

	var stats models.StatsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, "proj-1", stats.ProjectID)
	require.Len(t, stats.Providers, 1, "only providers with history appear in stats")

	km := stats.Providers[0]
	assert.Equal(t, "kimi", km.Provider)
	assert.Equal(t, 2, km.TotalMessages)
	assert.Equal(t, 8192, km.ContextWindow)
	// "hello world" is 11 latin chars, 3 tokens per message
	assert.Equal(t, 6, km.EstimatedTokens)
	assert.False(t, km.OptimizationApplied)
	assert.False(t, stats.LastUpdated.IsZero())
}

func TestGetStats_UsageCappedOnWire(t *testing.T) {
	handler, repo := newTestHandlers(t)

	// One huge message blows well past kimi's 8192-token window.
	require.NoError(t, repo.Append(context.Background(), models.ConversationMessage{
		ProjectID:      "proj-1",
		Provider:       models.ProviderKimi,
		SequenceNumber: 1,
		Role:           "user",
		Content:        strings.Repeat("x", 8192*4*2),
	}))

	rec := doRequest(t, handler, http.MethodGet, "/api/conversation/proj-1/stats")

	require.Equal(t, http.StatusOK, rec.Code)

	var stats models.StatsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	require.Len(t, stats.Providers, 1)
	assert.Equal(t, 100.0, stats.Providers[0].UsagePercentage)
	assert.Greater(t, stats.Providers[0].EstimatedTokens, stats.Providers[0].ContextWindow,
		"the raw token count is not capped")
	assert.True(t, stats.Providers[0].OptimizationApplied)
	assert.NotNil(t, stats.Providers[0].LastOptimization)
}

// ── DELETE /history ──────────────────────────────────────────────────────────

func TestClearHistory(t *testing.T) {
	handler, repo := newTestHandlers(t)
	seedProject(t, repo, "proj-1", models.ProviderDeepSeek, "user", "assistant")
	seedProject(t, repo, "proj-1", models.ProviderQwen, "user")

	rec := doRequest(t, handler, http.MethodDelete, "/api/conversation/proj-1/history?provider=deepseek")

	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.ClearResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Contains(t, resp.Message, "2 messages")

	messages, err := repo.Messages(context.Background(), "proj-1")
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, models.ProviderQwen, messages[0].Provider)
}

func TestClearHistory_UnsupportedProvider(t *testing.T) {
	handler, _ := newTestHandlers(t)

	rec := doRequest(t, handler, http.MethodDelete, "/api/conversation/proj-1/history?provider=gemini")

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Unsupported provider")
}

// ── POST /reset-all ──────────────────────────────────────────────────────────

func TestResetAll(t *testing.T) {
	handler, repo := newTestHandlers(t)
	seedProject(t, repo, "proj-1", models.ProviderDeepSeek, "user")
	seedProject(t, repo, "proj-1", models.ProviderQwen, "user")

	rec := doRequest(t, handler, http.MethodPost, "/api/conversation/proj-1/reset-all")

	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.ResetAllResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, []string{"deepseek", "qwen"}, resp.ClearedProviders)
	assert.Contains(t, resp.Message, "2 providers")

	messages, err := repo.Messages(context.Background(), "proj-1")
	require.NoError(t, err)
	assert.Empty(t, messages)
}

func TestResetAll_EmptyProject(t *testing.T) {
	handler, _ := newTestHandlers(t)

	rec := doRequest(t, handler, http.MethodPost, "/api/conversation/empty/reset-all")

	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.ResetAllResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Empty(t, resp.ClearedProviders)
}

// ── seed ─────────────────────────────────────────────────────────────────────

func TestSeed(t *testing.T) {
	handler, repo := newTestHandlers(t)
	require.NoError(t, Seed(context.Background(), repo, "demo"))

	rec := doRequest(t, handler, http.MethodGet, "/api/conversation/demo/providers")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[models.ProviderID]models.ProviderStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	require.NotNil(t, resp[models.ProviderDeepSeek].Summary)
	assert.Equal(t, 5, resp[models.ProviderDeepSeek].Summary.TotalMessages)
	assert.True(t, resp[models.ProviderDeepSeek].Summary.HasSystemPrompt)

	require.NotNil(t, resp[models.ProviderQwen].Summary)
	assert.Equal(t, 3, resp[models.ProviderQwen].Summary.TotalMessages)
	assert.False(t, resp[models.ProviderQwen].Summary.HasSystemPrompt)
}
