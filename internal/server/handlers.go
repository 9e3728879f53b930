// Package server implements the development stub of the conversation-history
// service: the five REST endpoints the dashboard consumes, backed by the
// sqlite history store.
package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/luozhen/go-chat-keeper/internal/logger"
	"github.com/luozhen/go-chat-keeper/internal/store"
	"github.com/luozhen/go-chat-keeper/models"
)

// usage above this share of the context window marks a conversation as
// optimized by the backend.
const optimizationThreshold = 70.0

type Handlers struct {
	repo store.HistoryRepository
	log  *logger.Logger
}

func NewHandlers(repo store.HistoryRepository, log *logger.Logger) *Handlers {
	return &Handlers{repo: repo, log: log}
}

func (h *Handlers) Init() http.Handler {
	r := chi.NewRouter()
	r.Use(h.withRequestID, h.withLogging)

	r.Route("/api/conversation/{projectID}", func(r chi.Router) {
		r.Get("/providers", h.getProviders)
		r.Get("/summary", h.getSummary)
		r.Get("/stats", h.getStats)
		r.Delete("/history", h.clearHistory)
		r.Post("/reset-all", h.resetAll)
	})

	return r
}

// providerAccumulator collects per-provider counters from raw history rows.
type providerAccumulator struct {
	summary models.ConversationSummary
	tokens  int
	lastAt  time.Time
}

func (h *Handlers) accumulate(r *http.Request) (map[models.ProviderID]*providerAccumulator, error) {
	projectID := chi.URLParam(r, "projectID")

	messages, err := h.repo.Messages(r.Context(), projectID)
	if err != nil {
		return nil, err
	}

	acc := make(map[models.ProviderID]*providerAccumulator)
	for _, msg := range messages {
		a, ok := acc[msg.Provider]
		if !ok {
			a = &providerAccumulator{summary: models.ConversationSummary{Provider: string(msg.Provider)}}
			acc[msg.Provider] = a
		}
		a.summary.TotalMessages++
		switch msg.Role {
		case "user":
			a.summary.UserMessages++
		case "assistant":
			a.summary.AssistantMessages++
		case "system":
			a.summary.HasSystemPrompt = true
		}
		a.tokens += estimateTokens(msg.Content)
		if msg.CreatedAt.After(a.lastAt) {
			a.lastAt = msg.CreatedAt
		}
	}

	return acc, nil
}

func (h *Handlers) getProviders(w http.ResponseWriter, r *http.Request) {
	acc, err := h.accumulate(r)
	if err != nil {
		h.serverError(w, r, err)
		return
	}

	resp := make(map[models.ProviderID]models.ProviderStatus, len(models.KnownProviders()))
	for _, meta := range models.KnownProviders() {
		status := models.ProviderStatus{}
		if a, ok := acc[meta.ID]; ok {
			summary := a.summary
			status.Active = summary.TotalMessages > 0
			status.Summary = &summary
		}
		resp[meta.ID] = status
	}
	// projects may hold history for providers outside the default set
	for id, a := range acc {
		if _, ok := resp[id]; !ok {
			summary := a.summary
			resp[id] = models.ProviderStatus{Active: summary.TotalMessages > 0, Summary: &summary}
		}
	}

	h.writeJSON(w, http.StatusOK, resp)
}

func (h *Handlers) getSummary(w http.ResponseWriter, r *http.Request) {
	provider := models.ProviderID(r.URL.Query().Get("provider"))
	if provider == "" {
		http.Error(w, "provider query parameter is required", http.StatusBadRequest)
		return
	}
	if !models.IsKnown(provider) {
		http.Error(w, fmt.Sprintf("Unsupported provider: %s", provider), http.StatusBadRequest)
		return
	}

	acc, err := h.accumulate(r)
	if err != nil {
		h.serverError(w, r, err)
		return
	}

	summary := models.ConversationSummary{Provider: string(provider)}
	if a, ok := acc[provider]; ok {
		summary = a.summary
	}
	h.writeJSON(w, http.StatusOK, summary)
}

func (h *Handlers) getStats(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "projectID")

	acc, err := h.accumulate(r)
	if err != nil {
		h.serverError(w, r, err)
		return
	}

	resp := models.StatsResponse{
		ProjectID:   projectID,
		Providers:   make([]models.ProviderStats, 0, len(acc)),
		LastUpdated: time.Now(),
	}
	for _, meta := range models.KnownProviders() {
		a, ok := acc[meta.ID]
		if !ok {
			continue
		}
		resp.Providers = append(resp.Providers, buildProviderStats(meta.ID, a))
	}
	for id, a := range acc {
		if !models.IsKnown(id) {
			resp.Providers = append(resp.Providers, buildProviderStats(id, a))
		}
	}

	h.writeJSON(w, http.StatusOK, resp)
}

func buildProviderStats(id models.ProviderID, a *providerAccumulator) models.ProviderStats {
	window := models.MetaFor(id).ContextWindow
	usage := models.UsagePercentage(a.tokens, window)
	// the wire field is capped; consumers recompute from the raw numbers
	// when they need the true value
	if usage > 100 {
		usage = 100
	}

	stats := models.ProviderStats{
		Provider:        string(id),
		TotalMessages:   a.summary.TotalMessages,
		EstimatedTokens: a.tokens,
		ContextWindow:   window,
		UsagePercentage: usage,
	}
	if models.UsagePercentage(a.tokens, window) > optimizationThreshold {
		stats.OptimizationApplied = true
		last := a.lastAt
		stats.LastOptimization = &last
	}
	return stats
}

func (h *Handlers) clearHistory(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "projectID")
	provider := models.ProviderID(r.URL.Query().Get("provider"))
	if provider == "" {
		http.Error(w, "provider query parameter is required", http.StatusBadRequest)
		return
	}
	if !models.IsKnown(provider) {
		http.Error(w, fmt.Sprintf("Unsupported provider: %s", provider), http.StatusBadRequest)
		return
	}

	deleted, err := h.repo.Clear(r.Context(), projectID, provider)
	if err != nil {
		h.serverError(w, r, err)
		return
	}

	h.log.Info().
		Str("project_id", projectID).
		Str("provider", string(provider)).
		Int64("deleted", deleted).
		Msg("cleared provider history")

	h.writeJSON(w, http.StatusOK, models.ClearResponse{
		Success: true,
		Message: fmt.Sprintf("Cleared %d messages for %s", deleted, provider),
	})
}

func (h *Handlers) resetAll(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "projectID")

	cleared, err := h.repo.ClearAll(r.Context(), projectID)
	if err != nil {
		h.serverError(w, r, err)
		return
	}

	h.log.Info().
		Str("project_id", projectID).
		Strs("providers", cleared).
		Msg("reset all conversations")

	h.writeJSON(w, http.StatusOK, models.ResetAllResponse{
		Success:          true,
		Message:          fmt.Sprintf("Cleared conversation history for %d providers", len(cleared)),
		ClearedProviders: cleared,
	})
}

func (h *Handlers) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.log.Err(err).Msg("failed to encode response body")
	}
}

func (h *Handlers) serverError(w http.ResponseWriter, r *http.Request, err error) {
	logger.FromRequest(r).Err(err).Str("path", r.URL.Path).Msg("handler failure")
	http.Error(w, "internal server error", http.StatusInternalServerError)
}
