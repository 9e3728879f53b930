package models

import "time"

// Wire types for the conversation-history service HTTP API. Field names
// mirror the service's snake_case JSON exactly.

// ConversationSummary is the per-provider message breakdown returned by the
// summary endpoint and embedded in the providers listing.
type ConversationSummary struct {
	TotalMessages     int    `json:"total_messages"`
	UserMessages      int    `json:"user_messages"`
	AssistantMessages int    `json:"assistant_messages"`
	HasSystemPrompt   bool   `json:"has_system_prompt"`
	Provider          string `json:"provider"`
}

// ProviderStatus is one entry of the providers listing. Summary is nil when
// the service failed to inspect that provider's history.
type ProviderStatus struct {
	Active  bool                 `json:"active"`
	Summary *ConversationSummary `json:"summary"`
}

// ProviderStats carries token accounting for one provider.
type ProviderStats struct {
	Provider            string     `json:"provider"`
	TotalMessages       int        `json:"total_messages"`
	EstimatedTokens     int        `json:"estimated_tokens"`
	ContextWindow       int        `json:"context_window"`
	UsagePercentage     float64    `json:"usage_percentage"`
	OptimizationApplied bool       `json:"optimization_applied"`
	LastOptimization    *time.Time `json:"last_optimization"`
}

// StatsResponse is the body of the stats endpoint.
type StatsResponse struct {
	ProjectID   string          `json:"project_id"`
	Providers   []ProviderStats `json:"providers"`
	LastUpdated time.Time       `json:"last_updated"`
}

// ClearResponse is the body returned after clearing one provider's history.
type ClearResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// ResetAllResponse is the body returned after a reset-all request.
type ResetAllResponse struct {
	Success          bool     `json:"success"`
	Message          string   `json:"message"`
	ClearedProviders []string `json:"cleared_providers"`
}

// ConversationMessage is one stored history entry, as persisted by the
// conversation-history service.
type ConversationMessage struct {
	ID             string     `json:"id"`
	ProjectID      string     `json:"project_id"`
	Provider       ProviderID `json:"provider"`
	SequenceNumber int        `json:"sequence_number"`
	Role           string     `json:"role"`
	Content        string     `json:"content"`
	Images         string     `json:"images,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}
