package models

import "time"

// ProviderConversationState is the latest known conversation state for one
// provider, replaced wholesale on every successful fetch. The message-count
// invariant total == user + assistant is service-provided and intentionally
// not enforced here: a violating response is stored and displayed as-is.
type ProviderConversationState struct {
	Provider          ProviderID
	Active            bool
	TotalMessages     int
	UserMessages      int
	AssistantMessages int
	HasSystemPrompt   bool

	EstimatedTokens int
	ContextWindow   int
	// UsagePercentage is derived from EstimatedTokens/ContextWindow and is
	// deliberately unclamped: values above 100 signal a conversation that
	// overran its nominal window. Only the display layer clamps.
	UsagePercentage float64

	OptimizationApplied bool
	LastOptimization    *time.Time
}

// HasMessages reports whether the provider holds a restorable conversation.
func (s ProviderConversationState) HasMessages() bool {
	return s.Active && s.TotalMessages > 0
}

// SessionInfo is handed to the restoration consumer after the bootstrap fetch.
type SessionInfo struct {
	HasActiveConversation bool
	Providers             []ProviderID
	MessageCount          int
	LastActivity          time.Time
}

// AggregateView is derived from a full snapshot and never stored.
type AggregateView struct {
	// ActiveCount counts providers with an active, non-empty conversation.
	ActiveCount int
	// TotalTokens sums estimated tokens across all known providers.
	TotalTokens int
	// MaxUsagePercentage is the highest per-provider usage, unclamped.
	MaxUsagePercentage float64
}

// UsagePercentage computes estimatedTokens/contextWindow as a percentage
// without clamping. A non-positive window yields 0.
func UsagePercentage(estimatedTokens, contextWindow int) float64 {
	if contextWindow <= 0 {
		return 0
	}
	return float64(estimatedTokens) / float64(contextWindow) * 100
}
