// Package adapter provides the transport layer for talking to the external
// conversation-history service.
//
// The primary abstraction is [ConversationService], which decouples the
// session coordinator from the wire protocol. The package ships an HTTP/REST
// implementation ([NewHTTPConversationService]) built on resty.
//
// Transport failures and non-2xx statuses are mapped by mapHTTPError to the
// sentinel values in errors.go so callers can use [errors.Is]; a response body
// that cannot be decoded is reported as a wrapped [ErrMalformedResponse].
// Every error from this package is recoverable: callers log it and keep their
// last known state.
package adapter

import (
	"context"

	"github.com/luozhen/go-chat-keeper/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/conversation_service_mock.go -package=mock

// ConversationService defines transport-agnostic access to the
// conversation-history service. All methods honor ctx cancellation and return
// errors mappable via errors.Is to the sentinels in this package.
type ConversationService interface {
	// GetProviders fetches the per-provider activity listing for a project:
	// which backends hold a conversation and their message breakdown.
	GetProviders(ctx context.Context, projectID string) (map[models.ProviderID]models.ProviderStatus, error)

	// GetSummary fetches the message breakdown for a single provider.
	GetSummary(ctx context.Context, projectID string, provider models.ProviderID) (models.ConversationSummary, error)

	// GetStats fetches token accounting (estimated tokens, context window,
	// optimization flags) for every provider of a project.
	GetStats(ctx context.Context, projectID string) (models.StatsResponse, error)

	// ClearHistory deletes one provider's conversation history. Any 2xx
	// response counts as success.
	ClearHistory(ctx context.Context, projectID string, provider models.ProviderID) error

	// ResetAll clears conversation history for every provider of a project.
	// Any 2xx response counts as success.
	ResetAll(ctx context.Context, projectID string) (models.ResetAllResponse, error)
}
