// Package store persists conversation history for the development stub
// server in a sqlite database.
package store

import (
	"context"

	"github.com/luozhen/go-chat-keeper/models"
)

// HistoryRepository provides access to the conversation_history table.
type HistoryRepository interface {
	// Append stores one message. A missing id is generated.
	Append(ctx context.Context, msg models.ConversationMessage) error

	// Messages returns every message of a project ordered by provider and
	// sequence number. An unknown project yields an empty slice.
	Messages(ctx context.Context, projectID string) ([]models.ConversationMessage, error)

	// Clear deletes one provider's history and reports how many rows went.
	Clear(ctx context.Context, projectID string, provider models.ProviderID) (int64, error)

	// ClearAll deletes the whole project history and lists the providers
	// that actually had rows, sorted.
	ClearAll(ctx context.Context, projectID string) ([]string, error)
}
