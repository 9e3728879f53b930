package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/luozhen/go-chat-keeper/internal/logger"
	"github.com/luozhen/go-chat-keeper/models"
)

// historyRepository is the sqlite-backed implementation of
// [HistoryRepository]. All queries run against the conversation_history
// table through the embedded [*DB] connection.
type historyRepository struct {
	*DB
	logger *logger.Logger
}

func NewHistoryRepository(db *DB, logger *logger.Logger) HistoryRepository {
	return &historyRepository{DB: db, logger: logger}
}

func (r *historyRepository) Append(ctx context.Context, msg models.ConversationMessage) error {
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}

	query, args, err := buildInsertMessageQuery(msg)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingQuery, err)
	}

	if _, err = r.DB.ExecContext(ctx, query, args...); err != nil {
		r.logger.Err(err).
			Str("project_id", msg.ProjectID).
			Str("provider", string(msg.Provider)).
			Msg("failed to append history message")
		return fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	return nil
}

func (r *historyRepository) Messages(ctx context.Context, projectID string) ([]models.ConversationMessage, error) {
	query, args, err := buildSelectMessagesQuery(projectID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuildingQuery, err)
	}

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Err(err).
			Str("project_id", projectID).
			Msg("failed to query history messages")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	messages := make([]models.ConversationMessage, 0, 50)
	for rows.Next() {
		var msg models.ConversationMessage
		scanErr := rows.Scan(
			&msg.ID,
			&msg.ProjectID,
			&msg.Provider,
			&msg.SequenceNumber,
			&msg.Role,
			&msg.Content,
			&msg.Images,
			&msg.CreatedAt,
		)
		if scanErr != nil {
			return nil, fmt.Errorf("%w: %w", ErrScanningRow, scanErr)
		}
		messages = append(messages, msg)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, rowsErr)
	}

	return messages, nil
}

func (r *historyRepository) Clear(ctx context.Context, projectID string, provider models.ProviderID) (int64, error) {
	query, args, err := buildDeleteProviderQuery(projectID, provider)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrBuildingQuery, err)
	}

	result, err := r.DB.ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.Err(err).
			Str("project_id", projectID).
			Str("provider", string(provider)).
			Msg("failed to clear provider history")
		return 0, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	return deleted, nil
}

func (r *historyRepository) ClearAll(ctx context.Context, projectID string) ([]string, error) {
	providers, err := r.providersOf(ctx, projectID)
	if err != nil {
		return nil, err
	}

	query, args, err := buildDeleteProjectQuery(projectID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuildingQuery, err)
	}

	if _, err = r.DB.ExecContext(ctx, query, args...); err != nil {
		r.logger.Err(err).
			Str("project_id", projectID).
			Msg("failed to clear project history")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	return providers, nil
}

func (r *historyRepository) providersOf(ctx context.Context, projectID string) ([]string, error) {
	query, args, err := buildSelectProvidersQuery(projectID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuildingQuery, err)
	}

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	providers := make([]string, 0, 4)
	for rows.Next() {
		var p string
		if scanErr := rows.Scan(&p); scanErr != nil {
			return nil, fmt.Errorf("%w: %w", ErrScanningRow, scanErr)
		}
		providers = append(providers, p)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, rowsErr)
	}

	return providers, nil
}
