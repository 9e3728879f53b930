package store

import (
	sq "github.com/Masterminds/squirrel"

	"github.com/luozhen/go-chat-keeper/models"
)

var historyColumns = []string{
	"id", "project_id", "provider", "sequence_number",
	"role", "content", "images", "created_at",
}

func buildSelectMessagesQuery(projectID string) (string, []any, error) {
	return sq.Select(historyColumns...).
		From("conversation_history").
		Where(sq.Eq{"project_id": projectID}).
		OrderBy("provider", "sequence_number").
		ToSql()
}

func buildInsertMessageQuery(msg models.ConversationMessage) (string, []any, error) {
	return sq.Insert("conversation_history").
		Columns(historyColumns...).
		Values(
			msg.ID, msg.ProjectID, string(msg.Provider), msg.SequenceNumber,
			msg.Role, msg.Content, msg.Images, msg.CreatedAt,
		).
		ToSql()
}

func buildDeleteProviderQuery(projectID string, provider models.ProviderID) (string, []any, error) {
	return sq.Delete("conversation_history").
		Where(sq.Eq{"project_id": projectID, "provider": string(provider)}).
		ToSql()
}

func buildDeleteProjectQuery(projectID string) (string, []any, error) {
	return sq.Delete("conversation_history").
		Where(sq.Eq{"project_id": projectID}).
		ToSql()
}

func buildSelectProvidersQuery(projectID string) (string, []any, error) {
	return sq.Select("DISTINCT provider").
		From("conversation_history").
		Where(sq.Eq{"project_id": projectID}).
		OrderBy("provider").
		ToSql()
}
