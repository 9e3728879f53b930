package server

import (
	"context"
	"fmt"

	"github.com/luozhen/go-chat-keeper/internal/store"
	"github.com/luozhen/go-chat-keeper/models"
)

// Seed fills the demo project with two conversations so a fresh dashboard
// has something to show: five DeepSeek messages with a system prompt and
// three Qwen messages without one.
func Seed(ctx context.Context, repo store.HistoryRepository, projectID string) error {
	type row struct {
		provider models.ProviderID
		role     string
		content  string
	}

	rows := []row{
		{models.ProviderDeepSeek, "system", "You are a concise coding assistant."},
		{models.ProviderDeepSeek, "user", "How do I read a file line by line in Go?"},
		{models.ProviderDeepSeek, "assistant", "Use bufio.Scanner over the opened file and call Scan in a loop."},
		{models.ProviderDeepSeek, "user", "What about very long lines?"},
		{models.ProviderDeepSeek, "assistant", "Raise the scanner buffer with Buffer, or switch to bufio.Reader.ReadString."},
		{models.ProviderQwen, "user", "把这段错误信息翻译成中文"},
		{models.ProviderQwen, "assistant", "好的，这段错误的意思是连接被拒绝。"},
		{models.ProviderQwen, "user", "谢谢"},
	}

	seq := make(map[models.ProviderID]int)
	for _, r := range rows {
		seq[r.provider]++
		err := repo.Append(ctx, models.ConversationMessage{
			ProjectID:      projectID,
			Provider:       r.provider,
			SequenceNumber: seq[r.provider],
			Role:           r.role,
			Content:        r.content,
		})
		if err != nil {
			return fmt.Errorf("seed demo history: %w", err)
		}
	}

	return nil
}
