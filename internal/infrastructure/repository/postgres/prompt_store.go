package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

const customPromptKey = "custom_prompt"

// PromptStore keeps the runtime custom-prompt override in the ai_config
// table. An absent row means no override is active.
type PromptStore struct {
	db *sql.DB
}

func NewPromptStore(db *sql.DB) *PromptStore {
	return &PromptStore{db: db}
}

func (s *PromptStore) CustomPrompt(ctx context.Context) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM ai_config WHERE key = $1`, customPromptKey).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("read custom prompt: %w", err)
	}
	return value, nil
}

func (s *PromptStore) SetCustomPrompt(ctx context.Context, prompt string) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO ai_config (key, value, updated_at) VALUES ($1,$2,now())
ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()
`, customPromptKey, prompt)
	if err != nil {
		return fmt.Errorf("save custom prompt: %w", err)
	}
	return nil
}

func (s *PromptStore) ClearCustomPrompt(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM ai_config WHERE key = $1`, customPromptKey)
	if err != nil {
		return fmt.Errorf("clear custom prompt: %w", err)
	}
	return nil
}
