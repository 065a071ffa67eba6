package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/mediiq/mediiq-api/internal/model"
	"github.com/mediiq/mediiq-api/internal/repository"
)

type chatRepository struct {
	db *sqlx.DB
}

func NewChatRepository(db *sqlx.DB) repository.ChatRepository {
	return &chatRepository{db: db}
}

func (r *chatRepository) CreateMessage(ctx context.Context, msg *model.ChatMessage) error {
	query := `
		INSERT INTO chat_messages (id, scope, role, content, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	msg.CreatedAt = time.Now()
	_, err := r.db.ExecContext(ctx, query,
		msg.ID, msg.Scope, msg.Role, msg.Content, msg.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create chat message: %w", err)
	}
	return nil
}

func (r *chatRepository) ListMessages(ctx context.Context, scope string, limit int) ([]*model.ChatMessage, error) {
	query := `
		SELECT * FROM (
			SELECT * FROM chat_messages
			WHERE scope = $1
			ORDER BY created_at DESC
			LIMIT $2
		) recent ORDER BY created_at ASC
	`
	var msgs []*model.ChatMessage
	err := r.db.SelectContext(ctx, &msgs, query, scope, limit)
	return msgs, err
}

func (r *chatRepository) GetUsage(ctx context.Context, scope, date string) (*model.ChatUsage, error) {
	query := `SELECT * FROM chat_usage WHERE scope = $1 AND date = $2`
	var usage model.ChatUsage
	err := r.db.GetContext(ctx, &usage, query, scope, date)
	if err != nil {
		return nil, err
	}
	return &usage, nil
}

// IncrementUsage bumps the counter for the given local date and returns
// the new count. A fresh date row starts at 1, which is what resets the
// quota at local date rollover.
func (r *chatRepository) IncrementUsage(ctx context.Context, scope, date string) (int, error) {
	query := `
		INSERT INTO chat_usage (scope, date, count, updated_at)
		VALUES ($1, $2, 1, $3)
		ON CONFLICT (scope, date) DO UPDATE SET
			count = chat_usage.count + 1,
			updated_at = EXCLUDED.updated_at
		RETURNING count
	`
	var count int
	err := r.db.GetContext(ctx, &count, query, scope, date, time.Now())
	if err != nil {
		return 0, fmt.Errorf("failed to increment chat usage: %w", err)
	}
	return count, nil
}
