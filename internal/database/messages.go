package database

import (
	"context"
	"fmt"
	"time"

	"github.com/arka-labs/strategist-api/internal/models"
	"github.com/google/uuid"
)

// MessageRepository handles conversation message database operations
type MessageRepository struct {
	db *DB
}

// NewMessageRepository creates a new message repository
func NewMessageRepository(db *DB) *MessageRepository {
	return &MessageRepository{db: db}
}

// Append persists one conversation turn. Messages are append-only; the
// bigserial ID provides the chronological ordering the assembler needs.
func (r *MessageRepository) Append(ctx context.Context, userID uuid.UUID, role models.MessageRole, content string) (*models.Message, error) {
	msg := &models.Message{
		UserID:  userID,
		Role:    role,
		Content: content,
	}

	query := `
		INSERT INTO messages (user_id, role, content, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`

	err := r.db.QueryRowContext(ctx, query,
		userID,
		role,
		content,
		time.Now(),
	).Scan(&msg.ID, &msg.CreatedAt)

	if err != nil {
		return nil, fmt.Errorf("failed to append message: %w", err)
	}

	return msg, nil
}

// GetRecent retrieves the last `limit` messages for a user, oldest first
func (r *MessageRepository) GetRecent(ctx context.Context, userID uuid.UUID, limit int) ([]*models.Message, error) {
	query := `
		SELECT id, user_id, role, content, created_at
		FROM (
			SELECT id, user_id, role, content, created_at
			FROM messages
			WHERE user_id = $1
			ORDER BY id DESC
			LIMIT $2
		) recent
		ORDER BY id ASC
	`

	rows, err := r.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent messages: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			_ = closeErr
		}
	}()

	var messages []*models.Message
	for rows.Next() {
		msg := &models.Message{}
		if err := rows.Scan(&msg.ID, &msg.UserID, &msg.Role, &msg.Content, &msg.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate messages: %w", err)
	}

	return messages, nil
}

// Count returns the total number of messages for a user
func (r *MessageRepository) Count(ctx context.Context, userID uuid.UUID) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM messages WHERE user_id = $1`

	if err := r.db.QueryRowContext(ctx, query, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count messages: %w", err)
	}

	return count, nil
}

// DeleteByUserID removes the entire conversation log for a user.
// Only the bulk history clear calls this.
func (r *MessageRepository) DeleteByUserID(ctx context.Context, userID uuid.UUID) error {
	query := `DELETE FROM messages WHERE user_id = $1`

	if _, err := r.db.ExecContext(ctx, query, userID); err != nil {
		return fmt.Errorf("failed to delete messages: %w", err)
	}

	return nil
}
