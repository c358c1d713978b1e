package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/arka-labs/strategist-api/internal/models"
	"github.com/google/uuid"
)

// SummaryRepository handles rolling summary database operations
type SummaryRepository struct {
	db *DB
}

// NewSummaryRepository creates a new summary repository
func NewSummaryRepository(db *DB) *SummaryRepository {
	return &SummaryRepository{db: db}
}

// GetByUserID retrieves the rolling summary for a user. Returns
// (nil, nil) when the user has no summary yet; a missing summary is a
// normal state, not an error.
func (r *SummaryRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*models.RollingSummary, error) {
	summary := &models.RollingSummary{}
	query := `
		SELECT user_id, summary, updated_at
		FROM rolling_summaries
		WHERE user_id = $1
	`

	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&summary.UserID,
		&summary.Summary,
		&summary.UpdatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get rolling summary: %w", err)
	}

	return summary, nil
}

// Set replaces the rolling summary wholesale. The summarizer folds the
// previous summary into the completion call, so the stored value is
// always overwritten, never appended to.
func (r *SummaryRepository) Set(ctx context.Context, userID uuid.UUID, text string) error {
	query := `
		INSERT INTO rolling_summaries (user_id, summary, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO UPDATE
		SET summary = EXCLUDED.summary,
		    updated_at = EXCLUDED.updated_at
	`

	if _, err := r.db.ExecContext(ctx, query, userID, text, time.Now()); err != nil {
		return fmt.Errorf("failed to set rolling summary: %w", err)
	}

	return nil
}

// DeleteByUserID removes the rolling summary for a user (history clear only)
func (r *SummaryRepository) DeleteByUserID(ctx context.Context, userID uuid.UUID) error {
	query := `DELETE FROM rolling_summaries WHERE user_id = $1`

	if _, err := r.db.ExecContext(ctx, query, userID); err != nil {
		return fmt.Errorf("failed to delete rolling summary: %w", err)
	}

	return nil
}
