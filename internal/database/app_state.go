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

// AppStateRepository handles keyed per-user state records. Background
// jobs use date-scoped keys here instead of in-process globals so
// "already ran today" survives a restart.
type AppStateRepository struct {
	db *DB
}

// NewAppStateRepository creates a new app state repository
func NewAppStateRepository(db *DB) *AppStateRepository {
	return &AppStateRepository{db: db}
}

// Get retrieves a state record. Returns (nil, nil) when the key is unset.
func (r *AppStateRepository) Get(ctx context.Context, userID uuid.UUID, key string) (*models.AppState, error) {
	state := &models.AppState{}
	query := `
		SELECT user_id, key, value, updated_at
		FROM app_state
		WHERE user_id = $1 AND key = $2
	`

	err := r.db.QueryRowContext(ctx, query, userID, key).Scan(
		&state.UserID,
		&state.Key,
		&state.Value,
		&state.UpdatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get app state: %w", err)
	}

	return state, nil
}

// Set stores a state record, replacing any existing value for the key
func (r *AppStateRepository) Set(ctx context.Context, userID uuid.UUID, key, value string) error {
	query := `
		INSERT INTO app_state (user_id, key, value, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, key) DO UPDATE
		SET value = EXCLUDED.value,
		    updated_at = EXCLUDED.updated_at
	`

	if _, err := r.db.ExecContext(ctx, query, userID, key, value, time.Now()); err != nil {
		return fmt.Errorf("failed to set app state: %w", err)
	}

	return nil
}
