package database

import (
	"context"
	"fmt"
	"time"

	"github.com/arka-labs/strategist-api/internal/models"
	"github.com/google/uuid"
)

// PreferenceRepository handles learned preference database operations
type PreferenceRepository struct {
	db *DB
}

// NewPreferenceRepository creates a new preference repository
func NewPreferenceRepository(db *DB) *PreferenceRepository {
	return &PreferenceRepository{db: db}
}

// GetByUserID retrieves all learned preferences for a user, oldest first
// so category grouping in the prompt stays stable between requests.
func (r *PreferenceRepository) GetByUserID(ctx context.Context, userID uuid.UUID) ([]*models.Preference, error) {
	query := `
		SELECT id, user_id, category, insight, confidence, COALESCE(source_summary, ''), created_at, updated_at
		FROM preferences
		WHERE user_id = $1
		ORDER BY created_at ASC, id ASC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get preferences: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			_ = closeErr
		}
	}()

	var prefs []*models.Preference
	for rows.Next() {
		p := &models.Preference{}
		if err := rows.Scan(&p.ID, &p.UserID, &p.Category, &p.Insight, &p.Confidence, &p.SourceSummary, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan preference: %w", err)
		}
		prefs = append(prefs, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate preferences: %w", err)
	}

	return prefs, nil
}

// Upsert inserts a preference or, when the (user_id, category, insight)
// key already exists, updates confidence, source and updated_at in
// place. This is what makes re-running the extractor over overlapping
// windows idempotent.
func (r *PreferenceRepository) Upsert(ctx context.Context, pref *models.Preference) error {
	if pref.ID == uuid.Nil {
		pref.ID = uuid.New()
	}

	query := `
		INSERT INTO preferences (id, user_id, category, insight, confidence, source_summary, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (user_id, category, insight) DO UPDATE
		SET confidence = EXCLUDED.confidence,
		    source_summary = EXCLUDED.source_summary,
		    updated_at = EXCLUDED.updated_at
		RETURNING id, created_at, updated_at
	`

	now := time.Now()
	err := r.db.QueryRowContext(ctx, query,
		pref.ID,
		pref.UserID,
		pref.Category,
		pref.Insight,
		pref.Confidence,
		pref.SourceSummary,
		now,
		now,
	).Scan(&pref.ID, &pref.CreatedAt, &pref.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to upsert preference: %w", err)
	}

	return nil
}

// DeleteByUserID removes all preferences for a user (history clear only)
func (r *PreferenceRepository) DeleteByUserID(ctx context.Context, userID uuid.UUID) error {
	query := `DELETE FROM preferences WHERE user_id = $1`

	if _, err := r.db.ExecContext(ctx, query, userID); err != nil {
		return fmt.Errorf("failed to delete preferences: %w", err)
	}

	return nil
}

// PersonaFeedbackRepository handles persona feedback database operations
type PersonaFeedbackRepository struct {
	db *DB
}

// NewPersonaFeedbackRepository creates a new persona feedback repository
func NewPersonaFeedbackRepository(db *DB) *PersonaFeedbackRepository {
	return &PersonaFeedbackRepository{db: db}
}

// GetByUserID retrieves all persona feedback entries for a user
func (r *PersonaFeedbackRepository) GetByUserID(ctx context.Context, userID uuid.UUID) ([]*models.PersonaFeedback, error) {
	query := `
		SELECT id, user_id, target, feedback, confidence, created_at, updated_at
		FROM persona_feedback
		WHERE user_id = $1
		ORDER BY created_at ASC, id ASC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get persona feedback: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			_ = closeErr
		}
	}()

	var entries []*models.PersonaFeedback
	for rows.Next() {
		f := &models.PersonaFeedback{}
		if err := rows.Scan(&f.ID, &f.UserID, &f.Target, &f.Feedback, &f.Confidence, &f.CreatedAt, &f.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan persona feedback: %w", err)
		}
		entries = append(entries, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate persona feedback: %w", err)
	}

	return entries, nil
}

// Upsert inserts a persona feedback entry or updates confidence in
// place when the (user_id, target, feedback) key already exists.
func (r *PersonaFeedbackRepository) Upsert(ctx context.Context, fb *models.PersonaFeedback) error {
	if fb.ID == uuid.Nil {
		fb.ID = uuid.New()
	}

	query := `
		INSERT INTO persona_feedback (id, user_id, target, feedback, confidence, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (user_id, target, feedback) DO UPDATE
		SET confidence = EXCLUDED.confidence,
		    updated_at = EXCLUDED.updated_at
		RETURNING id, created_at, updated_at
	`

	now := time.Now()
	err := r.db.QueryRowContext(ctx, query,
		fb.ID,
		fb.UserID,
		fb.Target,
		fb.Feedback,
		fb.Confidence,
		now,
		now,
	).Scan(&fb.ID, &fb.CreatedAt, &fb.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to upsert persona feedback: %w", err)
	}

	return nil
}

// DeleteByUserID removes all persona feedback for a user (history clear only)
func (r *PersonaFeedbackRepository) DeleteByUserID(ctx context.Context, userID uuid.UUID) error {
	query := `DELETE FROM persona_feedback WHERE user_id = $1`

	if _, err := r.db.ExecContext(ctx, query, userID); err != nil {
		return fmt.Errorf("failed to delete persona feedback: %w", err)
	}

	return nil
}
