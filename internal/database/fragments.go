package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/arka-labs/strategist-api/internal/models"
)

// FragmentRepository handles prompt fragment database operations.
// Fragments are operator-managed runtime configuration, edited through
// the configure CLI.
type FragmentRepository struct {
	db *DB
}

// NewFragmentRepository creates a new fragment repository
func NewFragmentRepository(db *DB) *FragmentRepository {
	return &FragmentRepository{db: db}
}

// Get retrieves a fragment by name. Returns (nil, nil) when the
// fragment does not exist; callers decide whether that is fatal (base)
// or degradable (node fragments).
func (r *FragmentRepository) Get(ctx context.Context, name models.FragmentName) (*models.PromptFragment, error) {
	fragment := &models.PromptFragment{}
	query := `
		SELECT name, content, updated_at
		FROM prompt_fragments
		WHERE name = $1
	`

	err := r.db.QueryRowContext(ctx, query, name).Scan(
		&fragment.Name,
		&fragment.Content,
		&fragment.UpdatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get prompt fragment: %w", err)
	}

	return fragment, nil
}

// List retrieves all stored fragments
func (r *FragmentRepository) List(ctx context.Context) ([]*models.PromptFragment, error) {
	query := `
		SELECT name, content, updated_at
		FROM prompt_fragments
		ORDER BY name ASC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list prompt fragments: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			_ = closeErr
		}
	}()

	var fragments []*models.PromptFragment
	for rows.Next() {
		f := &models.PromptFragment{}
		if err := rows.Scan(&f.Name, &f.Content, &f.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan prompt fragment: %w", err)
		}
		fragments = append(fragments, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate prompt fragments: %w", err)
	}

	return fragments, nil
}

// Upsert stores a fragment, replacing any existing content
func (r *FragmentRepository) Upsert(ctx context.Context, fragment *models.PromptFragment) error {
	query := `
		INSERT INTO prompt_fragments (name, content, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (name) DO UPDATE
		SET content = EXCLUDED.content,
		    updated_at = EXCLUDED.updated_at
		RETURNING updated_at
	`

	err := r.db.QueryRowContext(ctx, query,
		fragment.Name,
		fragment.Content,
		time.Now(),
	).Scan(&fragment.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to upsert prompt fragment: %w", err)
	}

	return nil
}
