// Package prompt builds the system prompt for a chat turn: the
// mandatory base instructions, conditionally attached node fragments in
// a fixed priority order, and the learned user profile.
package prompt

import (
	"context"
	"fmt"

	"github.com/arka-labs/strategist-api/internal/database"
	"github.com/arka-labs/strategist-api/internal/intent"
	"github.com/arka-labs/strategist-api/internal/models"
)

// FragmentLoader resolves a fragment name to its instruction text.
// A missing fragment yields an empty string, not an error.
type FragmentLoader interface {
	Load(ctx context.Context, name models.FragmentName) (string, error)
}

// StoreLoader loads fragments from the database with built-in defaults
// as fallback, so a fresh deployment works before any operator has
// imported fragments through the configure CLI.
type StoreLoader struct {
	repo database.FragmentRepositoryInterface
}

// NewStoreLoader creates a fragment loader backed by the fragment repository
func NewStoreLoader(repo database.FragmentRepositoryInterface) *StoreLoader {
	return &StoreLoader{repo: repo}
}

// Load returns the stored fragment content, the built-in default when
// no row exists, or an empty string when the fragment is unknown.
func (l *StoreLoader) Load(ctx context.Context, name models.FragmentName) (string, error) {
	fragment, err := l.repo.Get(ctx, name)
	if err != nil {
		return "", fmt.Errorf("failed to load fragment %s: %w", name, err)
	}
	if fragment != nil && fragment.Content != "" {
		return fragment.Content, nil
	}
	return defaultFragments[name], nil
}

// nodeFragments maps each intent tag to its fragment name
var nodeFragments = map[intent.Tag]models.FragmentName{
	intent.TagBias:        models.FragmentNodeBias,
	intent.TagRiskGuard:   models.FragmentNodeRiskGuard,
	intent.TagMarketNews:  models.FragmentNodeMarket,
	intent.TagPerformance: models.FragmentNodePerformance,
	intent.TagCompliance:  models.FragmentNodeCompliance,
	intent.TagSolidGroup:  models.FragmentNodeSolidGroup,
}
