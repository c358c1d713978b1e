package models

import (
	"time"

	"github.com/google/uuid"
)

// RollingSummary is the single evolving digest of a user's conversation
// history. The summarizer overwrites it wholesale on each run; it is
// never appended to.
type RollingSummary struct {
	UserID    uuid.UUID `json:"user_id"`
	Summary   string    `json:"summary"`
	UpdatedAt time.Time `json:"updated_at"`
}
