package models

import (
	"time"

	"github.com/google/uuid"
)

// PreferenceCategory classifies a learned preference
type PreferenceCategory string

const (
	// CategoryThinkingStyle covers how the user reasons through problems
	CategoryThinkingStyle PreferenceCategory = "gaya_berpikir"
	// CategoryCommunicationStyle covers how the user likes replies framed
	CategoryCommunicationStyle PreferenceCategory = "gaya_komunikasi"
	// CategoryBusinessContext covers the user's business or work situation
	CategoryBusinessContext PreferenceCategory = "konteks_bisnis"
	// CategoryFormatPreference covers formatting and length preferences
	CategoryFormatPreference PreferenceCategory = "preferensi_format"
	// CategoryRiskFocus covers the user's risk appetite and concerns
	CategoryRiskFocus PreferenceCategory = "fokus_risiko"
	// CategoryDecisionHabit covers recurring decision-making habits
	CategoryDecisionHabit PreferenceCategory = "kebiasaan_keputusan"
)

const (
	// MinPreferenceConfidence is the lowest confidence the extractor accepts
	MinPreferenceConfidence = 0.5
	// MaxPreferenceConfidence is the highest confidence the extractor accepts
	MaxPreferenceConfidence = 1.0
)

// PreferenceCategories lists all valid categories in a stable order
var PreferenceCategories = []PreferenceCategory{
	CategoryThinkingStyle,
	CategoryCommunicationStyle,
	CategoryBusinessContext,
	CategoryFormatPreference,
	CategoryRiskFocus,
	CategoryDecisionHabit,
}

// IsValid reports whether the category is one of the fixed set
func (c PreferenceCategory) IsValid() bool {
	switch c {
	case CategoryThinkingStyle, CategoryCommunicationStyle, CategoryBusinessContext,
		CategoryFormatPreference, CategoryRiskFocus, CategoryDecisionHabit:
		return true
	default:
		return false
	}
}

// Preference is a durable, confidence-scored insight about the user,
// mined from conversation by the background extractor. Deduplicated by
// (user_id, category, insight); re-derivation of the same insight
// updates confidence and source in place.
type Preference struct {
	ID            uuid.UUID          `json:"id"`
	UserID        uuid.UUID          `json:"user_id"`
	Category      PreferenceCategory `json:"category"`
	Insight       string             `json:"insight"`
	Confidence    float64            `json:"confidence"`
	SourceSummary string             `json:"source_summary,omitempty"`
	CreatedAt     time.Time          `json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`
}

// ValidConfidence reports whether the confidence is inside the accepted range
func ValidConfidence(c float64) bool {
	return c >= MinPreferenceConfidence && c <= MaxPreferenceConfidence
}

// PersonaFeedback is a target-scoped observation about how a persona
// voice lands with the user. Same shape and merge semantics as
// Preference, deduplicated by (user_id, target, feedback).
type PersonaFeedback struct {
	ID         uuid.UUID `json:"id"`
	UserID     uuid.UUID `json:"user_id"`
	Target     string    `json:"target"`
	Feedback   string    `json:"feedback"`
	Confidence float64   `json:"confidence"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
