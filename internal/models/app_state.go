package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// AppState is a keyed per-user state record. Background jobs use
// date-scoped keys instead of in-process flags so behavior survives
// process restarts.
type AppState struct {
	UserID    uuid.UUID `json:"user_id"`
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

// InsightSentKey returns the date-scoped key marking that a proactive
// insight notification was already produced for the given day.
func InsightSentKey(day time.Time) string {
	return fmt.Sprintf("insight_sent:%s", day.Format("2006-01-02"))
}
