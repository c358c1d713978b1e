package models

import (
	"time"

	"github.com/google/uuid"
)

// NotificationType classifies a notification
type NotificationType string

const (
	// NotificationTypeInsight is a proactive insight produced by the background notifier
	NotificationTypeInsight NotificationType = "insight"
	// NotificationTypeSystem is an operational notice
	NotificationTypeSystem NotificationType = "system"
)

// Notification is produced by background jobs, never by the chat path.
type Notification struct {
	ID        uuid.UUID        `json:"id"`
	UserID    uuid.UUID        `json:"user_id"`
	Type      NotificationType `json:"type"`
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	Read      bool             `json:"read"`
	CreatedAt time.Time        `json:"created_at"`
}
