package database

import (
	"context"
	"time"

	"github.com/arka-labs/strategist-api/internal/models"
	"github.com/google/uuid"
)

// MessageRepositoryInterface defines the operations the chat pipeline
// and the distillation workers need from the conversation log.
// Interfaces here enable hand-written mocks in tests.
type MessageRepositoryInterface interface {
	Append(ctx context.Context, userID uuid.UUID, role models.MessageRole, content string) (*models.Message, error)
	GetRecent(ctx context.Context, userID uuid.UUID, limit int) ([]*models.Message, error)
	Count(ctx context.Context, userID uuid.UUID) (int, error)
	DeleteByUserID(ctx context.Context, userID uuid.UUID) error
}

// SummaryRepositoryInterface defines rolling summary operations
type SummaryRepositoryInterface interface {
	GetByUserID(ctx context.Context, userID uuid.UUID) (*models.RollingSummary, error)
	Set(ctx context.Context, userID uuid.UUID, text string) error
	DeleteByUserID(ctx context.Context, userID uuid.UUID) error
}

// PreferenceRepositoryInterface defines learned preference operations
type PreferenceRepositoryInterface interface {
	GetByUserID(ctx context.Context, userID uuid.UUID) ([]*models.Preference, error)
	Upsert(ctx context.Context, pref *models.Preference) error
	DeleteByUserID(ctx context.Context, userID uuid.UUID) error
}

// PersonaFeedbackRepositoryInterface defines persona feedback operations
type PersonaFeedbackRepositoryInterface interface {
	GetByUserID(ctx context.Context, userID uuid.UUID) ([]*models.PersonaFeedback, error)
	Upsert(ctx context.Context, fb *models.PersonaFeedback) error
	DeleteByUserID(ctx context.Context, userID uuid.UUID) error
}

// FragmentRepositoryInterface defines prompt fragment lookup
type FragmentRepositoryInterface interface {
	Get(ctx context.Context, name models.FragmentName) (*models.PromptFragment, error)
}

// NotificationRepositoryInterface defines notification operations used
// by the background insight notifier and the notifications handler.
type NotificationRepositoryInterface interface {
	Create(ctx context.Context, n *models.Notification) error
	GetByUserID(ctx context.Context, userID uuid.UUID, unreadOnly bool, limit int) ([]*models.Notification, error)
	MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error
}

// AppStateRepositoryInterface defines keyed per-user state operations
type AppStateRepositoryInterface interface {
	Get(ctx context.Context, userID uuid.UUID, key string) (*models.AppState, error)
	Set(ctx context.Context, userID uuid.UUID, key, value string) error
}

// UserRepositoryInterface defines the user lookups background jobs need
type UserRepositoryInterface interface {
	GetActiveUserIDs(ctx context.Context, since time.Time) ([]uuid.UUID, error)
}

// Ensure concrete types implement the interfaces
var (
	_ MessageRepositoryInterface         = (*MessageRepository)(nil)
	_ SummaryRepositoryInterface         = (*SummaryRepository)(nil)
	_ PreferenceRepositoryInterface      = (*PreferenceRepository)(nil)
	_ PersonaFeedbackRepositoryInterface = (*PersonaFeedbackRepository)(nil)
	_ FragmentRepositoryInterface        = (*FragmentRepository)(nil)
	_ NotificationRepositoryInterface    = (*NotificationRepository)(nil)
	_ AppStateRepositoryInterface        = (*AppStateRepository)(nil)
	_ UserRepositoryInterface            = (*UserRepository)(nil)
)
