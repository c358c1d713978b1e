package workers

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/arka-labs/strategist-api/internal/database"
	"github.com/arka-labs/strategist-api/internal/models"
	"github.com/arka-labs/strategist-api/internal/queue"
	"github.com/arka-labs/strategist-api/internal/services/ai"
)

// mockProvider is a mock implementation of ai.Provider
type mockProvider struct {
	completeFunc func(ctx context.Context, messages []ai.Message, maxTokens int) (string, error)
}

func (m *mockProvider) Complete(ctx context.Context, messages []ai.Message, maxTokens int) (string, error) {
	if m.completeFunc != nil {
		return m.completeFunc(ctx, messages, maxTokens)
	}
	return "", errors.New("not implemented")
}

// mockMessageRepo is a mock implementation of MessageRepositoryInterface
type mockMessageRepo struct {
	appendFunc         func(ctx context.Context, userID uuid.UUID, role models.MessageRole, content string) (*models.Message, error)
	getRecentFunc      func(ctx context.Context, userID uuid.UUID, limit int) ([]*models.Message, error)
	countFunc          func(ctx context.Context, userID uuid.UUID) (int, error)
	deleteByUserIDFunc func(ctx context.Context, userID uuid.UUID) error
}

func (m *mockMessageRepo) Append(ctx context.Context, userID uuid.UUID, role models.MessageRole, content string) (*models.Message, error) {
	if m.appendFunc != nil {
		return m.appendFunc(ctx, userID, role, content)
	}
	return nil, errors.New("not implemented")
}

func (m *mockMessageRepo) GetRecent(ctx context.Context, userID uuid.UUID, limit int) ([]*models.Message, error) {
	if m.getRecentFunc != nil {
		return m.getRecentFunc(ctx, userID, limit)
	}
	return nil, nil
}

func (m *mockMessageRepo) Count(ctx context.Context, userID uuid.UUID) (int, error) {
	if m.countFunc != nil {
		return m.countFunc(ctx, userID)
	}
	return 0, nil
}

func (m *mockMessageRepo) DeleteByUserID(ctx context.Context, userID uuid.UUID) error {
	if m.deleteByUserIDFunc != nil {
		return m.deleteByUserIDFunc(ctx, userID)
	}
	return nil
}

// mockSummaryRepo is a mock implementation of SummaryRepositoryInterface
type mockSummaryRepo struct {
	getByUserIDFunc    func(ctx context.Context, userID uuid.UUID) (*models.RollingSummary, error)
	setFunc            func(ctx context.Context, userID uuid.UUID, text string) error
	deleteByUserIDFunc func(ctx context.Context, userID uuid.UUID) error
}

func (m *mockSummaryRepo) GetByUserID(ctx context.Context, userID uuid.UUID) (*models.RollingSummary, error) {
	if m.getByUserIDFunc != nil {
		return m.getByUserIDFunc(ctx, userID)
	}
	return nil, nil
}

func (m *mockSummaryRepo) Set(ctx context.Context, userID uuid.UUID, text string) error {
	if m.setFunc != nil {
		return m.setFunc(ctx, userID, text)
	}
	return nil
}

func (m *mockSummaryRepo) DeleteByUserID(ctx context.Context, userID uuid.UUID) error {
	if m.deleteByUserIDFunc != nil {
		return m.deleteByUserIDFunc(ctx, userID)
	}
	return nil
}

// mockPreferenceRepo is a mock implementation of PreferenceRepositoryInterface
type mockPreferenceRepo struct {
	getByUserIDFunc    func(ctx context.Context, userID uuid.UUID) ([]*models.Preference, error)
	upsertFunc         func(ctx context.Context, pref *models.Preference) error
	deleteByUserIDFunc func(ctx context.Context, userID uuid.UUID) error
}

func (m *mockPreferenceRepo) GetByUserID(ctx context.Context, userID uuid.UUID) ([]*models.Preference, error) {
	if m.getByUserIDFunc != nil {
		return m.getByUserIDFunc(ctx, userID)
	}
	return nil, nil
}

func (m *mockPreferenceRepo) Upsert(ctx context.Context, pref *models.Preference) error {
	if m.upsertFunc != nil {
		return m.upsertFunc(ctx, pref)
	}
	return nil
}

func (m *mockPreferenceRepo) DeleteByUserID(ctx context.Context, userID uuid.UUID) error {
	if m.deleteByUserIDFunc != nil {
		return m.deleteByUserIDFunc(ctx, userID)
	}
	return nil
}

// mockFeedbackRepo is a mock implementation of PersonaFeedbackRepositoryInterface
type mockFeedbackRepo struct {
	getByUserIDFunc    func(ctx context.Context, userID uuid.UUID) ([]*models.PersonaFeedback, error)
	upsertFunc         func(ctx context.Context, fb *models.PersonaFeedback) error
	deleteByUserIDFunc func(ctx context.Context, userID uuid.UUID) error
}

func (m *mockFeedbackRepo) GetByUserID(ctx context.Context, userID uuid.UUID) ([]*models.PersonaFeedback, error) {
	if m.getByUserIDFunc != nil {
		return m.getByUserIDFunc(ctx, userID)
	}
	return nil, nil
}

func (m *mockFeedbackRepo) Upsert(ctx context.Context, fb *models.PersonaFeedback) error {
	if m.upsertFunc != nil {
		return m.upsertFunc(ctx, fb)
	}
	return nil
}

func (m *mockFeedbackRepo) DeleteByUserID(ctx context.Context, userID uuid.UUID) error {
	if m.deleteByUserIDFunc != nil {
		return m.deleteByUserIDFunc(ctx, userID)
	}
	return nil
}

// mockNotificationRepo is a mock implementation of NotificationRepositoryInterface
type mockNotificationRepo struct {
	createFunc      func(ctx context.Context, n *models.Notification) error
	getByUserIDFunc func(ctx context.Context, userID uuid.UUID, unreadOnly bool, limit int) ([]*models.Notification, error)
	markReadFunc    func(ctx context.Context, userID, notificationID uuid.UUID) error
}

func (m *mockNotificationRepo) Create(ctx context.Context, n *models.Notification) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, n)
	}
	return nil
}

func (m *mockNotificationRepo) GetByUserID(ctx context.Context, userID uuid.UUID, unreadOnly bool, limit int) ([]*models.Notification, error) {
	if m.getByUserIDFunc != nil {
		return m.getByUserIDFunc(ctx, userID, unreadOnly, limit)
	}
	return nil, nil
}

func (m *mockNotificationRepo) MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error {
	if m.markReadFunc != nil {
		return m.markReadFunc(ctx, userID, notificationID)
	}
	return nil
}

// mockAppStateRepo is a mock implementation of AppStateRepositoryInterface
type mockAppStateRepo struct {
	getFunc func(ctx context.Context, userID uuid.UUID, key string) (*models.AppState, error)
	setFunc func(ctx context.Context, userID uuid.UUID, key, value string) error
}

func (m *mockAppStateRepo) Get(ctx context.Context, userID uuid.UUID, key string) (*models.AppState, error) {
	if m.getFunc != nil {
		return m.getFunc(ctx, userID, key)
	}
	return nil, nil
}

func (m *mockAppStateRepo) Set(ctx context.Context, userID uuid.UUID, key, value string) error {
	if m.setFunc != nil {
		return m.setFunc(ctx, userID, key, value)
	}
	return nil
}

// mockUserRepo is a mock implementation of UserRepositoryInterface
type mockUserRepo struct {
	getActiveUserIDsFunc func(ctx context.Context, since time.Time) ([]uuid.UUID, error)
}

func (m *mockUserRepo) GetActiveUserIDs(ctx context.Context, since time.Time) ([]uuid.UUID, error) {
	if m.getActiveUserIDsFunc != nil {
		return m.getActiveUserIDsFunc(ctx, since)
	}
	return nil, nil
}

// mockJobQueue is a mock implementation of queue.JobQueue
type mockJobQueue struct {
	enqueueFunc func(ctx context.Context, job *queue.Job) error
}

func (m *mockJobQueue) Enqueue(ctx context.Context, job *queue.Job) error {
	if m.enqueueFunc != nil {
		return m.enqueueFunc(ctx, job)
	}
	return nil
}

func (m *mockJobQueue) Dequeue(ctx context.Context) (*queue.Message, error) {
	return nil, errors.New("not implemented")
}

func (m *mockJobQueue) Consume(ctx context.Context, prefetchCount int) (<-chan *queue.Message, <-chan error, error) {
	return nil, nil, errors.New("not implemented")
}

func (m *mockJobQueue) Close() error {
	return nil
}

func (m *mockJobQueue) HealthCheck(ctx context.Context) error {
	return nil
}

// mockMessage is a mock implementation of MessageInterface
type mockMessage struct {
	job      *queue.Job
	ackFunc  func() error
	nackFunc func(requeue bool) error
}

func (m *mockMessage) Ack() error {
	if m.ackFunc != nil {
		return m.ackFunc()
	}
	return nil
}

func (m *mockMessage) Nack(requeue bool) error {
	if m.nackFunc != nil {
		return m.nackFunc(requeue)
	}
	return nil
}

func (m *mockMessage) GetJob() *queue.Job {
	return m.job
}

// Ensure mocks implement the interfaces
var (
	_ ai.Provider                                 = (*mockProvider)(nil)
	_ database.MessageRepositoryInterface         = (*mockMessageRepo)(nil)
	_ database.SummaryRepositoryInterface         = (*mockSummaryRepo)(nil)
	_ database.PreferenceRepositoryInterface      = (*mockPreferenceRepo)(nil)
	_ database.PersonaFeedbackRepositoryInterface = (*mockFeedbackRepo)(nil)
	_ database.NotificationRepositoryInterface    = (*mockNotificationRepo)(nil)
	_ database.AppStateRepositoryInterface        = (*mockAppStateRepo)(nil)
	_ database.UserRepositoryInterface            = (*mockUserRepo)(nil)
	_ queue.JobQueue                              = (*mockJobQueue)(nil)
	_ queue.MessageInterface                      = (*mockMessage)(nil)
)

func TestSummarizer_ProcessSummarizeJob_TooFewMessages(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	messages := &mockMessageRepo{
		countFunc: func(ctx context.Context, uid uuid.UUID) (int, error) {
			return SummarizeMinMessages - 1, nil
		},
	}
	provider := &mockProvider{
		completeFunc: func(ctx context.Context, msgs []ai.Message, maxTokens int) (string, error) {
			t.Error("Provider must not be called below the message floor")
			return "", nil
		},
	}

	summarizer := NewSummarizer(provider, messages, &mockSummaryRepo{}, nil)

	job := queue.NewJob(queue.JobTypeSummarize, userID)
	if err := summarizer.ProcessSummarizeJob(context.Background(), job); err != nil {
		t.Fatalf("Too little history must be a successful no-op, got %v", err)
	}
}

func TestSummarizer_ProcessSummarizeJob_FoldsExistingSummary(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	messages := &mockMessageRepo{
		countFunc: func(ctx context.Context, uid uuid.UUID) (int, error) {
			return 25, nil
		},
		getRecentFunc: func(ctx context.Context, uid uuid.UUID, limit int) ([]*models.Message, error) {
			if limit != SummarizeWindow {
				t.Errorf("Expected window %d, got %d", SummarizeWindow, limit)
			}
			return []*models.Message{
				{Role: models.MessageRoleUser, Content: "soal ekspansi"},
				{Role: models.MessageRoleAssistant, Content: "pertimbangkan arus kas"},
			}, nil
		},
	}
	summaries := &mockSummaryRepo{
		getByUserIDFunc: func(ctx context.Context, uid uuid.UUID) (*models.RollingSummary, error) {
			return &models.RollingSummary{UserID: uid, Summary: "ringkasan lama"}, nil
		},
	}

	var promptSent string
	provider := &mockProvider{
		completeFunc: func(ctx context.Context, msgs []ai.Message, maxTokens int) (string, error) {
			if len(msgs) != 2 || msgs[0].Role != "system" {
				t.Errorf("Expected system+user message pair, got %d messages", len(msgs))
			}
			promptSent = msgs[1].Content
			return "  ringkasan baru  ", nil
		},
	}

	var stored string
	summaries.setFunc = func(ctx context.Context, uid uuid.UUID, text string) error {
		if uid != userID {
			t.Errorf("Set for user %s, want %s", uid, userID)
		}
		stored = text
		return nil
	}

	summarizer := NewSummarizer(provider, messages, summaries, nil)

	job := queue.NewJob(queue.JobTypeSummarize, userID)
	if err := summarizer.ProcessSummarizeJob(context.Background(), job); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if !strings.Contains(promptSent, "RINGKASAN LAMA:\nringkasan lama") {
		t.Error("Expected the existing summary folded into the prompt")
	}
	if !strings.Contains(promptSent, "PERCAKAPAN TERBARU:") {
		t.Error("Expected the transcript section in the prompt")
	}
	if !strings.Contains(promptSent, "user: soal ekspansi") {
		t.Error("Expected transcript lines rendered as role: content")
	}
	if stored != "ringkasan baru" {
		t.Errorf("Expected trimmed summary stored, got %q", stored)
	}
}

func TestSummarizer_ProcessSummarizeJob_NoExistingSummary(t *testing.T) {
	t.Parallel()

	messages := &mockMessageRepo{
		countFunc: func(ctx context.Context, uid uuid.UUID) (int, error) {
			return SummarizeMinMessages, nil
		},
		getRecentFunc: func(ctx context.Context, uid uuid.UUID, limit int) ([]*models.Message, error) {
			return []*models.Message{{Role: models.MessageRoleUser, Content: "halo"}}, nil
		},
	}

	var promptSent string
	provider := &mockProvider{
		completeFunc: func(ctx context.Context, msgs []ai.Message, maxTokens int) (string, error) {
			promptSent = msgs[1].Content
			return "ringkasan pertama", nil
		},
	}

	summarizer := NewSummarizer(provider, messages, &mockSummaryRepo{}, nil)

	job := queue.NewJob(queue.JobTypeSummarize, uuid.New())
	if err := summarizer.ProcessSummarizeJob(context.Background(), job); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if strings.Contains(promptSent, "RINGKASAN LAMA") {
		t.Error("First fold must not reference a nonexistent old summary")
	}
}

func TestSummarizer_ProcessSummarizeJob_EmptyFoldFails(t *testing.T) {
	t.Parallel()

	messages := &mockMessageRepo{
		countFunc: func(ctx context.Context, uid uuid.UUID) (int, error) {
			return 15, nil
		},
	}
	provider := &mockProvider{
		completeFunc: func(ctx context.Context, msgs []ai.Message, maxTokens int) (string, error) {
			return "   ", nil
		},
	}
	summaries := &mockSummaryRepo{
		setFunc: func(ctx context.Context, uid uuid.UUID, text string) error {
			t.Error("An empty fold must not overwrite the stored summary")
			return nil
		},
	}

	summarizer := NewSummarizer(provider, messages, summaries, nil)

	job := queue.NewJob(queue.JobTypeSummarize, uuid.New())
	if err := summarizer.ProcessSummarizeJob(context.Background(), job); err == nil {
		t.Fatal("Expected error for an empty fold")
	}
}

func TestSummarizer_ProcessSummarizeJob_ProviderError(t *testing.T) {
	t.Parallel()

	messages := &mockMessageRepo{
		countFunc: func(ctx context.Context, uid uuid.UUID) (int, error) {
			return 15, nil
		},
	}
	provider := &mockProvider{
		completeFunc: func(ctx context.Context, msgs []ai.Message, maxTokens int) (string, error) {
			return "", errors.New("upstream down")
		},
	}

	summarizer := NewSummarizer(provider, messages, &mockSummaryRepo{}, nil)

	job := queue.NewJob(queue.JobTypeSummarize, uuid.New())
	if err := summarizer.ProcessSummarizeJob(context.Background(), job); err == nil {
		t.Fatal("Expected error when the model call fails")
	}
}
