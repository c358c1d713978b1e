package workers

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/arka-labs/strategist-api/internal/models"
	"github.com/arka-labs/strategist-api/internal/queue"
	"github.com/arka-labs/strategist-api/internal/services/ai"
)

func TestInsightNotifier_ProcessDailyInsightJob_AlreadySentToday(t *testing.T) {
	t.Parallel()

	appState := &mockAppStateRepo{
		getFunc: func(ctx context.Context, userID uuid.UUID, key string) (*models.AppState, error) {
			return &models.AppState{UserID: userID, Key: key, Value: "2026-08-28T07:00:00Z"}, nil
		},
	}
	provider := &mockProvider{
		completeFunc: func(ctx context.Context, msgs []ai.Message, maxTokens int) (string, error) {
			t.Error("Provider must not be called when today's insight was already sent")
			return "", nil
		},
	}
	notifications := &mockNotificationRepo{
		createFunc: func(ctx context.Context, n *models.Notification) error {
			t.Error("No second notification may be created for the same day")
			return nil
		},
	}

	notifier := NewInsightNotifier(provider, &mockPreferenceRepo{}, &mockSummaryRepo{}, notifications, appState, nil)

	job := queue.NewJob(queue.JobTypeDailyInsight, uuid.New())
	if err := notifier.ProcessDailyInsightJob(context.Background(), job); err != nil {
		t.Fatalf("Redelivered job must be a harmless no-op, got %v", err)
	}
}

func TestInsightNotifier_ProcessDailyInsightJob_NoProfileSkips(t *testing.T) {
	t.Parallel()

	provider := &mockProvider{
		completeFunc: func(ctx context.Context, msgs []ai.Message, maxTokens int) (string, error) {
			t.Error("Provider must not be called for a user with no profile and no summary")
			return "", nil
		},
	}

	notifier := NewInsightNotifier(provider, &mockPreferenceRepo{}, &mockSummaryRepo{}, &mockNotificationRepo{}, &mockAppStateRepo{}, nil)

	job := queue.NewJob(queue.JobTypeDailyInsight, uuid.New())
	if err := notifier.ProcessDailyInsightJob(context.Background(), job); err != nil {
		t.Fatalf("Empty profile must be a successful no-op, got %v", err)
	}
}

func TestInsightNotifier_ProcessDailyInsightJob_SendsInsight(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	preferences := &mockPreferenceRepo{
		getByUserIDFunc: func(ctx context.Context, uid uuid.UUID) ([]*models.Preference, error) {
			return []*models.Preference{
				{Category: models.CategoryBusinessContext, Insight: "Menjalankan bisnis F&B"},
			}, nil
		},
	}
	summaries := &mockSummaryRepo{
		getByUserIDFunc: func(ctx context.Context, uid uuid.UUID) (*models.RollingSummary, error) {
			return &models.RollingSummary{UserID: uid, Summary: "sedang menimbang ekspansi"}, nil
		},
	}

	var promptSent string
	provider := &mockProvider{
		completeFunc: func(ctx context.Context, msgs []ai.Message, maxTokens int) (string, error) {
			promptSent = msgs[1].Content
			return "  Pertimbangkan menguji satu kota dulu sebelum ekspansi penuh.  ", nil
		},
	}

	var created *models.Notification
	notifications := &mockNotificationRepo{
		createFunc: func(ctx context.Context, n *models.Notification) error {
			created = n
			return nil
		},
	}

	var markedKey string
	appState := &mockAppStateRepo{
		setFunc: func(ctx context.Context, uid uuid.UUID, key, value string) error {
			markedKey = key
			return nil
		},
	}

	notifier := NewInsightNotifier(provider, preferences, summaries, notifications, appState, nil)

	job := queue.NewJob(queue.JobTypeDailyInsight, userID)
	if err := notifier.ProcessDailyInsightJob(context.Background(), job); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if !strings.Contains(promptSent, "PROFIL PENGGUNA:") || !strings.Contains(promptSent, "RINGKASAN PERCAKAPAN:") {
		t.Error("Expected both profile and summary sections in the prompt")
	}

	if created == nil {
		t.Fatal("Expected a notification to be created")
	}
	if created.Type != models.NotificationTypeInsight {
		t.Errorf("Expected insight notification type, got %s", created.Type)
	}
	if created.UserID != userID {
		t.Errorf("Notification for %s, want %s", created.UserID, userID)
	}
	if created.Message != "Pertimbangkan menguji satu kota dulu sebelum ekspansi penuh." {
		t.Errorf("Expected trimmed insight as message, got %q", created.Message)
	}

	if markedKey != models.InsightSentKey(time.Now()) {
		t.Errorf("Expected today's dedup key marked, got %q", markedKey)
	}
}

func TestInsightNotifier_ProcessDailyInsightJob_MarkFailureSurfaces(t *testing.T) {
	t.Parallel()

	summaries := &mockSummaryRepo{
		getByUserIDFunc: func(ctx context.Context, uid uuid.UUID) (*models.RollingSummary, error) {
			return &models.RollingSummary{UserID: uid, Summary: "konteks"}, nil
		},
	}
	provider := &mockProvider{
		completeFunc: func(ctx context.Context, msgs []ai.Message, maxTokens int) (string, error) {
			return "sebuah insight", nil
		},
	}
	appState := &mockAppStateRepo{
		setFunc: func(ctx context.Context, uid uuid.UUID, key, value string) error {
			return errors.New("write failed")
		},
	}

	notifier := NewInsightNotifier(provider, &mockPreferenceRepo{}, summaries, &mockNotificationRepo{}, appState, nil)

	job := queue.NewJob(queue.JobTypeDailyInsight, uuid.New())
	if err := notifier.ProcessDailyInsightJob(context.Background(), job); err == nil {
		t.Fatal("Expected error when the dedup flag cannot be written")
	}
}

func TestInsightScheduler_ScheduleDailyInsightJobs(t *testing.T) {
	t.Parallel()

	userA := uuid.New()
	userB := uuid.New()
	users := &mockUserRepo{
		getActiveUserIDsFunc: func(ctx context.Context, since time.Time) ([]uuid.UUID, error) {
			if until := time.Until(since); until > -insightActivityWindow+time.Minute || until < -insightActivityWindow-time.Minute {
				t.Errorf("Expected activity cutoff about %v ago, got %v", insightActivityWindow, since)
			}
			return []uuid.UUID{userA, userB}, nil
		},
	}

	var jobs []*queue.Job
	jobQueue := &mockJobQueue{
		enqueueFunc: func(ctx context.Context, job *queue.Job) error {
			jobs = append(jobs, job)
			return nil
		},
	}

	scheduler := NewInsightScheduler(jobQueue, users, nil)

	if err := scheduler.ScheduleDailyInsightJobs(context.Background()); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if len(jobs) != 2 {
		t.Fatalf("Expected one job per active user, got %d", len(jobs))
	}
	for _, job := range jobs {
		if job.Type != queue.JobTypeDailyInsight {
			t.Errorf("Expected daily insight job, got %s", job.Type)
		}
		if job.NotBefore == nil || job.NotBefore.Hour() != insightHour {
			t.Errorf("Expected NotBefore at %02d:00, got %v", insightHour, job.NotBefore)
		}
		if job.NotBefore.Before(time.Now()) {
			t.Error("NotBefore must be in the future")
		}
		if job.NotAfter == nil || !job.NotAfter.Equal(job.NotBefore.Add(24*time.Hour)) {
			t.Errorf("Expected NotAfter one day after NotBefore, got %v", job.NotAfter)
		}
	}
}

func TestInsightScheduler_ScheduleDailyInsightJobs_ContinuesPastEnqueueFailure(t *testing.T) {
	t.Parallel()

	users := &mockUserRepo{
		getActiveUserIDsFunc: func(ctx context.Context, since time.Time) ([]uuid.UUID, error) {
			return []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}, nil
		},
	}

	attempts := 0
	jobQueue := &mockJobQueue{
		enqueueFunc: func(ctx context.Context, job *queue.Job) error {
			attempts++
			if attempts == 1 {
				return errors.New("broker hiccup")
			}
			return nil
		},
	}

	scheduler := NewInsightScheduler(jobQueue, users, nil)

	if err := scheduler.ScheduleDailyInsightJobs(context.Background()); err != nil {
		t.Fatalf("One failed enqueue must not abort the run, got %v", err)
	}
	if attempts != 3 {
		t.Errorf("Expected all three users attempted, got %d", attempts)
	}
}
