package workers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/arka-labs/strategist-api/internal/database"
	"github.com/arka-labs/strategist-api/internal/models"
	"github.com/arka-labs/strategist-api/internal/queue"
	"github.com/arka-labs/strategist-api/internal/services/ai"
)

const (
	insightTimeout   = 2 * time.Minute
	insightMaxTokens = 400

	// insightActivityWindow bounds who counts as an active user
	insightActivityWindow = 7 * 24 * time.Hour

	// insightHour is the local hour daily insight jobs are scheduled for
	insightHour = 7
)

const insightSystemPrompt = `Kamu adalah penasihat strategis. Berdasarkan profil dan ringkasan percakapan pengguna di bawah, tulis SATU insight proaktif singkat (2-4 kalimat) yang berguna untuk hari ini: sebuah pengingat, pertanyaan reflektif, atau sudut pandang yang mungkin terlewat.
Jangan menyapa, jangan basa-basi. Langsung ke insightnya. Tulis dalam bahasa Indonesia.`

const insightNotificationTitle = "Insight hari ini"

// InsightNotifier produces at most one proactive insight notification
// per user per day. The date-scoped app_state key is the dedup record:
// it survives restarts and makes redelivered jobs harmless.
type InsightNotifier struct {
	provider      ai.Provider
	preferences   database.PreferenceRepositoryInterface
	summaries     database.SummaryRepositoryInterface
	notifications database.NotificationRepositoryInterface
	appState      database.AppStateRepositoryInterface
	logger        *zap.Logger
}

// NewInsightNotifier creates an insight notifier
func NewInsightNotifier(
	provider ai.Provider,
	preferences database.PreferenceRepositoryInterface,
	summaries database.SummaryRepositoryInterface,
	notifications database.NotificationRepositoryInterface,
	appState database.AppStateRepositoryInterface,
	logger *zap.Logger,
) *InsightNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InsightNotifier{
		provider:      provider,
		preferences:   preferences,
		summaries:     summaries,
		notifications: notifications,
		appState:      appState,
		logger:        logger,
	}
}

// ProcessDailyInsightJob produces today's insight notification for the
// job's user unless one was already sent today. A user with no profile
// and no summary yet is skipped; there is nothing to be insightful about.
func (n *InsightNotifier) ProcessDailyInsightJob(ctx context.Context, job *queue.Job) error {
	key := models.InsightSentKey(time.Now())

	sent, err := n.appState.Get(ctx, job.UserID, key)
	if err != nil {
		return fmt.Errorf("failed to check insight state: %w", err)
	}
	if sent != nil {
		n.logger.Debug("daily_insight_already_sent",
			zap.String("user_id", job.UserID.String()),
			zap.String("key", key))
		return nil
	}

	prefs, err := n.preferences.GetByUserID(ctx, job.UserID)
	if err != nil {
		return fmt.Errorf("failed to load preferences: %w", err)
	}
	summary, err := n.summaries.GetByUserID(ctx, job.UserID)
	if err != nil {
		return fmt.Errorf("failed to load rolling summary: %w", err)
	}

	var sb strings.Builder
	if len(prefs) > 0 {
		sb.WriteString("PROFIL PENGGUNA:\n")
		for _, p := range prefs {
			sb.WriteString(fmt.Sprintf("- [%s] %s\n", p.Category, p.Insight))
		}
		sb.WriteString("\n")
	}
	if summary != nil && summary.Summary != "" {
		sb.WriteString("RINGKASAN PERCAKAPAN:\n")
		sb.WriteString(summary.Summary)
		sb.WriteString("\n")
	}
	if sb.Len() == 0 {
		n.logger.Debug("daily_insight_skipped_no_profile",
			zap.String("user_id", job.UserID.String()))
		return nil
	}

	callCtx, cancel := context.WithTimeout(ctx, insightTimeout)
	defer cancel()

	insight, err := n.provider.Complete(callCtx, []ai.Message{
		{Role: "system", Content: insightSystemPrompt},
		{Role: "user", Content: sb.String()},
	}, insightMaxTokens)
	if err != nil {
		return fmt.Errorf("failed to generate insight: %w", err)
	}
	insight = strings.TrimSpace(insight)
	if insight == "" {
		return fmt.Errorf("model returned empty insight")
	}

	notification := &models.Notification{
		UserID:  job.UserID,
		Type:    models.NotificationTypeInsight,
		Title:   insightNotificationTitle,
		Message: insight,
	}
	if err := n.notifications.Create(ctx, notification); err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}

	if err := n.appState.Set(ctx, job.UserID, key, time.Now().Format(time.RFC3339)); err != nil {
		// The notification exists but the flag does not; a redelivered
		// job would duplicate it. Surface the error so it is visible.
		return fmt.Errorf("failed to mark insight sent: %w", err)
	}

	n.logger.Info("daily_insight_sent",
		zap.String("user_id", job.UserID.String()),
		zap.String("key", key))
	return nil
}

// InsightScheduler enqueues one daily insight job per active user,
// timed for the next morning via the delayed exchange.
type InsightScheduler struct {
	jobQueue queue.JobQueue
	users    database.UserRepositoryInterface
	logger   *zap.Logger
}

// NewInsightScheduler creates an insight scheduler
func NewInsightScheduler(jobQueue queue.JobQueue, users database.UserRepositoryInterface, logger *zap.Logger) *InsightScheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InsightScheduler{
		jobQueue: jobQueue,
		users:    users,
		logger:   logger,
	}
}

// ScheduleDailyInsightJobs creates a daily insight job for every user
// active within the activity window. The per-day app_state dedup in the
// notifier makes overlapping scheduler runs safe.
func (s *InsightScheduler) ScheduleDailyInsightJobs(ctx context.Context) error {
	now := time.Now()
	nextRun := time.Date(now.Year(), now.Month(), now.Day(), insightHour, 0, 0, 0, now.Location())
	if now.After(nextRun) {
		nextRun = nextRun.Add(24 * time.Hour)
	}

	activeUsers, err := s.users.GetActiveUserIDs(ctx, now.Add(-insightActivityWindow))
	if err != nil {
		return fmt.Errorf("failed to get active users: %w", err)
	}

	for _, userID := range activeUsers {
		if err := s.createInsightJob(ctx, userID, nextRun); err != nil {
			s.logger.Warn("failed_to_schedule_insight_job",
				zap.String("user_id", userID.String()),
				zap.Error(err),
			)
			// Continue with other users
		}
	}

	s.logger.Info("scheduled_daily_insight_jobs",
		zap.Int("user_count", len(activeUsers)),
		zap.Time("next_run", nextRun),
	)
	return nil
}

func (s *InsightScheduler) createInsightJob(ctx context.Context, userID uuid.UUID, notBefore time.Time) error {
	job := queue.NewJob(queue.JobTypeDailyInsight, userID)
	job.NotBefore = &notBefore

	// Expire stale jobs a day after their slot so the DLQ GC can reap them
	notAfter := notBefore.Add(24 * time.Hour)
	job.NotAfter = &notAfter

	if err := s.jobQueue.Enqueue(ctx, job); err != nil {
		return fmt.Errorf("failed to enqueue insight job: %w", err)
	}
	return nil
}
