// Package workers contains the background distillation jobs: rolling
// summary folding, preference extraction and the proactive insight
// notifier, plus the queue consumer that dispatches them.
package workers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/arka-labs/strategist-api/internal/database"
	"github.com/arka-labs/strategist-api/internal/queue"
	"github.com/arka-labs/strategist-api/internal/services/ai"
)

const (
	// SummarizeMinMessages is the floor below which summarization is a no-op
	SummarizeMinMessages = 10

	// SummarizeWindow is how many recent messages feed one summary fold
	SummarizeWindow = 30

	summaryTimeout   = 2 * time.Minute
	summaryMaxTokens = 600
)

const summarySystemPrompt = `Kamu adalah perangkum percakapan. Gabungkan ringkasan lama (jika ada) dengan potongan percakapan terbaru menjadi satu ringkasan baru yang utuh.
Pertahankan: keputusan yang diambil, masalah yang sedang dihadapi, preferensi yang terlihat, dan konteks bisnis penting.
Buang: basa-basi, pengulangan, detail yang sudah tidak relevan.
Maksimal sekitar 300 kata. Tulis dalam bahasa Indonesia. Balas hanya dengan ringkasannya, tanpa pembuka atau penutup.`

// Summarizer folds recent conversation into the per-user rolling
// summary. Each run replaces the stored summary wholesale; the fold
// keeps it bounded no matter how long the conversation runs.
type Summarizer struct {
	provider  ai.Provider
	messages  database.MessageRepositoryInterface
	summaries database.SummaryRepositoryInterface
	logger    *zap.Logger
}

// NewSummarizer creates a summarizer
func NewSummarizer(
	provider ai.Provider,
	messages database.MessageRepositoryInterface,
	summaries database.SummaryRepositoryInterface,
	logger *zap.Logger,
) *Summarizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Summarizer{
		provider:  provider,
		messages:  messages,
		summaries: summaries,
		logger:    logger,
	}
}

// ProcessSummarizeJob runs one summary fold for the job's user.
// Too little history is a successful no-op, not an error: the job can
// arrive before the conversation is worth summarizing.
func (s *Summarizer) ProcessSummarizeJob(ctx context.Context, job *queue.Job) error {
	count, err := s.messages.Count(ctx, job.UserID)
	if err != nil {
		return fmt.Errorf("failed to count messages: %w", err)
	}
	if count < SummarizeMinMessages {
		s.logger.Debug("summarize_skipped_too_few_messages",
			zap.String("user_id", job.UserID.String()),
			zap.Int("count", count))
		return nil
	}

	recent, err := s.messages.GetRecent(ctx, job.UserID, SummarizeWindow)
	if err != nil {
		return fmt.Errorf("failed to load recent messages: %w", err)
	}

	existing, err := s.summaries.GetByUserID(ctx, job.UserID)
	if err != nil {
		return fmt.Errorf("failed to load existing summary: %w", err)
	}

	var sb strings.Builder
	if existing != nil && existing.Summary != "" {
		sb.WriteString("RINGKASAN LAMA:\n")
		sb.WriteString(existing.Summary)
		sb.WriteString("\n\n")
	}
	sb.WriteString("PERCAKAPAN TERBARU:\n")
	sb.WriteString(renderTranscript(recent))

	callCtx, cancel := context.WithTimeout(ctx, summaryTimeout)
	defer cancel()

	summary, err := s.provider.Complete(callCtx, []ai.Message{
		{Role: "system", Content: summarySystemPrompt},
		{Role: "user", Content: sb.String()},
	}, summaryMaxTokens)
	if err != nil {
		return fmt.Errorf("failed to generate summary: %w", err)
	}

	summary = strings.TrimSpace(summary)
	if summary == "" {
		// An empty fold must not clobber a good summary
		return fmt.Errorf("model returned empty summary")
	}

	if err := s.summaries.Set(ctx, job.UserID, summary); err != nil {
		return fmt.Errorf("failed to store summary: %w", err)
	}

	s.logger.Info("rolling_summary_updated",
		zap.String("user_id", job.UserID.String()),
		zap.Int("message_count", count),
		zap.Int("summary_chars", len(summary)))
	return nil
}
