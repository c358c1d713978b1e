package chat

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/arka-labs/strategist-api/internal/database"
	"github.com/arka-labs/strategist-api/internal/intent"
	"github.com/arka-labs/strategist-api/internal/models"
	"github.com/arka-labs/strategist-api/internal/prompt"
	"github.com/arka-labs/strategist-api/internal/queue"
	"github.com/arka-labs/strategist-api/internal/services/ai"
)

const (
	// RecentWindow is how many persisted messages each completion call sees
	RecentWindow = 10

	// SummarizeEvery triggers the rolling-summary job every Nth message
	SummarizeEvery = 20

	// ExtractEvery triggers the insight-extraction job every Nth message
	ExtractEvery = 10

	// completionTimeout bounds the synchronous model call. Interactive
	// turns must fail fast into the fallback reply rather than hang.
	completionTimeout = 45 * time.Second

	replyMaxTokens = 1200
)

// fallbackReply stands in for the model when the completion call fails.
// The turn is still persisted so the conversation stays continuous.
const fallbackReply = VoiceMentor + `
Maaf, aku sedang kesulitan merumuskan jawaban yang layak untukmu saat ini. Coba kirim ulang pesanmu sebentar lagi.

` + VoiceAnalyst + `
Sorry, the reasoning service is temporarily unavailable. Your message has been saved, so nothing is lost; please retry shortly.`

// Service runs a full chat turn: intent detection, prompt composition,
// context assembly, the completion call, reply shaping, persistence and
// the distillation triggers.
type Service struct {
	detector    *intent.Detector
	composer    *prompt.Composer
	messages    database.MessageRepositoryInterface
	summaries   database.SummaryRepositoryInterface
	preferences database.PreferenceRepositoryInterface
	provider    ai.Provider
	jobs        queue.JobQueue
	logger      *zap.Logger
}

// NewService creates a chat service
func NewService(
	detector *intent.Detector,
	composer *prompt.Composer,
	messages database.MessageRepositoryInterface,
	summaries database.SummaryRepositoryInterface,
	preferences database.PreferenceRepositoryInterface,
	provider ai.Provider,
	jobs queue.JobQueue,
	logger *zap.Logger,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		detector:    detector,
		composer:    composer,
		messages:    messages,
		summaries:   summaries,
		preferences: preferences,
		provider:    provider,
		jobs:        jobs,
		logger:      logger,
	}
}

// TurnResult is what a completed chat turn hands back to the handler
type TurnResult struct {
	Reply     string
	NodesUsed []string
}

// HandleTurn processes one user message end to end.
//
// Infrastructure failures (prompt fragments unreachable, persistence
// down) surface as errors. A model failure does not: it degrades to the
// fallback reply and the turn is persisted anyway, so the caller still
// gets a 200 and the history stays coherent.
func (s *Service) HandleTurn(ctx context.Context, userID uuid.UUID, message string) (*TurnResult, error) {
	tags := s.detector.Detect(message)

	systemPrompt, nodesUsed, err := s.composer.Compose(ctx, tags)
	if err != nil {
		return nil, fmt.Errorf("failed to compose system prompt: %w", err)
	}

	prefs, err := s.preferences.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load preferences: %w", err)
	}
	systemPrompt = prompt.InjectProfile(systemPrompt, prefs)

	summary, err := s.summaries.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load rolling summary: %w", err)
	}
	summaryText := ""
	if summary != nil {
		summaryText = summary.Summary
	}

	recent, err := s.messages.GetRecent(ctx, userID, RecentWindow)
	if err != nil {
		return nil, fmt.Errorf("failed to load recent messages: %w", err)
	}

	conversation := Assemble(systemPrompt, summaryText, recent, message)

	reply := s.complete(ctx, userID, conversation)
	reply = EnforceShape(reply)

	if _, err := s.messages.Append(ctx, userID, models.MessageRoleUser, message); err != nil {
		return nil, fmt.Errorf("failed to persist user message: %w", err)
	}
	if _, err := s.messages.Append(ctx, userID, models.MessageRoleAssistant, reply); err != nil {
		return nil, fmt.Errorf("failed to persist assistant message: %w", err)
	}

	s.scheduleDistillation(ctx, userID)

	return &TurnResult{Reply: reply, NodesUsed: nodesUsed}, nil
}

// complete runs the bounded model call and maps every failure mode,
// including an empty completion, to the fallback reply.
func (s *Service) complete(ctx context.Context, userID uuid.UUID, conversation []ai.Message) string {
	callCtx, cancel := context.WithTimeout(ctx, completionTimeout)
	defer cancel()

	reply, err := s.provider.Complete(callCtx, conversation, replyMaxTokens)
	if err != nil {
		s.logger.Warn("completion_failed_using_fallback",
			zap.String("user_id", userID.String()),
			zap.Error(err))
		return fallbackReply
	}
	if reply == "" {
		s.logger.Warn("completion_empty_using_fallback",
			zap.String("user_id", userID.String()))
		return fallbackReply
	}
	return reply
}

// scheduleDistillation enqueues the background jobs the new message
// count calls for. Enqueue failures are logged and swallowed: the chat
// turn already succeeded and distillation catches up on a later trigger.
func (s *Service) scheduleDistillation(ctx context.Context, userID uuid.UUID) {
	count, err := s.messages.Count(ctx, userID)
	if err != nil {
		s.logger.Warn("message_count_failed_skipping_distillation",
			zap.String("user_id", userID.String()),
			zap.Error(err))
		return
	}
	if count == 0 {
		return
	}

	if count%SummarizeEvery == 0 {
		s.enqueue(ctx, queue.NewJob(queue.JobTypeSummarize, userID))
	}
	if count%ExtractEvery == 0 {
		s.enqueue(ctx, queue.NewJob(queue.JobTypeExtract, userID))
	}
}

func (s *Service) enqueue(ctx context.Context, job *queue.Job) {
	if err := s.jobs.Enqueue(ctx, job); err != nil {
		s.logger.Warn("distillation_enqueue_failed",
			zap.String("job_type", string(job.Type)),
			zap.String("user_id", job.UserID.String()),
			zap.Error(err))
		return
	}
	s.logger.Debug("distillation_job_enqueued",
		zap.String("job_type", string(job.Type)),
		zap.String("user_id", job.UserID.String()))
}

// HistoryClearer wipes everything learned about the user alongside the
// conversation log: messages, rolling summary, preferences and persona
// feedback. A fresh start, not just an empty transcript.
type HistoryClearer struct {
	messages    database.MessageRepositoryInterface
	summaries   database.SummaryRepositoryInterface
	preferences database.PreferenceRepositoryInterface
	feedback    database.PersonaFeedbackRepositoryInterface
}

// NewHistoryClearer creates a history clearer
func NewHistoryClearer(
	messages database.MessageRepositoryInterface,
	summaries database.SummaryRepositoryInterface,
	preferences database.PreferenceRepositoryInterface,
	feedback database.PersonaFeedbackRepositoryInterface,
) *HistoryClearer {
	return &HistoryClearer{
		messages:    messages,
		summaries:   summaries,
		preferences: preferences,
		feedback:    feedback,
	}
}

// Clear deletes the user's messages, summary, preferences and persona
// feedback. Partial failure aborts so the caller can retry.
func (h *HistoryClearer) Clear(ctx context.Context, userID uuid.UUID) error {
	if err := h.messages.DeleteByUserID(ctx, userID); err != nil {
		return fmt.Errorf("failed to delete messages: %w", err)
	}
	if err := h.summaries.DeleteByUserID(ctx, userID); err != nil {
		return fmt.Errorf("failed to delete rolling summary: %w", err)
	}
	if err := h.preferences.DeleteByUserID(ctx, userID); err != nil {
		return fmt.Errorf("failed to delete preferences: %w", err)
	}
	if err := h.feedback.DeleteByUserID(ctx, userID); err != nil {
		return fmt.Errorf("failed to delete persona feedback: %w", err)
	}
	return nil
}
