package workers

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/arka-labs/strategist-api/internal/queue"
	"github.com/arka-labs/strategist-api/internal/services/ai"
)

// Distiller consumes distillation jobs and dispatches them to the
// summarizer, the extractor and the insight notifier. It owns the
// ack/nack decisions: success acks, retryable failure requeues,
// permanent failure goes to the DLQ.
type Distiller struct {
	summarizer *Summarizer
	extractor  *Extractor
	notifier   *InsightNotifier
	jobQueue   queue.JobQueue // For re-enqueueing jobs with delays
	logger     *zap.Logger
}

// NewDistiller creates a distiller
func NewDistiller(
	summarizer *Summarizer,
	extractor *Extractor,
	notifier *InsightNotifier,
	jobQueue queue.JobQueue,
	logger *zap.Logger,
) *Distiller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Distiller{
		summarizer: summarizer,
		extractor:  extractor,
		notifier:   notifier,
		jobQueue:   jobQueue,
		logger:     logger,
	}
}

// ProcessJob processes a job based on its type
func (d *Distiller) ProcessJob(ctx context.Context, msg queue.MessageInterface) error {
	job := msg.GetJob()

	// Respect NotBefore; the delayed exchange should have held this back
	if !job.ShouldProcess() {
		d.logger.Debug("job_not_ready_skipping",
			zap.String("job_id", job.ID.String()),
			zap.Timep("not_before", job.NotBefore))
		if ackErr := msg.Ack(); ackErr != nil {
			d.logger.Warn("failed_to_ack_deferred_job", zap.Error(ackErr))
		}
		return nil
	}

	var err error
	switch job.Type {
	case queue.JobTypeSummarize:
		err = d.summarizer.ProcessSummarizeJob(ctx, job)
	case queue.JobTypeExtract:
		err = d.extractor.ProcessExtractJob(ctx, job)
	case queue.JobTypeDailyInsight:
		err = d.notifier.ProcessDailyInsightJob(ctx, job)
	default:
		if nackErr := msg.Nack(false); nackErr != nil { // Unknown job type, send to DLQ
			d.logger.Warn("failed_to_nack_unknown_job", zap.Error(nackErr))
		}
		return fmt.Errorf("unknown job type: %s", job.Type)
	}

	if err != nil {
		return d.handleJobError(ctx, msg, job, err)
	}

	if ackErr := msg.Ack(); ackErr != nil {
		return fmt.Errorf("failed to ack job: %w", ackErr)
	}
	return nil
}

// handleJobError decides what a failed job does next. Quota and rate
// limit errors are re-enqueued through the delayed exchange with a
// NotBefore window; everything else gets the standard retry budget and
// ends in the DLQ when the budget runs out.
func (d *Distiller) handleJobError(ctx context.Context, msg queue.MessageInterface, job *queue.Job, err error) error {
	if ai.IsQuotaError(err) || ai.IsRateLimitError(err) {
		retryDelay := ai.GetRetryDelay(err, job.RetryCount)

		if job.CanRetry() && d.jobQueue != nil {
			notBefore := time.Now().Add(retryDelay)
			delayedJob := &queue.Job{
				ID:         job.ID,
				Type:       job.Type,
				UserID:     job.UserID,
				NotBefore:  &notBefore,
				NotAfter:   job.NotAfter,
				Metadata:   job.Metadata,
				CreatedAt:  job.CreatedAt,
				RetryCount: job.RetryCount + 1,
				MaxRetries: job.MaxRetries,
			}

			if ackErr := msg.Ack(); ackErr != nil {
				d.logger.Warn("failed_to_ack_before_delayed_retry", zap.Error(ackErr))
			}

			if enqueueErr := d.jobQueue.Enqueue(ctx, delayedJob); enqueueErr != nil {
				d.logger.Error("failed_to_reenqueue_delayed_job",
					zap.String("job_id", job.ID.String()),
					zap.Error(enqueueErr))
				return fmt.Errorf("rate limited, failed to re-enqueue: %w", enqueueErr)
			}

			d.logger.Info("job_reenqueued_with_delay",
				zap.String("job_id", job.ID.String()),
				zap.String("job_type", string(job.Type)),
				zap.Time("not_before", notBefore),
				zap.Duration("delay", retryDelay))
			return nil
		}

		// Retry budget exhausted; park it in the DLQ
		if nackErr := msg.Nack(false); nackErr != nil {
			d.logger.Warn("failed_to_nack_exhausted_job", zap.Error(nackErr))
		}
		return fmt.Errorf("rate limited, retries exhausted (job %s): %w", job.ID, err)
	}

	if job.CanRetry() {
		job.IncrementRetry()
		d.logger.Warn("job_failed_will_retry",
			zap.String("job_id", job.ID.String()),
			zap.String("job_type", string(job.Type)),
			zap.Int("attempt", job.RetryCount),
			zap.Int("max_retries", job.MaxRetries),
			zap.Error(err))
		if nackErr := msg.Nack(true); nackErr != nil {
			d.logger.Warn("failed_to_nack_job", zap.Error(nackErr))
		}
		return fmt.Errorf("job failed (will retry): %w", err)
	}

	d.logger.Error("job_failed_sending_to_dlq",
		zap.String("job_id", job.ID.String()),
		zap.String("job_type", string(job.Type)),
		zap.Int("max_retries", job.MaxRetries),
		zap.Error(err))
	if nackErr := msg.Nack(false); nackErr != nil {
		d.logger.Warn("failed_to_nack_job_to_dlq", zap.Error(nackErr))
	}
	return fmt.Errorf("job failed (max retries): %w", err)
}
