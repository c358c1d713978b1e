package workers

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/arka-labs/strategist-api/internal/queue"
	"github.com/arka-labs/strategist-api/internal/services/ai"
)

func timePtr(t time.Time) *time.Time {
	return &t
}

// newTestDistiller wires a distiller whose processors run against the
// given provider and otherwise-permissive mocks.
func newTestDistiller(provider *mockProvider, messages *mockMessageRepo, jobQueue *mockJobQueue) *Distiller {
	summarizer := NewSummarizer(provider, messages, &mockSummaryRepo{}, nil)
	extractor := NewExtractor(provider, messages, &mockPreferenceRepo{}, &mockFeedbackRepo{}, nil)
	notifier := NewInsightNotifier(provider, &mockPreferenceRepo{}, &mockSummaryRepo{}, &mockNotificationRepo{}, &mockAppStateRepo{}, nil)
	return NewDistiller(summarizer, extractor, notifier, jobQueue, nil)
}

func TestDistiller_ProcessJob_Dispatch(t *testing.T) {
	t.Parallel()

	userID := uuid.New()

	tests := []struct {
		name        string
		job         *queue.Job
		expectError bool
		expectAck   bool
		expectNack  bool
	}{
		{
			name:      "summarize job",
			job:       queue.NewJob(queue.JobTypeSummarize, userID),
			expectAck: true,
		},
		{
			name:      "extract job",
			job:       queue.NewJob(queue.JobTypeExtract, userID),
			expectAck: true,
		},
		{
			name:      "daily insight job",
			job:       queue.NewJob(queue.JobTypeDailyInsight, userID),
			expectAck: true,
		},
		{
			name: "unknown job type",
			job: &queue.Job{
				ID:     uuid.New(),
				Type:   queue.JobType("unknown"),
				UserID: userID,
			},
			expectError: true,
			expectNack:  true,
		},
		{
			name: "job not ready yet",
			job: &queue.Job{
				ID:        uuid.New(),
				Type:      queue.JobTypeSummarize,
				UserID:    userID,
				NotBefore: timePtr(time.Now().Add(1 * time.Hour)),
			},
			expectAck: true,
		},
		{
			name: "expired job",
			job: &queue.Job{
				ID:       uuid.New(),
				Type:     queue.JobTypeSummarize,
				UserID:   userID,
				NotAfter: timePtr(time.Now().Add(-1 * time.Hour)),
			},
			expectAck: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			// Message counts below every floor make the processors
			// succeed as no-ops regardless of job type.
			messages := &mockMessageRepo{
				countFunc: func(ctx context.Context, uid uuid.UUID) (int, error) {
					return 0, nil
				},
			}
			distiller := newTestDistiller(&mockProvider{}, messages, &mockJobQueue{})

			acked, nacked := false, false
			msg := &mockMessage{
				job: tt.job,
				ackFunc: func() error {
					acked = true
					return nil
				},
				nackFunc: func(requeue bool) error {
					nacked = true
					if requeue {
						t.Error("Unknown job types must go to the DLQ, not requeue")
					}
					return nil
				},
			}

			err := distiller.ProcessJob(context.Background(), msg)

			if tt.expectError && err == nil {
				t.Error("Expected error but got nil")
			}
			if !tt.expectError && err != nil {
				t.Errorf("Unexpected error: %v", err)
			}
			if acked != tt.expectAck {
				t.Errorf("acked = %v, want %v", acked, tt.expectAck)
			}
			if nacked != tt.expectNack {
				t.Errorf("nacked = %v, want %v", nacked, tt.expectNack)
			}
		})
	}
}

func TestDistiller_ProcessJob_RateLimitReenqueuesWithDelay(t *testing.T) {
	t.Parallel()

	userID := uuid.New()

	messages := &mockMessageRepo{
		countFunc: func(ctx context.Context, uid uuid.UUID) (int, error) {
			return 15, nil
		},
	}
	provider := &mockProvider{
		completeFunc: func(ctx context.Context, msgs []ai.Message, maxTokens int) (string, error) {
			return "", errors.New("429 too many requests")
		},
	}

	var reenqueued *queue.Job
	jobQueue := &mockJobQueue{
		enqueueFunc: func(ctx context.Context, job *queue.Job) error {
			reenqueued = job
			return nil
		},
	}

	distiller := newTestDistiller(provider, messages, jobQueue)

	job := queue.NewJob(queue.JobTypeSummarize, userID)
	acked := false
	msg := &mockMessage{
		job: job,
		ackFunc: func() error {
			acked = true
			return nil
		},
		nackFunc: func(requeue bool) error {
			t.Error("Rate limited job must be acked and re-enqueued, not nacked")
			return nil
		},
	}

	if err := distiller.ProcessJob(context.Background(), msg); err != nil {
		t.Fatalf("Delayed re-enqueue must succeed silently, got %v", err)
	}

	if !acked {
		t.Error("Original delivery must be acked before the delayed copy is enqueued")
	}
	if reenqueued == nil {
		t.Fatal("Expected a delayed copy of the job enqueued")
	}
	if reenqueued.ID != job.ID {
		t.Error("Delayed copy must keep the job ID")
	}
	if reenqueued.RetryCount != job.RetryCount+1 {
		t.Errorf("Expected retry count bumped to %d, got %d", job.RetryCount+1, reenqueued.RetryCount)
	}
	if reenqueued.NotBefore == nil || !reenqueued.NotBefore.After(time.Now()) {
		t.Error("Delayed copy must carry a future NotBefore")
	}
}

func TestDistiller_ProcessJob_RateLimitRetriesExhausted(t *testing.T) {
	t.Parallel()

	messages := &mockMessageRepo{
		countFunc: func(ctx context.Context, uid uuid.UUID) (int, error) {
			return 15, nil
		},
	}
	provider := &mockProvider{
		completeFunc: func(ctx context.Context, msgs []ai.Message, maxTokens int) (string, error) {
			return "", errors.New("429 too many requests")
		},
	}
	jobQueue := &mockJobQueue{
		enqueueFunc: func(ctx context.Context, job *queue.Job) error {
			t.Error("Exhausted job must not be re-enqueued")
			return nil
		},
	}

	distiller := newTestDistiller(provider, messages, jobQueue)

	job := queue.NewJob(queue.JobTypeSummarize, uuid.New())
	job.RetryCount = job.MaxRetries

	nackedToDLQ := false
	msg := &mockMessage{
		job: job,
		nackFunc: func(requeue bool) error {
			nackedToDLQ = !requeue
			return nil
		},
	}

	if err := distiller.ProcessJob(context.Background(), msg); err == nil {
		t.Fatal("Expected error when the retry budget is exhausted")
	}
	if !nackedToDLQ {
		t.Error("Exhausted job must be nacked without requeue")
	}
}

func TestDistiller_ProcessJob_TransientFailureRequeues(t *testing.T) {
	t.Parallel()

	messages := &mockMessageRepo{
		countFunc: func(ctx context.Context, uid uuid.UUID) (int, error) {
			return 0, errors.New("connection reset")
		},
	}

	distiller := newTestDistiller(&mockProvider{}, messages, &mockJobQueue{})

	job := queue.NewJob(queue.JobTypeSummarize, uuid.New())

	requeued := false
	msg := &mockMessage{
		job: job,
		nackFunc: func(requeue bool) error {
			requeued = requeue
			return nil
		},
	}

	if err := distiller.ProcessJob(context.Background(), msg); err == nil {
		t.Fatal("Expected error for a failed job")
	}
	if !requeued {
		t.Error("Transient failure inside the retry budget must requeue")
	}
	if job.RetryCount != 1 {
		t.Errorf("Expected retry count incremented to 1, got %d", job.RetryCount)
	}
}

func TestDistiller_ProcessJob_TransientFailureBudgetExhausted(t *testing.T) {
	t.Parallel()

	messages := &mockMessageRepo{
		countFunc: func(ctx context.Context, uid uuid.UUID) (int, error) {
			return 0, errors.New("connection reset")
		},
	}

	distiller := newTestDistiller(&mockProvider{}, messages, &mockJobQueue{})

	job := queue.NewJob(queue.JobTypeExtract, uuid.New())
	job.RetryCount = job.MaxRetries

	requeue := true
	msg := &mockMessage{
		job: job,
		nackFunc: func(r bool) error {
			requeue = r
			return nil
		},
	}

	if err := distiller.ProcessJob(context.Background(), msg); err == nil {
		t.Fatal("Expected error for an exhausted job")
	}
	if requeue {
		t.Error("Exhausted job must go to the DLQ, not requeue")
	}
}
