package workers

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/arka-labs/strategist-api/internal/models"
	"github.com/arka-labs/strategist-api/internal/queue"
	"github.com/arka-labs/strategist-api/internal/services/ai"
)

// extractorProvider routes the two extraction passes to separate canned
// responses, keyed on which system prompt the call carries.
func extractorProvider(t *testing.T, preferenceJSON, feedbackJSON string) *mockProvider {
	t.Helper()
	return &mockProvider{
		completeFunc: func(ctx context.Context, msgs []ai.Message, maxTokens int) (string, error) {
			switch msgs[0].Content {
			case preferenceExtractionPrompt:
				return preferenceJSON, nil
			case personaFeedbackPrompt:
				return feedbackJSON, nil
			default:
				return "", errors.New("unexpected system prompt")
			}
		},
	}
}

func TestExtractor_ProcessExtractJob_TooFewMessages(t *testing.T) {
	t.Parallel()

	messages := &mockMessageRepo{
		countFunc: func(ctx context.Context, uid uuid.UUID) (int, error) {
			return ExtractMinMessages - 1, nil
		},
	}
	provider := &mockProvider{
		completeFunc: func(ctx context.Context, msgs []ai.Message, maxTokens int) (string, error) {
			t.Error("Provider must not be called below the message floor")
			return "", nil
		},
	}

	extractor := NewExtractor(provider, messages, &mockPreferenceRepo{}, &mockFeedbackRepo{}, nil)

	job := queue.NewJob(queue.JobTypeExtract, uuid.New())
	if err := extractor.ProcessExtractJob(context.Background(), job); err != nil {
		t.Fatalf("Too little history must be a successful no-op, got %v", err)
	}
}

func TestExtractor_ProcessExtractJob_StoresValidItems(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	messages := &mockMessageRepo{
		countFunc: func(ctx context.Context, uid uuid.UUID) (int, error) {
			return 12, nil
		},
		getRecentFunc: func(ctx context.Context, uid uuid.UUID, limit int) ([]*models.Message, error) {
			if limit != ExtractWindow {
				t.Errorf("Expected window %d, got %d", ExtractWindow, limit)
			}
			return []*models.Message{{Role: models.MessageRoleUser, Content: "aku lebih suka jawaban singkat"}}, nil
		},
	}

	preferenceJSON := `[
		{"category": "preferensi_format", "insight": "Lebih suka jawaban singkat", "confidence": 0.8, "source_summary": "meminta jawaban singkat"},
		{"category": "kategori_palsu", "insight": "tidak valid", "confidence": 0.9},
		{"category": "fokus_risiko", "insight": "", "confidence": 0.7},
		{"category": "gaya_berpikir", "insight": "confidence di luar rentang", "confidence": 0.3}
	]`
	feedbackJSON := `[{"target": " MENTOR ", "feedback": "Direspon positif", "confidence": 0.7}]`

	var prefs []*models.Preference
	preferences := &mockPreferenceRepo{
		upsertFunc: func(ctx context.Context, pref *models.Preference) error {
			prefs = append(prefs, pref)
			return nil
		},
	}
	var feedbacks []*models.PersonaFeedback
	feedback := &mockFeedbackRepo{
		upsertFunc: func(ctx context.Context, fb *models.PersonaFeedback) error {
			feedbacks = append(feedbacks, fb)
			return nil
		},
	}

	extractor := NewExtractor(extractorProvider(t, preferenceJSON, feedbackJSON), messages, preferences, feedback, nil)

	job := queue.NewJob(queue.JobTypeExtract, userID)
	if err := extractor.ProcessExtractJob(context.Background(), job); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if len(prefs) != 1 {
		t.Fatalf("Expected 1 valid preference stored, got %d", len(prefs))
	}
	if prefs[0].Category != models.CategoryFormatPreference || prefs[0].Insight != "Lebih suka jawaban singkat" {
		t.Errorf("Unexpected stored preference: %+v", prefs[0])
	}
	if prefs[0].UserID != userID {
		t.Errorf("Preference stored for %s, want %s", prefs[0].UserID, userID)
	}

	if len(feedbacks) != 1 {
		t.Fatalf("Expected 1 persona feedback stored, got %d", len(feedbacks))
	}
	if feedbacks[0].Target != "mentor" {
		t.Errorf("Expected target normalized to lowercase, got %q", feedbacks[0].Target)
	}
}

func TestExtractor_ProcessExtractJob_SalvagesFencedJSON(t *testing.T) {
	t.Parallel()

	messages := &mockMessageRepo{
		countFunc: func(ctx context.Context, uid uuid.UUID) (int, error) {
			return 12, nil
		},
	}

	preferenceJSON := "Berikut hasilnya:\n```json\n[{\"category\": \"konteks_bisnis\", \"insight\": \"Menjalankan bisnis F&B\", \"confidence\": 0.9}]\n```"

	stored := 0
	preferences := &mockPreferenceRepo{
		upsertFunc: func(ctx context.Context, pref *models.Preference) error {
			stored++
			return nil
		},
	}

	extractor := NewExtractor(extractorProvider(t, preferenceJSON, "[]"), messages, preferences, &mockFeedbackRepo{}, nil)

	job := queue.NewJob(queue.JobTypeExtract, uuid.New())
	if err := extractor.ProcessExtractJob(context.Background(), job); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if stored != 1 {
		t.Errorf("Expected the fenced JSON salvaged and stored, got %d upserts", stored)
	}
}

func TestExtractor_ProcessExtractJob_UnparseableOutputIsNotRetryable(t *testing.T) {
	t.Parallel()

	messages := &mockMessageRepo{
		countFunc: func(ctx context.Context, uid uuid.UUID) (int, error) {
			return 12, nil
		},
	}
	preferences := &mockPreferenceRepo{
		upsertFunc: func(ctx context.Context, pref *models.Preference) error {
			t.Error("Nothing must be stored from unparseable output")
			return nil
		},
	}

	extractor := NewExtractor(extractorProvider(t, "maaf, aku tidak bisa", "juga bukan JSON"), messages, preferences, &mockFeedbackRepo{}, nil)

	job := queue.NewJob(queue.JobTypeExtract, uuid.New())
	if err := extractor.ProcessExtractJob(context.Background(), job); err != nil {
		t.Fatalf("Unparseable output must not be a retryable failure, got %v", err)
	}
}

func TestExtractor_ProcessExtractJob_CapsItemCounts(t *testing.T) {
	t.Parallel()

	messages := &mockMessageRepo{
		countFunc: func(ctx context.Context, uid uuid.UUID) (int, error) {
			return 12, nil
		},
	}

	var prefItems []string
	for i := 0; i < MaxPreferenceItems+3; i++ {
		prefItems = append(prefItems,
			fmt.Sprintf(`{"category": "gaya_berpikir", "insight": "insight nomor %d", "confidence": 0.8}`, i))
	}
	preferenceJSON := "[" + strings.Join(prefItems, ",") + "]"

	var fbItems []string
	for i := 0; i < MaxFeedbackItems+2; i++ {
		fbItems = append(fbItems,
			fmt.Sprintf(`{"target": "analis", "feedback": "observasi nomor %d", "confidence": 0.8}`, i))
	}
	feedbackJSON := "[" + strings.Join(fbItems, ",") + "]"

	prefCount := 0
	preferences := &mockPreferenceRepo{
		upsertFunc: func(ctx context.Context, pref *models.Preference) error {
			prefCount++
			return nil
		},
	}
	fbCount := 0
	feedback := &mockFeedbackRepo{
		upsertFunc: func(ctx context.Context, fb *models.PersonaFeedback) error {
			fbCount++
			return nil
		},
	}

	extractor := NewExtractor(extractorProvider(t, preferenceJSON, feedbackJSON), messages, preferences, feedback, nil)

	job := queue.NewJob(queue.JobTypeExtract, uuid.New())
	if err := extractor.ProcessExtractJob(context.Background(), job); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if prefCount != MaxPreferenceItems {
		t.Errorf("Expected preference cap %d, got %d upserts", MaxPreferenceItems, prefCount)
	}
	if fbCount != MaxFeedbackItems {
		t.Errorf("Expected feedback cap %d, got %d upserts", MaxFeedbackItems, fbCount)
	}
}

func TestExtractor_ProcessExtractJob_CurrentProfileInPrompt(t *testing.T) {
	t.Parallel()

	messages := &mockMessageRepo{
		countFunc: func(ctx context.Context, uid uuid.UUID) (int, error) {
			return 12, nil
		},
	}
	preferences := &mockPreferenceRepo{
		getByUserIDFunc: func(ctx context.Context, uid uuid.UUID) ([]*models.Preference, error) {
			return []*models.Preference{
				{Category: models.CategoryRiskFocus, Insight: "Konservatif terhadap utang"},
			}, nil
		},
	}

	var prompts []string
	provider := &mockProvider{
		completeFunc: func(ctx context.Context, msgs []ai.Message, maxTokens int) (string, error) {
			prompts = append(prompts, msgs[1].Content)
			return "[]", nil
		},
	}

	extractor := NewExtractor(provider, messages, preferences, &mockFeedbackRepo{}, nil)

	job := queue.NewJob(queue.JobTypeExtract, uuid.New())
	if err := extractor.ProcessExtractJob(context.Background(), job); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if len(prompts) != 2 {
		t.Fatalf("Expected both extraction passes to run, got %d", len(prompts))
	}
	if !strings.Contains(prompts[0], "PROFIL SAAT INI:") ||
		!strings.Contains(prompts[0], "Konservatif terhadap utang") {
		t.Error("Expected the current profile in the preference extraction prompt")
	}
}

func TestExtractor_ProcessExtractJob_UpsertFailureIsRetryable(t *testing.T) {
	t.Parallel()

	messages := &mockMessageRepo{
		countFunc: func(ctx context.Context, uid uuid.UUID) (int, error) {
			return 12, nil
		},
	}
	preferenceJSON := `[{"category": "gaya_berpikir", "insight": "insight valid", "confidence": 0.8}]`
	preferences := &mockPreferenceRepo{
		upsertFunc: func(ctx context.Context, pref *models.Preference) error {
			return errors.New("deadlock")
		},
	}

	extractor := NewExtractor(extractorProvider(t, preferenceJSON, "[]"), messages, preferences, &mockFeedbackRepo{}, nil)

	job := queue.NewJob(queue.JobTypeExtract, uuid.New())
	if err := extractor.ProcessExtractJob(context.Background(), job); err == nil {
		t.Fatal("Expected store failure to surface as a retryable error")
	}
}

func TestUnmarshalJSONArray(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		raw       string
		wantLen   int
		expectErr bool
	}{
		{
			name:    "clean array",
			raw:     `[{"category": "x", "insight": "y", "confidence": 0.8}]`,
			wantLen: 1,
		},
		{
			name:    "array wrapped in prose",
			raw:     "Tentu! Ini hasilnya: [{\"category\": \"x\", \"insight\": \"y\", \"confidence\": 0.8}] Semoga membantu.",
			wantLen: 1,
		},
		{
			name:    "empty array",
			raw:     "[]",
			wantLen: 0,
		},
		{
			name:      "no array at all",
			raw:       "maaf, tidak ada insight",
			expectErr: true,
		},
		{
			name:      "brackets but invalid json",
			raw:       "[not json]",
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var items []extractedPreference
			err := unmarshalJSONArray(tt.raw, &items)
			if tt.expectErr {
				if err == nil {
					t.Error("Expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if len(items) != tt.wantLen {
				t.Errorf("Got %d items, want %d", len(items), tt.wantLen)
			}
		})
	}
}
