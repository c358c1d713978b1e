package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/arka-labs/strategist-api/internal/database"
	"github.com/arka-labs/strategist-api/internal/models"
	"github.com/arka-labs/strategist-api/internal/queue"
	"github.com/arka-labs/strategist-api/internal/services/ai"
)

const (
	// ExtractMinMessages is the floor below which extraction is a no-op
	ExtractMinMessages = 6

	// ExtractWindow is how many recent messages feed one extraction pass
	ExtractWindow = 20

	// MaxPreferenceItems caps how many preference insights one pass may yield
	MaxPreferenceItems = 8

	// MaxFeedbackItems caps how many persona feedback items one pass may yield
	MaxFeedbackItems = 4

	extractTimeout   = 2 * time.Minute
	extractMaxTokens = 800
)

const preferenceExtractionPrompt = `Kamu adalah pengekstrak insight. Baca percakapan berikut dan temukan preferensi atau karakteristik pengguna yang bertahan lama (bukan suasana hati sesaat).
Kategori yang diizinkan: gaya_berpikir, gaya_komunikasi, konteks_bisnis, preferensi_format, fokus_risiko, kebiasaan_keputusan.
Balas HANYA dengan array JSON, tanpa teks lain. Setiap elemen:
{"category": "<kategori>", "insight": "<satu kalimat insight>", "confidence": <0.5 sampai 1.0>, "source_summary": "<bukti singkat dari percakapan>"}
Maksimal 8 elemen. Jika tidak ada insight baru, balas dengan [].
Insight yang sudah ada di daftar PROFIL SAAT INI boleh muncul lagi hanya jika keyakinanmu berubah.`

const personaFeedbackPrompt = `Kamu adalah pengekstrak umpan balik persona. Asisten berbicara dengan dua suara: MENTOR (reflektif) dan ANALIS (analitis).
Baca percakapan berikut dan temukan reaksi pengguna terhadap masing-masing suara: mana yang dia respon, abaikan, puji, atau keluhkan.
Balas HANYA dengan array JSON, tanpa teks lain. Setiap elemen:
{"target": "<mentor|analis>", "feedback": "<satu kalimat observasi>", "confidence": <0.5 sampai 1.0>}
Maksimal 4 elemen. Jika tidak ada sinyal, balas dengan [].`

// extractedPreference mirrors one element of the model's JSON output
type extractedPreference struct {
	Category      string  `json:"category"`
	Insight       string  `json:"insight"`
	Confidence    float64 `json:"confidence"`
	SourceSummary string  `json:"source_summary"`
}

type extractedFeedback struct {
	Target     string  `json:"target"`
	Feedback   string  `json:"feedback"`
	Confidence float64 `json:"confidence"`
}

// Extractor mines recent conversation for durable preferences and
// persona feedback. Both passes are merge-idempotent: re-deriving an
// insight the store already holds updates it in place instead of
// duplicating it, so overlapping windows are safe.
type Extractor struct {
	provider    ai.Provider
	messages    database.MessageRepositoryInterface
	preferences database.PreferenceRepositoryInterface
	feedback    database.PersonaFeedbackRepositoryInterface
	logger      *zap.Logger
}

// NewExtractor creates an extractor
func NewExtractor(
	provider ai.Provider,
	messages database.MessageRepositoryInterface,
	preferences database.PreferenceRepositoryInterface,
	feedback database.PersonaFeedbackRepositoryInterface,
	logger *zap.Logger,
) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{
		provider:    provider,
		messages:    messages,
		preferences: preferences,
		feedback:    feedback,
		logger:      logger,
	}
}

// ProcessExtractJob runs the preference pass and the persona feedback
// pass for the job's user. Unparseable model output means no new
// insights for this window, not a retryable failure; the next trigger
// gets another chance at largely the same conversation.
func (e *Extractor) ProcessExtractJob(ctx context.Context, job *queue.Job) error {
	count, err := e.messages.Count(ctx, job.UserID)
	if err != nil {
		return fmt.Errorf("failed to count messages: %w", err)
	}
	if count < ExtractMinMessages {
		e.logger.Debug("extract_skipped_too_few_messages",
			zap.String("user_id", job.UserID.String()),
			zap.Int("count", count))
		return nil
	}

	recent, err := e.messages.GetRecent(ctx, job.UserID, ExtractWindow)
	if err != nil {
		return fmt.Errorf("failed to load recent messages: %w", err)
	}
	transcript := renderTranscript(recent)

	if err := e.extractPreferences(ctx, job, transcript); err != nil {
		return err
	}
	return e.extractPersonaFeedback(ctx, job, transcript)
}

func (e *Extractor) extractPreferences(ctx context.Context, job *queue.Job, transcript string) error {
	current, err := e.preferences.GetByUserID(ctx, job.UserID)
	if err != nil {
		return fmt.Errorf("failed to load current preferences: %w", err)
	}

	var sb strings.Builder
	if len(current) > 0 {
		sb.WriteString("PROFIL SAAT INI:\n")
		for _, p := range current {
			sb.WriteString(fmt.Sprintf("- [%s] %s\n", p.Category, p.Insight))
		}
		sb.WriteString("\n")
	}
	sb.WriteString("PERCAKAPAN:\n")
	sb.WriteString(transcript)

	callCtx, cancel := context.WithTimeout(ctx, extractTimeout)
	defer cancel()

	raw, err := e.provider.Complete(callCtx, []ai.Message{
		{Role: "system", Content: preferenceExtractionPrompt},
		{Role: "user", Content: sb.String()},
	}, extractMaxTokens)
	if err != nil {
		return fmt.Errorf("failed to run preference extraction: %w", err)
	}

	var items []extractedPreference
	if err := unmarshalJSONArray(raw, &items); err != nil {
		e.logger.Warn("preference_extraction_unparseable",
			zap.String("user_id", job.UserID.String()),
			zap.Error(err))
		return nil
	}
	if len(items) > MaxPreferenceItems {
		items = items[:MaxPreferenceItems]
	}

	stored := 0
	for _, item := range items {
		category := models.PreferenceCategory(item.Category)
		if !category.IsValid() || strings.TrimSpace(item.Insight) == "" || !models.ValidConfidence(item.Confidence) {
			e.logger.Debug("preference_item_dropped",
				zap.String("user_id", job.UserID.String()),
				zap.String("category", item.Category),
				zap.Float64("confidence", item.Confidence))
			continue
		}

		pref := &models.Preference{
			UserID:        job.UserID,
			Category:      category,
			Insight:       strings.TrimSpace(item.Insight),
			Confidence:    item.Confidence,
			SourceSummary: strings.TrimSpace(item.SourceSummary),
		}
		if err := e.preferences.Upsert(ctx, pref); err != nil {
			return fmt.Errorf("failed to upsert preference: %w", err)
		}
		stored++
	}

	e.logger.Info("preferences_extracted",
		zap.String("user_id", job.UserID.String()),
		zap.Int("returned", len(items)),
		zap.Int("stored", stored))
	return nil
}

func (e *Extractor) extractPersonaFeedback(ctx context.Context, job *queue.Job, transcript string) error {
	callCtx, cancel := context.WithTimeout(ctx, extractTimeout)
	defer cancel()

	raw, err := e.provider.Complete(callCtx, []ai.Message{
		{Role: "system", Content: personaFeedbackPrompt},
		{Role: "user", Content: "PERCAKAPAN:\n" + transcript},
	}, extractMaxTokens)
	if err != nil {
		return fmt.Errorf("failed to run persona feedback extraction: %w", err)
	}

	var items []extractedFeedback
	if err := unmarshalJSONArray(raw, &items); err != nil {
		e.logger.Warn("persona_feedback_unparseable",
			zap.String("user_id", job.UserID.String()),
			zap.Error(err))
		return nil
	}
	if len(items) > MaxFeedbackItems {
		items = items[:MaxFeedbackItems]
	}

	stored := 0
	for _, item := range items {
		target := strings.ToLower(strings.TrimSpace(item.Target))
		if target == "" || strings.TrimSpace(item.Feedback) == "" || !models.ValidConfidence(item.Confidence) {
			continue
		}

		fb := &models.PersonaFeedback{
			UserID:     job.UserID,
			Target:     target,
			Feedback:   strings.TrimSpace(item.Feedback),
			Confidence: item.Confidence,
		}
		if err := e.feedback.Upsert(ctx, fb); err != nil {
			return fmt.Errorf("failed to upsert persona feedback: %w", err)
		}
		stored++
	}

	e.logger.Info("persona_feedback_extracted",
		zap.String("user_id", job.UserID.String()),
		zap.Int("returned", len(items)),
		zap.Int("stored", stored))
	return nil
}

// unmarshalJSONArray parses the model output as a JSON array, tolerating
// prose or markdown fences around it by salvaging the outermost
// bracketed span before giving up.
func unmarshalJSONArray(raw string, out any) error {
	raw = strings.TrimSpace(raw)
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		start := strings.Index(raw, "[")
		end := strings.LastIndex(raw, "]")
		if start == -1 || end == -1 || end <= start {
			return err
		}
		return json.Unmarshal([]byte(raw[start:end+1]), out)
	}
	return nil
}
