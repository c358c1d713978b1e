package validation

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/arka-labs/strategist-api/internal/models"
	"github.com/go-playground/validator/v10"
)

var (
	// Validate is a shared validator instance
	Validate *validator.Validate
)

func init() {
	Validate = validator.New()

	// Register custom validators for enums
	// These should never fail in normal operation, but log if they do
	if err := Validate.RegisterValidation("preference_category", validatePreferenceCategory); err != nil {
		panic(fmt.Sprintf("failed to register preference_category validator: %v", err))
	}
	if err := Validate.RegisterValidation("notification_type", validateNotificationType); err != nil {
		panic(fmt.Sprintf("failed to register notification_type validator: %v", err))
	}
}

// validatePreferenceCategory validates that a string is a valid PreferenceCategory enum value
func validatePreferenceCategory(fl validator.FieldLevel) bool {
	return models.PreferenceCategory(fl.Field().String()).IsValid()
}

// validateNotificationType validates that a string is a valid NotificationType enum value
func validateNotificationType(fl validator.FieldLevel) bool {
	switch models.NotificationType(fl.Field().String()) {
	case models.NotificationTypeInsight, models.NotificationTypeSystem:
		return true
	default:
		return false
	}
}

// SanitizeText sanitizes text input by trimming whitespace and removing control characters
func SanitizeText(text string) string {
	// Trim whitespace
	text = strings.TrimSpace(text)

	// Remove control characters except newline and tab
	var sanitized strings.Builder
	for _, r := range text {
		if unicode.IsControl(r) && r != '\n' && r != '\t' {
			continue
		}
		sanitized.WriteRune(r)
	}

	return sanitized.String()
}

// ValidatePreferenceCategory validates a PreferenceCategory string value
func ValidatePreferenceCategory(value string) error {
	if !models.PreferenceCategory(value).IsValid() {
		return fmt.Errorf("invalid category: %s", value)
	}
	return nil
}

// ValidateConfidence validates an extractor confidence value
func ValidateConfidence(value float64) error {
	if !models.ValidConfidence(value) {
		return fmt.Errorf("invalid confidence: %g (must be between %g and %g)",
			value, models.MinPreferenceConfidence, models.MaxPreferenceConfidence)
	}
	return nil
}
