package workers

import (
	"strings"

	"github.com/arka-labs/strategist-api/internal/models"
)

// renderTranscript flattens messages into the plain "role: content"
// form the distillation prompts consume.
func renderTranscript(messages []*models.Message) string {
	var sb strings.Builder
	for _, msg := range messages {
		sb.WriteString(string(msg.Role))
		sb.WriteString(": ")
		sb.WriteString(msg.Content)
		sb.WriteString("\n")
	}
	return sb.String()
}
