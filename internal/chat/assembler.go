// Package chat implements the synchronous chat turn pipeline: intent
// detection, prompt composition, context assembly, the completion call,
// reply shaping, persistence and the distillation triggers.
package chat

import (
	"github.com/arka-labs/strategist-api/internal/models"
	"github.com/arka-labs/strategist-api/internal/services/ai"
)

// Assemble builds the ordered message list for the completion call.
// The order is strict and load-bearing: system prompt first, then the
// rolling summary as a second system message when one exists, then the
// recent persisted messages oldest-first, then the new user message
// last. The model must see older context before the immediate ask.
//
// There is deliberately no token budgeting beyond the fixed recent
// window; the caller controls the window size.
func Assemble(systemPrompt, rollingSummary string, recent []*models.Message, userMessage string) []ai.Message {
	messages := make([]ai.Message, 0, len(recent)+3)

	messages = append(messages, ai.Message{Role: "system", Content: systemPrompt})

	if rollingSummary != "" {
		messages = append(messages, ai.Message{
			Role:    "system",
			Content: "Ringkasan percakapan sebelumnya:\n" + rollingSummary,
		})
	}

	for _, msg := range recent {
		messages = append(messages, ai.Message{
			Role:    string(msg.Role),
			Content: msg.Content,
		})
	}

	messages = append(messages, ai.Message{Role: "user", Content: userMessage})

	return messages
}
