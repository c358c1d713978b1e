package ai

import (
	"context"
)

// Message is one entry in the prompt sent to the completion capability.
// Role is "system", "user" or "assistant".
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Provider is the completion capability the chat pipeline and the
// distillation workers depend on. Implementations must accept a
// system-role entry followed by mixed user/assistant history.
type Provider interface {
	// Complete sends the ordered message list and returns the raw model
	// output. maxTokens caps the response length; zero means the
	// provider default.
	Complete(ctx context.Context, messages []Message, maxTokens int) (string, error)
}

// ProviderFactory creates a provider from string configuration
type ProviderFactory func(config map[string]string) (Provider, error)

// ProviderRegistry stores available completion providers
type ProviderRegistry struct {
	providers map[string]ProviderFactory
}

// NewProviderRegistry creates a new provider registry
func NewProviderRegistry() *ProviderRegistry {
	return &ProviderRegistry{
		providers: make(map[string]ProviderFactory),
	}
}

// Register registers a provider factory
func (r *ProviderRegistry) Register(name string, factory ProviderFactory) {
	r.providers[name] = factory
}

// GetProvider gets a provider by name
func (r *ProviderRegistry) GetProvider(name string, config map[string]string) (Provider, error) {
	factory, ok := r.providers[name]
	if !ok {
		return nil, &ErrProviderNotFound{Name: name}
	}

	return factory(config)
}

// ErrProviderNotFound is returned when a provider is not found
type ErrProviderNotFound struct {
	Name string
}

func (e *ErrProviderNotFound) Error() string {
	return "AI provider not found: " + e.Name
}
