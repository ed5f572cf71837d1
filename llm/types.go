package llm

import (
	"context"
	"strings"
)

// Message represents a chat message
type Message struct {
	Role    string `json:"role"` // "user" or "assistant" or "system"
	Content string `json:"content"`
}

// Provider is the generation service consumed by the chat layer. A
// provider failure means no assistant message is produced; nothing
// partial is ever persisted by callers.
type Provider interface {
	// Chat sends the conversation so far and returns the complete response
	Chat(ctx context.Context, messages []Message) (string, error)

	// GenerateTitle generates a short title based on the conversation messages
	GenerateTitle(ctx context.Context, messages []Message) (string, error)

	// Name returns the provider name
	Name() string

	// ValidateConfig validates the provider configuration
	ValidateConfig() error
}

// Config represents provider configuration
type Config struct {
	ProviderName string // Display name
	APIKey       string
	BaseURL      string
	Model        string
	Timeout      int // seconds
	MaxTokens    int
	Temperature  float64
}

// cleanTitle cleans up a generated title by removing quotes and extra whitespace
func cleanTitle(title string) string {
	title = strings.TrimSpace(title)
	title = strings.Trim(title, "\"'")
	title = strings.TrimSpace(title)

	if len(title) > 100 {
		title = title[:100] + "..."
	}
	if title == "" {
		title = "New Chat"
	}
	return title
}
