package db

import (
	"time"

	"github.com/google/uuid"
)

// Message roles
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Feedback ratings
const (
	RatingUp   = "up"
	RatingDown = "down"
)

// ValidRole reports whether role is one of the allowed message roles.
func ValidRole(role string) bool {
	return role == RoleUser || role == RoleAssistant
}

// ValidRating reports whether rating is one of the allowed feedback ratings.
func ValidRating(rating string) bool {
	return rating == RatingUp || rating == RatingDown
}

// Conversation represents a chat conversation
type Conversation struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Message represents a single turn in a conversation. Ordinal is the
// display position within the conversation, assigned on insert.
type Message struct {
	ID             int64     `json:"id"`
	ConversationID int64     `json:"conversation_id"`
	Role           string    `json:"role"` // "user" or "assistant"
	Content        string    `json:"content"`
	Ordinal        int64     `json:"ordinal"`
	CreatedAt      time.Time `json:"created_at"`
}

// Feedback is the user's rating of one assistant message, at most one
// per message. AutoScore is nil when no reference answer was available.
type Feedback struct {
	MessageID int64     `json:"message_id"`
	Rating    string    `json:"rating"` // "up" or "down"
	Comment   string    `json:"comment"`
	AutoScore *float64  `json:"auto_score,omitempty"`
	ClientID  uuid.UUID `json:"client_id"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SampleEntry is a seed prompt/reference pair. The reference doubles as
// ground truth for automatic scoring when a live prompt matches.
type SampleEntry struct {
	ID        int64  `json:"id"`
	Prompt    string `json:"prompt"`
	Reference string `json:"reference"`
}

// ConversationSummary is the browse-view row: conversation header plus
// aggregates over its messages and feedback.
type ConversationSummary struct {
	ID           int64     `json:"id"`
	Title        string    `json:"title"`
	CreatedAt    time.Time `json:"created_at"`
	LastActivity time.Time `json:"last_activity"`
	MessageCount int64     `json:"message_count"`
	AvgAutoScore *float64  `json:"avg_auto_score,omitempty"`
}
