// Package history serves the read-oriented views of stored
// conversations: the browse list, full conversation detail with
// feedback inlined, aggregate score statistics, full-text search, and
// the sample-data management surface.
package history

import (
	"context"
	"fmt"

	"gemma-chatbot/db"
)

// DefaultPageSize bounds Browse when the caller passes limit <= 0
const DefaultPageSize = 20

// Service exposes the read paths over the store
type Service struct {
	store *db.DB
}

// NewService creates a history service backed by store
func NewService(store *db.DB) *Service {
	return &Service{store: store}
}

// MessageDetail is one turn with its feedback inlined. Feedback is nil
// for user turns and for unrated assistant turns.
type MessageDetail struct {
	db.Message
	Feedback *db.Feedback `json:"feedback,omitempty"`
}

// ConversationDetail is a full conversation in display order
type ConversationDetail struct {
	Conversation db.Conversation `json:"conversation"`
	Messages     []MessageDetail `json:"messages"`
}

// Browse returns conversation summaries newest-first
func (s *Service) Browse(ctx context.Context, limit, offset int) ([]*db.ConversationSummary, error) {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return s.store.ListConversationSummaries(ctx, limit, offset)
}

// Detail loads one conversation with messages in ordinal order and each
// assistant message's feedback attached when present
func (s *Service) Detail(ctx context.Context, id int64) (*ConversationDetail, error) {
	conv, err := s.store.GetConversation(ctx, id)
	if err != nil {
		return nil, err
	}

	messages, err := s.store.ListMessages(ctx, id)
	if err != nil {
		return nil, err
	}

	feedback, err := s.store.ListFeedbackForConversation(ctx, id)
	if err != nil {
		return nil, err
	}

	detail := &ConversationDetail{
		Conversation: *conv,
		Messages:     make([]MessageDetail, 0, len(messages)),
	}
	for _, msg := range messages {
		detail.Messages = append(detail.Messages, MessageDetail{
			Message:  *msg,
			Feedback: feedback[msg.ID],
		})
	}

	return detail, nil
}

// ScoreStats returns aggregate feedback statistics for the whole store
func (s *Service) ScoreStats(ctx context.Context) (*db.ScoreStats, error) {
	return s.store.GetScoreStats(ctx)
}

// Search runs full-text search over message content
func (s *Service) Search(ctx context.Context, query string, limit int) ([]*db.SearchResult, error) {
	if query == "" {
		return nil, fmt.Errorf("%w: empty search query", db.ErrValidation)
	}
	if limit <= 0 {
		limit = DefaultPageSize
	}
	return s.store.SearchMessages(ctx, query, limit)
}

// Samples lists all sample entries
func (s *Service) Samples(ctx context.Context) ([]*db.SampleEntry, error) {
	return s.store.ListSamples(ctx)
}

// AddSample adds a prompt/reference pair. Prompts are unique; adding an
// existing prompt is a no-op and reports inserted=false.
func (s *Service) AddSample(ctx context.Context, prompt, reference string) (bool, error) {
	return s.store.AddSample(ctx, prompt, reference)
}

// RemoveSample deletes a sample entry by ID
func (s *Service) RemoveSample(ctx context.Context, id int64) error {
	return s.store.DeleteSample(ctx, id)
}
