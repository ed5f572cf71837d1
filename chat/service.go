// Package chat composes the generation service, the store, and the
// evaluator: it persists exchanges and attaches rated feedback with an
// automatic quality score when a reference answer is known.
package chat

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sourcegraph/conc"

	"gemma-chatbot/db"
	"gemma-chatbot/llm"
	"gemma-chatbot/metrics"
	"gemma-chatbot/utils"
)

// Service drives the write path: send a prompt, persist the exchange,
// record feedback.
type Service struct {
	provider llm.Provider
	store    *db.DB
	log      *utils.Logger
}

// NewService creates a chat service. The provider is injected; the
// service holds no global state beyond the store handle.
func NewService(provider llm.Provider, store *db.DB, log *utils.Logger) *Service {
	return &Service{provider: provider, store: store, log: log}
}

// Exchange is one completed prompt/response round trip
type Exchange struct {
	User      *db.Message
	Assistant *db.Message
}

// StartConversation creates a new conversation
func (s *Service) StartConversation(ctx context.Context, title string) (*db.Conversation, error) {
	return s.store.CreateConversation(ctx, title)
}

// Send appends the user's prompt to the conversation, asks the
// generation service for a response, and persists the assistant
// message. When generation fails no assistant message is persisted and
// the user turn stays recorded. On the first exchange of an untitled
// conversation a title is generated concurrently with the response.
func (s *Service) Send(ctx context.Context, conversationID int64, prompt string) (*Exchange, error) {
	conv, err := s.store.GetConversation(ctx, conversationID)
	if err != nil {
		return nil, err
	}

	userMsg, err := s.store.AppendMessage(ctx, conversationID, db.RoleUser, prompt)
	if err != nil {
		return nil, err
	}

	msgs, err := s.store.ListMessages(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	providerMsgs := make([]llm.Message, 0, len(msgs))
	for _, m := range msgs {
		providerMsgs = append(providerMsgs, llm.Message{Role: m.Role, Content: m.Content})
	}

	var reply, title string
	var replyErr, titleErr error
	wg := conc.NewWaitGroup()
	wg.Go(func() {
		reply, replyErr = s.provider.Chat(ctx, providerMsgs)
	})
	if conv.Title == "" {
		wg.Go(func() {
			// The title is decorative; a panic here must not take
			// down the exchange
			defer utils.RecoverFromPanic(s.log, "title generation")
			title, titleErr = s.provider.GenerateTitle(ctx, providerMsgs)
		})
	}
	if p := wg.WaitAndRecover(); p != nil {
		replyErr = fmt.Errorf("generation panicked: %v", p.Value)
	}

	if replyErr != nil {
		return nil, utils.WrapError(replyErr, "generation failed")
	}

	if conv.Title == "" {
		if titleErr != nil {
			s.log.Error("title generation failed for conversation %d: %v", conversationID, titleErr)
		} else if title != "" {
			if err := s.store.UpdateConversationTitle(ctx, conversationID, title); err != nil {
				s.log.Error("failed to set title for conversation %d: %v", conversationID, err)
			}
		}
	}

	assistantMsg, err := s.store.AppendMessage(ctx, conversationID, db.RoleAssistant, reply)
	if err != nil {
		return nil, err
	}

	return &Exchange{User: userMsg, Assistant: assistantMsg}, nil
}

// SubmitFeedback records a rating for an assistant message. When the
// prompt that produced the message matches a stored sample entry, the
// response is scored against the sample's reference answer and the
// score is saved with the feedback; otherwise the score stays absent,
// which is a valid state rather than an error.
func (s *Service) SubmitFeedback(ctx context.Context, messageID int64, rating, comment string, clientID uuid.UUID) (*db.Feedback, error) {
	msg, err := s.store.GetMessage(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if msg.Role != db.RoleAssistant {
		return nil, fmt.Errorf("message %d is not an assistant message: %w", messageID, db.ErrNotFound)
	}

	autoScore := s.scoreAgainstSample(ctx, msg)
	return s.store.UpsertFeedback(ctx, messageID, rating, comment, autoScore, clientID)
}

// scoreAgainstSample resolves the user prompt that precedes the
// assistant message and scores the response against a matching sample
// reference. Returns nil when no reference is available; scoring itself
// never fails.
func (s *Service) scoreAgainstSample(ctx context.Context, msg *db.Message) *float64 {
	prompt, err := s.precedingPrompt(ctx, msg)
	if err != nil {
		s.log.Error("failed to resolve prompt for message %d: %v", msg.ID, err)
		return nil
	}

	sample, err := s.store.FindSampleByPrompt(ctx, prompt)
	if errors.Is(err, db.ErrNotFound) {
		return nil
	}
	if err != nil {
		s.log.Error("sample lookup failed for message %d: %v", msg.ID, err)
		return nil
	}

	score := metrics.Score(msg.Content, sample.Reference)
	return &score
}

// precedingPrompt finds the closest user turn before the assistant turn
func (s *Service) precedingPrompt(ctx context.Context, msg *db.Message) (string, error) {
	msgs, err := s.store.ListMessages(ctx, msg.ConversationID)
	if err != nil {
		return "", err
	}
	prompt := ""
	for _, m := range msgs {
		if m.Ordinal >= msg.Ordinal {
			break
		}
		if m.Role == db.RoleUser {
			prompt = m.Content
		}
	}
	if prompt == "" {
		return "", fmt.Errorf("no user prompt precedes message %d", msg.ID)
	}
	return prompt, nil
}

// DeleteConversation removes a conversation and everything attached to it
func (s *Service) DeleteConversation(ctx context.Context, id int64) error {
	return s.store.DeleteConversation(ctx, id)
}
