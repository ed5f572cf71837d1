package db

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
)

var testClientID = uuid.MustParse("7f8c0a52-3e19-4a43-9a57-2f4f6f8d1c0e")

func seedExchange(t *testing.T, database *DB) (convID, userID, assistantID int64) {
	t.Helper()
	ctx := context.Background()

	conv, err := database.CreateConversation(ctx, "exchange")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	user, err := database.AppendMessage(ctx, conv.ID, RoleUser, "What is a large language model?")
	if err != nil {
		t.Fatalf("append user failed: %v", err)
	}
	assistant, err := database.AppendMessage(ctx, conv.ID, RoleAssistant, "A model trained on lots of text.")
	if err != nil {
		t.Fatalf("append assistant failed: %v", err)
	}
	return conv.ID, user.ID, assistant.ID
}

func TestUpsertFeedbackLastWriteWins(t *testing.T) {
	database := newTestDB(t)
	ctx := context.Background()
	_, _, assistantID := seedExchange(t, database)

	score := 0.8
	first, err := database.UpsertFeedback(ctx, assistantID, RatingUp, "nice", &score, testClientID)
	if err != nil {
		t.Fatalf("first upsert failed: %v", err)
	}
	if first.AutoScore == nil || *first.AutoScore != 0.8 {
		t.Errorf("expected auto score 0.8, got %v", first.AutoScore)
	}

	second, err := database.UpsertFeedback(ctx, assistantID, RatingDown, "changed my mind", nil, testClientID)
	if err != nil {
		t.Fatalf("second upsert failed: %v", err)
	}
	if second.Rating != RatingDown {
		t.Errorf("expected rating %q, got %q", RatingDown, second.Rating)
	}

	// Exactly one record, reflecting the second call
	got, err := database.GetFeedback(ctx, assistantID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.Rating != RatingDown || got.Comment != "changed my mind" {
		t.Errorf("expected second submission to win, got %+v", got)
	}
	if got.AutoScore != nil {
		t.Errorf("expected auto score to be overwritten to absent, got %v", *got.AutoScore)
	}
	if got.ClientID != testClientID {
		t.Errorf("expected client id %s, got %s", testClientID, got.ClientID)
	}

	stats, err := database.GetScoreStats(ctx)
	if err != nil {
		t.Fatalf("stats failed: %v", err)
	}
	if stats.FeedbackCount != 1 {
		t.Errorf("expected exactly one feedback record, got %d", stats.FeedbackCount)
	}
}

func TestUpsertFeedbackRejectsUserMessage(t *testing.T) {
	database := newTestDB(t)
	ctx := context.Background()
	_, userID, _ := seedExchange(t, database)

	_, err := database.UpsertFeedback(ctx, userID, RatingUp, "", nil, testClientID)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for user message, got %v", err)
	}
}

func TestUpsertFeedbackUnknownMessage(t *testing.T) {
	database := newTestDB(t)

	_, err := database.UpsertFeedback(context.Background(), 999, RatingUp, "", nil, testClientID)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestUpsertFeedbackInvalidRating(t *testing.T) {
	database := newTestDB(t)
	ctx := context.Background()
	_, _, assistantID := seedExchange(t, database)

	for _, rating := range []string{"", "sideways", "5"} {
		if _, err := database.UpsertFeedback(ctx, assistantID, rating, "", nil, testClientID); !errors.Is(err, ErrValidation) {
			t.Errorf("rating %q: expected ErrValidation, got %v", rating, err)
		}
	}
}

func TestGetScoreStatsAggregates(t *testing.T) {
	database := newTestDB(t)
	ctx := context.Background()

	conv, err := database.CreateConversation(ctx, "rated")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	scores := []float64{0.2, 0.6}
	for i, s := range scores {
		if _, err := database.AppendMessage(ctx, conv.ID, RoleUser, "q"); err != nil {
			t.Fatalf("append failed: %v", err)
		}
		assistant, err := database.AppendMessage(ctx, conv.ID, RoleAssistant, "a")
		if err != nil {
			t.Fatalf("append failed: %v", err)
		}
		rating := RatingUp
		if i == 1 {
			rating = RatingDown
		}
		score := s
		if _, err := database.UpsertFeedback(ctx, assistant.ID, rating, "", &score, testClientID); err != nil {
			t.Fatalf("feedback failed: %v", err)
		}
	}

	stats, err := database.GetScoreStats(ctx)
	if err != nil {
		t.Fatalf("stats failed: %v", err)
	}
	if stats.FeedbackCount != 2 || stats.ScoredCount != 2 {
		t.Errorf("unexpected counts: %+v", stats)
	}
	if stats.RatingCounts[RatingUp] != 1 || stats.RatingCounts[RatingDown] != 1 {
		t.Errorf("unexpected rating counts: %v", stats.RatingCounts)
	}
	if stats.AvgAutoScore == nil || *stats.AvgAutoScore < 0.39 || *stats.AvgAutoScore > 0.41 {
		t.Errorf("expected avg auto score around 0.4, got %v", stats.AvgAutoScore)
	}
	if len(stats.DailyActivity) == 0 {
		t.Errorf("expected daily activity rows")
	}
}
