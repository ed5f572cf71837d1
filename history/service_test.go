package history

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"gemma-chatbot/db"
)

func newTestService(t *testing.T) (*Service, *db.DB) {
	t.Helper()
	store, err := db.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return NewService(store), store
}

func TestBrowseNewestFirstWithAggregates(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	older, err := store.CreateConversation(ctx, "older")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if _, err := store.AppendMessage(ctx, older.ID, db.RoleUser, "q"); err != nil {
		t.Fatalf("append failed: %v", err)
	}
	assistant, err := store.AppendMessage(ctx, older.ID, db.RoleAssistant, "a")
	if err != nil {
		t.Fatalf("append failed: %v", err)
	}
	score := 0.6
	if _, err := store.UpsertFeedback(ctx, assistant.ID, db.RatingUp, "", &score, uuid.New()); err != nil {
		t.Fatalf("feedback failed: %v", err)
	}

	time.Sleep(2 * time.Millisecond)
	newer, err := store.CreateConversation(ctx, "newer")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	// limit=1 offset=0 returns exactly the most recently created one
	page, err := svc.Browse(ctx, 1, 0)
	if err != nil {
		t.Fatalf("browse failed: %v", err)
	}
	if len(page) != 1 || page[0].ID != newer.ID {
		t.Fatalf("expected only the newest conversation, got %+v", page)
	}
	if page[0].MessageCount != 0 || page[0].AvgAutoScore != nil {
		t.Errorf("expected empty aggregates for fresh conversation, got %+v", page[0])
	}

	all, err := svc.Browse(ctx, 10, 0)
	if err != nil {
		t.Fatalf("browse failed: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 summaries, got %d", len(all))
	}
	got := all[1]
	if got.ID != older.ID || got.MessageCount != 2 {
		t.Errorf("unexpected summary for older conversation: %+v", got)
	}
	if got.AvgAutoScore == nil || *got.AvgAutoScore != 0.6 {
		t.Errorf("expected avg auto score 0.6, got %v", got.AvgAutoScore)
	}
	if got.LastActivity.Before(got.CreatedAt) {
		t.Errorf("last activity predates creation: %+v", got)
	}
}

func TestDetailInlinesFeedback(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	conv, err := store.CreateConversation(ctx, "greeting")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	user, err := store.AppendMessage(ctx, conv.ID, db.RoleUser, "Hi")
	if err != nil {
		t.Fatalf("append failed: %v", err)
	}
	assistant, err := store.AppendMessage(ctx, conv.ID, db.RoleAssistant, "Hello")
	if err != nil {
		t.Fatalf("append failed: %v", err)
	}
	score := 0.8
	if _, err := store.UpsertFeedback(ctx, assistant.ID, db.RatingUp, "good answer", &score, uuid.New()); err != nil {
		t.Fatalf("feedback failed: %v", err)
	}

	detail, err := svc.Detail(ctx, conv.ID)
	if err != nil {
		t.Fatalf("detail failed: %v", err)
	}
	if len(detail.Messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(detail.Messages))
	}
	if detail.Messages[0].ID != user.ID || detail.Messages[0].Ordinal != 0 {
		t.Errorf("expected user message first, got %+v", detail.Messages[0])
	}
	if detail.Messages[1].ID != assistant.ID || detail.Messages[1].Ordinal != 1 {
		t.Errorf("expected assistant message second, got %+v", detail.Messages[1])
	}
	if detail.Messages[0].Feedback != nil {
		t.Errorf("user message must not carry feedback")
	}
	fb := detail.Messages[1].Feedback
	if fb == nil {
		t.Fatalf("expected feedback inlined on assistant message")
	}
	if fb.Rating != db.RatingUp || fb.AutoScore == nil || *fb.AutoScore != 0.8 {
		t.Errorf("unexpected feedback: %+v", fb)
	}
}

func TestDetailNotFound(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Detail(context.Background(), 404)
	if !errors.Is(err, db.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSampleManagement(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	inserted, err := svc.AddSample(ctx, "What is Go?", "A language.")
	if err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if !inserted {
		t.Fatalf("expected insert")
	}
	// Duplicate prompt is idempotent
	inserted, err = svc.AddSample(ctx, "What is Go?", "Another answer.")
	if err != nil {
		t.Fatalf("duplicate add failed: %v", err)
	}
	if inserted {
		t.Errorf("expected duplicate prompt to be a no-op")
	}

	samples, err := svc.Samples(ctx)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(samples) != 1 {
		t.Fatalf("expected 1 sample, got %d", len(samples))
	}

	if err := svc.RemoveSample(ctx, samples[0].ID); err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	if err := svc.RemoveSample(ctx, samples[0].ID); !errors.Is(err, db.ErrNotFound) {
		t.Errorf("expected ErrNotFound on second remove, got %v", err)
	}
}

func TestSearchValidation(t *testing.T) {
	svc, _ := newTestService(t)

	if _, err := svc.Search(context.Background(), "", 10); !errors.Is(err, db.ErrValidation) {
		t.Errorf("expected ErrValidation for empty query, got %v", err)
	}
}

func TestExportMarkdown(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	conv, err := store.CreateConversation(ctx, "transcript")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if _, err := store.AppendMessage(ctx, conv.ID, db.RoleUser, "Hi"); err != nil {
		t.Fatalf("append failed: %v", err)
	}
	assistant, err := store.AppendMessage(ctx, conv.ID, db.RoleAssistant, "Hello")
	if err != nil {
		t.Fatalf("append failed: %v", err)
	}
	if _, err := store.UpsertFeedback(ctx, assistant.ID, db.RatingDown, "too short", nil, uuid.New()); err != nil {
		t.Fatalf("feedback failed: %v", err)
	}

	out, err := svc.ExportMarkdown(ctx, conv.ID)
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}
	for _, want := range []string{"# transcript", "## User", "Hi", "## Assistant", "Hello", "Rating: down", "too short"} {
		if !strings.Contains(out, want) {
			t.Errorf("export missing %q:\n%s", want, out)
		}
	}
}
