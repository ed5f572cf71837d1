package db

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestCreateAndGetConversation(t *testing.T) {
	database := newTestDB(t)
	ctx := context.Background()

	conv, err := database.CreateConversation(ctx, "greetings")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if conv.ID == 0 {
		t.Fatalf("expected a fresh id, got 0")
	}

	got, err := database.GetConversation(ctx, conv.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.Title != "greetings" {
		t.Errorf("expected title %q, got %q", "greetings", got.Title)
	}
}

func TestGetConversationNotFound(t *testing.T) {
	database := newTestDB(t)

	_, err := database.GetConversation(context.Background(), 12345)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestListConversationsNewestFirst(t *testing.T) {
	database := newTestDB(t)
	ctx := context.Background()

	var ids []int64
	for _, title := range []string{"first", "second", "third"} {
		conv, err := database.CreateConversation(ctx, title)
		if err != nil {
			t.Fatalf("create failed: %v", err)
		}
		ids = append(ids, conv.ID)
		time.Sleep(2 * time.Millisecond)
	}

	conversations, err := database.ListConversations(ctx, 10, 0)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(conversations) != 3 {
		t.Fatalf("expected 3 conversations, got %d", len(conversations))
	}
	if conversations[0].ID != ids[2] || conversations[2].ID != ids[0] {
		t.Errorf("expected newest-first ordering, got %d,%d,%d",
			conversations[0].ID, conversations[1].ID, conversations[2].ID)
	}

	// Stable pagination: limit 1 offset 0 returns exactly the newest
	page, err := database.ListConversations(ctx, 1, 0)
	if err != nil {
		t.Fatalf("paged list failed: %v", err)
	}
	if len(page) != 1 || page[0].ID != ids[2] {
		t.Errorf("expected newest conversation only, got %+v", page)
	}

	page, err = database.ListConversations(ctx, 1, 1)
	if err != nil {
		t.Fatalf("paged list failed: %v", err)
	}
	if len(page) != 1 || page[0].ID != ids[1] {
		t.Errorf("expected second-newest conversation, got %+v", page)
	}
}

func TestDeleteConversationCascades(t *testing.T) {
	database := newTestDB(t)
	ctx := context.Background()

	conv, err := database.CreateConversation(ctx, "doomed")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if _, err := database.AppendMessage(ctx, conv.ID, RoleUser, "hi"); err != nil {
		t.Fatalf("append failed: %v", err)
	}
	assistant, err := database.AppendMessage(ctx, conv.ID, RoleAssistant, "hello")
	if err != nil {
		t.Fatalf("append failed: %v", err)
	}
	if _, err := database.UpsertFeedback(ctx, assistant.ID, RatingUp, "", nil, testClientID); err != nil {
		t.Fatalf("feedback failed: %v", err)
	}

	if err := database.DeleteConversation(ctx, conv.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	if _, err := database.GetConversation(ctx, conv.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
	msgs, err := database.ListMessages(ctx, conv.ID)
	if err != nil {
		t.Fatalf("list messages failed: %v", err)
	}
	if len(msgs) != 0 {
		t.Errorf("expected messages to cascade, got %d", len(msgs))
	}
	if _, err := database.GetFeedback(ctx, assistant.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected feedback to cascade, got %v", err)
	}

	// Deleting again must be distinguishable from success
	if err := database.DeleteConversation(ctx, conv.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestCreateConversationExpiredDeadline(t *testing.T) {
	database := newTestDB(t)

	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()

	_, err := database.CreateConversation(ctx, "too late")
	if !errors.Is(err, ErrTimeout) {
		t.Errorf("expected ErrTimeout, got %v", err)
	}
}
