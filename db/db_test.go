package db

import (
	"context"
	"path/filepath"
	"testing"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	database, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return database
}

func TestNewIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	first, err := New(path)
	if err != nil {
		t.Fatalf("first open failed: %v", err)
	}
	ctx := context.Background()
	if _, err := first.CreateConversation(ctx, "kept"); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	first.Close()

	// Reopening must not fail or lose data
	second, err := New(path)
	if err != nil {
		t.Fatalf("second open failed: %v", err)
	}
	defer second.Close()

	count, err := second.CountConversations(ctx)
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 conversation after reopen, got %d", count)
	}
}

func TestGetStats(t *testing.T) {
	database := newTestDB(t)
	ctx := context.Background()

	conv, err := database.CreateConversation(ctx, "stats")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if _, err := database.AppendMessage(ctx, conv.ID, RoleUser, "hi"); err != nil {
		t.Fatalf("append failed: %v", err)
	}

	stats, err := database.GetStats()
	if err != nil {
		t.Fatalf("stats failed: %v", err)
	}
	if stats.ConversationCount != 1 || stats.MessageCount != 1 {
		t.Errorf("unexpected counts: %+v", stats)
	}
	if stats.DBSizeBytes <= 0 {
		t.Errorf("expected positive db size, got %d", stats.DBSizeBytes)
	}
}

func TestVacuum(t *testing.T) {
	database := newTestDB(t)
	ctx := context.Background()

	conv, err := database.CreateConversation(ctx, "compactable")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if _, err := database.AppendMessage(ctx, conv.ID, RoleUser, "filler"); err != nil {
		t.Fatalf("append failed: %v", err)
	}
	if err := database.DeleteConversation(ctx, conv.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	if err := database.Vacuum(); err != nil {
		t.Fatalf("vacuum failed: %v", err)
	}

	// The store stays usable after compaction
	if _, err := database.CreateConversation(ctx, "after vacuum"); err != nil {
		t.Errorf("create after vacuum failed: %v", err)
	}
}
