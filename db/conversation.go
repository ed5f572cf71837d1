package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// CreateConversation creates a new conversation
func (db *DB) CreateConversation(ctx context.Context, title string) (*Conversation, error) {
	now := time.Now()
	result, err := db.conn.ExecContext(ctx,
		"INSERT INTO conversations (title, created_at, updated_at) VALUES (?, ?, ?)",
		title, now, now,
	)
	if err != nil {
		return nil, mapErr(fmt.Errorf("failed to create conversation: %w", err))
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get conversation ID: %w", err)
	}

	return &Conversation{
		ID:        id,
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// GetConversation retrieves a conversation by ID
func (db *DB) GetConversation(ctx context.Context, id int64) (*Conversation, error) {
	var conv Conversation
	err := db.conn.QueryRowContext(ctx,
		"SELECT id, title, created_at, updated_at FROM conversations WHERE id = ?",
		id,
	).Scan(&conv.ID, &conv.Title, &conv.CreatedAt, &conv.UpdatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("conversation %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, mapErr(fmt.Errorf("failed to get conversation: %w", err))
	}

	return &conv, nil
}

// ListConversations retrieves conversations newest-first by creation
// time. The id tiebreak keeps pagination stable for rows created within
// the same timestamp granularity.
func (db *DB) ListConversations(ctx context.Context, limit, offset int) ([]*Conversation, error) {
	rows, err := db.conn.QueryContext(ctx,
		"SELECT id, title, created_at, updated_at FROM conversations ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?",
		limit, offset,
	)
	if err != nil {
		return nil, mapErr(fmt.Errorf("failed to list conversations: %w", err))
	}
	defer rows.Close()

	var conversations []*Conversation
	for rows.Next() {
		var conv Conversation
		if err := rows.Scan(&conv.ID, &conv.Title, &conv.CreatedAt, &conv.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan conversation: %w", err)
		}
		conversations = append(conversations, &conv)
	}

	return conversations, rows.Err()
}

// ListConversationSummaries returns the browse view: one row per
// conversation with message count and the average auto score across its
// feedback, newest-first with stable pagination.
func (db *DB) ListConversationSummaries(ctx context.Context, limit, offset int) ([]*ConversationSummary, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT c.id, c.title, c.created_at, c.updated_at,
		       COUNT(m.id) AS message_count,
		       AVG(f.auto_score) AS avg_auto_score
		FROM conversations c
		LEFT JOIN messages m ON m.conversation_id = c.id
		LEFT JOIN feedback f ON f.message_id = m.id
		GROUP BY c.id
		ORDER BY c.created_at DESC, c.id DESC
		LIMIT ? OFFSET ?
	`, limit, offset)
	if err != nil {
		return nil, mapErr(fmt.Errorf("failed to list conversation summaries: %w", err))
	}
	defer rows.Close()

	var summaries []*ConversationSummary
	for rows.Next() {
		var s ConversationSummary
		var avg sql.NullFloat64
		if err := rows.Scan(&s.ID, &s.Title, &s.CreatedAt, &s.LastActivity, &s.MessageCount, &avg); err != nil {
			return nil, fmt.Errorf("failed to scan conversation summary: %w", err)
		}
		if avg.Valid {
			s.AvgAutoScore = &avg.Float64
		}
		summaries = append(summaries, &s)
	}

	return summaries, rows.Err()
}

// UpdateConversationTitle sets a conversation's title
func (db *DB) UpdateConversationTitle(ctx context.Context, id int64, title string) error {
	result, err := db.conn.ExecContext(ctx,
		"UPDATE conversations SET title = ?, updated_at = ? WHERE id = ?",
		title, time.Now(), id,
	)
	if err != nil {
		return mapErr(fmt.Errorf("failed to update conversation title: %w", err))
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("conversation %d: %w", id, ErrNotFound)
	}
	return nil
}

// DeleteConversation deletes a conversation, cascading to its messages
// and their feedback. Reports ErrNotFound when nothing existed, so the
// caller can tell "deleted" apart from "was already absent".
func (db *DB) DeleteConversation(ctx context.Context, id int64) error {
	result, err := db.conn.ExecContext(ctx, "DELETE FROM conversations WHERE id = ?", id)
	if err != nil {
		return mapErr(fmt.Errorf("failed to delete conversation: %w", err))
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("conversation %d: %w", id, ErrNotFound)
	}
	return nil
}

// CountConversations returns the total number of conversations
func (db *DB) CountConversations(ctx context.Context) (int64, error) {
	var count int64
	err := db.conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM conversations").Scan(&count)
	if err != nil {
		return 0, mapErr(fmt.Errorf("failed to count conversations: %w", err))
	}
	return count, nil
}
