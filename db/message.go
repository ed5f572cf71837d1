package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// AppendMessage appends a message to a conversation, assigning the next
// ordinal. The read-max-then-insert runs inside one transaction and the
// connection pool is limited to a single connection, so concurrent
// appends to the same conversation can neither collide nor skip; the
// UNIQUE(conversation_id, ordinal) constraint backstops both.
func (db *DB) AppendMessage(ctx context.Context, conversationID int64, role, content string) (*Message, error) {
	if !ValidRole(role) {
		return nil, fmt.Errorf("%w: unknown role %q", ErrValidation, role)
	}

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, mapErr(fmt.Errorf("failed to begin transaction: %w", err))
	}
	defer tx.Rollback()

	var exists int
	if err := tx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM conversations WHERE id = ?", conversationID,
	).Scan(&exists); err != nil {
		return nil, mapErr(fmt.Errorf("failed to check conversation: %w", err))
	}
	if exists == 0 {
		return nil, fmt.Errorf("conversation %d: %w", conversationID, ErrNotFound)
	}

	var ordinal int64
	if err := tx.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(ordinal) + 1, 0) FROM messages WHERE conversation_id = ?", conversationID,
	).Scan(&ordinal); err != nil {
		return nil, mapErr(fmt.Errorf("failed to compute next ordinal: %w", err))
	}

	now := time.Now()
	result, err := tx.ExecContext(ctx,
		"INSERT INTO messages (conversation_id, role, content, ordinal, created_at) VALUES (?, ?, ?, ?, ?)",
		conversationID, role, content, ordinal, now,
	)
	if err != nil {
		return nil, mapErr(fmt.Errorf("failed to create message: %w", err))
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get message ID: %w", err)
	}

	// Appending counts as conversation activity
	if _, err := tx.ExecContext(ctx,
		"UPDATE conversations SET updated_at = ? WHERE id = ?", now, conversationID,
	); err != nil {
		return nil, mapErr(fmt.Errorf("failed to touch conversation: %w", err))
	}

	if err := tx.Commit(); err != nil {
		return nil, mapErr(fmt.Errorf("failed to commit message: %w", err))
	}

	return &Message{
		ID:             id,
		ConversationID: conversationID,
		Role:           role,
		Content:        content,
		Ordinal:        ordinal,
		CreatedAt:      now,
	}, nil
}

// GetMessage retrieves a message by ID
func (db *DB) GetMessage(ctx context.Context, id int64) (*Message, error) {
	var msg Message
	err := db.conn.QueryRowContext(ctx,
		"SELECT id, conversation_id, role, content, ordinal, created_at FROM messages WHERE id = ?",
		id,
	).Scan(&msg.ID, &msg.ConversationID, &msg.Role, &msg.Content, &msg.Ordinal, &msg.CreatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("message %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, mapErr(fmt.Errorf("failed to get message: %w", err))
	}

	return &msg, nil
}

// ListMessages retrieves all messages in a conversation in ordinal order
func (db *DB) ListMessages(ctx context.Context, conversationID int64) ([]*Message, error) {
	rows, err := db.conn.QueryContext(ctx,
		"SELECT id, conversation_id, role, content, ordinal, created_at FROM messages WHERE conversation_id = ? ORDER BY ordinal ASC",
		conversationID,
	)
	if err != nil {
		return nil, mapErr(fmt.Errorf("failed to list messages: %w", err))
	}
	defer rows.Close()

	var messages []*Message
	for rows.Next() {
		var msg Message
		if err := rows.Scan(&msg.ID, &msg.ConversationID, &msg.Role, &msg.Content, &msg.Ordinal, &msg.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		messages = append(messages, &msg)
	}

	return messages, rows.Err()
}
