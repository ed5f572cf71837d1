package db

import (
	"context"
	"fmt"
)

// SearchResult represents a full-text search hit
type SearchResult struct {
	Message *Message
	Snippet string
}

// SearchMessages performs full-text search on message content
func (db *DB) SearchMessages(ctx context.Context, query string, limit int) ([]*SearchResult, error) {
	return db.searchMessages(ctx, query, "", limit)
}

// SearchMessagesByRole performs full-text search restricted to one role
func (db *DB) SearchMessagesByRole(ctx context.Context, query, role string, limit int) ([]*SearchResult, error) {
	if !ValidRole(role) {
		return nil, fmt.Errorf("%w: unknown role %q", ErrValidation, role)
	}
	return db.searchMessages(ctx, query, role, limit)
}

func (db *DB) searchMessages(ctx context.Context, query, role string, limit int) ([]*SearchResult, error) {
	if db.ftsErr != nil {
		return nil, db.ftsErr
	}

	sqlQuery := `
		SELECT m.id, m.conversation_id, m.role, m.content, m.ordinal, m.created_at,
		       snippet(messages_fts, 0, '<mark>', '</mark>', '...', 32) AS snippet
		FROM messages_fts
		JOIN messages m ON messages_fts.rowid = m.id
		WHERE messages_fts MATCH ?`

	args := []interface{}{query}
	if role != "" {
		sqlQuery += " AND m.role = ?"
		args = append(args, role)
	}
	sqlQuery += " ORDER BY rank LIMIT ?"
	args = append(args, limit)

	rows, err := db.conn.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, mapErr(fmt.Errorf("failed to search messages: %w", err))
	}
	defer rows.Close()

	var results []*SearchResult
	for rows.Next() {
		var msg Message
		var snippet string
		if err := rows.Scan(&msg.ID, &msg.ConversationID, &msg.Role, &msg.Content, &msg.Ordinal, &msg.CreatedAt, &snippet); err != nil {
			return nil, fmt.Errorf("failed to scan search result: %w", err)
		}
		results = append(results, &SearchResult{Message: &msg, Snippet: snippet})
	}

	return results, rows.Err()
}
