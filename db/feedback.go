package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// UpsertFeedback records feedback for an assistant message. A second
// submission for the same message overwrites the first (last-write-wins)
// and refreshes the update timestamp. autoScore may be nil when no
// reference answer was available for the exchange.
func (db *DB) UpsertFeedback(ctx context.Context, messageID int64, rating, comment string, autoScore *float64, clientID uuid.UUID) (*Feedback, error) {
	if !ValidRating(rating) {
		return nil, fmt.Errorf("%w: unknown rating %q", ErrValidation, rating)
	}

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, mapErr(fmt.Errorf("failed to begin transaction: %w", err))
	}
	defer tx.Rollback()

	var role string
	err = tx.QueryRowContext(ctx, "SELECT role FROM messages WHERE id = ?", messageID).Scan(&role)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("message %d: %w", messageID, ErrNotFound)
	}
	if err != nil {
		return nil, mapErr(fmt.Errorf("failed to check message: %w", err))
	}
	// Feedback only attaches to assistant turns
	if role != RoleAssistant {
		return nil, fmt.Errorf("message %d is not an assistant message: %w", messageID, ErrNotFound)
	}

	now := time.Now()
	_, err = tx.ExecContext(ctx, `
		INSERT INTO feedback (message_id, rating, comment, auto_score, client_id, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(message_id) DO UPDATE SET
			rating = excluded.rating,
			comment = excluded.comment,
			auto_score = excluded.auto_score,
			client_id = excluded.client_id,
			updated_at = excluded.updated_at
	`, messageID, rating, comment, autoScore, clientID.String(), now)
	if err != nil {
		return nil, mapErr(fmt.Errorf("failed to upsert feedback: %w", err))
	}

	if err := tx.Commit(); err != nil {
		return nil, mapErr(fmt.Errorf("failed to commit feedback: %w", err))
	}

	return &Feedback{
		MessageID: messageID,
		Rating:    rating,
		Comment:   comment,
		AutoScore: autoScore,
		ClientID:  clientID,
		UpdatedAt: now,
	}, nil
}

// GetFeedback retrieves the feedback for a message, if any
func (db *DB) GetFeedback(ctx context.Context, messageID int64) (*Feedback, error) {
	row := db.conn.QueryRowContext(ctx,
		"SELECT message_id, rating, comment, auto_score, client_id, updated_at FROM feedback WHERE message_id = ?",
		messageID,
	)
	fb, err := scanFeedback(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("feedback for message %d: %w", messageID, ErrNotFound)
	}
	if err != nil {
		return nil, mapErr(fmt.Errorf("failed to get feedback: %w", err))
	}
	return fb, nil
}

// ListFeedbackForConversation returns all feedback attached to a
// conversation's messages, keyed by message ID.
func (db *DB) ListFeedbackForConversation(ctx context.Context, conversationID int64) (map[int64]*Feedback, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT f.message_id, f.rating, f.comment, f.auto_score, f.client_id, f.updated_at
		FROM feedback f
		JOIN messages m ON m.id = f.message_id
		WHERE m.conversation_id = ?
	`, conversationID)
	if err != nil {
		return nil, mapErr(fmt.Errorf("failed to list feedback: %w", err))
	}
	defer rows.Close()

	feedback := make(map[int64]*Feedback)
	for rows.Next() {
		fb, err := scanFeedback(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan feedback: %w", err)
		}
		feedback[fb.MessageID] = fb
	}

	return feedback, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanFeedback(row rowScanner) (*Feedback, error) {
	var fb Feedback
	var score sql.NullFloat64
	var clientID string
	if err := row.Scan(&fb.MessageID, &fb.Rating, &fb.Comment, &score, &clientID, &fb.UpdatedAt); err != nil {
		return nil, err
	}
	if score.Valid {
		fb.AutoScore = &score.Float64
	}
	// A malformed or empty client id degrades to the nil UUID
	fb.ClientID, _ = uuid.Parse(clientID)
	return &fb, nil
}
