package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// SeedSamplesIfEmpty inserts the given sample entries only when the
// sample table is empty, so a restart never duplicates the seed set.
// Returns the number of rows inserted (0 on the no-op path).
func (db *DB) SeedSamplesIfEmpty(ctx context.Context, entries []SampleEntry) (int64, error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, mapErr(fmt.Errorf("failed to begin transaction: %w", err))
	}
	defer tx.Rollback()

	var count int64
	if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM sample_entries").Scan(&count); err != nil {
		return 0, mapErr(fmt.Errorf("failed to count sample entries: %w", err))
	}
	if count > 0 {
		return 0, nil
	}

	var inserted int64
	for _, entry := range entries {
		result, err := tx.ExecContext(ctx,
			"INSERT OR IGNORE INTO sample_entries (prompt, reference) VALUES (?, ?)",
			entry.Prompt, entry.Reference,
		)
		if err != nil {
			return 0, mapErr(fmt.Errorf("failed to seed sample entry: %w", err))
		}
		n, err := result.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("failed to get rows affected: %w", err)
		}
		inserted += n
	}

	if err := tx.Commit(); err != nil {
		return 0, mapErr(fmt.Errorf("failed to commit seed: %w", err))
	}
	return inserted, nil
}

// ListSamples retrieves all sample entries
func (db *DB) ListSamples(ctx context.Context) ([]*SampleEntry, error) {
	rows, err := db.conn.QueryContext(ctx,
		"SELECT id, prompt, reference FROM sample_entries ORDER BY id ASC",
	)
	if err != nil {
		return nil, mapErr(fmt.Errorf("failed to list sample entries: %w", err))
	}
	defer rows.Close()

	var entries []*SampleEntry
	for rows.Next() {
		var entry SampleEntry
		if err := rows.Scan(&entry.ID, &entry.Prompt, &entry.Reference); err != nil {
			return nil, fmt.Errorf("failed to scan sample entry: %w", err)
		}
		entries = append(entries, &entry)
	}

	return entries, rows.Err()
}

// AddSample inserts a sample entry. Prompts are unique; adding a prompt
// that already exists is a no-op and reports inserted=false.
func (db *DB) AddSample(ctx context.Context, prompt, reference string) (bool, error) {
	if prompt == "" {
		return false, fmt.Errorf("%w: empty prompt", ErrValidation)
	}
	result, err := db.conn.ExecContext(ctx,
		"INSERT OR IGNORE INTO sample_entries (prompt, reference) VALUES (?, ?)",
		prompt, reference,
	)
	if err != nil {
		return false, mapErr(fmt.Errorf("failed to add sample entry: %w", err))
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n > 0, nil
}

// DeleteSample removes a sample entry by ID
func (db *DB) DeleteSample(ctx context.Context, id int64) error {
	result, err := db.conn.ExecContext(ctx, "DELETE FROM sample_entries WHERE id = ?", id)
	if err != nil {
		return mapErr(fmt.Errorf("failed to delete sample entry: %w", err))
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("sample entry %d: %w", id, ErrNotFound)
	}
	return nil
}

// FindSampleByPrompt looks up the reference answer for an exact prompt
// match, used to decide whether an exchange can be auto-scored.
func (db *DB) FindSampleByPrompt(ctx context.Context, prompt string) (*SampleEntry, error) {
	var entry SampleEntry
	err := db.conn.QueryRowContext(ctx,
		"SELECT id, prompt, reference FROM sample_entries WHERE prompt = ?",
		prompt,
	).Scan(&entry.ID, &entry.Prompt, &entry.Reference)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("sample for prompt: %w", ErrNotFound)
	}
	if err != nil {
		return nil, mapErr(fmt.Errorf("failed to find sample entry: %w", err))
	}

	return &entry, nil
}
