package db

import (
	"context"
	"database/sql"
	"fmt"
)

// ScoreStats aggregates feedback and automatic scores across the store
type ScoreStats struct {
	FeedbackCount int64
	RatingCounts  map[string]int64
	ScoredCount   int64
	AvgAutoScore  *float64
	MinAutoScore  *float64
	MaxAutoScore  *float64
	DailyActivity []*DayActivity
}

// DayActivity counts messages appended on one day
type DayActivity struct {
	Date         string // "2024-12-31"
	MessageCount int64
}

// GetScoreStats returns aggregate feedback statistics
func (db *DB) GetScoreStats(ctx context.Context) (*ScoreStats, error) {
	stats := &ScoreStats{
		RatingCounts: make(map[string]int64),
	}

	if err := db.conn.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM feedback",
	).Scan(&stats.FeedbackCount); err != nil {
		return nil, mapErr(fmt.Errorf("failed to count feedback: %w", err))
	}

	rows, err := db.conn.QueryContext(ctx, `
		SELECT rating, COUNT(*)
		FROM feedback
		GROUP BY rating
	`)
	if err != nil {
		return nil, mapErr(fmt.Errorf("failed to get rating counts: %w", err))
	}
	defer rows.Close()

	for rows.Next() {
		var rating string
		var count int64
		if err := rows.Scan(&rating, &count); err != nil {
			return nil, fmt.Errorf("failed to scan rating count: %w", err)
		}
		stats.RatingCounts[rating] = count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var scored sql.NullInt64
	var avg, min, max sql.NullFloat64
	err = db.conn.QueryRowContext(ctx, `
		SELECT COUNT(auto_score), AVG(auto_score), MIN(auto_score), MAX(auto_score)
		FROM feedback
		WHERE auto_score IS NOT NULL
	`).Scan(&scored, &avg, &min, &max)
	if err != nil {
		return nil, mapErr(fmt.Errorf("failed to get score aggregates: %w", err))
	}
	if scored.Valid {
		stats.ScoredCount = scored.Int64
	}
	if avg.Valid {
		stats.AvgAutoScore = &avg.Float64
	}
	if min.Valid {
		stats.MinAutoScore = &min.Float64
	}
	if max.Valid {
		stats.MaxAutoScore = &max.Float64
	}

	dailyRows, err := db.conn.QueryContext(ctx, `
		SELECT DATE(created_at) AS day, COUNT(*)
		FROM messages
		GROUP BY day
		ORDER BY day DESC
		LIMIT 30
	`)
	if err != nil {
		return nil, mapErr(fmt.Errorf("failed to get daily activity: %w", err))
	}
	defer dailyRows.Close()

	for dailyRows.Next() {
		var day DayActivity
		if err := dailyRows.Scan(&day.Date, &day.MessageCount); err != nil {
			return nil, fmt.Errorf("failed to scan daily activity: %w", err)
		}
		stats.DailyActivity = append(stats.DailyActivity, &day)
	}

	return stats, dailyRows.Err()
}
