package queue

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"go.uber.org/zap"
)

// MaxRetries is the retry count at which a row stops being dequeued and,
// once stale, is cleaned up.
const MaxRetries = 10

// PendingSubmission is a date whose submission failed transiently and is
// waiting to be retried.
type PendingSubmission struct {
	ID          int64
	Date        civil.Date
	DeviceID    string
	RetryCount  int
	CreatedAt   time.Time
	LastAttempt *time.Time
	LastError   string
}

// SubmissionQueue manages a local queue of pending submissions
type SubmissionQueue struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewSubmissionQueue creates a new submission queue
func NewSubmissionQueue(db *sql.DB, logger *zap.Logger) *SubmissionQueue {
	return &SubmissionQueue{
		db:     db,
		logger: logger,
	}
}

// Enqueue records date for retry. Enqueuing a date that is already queued
// restarts it: the retry count and age are reset.
func (q *SubmissionQueue) Enqueue(ctx context.Context, deviceID string, date civil.Date, reason string) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO pending_submissions (event_date, device_id, created_at, retry_count, last_error)
		VALUES (?, ?, ?, 0, ?)
		ON CONFLICT(event_date) DO UPDATE SET
			device_id = excluded.device_id,
			created_at = excluded.created_at,
			retry_count = 0,
			last_attempt = NULL,
			last_error = excluded.last_error
	`, date.String(), deviceID, time.Now().UTC(), reason)
	if err != nil {
		return fmt.Errorf("failed to enqueue submission: %w", err)
	}

	q.logger.Debug("Submission enqueued",
		zap.String("date", date.String()),
		zap.String("device_id", deviceID),
	)
	return nil
}

// Dequeue returns up to limit pending submissions that still have retries
// left, oldest first. Rows stay queued until Remove is called.
func (q *SubmissionQueue) Dequeue(ctx context.Context, limit int) ([]PendingSubmission, error) {
	pending, corrupted, err := q.scanPending(ctx, limit)
	if err != nil {
		return nil, err
	}

	// The pool may hold a single connection, so corrupted rows are deleted
	// only after the result set is closed.
	if len(corrupted) > 0 {
		if err := q.Remove(ctx, corrupted...); err != nil {
			return nil, fmt.Errorf("failed to drop corrupted submissions: %w", err)
		}
	}
	return pending, nil
}

func (q *SubmissionQueue) scanPending(ctx context.Context, limit int) ([]PendingSubmission, []int64, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT id, event_date, device_id, retry_count, created_at, last_attempt, COALESCE(last_error, '')
		FROM pending_submissions
		WHERE retry_count < ?
		ORDER BY created_at ASC, id ASC
		LIMIT ?
	`, MaxRetries, limit)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query pending submissions: %w", err)
	}
	defer rows.Close()

	var (
		pending   []PendingSubmission
		corrupted []int64
	)
	for rows.Next() {
		var (
			p           PendingSubmission
			date        string
			lastAttempt sql.NullTime
		)
		if err := rows.Scan(&p.ID, &date, &p.DeviceID, &p.RetryCount, &p.CreatedAt, &lastAttempt, &p.LastError); err != nil {
			q.logger.Error("Failed to scan row", zap.Error(err))
			continue
		}

		p.Date, err = civil.ParseDate(date)
		if err != nil {
			q.logger.Error("Dropping corrupted pending submission", zap.Int64("id", p.ID), zap.Error(err))
			corrupted = append(corrupted, p.ID)
			continue
		}
		if lastAttempt.Valid {
			t := lastAttempt.Time
			p.LastAttempt = &t
		}
		pending = append(pending, p)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("failed to read pending submissions: %w", err)
	}
	return pending, corrupted, nil
}

// Remove removes submissions from the queue by their IDs
func (q *SubmissionQueue) Remove(ctx context.Context, ids ...int64) error {
	if len(ids) == 0 {
		return nil
	}

	query := "DELETE FROM pending_submissions WHERE id IN (" + placeholders(len(ids)) + ")"
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	result, err := q.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to remove submissions: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	q.logger.Debug("Submissions removed from queue",
		zap.Int64("count", rowsAffected),
	)
	return nil
}

// IncrementRetry increments the retry count and stores the latest failure.
func (q *SubmissionQueue) IncrementRetry(ctx context.Context, id int64, reason string) error {
	_, err := q.db.ExecContext(ctx, `
		UPDATE pending_submissions
		SET retry_count = retry_count + 1, last_attempt = ?, last_error = ?
		WHERE id = ?
	`, time.Now().UTC(), reason, id)
	if err != nil {
		return fmt.Errorf("failed to increment retry: %w", err)
	}
	return nil
}

// GetPendingCount returns the number of queued submissions
func (q *SubmissionQueue) GetPendingCount(ctx context.Context) (int, error) {
	var count int
	if err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM pending_submissions`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to get pending count: %w", err)
	}
	return count, nil
}

// CleanupStale removes submissions older than olderThan that have reached
// MaxRetries.
func (q *SubmissionQueue) CleanupStale(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-olderThan)
	result, err := q.db.ExecContext(ctx, `
		DELETE FROM pending_submissions
		WHERE created_at < ? AND retry_count >= ?
	`, cutoff, MaxRetries)
	if err != nil {
		return 0, fmt.Errorf("failed to cleanup stale submissions: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected > 0 {
		q.logger.Info("Cleaned up stale submissions",
			zap.Int64("count", rowsAffected),
		)
	}
	return rowsAffected, nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}
