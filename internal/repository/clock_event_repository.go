package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/civil"
	"go.uber.org/zap"

	"Mansoor88-6/timeclock/internal/models"
	"Mansoor88-6/timeclock/internal/timecard"
)

// ErrNotFound is returned when a clock event does not exist.
var ErrNotFound = errors.New("clock event not found")

type ClockEventRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewClockEventRepository(db *sql.DB, logger *zap.Logger) *ClockEventRepository {
	return &ClockEventRepository{db: db, logger: logger}
}

const selectEvents = `
	SELECT id, event_date, timestamp, kind, job_id, job_name, task_id, task_name,
	       latitude, longitude, address, status
	FROM clock_events`

const insertEvent = `
	INSERT INTO clock_events (id, event_date, timestamp, kind, job_id, job_name, task_id, task_name,
	                          latitude, longitude, address, status)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

func (r *ClockEventRepository) Create(ctx context.Context, e models.ClockEvent) error {
	if _, err := r.db.ExecContext(ctx, insertEvent, eventArgs(e)...); err != nil {
		return fmt.Errorf("failed to create clock event: %w", err)
	}
	return nil
}

// Upsert stores events fetched from the remote system. Existing rows take
// every field from the incoming event, status included.
func (r *ClockEventRepository) Upsert(ctx context.Context, events []models.ClockEvent) error {
	if len(events) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, insertEvent+`
	ON CONFLICT(id) DO UPDATE SET
		event_date = excluded.event_date,
		timestamp  = excluded.timestamp,
		kind       = excluded.kind,
		job_id     = excluded.job_id,
		job_name   = excluded.job_name,
		task_id    = excluded.task_id,
		task_name  = excluded.task_name,
		latitude   = excluded.latitude,
		longitude  = excluded.longitude,
		address    = excluded.address,
		status     = excluded.status,
		updated_at = CURRENT_TIMESTAMP`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, e := range events {
		if _, err := stmt.ExecContext(ctx, eventArgs(e)...); err != nil {
			return fmt.Errorf("failed to upsert clock event %s: %w", e.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func eventArgs(e models.ClockEvent) []any {
	var jobID, jobName, taskID, taskName, address sql.NullString
	var lat, lng sql.NullFloat64
	if e.Job != nil {
		jobID = sql.NullString{String: e.Job.ID, Valid: true}
		jobName = sql.NullString{String: e.Job.Name, Valid: true}
	}
	if e.Task != nil {
		taskID = sql.NullString{String: e.Task.ID, Valid: true}
		taskName = sql.NullString{String: e.Task.Name, Valid: true}
	}
	if e.Location != nil {
		lat = sql.NullFloat64{Float64: e.Location.Latitude, Valid: true}
		lng = sql.NullFloat64{Float64: e.Location.Longitude, Valid: true}
		address = sql.NullString{String: e.Location.Address, Valid: e.Location.Address != ""}
	}
	status := e.Status
	if status == "" {
		status = models.StatusDraft
	}
	return []any{
		e.ID, e.Date.String(), e.Timestamp.Format(time.RFC3339Nano), string(e.Kind),
		jobID, jobName, taskID, taskName, lat, lng, address, string(status),
	}
}

func (r *ClockEventRepository) GetByID(ctx context.Context, id string) (*models.ClockEvent, error) {
	row := r.db.QueryRowContext(ctx, selectEvents+` WHERE id = ?`, id)
	e, err := scanEvent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get clock event: %w", err)
	}
	return &e, nil
}

// ListEvents returns every stored clock event. Order is not significant.
func (r *ClockEventRepository) ListEvents(ctx context.Context) ([]models.ClockEvent, error) {
	rows, err := r.db.QueryContext(ctx, selectEvents)
	if err != nil {
		return nil, fmt.Errorf("failed to list clock events: %w", err)
	}
	defer rows.Close()

	var events []models.ClockEvent
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan clock event: %w", err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate clock events: %w", err)
	}
	return events, nil
}

// UpdateStatuses writes the status of each event in one transaction.
func (r *ClockEventRepository) UpdateStatuses(ctx context.Context, events []models.ClockEvent) error {
	if len(events) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `UPDATE clock_events SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, e := range events {
		if _, err := stmt.ExecContext(ctx, string(e.Status), e.ID); err != nil {
			return fmt.Errorf("failed to update status of %s: %w", e.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// SubmitForApproval marks every event of date as submitted. The update is
// conditional on the whole day still being draft, so of two racing callers
// only one succeeds; the other gets timecard.ErrAlreadySubmitted.
func (r *ClockEventRepository) SubmitForApproval(ctx context.Context, date civil.Date) error {
	day := date.String()
	result, err := r.db.ExecContext(ctx, `
		UPDATE clock_events
		SET status = 'submitted', updated_at = CURRENT_TIMESTAMP
		WHERE event_date = ?
		  AND NOT EXISTS (
			SELECT 1 FROM clock_events WHERE event_date = ? AND status <> 'draft'
		  )
	`, day, day)
	if err != nil {
		return fmt.Errorf("failed to submit %s: %w", day, err)
	}

	affected, _ := result.RowsAffected()
	if affected > 0 {
		r.logger.Debug("Day submitted locally",
			zap.String("date", day),
			zap.Int64("events", affected),
		)
		return nil
	}

	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM clock_events WHERE event_date = ?`, day).Scan(&count); err != nil {
		return fmt.Errorf("failed to count events on %s: %w", day, err)
	}
	if count == 0 {
		return timecard.ErrNoEvents
	}
	return timecard.ErrAlreadySubmitted
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEvent(s scanner) (models.ClockEvent, error) {
	var (
		e                                models.ClockEvent
		date, ts, kind, status           string
		jobID, jobName, taskID, taskName sql.NullString
		address                          sql.NullString
		lat, lng                         sql.NullFloat64
	)
	if err := s.Scan(&e.ID, &date, &ts, &kind, &jobID, &jobName, &taskID, &taskName,
		&lat, &lng, &address, &status); err != nil {
		return e, err
	}

	var err error
	if e.Date, err = civil.ParseDate(date); err != nil {
		return e, fmt.Errorf("event %s has invalid date %q: %w", e.ID, date, err)
	}
	if e.Timestamp, err = time.Parse(time.RFC3339Nano, ts); err != nil {
		return e, fmt.Errorf("event %s has invalid timestamp %q: %w", e.ID, ts, err)
	}
	e.Kind = models.EventKind(kind)
	e.Status = models.ApprovalStatus(status)
	if jobID.Valid || jobName.Valid {
		e.Job = &models.JobRef{ID: jobID.String, Name: jobName.String}
	}
	if taskID.Valid || taskName.Valid {
		e.Task = &models.TaskRef{ID: taskID.String, Name: taskName.String}
	}
	if lat.Valid && lng.Valid {
		e.Location = &models.Location{Latitude: lat.Float64, Longitude: lng.Float64, Address: address.String}
	}
	return e, nil
}
