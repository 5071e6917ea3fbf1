// Package service composes the timecard engine with its collaborators: the
// event store, the approval machine, the submission outbox and the exporter.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"Mansoor88-6/timeclock/internal/approval"
	"Mansoor88-6/timeclock/internal/client"
	"Mansoor88-6/timeclock/internal/export"
	"Mansoor88-6/timeclock/internal/models"
	"Mansoor88-6/timeclock/internal/queue"
	"Mansoor88-6/timeclock/internal/timecard"
)

const retryBatchSize = 50

var (
	// ErrSubmissionQueued means the collaborator was unavailable and the
	// date was queued for a later retry.
	ErrSubmissionQueued = errors.New("submission queued for retry")
	// ErrIncompleteLocation is returned when only one coordinate is given.
	ErrIncompleteLocation = errors.New("latitude and longitude must be given together")
)

// LoadError means the event fetch failed. No partial timecard is returned.
type LoadError struct {
	Err error
}

func (e *LoadError) Error() string {
	return "failed to load clock events: " + e.Err.Error()
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// ExportError carries a human-readable reason for a failed export.
type ExportError struct {
	Reason string
	Err    error
}

func (e *ExportError) Error() string {
	return "export failed: " + e.Reason
}

func (e *ExportError) Unwrap() error {
	return e.Err
}

type EventStore interface {
	ListEvents(ctx context.Context) ([]models.ClockEvent, error)
	Create(ctx context.Context, e models.ClockEvent) error
	UpdateStatuses(ctx context.Context, events []models.ClockEvent) error
	Upsert(ctx context.Context, events []models.ClockEvent) error
}

type ContextStore interface {
	ClockContext(ctx context.Context) (models.ClockContext, error)
	SetClockContext(ctx context.Context, cc models.ClockContext) error
}

type Outbox interface {
	Enqueue(ctx context.Context, deviceID string, date civil.Date, reason string) error
	Dequeue(ctx context.Context, limit int) ([]queue.PendingSubmission, error)
	Remove(ctx context.Context, ids ...int64) error
	IncrementRetry(ctx context.Context, id int64, reason string) error
}

type Exporter interface {
	Export(ctx context.Context, days []models.DayTimecard, format export.Format) (models.ExportResult, error)
}

// Remote is the backend's clock event API.
type Remote interface {
	ListEvents(ctx context.Context) ([]models.ClockEvent, error)
	CreateEvent(ctx context.Context, e models.ClockEvent) error
}

// Query selects the period and search text for a timecard view.
type Query struct {
	Period string
	Search string
}

// Dependencies wires a TimecardService. Remote is nil when no backend is
// configured.
type Dependencies struct {
	Store    EventStore
	Contexts ContextStore
	Machine  *approval.Machine
	Outbox   Outbox
	Exporter Exporter
	Remote   Remote
	Validate *validator.Validate
	Policy   timecard.Policy
	Calendar timecard.Calendar
	DeviceID string
	Logger   *zap.Logger
	Now      func() time.Time
}

type TimecardService struct {
	store    EventStore
	contexts ContextStore
	machine  *approval.Machine
	outbox   Outbox
	exporter Exporter
	remote   Remote
	validate *validator.Validate
	policy   timecard.Policy
	calendar timecard.Calendar
	deviceID string
	logger   *zap.Logger
	now      func() time.Time
}

func NewTimecardService(d Dependencies) *TimecardService {
	now := d.Now
	if now == nil {
		now = time.Now
	}
	return &TimecardService{
		store:    d.Store,
		contexts: d.Contexts,
		machine:  d.Machine,
		outbox:   d.Outbox,
		exporter: d.Exporter,
		remote:   d.Remote,
		validate: d.Validate,
		policy:   d.Policy,
		calendar: d.Calendar,
		deviceID: d.DeviceID,
		logger:   d.Logger,
		now:      now,
	}
}

// Load fetches every event, keeps those in the period that match the search,
// and returns the per-day breakdowns with their totals.
func (s *TimecardService) Load(ctx context.Context, q Query) (*models.Timecard, error) {
	period, err := timecard.ParsePeriod(q.Period)
	if err != nil {
		return nil, err
	}

	events, err := s.store.ListEvents(ctx)
	if err != nil {
		s.logger.Error("Failed to fetch clock events", zap.Error(err))
		return nil, &LoadError{Err: err}
	}

	now := s.now()
	window, err := s.calendar.Window(period, now)
	if err != nil {
		return nil, err
	}

	days, err := s.policy.Build(timecard.FilterEvents(events, window, q.Search))
	if err != nil {
		return nil, fmt.Errorf("build timecard: %w", err)
	}

	tc := &models.Timecard{
		Period:      string(period),
		Query:       strings.TrimSpace(q.Search),
		Days:        days,
		Totals:      timecard.Summarize(days),
		GeneratedAt: now.UTC(),
	}
	if window.Bounded {
		from, to := window.Start, window.End
		tc.From, tc.To = &from, &to
	}
	return tc, nil
}

// Day returns the timecard of a single date. A date without events yields an
// empty draft day.
func (s *TimecardService) Day(ctx context.Context, date civil.Date) (models.DayTimecard, error) {
	if !date.IsValid() {
		return models.DayTimecard{}, fmt.Errorf("%w: %s", timecard.ErrInvalidDate, date)
	}

	events, err := s.store.ListEvents(ctx)
	if err != nil {
		return models.DayTimecard{}, &LoadError{Err: err}
	}
	return s.buildDay(date, timecard.EventsOn(events, date))
}

// Submit moves a draft day to submitted and stores the new statuses. A
// transient collaborator failure queues the date and returns an error
// matching ErrSubmissionQueued.
func (s *TimecardService) Submit(ctx context.Context, date civil.Date) (models.DayTimecard, error) {
	if !date.IsValid() {
		return models.DayTimecard{}, fmt.Errorf("%w: %s", timecard.ErrInvalidDate, date)
	}

	// The backend reviews its own copy of the day, so it must hold every
	// punch recorded here first.
	if s.remote != nil {
		if _, err := s.publishMissing(ctx); err != nil {
			return models.DayTimecard{}, s.queueSubmission(ctx, date, err)
		}
	}

	submitted, err := s.machine.Submit(ctx, date)
	if err != nil {
		return models.DayTimecard{}, s.queueSubmission(ctx, date, err)
	}

	if err := s.store.UpdateStatuses(ctx, submitted); err != nil {
		return models.DayTimecard{}, fmt.Errorf("store submitted statuses: %w", err)
	}
	return s.buildDay(date, submitted)
}

// queueSubmission enqueues date when err is transient and returns the error
// the caller should see.
func (s *TimecardService) queueSubmission(ctx context.Context, date civil.Date, err error) error {
	if !client.IsTransient(err) {
		return err
	}
	if qerr := s.outbox.Enqueue(ctx, s.deviceID, date, err.Error()); qerr != nil {
		s.logger.Error("Failed to queue submission",
			zap.String("date", date.String()),
			zap.Error(qerr),
		)
		return err
	}
	return fmt.Errorf("%w: %v", ErrSubmissionQueued, err)
}

// RetryPending resubmits queued dates through the approval machine and
// returns how many went through. Dates the collaborator reports as already
// submitted, or that have no events left, are dropped from the queue.
func (s *TimecardService) RetryPending(ctx context.Context) (int, error) {
	pending, err := s.outbox.Dequeue(ctx, retryBatchSize)
	if err != nil {
		return 0, err
	}
	if len(pending) == 0 {
		return 0, nil
	}
	if s.remote != nil {
		if _, err := s.publishMissing(ctx); err != nil {
			return 0, fmt.Errorf("send local clock events: %w", err)
		}
	}

	var (
		done      []int64
		succeeded int
	)
	for _, p := range pending {
		if err := ctx.Err(); err != nil {
			break
		}

		submitted, err := s.machine.Submit(ctx, p.Date)
		switch {
		case err == nil:
			if err := s.store.UpdateStatuses(ctx, submitted); err != nil {
				s.logger.Error("Failed to store retried submission", zap.String("date", p.Date.String()), zap.Error(err))
			}
			done = append(done, p.ID)
			succeeded++
		case errors.Is(err, timecard.ErrAlreadySubmitted), errors.Is(err, timecard.ErrNoEvents):
			s.logger.Info("Dropping queued submission",
				zap.String("date", p.Date.String()),
				zap.Error(err),
			)
			done = append(done, p.ID)
		case errors.Is(err, approval.ErrSubmissionInFlight):
		default:
			if ierr := s.outbox.IncrementRetry(ctx, p.ID, err.Error()); ierr != nil {
				s.logger.Error("Failed to record retry", zap.Int64("id", p.ID), zap.Error(ierr))
			}
		}
	}

	if err := s.outbox.Remove(ctx, done...); err != nil {
		return 0, err
	}

	return succeeded, nil
}

// Export writes the period's days in the requested format.
func (s *TimecardService) Export(ctx context.Context, req models.ExportRequest) (models.ExportResult, error) {
	if err := s.validate.Struct(req); err != nil {
		return models.ExportResult{}, err
	}
	format, err := export.ParseFormat(req.Format)
	if err != nil {
		return models.ExportResult{}, err
	}

	tc, err := s.Load(ctx, Query{Period: req.Period, Search: req.Query})
	if err != nil {
		return models.ExportResult{}, &ExportError{Reason: "could not load timecard", Err: err}
	}

	result, err := s.exporter.Export(ctx, tc.Days, format)
	if err != nil {
		s.logger.Error("Export failed", zap.String("format", string(format)), zap.Error(err))
		return models.ExportResult{}, &ExportError{Reason: err.Error(), Err: err}
	}
	return result, nil
}

// Record validates and stores a new draft clock event. Job and task fall back
// to the selected clock context; the date falls back to the timestamp's day
// in the configured timezone. With a backend the event is sent there first:
// a transient failure still stores it locally for the next Sync, any other
// failure rejects it.
func (s *TimecardService) Record(ctx context.Context, req models.RecordClockEventRequest) (models.ClockEvent, error) {
	if err := s.validate.Struct(req); err != nil {
		return models.ClockEvent{}, err
	}
	if (req.Latitude == nil) != (req.Longitude == nil) {
		return models.ClockEvent{}, ErrIncompleteLocation
	}

	date := s.calendar.Today(req.Timestamp)
	if req.Date != "" {
		d, err := timecard.ParseDate(req.Date)
		if err != nil {
			return models.ClockEvent{}, err
		}
		date = d
	}

	cc, err := s.contexts.ClockContext(ctx)
	if err != nil {
		return models.ClockEvent{}, fmt.Errorf("read clock context: %w", err)
	}

	e := models.ClockEvent{
		ID:        uuid.NewString(),
		Date:      date,
		Timestamp: req.Timestamp,
		Kind:      req.Kind,
		Status:    models.StatusDraft,
	}
	switch {
	case req.JobName != "":
		e.Job = &models.JobRef{ID: req.JobID, Name: req.JobName}
	case cc.JobName != "":
		e.Job = &models.JobRef{ID: cc.JobID, Name: cc.JobName}
	}
	switch {
	case req.TaskName != "":
		e.Task = &models.TaskRef{ID: req.TaskID, Name: req.TaskName}
	case cc.TaskName != "":
		e.Task = &models.TaskRef{ID: cc.TaskID, Name: cc.TaskName}
	}
	if req.Latitude != nil {
		e.Location = &models.Location{Latitude: *req.Latitude, Longitude: *req.Longitude, Address: req.Address}
	}

	if s.remote != nil {
		if err := s.remote.CreateEvent(ctx, e); err != nil {
			if !client.IsTransient(err) {
				return models.ClockEvent{}, err
			}
			s.logger.Warn("Backend unavailable, clock event will be sent on next sync",
				zap.String("id", e.ID),
				zap.Error(err),
			)
		}
	}

	if err := s.store.Create(ctx, e); err != nil {
		return models.ClockEvent{}, err
	}
	s.logger.Info("Clock event recorded",
		zap.String("id", e.ID),
		zap.String("kind", string(e.Kind)),
		zap.String("date", e.Date.String()),
	)
	return e, nil
}

func (s *TimecardService) ClockContext(ctx context.Context) (models.ClockContext, error) {
	return s.contexts.ClockContext(ctx)
}

// SetClockContext replaces the selected job and task.
func (s *TimecardService) SetClockContext(ctx context.Context, cc models.ClockContext) (models.ClockContext, error) {
	cc = models.ClockContext{
		JobID:    strings.TrimSpace(cc.JobID),
		JobName:  strings.TrimSpace(cc.JobName),
		TaskID:   strings.TrimSpace(cc.TaskID),
		TaskName: strings.TrimSpace(cc.TaskName),
	}
	if err := s.contexts.SetClockContext(ctx, cc); err != nil {
		return models.ClockContext{}, err
	}
	return cc, nil
}

// Sync sends local events the backend is missing, then copies the remote
// event list into the local store so statuses set by the supervisor system
// become visible. It returns the number of remote events and is a no-op
// without a backend.
func (s *TimecardService) Sync(ctx context.Context) (int, error) {
	if s.remote == nil {
		return 0, nil
	}

	events, err := s.publishMissing(ctx)
	if err != nil {
		return 0, err
	}
	if err := s.store.Upsert(ctx, events); err != nil {
		return 0, err
	}

	s.logger.Debug("Synced clock events", zap.Int("count", len(events)))
	return len(events), nil
}

// publishMissing sends every local event whose ID the backend does not list
// and returns the remote events as listed before sending. A conflict means
// the backend already has the event.
func (s *TimecardService) publishMissing(ctx context.Context) ([]models.ClockEvent, error) {
	remote, err := s.remote.ListEvents(ctx)
	if err != nil {
		return nil, &LoadError{Err: err}
	}
	local, err := s.store.ListEvents(ctx)
	if err != nil {
		return nil, &LoadError{Err: err}
	}

	known := make(map[string]struct{}, len(remote))
	for _, e := range remote {
		known[e.ID] = struct{}{}
	}

	sent := 0
	for _, e := range local {
		if _, ok := known[e.ID]; ok {
			continue
		}
		var conflict *client.ConflictError
		if err := s.remote.CreateEvent(ctx, e); err != nil && !errors.As(err, &conflict) {
			return nil, fmt.Errorf("send clock event %s: %w", e.ID, err)
		}
		sent++
	}
	if sent > 0 {
		s.logger.Info("Sent local clock events to backend", zap.Int("count", sent))
	}
	return remote, nil
}

func (s *TimecardService) buildDay(date civil.Date, events []models.ClockEvent) (models.DayTimecard, error) {
	sorted := timecard.SortEvents(events)
	if sorted == nil {
		sorted = []models.ClockEvent{}
	}
	return s.policy.BuildDay(models.WorkDay{Date: date, Events: sorted})
}
