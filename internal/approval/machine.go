// Package approval drives the draft -> submitted transition of a work day.
// Reaching approved is the supervisor system's job; this package only reads it.
package approval

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"cloud.google.com/go/civil"
	"go.uber.org/zap"

	"Mansoor88-6/timeclock/internal/models"
	"Mansoor88-6/timeclock/internal/timecard"
)

// ErrSubmissionInFlight is returned when a submission for the same date is
// already waiting on the collaborator.
var ErrSubmissionInFlight = errors.New("submission already in progress for date")

// EventSource returns the full, unordered set of clock events for the user.
type EventSource interface {
	ListEvents(ctx context.Context) ([]models.ClockEvent, error)
}

// Submitter sends a date to the approval collaborator.
type Submitter interface {
	SubmitForApproval(ctx context.Context, date civil.Date) error
}

// Machine guards submissions. It holds no cached events: the guard is always
// evaluated against a fresh fetch taken right before the collaborator call.
//
// The window between that fetch and the collaborator receiving the call is
// not closed here. Another client can submit the same date in between; the
// collaborator must treat a repeated submission as a conflict (HTTP 409 or a
// conditional update) so that exactly one wins.
type Machine struct {
	source    EventSource
	submitter Submitter
	logger    *zap.Logger

	mu       sync.Mutex
	inFlight map[civil.Date]struct{}
}

// NewMachine creates a new approval machine
func NewMachine(source EventSource, submitter Submitter, logger *zap.Logger) *Machine {
	return &Machine{
		source:    source,
		submitter: submitter,
		logger:    logger,
		inFlight:  make(map[civil.Date]struct{}),
	}
}

// Status returns the derived status of date from freshly fetched events.
func (m *Machine) Status(ctx context.Context, date civil.Date) (models.ApprovalStatus, error) {
	events, err := m.source.ListEvents(ctx)
	if err != nil {
		return "", fmt.Errorf("fetch events: %w", err)
	}
	return timecard.DayStatus(timecard.EventsOn(events, date)), nil
}

// Submit moves date from draft to submitted. On success it returns the day's
// events as new records with status submitted; the caller decides whether to
// persist or display them. A conflict is reported as an error matching
// timecard.ErrAlreadySubmitted.
func (m *Machine) Submit(ctx context.Context, date civil.Date) ([]models.ClockEvent, error) {
	if !m.acquire(date) {
		return nil, fmt.Errorf("%w: %s", ErrSubmissionInFlight, date)
	}
	defer m.release(date)

	events, err := m.source.ListEvents(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch events: %w", err)
	}
	day := timecard.EventsOn(events, date)
	if err := timecard.CanSubmit(day); err != nil {
		m.logger.Info("Submission rejected by guard",
			zap.String("date", date.String()),
			zap.Error(err),
		)
		return nil, err
	}

	if err := m.submitter.SubmitForApproval(ctx, date); err != nil {
		m.logger.Warn("Submission failed",
			zap.String("date", date.String()),
			zap.Error(err),
		)
		return nil, fmt.Errorf("submit %s: %w", date, err)
	}

	m.logger.Info("Timecard submitted",
		zap.String("date", date.String()),
		zap.Int("event_count", len(day)),
	)
	return timecard.MarkSubmitted(timecard.SortEvents(day)), nil
}

func (m *Machine) acquire(date civil.Date) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, busy := m.inFlight[date]; busy {
		return false
	}
	m.inFlight[date] = struct{}{}
	return true
}

func (m *Machine) release(date civil.Date) {
	m.mu.Lock()
	delete(m.inFlight, date)
	m.mu.Unlock()
}
