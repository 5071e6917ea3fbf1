package approval

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"Mansoor88-6/timeclock/internal/models"
	"Mansoor88-6/timeclock/internal/timecard"
)

var date = civil.Date{Year: 2026, Month: time.October, Day: 14}

// fakeStore is both the event source and a submitter that persists the
// submitted status, like the sqlite repository does.
type fakeStore struct {
	mu        sync.Mutex
	events    []models.ClockEvent
	fetchErr  error
	submitErr error
	calls     int
	block     chan struct{}
}

func (f *fakeStore) ListEvents(ctx context.Context) ([]models.ClockEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return append([]models.ClockEvent(nil), f.events...), nil
}

func (f *fakeStore) SubmitForApproval(ctx context.Context, d civil.Date) error {
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.submitErr != nil {
		return f.submitErr
	}
	for i := range f.events {
		if f.events[i].Date == d {
			f.events[i].Status = models.StatusSubmitted
		}
	}
	return nil
}

func draftDay() []models.ClockEvent {
	in := time.Date(2026, time.October, 14, 8, 0, 0, 0, time.UTC)
	return []models.ClockEvent{
		{ID: "2", Date: date, Timestamp: in.Add(8 * time.Hour), Kind: models.KindClockOut, Status: models.StatusDraft},
		{ID: "1", Date: date, Timestamp: in, Kind: models.KindClockIn, Status: models.StatusDraft},
	}
}

func TestSubmit_TwiceYieldsConflict(t *testing.T) {
	store := &fakeStore{events: draftDay()}
	m := NewMachine(store, store, zaptest.NewLogger(t))

	submitted, err := m.Submit(context.Background(), date)
	require.NoError(t, err)
	require.Len(t, submitted, 2)
	assert.Equal(t, "1", submitted[0].ID)
	for _, e := range submitted {
		assert.Equal(t, models.StatusSubmitted, e.Status)
	}

	_, err = m.Submit(context.Background(), date)
	assert.ErrorIs(t, err, timecard.ErrAlreadySubmitted)
	assert.Equal(t, 1, store.calls)
}

func TestSubmit_ApprovedDayIsConflict(t *testing.T) {
	events := draftDay()
	events[0].Status = models.StatusApproved
	store := &fakeStore{events: events}
	m := NewMachine(store, store, zaptest.NewLogger(t))

	_, err := m.Submit(context.Background(), date)
	assert.ErrorIs(t, err, timecard.ErrAlreadySubmitted)
	assert.Zero(t, store.calls)
}

func TestSubmit_EmptyDay(t *testing.T) {
	store := &fakeStore{}
	m := NewMachine(store, store, zaptest.NewLogger(t))

	_, err := m.Submit(context.Background(), date)
	assert.ErrorIs(t, err, timecard.ErrNoEvents)
}

func TestSubmit_FetchFailure(t *testing.T) {
	store := &fakeStore{fetchErr: errors.New("offline")}
	m := NewMachine(store, store, zaptest.NewLogger(t))

	_, err := m.Submit(context.Background(), date)
	assert.ErrorContains(t, err, "offline")
	assert.Zero(t, store.calls)
}

func TestSubmit_CollaboratorFailureLeavesDraft(t *testing.T) {
	store := &fakeStore{events: draftDay(), submitErr: errors.New("backend down")}
	m := NewMachine(store, store, zaptest.NewLogger(t))

	_, err := m.Submit(context.Background(), date)
	require.Error(t, err)

	status, err := m.Status(context.Background(), date)
	require.NoError(t, err)
	assert.Equal(t, models.StatusDraft, status)

	// caller may retry once the collaborator recovers
	store.submitErr = nil
	_, err = m.Submit(context.Background(), date)
	assert.NoError(t, err)
}

func TestSubmit_ConcurrentSameDateRejected(t *testing.T) {
	store := &fakeStore{events: draftDay(), block: make(chan struct{})}
	m := NewMachine(store, store, zaptest.NewLogger(t))

	done := make(chan error, 1)
	go func() {
		_, err := m.Submit(context.Background(), date)
		done <- err
	}()

	require.Eventually(t, func() bool {
		m.mu.Lock()
		defer m.mu.Unlock()
		_, busy := m.inFlight[date]
		return busy
	}, time.Second, 5*time.Millisecond)

	_, err := m.Submit(context.Background(), date)
	assert.ErrorIs(t, err, ErrSubmissionInFlight)

	close(store.block)
	assert.NoError(t, <-done)
	assert.Equal(t, 1, store.calls)
}

func TestStatus_MixedResolvesToApproved(t *testing.T) {
	events := draftDay()
	events[0].Status = models.StatusSubmitted
	events[1].Status = models.StatusApproved
	store := &fakeStore{events: events}
	m := NewMachine(store, store, zaptest.NewLogger(t))

	status, err := m.Status(context.Background(), date)
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, status)
}
