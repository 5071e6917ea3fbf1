package timecard

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"Mansoor88-6/timeclock/internal/models"
)

func withStatus(e models.ClockEvent, s models.ApprovalStatus) models.ClockEvent {
	e.Status = s
	return e
}

func TestDayStatus_Precedence(t *testing.T) {
	in := ev("1", day, "08:00", models.KindClockIn)
	out := ev("2", day, "16:00", models.KindClockOut)

	assert.Equal(t, models.StatusDraft, DayStatus(nil))
	assert.Equal(t, models.StatusDraft, DayStatus([]models.ClockEvent{in, out}))
	assert.Equal(t, models.StatusSubmitted,
		DayStatus([]models.ClockEvent{in, withStatus(out, models.StatusSubmitted)}))
	assert.Equal(t, models.StatusApproved,
		DayStatus([]models.ClockEvent{withStatus(in, models.StatusSubmitted), withStatus(out, models.StatusApproved)}))
	assert.Equal(t, models.StatusApproved,
		DayStatus([]models.ClockEvent{withStatus(in, models.StatusApproved), out}))
}

func TestCanSubmit(t *testing.T) {
	events := shift("a", day, 8)
	assert.NoError(t, CanSubmit(events))
	assert.ErrorIs(t, CanSubmit(nil), ErrNoEvents)

	events[0].Status = models.StatusSubmitted
	assert.ErrorIs(t, CanSubmit(events), ErrAlreadySubmitted)

	events[0].Status = models.StatusApproved
	assert.ErrorIs(t, CanSubmit(events), ErrAlreadySubmitted)
}

func TestMarkSubmitted_DoesNotMutateInput(t *testing.T) {
	events := shift("a", day, 8)
	marked := MarkSubmitted(events)

	for _, e := range marked {
		assert.Equal(t, models.StatusSubmitted, e.Status)
	}
	for _, e := range events {
		assert.Equal(t, models.StatusDraft, e.Status)
	}
}
