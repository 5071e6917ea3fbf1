package timecard

import (
	"fmt"

	"Mansoor88-6/timeclock/internal/models"
)

// DayStatus derives a day's status from its events: approved if any event is
// approved, else submitted if any is submitted, else draft.
func DayStatus(events []models.ClockEvent) models.ApprovalStatus {
	status := models.StatusDraft
	for _, e := range events {
		if e.Status.Rank() > status.Rank() {
			status = e.Status
		}
	}
	return status
}

// CanSubmit is the submission guard for one date's events. It fails with
// ErrNoEvents for an empty day and ErrAlreadySubmitted when any event has
// left draft.
func CanSubmit(events []models.ClockEvent) error {
	if len(events) == 0 {
		return ErrNoEvents
	}
	if status := DayStatus(events); status != models.StatusDraft {
		return fmt.Errorf("%w: day is %s", ErrAlreadySubmitted, status)
	}
	return nil
}

// MarkSubmitted returns copies of events with status submitted.
func MarkSubmitted(events []models.ClockEvent) []models.ClockEvent {
	out := make([]models.ClockEvent, len(events))
	for i, e := range events {
		out[i] = e.WithStatus(models.StatusSubmitted)
	}
	return out
}
