package timecard

import (
	"time"

	"Mansoor88-6/timeclock/internal/models"
)

// WorkedDuration reduces one day's events to the time actually worked.
//
// Time accrues from a clock_in or lunch_in until the next lunch_out or
// clock_out. Edge cases are resolved conservatively:
//   - a clock_out with no open clock_in is ignored;
//   - a span still open at the end of the day counts nothing;
//   - a lunch_out with no lunch_in before clock_out stops accrual at lunch_out;
//   - a repeated clock_in while already clocked in is ignored;
//   - unknown kinds are ignored.
//
// Events are ordered by timestamp (ties by ID) before the scan, so the result
// does not depend on input order.
func WorkedDuration(events []models.ClockEvent) time.Duration {
	var (
		worked    time.Duration
		clockedIn bool
		onLunch   bool
		resumedAt time.Time
	)

	for _, e := range SortEvents(events) {
		switch e.Kind {
		case models.KindClockIn:
			if clockedIn {
				continue
			}
			clockedIn = true
			onLunch = false
			resumedAt = e.Timestamp

		case models.KindLunchOut:
			if !clockedIn || onLunch {
				continue
			}
			worked += e.Timestamp.Sub(resumedAt)
			onLunch = true

		case models.KindLunchIn:
			if !clockedIn || !onLunch {
				continue
			}
			onLunch = false
			resumedAt = e.Timestamp

		case models.KindClockOut:
			if !clockedIn {
				continue
			}
			if !onLunch {
				worked += e.Timestamp.Sub(resumedAt)
			}
			clockedIn = false
			onLunch = false
		}
	}

	return worked
}

// WorkedHours is WorkedDuration expressed in hours.
func WorkedHours(events []models.ClockEvent) float64 {
	return WorkedDuration(events).Hours()
}
