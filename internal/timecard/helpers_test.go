package timecard

import (
	"time"

	"cloud.google.com/go/civil"

	"Mansoor88-6/timeclock/internal/models"
)

var day = civil.Date{Year: 2026, Month: time.October, Day: 14}

func at(d civil.Date, hhmm string) time.Time {
	t, err := time.Parse("15:04", hhmm)
	if err != nil {
		panic(err)
	}
	return time.Date(d.Year, d.Month, d.Day, t.Hour(), t.Minute(), 0, 0, time.UTC)
}

func ev(id string, d civil.Date, hhmm string, kind models.EventKind) models.ClockEvent {
	return models.ClockEvent{
		ID:        id,
		Date:      d,
		Timestamp: at(d, hhmm),
		Kind:      kind,
		Status:    models.StatusDraft,
	}
}

// shift returns a full day from 08:00 lasting the given hours.
func shift(prefix string, d civil.Date, hours float64) []models.ClockEvent {
	in := ev(prefix+"-in", d, "08:00", models.KindClockIn)
	out := in
	out.ID = prefix + "-out"
	out.Kind = models.KindClockOut
	out.Timestamp = in.Timestamp.Add(time.Duration(hours * float64(time.Hour)))
	return []models.ClockEvent{in, out}
}
