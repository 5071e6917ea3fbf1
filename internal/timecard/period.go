package timecard

import (
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/civil"

	"Mansoor88-6/timeclock/internal/models"
)

// Period selects the time window of a timecard view.
type Period string

const (
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
	PeriodAll   Period = "all"
)

// ParsePeriod accepts week, month, all (or unrestricted). An empty string
// selects the current week.
func ParsePeriod(s string) (Period, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "week":
		return PeriodWeek, nil
	case "month":
		return PeriodMonth, nil
	case "all", "unrestricted":
		return PeriodAll, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidPeriod, s)
	}
}

// ParseDate parses a YYYY-MM-DD calendar date.
func ParseDate(s string) (civil.Date, error) {
	d, err := civil.ParseDate(strings.TrimSpace(s))
	if err != nil || !d.IsValid() {
		return civil.Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return d, nil
}

// ParseWeekday parses an English weekday name such as "monday".
func ParseWeekday(s string) (time.Weekday, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for d := time.Sunday; d <= time.Saturday; d++ {
		if strings.ToLower(d.String()) == name {
			return d, nil
		}
	}
	return 0, fmt.Errorf("unknown weekday %q", s)
}

// Calendar fixes how "now" maps to calendar dates: the first day of the week
// and the timezone used to read the current date.
type Calendar struct {
	WeekStart time.Weekday
	Location  *time.Location
}

// DefaultCalendar starts weeks on Monday and reads dates in UTC.
var DefaultCalendar = Calendar{WeekStart: time.Monday, Location: time.UTC}

// Today returns now's calendar date in the calendar's timezone.
func (c Calendar) Today(now time.Time) civil.Date {
	loc := c.Location
	if loc == nil {
		loc = time.UTC
	}
	return civil.DateOf(now.In(loc))
}

// Window is an inclusive date range. An unbounded window matches every date.
type Window struct {
	Start   civil.Date
	End     civil.Date
	Bounded bool
}

// Contains reports whether d lies in [Start, End].
func (w Window) Contains(d civil.Date) bool {
	if !w.Bounded {
		return true
	}
	return !d.Before(w.Start) && !d.After(w.End)
}

// Window returns the inclusive date range the period covers relative to now.
func (c Calendar) Window(p Period, now time.Time) (Window, error) {
	today := c.Today(now)
	switch p {
	case PeriodWeek:
		weekday := today.In(time.UTC).Weekday()
		offset := (int(weekday) - int(c.WeekStart) + 7) % 7
		start := today.AddDays(-offset)
		return Window{Start: start, End: start.AddDays(6), Bounded: true}, nil
	case PeriodMonth:
		start := civil.Date{Year: today.Year, Month: today.Month, Day: 1}
		end := civil.DateOf(time.Date(today.Year, today.Month+1, 0, 0, 0, 0, 0, time.UTC))
		return Window{Start: start, End: end, Bounded: true}, nil
	case PeriodAll:
		return Window{}, nil
	default:
		return Window{}, fmt.Errorf("%w: %q", ErrInvalidPeriod, p)
	}
}

// MatchesQuery reports whether the event's job name, task name or kind label
// contains query, case-insensitively. An empty query matches everything.
func MatchesQuery(e models.ClockEvent, query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	fields := []string{e.JobName(), e.TaskName(), e.Kind.Label(), string(e.Kind)}
	for _, f := range fields {
		if f != "" && strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}

// FilterEvents keeps events whose attributed date is inside the window and
// that match the query. The result is a new slice in input order.
func FilterEvents(events []models.ClockEvent, w Window, query string) []models.ClockEvent {
	out := make([]models.ClockEvent, 0, len(events))
	for _, e := range events {
		if w.Contains(e.Date) && MatchesQuery(e, query) {
			out = append(out, e)
		}
	}
	return out
}
