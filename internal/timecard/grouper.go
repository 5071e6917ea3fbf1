package timecard

import (
	"sort"

	"cloud.google.com/go/civil"

	"Mansoor88-6/timeclock/internal/models"
)

// GroupByDay partitions events by attributed date. Days are returned most
// recent first; events within a day are ordered by timestamp, ties broken by
// ID ascending. The input slice is not modified.
func GroupByDay(events []models.ClockEvent) []models.WorkDay {
	if len(events) == 0 {
		return []models.WorkDay{}
	}

	buckets := make(map[civil.Date][]models.ClockEvent)
	for _, e := range events {
		buckets[e.Date] = append(buckets[e.Date], e)
	}

	days := make([]models.WorkDay, 0, len(buckets))
	for date, dayEvents := range buckets {
		sortEvents(dayEvents)
		days = append(days, models.WorkDay{Date: date, Events: dayEvents})
	}

	sort.Slice(days, func(i, j int) bool {
		return days[i].Date.After(days[j].Date)
	})
	return days
}

// SortEvents returns a copy of events ordered by timestamp then ID.
func SortEvents(events []models.ClockEvent) []models.ClockEvent {
	sorted := make([]models.ClockEvent, len(events))
	copy(sorted, events)
	sortEvents(sorted)
	return sorted
}

func sortEvents(events []models.ClockEvent) {
	sort.SliceStable(events, func(i, j int) bool {
		a, b := events[i], events[j]
		if !a.Timestamp.Equal(b.Timestamp) {
			return a.Timestamp.Before(b.Timestamp)
		}
		return a.ID < b.ID
	})
}

// EventsOn returns the events attributed to date, in input order.
func EventsOn(events []models.ClockEvent, date civil.Date) []models.ClockEvent {
	var out []models.ClockEvent
	for _, e := range events {
		if e.Date == date {
			out = append(out, e)
		}
	}
	return out
}
