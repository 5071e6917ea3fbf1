package timecard

import (
	"fmt"

	"Mansoor88-6/timeclock/internal/models"
)

// BuildDay computes one day's breakdown and status.
func (p Policy) BuildDay(day models.WorkDay) (models.DayTimecard, error) {
	hours, err := p.Classify(WorkedHours(day.Events))
	if err != nil {
		return models.DayTimecard{}, fmt.Errorf("classify %s: %w", day.Date, err)
	}
	return models.DayTimecard{
		Date:   day.Date,
		Events: day.Events,
		Hours:  hours,
		Status: DayStatus(day.Events),
	}, nil
}

// Build groups events into days and computes each day's breakdown and status.
// Days are most recent first.
func (p Policy) Build(events []models.ClockEvent) ([]models.DayTimecard, error) {
	days := GroupByDay(events)
	out := make([]models.DayTimecard, 0, len(days))
	for _, day := range days {
		dt, err := p.BuildDay(day)
		if err != nil {
			return nil, err
		}
		out = append(out, dt)
	}
	return out, nil
}

// Summarize sums each bucket across days.
func Summarize(days []models.DayTimecard) models.HoursBreakdown {
	var total models.HoursBreakdown
	for _, d := range days {
		total = total.Add(d.Hours)
	}
	return total
}

// Aggregate groups events, classifies each day and sums the buckets.
func (p Policy) Aggregate(events []models.ClockEvent) (models.HoursBreakdown, error) {
	days, err := p.Build(events)
	if err != nil {
		return models.HoursBreakdown{}, err
	}
	return Summarize(days), nil
}
