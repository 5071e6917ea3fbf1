package models

import (
	"time"

	"cloud.google.com/go/civil"
)

// HoursBreakdown splits worked hours into regular, overtime and double-time
// buckets. For a single day Regular+Overtime+DoubleTime equals Total.
type HoursBreakdown struct {
	Total      float64 `json:"total"`
	Regular    float64 `json:"regular"`
	Overtime   float64 `json:"overtime"`
	DoubleTime float64 `json:"double_time"`
}

// Add returns the bucket-wise sum of b and o.
func (b HoursBreakdown) Add(o HoursBreakdown) HoursBreakdown {
	return HoursBreakdown{
		Total:      b.Total + o.Total,
		Regular:    b.Regular + o.Regular,
		Overtime:   b.Overtime + o.Overtime,
		DoubleTime: b.DoubleTime + o.DoubleTime,
	}
}

// WorkDay is the set of events attributed to one calendar date, ordered by
// timestamp ascending.
type WorkDay struct {
	Date   civil.Date   `json:"date"`
	Events []ClockEvent `json:"events"`
}

// DayTimecard is a WorkDay with its computed hours and derived status.
type DayTimecard struct {
	Date   civil.Date     `json:"date"`
	Events []ClockEvent   `json:"events"`
	Hours  HoursBreakdown `json:"hours"`
	Status ApprovalStatus `json:"status"`
}

// Timecard is the view handed to consumers: the filtered days, most recent
// first, and the aggregate over all of them.
type Timecard struct {
	Period      string         `json:"period"`
	Query       string         `json:"query,omitempty"`
	From        *civil.Date    `json:"from,omitempty"`
	To          *civil.Date    `json:"to,omitempty"`
	Days        []DayTimecard  `json:"days"`
	Totals      HoursBreakdown `json:"totals"`
	GeneratedAt time.Time      `json:"generated_at"`
}

// ClockContext is the job and task a user has selected for new clock events.
type ClockContext struct {
	JobID    string `json:"job_id,omitempty"`
	JobName  string `json:"job_name,omitempty"`
	TaskID   string `json:"task_id,omitempty"`
	TaskName string `json:"task_name,omitempty"`
}

// ExportRecord is the canonical per-day row handed to export encoders.
type ExportRecord struct {
	Date       civil.Date     `json:"date"`
	Status     ApprovalStatus `json:"status"`
	EventCount int            `json:"event_count"`
	FirstIn    *time.Time     `json:"first_in,omitempty"`
	LastOut    *time.Time     `json:"last_out,omitempty"`
	Jobs       []string       `json:"jobs,omitempty"`
	Hours      HoursBreakdown `json:"hours"`
}

// ExportResult reports what an export produced.
type ExportResult struct {
	Format   string `json:"format"`
	Count    int    `json:"count"`
	Location string `json:"location"`
}

// ExportRequest selects what to export and in which format.
type ExportRequest struct {
	Format string `json:"format" validate:"required,oneof=csv json report"`
	Period string `json:"period" validate:"omitempty,oneof=week month all unrestricted"`
	Query  string `json:"query,omitempty" validate:"max=200"`
}
