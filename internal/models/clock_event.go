package models

import (
	"time"

	"cloud.google.com/go/civil"
)

// EventKind is the action recorded by a clock event. Unknown kinds are carried
// through untouched and ignored by hours accounting.
type EventKind string

const (
	KindClockIn  EventKind = "clock_in"
	KindClockOut EventKind = "clock_out"
	KindLunchOut EventKind = "lunch_out"
	KindLunchIn  EventKind = "lunch_in"
)

// Label returns the human-readable name shown to users and matched by search.
func (k EventKind) Label() string {
	switch k {
	case KindClockIn:
		return "Clock In"
	case KindClockOut:
		return "Clock Out"
	case KindLunchOut:
		return "Lunch Out"
	case KindLunchIn:
		return "Lunch In"
	default:
		return string(k)
	}
}

// Known reports whether the kind is one of the four built-in actions.
func (k EventKind) Known() bool {
	switch k {
	case KindClockIn, KindClockOut, KindLunchOut, KindLunchIn:
		return true
	}
	return false
}

// ApprovalStatus is the approval lifecycle stage of a clock event.
type ApprovalStatus string

const (
	StatusDraft     ApprovalStatus = "draft"
	StatusSubmitted ApprovalStatus = "submitted"
	StatusApproved  ApprovalStatus = "approved"
)

// Rank orders statuses by precedence: approved > submitted > draft.
func (s ApprovalStatus) Rank() int {
	switch s {
	case StatusApproved:
		return 2
	case StatusSubmitted:
		return 1
	default:
		return 0
	}
}

// JobRef is an optional reference to the job an event was recorded against.
type JobRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// TaskRef is an optional reference to the task an event was recorded against.
type TaskRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Location is where the event was recorded. Address is empty when the
// coordinates were never resolved.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Address   string  `json:"address,omitempty"`
}

// ClockEvent is a single immutable clock action. Date is the calendar day the
// event is attributed to and is taken as given; it is never recomputed from
// Timestamp.
type ClockEvent struct {
	ID        string         `json:"id"`
	Date      civil.Date     `json:"date"`
	Timestamp time.Time      `json:"timestamp"`
	Kind      EventKind      `json:"kind"`
	Job       *JobRef        `json:"job,omitempty"`
	Task      *TaskRef       `json:"task,omitempty"`
	Location  *Location      `json:"location,omitempty"`
	Status    ApprovalStatus `json:"status"`
}

// JobName returns the job name or "" when no job is attached.
func (e ClockEvent) JobName() string {
	if e.Job == nil {
		return ""
	}
	return e.Job.Name
}

// TaskName returns the task name or "" when no task is attached.
func (e ClockEvent) TaskName() string {
	if e.Task == nil {
		return ""
	}
	return e.Task.Name
}

// WithStatus returns a copy of the event carrying the given status.
func (e ClockEvent) WithStatus(status ApprovalStatus) ClockEvent {
	e.Status = status
	return e
}

// RecordClockEventRequest is the payload for recording a new clock event.
// Date is optional and defaults to the timestamp's calendar day.
type RecordClockEventRequest struct {
	Kind      EventKind `json:"kind" validate:"required,eventkind"`
	Timestamp time.Time `json:"timestamp" validate:"required"`
	Date      string    `json:"date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	JobID     string    `json:"job_id,omitempty" validate:"omitempty,max=64"`
	JobName   string    `json:"job_name,omitempty" validate:"required_with=JobID,max=200"`
	TaskID    string    `json:"task_id,omitempty" validate:"omitempty,max=64"`
	TaskName  string    `json:"task_name,omitempty" validate:"required_with=TaskID,max=200"`
	Latitude  *float64  `json:"latitude,omitempty" validate:"omitempty,gte=-90,lte=90"`
	Longitude *float64  `json:"longitude,omitempty" validate:"omitempty,gte=-180,lte=180"`
	Address   string    `json:"address,omitempty" validate:"max=500"`
}
