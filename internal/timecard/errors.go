// Package timecard turns raw clock events into work days, worked hours and
// overtime breakdowns. Every function here is pure: no I/O, no logging, no
// shared state.
package timecard

import "errors"

var (
	// ErrInvalidHours is returned when hours are negative, NaN or infinite.
	ErrInvalidHours = errors.New("hours must be a finite non-negative number")
	// ErrInvalidPeriod is returned for an unknown window selector.
	ErrInvalidPeriod = errors.New("period must be one of week, month, all")
	// ErrInvalidDate is returned for a malformed calendar date.
	ErrInvalidDate = errors.New("date must be a valid YYYY-MM-DD calendar date")
	// ErrInvalidPolicy is returned for thresholds that do not form ascending tiers.
	ErrInvalidPolicy = errors.New("overtime thresholds must satisfy 0 < regular <= overtime")
	// ErrAlreadySubmitted is returned when a date already has a submitted or
	// approved event. It is a recoverable condition callers must branch on.
	ErrAlreadySubmitted = errors.New("timecard already submitted")
	// ErrNoEvents is returned when submitting a date that has no events.
	ErrNoEvents = errors.New("no clock events on date")
)
