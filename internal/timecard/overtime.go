package timecard

import (
	"fmt"
	"math"

	"Mansoor88-6/timeclock/internal/models"
)

// Policy is a daily tiered overtime rule. Hours up to RegularLimit are
// regular, hours up to OvertimeLimit are overtime, the rest is double time.
// Boundary values belong to the lower tier.
type Policy struct {
	RegularLimit  float64
	OvertimeLimit float64
}

// DefaultPolicy is the 8h/12h daily rule.
var DefaultPolicy = Policy{RegularLimit: 8, OvertimeLimit: 12}

// NewPolicy returns a policy after checking the thresholds are ascending.
func NewPolicy(regular, overtime float64) (Policy, error) {
	p := Policy{RegularLimit: regular, OvertimeLimit: overtime}
	if err := p.Validate(); err != nil {
		return Policy{}, err
	}
	return p, nil
}

// Validate reports whether the thresholds form usable tiers.
func (p Policy) Validate() error {
	if !finite(p.RegularLimit) || !finite(p.OvertimeLimit) ||
		p.RegularLimit <= 0 || p.OvertimeLimit < p.RegularLimit {
		return fmt.Errorf("%w: regular=%v overtime=%v", ErrInvalidPolicy, p.RegularLimit, p.OvertimeLimit)
	}
	return nil
}

// Classify splits a day's worked hours into tiers.
func (p Policy) Classify(hours float64) (models.HoursBreakdown, error) {
	if !finite(hours) || hours < 0 {
		return models.HoursBreakdown{}, fmt.Errorf("%w: got %v", ErrInvalidHours, hours)
	}

	b := models.HoursBreakdown{Total: hours}
	switch {
	case hours <= p.RegularLimit:
		b.Regular = hours
	case hours <= p.OvertimeLimit:
		b.Regular = p.RegularLimit
		b.Overtime = hours - p.RegularLimit
	default:
		b.Regular = p.RegularLimit
		b.Overtime = p.OvertimeLimit - p.RegularLimit
		b.DoubleTime = hours - p.OvertimeLimit
	}
	return b, nil
}

// Classify applies DefaultPolicy.
func Classify(hours float64) (models.HoursBreakdown, error) {
	return DefaultPolicy.Classify(hours)
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
