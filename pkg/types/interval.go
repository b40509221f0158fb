package types

import (
	"errors"
	"time"
)

// ErrUnsupportedInterval is returned for billing intervals outside the closed set below.
var ErrUnsupportedInterval = errors.New("unsupported interval")

// Interval is the billing cadence of a subscription.
type Interval string

const (
	// IntervalMinute exists to speed up demos and tests.
	IntervalMinute  Interval = "minute"
	IntervalDaily   Interval = "daily"
	IntervalWeekly  Interval = "weekly"
	IntervalMonthly Interval = "monthly"
	IntervalYearly  Interval = "yearly"
)

const day = 24 * time.Hour

var intervalPeriods = map[Interval]time.Duration{
	IntervalMinute:  time.Minute,
	IntervalDaily:   day,
	IntervalWeekly:  7 * day,
	IntervalMonthly: 30 * day,
	IntervalYearly:  365 * day,
}

// SupportedIntervals lists intervals in ascending period order.
var SupportedIntervals = []Interval{
	IntervalMinute,
	IntervalDaily,
	IntervalWeekly,
	IntervalMonthly,
	IntervalYearly,
}

func (i Interval) Valid() bool {
	_, ok := intervalPeriods[i]
	return ok
}

// Period returns the minimum elapsed time between two charges.
func (i Interval) Period() (time.Duration, bool) {
	p, ok := intervalPeriods[i]
	return p, ok
}

func (i Interval) String() string {
	return string(i)
}
