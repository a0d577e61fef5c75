// Package recurrence expands repeating-booking rules into concrete calendar
// dates. It supports a fixed set of shapes (daily, weekly with a weekday set,
// monthly by date, monthly by nth weekday) rather than general RFC 5545 rules.
package recurrence

import (
	"fmt"
	"time"
)

type Frequency string

const (
	None             Frequency = "none"
	Daily            Frequency = "daily"
	Weekly           Frequency = "weekly"
	MonthlyByDate    Frequency = "monthly_by_date"
	MonthlyByWeekday Frequency = "monthly_by_weekday"
)

// MaxOccurrences bounds every expansion loop. Generation stops at this many
// dates even if the rule's end date has not been reached.
const MaxOccurrences = 160

// Rule describes how a booking repeats. EndDate is inclusive and required for
// any frequency other than None. Weekdays applies to Weekly and
// MonthlyByWeekday; MonthlyDay to MonthlyByDate; MonthlyWeek (1..4, or -1 for
// the last week) to MonthlyByWeekday. Zero values fall back to the series
// start date's weekday, day of month, or ordinal.
type Rule struct {
	Frequency   Frequency
	Interval    int
	EndDate     time.Time
	Weekdays    []time.Weekday
	MonthlyDay  int
	MonthlyWeek int
	SkipDates   []time.Time
}

// Validate reports whether the rule is well formed for a series starting at
// start. Expansion of an invalid rule is defined (see Expand) but callers are
// expected to reject invalid rules up front.
func (r *Rule) Validate(start time.Time) error {
	if r == nil || r.Frequency == "" || r.Frequency == None {
		return nil
	}
	switch r.Frequency {
	case Daily, Weekly, MonthlyByDate, MonthlyByWeekday:
	default:
		return fmt.Errorf("unknown frequency %q", r.Frequency)
	}
	if r.Interval < 0 {
		return fmt.Errorf("interval must be >= 1")
	}
	if r.EndDate.IsZero() {
		return fmt.Errorf("end date required")
	}
	if DateOnly(r.EndDate).Before(DateOnly(start)) {
		return fmt.Errorf("end date %s before start date %s",
			r.EndDate.Format("2006-01-02"), start.Format("2006-01-02"))
	}
	for _, wd := range r.Weekdays {
		if wd < time.Sunday || wd > time.Saturday {
			return fmt.Errorf("invalid weekday %d", wd)
		}
	}
	if r.MonthlyDay < 0 || r.MonthlyDay > 31 {
		return fmt.Errorf("invalid day of month %d", r.MonthlyDay)
	}
	switch r.MonthlyWeek {
	case -1, 0, 1, 2, 3, 4:
	default:
		return fmt.Errorf("invalid week of month %d", r.MonthlyWeek)
	}
	return nil
}

// DateOnly normalizes t to midnight UTC. All series arithmetic is plain
// calendar-date arithmetic on these normalized values.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

const dayKey = "2006-01-02"
