package recurrence

import "time"

// Expand returns the ordered calendar dates a series starting at start
// produces under rule. A nil rule or Frequency None yields just the start
// date. An end date earlier than the start yields an empty series, not even
// the start date; Validate rejects such rules, so this is only reachable when
// validation was skipped (kept pending product confirmation). Every generated
// date d satisfies start <= d <= rule.EndDate, is absent from rule.SkipDates,
// and the series never exceeds MaxOccurrences entries.
func Expand(start time.Time, rule *Rule) []time.Time {
	start = DateOnly(start)
	if rule == nil || rule.Frequency == "" || rule.Frequency == None {
		return []time.Time{start}
	}
	end := DateOnly(rule.EndDate)
	if end.Before(start) {
		return nil
	}
	interval := rule.Interval
	if interval < 1 {
		interval = 1
	}

	s := newSeries(end, rule.SkipDates)
	s.add(start)

	switch rule.Frequency {
	case Daily:
		for d := start.AddDate(0, 0, interval); !d.After(end) && !s.full(); d = d.AddDate(0, 0, interval) {
			s.add(d)
		}
	case Weekly:
		wanted := weekdaySet(rule.Weekdays, start.Weekday())
		// Baseline week is the Sunday-aligned week containing the start date.
		baseline := start.AddDate(0, 0, -int(start.Weekday()))
		for d := start.AddDate(0, 0, 1); !d.After(end) && !s.full(); d = d.AddDate(0, 0, 1) {
			weeks := daysBetween(baseline, d) / 7
			if weeks%interval == 0 && wanted[d.Weekday()] {
				s.add(d)
			}
		}
	case MonthlyByDate:
		day := rule.MonthlyDay
		if day < 1 {
			day = start.Day()
		}
		for k := interval; !s.full(); k += interval {
			d := monthDayClamped(start, k, day)
			if d.After(end) {
				break
			}
			s.add(d)
		}
	case MonthlyByWeekday:
		wd := start.Weekday()
		if len(rule.Weekdays) > 0 {
			wd = rule.Weekdays[0]
		}
		week := rule.MonthlyWeek
		if week == 0 {
			week = weekdayOrdinal(start)
		}
		for k := interval; !s.full(); k += interval {
			first := firstOfMonth(start, k)
			if first.After(end) {
				break
			}
			d, ok := nthWeekdayInMonth(first, wd, week)
			if !ok {
				// No such occurrence this month (e.g. a 5th Friday).
				continue
			}
			if d.After(end) {
				break
			}
			s.add(d)
		}
	}
	return s.dates
}

type series struct {
	dates []time.Time
	end   time.Time
	skip  map[string]bool
	seen  map[string]bool
}

func newSeries(end time.Time, skipDates []time.Time) *series {
	skip := make(map[string]bool, len(skipDates))
	for _, d := range skipDates {
		skip[DateOnly(d).Format(dayKey)] = true
	}
	return &series{end: end, skip: skip, seen: make(map[string]bool)}
}

func (s *series) add(d time.Time) {
	if s.full() || d.After(s.end) {
		return
	}
	k := d.Format(dayKey)
	if s.skip[k] || s.seen[k] {
		return
	}
	s.seen[k] = true
	s.dates = append(s.dates, d)
}

func (s *series) full() bool { return len(s.dates) >= MaxOccurrences }

func weekdaySet(wds []time.Weekday, fallback time.Weekday) map[time.Weekday]bool {
	out := make(map[time.Weekday]bool, len(wds))
	for _, wd := range wds {
		out[wd] = true
	}
	if len(out) == 0 {
		out[fallback] = true
	}
	return out
}

func daysBetween(a, b time.Time) int {
	return int(b.Sub(a) / (24 * time.Hour))
}

// monthDayClamped returns the date k months after start with the given day of
// month, clamped to the last valid day of the target month.
func monthDayClamped(start time.Time, k, day int) time.Time {
	first := firstOfMonth(start, k)
	if last := lastDayOfMonth(first); day > last {
		day = last
	}
	return time.Date(first.Year(), first.Month(), day, 0, 0, 0, 0, time.UTC)
}

func firstOfMonth(start time.Time, k int) time.Time {
	return time.Date(start.Year(), start.Month()+time.Month(k), 1, 0, 0, 0, 0, time.UTC)
}

func lastDayOfMonth(first time.Time) int {
	return first.AddDate(0, 1, -1).Day()
}

// nthWeekdayInMonth resolves the nth (1..4) or last (-1) occurrence of wd in
// the month containing first. ok is false when the month has no nth
// occurrence.
func nthWeekdayInMonth(first time.Time, wd time.Weekday, n int) (time.Time, bool) {
	if n == -1 {
		last := first.AddDate(0, 1, -1)
		offset := (int(last.Weekday()) - int(wd) + 7) % 7
		return last.AddDate(0, 0, -offset), true
	}
	offset := (int(wd) - int(first.Weekday()) + 7) % 7
	d := first.AddDate(0, 0, offset+(n-1)*7)
	if d.Month() != first.Month() {
		return time.Time{}, false
	}
	return d, true
}

// weekdayOrdinal is the ordinal of t's weekday within its month, with
// anything past the 4th treated as the last occurrence.
func weekdayOrdinal(t time.Time) int {
	ord := (t.Day()-1)/7 + 1
	if ord > 4 {
		return -1
	}
	return ord
}
