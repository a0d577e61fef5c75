package booking

// Slot is one admission bucket within a service window, half-open
// [Start, End) in minutes of day.
type Slot struct {
	Start int
	End   int
}

// SlotAt returns the bucket a requested time falls into at the window's
// granularity. Times before the window map to the first bucket, times at or
// past the window end to the last. The result always satisfies
// StartMin <= Start < End <= EndMin.
func (w ServiceWindow) SlotAt(at int) Slot {
	gran := w.SlotMinutes
	if gran <= 0 {
		gran = DefaultSlotMinutes
	}
	if gran > w.EndMin-w.StartMin {
		gran = w.EndMin - w.StartMin
	}

	if at < w.StartMin {
		return Slot{Start: w.StartMin, End: w.StartMin + gran}
	}
	if at >= w.EndMin {
		return Slot{Start: w.EndMin - gran, End: w.EndMin}
	}

	start := w.StartMin + ((at-w.StartMin)/gran)*gran
	end := start + gran
	if end > w.EndMin {
		end = w.EndMin
	}
	return Slot{Start: start, End: end}
}
