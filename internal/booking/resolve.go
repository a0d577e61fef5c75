package booking

import (
	"context"
	"errors"
	"time"
)

// DefaultSlotMinutes is used when a window (or override) carries no usable
// slot granularity.
const DefaultSlotMinutes = 30

// ResolveWindow finds the service window governing a request. With an
// explicit windowID the window is fetched directly and must be active.
// Otherwise the active windows for date's weekday are scanned in start-time
// order: the first one whose [StartMin, EndMin] contains at (inclusive at
// both ends) wins, or simply the first window when at is nil. The per-date
// capacity override, if any, is merged before returning.
func (e *Engine) ResolveWindow(ctx context.Context, date time.Time, at *int, windowID string) (ServiceWindow, error) {
	date = DateOnly(date)

	if windowID != "" {
		w, err := e.windows.GetWindow(ctx, windowID)
		if err != nil {
			if errors.Is(err, ErrWindowNotFound) {
				return ServiceWindow{}, reject(RejectNoMatchingWindow, "no service window %s", windowID)
			}
			return ServiceWindow{}, err
		}
		if !w.Active {
			return ServiceWindow{}, reject(RejectNoMatchingWindow, "service window %s is inactive", windowID)
		}
		return e.applyOverride(ctx, w, date)
	}

	ws, err := e.windows.ActiveWindowsByDay(ctx, date.Weekday())
	if err != nil {
		return ServiceWindow{}, err
	}
	for _, w := range ws {
		if at == nil || (*at >= w.StartMin && *at <= w.EndMin) {
			return e.applyOverride(ctx, w, date)
		}
	}
	if at != nil {
		return ServiceWindow{}, reject(RejectNoMatchingWindow,
			"no service window on %s contains %s", date.Weekday(), Clock(*at))
	}
	return ServiceWindow{}, reject(RejectNoMatchingWindow, "no service windows on %s", date.Weekday())
}

func (e *Engine) applyOverride(ctx context.Context, w ServiceWindow, date time.Time) (ServiceWindow, error) {
	o, err := e.overrides.OverrideFor(ctx, w.ID, date)
	if err != nil {
		return ServiceWindow{}, err
	}
	if o != nil {
		if o.MaxCoversPerSlot != nil {
			w.MaxCoversPerSlot = o.MaxCoversPerSlot
		}
		if o.SlotMinutes != nil {
			w.SlotMinutes = *o.SlotMinutes
		}
	}
	if w.SlotMinutes <= 0 {
		w.SlotMinutes = DefaultSlotMinutes
	}
	return w, nil
}
