package booking

import (
	"context"
	"time"
)

// WindowStore looks up service-window configuration.
type WindowStore interface {
	GetWindow(ctx context.Context, id string) (ServiceWindow, error)
	// ActiveWindowsByDay lists active windows for a day of week, ordered by
	// start time.
	ActiveWindowsByDay(ctx context.Context, day time.Weekday) ([]ServiceWindow, error)
}

// OverrideStore looks up per-date capacity overrides. A missing override is
// (nil, nil), not an error.
type OverrideStore interface {
	OverrideFor(ctx context.Context, windowID string, date time.Time) (*CapacityOverride, error)
}

// CoverCounter sums party sizes of capacity-counting bookings for a window,
// date, and slot [slotStart, slotEnd), excluding excludeBookingID when
// non-empty.
type CoverCounter interface {
	SumCovers(ctx context.Context, windowID string, date time.Time, slotStart, slotEnd int, excludeBookingID string) (int, error)
}

// BookingWriter records an admitted booking.
type BookingWriter interface {
	CreateBooking(ctx context.Context, b Booking) (Booking, error)
}
