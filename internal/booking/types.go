// Package booking is the slot-admission core: it resolves service windows,
// computes capacity buckets, and decides whether reservation requests are
// admitted against configured cover ceilings. Persistence lives behind the
// narrow interfaces in ports.go.
package booking

import (
	"fmt"
	"time"
)

type Channel string

const (
	ChannelOnline   Channel = "online"
	ChannelInternal Channel = "internal"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusSeated    Status = "seated"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
	StatusNoShow    Status = "no_show"
)

// CountsTowardCapacity reports whether a booking in this status occupies
// covers in its slot.
func (s Status) CountsTowardCapacity() bool {
	return s != StatusCancelled && s != StatusNoShow
}

// ServiceWindow is a bookable time band for one day of week. Times are
// minutes of day; the band is half-open [StartMin, EndMin). Nil ceilings mean
// unlimited. MaxOnlineCovers and MaxOnlinePartySize apply only to the online
// channel.
type ServiceWindow struct {
	ID          string
	Name        string
	DayOfWeek   time.Weekday
	StartMin    int
	EndMin      int
	SlotMinutes int

	MaxCoversPerSlot   *int
	MaxOnlineCovers    *int
	MaxOnlinePartySize *int

	Active bool

	// Optional special-menu metadata; shown downstream, never consulted by
	// admission.
	MenuName  string
	MenuFrom  *time.Time
	MenuUntil *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (w ServiceWindow) Validate() error {
	if w.Name == "" {
		return fmt.Errorf("name required")
	}
	if w.DayOfWeek < time.Sunday || w.DayOfWeek > time.Saturday {
		return fmt.Errorf("day_of_week must be 0..6")
	}
	if w.StartMin < 0 || w.EndMin > 24*60 || w.EndMin <= w.StartMin {
		return fmt.Errorf("window times must satisfy 0 <= start < end <= 1440")
	}
	if w.SlotMinutes < 0 {
		return fmt.Errorf("slot_minutes must be >= 0")
	}
	return nil
}

// CapacityOverride replaces a window's covers ceiling and/or slot granularity
// for one specific calendar date.
type CapacityOverride struct {
	ServiceWindowID  string
	Date             time.Time
	MaxCoversPerSlot *int
	SlotMinutes      *int
}

// Booking is the admitted unit. Date is a calendar date (midnight UTC),
// TimeMin a minute of day. The engine creates bookings and reads them for
// capacity sums; status transitions happen outside the engine.
type Booking struct {
	ID              string
	ServiceWindowID string
	Date            time.Time
	TimeMin         int
	PartySize       int
	Channel         Channel
	Status          Status

	GuestName  string
	GuestPhone string
	Notes      string

	CreatedAt time.Time
	UpdatedAt time.Time
}
