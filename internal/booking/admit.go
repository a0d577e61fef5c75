package booking

import (
	"context"
	"time"

	"github.com/example/tablebook/internal/recurrence"
	"github.com/google/uuid"
)

// Engine composes window resolution, slot math, and the capacity guard over
// prepared persistence collaborators. It owns no storage and runs no schema
// setup.
type Engine struct {
	windows   WindowStore
	overrides OverrideStore
	covers    CoverCounter
	bookings  BookingWriter
}

func NewEngine(windows WindowStore, overrides OverrideStore, covers CoverCounter, bookings BookingWriter) *Engine {
	return &Engine{windows: windows, overrides: overrides, covers: covers, bookings: bookings}
}

// Request is one admission attempt. TimeMin is optional; without it the first
// window of the day and its first bucket apply. WindowID pins a specific
// service window. ExcludeBookingID lets an edit re-check capacity without
// counting its own prior reservation. Recurrence, when set, turns the request
// into a series (see AdmitSeries).
type Request struct {
	Date      time.Time
	TimeMin   *int
	PartySize int
	Channel   Channel
	WindowID  string

	Recurrence       *recurrence.Rule
	ExcludeBookingID string

	GuestName  string
	GuestPhone string
	Notes      string
}

// Admit decides a single-date request: resolve the window, enforce the
// online party-size ceiling, locate the slot, run the capacity guard, then
// record the booking. Rejections are returned as *RejectionError; anything
// else is an opaque persistence failure.
func (e *Engine) Admit(ctx context.Context, req Request) (Booking, error) {
	w, err := e.ResolveWindow(ctx, req.Date, req.TimeMin, req.WindowID)
	if err != nil {
		return Booking{}, err
	}

	if req.Channel == ChannelOnline && w.MaxOnlinePartySize != nil && req.PartySize > *w.MaxOnlinePartySize {
		return Booking{}, reject(RejectPartyTooLarge,
			"party of %d exceeds online limit of %d", req.PartySize, *w.MaxOnlinePartySize)
	}

	at := w.StartMin
	if req.TimeMin != nil {
		at = *req.TimeMin
	}
	slot := w.SlotAt(at)

	if err := e.checkCapacity(ctx, DateOnly(req.Date), w, slot, req.PartySize, req.Channel, req.ExcludeBookingID); err != nil {
		return Booking{}, err
	}

	now := time.Now().UTC()
	b := Booking{
		ID:              uuid.NewString(),
		ServiceWindowID: w.ID,
		Date:            DateOnly(req.Date),
		TimeMin:         at,
		PartySize:       req.PartySize,
		Channel:         req.Channel,
		Status:          initialStatus(req.Channel),
		GuestName:       req.GuestName,
		GuestPhone:      req.GuestPhone,
		Notes:           req.Notes,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	return e.bookings.CreateBooking(ctx, b)
}

func initialStatus(c Channel) Status {
	if c == ChannelOnline {
		return StatusPending
	}
	return StatusConfirmed
}

// SeriesOutcome reports a recurring admission: bookings created plus the
// dates that were rejected, in generation order.
type SeriesOutcome struct {
	Created  []Booking
	Rejected []SeriesRejection
}

type SeriesRejection struct {
	Date time.Time
	Err  *RejectionError
}

// AdmitSeries expands the request's recurrence rule once, then runs the
// single-date admission flow per generated date. Each date is admitted
// independently; one date's rejection does not abort the others. All-or-
// nothing semantics, if wanted, are the caller's to provide (by wrapping the
// batch in a transaction and discarding on any rejection). An opaque
// persistence failure aborts the loop and is returned alongside the partial
// outcome.
func (e *Engine) AdmitSeries(ctx context.Context, req Request) (SeriesOutcome, error) {
	if err := req.Recurrence.Validate(req.Date); err != nil {
		return SeriesOutcome{}, reject(RejectInvalidRecurrence, "%v", err)
	}

	dates := recurrence.Expand(req.Date, req.Recurrence)

	var out SeriesOutcome
	for _, d := range dates {
		single := req
		single.Date = d
		single.Recurrence = nil

		b, err := e.Admit(ctx, single)
		if err != nil {
			if rej, ok := Rejection(err); ok {
				out.Rejected = append(out.Rejected, SeriesRejection{Date: d, Err: rej})
				continue
			}
			return out, err
		}
		out.Created = append(out.Created, b)
	}
	return out, nil
}
