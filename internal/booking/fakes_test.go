package booking

import (
	"context"
	"sort"
	"time"
)

// memStore is an in-memory implementation of all four repository ports.
type memStore struct {
	windows   map[string]ServiceWindow
	overrides map[string]CapacityOverride
	bookings  []Booking
	createErr error
}

func newMemStore() *memStore {
	return &memStore{
		windows:   make(map[string]ServiceWindow),
		overrides: make(map[string]CapacityOverride),
	}
}

func newTestEngine(m *memStore) *Engine {
	return NewEngine(m, m, m, m)
}

func (m *memStore) addWindow(w ServiceWindow) {
	m.windows[w.ID] = w
}

func (m *memStore) setOverride(o CapacityOverride) {
	m.overrides[overrideKey(o.ServiceWindowID, o.Date)] = o
}

func (m *memStore) addBooking(b Booking) {
	m.bookings = append(m.bookings, b)
}

func (m *memStore) GetWindow(_ context.Context, id string) (ServiceWindow, error) {
	w, ok := m.windows[id]
	if !ok {
		return ServiceWindow{}, ErrWindowNotFound
	}
	return w, nil
}

func (m *memStore) ActiveWindowsByDay(_ context.Context, day time.Weekday) ([]ServiceWindow, error) {
	var out []ServiceWindow
	for _, w := range m.windows {
		if w.Active && w.DayOfWeek == day {
			out = append(out, w)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartMin < out[j].StartMin })
	return out, nil
}

func (m *memStore) OverrideFor(_ context.Context, windowID string, date time.Time) (*CapacityOverride, error) {
	o, ok := m.overrides[overrideKey(windowID, date)]
	if !ok {
		return nil, nil
	}
	return &o, nil
}

func (m *memStore) SumCovers(_ context.Context, windowID string, date time.Time, slotStart, slotEnd int, excludeBookingID string) (int, error) {
	sum := 0
	for _, b := range m.bookings {
		if b.ServiceWindowID != windowID || !b.Date.Equal(DateOnly(date)) {
			continue
		}
		if b.TimeMin < slotStart || b.TimeMin >= slotEnd {
			continue
		}
		if !b.Status.CountsTowardCapacity() {
			continue
		}
		if excludeBookingID != "" && b.ID == excludeBookingID {
			continue
		}
		sum += b.PartySize
	}
	return sum, nil
}

func (m *memStore) CreateBooking(_ context.Context, b Booking) (Booking, error) {
	if m.createErr != nil {
		return Booking{}, m.createErr
	}
	m.bookings = append(m.bookings, b)
	return b, nil
}

func overrideKey(windowID string, date time.Time) string {
	return windowID + "/" + DateOnly(date).Format("2006-01-02")
}

func intp(n int) *int { return &n }

func minp(hh, mm int) *int {
	v := hh*60 + mm
	return &v
}

// Friday fixtures: 2024-06-07 is a Friday.
var friday = time.Date(2024, 6, 7, 0, 0, 0, 0, time.UTC)

func lunchWindow() ServiceWindow {
	return ServiceWindow{
		ID:          "w-lunch",
		Name:        "Lunch",
		DayOfWeek:   time.Friday,
		StartMin:    11 * 60,
		EndMin:      14 * 60,
		SlotMinutes: 30,
		Active:      true,
	}
}

func dinnerWindow() ServiceWindow {
	return ServiceWindow{
		ID:          "w-dinner",
		Name:        "Dinner",
		DayOfWeek:   time.Friday,
		StartMin:    17 * 60,
		EndMin:      22 * 60,
		SlotMinutes: 30,
		Active:      true,
	}
}
