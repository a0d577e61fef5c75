// Package postgres holds the pgx-backed implementations of the booking
// engine's repository ports.
package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/example/tablebook/internal/booking"
	"github.com/example/tablebook/internal/db"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type WindowRepo struct{ db *db.DB }

func NewWindowRepo(d *db.DB) *WindowRepo { return &WindowRepo{db: d} }

const windowColumns = `id,name,day_of_week,start_minutes,end_minutes,slot_minutes,
max_covers_per_slot,max_online_covers,max_online_party_size,active,
menu_name,menu_from,menu_until,created_at,updated_at`

func (r *WindowRepo) Create(ctx context.Context, w booking.ServiceWindow) (booking.ServiceWindow, error) {
	if w.ID == "" {
		w.ID = uuid.NewString()
	}
	err := r.db.Exec(ctx, `
INSERT INTO service_windows(id,name,day_of_week,start_minutes,end_minutes,slot_minutes,
	max_covers_per_slot,max_online_covers,max_online_party_size,active,menu_name,menu_from,menu_until)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)`,
		w.ID, w.Name, int(w.DayOfWeek), w.StartMin, w.EndMin, w.SlotMinutes,
		w.MaxCoversPerSlot, w.MaxOnlineCovers, w.MaxOnlinePartySize, w.Active,
		w.MenuName, w.MenuFrom, w.MenuUntil,
	)
	if err != nil {
		return booking.ServiceWindow{}, err
	}
	return w, nil
}

func (r *WindowRepo) GetWindow(ctx context.Context, id string) (booking.ServiceWindow, error) {
	row := r.db.QueryRow(ctx, `SELECT `+windowColumns+` FROM service_windows WHERE id=$1`, id)
	w, err := scanWindow(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return booking.ServiceWindow{}, booking.ErrWindowNotFound
		}
		return booking.ServiceWindow{}, err
	}
	return w, nil
}

func (r *WindowRepo) ActiveWindowsByDay(ctx context.Context, day time.Weekday) ([]booking.ServiceWindow, error) {
	rows, err := r.db.Query(ctx, `
SELECT `+windowColumns+`
FROM service_windows
WHERE day_of_week=$1 AND active
ORDER BY start_minutes ASC`, int(day))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectWindows(rows)
}

func (r *WindowRepo) List(ctx context.Context) ([]booking.ServiceWindow, error) {
	rows, err := r.db.Query(ctx, `
SELECT `+windowColumns+`
FROM service_windows
ORDER BY day_of_week ASC, start_minutes ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectWindows(rows)
}

func (r *WindowRepo) SetActive(ctx context.Context, id string, active bool) error {
	return r.db.Exec(ctx, `UPDATE service_windows SET active=$2, updated_at=now() WHERE id=$1`, id, active)
}

func (r *WindowRepo) SetOverride(ctx context.Context, o booking.CapacityOverride) error {
	return r.db.Exec(ctx, `
INSERT INTO capacity_overrides(service_window_id, date, max_covers_per_slot, slot_minutes)
VALUES ($1,$2,$3,$4)
ON CONFLICT (service_window_id, date)
DO UPDATE SET max_covers_per_slot=EXCLUDED.max_covers_per_slot, slot_minutes=EXCLUDED.slot_minutes`,
		o.ServiceWindowID, booking.DateOnly(o.Date), o.MaxCoversPerSlot, o.SlotMinutes)
}

func (r *WindowRepo) OverrideFor(ctx context.Context, windowID string, date time.Time) (*booking.CapacityOverride, error) {
	row := r.db.QueryRow(ctx, `
SELECT service_window_id, date, max_covers_per_slot, slot_minutes
FROM capacity_overrides
WHERE service_window_id=$1 AND date=$2`, windowID, booking.DateOnly(date))

	var o booking.CapacityOverride
	if err := row.Scan(&o.ServiceWindowID, &o.Date, &o.MaxCoversPerSlot, &o.SlotMinutes); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &o, nil
}

func scanWindow(row db.Row) (booking.ServiceWindow, error) {
	var w booking.ServiceWindow
	var day int
	err := row.Scan(
		&w.ID, &w.Name, &day, &w.StartMin, &w.EndMin, &w.SlotMinutes,
		&w.MaxCoversPerSlot, &w.MaxOnlineCovers, &w.MaxOnlinePartySize, &w.Active,
		&w.MenuName, &w.MenuFrom, &w.MenuUntil, &w.CreatedAt, &w.UpdatedAt,
	)
	if err != nil {
		return booking.ServiceWindow{}, err
	}
	w.DayOfWeek = time.Weekday(day)
	return w, nil
}

func collectWindows(rows db.Rows) ([]booking.ServiceWindow, error) {
	var out []booking.ServiceWindow
	for rows.Next() {
		w, err := scanWindow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, rows.Err()
}
