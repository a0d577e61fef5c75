package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/example/tablebook/internal/booking"
	"github.com/example/tablebook/internal/db"
	"github.com/jackc/pgx/v5"
)

type BookingRepo struct{ db *db.DB }

func NewBookingRepo(d *db.DB) *BookingRepo { return &BookingRepo{db: d} }

const bookingColumns = `id,service_window_id,date,time_minutes,party_size,channel,status,
guest_name,guest_phone,notes,created_at,updated_at`

func (r *BookingRepo) CreateBooking(ctx context.Context, b booking.Booking) (booking.Booking, error) {
	err := r.db.Exec(ctx, `
INSERT INTO bookings(id,service_window_id,date,time_minutes,party_size,channel,status,guest_name,guest_phone,notes,created_at,updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
		b.ID, b.ServiceWindowID, b.Date, b.TimeMin, b.PartySize, string(b.Channel), string(b.Status),
		b.GuestName, b.GuestPhone, b.Notes, b.CreatedAt, b.UpdatedAt,
	)
	if err != nil {
		return booking.Booking{}, err
	}
	return b, nil
}

// SumCovers totals party sizes of capacity-counting bookings for a window's
// slot [slotStart, slotEnd) on one date, excluding excludeBookingID when
// non-empty.
func (r *BookingRepo) SumCovers(ctx context.Context, windowID string, date time.Time, slotStart, slotEnd int, excludeBookingID string) (int, error) {
	var sum int
	err := r.db.QueryRow(ctx, `
SELECT COALESCE(SUM(party_size), 0)
FROM bookings
WHERE service_window_id=$1
  AND date=$2
  AND time_minutes >= $3 AND time_minutes < $4
  AND status NOT IN ('cancelled','no_show')
  AND ($5 = '' OR id <> $5)`,
		windowID, booking.DateOnly(date), slotStart, slotEnd, excludeBookingID,
	).Scan(&sum)
	return sum, err
}

func (r *BookingRepo) GetByID(ctx context.Context, id string) (booking.Booking, error) {
	row := r.db.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id=$1`, id)
	b, err := scanBooking(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return booking.Booking{}, db.ErrNotFound
		}
		return booking.Booking{}, err
	}
	return b, nil
}

func (r *BookingRepo) ListByDate(ctx context.Context, date time.Time) ([]booking.Booking, error) {
	rows, err := r.db.Query(ctx, `
SELECT `+bookingColumns+`
FROM bookings
WHERE date=$1
ORDER BY time_minutes ASC, created_at ASC`, booking.DateOnly(date))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []booking.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *BookingRepo) SetStatus(ctx context.Context, id string, status booking.Status) error {
	return r.db.Exec(ctx, `UPDATE bookings SET status=$2, updated_at=now() WHERE id=$1`, id, string(status))
}

// MarkPastNoShows flags pending bookings dated before the given day as
// no-shows and reports how many rows changed.
func (r *BookingRepo) MarkPastNoShows(ctx context.Context, before time.Time) (int64, error) {
	return r.execCount(ctx, `
UPDATE bookings SET status='no_show', updated_at=now()
WHERE date < $1 AND status='pending'`, booking.DateOnly(before))
}

// MarkPastCompleted closes out confirmed or seated bookings dated before the
// given day.
func (r *BookingRepo) MarkPastCompleted(ctx context.Context, before time.Time) (int64, error) {
	return r.execCount(ctx, `
UPDATE bookings SET status='completed', updated_at=now()
WHERE date < $1 AND status IN ('confirmed','seated')`, booking.DateOnly(before))
}

func (r *BookingRepo) execCount(ctx context.Context, sql string, args ...any) (int64, error) {
	var n int64
	err := r.db.QueryRow(ctx, `WITH updated AS (`+sql+` RETURNING 1) SELECT COUNT(*) FROM updated`, args...).Scan(&n)
	return n, err
}

func scanBooking(row db.Row) (booking.Booking, error) {
	var b booking.Booking
	var channel, status string
	err := row.Scan(
		&b.ID, &b.ServiceWindowID, &b.Date, &b.TimeMin, &b.PartySize, &channel, &status,
		&b.GuestName, &b.GuestPhone, &b.Notes, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return booking.Booking{}, err
	}
	b.Channel = booking.Channel(channel)
	b.Status = booking.Status(status)
	return b, nil
}
