package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/iliyamo/immersive-venue-booking/internal/model"
)

// SlotRepo reads and mutates the availability_slots table.  booked_count is
// only ever changed through IncrementBooked and ReleaseBooked, both of which
// are single conditional UPDATE statements so the capacity check and the write
// cannot interleave with another request.
type SlotRepo struct {
	db *sql.DB
}

// NewSlotRepo returns a new SlotRepo bound to the given database.
func NewSlotRepo(db *sql.DB) *SlotRepo { return &SlotRepo{db: db} }

// DB exposes the underlying handle so callers can begin transactions that
// span several repositories.
func (r *SlotRepo) DB() *sql.DB { return r.db }

const slotColumns = `id, venue_id, experience_id, DATE_FORMAT(date, '%Y-%m-%d'), TIME_FORMAT(time, '%H:%i'), capacity, booked_count`

func scanSlot(row interface{ Scan(...any) error }) (*model.Slot, error) {
	var s model.Slot
	if err := row.Scan(&s.ID, &s.VenueID, &s.ExperienceID, &s.Date, &s.Time, &s.Capacity, &s.BookedCount); err != nil {
		return nil, err
	}
	return &s, nil
}

// List returns all slots for one venue, experience and date ordered by time
// of day.  An empty slice means nothing is scheduled.
func (r *SlotRepo) List(ctx context.Context, venueID, experienceID uint64, date string) ([]model.Slot, error) {
	const q = `SELECT ` + slotColumns + ` FROM availability_slots
               WHERE venue_id = ? AND experience_id = ? AND date = ?
               ORDER BY time ASC, id ASC`
	rows, err := r.db.QueryContext(ctx, q, venueID, experienceID, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Slot, 0, 12)
	for rows.Next() {
		s, err := scanSlot(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *s)
	}
	return out, rows.Err()
}

// GetByID fetches one slot.  Returns ErrNotFound when missing.
func (r *SlotRepo) GetByID(ctx context.Context, id uint64) (*model.Slot, error) {
	return r.getByID(ctx, r.db, id)
}

func (r *SlotRepo) getByID(ctx context.Context, q dbtx, id uint64) (*model.Slot, error) {
	s, err := scanSlot(q.QueryRowContext(ctx, `SELECT `+slotColumns+` FROM availability_slots WHERE id = ?`, id))
	if err != nil {
		return nil, notFound(err)
	}
	return s, nil
}

// FindByKey fetches a slot by its natural key.
func (r *SlotRepo) FindByKey(ctx context.Context, venueID, experienceID uint64, date, hhmm string) (*model.Slot, error) {
	const q = `SELECT ` + slotColumns + ` FROM availability_slots
               WHERE venue_id = ? AND experience_id = ? AND date = ? AND time = ?`
	s, err := scanSlot(r.db.QueryRowContext(ctx, q, venueID, experienceID, date, hhmm))
	if err != nil {
		return nil, notFound(err)
	}
	return s, nil
}

// Create inserts a slot unless one already exists for the same venue,
// experience, date and time.  The stored row is written back into s and
// created reports whether a new row was inserted.  Re-running a seed is
// therefore harmless; an existing row keeps its capacity and booked count.
func (r *SlotRepo) Create(ctx context.Context, s *model.Slot) (created bool, err error) {
	if s.Capacity <= 0 {
		return false, ErrInvalidCapacity
	}
	const ins = `INSERT INTO availability_slots (venue_id, experience_id, date, time, capacity, booked_count)
                 VALUES (?, ?, ?, ?, ?, 0)
                 ON DUPLICATE KEY UPDATE id = id`
	res, err := r.db.ExecContext(ctx, ins, s.VenueID, s.ExperienceID, s.Date, s.Time, s.Capacity)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	stored, err := r.FindByKey(ctx, s.VenueID, s.ExperienceID, s.Date, s.Time)
	if err != nil {
		return false, fmt.Errorf("read back slot: %w", err)
	}
	*s = *stored
	return n == 1, nil
}

// IncrementBooked adds delta seats to a slot outside any transaction.
func (r *SlotRepo) IncrementBooked(ctx context.Context, id uint64, delta int) (*model.Slot, error) {
	return r.increment(ctx, r.db, id, delta)
}

// IncrementBookedTx is IncrementBooked inside the caller's transaction.  The
// row lock taken by the UPDATE is held until the caller commits, which keeps
// a concurrent reservation waiting rather than reading a stale count.
func (r *SlotRepo) IncrementBookedTx(ctx context.Context, tx *sql.Tx, id uint64, delta int) (*model.Slot, error) {
	return r.increment(ctx, tx, id, delta)
}

func (r *SlotRepo) increment(ctx context.Context, q dbtx, id uint64, delta int) (*model.Slot, error) {
	if delta <= 0 {
		return nil, fmt.Errorf("increment by %d: delta must be positive", delta)
	}
	const upd = `UPDATE availability_slots
                 SET booked_count = booked_count + ?
                 WHERE id = ? AND booked_count + ? <= capacity`
	res, err := q.ExecContext(ctx, upd, delta, id, delta)
	if err != nil {
		return nil, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		// Either the slot does not exist or the guard rejected the update.
		if _, err := r.getByID(ctx, q, id); err != nil {
			return nil, err
		}
		return nil, ErrCapacityExceeded
	}
	return r.getByID(ctx, q, id)
}

// ReleaseBookedTx gives count seats back to a slot, for cancellations.  The
// guard keeps booked_count from going negative; releasing more than is booked
// returns ErrConflict and changes nothing.
func (r *SlotRepo) ReleaseBookedTx(ctx context.Context, tx *sql.Tx, id uint64, count int) (*model.Slot, error) {
	if count <= 0 {
		return nil, fmt.Errorf("release %d seats: count must be positive", count)
	}
	const upd = `UPDATE availability_slots
                 SET booked_count = booked_count - ?
                 WHERE id = ? AND booked_count >= ?`
	res, err := tx.ExecContext(ctx, upd, count, id, count)
	if err != nil {
		return nil, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		if _, err := r.getByID(ctx, tx, id); err != nil {
			return nil, err
		}
		return nil, ErrConflict
	}
	return r.getByID(ctx, tx, id)
}
