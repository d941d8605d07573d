package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/immersive-venue-booking/internal/model"
)

// BookingRepo persists confirmed bookings.  Rows are append-only: there is
// no delete, and the only update is the status column.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo returns a new BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

const bookingColumns = `id, reference, user_id, slot_id, venue_id, experience_id,
       DATE_FORMAT(date, '%Y-%m-%d'), TIME_FORMAT(time, '%H:%i'),
       number_of_tickets, ticket_type, seats, total_price_cents,
       customer_name, customer_email, customer_phone, status, created_at`

func scanBooking(row interface{ Scan(...any) error }) (*model.Booking, error) {
	var (
		b      model.Booking
		userID sql.NullInt64
		phone  sql.NullString
		ticket string
		total  int64
	)
	err := row.Scan(&b.ID, &b.Reference, &userID, &b.SlotID, &b.VenueID, &b.ExperienceID,
		&b.Date, &b.Time, &b.NumberOfTickets, &ticket, &b.Seats, &total,
		&b.CustomerName, &b.CustomerEmail, &phone, &b.Status, &b.CreatedAt)
	if err != nil {
		return nil, err
	}
	if userID.Valid {
		uid := uint64(userID.Int64)
		b.UserID = &uid
	}
	if phone.Valid {
		p := phone.String
		b.CustomerPhone = &p
	}
	b.TicketType = model.TicketType(ticket)
	b.TotalPrice = model.Money(total)
	return &b, nil
}

// CreateTx inserts a booking within the caller's transaction and reads the
// row back so ID, Status and CreatedAt carry the database defaults.
func (r *BookingRepo) CreateTx(ctx context.Context, tx *sql.Tx, b *model.Booking) error {
	const q = `INSERT INTO bookings (reference, user_id, slot_id, venue_id, experience_id, date, time,
                   number_of_tickets, ticket_type, seats, total_price_cents,
                   customer_name, customer_email, customer_phone, status)
               VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	status := b.Status
	if status == "" {
		status = model.StatusPending
	}
	res, err := tx.ExecContext(ctx, q,
		b.Reference, nullableID(b.UserID), b.SlotID, b.VenueID, b.ExperienceID, b.Date, b.Time,
		b.NumberOfTickets, string(b.TicketType), b.Seats, int64(b.TotalPrice),
		b.CustomerName, b.CustomerEmail, nullableString(b.CustomerPhone), status)
	if err != nil {
		if isDuplicate(err) {
			return ErrConflict
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	stored, err := scanBooking(tx.QueryRowContext(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = ?`, id))
	if err != nil {
		return err
	}
	*b = *stored
	return nil
}

// GetByID returns a booking or ErrNotFound.
func (r *BookingRepo) GetByID(ctx context.Context, id uint64) (*model.Booking, error) {
	b, err := scanBooking(r.db.QueryRowContext(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = ?`, id))
	if err != nil {
		return nil, notFound(err)
	}
	return b, nil
}

// GetByReference looks a booking up by its public reference.
func (r *BookingRepo) GetByReference(ctx context.Context, reference string) (*model.Booking, error) {
	b, err := scanBooking(r.db.QueryRowContext(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE reference = ?`, reference))
	if err != nil {
		return nil, notFound(err)
	}
	return b, nil
}

// GetForUpdateTx locks the booking row for a status change.
func (r *BookingRepo) GetForUpdateTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Booking, error) {
	b, err := scanBooking(tx.QueryRowContext(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = ? FOR UPDATE`, id))
	if err != nil {
		return nil, notFound(err)
	}
	return b, nil
}

// ListByUser returns the user's bookings, newest first.
func (r *BookingRepo) ListByUser(ctx context.Context, userID uint64) ([]model.Booking, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE user_id = ? ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Booking, 0)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
	}
	return out, rows.Err()
}

// UpdateStatusTx sets the status column.  Transition rules live in the
// service layer; this only reports ErrNotFound for a missing row.
func (r *BookingRepo) UpdateStatusTx(ctx context.Context, tx *sql.Tx, id uint64, status string) error {
	res, err := tx.ExecContext(ctx, `UPDATE bookings SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		// MySQL reports 0 when the value is unchanged, so check existence.
		var one int
		if err := tx.QueryRowContext(ctx, `SELECT 1 FROM bookings WHERE id = ?`, id).Scan(&one); err != nil {
			return notFound(err)
		}
	}
	return nil
}

func nullableID(p *uint64) any {
	if p == nil || *p == 0 {
		return nil
	}
	return *p
}

func nullableString(p *string) any {
	if p == nil || *p == "" {
		return nil
	}
	return *p
}
