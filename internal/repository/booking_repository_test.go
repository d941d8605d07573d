package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"

	"github.com/iliyamo/immersive-venue-booking/internal/model"
)

var bookingCols = []string{"id", "reference", "user_id", "slot_id", "venue_id", "experience_id", "date", "time",
	"number_of_tickets", "ticket_type", "seats", "total_price_cents",
	"customer_name", "customer_email", "customer_phone", "status", "created_at"}

var createdAt = time.Date(2026, 10, 19, 9, 30, 0, 0, time.UTC)

func bookingRow(id int64, userID any, status string) *sqlmock.Rows {
	return sqlmock.NewRows(bookingCols).AddRow(id, "ref-1", userID, 1, 4, 6, "2026-11-02", "14:00",
		2, "member", 2, 6106, "Ana Ruiz", "ana@example.com", nil, status, createdAt)
}

func TestGetBooking(t *testing.T) {
	mock, _, bookings := newMock(t)
	mock.ExpectQuery(`FROM bookings WHERE id = \?`).WithArgs(7).WillReturnRows(bookingRow(7, nil, model.StatusPending))
	mock.ExpectQuery(`FROM bookings WHERE id = \?`).WithArgs(8).WillReturnRows(sqlmock.NewRows(bookingCols))

	b, err := bookings.GetByID(context.Background(), 7)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if b.UserID != nil || b.CustomerPhone != nil {
		t.Errorf("nullable columns should stay nil: %+v", b)
	}
	if b.TicketType != model.TicketMember || b.TotalPrice != 6106 || !b.CreatedAt.Equal(createdAt) {
		t.Errorf("booking = %+v", b)
	}

	if _, err := bookings.GetByID(context.Background(), 8); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing booking: err = %v", err)
	}
}

func TestListByUserNewestFirst(t *testing.T) {
	mock, _, bookings := newMock(t)
	rows := sqlmock.NewRows(bookingCols).
		AddRow(9, "ref-9", 3, 1, 4, 6, "2026-11-02", "14:00", 1, "standard", 1, 3392, "Ana", "ana@example.com", "555-0100", "pending", createdAt).
		AddRow(5, "ref-5", 3, 1, 4, 6, "2026-11-02", "14:00", 1, "standard", 1, 3392, "Ana", "ana@example.com", nil, "cancelled", createdAt.Add(-time.Hour))
	mock.ExpectQuery(`WHERE user_id = \? ORDER BY created_at DESC, id DESC`).WithArgs(3).WillReturnRows(rows)

	got, err := bookings.ListByUser(context.Background(), 3)
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(got) != 2 || got[0].ID != 9 || *got[0].UserID != 3 || *got[0].CustomerPhone != "555-0100" {
		t.Errorf("bookings = %+v", got)
	}
}

func TestCreateBookingInTx(t *testing.T) {
	ctx := context.Background()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	store := NewMySQLStore(db)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE availability_slots`).WithArgs(2, 1, 2).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`FROM availability_slots WHERE id = \?`).
		WillReturnRows(sqlmock.NewRows(slotCols).AddRow(1, 4, 6, "2026-11-02", "14:00", 10, 10))
	mock.ExpectExec(`INSERT INTO bookings`).WillReturnResult(sqlmock.NewResult(42, 1))
	mock.ExpectQuery(`FROM bookings WHERE id = \?`).WithArgs(42).WillReturnRows(bookingRow(42, 3, model.StatusPending))
	mock.ExpectCommit()

	uid := uint64(3)
	b := &model.Booking{
		Reference: "ref-1", UserID: &uid, SlotID: 1, VenueID: 4, ExperienceID: 6, Date: "2026-11-02", Time: "14:00",
		NumberOfTickets: 2, TicketType: model.TicketMember, Seats: 2, TotalPrice: 6106,
		CustomerName: "Ana Ruiz", CustomerEmail: "ana@example.com",
	}
	err = store.InTx(ctx, func(tx ReservationTx) error {
		if _, err := tx.IncrementBooked(ctx, 1, 2); err != nil {
			return err
		}
		return tx.CreateBooking(ctx, b)
	})
	if err != nil {
		t.Fatalf("InTx: %v", err)
	}
	if b.ID != 42 || b.Status != model.StatusPending {
		t.Errorf("booking after create = %+v", b)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestInTxRollsBack(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name    string
		prepare func(sqlmock.Sqlmock)
		want    error
	}{
		{
			name: "sold out",
			prepare: func(m sqlmock.Sqlmock) {
				m.ExpectExec(`UPDATE availability_slots`).WillReturnResult(sqlmock.NewResult(0, 0))
				m.ExpectQuery(`FROM availability_slots WHERE id = \?`).
					WillReturnRows(sqlmock.NewRows(slotCols).AddRow(1, 4, 6, "2026-11-02", "14:00", 10, 9))
			},
			want: ErrCapacityExceeded,
		},
		{
			name: "booking insert collides",
			prepare: func(m sqlmock.Sqlmock) {
				m.ExpectExec(`UPDATE availability_slots`).WillReturnResult(sqlmock.NewResult(0, 1))
				m.ExpectQuery(`FROM availability_slots WHERE id = \?`).
					WillReturnRows(sqlmock.NewRows(slotCols).AddRow(1, 4, 6, "2026-11-02", "14:00", 10, 10))
				m.ExpectExec(`INSERT INTO bookings`).WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})
			},
			want: ErrConflict,
		},
		{
			name: "driver failure",
			prepare: func(m sqlmock.Sqlmock) {
				m.ExpectExec(`UPDATE availability_slots`).WillReturnError(sql.ErrConnDone)
			},
			want: sql.ErrConnDone,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			if err != nil {
				t.Fatal(err)
			}
			defer db.Close()
			mock.ExpectBegin()
			tc.prepare(mock)
			mock.ExpectRollback()

			err = NewMySQLStore(db).InTx(ctx, func(tx ReservationTx) error {
				if _, err := tx.IncrementBooked(ctx, 1, 2); err != nil {
					return err
				}
				return tx.CreateBooking(ctx, &model.Booking{Reference: "r", TicketType: model.TicketStandard})
			})
			if !errors.Is(err, tc.want) {
				t.Errorf("err = %v, want %v", err, tc.want)
			}
			if err := mock.ExpectationsWereMet(); err != nil {
				t.Error(err)
			}
		})
	}
}

func TestUpdateStatusUnchangedValue(t *testing.T) {
	ctx := context.Background()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE bookings SET status = \? WHERE id = \?`).WithArgs("confirmed", 7).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT 1 FROM bookings WHERE id = \?`).WithArgs(7).WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
	mock.ExpectExec(`UPDATE bookings SET status = \? WHERE id = \?`).WithArgs("confirmed", 8).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT 1 FROM bookings WHERE id = \?`).WithArgs(8).WillReturnRows(sqlmock.NewRows([]string{"1"}))
	mock.ExpectRollback()

	err = NewMySQLStore(db).InTx(ctx, func(tx ReservationTx) error {
		if err := tx.UpdateBookingStatus(ctx, 7, "confirmed"); err != nil {
			t.Errorf("unchanged status on existing row: %v", err)
		}
		return tx.UpdateBookingStatus(ctx, 8, "confirmed")
	})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}
