package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/iliyamo/immersive-venue-booking/internal/model"
)

// ReservationStore is everything the reservation engine needs from
// persistence.  MySQLStore is the production implementation; package
// memory provides the in-memory double used by tests.
type ReservationStore interface {
	ListSlots(ctx context.Context, venueID, experienceID uint64, date string) ([]model.Slot, error)
	CreateSlot(ctx context.Context, s *model.Slot) (created bool, err error)
	IncrementBooked(ctx context.Context, slotID uint64, delta int) (*model.Slot, error)
	GetExperience(ctx context.Context, id uint64) (*model.Experience, error)
	GetBooking(ctx context.Context, id uint64) (*model.Booking, error)
	GetBookingByReference(ctx context.Context, reference string) (*model.Booking, error)
	ListBookingsByUser(ctx context.Context, userID uint64) ([]model.Booking, error)

	// InTx runs fn in one transaction.  fn's error rolls everything back.
	InTx(ctx context.Context, fn func(tx ReservationTx) error) error
}

// ReservationTx is the transactional subset: every call made through it
// commits or rolls back together.
type ReservationTx interface {
	IncrementBooked(ctx context.Context, slotID uint64, delta int) (*model.Slot, error)
	ReleaseBooked(ctx context.Context, slotID uint64, count int) (*model.Slot, error)
	CreateBooking(ctx context.Context, b *model.Booking) error
	GetBookingForUpdate(ctx context.Context, id uint64) (*model.Booking, error)
	UpdateBookingStatus(ctx context.Context, id uint64, status string) error
}

// MySQLStore composes the slot, booking and experience repositories over one
// *sql.DB.
type MySQLStore struct {
	db          *sql.DB
	Slots       *SlotRepo
	Bookings    *BookingRepo
	Experiences *ExperienceRepo
}

func NewMySQLStore(db *sql.DB) *MySQLStore {
	return &MySQLStore{
		db:          db,
		Slots:       NewSlotRepo(db),
		Bookings:    NewBookingRepo(db),
		Experiences: NewExperienceRepo(db),
	}
}

func (s *MySQLStore) ListSlots(ctx context.Context, venueID, experienceID uint64, date string) ([]model.Slot, error) {
	return s.Slots.List(ctx, venueID, experienceID, date)
}

func (s *MySQLStore) CreateSlot(ctx context.Context, slot *model.Slot) (bool, error) {
	return s.Slots.Create(ctx, slot)
}

func (s *MySQLStore) IncrementBooked(ctx context.Context, slotID uint64, delta int) (*model.Slot, error) {
	return s.Slots.IncrementBooked(ctx, slotID, delta)
}

func (s *MySQLStore) GetExperience(ctx context.Context, id uint64) (*model.Experience, error) {
	return s.Experiences.GetByID(ctx, id)
}

func (s *MySQLStore) GetBooking(ctx context.Context, id uint64) (*model.Booking, error) {
	return s.Bookings.GetByID(ctx, id)
}

func (s *MySQLStore) GetBookingByReference(ctx context.Context, reference string) (*model.Booking, error) {
	return s.Bookings.GetByReference(ctx, reference)
}

func (s *MySQLStore) ListBookingsByUser(ctx context.Context, userID uint64) ([]model.Booking, error) {
	return s.Bookings.ListByUser(ctx, userID)
}

// InTx begins a transaction, hands fn a ReservationTx bound to it and commits
// when fn returns nil.
func (s *MySQLStore) InTx(ctx context.Context, fn func(tx ReservationTx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if err := fn(&mysqlTx{tx: tx, store: s}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	committed = true
	return nil
}

type mysqlTx struct {
	tx    *sql.Tx
	store *MySQLStore
}

func (t *mysqlTx) IncrementBooked(ctx context.Context, slotID uint64, delta int) (*model.Slot, error) {
	return t.store.Slots.IncrementBookedTx(ctx, t.tx, slotID, delta)
}

func (t *mysqlTx) ReleaseBooked(ctx context.Context, slotID uint64, count int) (*model.Slot, error) {
	return t.store.Slots.ReleaseBookedTx(ctx, t.tx, slotID, count)
}

func (t *mysqlTx) CreateBooking(ctx context.Context, b *model.Booking) error {
	return t.store.Bookings.CreateTx(ctx, t.tx, b)
}

func (t *mysqlTx) GetBookingForUpdate(ctx context.Context, id uint64) (*model.Booking, error) {
	return t.store.Bookings.GetForUpdateTx(ctx, t.tx, id)
}

func (t *mysqlTx) UpdateBookingStatus(ctx context.Context, id uint64, status string) error {
	return t.store.Bookings.UpdateStatusTx(ctx, t.tx, id, status)
}
