// Package memory is an in-memory ReservationStore.  It enforces the same
// capacity guard as the MySQL conditional UPDATE and is what the service and
// handler tests run against.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/iliyamo/immersive-venue-booking/internal/model"
	"github.com/iliyamo/immersive-venue-booking/internal/repository"
)

// Store keeps every table behind one mutex.  InTx holds the mutex for the
// whole callback and works on copies, so a failed callback leaves no trace.
type Store struct {
	mu          sync.Mutex
	slots       map[uint64]model.Slot
	bookings    map[uint64]model.Booking
	experiences map[uint64]model.Experience
	nextSlot    uint64
	nextBooking uint64
	now         func() time.Time

	// FailCreateBooking, when set, is returned by CreateBooking.  Tests use it
	// to prove the slot increment is rolled back.
	FailCreateBooking error
}

var _ repository.ReservationStore = (*Store)(nil)

func New() *Store {
	return &Store{
		slots:       map[uint64]model.Slot{},
		bookings:    map[uint64]model.Booking{},
		experiences: map[uint64]model.Experience{},
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// AddExperience registers an experience so bookings can be priced.
func (s *Store) AddExperience(e model.Experience) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.experiences[e.ID] = e
}

// PutSlot stores a slot as-is (including BookedCount) and returns its id.
func (s *Store) PutSlot(sl model.Slot) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sl.ID == 0 {
		s.nextSlot++
		sl.ID = s.nextSlot
	} else if sl.ID > s.nextSlot {
		s.nextSlot = sl.ID
	}
	s.slots[sl.ID] = sl
	return sl.ID
}

// Slot returns a snapshot of one slot.
func (s *Store) Slot(id uint64) (model.Slot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sl, ok := s.slots[id]
	return sl, ok
}

// BookingCount returns how many bookings exist.
func (s *Store) BookingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.bookings)
}

func (s *Store) ListSlots(_ context.Context, venueID, experienceID uint64, date string) ([]model.Slot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Slot, 0)
	for _, sl := range s.slots {
		if sl.VenueID == venueID && sl.ExperienceID == experienceID && sl.Date == date {
			out = append(out, sl)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Time != out[j].Time {
			return out[i].Time < out[j].Time
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *Store) CreateSlot(_ context.Context, sl *model.Slot) (bool, error) {
	if sl.Capacity <= 0 {
		return false, repository.ErrInvalidCapacity
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.slots {
		if existing.VenueID == sl.VenueID && existing.ExperienceID == sl.ExperienceID &&
			existing.Date == sl.Date && existing.Time == sl.Time {
			*sl = existing
			return false, nil
		}
	}
	s.nextSlot++
	sl.ID = s.nextSlot
	sl.BookedCount = 0
	s.slots[sl.ID] = *sl
	return true, nil
}

func (s *Store) IncrementBooked(_ context.Context, slotID uint64, delta int) (*model.Slot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return increment(s.slots, slotID, delta)
}

func (s *Store) GetExperience(_ context.Context, id uint64) (*model.Experience, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.experiences[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &e, nil
}

func (s *Store) GetBooking(_ context.Context, id uint64) (*model.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &b, nil
}

func (s *Store) GetBookingByReference(_ context.Context, reference string) (*model.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range s.bookings {
		if b.Reference == reference {
			return &b, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *Store) ListBookingsByUser(_ context.Context, userID uint64) ([]model.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Booking, 0)
	for _, b := range s.bookings {
		if b.UserID != nil && *b.UserID == userID {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (s *Store) InTx(_ context.Context, fn func(tx repository.ReservationTx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &memTx{
		store:       s,
		slots:       make(map[uint64]model.Slot, len(s.slots)),
		bookings:    make(map[uint64]model.Booking, len(s.bookings)),
		nextBooking: s.nextBooking,
	}
	for k, v := range s.slots {
		tx.slots[k] = v
	}
	for k, v := range s.bookings {
		tx.bookings[k] = v
	}
	if err := fn(tx); err != nil {
		return err
	}
	s.slots, s.bookings, s.nextBooking = tx.slots, tx.bookings, tx.nextBooking
	return nil
}

type memTx struct {
	store       *Store
	slots       map[uint64]model.Slot
	bookings    map[uint64]model.Booking
	nextBooking uint64
}

func (t *memTx) IncrementBooked(_ context.Context, slotID uint64, delta int) (*model.Slot, error) {
	return increment(t.slots, slotID, delta)
}

func (t *memTx) ReleaseBooked(_ context.Context, slotID uint64, count int) (*model.Slot, error) {
	sl, ok := t.slots[slotID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if count <= 0 || sl.BookedCount < count {
		return nil, repository.ErrConflict
	}
	sl.BookedCount -= count
	t.slots[slotID] = sl
	return &sl, nil
}

func (t *memTx) CreateBooking(_ context.Context, b *model.Booking) error {
	if t.store.FailCreateBooking != nil {
		return t.store.FailCreateBooking
	}
	if _, ok := t.slots[b.SlotID]; !ok {
		return repository.ErrNotFound
	}
	t.nextBooking++
	b.ID = t.nextBooking
	if b.Status == "" {
		b.Status = model.StatusPending
	}
	b.CreatedAt = t.store.now()
	t.bookings[b.ID] = *b
	return nil
}

func (t *memTx) GetBookingForUpdate(_ context.Context, id uint64) (*model.Booking, error) {
	b, ok := t.bookings[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &b, nil
}

func (t *memTx) UpdateBookingStatus(_ context.Context, id uint64, status string) error {
	b, ok := t.bookings[id]
	if !ok {
		return repository.ErrNotFound
	}
	b.Status = status
	t.bookings[id] = b
	return nil
}

func increment(slots map[uint64]model.Slot, id uint64, delta int) (*model.Slot, error) {
	sl, ok := slots[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if delta <= 0 || sl.BookedCount+delta > sl.Capacity {
		return nil, repository.ErrCapacityExceeded
	}
	sl.BookedCount += delta
	slots[id] = sl
	return &sl, nil
}
