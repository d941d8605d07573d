package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/iliyamo/immersive-venue-booking/internal/logger"
	"github.com/iliyamo/immersive-venue-booking/internal/model"
	"github.com/iliyamo/immersive-venue-booking/internal/queue"
	"github.com/iliyamo/immersive-venue-booking/internal/repository"
	"github.com/iliyamo/immersive-venue-booking/internal/repository/memory"
	"github.com/iliyamo/immersive-venue-booking/internal/validate"
)

// fakePublisher records events; err, when set, is returned from Publish.
type fakePublisher struct {
	mu     sync.Mutex
	events []queue.BookingEvent
	err    error
}

func (f *fakePublisher) Publish(_ context.Context, ev queue.BookingEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, ev)
	return f.err
}

func newEngine(t *testing.T, capacity, booked int) (*Reservations, *memory.Store, uint64, *fakePublisher) {
	t.Helper()
	store := memory.New()
	store.AddExperience(model.Experience{ID: 6, Name: "Deep Sea Dome", Slug: "deep-sea-dome", Price: 3200})
	id := store.PutSlot(model.Slot{VenueID: 4, ExperienceID: 6, Date: "2026-11-02", Time: "14:00", Capacity: capacity, BookedCount: booked})
	pub := &fakePublisher{}
	return NewReservations(store, pub, logger.Nop()), store, id, pub
}

func request(ticketType string, n int) ReserveRequest {
	return ReserveRequest{
		VenueID:         4,
		ExperienceID:    6,
		Date:            "2026-11-02",
		Time:            "14:00",
		NumberOfTickets: n,
		TicketType:      ticketType,
		CustomerName:    "Ana Ruiz",
		CustomerEmail:   "ana@example.com",
	}
}

func TestReservePricesAndBooks(t *testing.T) {
	tests := []struct {
		name       string
		ticketType string
		n          int
		wantSeats  int
		wantTotal  model.Money
	}{
		{"member two tickets", "member", 2, 2, 6106},
		{"standard one ticket", "standard", 1, 1, 3392},
		{"group below threshold pays full price", "group", 4, 4, 13568},
		{"group at threshold is discounted", "group", 5, 5, 15264},
		{"family pack is four seats flat", "family", 1, 4, 11872},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc, store, slotID, pub := newEngine(t, 20, 0)
			b, err := svc.Reserve(context.Background(), request(tc.ticketType, tc.n))
			if err != nil {
				t.Fatalf("Reserve: %v", err)
			}
			if b.TotalPrice != tc.wantTotal {
				t.Errorf("total = %d, want %d", b.TotalPrice, tc.wantTotal)
			}
			if b.Seats != tc.wantSeats {
				t.Errorf("seats = %d, want %d", b.Seats, tc.wantSeats)
			}
			if b.ID == 0 || b.CreatedAt.IsZero() || b.Reference == "" {
				t.Errorf("booking missing server fields: %+v", b)
			}
			if b.Status != model.StatusPending || b.SlotID != slotID {
				t.Errorf("status=%q slot=%d", b.Status, b.SlotID)
			}
			sl, _ := store.Slot(slotID)
			if sl.BookedCount != tc.wantSeats {
				t.Errorf("booked = %d, want %d", sl.BookedCount, tc.wantSeats)
			}
			if len(pub.events) != 1 || pub.events[0].Type != queue.EventBookingCreated {
				t.Errorf("events = %+v", pub.events)
			}
		})
	}
}

func TestReserveRejectsInvalidInput(t *testing.T) {
	tests := []struct {
		name  string
		mod   func(r *ReserveRequest)
		field string
	}{
		{"zero tickets", func(r *ReserveRequest) { r.NumberOfTickets = 0 }, "numberOfTickets"},
		{"negative tickets", func(r *ReserveRequest) { r.NumberOfTickets = -2 }, "numberOfTickets"},
		{"more than twenty", func(r *ReserveRequest) { r.NumberOfTickets = 21 }, "numberOfTickets"},
		{"unknown ticket type", func(r *ReserveRequest) { r.TicketType = "vip" }, "ticketType"},
		{"missing name", func(r *ReserveRequest) { r.CustomerName = "  " }, "customerName"},
		{"bad email", func(r *ReserveRequest) { r.CustomerEmail = "nope" }, "customerEmail"},
		{"bad date", func(r *ReserveRequest) { r.Date = "02/11/2026" }, "date"},
		{"bad time", func(r *ReserveRequest) { r.Time = "2pm" }, "time"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc, store, slotID, _ := newEngine(t, 20, 0)
			req := request("standard", 2)
			tc.mod(&req)
			_, err := svc.Reserve(context.Background(), req)
			var ve validate.ValidationErrors
			if !errors.As(err, &ve) {
				t.Fatalf("err = %v, want ValidationErrors", err)
			}
			found := false
			for _, e := range ve {
				if e.Field == tc.field {
					found = true
				}
			}
			if !found {
				t.Errorf("errors %v do not mention %s", ve, tc.field)
			}
			if sl, _ := store.Slot(slotID); sl.BookedCount != 0 {
				t.Errorf("booked = %d after rejected request", sl.BookedCount)
			}
		})
	}
}

func TestReserveAcceptsSecondsInTime(t *testing.T) {
	svc, _, _, _ := newEngine(t, 20, 0)
	req := request("standard", 1)
	req.Time = "14:00:00"
	b, err := svc.Reserve(context.Background(), req)
	if err != nil {
		t.Fatalf("Reserve: %v", err)
	}
	if b.Time != "14:00" {
		t.Errorf("time = %q", b.Time)
	}
}

func TestReserveUnknownTimeIsSlotNotFound(t *testing.T) {
	svc, store, _, _ := newEngine(t, 20, 0)
	req := request("standard", 1)
	req.Time = "15:00"
	_, err := svc.Reserve(context.Background(), req)
	if !errors.Is(err, ErrSlotNotFound) {
		t.Fatalf("err = %v, want ErrSlotNotFound", err)
	}
	if store.BookingCount() != 0 {
		t.Error("booking created for missing slot")
	}
}

func TestReserveFullSlotIsSoldOut(t *testing.T) {
	svc, store, slotID, pub := newEngine(t, 8, 8)
	_, err := svc.Reserve(context.Background(), request("standard", 1))
	if !errors.Is(err, ErrCapacityExceeded) {
		t.Fatalf("err = %v, want ErrCapacityExceeded", err)
	}
	if store.BookingCount() != 0 {
		t.Error("booking created on a full slot")
	}
	if sl, _ := store.Slot(slotID); sl.BookedCount != 8 {
		t.Errorf("booked = %d, want 8", sl.BookedCount)
	}
	if len(pub.events) != 0 {
		t.Errorf("published %d events for a failed booking", len(pub.events))
	}
}

func TestReserveFamilyNeedsFourSeats(t *testing.T) {
	svc, _, _, _ := newEngine(t, 10, 7)
	_, err := svc.Reserve(context.Background(), request("family", 1))
	if !errors.Is(err, ErrCapacityExceeded) {
		t.Fatalf("err = %v, want ErrCapacityExceeded", err)
	}
}

func TestReserveRollsBackWhenBookingInsertFails(t *testing.T) {
	svc, store, slotID, _ := newEngine(t, 10, 2)
	store.FailCreateBooking = errors.New("disk full")

	_, err := svc.Reserve(context.Background(), request("standard", 3))
	if err == nil {
		t.Fatal("expected error")
	}
	if sl, _ := store.Slot(slotID); sl.BookedCount != 2 {
		t.Errorf("booked = %d, want 2 after rollback", sl.BookedCount)
	}
	if store.BookingCount() != 0 {
		t.Error("booking left behind")
	}
}

func TestReservePublishFailureDoesNotFailBooking(t *testing.T) {
	svc, store, _, pub := newEngine(t, 10, 0)
	pub.err = errors.New("broker down")
	if _, err := svc.Reserve(context.Background(), request("standard", 1)); err != nil {
		t.Fatalf("Reserve: %v", err)
	}
	if store.BookingCount() != 1 {
		t.Errorf("bookings = %d, want 1", store.BookingCount())
	}
}

func TestReserveConcurrentNeverOversells(t *testing.T) {
	for i := 0; i < 50; i++ {
		svc, store, slotID, _ := newEngine(t, 10, 8)

		var wg sync.WaitGroup
		errs := make([]error, 2)
		for j, n := range []int{2, 3} {
			wg.Add(1)
			go func(j, n int) {
				defer wg.Done()
				_, errs[j] = svc.Reserve(context.Background(), request("standard", n))
			}(j, n)
		}
		wg.Wait()

		// 3 seats never fit; 2 seats always do.
		if errs[0] != nil {
			t.Fatalf("2-seat reservation failed: %v", errs[0])
		}
		if !errors.Is(errs[1], ErrCapacityExceeded) {
			t.Fatalf("3-seat reservation err = %v, want ErrCapacityExceeded", errs[1])
		}
		if sl, _ := store.Slot(slotID); sl.BookedCount != 10 {
			t.Fatalf("booked = %d, want 10", sl.BookedCount)
		}
	}
}

func TestReserveConcurrentRaceForLastSeats(t *testing.T) {
	svc, store, slotID, _ := newEngine(t, 10, 8)

	const workers = 8
	var wg sync.WaitGroup
	var mu sync.Mutex
	ok := 0
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Reserve(context.Background(), request("standard", 2))
			if err == nil {
				mu.Lock()
				ok++
				mu.Unlock()
			} else if !errors.Is(err, ErrCapacityExceeded) {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if ok != 1 {
		t.Errorf("successful reservations = %d, want 1", ok)
	}
	if sl, _ := store.Slot(slotID); sl.BookedCount != 10 {
		t.Errorf("booked = %d, want 10", sl.BookedCount)
	}
	if store.BookingCount() != 1 {
		t.Errorf("bookings = %d, want 1", store.BookingCount())
	}
}

func TestReserveUnknownExperience(t *testing.T) {
	store := memory.New()
	store.PutSlot(model.Slot{VenueID: 4, ExperienceID: 6, Date: "2026-11-02", Time: "14:00", Capacity: 5})
	svc := NewReservations(store, nil, nil)
	_, err := svc.Reserve(context.Background(), request("standard", 1))
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestListSlots(t *testing.T) {
	svc, store, _, _ := newEngine(t, 10, 0)
	store.PutSlot(model.Slot{VenueID: 4, ExperienceID: 6, Date: "2026-11-02", Time: "10:00", Capacity: 10})

	slots, err := svc.ListSlots(context.Background(), 4, 6, "2026-11-02")
	if err != nil {
		t.Fatal(err)
	}
	if len(slots) != 2 || slots[0].Time != "10:00" || slots[1].Time != "14:00" {
		t.Errorf("slots = %+v, want ordered by time", slots)
	}

	empty, err := svc.ListSlots(context.Background(), 4, 6, "2026-12-25")
	if err != nil || len(empty) != 0 {
		t.Errorf("empty day: %v %v", empty, err)
	}

	if _, err := svc.ListSlots(context.Background(), 4, 6, "tomorrow"); !validate.IsValidation(err) {
		t.Errorf("bad date err = %v", err)
	}
	if _, err := svc.ListSlots(context.Background(), 0, 6, "2026-11-02"); !validate.IsValidation(err) {
		t.Errorf("zero venue err = %v", err)
	}
}

func TestCreateSlotIsIdempotent(t *testing.T) {
	svc := NewReservations(memory.New(), nil, nil)
	req := CreateSlotRequest{VenueID: 1, ExperienceID: 2, Date: "2026-11-02", Time: "10:00", Capacity: 12}

	first, created, err := svc.CreateSlot(context.Background(), req)
	if err != nil || !created {
		t.Fatalf("first create: created=%v err=%v", created, err)
	}
	req.Capacity = 99
	second, created, err := svc.CreateSlot(context.Background(), req)
	if err != nil || created {
		t.Fatalf("second create: created=%v err=%v", created, err)
	}
	if second.ID != first.ID || second.Capacity != 12 {
		t.Errorf("second = %+v, want existing row %+v", second, first)
	}

	req.Capacity = 0
	if _, _, err := svc.CreateSlot(context.Background(), req); !validate.IsValidation(err) {
		t.Errorf("zero capacity err = %v", err)
	}
}

func TestUpdateStatus(t *testing.T) {
	svc, store, slotID, pub := newEngine(t, 10, 0)
	ctx := context.Background()
	b, err := svc.Reserve(ctx, request("family", 1))
	if err != nil {
		t.Fatal(err)
	}

	if _, err := svc.UpdateStatus(ctx, b.ID, model.StatusConfirmed); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if _, err := svc.UpdateStatus(ctx, b.ID, model.StatusPending); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("confirmed -> pending err = %v", err)
	}

	got, err := svc.UpdateStatus(ctx, b.ID, model.StatusCancelled)
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if got.Status != model.StatusCancelled {
		t.Errorf("status = %q", got.Status)
	}
	if sl, _ := store.Slot(slotID); sl.BookedCount != 0 {
		t.Errorf("booked = %d after cancel, want 0", sl.BookedCount)
	}
	if _, err := svc.UpdateStatus(ctx, b.ID, model.StatusConfirmed); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("cancelled -> confirmed err = %v", err)
	}
	if _, err := svc.UpdateStatus(ctx, 999, model.StatusConfirmed); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing booking err = %v", err)
	}
	if _, err := svc.UpdateStatus(ctx, b.ID, "refunded"); !validate.IsValidation(err) {
		t.Errorf("unknown status err = %v", err)
	}
	if len(pub.events) != 3 || pub.events[2].Type != queue.EventBookingStatusChanged {
		t.Errorf("events = %+v", pub.events)
	}
}

func TestRelease(t *testing.T) {
	svc, _, slotID, _ := newEngine(t, 10, 5)
	sl, err := svc.Release(context.Background(), slotID, 3)
	if err != nil || sl.BookedCount != 2 {
		t.Fatalf("release: %+v %v", sl, err)
	}
	if _, err := svc.Release(context.Background(), slotID, 3); !errors.Is(err, repository.ErrConflict) {
		t.Errorf("over-release err = %v", err)
	}
	if _, err := svc.Release(context.Background(), 404, 1); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing slot err = %v", err)
	}
}

func TestQuote(t *testing.T) {
	svc, _, _, _ := newEngine(t, 10, 0)
	q, err := svc.Quote(context.Background(), QuoteRequest{ExperienceID: 6, NumberOfTickets: 2, TicketType: "member"})
	if err != nil {
		t.Fatal(err)
	}
	if q.Subtotal != 5760 || q.BookingFee != 346 || q.Total != 6106 {
		t.Errorf("quote = %+v", q)
	}
	if _, err := svc.Quote(context.Background(), QuoteRequest{ExperienceID: 77, NumberOfTickets: 1, TicketType: "standard"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown experience err = %v", err)
	}
}

func TestListUserBookingsNewestFirst(t *testing.T) {
	svc, _, _, _ := newEngine(t, 10, 0)
	uid := uint64(3)
	for i := 0; i < 2; i++ {
		req := request("standard", 1)
		req.UserID = &uid
		if _, err := svc.Reserve(context.Background(), req); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := svc.Reserve(context.Background(), request("standard", 1)); err != nil {
		t.Fatal(err)
	}
	got, err := svc.ListUserBookings(context.Background(), uid)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].ID < got[1].ID {
		t.Errorf("bookings = %+v", got)
	}
}
