// Package service holds the reservation engine: the rules that turn a
// booking request into a priced booking without ever overselling a slot.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/immersive-venue-booking/internal/logger"
	"github.com/iliyamo/immersive-venue-booking/internal/metrics"
	"github.com/iliyamo/immersive-venue-booking/internal/model"
	"github.com/iliyamo/immersive-venue-booking/internal/pricing"
	"github.com/iliyamo/immersive-venue-booking/internal/queue"
	"github.com/iliyamo/immersive-venue-booking/internal/repository"
	"github.com/iliyamo/immersive-venue-booking/internal/validate"
)

// EventPublisher delivers booking events after commit.  *queue.Publisher
// satisfies it.
type EventPublisher interface {
	Publish(ctx context.Context, ev queue.BookingEvent) error
}

const publishTimeout = 2 * time.Second

// Reservations is the reservation engine.  All seat accounting goes through
// the store's conditional increment; the checks made here beforehand only
// produce friendlier errors.
type Reservations struct {
	store    repository.ReservationStore
	events   EventPublisher // nil disables publishing
	log      *logger.Logger
	validate *validate.Validator
	newRef   func() string
	now      func() time.Time
}

func NewReservations(store repository.ReservationStore, events EventPublisher, log *logger.Logger) *Reservations {
	if log == nil {
		log = logger.Nop()
	}
	return &Reservations{
		store:    store,
		events:   events,
		log:      log,
		validate: validate.New(),
		newRef:   uuid.NewString,
		now:      time.Now,
	}
}

// ReserveRequest is the body of POST /api/bookings.
type ReserveRequest struct {
	VenueID         uint64  `json:"venueId" validate:"required"`
	ExperienceID    uint64  `json:"experienceId" validate:"required"`
	Date            string  `json:"date" validate:"required,ymd"`
	Time            string  `json:"time" validate:"required,hhmm"`
	NumberOfTickets int     `json:"numberOfTickets" validate:"min=1,max=20"`
	TicketType      string  `json:"ticketType" validate:"required,ticket_type"`
	CustomerName    string  `json:"customerName" validate:"required,max=255"`
	CustomerEmail   string  `json:"customerEmail" validate:"required,email,max=255"`
	CustomerPhone   *string `json:"customerPhone,omitempty" validate:"omitempty,max=50"`

	// UserID is taken from the access token, never from the body.
	UserID *uint64 `json:"-"`
}

// QuoteRequest is the body of POST /api/bookings/quote.
type QuoteRequest struct {
	ExperienceID    uint64 `json:"experienceId" validate:"required"`
	NumberOfTickets int    `json:"numberOfTickets" validate:"min=1,max=20"`
	TicketType      string `json:"ticketType" validate:"required,ticket_type"`
}

// CreateSlotRequest is the body of POST /api/admin/slots.
type CreateSlotRequest struct {
	VenueID      uint64 `json:"venueId" validate:"required"`
	ExperienceID uint64 `json:"experienceId" validate:"required"`
	Date         string `json:"date" validate:"required,ymd"`
	Time         string `json:"time" validate:"required,hhmm"`
	Capacity     int    `json:"capacity" validate:"min=1"`
}

// Reserve books seats in the slot matching req.  Errors:
//
//	ValidationErrors     – malformed or out-of-range input
//	ErrSlotNotFound      – no slot at that venue/experience/date/time
//	ErrNotFound          – the experience is missing from the catalog
//	ErrCapacityExceeded  – not enough seats left, before or during commit
func (s *Reservations) Reserve(ctx context.Context, req ReserveRequest) (*model.Booking, error) {
	req.Time = normalizeTime(req.Time)
	req.CustomerName = strings.TrimSpace(req.CustomerName)
	req.CustomerEmail = strings.TrimSpace(req.CustomerEmail)
	if err := s.validate.Struct(req); err != nil {
		metrics.IncReservationRejected(metrics.ReasonValidation)
		return nil, err
	}

	slot, err := s.findSlot(ctx, req.VenueID, req.ExperienceID, req.Date, req.Time)
	if err != nil {
		s.reject(err)
		return nil, err
	}

	ticketType := model.TicketType(req.TicketType)
	seats := pricing.Seats(ticketType, req.NumberOfTickets)
	if !slot.Fits(seats) {
		metrics.IncReservationRejected(metrics.ReasonSoldOut)
		return nil, soldOut(slot)
	}

	exp, err := s.store.GetExperience(ctx, req.ExperienceID)
	if err != nil {
		s.reject(err)
		return nil, fmt.Errorf("experience %d: %w", req.ExperienceID, err)
	}
	quote, err := pricing.Quote(exp.Price, ticketType, req.NumberOfTickets)
	if err != nil {
		metrics.IncReservationRejected(metrics.ReasonValidation)
		return nil, validate.Field("numberOfTickets", err.Error())
	}

	b := &model.Booking{
		Reference:       s.newRef(),
		UserID:          req.UserID,
		SlotID:          slot.ID,
		VenueID:         slot.VenueID,
		ExperienceID:    slot.ExperienceID,
		Date:            slot.Date,
		Time:            slot.Time,
		NumberOfTickets: req.NumberOfTickets,
		TicketType:      ticketType,
		Seats:           seats,
		TotalPrice:      quote.Total,
		CustomerName:    req.CustomerName,
		CustomerEmail:   req.CustomerEmail,
		CustomerPhone:   req.CustomerPhone,
		Status:          model.StatusPending,
	}

	err = s.store.InTx(ctx, func(tx repository.ReservationTx) error {
		// The conditional increment is the real capacity check; the one above
		// can be stale by the time we get here.
		if _, err := tx.IncrementBooked(ctx, slot.ID, seats); err != nil {
			return err
		}
		return tx.CreateBooking(ctx, b)
	})
	if err != nil {
		s.reject(err)
		if errors.Is(err, ErrCapacityExceeded) {
			return nil, fmt.Errorf("%w: slot %d is sold out for %d seats", ErrCapacityExceeded, slot.ID, seats)
		}
		return nil, fmt.Errorf("reserve slot %d: %w", slot.ID, err)
	}

	metrics.IncBookingCreated(string(b.TicketType), b.Seats)
	s.log.Info("booking created",
		"booking_id", b.ID, "reference", b.Reference, "slot_id", b.SlotID,
		"ticket_type", b.TicketType, "seats", b.Seats, "total_cents", int64(b.TotalPrice))
	s.publish(ctx, queue.EventBookingCreated, b)
	return b, nil
}

// Quote prices a request without touching any slot.
func (s *Reservations) Quote(ctx context.Context, req QuoteRequest) (pricing.Breakdown, error) {
	if err := s.validate.Struct(req); err != nil {
		return pricing.Breakdown{}, err
	}
	exp, err := s.store.GetExperience(ctx, req.ExperienceID)
	if err != nil {
		return pricing.Breakdown{}, fmt.Errorf("experience %d: %w", req.ExperienceID, err)
	}
	b, err := pricing.Quote(exp.Price, model.TicketType(req.TicketType), req.NumberOfTickets)
	if err != nil {
		return pricing.Breakdown{}, validate.Field("numberOfTickets", err.Error())
	}
	return b, nil
}

// ListSlots returns the day's slots ordered by time.  Zero ids and a
// malformed date are validation errors; an empty result is not an error.
func (s *Reservations) ListSlots(ctx context.Context, venueID, experienceID uint64, date string) ([]model.Slot, error) {
	var errs validate.ValidationErrors
	if venueID == 0 {
		errs = append(errs, validate.ValidationError{Field: "venueId", Message: "is required"})
	}
	if experienceID == 0 {
		errs = append(errs, validate.ValidationError{Field: "experienceId", Message: "is required"})
	}
	if _, err := time.Parse("2006-01-02", date); err != nil {
		errs = append(errs, validate.ValidationError{Field: "date", Message: "must be a date in YYYY-MM-DD format"})
	}
	if len(errs) > 0 {
		return nil, errs
	}
	return s.store.ListSlots(ctx, venueID, experienceID, date)
}

// CreateSlot adds a slot or returns the existing one with the same natural
// key.  created is false for the latter.
func (s *Reservations) CreateSlot(ctx context.Context, req CreateSlotRequest) (*model.Slot, bool, error) {
	req.Time = normalizeTime(req.Time)
	if err := s.validate.Struct(req); err != nil {
		return nil, false, err
	}
	slot := &model.Slot{
		VenueID:      req.VenueID,
		ExperienceID: req.ExperienceID,
		Date:         req.Date,
		Time:         req.Time,
		Capacity:     req.Capacity,
	}
	created, err := s.store.CreateSlot(ctx, slot)
	if errors.Is(err, repository.ErrInvalidCapacity) {
		return nil, false, validate.Field("capacity", "must be at least 1")
	}
	if err != nil {
		return nil, false, err
	}
	return slot, created, nil
}

// Release gives count seats back to a slot.  Releasing more than is booked
// is repository.ErrConflict and changes nothing.
func (s *Reservations) Release(ctx context.Context, slotID uint64, count int) (*model.Slot, error) {
	if count < 1 {
		return nil, validate.Field("count", "must be at least 1")
	}
	var out *model.Slot
	err := s.store.InTx(ctx, func(tx repository.ReservationTx) error {
		sl, err := tx.ReleaseBooked(ctx, slotID, count)
		out = sl
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// GetBooking returns one booking or ErrNotFound.
func (s *Reservations) GetBooking(ctx context.Context, id uint64) (*model.Booking, error) {
	return s.store.GetBooking(ctx, id)
}

// GetBookingByReference returns the booking with the given public
// reference.  A reference that is not a UUID is a validation error.
func (s *Reservations) GetBookingByReference(ctx context.Context, reference string) (*model.Booking, error) {
	if _, err := uuid.Parse(reference); err != nil {
		return nil, validate.Field("reference", "must be a booking reference")
	}
	return s.store.GetBookingByReference(ctx, reference)
}

// ListUserBookings returns the user's bookings, newest first.
func (s *Reservations) ListUserBookings(ctx context.Context, userID uint64) ([]model.Booking, error) {
	return s.store.ListBookingsByUser(ctx, userID)
}

// transitions lists the allowed status changes.
var transitions = map[string][]string{
	model.StatusPending:   {model.StatusConfirmed, model.StatusCancelled},
	model.StatusConfirmed: {model.StatusCancelled},
}

func canTransition(from, to string) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// UpdateStatus moves a booking along its lifecycle.  Cancelling returns the
// booking's seats to the slot in the same transaction.
func (s *Reservations) UpdateStatus(ctx context.Context, id uint64, status string) (*model.Booking, error) {
	switch status {
	case model.StatusPending, model.StatusConfirmed, model.StatusCancelled:
	default:
		return nil, validate.Field("status", "must be one of pending, confirmed, cancelled")
	}

	var updated *model.Booking
	err := s.store.InTx(ctx, func(tx repository.ReservationTx) error {
		b, err := tx.GetBookingForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if !canTransition(b.Status, status) {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, b.Status, status)
		}
		if status == model.StatusCancelled {
			if _, err := tx.ReleaseBooked(ctx, b.SlotID, b.Seats); err != nil {
				return fmt.Errorf("release seats: %w", err)
			}
		}
		if err := tx.UpdateBookingStatus(ctx, id, status); err != nil {
			return err
		}
		b.Status = status
		updated = b
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.IncBookingStatus(status)
	s.log.Info("booking status changed", "booking_id", id, "status", status)
	s.publish(ctx, queue.EventBookingStatusChanged, updated)
	return updated, nil
}

func (s *Reservations) findSlot(ctx context.Context, venueID, experienceID uint64, date, hhmm string) (*model.Slot, error) {
	slots, err := s.store.ListSlots(ctx, venueID, experienceID, date)
	if err != nil {
		return nil, err
	}
	for i := range slots {
		if slots[i].Time == hhmm {
			return &slots[i], nil
		}
	}
	return nil, ErrSlotNotFound
}

// publish sends an event after commit.  The request context may already be
// cancelled once the response is written, so the publish gets its own
// deadline.  Failures are logged and counted only.
func (s *Reservations) publish(ctx context.Context, eventType string, b *model.Booking) {
	if s.events == nil || b == nil {
		return
	}
	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if err := s.events.Publish(pctx, queue.NewBookingEvent(eventType, b, s.now())); err != nil {
		metrics.IncEventPublishFailed()
		s.log.Warn("publish booking event failed", "type", eventType, "booking_id", b.ID, "error", err)
	}
}

func (s *Reservations) reject(err error) {
	switch {
	case validate.IsValidation(err):
		metrics.IncReservationRejected(metrics.ReasonValidation)
	case errors.Is(err, ErrSlotNotFound), errors.Is(err, ErrNotFound):
		metrics.IncReservationRejected(metrics.ReasonSlotNotFound)
	case errors.Is(err, ErrCapacityExceeded):
		metrics.IncReservationRejected(metrics.ReasonSoldOut)
	default:
		metrics.IncReservationRejected(metrics.ReasonError)
	}
}

func soldOut(slot *model.Slot) error {
	return fmt.Errorf("%w: %d of %d seats left", ErrCapacityExceeded, slot.Remaining(), slot.Capacity)
}

// normalizeTime accepts HH:MM:SS as sent by some clients and trims it to HH:MM.
func normalizeTime(t string) string {
	t = strings.TrimSpace(t)
	if len(t) == 8 && t[2] == ':' && t[5] == ':' {
		return t[:5]
	}
	return t
}
