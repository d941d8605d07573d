// Package queue carries booking events over RabbitMQ: a publisher used by
// the reservation service and a consumer that appends them to a ledger file.
package queue

import (
	"time"

	"github.com/iliyamo/immersive-venue-booking/internal/model"
)

// QueueName is the durable queue both sides declare.
const QueueName = "booking.events"

// Event types.
const (
	EventBookingCreated       = "booking.created"
	EventBookingStatusChanged = "booking.status_changed"
)

// BookingEvent is published after a booking is committed or changes status.
// It carries enough for downstream consumers to log or run analytics without
// querying the primary database.
type BookingEvent struct {
	Type         string    `json:"type"`
	BookingID    uint64    `json:"booking_id"`
	Reference    string    `json:"reference"`
	UserID       uint64    `json:"user_id,omitempty"`
	SlotID       uint64    `json:"slot_id"`
	VenueID      uint64    `json:"venue_id"`
	ExperienceID uint64    `json:"experience_id"`
	Date         string    `json:"date"`
	Time         string    `json:"time"`
	TicketType   string    `json:"ticket_type"`
	Seats        int       `json:"seats"`
	TotalCents   int64     `json:"total_cents"`
	Status       string    `json:"status"`
	OccurredAt   time.Time `json:"occurred_at"`
}

// NewBookingEvent snapshots b as an event of the given type.
func NewBookingEvent(eventType string, b *model.Booking, at time.Time) BookingEvent {
	ev := BookingEvent{
		Type:         eventType,
		BookingID:    b.ID,
		Reference:    b.Reference,
		SlotID:       b.SlotID,
		VenueID:      b.VenueID,
		ExperienceID: b.ExperienceID,
		Date:         b.Date,
		Time:         b.Time,
		TicketType:   string(b.TicketType),
		Seats:        b.Seats,
		TotalCents:   int64(b.TotalPrice),
		Status:       b.Status,
		OccurredAt:   at.UTC(),
	}
	if b.UserID != nil {
		ev.UserID = *b.UserID
	}
	return ev
}
