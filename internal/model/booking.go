package model

import "time"

// TicketType selects the pricing rule applied to a booking.
type TicketType string

const (
	TicketStandard TicketType = "standard"
	TicketMember   TicketType = "member"
	TicketGroup    TicketType = "group"
	TicketFamily   TicketType = "family"
)

// Valid reports whether t is one of the four known ticket types.
func (t TicketType) Valid() bool {
	switch t {
	case TicketStandard, TicketMember, TicketGroup, TicketFamily:
		return true
	}
	return false
}

// Booking status values.  A booking starts pending and can be confirmed or
// cancelled; cancelled is terminal.
const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
)

// Booking is a confirmed purchase of seats in one slot, stored in the
// `bookings` table.  Rows are never deleted; only Status changes after
// creation.
//
// Fields:
//
//	ID              – primary key identifier.
//	Reference       – public booking code (uuid) shown to the customer.
//	UserID          – owning user when booked while logged in.
//	SlotID          – the availability slot the seats were taken from.
//	VenueID..Time   – copy of the slot's natural key at booking time.
//	NumberOfTickets – tickets requested by the customer (1..20).
//	TicketType      – pricing rule used.
//	Seats           – seats consumed from the slot (4 for family packs).
//	TotalPrice      – subtotal plus booking fee, in cents.
//	Customer*       – contact details.
//	Status          – pending | confirmed | cancelled.
//	CreatedAt       – server-assigned creation timestamp.
type Booking struct {
	ID              uint64     `json:"id"`                      // bookings.id
	Reference       string     `json:"reference"`               // bookings.reference
	UserID          *uint64    `json:"userId,omitempty"`        // bookings.user_id (nullable)
	SlotID          uint64     `json:"slotId"`                  // bookings.slot_id
	VenueID         uint64     `json:"venueId"`                 // bookings.venue_id
	ExperienceID    uint64     `json:"experienceId"`            // bookings.experience_id
	Date            string     `json:"date"`                    // bookings.date
	Time            string     `json:"time"`                    // bookings.time
	NumberOfTickets int        `json:"numberOfTickets"`         // bookings.number_of_tickets
	TicketType      TicketType `json:"ticketType"`              // bookings.ticket_type
	Seats           int        `json:"seats"`                   // bookings.seats
	TotalPrice      Money      `json:"totalPrice"`              // bookings.total_price_cents
	CustomerName    string     `json:"customerName"`            // bookings.customer_name
	CustomerEmail   string     `json:"customerEmail"`           // bookings.customer_email
	CustomerPhone   *string    `json:"customerPhone,omitempty"` // bookings.customer_phone (nullable)
	Status          string     `json:"status"`                  // bookings.status
	CreatedAt       time.Time  `json:"createdAt"`               // bookings.created_at
}
