// Package pricing turns a ticket request into a price breakdown.  All
// arithmetic is integer cents; fractional cents are rounded half-up exactly
// once per figure.
package pricing

import (
	"fmt"

	"github.com/iliyamo/immersive-venue-booking/internal/model"
)

const (
	MaxTickets = 20 // hard ceiling per booking

	FamilyPackSeats = 4
	FamilyPackPrice = model.Money(11200) // flat subtotal for a family pack

	MemberDiscountPercent = 10
	GroupDiscountPercent  = 10
	GroupMinTickets       = 5 // group discount applies from this many tickets, not before

	BookingFeeBasisPoints = 600 // 6.00 %
)

// Breakdown is the full price computation for one booking.
type Breakdown struct {
	TicketType      model.TicketType `json:"ticketType"`
	NumberOfTickets int              `json:"numberOfTickets"`
	Seats           int              `json:"seats"`
	UnitPrice       model.Money      `json:"unitPrice"`
	DiscountPercent int              `json:"discountPercent"`
	Subtotal        model.Money      `json:"subtotal"`
	BookingFee      model.Money      `json:"bookingFee"`
	Total           model.Money      `json:"total"`
}

// Seats returns how many capacity units a request consumes.  A family pack is
// a fixed bundle of four whatever numberOfTickets says.
func Seats(t model.TicketType, numberOfTickets int) int {
	if t == model.TicketFamily {
		return FamilyPackSeats
	}
	return numberOfTickets
}

// DiscountPercent returns the per-ticket discount for the ticket type.
func DiscountPercent(t model.TicketType, numberOfTickets int) int {
	switch t {
	case model.TicketMember:
		return MemberDiscountPercent
	case model.TicketGroup:
		if numberOfTickets >= GroupMinTickets {
			return GroupDiscountPercent
		}
	}
	return 0
}

// Quote prices numberOfTickets tickets of type t for an experience whose list
// price is price.
func Quote(price model.Money, t model.TicketType, numberOfTickets int) (Breakdown, error) {
	if !t.Valid() {
		return Breakdown{}, fmt.Errorf("unknown ticket type %q", t)
	}
	if numberOfTickets < 1 || numberOfTickets > MaxTickets {
		return Breakdown{}, fmt.Errorf("numberOfTickets must be between 1 and %d", MaxTickets)
	}
	if price < 0 {
		return Breakdown{}, fmt.Errorf("negative price %d", price)
	}

	b := Breakdown{
		TicketType:      t,
		NumberOfTickets: numberOfTickets,
		Seats:           Seats(t, numberOfTickets),
	}

	if t == model.TicketFamily {
		b.Subtotal = FamilyPackPrice
		b.UnitPrice = model.Money(roundHalfUp(int64(FamilyPackPrice), FamilyPackSeats))
	} else {
		b.DiscountPercent = DiscountPercent(t, numberOfTickets)
		keep := int64(100 - b.DiscountPercent)
		b.UnitPrice = model.Money(roundHalfUp(int64(price)*keep, 100))
		// Subtotal is computed from the unrounded unit price so a discounted
		// odd-cent price does not drift by a cent per ticket.
		b.Subtotal = model.Money(roundHalfUp(int64(price)*keep*int64(b.Seats), 100))
	}

	b.BookingFee = Fee(b.Subtotal)
	b.Total = b.Subtotal + b.BookingFee
	return b, nil
}

// Fee is the 6 % booking fee on subtotal, rounded half-up to the cent.
func Fee(subtotal model.Money) model.Money {
	return model.Money(roundHalfUp(int64(subtotal)*BookingFeeBasisPoints, 10000))
}

// roundHalfUp divides num by den rounding .5 away from zero.  Inputs are
// never negative here.
func roundHalfUp(num, den int64) int64 {
	return (num + den/2) / den
}
