package model

// Slot is one bookable (venue, experience, date, time) unit stored in the
// `availability_slots` table.  The surrogate ID is what bookings reference;
// the natural key is unique in the schema.
//
// Fields:
//
//	ID           – primary key identifier.
//	VenueID      – venue hosting the session.
//	ExperienceID – experience being run.
//	Date         – calendar day, YYYY-MM-DD.
//	Time         – start time of day, HH:MM (24h).
//	Capacity     – maximum number of seats, fixed at creation.
//	BookedCount  – seats already sold; 0 <= BookedCount <= Capacity.
type Slot struct {
	ID           uint64 `json:"id"`           // availability_slots.id
	VenueID      uint64 `json:"venueId"`      // availability_slots.venue_id
	ExperienceID uint64 `json:"experienceId"` // availability_slots.experience_id
	Date         string `json:"date"`         // availability_slots.date
	Time         string `json:"time"`         // availability_slots.time
	Capacity     int    `json:"capacity"`     // availability_slots.capacity
	BookedCount  int    `json:"bookedCount"`  // availability_slots.booked_count
}

// Remaining returns how many seats are still free.
func (s Slot) Remaining() int {
	if r := s.Capacity - s.BookedCount; r > 0 {
		return r
	}
	return 0
}

// Fits reports whether n more seats can be sold without exceeding capacity.
func (s Slot) Fits(n int) bool { return n > 0 && s.BookedCount+n <= s.Capacity }
