package model

import "time"

// Experience is a bookable show format (`experiences` table).  Price is the
// per-ticket list price that pricing rules start from.
type Experience struct {
	ID               uint64    `json:"id"`
	Name             string    `json:"name"`
	Slug             string    `json:"slug"`
	Description      string    `json:"description"`
	ShortDescription string    `json:"shortDescription"`
	Duration         int       `json:"duration"` // minutes
	Price            Money     `json:"price"`
	MinAge           int       `json:"minAge"`
	MaxAge           int       `json:"maxAge"`
	Requirements     *string   `json:"requirements,omitempty"`
	SpecialEquipment *string   `json:"specialEquipment,omitempty"`
	ImageURL         string    `json:"imageUrl"`
	IsPopular        bool      `json:"isPopular"`
	IsNew            bool      `json:"isNew"`
	CreatedAt        time.Time `json:"createdAt"`
}

// Venue is a physical location (`venues` table).
type Venue struct {
	ID          uint64    `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Address     string    `json:"address"`
	City        string    `json:"city"`
	State       string    `json:"state"`
	ZipCode     string    `json:"zipCode"`
	Description string    `json:"description"`
	ImageURL    string    `json:"imageUrl"`
	IsNew       bool      `json:"isNew"`
	CreatedAt   time.Time `json:"createdAt"`
}

// VenueExperience links an experience to a venue that runs it.
type VenueExperience struct {
	ID           uint64 `json:"id"`
	VenueID      uint64 `json:"venueId"`
	ExperienceID uint64 `json:"experienceId"`
	IsExclusive  bool   `json:"isExclusive"`
}
