// Package seed loads catalog content and the availability slot window from a
// YAML plan and writes them idempotently.  It only runs when cmd/seed is
// invoked explicitly; the server never seeds on start.
package seed

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/iliyamo/immersive-venue-booking/internal/model"
)

// Dollars is a price written as "32.00" in the plan.
type Dollars model.Money

func (d *Dollars) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: price must be a scalar", n.Line)
	}
	m, err := model.ParseDollars(n.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", n.Line, err)
	}
	*d = Dollars(m)
	return nil
}

type Plan struct {
	Experiences []Experience `yaml:"experiences"`
	Venues      []Venue      `yaml:"venues"`
	Links       []Link       `yaml:"links"`
	Products    []Product    `yaml:"products"`
	Tiers       []Tier       `yaml:"membershipTiers"`
	Slots       SlotWindow   `yaml:"slots"`
	Admin       *Admin       `yaml:"admin"`
}

type Experience struct {
	Name             string  `yaml:"name"`
	Slug             string  `yaml:"slug"`
	Description      string  `yaml:"description"`
	ShortDescription string  `yaml:"shortDescription"`
	Duration         int     `yaml:"duration"`
	Price            Dollars `yaml:"price"`
	MinAge           int     `yaml:"minAge"`
	MaxAge           int     `yaml:"maxAge"`
	Requirements     *string `yaml:"requirements"`
	SpecialEquipment *string `yaml:"specialEquipment"`
	ImageURL         string  `yaml:"imageUrl"`
	Popular          bool    `yaml:"popular"`
	New              bool    `yaml:"new"`
}

type Venue struct {
	Name        string `yaml:"name"`
	Slug        string `yaml:"slug"`
	Address     string `yaml:"address"`
	City        string `yaml:"city"`
	State       string `yaml:"state"`
	ZipCode     string `yaml:"zipCode"`
	Description string `yaml:"description"`
	ImageURL    string `yaml:"imageUrl"`
	New         bool   `yaml:"new"`
}

// Link attaches an experience to a venue, both by slug.
type Link struct {
	Venue      string `yaml:"venue"`
	Experience string `yaml:"experience"`
	Exclusive  bool   `yaml:"exclusive"`
}

type Product struct {
	Name        string  `yaml:"name"`
	Slug        string  `yaml:"slug"`
	Description string  `yaml:"description"`
	Price       Dollars `yaml:"price"`
	ImageURL    string  `yaml:"imageUrl"`
	Category    string  `yaml:"category"`
	Inventory   int     `yaml:"inventory"`
}

type Tier struct {
	Name                 string  `yaml:"name"`
	MonthlyPrice         Dollars `yaml:"monthlyPrice"`
	Description          string  `yaml:"description"`
	DiscountPercentage   int     `yaml:"discountPercentage"`
	PriorityBookingHours int     `yaml:"priorityBookingHours"`
	GuestPasses          int     `yaml:"guestPasses"`
	Featured             bool    `yaml:"featured"`
}

// SlotWindow describes which slots to create: every time of day, on each of
// Days consecutive dates from Start, for every experience listed under a
// venue.  Capacity is CapacityBase + experienceID % CapacityMod.
type SlotWindow struct {
	Start        string              `yaml:"start"` // YYYY-MM-DD; empty means today (UTC)
	Days         int                 `yaml:"days"`
	Times        []string            `yaml:"times"`
	Venues       map[string][]string `yaml:"venues"` // venue slug -> experience slugs
	CapacityBase int                 `yaml:"capacityBase"`
	CapacityMod  int                 `yaml:"capacityMod"`
}

// Admin is the optional bootstrap administrator account.
type Admin struct {
	Username string `yaml:"username"`
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
}

const (
	defaultCapacityBase = 8
	defaultCapacityMod  = 8
)

// Load reads and checks a plan file.
func Load(path string) (*Plan, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Parse(f)
}

// Parse decodes a plan, rejecting unknown keys, and fills slot defaults.
func Parse(r io.Reader) (*Plan, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var p Plan
	if err := dec.Decode(&p); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode plan: %w", err)
	}
	if p.Slots.CapacityBase <= 0 {
		p.Slots.CapacityBase = defaultCapacityBase
	}
	if p.Slots.CapacityMod <= 0 {
		p.Slots.CapacityMod = defaultCapacityMod
	}
	if err := p.check(); err != nil {
		return nil, err
	}
	return &p, nil
}

func (p *Plan) check() error {
	experiences := map[string]bool{}
	for _, e := range p.Experiences {
		if e.Slug == "" || e.Name == "" {
			return fmt.Errorf("experience %q: name and slug are required", e.Name)
		}
		experiences[e.Slug] = true
	}
	venues := map[string]bool{}
	for _, v := range p.Venues {
		if v.Slug == "" || v.Name == "" {
			return fmt.Errorf("venue %q: name and slug are required", v.Name)
		}
		venues[v.Slug] = true
	}
	for _, l := range p.Links {
		if !venues[l.Venue] || !experiences[l.Experience] {
			return fmt.Errorf("link %s -> %s: unknown venue or experience", l.Venue, l.Experience)
		}
	}
	for venue, exps := range p.Slots.Venues {
		if !venues[venue] {
			return fmt.Errorf("slots: unknown venue %q", venue)
		}
		for _, e := range exps {
			if !experiences[e] {
				return fmt.Errorf("slots: unknown experience %q under venue %q", e, venue)
			}
		}
	}
	for _, t := range p.Slots.Times {
		if _, err := time.Parse("15:04", t); err != nil || len(t) != 5 {
			return fmt.Errorf("slots: time %q is not HH:MM", t)
		}
	}
	if p.Slots.Start != "" {
		if _, err := time.Parse(time.DateOnly, p.Slots.Start); err != nil {
			return fmt.Errorf("slots: start %q is not YYYY-MM-DD", p.Slots.Start)
		}
	}
	if p.Slots.Days < 0 {
		return fmt.Errorf("slots: days must not be negative")
	}
	return nil
}

// Dates lists the Days consecutive dates of the window.  now supplies the
// start when Start is empty.
func (w SlotWindow) Dates(now time.Time) []string {
	start := now.UTC()
	if w.Start != "" {
		start, _ = time.Parse(time.DateOnly, w.Start) // checked by Parse
	}
	out := make([]string, 0, w.Days)
	for i := 0; i < w.Days; i++ {
		out = append(out, start.AddDate(0, 0, i).Format(time.DateOnly))
	}
	return out
}

// Capacity is the seat count given to every slot of an experience.
func (w SlotWindow) Capacity(experienceID uint64) int {
	return w.CapacityBase + int(experienceID%uint64(w.CapacityMod))
}
