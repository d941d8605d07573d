package seed

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/iliyamo/immersive-venue-booking/internal/logger"
	"github.com/iliyamo/immersive-venue-booking/internal/model"
	"github.com/iliyamo/immersive-venue-booking/internal/repository"
)

type ExperienceWriter interface {
	UpsertBySlug(ctx context.Context, e *model.Experience) error
}

type VenueWriter interface {
	UpsertBySlug(ctx context.Context, v *model.Venue) error
	LinkExperience(ctx context.Context, venueID, experienceID uint64, exclusive bool) error
}

type ProductWriter interface {
	UpsertBySlug(ctx context.Context, p *model.Product) error
}

type TierWriter interface {
	UpsertByName(ctx context.Context, t *model.MembershipTier) error
}

type SlotWriter interface {
	Create(ctx context.Context, s *model.Slot) (created bool, err error)
}

type UserWriter interface {
	Create(ctx context.Context, in repository.NewUser, cost int) (*model.User, error)
}

// Seeder writes a Plan.  Users may be nil when the plan has no admin.
type Seeder struct {
	Experiences ExperienceWriter
	Venues      VenueWriter
	Products    ProductWriter
	Tiers       TierWriter
	Slots       SlotWriter
	Users       UserWriter
	BcryptCost  int
	Log         *logger.Logger
	Now         func() time.Time
}

// Report counts what one run touched.  Upserts count every row written;
// slots distinguish new rows from ones that already existed.
type Report struct {
	Experiences  int
	Venues       int
	Links        int
	Products     int
	Tiers        int
	SlotsCreated int
	SlotsExisted int
	AdminCreated bool
}

// Run applies p.  Every step is idempotent, so a run that fails halfway can
// simply be repeated.
func (s *Seeder) Run(ctx context.Context, p *Plan) (Report, error) {
	var rep Report
	log := s.Log
	if log == nil {
		log = logger.Nop()
	}
	now := s.Now
	if now == nil {
		now = time.Now
	}

	expIDs := make(map[string]uint64, len(p.Experiences))
	for _, in := range p.Experiences {
		e := &model.Experience{
			Name: in.Name, Slug: in.Slug, Description: in.Description, ShortDescription: in.ShortDescription,
			Duration: in.Duration, Price: model.Money(in.Price), MinAge: in.MinAge, MaxAge: in.MaxAge,
			Requirements: in.Requirements, SpecialEquipment: in.SpecialEquipment, ImageURL: in.ImageURL,
			IsPopular: in.Popular, IsNew: in.New,
		}
		if err := s.Experiences.UpsertBySlug(ctx, e); err != nil {
			return rep, fmt.Errorf("experience %s: %w", in.Slug, err)
		}
		expIDs[in.Slug] = e.ID
		rep.Experiences++
	}

	venueIDs := make(map[string]uint64, len(p.Venues))
	for _, in := range p.Venues {
		v := &model.Venue{
			Name: in.Name, Slug: in.Slug, Address: in.Address, City: in.City, State: in.State,
			ZipCode: in.ZipCode, Description: in.Description, ImageURL: in.ImageURL, IsNew: in.New,
		}
		if err := s.Venues.UpsertBySlug(ctx, v); err != nil {
			return rep, fmt.Errorf("venue %s: %w", in.Slug, err)
		}
		venueIDs[in.Slug] = v.ID
		rep.Venues++
	}

	for _, l := range p.Links {
		if err := s.Venues.LinkExperience(ctx, venueIDs[l.Venue], expIDs[l.Experience], l.Exclusive); err != nil {
			return rep, fmt.Errorf("link %s -> %s: %w", l.Venue, l.Experience, err)
		}
		rep.Links++
	}

	for _, in := range p.Products {
		pr := &model.Product{
			Name: in.Name, Slug: in.Slug, Description: in.Description, Price: model.Money(in.Price),
			ImageURL: in.ImageURL, Category: in.Category, Inventory: in.Inventory,
		}
		if err := s.Products.UpsertBySlug(ctx, pr); err != nil {
			return rep, fmt.Errorf("product %s: %w", in.Slug, err)
		}
		rep.Products++
	}

	for _, in := range p.Tiers {
		t := &model.MembershipTier{
			Name: in.Name, MonthlyPrice: model.Money(in.MonthlyPrice), Description: in.Description,
			DiscountPercentage: in.DiscountPercentage, PriorityBookingHours: in.PriorityBookingHours,
			GuestPasses: in.GuestPasses, FeaturedTier: in.Featured,
		}
		if err := s.Tiers.UpsertByName(ctx, t); err != nil {
			return rep, fmt.Errorf("tier %s: %w", in.Name, err)
		}
		rep.Tiers++
	}

	if err := s.slots(ctx, p.Slots, venueIDs, expIDs, now(), &rep); err != nil {
		return rep, err
	}

	if p.Admin != nil && s.Users != nil {
		_, err := s.Users.Create(ctx, repository.NewUser{
			Username: p.Admin.Username,
			Email:    p.Admin.Email,
			Password: p.Admin.Password,
			Role:     model.RoleAdmin,
		}, s.BcryptCost)
		switch {
		case err == nil:
			rep.AdminCreated = true
		case errors.Is(err, repository.ErrUsernameExists), errors.Is(err, repository.ErrEmailExists):
			log.Info("admin account already exists", "username", p.Admin.Username)
		default:
			return rep, fmt.Errorf("admin account: %w", err)
		}
	}
	return rep, nil
}

func (s *Seeder) slots(ctx context.Context, w SlotWindow, venueIDs, expIDs map[string]uint64, now time.Time, rep *Report) error {
	dates := w.Dates(now)
	// Sorted so reruns create rows in the same order.
	venues := make([]string, 0, len(w.Venues))
	for v := range w.Venues {
		venues = append(venues, v)
	}
	sort.Strings(venues)

	for _, venue := range venues {
		for _, exp := range w.Venues[venue] {
			expID := expIDs[exp]
			capacity := w.Capacity(expID)
			for _, date := range dates {
				for _, hhmm := range w.Times {
					slot := &model.Slot{
						VenueID: venueIDs[venue], ExperienceID: expID,
						Date: date, Time: hhmm, Capacity: capacity,
					}
					created, err := s.Slots.Create(ctx, slot)
					if err != nil {
						return fmt.Errorf("slot %s/%s %s %s: %w", venue, exp, date, hhmm, err)
					}
					if created {
						rep.SlotsCreated++
					} else {
						rep.SlotsExisted++
					}
				}
			}
		}
	}
	return nil
}
