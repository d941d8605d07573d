package handler

import (
	"context"
	"sync"
	"time"

	"github.com/iliyamo/immersive-venue-booking/internal/model"
	"github.com/iliyamo/immersive-venue-booking/internal/repository"
)

// fakeCatalog implements ExperienceStore, VenueStore, ProductStore and
// MembershipStore over slices.  Slugs are unique per kind.
type fakeCatalog struct {
	mu          sync.Mutex
	experiences []model.Experience
	venues      []model.Venue
	products    []model.Product
	tiers       []model.MembershipTier
	links       []model.VenueExperience
	lastSearch  repository.ExperienceSearchQuery
	searchErr   error
}

type fakeExperiences struct{ *fakeCatalog }
type fakeVenues struct{ *fakeCatalog }
type fakeProducts struct{ *fakeCatalog }

func (f fakeExperiences) Search(_ context.Context, q repository.ExperienceSearchQuery) ([]model.Experience, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastSearch = q
	if f.searchErr != nil {
		return nil, 0, f.searchErr
	}
	return append([]model.Experience(nil), f.experiences...), int64(len(f.experiences)), nil
}

func (f fakeExperiences) GetByID(_ context.Context, id uint64) (*model.Experience, error) {
	for _, e := range f.experiences {
		if e.ID == id {
			return &e, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f fakeExperiences) GetBySlug(_ context.Context, slug string) (*model.Experience, error) {
	for _, e := range f.experiences {
		if e.Slug == slug {
			return &e, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f fakeExperiences) ListByVenue(_ context.Context, venueID uint64) ([]model.Experience, error) {
	out := []model.Experience{}
	for _, l := range f.links {
		if l.VenueID == venueID {
			if e, err := f.GetByID(context.Background(), l.ExperienceID); err == nil {
				out = append(out, *e)
			}
		}
	}
	return out, nil
}

func (f fakeExperiences) Create(_ context.Context, e *model.Experience) error {
	if _, err := f.GetBySlug(context.Background(), e.Slug); err == nil {
		return repository.ErrConflict
	}
	e.ID = uint64(len(f.experiences) + 1)
	e.CreatedAt = time.Now()
	f.experiences = append(f.experiences, *e)
	return nil
}

func (f fakeExperiences) Update(_ context.Context, e *model.Experience) error {
	for i := range f.experiences {
		if f.experiences[i].ID == e.ID {
			f.experiences[i] = *e
			return nil
		}
	}
	return repository.ErrNotFound
}

func (f fakeVenues) List(context.Context) ([]model.Venue, error) { return f.venues, nil }

func (f fakeVenues) GetByID(_ context.Context, id uint64) (*model.Venue, error) {
	for _, v := range f.venues {
		if v.ID == id {
			return &v, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f fakeVenues) GetBySlug(_ context.Context, slug string) (*model.Venue, error) {
	for _, v := range f.venues {
		if v.Slug == slug {
			return &v, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f fakeVenues) Create(_ context.Context, v *model.Venue) error {
	v.ID = uint64(len(f.venues) + 1)
	f.venues = append(f.venues, *v)
	return nil
}

func (f fakeVenues) Update(_ context.Context, v *model.Venue) error {
	for i := range f.venues {
		if f.venues[i].ID == v.ID {
			f.venues[i] = *v
			return nil
		}
	}
	return repository.ErrNotFound
}

func (f fakeVenues) LinkExperience(_ context.Context, venueID, experienceID uint64, exclusive bool) error {
	f.links = append(f.links, model.VenueExperience{VenueID: venueID, ExperienceID: experienceID, IsExclusive: exclusive})
	return nil
}

func (f fakeProducts) List(_ context.Context, category string) ([]model.Product, error) {
	out := []model.Product{}
	for _, p := range f.products {
		if category == "" || p.Category == category {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f fakeProducts) GetByID(_ context.Context, id uint64) (*model.Product, error) {
	for _, p := range f.products {
		if p.ID == id {
			return &p, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f fakeProducts) GetBySlug(_ context.Context, slug string) (*model.Product, error) {
	for _, p := range f.products {
		if p.Slug == slug {
			return &p, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f fakeProducts) Create(_ context.Context, p *model.Product) error {
	p.ID = uint64(len(f.products) + 1)
	f.products = append(f.products, *p)
	return nil
}

func (f fakeProducts) Update(_ context.Context, p *model.Product) error {
	for i := range f.products {
		if f.products[i].ID == p.ID {
			f.products[i] = *p
			return nil
		}
	}
	return repository.ErrNotFound
}

func (f *fakeCatalog) List(context.Context) ([]model.MembershipTier, error) { return f.tiers, nil }

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		experiences: []model.Experience{
			{ID: 1, Name: "Moonwalk", Slug: "moonwalk", Price: 3200, Duration: 45},
			{ID: 2, Name: "Deep Sea Dome", Slug: "deep-sea-dome", Price: 4500, Duration: 60},
		},
		venues: []model.Venue{{ID: 1, Name: "Harbor Hall", Slug: "harbor-hall", City: "Boston"}},
		products: []model.Product{
			{ID: 1, Name: "Star Map", Slug: "star-map", Price: 1500, Category: "prints", Inventory: 3},
			{ID: 2, Name: "Diver Mug", Slug: "diver-mug", Price: 1200, Category: "kitchen", Inventory: 10},
		},
		tiers: []model.MembershipTier{{ID: 1, Name: "Explorer", MonthlyPrice: 999, DiscountPercentage: 10}},
		links: []model.VenueExperience{{VenueID: 1, ExperienceID: 2}},
	}
}

// fakeCart keeps lines in memory keyed by owner.
type fakeCart struct {
	mu    sync.Mutex
	items []model.CartItem
	next  uint64
}

func owns(o model.CartOwner, it model.CartItem) bool {
	if o.UserID != 0 {
		return it.UserID != nil && *it.UserID == o.UserID
	}
	return it.SessionID != nil && *it.SessionID == o.SessionID
}

func (f *fakeCart) List(_ context.Context, o model.CartOwner) ([]model.CartItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []model.CartItem{}
	for _, it := range f.items {
		if owns(o, it) {
			out = append(out, it)
		}
	}
	return out, nil
}

func (f *fakeCart) Add(_ context.Context, o model.CartOwner, it *model.CartItem) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.next++
	it.ID = f.next
	if o.UserID != 0 {
		uid := o.UserID
		it.UserID = &uid
	} else {
		sid := o.SessionID
		it.SessionID = &sid
	}
	f.items = append(f.items, *it)
	return nil
}

func (f *fakeCart) find(o model.CartOwner, id uint64) (int, error) {
	for i, it := range f.items {
		if it.ID == id {
			if !owns(o, it) {
				return -1, repository.ErrForbidden
			}
			return i, nil
		}
	}
	return -1, repository.ErrNotFound
}

func (f *fakeCart) UpdateQuantity(_ context.Context, o model.CartOwner, id uint64, qty int) (*model.CartItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i, err := f.find(o, id)
	if err != nil {
		return nil, err
	}
	f.items[i].Quantity = qty
	it := f.items[i]
	return &it, nil
}

func (f *fakeCart) Remove(_ context.Context, o model.CartOwner, id uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	i, err := f.find(o, id)
	if err != nil {
		return err
	}
	f.items = append(f.items[:i], f.items[i+1:]...)
	return nil
}

func (f *fakeCart) Clear(_ context.Context, o model.CartOwner) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	kept := f.items[:0]
	var n int64
	for _, it := range f.items {
		if owns(o, it) {
			n++
			continue
		}
		kept = append(kept, it)
	}
	f.items = kept
	return n, nil
}
