package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/immersive-venue-booking/internal/model"
)

// MembershipRepo reads and seeds membership_tiers.
type MembershipRepo struct {
	db *sql.DB
}

func NewMembershipRepo(db *sql.DB) *MembershipRepo { return &MembershipRepo{db: db} }

const tierColumns = `id, name, monthly_price_cents, description, discount_percentage,
       priority_booking_hours, guest_passes, featured_tier`

func scanTier(row interface{ Scan(...any) error }) (*model.MembershipTier, error) {
	var (
		t     model.MembershipTier
		price int64
	)
	if err := row.Scan(&t.ID, &t.Name, &price, &t.Description, &t.DiscountPercentage,
		&t.PriorityBookingHours, &t.GuestPasses, &t.FeaturedTier); err != nil {
		return nil, err
	}
	t.MonthlyPrice = model.Money(price)
	return &t, nil
}

// List returns tiers cheapest first.
func (r *MembershipRepo) List(ctx context.Context) ([]model.MembershipTier, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+tierColumns+` FROM membership_tiers ORDER BY monthly_price_cents ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.MembershipTier, 0, 3)
	for rows.Next() {
		t, err := scanTier(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}

func (r *MembershipRepo) GetByName(ctx context.Context, name string) (*model.MembershipTier, error) {
	t, err := scanTier(r.db.QueryRowContext(ctx, `SELECT `+tierColumns+` FROM membership_tiers WHERE name = ?`, name))
	if err != nil {
		return nil, notFound(err)
	}
	return t, nil
}

// UpsertByName inserts or refreshes a tier keyed by its unique name.
func (r *MembershipRepo) UpsertByName(ctx context.Context, t *model.MembershipTier) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO membership_tiers (name, monthly_price_cents, description, discount_percentage,
             priority_booking_hours, guest_passes, featured_tier)
         VALUES (?, ?, ?, ?, ?, ?, ?)
         ON DUPLICATE KEY UPDATE monthly_price_cents = VALUES(monthly_price_cents),
             description = VALUES(description), discount_percentage = VALUES(discount_percentage),
             priority_booking_hours = VALUES(priority_booking_hours),
             guest_passes = VALUES(guest_passes), featured_tier = VALUES(featured_tier)`,
		t.Name, int64(t.MonthlyPrice), t.Description, t.DiscountPercentage,
		t.PriorityBookingHours, t.GuestPasses, t.FeaturedTier)
	if err != nil {
		return err
	}
	stored, err := r.GetByName(ctx, t.Name)
	if err != nil {
		return err
	}
	*t = *stored
	return nil
}
