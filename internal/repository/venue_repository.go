package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/immersive-venue-booking/internal/model"
)

// VenueRepo provides CRUD for venues and links venues to experiences.
type VenueRepo struct {
	db *sql.DB
}

func NewVenueRepo(db *sql.DB) *VenueRepo { return &VenueRepo{db: db} }

const venueColumns = `id, name, slug, address, city, state, zip_code, description, image_url, is_new, created_at`

func scanVenue(row interface{ Scan(...any) error }) (*model.Venue, error) {
	var v model.Venue
	if err := row.Scan(&v.ID, &v.Name, &v.Slug, &v.Address, &v.City, &v.State, &v.ZipCode,
		&v.Description, &v.ImageURL, &v.IsNew, &v.CreatedAt); err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *VenueRepo) List(ctx context.Context) ([]model.Venue, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+venueColumns+` FROM venues ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Venue, 0)
	for rows.Next() {
		v, err := scanVenue(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *v)
	}
	return out, rows.Err()
}

func (r *VenueRepo) GetByID(ctx context.Context, id uint64) (*model.Venue, error) {
	v, err := scanVenue(r.db.QueryRowContext(ctx, `SELECT `+venueColumns+` FROM venues WHERE id = ?`, id))
	if err != nil {
		return nil, notFound(err)
	}
	return v, nil
}

func (r *VenueRepo) GetBySlug(ctx context.Context, slug string) (*model.Venue, error) {
	v, err := scanVenue(r.db.QueryRowContext(ctx, `SELECT `+venueColumns+` FROM venues WHERE slug = ?`, slug))
	if err != nil {
		return nil, notFound(err)
	}
	return v, nil
}

// Create inserts a venue; a taken slug yields ErrConflict.
func (r *VenueRepo) Create(ctx context.Context, v *model.Venue) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO venues (name, slug, address, city, state, zip_code, description, image_url, is_new)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		v.Name, v.Slug, v.Address, v.City, v.State, v.ZipCode, v.Description, v.ImageURL, v.IsNew)
	if err != nil {
		if isDuplicate(err) {
			return ErrConflict
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	stored, err := r.GetByID(ctx, uint64(id))
	if err != nil {
		return err
	}
	*v = *stored
	return nil
}

func (r *VenueRepo) Update(ctx context.Context, v *model.Venue) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE venues SET name = ?, slug = ?, address = ?, city = ?, state = ?, zip_code = ?,
             description = ?, image_url = ?, is_new = ?
         WHERE id = ?`,
		v.Name, v.Slug, v.Address, v.City, v.State, v.ZipCode, v.Description, v.ImageURL, v.IsNew, v.ID)
	if err != nil {
		if isDuplicate(err) {
			return ErrConflict
		}
		return err
	}
	stored, err := r.GetByID(ctx, v.ID)
	if err != nil {
		return err
	}
	*v = *stored
	return nil
}

// UpsertBySlug inserts or refreshes a venue keyed by slug.
func (r *VenueRepo) UpsertBySlug(ctx context.Context, v *model.Venue) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO venues (name, slug, address, city, state, zip_code, description, image_url, is_new)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
         ON DUPLICATE KEY UPDATE name = VALUES(name), address = VALUES(address), city = VALUES(city),
             state = VALUES(state), zip_code = VALUES(zip_code), description = VALUES(description),
             image_url = VALUES(image_url), is_new = VALUES(is_new)`,
		v.Name, v.Slug, v.Address, v.City, v.State, v.ZipCode, v.Description, v.ImageURL, v.IsNew)
	if err != nil {
		return err
	}
	stored, err := r.GetBySlug(ctx, v.Slug)
	if err != nil {
		return err
	}
	*v = *stored
	return nil
}

// LinkExperience records that a venue runs an experience.  Linking twice
// only updates the exclusive flag.
func (r *VenueRepo) LinkExperience(ctx context.Context, venueID, experienceID uint64, exclusive bool) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO venue_experiences (venue_id, experience_id, is_exclusive) VALUES (?, ?, ?)
         ON DUPLICATE KEY UPDATE is_exclusive = VALUES(is_exclusive)`,
		venueID, experienceID, exclusive)
	return err
}

// ListLinks returns the venue_experiences rows for a venue.
func (r *VenueRepo) ListLinks(ctx context.Context, venueID uint64) ([]model.VenueExperience, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, venue_id, experience_id, is_exclusive FROM venue_experiences WHERE venue_id = ? ORDER BY experience_id`, venueID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.VenueExperience, 0)
	for rows.Next() {
		var ve model.VenueExperience
		if err := rows.Scan(&ve.ID, &ve.VenueID, &ve.ExperienceID, &ve.IsExclusive); err != nil {
			return nil, err
		}
		out = append(out, ve)
	}
	return out, rows.Err()
}
