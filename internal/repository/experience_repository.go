package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/immersive-venue-booking/internal/model"
)

// ExperienceRepo provides CRUD for the experiences catalog and the
// venue_experiences link table.
type ExperienceRepo struct {
	db *sql.DB
}

func NewExperienceRepo(db *sql.DB) *ExperienceRepo { return &ExperienceRepo{db: db} }

const experienceColumns = `e.id, e.name, e.slug, e.description, e.short_description, e.duration_minutes,
       e.price_cents, e.min_age, e.max_age, e.requirements, e.special_equipment,
       e.image_url, e.is_popular, e.is_new, e.created_at`

func scanExperience(row interface{ Scan(...any) error }) (*model.Experience, error) {
	var (
		e          model.Experience
		price      int64
		req, equip sql.NullString
	)
	if err := row.Scan(&e.ID, &e.Name, &e.Slug, &e.Description, &e.ShortDescription, &e.Duration,
		&price, &e.MinAge, &e.MaxAge, &req, &equip, &e.ImageURL, &e.IsPopular, &e.IsNew, &e.CreatedAt); err != nil {
		return nil, err
	}
	e.Price = model.Money(price)
	if req.Valid {
		e.Requirements = &req.String
	}
	if equip.Valid {
		e.SpecialEquipment = &equip.String
	}
	return &e, nil
}

func (r *ExperienceRepo) list(ctx context.Context, q string, args ...any) ([]model.Experience, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Experience, 0)
	for rows.Next() {
		e, err := scanExperience(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *e)
	}
	return out, rows.Err()
}

// List returns every experience, popular ones first.
func (r *ExperienceRepo) List(ctx context.Context) ([]model.Experience, error) {
	return r.list(ctx, `SELECT `+experienceColumns+` FROM experiences e ORDER BY e.is_popular DESC, e.id ASC`)
}

// ListByVenue returns the experiences linked to a venue.
func (r *ExperienceRepo) ListByVenue(ctx context.Context, venueID uint64) ([]model.Experience, error) {
	return r.list(ctx, `SELECT `+experienceColumns+`
        FROM experiences e
        JOIN venue_experiences ve ON ve.experience_id = e.id
        WHERE ve.venue_id = ?
        ORDER BY e.id ASC`, venueID)
}

func (r *ExperienceRepo) GetByID(ctx context.Context, id uint64) (*model.Experience, error) {
	e, err := scanExperience(r.db.QueryRowContext(ctx, `SELECT `+experienceColumns+` FROM experiences e WHERE e.id = ?`, id))
	if err != nil {
		return nil, notFound(err)
	}
	return e, nil
}

func (r *ExperienceRepo) GetBySlug(ctx context.Context, slug string) (*model.Experience, error) {
	e, err := scanExperience(r.db.QueryRowContext(ctx, `SELECT `+experienceColumns+` FROM experiences e WHERE e.slug = ?`, slug))
	if err != nil {
		return nil, notFound(err)
	}
	return e, nil
}

// Create inserts a new experience.  A taken slug yields ErrConflict.
func (r *ExperienceRepo) Create(ctx context.Context, e *model.Experience) error {
	const q = `INSERT INTO experiences (name, slug, description, short_description, duration_minutes,
                   price_cents, min_age, max_age, requirements, special_equipment, image_url, is_popular, is_new)
               VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, e.Name, e.Slug, e.Description, e.ShortDescription, e.Duration,
		int64(e.Price), e.MinAge, e.MaxAge, nullableString(e.Requirements), nullableString(e.SpecialEquipment),
		e.ImageURL, e.IsPopular, e.IsNew)
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
	*e = *stored
	return nil
}

// Update overwrites every editable column of experience e.ID.
func (r *ExperienceRepo) Update(ctx context.Context, e *model.Experience) error {
	const q = `UPDATE experiences SET name = ?, slug = ?, description = ?, short_description = ?,
                   duration_minutes = ?, price_cents = ?, min_age = ?, max_age = ?, requirements = ?,
                   special_equipment = ?, image_url = ?, is_popular = ?, is_new = ?
               WHERE id = ?`
	_, err := r.db.ExecContext(ctx, q, e.Name, e.Slug, e.Description, e.ShortDescription, e.Duration,
		int64(e.Price), e.MinAge, e.MaxAge, nullableString(e.Requirements), nullableString(e.SpecialEquipment),
		e.ImageURL, e.IsPopular, e.IsNew, e.ID)
	if err != nil {
		if isDuplicate(err) {
			return ErrConflict
		}
		return err
	}
	stored, err := r.GetByID(ctx, e.ID)
	if err != nil {
		return err
	}
	*e = *stored
	return nil
}

// UpsertBySlug inserts or refreshes an experience keyed by slug.  Used by the
// seed tool so a plan can be applied repeatedly.
func (r *ExperienceRepo) UpsertBySlug(ctx context.Context, e *model.Experience) error {
	const q = `INSERT INTO experiences (name, slug, description, short_description, duration_minutes,
                   price_cents, min_age, max_age, image_url, is_popular, is_new)
               VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
               ON DUPLICATE KEY UPDATE name = VALUES(name), description = VALUES(description),
                   short_description = VALUES(short_description), duration_minutes = VALUES(duration_minutes),
                   price_cents = VALUES(price_cents), min_age = VALUES(min_age), max_age = VALUES(max_age),
                   image_url = VALUES(image_url), is_popular = VALUES(is_popular), is_new = VALUES(is_new)`
	if _, err := r.db.ExecContext(ctx, q, e.Name, e.Slug, e.Description, e.ShortDescription, e.Duration,
		int64(e.Price), e.MinAge, e.MaxAge, e.ImageURL, e.IsPopular, e.IsNew); err != nil {
		return err
	}
	stored, err := r.GetBySlug(ctx, e.Slug)
	if err != nil {
		return err
	}
	*e = *stored
	return nil
}
