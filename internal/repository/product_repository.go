package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/immersive-venue-booking/internal/model"
)

// ProductRepo provides CRUD for merchandise.
type ProductRepo struct {
	db *sql.DB
}

func NewProductRepo(db *sql.DB) *ProductRepo { return &ProductRepo{db: db} }

const productColumns = `id, name, slug, description, price_cents, image_url, category, inventory, created_at`

func scanProduct(row interface{ Scan(...any) error }) (*model.Product, error) {
	var (
		p     model.Product
		price int64
	)
	if err := row.Scan(&p.ID, &p.Name, &p.Slug, &p.Description, &price, &p.ImageURL, &p.Category, &p.Inventory, &p.CreatedAt); err != nil {
		return nil, err
	}
	p.Price = model.Money(price)
	return &p, nil
}

// List returns all products, optionally restricted to one category.
func (r *ProductRepo) List(ctx context.Context, category string) ([]model.Product, error) {
	q := `SELECT ` + productColumns + ` FROM products`
	args := []any{}
	if category != "" {
		q += ` WHERE category = ?`
		args = append(args, category)
	}
	q += ` ORDER BY id ASC`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func (r *ProductRepo) GetByID(ctx context.Context, id uint64) (*model.Product, error) {
	p, err := scanProduct(r.db.QueryRowContext(ctx, `SELECT `+productColumns+` FROM products WHERE id = ?`, id))
	if err != nil {
		return nil, notFound(err)
	}
	return p, nil
}

func (r *ProductRepo) GetBySlug(ctx context.Context, slug string) (*model.Product, error) {
	p, err := scanProduct(r.db.QueryRowContext(ctx, `SELECT `+productColumns+` FROM products WHERE slug = ?`, slug))
	if err != nil {
		return nil, notFound(err)
	}
	return p, nil
}

func (r *ProductRepo) Create(ctx context.Context, p *model.Product) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO products (name, slug, description, price_cents, image_url, category, inventory)
         VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.Name, p.Slug, p.Description, int64(p.Price), p.ImageURL, p.Category, p.Inventory)
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
	*p = *stored
	return nil
}

func (r *ProductRepo) Update(ctx context.Context, p *model.Product) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE products SET name = ?, slug = ?, description = ?, price_cents = ?, image_url = ?,
             category = ?, inventory = ?
         WHERE id = ?`,
		p.Name, p.Slug, p.Description, int64(p.Price), p.ImageURL, p.Category, p.Inventory, p.ID)
	if err != nil {
		if isDuplicate(err) {
			return ErrConflict
		}
		return err
	}
	stored, err := r.GetByID(ctx, p.ID)
	if err != nil {
		return err
	}
	*p = *stored
	return nil
}

// UpsertBySlug inserts or refreshes a product keyed by slug.
func (r *ProductRepo) UpsertBySlug(ctx context.Context, p *model.Product) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO products (name, slug, description, price_cents, image_url, category, inventory)
         VALUES (?, ?, ?, ?, ?, ?, ?)
         ON DUPLICATE KEY UPDATE name = VALUES(name), description = VALUES(description),
             price_cents = VALUES(price_cents), image_url = VALUES(image_url),
             category = VALUES(category), inventory = VALUES(inventory)`,
		p.Name, p.Slug, p.Description, int64(p.Price), p.ImageURL, p.Category, p.Inventory)
	if err != nil {
		return err
	}
	stored, err := r.GetBySlug(ctx, p.Slug)
	if err != nil {
		return err
	}
	*p = *stored
	return nil
}
