package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/immersive-venue-booking/internal/model"
)

// CartRepo stores cart lines.  A cart is addressed by CartOwner: the user id
// when logged in, otherwise the anonymous session id.  Concurrent edits of
// the same cart are last-write-wins.
type CartRepo struct {
	db *sql.DB
}

func NewCartRepo(db *sql.DB) *CartRepo { return &CartRepo{db: db} }

const cartColumns = `id, user_id, session_id, product_id, experience_id, quantity, price_cents, type, created_at`

func scanCartItem(row interface{ Scan(...any) error }) (*model.CartItem, error) {
	var (
		it                    model.CartItem
		userID, prodID, expID sql.NullInt64
		session               sql.NullString
		price                 int64
	)
	if err := row.Scan(&it.ID, &userID, &session, &prodID, &expID, &it.Quantity, &price, &it.Type, &it.CreatedAt); err != nil {
		return nil, err
	}
	it.UserID = nullToID(userID)
	it.ProductID = nullToID(prodID)
	it.ExperienceID = nullToID(expID)
	if session.Valid {
		it.SessionID = &session.String
	}
	it.Price = model.Money(price)
	return &it, nil
}

func nullToID(n sql.NullInt64) *uint64 {
	if !n.Valid {
		return nil
	}
	v := uint64(n.Int64)
	return &v
}

// ownerClause returns the WHERE fragment selecting the owner's lines.
func ownerClause(o model.CartOwner) (string, any) {
	if o.UserID != 0 {
		return "user_id = ?", o.UserID
	}
	return "session_id = ? AND user_id IS NULL", o.SessionID
}

func (r *CartRepo) List(ctx context.Context, o model.CartOwner) ([]model.CartItem, error) {
	cond, arg := ownerClause(o)
	rows, err := r.db.QueryContext(ctx, `SELECT `+cartColumns+` FROM cart_items WHERE `+cond+` ORDER BY id ASC`, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.CartItem, 0)
	for rows.Next() {
		it, err := scanCartItem(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *it)
	}
	return out, rows.Err()
}

// Add inserts a line for the owner.  Exactly one of user_id/session_id is
// written.
func (r *CartRepo) Add(ctx context.Context, o model.CartOwner, it *model.CartItem) error {
	var userID, session any
	if o.UserID != 0 {
		userID = o.UserID
	} else {
		session = o.SessionID
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO cart_items (user_id, session_id, product_id, experience_id, quantity, price_cents, type)
         VALUES (?, ?, ?, ?, ?, ?, ?)`,
		userID, session, nullableID(it.ProductID), nullableID(it.ExperienceID), it.Quantity, int64(it.Price), it.Type)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	stored, err := scanCartItem(r.db.QueryRowContext(ctx, `SELECT `+cartColumns+` FROM cart_items WHERE id = ?`, id))
	if err != nil {
		return err
	}
	*it = *stored
	return nil
}

// UpdateQuantity changes the quantity of one of the owner's lines.
func (r *CartRepo) UpdateQuantity(ctx context.Context, o model.CartOwner, id uint64, qty int) (*model.CartItem, error) {
	cond, arg := ownerClause(o)
	res, err := r.db.ExecContext(ctx, `UPDATE cart_items SET quantity = ? WHERE id = ? AND `+cond, qty, id, arg)
	if err != nil {
		return nil, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	it, err := scanCartItem(r.db.QueryRowContext(ctx, `SELECT `+cartColumns+` FROM cart_items WHERE id = ? AND `+cond, id, arg))
	if err != nil {
		if n == 0 {
			return nil, r.missingOrForeign(ctx, id)
		}
		return nil, notFound(err)
	}
	return it, nil
}

// Remove deletes one of the owner's lines.
func (r *CartRepo) Remove(ctx context.Context, o model.CartOwner, id uint64) error {
	cond, arg := ownerClause(o)
	res, err := r.db.ExecContext(ctx, `DELETE FROM cart_items WHERE id = ? AND `+cond, id, arg)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return r.missingOrForeign(ctx, id)
	}
	return nil
}

// Clear removes every line of the owner's cart and reports how many went.
func (r *CartRepo) Clear(ctx context.Context, o model.CartOwner) (int64, error) {
	cond, arg := ownerClause(o)
	res, err := r.db.ExecContext(ctx, `DELETE FROM cart_items WHERE `+cond, arg)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// missingOrForeign distinguishes a line that does not exist from one that
// belongs to another cart.
func (r *CartRepo) missingOrForeign(ctx context.Context, id uint64) error {
	var one int
	err := r.db.QueryRowContext(ctx, `SELECT 1 FROM cart_items WHERE id = ?`, id).Scan(&one)
	if err != nil {
		return notFound(err)
	}
	return ErrForbidden
}
