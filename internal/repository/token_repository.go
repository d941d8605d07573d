package repository

import (
	"context"
	"database/sql"
	"time"
)

// TokenRepo persists refresh tokens.  Only the SHA-256 hash of a token is
// stored; the raw value lives with the client.
type TokenRepo struct{ db *sql.DB }

func NewTokenRepo(db *sql.DB) *TokenRepo { return &TokenRepo{db: db} }

// Store inserts a refresh token hash row.
func (r *TokenRepo) Store(ctx context.Context, userID uint64, tokenHash string, exp time.Time) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO refresh_tokens (user_id, token_hash, expires_at) VALUES (?, ?, ?)",
		userID, tokenHash, exp)
	return err
}

// Consume revokes a live token and returns its owner.  The guarded UPDATE
// is the single point of truth: of two concurrent calls with the same token
// only one sees a changed row.  Unknown, revoked and expired tokens all
// yield ErrNotFound.
func (r *TokenRepo) Consume(ctx context.Context, tokenHash string) (uint64, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE refresh_tokens SET revoked_at = UTC_TIMESTAMP()
         WHERE token_hash = ? AND revoked_at IS NULL AND expires_at > UTC_TIMESTAMP()`,
		tokenHash)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, ErrNotFound
	}
	var userID uint64
	err = r.db.QueryRowContext(ctx,
		"SELECT user_id FROM refresh_tokens WHERE token_hash = ? LIMIT 1", tokenHash).Scan(&userID)
	if err != nil {
		return 0, notFound(err)
	}
	return userID, nil
}

// RevokeAllForUser revokes every active token of the user.
func (r *TokenRepo) RevokeAllForUser(ctx context.Context, userID uint64) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE refresh_tokens SET revoked_at = UTC_TIMESTAMP() WHERE user_id = ? AND revoked_at IS NULL",
		userID)
	return err
}
