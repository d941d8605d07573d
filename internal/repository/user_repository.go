package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"

	"github.com/iliyamo/immersive-venue-booking/internal/model"
	"github.com/iliyamo/immersive-venue-booking/internal/utils"
)

// UserRepo persists accounts.  Emails are stored lower-cased; usernames keep
// their case but are unique.
type UserRepo struct{ db *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{db: db} }

// NewUser carries the fields accepted at registration.
type NewUser struct {
	Username  string
	Email     string
	Password  string
	FirstName *string
	LastName  *string
	Role      string
}

const userColumns = `id, username, email, password_hash, first_name, last_name, role, membership_tier, is_active, created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (*model.User, error) {
	var (
		u           model.User
		first, last sql.NullString
	)
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &first, &last,
		&u.Role, &u.MembershipTier, &u.IsActive, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	if first.Valid {
		u.FirstName = &first.String
	}
	if last.Valid {
		u.LastName = &last.String
	}
	return &u, nil
}

// Create hashes the password with bcrypt and inserts the user.  A duplicate
// email or username is reported with its own sentinel.
func (r *UserRepo) Create(ctx context.Context, in NewUser, cost int) (*model.User, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	hash, err := utils.HashPassword(in.Password, cost)
	if err != nil {
		return nil, err
	}
	role := in.Role
	if role == "" {
		role = model.RoleCustomer
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO users (username, email, password_hash, first_name, last_name, role) VALUES (?, ?, ?, ?, ?, ?)`,
		strings.TrimSpace(in.Username), email, hash, nullableString(in.FirstName), nullableString(in.LastName), role)
	if err != nil {
		if isDuplicate(err) {
			return nil, duplicateUserErr(err)
		}
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, uint64(id))
}

func duplicateUserErr(err error) error {
	var me *mysql.MySQLError
	if errors.As(err, &me) && strings.Contains(me.Message, "username") {
		return ErrUsernameExists
	}
	return ErrEmailExists
}

// GetByLogin accepts either an email address or a username.
func (r *UserRepo) GetByLogin(ctx context.Context, login string) (*model.User, error) {
	login = strings.TrimSpace(login)
	if strings.Contains(login, "@") {
		return r.GetByEmail(ctx, login)
	}
	u, err := scanUser(r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE username = ? LIMIT 1`, login))
	if err != nil {
		return nil, notFound(err)
	}
	return u, nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	u, err := scanUser(r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = ? LIMIT 1`, email))
	if err != nil {
		return nil, notFound(err)
	}
	return u, nil
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (*model.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ? LIMIT 1`, id))
	if err != nil {
		return nil, notFound(err)
	}
	return u, nil
}
