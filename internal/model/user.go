package model

import "time"

// User represents an application user record as stored in the `users`
// table.  The password hash never leaves the repository/handler layer.
//
// Fields:
//
//	ID             – primary key identifier of the user.
//	Username       – unique login handle.
//	Email          – unique email address.
//	PasswordHash   – bcrypt hashed password.
//	FirstName      – optional given name.
//	LastName       – optional family name.
//	Role           – CUSTOMER or ADMIN.
//	MembershipTier – tier name or "none".
//	IsActive       – whether the account is active.
type User struct {
	ID             uint64    // users.id
	Username       string    // users.username
	Email          string    // users.email
	PasswordHash   string    // users.password_hash
	FirstName      *string   // users.first_name
	LastName       *string   // users.last_name
	Role           string    // users.role
	MembershipTier string    // users.membership_tier
	IsActive       bool      // users.is_active
	CreatedAt      time.Time // users.created_at
	UpdatedAt      time.Time // users.updated_at
}

// Roles carried in the JWT "role" claim.
const (
	RoleCustomer = "CUSTOMER"
	RoleAdmin    = "ADMIN"
)
