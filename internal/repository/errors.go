// Package repository holds the MySQL data access layer.  The sentinel values
// below let higher layers (service, handlers) branch on failure kind with
// errors.Is without knowing anything about SQL.
package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-sql-driver/mysql"
)

// ErrNotFound is returned when a row addressed by id, slug or key does not
// exist.  Handlers translate it into HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrCapacityExceeded is returned by the conditional slot increment when
// the requested seats would push booked_count past capacity.
var ErrCapacityExceeded = errors.New("capacity exceeded")

// ErrInvalidCapacity rejects slot rows with capacity <= 0.
var ErrInvalidCapacity = errors.New("capacity must be positive")

// ErrForbidden is returned when the caller attempts an operation on a
// resource they do not own (e.g. another session's cart line).
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when a write collides with a unique key such as a
// slug.  Handlers translate it into HTTP 409.
var ErrConflict = errors.New("conflict")

var (
	ErrEmailExists    = errors.New("email already exists")
	ErrUsernameExists = errors.New("username already exists")
)

// mysqlDuplicateEntry is ER_DUP_ENTRY.
const mysqlDuplicateEntry = 1062

func isDuplicate(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == mysqlDuplicateEntry
}

// notFound maps sql.ErrNoRows to ErrNotFound and passes other errors through.
func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

// dbtx is satisfied by both *sql.DB and *sql.Tx so a query helper can run
// inside or outside a transaction.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}
