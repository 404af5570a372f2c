// Package repository defines error types that are reused across multiple
// repositories.  These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios without
// inspecting driver errors.
package repository

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
)

// ErrNotFound is returned when a lookup matches no row.  Scoped lookups
// (orders of another user) return it too, so callers cannot probe for
// records they do not own.
var ErrNotFound = errors.New("not found")

// ErrConflict is returned when a write violates a uniqueness or
// referential constraint, such as deleting a hall that still has sessions.
var ErrConflict = errors.New("conflict")

// ErrSeatTaken is returned when a ticket would occupy a seat that is
// already booked for the same session.
var ErrSeatTaken = errors.New("seat already taken")

// ErrEmailExists is returned when registering an email twice.
var ErrEmailExists = errors.New("email already exists")

// MySQL error numbers the repositories translate.
const (
	mysqlDuplicateEntry  = 1062
	mysqlRowIsReferenced = 1451
	mysqlNoReferencedRow = 1452
)

// isDuplicateKey reports whether err is a unique-key violation.  SQLite is
// matched by message since the test driver does not expose a typed error.
func isDuplicateKey(err error) bool {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number == mysqlDuplicateEntry
	}
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// isForeignKeyViolation reports whether err is a referential integrity
// failure in either direction (missing parent or existing children).
func isForeignKeyViolation(err error) bool {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number == mysqlRowIsReferenced || me.Number == mysqlNoReferencedRow
	}
	return err != nil && strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}

// translateWriteErr maps constraint failures onto ErrConflict.
func translateWriteErr(err error) error {
	if isDuplicateKey(err) || isForeignKeyViolation(err) {
		return ErrConflict
	}
	return err
}
