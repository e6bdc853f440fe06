// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as the
// service package to distinguish between different failure scenarios
// without inspecting driver errors. For example, ErrPropertyNotFound is
// returned both when a property does not exist and when it belongs to a
// different landlord, so ownership never leaks through error messages.
package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

// ErrUserNotFound is returned when no users row matches the lookup.
var ErrUserNotFound = errors.New("user not found")

// ErrEmailExists is returned when an insert violates the unique email index.
var ErrEmailExists = errors.New("email already exists")

// ErrPropertyNotFound is returned when a property cannot be found, or is not
// owned by the landlord the query was scoped to.
var ErrPropertyNotFound = errors.New("property not found")

// ErrPhotoNotFound is returned when a photo id does not belong to the
// property it was requested for.
var ErrPhotoNotFound = errors.New("photo not found")

// mysqlDuplicateEntry is the server error number for unique key violations.
const mysqlDuplicateEntry = 1062

// isDuplicate reports whether err is a MySQL duplicate-key error.
func isDuplicate(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == mysqlDuplicateEntry
}
