package sqlite

import (
	"errors"
	"strings"

	msqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/Novaotic/craft-compass/pkg/types"
)

// translate maps SQLite constraint failures to the error taxonomy so raw
// storage errors never reach callers. The tables check these conditions
// before writing; translate is the backstop. Non-constraint errors are
// returned unchanged for the caller to wrap.
func translate(err error, entity, name string) error {
	var se *msqlite.Error
	if !errors.As(err, &se) {
		return err
	}
	if se.Code()&0xff != sqlite3.SQLITE_CONSTRAINT {
		return err
	}

	msg := se.Error()
	switch {
	case se.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE,
		se.Code() == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY,
		strings.Contains(msg, "UNIQUE constraint failed"):
		return &types.DuplicateNameError{Entity: entity, Name: name}
	case se.Code() == sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY,
		strings.Contains(msg, "FOREIGN KEY constraint failed"):
		return &types.IntegrityError{Entity: entity, Reason: "foreign key constraint failed"}
	default:
		return &types.ValidationError{Reason: constraintReason(msg)}
	}
}

// constraintReason trims the driver prefix from a constraint message.
func constraintReason(msg string) string {
	if i := strings.Index(msg, "constraint failed"); i >= 0 {
		return msg[i:]
	}
	return msg
}
