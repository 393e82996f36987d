package repo

import (
	"errors"

	"entgo.io/ent/dialect/sql/sqlgraph"
)

// ErrNotFound is returned when a lookup or a targeted write matches no row.
var ErrNotFound = errors.New("repo: not found")

// IsNotFound reports whether err is or wraps ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsConstraintError reports whether err is a uniqueness, foreign-key or check
// violation raised by the database.
func IsConstraintError(err error) bool {
	return sqlgraph.IsConstraintError(err)
}

// IsUniqueConstraintError reports whether err is a uniqueness violation.
func IsUniqueConstraintError(err error) bool {
	return sqlgraph.IsUniqueConstraintError(err)
}

// IsForeignKeyConstraintError reports whether err is a foreign-key violation.
func IsForeignKeyConstraintError(err error) bool {
	return sqlgraph.IsForeignKeyConstraintError(err)
}
