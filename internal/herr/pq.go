package herr

import (
	"database/sql"
	"errors"

	"github.com/lib/pq"
)

// FromPQ maps a database/sql or lib/pq error into a stable Hecate
// error kind, the way the teacher's handlers map sql.ErrNoRows to a
// 404 by hand. Unknown errors become INTERNAL.
func FromPQ(err error) *Error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		return New(NotFound, "no such row")
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "23505": // unique_violation
			return New(ConstraintViolation, "unique constraint violated: %s", pqErr.Constraint)
		case "23P01": // exclusion_violation
			return New(ConstraintViolation, "exclusion constraint violated: %s", pqErr.Constraint)
		case "23503": // foreign_key_violation
			return New(ConstraintViolation, "foreign key constraint violated: %s", pqErr.Constraint)
		case "23514": // check_violation
			return New(Validation, "check constraint violated: %s", pqErr.Constraint)
		}
	}

	return New(Internal, "database error: %v", err)
}
