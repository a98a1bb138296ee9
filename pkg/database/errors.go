package database

import (
	"net/http"

	"github.com/lib/pq"
	"github.com/resumeflow/resumeflow-backend/pkg/errors"
)

// MapPQError converts a PostgreSQL error to an AppError with a meaningful message.
// Returns nil if the error is not a pq.Error or has no specific mapping.
func MapPQError(err error) *errors.AppError {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return nil
	}

	switch pqErr.Code {
	// Check constraint violation (23514)
	case "23514":
		return errors.BadRequest("data validation failed: " + pqErr.Constraint)

	// Unique constraint violation (23505)
	case "23505":
		return errors.Wrap(pqErr, "CONFLICT", "a record with these values already exists", http.StatusConflict)

	// Not null violation (23502)
	case "23502":
		col := pqErr.Column
		if col == "" {
			col = "required field"
		}
		return errors.Validation(map[string]string{
			col: "must not be empty",
		})

	// Undefined table (42P01)
	case "42P01":
		return errors.Wrap(pqErr, "SCHEMA_MISSING", "audit schema is missing, run migrations", http.StatusInternalServerError)

	default:
		return nil
	}
}
