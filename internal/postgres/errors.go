package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

const (
	CodeUniqueViolation      = "23505"
	CodeForeignKeyViolation  = "23503"
	CodeSerializationFailure = "40001"
	CodeDeadlockDetected     = "40P01"
)

// ErrCode returns the SQLSTATE of err, or "" when err is not a server error.
func ErrCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// IsContention reports whether err is a transient serialization or deadlock
// failure the caller may retry.
func IsContention(err error) bool {
	code := ErrCode(err)
	return code == CodeSerializationFailure || code == CodeDeadlockDetected
}
