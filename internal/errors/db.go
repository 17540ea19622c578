package errors

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Regular expressions for parsing PgError.Detail messages.
var (
	// reKeyField extracts field name from unique violation detail: "Key (field)=(value) already exists.".
	reKeyField = regexp.MustCompile(`Key \(([^)]+)\)=`)
	// reNotPresent detects missing parent: "... is not present in table ...".
	reNotPresent = regexp.MustCompile(`is not present in table "?([^"]+)"?`)
)

// MapDBError maps database errors to AppError instances:
// pgx.ErrNoRows → NotFound, unique violations → Conflict, foreign key
// violations → ForeignKey, check/not-null violations → Validation, and
// context timeouts/cancellations → Timeout/Canceled.
//
// If the error is not a recognized database error, the original error is returned.
func MapDBError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return &AppError{Code: ErrCodeTimeout, Message: "database operation timed out", Cause: err}
	}
	if errors.Is(err, context.Canceled) {
		return &AppError{Code: ErrCodeCanceled, Message: "database operation was canceled", Cause: err}
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return &AppError{Code: ErrCodeNotFound, Message: "resource not found", Cause: err}
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return mapPgError(pgErr)
	}

	return err
}

func mapPgError(pgErr *pgconn.PgError) error {
	switch pgErr.Code {
	case pgerrcode.UniqueViolation:
		return mapUniqueViolation(pgErr)
	case pgerrcode.ForeignKeyViolation:
		return mapForeignKeyViolation(pgErr)
	case pgerrcode.CheckViolation, pgerrcode.NotNullViolation:
		return mapConstraintViolation(pgErr)
	default:
		return &AppError{Code: ErrCodeInternal, Message: "a database error occurred", Cause: pgErr}
	}
}

// mapUniqueViolation maps unique constraint violations to Conflict errors.
func mapUniqueViolation(pgErr *pgconn.PgError) error {
	field := pgErr.ColumnName

	// Parse Detail for "Key (field)=(value) already exists." when column
	// metadata is absent (the common case for named constraints).
	if field == "" && pgErr.Detail != "" {
		if m := reKeyField.FindStringSubmatch(pgErr.Detail); len(m) == 2 {
			field = m[1]
		}
	}

	// Last resort: infer from constraint names like "uq_users_email".
	if field == "" {
		field = inferFieldFromConstraint(pgErr.ConstraintName)
	}

	return &AppError{
		Code:    ErrCodeConflict,
		Message: "value already exists",
		Field:   field,
		Cause:   pgErr,
	}
}

// mapForeignKeyViolation maps foreign key constraint violations to ForeignKey errors.
func mapForeignKeyViolation(pgErr *pgconn.PgError) error {
	message := "referenced row does not exist"
	if pgErr.Detail != "" {
		if m := reNotPresent.FindStringSubmatch(pgErr.Detail); len(m) == 2 {
			message = "referenced " + tableToResource(m[1]) + " does not exist"
		}
	}

	return &AppError{Code: ErrCodeForeignKey, Message: message, Cause: pgErr}
}

// mapConstraintViolation maps CHECK and NOT NULL violations to Validation errors.
func mapConstraintViolation(pgErr *pgconn.PgError) error {
	return &AppError{
		Code:    ErrCodeValidation,
		Message: "row violates a schema constraint",
		Field:   pgErr.ColumnName,
		Cause:   pgErr,
	}
}

// inferFieldFromConstraint attempts to infer the field name from constraint
// names following the "uq_table_field" / "table_field_key" patterns.
// Returns empty string if inference is ambiguous.
func inferFieldFromConstraint(constraintName string) string {
	if constraintName == "" {
		return ""
	}
	parts := strings.Split(constraintName, "_")
	if len(parts) != 3 {
		return ""
	}
	if parts[0] == "uq" || parts[0] == "fk" {
		return parts[2]
	}
	return parts[1]
}

// tableToResource maps table names to the resource names used on the wire.
func tableToResource(tableName string) string {
	switch strings.ToLower(strings.TrimSpace(tableName)) {
	case "users":
		return "user"
	case "articles":
		return "article"
	case "comments":
		return "comment"
	case "jobs":
		return "job"
	default:
		return strings.ReplaceAll(tableName, "_", " ")
	}
}
