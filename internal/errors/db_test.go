package errors

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

func TestMapDBError_NilError(t *testing.T) {
	if err := MapDBError(nil); err != nil {
		t.Errorf("MapDBError(nil) = %v, want nil", err)
	}
}

func TestMapDBError_ContextErrors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode ErrorCode
	}{
		{"deadline exceeded", context.DeadlineExceeded, ErrCodeTimeout},
		{"canceled", context.Canceled, ErrCodeCanceled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := MapDBError(tt.err); GetCode(err) != tt.wantCode {
				t.Errorf("MapDBError() code = %v, want %v", GetCode(err), tt.wantCode)
			}
		})
	}
}

func TestMapDBError_NoRows(t *testing.T) {
	if err := MapDBError(pgx.ErrNoRows); !IsNotFound(err) {
		t.Errorf("MapDBError(pgx.ErrNoRows) should be NotFound, got %v", GetCode(err))
	}
}

func TestMapDBError_UniqueViolation(t *testing.T) {
	tests := []struct {
		name      string
		pgErr     *pgconn.PgError
		wantField string
	}{
		{
			name: "column name metadata",
			pgErr: &pgconn.PgError{
				Code:           pgerrcode.UniqueViolation,
				ConstraintName: "uq_users_email",
				ColumnName:     "email",
			},
			wantField: "email",
		},
		{
			name: "field parsed from detail",
			pgErr: &pgconn.PgError{
				Code:           pgerrcode.UniqueViolation,
				ConstraintName: "uq_users_email",
				Detail:         `Key (email)=(a@example.com) already exists.`,
			},
			wantField: "email",
		},
		{
			name: "field inferred from constraint name",
			pgErr: &pgconn.PgError{
				Code:           pgerrcode.UniqueViolation,
				ConstraintName: "uq_articles_slug",
			},
			wantField: "slug",
		},
		{
			name: "ambiguous constraint name",
			pgErr: &pgconn.PgError{
				Code:           pgerrcode.UniqueViolation,
				ConstraintName: "some_very_long_constraint_name",
			},
			wantField: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := MapDBError(tt.pgErr)
			if !IsConflict(err) {
				t.Fatalf("MapDBError() code = %v, want conflict", GetCode(err))
			}
			if got := GetField(err); got != tt.wantField {
				t.Errorf("GetField() = %q, want %q", got, tt.wantField)
			}
		})
	}
}

func TestMapDBError_ForeignKeyViolation(t *testing.T) {
	pgErr := &pgconn.PgError{
		Code:           pgerrcode.ForeignKeyViolation,
		ConstraintName: "fk_articles_author",
		Detail:         `Key (author_id)=(u999) is not present in table "users".`,
	}

	err := MapDBError(pgErr)
	if !IsForeignKey(err) {
		t.Fatalf("MapDBError() code = %v, want foreign_key", GetCode(err))
	}
	if !strings.Contains(err.Error(), "referenced user does not exist") {
		t.Errorf("unexpected message: %v", err)
	}
}

func TestMapDBError_ConstraintViolations(t *testing.T) {
	for _, code := range []string{pgerrcode.CheckViolation, pgerrcode.NotNullViolation} {
		err := MapDBError(&pgconn.PgError{Code: code, ColumnName: "body"})
		if !IsValidation(err) {
			t.Errorf("MapDBError(%s) code = %v, want validation", code, GetCode(err))
		}
		if GetField(err) != "body" {
			t.Errorf("MapDBError(%s) field = %q, want body", code, GetField(err))
		}
	}
}

func TestMapDBError_UnknownPgError(t *testing.T) {
	err := MapDBError(&pgconn.PgError{Code: pgerrcode.SerializationFailure})
	if !IsInternal(err) {
		t.Errorf("unknown pg error should map to internal, got %v", GetCode(err))
	}
}

func TestMapDBError_PassesThroughPlainErrors(t *testing.T) {
	plain := errors.New("dial tcp: connection refused")
	if got := MapDBError(plain); !errors.Is(got, plain) {
		t.Errorf("MapDBError() = %v, want original error", got)
	}
}
