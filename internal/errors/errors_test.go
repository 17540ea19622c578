package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		want string
	}{
		{
			name: "error without cause",
			err: &AppError{
				Code:    ErrCodeNotFound,
				Message: "job not found",
			},
			want: "job not found",
		},
		{
			name: "error with cause",
			err: &AppError{
				Code:    ErrCodeInternal,
				Message: "failed to flush batch",
				Cause:   errors.New("underlying error"),
			},
			want: "failed to flush batch: underlying error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("AppError.Error() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := &AppError{
		Code:    ErrCodeInternal,
		Message: "wrapped error",
		Cause:   cause,
	}

	if unwrapped := err.Unwrap(); !errors.Is(unwrapped, cause) {
		t.Errorf("AppError.Unwrap() = %v, want %v", unwrapped, cause)
	}
}

func TestConstructors(t *testing.T) {
	tests := []struct {
		name     string
		err      *AppError
		wantCode ErrorCode
		wantMsg  string
	}{
		{"NotFound", NotFound("job not found"), ErrCodeNotFound, "job not found"},
		{"NotFoundf", NotFoundf("job %s not found", "abc"), ErrCodeNotFound, "job abc not found"},
		{"Conflict", Conflict("key already admitted"), ErrCodeConflict, "key already admitted"},
		{"Validation", Validation("invalid input"), ErrCodeValidation, "invalid input"},
		{"Validationf", Validationf("invalid resource: %q", "projects"), ErrCodeValidation, `invalid resource: "projects"`},
		{"Internal", Internal("something broke"), ErrCodeInternal, "something broke"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != tt.wantCode {
				t.Errorf("Code = %v, want %v", tt.err.Code, tt.wantCode)
			}
			if tt.err.Message != tt.wantMsg {
				t.Errorf("Message = %v, want %v", tt.err.Message, tt.wantMsg)
			}
		})
	}
}

func TestValidationField(t *testing.T) {
	err := ValidationField("email", "invalid email format")
	if err.Code != ErrCodeValidation {
		t.Errorf("ValidationField().Code = %v, want %v", err.Code, ErrCodeValidation)
	}
	if err.Field != "email" {
		t.Errorf("ValidationField().Field = %v, want email", err.Field)
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("boom")
	err := Wrap(cause, ErrCodeInternal, "stage import payload")
	if err.Code != ErrCodeInternal {
		t.Errorf("Wrap().Code = %v, want %v", err.Code, ErrCodeInternal)
	}
	if !errors.Is(err, cause) {
		t.Error("Wrap() must preserve the cause for errors.Is")
	}
	if Wrap(nil, ErrCodeInternal, "x") != nil {
		t.Error("Wrap(nil) should return nil")
	}
}

func TestIsHelpers(t *testing.T) {
	tests := []struct {
		err  error
		pred func(error) bool
		want bool
	}{
		{NotFound("x"), IsNotFound, true},
		{Conflict("x"), IsConflict, true},
		{Validation("x"), IsValidation, true},
		{&AppError{Code: ErrCodeForeignKey}, IsForeignKey, true},
		{Internal("x"), IsInternal, true},
		{&AppError{Code: ErrCodeTimeout}, IsTimeout, true},
		{&AppError{Code: ErrCodeCanceled}, IsCanceled, true},
		{errors.New("plain"), IsNotFound, false},
		{nil, IsValidation, false},
		// Wrapped AppErrors are still detected through errors.As.
		{fmt.Errorf("outer: %w", Validation("inner")), IsValidation, true},
	}

	for i, tt := range tests {
		if got := tt.pred(tt.err); got != tt.want {
			t.Errorf("case %d: predicate(%v) = %v, want %v", i, tt.err, got, tt.want)
		}
	}
}

func TestGetCodeAndField(t *testing.T) {
	if got := GetCode(ValidationField("slug", "bad slug")); got != ErrCodeValidation {
		t.Errorf("GetCode() = %v, want %v", got, ErrCodeValidation)
	}
	if got := GetField(ValidationField("slug", "bad slug")); got != "slug" {
		t.Errorf("GetField() = %v, want slug", got)
	}
	if got := GetCode(errors.New("plain")); got != "" {
		t.Errorf("GetCode(plain error) = %v, want empty", got)
	}
	if got := GetField(errors.New("plain")); got != "" {
		t.Errorf("GetField(plain error) = %v, want empty", got)
	}
}
