package httpx

import (
	"net/http"

	apperrors "github.com/bulkport/bulkport/internal/errors"
)

// statusForError maps the application error taxonomy onto HTTP status codes.
func statusForError(err error) int {
	switch apperrors.GetCode(err) {
	case apperrors.ErrCodeValidation:
		return http.StatusBadRequest
	case apperrors.ErrCodeNotFound:
		return http.StatusNotFound
	case apperrors.ErrCodeConflict, apperrors.ErrCodeForeignKey:
		return http.StatusConflict
	case apperrors.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	case apperrors.ErrCodeCanceled:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// RenderError writes an error response, preserving the AppError code and the
// offending field when present.
func RenderError(w http.ResponseWriter, err error) {
	code := apperrors.GetCode(err)
	if code == "" {
		code = apperrors.ErrCodeInternal
	}

	WriteError(w, ErrorParams{
		Code:    statusForError(err),
		ErrCode: string(code),
		Field:   apperrors.GetField(err),
		Err:     err,
	})
}
