package httpx

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	apperrors "github.com/bulkport/bulkport/internal/errors"
)

func TestWriteJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteJSON(rec, http.StatusAccepted, map[string]string{"job_id": "abc"})

	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"job_id":"abc"}`, rec.Body.String())
}

func TestWriteError(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, ErrorParams{
		Code:    http.StatusBadRequest,
		ErrCode: "validation",
		Field:   "x-key",
		Err:     errors.New("idempotency key is required"),
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t,
		`{"error":"validation","field":"x-key","message":"idempotency key is required"}`,
		rec.Body.String())
}

func TestWriteErrorOmitsEmptyField(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, ErrorParams{
		Code:    http.StatusConflict,
		ErrCode: "conflict",
		Err:     errors.New("key already admitted"),
	})

	assert.JSONEq(t, `{"error":"conflict","message":"key already admitted"}`, rec.Body.String())
}

func TestRenderError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantBody string
	}{
		{
			name:     "validation with field",
			err:      apperrors.ValidationField("x-key", "idempotency key is required"),
			wantCode: http.StatusBadRequest,
			wantBody: `{"error":"validation","field":"x-key","message":"idempotency key is required"}`,
		},
		{
			name:     "not found",
			err:      apperrors.NotFound("job not found"),
			wantCode: http.StatusNotFound,
			wantBody: `{"error":"not_found","message":"job not found"}`,
		},
		{
			name:     "plain error falls back to internal",
			err:      errors.New("boom"),
			wantCode: http.StatusInternalServerError,
			wantBody: `{"error":"internal","message":"boom"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			RenderError(rec, tt.err)
			assert.Equal(t, tt.wantCode, rec.Code)
			assert.JSONEq(t, tt.wantBody, rec.Body.String())
		})
	}
}
