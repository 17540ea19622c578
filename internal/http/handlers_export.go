package httpx

import (
	"context"
	"errors"
	"net/http"

	"github.com/bulkport/bulkport/internal/domain/model"
	apperrors "github.com/bulkport/bulkport/internal/errors"
	"github.com/bulkport/bulkport/internal/exporter"
)

// ExportHandlers serves streaming table exports.
type ExportHandlers struct {
	Exporter *exporter.Service
}

// Export handles GET /v1/exports?resource=&format=: the whole table streamed
// as NDJSON. The format defaults to ndjson when omitted.
func (h *ExportHandlers) Export(w http.ResponseWriter, r *http.Request) {
	var resource model.Resource
	if err := resource.UnmarshalText([]byte(r.URL.Query().Get("resource"))); err != nil {
		RenderError(w, apperrors.Wrap(err, apperrors.ErrCodeValidation, "invalid resource"))
		return
	}

	format := model.Format(r.URL.Query().Get("format"))
	if format == "" {
		format = model.FormatNDJSON
	}

	req := exporter.StreamRequest{Resource: resource, Format: format}
	if !format.Valid() {
		// Reject before any headers are committed.
		RenderError(w, apperrors.Validationf("unsupported export format: %q", format))
		return
	}

	w.Header().Set("Content-Type", "application/x-ndjson")
	if _, err := h.Exporter.Stream(r.Context(), req, w); err != nil {
		// Headers are gone once streaming starts; a client disconnect is the
		// common cause and needs no response anyway.
		if !errors.Is(err, context.Canceled) {
			RenderError(w, err)
		}
	}
}
