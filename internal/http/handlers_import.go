package httpx

import (
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/bulkport/bulkport/internal/domain/model"
	apperrors "github.com/bulkport/bulkport/internal/errors"
	"github.com/bulkport/bulkport/internal/importer"
	"github.com/bulkport/bulkport/internal/service"
)

// maxImportMemory bounds the in-memory part of multipart parsing; larger
// uploads spill to disk.
const maxImportMemory = 32 << 20

// ImportHandlers serves job submission and status endpoints.
type ImportHandlers struct {
	Coordinator *importer.Coordinator
	Status      *service.JobStatusService
}

// submitResponse is the wire shape of a submission answer.
type submitResponse struct {
	JobID  string          `json:"job_id"`
	Status model.JobStatus `json:"status"`
}

// Submit handles POST /v1/import: a multipart form carrying a resource name
// and either an inline file or a file_url, keyed by the x-key idempotency
// header.
func (h *ImportHandlers) Submit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxImportMemory); err != nil {
		RenderError(w, apperrors.Wrap(err, apperrors.ErrCodeValidation, "invalid multipart form"))
		return
	}

	var resource model.Resource
	if err := resource.UnmarshalText([]byte(r.FormValue("resource"))); err != nil {
		RenderError(w, apperrors.Wrap(err, apperrors.ErrCodeValidation, "invalid resource"))
		return
	}

	req := importer.SubmitRequest{
		Resource:  resource,
		JobKey:    r.Header.Get("x-key"),
		SourceURL: r.FormValue("file_url"),
	}

	if file, _, err := r.FormFile("file"); err == nil {
		data, readErr := io.ReadAll(file)
		closeErr := file.Close()
		if readErr != nil {
			RenderError(w, apperrors.Wrap(readErr, apperrors.ErrCodeValidation, "failed to read uploaded file"))
			return
		}
		if closeErr != nil {
			RenderError(w, apperrors.Wrap(closeErr, apperrors.ErrCodeInternal, "failed to close uploaded file"))
			return
		}
		req.Data = data
	}

	res, err := h.Coordinator.Submit(r.Context(), req)
	if err != nil {
		RenderError(w, err)
		return
	}

	code := http.StatusAccepted
	if res.AlreadyExists {
		code = http.StatusOK
	}
	WriteJSON(w, code, submitResponse{JobID: res.JobID, Status: res.Status})
}

// GetJob handles GET /v1/import/{job_id}: the status poll.
func (h *ImportHandlers) GetJob(w http.ResponseWriter, r *http.Request) {
	job, err := h.Status.GetStatus(r.Context(), chi.URLParam(r, "job_id"))
	if err != nil {
		RenderError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, job)
}
