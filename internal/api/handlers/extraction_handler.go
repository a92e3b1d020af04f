package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/markdave123-py/docfields/internal/core"
	engine "github.com/markdave123-py/docfields/internal/core/extraction_engine"
	"github.com/markdave123-py/docfields/internal/models"
)

// Extractor is implemented by *extraction_engine.Orchestrator.
type Extractor interface {
	Start(loc engine.DocumentLocation, fieldSpec string) (string, error)
	GetResult(jobID string) models.ExtractionJob
}

type ExtractionHandler struct {
	extractor Extractor
	archive   core.ResultArchive // nil when no DATABASE_URL
}

func NewExtractionHandler(extractor Extractor, archive core.ResultArchive) *ExtractionHandler {
	return &ExtractionHandler{extractor: extractor, archive: archive}
}

type startExtractionRequest struct {
	Bucket string `json:"bucket"`
	Key    string `json:"key"`
	Fields string `json:"fields"`
}

// StartExtraction accepts bucket, key and fields as query/form values or as a JSON body.
func (h *ExtractionHandler) StartExtraction(w http.ResponseWriter, r *http.Request) {
	var req startExtractionRequest
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	} else {
		req = startExtractionRequest{
			Bucket: r.FormValue("bucket"),
			Key:    r.FormValue("key"),
			Fields: r.FormValue("fields"),
		}
	}

	if strings.TrimSpace(req.Bucket) == "" || strings.TrimSpace(req.Key) == "" {
		writeError(w, http.StatusBadRequest, "bucket and key are required")
		return
	}

	jobID, err := h.extractor.Start(engine.DocumentLocation{Bucket: req.Bucket, Key: req.Key}, req.Fields)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"jobId":   jobID,
		"message": "Extraction job started. Use the jobId to poll for results.",
	})
}

// GetExtraction reads the job id from the path or the jobId query parameter.
func (h *ExtractionHandler) GetExtraction(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	if jobID == "" {
		jobID = r.URL.Query().Get("jobId")
	}
	if jobID == "" {
		writeError(w, http.StatusBadRequest, "jobId is required")
		return
	}

	job := h.extractor.GetResult(jobID)
	if job.Status == models.StatusNotFound {
		writeError(w, http.StatusNotFound, job.Error)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

// History lists archived terminal jobs.
func (h *ExtractionHandler) History(w http.ResponseWriter, r *http.Request) {
	if h.archive == nil {
		writeError(w, http.StatusNotFound, "result archive is not enabled")
		return
	}

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "limit must be an integer")
			return
		}
		limit = n
	}

	results, err := h.archive.ListExtractionResults(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if results == nil {
		results = []models.ArchivedResult{}
	}
	writeJSON(w, http.StatusOK, results)
}
