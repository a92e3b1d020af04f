package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/markdave123-py/docfields/internal/core"
	"github.com/markdave123-py/docfields/internal/core/ocr"
)

type OCRHandler struct {
	provider   core.OCRProvider
	aggregator *ocr.Aggregator
}

func NewOCRHandler(provider core.OCRProvider, aggregator *ocr.Aggregator) *OCRHandler {
	return &OCRHandler{provider: provider, aggregator: aggregator}
}

func (h *OCRHandler) StartOCR(w http.ResponseWriter, r *http.Request) {
	bucket, key := r.FormValue("bucket"), r.FormValue("key")
	if strings.TrimSpace(bucket) == "" || strings.TrimSpace(key) == "" {
		writeError(w, http.StatusBadRequest, "bucket and key are required")
		return
	}

	jobID, err := h.provider.StartJob(r.Context(), bucket, key)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"jobId":   jobID,
		"message": "OCR processing started. Use the jobId to poll for results.",
	})
}

// GetOCRResults supports ?pages=1,2 (or repeated pages=) to filter pages.
func (h *OCRHandler) GetOCRResults(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	pages, err := parseIntList(r.URL.Query()["pages"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "pages must be a comma separated list of integers")
		return
	}

	writeJSON(w, http.StatusOK, h.aggregator.GetResults(r.Context(), jobID, pages))
}
