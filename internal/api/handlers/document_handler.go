package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/markdave123-py/docfields/internal/models"
	"github.com/markdave123-py/docfields/internal/services"
)

const maxUploadBytes = 52 << 20

type DocumentHandler struct {
	docs *services.DocumentService
}

func NewDocumentHandler(docs *services.DocumentService) *DocumentHandler {
	return &DocumentHandler{docs: docs}
}

// UploadDocument stores a multipart "file" so it can be submitted for extraction.
func (h *DocumentHandler) UploadDocument(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid file")
		return
	}
	defer file.Close()

	doc, err := h.docs.Upload(r.Context(), r.FormValue("bucket"), header.Filename, header.Header.Get("Content-Type"), file)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, doc)
}

func (h *DocumentHandler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	objects, err := h.docs.List(r.Context(), q.Get("bucket"), q.Get("prefix"))
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	if objects == nil {
		objects = []models.StoredObject{}
	}
	writeJSON(w, http.StatusOK, objects)
}

// PresignDocument takes an optional expiry as a Go duration ("10m") or minutes ("10").
func (h *DocumentHandler) PresignDocument(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var expiry time.Duration
	if v := q.Get("expiry"); v != "" {
		d, err := parseExpiry(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid expiry")
			return
		}
		expiry = d
	}

	url, err := h.docs.PresignURL(r.Context(), q.Get("bucket"), q.Get("key"), expiry)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"url": url})
}

func (h *DocumentHandler) GetDocument(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	body, err := h.docs.Fetch(r.Context(), q.Get("bucket"), q.Get("key"))
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	w.Header().Set("Content-Type", http.DetectContentType(body))
	_, _ = w.Write(body)
}

func parseExpiry(v string) (time.Duration, error) {
	if d, err := time.ParseDuration(v); err == nil {
		return d, nil
	}
	mins, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, err
	}
	return time.Duration(mins) * time.Minute, nil
}
