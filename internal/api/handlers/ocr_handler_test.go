package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/go-cmp/cmp"

	"github.com/markdave123-py/docfields/internal/core"
	"github.com/markdave123-py/docfields/internal/core/ocr"
	"github.com/markdave123-py/docfields/internal/models"
)

type stubOCR struct {
	startErr error
	page     *models.OcrPage
}

func (s *stubOCR) StartJob(ctx context.Context, bucket, key string) (string, error) {
	if s.startErr != nil {
		return "", s.startErr
	}
	return "ocr-" + key, nil
}

func (s *stubOCR) FetchPage(ctx context.Context, jobID string, token *string) (*models.OcrPage, error) {
	return s.page, nil
}

func ocrRouter(provider core.OCRProvider) http.Handler {
	h := NewOCRHandler(provider, ocr.NewAggregator(provider, nil))
	r := chi.NewRouter()
	r.Post("/api/ocr/start", h.StartOCR)
	r.Get("/api/ocr/results/{jobID}", h.GetOCRResults)
	return r
}

func TestStartOCR(t *testing.T) {
	rec := httptest.NewRecorder()
	ocrRouter(&stubOCR{}).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/ocr/start?bucket=docs&key=a.pdf", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp map[string]string
	_ = json.NewDecoder(rec.Body).Decode(&resp)
	if resp["jobId"] != "ocr-a.pdf" {
		t.Fatalf("jobId = %q", resp["jobId"])
	}

	rec = httptest.NewRecorder()
	ocrRouter(&stubOCR{}).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/ocr/start?bucket=docs", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("missing key status = %d, want 400", rec.Code)
	}

	failing := &stubOCR{startErr: core.NewProviderError("textract", "start text detection", errors.New("denied"))}
	rec = httptest.NewRecorder()
	ocrRouter(failing).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/ocr/start?bucket=docs&key=a.pdf", nil))
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("provider failure status = %d, want 502", rec.Code)
	}
}

func TestGetOCRResultsFiltersPages(t *testing.T) {
	provider := &stubOCR{page: &models.OcrPage{
		Status: models.StatusSucceeded,
		Blocks: []models.Block{
			{Kind: models.BlockPage, Page: 1},
			{Kind: models.BlockLine, Page: 1, ID: "a", Text: "first"},
			{Kind: models.BlockPage, Page: 2},
			{Kind: models.BlockLine, Page: 2, ID: "b", Text: "second"},
			{Kind: models.BlockPage, Page: 3},
		},
	}}

	rec := httptest.NewRecorder()
	ocrRouter(provider).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/ocr/results/ocr-1?pages=2,3", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var got models.OcrJobResult
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := models.OcrJobResult{
		Status: "SUCCEEDED",
		Results: []models.PageResult{
			{Page: 2, Text: "second\n", Lines: []models.LineInfo{{ID: "b", Text: "second"}}},
			{Page: 3, Text: "", Lines: []models.LineInfo{}},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("result mismatch (-want +got):\n%s", diff)
	}

	rec = httptest.NewRecorder()
	ocrRouter(provider).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/ocr/results/ocr-1?pages=two", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad pages status = %d, want 400", rec.Code)
	}
}

func TestParseIntList(t *testing.T) {
	got, err := parseIntList([]string{"1, 2", "", "5"})
	if err != nil {
		t.Fatalf("parseIntList: %v", err)
	}
	if diff := cmp.Diff([]int{1, 2, 5}, got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
	if got, _ := parseIntList(nil); got != nil {
		t.Fatalf("empty input = %v, want nil", got)
	}
}
