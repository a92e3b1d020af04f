package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/markdave123-py/docfields/internal/config"
	engine "github.com/markdave123-py/docfields/internal/core/extraction_engine"
	"github.com/markdave123-py/docfields/internal/core/ocr"
	"github.com/markdave123-py/docfields/internal/models"
)

type idleOCR struct{}

func (idleOCR) StartJob(ctx context.Context, bucket, key string) (string, error) { return "ocr-1", nil }

func (idleOCR) FetchPage(ctx context.Context, jobID string, token *string) (*models.OcrPage, error) {
	return &models.OcrPage{Status: models.StatusInProgress}, nil
}

type silentLLM struct{}

func (silentLLM) Complete(ctx context.Context, prompt string) (string, error) { return "{}", nil }

func TestRouterRoutes(t *testing.T) {
	cfg := &config.Config{Port: "0", CorsOrigins: []string{"http://localhost:5173"}}
	orch := engine.NewOrchestrator(idleOCR{}, silentLLM{}, engine.WithPollInterval(time.Millisecond))
	router := NewRouter(cfg, Deps{
		Extractor:  orch,
		OCR:        idleOCR{},
		Aggregator: ocr.NewAggregator(idleOCR{}, nil),
		LLM:        silentLLM{},
	})

	tests := []struct {
		method, target string
		want           int
	}{
		{http.MethodGet, "/healthz", http.StatusOK},
		{http.MethodGet, "/api/ocr/results/ocr-1", http.StatusOK},
		{http.MethodGet, "/api/extraction/results/unknown", http.StatusNotFound},
		{http.MethodGet, "/api/extraction/history", http.StatusNotFound},
		{http.MethodPost, "/api/extraction/start?bucket=b&key=k", http.StatusBadRequest},
		{http.MethodPost, "/api/llm/playground?prompt=hi", http.StatusOK},
		{http.MethodDelete, "/api/extraction/results/x", http.StatusMethodNotAllowed},
	}
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.target, nil))
		if rec.Code != tt.want {
			t.Errorf("%s %s = %d, want %d", tt.method, tt.target, rec.Code, tt.want)
		}
	}
}
