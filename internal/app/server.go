package app

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/markdave123-py/docfields/internal/api/handlers"
	"github.com/markdave123-py/docfields/internal/config"
	"github.com/markdave123-py/docfields/internal/core"
	"github.com/markdave123-py/docfields/internal/core/ocr"
	"github.com/markdave123-py/docfields/internal/services"
)

// Deps are the collaborators the HTTP layer is built from.
type Deps struct {
	Extractor  handlers.Extractor
	Archive    core.ResultArchive // optional
	OCR        core.OCRProvider
	Aggregator *ocr.Aggregator
	LLM        core.LLMProvider
	Documents  *services.DocumentService
}

// Server wraps the HTTP server instance and its handlers.
type Server struct {
	httpServer *http.Server
}

// NewServer builds and wires all routes.
func NewServer(cfg *config.Config, logger *slog.Logger, deps Deps) *Server {
	httpSrv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           NewRouter(cfg, deps),
		ReadHeaderTimeout: 10 * time.Second,
		ErrorLog:          slog.NewLogLogger(logger.Handler(), slog.LevelWarn),
	}
	return &Server{httpServer: httpSrv}
}

func NewRouter(cfg *config.Config, deps Deps) http.Handler {
	extractionHandler := handlers.NewExtractionHandler(deps.Extractor, deps.Archive)
	ocrHandler := handlers.NewOCRHandler(deps.OCR, deps.Aggregator)
	llmHandler := handlers.NewLLMHandler(deps.LLM)
	docHandler := handlers.NewDocumentHandler(deps.Documents)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(3 * time.Minute))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CorsOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	r.Route("/api", func(api chi.Router) {
		api.Post("/ocr/start", ocrHandler.StartOCR)
		api.Get("/ocr/results/{jobID}", ocrHandler.GetOCRResults)

		api.Post("/extraction/start", extractionHandler.StartExtraction)
		api.Get("/extraction/results", extractionHandler.GetExtraction)
		api.Get("/extraction/results/{jobID}", extractionHandler.GetExtraction)
		api.Get("/extraction/history", extractionHandler.History)

		api.Post("/llm/playground", llmHandler.Playground)

		api.Post("/documents/upload", docHandler.UploadDocument)
		api.Get("/documents", docHandler.ListDocuments)
		api.Get("/documents/presign", docHandler.PresignDocument)
		api.Get("/documents/object", docHandler.GetDocument)
	})

	return r
}

func (s *Server) Addr() string { return s.httpServer.Addr }

// Start blocks serving HTTP. It returns http.ErrServerClosed after Shutdown.
func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
