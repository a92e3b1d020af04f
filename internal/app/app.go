package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"golang.org/x/sync/errgroup"

	"github.com/markdave123-py/docfields/internal/config"
	"github.com/markdave123-py/docfields/internal/core"
	db "github.com/markdave123-py/docfields/internal/core/database"
	engine "github.com/markdave123-py/docfields/internal/core/extraction_engine"
	"github.com/markdave123-py/docfields/internal/core/llm"
	objectclient "github.com/markdave123-py/docfields/internal/core/object-client"
	"github.com/markdave123-py/docfields/internal/core/ocr"
	"github.com/markdave123-py/docfields/internal/services"
)

type App struct {
	cfg          *config.Config
	logger       *slog.Logger
	Orchestrator *engine.Orchestrator
	Server       *Server

	closers []io.Closer
}

func NewApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	appCtx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	a := &App{cfg: cfg, logger: logger}

	awsCfg, err := cfg.AWSConfig(appCtx)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	objClient := objectclient.NewS3Client(awsCfg)
	textract := ocr.NewTextractClient(awsCfg)
	logger.Info("aws clients initialized", "region", cfg.AwsRegion)

	llmProvider, err := a.newLLM(appCtx, awsCfg)
	if err != nil {
		a.Close()
		return nil, err
	}

	opts := []engine.Option{engine.WithLogger(logger)}
	var archive core.ResultArchive
	if cfg.DatabaseURL != "" {
		dbClient, err := db.NewDatabaseClient(appCtx, cfg.DatabaseURL)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("init result archive: %w", err)
		}
		a.closers = append(a.closers, dbClient)
		archive = dbClient
		opts = append(opts, engine.WithArchive(archive))
		logger.Info("result archive enabled")
	}

	a.Orchestrator = engine.NewOrchestrator(textract, llmProvider, opts...)
	docs := services.NewDocumentService(objClient, cfg.BucketName, cfg.PresignExpiry)

	a.Server = NewServer(cfg, logger, Deps{
		Extractor:  a.Orchestrator,
		Archive:    archive,
		OCR:        textract,
		Aggregator: ocr.NewAggregator(textract, logger.With("component", "ocr")),
		LLM:        llmProvider,
		Documents:  docs,
	})
	return a, nil
}

func (a *App) newLLM(ctx context.Context, awsCfg aws.Config) (core.LLMProvider, error) {
	switch a.cfg.LLMProvider {
	case config.LLMProviderGemini:
		g, err := llm.NewGeminiLLM(ctx, a.cfg.AIAPIKey, a.cfg.GenModel)
		if err != nil {
			return nil, fmt.Errorf("couldn't initialize the gemini client: %w", err)
		}
		a.closers = append(a.closers, g)
		a.logger.Info("llm provider ready", "provider", "gemini", "model", a.cfg.GenModel)
		return g, nil
	default:
		a.logger.Info("llm provider ready", "provider", "bedrock", "model", a.cfg.BedrockModelID)
		return llm.NewBedrockLLM(awsCfg, a.cfg.BedrockModelID, a.cfg.BedrockMaxTok), nil
	}
}

// Run serves HTTP until ctx is cancelled, then drains the server and in-flight extractions.
func (a *App) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.logger.Info("http server listening", "addr", a.Server.Addr())
		if err := a.Server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
		defer cancel()

		a.logger.Info("shutting down")
		if err := a.Server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http shutdown: %w", err)
		}
		if err := a.Orchestrator.Wait(shutdownCtx); err != nil {
			a.logger.Warn("extractions still running at shutdown", "error", err)
		}
		return nil
	})

	return g.Wait()
}

func (a *App) Close() {
	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			a.logger.Warn("close", "error", err)
		}
	}
}
