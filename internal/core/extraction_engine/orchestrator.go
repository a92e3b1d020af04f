package extraction_engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/markdave123-py/docfields/internal/core"
	"github.com/markdave123-py/docfields/internal/core/ocr"
	"github.com/markdave123-py/docfields/internal/models"
)

const (
	DefaultPollInterval    = time.Second
	DefaultMaxPollAttempts = 30

	archiveTimeout = 10 * time.Second
)

// DocumentLocation points at a stored document.
type DocumentLocation struct {
	Bucket string
	Key    string
}

// ocrResults is satisfied by *ocr.Aggregator.
type ocrResults interface {
	GetResults(ctx context.Context, ocrJobID string, pages []int) models.OcrJobResult
}

// Orchestrator runs one background pipeline per extraction job:
// OCR submit, poll, prompt, LLM completion, field parsing.
type Orchestrator struct {
	ocr     core.OCRProvider
	results ocrResults
	llm     core.LLMProvider
	store   *JobStore
	archive core.ResultArchive
	logger  *slog.Logger

	pollInterval time.Duration
	maxAttempts  int

	inflight sync.WaitGroup
}

type Option func(*Orchestrator)

// WithArchive records every terminal job in a. Archive failures are logged only.
func WithArchive(a core.ResultArchive) Option {
	return func(o *Orchestrator) { o.archive = a }
}

func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) { o.logger = l }
}

func WithStore(s *JobStore) Option {
	return func(o *Orchestrator) { o.store = s }
}

// WithPollInterval overrides the delay between OCR polls. Only tests need this.
func WithPollInterval(d time.Duration) Option {
	return func(o *Orchestrator) { o.pollInterval = d }
}

func NewOrchestrator(ocrProvider core.OCRProvider, llm core.LLMProvider, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		ocr:          ocrProvider,
		llm:          llm,
		pollInterval: DefaultPollInterval,
		maxAttempts:  DefaultMaxPollAttempts,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	if o.store == nil {
		o.store = NewJobStore()
	}
	o.logger = o.logger.With("component", "extraction")
	o.results = ocr.NewAggregator(ocrProvider, o.logger)
	return o
}

// Start records a new IN_PROGRESS job and runs its pipeline in the background.
// It fails only when fieldSpec is blank, in which case no job is created.
func (o *Orchestrator) Start(loc DocumentLocation, fieldSpec string) (string, error) {
	if strings.TrimSpace(fieldSpec) == "" {
		return "", fmt.Errorf("%w: fields must not be empty", core.ErrInvalidArgument)
	}

	jobID := uuid.NewString()
	o.store.Put(jobID, models.ExtractionJob{Status: models.StatusInProgress})

	o.inflight.Add(1)
	go o.run(jobID, loc, fieldSpec)

	o.logger.Info("extraction started", "job_id", jobID, "bucket", loc.Bucket, "key", loc.Key)
	return jobID, nil
}

// GetResult returns the job's current state, or a NOT_FOUND state for unknown ids.
func (o *Orchestrator) GetResult(jobID string) models.ExtractionJob {
	job, ok := o.store.Get(jobID)
	if !ok {
		return models.ExtractionJob{ID: jobID, Status: models.StatusNotFound, Error: "Job ID not found"}
	}
	return job
}

// Wait blocks until every started pipeline has reached a terminal state or ctx is done.
func (o *Orchestrator) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		o.inflight.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (o *Orchestrator) run(jobID string, loc DocumentLocation, fieldSpec string) {
	defer o.inflight.Done()

	// No external cancellation: the pipeline always runs to a terminal state.
	ctx := context.Background()
	log := o.logger.With("job_id", jobID)

	fields, err := o.safeExtract(ctx, log, loc, fieldSpec)
	if err != nil {
		log.Warn("extraction failed", "error", err)
		o.finish(ctx, jobID, loc, fieldSpec, models.ExtractionJob{Status: models.StatusFailed, Error: err.Error()})
		return
	}

	log.Info("extraction succeeded", "fields", len(fields))
	o.finish(ctx, jobID, loc, fieldSpec, models.ExtractionJob{Status: models.StatusSucceeded, Fields: fields})
}

// safeExtract converts a panic in the pipeline into an error so the job still terminates.
func (o *Orchestrator) safeExtract(ctx context.Context, log *slog.Logger, loc DocumentLocation, fieldSpec string) (fields map[string]string, err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error("extraction panicked", "panic", r)
			err = fmt.Errorf("internal error: %v", r)
		}
	}()
	return o.extract(ctx, log, loc, fieldSpec)
}

func (o *Orchestrator) extract(ctx context.Context, log *slog.Logger, loc DocumentLocation, fieldSpec string) (map[string]string, error) {
	ocrJobID, err := o.ocr.StartJob(ctx, loc.Bucket, loc.Key)
	if err != nil {
		return nil, err
	}
	log = log.With("ocr_job_id", ocrJobID)
	log.Debug("ocr job submitted")

	result, err := o.pollOCR(ctx, log, ocrJobID)
	if err != nil {
		return nil, err
	}
	if result.Status != string(models.StatusSucceeded) {
		return nil, fmt.Errorf("OCR failed: %s", result.Status)
	}

	var text strings.Builder
	for _, page := range result.Results {
		text.WriteString(page.Text)
		text.WriteByte('\n')
	}

	completion, err := o.llm.Complete(ctx, BuildPrompt(text.String(), fieldSpec))
	if err != nil {
		return nil, err
	}

	fields, perr := parseFields(completion)
	if perr != nil {
		log.Debug("completion is not a json object, used line parsing", "reason", perr)
	}
	return fields, nil
}

// pollOCR polls until the OCR job is SUCCEEDED or FAILED, or the attempt budget runs out.
func (o *Orchestrator) pollOCR(ctx context.Context, log *slog.Logger, ocrJobID string) (models.OcrJobResult, error) {
	var last models.OcrJobResult
	for attempt := 1; attempt <= o.maxAttempts; attempt++ {
		last = o.results.GetResults(ctx, ocrJobID, nil)
		if models.JobStatus(last.Status).Terminal() {
			return last, nil
		}
		log.Debug("ocr not finished", "attempt", attempt, "status", last.Status)

		if attempt == o.maxAttempts {
			break
		}
		t := time.NewTimer(o.pollInterval)
		select {
		case <-t.C:
		case <-ctx.Done():
			t.Stop()
			return last, ctx.Err()
		}
	}
	return last, fmt.Errorf("OCR job timed out after %d attempts (last status %s): %w", o.maxAttempts, last.Status, core.ErrTimeout)
}

func (o *Orchestrator) finish(ctx context.Context, jobID string, loc DocumentLocation, fieldSpec string, job models.ExtractionJob) {
	o.store.Put(jobID, job)

	if o.archive == nil {
		return
	}
	ctxArc, cancel := context.WithTimeout(ctx, archiveTimeout)
	defer cancel()
	err := o.archive.SaveExtractionResult(ctxArc, &models.ArchivedResult{
		JobID:       jobID,
		Bucket:      loc.Bucket,
		ObjectKey:   loc.Key,
		FieldSpec:   fieldSpec,
		Status:      job.Status,
		Fields:      job.Fields,
		Error:       job.Error,
		CompletedAt: time.Now().UTC(),
	})
	if err != nil {
		o.logger.Warn("archive extraction result", "job_id", jobID, "error", err)
	}
}
