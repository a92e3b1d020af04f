package ocr

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"github.com/markdave123-py/docfields/internal/core"
	"github.com/markdave123-py/docfields/internal/models"
)

// Aggregator collects the paginated block stream of an OCR job into per-page results.
type Aggregator struct {
	provider core.OCRProvider
	logger   *slog.Logger
}

func NewAggregator(provider core.OCRProvider, logger *slog.Logger) *Aggregator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Aggregator{provider: provider, logger: logger}
}

// pageBuilder accumulates one page while pagination responses are consumed.
type pageBuilder struct {
	result models.PageResult
	text   strings.Builder
}

// GetResults returns the job's status and, once it succeeded, its pages sorted by
// page number. An empty pages filter selects every page. Provider failures never
// surface as an error; they are reported as an "ERROR: <msg>" status.
func (a *Aggregator) GetResults(ctx context.Context, ocrJobID string, pages []int) models.OcrJobResult {
	first, err := a.provider.FetchPage(ctx, ocrJobID, nil)
	if err != nil {
		return errorResult(err)
	}

	switch first.Status {
	case models.StatusInProgress, models.StatusFailed:
		return models.OcrJobResult{Status: string(first.Status)}
	case models.StatusSucceeded:
	default:
		return models.OcrJobResult{Status: string(models.StatusUnknown)}
	}

	filter := make(map[int]struct{}, len(pages))
	for _, p := range pages {
		filter[p] = struct{}{}
	}

	byPage := make(map[int]*pageBuilder)
	resp := first
	fetched := 1
	for {
		for _, b := range resp.Blocks {
			if b.Kind != models.BlockPage && b.Kind != models.BlockLine {
				continue
			}
			if len(filter) > 0 {
				if _, ok := filter[b.Page]; !ok {
					continue
				}
			}

			pb, ok := byPage[b.Page]
			if !ok {
				pb = &pageBuilder{result: models.PageResult{Page: b.Page, Lines: []models.LineInfo{}}}
				byPage[b.Page] = pb
			}
			if b.Kind == models.BlockLine {
				var conf float32
				if b.Confidence != nil {
					conf = *b.Confidence
				}
				pb.result.Lines = append(pb.result.Lines, models.LineInfo{ID: b.ID, Text: b.Text, Confidence: conf})
				pb.text.WriteString(b.Text)
				pb.text.WriteByte('\n')
			}
		}

		if resp.NextToken == nil {
			break
		}
		resp, err = a.provider.FetchPage(ctx, ocrJobID, resp.NextToken)
		if err != nil {
			return errorResult(err)
		}
		fetched++
	}

	out := make([]models.PageResult, 0, len(byPage))
	for _, pb := range byPage {
		pb.result.Text = pb.text.String()
		out = append(out, pb.result)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Page < out[j].Page })

	a.logger.Debug("ocr results aggregated", "ocr_job_id", ocrJobID, "responses", fetched, "pages", len(out))
	return models.OcrJobResult{Status: string(models.StatusSucceeded), Results: out}
}

func errorResult(err error) models.OcrJobResult {
	return models.OcrJobResult{Status: "ERROR: " + err.Error()}
}
