package core

import (
	"context"
	"io"
	"time"

	"github.com/markdave123-py/docfields/internal/models"
)

// OCRProvider wraps a remote asynchronous OCR service.
type OCRProvider interface {
	StartJob(ctx context.Context, bucket, key string) (ocrJobID string, err error)
	// FetchPage returns one pagination response; token is nil for the first page.
	FetchPage(ctx context.Context, ocrJobID string, token *string) (*models.OcrPage, error)
}

// ObjectClient defines interactions with S3 or any object storage.
// It's abstract so you can replace AWS with MinIO, GCP, etc. easily.
type ObjectClient interface {
	UploadFile(ctx context.Context, bucket, key string, data io.Reader, contentType string) (url string, err error)
	GetFile(ctx context.Context, bucket, key string) ([]byte, error)
	ListFiles(ctx context.Context, bucket, prefix string) ([]models.StoredObject, error)
	PresignGet(ctx context.Context, bucket, key string, expiry time.Duration) (string, error)
}

// ResultArchive records terminal extraction jobs. It is never read back by the pipeline.
type ResultArchive interface {
	SaveExtractionResult(ctx context.Context, res *models.ArchivedResult) error
	ListExtractionResults(ctx context.Context, limit int) ([]models.ArchivedResult, error)
}
