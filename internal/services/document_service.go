package services

import (
	"context"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/markdave123-py/docfields/internal/core"
	"github.com/markdave123-py/docfields/internal/models"
)

const maxPresignExpiry = 7 * 24 * time.Hour

// UploadedDocument is returned after a successful upload.
type UploadedDocument struct {
	Bucket string `json:"bucket"`
	Key    string `json:"key"`
	URL    string `json:"url"`
}

// DocumentService stores documents that are later submitted for extraction.
type DocumentService struct {
	storage       core.ObjectClient
	bucket        string
	presignExpiry time.Duration
}

func NewDocumentService(storage core.ObjectClient, bucket string, presignExpiry time.Duration) *DocumentService {
	return &DocumentService{storage: storage, bucket: bucket, presignExpiry: presignExpiry}
}

func (s *DocumentService) Upload(ctx context.Context, bucket, filename, contentType string, data io.Reader) (*UploadedDocument, error) {
	bucket, err := s.resolveBucket(bucket)
	if err != nil {
		return nil, err
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	key := s.objectKey(uuid.NewString(), filename)
	url, err := s.storage.UploadFile(ctx, bucket, key, data, contentType)
	if err != nil {
		return nil, err
	}
	return &UploadedDocument{Bucket: bucket, Key: key, URL: url}, nil
}

func (s *DocumentService) List(ctx context.Context, bucket, prefix string) ([]models.StoredObject, error) {
	bucket, err := s.resolveBucket(bucket)
	if err != nil {
		return nil, err
	}
	return s.storage.ListFiles(ctx, bucket, prefix)
}

func (s *DocumentService) Fetch(ctx context.Context, bucket, key string) ([]byte, error) {
	bucket, err := s.resolveBucket(bucket)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(key) == "" {
		return nil, fmt.Errorf("%w: key is required", core.ErrInvalidArgument)
	}
	return s.storage.GetFile(ctx, bucket, key)
}

// PresignURL issues a presigned GET URL. A zero expiry uses the configured default.
func (s *DocumentService) PresignURL(ctx context.Context, bucket, key string, expiry time.Duration) (string, error) {
	bucket, err := s.resolveBucket(bucket)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(key) == "" {
		return "", fmt.Errorf("%w: key is required", core.ErrInvalidArgument)
	}
	if expiry == 0 {
		expiry = s.presignExpiry
	}
	if expiry < 0 || expiry > maxPresignExpiry {
		return "", fmt.Errorf("%w: expiry must be between 1s and %s", core.ErrInvalidArgument, maxPresignExpiry)
	}
	return s.storage.PresignGet(ctx, bucket, key, expiry)
}

func (s *DocumentService) resolveBucket(bucket string) (string, error) {
	if bucket = strings.TrimSpace(bucket); bucket != "" {
		return bucket, nil
	}
	if s.bucket == "" {
		return "", fmt.Errorf("%w: bucket is required", core.ErrInvalidArgument)
	}
	return s.bucket, nil
}

// objectKey creates a consistent S3 key layout.
func (s *DocumentService) objectKey(docID, filename string) string {
	filename = strings.TrimSpace(filepath.Base(filename))
	filename = strings.ReplaceAll(filename, " ", "_")
	if filename == "" || filename == "." || filename == "/" {
		filename = "document"
	}
	return path.Join("documents", docID, filename)
}
