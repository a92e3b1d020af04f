package objectclient

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/markdave123-py/docfields/internal/core"
	"github.com/markdave123-py/docfields/internal/models"
)

const maxListKeys = 1000

type S3Client struct {
	client    *s3.Client
	presigner *s3.PresignClient
	region    string
}

var _ core.ObjectClient = (*S3Client)(nil)

func NewS3Client(awsCfg aws.Config) *S3Client {
	client := s3.NewFromConfig(awsCfg)
	return &S3Client{
		client:    client,
		presigner: s3.NewPresignClient(client),
		region:    awsCfg.Region,
	}
}

// UploadFile uploads a file to S3 and returns its virtual-hosted URL.
func (c *S3Client) UploadFile(ctx context.Context, bucket, key string, data io.Reader, contentType string) (string, error) {
	uploader := manager.NewUploader(c.client)

	input := &s3.PutObjectInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(key),
		Body:        data,
		ContentType: aws.String(contentType),
	}

	ctxUpload, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	if _, err := uploader.Upload(ctxUpload, input); err != nil {
		return "", core.NewProviderError("s3", "upload", err)
	}

	return ObjectURL(bucket, c.region, key), nil
}

func (c *S3Client) GetFile(ctx context.Context, bucket, key string) ([]byte, error) {
	ctxGet, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	resp, err := c.client.GetObject(ctxGet, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, core.NewProviderError("s3", "get", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	return body, nil
}

// ListFiles lists up to 1000 objects under prefix, following continuation tokens.
func (c *S3Client) ListFiles(ctx context.Context, bucket, prefix string) ([]models.StoredObject, error) {
	input := &s3.ListObjectsV2Input{Bucket: aws.String(bucket)}
	if prefix != "" {
		input.Prefix = aws.String(prefix)
	}

	var out []models.StoredObject
	p := s3.NewListObjectsV2Paginator(c.client, input)
	for p.HasMorePages() && len(out) < maxListKeys {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, core.NewProviderError("s3", "list", err)
		}
		for _, obj := range page.Contents {
			out = append(out, models.StoredObject{
				Key:          aws.ToString(obj.Key),
				Size:         aws.ToInt64(obj.Size),
				LastModified: aws.ToTime(obj.LastModified),
			})
		}
	}
	if len(out) > maxListKeys {
		out = out[:maxListKeys]
	}
	return out, nil
}

// PresignGet returns a time-limited GET URL for the object.
func (c *S3Client) PresignGet(ctx context.Context, bucket, key string, expiry time.Duration) (string, error) {
	req, err := c.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(expiry))
	if err != nil {
		return "", core.NewProviderError("s3", "presign", err)
	}
	return req.URL, nil
}

// ObjectURL is the virtual-hosted style URL of an object.
func ObjectURL(bucket, region, key string) string {
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", bucket, region, key)
}
