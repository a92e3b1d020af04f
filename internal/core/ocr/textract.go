package ocr

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/textract"
	"github.com/aws/aws-sdk-go-v2/service/textract/types"

	"github.com/markdave123-py/docfields/internal/core"
	"github.com/markdave123-py/docfields/internal/models"
)

const (
	providerName = "textract"
	fetchTimeout = 30 * time.Second
)

// textractAPI is the subset of the Textract client used here.
type textractAPI interface {
	StartDocumentTextDetection(ctx context.Context, in *textract.StartDocumentTextDetectionInput, optFns ...func(*textract.Options)) (*textract.StartDocumentTextDetectionOutput, error)
	GetDocumentTextDetection(ctx context.Context, in *textract.GetDocumentTextDetectionInput, optFns ...func(*textract.Options)) (*textract.GetDocumentTextDetectionOutput, error)
}

type TextractClient struct {
	api textractAPI
}

var _ core.OCRProvider = (*TextractClient)(nil)

func NewTextractClient(awsCfg aws.Config) *TextractClient {
	return &TextractClient{api: textract.NewFromConfig(awsCfg)}
}

// StartJob starts asynchronous text detection on an S3 object.
func (c *TextractClient) StartJob(ctx context.Context, bucket, key string) (string, error) {
	out, err := c.api.StartDocumentTextDetection(ctx, &textract.StartDocumentTextDetectionInput{
		DocumentLocation: &types.DocumentLocation{
			S3Object: &types.S3Object{
				Bucket: aws.String(bucket),
				Name:   aws.String(key),
			},
		},
	})
	if err != nil {
		return "", core.NewProviderError(providerName, "start text detection", err)
	}
	jobID := aws.ToString(out.JobId)
	if jobID == "" {
		return "", core.NewProviderError(providerName, "start text detection", fmt.Errorf("empty job id"))
	}
	return jobID, nil
}

// FetchPage fetches one page of detection results.
func (c *TextractClient) FetchPage(ctx context.Context, ocrJobID string, token *string) (*models.OcrPage, error) {
	ctxGet, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	out, err := c.api.GetDocumentTextDetection(ctxGet, &textract.GetDocumentTextDetectionInput{
		JobId:     aws.String(ocrJobID),
		NextToken: token,
	})
	if err != nil {
		return nil, core.NewProviderError(providerName, "get text detection", err)
	}

	page := &models.OcrPage{
		Status: jobStatus(out.JobStatus),
		Blocks: make([]models.Block, 0, len(out.Blocks)),
	}
	if out.NextToken != nil && *out.NextToken != "" {
		page.NextToken = out.NextToken
	}
	for _, b := range out.Blocks {
		page.Blocks = append(page.Blocks, toBlock(b))
	}
	return page, nil
}

func jobStatus(s types.JobStatus) models.JobStatus {
	switch s {
	case types.JobStatusInProgress:
		return models.StatusInProgress
	case types.JobStatusSucceeded:
		return models.StatusSucceeded
	case types.JobStatusFailed:
		return models.StatusFailed
	default:
		// PARTIAL_SUCCESS and anything newer
		return models.StatusUnknown
	}
}

func toBlock(b types.Block) models.Block {
	kind := models.BlockOther
	switch b.BlockType {
	case types.BlockTypePage:
		kind = models.BlockPage
	case types.BlockTypeLine:
		kind = models.BlockLine
	}
	return models.Block{
		Kind:       kind,
		Page:       int(aws.ToInt32(b.Page)),
		ID:         aws.ToString(b.Id),
		Text:       aws.ToString(b.Text),
		Confidence: b.Confidence,
	}
}
