package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"

	"github.com/markdave123-py/docfields/internal/core"
)

const (
	anthropicVersion = "bedrock-2023-05-31"
	completeTimeout  = 2 * time.Minute
)

type bedrockAPI interface {
	InvokeModel(ctx context.Context, in *bedrockruntime.InvokeModelInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error)
}

// BedrockLLM calls an Anthropic messages model hosted on Bedrock.
type BedrockLLM struct {
	api       bedrockAPI
	modelID   string
	maxTokens int
}

func NewBedrockLLM(awsCfg aws.Config, modelID string, maxTokens int) *BedrockLLM {
	if maxTokens <= 0 {
		maxTokens = 1024
	}
	return &BedrockLLM{api: bedrockruntime.NewFromConfig(awsCfg), modelID: modelID, maxTokens: maxTokens}
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicRequest struct {
	AnthropicVersion string             `json:"anthropic_version"`
	MaxTokens        int                `json:"max_tokens"`
	Messages         []anthropicMessage `json:"messages"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
}

func (b *BedrockLLM) Complete(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(anthropicRequest{
		AnthropicVersion: anthropicVersion,
		MaxTokens:        b.maxTokens,
		Messages:         []anthropicMessage{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return "", fmt.Errorf("encode bedrock request: %w", err)
	}

	ctxInvoke, cancel := context.WithTimeout(ctx, completeTimeout)
	defer cancel()

	out, err := b.api.InvokeModel(ctxInvoke, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(b.modelID),
		ContentType: aws.String("application/json"),
		Accept:      aws.String("application/json"),
		Body:        body,
	})
	if err != nil {
		return "", core.NewProviderError("bedrock", "invoke model", err)
	}
	return decodeAnthropic(out.Body)
}

// decodeAnthropic concatenates the text parts of a messages response.
func decodeAnthropic(raw []byte) (string, error) {
	var resp anthropicResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return "", core.NewProviderError("bedrock", "decode response", err)
	}
	var sb strings.Builder
	for _, c := range resp.Content {
		if c.Type == "text" {
			sb.WriteString(c.Text)
		}
	}
	return sb.String(), nil
}

var _ core.LLMProvider = (*BedrockLLM)(nil)
