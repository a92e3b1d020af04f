package llm

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/google/go-cmp/cmp"

	"github.com/markdave123-py/docfields/internal/core"
)

type fakeBedrock struct {
	in  *bedrockruntime.InvokeModelInput
	out []byte
	err error
}

func (f *fakeBedrock) InvokeModel(ctx context.Context, in *bedrockruntime.InvokeModelInput, _ ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error) {
	f.in = in
	if f.err != nil {
		return nil, f.err
	}
	return &bedrockruntime.InvokeModelOutput{Body: f.out}, nil
}

func TestBedrockCompleteBuildsMessagesRequest(t *testing.T) {
	f := &fakeBedrock{out: []byte(`{"content":[{"type":"text","text":"{\"name\":"},{"type":"text","text":"\"Jane\"}"}],"stop_reason":"end_turn"}`)}
	b := &BedrockLLM{api: f, modelID: "anthropic.claude", maxTokens: 256}

	prompt := `Fields: "name"` + "\n---\nOCR Text:\nJane"
	got, err := b.Complete(context.Background(), prompt)
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if got != `{"name":"Jane"}` {
		t.Fatalf("completion = %q", got)
	}

	if aws.ToString(f.in.ModelId) != "anthropic.claude" || aws.ToString(f.in.ContentType) != "application/json" {
		t.Fatalf("unexpected input %+v", f.in)
	}
	var req anthropicRequest
	if err := json.Unmarshal(f.in.Body, &req); err != nil {
		t.Fatalf("request body is not valid JSON: %v", err)
	}
	want := anthropicRequest{
		AnthropicVersion: "bedrock-2023-05-31",
		MaxTokens:        256,
		Messages:         []anthropicMessage{{Role: "user", Content: prompt}},
	}
	if diff := cmp.Diff(want, req); diff != "" {
		t.Fatalf("request mismatch (-want +got):\n%s", diff)
	}
}

func TestBedrockCompleteErrors(t *testing.T) {
	b := &BedrockLLM{api: &fakeBedrock{err: errors.New("throttled")}, modelID: "m", maxTokens: 1}
	if _, err := b.Complete(context.Background(), "p"); !errors.Is(err, core.ErrProvider) {
		t.Fatalf("err = %v, want provider error", err)
	}

	b = &BedrockLLM{api: &fakeBedrock{out: []byte("not json")}, modelID: "m", maxTokens: 1}
	if _, err := b.Complete(context.Background(), "p"); !errors.Is(err, core.ErrProvider) {
		t.Fatalf("decode err = %v, want provider error", err)
	}
}

func TestDecodeAnthropicSkipsNonText(t *testing.T) {
	got, err := decodeAnthropic([]byte(`{"content":[{"type":"tool_use"},{"type":"text","text":"ok"}]}`))
	if err != nil || got != "ok" {
		t.Fatalf("got %q, %v", got, err)
	}
}
