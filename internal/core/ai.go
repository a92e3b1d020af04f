package core

import "context"

// LLMProvider turns a prompt into a single text completion.
type LLMProvider interface {
	Complete(ctx context.Context, prompt string) (string, error)
}
