// Package llm provides the narrow JSON-generation client the orchestrator
// delegates to, with Gemini, OpenAI-compatible and mock implementations.
// Clients make exactly one attempt per call; failure handling belongs to
// the caller.
package llm

import (
	"context"
	"encoding/json"
	"errors"
)

// ErrInvalidJSON reports a model response that is not a JSON document.
var ErrInvalidJSON = errors.New("llm: invalid JSON from model")

// Client generates one JSON payload per call. The prompt carries the
// instructions, the input the serialized stage content.
type Client interface {
	Name() string
	GenerateJSON(ctx context.Context, prompt string, input any) (json.RawMessage, error)
	Close() error
}

type stageKey struct{}

// WithStage tags ctx with the pipeline stage issuing the call.
func WithStage(ctx context.Context, stage string) context.Context {
	return context.WithValue(ctx, stageKey{}, stage)
}

// StageFrom returns the stage tag, or "".
func StageFrom(ctx context.Context) string {
	s, _ := ctx.Value(stageKey{}).(string)
	return s
}
