package pipeline

import (
	"errors"
	"fmt"
)

// ErrNoModule reports a generation request before any module content was set.
var ErrNoModule = errors.New("no module content set")

// ErrObjectiveNotFound reports an unknown learning-objective id.
var ErrObjectiveNotFound = errors.New("learning objective not found")

// ErrNoSuggestion reports an accept request for an objective with no fresh
// alignment verdict to take the suggestion from.
var ErrNoSuggestion = errors.New("no alignment suggestion to accept")

// GenerationFailure wraps a backend call that failed. Surfaced to the user;
// never retried automatically. A previously stored Fresh artifact stays
// usable.
type GenerationFailure struct {
	Stage string
	Err   error
}

func (e *GenerationFailure) Error() string {
	return fmt.Sprintf("%s generation failed: %v", e.Stage, e.Err)
}

func (e *GenerationFailure) Unwrap() error { return e.Err }

// TokenBudgetError reports module content over the token budget.
type TokenBudgetError struct {
	Tokens int
	Budget int
}

func (e *TokenBudgetError) Error() string {
	return fmt.Sprintf("module content is %d tokens, over the %d token budget", e.Tokens, e.Budget)
}
