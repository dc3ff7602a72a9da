// Package llm provides text-generation backends behind one capability.
//
// Backend interface - the abstract interface for generation services.
// Each backend implementation hides:
// - API client initialization and authentication
// - Request/response format conversion
// - Provider-specific error classification
// - Where a separate reasoning channel comes from, if any

package llm

import (
	"context"
	"time"
)

// ProbeTimeout bounds status and model-discovery calls.
const ProbeTimeout = 5 * time.Second

// Backend sends one prompt and returns the generated text. Generation is
// non-streaming; ModelConfig.Stream is accepted and ignored.
type Backend interface {
	// Name returns the provider name (for logging and audit records).
	Name() string

	// Generate sends prompt as a single user message.
	Generate(ctx context.Context, prompt string, cfg ModelConfig) (Result, error)
}

// StatusChecker is implemented by backends that can report whether their
// server is reachable.
type StatusChecker interface {
	Status(ctx context.Context) error
}

// ModelLister is implemented by backends that can report the model
// currently served.
type ModelLister interface {
	CurrentModel(ctx context.Context) (string, error)
}
