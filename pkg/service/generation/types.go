package generation

import (
	"context"

	"github.com/m-mizutani/gollem"
)

// Service defines the interface for structured content generation.
// One call produces one JSON document decoded into Input.Out; the
// implementation retries transient failures but never re-asks the
// generator about content that decoded cleanly.
type Service interface {
	// Generate runs one structured generation
	Generate(ctx context.Context, input Input) (*Result, error)

	// Model returns the identifier of the underlying model for audit records
	Model() string
}

// Input describes one structured generation call
type Input struct {
	SystemPrompt string
	UserPrompt   string
	Schema       *gollem.Parameter
	// Out receives the strictly decoded response; unknown fields in
	// the generator output are rejected.
	Out any
}

// Result reports the raw response and the attempts consumed
type Result struct {
	RawText  string
	Attempts int
}
