package generation

import (
	"context"
	"sync"

	"github.com/m-mizutani/goerr/v2"
)

// Mock is a scripted generation service for tests. Each Generate call
// consumes the next entry of Responses and decodes it into Input.Out
// through the same strict decoder as the real client, so tests exercise
// identical acceptance semantics. Safe for concurrent calls, which the
// operational workshop fan-out performs.
type Mock struct {
	ModelName string
	Responses []string
	// Errors maps a 0-based call index to an error returned instead of
	// a response.
	Errors map[int]error
	Calls  []Input

	mu   sync.Mutex
	next int
}

var _ Service = &Mock{}

// NewMock creates a mock that replies with the given raw documents in order
func NewMock(responses ...string) *Mock {
	return &Mock{
		ModelName: "mock-model",
		Responses: responses,
	}
}

func (m *Mock) Model() string {
	return m.ModelName
}

func (m *Mock) Generate(ctx context.Context, input Input) (*Result, error) {
	m.mu.Lock()
	idx := m.next
	m.next++
	m.Calls = append(m.Calls, input)
	m.mu.Unlock()

	if err, ok := m.Errors[idx]; ok {
		return nil, err
	}
	if idx >= len(m.Responses) {
		return nil, goerr.New("mock generation exhausted", goerr.V("call", idx))
	}

	raw := m.Responses[idx]
	if err := DecodeStrict(raw, input.Out); err != nil {
		return &Result{RawText: raw, Attempts: 1}, err
	}
	return &Result{RawText: raw, Attempts: 1}, nil
}
