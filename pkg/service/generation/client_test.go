package generation_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cybergard/ebiosgard/pkg/domain/types"
	"github.com/cybergard/ebiosgard/pkg/service/generation"
	"github.com/m-mizutani/gollem"
	"github.com/m-mizutani/gt"
)

// mockLLMSession is a scripted gollem Session
type mockLLMSession struct {
	generateContentFn func(ctx context.Context, input ...gollem.Input) (*gollem.Response, error)
}

func (s *mockLLMSession) Generate(ctx context.Context, input []gollem.Input, opts ...gollem.GenerateOption) (*gollem.Response, error) {
	return s.GenerateContent(ctx, input...)
}

func (s *mockLLMSession) Stream(ctx context.Context, input []gollem.Input, opts ...gollem.GenerateOption) (<-chan *gollem.Response, error) {
	return nil, nil
}

func (s *mockLLMSession) GenerateContent(ctx context.Context, input ...gollem.Input) (*gollem.Response, error) {
	if s.generateContentFn != nil {
		return s.generateContentFn(ctx, input...)
	}
	return &gollem.Response{Texts: []string{"{}"}}, nil
}

func (s *mockLLMSession) GenerateStream(ctx context.Context, input ...gollem.Input) (<-chan *gollem.Response, error) {
	return nil, nil
}

func (s *mockLLMSession) History() (*gollem.History, error) {
	return nil, nil
}

func (s *mockLLMSession) AppendHistory(*gollem.History) error {
	return nil
}

func (s *mockLLMSession) CountToken(ctx context.Context, input ...gollem.Input) (int, error) {
	return 0, nil
}

// mockLLMClient is a scripted gollem LLMClient
type mockLLMClient struct {
	newSessionFn func(ctx context.Context, options ...gollem.SessionOption) (gollem.Session, error)
}

func (c *mockLLMClient) NewSession(ctx context.Context, options ...gollem.SessionOption) (gollem.Session, error) {
	if c.newSessionFn != nil {
		return c.newSessionFn(ctx, options...)
	}
	return &mockLLMSession{}, nil
}

func (c *mockLLMClient) GenerateEmbedding(ctx context.Context, dimension int, input []string) ([][]float64, error) {
	return nil, nil
}

func newTestClient(t *testing.T, llm gollem.LLMClient) generation.Service {
	t.Helper()
	svc, err := generation.New(llm, "test-model",
		generation.WithMaxAttempts(3),
		generation.WithInitialInterval(time.Millisecond),
	)
	gt.NoError(t, err).Required()
	return svc
}

type testPayload struct {
	Label string `json:"label"`
}

func scriptedClient(responses ...func() (*gollem.Response, error)) *mockLLMClient {
	call := 0
	return &mockLLMClient{
		newSessionFn: func(ctx context.Context, options ...gollem.SessionOption) (gollem.Session, error) {
			return &mockLLMSession{
				generateContentFn: func(ctx context.Context, input ...gollem.Input) (*gollem.Response, error) {
					fn := responses[call]
					if call < len(responses)-1 {
						call++
					}
					return fn()
				},
			}, nil
		},
	}
}

func TestGenerate_DecodesCleanOutput(t *testing.T) {
	svc := newTestClient(t, scriptedClient(func() (*gollem.Response, error) {
		return &gollem.Response{Texts: []string{`{"label": "supply chain compromise"}`}}, nil
	}))

	var out testPayload
	res, err := svc.Generate(context.Background(), generation.Input{
		UserPrompt: "generate",
		Out:        &out,
	})
	gt.NoError(t, err).Required()

	gt.V(t, out.Label).Equal("supply chain compromise")
	gt.V(t, res.Attempts).Equal(1)
}

func TestGenerate_StripsMarkdownFences(t *testing.T) {
	svc := newTestClient(t, scriptedClient(func() (*gollem.Response, error) {
		return &gollem.Response{Texts: []string{"```json\n{\"label\": \"fenced\"}\n```"}}, nil
	}))

	var out testPayload
	_, err := svc.Generate(context.Background(), generation.Input{
		UserPrompt: "generate",
		Out:        &out,
	})
	gt.NoError(t, err).Required()
	gt.V(t, out.Label).Equal("fenced")
}

func TestGenerate_RetriesTransportFailure(t *testing.T) {
	svc := newTestClient(t, scriptedClient(
		func() (*gollem.Response, error) { return nil, errors.New("connection reset") },
		func() (*gollem.Response, error) {
			return &gollem.Response{Texts: []string{`{"label": "second try"}`}}, nil
		},
	))

	var out testPayload
	res, err := svc.Generate(context.Background(), generation.Input{
		UserPrompt: "generate",
		Out:        &out,
	})
	gt.NoError(t, err).Required()

	gt.V(t, out.Label).Equal("second try")
	gt.V(t, res.Attempts).Equal(2)
}

func TestGenerate_RetriesBrokenJSON(t *testing.T) {
	svc := newTestClient(t, scriptedClient(
		func() (*gollem.Response, error) {
			return &gollem.Response{Texts: []string{`{"label": "trunc`}}, nil
		},
		func() (*gollem.Response, error) {
			return &gollem.Response{Texts: []string{`{"label": "whole"}`}}, nil
		},
	))

	var out testPayload
	res, err := svc.Generate(context.Background(), generation.Input{
		UserPrompt: "generate",
		Out:        &out,
	})
	gt.NoError(t, err).Required()
	gt.V(t, out.Label).Equal("whole")
	gt.V(t, res.Attempts).Equal(2)
}

func TestGenerate_UnknownFieldIsNotRetried(t *testing.T) {
	calls := 0
	llm := &mockLLMClient{
		newSessionFn: func(ctx context.Context, options ...gollem.SessionOption) (gollem.Session, error) {
			return &mockLLMSession{
				generateContentFn: func(ctx context.Context, input ...gollem.Input) (*gollem.Response, error) {
					calls++
					return &gollem.Response{Texts: []string{`{"label": "x", "gravite": 4}`}}, nil
				},
			}, nil
		},
	}
	svc := newTestClient(t, llm)

	var out testPayload
	_, err := svc.Generate(context.Background(), generation.Input{
		UserPrompt: "generate",
		Out:        &out,
	})
	gt.Error(t, err)
	gt.B(t, errors.Is(err, types.ErrSchemaViolation)).True()
	gt.V(t, calls).Equal(1)
}

func TestGenerate_ExhaustsAttempts(t *testing.T) {
	calls := 0
	llm := &mockLLMClient{
		newSessionFn: func(ctx context.Context, options ...gollem.SessionOption) (gollem.Session, error) {
			return &mockLLMSession{
				generateContentFn: func(ctx context.Context, input ...gollem.Input) (*gollem.Response, error) {
					calls++
					return nil, errors.New("unavailable")
				},
			}, nil
		},
	}
	svc := newTestClient(t, llm)

	var out testPayload
	_, err := svc.Generate(context.Background(), generation.Input{
		UserPrompt: "generate",
		Out:        &out,
	})
	gt.Error(t, err)
	gt.B(t, errors.Is(err, types.ErrGeneration)).True()
	gt.V(t, calls).Equal(3)
}

func TestGenerate_EmptyResponseIsGenerationError(t *testing.T) {
	svc, newErr := generation.New(scriptedClient(func() (*gollem.Response, error) {
		return &gollem.Response{Texts: []string{"   "}}, nil
	}), "test-model",
		generation.WithMaxAttempts(1),
		generation.WithInitialInterval(time.Millisecond),
	)
	gt.NoError(t, newErr).Required()

	var out testPayload
	_, err := svc.Generate(context.Background(), generation.Input{
		UserPrompt: "generate",
		Out:        &out,
	})
	gt.Error(t, err)
	gt.B(t, errors.Is(err, types.ErrGeneration)).True()
}

func TestDecodeStrict_TrailingContent(t *testing.T) {
	var out testPayload
	err := generation.DecodeStrict(`{"label": "a"} {"label": "b"}`, &out)
	gt.Error(t, err)
	gt.B(t, errors.Is(err, types.ErrSchemaViolation)).True()
}
