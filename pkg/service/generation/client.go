package generation

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/cybergard/ebiosgard/pkg/domain/types"
	"github.com/cybergard/ebiosgard/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
)

// Defaults for the retry policy
const (
	defaultMaxAttempts     = 3
	defaultAttemptTimeout  = 3 * time.Minute
	defaultInitialInterval = 2 * time.Second
)

type client struct {
	llm             gollem.LLMClient
	model           string
	maxAttempts     int
	attemptTimeout  time.Duration
	initialInterval time.Duration
}

var _ Service = &client{}

// Option is a functional option for client configuration
type Option func(*client)

// WithMaxAttempts bounds the retries of one Generate call
func WithMaxAttempts(n int) Option {
	return func(c *client) {
		c.maxAttempts = n
	}
}

// WithAttemptTimeout sets the deadline of each individual model call
func WithAttemptTimeout(d time.Duration) Option {
	return func(c *client) {
		c.attemptTimeout = d
	}
}

// WithInitialInterval sets the first backoff interval between attempts
func WithInitialInterval(d time.Duration) Option {
	return func(c *client) {
		c.initialInterval = d
	}
}

// New creates a generation service on top of an LLM client. The model
// name is only informational, recorded in audit trails.
func New(llm gollem.LLMClient, modelName string, opts ...Option) (Service, error) {
	if llm == nil {
		return nil, goerr.New("LLM client is required")
	}

	c := &client{
		llm:             llm,
		model:           modelName,
		maxAttempts:     defaultMaxAttempts,
		attemptTimeout:  defaultAttemptTimeout,
		initialInterval: defaultInitialInterval,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *client) Model() string {
	return c.model
}

// Generate runs one structured generation with bounded retries. Only
// transport failures, empty responses and broken JSON are retried;
// content that decodes cleanly is never re-asked, and unknown fields
// are a schema violation of the content itself.
func (c *client) Generate(ctx context.Context, input Input) (*Result, error) {
	if input.Out == nil {
		return nil, goerr.New("generation output target is required")
	}

	logger := logging.From(ctx)
	attempts := 0
	var raw string

	operation := func() error {
		attempts++
		text, err := c.callOnce(ctx, input)
		if err != nil {
			if ctx.Err() != nil {
				// Cancellation is never transient.
				return backoff.Permanent(err)
			}
			logger.Warn("generation attempt failed",
				"attempt", attempts,
				"error", err.Error(),
			)
			return err
		}
		raw = text
		if err := DecodeStrict(text, input.Out); err != nil {
			if !isRetryable(err) {
				return backoff.Permanent(err)
			}
			logger.Warn("generation returned undecodable output",
				"attempt", attempts,
				"error", err.Error(),
			)
			return err
		}
		return nil
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(newExponential(c.initialInterval), uint64(c.maxAttempts-1)), //nolint:gosec // maxAttempts is a small positive config value
		ctx,
	)
	if err := backoff.Retry(operation, policy); err != nil {
		return &Result{RawText: raw, Attempts: attempts}, err
	}

	return &Result{RawText: raw, Attempts: attempts}, nil
}

func (c *client) callOnce(ctx context.Context, input Input) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.attemptTimeout)
	defer cancel()

	options := []gollem.SessionOption{
		gollem.WithSessionContentType(gollem.ContentTypeJSON),
	}
	if input.Schema != nil {
		options = append(options, gollem.WithSessionResponseSchema(input.Schema))
	}
	if input.SystemPrompt != "" {
		options = append(options, gollem.WithSessionSystemPrompt(input.SystemPrompt))
	}

	session, err := c.llm.NewSession(ctx, options...)
	if err != nil {
		return "", goerr.Wrap(types.ErrGeneration, "failed to create LLM session", goerr.V("cause", err.Error()))
	}

	resp, err := session.GenerateContent(ctx, gollem.Text(input.UserPrompt))
	if err != nil {
		return "", goerr.Wrap(types.ErrGeneration, "LLM call failed", goerr.V("cause", err.Error()))
	}
	if resp == nil || len(resp.Texts) == 0 || strings.TrimSpace(resp.Texts[0]) == "" {
		return "", goerr.Wrap(types.ErrGeneration, "LLM returned an empty response")
	}
	return resp.Texts[0], nil
}

func newExponential(initial time.Duration) *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = initial
	return b
}

func isRetryable(err error) bool {
	// Undecodable output is transient; malformed content (unknown
	// fields on an otherwise parseable document) is not.
	return types.Taxonomy(err) == types.TaxonomyGeneration
}

// DecodeStrict parses generator output into out, tolerating markdown
// code fences around the document but rejecting unknown fields.
// Unparseable text is a GenerationError and may be retried; a document
// that parses but carries fields outside the contract is a
// SchemaViolation and must not be.
func DecodeStrict(raw string, out any) error {
	text := StripFences(raw)
	dec := json.NewDecoder(strings.NewReader(text))
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		if strings.Contains(err.Error(), "unknown field") {
			return goerr.Wrap(types.ErrSchemaViolation, "generator output carries an unknown field",
				goerr.V("cause", err.Error()))
		}
		return goerr.Wrap(types.ErrGeneration, "generator output is not valid JSON",
			goerr.V("cause", err.Error()))
	}
	// A second document after the first is as suspect as an unknown field.
	if dec.More() {
		return goerr.Wrap(types.ErrSchemaViolation, "generator output carries trailing content")
	}
	return nil
}

// StripFences removes a single markdown code fence wrapping the
// document, such as ```json ... ```.
func StripFences(raw string) string {
	text := strings.TrimSpace(raw)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}
