package usecase

import (
	"github.com/cybergard/ebiosgard/pkg/domain/interfaces"
	"github.com/cybergard/ebiosgard/pkg/service/catalog"
	"github.com/cybergard/ebiosgard/pkg/service/generation"
)

// UseCases carries the six workshop stages and the surrounding project
// operations. One value serves every project; all per-run state lives
// in the referential context built for each stage call.
type UseCases struct {
	repo    interfaces.Repository
	gen     generation.Service
	catalog catalog.Service

	// regenerate allows one extra generation pass when a well-formed
	// batch is rejected by validation. Off by default: a forced-rule
	// violation rarely improves by re-asking.
	regenerate bool
}

type Option func(*UseCases)

// WithRegenerateOnRejection enables a single regeneration pass after a
// validation rejection of decodable content.
func WithRegenerateOnRejection(enabled bool) Option {
	return func(uc *UseCases) {
		uc.regenerate = enabled
	}
}

// Regenerate returns a shallow copy with the regeneration policy
// overridden, letting a single request opt in without touching the
// shared instance.
func (uc *UseCases) Regenerate(enabled bool) *UseCases {
	c := *uc
	c.regenerate = enabled
	return &c
}

// New creates the use case layer. The generation service may be nil,
// in which case the generative stages fail and only the pure
// operations (matrix, freeze, reads) are available.
func New(repo interfaces.Repository, gen generation.Service, cat catalog.Service, opts ...Option) *UseCases {
	uc := &UseCases{
		repo:    repo,
		gen:     gen,
		catalog: cat,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}
