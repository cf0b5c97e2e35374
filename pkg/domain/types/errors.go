package types

import (
	"errors"

	"github.com/m-mizutani/goerr/v2"
)

// Failure taxonomy of the analysis engine. Every rejection of generated
// or stored content wraps exactly one of these sentinels so callers can
// branch on the class without string matching.
var (
	// ErrSchemaViolation: structurally invalid content such as missing
	// fields, out-of-range scales, broken cardinalities or unknown
	// enum members.
	ErrSchemaViolation = goerr.New("schema violation")

	// ErrReferentialIntegrity: a reference to an entity that does not
	// exist in the project's validated state.
	ErrReferentialIntegrity = goerr.New("referential integrity error")

	// ErrPolicyViolation: well-formed content that breaks a method
	// rule, such as a treatment strategy outside its band or an
	// altered inherited severity.
	ErrPolicyViolation = goerr.New("policy violation")

	// ErrGeneration: the generative call failed or returned
	// undecodable output. Transient; eligible for retry.
	ErrGeneration = goerr.New("generation error")

	// ErrInvariantBreach: internal engine state violates a derivation
	// invariant. Always a bug, never caused by generator output.
	ErrInvariantBreach = goerr.New("invariant breach")

	// ErrFrozen: the project is frozen and refuses mutation.
	ErrFrozen = goerr.New("project is frozen")

	// ErrNotFound: the requested entity does not exist.
	ErrNotFound = goerr.New("not found")

	// ErrStageOrder: a workshop was requested before its prerequisites
	// were committed.
	ErrStageOrder = goerr.Wrap(ErrReferentialIntegrity, "workshop prerequisites not satisfied")
)

// Taxonomy names exposed on API surfaces
const (
	TaxonomySchemaViolation      = "SchemaViolation"
	TaxonomyReferentialIntegrity = "ReferentialIntegrityError"
	TaxonomyPolicyViolation      = "PolicyViolation"
	TaxonomyGeneration           = "GenerationError"
	TaxonomyInvariantBreach      = "InvariantBreach"
)

// Taxonomy returns the taxonomy class name of an error, or an empty
// string if the error does not belong to the taxonomy.
func Taxonomy(err error) string {
	switch {
	case errors.Is(err, ErrSchemaViolation):
		return TaxonomySchemaViolation
	case errors.Is(err, ErrReferentialIntegrity):
		return TaxonomyReferentialIntegrity
	case errors.Is(err, ErrPolicyViolation):
		return TaxonomyPolicyViolation
	case errors.Is(err, ErrGeneration):
		return TaxonomyGeneration
	case errors.Is(err, ErrInvariantBreach):
		return TaxonomyInvariantBreach
	default:
		return ""
	}
}
