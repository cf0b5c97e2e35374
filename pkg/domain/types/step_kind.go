package types

import (
	"strings"

	"github.com/m-mizutani/goerr/v2"
)

// StepKind classifies one step of an operational attack sequence
type StepKind string

const (
	StepInitialAccess StepKind = "INITIAL_ACCESS"
	StepExecution     StepKind = "EXECUTION"
	StepPersistence   StepKind = "PERSISTENCE"
	StepMovement      StepKind = "MOVEMENT"
	StepImpact        StepKind = "IMPACT"
)

// AllStepKinds returns all valid step kinds
func AllStepKinds() []StepKind {
	return []StepKind{
		StepInitialAccess,
		StepExecution,
		StepPersistence,
		StepMovement,
		StepImpact,
	}
}

// IsValid checks if the step kind is one of the known values
func (k StepKind) IsValid() bool {
	switch k {
	case StepInitialAccess,
		StepExecution,
		StepPersistence,
		StepMovement,
		StepImpact:
		return true
	default:
		return false
	}
}

// String returns the string representation of the step kind
func (k StepKind) String() string {
	return string(k)
}

// ParseStepKind parses a wire value into a step kind. The set is
// closed; anything outside it rejects the whole batch.
func ParseStepKind(s string) (StepKind, error) {
	k := StepKind(strings.ToUpper(strings.TrimSpace(s)))
	if !k.IsValid() {
		return "", goerr.Wrap(ErrSchemaViolation, "unknown step kind", goerr.V("step_kind", s))
	}
	return k, nil
}
