package model

import (
	"time"

	"github.com/cybergard/ebiosgard/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

// Step sequence bounds for an operational scenario
const (
	MinAttackSteps = 3
	MaxAttackSteps = 7
)

// AttackStep is one technical step of an operational scenario
type AttackStep struct {
	Order            int
	Summary          string
	Detail           string
	TargetAssetCodes []types.RefCode
	Kind             types.StepKind
}

// Validate checks a single step in isolation; sequence contiguity is
// checked by the owning scenario.
func (s *AttackStep) Validate() error {
	if s.Summary == "" {
		return goerr.Wrap(types.ErrSchemaViolation, "attack step summary cannot be empty", goerr.V("order", s.Order))
	}
	if !s.Kind.IsValid() {
		return goerr.Wrap(types.ErrSchemaViolation, "attack step kind is unknown",
			goerr.V("order", s.Order), goerr.V("kind", s.Kind))
	}
	return nil
}

// OperationalScenario refines one strategic scenario into an ordered
// technical sequence. Severity is inherited from the parent; only the
// likelihood is re-assessed at the technical level.
type OperationalScenario struct {
	ID                    string
	Code                  types.RefCode
	ProjectID             types.ProjectID
	Title                 string
	Description           string
	StrategicScenarioCode types.RefCode
	Severity              types.Gravity
	Likelihood            types.Likelihood
	Score                 types.Score
	Steps                 []AttackStep
	Justification         string
	Source                types.SourceKind
	OrderIndex            int
	CreatedAt             time.Time
}

// Validate checks the operational scenario fields, the step sequence
// and the score derivation invariant.
func (o *OperationalScenario) Validate() error {
	if o.Title == "" {
		return goerr.Wrap(types.ErrSchemaViolation, "operational scenario title cannot be empty", goerr.V("code", o.Code))
	}
	if len(o.Steps) < MinAttackSteps || len(o.Steps) > MaxAttackSteps {
		return goerr.Wrap(types.ErrSchemaViolation, "operational scenario must have between 3 and 7 steps",
			goerr.V("code", o.Code), goerr.V("count", len(o.Steps)))
	}
	for i := range o.Steps {
		if err := o.Steps[i].Validate(); err != nil {
			return goerr.Wrap(err, "operational scenario step", goerr.V("code", o.Code))
		}
		// Orders must run exactly 1..n with no gap or duplicate.
		if o.Steps[i].Order != i+1 {
			return goerr.Wrap(types.ErrSchemaViolation, "attack step order must be contiguous from 1",
				goerr.V("code", o.Code), goerr.V("position", i+1), goerr.V("order", o.Steps[i].Order))
		}
	}
	if err := o.Severity.Validate(); err != nil {
		return goerr.Wrap(err, "operational scenario severity", goerr.V("code", o.Code))
	}
	if err := o.Likelihood.Validate(); err != nil {
		return goerr.Wrap(err, "operational scenario likelihood", goerr.V("code", o.Code))
	}
	want, err := types.NewScore(o.Severity, o.Likelihood)
	if err != nil {
		return err
	}
	if o.Score != want {
		return goerr.Wrap(types.ErrInvariantBreach, "operational scenario score does not match its factors",
			goerr.V("code", o.Code), goerr.V("score", int(o.Score)), goerr.V("want", int(want)))
	}
	return nil
}
