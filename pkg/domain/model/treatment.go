package model

import (
	"fmt"
	"time"

	"github.com/cybergard/ebiosgard/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

// Action count bounds per treatment decision
const (
	MinTreatmentActions = 1
	MaxTreatmentActions = 5
)

// TreatmentAction is one concrete measure of a treatment decision
type TreatmentAction struct {
	Code             string
	Label            string
	Description      string
	Category         types.ActionCategory
	Priority         types.ActionPriority
	CoveredRiskCodes []types.RefCode
	SuggestedOwner   string
	SuggestedHorizon string
}

// NewActionCode builds the stable code of an action from the risk it
// belongs to and its 1-based sequence, such as ACT_SO02_001.
func NewActionCode(risk types.RefCode, seq int) string {
	return fmt.Sprintf("ACT_%s_%03d", risk, seq)
}

// Validate checks the action fields
func (a *TreatmentAction) Validate() error {
	if a.Label == "" {
		return goerr.Wrap(types.ErrSchemaViolation, "treatment action label cannot be empty", goerr.V("code", a.Code))
	}
	if a.Description == "" {
		return goerr.Wrap(types.ErrSchemaViolation, "treatment action description cannot be empty", goerr.V("code", a.Code))
	}
	if !a.Category.IsValid() {
		return goerr.Wrap(types.ErrSchemaViolation, "treatment action category is unknown",
			goerr.V("code", a.Code), goerr.V("category", a.Category))
	}
	if !a.Priority.IsValid() {
		return goerr.Wrap(types.ErrSchemaViolation, "treatment action priority is unknown",
			goerr.V("code", a.Code), goerr.V("priority", a.Priority))
	}
	if len(a.CoveredRiskCodes) == 0 {
		return goerr.Wrap(types.ErrSchemaViolation, "treatment action must cover at least one risk",
			goerr.V("code", a.Code))
	}
	return nil
}

// TreatmentDecision assigns one strategy and its actions to one risk.
// The strategy must be admissible for the risk's band; that rule is
// enforced at plan level where the band is known.
type TreatmentDecision struct {
	RiskCode           types.RefCode
	Strategy           types.Strategy
	Rationale          string
	ResidualLikelihood types.Likelihood
	Actions            []TreatmentAction
}

// Validate checks the decision fields
func (d *TreatmentDecision) Validate() error {
	if !d.Strategy.IsValid() {
		return goerr.Wrap(types.ErrSchemaViolation, "treatment strategy is unknown",
			goerr.V("risk", d.RiskCode), goerr.V("strategy", d.Strategy))
	}
	if err := d.ResidualLikelihood.Validate(); err != nil {
		return goerr.Wrap(err, "treatment residual likelihood", goerr.V("risk", d.RiskCode))
	}
	if len(d.Actions) < MinTreatmentActions || len(d.Actions) > MaxTreatmentActions {
		return goerr.Wrap(types.ErrSchemaViolation, "treatment decision must carry between 1 and 5 actions",
			goerr.V("risk", d.RiskCode), goerr.V("count", len(d.Actions)))
	}
	for i := range d.Actions {
		if err := d.Actions[i].Validate(); err != nil {
			return goerr.Wrap(err, "treatment action", goerr.V("risk", d.RiskCode), goerr.V("index", i))
		}
	}
	return nil
}

// TreatmentSynthesis is the executive summary of the plan
type TreatmentSynthesis struct {
	Overview        string
	MajorRiskCodes  []types.RefCode
	Recommendations []string
}

// TreatmentPlan is the full AT6 output for one project
type TreatmentPlan struct {
	ProjectID types.ProjectID
	Decisions []TreatmentDecision
	Synthesis TreatmentSynthesis
	Source    types.SourceKind
	CreatedAt time.Time
}

// Decision returns the decision for a risk code, if present
func (p *TreatmentPlan) Decision(risk types.RefCode) (*TreatmentDecision, bool) {
	for i := range p.Decisions {
		if p.Decisions[i].RiskCode == risk {
			return &p.Decisions[i], true
		}
	}
	return nil, false
}
