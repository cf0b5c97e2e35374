package model

import (
	"time"

	"github.com/cybergard/ebiosgard/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

// TargetedObjective is what a risk source wants to achieve, tied to the
// feared events it would realize.
type TargetedObjective struct {
	Label            string
	Description      string
	FearedEventCodes []types.RefCode
}

// Validate checks the targeted objective fields
func (o *TargetedObjective) Validate() error {
	if o.Label == "" {
		return goerr.Wrap(types.ErrSchemaViolation, "targeted objective label cannot be empty")
	}
	if len(o.FearedEventCodes) == 0 {
		return goerr.Wrap(types.ErrSchemaViolation, "targeted objective must link at least one feared event",
			goerr.V("objective", o.Label))
	}
	return nil
}

// RiskSource is a threat actor profile considered in the analysis
type RiskSource struct {
	ID            string
	Code          types.RefCode
	ProjectID     types.ProjectID
	Label         string
	Category      string
	Description   string
	Pertinence    types.Pertinence
	Justification string
	Selected      bool
	Objectives    []TargetedObjective
	Source        types.SourceKind
	OrderIndex    int
	CreatedAt     time.Time
}

// Validate checks the risk source fields
func (s *RiskSource) Validate() error {
	if s.Label == "" {
		return goerr.Wrap(types.ErrSchemaViolation, "risk source label cannot be empty", goerr.V("code", s.Code))
	}
	if s.Category == "" {
		return goerr.Wrap(types.ErrSchemaViolation, "risk source category cannot be empty", goerr.V("code", s.Code))
	}
	if err := s.Pertinence.Validate(); err != nil {
		return goerr.Wrap(err, "risk source pertinence", goerr.V("code", s.Code))
	}
	if len(s.Objectives) < 1 || len(s.Objectives) > 5 {
		return goerr.Wrap(types.ErrSchemaViolation, "risk source must carry between 1 and 5 targeted objectives",
			goerr.V("code", s.Code), goerr.V("count", len(s.Objectives)))
	}
	for i := range s.Objectives {
		if err := s.Objectives[i].Validate(); err != nil {
			return goerr.Wrap(err, "risk source objective", goerr.V("code", s.Code), goerr.V("index", i))
		}
	}
	return nil
}
