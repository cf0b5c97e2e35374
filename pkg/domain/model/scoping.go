package model

import (
	"time"

	"github.com/cybergard/ebiosgard/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

// BusinessValue is an essential asset of the organization: a mission,
// service or piece of information whose compromise matters.
type BusinessValue struct {
	ID          string
	Code        types.RefCode
	ProjectID   types.ProjectID
	Label       string
	Description string
	Criticality types.Gravity
	Source      types.SourceKind
	OrderIndex  int
	CreatedAt   time.Time
}

// Validate checks the business value fields
func (v *BusinessValue) Validate() error {
	if v.Label == "" {
		return goerr.Wrap(types.ErrSchemaViolation, "business value label cannot be empty", goerr.V("code", v.Code))
	}
	if err := v.Criticality.Validate(); err != nil {
		return goerr.Wrap(err, "business value criticality", goerr.V("code", v.Code))
	}
	return nil
}

// SupportingAsset is a technical or organizational component a business
// value rests on.
type SupportingAsset struct {
	ID                string
	Code              types.RefCode
	ProjectID         types.ProjectID
	Label             string
	Kind              string
	Description       string
	Criticality       types.Gravity
	BusinessValueCode types.RefCode
	Source            types.SourceKind
	OrderIndex        int
	CreatedAt         time.Time
}

// Validate checks the supporting asset fields. Reference resolution is
// the referential context's job, not this method's.
func (a *SupportingAsset) Validate() error {
	if a.Label == "" {
		return goerr.Wrap(types.ErrSchemaViolation, "supporting asset label cannot be empty", goerr.V("code", a.Code))
	}
	if a.Kind == "" {
		return goerr.Wrap(types.ErrSchemaViolation, "supporting asset kind cannot be empty", goerr.V("code", a.Code))
	}
	if err := a.Criticality.Validate(); err != nil {
		return goerr.Wrap(err, "supporting asset criticality", goerr.V("code", a.Code))
	}
	return nil
}

// FearedEvent is a dreaded impact on a business value through one or
// more supporting assets. Its severity anchors every downstream score.
type FearedEvent struct {
	ID                string
	Code              types.RefCode
	ProjectID         types.ProjectID
	Label             string
	Description       string
	Criterion         types.SecurityCriterion
	Severity          types.Gravity
	Justification     string
	BusinessValueCode types.RefCode
	AssetCodes        []types.RefCode
	Source            types.SourceKind
	OrderIndex        int
	CreatedAt         time.Time
}

// Validate checks the feared event fields
func (e *FearedEvent) Validate() error {
	if e.Label == "" {
		return goerr.Wrap(types.ErrSchemaViolation, "feared event label cannot be empty", goerr.V("code", e.Code))
	}
	if !e.Criterion.IsValid() {
		return goerr.Wrap(types.ErrSchemaViolation, "feared event criterion is unknown",
			goerr.V("code", e.Code), goerr.V("criterion", e.Criterion))
	}
	if err := e.Severity.Validate(); err != nil {
		return goerr.Wrap(err, "feared event severity", goerr.V("code", e.Code))
	}
	if len(e.AssetCodes) == 0 {
		return goerr.Wrap(types.ErrSchemaViolation, "feared event must target at least one supporting asset",
			goerr.V("code", e.Code))
	}
	return nil
}
