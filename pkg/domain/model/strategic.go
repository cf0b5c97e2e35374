package model

import (
	"time"
	"unicode/utf8"

	"github.com/cybergard/ebiosgard/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

// minVulnerabilityLabel is the shortest acceptable vulnerability
// statement. Anything shorter is a placeholder, not an analysis.
const minVulnerabilityLabel = 10

// StrategicVulnerability is the ecosystem weakness a strategic scenario
// exploits. The method makes it mandatory; a scenario without a named
// vulnerability is not auditable.
type StrategicVulnerability struct {
	Code        string
	Label       string
	Description string
}

// Validate checks the vulnerability fields
func (v *StrategicVulnerability) Validate() error {
	if v.Label == "" {
		return goerr.Wrap(types.ErrSchemaViolation, "strategic vulnerability label cannot be empty")
	}
	if utf8.RuneCountInString(v.Label) < minVulnerabilityLabel {
		return goerr.Wrap(types.ErrSchemaViolation, "strategic vulnerability label is too short to be meaningful",
			goerr.V("label", v.Label), goerr.V("min_length", minVulnerabilityLabel))
	}
	return nil
}

// StrategicScenario is a high-level attack path: one risk source
// exploiting one vulnerability across supporting assets to realize one
// feared event. Severity is copied from the feared event by the engine;
// the generator only assesses likelihood.
type StrategicScenario struct {
	ID              string
	Code            types.RefCode
	ProjectID       types.ProjectID
	Title           string
	Description     string
	RiskSourceCode  types.RefCode
	FearedEventCode types.RefCode
	Vulnerability   StrategicVulnerability
	AssetCodes      []types.RefCode
	PathSummary     string
	Severity        types.Gravity
	Likelihood      types.Likelihood
	Score           types.Score
	Justification   string
	Source          types.SourceKind
	OrderIndex      int
	CreatedAt       time.Time
}

// Validate checks the strategic scenario fields, including the score
// derivation invariant.
func (s *StrategicScenario) Validate() error {
	if s.Title == "" {
		return goerr.Wrap(types.ErrSchemaViolation, "strategic scenario title cannot be empty", goerr.V("code", s.Code))
	}
	if err := s.Vulnerability.Validate(); err != nil {
		return goerr.Wrap(err, "strategic scenario vulnerability", goerr.V("code", s.Code))
	}
	if len(s.AssetCodes) == 0 {
		return goerr.Wrap(types.ErrSchemaViolation, "strategic scenario must traverse at least one supporting asset",
			goerr.V("code", s.Code))
	}
	if err := s.Severity.Validate(); err != nil {
		return goerr.Wrap(err, "strategic scenario severity", goerr.V("code", s.Code))
	}
	if err := s.Likelihood.Validate(); err != nil {
		return goerr.Wrap(err, "strategic scenario likelihood", goerr.V("code", s.Code))
	}
	want, err := types.NewScore(s.Severity, s.Likelihood)
	if err != nil {
		return err
	}
	if s.Score != want {
		return goerr.Wrap(types.ErrInvariantBreach, "strategic scenario score does not match its factors",
			goerr.V("code", s.Code), goerr.V("score", int(s.Score)), goerr.V("want", int(want)))
	}
	return nil
}
