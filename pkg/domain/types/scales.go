package types

import (
	"github.com/m-mizutani/goerr/v2"
)

// Gravity is the severity scale of the ANSSI method, 1 through 4
type Gravity int

// Gravity levels G1 through G4
const (
	GravityMinor       Gravity = 1
	GravitySignificant Gravity = 2
	GravityMajor       Gravity = 3
	GravityCritical    Gravity = 4
)

// Validate checks if the gravity is within the 1..4 scale
func (g Gravity) Validate() error {
	if g < GravityMinor || g > GravityCritical {
		return goerr.Wrap(ErrSchemaViolation, "gravity must be between 1 and 4", goerr.V("gravity", int(g)))
	}
	return nil
}

// Label returns the ANSSI label of the gravity level
func (g Gravity) Label() string {
	switch g {
	case GravityMinor:
		return "G1 - Minor"
	case GravitySignificant:
		return "G2 - Significant"
	case GravityMajor:
		return "G3 - Major"
	case GravityCritical:
		return "G4 - Critical"
	default:
		return "unknown"
	}
}

// Likelihood is the likelihood scale of the ANSSI method, 1 through 4
type Likelihood int

// Likelihood levels V1 through V4
const (
	LikelihoodUnlikely      Likelihood = 1
	LikelihoodPossible      Likelihood = 2
	LikelihoodProbable      Likelihood = 3
	LikelihoodAlmostCertain Likelihood = 4
)

// Validate checks if the likelihood is within the 1..4 scale
func (l Likelihood) Validate() error {
	if l < LikelihoodUnlikely || l > LikelihoodAlmostCertain {
		return goerr.Wrap(ErrSchemaViolation, "likelihood must be between 1 and 4", goerr.V("likelihood", int(l)))
	}
	return nil
}

// Label returns the ANSSI label of the likelihood level
func (l Likelihood) Label() string {
	switch l {
	case LikelihoodUnlikely:
		return "V1 - Unlikely"
	case LikelihoodPossible:
		return "V2 - Possible"
	case LikelihoodProbable:
		return "V3 - Probable"
	case LikelihoodAlmostCertain:
		return "V4 - Almost certain"
	default:
		return "unknown"
	}
}

// Pertinence is the risk-source relevance scale, 1 through 4
type Pertinence int

// Pertinence levels P1 through P4
const (
	PertinenceLow      Pertinence = 1
	PertinenceModerate Pertinence = 2
	PertinenceHigh     Pertinence = 3
	PertinenceMaximal  Pertinence = 4
)

// Validate checks if the pertinence is within the 1..4 scale
func (p Pertinence) Validate() error {
	if p < PertinenceLow || p > PertinenceMaximal {
		return goerr.Wrap(ErrSchemaViolation, "pertinence must be between 1 and 4", goerr.V("pertinence", int(p)))
	}
	return nil
}

// Score is the product of gravity and likelihood, 1 through 16.
// It is only ever derived by the engine, never accepted from outside.
type Score int

// NewScore computes the risk score from its two factors. Both factors
// must already be validated; the result is checked again so a broken
// caller surfaces as an invariant breach rather than a bad band.
func NewScore(g Gravity, l Likelihood) (Score, error) {
	if err := g.Validate(); err != nil {
		return 0, goerr.Wrap(ErrInvariantBreach, "score factor out of range", goerr.V("gravity", int(g)))
	}
	if err := l.Validate(); err != nil {
		return 0, goerr.Wrap(ErrInvariantBreach, "score factor out of range", goerr.V("likelihood", int(l)))
	}
	s := Score(int(g) * int(l))
	if s < 1 || s > 16 {
		return 0, goerr.Wrap(ErrInvariantBreach, "score out of range", goerr.V("score", int(s)))
	}
	return s, nil
}

// Validate checks if the score is within 1..16
func (s Score) Validate() error {
	if s < 1 || s > 16 {
		return goerr.Wrap(ErrInvariantBreach, "score must be between 1 and 16", goerr.V("score", int(s)))
	}
	return nil
}

// RiskBand is the qualitative classification of a risk score
type RiskBand string

// Risk bands in ascending order of severity
const (
	BandLow         RiskBand = "LOW"
	BandModerate    RiskBand = "MODERATE"
	BandSignificant RiskBand = "SIGNIFICANT"
	BandCritical    RiskBand = "CRITICAL"
)

// AllRiskBands returns all bands in ascending order
func AllRiskBands() []RiskBand {
	return []RiskBand{
		BandLow,
		BandModerate,
		BandSignificant,
		BandCritical,
	}
}

// BandOf classifies a score into its band. The score must be a valid
// engine-derived score; anything else is an invariant breach.
func BandOf(s Score) (RiskBand, error) {
	if err := s.Validate(); err != nil {
		return "", err
	}
	switch {
	case s <= 3:
		return BandLow, nil
	case s <= 7:
		return BandModerate, nil
	case s <= 11:
		return BandSignificant, nil
	default:
		return BandCritical, nil
	}
}

// IsValid checks if the band is one of the known values
func (b RiskBand) IsValid() bool {
	switch b {
	case BandLow, BandModerate, BandSignificant, BandCritical:
		return true
	default:
		return false
	}
}

// Color returns the display color of the band as a hex string
func (b RiskBand) Color() string {
	switch b {
	case BandLow:
		return "#22c55e"
	case BandModerate:
		return "#eab308"
	case BandSignificant:
		return "#f97316"
	case BandCritical:
		return "#ef4444"
	default:
		return "#9ca3af"
	}
}

// String returns the string representation of the band
func (b RiskBand) String() string {
	return string(b)
}
