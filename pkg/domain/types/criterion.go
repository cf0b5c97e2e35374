package types

import (
	"strings"

	"github.com/m-mizutani/goerr/v2"
)

// SecurityCriterion is the security dimension a feared event impacts
type SecurityCriterion string

const (
	CriterionConfidentiality SecurityCriterion = "CONFIDENTIALITY"
	CriterionIntegrity       SecurityCriterion = "INTEGRITY"
	CriterionAvailability    SecurityCriterion = "AVAILABILITY"
	CriterionTraceability    SecurityCriterion = "TRACEABILITY"
)

// AllSecurityCriteria returns all valid criteria
func AllSecurityCriteria() []SecurityCriterion {
	return []SecurityCriterion{
		CriterionConfidentiality,
		CriterionIntegrity,
		CriterionAvailability,
		CriterionTraceability,
	}
}

// IsValid checks if the criterion is one of the known values
func (c SecurityCriterion) IsValid() bool {
	switch c {
	case CriterionConfidentiality,
		CriterionIntegrity,
		CriterionAvailability,
		CriterionTraceability:
		return true
	default:
		return false
	}
}

// String returns the string representation of the criterion
func (c SecurityCriterion) String() string {
	return string(c)
}

// ParseSecurityCriterion normalizes a wire value into a criterion. The
// generator may answer in French or English, upper or lower case.
func ParseSecurityCriterion(s string) (SecurityCriterion, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "CONFIDENTIALITY", "CONFIDENTIALITE", "CONFIDENTIALITÉ":
		return CriterionConfidentiality, nil
	case "INTEGRITY", "INTEGRITE", "INTÉGRITÉ":
		return CriterionIntegrity, nil
	case "AVAILABILITY", "DISPONIBILITE", "DISPONIBILITÉ":
		return CriterionAvailability, nil
	case "TRACEABILITY", "TRACABILITE", "TRAÇABILITÉ":
		return CriterionTraceability, nil
	default:
		return "", goerr.Wrap(ErrSchemaViolation, "unknown security criterion", goerr.V("criterion", s))
	}
}
