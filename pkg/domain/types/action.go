package types

import (
	"strings"

	"github.com/m-mizutani/goerr/v2"
)

// ActionCategory classifies a treatment action by the way it acts on risk
type ActionCategory string

const (
	ActionPreventive ActionCategory = "PREVENTIVE"
	ActionDetective  ActionCategory = "DETECTIVE"
	ActionCorrective ActionCategory = "CORRECTIVE"
)

// IsValid checks if the category is one of the known values
func (c ActionCategory) IsValid() bool {
	switch c {
	case ActionPreventive, ActionDetective, ActionCorrective:
		return true
	default:
		return false
	}
}

// String returns the string representation of the category
func (c ActionCategory) String() string {
	return string(c)
}

// ParseActionCategory parses a wire value into an action category,
// accepting the French vocabulary as produced by the generator.
func ParseActionCategory(s string) (ActionCategory, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "PREVENTIVE", "PREVENTIF", "PRÉVENTIF":
		return ActionPreventive, nil
	case "DETECTIVE", "DETECTIF", "DÉTECTIF":
		return ActionDetective, nil
	case "CORRECTIVE", "CORRECTIF":
		return ActionCorrective, nil
	default:
		return "", goerr.Wrap(ErrSchemaViolation, "unknown action category", goerr.V("category", s))
	}
}

// ActionPriority orders treatment actions by urgency
type ActionPriority string

const (
	PriorityHigh   ActionPriority = "HIGH"
	PriorityMedium ActionPriority = "MEDIUM"
	PriorityLow    ActionPriority = "LOW"
)

// IsValid checks if the priority is one of the known values
func (p ActionPriority) IsValid() bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	default:
		return false
	}
}

// String returns the string representation of the priority
func (p ActionPriority) String() string {
	return string(p)
}

// ParseActionPriority parses a wire value, accepting the French
// vocabulary. Empty input is allowed; the caller falls back to the
// band's default priority.
func ParseActionPriority(s string) (ActionPriority, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "":
		return "", nil
	case "HIGH", "HAUTE":
		return PriorityHigh, nil
	case "MEDIUM", "MOYENNE":
		return PriorityMedium, nil
	case "LOW", "BASSE":
		return PriorityLow, nil
	default:
		return "", goerr.Wrap(ErrSchemaViolation, "unknown action priority", goerr.V("priority", s))
	}
}

// DefaultPriority returns the priority applied when the generator
// leaves the field empty, derived from the band of the covered risk.
func DefaultPriority(b RiskBand) ActionPriority {
	switch b {
	case BandCritical, BandSignificant:
		return PriorityHigh
	case BandModerate:
		return PriorityMedium
	default:
		return PriorityLow
	}
}
