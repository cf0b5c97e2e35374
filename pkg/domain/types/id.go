package types

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
)

// ProjectID represents a unique identifier for a risk-analysis project
type ProjectID string

// NewProjectID generates a new UUID v4 ProjectID
func NewProjectID() ProjectID {
	return ProjectID(uuid.New().String())
}

// Validate checks if the ProjectID is valid
func (p ProjectID) Validate() error {
	if p == "" {
		return goerr.New("project ID cannot be empty")
	}
	if _, err := uuid.Parse(string(p)); err != nil {
		return goerr.New("project ID must be a UUID", goerr.V("id", p))
	}
	return nil
}

// String returns the string representation of ProjectID
func (p ProjectID) String() string {
	return string(p)
}

// WorkshopID represents a unique identifier for a workshop record
type WorkshopID string

// NewWorkshopID generates a new UUID v4 WorkshopID
func NewWorkshopID() WorkshopID {
	return WorkshopID(uuid.New().String())
}

// String returns the string representation of WorkshopID
func (w WorkshopID) String() string {
	return string(w)
}

var refCodePattern = regexp.MustCompile(`^(VM|BS|ER|SR|SS|SO)([0-9]{2,})$`)

// RefCode is a human-readable entity code scoped to one project, such as
// VM01 (business value), BS03 (supporting asset), ER05 (feared event),
// SR02 (risk source), SS01 (strategic scenario) or SO04 (operational
// scenario). Sequences are zero-padded to two digits and grow past 99
// without wrapping.
type RefCode string

// NewRefCode builds a code from a prefix and a 1-based sequence number
func NewRefCode(prefix string, seq int) RefCode {
	return RefCode(fmt.Sprintf("%s%02d", prefix, seq))
}

// Validate checks if the RefCode has a known prefix and a numeric sequence
func (c RefCode) Validate() error {
	if c == "" {
		return goerr.New("reference code cannot be empty")
	}
	if !refCodePattern.MatchString(string(c)) {
		return goerr.New("reference code must be a known prefix followed by digits", goerr.V("code", c))
	}
	return nil
}

// Prefix returns the two-letter entity prefix of the code
func (c RefCode) Prefix() string {
	m := refCodePattern.FindStringSubmatch(string(c))
	if m == nil {
		return ""
	}
	return m[1]
}

// Seq returns the numeric sequence of the code, or 0 if malformed
func (c RefCode) Seq() int {
	m := refCodePattern.FindStringSubmatch(string(c))
	if m == nil {
		return 0
	}
	n, err := strconv.Atoi(m[2])
	if err != nil {
		return 0
	}
	return n
}

// String returns the string representation of RefCode
func (c RefCode) String() string {
	return string(c)
}

// Code prefixes for project-scoped entities
const (
	PrefixBusinessValue       = "VM"
	PrefixSupportingAsset     = "BS"
	PrefixFearedEvent         = "ER"
	PrefixRiskSource          = "SR"
	PrefixStrategicScenario   = "SS"
	PrefixOperationalScenario = "SO"
)
