package types

import (
	"github.com/m-mizutani/goerr/v2"
)

// WorkshopKind identifies one of the six workshops of the method
type WorkshopKind string

const (
	WorkshopScoping     WorkshopKind = "AT1"
	WorkshopRiskSources WorkshopKind = "AT2"
	WorkshopStrategic   WorkshopKind = "AT3"
	WorkshopOperational WorkshopKind = "AT4"
	WorkshopMatrix      WorkshopKind = "AT5"
	WorkshopTreatment   WorkshopKind = "AT6"
)

// AllWorkshopKinds returns the six workshops in pipeline order
func AllWorkshopKinds() []WorkshopKind {
	return []WorkshopKind{
		WorkshopScoping,
		WorkshopRiskSources,
		WorkshopStrategic,
		WorkshopOperational,
		WorkshopMatrix,
		WorkshopTreatment,
	}
}

// IsValid checks if the workshop kind is valid
func (k WorkshopKind) IsValid() bool {
	switch k {
	case WorkshopScoping, WorkshopRiskSources, WorkshopStrategic,
		WorkshopOperational, WorkshopMatrix, WorkshopTreatment:
		return true
	default:
		return false
	}
}

// String returns the string representation of the workshop kind
func (k WorkshopKind) String() string {
	return string(k)
}

// Order returns the 1-based pipeline position of the workshop, or 0 if
// the kind is unknown.
func (k WorkshopKind) Order() int {
	for i, w := range AllWorkshopKinds() {
		if w == k {
			return i + 1
		}
	}
	return 0
}

// Predecessors returns the workshops that must be committed before
// this one may run.
func (k WorkshopKind) Predecessors() []WorkshopKind {
	o := k.Order()
	if o <= 1 {
		return nil
	}
	return AllWorkshopKinds()[:o-1]
}

// ParseWorkshopKind parses a string into a workshop kind
func ParseWorkshopKind(s string) (WorkshopKind, error) {
	k := WorkshopKind(s)
	if !k.IsValid() {
		return "", goerr.New("invalid workshop kind", goerr.V("kind", s))
	}
	return k, nil
}

// WorkshopStatus represents the progress state of one workshop
type WorkshopStatus string

const (
	WorkshopPending    WorkshopStatus = "PENDING"
	WorkshopInProgress WorkshopStatus = "IN_PROGRESS"
	WorkshopDone       WorkshopStatus = "DONE"
)

// IsValid checks if the workshop status is valid
func (s WorkshopStatus) IsValid() bool {
	switch s {
	case WorkshopPending, WorkshopInProgress, WorkshopDone:
		return true
	default:
		return false
	}
}

// Normalize returns the status, treating empty as WorkshopPending
func (s WorkshopStatus) Normalize() WorkshopStatus {
	if s == "" {
		return WorkshopPending
	}
	return s
}

// String returns the string representation of the workshop status
func (s WorkshopStatus) String() string {
	return string(s)
}
