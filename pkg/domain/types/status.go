package types

// ProjectStatus represents the lifecycle state of a project
type ProjectStatus string

const (
	ProjectDraft      ProjectStatus = "DRAFT"
	ProjectInProgress ProjectStatus = "IN_PROGRESS"
	ProjectFrozen     ProjectStatus = "FROZEN"
	ProjectArchived   ProjectStatus = "ARCHIVED"
)

// IsValid checks if the project status is valid
func (s ProjectStatus) IsValid() bool {
	switch s {
	case ProjectDraft, ProjectInProgress, ProjectFrozen, ProjectArchived:
		return true
	default:
		return false
	}
}

// Normalize returns the status, treating empty as ProjectDraft
func (s ProjectStatus) Normalize() ProjectStatus {
	if s == "" {
		return ProjectDraft
	}
	return s
}

// String returns the string representation of the project status
func (s ProjectStatus) String() string {
	return string(s)
}

// Mutable reports whether entities of the project may still change.
// Frozen and archived projects refuse every mutation.
func (s ProjectStatus) Mutable() bool {
	switch s.Normalize() {
	case ProjectDraft, ProjectInProgress:
		return true
	default:
		return false
	}
}

// SourceKind records the provenance of an entity
type SourceKind string

const (
	SourceAI     SourceKind = "AI"
	SourceManual SourceKind = "MANUAL"
)

// IsValid checks if the source kind is valid
func (k SourceKind) IsValid() bool {
	return k == SourceAI || k == SourceManual
}

// String returns the string representation of the source kind
func (k SourceKind) String() string {
	return string(k)
}
