package model

import (
	"time"

	"github.com/cybergard/ebiosgard/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

// Project is one risk analysis. All scoped entities hang off its ID.
type Project struct {
	ID                types.ProjectID
	Name              string
	Description       string
	Sector            string
	AdditionalContext string
	Status            types.ProjectStatus
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// NewProject creates a draft project with a fresh ID
func NewProject(name, description, sector string) *Project {
	now := time.Now().UTC()
	return &Project{
		ID:          types.NewProjectID(),
		Name:        name,
		Description: description,
		Sector:      sector,
		Status:      types.ProjectDraft,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Validate checks the project fields
func (p *Project) Validate() error {
	if err := p.ID.Validate(); err != nil {
		return err
	}
	if p.Name == "" {
		return goerr.New("project name cannot be empty", goerr.V("project_id", p.ID))
	}
	if !p.Status.Normalize().IsValid() {
		return goerr.New("invalid project status", goerr.V("status", p.Status))
	}
	return nil
}

// Workshop tracks the progress of one workshop within a project
type Workshop struct {
	ID                types.WorkshopID
	ProjectID         types.ProjectID
	Kind              types.WorkshopKind
	Status            types.WorkshopStatus
	CompletionPercent int
	UpdatedAt         time.Time
}

// NewWorkshop creates a pending workshop record
func NewWorkshop(projectID types.ProjectID, kind types.WorkshopKind) *Workshop {
	return &Workshop{
		ID:        types.NewWorkshopID(),
		ProjectID: projectID,
		Kind:      kind,
		Status:    types.WorkshopPending,
		UpdatedAt: time.Now().UTC(),
	}
}
