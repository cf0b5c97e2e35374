package interfaces

import (
	"context"

	"github.com/cybergard/ebiosgard/pkg/domain/model"
	"github.com/cybergard/ebiosgard/pkg/domain/types"
)

// ProjectRepository defines the interface for Project data persistence
type ProjectRepository interface {
	// Create stores a new project
	Create(ctx context.Context, project *model.Project) error

	// Get retrieves a project by ID
	Get(ctx context.Context, id types.ProjectID) (*model.Project, error)

	// List retrieves all projects ordered by creation time
	List(ctx context.Context) ([]*model.Project, error)

	// UpdateStatus transitions the project lifecycle state
	UpdateStatus(ctx context.Context, id types.ProjectID, status types.ProjectStatus) error
}

// WorkshopRepository defines the interface for Workshop progress persistence
type WorkshopRepository interface {
	// Put stores or replaces the workshop record of one kind for a project
	Put(ctx context.Context, workshop *model.Workshop) error

	// Get retrieves one workshop record of a project
	Get(ctx context.Context, projectID types.ProjectID, kind types.WorkshopKind) (*model.Workshop, error)

	// ListByProject retrieves all workshop records of a project in pipeline order
	ListByProject(ctx context.Context, projectID types.ProjectID) ([]*model.Workshop, error)
}
