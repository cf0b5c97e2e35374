package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/cybergard/ebiosgard/pkg/domain/model"
	"github.com/cybergard/ebiosgard/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

type projectRepository struct {
	mu       sync.RWMutex
	projects map[types.ProjectID]*model.Project
}

func newProjectRepository() *projectRepository {
	return &projectRepository{
		projects: make(map[types.ProjectID]*model.Project),
	}
}

func copyProject(p *model.Project) *model.Project {
	copied := *p
	return &copied
}

func (r *projectRepository) Create(ctx context.Context, project *model.Project) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.projects[project.ID]; exists {
		return goerr.New("project already exists", goerr.V("project_id", project.ID))
	}

	r.projects[project.ID] = copyProject(project)
	return nil
}

func (r *projectRepository) Get(ctx context.Context, id types.ProjectID) (*model.Project, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	project, exists := r.projects[id]
	if !exists {
		return nil, goerr.Wrap(types.ErrNotFound, "project not found", goerr.V("project_id", id))
	}

	return copyProject(project), nil
}

func (r *projectRepository) List(ctx context.Context) ([]*model.Project, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	projects := make([]*model.Project, 0, len(r.projects))
	for _, p := range r.projects {
		projects = append(projects, copyProject(p))
	}
	sort.Slice(projects, func(i, j int) bool {
		return projects[i].CreatedAt.Before(projects[j].CreatedAt)
	})

	return projects, nil
}

func (r *projectRepository) UpdateStatus(ctx context.Context, id types.ProjectID, status types.ProjectStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	project, exists := r.projects[id]
	if !exists {
		return goerr.Wrap(types.ErrNotFound, "project not found", goerr.V("project_id", id))
	}

	project.Status = status
	project.UpdatedAt = time.Now().UTC()
	return nil
}

type workshopKey struct {
	projectID types.ProjectID
	kind      types.WorkshopKind
}

type workshopRepository struct {
	mu        sync.RWMutex
	workshops map[workshopKey]*model.Workshop
}

func newWorkshopRepository() *workshopRepository {
	return &workshopRepository{
		workshops: make(map[workshopKey]*model.Workshop),
	}
}

func copyWorkshop(w *model.Workshop) *model.Workshop {
	copied := *w
	return &copied
}

func (r *workshopRepository) Put(ctx context.Context, workshop *model.Workshop) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := workshopKey{projectID: workshop.ProjectID, kind: workshop.Kind}
	r.workshops[key] = copyWorkshop(workshop)
	return nil
}

func (r *workshopRepository) Get(ctx context.Context, projectID types.ProjectID, kind types.WorkshopKind) (*model.Workshop, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	workshop, exists := r.workshops[workshopKey{projectID: projectID, kind: kind}]
	if !exists {
		return nil, goerr.Wrap(types.ErrNotFound, "workshop not found",
			goerr.V("project_id", projectID), goerr.V("kind", kind))
	}

	return copyWorkshop(workshop), nil
}

func (r *workshopRepository) ListByProject(ctx context.Context, projectID types.ProjectID) ([]*model.Workshop, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	workshops := make([]*model.Workshop, 0, len(types.AllWorkshopKinds()))
	for _, w := range r.workshops {
		if w.ProjectID == projectID {
			workshops = append(workshops, copyWorkshop(w))
		}
	}
	sort.Slice(workshops, func(i, j int) bool {
		return workshops[i].Kind.Order() < workshops[j].Kind.Order()
	})

	return workshops, nil
}
