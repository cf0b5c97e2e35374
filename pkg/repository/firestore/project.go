package firestore

import (
	"context"
	"sort"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/cybergard/ebiosgard/pkg/domain/model"
	"github.com/cybergard/ebiosgard/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type projectDocument struct {
	ID                string    `firestore:"id"`
	Name              string    `firestore:"name"`
	Description       string    `firestore:"description"`
	Sector            string    `firestore:"sector"`
	AdditionalContext string    `firestore:"additional_context"`
	Status            string    `firestore:"status"`
	CreatedAt         time.Time `firestore:"created_at"`
	UpdatedAt         time.Time `firestore:"updated_at"`
}

func toProjectDocument(p *model.Project) *projectDocument {
	return &projectDocument{
		ID:                string(p.ID),
		Name:              p.Name,
		Description:       p.Description,
		Sector:            p.Sector,
		AdditionalContext: p.AdditionalContext,
		Status:            string(p.Status),
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt,
	}
}

func (d *projectDocument) toModel() *model.Project {
	return &model.Project{
		ID:                types.ProjectID(d.ID),
		Name:              d.Name,
		Description:       d.Description,
		Sector:            d.Sector,
		AdditionalContext: d.AdditionalContext,
		Status:            types.ProjectStatus(d.Status),
		CreatedAt:         d.CreatedAt,
		UpdatedAt:         d.UpdatedAt,
	}
}

type projectRepository struct {
	client *firestore.Client
	prefix string
}

func (r *projectRepository) collection() string {
	return collectionName(r.prefix, "projects")
}

func (r *projectRepository) Create(ctx context.Context, project *model.Project) error {
	docRef := r.client.Collection(r.collection()).Doc(string(project.ID))
	if _, err := docRef.Create(ctx, toProjectDocument(project)); err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return goerr.New("project already exists", goerr.V("project_id", project.ID))
		}
		return goerr.Wrap(err, "failed to create project", goerr.V("project_id", project.ID))
	}
	return nil
}

func (r *projectRepository) Get(ctx context.Context, id types.ProjectID) (*model.Project, error) {
	doc, err := r.client.Collection(r.collection()).Doc(string(id)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(types.ErrNotFound, "project not found", goerr.V("project_id", id))
		}
		return nil, goerr.Wrap(err, "failed to get project", goerr.V("project_id", id))
	}

	var d projectDocument
	if err := doc.DataTo(&d); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal project", goerr.V("project_id", id))
	}
	return d.toModel(), nil
}

func (r *projectRepository) List(ctx context.Context) ([]*model.Project, error) {
	iter := r.client.Collection(r.collection()).OrderBy("created_at", firestore.Asc).Documents(ctx)
	defer iter.Stop()

	var projects []*model.Project
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate projects")
		}

		var d projectDocument
		if err := doc.DataTo(&d); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal project")
		}
		projects = append(projects, d.toModel())
	}
	return projects, nil
}

func (r *projectRepository) UpdateStatus(ctx context.Context, id types.ProjectID, st types.ProjectStatus) error {
	docRef := r.client.Collection(r.collection()).Doc(string(id))
	_, err := docRef.Update(ctx, []firestore.Update{
		{Path: "status", Value: string(st)},
		{Path: "updated_at", Value: time.Now().UTC()},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return goerr.Wrap(types.ErrNotFound, "project not found", goerr.V("project_id", id))
		}
		return goerr.Wrap(err, "failed to update project status", goerr.V("project_id", id))
	}
	return nil
}

type workshopDocument struct {
	ID                string    `firestore:"id"`
	ProjectID         string    `firestore:"project_id"`
	Kind              string    `firestore:"kind"`
	Status            string    `firestore:"status"`
	CompletionPercent int       `firestore:"completion_percent"`
	UpdatedAt         time.Time `firestore:"updated_at"`
}

type workshopRepository struct {
	client *firestore.Client
	prefix string
}

func (r *workshopRepository) collection() string {
	return collectionName(r.prefix, "workshops")
}

// docID is stable per project and kind so Put replaces prior records
func (r *workshopRepository) docID(projectID types.ProjectID, kind types.WorkshopKind) string {
	return string(projectID) + "_" + string(kind)
}

func (r *workshopRepository) Put(ctx context.Context, workshop *model.Workshop) error {
	doc := &workshopDocument{
		ID:                string(workshop.ID),
		ProjectID:         string(workshop.ProjectID),
		Kind:              string(workshop.Kind),
		Status:            string(workshop.Status),
		CompletionPercent: workshop.CompletionPercent,
		UpdatedAt:         workshop.UpdatedAt,
	}
	docRef := r.client.Collection(r.collection()).Doc(r.docID(workshop.ProjectID, workshop.Kind))
	if _, err := docRef.Set(ctx, doc); err != nil {
		return goerr.Wrap(err, "failed to put workshop",
			goerr.V("project_id", workshop.ProjectID), goerr.V("kind", workshop.Kind))
	}
	return nil
}

func (r *workshopRepository) Get(ctx context.Context, projectID types.ProjectID, kind types.WorkshopKind) (*model.Workshop, error) {
	doc, err := r.client.Collection(r.collection()).Doc(r.docID(projectID, kind)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(types.ErrNotFound, "workshop not found",
				goerr.V("project_id", projectID), goerr.V("kind", kind))
		}
		return nil, goerr.Wrap(err, "failed to get workshop",
			goerr.V("project_id", projectID), goerr.V("kind", kind))
	}

	var d workshopDocument
	if err := doc.DataTo(&d); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal workshop")
	}
	return d.toModel(), nil
}

func (d *workshopDocument) toModel() *model.Workshop {
	return &model.Workshop{
		ID:                types.WorkshopID(d.ID),
		ProjectID:         types.ProjectID(d.ProjectID),
		Kind:              types.WorkshopKind(d.Kind),
		Status:            types.WorkshopStatus(d.Status),
		CompletionPercent: d.CompletionPercent,
		UpdatedAt:         d.UpdatedAt,
	}
}

func (r *workshopRepository) ListByProject(ctx context.Context, projectID types.ProjectID) ([]*model.Workshop, error) {
	iter := r.client.Collection(r.collection()).
		Where("project_id", "==", string(projectID)).
		Documents(ctx)
	defer iter.Stop()

	var workshops []*model.Workshop
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate workshops", goerr.V("project_id", projectID))
		}

		var d workshopDocument
		if err := doc.DataTo(&d); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal workshop")
		}
		workshops = append(workshops, d.toModel())
	}
	sort.Slice(workshops, func(i, j int) bool {
		return workshops[i].Kind.Order() < workshops[j].Kind.Order()
	})
	return workshops, nil
}
