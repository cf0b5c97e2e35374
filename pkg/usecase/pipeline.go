package usecase

import (
	"context"
	"time"

	"github.com/cybergard/ebiosgard/pkg/domain/model"
	"github.com/cybergard/ebiosgard/pkg/domain/types"
	"github.com/cybergard/ebiosgard/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
)

// CreateProjectInput carries the user-provided fields of a new analysis
type CreateProjectInput struct {
	Name              string
	Description       string
	Sector            string
	AdditionalContext string
}

// CreateProject registers a new draft analysis
func (uc *UseCases) CreateProject(ctx context.Context, input CreateProjectInput) (*model.Project, error) {
	project := model.NewProject(input.Name, input.Description, input.Sector)
	project.AdditionalContext = input.AdditionalContext
	if err := project.Validate(); err != nil {
		return nil, err
	}
	if err := uc.repo.Project().Create(ctx, project); err != nil {
		return nil, err
	}
	logging.From(ctx).Info("project created",
		"project_id", project.ID,
		"name", project.Name,
	)
	return project, nil
}

// ProjectView is a project with its per-workshop progress
type ProjectView struct {
	Project   *model.Project
	Workshops []*model.Workshop
}

// GetProject retrieves one project with the state of its six workshops
func (uc *UseCases) GetProject(ctx context.Context, projectID types.ProjectID) (*ProjectView, error) {
	project, err := uc.repo.Project().Get(ctx, projectID)
	if err != nil {
		return nil, err
	}
	workshops, err := uc.repo.Workshop().ListByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return &ProjectView{Project: project, Workshops: workshops}, nil
}

// ListProjects retrieves every registered project
func (uc *UseCases) ListProjects(ctx context.Context) ([]*model.Project, error) {
	return uc.repo.Project().List(ctx)
}

// Risks derives the matrix and returns its classified rows, highest
// score first.
func (uc *UseCases) Risks(ctx context.Context, projectID types.ProjectID) ([]model.Risk, error) {
	matrix, err := uc.Matrix(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return matrix.Risks, nil
}

// GetTreatment retrieves the committed treatment plan of a project
func (uc *UseCases) GetTreatment(ctx context.Context, projectID types.ProjectID) (*model.TreatmentPlan, error) {
	if _, err := uc.repo.Project().Get(ctx, projectID); err != nil {
		return nil, err
	}
	return uc.repo.Treatment().Get(ctx, projectID)
}

// PipelineResult gathers the outputs of a full six-workshop run
type PipelineResult struct {
	Project   *model.Project
	Scoping   *ScopingResult
	Sources   []*model.RiskSource
	Strategic []*model.StrategicScenario
	Scenarios []*model.OperationalScenario
	Matrix    *model.RiskMatrix
	Plan      *model.TreatmentPlan
}

// Pipeline runs the six workshops in order on one project. Each stage
// commits before the next starts, so a failure mid-pipeline leaves the
// committed prefix intact and the project resumable from the failed
// stage.
func (uc *UseCases) Pipeline(ctx context.Context, projectID types.ProjectID) (*PipelineResult, error) {
	logger := logging.From(ctx)
	started := time.Now()

	result := &PipelineResult{}
	var err error

	if result.Scoping, err = uc.Scoping(ctx, projectID); err != nil {
		return nil, goerr.Wrap(err, "pipeline stopped at scoping", goerr.V("project_id", projectID))
	}
	logger.Info("workshop committed", "project_id", projectID, "workshop", types.WorkshopScoping)

	if result.Sources, err = uc.RiskSources(ctx, projectID); err != nil {
		return nil, goerr.Wrap(err, "pipeline stopped at risk sources", goerr.V("project_id", projectID))
	}
	logger.Info("workshop committed", "project_id", projectID, "workshop", types.WorkshopRiskSources)

	if result.Strategic, err = uc.StrategicScenarios(ctx, projectID); err != nil {
		return nil, goerr.Wrap(err, "pipeline stopped at strategic scenarios", goerr.V("project_id", projectID))
	}
	logger.Info("workshop committed", "project_id", projectID, "workshop", types.WorkshopStrategic)

	if result.Scenarios, err = uc.OperationalScenarios(ctx, projectID); err != nil {
		return nil, goerr.Wrap(err, "pipeline stopped at operational scenarios", goerr.V("project_id", projectID))
	}
	logger.Info("workshop committed", "project_id", projectID, "workshop", types.WorkshopOperational)

	if result.Matrix, err = uc.Matrix(ctx, projectID); err != nil {
		return nil, goerr.Wrap(err, "pipeline stopped at the risk matrix", goerr.V("project_id", projectID))
	}
	logger.Info("workshop committed", "project_id", projectID, "workshop", types.WorkshopMatrix)

	if result.Plan, err = uc.Treatment(ctx, projectID); err != nil {
		return nil, goerr.Wrap(err, "pipeline stopped at treatment", goerr.V("project_id", projectID))
	}
	logger.Info("workshop committed", "project_id", projectID, "workshop", types.WorkshopTreatment)

	if result.Project, err = uc.repo.Project().Get(ctx, projectID); err != nil {
		return nil, err
	}

	logger.Info("pipeline complete",
		"project_id", projectID,
		"risks", result.Matrix.Stats.Total,
		"elapsed", time.Since(started).String(),
	)
	return result, nil
}

// Freeze captures the current matrix as an immutable snapshot and
// moves the project to FROZEN. Every later mutation attempt fails with
// a frozen error; reads and matrix derivation stay available.
func (uc *UseCases) Freeze(ctx context.Context, projectID types.ProjectID) (*model.MatrixSnapshot, error) {
	project, err := uc.repo.Project().Get(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if !project.Status.Mutable() {
		return nil, goerr.Wrap(types.ErrFrozen, "project is already immutable",
			goerr.V("project_id", projectID), goerr.V("status", project.Status))
	}

	// The six workshops must have committed before the analysis can be
	// declared final.
	for _, kind := range types.AllWorkshopKinds() {
		if kind == types.WorkshopMatrix {
			continue
		}
		ws, err := uc.repo.Workshop().Get(ctx, projectID, kind)
		if err != nil || ws.Status != types.WorkshopDone {
			return nil, goerr.Wrap(types.ErrStageOrder, "cannot freeze an incomplete analysis",
				goerr.V("project_id", projectID), goerr.V("workshop", kind))
		}
	}

	matrix, err := uc.Matrix(ctx, projectID)
	if err != nil {
		return nil, err
	}

	snapshot := &model.MatrixSnapshot{
		ID:        model.NewSnapshotID(),
		ProjectID: projectID,
		Kind:      "freeze",
		Matrix:    *matrix,
		TakenAt:   time.Now().UTC(),
	}
	if err := uc.repo.Snapshot().Create(ctx, snapshot); err != nil {
		return nil, err
	}
	if err := uc.repo.Project().UpdateStatus(ctx, projectID, types.ProjectFrozen); err != nil {
		return nil, err
	}

	logging.From(ctx).Info("project frozen",
		"project_id", projectID,
		"snapshot_id", snapshot.ID,
		"risks", matrix.Stats.Total,
	)
	return snapshot, nil
}
