package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/cybergard/ebiosgard/pkg/domain/model"
	"github.com/cybergard/ebiosgard/pkg/domain/types"
	"github.com/cybergard/ebiosgard/pkg/service/generation"
	"github.com/cybergard/ebiosgard/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
)

// guardStage checks that a workshop may run: the project exists, is
// still mutable, and every prerequisite workshop has committed. The
// matrix workshop is excluded from prerequisites because it is a pure
// derivation, recomputable whenever its inputs exist.
func (uc *UseCases) guardStage(ctx context.Context, projectID types.ProjectID, kind types.WorkshopKind) (*model.Project, error) {
	project, err := uc.repo.Project().Get(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if !project.Status.Mutable() {
		return nil, goerr.Wrap(types.ErrFrozen, "project refuses workshop runs",
			goerr.V("project_id", projectID), goerr.V("status", project.Status))
	}

	for _, prior := range kind.Predecessors() {
		if prior == types.WorkshopMatrix {
			continue
		}
		ws, err := uc.repo.Workshop().Get(ctx, projectID, prior)
		if err != nil {
			if errors.Is(err, types.ErrNotFound) {
				return nil, goerr.Wrap(types.ErrStageOrder, "prerequisite workshop has not run",
					goerr.V("project_id", projectID), goerr.V("workshop", kind), goerr.V("missing", prior))
			}
			return nil, err
		}
		if ws.Status != types.WorkshopDone {
			return nil, goerr.Wrap(types.ErrStageOrder, "prerequisite workshop is not committed",
				goerr.V("project_id", projectID), goerr.V("workshop", kind),
				goerr.V("missing", prior), goerr.V("status", ws.Status))
		}
	}

	return project, nil
}

// buildContext indexes every committed entity of the project into a
// fresh referential context. Stages resolve all cross-references
// against this value and never against live repository state.
func (uc *UseCases) buildContext(ctx context.Context, projectID types.ProjectID) (*model.ReferentialContext, error) {
	rc := model.NewReferentialContext(projectID)

	values, err := uc.repo.BusinessValue().ListByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	for _, v := range values {
		if err := rc.AddBusinessValue(v); err != nil {
			return nil, err
		}
	}

	assets, err := uc.repo.SupportingAsset().ListByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	for _, a := range assets {
		if err := rc.AddSupportingAsset(a); err != nil {
			return nil, err
		}
	}

	events, err := uc.repo.FearedEvent().ListByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	for _, e := range events {
		if err := rc.AddFearedEvent(e); err != nil {
			return nil, err
		}
	}

	sources, err := uc.repo.RiskSource().ListByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	for _, s := range sources {
		if err := rc.AddRiskSource(s); err != nil {
			return nil, err
		}
	}

	strategic, err := uc.repo.StrategicScenario().ListByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	for _, s := range strategic {
		if err := rc.AddStrategicScenario(s); err != nil {
			return nil, err
		}
	}

	operational, err := uc.repo.OperationalScenario().ListByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	for _, o := range operational {
		if err := rc.AddOperationalScenario(o); err != nil {
			return nil, err
		}
	}

	return rc, nil
}

// markWorkshopDone records a committed workshop and moves a draft
// project into progress.
func (uc *UseCases) markWorkshopDone(ctx context.Context, project *model.Project, kind types.WorkshopKind) error {
	ws := model.NewWorkshop(project.ID, kind)
	ws.Status = types.WorkshopDone
	ws.CompletionPercent = 100
	if err := uc.repo.Workshop().Put(ctx, ws); err != nil {
		return err
	}
	if project.Status.Normalize() == types.ProjectDraft {
		if err := uc.repo.Project().UpdateStatus(ctx, project.ID, types.ProjectInProgress); err != nil {
			return err
		}
		project.Status = types.ProjectInProgress
	}
	return nil
}

// isRejection reports whether an error is a validation rejection of
// decodable content, the only class eligible for a regeneration pass.
func isRejection(err error) bool {
	switch types.Taxonomy(err) {
	case types.TaxonomySchemaViolation, types.TaxonomyReferentialIntegrity, types.TaxonomyPolicyViolation:
		return true
	default:
		return false
	}
}

// generationPasses returns how many times a stage may ask the
// generator for a batch before surfacing a rejection.
func (uc *UseCases) generationPasses() int {
	if uc.regenerate {
		return 2
	}
	return 1
}

// runGeneration runs the generate-validate-commit loop of one stage.
// newOut allocates the wire payload, accept validates and commits it.
// Every pass leaves an audit record; no partial state survives a
// failed pass because accept commits only after full validation.
func (uc *UseCases) runGeneration(
	ctx context.Context,
	project *model.Project,
	kind types.WorkshopKind,
	systemPrompt, userPrompt string,
	schema *gollem.Parameter,
	newOut func() any,
	accept func(out any) error,
) error {
	if uc.gen == nil {
		return goerr.Wrap(types.ErrGeneration, "no generation service configured",
			goerr.V("project_id", project.ID), goerr.V("workshop", kind))
	}

	logger := logging.From(ctx)
	passes := uc.generationPasses()

	var lastErr error
	for pass := 1; pass <= passes; pass++ {
		rec := model.NewGenerationRecord(project.ID, kind, uc.gen.Model())
		rec.SetPrompts(systemPrompt, userPrompt)
		started := time.Now()

		out := newOut()
		res, err := uc.gen.Generate(ctx, generation.Input{
			SystemPrompt: systemPrompt,
			UserPrompt:   userPrompt,
			Schema:       schema,
			Out:          out,
		})
		if res != nil {
			rec.SetResponse(res.RawText)
			rec.Attempts = res.Attempts
		}
		rec.DurationMilli = time.Since(started).Milliseconds()

		if err == nil {
			err = accept(out)
		}
		if err == nil {
			rec.Success = true
			uc.appendAudit(ctx, rec)
			return nil
		}

		rec.ErrorMessage = err.Error()
		uc.appendAudit(ctx, rec)
		lastErr = err

		if pass < passes && isRejection(err) {
			logger.Warn("workshop batch rejected, regenerating",
				"project_id", project.ID,
				"workshop", kind,
				"error", err.Error(),
			)
			continue
		}
		break
	}

	return goerr.Wrap(lastErr, "workshop generation failed",
		goerr.V("project_id", project.ID), goerr.V("workshop", kind))
}

// appendAudit stores a generation record; audit failures are logged
// and swallowed so they never mask the stage outcome.
func (uc *UseCases) appendAudit(ctx context.Context, rec *model.GenerationRecord) {
	if err := uc.repo.GenerationLog().Create(ctx, rec); err != nil {
		logging.From(ctx).Error("failed to store generation record",
			"project_id", rec.ProjectID,
			"workshop", rec.Workshop,
			"error", err.Error(),
		)
	}
}
