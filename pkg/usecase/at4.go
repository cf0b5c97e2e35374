package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/cybergard/ebiosgard/pkg/domain/model"
	"github.com/cybergard/ebiosgard/pkg/domain/types"
	"github.com/cybergard/ebiosgard/pkg/service/generation"
	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	"golang.org/x/sync/errgroup"
)

// Bounds of the operational scenario workshop
const (
	minOperationalPerStrategic = 1
	maxOperationalPerStrategic = 3

	// at4Concurrency caps parallel generation calls during fan-out.
	at4Concurrency = 3
)

type at4Wire struct {
	Scenarios []at4Scenario `json:"scenarios_operationnels"`
}

type at4Scenario struct {
	Title         string    `json:"titre"`
	Description   string    `json:"description"`
	StrategicRef  string    `json:"scenario_strategique_ref"`
	Likelihood    int       `json:"vraisemblance"`
	Justification string    `json:"justification"`
	Steps         []at4Step `json:"etapes"`

	// Severity is inherited from the parent strategic scenario. The
	// field is decoded so an alteration attempt can be detected and
	// reported instead of slipping through strict decoding.
	Severity *int `json:"gravite,omitempty"`
	Score    *int `json:"score,omitempty"`
}

type at4Step struct {
	Order     int      `json:"ordre"`
	Summary   string   `json:"resume"`
	Detail    string   `json:"details"`
	AssetRefs []string `json:"actifs_cibles"`
	Kind      string   `json:"type_etape"`
}

// OperationalScenarios runs workshop 4: for every strategic scenario
// it generates 1 to 3 operational decompositions in parallel, then
// validates and commits the gathered set as one batch. A failure of
// any strategic scenario's generation or validation commits nothing.
func (uc *UseCases) OperationalScenarios(ctx context.Context, projectID types.ProjectID) ([]*model.OperationalScenario, error) {
	project, err := uc.guardStage(ctx, projectID, types.WorkshopOperational)
	if err != nil {
		return nil, err
	}
	if uc.gen == nil {
		return nil, goerr.Wrap(types.ErrGeneration, "no generation service configured",
			goerr.V("project_id", projectID), goerr.V("workshop", types.WorkshopOperational))
	}

	rc, err := uc.buildContext(ctx, projectID)
	if err != nil {
		return nil, err
	}
	parents := rc.StrategicScenarios()
	if len(parents) == 0 {
		return nil, goerr.Wrap(types.ErrStageOrder, "no strategic scenario to decompose",
			goerr.V("project_id", projectID))
	}

	systemPrompt, err := renderSystemPrompt(at4SystemPrompt, uc.catalog.Bundle(types.WorkshopOperational))
	if err != nil {
		return nil, err
	}

	// Fan out one generation call per strategic scenario. Candidates
	// only depend on committed upstream state, so the calls are
	// independent; results are gathered before any validation commits.
	var mu sync.Mutex
	wires := make(map[types.RefCode]*at4Wire, len(parents))

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(at4Concurrency)
	for _, parent := range parents {
		eg.Go(func() error {
			wire, err := uc.generateOperational(egCtx, project, parent, rc, systemPrompt)
			if err != nil {
				return err
			}
			mu.Lock()
			wires[parent.Code] = wire
			mu.Unlock()
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, goerr.Wrap(err, "operational scenario generation failed",
			goerr.V("project_id", projectID))
	}

	return uc.acceptOperational(ctx, project, rc, parents, wires)
}

// generateOperational asks the generator to decompose one strategic
// scenario, with the stage's regeneration policy applied per call.
func (uc *UseCases) generateOperational(ctx context.Context, project *model.Project, parent *model.StrategicScenario, rc *model.ReferentialContext, systemPrompt string) (*at4Wire, error) {
	userPrompt := at4UserPrompt(parent, rc)
	passes := uc.generationPasses()

	var lastErr error
	for pass := 1; pass <= passes; pass++ {
		rec := model.NewGenerationRecord(project.ID, types.WorkshopOperational, uc.gen.Model())
		rec.SetPrompts(systemPrompt, userPrompt)
		started := time.Now()

		wire := &at4Wire{}
		res, err := uc.gen.Generate(ctx, generation.Input{
			SystemPrompt: systemPrompt,
			UserPrompt:   userPrompt,
			Schema:       at4Schema(),
			Out:          wire,
		})
		if res != nil {
			rec.SetResponse(res.RawText)
			rec.Attempts = res.Attempts
		}
		rec.DurationMilli = time.Since(started).Milliseconds()

		if err == nil {
			err = uc.checkOperationalWire(parent, rc, wire)
		}
		if err == nil {
			rec.Success = true
			uc.appendAudit(ctx, rec)
			return wire, nil
		}

		rec.ErrorMessage = err.Error()
		uc.appendAudit(ctx, rec)
		lastErr = err
		if pass < passes && isRejection(err) {
			continue
		}
		break
	}
	return nil, goerr.Wrap(lastErr, "decomposition rejected", goerr.V("strategic_scenario", parent.Code))
}

// checkOperationalWire validates one strategic scenario's candidate
// decomposition without touching shared state, so fan-out workers can
// run it concurrently.
func (uc *UseCases) checkOperationalWire(parent *model.StrategicScenario, rc *model.ReferentialContext, wire *at4Wire) error {
	if n := len(wire.Scenarios); n < minOperationalPerStrategic || n > maxOperationalPerStrategic {
		return goerr.Wrap(types.ErrSchemaViolation, "operational scenario count out of bounds",
			goerr.V("strategic_scenario", parent.Code), goerr.V("count", n),
			goerr.V("min", minOperationalPerStrategic), goerr.V("max", maxOperationalPerStrategic))
	}

	for _, ws := range wire.Scenarios {
		if ref := strings.TrimSpace(ws.StrategicRef); ref != "" {
			s, err := resolveStrategicScenario(rc, ref)
			if err != nil {
				return goerr.Wrap(err, "operational scenario parent", goerr.V("strategic_scenario", parent.Code))
			}
			if s.Code != parent.Code {
				return goerr.Wrap(types.ErrReferentialIntegrity, "operational scenario references another strategic scenario",
					goerr.V("strategic_scenario", parent.Code), goerr.V("ref", ws.StrategicRef))
			}
		}
		// An altered inherited severity is reported, never patched.
		if ws.Severity != nil && types.Gravity(*ws.Severity) != parent.Severity {
			return goerr.Wrap(types.ErrPolicyViolation, "generator altered the inherited severity",
				goerr.V("strategic_scenario", parent.Code), goerr.V("inherited", int(parent.Severity)),
				goerr.V("asserted", *ws.Severity))
		}
		for _, step := range ws.Steps {
			if _, err := types.ParseStepKind(step.Kind); err != nil {
				return goerr.Wrap(err, "operational scenario step kind",
					goerr.V("strategic_scenario", parent.Code), goerr.V("title", ws.Title))
			}
			if _, err := resolveAssets(rc, step.AssetRefs); err != nil {
				return goerr.Wrap(err, "operational scenario step assets",
					goerr.V("strategic_scenario", parent.Code), goerr.V("title", ws.Title))
			}
		}
	}
	return nil
}

// acceptOperational turns the gathered decompositions into entities in
// strategic scenario order, validates them and commits the full batch.
func (uc *UseCases) acceptOperational(ctx context.Context, project *model.Project, rc *model.ReferentialContext, parents []*model.StrategicScenario, wires map[types.RefCode]*at4Wire) ([]*model.OperationalScenario, error) {
	seq, err := uc.repo.OperationalScenario().MaxSeq(ctx, project.ID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	var scenarios []*model.OperationalScenario
	for _, parent := range parents {
		wire, ok := wires[parent.Code]
		if !ok || len(wire.Scenarios) == 0 {
			return nil, goerr.Wrap(types.ErrPolicyViolation, "strategic scenario has no operational decomposition",
				goerr.V("strategic_scenario", parent.Code))
		}
		for _, ws := range wire.Scenarios {
			likelihood := types.Likelihood(ws.Likelihood)
			if err := likelihood.Validate(); err != nil {
				return nil, goerr.Wrap(err, "operational scenario likelihood", goerr.V("title", ws.Title))
			}
			score, err := types.NewScore(parent.Severity, likelihood)
			if err != nil {
				return nil, err
			}

			steps := make([]model.AttackStep, 0, len(ws.Steps))
			for _, wstep := range ws.Steps {
				kind, err := types.ParseStepKind(wstep.Kind)
				if err != nil {
					return nil, err
				}
				targets, err := resolveAssets(rc, wstep.AssetRefs)
				if err != nil {
					return nil, err
				}
				steps = append(steps, model.AttackStep{
					Order:            wstep.Order,
					Summary:          strings.TrimSpace(wstep.Summary),
					Detail:           wstep.Detail,
					TargetAssetCodes: targets,
					Kind:             kind,
				})
			}

			seq++
			o := &model.OperationalScenario{
				ID:                    uuid.New().String(),
				Code:                  types.NewRefCode("SO", seq),
				ProjectID:             project.ID,
				Title:                 strings.TrimSpace(ws.Title),
				Description:           ws.Description,
				StrategicScenarioCode: parent.Code,
				Severity:              parent.Severity,
				Likelihood:            likelihood,
				Score:                 score,
				Steps:                 steps,
				Justification:         ws.Justification,
				Source:                types.SourceAI,
				OrderIndex:            len(scenarios),
				CreatedAt:             now,
			}
			if err := o.Validate(); err != nil {
				return nil, err
			}
			scenarios = append(scenarios, o)
		}
	}

	if err := uc.repo.OperationalScenario().PutBatch(ctx, project.ID, scenarios); err != nil {
		return nil, err
	}
	if err := uc.markWorkshopDone(ctx, project, types.WorkshopOperational); err != nil {
		return nil, err
	}
	return scenarios, nil
}

func at4UserPrompt(parent *model.StrategicScenario, rc *model.ReferentialContext) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# Strategic scenario %s\n\n", parent.Code)
	fmt.Fprintf(&sb, "Title: %s\n", parent.Title)
	fmt.Fprintf(&sb, "Description: %s\n", parent.Description)
	fmt.Fprintf(&sb, "Vulnerability: %s\n", parent.Vulnerability.Label)
	fmt.Fprintf(&sb, "Gravity: %d (inherited, do not change)\n", parent.Severity)
	if source, ok := rc.RiskSource(parent.RiskSourceCode); ok {
		fmt.Fprintf(&sb, "Risk source: %s (%s)\n", source.Label, source.Category)
	}
	if event, ok := rc.FearedEvent(parent.FearedEventCode); ok {
		fmt.Fprintf(&sb, "Feared event: %s [%s]\n", event.Label, event.Criterion)
	}

	sb.WriteString("\n# Supporting assets in scope\n\n")
	for _, code := range parent.AssetCodes {
		if a, ok := rc.SupportingAsset(code); ok {
			fmt.Fprintf(&sb, "- %s: %s [%s]\n", a.Code, a.Label, a.Kind)
		}
	}

	fmt.Fprintf(&sb, "\nDecompose scenario %s into operational scenarios.", parent.Code)
	return sb.String()
}

func at4Schema() *gollem.Parameter {
	return &gollem.Parameter{
		Title:       "OperationalScenarioWorkshop",
		Description: "Operational decompositions of one strategic scenario",
		Type:        gollem.TypeObject,
		Properties: map[string]*gollem.Parameter{
			"scenarios_operationnels": {
				Type:        gollem.TypeArray,
				Description: "1 to 3 operational scenarios",
				Required:    true,
				Items: &gollem.Parameter{
					Type: gollem.TypeObject,
					Properties: map[string]*gollem.Parameter{
						"titre":                    {Type: gollem.TypeString, Required: true},
						"description":              {Type: gollem.TypeString, Required: true},
						"scenario_strategique_ref": {Type: gollem.TypeString, Description: "code of the strategic scenario", Required: true},
						"vraisemblance":            {Type: gollem.TypeInteger, Description: "likelihood (1-4)", Required: true},
						"justification":            {Type: gollem.TypeString},
						"etapes": {
							Type:        gollem.TypeArray,
							Description: "3 to 7 ordered attack steps",
							Required:    true,
							Items: &gollem.Parameter{
								Type: gollem.TypeObject,
								Properties: map[string]*gollem.Parameter{
									"ordre":   {Type: gollem.TypeInteger, Description: "contiguous from 1", Required: true},
									"resume":  {Type: gollem.TypeString, Required: true},
									"details": {Type: gollem.TypeString},
									"actifs_cibles": {
										Type:  gollem.TypeArray,
										Items: &gollem.Parameter{Type: gollem.TypeString},
									},
									"type_etape": {Type: gollem.TypeString,
										Description: "INITIAL_ACCESS, EXECUTION, PERSISTENCE, MOVEMENT or IMPACT",
										Required:    true},
								},
							},
						},
					},
				},
			},
		},
	}
}
