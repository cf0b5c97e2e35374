package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cybergard/ebiosgard/pkg/domain/model"
	"github.com/cybergard/ebiosgard/pkg/domain/types"
	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
)

// Cardinality bounds of the strategic scenario workshop
const (
	minStrategicScenarios = 3
	maxStrategicScenarios = 6
)

type at3Wire struct {
	Scenarios []at3Scenario `json:"scenarios_strategiques"`
}

type at3Scenario struct {
	Title          string           `json:"titre"`
	Description    string           `json:"description"`
	RiskSourceRef  string           `json:"source_risque_ref"`
	FearedEventRef string           `json:"evenement_redoute_ref"`
	Vulnerability  at3Vulnerability `json:"vulnerabilite"`
	AssetRefs      []string         `json:"biens_supports_refs"`
	PathSummary    string           `json:"chemin_attaque"`
	Likelihood     int              `json:"vraisemblance"`
	Justification  string           `json:"justification"`

	// Accepted so strict decoding does not reject a chatty generator;
	// both are engine-derived and discarded on acceptance.
	Severity *int `json:"gravite,omitempty"`
	Score    *int `json:"score,omitempty"`
}

type at3Vulnerability struct {
	Code        string `json:"code"`
	Label       string `json:"intitule"`
	Description string `json:"description"`
}

// StrategicScenarios runs workshop 3: it generates candidate strategic
// scenarios, resolves their references against workshops 1 and 2,
// derives severity and score from the referenced feared event, and
// commits the batch all or nothing.
func (uc *UseCases) StrategicScenarios(ctx context.Context, projectID types.ProjectID) ([]*model.StrategicScenario, error) {
	project, err := uc.guardStage(ctx, projectID, types.WorkshopStrategic)
	if err != nil {
		return nil, err
	}
	rc, err := uc.buildContext(ctx, projectID)
	if err != nil {
		return nil, err
	}

	systemPrompt, err := renderSystemPrompt(at3SystemPrompt, uc.catalog.Bundle(types.WorkshopStrategic))
	if err != nil {
		return nil, err
	}
	userPrompt := at3UserPrompt(project, rc)

	var result []*model.StrategicScenario
	err = uc.runGeneration(ctx, project, types.WorkshopStrategic,
		systemPrompt, userPrompt, at3Schema(),
		func() any { return &at3Wire{} },
		func(out any) error {
			r, err := uc.acceptStrategic(ctx, project, rc, out.(*at3Wire))
			if err != nil {
				return err
			}
			result = r
			return nil
		},
	)
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (uc *UseCases) acceptStrategic(ctx context.Context, project *model.Project, rc *model.ReferentialContext, wire *at3Wire) ([]*model.StrategicScenario, error) {
	if n := len(wire.Scenarios); n < minStrategicScenarios || n > maxStrategicScenarios {
		return nil, goerr.Wrap(types.ErrSchemaViolation, "strategic scenario count out of bounds",
			goerr.V("count", n), goerr.V("min", minStrategicScenarios), goerr.V("max", maxStrategicScenarios))
	}

	seq, err := uc.repo.StrategicScenario().MaxSeq(ctx, project.ID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	scenarios := make([]*model.StrategicScenario, 0, len(wire.Scenarios))
	for i, ws := range wire.Scenarios {
		source, err := resolveRiskSource(rc, ws.RiskSourceRef)
		if err != nil {
			return nil, goerr.Wrap(err, "strategic scenario risk source", goerr.V("title", ws.Title))
		}
		if !source.Selected {
			return nil, goerr.Wrap(types.ErrPolicyViolation, "strategic scenario uses a non-retained risk source",
				goerr.V("title", ws.Title), goerr.V("risk_source", source.Code))
		}
		event, err := resolveFearedEvent(rc, ws.FearedEventRef)
		if err != nil {
			return nil, goerr.Wrap(err, "strategic scenario feared event", goerr.V("title", ws.Title))
		}
		assetCodes, err := resolveAssets(rc, ws.AssetRefs)
		if err != nil {
			return nil, goerr.Wrap(err, "strategic scenario assets", goerr.V("title", ws.Title))
		}

		// Severity always comes from the feared event and the score
		// from the factors; whatever the generator asserted for either
		// is discarded here.
		likelihood := types.Likelihood(ws.Likelihood)
		if err := likelihood.Validate(); err != nil {
			return nil, goerr.Wrap(err, "strategic scenario likelihood", goerr.V("title", ws.Title))
		}
		score, err := types.NewScore(event.Severity, likelihood)
		if err != nil {
			return nil, err
		}

		s := &model.StrategicScenario{
			ID:              uuid.New().String(),
			Code:            types.NewRefCode("SS", seq+i+1),
			ProjectID:       project.ID,
			Title:           strings.TrimSpace(ws.Title),
			Description:     ws.Description,
			RiskSourceCode:  source.Code,
			FearedEventCode: event.Code,
			Vulnerability: model.StrategicVulnerability{
				Code:        strings.TrimSpace(ws.Vulnerability.Code),
				Label:       strings.TrimSpace(ws.Vulnerability.Label),
				Description: ws.Vulnerability.Description,
			},
			AssetCodes:    assetCodes,
			PathSummary:   ws.PathSummary,
			Severity:      event.Severity,
			Likelihood:    likelihood,
			Score:         score,
			Justification: ws.Justification,
			Source:        types.SourceAI,
			OrderIndex:    i,
			CreatedAt:     now,
		}
		if err := s.Validate(); err != nil {
			return nil, err
		}
		scenarios = append(scenarios, s)
	}

	if err := uc.repo.StrategicScenario().PutBatch(ctx, project.ID, scenarios); err != nil {
		return nil, err
	}
	if err := uc.markWorkshopDone(ctx, project, types.WorkshopStrategic); err != nil {
		return nil, err
	}
	return scenarios, nil
}

func at3UserPrompt(project *model.Project, rc *model.ReferentialContext) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# Organization\n\nName: %s (%s)\n", project.Name, project.Sector)

	sb.WriteString("\n# Retained risk sources (workshop 2)\n\n")
	for _, s := range rc.RiskSources() {
		if !s.Selected {
			continue
		}
		fmt.Fprintf(&sb, "- %s: %s [%s, pertinence %d]\n", s.Code, s.Label, s.Category, s.Pertinence)
	}

	sb.WriteString("\n# Supporting assets (workshop 1)\n\n")
	for _, a := range rc.SupportingAssets() {
		fmt.Fprintf(&sb, "- %s: %s [%s]\n", a.Code, a.Label, a.Kind)
	}

	sb.WriteString("\n# Feared events (workshop 1)\n\n")
	for _, e := range rc.FearedEvents() {
		fmt.Fprintf(&sb, "- %s: %s [%s, gravity %d]\n", e.Code, e.Label, e.Criterion, e.Severity)
	}

	sb.WriteString("\nBuild the strategic scenarios, referencing the codes above.")
	return sb.String()
}

func at3Schema() *gollem.Parameter {
	return &gollem.Parameter{
		Title:       "StrategicScenarioWorkshop",
		Description: "Strategic attack scenarios combining sources, vulnerabilities, assets and feared events",
		Type:        gollem.TypeObject,
		Properties: map[string]*gollem.Parameter{
			"scenarios_strategiques": {
				Type:        gollem.TypeArray,
				Description: "3 to 6 strategic scenarios",
				Required:    true,
				Items: &gollem.Parameter{
					Type: gollem.TypeObject,
					Properties: map[string]*gollem.Parameter{
						"titre":                 {Type: gollem.TypeString, Required: true},
						"description":           {Type: gollem.TypeString, Required: true},
						"source_risque_ref":     {Type: gollem.TypeString, Description: "code of a retained risk source", Required: true},
						"evenement_redoute_ref": {Type: gollem.TypeString, Description: "code of a feared event", Required: true},
						"vulnerabilite": {
							Type:     gollem.TypeObject,
							Required: true,
							Properties: map[string]*gollem.Parameter{
								"code":        {Type: gollem.TypeString, Required: true},
								"intitule":    {Type: gollem.TypeString, Description: "at least 10 characters", Required: true},
								"description": {Type: gollem.TypeString},
							},
						},
						"biens_supports_refs": {
							Type:     gollem.TypeArray,
							Required: true,
							Items:    &gollem.Parameter{Type: gollem.TypeString},
						},
						"chemin_attaque": {Type: gollem.TypeString, Description: "attack path summary"},
						"vraisemblance":  {Type: gollem.TypeInteger, Description: "likelihood (1-4)", Required: true},
						"justification":  {Type: gollem.TypeString},
					},
				},
			},
		},
	}
}
