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

// Cardinality bounds of the risk source workshop
const (
	minRiskSources = 4
	maxRiskSources = 10
)

type at2Wire struct {
	Sources []at2Source `json:"sources_risque"`
}

type at2Source struct {
	Label         string         `json:"label"`
	Category      string         `json:"categorie"`
	Description   string         `json:"description"`
	Pertinence    int            `json:"pertinence"`
	Justification string         `json:"justification"`
	Selected      bool           `json:"retenue"`
	Objectives    []at2Objective `json:"objectifs_vises"`
}

type at2Objective struct {
	Label           string   `json:"label"`
	Description     string   `json:"description"`
	FearedEventRefs []string `json:"evenements_redoutes_refs"`
}

// RiskSources runs workshop 2: it generates candidate risk sources
// with their targeted objectives, cross-checks every feared event
// reference against workshop 1 output, and commits the batch all or
// nothing.
func (uc *UseCases) RiskSources(ctx context.Context, projectID types.ProjectID) ([]*model.RiskSource, error) {
	project, err := uc.guardStage(ctx, projectID, types.WorkshopRiskSources)
	if err != nil {
		return nil, err
	}
	rc, err := uc.buildContext(ctx, projectID)
	if err != nil {
		return nil, err
	}

	systemPrompt, err := renderSystemPrompt(at2SystemPrompt, uc.catalog.Bundle(types.WorkshopRiskSources))
	if err != nil {
		return nil, err
	}
	userPrompt := at2UserPrompt(project, rc)

	var result []*model.RiskSource
	err = uc.runGeneration(ctx, project, types.WorkshopRiskSources,
		systemPrompt, userPrompt, at2Schema(),
		func() any { return &at2Wire{} },
		func(out any) error {
			r, err := uc.acceptRiskSources(ctx, project, rc, out.(*at2Wire))
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

func (uc *UseCases) acceptRiskSources(ctx context.Context, project *model.Project, rc *model.ReferentialContext, wire *at2Wire) ([]*model.RiskSource, error) {
	if n := len(wire.Sources); n < minRiskSources || n > maxRiskSources {
		return nil, goerr.Wrap(types.ErrSchemaViolation, "risk source count out of bounds",
			goerr.V("count", n), goerr.V("min", minRiskSources), goerr.V("max", maxRiskSources))
	}

	seq, err := uc.repo.RiskSource().MaxSeq(ctx, project.ID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	sources := make([]*model.RiskSource, 0, len(wire.Sources))
	selected := 0
	for i, ws := range wire.Sources {
		category := strings.ToUpper(strings.TrimSpace(ws.Category))
		if !uc.catalog.IsStandardCategory(category) {
			return nil, goerr.Wrap(types.ErrSchemaViolation, "risk source category is not in the standard catalog",
				goerr.V("source", ws.Label), goerr.V("category", ws.Category))
		}

		objectives := make([]model.TargetedObjective, 0, len(ws.Objectives))
		for _, wo := range ws.Objectives {
			eventCodes := make([]types.RefCode, 0, len(wo.FearedEventRefs))
			for _, ref := range wo.FearedEventRefs {
				event, err := resolveFearedEvent(rc, ref)
				if err != nil {
					return nil, goerr.Wrap(err, "targeted objective feared event",
						goerr.V("source", ws.Label), goerr.V("objective", wo.Label))
				}
				eventCodes = append(eventCodes, event.Code)
			}
			objectives = append(objectives, model.TargetedObjective{
				Label:            strings.TrimSpace(wo.Label),
				Description:      wo.Description,
				FearedEventCodes: eventCodes,
			})
		}

		s := &model.RiskSource{
			ID:            uuid.New().String(),
			Code:          types.NewRefCode("SR", seq+i+1),
			ProjectID:     project.ID,
			Label:         strings.TrimSpace(ws.Label),
			Category:      category,
			Description:   ws.Description,
			Pertinence:    types.Pertinence(ws.Pertinence),
			Justification: ws.Justification,
			Selected:      ws.Selected,
			Objectives:    objectives,
			Source:        types.SourceAI,
			OrderIndex:    i,
			CreatedAt:     now,
		}
		if err := s.Validate(); err != nil {
			return nil, err
		}
		if s.Selected {
			selected++
		}
		sources = append(sources, s)
	}

	// An analysis without a single retained source cannot feed the
	// scenario workshops.
	if selected == 0 {
		return nil, goerr.Wrap(types.ErrPolicyViolation, "no risk source is retained",
			goerr.V("count", len(sources)))
	}

	if err := uc.repo.RiskSource().PutBatch(ctx, project.ID, sources); err != nil {
		return nil, err
	}
	if err := uc.markWorkshopDone(ctx, project, types.WorkshopRiskSources); err != nil {
		return nil, err
	}
	return sources, nil
}

func at2UserPrompt(project *model.Project, rc *model.ReferentialContext) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# Organization\n\nName: %s\n", project.Name)
	if project.Sector != "" {
		fmt.Fprintf(&sb, "Sector: %s\n", project.Sector)
	}
	if project.Description != "" {
		fmt.Fprintf(&sb, "\n%s\n", project.Description)
	}

	sb.WriteString("\n# Feared events (workshop 1)\n\n")
	for _, e := range rc.FearedEvents() {
		fmt.Fprintf(&sb, "- %s: %s [%s, gravity %d]\n", e.Code, e.Label, e.Criterion, e.Severity)
	}

	sb.WriteString("\nIdentify the risk sources for this organization and link their objectives to the feared events above.")
	return sb.String()
}

func at2Schema() *gollem.Parameter {
	return &gollem.Parameter{
		Title:       "RiskSourceWorkshop",
		Description: "Risk sources with their targeted objectives",
		Type:        gollem.TypeObject,
		Properties: map[string]*gollem.Parameter{
			"sources_risque": {
				Type:        gollem.TypeArray,
				Description: "4 to 10 risk sources",
				Required:    true,
				Items: &gollem.Parameter{
					Type: gollem.TypeObject,
					Properties: map[string]*gollem.Parameter{
						"label":         {Type: gollem.TypeString, Required: true},
						"categorie":     {Type: gollem.TypeString, Description: "one of the standard categories", Required: true},
						"description":   {Type: gollem.TypeString, Required: true},
						"pertinence":    {Type: gollem.TypeInteger, Description: "pertinence (1-4)", Required: true},
						"justification": {Type: gollem.TypeString},
						"retenue":       {Type: gollem.TypeBoolean, Description: "retained for the next workshops", Required: true},
						"objectifs_vises": {
							Type:        gollem.TypeArray,
							Description: "1 to 5 targeted objectives",
							Required:    true,
							Items: &gollem.Parameter{
								Type: gollem.TypeObject,
								Properties: map[string]*gollem.Parameter{
									"label":       {Type: gollem.TypeString, Required: true},
									"description": {Type: gollem.TypeString, Required: true},
									"evenements_redoutes_refs": {
										Type:     gollem.TypeArray,
										Required: true,
										Items:    &gollem.Parameter{Type: gollem.TypeString},
									},
								},
							},
						},
					},
				},
			},
		},
	}
}
