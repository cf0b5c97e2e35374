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

// Cardinality bounds of the scoping workshop
const (
	minBusinessValues = 3
	maxBusinessValues = 7
	minAssets         = 5
	maxAssets         = 12
	minFearedEvents   = 5
	maxFearedEvents   = 12
)

// Wire contract of workshop 1. Field names follow the prompt contract;
// strict decoding rejects anything outside it.
type at1Wire struct {
	BusinessValues []at1Value `json:"valeurs_metier"`
	Assets         []at1Asset `json:"biens_supports"`
	FearedEvents   []at1Event `json:"evenements_redoutes"`
}

type at1Value struct {
	Label       string `json:"label"`
	Description string `json:"description"`
	Criticality int    `json:"criticite"`
}

type at1Asset struct {
	Label            string `json:"label"`
	Kind             string `json:"type"`
	Description      string `json:"description"`
	Criticality      int    `json:"criticite"`
	BusinessValueRef string `json:"valeur_metier_ref"`
}

type at1Event struct {
	Label            string   `json:"label"`
	Description      string   `json:"description"`
	Criterion        string   `json:"critere"`
	Severity         int      `json:"gravite"`
	Justification    string   `json:"justification"`
	BusinessValueRef string   `json:"valeur_metier_ref"`
	AssetRefs        []string `json:"biens_supports_refs"`
}

// ScopingResult is the committed output of workshop 1
type ScopingResult struct {
	BusinessValues []*model.BusinessValue
	Assets         []*model.SupportingAsset
	FearedEvents   []*model.FearedEvent
}

// Scoping runs workshop 1: it generates candidate business values,
// supporting assets and feared events, validates them as one batch and
// commits them all or nothing.
func (uc *UseCases) Scoping(ctx context.Context, projectID types.ProjectID) (*ScopingResult, error) {
	project, err := uc.guardStage(ctx, projectID, types.WorkshopScoping)
	if err != nil {
		return nil, err
	}

	systemPrompt, err := renderSystemPrompt(at1SystemPrompt, uc.catalog.Bundle(types.WorkshopScoping))
	if err != nil {
		return nil, err
	}
	userPrompt := at1UserPrompt(project)

	var result *ScopingResult
	err = uc.runGeneration(ctx, project, types.WorkshopScoping,
		systemPrompt, userPrompt, at1Schema(),
		func() any { return &at1Wire{} },
		func(out any) error {
			r, err := uc.acceptScoping(ctx, project, out.(*at1Wire))
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

// acceptScoping validates a workshop 1 batch, resolves its in-batch
// references, assigns codes and commits it.
func (uc *UseCases) acceptScoping(ctx context.Context, project *model.Project, wire *at1Wire) (*ScopingResult, error) {
	if n := len(wire.BusinessValues); n < minBusinessValues || n > maxBusinessValues {
		return nil, goerr.Wrap(types.ErrSchemaViolation, "business value count out of bounds",
			goerr.V("count", n), goerr.V("min", minBusinessValues), goerr.V("max", maxBusinessValues))
	}
	if n := len(wire.Assets); n < minAssets || n > maxAssets {
		return nil, goerr.Wrap(types.ErrSchemaViolation, "supporting asset count out of bounds",
			goerr.V("count", n), goerr.V("min", minAssets), goerr.V("max", maxAssets))
	}
	if n := len(wire.FearedEvents); n < minFearedEvents || n > maxFearedEvents {
		return nil, goerr.Wrap(types.ErrSchemaViolation, "feared event count out of bounds",
			goerr.V("count", n), goerr.V("min", minFearedEvents), goerr.V("max", maxFearedEvents))
	}

	now := time.Now().UTC()

	valueSeq, err := uc.repo.BusinessValue().MaxSeq(ctx, project.ID)
	if err != nil {
		return nil, err
	}
	values := make([]*model.BusinessValue, 0, len(wire.BusinessValues))
	valueByLabel := make(map[string]types.RefCode, len(wire.BusinessValues))
	for i, wv := range wire.BusinessValues {
		v := &model.BusinessValue{
			ID:          uuid.New().String(),
			Code:        types.NewRefCode("VM", valueSeq+i+1),
			ProjectID:   project.ID,
			Label:       strings.TrimSpace(wv.Label),
			Description: wv.Description,
			Criticality: types.Gravity(wv.Criticality),
			Source:      types.SourceAI,
			OrderIndex:  i,
			CreatedAt:   now,
		}
		if err := v.Validate(); err != nil {
			return nil, err
		}
		valueByLabel[v.Label] = v.Code
		valueByLabel[string(v.Code)] = v.Code
		values = append(values, v)
	}

	assetSeq, err := uc.repo.SupportingAsset().MaxSeq(ctx, project.ID)
	if err != nil {
		return nil, err
	}
	assets := make([]*model.SupportingAsset, 0, len(wire.Assets))
	assetByLabel := make(map[string]types.RefCode, len(wire.Assets))
	for i, wa := range wire.Assets {
		vmCode, ok := valueByLabel[strings.TrimSpace(wa.BusinessValueRef)]
		if !ok {
			return nil, goerr.Wrap(types.ErrReferentialIntegrity, "supporting asset references an unknown business value",
				goerr.V("asset", wa.Label), goerr.V("ref", wa.BusinessValueRef))
		}
		a := &model.SupportingAsset{
			ID:                uuid.New().String(),
			Code:              types.NewRefCode("BS", assetSeq+i+1),
			ProjectID:         project.ID,
			Label:             strings.TrimSpace(wa.Label),
			Kind:              strings.TrimSpace(wa.Kind),
			Description:       wa.Description,
			Criticality:       types.Gravity(wa.Criticality),
			BusinessValueCode: vmCode,
			Source:            types.SourceAI,
			OrderIndex:        i,
			CreatedAt:         now,
		}
		if err := a.Validate(); err != nil {
			return nil, err
		}
		assetByLabel[a.Label] = a.Code
		assetByLabel[string(a.Code)] = a.Code
		assets = append(assets, a)
	}

	eventSeq, err := uc.repo.FearedEvent().MaxSeq(ctx, project.ID)
	if err != nil {
		return nil, err
	}
	events := make([]*model.FearedEvent, 0, len(wire.FearedEvents))
	for i, we := range wire.FearedEvents {
		criterion, err := types.ParseSecurityCriterion(we.Criterion)
		if err != nil {
			return nil, goerr.Wrap(err, "feared event criterion", goerr.V("event", we.Label))
		}
		vmCode, ok := valueByLabel[strings.TrimSpace(we.BusinessValueRef)]
		if !ok {
			return nil, goerr.Wrap(types.ErrReferentialIntegrity, "feared event references an unknown business value",
				goerr.V("event", we.Label), goerr.V("ref", we.BusinessValueRef))
		}
		assetCodes := make([]types.RefCode, 0, len(we.AssetRefs))
		for _, ref := range we.AssetRefs {
			code, ok := assetByLabel[strings.TrimSpace(ref)]
			if !ok {
				return nil, goerr.Wrap(types.ErrReferentialIntegrity, "feared event references an unknown supporting asset",
					goerr.V("event", we.Label), goerr.V("ref", ref))
			}
			assetCodes = append(assetCodes, code)
		}
		e := &model.FearedEvent{
			ID:                uuid.New().String(),
			Code:              types.NewRefCode("ER", eventSeq+i+1),
			ProjectID:         project.ID,
			Label:             strings.TrimSpace(we.Label),
			Description:       we.Description,
			Criterion:         criterion,
			Severity:          types.Gravity(we.Severity),
			Justification:     we.Justification,
			BusinessValueCode: vmCode,
			AssetCodes:        assetCodes,
			Source:            types.SourceAI,
			OrderIndex:        i,
			CreatedAt:         now,
		}
		if err := e.Validate(); err != nil {
			return nil, err
		}
		events = append(events, e)
	}

	// Validation is complete; nothing before this point has touched
	// the repository.
	if err := uc.repo.BusinessValue().PutBatch(ctx, project.ID, values); err != nil {
		return nil, err
	}
	if err := uc.repo.SupportingAsset().PutBatch(ctx, project.ID, assets); err != nil {
		return nil, err
	}
	if err := uc.repo.FearedEvent().PutBatch(ctx, project.ID, events); err != nil {
		return nil, err
	}
	if err := uc.markWorkshopDone(ctx, project, types.WorkshopScoping); err != nil {
		return nil, err
	}

	return &ScopingResult{BusinessValues: values, Assets: assets, FearedEvents: events}, nil
}

func at1UserPrompt(project *model.Project) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# Organization\n\nName: %s\n", project.Name)
	if project.Sector != "" {
		fmt.Fprintf(&sb, "Sector: %s\n", project.Sector)
	}
	if project.Description != "" {
		fmt.Fprintf(&sb, "\n%s\n", project.Description)
	}
	if project.AdditionalContext != "" {
		fmt.Fprintf(&sb, "\n# Additional context\n\n%s\n", project.AdditionalContext)
	}
	sb.WriteString("\nRun the scoping workshop for this organization.")
	return sb.String()
}

func at1Schema() *gollem.Parameter {
	scale := func(desc string) *gollem.Parameter {
		return &gollem.Parameter{Type: gollem.TypeInteger, Description: desc + " (1-4)", Required: true}
	}
	return &gollem.Parameter{
		Title:       "ScopingWorkshop",
		Description: "Business values, supporting assets and feared events of the organization",
		Type:        gollem.TypeObject,
		Properties: map[string]*gollem.Parameter{
			"valeurs_metier": {
				Type:        gollem.TypeArray,
				Description: "3 to 7 business values",
				Required:    true,
				Items: &gollem.Parameter{
					Type: gollem.TypeObject,
					Properties: map[string]*gollem.Parameter{
						"label":       {Type: gollem.TypeString, Required: true},
						"description": {Type: gollem.TypeString, Required: true},
						"criticite":   scale("criticality"),
					},
				},
			},
			"biens_supports": {
				Type:        gollem.TypeArray,
				Description: "5 to 12 supporting assets",
				Required:    true,
				Items: &gollem.Parameter{
					Type: gollem.TypeObject,
					Properties: map[string]*gollem.Parameter{
						"label":             {Type: gollem.TypeString, Required: true},
						"type":              {Type: gollem.TypeString, Description: "asset kind", Required: true},
						"description":       {Type: gollem.TypeString, Required: true},
						"criticite":         scale("criticality"),
						"valeur_metier_ref": {Type: gollem.TypeString, Description: "label of the supported business value", Required: true},
					},
				},
			},
			"evenements_redoutes": {
				Type:        gollem.TypeArray,
				Description: "5 to 12 feared events",
				Required:    true,
				Items: &gollem.Parameter{
					Type: gollem.TypeObject,
					Properties: map[string]*gollem.Parameter{
						"label":             {Type: gollem.TypeString, Required: true},
						"description":       {Type: gollem.TypeString, Required: true},
						"critere":           {Type: gollem.TypeString, Description: "confidentialite, integrite, disponibilite or tracabilite", Required: true},
						"gravite":           scale("severity"),
						"justification":     {Type: gollem.TypeString},
						"valeur_metier_ref": {Type: gollem.TypeString, Required: true},
						"biens_supports_refs": {
							Type:     gollem.TypeArray,
							Required: true,
							Items:    &gollem.Parameter{Type: gollem.TypeString},
						},
					},
				},
			},
		},
	}
}
