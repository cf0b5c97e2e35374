package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cybergard/ebiosgard/pkg/domain/model"
	"github.com/cybergard/ebiosgard/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
)

type at6Wire struct {
	Decisions []at6Decision `json:"plan_traitement"`
	Synthesis at6Synthesis  `json:"synthese"`
}

type at6Decision struct {
	RiskRef            string      `json:"risque_ref"`
	Strategy           string      `json:"strategie"`
	Rationale          string      `json:"justification"`
	ResidualLikelihood int         `json:"vraisemblance_residuelle"`
	Actions            []at6Action `json:"actions"`
}

type at6Action struct {
	Label       string   `json:"label"`
	Description string   `json:"description"`
	Category    string   `json:"categorie"`
	Priority    string   `json:"priorite,omitempty"`
	RiskRefs    []string `json:"risques_couverts"`
	Owner       string   `json:"responsable_suggere,omitempty"`
	Horizon     string   `json:"delai_suggere,omitempty"`
}

type at6Synthesis struct {
	Overview        string   `json:"resume"`
	MajorRiskRefs   []string `json:"risques_majeurs"`
	Recommendations []string `json:"recommandations"`
}

// Treatment runs workshop 6: it derives the current risk matrix, asks
// the generator for a treatment decision per classified risk, checks
// every decision against the band admissibility rules and commits the
// plan as a whole.
func (uc *UseCases) Treatment(ctx context.Context, projectID types.ProjectID) (*model.TreatmentPlan, error) {
	project, err := uc.guardStage(ctx, projectID, types.WorkshopTreatment)
	if err != nil {
		return nil, err
	}
	matrix, err := uc.Matrix(ctx, projectID)
	if err != nil {
		return nil, err
	}

	systemPrompt, err := renderSystemPrompt(at6SystemPrompt, uc.catalog.Bundle(types.WorkshopTreatment))
	if err != nil {
		return nil, err
	}
	userPrompt := at6UserPrompt(matrix)

	var result *model.TreatmentPlan
	err = uc.runGeneration(ctx, project, types.WorkshopTreatment,
		systemPrompt, userPrompt, at6Schema(),
		func() any { return &at6Wire{} },
		func(out any) error {
			r, err := uc.acceptTreatment(ctx, project, matrix, out.(*at6Wire))
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

// acceptTreatment validates a candidate plan against the matrix. Every
// classified risk must receive exactly one decision, every strategy
// must be admissible for the risk's band, and a residual likelihood can
// never exceed the assessed one.
func (uc *UseCases) acceptTreatment(ctx context.Context, project *model.Project, matrix *model.RiskMatrix, wire *at6Wire) (*model.TreatmentPlan, error) {
	riskByCode := make(map[types.RefCode]*model.Risk, len(matrix.Risks))
	for i := range matrix.Risks {
		riskByCode[matrix.Risks[i].OperationalScenarioCode] = &matrix.Risks[i]
	}

	resolveRisk := func(ref string) (*model.Risk, error) {
		ref = strings.TrimSpace(ref)
		if r, ok := riskByCode[types.RefCode(ref)]; ok {
			return r, nil
		}
		for i := range matrix.Risks {
			if matrix.Risks[i].Title == ref {
				return &matrix.Risks[i], nil
			}
		}
		return nil, goerr.Wrap(types.ErrReferentialIntegrity, "treatment decision references an unknown risk",
			goerr.V("ref", ref))
	}

	decided := make(map[types.RefCode]bool, len(matrix.Risks))
	decisions := make([]model.TreatmentDecision, 0, len(wire.Decisions))
	for _, wd := range wire.Decisions {
		risk, err := resolveRisk(wd.RiskRef)
		if err != nil {
			return nil, err
		}
		if decided[risk.OperationalScenarioCode] {
			return nil, goerr.Wrap(types.ErrReferentialIntegrity, "risk has more than one treatment decision",
				goerr.V("risk", risk.OperationalScenarioCode))
		}
		decided[risk.OperationalScenarioCode] = true

		strategy, err := types.ParseStrategy(wd.Strategy)
		if err != nil {
			return nil, goerr.Wrap(err, "treatment strategy", goerr.V("risk", risk.OperationalScenarioCode))
		}
		if !strategy.Admissible(risk.Band) {
			return nil, goerr.Wrap(types.ErrPolicyViolation, "strategy is not admissible for the risk band",
				goerr.V("risk", risk.OperationalScenarioCode), goerr.V("band", risk.Band),
				goerr.V("strategy", strategy))
		}

		residual := types.Likelihood(wd.ResidualLikelihood)
		if err := residual.Validate(); err != nil {
			return nil, goerr.Wrap(err, "residual likelihood", goerr.V("risk", risk.OperationalScenarioCode))
		}
		// Treatment can only lower or hold the likelihood; raising it
		// is a contradiction the generator must resolve.
		if residual > risk.Likelihood {
			return nil, goerr.Wrap(types.ErrPolicyViolation, "residual likelihood exceeds the assessed likelihood",
				goerr.V("risk", risk.OperationalScenarioCode),
				goerr.V("assessed", int(risk.Likelihood)), goerr.V("residual", int(residual)))
		}

		actions := make([]model.TreatmentAction, 0, len(wd.Actions))
		for i, wa := range wd.Actions {
			category, err := types.ParseActionCategory(wa.Category)
			if err != nil {
				return nil, goerr.Wrap(err, "treatment action category",
					goerr.V("risk", risk.OperationalScenarioCode), goerr.V("action", wa.Label))
			}
			priority, err := types.ParseActionPriority(wa.Priority)
			if err != nil {
				return nil, goerr.Wrap(err, "treatment action priority",
					goerr.V("risk", risk.OperationalScenarioCode), goerr.V("action", wa.Label))
			}
			if priority == "" {
				priority = types.DefaultPriority(risk.Band)
			}

			covered := make([]types.RefCode, 0, len(wa.RiskRefs))
			seen := make(map[types.RefCode]bool, len(wa.RiskRefs))
			for _, ref := range wa.RiskRefs {
				r, err := resolveRisk(ref)
				if err != nil {
					return nil, goerr.Wrap(err, "treatment action coverage",
						goerr.V("risk", risk.OperationalScenarioCode), goerr.V("action", wa.Label))
				}
				if seen[r.OperationalScenarioCode] {
					continue
				}
				seen[r.OperationalScenarioCode] = true
				covered = append(covered, r.OperationalScenarioCode)
			}
			if len(covered) == 0 {
				covered = []types.RefCode{risk.OperationalScenarioCode}
			}

			actions = append(actions, model.TreatmentAction{
				Code:             model.NewActionCode(risk.OperationalScenarioCode, i+1),
				Label:            strings.TrimSpace(wa.Label),
				Description:      wa.Description,
				Category:         category,
				Priority:         priority,
				CoveredRiskCodes: covered,
				SuggestedOwner:   wa.Owner,
				SuggestedHorizon: wa.Horizon,
			})
		}

		d := model.TreatmentDecision{
			RiskCode:           risk.OperationalScenarioCode,
			Strategy:           strategy,
			Rationale:          wd.Rationale,
			ResidualLikelihood: residual,
			Actions:            actions,
		}
		if err := d.Validate(); err != nil {
			return nil, err
		}
		decisions = append(decisions, d)
	}

	for code := range riskByCode {
		if !decided[code] {
			return nil, goerr.Wrap(types.ErrReferentialIntegrity, "risk has no treatment decision",
				goerr.V("risk", code))
		}
	}

	majors := make([]types.RefCode, 0, len(wire.Synthesis.MajorRiskRefs))
	for _, ref := range wire.Synthesis.MajorRiskRefs {
		r, err := resolveRisk(ref)
		if err != nil {
			return nil, goerr.Wrap(err, "synthesis major risk")
		}
		majors = append(majors, r.OperationalScenarioCode)
	}

	plan := &model.TreatmentPlan{
		ProjectID: project.ID,
		Decisions: decisions,
		Synthesis: model.TreatmentSynthesis{
			Overview:        wire.Synthesis.Overview,
			MajorRiskCodes:  majors,
			Recommendations: wire.Synthesis.Recommendations,
		},
		Source:    types.SourceAI,
		CreatedAt: time.Now().UTC(),
	}

	if err := uc.repo.Treatment().Put(ctx, plan); err != nil {
		return nil, err
	}
	if err := uc.markWorkshopDone(ctx, project, types.WorkshopTreatment); err != nil {
		return nil, err
	}
	return plan, nil
}

func at6UserPrompt(matrix *model.RiskMatrix) string {
	var sb strings.Builder
	sb.WriteString("# Classified risks (workshop 5)\n\n")
	for _, r := range matrix.Risks {
		admissible := make([]string, 0, 4)
		for _, s := range types.AdmissibleStrategies(r.Band) {
			admissible = append(admissible, string(s))
		}
		fmt.Fprintf(&sb, "- %s: %s [%s, gravity %d, likelihood %d, score %d, admissible strategies: %s]\n",
			r.OperationalScenarioCode, r.Title, r.Band,
			r.Severity, r.Likelihood, r.Score, strings.Join(admissible, "/"))
	}
	fmt.Fprintf(&sb, "\nTotal: %d risks, max score %d.\n", matrix.Stats.Total, matrix.Stats.MaxScore)
	sb.WriteString("\nProduce exactly one treatment decision per risk listed above, using only the admissible strategies of each band.")
	return sb.String()
}

func at6Schema() *gollem.Parameter {
	return &gollem.Parameter{
		Title:       "TreatmentWorkshop",
		Description: "Risk treatment plan with one decision per classified risk",
		Type:        gollem.TypeObject,
		Properties: map[string]*gollem.Parameter{
			"plan_traitement": {
				Type:        gollem.TypeArray,
				Description: "one decision per risk",
				Required:    true,
				Items: &gollem.Parameter{
					Type: gollem.TypeObject,
					Properties: map[string]*gollem.Parameter{
						"risque_ref":    {Type: gollem.TypeString, Description: "code of the classified risk", Required: true},
						"strategie":     {Type: gollem.TypeString, Description: "REDUIRE, ACCEPTER, TRANSFERER or EVITER", Required: true},
						"justification": {Type: gollem.TypeString, Required: true},
						"vraisemblance_residuelle": {Type: gollem.TypeInteger,
							Description: "residual likelihood after treatment (1-4), never above the assessed one",
							Required:    true},
						"actions": {
							Type:        gollem.TypeArray,
							Description: "1 to 5 concrete actions",
							Required:    true,
							Items: &gollem.Parameter{
								Type: gollem.TypeObject,
								Properties: map[string]*gollem.Parameter{
									"label":       {Type: gollem.TypeString, Required: true},
									"description": {Type: gollem.TypeString, Required: true},
									"categorie":   {Type: gollem.TypeString, Description: "PREVENTIF, DETECTIF or CORRECTIF", Required: true},
									"priorite":    {Type: gollem.TypeString, Description: "HAUTE, MOYENNE or BASSE; omit to use the band default"},
									"risques_couverts": {
										Type:     gollem.TypeArray,
										Required: true,
										Items:    &gollem.Parameter{Type: gollem.TypeString},
									},
									"responsable_suggere": {Type: gollem.TypeString},
									"delai_suggere":       {Type: gollem.TypeString},
								},
							},
						},
					},
				},
			},
			"synthese": {
				Type:     gollem.TypeObject,
				Required: true,
				Properties: map[string]*gollem.Parameter{
					"resume": {Type: gollem.TypeString, Required: true},
					"risques_majeurs": {
						Type:     gollem.TypeArray,
						Required: true,
						Items:    &gollem.Parameter{Type: gollem.TypeString},
					},
					"recommandations": {
						Type:     gollem.TypeArray,
						Required: true,
						Items:    &gollem.Parameter{Type: gollem.TypeString},
					},
				},
			},
		},
	}
}
