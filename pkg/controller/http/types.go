package http

import (
	"time"

	"github.com/cybergard/ebiosgard/pkg/domain/model"
	"github.com/cybergard/ebiosgard/pkg/usecase"
)

// Wire types of the JSON API. Entities are flattened to their codes;
// clients resolve cross-references client side.

type projectResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Sector      string    `json:"sector,omitempty"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toProject(p *model.Project) projectResponse {
	return projectResponse{
		ID:          string(p.ID),
		Name:        p.Name,
		Description: p.Description,
		Sector:      p.Sector,
		Status:      p.Status.Normalize().String(),
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

type workshopResponse struct {
	Kind              string `json:"kind"`
	Status            string `json:"status"`
	CompletionPercent int    `json:"completion_percent"`
}

type projectDetailResponse struct {
	projectResponse
	Workshops []workshopResponse `json:"workshops"`
}

func toProjectDetail(view *usecase.ProjectView) projectDetailResponse {
	resp := projectDetailResponse{projectResponse: toProject(view.Project)}
	for _, ws := range view.Workshops {
		resp.Workshops = append(resp.Workshops, workshopResponse{
			Kind:              ws.Kind.String(),
			Status:            ws.Status.Normalize().String(),
			CompletionPercent: ws.CompletionPercent,
		})
	}
	return resp
}

type riskResponse struct {
	Code       string `json:"code"`
	Strategic  string `json:"strategic_scenario"`
	Title      string `json:"title"`
	Criterion  string `json:"criterion"`
	Severity   int    `json:"severity"`
	Likelihood int    `json:"likelihood"`
	Score      int    `json:"score"`
	Band       string `json:"band"`
	Row        int    `json:"row"`
	Col        int    `json:"col"`
}

func toRisks(risks []model.Risk) []riskResponse {
	out := make([]riskResponse, 0, len(risks))
	for _, r := range risks {
		out = append(out, riskResponse{
			Code:       string(r.OperationalScenarioCode),
			Strategic:  string(r.StrategicScenarioCode),
			Title:      r.Title,
			Criterion:  r.Criterion.String(),
			Severity:   int(r.Severity),
			Likelihood: int(r.Likelihood),
			Score:      int(r.Score),
			Band:       r.Band.String(),
			Row:        r.MatrixRow,
			Col:        r.MatrixCol,
		})
	}
	return out
}

type matrixCellResponse struct {
	Severity   int      `json:"severity"`
	Likelihood int      `json:"likelihood"`
	Score      int      `json:"score"`
	Band       string   `json:"band"`
	Color      string   `json:"color"`
	RiskCodes  []string `json:"risk_codes,omitempty"`
}

type matrixStatsResponse struct {
	Total       int            `json:"total"`
	ByBand      map[string]int `json:"by_band"`
	ByCriterion map[string]int `json:"by_criterion"`
	AvgScore    float64        `json:"avg_score"`
	MaxScore    int            `json:"max_score"`
}

type matrixResponse struct {
	ProjectID  string                   `json:"project_id"`
	Cells      [][]matrixCellResponse   `json:"cells"`
	Risks      []riskResponse           `json:"risks"`
	Stats      matrixStatsResponse      `json:"stats"`
	ComputedAt time.Time                `json:"computed_at"`
}

func toMatrix(m *model.RiskMatrix) matrixResponse {
	resp := matrixResponse{
		ProjectID:  string(m.ProjectID),
		Risks:      toRisks(m.Risks),
		ComputedAt: m.ComputedAt,
		Stats: matrixStatsResponse{
			Total:       m.Stats.Total,
			ByBand:      map[string]int{},
			ByCriterion: map[string]int{},
			AvgScore:    m.Stats.AvgScore,
			MaxScore:    m.Stats.MaxScore,
		},
	}
	for band, n := range m.Stats.ByBand {
		resp.Stats.ByBand[band.String()] = n
	}
	for criterion, n := range m.Stats.ByCriterion {
		resp.Stats.ByCriterion[criterion.String()] = n
	}

	resp.Cells = make([][]matrixCellResponse, model.MatrixSize)
	for row := 0; row < model.MatrixSize; row++ {
		resp.Cells[row] = make([]matrixCellResponse, model.MatrixSize)
		for col := 0; col < model.MatrixSize; col++ {
			cell := m.Cells[row][col]
			codes := make([]string, 0, len(cell.RiskCodes))
			for _, code := range cell.RiskCodes {
				codes = append(codes, string(code))
			}
			resp.Cells[row][col] = matrixCellResponse{
				Severity:   int(cell.Severity),
				Likelihood: int(cell.Likelihood),
				Score:      int(cell.Score),
				Band:       cell.Band.String(),
				Color:      cell.Color,
				RiskCodes:  codes,
			}
		}
	}
	return resp
}

type treatmentActionResponse struct {
	Code             string   `json:"code"`
	Label            string   `json:"label"`
	Description      string   `json:"description,omitempty"`
	Category         string   `json:"category"`
	Priority         string   `json:"priority"`
	CoveredRiskCodes []string `json:"covered_risk_codes"`
	SuggestedOwner   string   `json:"suggested_owner,omitempty"`
	SuggestedHorizon string   `json:"suggested_horizon,omitempty"`
}

type treatmentDecisionResponse struct {
	RiskCode           string                    `json:"risk_code"`
	Strategy           string                    `json:"strategy"`
	Rationale          string                    `json:"rationale,omitempty"`
	ResidualLikelihood int                       `json:"residual_likelihood"`
	Actions            []treatmentActionResponse `json:"actions"`
}

type treatmentPlanResponse struct {
	ProjectID       string                      `json:"project_id"`
	Decisions       []treatmentDecisionResponse `json:"decisions"`
	Overview        string                      `json:"overview,omitempty"`
	MajorRiskCodes  []string                    `json:"major_risk_codes,omitempty"`
	Recommendations []string                    `json:"recommendations,omitempty"`
	CreatedAt       time.Time                   `json:"created_at"`
}

func toTreatmentPlan(p *model.TreatmentPlan) treatmentPlanResponse {
	resp := treatmentPlanResponse{
		ProjectID: string(p.ProjectID),
		Overview:  p.Synthesis.Overview,
		CreatedAt: p.CreatedAt,
	}
	for _, code := range p.Synthesis.MajorRiskCodes {
		resp.MajorRiskCodes = append(resp.MajorRiskCodes, string(code))
	}
	resp.Recommendations = p.Synthesis.Recommendations

	for _, d := range p.Decisions {
		dr := treatmentDecisionResponse{
			RiskCode:           string(d.RiskCode),
			Strategy:           d.Strategy.String(),
			Rationale:          d.Rationale,
			ResidualLikelihood: int(d.ResidualLikelihood),
		}
		for _, a := range d.Actions {
			covered := make([]string, 0, len(a.CoveredRiskCodes))
			for _, code := range a.CoveredRiskCodes {
				covered = append(covered, string(code))
			}
			dr.Actions = append(dr.Actions, treatmentActionResponse{
				Code:             a.Code,
				Label:            a.Label,
				Description:      a.Description,
				Category:         a.Category.String(),
				Priority:         a.Priority.String(),
				CoveredRiskCodes: covered,
				SuggestedOwner:   a.SuggestedOwner,
				SuggestedHorizon: a.SuggestedHorizon,
			})
		}
		resp.Decisions = append(resp.Decisions, dr)
	}
	return resp
}

type entityResponse struct {
	Code        string `json:"code"`
	Label       string `json:"label"`
	Description string `json:"description,omitempty"`
}

type scopingResponse struct {
	BusinessValues []entityResponse `json:"business_values"`
	Assets         []entityResponse `json:"supporting_assets"`
	FearedEvents   []fearedEventResponse `json:"feared_events"`
}

type fearedEventResponse struct {
	entityResponse
	Criterion string `json:"criterion"`
	Severity  int    `json:"severity"`
}

func toScoping(r *usecase.ScopingResult) scopingResponse {
	resp := scopingResponse{}
	for _, v := range r.BusinessValues {
		resp.BusinessValues = append(resp.BusinessValues, entityResponse{
			Code: string(v.Code), Label: v.Label, Description: v.Description,
		})
	}
	for _, a := range r.Assets {
		resp.Assets = append(resp.Assets, entityResponse{
			Code: string(a.Code), Label: a.Label, Description: a.Description,
		})
	}
	for _, e := range r.FearedEvents {
		resp.FearedEvents = append(resp.FearedEvents, fearedEventResponse{
			entityResponse: entityResponse{Code: string(e.Code), Label: e.Label, Description: e.Description},
			Criterion:      e.Criterion.String(),
			Severity:       int(e.Severity),
		})
	}
	return resp
}

type riskSourceResponse struct {
	Code       string `json:"code"`
	Label      string `json:"label"`
	Category   string `json:"category"`
	Pertinence int    `json:"pertinence"`
	Selected   bool   `json:"selected"`
}

func toRiskSources(sources []*model.RiskSource) []riskSourceResponse {
	out := make([]riskSourceResponse, 0, len(sources))
	for _, s := range sources {
		out = append(out, riskSourceResponse{
			Code:       string(s.Code),
			Label:      s.Label,
			Category:   s.Category,
			Pertinence: int(s.Pertinence),
			Selected:   s.Selected,
		})
	}
	return out
}

type scenarioResponse struct {
	Code       string `json:"code"`
	Title      string `json:"title"`
	ParentCode string `json:"parent_code,omitempty"`
	Severity   int    `json:"severity"`
	Likelihood int    `json:"likelihood"`
	Score      int    `json:"score"`
}

func toStrategicScenarios(scenarios []*model.StrategicScenario) []scenarioResponse {
	out := make([]scenarioResponse, 0, len(scenarios))
	for _, s := range scenarios {
		out = append(out, scenarioResponse{
			Code:       string(s.Code),
			Title:      s.Title,
			Severity:   int(s.Severity),
			Likelihood: int(s.Likelihood),
			Score:      int(s.Score),
		})
	}
	return out
}

func toOperationalScenarios(scenarios []*model.OperationalScenario) []scenarioResponse {
	out := make([]scenarioResponse, 0, len(scenarios))
	for _, o := range scenarios {
		out = append(out, scenarioResponse{
			Code:       string(o.Code),
			Title:      o.Title,
			ParentCode: string(o.StrategicScenarioCode),
			Severity:   int(o.Severity),
			Likelihood: int(o.Likelihood),
			Score:      int(o.Score),
		})
	}
	return out
}
