package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/cybergard/ebiosgard/pkg/domain/model"
	"github.com/cybergard/ebiosgard/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type treatmentActionDocument struct {
	Code             string   `firestore:"code"`
	Label            string   `firestore:"label"`
	Description      string   `firestore:"description"`
	Category         string   `firestore:"category"`
	Priority         string   `firestore:"priority"`
	CoveredRiskCodes []string `firestore:"covered_risk_codes"`
	SuggestedOwner   string   `firestore:"suggested_owner"`
	SuggestedHorizon string   `firestore:"suggested_horizon"`
}

type treatmentDecisionDocument struct {
	RiskCode           string                    `firestore:"risk_code"`
	Strategy           string                    `firestore:"strategy"`
	Rationale          string                    `firestore:"rationale"`
	ResidualLikelihood int                       `firestore:"residual_likelihood"`
	Actions            []treatmentActionDocument `firestore:"actions"`
}

type treatmentPlanDocument struct {
	ProjectID       string                      `firestore:"project_id"`
	Decisions       []treatmentDecisionDocument `firestore:"decisions"`
	Overview        string                      `firestore:"overview"`
	MajorRiskCodes  []string                    `firestore:"major_risk_codes"`
	Recommendations []string                    `firestore:"recommendations"`
	Source          string                      `firestore:"source"`
	CreatedAt       time.Time                   `firestore:"created_at"`
}

func toTreatmentPlanDocument(p *model.TreatmentPlan) *treatmentPlanDocument {
	d := &treatmentPlanDocument{
		ProjectID:       string(p.ProjectID),
		Overview:        p.Synthesis.Overview,
		MajorRiskCodes:  toStringSlice(p.Synthesis.MajorRiskCodes),
		Recommendations: p.Synthesis.Recommendations,
		Source:          string(p.Source),
		CreatedAt:       p.CreatedAt,
	}
	for _, decision := range p.Decisions {
		dd := treatmentDecisionDocument{
			RiskCode:           string(decision.RiskCode),
			Strategy:           string(decision.Strategy),
			Rationale:          decision.Rationale,
			ResidualLikelihood: int(decision.ResidualLikelihood),
		}
		for _, a := range decision.Actions {
			dd.Actions = append(dd.Actions, treatmentActionDocument{
				Code:             a.Code,
				Label:            a.Label,
				Description:      a.Description,
				Category:         string(a.Category),
				Priority:         string(a.Priority),
				CoveredRiskCodes: toStringSlice(a.CoveredRiskCodes),
				SuggestedOwner:   a.SuggestedOwner,
				SuggestedHorizon: a.SuggestedHorizon,
			})
		}
		d.Decisions = append(d.Decisions, dd)
	}
	return d
}

func (d *treatmentPlanDocument) toModel() *model.TreatmentPlan {
	p := &model.TreatmentPlan{
		ProjectID: types.ProjectID(d.ProjectID),
		Synthesis: model.TreatmentSynthesis{
			Overview:        d.Overview,
			MajorRiskCodes:  toRefCodes(d.MajorRiskCodes),
			Recommendations: d.Recommendations,
		},
		Source:    types.SourceKind(d.Source),
		CreatedAt: d.CreatedAt,
	}
	for _, dd := range d.Decisions {
		decision := model.TreatmentDecision{
			RiskCode:           types.RefCode(dd.RiskCode),
			Strategy:           types.Strategy(dd.Strategy),
			Rationale:          dd.Rationale,
			ResidualLikelihood: types.Likelihood(dd.ResidualLikelihood),
		}
		for _, a := range dd.Actions {
			decision.Actions = append(decision.Actions, model.TreatmentAction{
				Code:             a.Code,
				Label:            a.Label,
				Description:      a.Description,
				Category:         types.ActionCategory(a.Category),
				Priority:         types.ActionPriority(a.Priority),
				CoveredRiskCodes: toRefCodes(a.CoveredRiskCodes),
				SuggestedOwner:   a.SuggestedOwner,
				SuggestedHorizon: a.SuggestedHorizon,
			})
		}
		p.Decisions = append(p.Decisions, decision)
	}
	return p
}

type treatmentRepository struct {
	client *firestore.Client
	prefix string
}

func (r *treatmentRepository) collection() string {
	return collectionName(r.prefix, "treatment_plans")
}

func (r *treatmentRepository) Put(ctx context.Context, plan *model.TreatmentPlan) error {
	docRef := r.client.Collection(r.collection()).Doc(string(plan.ProjectID))
	if _, err := docRef.Set(ctx, toTreatmentPlanDocument(plan)); err != nil {
		return goerr.Wrap(err, "failed to put treatment plan", goerr.V("project_id", plan.ProjectID))
	}
	return nil
}

func (r *treatmentRepository) Get(ctx context.Context, projectID types.ProjectID) (*model.TreatmentPlan, error) {
	doc, err := r.client.Collection(r.collection()).Doc(string(projectID)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(types.ErrNotFound, "treatment plan not found", goerr.V("project_id", projectID))
		}
		return nil, goerr.Wrap(err, "failed to get treatment plan", goerr.V("project_id", projectID))
	}

	var d treatmentPlanDocument
	if err := doc.DataTo(&d); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal treatment plan", goerr.V("project_id", projectID))
	}
	return d.toModel(), nil
}

type riskDocument struct {
	OperationalScenarioCode string `firestore:"operational_scenario_code"`
	StrategicScenarioCode   string `firestore:"strategic_scenario_code"`
	Title                   string `firestore:"title"`
	Criterion               string `firestore:"criterion"`
	Severity                int    `firestore:"severity"`
	Likelihood              int    `firestore:"likelihood"`
	Score                   int    `firestore:"score"`
	Band                    string `firestore:"band"`
	MatrixRow               int    `firestore:"matrix_row"`
	MatrixCol               int    `firestore:"matrix_col"`
}

// matrixCellDocument flattens the 4x4 grid into a list; row and column
// restore the grid position on load.
type matrixCellDocument struct {
	Row        int      `firestore:"row"`
	Col        int      `firestore:"col"`
	Severity   int      `firestore:"severity"`
	Likelihood int      `firestore:"likelihood"`
	Score      int      `firestore:"score"`
	Band       string   `firestore:"band"`
	Color      string   `firestore:"color"`
	RiskCodes  []string `firestore:"risk_codes"`
}

type matrixStatsDocument struct {
	Total       int            `firestore:"total"`
	ByBand      map[string]int `firestore:"by_band"`
	ByCriterion map[string]int `firestore:"by_criterion"`
	AvgScore    float64        `firestore:"avg_score"`
	MaxScore    int            `firestore:"max_score"`
}

type snapshotDocument struct {
	ID         string               `firestore:"id"`
	ProjectID  string               `firestore:"project_id"`
	Kind       string               `firestore:"kind"`
	Cells      []matrixCellDocument `firestore:"cells"`
	Risks      []riskDocument       `firestore:"risks"`
	Stats      matrixStatsDocument  `firestore:"stats"`
	ComputedAt time.Time            `firestore:"computed_at"`
	TakenAt    time.Time            `firestore:"taken_at"`
}

func toSnapshotDocument(s *model.MatrixSnapshot) *snapshotDocument {
	d := &snapshotDocument{
		ID:        string(s.ID),
		ProjectID: string(s.ProjectID),
		Kind:      s.Kind,
		Stats: matrixStatsDocument{
			Total:       s.Matrix.Stats.Total,
			ByBand:      map[string]int{},
			ByCriterion: map[string]int{},
			AvgScore:    s.Matrix.Stats.AvgScore,
			MaxScore:    s.Matrix.Stats.MaxScore,
		},
		ComputedAt: s.Matrix.ComputedAt,
		TakenAt:    s.TakenAt,
	}
	for band, n := range s.Matrix.Stats.ByBand {
		d.Stats.ByBand[string(band)] = n
	}
	for criterion, n := range s.Matrix.Stats.ByCriterion {
		d.Stats.ByCriterion[string(criterion)] = n
	}
	for row := 0; row < model.MatrixSize; row++ {
		for col := 0; col < model.MatrixSize; col++ {
			cell := s.Matrix.Cells[row][col]
			d.Cells = append(d.Cells, matrixCellDocument{
				Row:        row,
				Col:        col,
				Severity:   int(cell.Severity),
				Likelihood: int(cell.Likelihood),
				Score:      int(cell.Score),
				Band:       string(cell.Band),
				Color:      cell.Color,
				RiskCodes:  toStringSlice(cell.RiskCodes),
			})
		}
	}
	for _, risk := range s.Matrix.Risks {
		d.Risks = append(d.Risks, riskDocument{
			OperationalScenarioCode: string(risk.OperationalScenarioCode),
			StrategicScenarioCode:   string(risk.StrategicScenarioCode),
			Title:                   risk.Title,
			Criterion:               string(risk.Criterion),
			Severity:                int(risk.Severity),
			Likelihood:              int(risk.Likelihood),
			Score:                   int(risk.Score),
			Band:                    string(risk.Band),
			MatrixRow:               risk.MatrixRow,
			MatrixCol:               risk.MatrixCol,
		})
	}
	return d
}

func (d *snapshotDocument) toModel() *model.MatrixSnapshot {
	s := &model.MatrixSnapshot{
		ID:        model.SnapshotID(d.ID),
		ProjectID: types.ProjectID(d.ProjectID),
		Kind:      d.Kind,
		TakenAt:   d.TakenAt,
	}
	s.Matrix.ProjectID = types.ProjectID(d.ProjectID)
	s.Matrix.ComputedAt = d.ComputedAt
	s.Matrix.Stats = model.MatrixStats{
		Total:       d.Stats.Total,
		ByBand:      map[types.RiskBand]int{},
		ByCriterion: map[types.SecurityCriterion]int{},
		AvgScore:    d.Stats.AvgScore,
		MaxScore:    d.Stats.MaxScore,
	}
	for band, n := range d.Stats.ByBand {
		s.Matrix.Stats.ByBand[types.RiskBand(band)] = n
	}
	for criterion, n := range d.Stats.ByCriterion {
		s.Matrix.Stats.ByCriterion[types.SecurityCriterion(criterion)] = n
	}
	for _, cell := range d.Cells {
		if cell.Row < 0 || cell.Row >= model.MatrixSize || cell.Col < 0 || cell.Col >= model.MatrixSize {
			continue
		}
		s.Matrix.Cells[cell.Row][cell.Col] = model.MatrixCell{
			Severity:   types.Gravity(cell.Severity),
			Likelihood: types.Likelihood(cell.Likelihood),
			Score:      types.Score(cell.Score),
			Band:       types.RiskBand(cell.Band),
			Color:      cell.Color,
			RiskCodes:  toRefCodes(cell.RiskCodes),
		}
	}
	for _, risk := range d.Risks {
		s.Matrix.Risks = append(s.Matrix.Risks, model.Risk{
			OperationalScenarioCode: types.RefCode(risk.OperationalScenarioCode),
			StrategicScenarioCode:   types.RefCode(risk.StrategicScenarioCode),
			Title:                   risk.Title,
			Criterion:               types.SecurityCriterion(risk.Criterion),
			Severity:                types.Gravity(risk.Severity),
			Likelihood:              types.Likelihood(risk.Likelihood),
			Score:                   types.Score(risk.Score),
			Band:                    types.RiskBand(risk.Band),
			MatrixRow:               risk.MatrixRow,
			MatrixCol:               risk.MatrixCol,
		})
	}
	return s
}

type snapshotRepository struct {
	client *firestore.Client
	prefix string
}

func (r *snapshotRepository) collection() string {
	return collectionName(r.prefix, "snapshots")
}

func (r *snapshotRepository) Create(ctx context.Context, snapshot *model.MatrixSnapshot) error {
	docRef := r.client.Collection(r.collection()).Doc(string(snapshot.ID))
	if _, err := docRef.Create(ctx, toSnapshotDocument(snapshot)); err != nil {
		return goerr.Wrap(err, "failed to create snapshot",
			goerr.V("project_id", snapshot.ProjectID), goerr.V("snapshot_id", snapshot.ID))
	}
	return nil
}

func (r *snapshotRepository) ListByProject(ctx context.Context, projectID types.ProjectID) ([]*model.MatrixSnapshot, error) {
	var snapshots []*model.MatrixSnapshot
	iter := r.client.Collection(r.collection()).
		Where("project_id", "==", string(projectID)).
		OrderBy("taken_at", firestore.Desc).
		Documents(ctx)
	err := listDocuments(iter, func(doc *firestore.DocumentSnapshot) error {
		var d snapshotDocument
		if err := doc.DataTo(&d); err != nil {
			return goerr.Wrap(err, "failed to unmarshal snapshot")
		}
		snapshots = append(snapshots, d.toModel())
		return nil
	})
	if err != nil {
		return nil, err
	}
	return snapshots, nil
}

type generationRecordDocument struct {
	ID            string    `firestore:"id"`
	ProjectID     string    `firestore:"project_id"`
	Workshop      string    `firestore:"workshop"`
	Model         string    `firestore:"model"`
	SystemPrompt  string    `firestore:"system_prompt"`
	UserPrompt    string    `firestore:"user_prompt"`
	RawResponse   string    `firestore:"raw_response"`
	Success       bool      `firestore:"success"`
	ErrorMessage  string    `firestore:"error_message"`
	Attempts      int       `firestore:"attempts"`
	DurationMilli int64     `firestore:"duration_milli"`
	CreatedAt     time.Time `firestore:"created_at"`
}

type generationLogRepository struct {
	client *firestore.Client
	prefix string
}

func (r *generationLogRepository) collection() string {
	return collectionName(r.prefix, "generation_logs")
}

func (r *generationLogRepository) Create(ctx context.Context, record *model.GenerationRecord) error {
	doc := &generationRecordDocument{
		ID:            string(record.ID),
		ProjectID:     string(record.ProjectID),
		Workshop:      string(record.Workshop),
		Model:         record.Model,
		SystemPrompt:  record.SystemPrompt,
		UserPrompt:    record.UserPrompt,
		RawResponse:   record.RawResponse,
		Success:       record.Success,
		ErrorMessage:  record.ErrorMessage,
		Attempts:      record.Attempts,
		DurationMilli: record.DurationMilli,
		CreatedAt:     record.CreatedAt,
	}
	docRef := r.client.Collection(r.collection()).Doc(string(record.ID))
	if _, err := docRef.Create(ctx, doc); err != nil {
		return goerr.Wrap(err, "failed to create generation record",
			goerr.V("project_id", record.ProjectID), goerr.V("record_id", record.ID))
	}
	return nil
}

func (r *generationLogRepository) ListByProject(ctx context.Context, projectID types.ProjectID) ([]*model.GenerationRecord, error) {
	var records []*model.GenerationRecord
	iter := r.client.Collection(r.collection()).
		Where("project_id", "==", string(projectID)).
		OrderBy("created_at", firestore.Desc).
		Documents(ctx)
	err := listDocuments(iter, func(doc *firestore.DocumentSnapshot) error {
		var d generationRecordDocument
		if err := doc.DataTo(&d); err != nil {
			return goerr.Wrap(err, "failed to unmarshal generation record")
		}
		records = append(records, &model.GenerationRecord{
			ID:            model.GenerationRecordID(d.ID),
			ProjectID:     types.ProjectID(d.ProjectID),
			Workshop:      types.WorkshopKind(d.Workshop),
			Model:         d.Model,
			SystemPrompt:  d.SystemPrompt,
			UserPrompt:    d.UserPrompt,
			RawResponse:   d.RawResponse,
			Success:       d.Success,
			ErrorMessage:  d.ErrorMessage,
			Attempts:      d.Attempts,
			DurationMilli: d.DurationMilli,
			CreatedAt:     d.CreatedAt,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}
