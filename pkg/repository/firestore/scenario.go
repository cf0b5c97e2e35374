package firestore

import (
	"context"
	"sort"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/cybergard/ebiosgard/pkg/domain/model"
	"github.com/cybergard/ebiosgard/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

type targetedObjectiveDocument struct {
	Label            string   `firestore:"label"`
	Description      string   `firestore:"description"`
	FearedEventCodes []string `firestore:"feared_event_codes"`
}

type riskSourceDocument struct {
	ID            string                      `firestore:"id"`
	Code          string                      `firestore:"code"`
	ProjectID     string                      `firestore:"project_id"`
	Label         string                      `firestore:"label"`
	Category      string                      `firestore:"category"`
	Description   string                      `firestore:"description"`
	Pertinence    int                         `firestore:"pertinence"`
	Justification string                      `firestore:"justification"`
	Selected      bool                        `firestore:"selected"`
	Objectives    []targetedObjectiveDocument `firestore:"objectives"`
	Source        string                      `firestore:"source"`
	OrderIndex    int                         `firestore:"order_index"`
	CreatedAt     time.Time                   `firestore:"created_at"`
}

func toRiskSourceDocument(s *model.RiskSource) *riskSourceDocument {
	d := &riskSourceDocument{
		ID:            s.ID,
		Code:          string(s.Code),
		ProjectID:     string(s.ProjectID),
		Label:         s.Label,
		Category:      s.Category,
		Description:   s.Description,
		Pertinence:    int(s.Pertinence),
		Justification: s.Justification,
		Selected:      s.Selected,
		Source:        string(s.Source),
		OrderIndex:    s.OrderIndex,
		CreatedAt:     s.CreatedAt,
	}
	for _, o := range s.Objectives {
		d.Objectives = append(d.Objectives, targetedObjectiveDocument{
			Label:            o.Label,
			Description:      o.Description,
			FearedEventCodes: toStringSlice(o.FearedEventCodes),
		})
	}
	return d
}

func (d *riskSourceDocument) toModel() *model.RiskSource {
	s := &model.RiskSource{
		ID:            d.ID,
		Code:          types.RefCode(d.Code),
		ProjectID:     types.ProjectID(d.ProjectID),
		Label:         d.Label,
		Category:      d.Category,
		Description:   d.Description,
		Pertinence:    types.Pertinence(d.Pertinence),
		Justification: d.Justification,
		Selected:      d.Selected,
		Source:        types.SourceKind(d.Source),
		OrderIndex:    d.OrderIndex,
		CreatedAt:     d.CreatedAt,
	}
	for _, o := range d.Objectives {
		s.Objectives = append(s.Objectives, model.TargetedObjective{
			Label:            o.Label,
			Description:      o.Description,
			FearedEventCodes: toRefCodes(o.FearedEventCodes),
		})
	}
	return s
}

type riskSourceRepository struct {
	client *firestore.Client
	prefix string
}

func (r *riskSourceRepository) collection() string {
	return collectionName(r.prefix, "risk_sources")
}

func (r *riskSourceRepository) PutBatch(ctx context.Context, projectID types.ProjectID, sources []*model.RiskSource) error {
	batch := r.client.Batch()
	col := r.client.Collection(r.collection())
	for _, s := range sources {
		batch.Set(col.Doc(entityDocID(projectID, s.Code)), toRiskSourceDocument(s))
	}
	if _, err := batch.Commit(ctx); err != nil {
		return goerr.Wrap(err, "failed to commit risk source batch", goerr.V("project_id", projectID))
	}
	return nil
}

func (r *riskSourceRepository) ListByProject(ctx context.Context, projectID types.ProjectID) ([]*model.RiskSource, error) {
	var sources []*model.RiskSource
	iter := r.client.Collection(r.collection()).Where("project_id", "==", string(projectID)).Documents(ctx)
	err := listDocuments(iter, func(doc *firestore.DocumentSnapshot) error {
		var d riskSourceDocument
		if err := doc.DataTo(&d); err != nil {
			return goerr.Wrap(err, "failed to unmarshal risk source")
		}
		sources = append(sources, d.toModel())
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(sources, func(i, j int) bool { return sources[i].Code.Seq() < sources[j].Code.Seq() })
	return sources, nil
}

func (r *riskSourceRepository) MaxSeq(ctx context.Context, projectID types.ProjectID) (int, error) {
	sources, err := r.ListByProject(ctx, projectID)
	if err != nil {
		return 0, err
	}
	max := 0
	for _, s := range sources {
		if seq := s.Code.Seq(); seq > max {
			max = seq
		}
	}
	return max, nil
}

type strategicVulnerabilityDocument struct {
	Code        string `firestore:"code"`
	Label       string `firestore:"label"`
	Description string `firestore:"description"`
}

type strategicScenarioDocument struct {
	ID              string                         `firestore:"id"`
	Code            string                         `firestore:"code"`
	ProjectID       string                         `firestore:"project_id"`
	Title           string                         `firestore:"title"`
	Description     string                         `firestore:"description"`
	RiskSourceCode  string                         `firestore:"risk_source_code"`
	FearedEventCode string                         `firestore:"feared_event_code"`
	Vulnerability   strategicVulnerabilityDocument `firestore:"vulnerability"`
	AssetCodes      []string                       `firestore:"asset_codes"`
	PathSummary     string                         `firestore:"path_summary"`
	Severity        int                            `firestore:"severity"`
	Likelihood      int                            `firestore:"likelihood"`
	Score           int                            `firestore:"score"`
	Justification   string                         `firestore:"justification"`
	Source          string                         `firestore:"source"`
	OrderIndex      int                            `firestore:"order_index"`
	CreatedAt       time.Time                      `firestore:"created_at"`
}

func toStrategicScenarioDocument(s *model.StrategicScenario) *strategicScenarioDocument {
	return &strategicScenarioDocument{
		ID:              s.ID,
		Code:            string(s.Code),
		ProjectID:       string(s.ProjectID),
		Title:           s.Title,
		Description:     s.Description,
		RiskSourceCode:  string(s.RiskSourceCode),
		FearedEventCode: string(s.FearedEventCode),
		Vulnerability: strategicVulnerabilityDocument{
			Code:        s.Vulnerability.Code,
			Label:       s.Vulnerability.Label,
			Description: s.Vulnerability.Description,
		},
		AssetCodes:    toStringSlice(s.AssetCodes),
		PathSummary:   s.PathSummary,
		Severity:      int(s.Severity),
		Likelihood:    int(s.Likelihood),
		Score:         int(s.Score),
		Justification: s.Justification,
		Source:        string(s.Source),
		OrderIndex:    s.OrderIndex,
		CreatedAt:     s.CreatedAt,
	}
}

func (d *strategicScenarioDocument) toModel() *model.StrategicScenario {
	return &model.StrategicScenario{
		ID:              d.ID,
		Code:            types.RefCode(d.Code),
		ProjectID:       types.ProjectID(d.ProjectID),
		Title:           d.Title,
		Description:     d.Description,
		RiskSourceCode:  types.RefCode(d.RiskSourceCode),
		FearedEventCode: types.RefCode(d.FearedEventCode),
		Vulnerability: model.StrategicVulnerability{
			Code:        d.Vulnerability.Code,
			Label:       d.Vulnerability.Label,
			Description: d.Vulnerability.Description,
		},
		AssetCodes:    toRefCodes(d.AssetCodes),
		PathSummary:   d.PathSummary,
		Severity:      types.Gravity(d.Severity),
		Likelihood:    types.Likelihood(d.Likelihood),
		Score:         types.Score(d.Score),
		Justification: d.Justification,
		Source:        types.SourceKind(d.Source),
		OrderIndex:    d.OrderIndex,
		CreatedAt:     d.CreatedAt,
	}
}

type strategicScenarioRepository struct {
	client *firestore.Client
	prefix string
}

func (r *strategicScenarioRepository) collection() string {
	return collectionName(r.prefix, "strategic_scenarios")
}

func (r *strategicScenarioRepository) PutBatch(ctx context.Context, projectID types.ProjectID, scenarios []*model.StrategicScenario) error {
	batch := r.client.Batch()
	col := r.client.Collection(r.collection())
	for _, s := range scenarios {
		batch.Set(col.Doc(entityDocID(projectID, s.Code)), toStrategicScenarioDocument(s))
	}
	if _, err := batch.Commit(ctx); err != nil {
		return goerr.Wrap(err, "failed to commit strategic scenario batch", goerr.V("project_id", projectID))
	}
	return nil
}

func (r *strategicScenarioRepository) ListByProject(ctx context.Context, projectID types.ProjectID) ([]*model.StrategicScenario, error) {
	var scenarios []*model.StrategicScenario
	iter := r.client.Collection(r.collection()).Where("project_id", "==", string(projectID)).Documents(ctx)
	err := listDocuments(iter, func(doc *firestore.DocumentSnapshot) error {
		var d strategicScenarioDocument
		if err := doc.DataTo(&d); err != nil {
			return goerr.Wrap(err, "failed to unmarshal strategic scenario")
		}
		scenarios = append(scenarios, d.toModel())
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(scenarios, func(i, j int) bool { return scenarios[i].Code.Seq() < scenarios[j].Code.Seq() })
	return scenarios, nil
}

func (r *strategicScenarioRepository) MaxSeq(ctx context.Context, projectID types.ProjectID) (int, error) {
	scenarios, err := r.ListByProject(ctx, projectID)
	if err != nil {
		return 0, err
	}
	max := 0
	for _, s := range scenarios {
		if seq := s.Code.Seq(); seq > max {
			max = seq
		}
	}
	return max, nil
}

type attackStepDocument struct {
	Order            int      `firestore:"order"`
	Summary          string   `firestore:"summary"`
	Detail           string   `firestore:"detail"`
	TargetAssetCodes []string `firestore:"target_asset_codes"`
	Kind             string   `firestore:"kind"`
}

type operationalScenarioDocument struct {
	ID                    string               `firestore:"id"`
	Code                  string               `firestore:"code"`
	ProjectID             string               `firestore:"project_id"`
	Title                 string               `firestore:"title"`
	Description           string               `firestore:"description"`
	StrategicScenarioCode string               `firestore:"strategic_scenario_code"`
	Severity              int                  `firestore:"severity"`
	Likelihood            int                  `firestore:"likelihood"`
	Score                 int                  `firestore:"score"`
	Steps                 []attackStepDocument `firestore:"steps"`
	Justification         string               `firestore:"justification"`
	Source                string               `firestore:"source"`
	OrderIndex            int                  `firestore:"order_index"`
	CreatedAt             time.Time            `firestore:"created_at"`
}

func toOperationalScenarioDocument(o *model.OperationalScenario) *operationalScenarioDocument {
	d := &operationalScenarioDocument{
		ID:                    o.ID,
		Code:                  string(o.Code),
		ProjectID:             string(o.ProjectID),
		Title:                 o.Title,
		Description:           o.Description,
		StrategicScenarioCode: string(o.StrategicScenarioCode),
		Severity:              int(o.Severity),
		Likelihood:            int(o.Likelihood),
		Score:                 int(o.Score),
		Justification:         o.Justification,
		Source:                string(o.Source),
		OrderIndex:            o.OrderIndex,
		CreatedAt:             o.CreatedAt,
	}
	for _, s := range o.Steps {
		d.Steps = append(d.Steps, attackStepDocument{
			Order:            s.Order,
			Summary:          s.Summary,
			Detail:           s.Detail,
			TargetAssetCodes: toStringSlice(s.TargetAssetCodes),
			Kind:             string(s.Kind),
		})
	}
	return d
}

func (d *operationalScenarioDocument) toModel() *model.OperationalScenario {
	o := &model.OperationalScenario{
		ID:                    d.ID,
		Code:                  types.RefCode(d.Code),
		ProjectID:             types.ProjectID(d.ProjectID),
		Title:                 d.Title,
		Description:           d.Description,
		StrategicScenarioCode: types.RefCode(d.StrategicScenarioCode),
		Severity:              types.Gravity(d.Severity),
		Likelihood:            types.Likelihood(d.Likelihood),
		Score:                 types.Score(d.Score),
		Justification:         d.Justification,
		Source:                types.SourceKind(d.Source),
		OrderIndex:            d.OrderIndex,
		CreatedAt:             d.CreatedAt,
	}
	for _, s := range d.Steps {
		o.Steps = append(o.Steps, model.AttackStep{
			Order:            s.Order,
			Summary:          s.Summary,
			Detail:           s.Detail,
			TargetAssetCodes: toRefCodes(s.TargetAssetCodes),
			Kind:             types.StepKind(s.Kind),
		})
	}
	return o
}

type operationalScenarioRepository struct {
	client *firestore.Client
	prefix string
}

func (r *operationalScenarioRepository) collection() string {
	return collectionName(r.prefix, "operational_scenarios")
}

func (r *operationalScenarioRepository) PutBatch(ctx context.Context, projectID types.ProjectID, scenarios []*model.OperationalScenario) error {
	batch := r.client.Batch()
	col := r.client.Collection(r.collection())
	for _, o := range scenarios {
		batch.Set(col.Doc(entityDocID(projectID, o.Code)), toOperationalScenarioDocument(o))
	}
	if _, err := batch.Commit(ctx); err != nil {
		return goerr.Wrap(err, "failed to commit operational scenario batch", goerr.V("project_id", projectID))
	}
	return nil
}

func (r *operationalScenarioRepository) ListByProject(ctx context.Context, projectID types.ProjectID) ([]*model.OperationalScenario, error) {
	var scenarios []*model.OperationalScenario
	iter := r.client.Collection(r.collection()).Where("project_id", "==", string(projectID)).Documents(ctx)
	err := listDocuments(iter, func(doc *firestore.DocumentSnapshot) error {
		var d operationalScenarioDocument
		if err := doc.DataTo(&d); err != nil {
			return goerr.Wrap(err, "failed to unmarshal operational scenario")
		}
		scenarios = append(scenarios, d.toModel())
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(scenarios, func(i, j int) bool { return scenarios[i].Code.Seq() < scenarios[j].Code.Seq() })
	return scenarios, nil
}

func (r *operationalScenarioRepository) MaxSeq(ctx context.Context, projectID types.ProjectID) (int, error) {
	scenarios, err := r.ListByProject(ctx, projectID)
	if err != nil {
		return 0, err
	}
	max := 0
	for _, o := range scenarios {
		if seq := o.Code.Seq(); seq > max {
			max = seq
		}
	}
	return max, nil
}
