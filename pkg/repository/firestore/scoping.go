package firestore

import (
	"context"
	"sort"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/cybergard/ebiosgard/pkg/domain/model"
	"github.com/cybergard/ebiosgard/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/iterator"
)

// entityDocID keys a scoped entity by project and reference code
func entityDocID(projectID types.ProjectID, code types.RefCode) string {
	return string(projectID) + "_" + string(code)
}

// listDocuments drains a project-scoped query, decoding each document
// through decode and collecting the results via append.
func listDocuments(iter *firestore.DocumentIterator, decode func(*firestore.DocumentSnapshot) error) error {
	defer iter.Stop()
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			return nil
		}
		if err != nil {
			return goerr.Wrap(err, "failed to iterate documents")
		}
		if err := decode(doc); err != nil {
			return err
		}
	}
}

type businessValueDocument struct {
	ID          string    `firestore:"id"`
	Code        string    `firestore:"code"`
	ProjectID   string    `firestore:"project_id"`
	Label       string    `firestore:"label"`
	Description string    `firestore:"description"`
	Criticality int       `firestore:"criticality"`
	Source      string    `firestore:"source"`
	OrderIndex  int       `firestore:"order_index"`
	CreatedAt   time.Time `firestore:"created_at"`
}

func toBusinessValueDocument(v *model.BusinessValue) *businessValueDocument {
	return &businessValueDocument{
		ID:          v.ID,
		Code:        string(v.Code),
		ProjectID:   string(v.ProjectID),
		Label:       v.Label,
		Description: v.Description,
		Criticality: int(v.Criticality),
		Source:      string(v.Source),
		OrderIndex:  v.OrderIndex,
		CreatedAt:   v.CreatedAt,
	}
}

func (d *businessValueDocument) toModel() *model.BusinessValue {
	return &model.BusinessValue{
		ID:          d.ID,
		Code:        types.RefCode(d.Code),
		ProjectID:   types.ProjectID(d.ProjectID),
		Label:       d.Label,
		Description: d.Description,
		Criticality: types.Gravity(d.Criticality),
		Source:      types.SourceKind(d.Source),
		OrderIndex:  d.OrderIndex,
		CreatedAt:   d.CreatedAt,
	}
}

type businessValueRepository struct {
	client *firestore.Client
	prefix string
}

func (r *businessValueRepository) collection() string {
	return collectionName(r.prefix, "business_values")
}

func (r *businessValueRepository) PutBatch(ctx context.Context, projectID types.ProjectID, values []*model.BusinessValue) error {
	batch := r.client.Batch()
	col := r.client.Collection(r.collection())
	for _, v := range values {
		batch.Set(col.Doc(entityDocID(projectID, v.Code)), toBusinessValueDocument(v))
	}
	if _, err := batch.Commit(ctx); err != nil {
		return goerr.Wrap(err, "failed to commit business value batch", goerr.V("project_id", projectID))
	}
	return nil
}

func (r *businessValueRepository) ListByProject(ctx context.Context, projectID types.ProjectID) ([]*model.BusinessValue, error) {
	var values []*model.BusinessValue
	iter := r.client.Collection(r.collection()).Where("project_id", "==", string(projectID)).Documents(ctx)
	err := listDocuments(iter, func(doc *firestore.DocumentSnapshot) error {
		var d businessValueDocument
		if err := doc.DataTo(&d); err != nil {
			return goerr.Wrap(err, "failed to unmarshal business value")
		}
		values = append(values, d.toModel())
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(values, func(i, j int) bool { return values[i].Code.Seq() < values[j].Code.Seq() })
	return values, nil
}

func (r *businessValueRepository) MaxSeq(ctx context.Context, projectID types.ProjectID) (int, error) {
	values, err := r.ListByProject(ctx, projectID)
	if err != nil {
		return 0, err
	}
	max := 0
	for _, v := range values {
		if seq := v.Code.Seq(); seq > max {
			max = seq
		}
	}
	return max, nil
}

type supportingAssetDocument struct {
	ID                string    `firestore:"id"`
	Code              string    `firestore:"code"`
	ProjectID         string    `firestore:"project_id"`
	Label             string    `firestore:"label"`
	Kind              string    `firestore:"kind"`
	Description       string    `firestore:"description"`
	Criticality       int       `firestore:"criticality"`
	BusinessValueCode string    `firestore:"business_value_code"`
	Source            string    `firestore:"source"`
	OrderIndex        int       `firestore:"order_index"`
	CreatedAt         time.Time `firestore:"created_at"`
}

func toSupportingAssetDocument(a *model.SupportingAsset) *supportingAssetDocument {
	return &supportingAssetDocument{
		ID:                a.ID,
		Code:              string(a.Code),
		ProjectID:         string(a.ProjectID),
		Label:             a.Label,
		Kind:              a.Kind,
		Description:       a.Description,
		Criticality:       int(a.Criticality),
		BusinessValueCode: string(a.BusinessValueCode),
		Source:            string(a.Source),
		OrderIndex:        a.OrderIndex,
		CreatedAt:         a.CreatedAt,
	}
}

func (d *supportingAssetDocument) toModel() *model.SupportingAsset {
	return &model.SupportingAsset{
		ID:                d.ID,
		Code:              types.RefCode(d.Code),
		ProjectID:         types.ProjectID(d.ProjectID),
		Label:             d.Label,
		Kind:              d.Kind,
		Description:       d.Description,
		Criticality:       types.Gravity(d.Criticality),
		BusinessValueCode: types.RefCode(d.BusinessValueCode),
		Source:            types.SourceKind(d.Source),
		OrderIndex:        d.OrderIndex,
		CreatedAt:         d.CreatedAt,
	}
}

type supportingAssetRepository struct {
	client *firestore.Client
	prefix string
}

func (r *supportingAssetRepository) collection() string {
	return collectionName(r.prefix, "supporting_assets")
}

func (r *supportingAssetRepository) PutBatch(ctx context.Context, projectID types.ProjectID, assets []*model.SupportingAsset) error {
	batch := r.client.Batch()
	col := r.client.Collection(r.collection())
	for _, a := range assets {
		batch.Set(col.Doc(entityDocID(projectID, a.Code)), toSupportingAssetDocument(a))
	}
	if _, err := batch.Commit(ctx); err != nil {
		return goerr.Wrap(err, "failed to commit supporting asset batch", goerr.V("project_id", projectID))
	}
	return nil
}

func (r *supportingAssetRepository) ListByProject(ctx context.Context, projectID types.ProjectID) ([]*model.SupportingAsset, error) {
	var assets []*model.SupportingAsset
	iter := r.client.Collection(r.collection()).Where("project_id", "==", string(projectID)).Documents(ctx)
	err := listDocuments(iter, func(doc *firestore.DocumentSnapshot) error {
		var d supportingAssetDocument
		if err := doc.DataTo(&d); err != nil {
			return goerr.Wrap(err, "failed to unmarshal supporting asset")
		}
		assets = append(assets, d.toModel())
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(assets, func(i, j int) bool { return assets[i].Code.Seq() < assets[j].Code.Seq() })
	return assets, nil
}

func (r *supportingAssetRepository) MaxSeq(ctx context.Context, projectID types.ProjectID) (int, error) {
	assets, err := r.ListByProject(ctx, projectID)
	if err != nil {
		return 0, err
	}
	max := 0
	for _, a := range assets {
		if seq := a.Code.Seq(); seq > max {
			max = seq
		}
	}
	return max, nil
}

type fearedEventDocument struct {
	ID                string    `firestore:"id"`
	Code              string    `firestore:"code"`
	ProjectID         string    `firestore:"project_id"`
	Label             string    `firestore:"label"`
	Description       string    `firestore:"description"`
	Criterion         string    `firestore:"criterion"`
	Severity          int       `firestore:"severity"`
	Justification     string    `firestore:"justification"`
	BusinessValueCode string    `firestore:"business_value_code"`
	AssetCodes        []string  `firestore:"asset_codes"`
	Source            string    `firestore:"source"`
	OrderIndex        int       `firestore:"order_index"`
	CreatedAt         time.Time `firestore:"created_at"`
}

func toFearedEventDocument(e *model.FearedEvent) *fearedEventDocument {
	return &fearedEventDocument{
		ID:                e.ID,
		Code:              string(e.Code),
		ProjectID:         string(e.ProjectID),
		Label:             e.Label,
		Description:       e.Description,
		Criterion:         string(e.Criterion),
		Severity:          int(e.Severity),
		Justification:     e.Justification,
		BusinessValueCode: string(e.BusinessValueCode),
		AssetCodes:        toStringSlice(e.AssetCodes),
		Source:            string(e.Source),
		OrderIndex:        e.OrderIndex,
		CreatedAt:         e.CreatedAt,
	}
}

func (d *fearedEventDocument) toModel() *model.FearedEvent {
	return &model.FearedEvent{
		ID:                d.ID,
		Code:              types.RefCode(d.Code),
		ProjectID:         types.ProjectID(d.ProjectID),
		Label:             d.Label,
		Description:       d.Description,
		Criterion:         types.SecurityCriterion(d.Criterion),
		Severity:          types.Gravity(d.Severity),
		Justification:     d.Justification,
		BusinessValueCode: types.RefCode(d.BusinessValueCode),
		AssetCodes:        toRefCodes(d.AssetCodes),
		Source:            types.SourceKind(d.Source),
		OrderIndex:        d.OrderIndex,
		CreatedAt:         d.CreatedAt,
	}
}

type fearedEventRepository struct {
	client *firestore.Client
	prefix string
}

func (r *fearedEventRepository) collection() string {
	return collectionName(r.prefix, "feared_events")
}

func (r *fearedEventRepository) PutBatch(ctx context.Context, projectID types.ProjectID, events []*model.FearedEvent) error {
	batch := r.client.Batch()
	col := r.client.Collection(r.collection())
	for _, e := range events {
		batch.Set(col.Doc(entityDocID(projectID, e.Code)), toFearedEventDocument(e))
	}
	if _, err := batch.Commit(ctx); err != nil {
		return goerr.Wrap(err, "failed to commit feared event batch", goerr.V("project_id", projectID))
	}
	return nil
}

func (r *fearedEventRepository) ListByProject(ctx context.Context, projectID types.ProjectID) ([]*model.FearedEvent, error) {
	var events []*model.FearedEvent
	iter := r.client.Collection(r.collection()).Where("project_id", "==", string(projectID)).Documents(ctx)
	err := listDocuments(iter, func(doc *firestore.DocumentSnapshot) error {
		var d fearedEventDocument
		if err := doc.DataTo(&d); err != nil {
			return goerr.Wrap(err, "failed to unmarshal feared event")
		}
		events = append(events, d.toModel())
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(events, func(i, j int) bool { return events[i].Code.Seq() < events[j].Code.Seq() })
	return events, nil
}

func (r *fearedEventRepository) MaxSeq(ctx context.Context, projectID types.ProjectID) (int, error) {
	events, err := r.ListByProject(ctx, projectID)
	if err != nil {
		return 0, err
	}
	max := 0
	for _, e := range events {
		if seq := e.Code.Seq(); seq > max {
			max = seq
		}
	}
	return max, nil
}

func toStringSlice(codes []types.RefCode) []string {
	if codes == nil {
		return nil
	}
	out := make([]string, len(codes))
	for i, c := range codes {
		out[i] = string(c)
	}
	return out
}

func toRefCodes(codes []string) []types.RefCode {
	if codes == nil {
		return nil
	}
	out := make([]types.RefCode, len(codes))
	for i, c := range codes {
		out[i] = types.RefCode(c)
	}
	return out
}
