package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/cybergard/ebiosgard/pkg/domain/model"
	"github.com/cybergard/ebiosgard/pkg/domain/types"
)

type businessValueRepository struct {
	mu     sync.RWMutex
	values map[types.ProjectID][]*model.BusinessValue
}

func newBusinessValueRepository() *businessValueRepository {
	return &businessValueRepository{
		values: make(map[types.ProjectID][]*model.BusinessValue),
	}
}

func copyBusinessValue(v *model.BusinessValue) *model.BusinessValue {
	copied := *v
	return &copied
}

func (r *businessValueRepository) PutBatch(ctx context.Context, projectID types.ProjectID, values []*model.BusinessValue) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	batch := make([]*model.BusinessValue, 0, len(values))
	for _, v := range values {
		batch = append(batch, copyBusinessValue(v))
	}
	r.values[projectID] = append(r.values[projectID], batch...)
	return nil
}

func (r *businessValueRepository) ListByProject(ctx context.Context, projectID types.ProjectID) ([]*model.BusinessValue, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	values := make([]*model.BusinessValue, 0, len(r.values[projectID]))
	for _, v := range r.values[projectID] {
		values = append(values, copyBusinessValue(v))
	}
	sort.Slice(values, func(i, j int) bool { return values[i].Code.Seq() < values[j].Code.Seq() })
	return values, nil
}

func (r *businessValueRepository) MaxSeq(ctx context.Context, projectID types.ProjectID) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	max := 0
	for _, v := range r.values[projectID] {
		if seq := v.Code.Seq(); seq > max {
			max = seq
		}
	}
	return max, nil
}

type supportingAssetRepository struct {
	mu     sync.RWMutex
	assets map[types.ProjectID][]*model.SupportingAsset
}

func newSupportingAssetRepository() *supportingAssetRepository {
	return &supportingAssetRepository{
		assets: make(map[types.ProjectID][]*model.SupportingAsset),
	}
}

func copySupportingAsset(a *model.SupportingAsset) *model.SupportingAsset {
	copied := *a
	return &copied
}

func (r *supportingAssetRepository) PutBatch(ctx context.Context, projectID types.ProjectID, assets []*model.SupportingAsset) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	batch := make([]*model.SupportingAsset, 0, len(assets))
	for _, a := range assets {
		batch = append(batch, copySupportingAsset(a))
	}
	r.assets[projectID] = append(r.assets[projectID], batch...)
	return nil
}

func (r *supportingAssetRepository) ListByProject(ctx context.Context, projectID types.ProjectID) ([]*model.SupportingAsset, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	assets := make([]*model.SupportingAsset, 0, len(r.assets[projectID]))
	for _, a := range r.assets[projectID] {
		assets = append(assets, copySupportingAsset(a))
	}
	sort.Slice(assets, func(i, j int) bool { return assets[i].Code.Seq() < assets[j].Code.Seq() })
	return assets, nil
}

func (r *supportingAssetRepository) MaxSeq(ctx context.Context, projectID types.ProjectID) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	max := 0
	for _, a := range r.assets[projectID] {
		if seq := a.Code.Seq(); seq > max {
			max = seq
		}
	}
	return max, nil
}

type fearedEventRepository struct {
	mu     sync.RWMutex
	events map[types.ProjectID][]*model.FearedEvent
}

func newFearedEventRepository() *fearedEventRepository {
	return &fearedEventRepository{
		events: make(map[types.ProjectID][]*model.FearedEvent),
	}
}

func copyFearedEvent(e *model.FearedEvent) *model.FearedEvent {
	copied := *e
	if e.AssetCodes != nil {
		copied.AssetCodes = make([]types.RefCode, len(e.AssetCodes))
		copy(copied.AssetCodes, e.AssetCodes)
	}
	return &copied
}

func (r *fearedEventRepository) PutBatch(ctx context.Context, projectID types.ProjectID, events []*model.FearedEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	batch := make([]*model.FearedEvent, 0, len(events))
	for _, e := range events {
		batch = append(batch, copyFearedEvent(e))
	}
	r.events[projectID] = append(r.events[projectID], batch...)
	return nil
}

func (r *fearedEventRepository) ListByProject(ctx context.Context, projectID types.ProjectID) ([]*model.FearedEvent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	events := make([]*model.FearedEvent, 0, len(r.events[projectID]))
	for _, e := range r.events[projectID] {
		events = append(events, copyFearedEvent(e))
	}
	sort.Slice(events, func(i, j int) bool { return events[i].Code.Seq() < events[j].Code.Seq() })
	return events, nil
}

func (r *fearedEventRepository) MaxSeq(ctx context.Context, projectID types.ProjectID) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	max := 0
	for _, e := range r.events[projectID] {
		if seq := e.Code.Seq(); seq > max {
			max = seq
		}
	}
	return max, nil
}
