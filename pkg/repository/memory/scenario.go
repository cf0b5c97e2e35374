package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/cybergard/ebiosgard/pkg/domain/model"
	"github.com/cybergard/ebiosgard/pkg/domain/types"
)

type riskSourceRepository struct {
	mu      sync.RWMutex
	sources map[types.ProjectID][]*model.RiskSource
}

func newRiskSourceRepository() *riskSourceRepository {
	return &riskSourceRepository{
		sources: make(map[types.ProjectID][]*model.RiskSource),
	}
}

func copyRiskSource(s *model.RiskSource) *model.RiskSource {
	copied := *s
	if s.Objectives != nil {
		copied.Objectives = make([]model.TargetedObjective, len(s.Objectives))
		copy(copied.Objectives, s.Objectives)
		for i := range copied.Objectives {
			if s.Objectives[i].FearedEventCodes != nil {
				copied.Objectives[i].FearedEventCodes = make([]types.RefCode, len(s.Objectives[i].FearedEventCodes))
				copy(copied.Objectives[i].FearedEventCodes, s.Objectives[i].FearedEventCodes)
			}
		}
	}
	return &copied
}

func (r *riskSourceRepository) PutBatch(ctx context.Context, projectID types.ProjectID, sources []*model.RiskSource) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	batch := make([]*model.RiskSource, 0, len(sources))
	for _, s := range sources {
		batch = append(batch, copyRiskSource(s))
	}
	r.sources[projectID] = append(r.sources[projectID], batch...)
	return nil
}

func (r *riskSourceRepository) ListByProject(ctx context.Context, projectID types.ProjectID) ([]*model.RiskSource, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sources := make([]*model.RiskSource, 0, len(r.sources[projectID]))
	for _, s := range r.sources[projectID] {
		sources = append(sources, copyRiskSource(s))
	}
	sort.Slice(sources, func(i, j int) bool { return sources[i].Code.Seq() < sources[j].Code.Seq() })
	return sources, nil
}

func (r *riskSourceRepository) MaxSeq(ctx context.Context, projectID types.ProjectID) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	max := 0
	for _, s := range r.sources[projectID] {
		if seq := s.Code.Seq(); seq > max {
			max = seq
		}
	}
	return max, nil
}

type strategicScenarioRepository struct {
	mu        sync.RWMutex
	scenarios map[types.ProjectID][]*model.StrategicScenario
}

func newStrategicScenarioRepository() *strategicScenarioRepository {
	return &strategicScenarioRepository{
		scenarios: make(map[types.ProjectID][]*model.StrategicScenario),
	}
}

func copyStrategicScenario(s *model.StrategicScenario) *model.StrategicScenario {
	copied := *s
	if s.AssetCodes != nil {
		copied.AssetCodes = make([]types.RefCode, len(s.AssetCodes))
		copy(copied.AssetCodes, s.AssetCodes)
	}
	return &copied
}

func (r *strategicScenarioRepository) PutBatch(ctx context.Context, projectID types.ProjectID, scenarios []*model.StrategicScenario) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	batch := make([]*model.StrategicScenario, 0, len(scenarios))
	for _, s := range scenarios {
		batch = append(batch, copyStrategicScenario(s))
	}
	r.scenarios[projectID] = append(r.scenarios[projectID], batch...)
	return nil
}

func (r *strategicScenarioRepository) ListByProject(ctx context.Context, projectID types.ProjectID) ([]*model.StrategicScenario, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	scenarios := make([]*model.StrategicScenario, 0, len(r.scenarios[projectID]))
	for _, s := range r.scenarios[projectID] {
		scenarios = append(scenarios, copyStrategicScenario(s))
	}
	sort.Slice(scenarios, func(i, j int) bool { return scenarios[i].Code.Seq() < scenarios[j].Code.Seq() })
	return scenarios, nil
}

func (r *strategicScenarioRepository) MaxSeq(ctx context.Context, projectID types.ProjectID) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	max := 0
	for _, s := range r.scenarios[projectID] {
		if seq := s.Code.Seq(); seq > max {
			max = seq
		}
	}
	return max, nil
}

type operationalScenarioRepository struct {
	mu        sync.RWMutex
	scenarios map[types.ProjectID][]*model.OperationalScenario
}

func newOperationalScenarioRepository() *operationalScenarioRepository {
	return &operationalScenarioRepository{
		scenarios: make(map[types.ProjectID][]*model.OperationalScenario),
	}
}

func copyOperationalScenario(o *model.OperationalScenario) *model.OperationalScenario {
	copied := *o
	if o.Steps != nil {
		copied.Steps = make([]model.AttackStep, len(o.Steps))
		copy(copied.Steps, o.Steps)
		for i := range copied.Steps {
			if o.Steps[i].TargetAssetCodes != nil {
				copied.Steps[i].TargetAssetCodes = make([]types.RefCode, len(o.Steps[i].TargetAssetCodes))
				copy(copied.Steps[i].TargetAssetCodes, o.Steps[i].TargetAssetCodes)
			}
		}
	}
	return &copied
}

func (r *operationalScenarioRepository) PutBatch(ctx context.Context, projectID types.ProjectID, scenarios []*model.OperationalScenario) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	batch := make([]*model.OperationalScenario, 0, len(scenarios))
	for _, o := range scenarios {
		batch = append(batch, copyOperationalScenario(o))
	}
	r.scenarios[projectID] = append(r.scenarios[projectID], batch...)
	return nil
}

func (r *operationalScenarioRepository) ListByProject(ctx context.Context, projectID types.ProjectID) ([]*model.OperationalScenario, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	scenarios := make([]*model.OperationalScenario, 0, len(r.scenarios[projectID]))
	for _, o := range r.scenarios[projectID] {
		scenarios = append(scenarios, copyOperationalScenario(o))
	}
	sort.Slice(scenarios, func(i, j int) bool { return scenarios[i].Code.Seq() < scenarios[j].Code.Seq() })
	return scenarios, nil
}

func (r *operationalScenarioRepository) MaxSeq(ctx context.Context, projectID types.ProjectID) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	max := 0
	for _, o := range r.scenarios[projectID] {
		if seq := o.Code.Seq(); seq > max {
			max = seq
		}
	}
	return max, nil
}
