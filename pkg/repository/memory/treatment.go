package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/cybergard/ebiosgard/pkg/domain/model"
	"github.com/cybergard/ebiosgard/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

type treatmentRepository struct {
	mu    sync.RWMutex
	plans map[types.ProjectID]*model.TreatmentPlan
}

func newTreatmentRepository() *treatmentRepository {
	return &treatmentRepository{
		plans: make(map[types.ProjectID]*model.TreatmentPlan),
	}
}

func copyTreatmentPlan(p *model.TreatmentPlan) *model.TreatmentPlan {
	copied := *p
	if p.Decisions != nil {
		copied.Decisions = make([]model.TreatmentDecision, len(p.Decisions))
		copy(copied.Decisions, p.Decisions)
		for i := range copied.Decisions {
			if p.Decisions[i].Actions != nil {
				copied.Decisions[i].Actions = make([]model.TreatmentAction, len(p.Decisions[i].Actions))
				copy(copied.Decisions[i].Actions, p.Decisions[i].Actions)
			}
		}
	}
	if p.Synthesis.MajorRiskCodes != nil {
		copied.Synthesis.MajorRiskCodes = make([]types.RefCode, len(p.Synthesis.MajorRiskCodes))
		copy(copied.Synthesis.MajorRiskCodes, p.Synthesis.MajorRiskCodes)
	}
	if p.Synthesis.Recommendations != nil {
		copied.Synthesis.Recommendations = make([]string, len(p.Synthesis.Recommendations))
		copy(copied.Synthesis.Recommendations, p.Synthesis.Recommendations)
	}
	return &copied
}

func (r *treatmentRepository) Put(ctx context.Context, plan *model.TreatmentPlan) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.plans[plan.ProjectID] = copyTreatmentPlan(plan)
	return nil
}

func (r *treatmentRepository) Get(ctx context.Context, projectID types.ProjectID) (*model.TreatmentPlan, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	plan, exists := r.plans[projectID]
	if !exists {
		return nil, goerr.Wrap(types.ErrNotFound, "treatment plan not found", goerr.V("project_id", projectID))
	}

	return copyTreatmentPlan(plan), nil
}

type snapshotRepository struct {
	mu        sync.RWMutex
	snapshots map[types.ProjectID][]*model.MatrixSnapshot
}

func newSnapshotRepository() *snapshotRepository {
	return &snapshotRepository{
		snapshots: make(map[types.ProjectID][]*model.MatrixSnapshot),
	}
}

func copySnapshot(s *model.MatrixSnapshot) *model.MatrixSnapshot {
	copied := *s
	return &copied
}

func (r *snapshotRepository) Create(ctx context.Context, snapshot *model.MatrixSnapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.snapshots[snapshot.ProjectID] = append(r.snapshots[snapshot.ProjectID], copySnapshot(snapshot))
	return nil
}

func (r *snapshotRepository) ListByProject(ctx context.Context, projectID types.ProjectID) ([]*model.MatrixSnapshot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	snapshots := make([]*model.MatrixSnapshot, 0, len(r.snapshots[projectID]))
	for _, s := range r.snapshots[projectID] {
		snapshots = append(snapshots, copySnapshot(s))
	}
	sort.Slice(snapshots, func(i, j int) bool { return snapshots[i].TakenAt.After(snapshots[j].TakenAt) })
	return snapshots, nil
}

type generationLogRepository struct {
	mu      sync.RWMutex
	records map[types.ProjectID][]*model.GenerationRecord
}

func newGenerationLogRepository() *generationLogRepository {
	return &generationLogRepository{
		records: make(map[types.ProjectID][]*model.GenerationRecord),
	}
}

func copyGenerationRecord(g *model.GenerationRecord) *model.GenerationRecord {
	copied := *g
	return &copied
}

func (r *generationLogRepository) Create(ctx context.Context, record *model.GenerationRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.records[record.ProjectID] = append(r.records[record.ProjectID], copyGenerationRecord(record))
	return nil
}

func (r *generationLogRepository) ListByProject(ctx context.Context, projectID types.ProjectID) ([]*model.GenerationRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	records := make([]*model.GenerationRecord, 0, len(r.records[projectID]))
	for _, g := range r.records[projectID] {
		records = append(records, copyGenerationRecord(g))
	}
	sort.Slice(records, func(i, j int) bool { return records[i].CreatedAt.After(records[j].CreatedAt) })
	return records, nil
}
