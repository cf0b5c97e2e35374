package interfaces

import (
	"context"

	"github.com/cybergard/ebiosgard/pkg/domain/model"
	"github.com/cybergard/ebiosgard/pkg/domain/types"
)

// TreatmentRepository defines the interface for TreatmentPlan persistence.
// One project holds at most one plan; Put replaces it wholesale.
type TreatmentRepository interface {
	Put(ctx context.Context, plan *model.TreatmentPlan) error
	Get(ctx context.Context, projectID types.ProjectID) (*model.TreatmentPlan, error)
}

// SnapshotRepository defines the interface for MatrixSnapshot persistence
type SnapshotRepository interface {
	// Create stores an immutable snapshot
	Create(ctx context.Context, snapshot *model.MatrixSnapshot) error

	// ListByProject retrieves all snapshots of a project, newest first
	ListByProject(ctx context.Context, projectID types.ProjectID) ([]*model.MatrixSnapshot, error)
}

// GenerationLogRepository defines the interface for the generation audit trail
type GenerationLogRepository interface {
	// Create appends an audit record
	Create(ctx context.Context, record *model.GenerationRecord) error

	// ListByProject retrieves all audit records of a project, newest first
	ListByProject(ctx context.Context, projectID types.ProjectID) ([]*model.GenerationRecord, error)
}
