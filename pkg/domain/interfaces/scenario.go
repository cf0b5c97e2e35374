package interfaces

import (
	"context"

	"github.com/cybergard/ebiosgard/pkg/domain/model"
	"github.com/cybergard/ebiosgard/pkg/domain/types"
)

// RiskSourceRepository defines the interface for RiskSource persistence
type RiskSourceRepository interface {
	PutBatch(ctx context.Context, projectID types.ProjectID, sources []*model.RiskSource) error
	ListByProject(ctx context.Context, projectID types.ProjectID) ([]*model.RiskSource, error)
	MaxSeq(ctx context.Context, projectID types.ProjectID) (int, error)
}

// StrategicScenarioRepository defines the interface for StrategicScenario persistence
type StrategicScenarioRepository interface {
	PutBatch(ctx context.Context, projectID types.ProjectID, scenarios []*model.StrategicScenario) error
	ListByProject(ctx context.Context, projectID types.ProjectID) ([]*model.StrategicScenario, error)
	MaxSeq(ctx context.Context, projectID types.ProjectID) (int, error)
}

// OperationalScenarioRepository defines the interface for OperationalScenario persistence
type OperationalScenarioRepository interface {
	PutBatch(ctx context.Context, projectID types.ProjectID, scenarios []*model.OperationalScenario) error
	ListByProject(ctx context.Context, projectID types.ProjectID) ([]*model.OperationalScenario, error)
	MaxSeq(ctx context.Context, projectID types.ProjectID) (int, error)
}
