package interfaces

import (
	"context"

	"github.com/cybergard/ebiosgard/pkg/domain/model"
	"github.com/cybergard/ebiosgard/pkg/domain/types"
)

// BusinessValueRepository defines the interface for BusinessValue persistence
type BusinessValueRepository interface {
	// PutBatch stores a validated batch atomically; an error leaves the
	// store unchanged
	PutBatch(ctx context.Context, projectID types.ProjectID, values []*model.BusinessValue) error

	// ListByProject retrieves all business values of a project in code order
	ListByProject(ctx context.Context, projectID types.ProjectID) ([]*model.BusinessValue, error)

	// MaxSeq returns the highest assigned code sequence, 0 when none exist
	MaxSeq(ctx context.Context, projectID types.ProjectID) (int, error)
}

// SupportingAssetRepository defines the interface for SupportingAsset persistence
type SupportingAssetRepository interface {
	PutBatch(ctx context.Context, projectID types.ProjectID, assets []*model.SupportingAsset) error
	ListByProject(ctx context.Context, projectID types.ProjectID) ([]*model.SupportingAsset, error)
	MaxSeq(ctx context.Context, projectID types.ProjectID) (int, error)
}

// FearedEventRepository defines the interface for FearedEvent persistence
type FearedEventRepository interface {
	PutBatch(ctx context.Context, projectID types.ProjectID, events []*model.FearedEvent) error
	ListByProject(ctx context.Context, projectID types.ProjectID) ([]*model.FearedEvent, error)
	MaxSeq(ctx context.Context, projectID types.ProjectID) (int, error)
}
