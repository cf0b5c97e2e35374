package firestore

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/cybergard/ebiosgard/pkg/domain/interfaces"
	"github.com/m-mizutani/goerr/v2"
)

// Firestore is the Cloud Firestore backed Repository. Entities are kept
// in flat top-level collections keyed by project and reference code, so
// a whole workshop batch commits through a single WriteBatch.
type Firestore struct {
	client        *firestore.Client
	project       *projectRepository
	workshop      *workshopRepository
	businessValue *businessValueRepository
	asset         *supportingAssetRepository
	fearedEvent   *fearedEventRepository
	riskSource    *riskSourceRepository
	strategic     *strategicScenarioRepository
	operational   *operationalScenarioRepository
	treatment     *treatmentRepository
	snapshot      *snapshotRepository
	generationLog *generationLogRepository
}

var _ interfaces.Repository = &Firestore{}

type Option func(*Firestore)

// WithCollectionPrefix namespaces every collection, mainly for tests
// sharing one database.
func WithCollectionPrefix(prefix string) Option {
	return func(f *Firestore) {
		f.project.prefix = prefix
		f.workshop.prefix = prefix
		f.businessValue.prefix = prefix
		f.asset.prefix = prefix
		f.fearedEvent.prefix = prefix
		f.riskSource.prefix = prefix
		f.strategic.prefix = prefix
		f.operational.prefix = prefix
		f.treatment.prefix = prefix
		f.snapshot.prefix = prefix
		f.generationLog.prefix = prefix
	}
}

// New creates a Firestore repository. An empty databaseID selects the
// default database of the project.
func New(ctx context.Context, projectID, databaseID string, opts ...Option) (*Firestore, error) {
	var client *firestore.Client
	var err error
	if databaseID == "" {
		client, err = firestore.NewClient(ctx, projectID)
	} else {
		client, err = firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client",
			goerr.V("projectID", projectID), goerr.V("databaseID", databaseID))
	}

	f := &Firestore{
		client:        client,
		project:       &projectRepository{client: client},
		workshop:      &workshopRepository{client: client},
		businessValue: &businessValueRepository{client: client},
		asset:         &supportingAssetRepository{client: client},
		fearedEvent:   &fearedEventRepository{client: client},
		riskSource:    &riskSourceRepository{client: client},
		strategic:     &strategicScenarioRepository{client: client},
		operational:   &operationalScenarioRepository{client: client},
		treatment:     &treatmentRepository{client: client},
		snapshot:      &snapshotRepository{client: client},
		generationLog: &generationLogRepository{client: client},
	}

	for _, opt := range opts {
		opt(f)
	}

	return f, nil
}

func (f *Firestore) Project() interfaces.ProjectRepository {
	return f.project
}

func (f *Firestore) Workshop() interfaces.WorkshopRepository {
	return f.workshop
}

func (f *Firestore) BusinessValue() interfaces.BusinessValueRepository {
	return f.businessValue
}

func (f *Firestore) SupportingAsset() interfaces.SupportingAssetRepository {
	return f.asset
}

func (f *Firestore) FearedEvent() interfaces.FearedEventRepository {
	return f.fearedEvent
}

func (f *Firestore) RiskSource() interfaces.RiskSourceRepository {
	return f.riskSource
}

func (f *Firestore) StrategicScenario() interfaces.StrategicScenarioRepository {
	return f.strategic
}

func (f *Firestore) OperationalScenario() interfaces.OperationalScenarioRepository {
	return f.operational
}

func (f *Firestore) Treatment() interfaces.TreatmentRepository {
	return f.treatment
}

func (f *Firestore) Snapshot() interfaces.SnapshotRepository {
	return f.snapshot
}

func (f *Firestore) GenerationLog() interfaces.GenerationLogRepository {
	return f.generationLog
}

func (f *Firestore) Close() error {
	if f.client != nil {
		return f.client.Close()
	}
	return nil
}

// collectionName applies the optional prefix to a base collection name
func collectionName(prefix, base string) string {
	if prefix != "" {
		return prefix + "_" + base
	}
	return base
}
