package memory

import (
	"github.com/cybergard/ebiosgard/pkg/domain/interfaces"
)

// Repository is an alias for Memory to match the pattern
type Repository = Memory

// Memory is the in-memory Repository used by tests and local runs
type Memory struct {
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

var _ interfaces.Repository = &Memory{}

// New creates an empty in-memory repository
func New() *Memory {
	return &Memory{
		project:       newProjectRepository(),
		workshop:      newWorkshopRepository(),
		businessValue: newBusinessValueRepository(),
		asset:         newSupportingAssetRepository(),
		fearedEvent:   newFearedEventRepository(),
		riskSource:    newRiskSourceRepository(),
		strategic:     newStrategicScenarioRepository(),
		operational:   newOperationalScenarioRepository(),
		treatment:     newTreatmentRepository(),
		snapshot:      newSnapshotRepository(),
		generationLog: newGenerationLogRepository(),
	}
}

func (m *Memory) Project() interfaces.ProjectRepository {
	return m.project
}

func (m *Memory) Workshop() interfaces.WorkshopRepository {
	return m.workshop
}

func (m *Memory) BusinessValue() interfaces.BusinessValueRepository {
	return m.businessValue
}

func (m *Memory) SupportingAsset() interfaces.SupportingAssetRepository {
	return m.asset
}

func (m *Memory) FearedEvent() interfaces.FearedEventRepository {
	return m.fearedEvent
}

func (m *Memory) RiskSource() interfaces.RiskSourceRepository {
	return m.riskSource
}

func (m *Memory) StrategicScenario() interfaces.StrategicScenarioRepository {
	return m.strategic
}

func (m *Memory) OperationalScenario() interfaces.OperationalScenarioRepository {
	return m.operational
}

func (m *Memory) Treatment() interfaces.TreatmentRepository {
	return m.treatment
}

func (m *Memory) Snapshot() interfaces.SnapshotRepository {
	return m.snapshot
}

func (m *Memory) GenerationLog() interfaces.GenerationLogRepository {
	return m.generationLog
}
