package interfaces

// Repository defines the interface for data persistence
type Repository interface {
	Project() ProjectRepository
	Workshop() WorkshopRepository
	BusinessValue() BusinessValueRepository
	SupportingAsset() SupportingAssetRepository
	FearedEvent() FearedEventRepository
	RiskSource() RiskSourceRepository
	StrategicScenario() StrategicScenarioRepository
	OperationalScenario() OperationalScenarioRepository
	Treatment() TreatmentRepository
	Snapshot() SnapshotRepository
	GenerationLog() GenerationLogRepository
}
