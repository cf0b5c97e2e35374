package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cybergard/ebiosgard/pkg/domain/interfaces"
	"github.com/cybergard/ebiosgard/pkg/domain/model"
	"github.com/cybergard/ebiosgard/pkg/domain/types"
	"github.com/cybergard/ebiosgard/pkg/repository/memory"
	"github.com/cybergard/ebiosgard/pkg/service/catalog"
	"github.com/cybergard/ebiosgard/pkg/service/generation"
	"github.com/cybergard/ebiosgard/pkg/usecase"
	"github.com/m-mizutani/gt"
)

func newCatalog(t *testing.T) catalog.Service {
	t.Helper()
	cat, err := catalog.New()
	gt.NoError(t, err).Required()
	return cat
}

func newUseCases(t *testing.T, repo interfaces.Repository, gen generation.Service, opts ...usecase.Option) *usecase.UseCases {
	t.Helper()
	return usecase.New(repo, gen, newCatalog(t), opts...)
}

func createProject(t *testing.T, repo interfaces.Repository) *model.Project {
	t.Helper()
	project := model.NewProject("Hospital information system", "Regional hospital group", "healthcare")
	gt.NoError(t, repo.Project().Create(context.Background(), project)).Required()
	return project
}

func markDone(t *testing.T, repo interfaces.Repository, projectID types.ProjectID, kinds ...types.WorkshopKind) {
	t.Helper()
	for _, kind := range kinds {
		ws := model.NewWorkshop(projectID, kind)
		ws.Status = types.WorkshopDone
		ws.CompletionPercent = 100
		gt.NoError(t, repo.Workshop().Put(context.Background(), ws)).Required()
	}
}

// seedScoping commits a workshop 1 referential directly: three business
// values, five supporting assets and five feared events with severities
// 1 through 4.
func seedScoping(t *testing.T, repo interfaces.Repository, projectID types.ProjectID) {
	t.Helper()
	ctx := context.Background()
	now := time.Now().UTC()

	values := []*model.BusinessValue{
		{ID: "v1", Code: "VM01", ProjectID: projectID, Label: "Patient care continuity", Criticality: 4, Source: types.SourceManual, CreatedAt: now},
		{ID: "v2", Code: "VM02", ProjectID: projectID, Label: "Medical records", Criticality: 4, Source: types.SourceManual, CreatedAt: now},
		{ID: "v3", Code: "VM03", ProjectID: projectID, Label: "Billing", Criticality: 2, Source: types.SourceManual, CreatedAt: now},
	}
	gt.NoError(t, repo.BusinessValue().PutBatch(ctx, projectID, values)).Required()

	assets := make([]*model.SupportingAsset, 0, 5)
	for i, label := range []string{"EHR database", "Workstations", "Network core", "Identity provider", "Backup system"} {
		assets = append(assets, &model.SupportingAsset{
			ID: label, Code: types.NewRefCode("BS", i + 1), ProjectID: projectID,
			Label: label, Kind: "SYS_INFORMATIQUE", Criticality: 3,
			BusinessValueCode: "VM01", Source: types.SourceManual, OrderIndex: i, CreatedAt: now,
		})
	}
	gt.NoError(t, repo.SupportingAsset().PutBatch(ctx, projectID, assets)).Required()

	severities := []types.Gravity{1, 2, 3, 4, 4}
	criteria := []types.SecurityCriterion{
		types.CriterionAvailability,
		types.CriterionIntegrity,
		types.CriterionConfidentiality,
		types.CriterionConfidentiality,
		types.CriterionAvailability,
	}
	events := make([]*model.FearedEvent, 0, 5)
	for i := range severities {
		events = append(events, &model.FearedEvent{
			ID: string(types.NewRefCode("ER", i + 1)), Code: types.NewRefCode("ER", i + 1), ProjectID: projectID,
			Label: "Feared event " + string(types.NewRefCode("ER", i+1)), Criterion: criteria[i],
			Severity: severities[i], BusinessValueCode: "VM01",
			AssetCodes: []types.RefCode{"BS01"}, Source: types.SourceManual, OrderIndex: i, CreatedAt: now,
		})
	}
	gt.NoError(t, repo.FearedEvent().PutBatch(ctx, projectID, events)).Required()

	markDone(t, repo, projectID, types.WorkshopScoping)
}

// seedSources commits workshop 2 state: SR01 retained, SR02 discarded.
func seedSources(t *testing.T, repo interfaces.Repository, projectID types.ProjectID) {
	t.Helper()
	now := time.Now().UTC()
	sources := []*model.RiskSource{
		{
			ID: "s1", Code: "SR01", ProjectID: projectID, Label: "Organized cybercrime group",
			Category: "CYBERCRIMINELS", Pertinence: 4, Selected: true,
			Objectives: []model.TargetedObjective{
				{Label: "Ransom the hospital", FearedEventCodes: []types.RefCode{"ER05"}},
			},
			Source: types.SourceManual, CreatedAt: now,
		},
		{
			ID: "s2", Code: "SR02", ProjectID: projectID, Label: "Opportunistic hacktivists",
			Category: "HACKTIVISTE", Pertinence: 1, Selected: false,
			Objectives: []model.TargetedObjective{
				{Label: "Deface the public portal", FearedEventCodes: []types.RefCode{"ER02"}},
			},
			Source: types.SourceManual, CreatedAt: now,
		},
	}
	gt.NoError(t, repo.RiskSource().PutBatch(context.Background(), projectID, sources)).Required()
	markDone(t, repo, projectID, types.WorkshopRiskSources)
}

// seedStrategic commits workshop 3 state: three scenarios with scores
// 9, 12 and 4.
func seedStrategic(t *testing.T, repo interfaces.Repository, projectID types.ProjectID) {
	t.Helper()
	now := time.Now().UTC()
	vuln := model.StrategicVulnerability{Code: "VULN-01", Label: "Exposed remote access without MFA"}
	scenarios := []*model.StrategicScenario{
		{
			ID: "ss1", Code: "SS01", ProjectID: projectID, Title: "Data theft through remote access",
			RiskSourceCode: "SR01", FearedEventCode: "ER03", Vulnerability: vuln,
			AssetCodes: []types.RefCode{"BS01", "BS04"},
			Severity:   3, Likelihood: 3, Score: 9,
			Source: types.SourceManual, OrderIndex: 0, CreatedAt: now,
		},
		{
			ID: "ss2", Code: "SS02", ProjectID: projectID, Title: "Ransomware on the EHR",
			RiskSourceCode: "SR01", FearedEventCode: "ER05", Vulnerability: vuln,
			AssetCodes: []types.RefCode{"BS01", "BS05"},
			Severity:   4, Likelihood: 3, Score: 12,
			Source: types.SourceManual, OrderIndex: 1, CreatedAt: now,
		},
		{
			ID: "ss3", Code: "SS03", ProjectID: projectID, Title: "Billing record tampering",
			RiskSourceCode: "SR01", FearedEventCode: "ER02", Vulnerability: vuln,
			AssetCodes: []types.RefCode{"BS02"},
			Severity:   2, Likelihood: 2, Score: 4,
			Source: types.SourceManual, OrderIndex: 2, CreatedAt: now,
		},
	}
	gt.NoError(t, repo.StrategicScenario().PutBatch(context.Background(), projectID, scenarios)).Required()
	markDone(t, repo, projectID, types.WorkshopStrategic)
}

func seedSteps() []model.AttackStep {
	return []model.AttackStep{
		{Order: 1, Summary: "Phish a clinician account", Kind: types.StepInitialAccess, TargetAssetCodes: []types.RefCode{"BS02"}},
		{Order: 2, Summary: "Pivot to the EHR database", Kind: types.StepMovement, TargetAssetCodes: []types.RefCode{"BS01"}},
		{Order: 3, Summary: "Exfiltrate or encrypt records", Kind: types.StepImpact, TargetAssetCodes: []types.RefCode{"BS01"}},
	}
}

// seedOperational commits workshop 4 state: one operational scenario
// per strategic scenario, severities inherited.
func seedOperational(t *testing.T, repo interfaces.Repository, projectID types.ProjectID) {
	t.Helper()
	now := time.Now().UTC()
	scenarios := []*model.OperationalScenario{
		{
			ID: "so1", Code: "SO01", ProjectID: projectID, Title: "Credential theft and exfiltration",
			StrategicScenarioCode: "SS01", Severity: 3, Likelihood: 3, Score: 9,
			Steps: seedSteps(), Source: types.SourceManual, OrderIndex: 0, CreatedAt: now,
		},
		{
			ID: "so2", Code: "SO02", ProjectID: projectID, Title: "Ransomware deployment",
			StrategicScenarioCode: "SS02", Severity: 4, Likelihood: 3, Score: 12,
			Steps: seedSteps(), Source: types.SourceManual, OrderIndex: 1, CreatedAt: now,
		},
		{
			ID: "so3", Code: "SO03", ProjectID: projectID, Title: "Invoice record manipulation",
			StrategicScenarioCode: "SS03", Severity: 2, Likelihood: 2, Score: 4,
			Steps: seedSteps(), Source: types.SourceManual, OrderIndex: 2, CreatedAt: now,
		},
	}
	gt.NoError(t, repo.OperationalScenario().PutBatch(context.Background(), projectID, scenarios)).Required()
	markDone(t, repo, projectID, types.WorkshopOperational)
}

const validScopingResponse = `{
  "valeurs_metier": [
    {"label": "Patient care continuity", "description": "Keep care units running", "criticite": 4},
    {"label": "Medical records", "description": "Confidential patient data", "criticite": 4},
    {"label": "Billing", "description": "Invoicing and reimbursement", "criticite": 2}
  ],
  "biens_supports": [
    {"label": "EHR database", "type": "SYS_INFORMATIQUE", "description": "Central records store", "criticite": 4, "valeur_metier_ref": "Medical records"},
    {"label": "Workstations", "type": "SYS_INFORMATIQUE", "description": "Clinician endpoints", "criticite": 2, "valeur_metier_ref": "Patient care continuity"},
    {"label": "Network core", "type": "RESEAU", "description": "Hospital backbone", "criticite": 3, "valeur_metier_ref": "Patient care continuity"},
    {"label": "Identity provider", "type": "SYS_INFORMATIQUE", "description": "SSO and directory", "criticite": 3, "valeur_metier_ref": "Medical records"},
    {"label": "Backup system", "type": "SYS_INFORMATIQUE", "description": "Offsite backups", "criticite": 3, "valeur_metier_ref": "Medical records"}
  ],
  "evenements_redoutes": [
    {"label": "Short outage of the portal", "description": "", "critere": "disponibilite", "gravite": 1, "justification": "", "valeur_metier_ref": "Billing", "biens_supports_refs": ["Network core"]},
    {"label": "Altered invoices", "description": "", "critere": "integrite", "gravite": 2, "justification": "", "valeur_metier_ref": "Billing", "biens_supports_refs": ["Workstations"]},
    {"label": "Leak of a patient cohort", "description": "", "critere": "confidentialite", "gravite": 3, "justification": "", "valeur_metier_ref": "Medical records", "biens_supports_refs": ["EHR database"]},
    {"label": "Full records breach", "description": "", "critere": "confidentialite", "gravite": 4, "justification": "", "valeur_metier_ref": "Medical records", "biens_supports_refs": ["EHR database", "Identity provider"]},
    {"label": "Care units paralyzed", "description": "", "critere": "disponibilite", "gravite": 4, "justification": "", "valeur_metier_ref": "Patient care continuity", "biens_supports_refs": ["EHR database", "Backup system"]}
  ]
}`

func TestScoping_CommitsBatch(t *testing.T) {
	repo := memory.New()
	project := createProject(t, repo)
	mock := generation.NewMock(validScopingResponse)
	uc := newUseCases(t, repo, mock)
	ctx := context.Background()

	result, err := uc.Scoping(ctx, project.ID)
	gt.NoError(t, err).Required()
	gt.A(t, result.BusinessValues).Length(3)
	gt.A(t, result.Assets).Length(5)
	gt.A(t, result.FearedEvents).Length(5)

	gt.V(t, result.BusinessValues[0].Code).Equal(types.RefCode("VM01"))
	gt.V(t, result.Assets[4].Code).Equal(types.RefCode("BS05"))
	gt.V(t, result.FearedEvents[4].Code).Equal(types.RefCode("ER05"))
	gt.V(t, result.FearedEvents[4].Severity).Equal(types.Gravity(4))
	gt.V(t, result.FearedEvents[0].Criterion).Equal(types.CriterionAvailability)

	// In-batch label references resolved to assigned codes
	gt.V(t, result.Assets[0].BusinessValueCode).Equal(types.RefCode("VM02"))
	gt.A(t, result.FearedEvents[3].AssetCodes).Length(2)

	ws, err := repo.Workshop().Get(ctx, project.ID, types.WorkshopScoping)
	gt.NoError(t, err).Required()
	gt.V(t, ws.Status).Equal(types.WorkshopDone)

	got, err := repo.Project().Get(ctx, project.ID)
	gt.NoError(t, err).Required()
	gt.V(t, got.Status).Equal(types.ProjectInProgress)

	records, err := repo.GenerationLog().ListByProject(ctx, project.ID)
	gt.NoError(t, err).Required()
	gt.A(t, records).Length(1)
	gt.B(t, records[0].Success).True()
}

func TestScoping_RejectsUnknownReference(t *testing.T) {
	repo := memory.New()
	project := createProject(t, repo)
	response := `{
	  "valeurs_metier": [
	    {"label": "A", "description": "", "criticite": 1},
	    {"label": "B", "description": "", "criticite": 2},
	    {"label": "C", "description": "", "criticite": 3}
	  ],
	  "biens_supports": [
	    {"label": "S1", "type": "k", "description": "", "criticite": 1, "valeur_metier_ref": "A"},
	    {"label": "S2", "type": "k", "description": "", "criticite": 1, "valeur_metier_ref": "A"},
	    {"label": "S3", "type": "k", "description": "", "criticite": 1, "valeur_metier_ref": "B"},
	    {"label": "S4", "type": "k", "description": "", "criticite": 1, "valeur_metier_ref": "C"},
	    {"label": "S5", "type": "k", "description": "", "criticite": 1, "valeur_metier_ref": "No such value"}
	  ],
	  "evenements_redoutes": [
	    {"label": "E1", "description": "", "critere": "disponibilite", "gravite": 1, "justification": "", "valeur_metier_ref": "A", "biens_supports_refs": ["S1"]},
	    {"label": "E2", "description": "", "critere": "integrite", "gravite": 2, "justification": "", "valeur_metier_ref": "A", "biens_supports_refs": ["S2"]},
	    {"label": "E3", "description": "", "critere": "confidentialite", "gravite": 3, "justification": "", "valeur_metier_ref": "B", "biens_supports_refs": ["S3"]},
	    {"label": "E4", "description": "", "critere": "confidentialite", "gravite": 4, "justification": "", "valeur_metier_ref": "B", "biens_supports_refs": ["S4"]},
	    {"label": "E5", "description": "", "critere": "disponibilite", "gravite": 4, "justification": "", "valeur_metier_ref": "C", "biens_supports_refs": ["S1"]}
	  ]
	}`
	uc := newUseCases(t, repo, generation.NewMock(response))
	ctx := context.Background()

	_, err := uc.Scoping(ctx, project.ID)
	gt.Error(t, err)
	gt.V(t, types.Taxonomy(err)).Equal(types.TaxonomyReferentialIntegrity)

	// Nothing committed
	values, err := repo.BusinessValue().ListByProject(ctx, project.ID)
	gt.NoError(t, err).Required()
	gt.A(t, values).Length(0)
}

func TestScoping_RejectsCardinality(t *testing.T) {
	repo := memory.New()
	project := createProject(t, repo)
	response := `{
	  "valeurs_metier": [
	    {"label": "A", "description": "", "criticite": 1},
	    {"label": "B", "description": "", "criticite": 2}
	  ],
	  "biens_supports": [],
	  "evenements_redoutes": []
	}`
	uc := newUseCases(t, repo, generation.NewMock(response))

	_, err := uc.Scoping(context.Background(), project.ID)
	gt.Error(t, err)
	gt.V(t, types.Taxonomy(err)).Equal(types.TaxonomySchemaViolation)
}

func TestScoping_RegeneratesOnRejection(t *testing.T) {
	repo := memory.New()
	project := createProject(t, repo)
	tooFew := `{"valeurs_metier": [{"label": "A", "description": "", "criticite": 1}], "biens_supports": [], "evenements_redoutes": []}`
	mock := generation.NewMock(tooFew, validScopingResponse)
	uc := newUseCases(t, repo, mock, usecase.WithRegenerateOnRejection(true))
	ctx := context.Background()

	result, err := uc.Scoping(ctx, project.ID)
	gt.NoError(t, err).Required()
	gt.A(t, result.BusinessValues).Length(3)
	gt.A(t, mock.Calls).Length(2)

	// Both passes leave an audit record
	records, err := repo.GenerationLog().ListByProject(ctx, project.ID)
	gt.NoError(t, err).Required()
	gt.A(t, records).Length(2)
}

func TestScoping_FrozenProjectRefuses(t *testing.T) {
	repo := memory.New()
	project := createProject(t, repo)
	ctx := context.Background()
	gt.NoError(t, repo.Project().UpdateStatus(ctx, project.ID, types.ProjectFrozen)).Required()

	uc := newUseCases(t, repo, generation.NewMock(validScopingResponse))
	_, err := uc.Scoping(ctx, project.ID)
	gt.Error(t, err)
	gt.B(t, errors.Is(err, types.ErrFrozen)).True()
}

func TestRiskSources_RequiresScoping(t *testing.T) {
	repo := memory.New()
	project := createProject(t, repo)
	uc := newUseCases(t, repo, generation.NewMock())

	_, err := uc.RiskSources(context.Background(), project.ID)
	gt.Error(t, err)
	gt.B(t, errors.Is(err, types.ErrStageOrder)).True()
}

func TestRiskSources_CommitsBatch(t *testing.T) {
	repo := memory.New()
	project := createProject(t, repo)
	seedScoping(t, repo, project.ID)

	response := `{
	  "sources_risque": [
	    {"label": "Ransomware operators", "categorie": "cybercriminels", "description": "", "pertinence": 4, "justification": "", "retenue": true,
	     "objectifs_vises": [{"label": "Extort payment", "description": "", "evenements_redoutes_refs": ["ER05"]}]},
	    {"label": "State-sponsored group", "categorie": "APT", "description": "", "pertinence": 3, "justification": "", "retenue": true,
	     "objectifs_vises": [{"label": "Steal cohort data", "description": "", "evenements_redoutes_refs": ["ER03", "ER04"]}]},
	    {"label": "Careless employee", "categorie": "EMPLOYE_NEGLIGENT", "description": "", "pertinence": 2, "justification": "", "retenue": false,
	     "objectifs_vises": [{"label": "Accidental disclosure", "description": "", "evenements_redoutes_refs": ["ER03"]}]},
	    {"label": "Hacktivist collective", "categorie": "HACKTIVISTE", "description": "", "pertinence": 1, "justification": "", "retenue": false,
	     "objectifs_vises": [{"label": "Publicity through defacement", "description": "", "evenements_redoutes_refs": ["ER01"]}]}
	  ]
	}`
	uc := newUseCases(t, repo, generation.NewMock(response))
	ctx := context.Background()

	sources, err := uc.RiskSources(ctx, project.ID)
	gt.NoError(t, err).Required()
	gt.A(t, sources).Length(4)
	gt.V(t, sources[0].Code).Equal(types.RefCode("SR01"))
	gt.V(t, sources[0].Category).Equal("CYBERCRIMINELS") // normalized
	gt.B(t, sources[0].Selected).True()
	gt.B(t, sources[2].Selected).False()
	gt.A(t, sources[1].Objectives[0].FearedEventCodes).Length(2)
}

func TestRiskSources_RejectsUnknownCategory(t *testing.T) {
	repo := memory.New()
	project := createProject(t, repo)
	seedScoping(t, repo, project.ID)

	response := `{
	  "sources_risque": [
	    {"label": "A", "categorie": "MARTIANS", "description": "", "pertinence": 1, "justification": "", "retenue": true,
	     "objectifs_vises": [{"label": "o", "description": "", "evenements_redoutes_refs": ["ER01"]}]},
	    {"label": "B", "categorie": "APT", "description": "", "pertinence": 1, "justification": "", "retenue": true,
	     "objectifs_vises": [{"label": "o", "description": "", "evenements_redoutes_refs": ["ER01"]}]},
	    {"label": "C", "categorie": "APT", "description": "", "pertinence": 1, "justification": "", "retenue": true,
	     "objectifs_vises": [{"label": "o", "description": "", "evenements_redoutes_refs": ["ER01"]}]},
	    {"label": "D", "categorie": "APT", "description": "", "pertinence": 1, "justification": "", "retenue": true,
	     "objectifs_vises": [{"label": "o", "description": "", "evenements_redoutes_refs": ["ER01"]}]}
	  ]
	}`
	uc := newUseCases(t, repo, generation.NewMock(response))

	_, err := uc.RiskSources(context.Background(), project.ID)
	gt.Error(t, err)
	gt.V(t, types.Taxonomy(err)).Equal(types.TaxonomySchemaViolation)
}

func TestRiskSources_RequiresRetainedSource(t *testing.T) {
	repo := memory.New()
	project := createProject(t, repo)
	seedScoping(t, repo, project.ID)

	response := `{
	  "sources_risque": [
	    {"label": "A", "categorie": "APT", "description": "", "pertinence": 1, "justification": "", "retenue": false,
	     "objectifs_vises": [{"label": "o", "description": "", "evenements_redoutes_refs": ["ER01"]}]},
	    {"label": "B", "categorie": "APT", "description": "", "pertinence": 1, "justification": "", "retenue": false,
	     "objectifs_vises": [{"label": "o", "description": "", "evenements_redoutes_refs": ["ER01"]}]},
	    {"label": "C", "categorie": "APT", "description": "", "pertinence": 1, "justification": "", "retenue": false,
	     "objectifs_vises": [{"label": "o", "description": "", "evenements_redoutes_refs": ["ER01"]}]},
	    {"label": "D", "categorie": "APT", "description": "", "pertinence": 1, "justification": "", "retenue": false,
	     "objectifs_vises": [{"label": "o", "description": "", "evenements_redoutes_refs": ["ER01"]}]}
	  ]
	}`
	uc := newUseCases(t, repo, generation.NewMock(response))

	_, err := uc.RiskSources(context.Background(), project.ID)
	gt.Error(t, err)
	gt.V(t, types.Taxonomy(err)).Equal(types.TaxonomyPolicyViolation)
}

func TestStrategicScenarios_DerivesSeverity(t *testing.T) {
	repo := memory.New()
	project := createProject(t, repo)
	seedScoping(t, repo, project.ID)
	seedSources(t, repo, project.ID)

	// The generator asserts gravite=1 and score=99; both are discarded
	// in favor of the feared event's severity and the derived product.
	response := `{
	  "scenarios_strategiques": [
	    {"titre": "Data theft", "description": "", "source_risque_ref": "SR01", "evenement_redoute_ref": "ER03",
	     "vulnerabilite": {"code": "V1", "intitule": "Unpatched VPN concentrator"},
	     "biens_supports_refs": ["BS01", "BS04"], "chemin_attaque": "", "vraisemblance": 3, "justification": "",
	     "gravite": 1, "score": 99},
	    {"titre": "Ransomware", "description": "", "source_risque_ref": "SR01", "evenement_redoute_ref": "ER05",
	     "vulnerabilite": {"code": "V2", "intitule": "Flat internal network"},
	     "biens_supports_refs": ["BS01"], "chemin_attaque": "", "vraisemblance": 3, "justification": ""},
	    {"titre": "Tampering", "description": "", "source_risque_ref": "SR01", "evenement_redoute_ref": "ER02",
	     "vulnerabilite": {"code": "V3", "intitule": "Shared service accounts"},
	     "biens_supports_refs": ["BS02"], "chemin_attaque": "", "vraisemblance": 2, "justification": ""}
	  ]
	}`
	uc := newUseCases(t, repo, generation.NewMock(response))

	scenarios, err := uc.StrategicScenarios(context.Background(), project.ID)
	gt.NoError(t, err).Required()
	gt.A(t, scenarios).Length(3)

	gt.V(t, scenarios[0].Code).Equal(types.RefCode("SS01"))
	gt.V(t, scenarios[0].Severity).Equal(types.Gravity(3)) // from ER03, not the asserted 1
	gt.V(t, scenarios[0].Score).Equal(types.Score(9))
	gt.V(t, scenarios[1].Severity).Equal(types.Gravity(4))
	gt.V(t, scenarios[1].Score).Equal(types.Score(12))
}

func TestStrategicScenarios_RejectsUnretainedSource(t *testing.T) {
	repo := memory.New()
	project := createProject(t, repo)
	seedScoping(t, repo, project.ID)
	seedSources(t, repo, project.ID)

	// SR02 exists but was not retained in workshop 2
	response := `{
	  "scenarios_strategiques": [
	    {"titre": "A", "description": "", "source_risque_ref": "SR02", "evenement_redoute_ref": "ER03",
	     "vulnerabilite": {"code": "V1", "intitule": "Unpatched VPN concentrator"},
	     "biens_supports_refs": ["BS01"], "chemin_attaque": "", "vraisemblance": 3, "justification": ""},
	    {"titre": "B", "description": "", "source_risque_ref": "SR01", "evenement_redoute_ref": "ER05",
	     "vulnerabilite": {"code": "V2", "intitule": "Flat internal network"},
	     "biens_supports_refs": ["BS01"], "chemin_attaque": "", "vraisemblance": 3, "justification": ""},
	    {"titre": "C", "description": "", "source_risque_ref": "SR01", "evenement_redoute_ref": "ER02",
	     "vulnerabilite": {"code": "V3", "intitule": "Shared service accounts"},
	     "biens_supports_refs": ["BS02"], "chemin_attaque": "", "vraisemblance": 2, "justification": ""}
	  ]
	}`
	uc := newUseCases(t, repo, generation.NewMock(response))

	_, err := uc.StrategicScenarios(context.Background(), project.ID)
	gt.Error(t, err)
	gt.V(t, types.Taxonomy(err)).Equal(types.TaxonomyPolicyViolation)

	committed, lerr := repo.StrategicScenario().ListByProject(context.Background(), project.ID)
	gt.NoError(t, lerr).Required()
	gt.A(t, committed).Length(0)
}

// operationalResponse is valid for any parent because the strategic
// reference is left empty; the fan-out pins each reply to its parent.
const operationalResponse = `{
  "scenarios_operationnels": [
    {"titre": "Technical kill chain", "description": "", "scenario_strategique_ref": "", "vraisemblance": 3, "justification": "",
     "etapes": [
       {"ordre": 1, "resume": "Spearphish an operator", "details": "", "actifs_cibles": ["BS02"], "type_etape": "INITIAL_ACCESS"},
       {"ordre": 2, "resume": "Harvest credentials", "details": "", "actifs_cibles": ["BS04"], "type_etape": "EXECUTION"},
       {"ordre": 3, "resume": "Move to the database tier", "details": "", "actifs_cibles": ["BS01"], "type_etape": "MOVEMENT"},
       {"ordre": 4, "resume": "Impact the records", "details": "", "actifs_cibles": ["BS01"], "type_etape": "IMPACT"}
     ]}
  ]
}`

func TestOperationalScenarios_InheritSeverity(t *testing.T) {
	repo := memory.New()
	project := createProject(t, repo)
	seedScoping(t, repo, project.ID)
	seedSources(t, repo, project.ID)
	seedStrategic(t, repo, project.ID)

	mock := generation.NewMock(operationalResponse, operationalResponse, operationalResponse)
	uc := newUseCases(t, repo, mock)
	ctx := context.Background()

	scenarios, err := uc.OperationalScenarios(ctx, project.ID)
	gt.NoError(t, err).Required()
	gt.A(t, scenarios).Length(3)
	gt.A(t, mock.Calls).Length(3)

	// Codes are assigned in strategic scenario order regardless of
	// which fan-out call finished first.
	gt.V(t, scenarios[0].Code).Equal(types.RefCode("SO01"))
	gt.V(t, scenarios[0].StrategicScenarioCode).Equal(types.RefCode("SS01"))
	gt.V(t, scenarios[0].Severity).Equal(types.Gravity(3))
	gt.V(t, scenarios[0].Score).Equal(types.Score(9))

	gt.V(t, scenarios[1].Code).Equal(types.RefCode("SO02"))
	gt.V(t, scenarios[1].StrategicScenarioCode).Equal(types.RefCode("SS02"))
	gt.V(t, scenarios[1].Severity).Equal(types.Gravity(4))
	gt.V(t, scenarios[1].Score).Equal(types.Score(12))

	gt.A(t, scenarios[2].Steps).Length(4)
	gt.V(t, scenarios[2].Steps[0].Kind).Equal(types.StepInitialAccess)
}

func TestOperationalScenarios_RejectsAlteredSeverity(t *testing.T) {
	repo := memory.New()
	project := createProject(t, repo)
	seedScoping(t, repo, project.ID)
	seedSources(t, repo, project.ID)
	seedStrategic(t, repo, project.ID)

	altered := `{
	  "scenarios_operationnels": [
	    {"titre": "Kill chain", "description": "", "scenario_strategique_ref": "", "vraisemblance": 3, "justification": "",
	     "gravite": 1,
	     "etapes": [
	       {"ordre": 1, "resume": "Access", "details": "", "actifs_cibles": ["BS02"], "type_etape": "INITIAL_ACCESS"},
	       {"ordre": 2, "resume": "Move", "details": "", "actifs_cibles": ["BS01"], "type_etape": "MOVEMENT"},
	       {"ordre": 3, "resume": "Impact", "details": "", "actifs_cibles": ["BS01"], "type_etape": "IMPACT"}
	     ]}
	  ]
	}`
	mock := generation.NewMock(altered, altered, altered)
	uc := newUseCases(t, repo, mock)
	ctx := context.Background()

	_, err := uc.OperationalScenarios(ctx, project.ID)
	gt.Error(t, err)
	gt.V(t, types.Taxonomy(err)).Equal(types.TaxonomyPolicyViolation)

	committed, lerr := repo.OperationalScenario().ListByProject(ctx, project.ID)
	gt.NoError(t, lerr).Required()
	gt.A(t, committed).Length(0)
}
