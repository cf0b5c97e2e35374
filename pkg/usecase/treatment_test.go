package usecase_test

import (
	"context"
	"testing"

	"github.com/cybergard/ebiosgard/pkg/domain/interfaces"
	"github.com/cybergard/ebiosgard/pkg/domain/types"
	"github.com/cybergard/ebiosgard/pkg/repository/memory"
	"github.com/cybergard/ebiosgard/pkg/service/generation"
	"github.com/m-mizutani/gt"
)

// seedAnalysis commits workshops 1 through 4, leaving three classified
// risks: SO01 (score 9, SIGNIFICANT), SO02 (12, CRITICAL) and SO03 (4,
// MODERATE).
func seedAnalysis(t *testing.T, repo interfaces.Repository, projectID types.ProjectID) {
	t.Helper()
	seedScoping(t, repo, projectID)
	seedSources(t, repo, projectID)
	seedStrategic(t, repo, projectID)
	seedOperational(t, repo, projectID)
}

const validTreatmentResponse = `{
  "plan_traitement": [
    {"risque_ref": "SO01", "strategie": "TRANSFER", "justification": "Cyber insurance covers exfiltration", "vraisemblance_residuelle": 2,
     "actions": [
       {"label": "Contract cyber insurance", "description": "Transfer the financial impact", "categorie": "PREVENTIVE", "priorite": "HIGH", "risques_couverts": ["SO01"]}
     ]},
    {"risque_ref": "SO02", "strategie": "REDUCE", "justification": "Critical risks must be reduced", "vraisemblance_residuelle": 1,
     "actions": [
       {"label": "Deploy EDR on all endpoints", "description": "Detect ransomware early", "categorie": "DETECTIVE", "risques_couverts": ["SO02", "SO01"]},
       {"label": "Immutable offline backups", "description": "Guarantee restoration", "categorie": "CORRECTIVE", "priorite": "HIGH", "risques_couverts": ["SO02"]}
     ]},
    {"risque_ref": "SO03", "strategie": "ACCEPT", "justification": "Residual exposure is tolerable", "vraisemblance_residuelle": 2,
     "actions": [
       {"label": "Quarterly invoice reconciliation", "description": "Catch tampering after the fact", "categorie": "DETECTIVE", "priorite": "LOW", "risques_couverts": ["SO03"]}
     ]}
  ],
  "synthese": {
    "resume": "The ransomware scenario dominates the risk posture.",
    "risques_majeurs": ["SO02"],
    "recommandations": ["Prioritize EDR deployment", "Test backup restoration quarterly"]
  }
}`

func TestTreatment_CommitsPlan(t *testing.T) {
	repo := memory.New()
	project := createProject(t, repo)
	seedAnalysis(t, repo, project.ID)

	uc := newUseCases(t, repo, generation.NewMock(validTreatmentResponse))
	ctx := context.Background()

	plan, err := uc.Treatment(ctx, project.ID)
	gt.NoError(t, err).Required()
	gt.A(t, plan.Decisions).Length(3)

	d, ok := plan.Decision("SO02")
	gt.B(t, ok).True()
	gt.V(t, d.Strategy).Equal(types.StrategyReduce)
	gt.A(t, d.Actions).Length(2)
	gt.V(t, d.Actions[0].Code).Equal("ACT_SO02_001")
	// Omitted priority falls back to the band default: CRITICAL -> HIGH
	gt.V(t, d.Actions[0].Priority).Equal(types.PriorityHigh)
	gt.A(t, d.Actions[0].CoveredRiskCodes).Length(2)

	gt.A(t, plan.Synthesis.MajorRiskCodes).Length(1)
	gt.V(t, plan.Synthesis.MajorRiskCodes[0]).Equal(types.RefCode("SO02"))

	// Plan is retrievable and AT6 is done
	stored, err := uc.GetTreatment(ctx, project.ID)
	gt.NoError(t, err).Required()
	gt.A(t, stored.Decisions).Length(3)

	ws, err := repo.Workshop().Get(ctx, project.ID, types.WorkshopTreatment)
	gt.NoError(t, err).Required()
	gt.V(t, ws.Status).Equal(types.WorkshopDone)
}

func TestTreatment_RejectsInadmissibleStrategy(t *testing.T) {
	repo := memory.New()
	project := createProject(t, repo)
	seedAnalysis(t, repo, project.ID)

	// Accepting a SIGNIFICANT risk (SO01, score 9) is never admissible.
	response := `{
	  "plan_traitement": [
	    {"risque_ref": "SO01", "strategie": "ACCEPT", "justification": "", "vraisemblance_residuelle": 3,
	     "actions": [{"label": "Do nothing", "description": "Concrete measure", "categorie": "PREVENTIVE", "risques_couverts": ["SO01"]}]},
	    {"risque_ref": "SO02", "strategie": "REDUCE", "justification": "", "vraisemblance_residuelle": 1,
	     "actions": [{"label": "EDR", "description": "Concrete measure", "categorie": "DETECTIVE", "risques_couverts": ["SO02"]}]},
	    {"risque_ref": "SO03", "strategie": "ACCEPT", "justification": "", "vraisemblance_residuelle": 2,
	     "actions": [{"label": "Review", "description": "Concrete measure", "categorie": "DETECTIVE", "risques_couverts": ["SO03"]}]}
	  ],
	  "synthese": {"resume": "", "risques_majeurs": [], "recommandations": []}
	}`
	uc := newUseCases(t, repo, generation.NewMock(response))

	_, err := uc.Treatment(context.Background(), project.ID)
	gt.Error(t, err)
	gt.V(t, types.Taxonomy(err)).Equal(types.TaxonomyPolicyViolation)
}

func TestTreatment_RejectsMissingDecision(t *testing.T) {
	repo := memory.New()
	project := createProject(t, repo)
	seedAnalysis(t, repo, project.ID)

	// SO03 has no decision
	response := `{
	  "plan_traitement": [
	    {"risque_ref": "SO01", "strategie": "TRANSFER", "justification": "", "vraisemblance_residuelle": 2,
	     "actions": [{"label": "Insurance", "description": "Concrete measure", "categorie": "PREVENTIVE", "risques_couverts": ["SO01"]}]},
	    {"risque_ref": "SO02", "strategie": "REDUCE", "justification": "", "vraisemblance_residuelle": 1,
	     "actions": [{"label": "EDR", "description": "Concrete measure", "categorie": "DETECTIVE", "risques_couverts": ["SO02"]}]}
	  ],
	  "synthese": {"resume": "", "risques_majeurs": [], "recommandations": []}
	}`
	uc := newUseCases(t, repo, generation.NewMock(response))

	_, err := uc.Treatment(context.Background(), project.ID)
	gt.Error(t, err)
	gt.V(t, types.Taxonomy(err)).Equal(types.TaxonomyReferentialIntegrity)
}

func TestTreatment_RejectsRaisedResidual(t *testing.T) {
	repo := memory.New()
	project := createProject(t, repo)
	seedAnalysis(t, repo, project.ID)

	// SO03 was assessed at likelihood 2; a residual of 4 raises it.
	response := `{
	  "plan_traitement": [
	    {"risque_ref": "SO01", "strategie": "TRANSFER", "justification": "", "vraisemblance_residuelle": 2,
	     "actions": [{"label": "Insurance", "description": "Concrete measure", "categorie": "PREVENTIVE", "risques_couverts": ["SO01"]}]},
	    {"risque_ref": "SO02", "strategie": "REDUCE", "justification": "", "vraisemblance_residuelle": 1,
	     "actions": [{"label": "EDR", "description": "Concrete measure", "categorie": "DETECTIVE", "risques_couverts": ["SO02"]}]},
	    {"risque_ref": "SO03", "strategie": "ACCEPT", "justification": "", "vraisemblance_residuelle": 4,
	     "actions": [{"label": "Review", "description": "Concrete measure", "categorie": "DETECTIVE", "risques_couverts": ["SO03"]}]}
	  ],
	  "synthese": {"resume": "", "risques_majeurs": [], "recommandations": []}
	}`
	uc := newUseCases(t, repo, generation.NewMock(response))

	_, err := uc.Treatment(context.Background(), project.ID)
	gt.Error(t, err)
	gt.V(t, types.Taxonomy(err)).Equal(types.TaxonomyPolicyViolation)
}

func TestTreatment_RejectsDuplicateDecision(t *testing.T) {
	repo := memory.New()
	project := createProject(t, repo)
	seedAnalysis(t, repo, project.ID)

	response := `{
	  "plan_traitement": [
	    {"risque_ref": "SO01", "strategie": "TRANSFER", "justification": "", "vraisemblance_residuelle": 2,
	     "actions": [{"label": "Insurance", "description": "Concrete measure", "categorie": "PREVENTIVE", "risques_couverts": ["SO01"]}]},
	    {"risque_ref": "SO01", "strategie": "REDUCE", "justification": "", "vraisemblance_residuelle": 1,
	     "actions": [{"label": "EDR", "description": "Concrete measure", "categorie": "DETECTIVE", "risques_couverts": ["SO01"]}]}
	  ],
	  "synthese": {"resume": "", "risques_majeurs": [], "recommandations": []}
	}`
	uc := newUseCases(t, repo, generation.NewMock(response))

	_, err := uc.Treatment(context.Background(), project.ID)
	gt.Error(t, err)
	gt.V(t, types.Taxonomy(err)).Equal(types.TaxonomyReferentialIntegrity)
}

func TestTreatment_AcceptsFrenchVocabulary(t *testing.T) {
	repo := memory.New()
	project := createProject(t, repo)
	seedAnalysis(t, repo, project.ID)

	// The system prompt documents the French treatment vocabulary and
	// the delai_suggere field; a generator following it to the letter
	// must be accepted as-is.
	response := `{
	  "plan_traitement": [
	    {"risque_ref": "SO01", "strategie": "TRANSFERER", "justification": "Assurance cyber", "vraisemblance_residuelle": 2,
	     "actions": [{"label": "Souscrire une assurance", "description": "Transfert du risque financier", "categorie": "PREVENTIF", "priorite": "HAUTE", "risques_couverts": ["SO01"], "responsable_suggere": "RSSI", "delai_suggere": "3 mois"}]},
	    {"risque_ref": "SO02", "strategie": "REDUIRE", "justification": "Reduction obligatoire", "vraisemblance_residuelle": 1,
	     "actions": [{"label": "Deployer un EDR", "description": "Detection precoce", "categorie": "DETECTIF", "priorite": "HAUTE", "risques_couverts": ["SO02"]}]},
	    {"risque_ref": "SO03", "strategie": "ACCEPTER", "justification": "Exposition tolerable", "vraisemblance_residuelle": 2,
	     "actions": [{"label": "Revue trimestrielle", "description": "Controle a posteriori", "categorie": "CORRECTIF", "priorite": "BASSE", "risques_couverts": ["SO03"]}]}
	  ],
	  "synthese": {"resume": "Le rancongiciel domine.", "risques_majeurs": ["SO02"], "recommandations": ["Prioriser l'EDR"]}
	}`
	uc := newUseCases(t, repo, generation.NewMock(response))

	plan, err := uc.Treatment(context.Background(), project.ID)
	gt.NoError(t, err).Required()
	gt.A(t, plan.Decisions).Length(3)

	d, ok := plan.Decision("SO01")
	gt.B(t, ok).True()
	gt.V(t, d.Strategy).Equal(types.StrategyTransfer)
	gt.V(t, d.Actions[0].Category).Equal(types.ActionPreventive)
	gt.V(t, d.Actions[0].Priority).Equal(types.PriorityHigh)
	gt.V(t, d.Actions[0].SuggestedHorizon).Equal("3 mois")

	d, ok = plan.Decision("SO03")
	gt.B(t, ok).True()
	gt.V(t, d.Strategy).Equal(types.StrategyAccept)
	gt.V(t, d.Actions[0].Category).Equal(types.ActionCorrective)
	gt.V(t, d.Actions[0].Priority).Equal(types.PriorityLow)
}

func TestTreatment_RejectsEmptyActionDescription(t *testing.T) {
	repo := memory.New()
	project := createProject(t, repo)
	seedAnalysis(t, repo, project.ID)

	response := `{
	  "plan_traitement": [
	    {"risque_ref": "SO01", "strategie": "TRANSFER", "justification": "Insurance", "vraisemblance_residuelle": 2,
	     "actions": [{"label": "Insurance", "description": "", "categorie": "PREVENTIVE", "risques_couverts": ["SO01"]}]},
	    {"risque_ref": "SO02", "strategie": "REDUCE", "justification": "Mandatory", "vraisemblance_residuelle": 1,
	     "actions": [{"label": "EDR", "description": "Early detection", "categorie": "DETECTIVE", "risques_couverts": ["SO02"]}]},
	    {"risque_ref": "SO03", "strategie": "ACCEPT", "justification": "Tolerable", "vraisemblance_residuelle": 2,
	     "actions": [{"label": "Review", "description": "Quarterly control", "categorie": "DETECTIVE", "risques_couverts": ["SO03"]}]}
	  ],
	  "synthese": {"resume": "", "risques_majeurs": [], "recommandations": []}
	}`
	uc := newUseCases(t, repo, generation.NewMock(response))

	_, err := uc.Treatment(context.Background(), project.ID)
	gt.Error(t, err)
	gt.V(t, types.Taxonomy(err)).Equal(types.TaxonomySchemaViolation)
}
