package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	httpctrl "github.com/cybergard/ebiosgard/pkg/controller/http"
	"github.com/cybergard/ebiosgard/pkg/domain/interfaces"
	"github.com/cybergard/ebiosgard/pkg/domain/model"
	"github.com/cybergard/ebiosgard/pkg/domain/types"
	"github.com/cybergard/ebiosgard/pkg/repository/memory"
	"github.com/cybergard/ebiosgard/pkg/service/catalog"
	"github.com/cybergard/ebiosgard/pkg/service/generation"
	"github.com/cybergard/ebiosgard/pkg/usecase"
	"github.com/m-mizutani/gt"
)

func newServer(t *testing.T, repo interfaces.Repository, gen generation.Service) *httpctrl.Server {
	t.Helper()
	cat, err := catalog.New()
	gt.NoError(t, err).Required()
	return httpctrl.New(usecase.New(repo, gen, cat))
}

func TestCreateAndGetProject(t *testing.T) {
	repo := memory.New()
	srv := newServer(t, repo, nil)

	body := bytes.NewBufferString(`{"name": "Hospital information system", "sector": "healthcare"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/projects", body)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	gt.V(t, rec.Code).Equal(http.StatusCreated)
	var created struct {
		ID     string `json:"id"`
		Name   string `json:"name"`
		Status string `json:"status"`
	}
	gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created)).Required()
	gt.V(t, created.Name).Equal("Hospital information system")
	gt.V(t, created.Status).Equal("DRAFT")

	req = httptest.NewRequest(http.MethodGet, "/api/projects/"+created.ID, nil)
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	gt.V(t, rec.Code).Equal(http.StatusOK)

	req = httptest.NewRequest(http.MethodGet, "/api/projects", nil)
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	gt.V(t, rec.Code).Equal(http.StatusOK)
	var listed struct {
		Projects []json.RawMessage `json:"projects"`
	}
	gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listed)).Required()
	gt.A(t, listed.Projects).Length(1)
}

func TestCreateProject_RequiresName(t *testing.T) {
	srv := newServer(t, memory.New(), nil)

	req := httptest.NewRequest(http.MethodPost, "/api/projects", bytes.NewBufferString(`{}`))
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	gt.V(t, rec.Code).Equal(http.StatusBadRequest)
}

func TestGetProject_NotFound(t *testing.T) {
	srv := newServer(t, memory.New(), nil)

	req := httptest.NewRequest(http.MethodGet, "/api/projects/"+string(types.NewProjectID()), nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	gt.V(t, rec.Code).Equal(http.StatusNotFound)

	var body struct {
		Error string `json:"error"`
	}
	gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body)).Required()
	gt.B(t, body.Error != "").True()
}

func TestGenerate_RejectionIs422(t *testing.T) {
	repo := memory.New()
	project := model.NewProject("Payment platform", "", "finance")
	gt.NoError(t, repo.Project().Create(context.Background(), project)).Required()

	// Two business values break the 3..7 cardinality
	tooFew := `{"valeurs_metier": [{"label": "A", "description": "", "criticite": 1}], "biens_supports": [], "evenements_redoutes": []}`
	srv := newServer(t, repo, generation.NewMock(tooFew))

	req := httptest.NewRequest(http.MethodPost,
		"/api/projects/"+string(project.ID)+"/workshops/at1/generate", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	gt.V(t, rec.Code).Equal(http.StatusUnprocessableEntity)
	var body struct {
		Taxonomy string `json:"taxonomy"`
	}
	gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body)).Required()
	gt.V(t, body.Taxonomy).Equal(types.TaxonomySchemaViolation)
}

func TestGenerate_StageOrderIs422(t *testing.T) {
	repo := memory.New()
	project := model.NewProject("Payment platform", "", "finance")
	gt.NoError(t, repo.Project().Create(context.Background(), project)).Required()

	srv := newServer(t, repo, generation.NewMock())
	req := httptest.NewRequest(http.MethodPost,
		"/api/projects/"+string(project.ID)+"/workshops/at3/generate", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	gt.V(t, rec.Code).Equal(http.StatusUnprocessableEntity)
}

func TestGenerate_UnknownWorkshop(t *testing.T) {
	repo := memory.New()
	project := model.NewProject("Payment platform", "", "finance")
	gt.NoError(t, repo.Project().Create(context.Background(), project)).Required()

	srv := newServer(t, repo, generation.NewMock())
	req := httptest.NewRequest(http.MethodPost,
		"/api/projects/"+string(project.ID)+"/workshops/at9/generate", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	gt.V(t, rec.Code).Equal(http.StatusNotFound)
}

func TestFrozenProjectIs409(t *testing.T) {
	repo := memory.New()
	project := model.NewProject("Payment platform", "", "finance")
	ctx := context.Background()
	gt.NoError(t, repo.Project().Create(ctx, project)).Required()
	gt.NoError(t, repo.Project().UpdateStatus(ctx, project.ID, types.ProjectFrozen)).Required()

	srv := newServer(t, repo, generation.NewMock())
	req := httptest.NewRequest(http.MethodPost,
		"/api/projects/"+string(project.ID)+"/workshops/at1/generate", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	gt.V(t, rec.Code).Equal(http.StatusConflict)
}

func TestMatrixAndRisksEndpoints(t *testing.T) {
	repo := memory.New()
	project := model.NewProject("Hospital information system", "", "healthcare")
	ctx := context.Background()
	gt.NoError(t, repo.Project().Create(ctx, project)).Required()
	seedHTTPAnalysis(t, repo, project.ID)

	srv := newServer(t, repo, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/projects/"+string(project.ID)+"/matrix", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	gt.V(t, rec.Code).Equal(http.StatusOK)

	var matrix struct {
		Stats struct {
			Total    int `json:"total"`
			MaxScore int `json:"max_score"`
		} `json:"stats"`
		Cells [][]struct {
			Band string `json:"band"`
		} `json:"cells"`
	}
	gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &matrix)).Required()
	gt.V(t, matrix.Stats.Total).Equal(1)
	gt.V(t, matrix.Stats.MaxScore).Equal(12)
	gt.A(t, matrix.Cells).Length(4)
	gt.V(t, matrix.Cells[0][3].Band).Equal("CRITICAL")

	req = httptest.NewRequest(http.MethodGet, "/api/projects/"+string(project.ID)+"/risks", nil)
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	gt.V(t, rec.Code).Equal(http.StatusOK)

	var risks struct {
		Risks []struct {
			Code string `json:"code"`
			Band string `json:"band"`
		} `json:"risks"`
	}
	gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &risks)).Required()
	gt.A(t, risks.Risks).Length(1)
	gt.V(t, risks.Risks[0].Band).Equal("CRITICAL")
}

func TestMatrixWithoutScenariosIs409(t *testing.T) {
	repo := memory.New()
	project := model.NewProject("Hospital information system", "", "healthcare")
	gt.NoError(t, repo.Project().Create(context.Background(), project)).Required()

	srv := newServer(t, repo, nil)
	req := httptest.NewRequest(http.MethodGet, "/api/projects/"+string(project.ID)+"/matrix", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	gt.V(t, rec.Code).Equal(http.StatusConflict)
}

// seedHTTPAnalysis commits the minimum referential for the matrix
// endpoints: one strategic scenario and one operational scenario with a
// critical score.
func seedHTTPAnalysis(t *testing.T, repo interfaces.Repository, projectID types.ProjectID) {
	t.Helper()
	ctx := context.Background()
	now := time.Now().UTC()

	gt.NoError(t, repo.FearedEvent().PutBatch(ctx, projectID, []*model.FearedEvent{{
		ID: "e1", Code: "ER01", ProjectID: projectID, Label: "Care units paralyzed",
		Criterion: types.CriterionAvailability, Severity: 3,
		BusinessValueCode: "VM01", AssetCodes: []types.RefCode{"BS01"},
		Source: types.SourceManual, CreatedAt: now,
	}})).Required()

	gt.NoError(t, repo.StrategicScenario().PutBatch(ctx, projectID, []*model.StrategicScenario{{
		ID: "ss1", Code: "SS01", ProjectID: projectID, Title: "Ransomware on the EHR",
		RiskSourceCode: "SR01", FearedEventCode: "ER01",
		Vulnerability: model.StrategicVulnerability{Code: "V1", Label: "Exposed remote access"},
		AssetCodes:    []types.RefCode{"BS01"},
		Severity:      3, Likelihood: 4, Score: 12,
		Source: types.SourceManual, CreatedAt: now,
	}})).Required()

	gt.NoError(t, repo.OperationalScenario().PutBatch(ctx, projectID, []*model.OperationalScenario{{
		ID: "so1", Code: "SO01", ProjectID: projectID, Title: "Ransomware deployment",
		StrategicScenarioCode: "SS01", Severity: 3, Likelihood: 4, Score: 12,
		Steps: []model.AttackStep{
			{Order: 1, Summary: "Initial access", Kind: types.StepInitialAccess},
			{Order: 2, Summary: "Lateral movement", Kind: types.StepMovement},
			{Order: 3, Summary: "Encryption", Kind: types.StepImpact},
		},
		Source: types.SourceManual, CreatedAt: now,
	}})).Required()
}
