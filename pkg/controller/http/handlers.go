package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/cybergard/ebiosgard/pkg/domain/types"
	"github.com/cybergard/ebiosgard/pkg/usecase"
	"github.com/cybergard/ebiosgard/pkg/utils/errutil"
	"github.com/cybergard/ebiosgard/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
)

func respondJSON(w http.ResponseWriter, r *http.Request, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logging.From(r.Context()).Error("failed to encode response", "error", err)
	}
}

func projectID(r *http.Request) (types.ProjectID, error) {
	id := types.ProjectID(chi.URLParam(r, "projectID"))
	if err := id.Validate(); err != nil {
		return "", goerr.Wrap(types.ErrNotFound, "invalid project id", goerr.V("id", string(id)))
	}
	return id, nil
}

type createProjectRequest struct {
	Name              string `json:"name"`
	Description       string `json:"description"`
	Sector            string `json:"sector"`
	AdditionalContext string `json:"additional_context"`
}

func (s *Server) createProject(w http.ResponseWriter, r *http.Request) {
	var req createProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "invalid request body"), http.StatusBadRequest)
		return
	}
	if req.Name == "" {
		errutil.HandleHTTP(r.Context(), w, goerr.New("project name is required"), http.StatusBadRequest)
		return
	}

	project, err := s.uc.CreateProject(r.Context(), usecase.CreateProjectInput{
		Name:              req.Name,
		Description:       req.Description,
		Sector:            req.Sector,
		AdditionalContext: req.AdditionalContext,
	})
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err, 0)
		return
	}
	respondJSON(w, r, http.StatusCreated, toProject(project))
}

func (s *Server) listProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := s.uc.ListProjects(r.Context())
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err, 0)
		return
	}
	out := make([]projectResponse, 0, len(projects))
	for _, p := range projects {
		out = append(out, toProject(p))
	}
	respondJSON(w, r, http.StatusOK, map[string]any{"projects": out})
}

func (s *Server) getProject(w http.ResponseWriter, r *http.Request) {
	id, err := projectID(r)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err, 0)
		return
	}
	view, err := s.uc.GetProject(r.Context(), id)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err, 0)
		return
	}
	respondJSON(w, r, http.StatusOK, toProjectDetail(view))
}

type generateRequest struct {
	Regenerate bool `json:"regenerate"`
}

// generate dispatches one workshop run. The matrix workshop has no
// generator; its endpoint is the GET matrix route.
func (s *Server) generate(w http.ResponseWriter, r *http.Request) {
	id, err := projectID(r)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err, 0)
		return
	}

	var req generateRequest
	if body, err := io.ReadAll(r.Body); err == nil && len(body) > 0 {
		if err := json.Unmarshal(body, &req); err != nil {
			errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "invalid request body"), http.StatusBadRequest)
			return
		}
	}
	uc := s.uc.Regenerate(req.Regenerate)

	ctx := r.Context()
	workshop := chi.URLParam(r, "workshop")
	switch workshop {
	case "at1":
		result, err := uc.Scoping(ctx, id)
		if err != nil {
			errutil.HandleHTTP(ctx, w, err, 0)
			return
		}
		respondJSON(w, r, http.StatusOK, toScoping(result))
	case "at2":
		sources, err := uc.RiskSources(ctx, id)
		if err != nil {
			errutil.HandleHTTP(ctx, w, err, 0)
			return
		}
		respondJSON(w, r, http.StatusOK, map[string]any{"risk_sources": toRiskSources(sources)})
	case "at3":
		scenarios, err := uc.StrategicScenarios(ctx, id)
		if err != nil {
			errutil.HandleHTTP(ctx, w, err, 0)
			return
		}
		respondJSON(w, r, http.StatusOK, map[string]any{"strategic_scenarios": toStrategicScenarios(scenarios)})
	case "at4":
		scenarios, err := uc.OperationalScenarios(ctx, id)
		if err != nil {
			errutil.HandleHTTP(ctx, w, err, 0)
			return
		}
		respondJSON(w, r, http.StatusOK, map[string]any{"operational_scenarios": toOperationalScenarios(scenarios)})
	case "at6":
		plan, err := uc.Treatment(ctx, id)
		if err != nil {
			errutil.HandleHTTP(ctx, w, err, 0)
			return
		}
		respondJSON(w, r, http.StatusOK, toTreatmentPlan(plan))
	default:
		errutil.HandleHTTP(ctx, w, goerr.New("unknown workshop", goerr.V("workshop", workshop)), http.StatusNotFound)
	}
}

func (s *Server) matrix(w http.ResponseWriter, r *http.Request) {
	id, err := projectID(r)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err, 0)
		return
	}
	matrix, err := s.uc.Matrix(r.Context(), id)
	if err != nil {
		// Matrix before AT4 is a client ordering problem, not 422
		if errors.Is(err, types.ErrStageOrder) {
			errutil.HandleHTTP(r.Context(), w, err, http.StatusConflict)
			return
		}
		errutil.HandleHTTP(r.Context(), w, err, 0)
		return
	}
	respondJSON(w, r, http.StatusOK, toMatrix(matrix))
}

func (s *Server) risks(w http.ResponseWriter, r *http.Request) {
	id, err := projectID(r)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err, 0)
		return
	}
	risks, err := s.uc.Risks(r.Context(), id)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err, 0)
		return
	}
	respondJSON(w, r, http.StatusOK, map[string]any{"risks": toRisks(risks)})
}

func (s *Server) treatment(w http.ResponseWriter, r *http.Request) {
	id, err := projectID(r)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err, 0)
		return
	}
	plan, err := s.uc.GetTreatment(r.Context(), id)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err, 0)
		return
	}
	respondJSON(w, r, http.StatusOK, toTreatmentPlan(plan))
}

func (s *Server) freeze(w http.ResponseWriter, r *http.Request) {
	id, err := projectID(r)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err, 0)
		return
	}
	snapshot, err := s.uc.Freeze(r.Context(), id)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err, 0)
		return
	}
	respondJSON(w, r, http.StatusOK, map[string]any{
		"snapshot_id": string(snapshot.ID),
		"taken_at":    snapshot.TakenAt,
		"risks":       snapshot.Matrix.Stats.Total,
	})
}
