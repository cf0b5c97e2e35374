package usecase

import (
	"context"
	"sort"
	"time"

	"github.com/cybergard/ebiosgard/pkg/domain/model"
	"github.com/cybergard/ebiosgard/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

// Matrix runs workshop 5: it classifies every committed operational
// scenario into the 4x4 gravity x likelihood grid. The workshop is a
// pure derivation; no generator is involved and it can be recomputed
// whenever its inputs exist. Recomputing over unchanged inputs yields
// an identical matrix apart from the timestamp.
func (uc *UseCases) Matrix(ctx context.Context, projectID types.ProjectID) (*model.RiskMatrix, error) {
	project, err := uc.repo.Project().Get(ctx, projectID)
	if err != nil {
		return nil, err
	}
	rc, err := uc.buildContext(ctx, projectID)
	if err != nil {
		return nil, err
	}
	scenarios := rc.OperationalScenarios()
	if len(scenarios) == 0 {
		return nil, goerr.Wrap(types.ErrStageOrder, "no operational scenario to classify",
			goerr.V("project_id", projectID))
	}

	matrix, err := buildRiskMatrix(projectID, rc, scenarios)
	if err != nil {
		return nil, err
	}

	// A mutable project records the derivation as a completed
	// workshop; a frozen one only reads.
	if project.Status.Mutable() {
		if err := uc.markWorkshopDone(ctx, project, types.WorkshopMatrix); err != nil {
			return nil, err
		}
	}
	return matrix, nil
}

// buildRiskMatrix classifies the scenarios and fills the grid. Every
// stored score is re-checked against its factors; a mismatch means the
// stored state is corrupt and the derivation refuses to proceed.
func buildRiskMatrix(projectID types.ProjectID, rc *model.ReferentialContext, scenarios []*model.OperationalScenario) (*model.RiskMatrix, error) {
	matrix := &model.RiskMatrix{
		ProjectID:  projectID,
		ComputedAt: time.Now().UTC(),
	}
	matrix.Stats.ByBand = make(map[types.RiskBand]int, model.MatrixSize)
	matrix.Stats.ByCriterion = make(map[types.SecurityCriterion]int)

	for row := 0; row < model.MatrixSize; row++ {
		for col := 0; col < model.MatrixSize; col++ {
			g := types.Gravity(model.MatrixSize - row)
			l := types.Likelihood(col + 1)
			score, err := types.NewScore(g, l)
			if err != nil {
				return nil, err
			}
			band, err := types.BandOf(score)
			if err != nil {
				return nil, err
			}
			matrix.Cells[row][col] = model.MatrixCell{
				Severity:   g,
				Likelihood: l,
				Score:      score,
				Band:       band,
				Color:      band.Color(),
			}
		}
	}

	sum := 0
	for _, o := range scenarios {
		want, err := types.NewScore(o.Severity, o.Likelihood)
		if err != nil {
			return nil, err
		}
		if o.Score != want {
			return nil, goerr.Wrap(types.ErrInvariantBreach, "stored score does not match its factors",
				goerr.V("scenario", o.Code), goerr.V("score", int(o.Score)), goerr.V("want", int(want)))
		}
		band, err := types.BandOf(o.Score)
		if err != nil {
			return nil, goerr.Wrap(err, "risk classification", goerr.V("scenario", o.Code))
		}

		criterion, err := riskCriterion(rc, o)
		if err != nil {
			return nil, err
		}

		// Highest gravity sits on the top row, likelihood grows to
		// the right.
		row := model.MatrixSize - int(o.Severity)
		col := int(o.Likelihood) - 1

		risk := model.Risk{
			OperationalScenarioCode: o.Code,
			StrategicScenarioCode:   o.StrategicScenarioCode,
			Title:                   o.Title,
			Criterion:               criterion,
			Severity:                o.Severity,
			Likelihood:              o.Likelihood,
			Score:                   o.Score,
			Band:                    band,
			MatrixRow:               row,
			MatrixCol:               col,
		}
		matrix.Risks = append(matrix.Risks, risk)
		matrix.Cells[row][col].RiskCodes = append(matrix.Cells[row][col].RiskCodes, o.Code)

		matrix.Stats.ByBand[band]++
		matrix.Stats.ByCriterion[criterion]++
		sum += int(o.Score)
		if int(o.Score) > matrix.Stats.MaxScore {
			matrix.Stats.MaxScore = int(o.Score)
		}
	}

	// Highest scores first; ties keep the stable code order.
	sort.SliceStable(matrix.Risks, func(i, j int) bool {
		if matrix.Risks[i].Score != matrix.Risks[j].Score {
			return matrix.Risks[i].Score > matrix.Risks[j].Score
		}
		return matrix.Risks[i].OperationalScenarioCode < matrix.Risks[j].OperationalScenarioCode
	})

	matrix.Stats.Total = len(matrix.Risks)
	matrix.Stats.AvgScore = float64(sum) / float64(len(matrix.Risks))
	return matrix, nil
}

// riskCriterion walks an operational scenario back to the security
// criterion of the feared event behind its strategic scenario.
func riskCriterion(rc *model.ReferentialContext, o *model.OperationalScenario) (types.SecurityCriterion, error) {
	parent, ok := rc.StrategicScenario(o.StrategicScenarioCode)
	if !ok {
		return "", goerr.Wrap(types.ErrReferentialIntegrity, "operational scenario has no strategic parent",
			goerr.V("scenario", o.Code), goerr.V("parent", o.StrategicScenarioCode))
	}
	event, ok := rc.FearedEvent(parent.FearedEventCode)
	if !ok {
		return "", goerr.Wrap(types.ErrReferentialIntegrity, "strategic scenario has no feared event",
			goerr.V("scenario", parent.Code), goerr.V("event", parent.FearedEventCode))
	}
	return event.Criterion, nil
}
