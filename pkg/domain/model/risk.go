package model

import (
	"time"

	"github.com/cybergard/ebiosgard/pkg/domain/types"
	"github.com/google/uuid"
)

// MatrixSize is the side of the square risk matrix (4x4 grid of
// gravity x likelihood).
const MatrixSize = 4

// Risk is one classified row of the risk matrix: an operational
// scenario with its derived score, band and grid position.
type Risk struct {
	OperationalScenarioCode types.RefCode
	StrategicScenarioCode   types.RefCode
	Title                   string
	Criterion               types.SecurityCriterion
	Severity                types.Gravity
	Likelihood              types.Likelihood
	Score                   types.Score
	Band                    types.RiskBand
	MatrixRow               int
	MatrixCol               int
}

// MatrixCell is one cell of the 4x4 grid
type MatrixCell struct {
	Severity   types.Gravity
	Likelihood types.Likelihood
	Score      types.Score
	Band       types.RiskBand
	Color      string
	RiskCodes  []types.RefCode
}

// MatrixStats aggregates the classified risks of one matrix
type MatrixStats struct {
	Total       int
	ByBand      map[types.RiskBand]int
	ByCriterion map[types.SecurityCriterion]int
	AvgScore    float64
	MaxScore    int
}

// RiskMatrix is the full AT5 output: the grid, the classified risks in
// matrix order and the aggregate statistics. It is a pure derivation
// of committed upstream state and can be recomputed at any time.
type RiskMatrix struct {
	ProjectID  types.ProjectID
	Cells      [MatrixSize][MatrixSize]MatrixCell
	Risks      []Risk
	Stats      MatrixStats
	ComputedAt time.Time
}

// SnapshotID is a UUID-based identifier for MatrixSnapshot
type SnapshotID string

// NewSnapshotID generates a new UUID v4 SnapshotID
func NewSnapshotID() SnapshotID {
	return SnapshotID(uuid.New().String())
}

// MatrixSnapshot is the immutable matrix state captured when a project
// is frozen.
type MatrixSnapshot struct {
	ID        SnapshotID
	ProjectID types.ProjectID
	Kind      string
	Matrix    RiskMatrix
	TakenAt   time.Time
}
