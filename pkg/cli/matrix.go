package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/cybergard/ebiosgard/pkg/cli/config"
	"github.com/cybergard/ebiosgard/pkg/domain/model"
	"github.com/cybergard/ebiosgard/pkg/domain/types"
	"github.com/cybergard/ebiosgard/pkg/usecase"
)

func cmdMatrix() *cli.Command {
	var projectID string
	var repoCfg config.Repository
	var catalogCfg config.Catalog

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "project-id",
			Usage:       "Project to render the matrix for",
			Required:    true,
			Sources:     cli.EnvVars("EBIOSGARD_PROJECT_ID"),
			Destination: &projectID,
		},
	}
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, catalogCfg.Flags()...)

	return &cli.Command{
		Name:  "matrix",
		Usage: "Render the risk matrix of a project",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			repo, closeRepo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer closeRepo()

			cat, err := catalogCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to load catalog")
			}

			// The matrix is a pure derivation; no generation service needed.
			uc := usecase.New(repo, nil, cat)
			matrix, err := uc.Matrix(ctx, types.ProjectID(projectID))
			if err != nil {
				return err
			}

			renderMatrix(os.Stdout, matrix)
			return nil
		},
	}
}

func bandColor(band types.RiskBand) *color.Color {
	switch band {
	case types.BandLow:
		return color.New(color.FgGreen)
	case types.BandModerate:
		return color.New(color.FgYellow)
	case types.BandSignificant:
		return color.New(color.FgMagenta)
	case types.BandCritical:
		return color.New(color.FgRed, color.Bold)
	default:
		return color.New(color.FgWhite)
	}
}

// renderMatrix prints the 4x4 grid with severity descending top to
// bottom and likelihood ascending left to right, then the classified
// risks in matrix order.
func renderMatrix(w io.Writer, matrix *model.RiskMatrix) {
	fmt.Fprintf(w, "\nRisk matrix (%d risks)\n\n", matrix.Stats.Total)
	fmt.Fprintf(w, "%10s", "")
	for l := 1; l <= model.MatrixSize; l++ {
		fmt.Fprintf(w, "  %8s", fmt.Sprintf("V%d", l))
	}
	fmt.Fprintln(w)

	for row := 0; row < model.MatrixSize; row++ {
		fmt.Fprintf(w, "%10s", fmt.Sprintf("G%d", model.MatrixSize-row))
		for col := 0; col < model.MatrixSize; col++ {
			cell := matrix.Cells[row][col]
			label := fmt.Sprintf("%2d", int(cell.Score))
			if n := len(cell.RiskCodes); n > 0 {
				label = fmt.Sprintf("%2d (%d)", int(cell.Score), n)
			}
			fmt.Fprintf(w, "  %s", bandColor(cell.Band).Sprintf("%8s", label))
		}
		fmt.Fprintln(w)
	}

	if len(matrix.Risks) == 0 {
		return
	}

	fmt.Fprintln(w)
	for _, risk := range matrix.Risks {
		fmt.Fprintf(w, "  %s  %s  score=%d  %s\n",
			risk.OperationalScenarioCode,
			bandColor(risk.Band).Sprint(risk.Band.String()),
			int(risk.Score),
			risk.Title,
		)
	}
}
