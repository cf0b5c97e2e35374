package cli

import (
	"context"
	"encoding/json"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/cybergard/ebiosgard/pkg/cli/config"
	"github.com/cybergard/ebiosgard/pkg/service/generation"
	"github.com/cybergard/ebiosgard/pkg/usecase"
	"github.com/cybergard/ebiosgard/pkg/utils/logging"
	"github.com/cybergard/ebiosgard/pkg/utils/safe"
)

func cmdAnalyze() *cli.Command {
	var projectFile string
	var output string
	var regenerate bool
	var repoCfg config.Repository
	var geminiCfg config.Gemini
	var catalogCfg config.Catalog

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "project-file",
			Aliases:     []string{"f"},
			Usage:       "Path to the project description TOML file",
			Required:    true,
			Sources:     cli.EnvVars("EBIOSGARD_PROJECT_FILE"),
			Destination: &projectFile,
		},
		&cli.StringFlag{
			Name:        "output",
			Aliases:     []string{"o"},
			Usage:       "Write the full analysis report as JSON (- for stdout)",
			Sources:     cli.EnvVars("EBIOSGARD_OUTPUT"),
			Destination: &output,
		},
		&cli.BoolFlag{
			Name:        "regenerate-on-rejection",
			Usage:       "Allow one extra generation pass when a well-formed batch is rejected",
			Sources:     cli.EnvVars("EBIOSGARD_REGENERATE_ON_REJECTION"),
			Destination: &regenerate,
		},
	}
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, geminiCfg.Flags()...)
	flags = append(flags, catalogCfg.Flags()...)

	return &cli.Command{
		Name:    "analyze",
		Aliases: []string{"a"},
		Usage:   "Run the full six-workshop analysis for one project",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			project, err := config.LoadProjectFile(projectFile)
			if err != nil {
				return err
			}

			repo, closeRepo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer closeRepo()

			cat, err := catalogCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to load catalog")
			}

			llm, err := geminiCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to configure Gemini client")
			}
			if llm == nil {
				return goerr.New("gemini-project is required: the analysis pipeline is generative")
			}
			gen, err := generation.New(llm, geminiCfg.Model())
			if err != nil {
				return goerr.Wrap(err, "failed to create generation service")
			}

			uc := usecase.New(repo, gen, cat,
				usecase.WithRegenerateOnRejection(regenerate),
			)

			created, err := uc.CreateProject(ctx, usecase.CreateProjectInput{
				Name:              project.Name,
				Description:       project.Description,
				Sector:            project.Sector,
				AdditionalContext: project.Context,
			})
			if err != nil {
				return goerr.Wrap(err, "failed to create project")
			}

			result, err := uc.Pipeline(ctx, created.ID)
			if err != nil {
				return goerr.Wrap(err, "analysis pipeline failed", goerr.V("project_id", created.ID))
			}

			logging.Default().Info("Analysis completed",
				"project_id", created.ID,
				"risks", result.Matrix.Stats.Total,
				"max_score", result.Matrix.Stats.MaxScore,
				"decisions", len(result.Plan.Decisions),
			)

			renderMatrix(os.Stdout, result.Matrix)

			if output != "" {
				data, err := json.MarshalIndent(result, "", "  ")
				if err != nil {
					return goerr.Wrap(err, "failed to encode report")
				}
				data = append(data, '\n')

				if output == "-" {
					safe.Write(ctx, os.Stdout, data)
					return nil
				}
				f, err := os.Create(output) //nolint:gosec // path comes from the operator's CLI flag
				if err != nil {
					return goerr.Wrap(err, "failed to create report file", goerr.V("path", output))
				}
				defer safe.Close(ctx, f)
				safe.Write(ctx, f, data)
				logging.Default().Info("Report written", "path", output)
			}

			return nil
		},
	}
}
