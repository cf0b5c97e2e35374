package cli

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/cybergard/ebiosgard/pkg/cli/config"
	"github.com/cybergard/ebiosgard/pkg/utils/logging"
)

func cmdValidate() *cli.Command {
	var projectFile string
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
	}
	flags = append(flags, catalogCfg.Flags()...)

	return &cli.Command{
		Name:  "validate",
		Usage: "Validate a project description file and the catalog without calling any model",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			project, err := config.LoadProjectFile(projectFile)
			if err != nil {
				return err
			}

			cat, err := catalogCfg.Configure()
			if err != nil {
				return err
			}

			logging.Default().Info("Validation passed",
				"project", project.Name,
				"sector", project.Sector,
				"catalog_categories", len(cat.Categories()),
			)
			return nil
		},
	}
}
