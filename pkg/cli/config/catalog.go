package config

import (
	"github.com/cybergard/ebiosgard/pkg/service/catalog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

// Catalog holds CLI flags for the knowledge base used to ground prompts
type Catalog struct {
	path string
}

// Flags returns CLI flags for catalog configuration
func (c *Catalog) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "catalog",
			Usage:       "Path to a knowledge base TOML file (embedded catalog when omitted)",
			Sources:     cli.EnvVars("EBIOSGARD_CATALOG"),
			Destination: &c.path,
		},
	}
}

// Configure loads the catalog from the configured path, falling back to
// the embedded one.
func (c *Catalog) Configure() (catalog.Service, error) {
	if c.path == "" {
		svc, err := catalog.New()
		if err != nil {
			return nil, goerr.Wrap(err, "failed to load embedded catalog")
		}
		return svc, nil
	}
	svc, err := catalog.NewFromFile(c.path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load catalog file", goerr.V(ConfigPathKey, c.path))
	}
	return svc, nil
}
