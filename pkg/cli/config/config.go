package config

import (
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
)

// ProjectFile is the TOML description of an analysis target, fed to the
// analyze and validate commands.
type ProjectFile struct {
	Name        string `toml:"name"`
	Description string `toml:"description"`
	Sector      string `toml:"sector"`
	Context     string `toml:"context"`
}

// Validate checks the project file fields
func (p *ProjectFile) Validate() error {
	if p.Name == "" {
		return goerr.Wrap(ErrMissingName, "project file must set a name")
	}
	return nil
}

// LoadProjectFile reads and validates a project description file
func LoadProjectFile(path string) (*ProjectFile, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from the operator's CLI flag
	if err != nil {
		if os.IsNotExist(err) {
			return nil, goerr.Wrap(ErrConfigNotFound, "project file does not exist", goerr.V(ConfigPathKey, path))
		}
		return nil, goerr.Wrap(err, "failed to read project file", goerr.V(ConfigPathKey, path))
	}

	var p ProjectFile
	if err := toml.Unmarshal(data, &p); err != nil {
		return nil, goerr.Wrap(ErrInvalidConfig, "failed to parse project file",
			goerr.V(ConfigPathKey, path), goerr.V("cause", err.Error()))
	}
	if err := p.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid project file", goerr.V(ConfigPathKey, path))
	}
	return &p, nil
}
