package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/cybergard/ebiosgard/pkg/cli/config"
	"github.com/m-mizutani/gt"
)

func TestLoadProjectFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "project.toml")
	body := `
name = "Hospital information system"
description = "Regional hospital group"
sector = "healthcare"
context = "Two sites, shared EHR, 24/7 operations"
`
	gt.NoError(t, os.WriteFile(path, []byte(body), 0600)).Required()

	p, err := config.LoadProjectFile(path)
	gt.NoError(t, err).Required()
	gt.V(t, p.Name).Equal("Hospital information system")
	gt.V(t, p.Sector).Equal("healthcare")
	gt.V(t, p.Context).Equal("Two sites, shared EHR, 24/7 operations")
}

func TestLoadProjectFile_RequiresName(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "project.toml")
	gt.NoError(t, os.WriteFile(path, []byte(`sector = "finance"`), 0600)).Required()

	_, err := config.LoadProjectFile(path)
	gt.Error(t, err)
	gt.B(t, errors.Is(err, config.ErrMissingName)).True()
}

func TestLoadProjectFile_MissingFile(t *testing.T) {
	_, err := config.LoadProjectFile(filepath.Join(t.TempDir(), "nope.toml"))
	gt.Error(t, err)
	gt.B(t, errors.Is(err, config.ErrConfigNotFound)).True()
}

func TestLoadProjectFile_Malformed(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "project.toml")
	gt.NoError(t, os.WriteFile(path, []byte(`name = [broken`), 0600)).Required()

	_, err := config.LoadProjectFile(path)
	gt.Error(t, err)
	gt.B(t, errors.Is(err, config.ErrInvalidConfig)).True()
}
