package workspacefinder

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/iwatobipen/entry-cli/internal/domain"
)

// LoadConfig loads entry-cli.yaml from the workspace root and applies defaults.
func LoadConfig(root string) (domain.Config, error) {
	cfg := domain.DefaultConfig()

	path := filepath.Join(root, "entry-cli.yaml")
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, &domain.OpError{
			Op:   "workspacefinder.loadconfig",
			Kind: domain.KindNotFound,
			Path: path,
			Err:  err,
		}
	}

	var y yamlConfig
	if err := yaml.Unmarshal(b, &y); err != nil {
		return cfg, &domain.OpError{
			Op:   "workspacefinder.loadconfig",
			Kind: domain.KindInvalidConfig,
			Path: path,
			Err:  err,
		}
	}

	// Apply parsed values on top of defaults.
	if y.EntryCLI.Defaults.Profile != "" {
		cfg.Defaults.Profile = y.EntryCLI.Defaults.Profile
	}
	if y.EntryCLI.Store.Precision != nil {
		cfg.Store.Precision = *y.EntryCLI.Store.Precision
	}
	if y.EntryCLI.Store.Index != nil {
		cfg.Store.Index = *y.EntryCLI.Store.Index
	}
	if y.EntryCLI.Paths.SetsDir != "" {
		cfg.Paths.SetsDir = y.EntryCLI.Paths.SetsDir
	}
	if y.EntryCLI.Paths.ProfilesDir != "" {
		cfg.Paths.ProfilesDir = y.EntryCLI.Paths.ProfilesDir
	}
	if y.EntryCLI.Paths.RunsDir != "" {
		cfg.Paths.RunsDir = y.EntryCLI.Paths.RunsDir
	}

	return cfg, nil
}

type yamlConfig struct {
	EntryCLI struct {
		Defaults struct {
			Profile string `yaml:"profile"`
		} `yaml:"defaults"`

		Store struct {
			Precision *int  `yaml:"precision"`
			Index     *bool `yaml:"index"`
		} `yaml:"store"`

		Paths struct {
			SetsDir     string `yaml:"sets_dir"`
			ProfilesDir string `yaml:"profiles_dir"`
			RunsDir     string `yaml:"runs_dir"`
		} `yaml:"paths"`
	} `yaml:"entry-cli"`
}
