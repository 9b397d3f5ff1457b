package domain

// Config represents the minimal entry-cli configuration loaded from
// entry-cli.yaml.
type Config struct {
	Defaults DefaultsConfig
	Store    StoreConfig
	Paths    PathsConfig
}

type DefaultsConfig struct {
	Profile string
}

type StoreConfig struct {
	// Precision is the number of decimal places kept for floats in stored
	// artifacts. Negative disables rounding.
	Precision int

	// Index appends a line per run to runs/index.jsonl.
	Index bool
}

type PathsConfig struct {
	SetsDir     string
	ProfilesDir string
	RunsDir     string
}

// DefaultConfig provides sane defaults if entry-cli.yaml is partially missing.
func DefaultConfig() Config {
	return Config{
		Defaults: DefaultsConfig{
			Profile: "default",
		},
		Store: StoreConfig{
			Precision: 4,
			Index:     true,
		},
		Paths: PathsConfig{
			SetsDir:     "sets",
			ProfilesDir: "profiles",
			RunsDir:     "runs",
		},
	}
}

// WorkspaceSpec names the root a workspace should be initialized at.
type WorkspaceSpec struct {
	Root string
}
