// Package yamlprofile loads run profiles from YAML files. A profile carries
// conformer search parameters and fragment variables; an optional local.yaml
// next to the profile overrides both for machine-specific tweaks.
package yamlprofile

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/iwatobipen/entry-cli/internal/domain"
	"github.com/iwatobipen/entry-cli/internal/ports"
)

type Loader struct {
	rootDir     string
	profilesDir string
	localFile   string
}

type Option func(*Loader)

func WithProfilesDir(dir string) Option {
	return func(l *Loader) { l.profilesDir = dir }
}

func WithLocalFile(name string) Option {
	return func(l *Loader) { l.localFile = name }
}

func NewLoader(root string, opts ...Option) *Loader {
	l := &Loader{
		rootDir:     root,
		profilesDir: "profiles",
		localFile:   "local.yaml",
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

var (
	_ ports.ProfileLoader  = (*Loader)(nil)
	_ ports.ProfileCatalog = (*Loader)(nil)
)

// LoadProfile accepts either a profile name (e.g., "fast") or a full path to
// a YAML file. Parameters start from the built-in defaults, the profile file
// overrides those, and the local overlay overrides the profile.
func (l *Loader) LoadProfile(nameOrPath string) (domain.Profile, error) {
	var path, name string
	if strings.HasSuffix(nameOrPath, ".yaml") || strings.HasSuffix(nameOrPath, ".yml") || strings.Contains(nameOrPath, string(filepath.Separator)) {
		path = filepath.Clean(nameOrPath)
		name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	} else {
		name = nameOrPath
		path = filepath.Join(l.rootDir, l.profilesDir, name+".yaml")
	}

	yp, err := readProfile(path, false)
	if err != nil {
		return domain.Profile{}, err
	}

	localPath := filepath.Join(filepath.Dir(path), l.localFile)
	local, err := readProfile(localPath, true)
	if err != nil {
		return domain.Profile{}, err
	}

	params := domain.DefaultConformerParams()
	if err := applyParams(&params, path, yp.Conformers); err != nil {
		return domain.Profile{}, err
	}
	if err := applyParams(&params, localPath, local.Conformers); err != nil {
		return domain.Profile{}, err
	}

	if strings.TrimSpace(yp.Name) != "" {
		name = yp.Name
	}

	return domain.Profile{
		Name:       name,
		Vars:       domain.Merge(domain.Vars(yp.Vars), domain.Vars(local.Vars)),
		Conformers: params,
	}, nil
}

func (l *Loader) ListProfiles(root string) ([]domain.ProfileRef, error) {
	dir := filepath.Join(root, l.profilesDir)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, &domain.OpError{
			Op:   "yamlprofile.list",
			Kind: domain.KindNotFound,
			Path: dir,
			Err:  err,
		}
	}

	var refs []domain.ProfileRef
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !strings.HasSuffix(name, ".yaml") && !strings.HasSuffix(name, ".yml") {
			continue
		}
		// The overlay is not a profile of its own.
		if name == l.localFile {
			continue
		}

		refs = append(refs, domain.ProfileRef{
			Name: strings.TrimSuffix(name, filepath.Ext(name)),
			Path: filepath.Join(dir, name),
		})
	}

	sort.Slice(refs, func(i, j int) bool { return refs[i].Name < refs[j].Name })
	return refs, nil
}

type yamlProfile struct {
	Name       string            `yaml:"name"`
	Vars       map[string]string `yaml:"vars"`
	Conformers yamlConformers    `yaml:"conformers"`
}

type yamlConformers struct {
	RMSDCutoff    *float64 `yaml:"rmsd_cutoff"`
	EnergyWindow  *float64 `yaml:"energy_window"`
	MaxConformers *int     `yaml:"max_conformers"`
	OptSteps      *int     `yaml:"opt_steps"`
	Seed          *int64   `yaml:"seed"`
}

func readProfile(path string, optional bool) (yamlProfile, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if optional && os.IsNotExist(err) {
			return yamlProfile{}, nil
		}
		return yamlProfile{}, &domain.OpError{
			Op:   "yamlprofile.load",
			Kind: domain.KindNotFound,
			Path: path,
			Err:  err,
		}
	}

	var yp yamlProfile
	if err := yaml.Unmarshal(b, &yp); err != nil {
		return yamlProfile{}, &domain.OpError{
			Op:   "yamlprofile.load",
			Kind: domain.KindInvalidConfig,
			Path: path,
			Err:  err,
		}
	}
	return yp, nil
}

func applyParams(params *domain.ConformerParams, path string, yc yamlConformers) error {
	if yc.RMSDCutoff != nil {
		if *yc.RMSDCutoff < 0 {
			return invalidField(path, "conformers.rmsd_cutoff", "must be >= 0")
		}
		params.RMSDCutoff = *yc.RMSDCutoff
	}
	if yc.EnergyWindow != nil {
		if *yc.EnergyWindow <= 0 {
			return invalidField(path, "conformers.energy_window", "must be > 0")
		}
		params.EnergyWindow = *yc.EnergyWindow
	}
	if yc.MaxConformers != nil {
		if *yc.MaxConformers < 1 {
			return invalidField(path, "conformers.max_conformers", "must be >= 1")
		}
		params.MaxConformers = *yc.MaxConformers
	}
	if yc.OptSteps != nil {
		if *yc.OptSteps < 0 {
			return invalidField(path, "conformers.opt_steps", "must be >= 0")
		}
		params.OptSteps = *yc.OptSteps
	}
	if yc.Seed != nil {
		params.Seed = *yc.Seed
	}
	return nil
}

func invalidField(path, field, msg string) error {
	return &domain.OpError{
		Op:   "yamlprofile.validate",
		Kind: domain.KindInvalidConfig,
		Path: path,
		Err:  fmt.Errorf("field %s: %s", field, msg),
	}
}
