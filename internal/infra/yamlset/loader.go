// Package yamlset loads molecule sets from YAML files.
package yamlset

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
	setsDir string
}

func NewLoader(opts ...Option) *Loader {
	l := &Loader{setsDir: "sets"}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

type Option func(*Loader)

func WithSetsDir(dir string) Option {
	return func(l *Loader) { l.setsDir = dir }
}

var _ ports.SetLoader = (*Loader)(nil)

func (l *Loader) LoadSet(path string) (domain.Set, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return domain.Set{}, &domain.OpError{
			Op:   "yamlset.load",
			Kind: domain.KindNotFound,
			Path: path,
			Err:  err,
		}
	}

	var ys yamlSet
	if err := yaml.Unmarshal(b, &ys); err != nil {
		return domain.Set{}, &domain.OpError{
			Op:   "yamlset.load",
			Kind: domain.KindInvalidConfig,
			Path: path,
			Err:  err,
		}
	}

	return mapAndValidate(path, ys)
}

func (l *Loader) ListSets(root string) ([]domain.SetRef, error) {
	dir := filepath.Join(root, l.setsDir)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, &domain.OpError{
			Op:   "yamlset.list",
			Kind: domain.KindNotFound,
			Path: dir,
			Err:  err,
		}
	}

	var refs []domain.SetRef
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !strings.HasSuffix(name, ".yaml") && !strings.HasSuffix(name, ".yml") {
			continue
		}

		p := filepath.Join(dir, name)
		n, _ := readSetName(p)
		if strings.TrimSpace(n) == "" {
			n = strings.TrimSuffix(name, filepath.Ext(name))
		}

		refs = append(refs, domain.SetRef{Name: n, Path: p})
	}

	sort.Slice(refs, func(i, j int) bool { return refs[i].Name < refs[j].Name })
	return refs, nil
}

func readSetName(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	var v struct {
		Name string `yaml:"name"`
	}
	if err := yaml.Unmarshal(b, &v); err != nil {
		return "", err
	}
	return v.Name, nil
}

type yamlSet struct {
	Name      string            `yaml:"name"`
	Vars      map[string]string `yaml:"vars"`
	Molecules []yamlMolecule    `yaml:"molecules"`
}

type yamlMolecule struct {
	Name   string   `yaml:"name"`
	SMILES string   `yaml:"smiles"`
	Tags   []string `yaml:"tags"`

	Assert yamlAssertions `yaml:"assert"`
}

type yamlAssertions struct {
	MolWeight *yamlBound `yaml:"molwt"`
	Rotors    *yamlBound `yaml:"rb"`
	Glob      *yamlBound `yaml:"glob"`
	PBF       *yamlBound `yaml:"pbf"`
}

type yamlBound struct {
	Min *float64 `yaml:"min"`
	Max *float64 `yaml:"max"`
}

func mapAndValidate(path string, ys yamlSet) (domain.Set, error) {
	if strings.TrimSpace(ys.Name) == "" {
		return domain.Set{}, invalidField(path, "name", "set name is required")
	}

	set := domain.Set{
		Name:      ys.Name,
		Vars:      domain.Vars(ys.Vars),
		Molecules: make([]domain.MoleculeSpec, 0, len(ys.Molecules)),
	}
	if set.Vars == nil {
		set.Vars = domain.Vars{}
	}

	seen := make(map[string]bool, len(ys.Molecules))
	for i, m := range ys.Molecules {
		fieldPrefix := fmt.Sprintf("molecules[%d]", i)

		if strings.TrimSpace(m.Name) == "" {
			return domain.Set{}, invalidField(path, fieldPrefix+".name", "molecule name is required")
		}
		if seen[m.Name] {
			return domain.Set{}, invalidField(path, fieldPrefix+".name", fmt.Sprintf("duplicate molecule name %q", m.Name))
		}
		seen[m.Name] = true

		if strings.TrimSpace(m.SMILES) == "" {
			return domain.Set{}, invalidField(path, fieldPrefix+".smiles", "molecule smiles is required")
		}

		assert, err := mapAssertions(path, fieldPrefix, m.Assert)
		if err != nil {
			return domain.Set{}, err
		}

		set.Molecules = append(set.Molecules, domain.MoleculeSpec{
			Name:   m.Name,
			SMILES: m.SMILES,
			Tags:   m.Tags,
			Assert: assert,
		})
	}

	return set, nil
}

func mapAssertions(path, prefix string, ya yamlAssertions) (domain.PropertyAssertionsSpec, error) {
	var spec domain.PropertyAssertionsSpec
	for _, e := range []struct {
		field string
		in    *yamlBound
		out   **domain.Bound
	}{
		{"molwt", ya.MolWeight, &spec.MolWeight},
		{"rb", ya.Rotors, &spec.RotatableBonds},
		{"glob", ya.Glob, &spec.Glob},
		{"pbf", ya.PBF, &spec.PBF},
	} {
		if e.in == nil {
			continue
		}
		if e.in.Min == nil && e.in.Max == nil {
			return spec, invalidField(path, prefix+".assert."+e.field, "bound needs min and/or max")
		}
		if e.in.Min != nil && e.in.Max != nil && *e.in.Min > *e.in.Max {
			return spec, invalidField(path, prefix+".assert."+e.field, "min exceeds max")
		}
		*e.out = &domain.Bound{Min: e.in.Min, Max: e.in.Max}
	}
	return spec, nil
}

func invalidField(path, field, msg string) error {
	return &domain.OpError{
		Op:   "yamlset.validate",
		Kind: domain.KindInvalidConfig,
		Path: path,
		Err:  fmt.Errorf("field %s: %s", field, msg),
	}
}
