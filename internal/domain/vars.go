package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Vars is a key/value store used for {{placeholder}} expansion in molecule
// entries (typically reusable SMILES fragments).
type Vars map[string]string

// Merge merges base and override vars (override wins) and returns a new map.
func Merge(base Vars, override Vars) Vars {
	out := Vars{}
	for k, v := range base {
		out[k] = v
	}
	for k, v := range override {
		out[k] = v
	}
	return out
}

// ExpandString replaces {{name}} placeholders with values from vars.
func ExpandString(vars Vars, s string) (string, error) {
	// Fast path: no token start.
	if !strings.Contains(s, "{{") {
		return s, nil
	}

	var b strings.Builder
	b.Grow(len(s) + 16)

	for i := 0; i < len(s); {
		if i+1 < len(s) && s[i] == '{' && s[i+1] == '{' {
			start := i + 2

			end := strings.Index(s[start:], "}}")
			if end < 0 {
				return "", &OpError{
					Op:   "vars.expand",
					Kind: KindInvalidConfig,
					Err:  errors.New("unclosed placeholder"),
				}
			}
			end = start + end

			name := strings.TrimSpace(s[start:end])
			if name == "" {
				return "", &OpError{
					Op:   "vars.expand",
					Kind: KindInvalidConfig,
					Err:  errors.New("empty placeholder"),
				}
			}

			val, ok := vars[name]
			if !ok {
				return "", &OpError{
					Op:   "vars.expand",
					Kind: KindMissingVar,
					Err:  fmt.Errorf("missing variable: %s", name),
				}
			}

			b.WriteString(val)
			i = end + 2
			continue
		}

		b.WriteByte(s[i])
		i++
	}

	return b.String(), nil
}

// ResolveMolecule expands placeholders in the SMILES and tags of a molecule
// spec. It returns a copy (does not mutate the input).
func ResolveMolecule(spec MoleculeSpec, vars Vars) (MoleculeSpec, error) {
	out := spec

	smi, err := ExpandString(vars, spec.SMILES)
	if err != nil {
		return MoleculeSpec{}, wrapField(err, "molecule.smiles")
	}
	out.SMILES = smi

	if len(spec.Tags) > 0 {
		tags := make([]string, 0, len(spec.Tags))
		for _, t := range spec.Tags {
			rt, err := ExpandString(vars, t)
			if err != nil {
				return MoleculeSpec{}, wrapField(err, "molecule.tags")
			}
			tags = append(tags, rt)
		}
		out.Tags = tags
	}

	return out, nil
}

func wrapField(err error, field string) error {
	// Keep Kind information, but add context about which field was expanded.
	return &OpError{
		Op:   "vars.expand",
		Kind: kindFrom(err),
		Err:  fmt.Errorf("%s: %w", field, err),
	}
}

func kindFrom(err error) ErrorKind {
	var oe *OpError
	if errors.As(err, &oe) {
		return oe.Kind
	}
	return KindExecution
}
