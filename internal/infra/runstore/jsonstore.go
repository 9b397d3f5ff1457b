// Package runstore persists run artifacts as JSON files under the runs
// directory, one file per run, with an optional JSONL index for listing.
package runstore

import (
	"bufio"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/iwatobipen/entry-cli/internal/domain"
	"github.com/iwatobipen/entry-cli/internal/ports"
)

const defaultRunsDir = "runs"

type JSONStore struct {
	rootDir     string
	runsDirName string
	precision   int
	writeIndex  bool
	now         func() time.Time
}

type Option func(*JSONStore)

// WithIndex enables a simple JSONL index: runs/index.jsonl
func WithIndex(enabled bool) Option {
	return func(s *JSONStore) { s.writeIndex = enabled }
}

// WithNow is useful for tests.
func WithNow(now func() time.Time) Option {
	return func(s *JSONStore) { s.now = now }
}

func NewJSONStore(root string, cfg domain.Config, opts ...Option) *JSONStore {
	runsDir := cfg.Paths.RunsDir
	if strings.TrimSpace(runsDir) == "" {
		runsDir = defaultRunsDir
	}

	s := &JSONStore{
		rootDir:     root,
		runsDirName: runsDir,
		precision:   cfg.Store.Precision,
		writeIndex:  cfg.Store.Index,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ ports.ArtifactStore = (*JSONStore)(nil)

func (s *JSONStore) SaveRun(run domain.RunResult) (string, error) {
	dir := filepath.Join(s.rootDir, s.runsDirName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", &domain.OpError{
			Op:   "runstore.mkdir",
			Kind: domain.KindExecution,
			Path: dir,
			Err:  err,
		}
	}

	ts := run.StartedAt
	if ts.IsZero() {
		ts = s.now()
	}
	ts = ts.UTC()

	toSave := run
	if toSave.StartedAt.IsZero() {
		toSave.StartedAt = ts
	}
	setPart := run.SetName
	if strings.TrimSpace(setPart) == "" {
		setPart = strings.TrimSuffix(filepath.Base(run.SetPath), filepath.Ext(run.SetPath))
	}
	slug := slugify(setPart)
	if slug == "" {
		slug = "run"
	}

	filename := fmt.Sprintf("%s_%s.json", ts.Format("20060102T150405Z"), slug)
	id := strings.TrimSuffix(filename, ".json")
	path := filepath.Join(dir, filename)

	if s.precision >= 0 {
		toSave = roundArtifact(toSave, s.precision)
	}

	b, err := json.MarshalIndent(toSave, "", "  ")
	if err != nil {
		return "", &domain.OpError{
			Op:   "runstore.marshal",
			Kind: domain.KindExecution,
			Path: path,
			Err:  err,
		}
	}

	// Atomic-ish write: tmp then rename.
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o600); err != nil {
		return "", &domain.OpError{
			Op:   "runstore.write",
			Kind: domain.KindExecution,
			Path: tmp,
			Err:  err,
		}
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return "", &domain.OpError{
			Op:   "runstore.rename",
			Kind: domain.KindExecution,
			Path: path,
			Err:  err,
		}
	}

	if s.writeIndex {
		_ = s.appendIndex(dir, id, filename, toSave)
	}

	return id, nil
}

// LoadRun reads a stored artifact back by its id.
func (s *JSONStore) LoadRun(id string) (domain.RunResult, error) {
	path := filepath.Join(s.rootDir, s.runsDirName, id+".json")
	b, err := os.ReadFile(path)
	if err != nil {
		return domain.RunResult{}, &domain.OpError{
			Op:   "runstore.load",
			Kind: domain.KindNotFound,
			Path: path,
			Err:  err,
		}
	}

	var run domain.RunResult
	if err := json.Unmarshal(b, &run); err != nil {
		return domain.RunResult{}, &domain.OpError{
			Op:   "runstore.load",
			Kind: domain.KindExecution,
			Path: path,
			Err:  err,
		}
	}
	return run, nil
}

// ListRuns lists stored runs, newest first. It prefers the JSONL index and
// falls back to scanning the runs directory when no index exists.
func (s *JSONStore) ListRuns() ([]domain.RunRef, error) {
	dir := filepath.Join(s.rootDir, s.runsDirName)

	refs, err := s.listFromIndex(dir)
	if err == nil && len(refs) > 0 {
		sortRefs(refs)
		return refs, nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, &domain.OpError{
			Op:   "runstore.list",
			Kind: domain.KindExecution,
			Path: dir,
			Err:  err,
		}
	}

	refs = refs[:0]
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}

		id := strings.TrimSuffix(name, ".json")
		ref := domain.RunRef{
			ID:   id,
			Path: filepath.Join(dir, name),
		}
		// Best effort: pull metadata out of the artifact itself.
		if run, loadErr := s.LoadRun(id); loadErr == nil {
			ref.SetName = run.SetName
			ref.ProfileName = run.ProfileName
			ref.StartedAt = run.StartedAt
		}
		refs = append(refs, ref)
	}

	sortRefs(refs)
	return refs, nil
}

func (s *JSONStore) listFromIndex(dir string) ([]domain.RunRef, error) {
	f, err := os.Open(filepath.Join(dir, "index.jsonl"))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var refs []domain.RunRef
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		var e indexEntry
		if err := json.Unmarshal([]byte(line), &e); err != nil {
			// Skip corrupt lines; the artifacts themselves are intact.
			continue
		}
		refs = append(refs, domain.RunRef{
			ID:          e.ID,
			Path:        filepath.Join(dir, e.File),
			SetName:     e.Set,
			ProfileName: e.Profile,
			StartedAt:   e.StartedAt,
		})
	}
	return refs, sc.Err()
}

type indexEntry struct {
	ID        string    `json:"id"`
	File      string    `json:"file"`
	Set       string    `json:"set"`
	Profile   string    `json:"profile"`
	StartedAt time.Time `json:"started_at"`
}

func (s *JSONStore) appendIndex(dir, id, filename string, run domain.RunResult) error {
	line, err := json.Marshal(indexEntry{
		ID:        id,
		File:      filename,
		Set:       run.SetName,
		Profile:   run.ProfileName,
		StartedAt: run.StartedAt,
	})
	if err != nil {
		return err
	}

	indexPath := filepath.Join(dir, "index.jsonl")
	f, err := os.OpenFile(indexPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return err
	}
	defer f.Close()

	_, _ = f.Write(append(line, '\n'))
	return nil
}

func sortRefs(refs []domain.RunRef) {
	sort.Slice(refs, func(i, j int) bool {
		if !refs[i].StartedAt.Equal(refs[j].StartedAt) {
			return refs[i].StartedAt.After(refs[j].StartedAt)
		}
		return refs[i].ID > refs[j].ID
	})
}

// roundArtifact returns a copy with floats rounded to the configured number
// of decimals (does NOT mutate the input). Shaved digits keep diffs between
// committed artifacts readable.
func roundArtifact(run domain.RunResult, precision int) domain.RunResult {
	out := run
	out.Results = make([]domain.MoleculeResult, 0, len(run.Results))

	for _, mr := range run.Results {
		c := mr

		if mr.Properties != nil {
			p := *mr.Properties
			p.MolWeight = roundTo(p.MolWeight, precision)
			p.Glob = roundTo(p.Glob, precision)
			p.PBF = roundTo(p.PBF, precision)
			c.Properties = &p
		}

		if mr.Energies != nil {
			c.Energies = make([]float64, len(mr.Energies))
			for i, e := range mr.Energies {
				c.Energies[i] = roundTo(e, precision)
			}
		}

		out.Results = append(out.Results, c)
	}

	return out
}

func roundTo(v float64, precision int) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	scale := math.Pow(10, float64(precision))
	return math.Round(v*scale) / scale
}

// slugify produces a safe filename component.
func slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return ""
	}

	var b strings.Builder
	b.Grow(len(s))

	lastDash := false
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z':
			b.WriteRune(r)
			lastDash = false
		case r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}

	return strings.Trim(b.String(), "-")
}
