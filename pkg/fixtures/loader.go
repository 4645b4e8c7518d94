package fixtures

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/getmockd/mockrest/pkg/logging"
	"github.com/getmockd/mockrest/pkg/resources"
	"github.com/getmockd/mockrest/pkg/stateful"
)

// Sentinel errors returned (wrapped) by the loader.
var (
	ErrDirNotFound    = errors.New("fixtures directory not found")
	ErrInvalidFixture = errors.New("invalid fixture")
)

// Set maps a resource name to its seed records.
type Set map[string][]stateful.Record

// Count returns the number of records across all resources.
func (s Set) Count() int {
	n := 0
	for _, recs := range s {
		n += len(recs)
	}
	return n
}

// Loader reads fixtures from the embedded set and an optional override dir.
type Loader struct {
	dir      string
	embedded fs.FS
	logger   *slog.Logger

	// sources records where each resource's data came from.
	sources map[string]string
}

// NewLoader creates a loader. dir may be empty to use only embedded data.
func NewLoader(dir string) *Loader {
	return &Loader{
		dir:      dir,
		embedded: resources.Fixtures,
		logger:   logging.Nop(),
		sources:  make(map[string]string),
	}
}

// SetLogger sets the operational logger.
func (l *Loader) SetLogger(logger *slog.Logger) {
	if logger != nil {
		l.logger = logger
	} else {
		l.logger = logging.Nop()
	}
}

// Source reports where a resource's fixture came from: "embedded", a file
// path, or "" when the resource has no fixture.
func (l *Loader) Source(resource string) string {
	return l.sources[resource]
}

// Load reads and checks fixtures for every definition.
func (l *Loader) Load(defs []*stateful.ResourceConfig) (Set, error) {
	known := make(map[string]*stateful.ResourceConfig, len(defs))
	set := make(Set, len(defs))

	for _, def := range defs {
		known[def.Name] = def
		data, err := fs.ReadFile(l.embedded, path.Join(resources.FixtureDir, def.Name+".json"))
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				set[def.Name] = nil
				continue
			}
			return nil, fmt.Errorf("reading embedded %s fixture: %w", def.Name, err)
		}
		recs, err := decodeRecords(def.Name, data)
		if err != nil {
			return nil, err
		}
		set[def.Name] = recs
		l.sources[def.Name] = "embedded"
	}

	if l.dir != "" {
		if err := l.loadOverrides(known, set); err != nil {
			return nil, err
		}
	}

	for _, def := range defs {
		if err := checkRecords(def, set[def.Name]); err != nil {
			return nil, err
		}
	}
	return set, nil
}

func (l *Loader) loadOverrides(known map[string]*stateful.ResourceConfig, set Set) error {
	info, err := os.Stat(l.dir)
	if err != nil || !info.IsDir() {
		return fmt.Errorf("%w: %s", ErrDirNotFound, l.dir)
	}

	matches, err := doublestar.FilepathGlob(filepath.Join(l.dir, "**", "*.json"))
	if err != nil {
		return fmt.Errorf("expanding fixture glob: %w", err)
	}
	sort.Strings(matches)

	seen := make(map[string]string)
	for _, match := range matches {
		name := strings.TrimSuffix(filepath.Base(match), ".json")
		if _, ok := known[name]; !ok {
			l.logger.Warn("ignoring fixture for unknown resource", "file", match, "resource", name)
			continue
		}
		if prev, dup := seen[name]; dup {
			return fmt.Errorf("%w: %s defined in both %s and %s", ErrInvalidFixture, name, prev, match)
		}
		seen[name] = match

		data, err := os.ReadFile(match)
		if err != nil {
			return fmt.Errorf("reading %s: %w", match, err)
		}
		recs, err := decodeRecords(name, data)
		if err != nil {
			return fmt.Errorf("loading %s: %w", match, err)
		}
		set[name] = recs
		l.sources[name] = match
		l.logger.Debug("fixture override loaded", "resource", name, "file", match, "records", len(recs))
	}
	return nil
}

func decodeRecords(name string, data []byte) ([]stateful.Record, error) {
	var raw []map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidFixture, name, err)
	}
	recs := make([]stateful.Record, len(raw))
	for i, m := range raw {
		if m == nil {
			return nil, fmt.Errorf("%w: %s[%d] is null", ErrInvalidFixture, name, i)
		}
		recs[i] = stateful.Record(m)
	}
	return recs, nil
}

// checkRecords validates every record against the resource schema (with a
// required positive integer id) and rejects duplicate ids.
func checkRecords(def *stateful.ResourceConfig, recs []stateful.Record) error {
	if def.Schema == nil || len(recs) == 0 {
		return nil
	}
	compiled, err := def.Schema.Compile(def.Name, true)
	if err != nil {
		return fmt.Errorf("compiling %s schema: %w", def.Name, err)
	}

	ids := make(map[int64]bool, len(recs))
	for i, rec := range recs {
		result := compiled.Validate(map[string]any(rec))
		if result.HasErrors() {
			return fmt.Errorf("%w: %s[%d]: %s", ErrInvalidFixture, def.Name, i, strings.Join(result.Messages(), "; "))
		}
		recordID := rec.ID()
		if ids[recordID] {
			return fmt.Errorf("%w: %s[%d]: duplicate id %d", ErrInvalidFixture, def.Name, i, recordID)
		}
		ids[recordID] = true
	}
	return nil
}

// Apply copies the set into the definitions' SeedData.
func (s Set) Apply(defs []*stateful.ResourceConfig) {
	for _, def := range defs {
		def.SeedData = s[def.Name]
	}
}

// NewStore registers every definition, seeded from set, in a fresh store.
func NewStore(defs []*stateful.ResourceConfig, set Set) (*stateful.StateStore, error) {
	set.Apply(defs)
	store := stateful.NewStateStore()
	for _, def := range defs {
		if err := store.Register(def); err != nil {
			return nil, fmt.Errorf("registering %s: %w", def.Name, err)
		}
	}
	return store, nil
}

// Build loads fixtures for the standard resource definitions and returns a
// populated store.
func Build(dir string, logger *slog.Logger) (*stateful.StateStore, *Loader, error) {
	loader := NewLoader(dir)
	loader.SetLogger(logger)
	defs := resources.Definitions()
	set, err := loader.Load(defs)
	if err != nil {
		return nil, nil, err
	}
	store, err := NewStore(defs, set)
	if err != nil {
		return nil, nil, err
	}
	return store, loader, nil
}
