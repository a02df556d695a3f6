package variant

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/yourusername/tablabaki/pkg/engine"
)

//go:embed data/*.json
var builtinFS embed.FS

// Store is a catalog of variant definitions read from a directory of
// <name>.json files. Definitions are loaded once on first use.
type Store struct {
	fsys fs.FS
	dir  string

	once sync.Once
	defs map[string]*Definition
	raw  map[string][]byte
	err  error
}

// NewEmbeddedStore returns the catalog of variants compiled into the binary.
func NewEmbeddedStore() *Store {
	return &Store{fsys: builtinFS, dir: "data"}
}

// NewDirStore returns a catalog backed by the JSON files in dir.
func NewDirStore(dir string) *Store {
	return &Store{fsys: os.DirFS(dir), dir: "."}
}

func (s *Store) init() {
	files, err := fs.Glob(s.fsys, path.Join(s.dir, "*.json"))
	if err != nil {
		s.err = fmt.Errorf("list variants: %w", err)
		return
	}
	s.defs = make(map[string]*Definition, len(files))
	s.raw = make(map[string][]byte, len(files))
	for _, file := range files {
		name := strings.TrimSuffix(path.Base(file), ".json")
		data, err := fs.ReadFile(s.fsys, file)
		if err != nil {
			s.err = fmt.Errorf("read variant %s: %w", name, err)
			return
		}
		def, err := Parse(data, name)
		if err != nil {
			s.err = fmt.Errorf("parse variant %s: %w", name, err)
			return
		}
		// The file name is the catalog key.
		def.Name = name
		s.defs[name] = def
		s.raw[name] = data
	}
}

func (s *Store) load() error {
	s.once.Do(s.init)
	return s.err
}

// List returns the sorted variant names.
func (s *Store) List(_ context.Context) ([]string, error) {
	if err := s.load(); err != nil {
		return nil, err
	}
	names := make([]string, 0, len(s.defs))
	for name := range s.defs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Get returns the parsed definition of a variant.
func (s *Store) Get(_ context.Context, name string) (*Definition, error) {
	if err := s.load(); err != nil {
		return nil, err
	}
	def, ok := s.defs[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrVariantNotFound, name)
	}
	return def, nil
}

// Raw returns the variant's JSON document as stored.
func (s *Store) Raw(_ context.Context, name string) ([]byte, error) {
	if err := s.load(); err != nil {
		return nil, err
	}
	data, ok := s.raw[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrVariantNotFound, name)
	}
	return data, nil
}

// Load resolves a variant into its rule set and initial layout.
func (s *Store) Load(ctx context.Context, name string) (*engine.RuleSet, engine.Layout, error) {
	def, err := s.Get(ctx, name)
	if err != nil {
		return nil, nil, err
	}
	rs, err := def.RuleSet()
	if err != nil {
		return nil, nil, err
	}
	layout, err := def.Layout()
	if err != nil {
		return nil, nil, err
	}
	return rs, layout, nil
}
