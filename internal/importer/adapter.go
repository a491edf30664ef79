// Package importer turns a foreign static mesh (binary or ASCII STL, GLB) into
// a collar ring mesh: it repairs winding, picks the ring-like component,
// orients it flat and reshapes it to the procedural collar conventions.
package importer

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/Faultbox/knobsmith/internal/logger"
	"github.com/Faultbox/knobsmith/internal/params"
	"github.com/Faultbox/knobsmith/pkg/formats"
	"github.com/Faultbox/knobsmith/pkg/math"
	"github.com/Faultbox/knobsmith/pkg/mesh"
)

// Import errors.
var (
	ErrEmptyPath         = errors.New("no mesh path")
	ErrUnsupportedFormat = errors.New("unsupported mesh format")
	ErrNoTriangles       = errors.New("mesh has no usable triangles")
)

// glbWeldRelative welds GLB vertices split by per-vertex attributes so that
// shared edges become topological.
const glbWeldRelative = 1e-6

// Stats counts cache activity of an adapter.
type Stats struct {
	Hits   uint64
	Misses uint64
	Parses uint64
}

// Option configures an Adapter.
type Option func(*Adapter)

// WithFS replaces the host filesystem.
func WithFS(fsys FileSystem) Option {
	return func(a *Adapter) { a.fs = fsys }
}

// WithCache shares a cache between adapters.
func WithCache(c *Cache) Option {
	return func(a *Adapter) { a.cache = c }
}

// WithLogger sets the adapter's logger.
func WithLogger(l *zap.Logger) Option {
	return func(a *Adapter) { a.log = l }
}

// Adapter loads imported collar meshes. It is safe for concurrent use.
type Adapter struct {
	fs    FileSystem
	cache *Cache
	log   *zap.Logger

	hits   atomic.Uint64
	misses atomic.Uint64
	parses atomic.Uint64
}

// New creates an adapter reading the host filesystem with a private cache.
func New(opts ...Option) *Adapter {
	a := &Adapter{
		fs:    OS(),
		cache: NewCache(),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.log == nil {
		a.log = logger.Named("importer")
	}
	return a
}

// Stats returns a snapshot of the cache counters.
func (a *Adapter) Stats() Stats {
	return Stats{
		Hits:   a.hits.Load(),
		Misses: a.misses.Load(),
		Parses: a.parses.Load(),
	}
}

// Build loads the mesh named by c.Import.MeshPath.
func (a *Adapter) Build(k params.Knob, c params.Collar) *mesh.Mesh {
	return a.Load(c.Import.MeshPath, k, c)
}

// Load imports path and places it around a knob. Any failure is logged and
// reported as a nil mesh.
func (a *Adapter) Load(path string, k params.Knob, c params.Collar) (m *mesh.Mesh) {
	defer func() {
		if r := recover(); r != nil {
			a.log.Warn("import failed", zap.String("path", path), zap.Any("panic", r))
			m = nil
		}
	}()

	prep, err := a.Prepare(path)
	if err != nil {
		a.log.Warn("import failed", zap.String("path", path), zap.Error(err))
		return nil
	}
	return Place(prep, k, c)
}

// Prepare reads, repairs, extracts and orients path, going through the cache.
// The result is owned by the caller.
func (a *Adapter) Prepare(path string) (*Prepared, error) {
	if path == "" {
		return nil, ErrEmptyPath
	}
	key, err := a.fs.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", path, err)
	}
	info, err := a.fs.Stat(key)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", key, err)
	}
	modTime := info.ModTime().UnixNano()

	if prep, ok := a.cache.get(key, modTime); ok {
		a.hits.Add(1)
		a.log.Debug("cache hit", zap.String("path", key))
		return prep, nil
	}
	a.misses.Add(1)
	a.log.Debug("cache miss", zap.String("path", key), zap.Time("mod_time", info.ModTime()))

	// No lock is held while reading and decoding.
	data, err := a.fs.ReadFile(key)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	positions, indices, err := decode(key, data)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", key, err)
	}
	a.parses.Add(1)

	prep, err := prepare(positions, indices)
	if err != nil {
		return nil, fmt.Errorf("prepare %s: %w", key, err)
	}
	a.log.Debug("mesh prepared",
		zap.String("path", key),
		zap.Int("triangles", prep.TriangleCount()),
		zap.Int("components", prep.Extraction.Components),
		zap.Bool("extracted", !prep.Extraction.KeptWhole),
		zap.Int("flipped", prep.Winding.Flipped),
		zap.Ints("permutation", prep.Orientation.Permutation[:]),
		zap.Bool("orient_flipped", prep.Orientation.Flipped),
	)

	a.cache.put(key, modTime, prep)
	return prep, nil
}

// decode dispatches on the file extension.
func decode(name string, data []byte) ([]math.Vec3, []uint32, error) {
	switch ext := strings.ToLower(filepath.Ext(name)); ext {
	case ".stl":
		s, err := formats.ParseSTL(data)
		if err != nil {
			return nil, nil, err
		}
		return s.Positions, s.Indices, nil
	case ".glb":
		g, err := formats.ParseGLB(data)
		if err != nil {
			return nil, nil, err
		}
		positions, indices := mesh.Weld(g.Positions, g.Indices, mesh.WeldCell(g.Positions, glbWeldRelative))
		return positions, indices, nil
	default:
		return nil, nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

// prepare runs the parameter-independent stages in place on its inputs.
func prepare(positions []math.Vec3, indices []uint32) (*Prepared, error) {
	if usableTriangles(positions, indices) == 0 {
		return nil, ErrNoTriangles
	}
	winding := RepairWinding(positions, indices)
	positions, indices, extraction := ExtractComponent(positions, indices)
	positions, orientation := AutoOrient(positions)
	return &Prepared{
		Positions:   positions,
		Indices:     indices,
		Winding:     winding,
		Extraction:  extraction,
		Orientation: orientation,
	}, nil
}

func usableTriangles(positions []math.Vec3, indices []uint32) int {
	n := uint32(len(positions))
	count := 0
	for t := 0; t+2 < len(indices); t += 3 {
		a, b, c := indices[t], indices[t+1], indices[t+2]
		if a >= n || b >= n || c >= n || mesh.IsDegenerate(a, b, c) {
			continue
		}
		count++
	}
	return count
}
