// STL (stereolithography) triangle mesh reader.
package formats

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	gomath "math"
	"os"
	"strings"

	"github.com/hschendel/stl"

	"github.com/Faultbox/knobsmith/pkg/math"
	"github.com/Faultbox/knobsmith/pkg/mesh"
)

// STL format errors.
var (
	ErrTruncatedSTL     = errors.New("truncated STL data")
	ErrSTLSizeMismatch  = errors.New("STL size does not match triangle count")
	ErrEmptySTL         = errors.New("STL contains no triangles")
	ErrInvalidSTLVertex = errors.New("non-finite STL vertex")
	ErrMalformedSTL     = errors.New("malformed ASCII STL")
)

const (
	stlHeaderSize   = 80
	stlPreambleSize = stlHeaderSize + 4
	stlTriangleSize = 50

	// stlWeldRelative is the vertex welding quantum relative to the largest
	// bounding box extent.
	stlWeldRelative = 1e-6
)

// STL is a parsed STL file with shared (welded) vertices.
type STL struct {
	Header    string      // Header text (binary) or solid name (ASCII)
	ASCII     bool        // Parsed from the ASCII variant
	Positions []math.Vec3 // Unique vertex positions
	Indices   []uint32    // Triangle list into Positions
}

// TriangleCount returns the number of triangles.
func (s *STL) TriangleCount() int {
	return len(s.Indices) / 3
}

// ParseSTL parses binary STL data. Data that fails the binary size check but
// begins with "solid" is read as ASCII STL.
func ParseSTL(data []byte) (*STL, error) {
	if len(data) < stlPreambleSize {
		if looksLikeASCIISTL(data) {
			return parseASCIISTL(data)
		}
		return nil, ErrTruncatedSTL
	}

	count := binary.LittleEndian.Uint32(data[stlHeaderSize:stlPreambleSize])
	expected := uint64(stlPreambleSize) + uint64(count)*stlTriangleSize
	if uint64(len(data)) != expected {
		if looksLikeASCIISTL(data) {
			return parseASCIISTL(data)
		}
		return nil, fmt.Errorf("%w: %d triangles need %d bytes, have %d",
			ErrSTLSizeMismatch, count, expected, len(data))
	}
	if count == 0 {
		return nil, ErrEmptySTL
	}

	raw := make([]math.Vec3, 0, int(count)*3)
	off := stlPreambleSize
	for i := 0; i < int(count); i++ {
		rec := data[off : off+stlTriangleSize]
		// Skip the stored normal (12 bytes); the attribute word is ignored.
		for v := 0; v < 3; v++ {
			p := get3F32(rec[12+12*v:])
			if !p.IsFinite() {
				return nil, fmt.Errorf("%w: triangle %d", ErrInvalidSTLVertex, i)
			}
			raw = append(raw, p)
		}
		off += stlTriangleSize
	}

	positions, indices := weldTriangles(raw)
	return &STL{
		Header:    strings.TrimRight(string(bytes.TrimRight(data[:stlHeaderSize], "\x00")), " "),
		Positions: positions,
		Indices:   indices,
	}, nil
}

// ParseSTLFile parses an STL file from disk.
func ParseSTLFile(path string) (*STL, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading STL file: %w", err)
	}
	return ParseSTL(data)
}

func looksLikeASCIISTL(data []byte) bool {
	head := data
	if len(head) > 512 {
		head = head[:512]
	}
	return bytes.HasPrefix(bytes.TrimLeft(head, " \t\r\n"), []byte("solid"))
}

func parseASCIISTL(data []byte) (*STL, error) {
	solid, err := stl.ReadAll(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedSTL, err)
	}
	if len(solid.Triangles) == 0 {
		return nil, ErrEmptySTL
	}

	raw := make([]math.Vec3, 0, len(solid.Triangles)*3)
	for i, tri := range solid.Triangles {
		for _, v := range tri.Vertices {
			p := math.Vec3{X: v[0], Y: v[1], Z: v[2]}
			if !p.IsFinite() {
				return nil, fmt.Errorf("%w: triangle %d", ErrInvalidSTLVertex, i)
			}
			raw = append(raw, p)
		}
	}

	positions, indices := weldTriangles(raw)
	return &STL{
		Header:    solid.Name,
		ASCII:     true,
		Positions: positions,
		Indices:   indices,
	}, nil
}

// weldTriangles deduplicates a triangle soup (three points per triangle)
// through a quantized-coordinate key.
func weldTriangles(raw []math.Vec3) ([]math.Vec3, []uint32) {
	seq := make([]uint32, len(raw))
	for i := range seq {
		seq[i] = uint32(i)
	}
	return mesh.Weld(raw, seq, mesh.WeldCell(raw, stlWeldRelative))
}

func get3F32(b []byte) math.Vec3 {
	_ = b[11] // early bounds check
	return math.Vec3{
		X: gomath.Float32frombits(binary.LittleEndian.Uint32(b)),
		Y: gomath.Float32frombits(binary.LittleEndian.Uint32(b[4:])),
		Z: gomath.Float32frombits(binary.LittleEndian.Uint32(b[8:])),
	}
}
