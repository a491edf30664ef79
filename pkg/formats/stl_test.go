package formats

import (
	"bytes"
	"encoding/binary"
	"errors"
	gomath "math"
	"os"
	"path/filepath"
	"testing"

	"github.com/hschendel/stl"
)

// makeSTL builds a binary STL from a triangle soup of nine floats per triangle.
func makeSTL(header string, tris [][9]float32) []byte {
	buf := new(bytes.Buffer)

	h := make([]byte, stlHeaderSize)
	copy(h, header)
	buf.Write(h)

	binary.Write(buf, binary.LittleEndian, uint32(len(tris)))
	for _, tri := range tris {
		// Normal (ignored by the reader)
		binary.Write(buf, binary.LittleEndian, [3]float32{0, 0, 0})
		binary.Write(buf, binary.LittleEndian, tri)
		binary.Write(buf, binary.LittleEndian, uint16(0))
	}
	return buf.Bytes()
}

// cubeTriangles returns the 12 outward-wound triangles of an axis-aligned cube.
func cubeTriangles(size float32) [][9]float32 {
	s := size
	c := [8][3]float32{
		{0, 0, 0}, {s, 0, 0}, {s, s, 0}, {0, s, 0},
		{0, 0, s}, {s, 0, s}, {s, s, s}, {0, s, s},
	}
	faces := [12][3]int{
		{0, 2, 1}, {0, 3, 2}, // -Z
		{4, 5, 6}, {4, 6, 7}, // +Z
		{0, 1, 5}, {0, 5, 4}, // -Y
		{3, 7, 6}, {3, 6, 2}, // +Y
		{0, 4, 7}, {0, 7, 3}, // -X
		{1, 2, 6}, {1, 6, 5}, // +X
	}
	out := make([][9]float32, 0, len(faces))
	for _, f := range faces {
		var tri [9]float32
		for v := 0; v < 3; v++ {
			copy(tri[v*3:], c[f[v]][:])
		}
		out = append(out, tri)
	}
	return out
}

func TestParseSTL_BinaryCubeIsWelded(t *testing.T) {
	data := makeSTL("test cube", cubeTriangles(10))

	s, err := ParseSTL(data)
	if err != nil {
		t.Fatalf("ParseSTL failed: %v", err)
	}
	if s.ASCII {
		t.Error("expected binary STL")
	}
	if s.Header != "test cube" {
		t.Errorf("expected header 'test cube', got %q", s.Header)
	}
	if s.TriangleCount() != 12 {
		t.Errorf("expected 12 triangles, got %d", s.TriangleCount())
	}
	if len(s.Positions) != 8 {
		t.Errorf("expected 8 welded positions, got %d", len(s.Positions))
	}
	for i, idx := range s.Indices {
		if int(idx) >= len(s.Positions) {
			t.Fatalf("index %d out of range: %d", i, idx)
		}
	}
}

func TestParseSTL_Errors(t *testing.T) {
	valid := makeSTL("", cubeTriangles(1))

	nan := makeSTL("", [][9]float32{{0, 0, 0, 1, 0, 0, float32(gomath.NaN()), 1, 0}})

	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"empty", nil, ErrTruncatedSTL},
		{"short header", make([]byte, 40), ErrTruncatedSTL},
		{"missing bytes", valid[:len(valid)-1], ErrSTLSizeMismatch},
		{"trailing bytes", append(append([]byte{}, valid...), 0), ErrSTLSizeMismatch},
		{"zero triangles", makeSTL("", nil), ErrEmptySTL},
		{"nan vertex", nan, ErrInvalidSTLVertex},
		{"broken ascii", []byte("solid broken\nfacet normal 0 0 1\n outer loop\n vertex 0 0\n"), ErrMalformedSTL},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseSTL(tt.data)
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestParseSTL_HugeTriangleCount(t *testing.T) {
	data := makeSTL("", nil)
	binary.LittleEndian.PutUint32(data[stlHeaderSize:], 0xFFFFFFFF)

	_, err := ParseSTL(data)
	if !errors.Is(err, ErrSTLSizeMismatch) {
		t.Errorf("expected ErrSTLSizeMismatch, got %v", err)
	}
}

func toSolid(name string, ascii bool, tris [][9]float32) *stl.Solid {
	solid := &stl.Solid{Name: name, IsAscii: ascii}
	for _, tri := range tris {
		var st stl.Triangle
		for v := 0; v < 3; v++ {
			st.Vertices[v] = stl.Vec3{tri[v*3], tri[v*3+1], tri[v*3+2]}
		}
		solid.Triangles = append(solid.Triangles, st)
	}
	return solid
}

func TestParseSTL_ASCII(t *testing.T) {
	var buf bytes.Buffer
	if err := toSolid("knob", true, cubeTriangles(2)).WriteAll(&buf); err != nil {
		t.Fatalf("writing ASCII fixture: %v", err)
	}

	s, err := ParseSTL(buf.Bytes())
	if err != nil {
		t.Fatalf("ParseSTL failed: %v", err)
	}
	if !s.ASCII {
		t.Error("expected ASCII STL")
	}
	if s.Header != "knob" {
		t.Errorf("expected solid name 'knob', got %q", s.Header)
	}
	if s.TriangleCount() != 12 || len(s.Positions) != 8 {
		t.Errorf("expected 12 triangles over 8 positions, got %d over %d", s.TriangleCount(), len(s.Positions))
	}
}

func TestParseSTLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cube.stl")
	if err := toSolid("cube", false, cubeTriangles(5)).WriteFile(path); err != nil {
		t.Fatalf("writing binary fixture: %v", err)
	}

	s, err := ParseSTLFile(path)
	if err != nil {
		t.Fatalf("ParseSTLFile failed: %v", err)
	}
	if s.TriangleCount() != 12 {
		t.Errorf("expected 12 triangles, got %d", s.TriangleCount())
	}

	if _, err := ParseSTLFile(filepath.Join(t.TempDir(), "missing.stl")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected not-exist error, got %v", err)
	}
}
