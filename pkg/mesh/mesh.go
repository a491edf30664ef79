package mesh

import (
	"errors"
	"fmt"

	"github.com/chewxy/math32"

	"github.com/Faultbox/knobsmith/pkg/math"
)

// Mesh validation errors.
var (
	ErrIndexCount    = errors.New("index count is not a multiple of 3")
	ErrIndexRange    = errors.New("index out of range")
	ErrNonFinite     = errors.New("non-finite vertex attribute")
	ErrNormalLength  = errors.New("normal is not unit length")
	ErrTangentLength = errors.New("tangent is not unit length")
	ErrTangentSign   = errors.New("tangent handedness is not +-1")
)

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// Clone returns a deep copy.
func (m *Mesh) Clone() *Mesh {
	out := &Mesh{
		Vertices:        make([]Vertex, len(m.Vertices)),
		Indices:         make([]uint32, len(m.Indices)),
		ReferenceRadius: m.ReferenceRadius,
	}
	copy(out.Vertices, m.Vertices)
	copy(out.Indices, m.Indices)
	return out
}

// Bounds returns the bounding box of all vertex positions.
func (m *Mesh) Bounds() Bounds {
	b := EmptyBounds()
	for i := range m.Vertices {
		b.Extend(m.Vertices[i].Position)
	}
	return b
}

// Positions returns a copy of the vertex positions.
func (m *Mesh) Positions() []math.Vec3 {
	out := make([]math.Vec3, len(m.Vertices))
	for i := range m.Vertices {
		out[i] = m.Vertices[i].Position
	}
	return out
}

// Validate checks index ranges and the shading basis of every vertex.
func (m *Mesh) Validate() error {
	if len(m.Indices)%3 != 0 {
		return ErrIndexCount
	}
	n := uint32(len(m.Vertices))
	for i, idx := range m.Indices {
		if idx >= n {
			return fmt.Errorf("%w: indices[%d]=%d, %d vertices", ErrIndexRange, i, idx, n)
		}
	}
	const tol = 1e-3
	for i := range m.Vertices {
		v := &m.Vertices[i]
		t := v.Tangent.XYZ()
		if !v.Position.IsFinite() || !v.Normal.IsFinite() || !t.IsFinite() {
			return fmt.Errorf("%w: vertex %d", ErrNonFinite, i)
		}
		if math32.Abs(v.Normal.Length()-1) > tol {
			return fmt.Errorf("%w: vertex %d |n|=%v", ErrNormalLength, i, v.Normal.Length())
		}
		if math32.Abs(t.Length()-1) > tol {
			return fmt.Errorf("%w: vertex %d |t|=%v", ErrTangentLength, i, t.Length())
		}
		if v.Tangent.W != 1 && v.Tangent.W != -1 {
			return fmt.Errorf("%w: vertex %d w=%v", ErrTangentSign, i, v.Tangent.W)
		}
	}
	return nil
}
