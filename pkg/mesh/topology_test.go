package mesh

import (
	"testing"

	"github.com/Faultbox/knobsmith/pkg/math"
)

func TestEdgeKeyUndirected(t *testing.T) {
	if EdgeKey(3, 9) != EdgeKey(9, 3) {
		t.Error("EdgeKey should ignore direction")
	}
	a, b := EdgeVertices(EdgeKey(9, 3))
	if a != 3 || b != 9 {
		t.Errorf("EdgeVertices = (%d, %d), want (3, 9)", a, b)
	}
}

func TestUnionFind(t *testing.T) {
	uf := NewUnionFind(6)
	if !uf.Union(0, 1) {
		t.Error("first union should merge")
	}
	uf.Union(1, 2)
	uf.Union(4, 5)
	if uf.Union(0, 2) {
		t.Error("union inside one set should report false")
	}

	tests := []struct {
		a, b int
		same bool
	}{
		{0, 2, true},
		{4, 5, true},
		{2, 3, false},
		{0, 5, false},
	}
	for _, tt := range tests {
		if got := uf.Find(tt.a) == uf.Find(tt.b); got != tt.same {
			t.Errorf("same(%d, %d) = %v, want %v", tt.a, tt.b, got, tt.same)
		}
	}
	if uf.Len() != 6 {
		t.Errorf("Len() = %d, want 6", uf.Len())
	}
}

func TestWeldedEdgeCountsClosedBox(t *testing.T) {
	// Two triangles per face, each face with its own vertices (hard edges).
	faces := [6][4]math.Vec3{
		{{X: 0, Y: 0, Z: 0}, {X: 0, Y: 1, Z: 0}, {X: 1, Y: 1, Z: 0}, {X: 1, Y: 0, Z: 0}},
		{{X: 0, Y: 0, Z: 1}, {X: 1, Y: 0, Z: 1}, {X: 1, Y: 1, Z: 1}, {X: 0, Y: 1, Z: 1}},
		{{X: 0, Y: 0, Z: 0}, {X: 1, Y: 0, Z: 0}, {X: 1, Y: 0, Z: 1}, {X: 0, Y: 0, Z: 1}},
		{{X: 0, Y: 1, Z: 0}, {X: 0, Y: 1, Z: 1}, {X: 1, Y: 1, Z: 1}, {X: 1, Y: 1, Z: 0}},
		{{X: 0, Y: 0, Z: 0}, {X: 0, Y: 0, Z: 1}, {X: 0, Y: 1, Z: 1}, {X: 0, Y: 1, Z: 0}},
		{{X: 1, Y: 0, Z: 0}, {X: 1, Y: 1, Z: 0}, {X: 1, Y: 1, Z: 1}, {X: 1, Y: 0, Z: 1}},
	}
	m := &Mesh{}
	for _, f := range faces {
		base := uint32(len(m.Vertices))
		for _, p := range f {
			m.Vertices = append(m.Vertices, Vertex{Position: p})
		}
		m.Indices = append(m.Indices, base, base+1, base+2, base, base+2, base+3)
	}

	for key, n := range WeldedEdgeCounts(m, 1e-4) {
		if n != 2 {
			a, b := EdgeVertices(key)
			t.Errorf("edge (%d,%d) used %d times, want 2", a, b, n)
		}
	}
}

func TestWeldCompactsAndRemaps(t *testing.T) {
	positions := []math.Vec3{
		{X: 0, Y: 0, Z: 0}, {X: 1, Y: 0, Z: 0}, {X: 0, Y: 1, Z: 0},
		{X: 1, Y: 0, Z: 0}, {X: 1, Y: 1, Z: 0}, {X: 0, Y: 1, Z: 0.0000001},
	}
	indices := []uint32{0, 1, 2, 3, 4, 5}

	out, idx := Weld(positions, indices, WeldCell(positions, 1e-4))
	if len(out) != 4 {
		t.Fatalf("welded to %d positions, want 4", len(out))
	}
	want := []uint32{0, 1, 2, 1, 3, 2}
	for i := range want {
		if idx[i] != want[i] {
			t.Errorf("idx[%d] = %d, want %d", i, idx[i], want[i])
		}
	}
	if out[3] != (math.Vec3{X: 1, Y: 1}) {
		t.Errorf("out[3] = %v, want (1,1,0)", out[3])
	}
	if indices[3] != 3 {
		t.Error("Weld must not modify the input indices")
	}
}

func TestWeldCellFloor(t *testing.T) {
	if got := WeldCell(nil, 1e-6); got != 1e-6 {
		t.Errorf("WeldCell(nil) = %v, want 1e-6", got)
	}
	pts := []math.Vec3{{X: 0, Y: 0, Z: 0}, {X: 0, Y: 0, Z: 10}}
	if got := WeldCell(pts, 0.1); got != 1 {
		t.Errorf("WeldCell = %v, want 1", got)
	}
}
