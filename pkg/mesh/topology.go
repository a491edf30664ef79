package mesh

import (
	"github.com/Faultbox/knobsmith/pkg/math"
)

// EdgeKey packs an undirected edge into a map key with the smaller index first.
func EdgeKey(a, b uint32) uint64 {
	if a > b {
		a, b = b, a
	}
	return uint64(a)<<32 | uint64(b)
}

// EdgeVertices unpacks an EdgeKey.
func EdgeVertices(key uint64) (uint32, uint32) {
	return uint32(key >> 32), uint32(key)
}

// IsDegenerate reports whether a triangle repeats a vertex index.
func IsDegenerate(a, b, c uint32) bool {
	return a == b || b == c || c == a
}

// WeldMap maps each vertex to the first vertex sharing its quantized position.
// Cell is the quantization step.
func WeldMap(positions []math.Vec3, cell float32) []uint32 {
	if cell <= 0 {
		cell = 1e-5
	}
	seen := make(map[[3]int64]uint32, len(positions))
	out := make([]uint32, len(positions))
	for i, p := range positions {
		key := QuantizeKey(p, cell)
		first, ok := seen[key]
		if !ok {
			first = uint32(i)
			seen[key] = first
		}
		out[i] = first
	}
	return out
}

// QuantizeKey rounds a position to an integer lattice key.
func QuantizeKey(p math.Vec3, cell float32) [3]int64 {
	inv := 1 / float64(cell)
	return [3]int64{
		roundToInt64(float64(p.X) * inv),
		roundToInt64(float64(p.Y) * inv),
		roundToInt64(float64(p.Z) * inv),
	}
}

func roundToInt64(f float64) int64 {
	if f < 0 {
		return -int64(-f + 0.5)
	}
	return int64(f + 0.5)
}

// WeldedEdgeCounts counts how many triangles use each undirected edge after
// welding coincident positions. Degenerate triangles after welding are skipped.
func WeldedEdgeCounts(m *Mesh, cell float32) map[uint64]int {
	weld := WeldMap(m.Positions(), cell)
	counts := make(map[uint64]int, len(m.Indices))
	for t := 0; t+2 < len(m.Indices); t += 3 {
		a, b, c := weld[m.Indices[t]], weld[m.Indices[t+1]], weld[m.Indices[t+2]]
		if IsDegenerate(a, b, c) {
			continue
		}
		counts[EdgeKey(a, b)]++
		counts[EdgeKey(b, c)]++
		counts[EdgeKey(c, a)]++
	}
	return counts
}

// WeldCell returns a quantization step of relative times the largest extent
// of the point set. Empty or point-like input gets a small absolute floor.
func WeldCell(positions []math.Vec3, relative float32) float32 {
	size := BoundsOf(positions).Size()
	extent := size.X
	if size.Y > extent {
		extent = size.Y
	}
	if size.Z > extent {
		extent = size.Z
	}
	cell := extent * relative
	if !(cell > 0) {
		cell = 1e-6
	}
	return cell
}

// Weld merges vertices sharing a quantized position and remaps indices onto
// the compacted list. Surviving vertices keep their relative order.
// Indices must be in range.
func Weld(positions []math.Vec3, indices []uint32, cell float32) ([]math.Vec3, []uint32) {
	weld := WeldMap(positions, cell)
	remap := make([]uint32, len(positions))
	out := make([]math.Vec3, 0, len(positions))
	for i, first := range weld {
		if uint32(i) == first {
			remap[i] = uint32(len(out))
			out = append(out, positions[i])
			continue
		}
		remap[i] = remap[first]
	}
	idx := make([]uint32, len(indices))
	for i, v := range indices {
		idx[i] = remap[v]
	}
	return out, idx
}
