package importer

import (
	gomath "math"

	"github.com/Faultbox/knobsmith/pkg/math"
	"github.com/Faultbox/knobsmith/pkg/mesh"
)

// WindingReport summarises RepairWinding.
type WindingReport struct {
	Components       int // Consistency components (edge-connected triangle sets)
	Flipped          int // Triangles flipped to agree with their neighbours
	Inverted         int // Components turned inside out to face outward
	NonManifoldEdges int // Edges shared by more than two triangles, not propagated across
}

// outwardTolerance is the fraction of the absolute outward sum below which
// the sum is treated as zero and the signed volume decides instead.
const outwardTolerance = 1e-6

type edgeUse struct {
	tri     int32
	forward bool // Traversed from the smaller to the larger vertex index
}

// RepairWinding makes triangle winding consistent across shared edges and
// turns every component to face away from its centroid. It rewrites indices
// in place. Degenerate triangles are left alone.
func RepairWinding(positions []math.Vec3, indices []uint32) WindingReport {
	var report WindingReport
	tris := len(indices) / 3
	n := uint32(len(positions))

	usable := make([]bool, tris)
	edges := make(map[uint64][]edgeUse, tris*3/2)
	for t := 0; t < tris; t++ {
		a, b, c := indices[3*t], indices[3*t+1], indices[3*t+2]
		if a >= n || b >= n || c >= n || mesh.IsDegenerate(a, b, c) {
			continue
		}
		usable[t] = true
		for _, e := range [3][2]uint32{{a, b}, {b, c}, {c, a}} {
			key := mesh.EdgeKey(e[0], e[1])
			edges[key] = append(edges[key], edgeUse{tri: int32(t), forward: e[0] < e[1]})
		}
	}
	for _, uses := range edges {
		if len(uses) > 2 {
			report.NonManifoldEdges++
		}
	}

	flip := make([]bool, tris)
	comp := make([]int32, tris)
	for i := range comp {
		comp[i] = -1
	}
	var members [][]int32
	queue := make([]int32, 0, 64)
	for seed := 0; seed < tris; seed++ {
		if !usable[seed] || comp[seed] >= 0 {
			continue
		}
		id := int32(len(members))
		comp[seed] = id
		queue = append(queue[:0], int32(seed))
		var list []int32
		for len(queue) > 0 {
			t := queue[0]
			queue = queue[1:]
			list = append(list, t)
			a, b, c := indices[3*t], indices[3*t+1], indices[3*t+2]
			for _, e := range [3][2]uint32{{a, b}, {b, c}, {c, a}} {
				uses := edges[mesh.EdgeKey(e[0], e[1])]
				if len(uses) != 2 {
					continue
				}
				other := uses[0]
				if other.tri == t {
					other = uses[1]
				}
				if other.tri == t || comp[other.tri] >= 0 {
					continue
				}
				// Consistent neighbours traverse a shared edge in opposite
				// directions.
				sameDir := other.forward == (e[0] < e[1])
				flip[other.tri] = flip[t] != sameDir
				comp[other.tri] = id
				queue = append(queue, other.tri)
			}
		}
		members = append(members, list)
	}
	report.Components = len(members)

	for t := 0; t < tris; t++ {
		if flip[t] {
			flipTriangle(indices, t)
			report.Flipped++
		}
	}

	for _, list := range members {
		if !facesOutward(positions, indices, list) {
			for _, t := range list {
				flipTriangle(indices, int(t))
			}
			report.Inverted++
		}
	}
	return report
}

func flipTriangle(indices []uint32, t int) {
	indices[3*t+1], indices[3*t+2] = indices[3*t+2], indices[3*t+1]
}

// facesOutward reports whether face normals of a component point away from
// its area-weighted centroid on balance. A near-zero balance falls back to
// the sign of the enclosed volume.
func facesOutward(positions []math.Vec3, indices []uint32, tris []int32) bool {
	var cx, cy, cz, area float64
	for _, t := range tris {
		p0, p1, p2 := triangle(positions, indices, int(t))
		w := float64(mesh.FaceNormal(p0, p1, p2).Length())
		c := p0.Add(p1).Add(p2).Scale(1.0 / 3)
		cx += w * float64(c.X)
		cy += w * float64(c.Y)
		cz += w * float64(c.Z)
		area += w
	}
	if area <= 0 {
		return true
	}
	centroid := [3]float64{cx / area, cy / area, cz / area}

	var sum, abs, volume float64
	for _, t := range tris {
		p0, p1, p2 := triangle(positions, indices, int(t))
		fn := mesh.FaceNormal(p0, p1, p2)
		c := p0.Add(p1).Add(p2).Scale(1.0 / 3)
		d := float64(fn.X)*(float64(c.X)-centroid[0]) +
			float64(fn.Y)*(float64(c.Y)-centroid[1]) +
			float64(fn.Z)*(float64(c.Z)-centroid[2])
		sum += d
		abs += gomath.Abs(d)
		volume += signedVolume(p0, p1, p2, centroid)
	}
	if gomath.Abs(sum) > abs*outwardTolerance {
		return sum > 0
	}
	return volume >= 0
}

// signedVolume returns six times the volume of the tetrahedron spanned by the
// triangle and origin o.
func signedVolume(p0, p1, p2 math.Vec3, o [3]float64) float64 {
	ax, ay, az := float64(p0.X)-o[0], float64(p0.Y)-o[1], float64(p0.Z)-o[2]
	bx, by, bz := float64(p1.X)-o[0], float64(p1.Y)-o[1], float64(p1.Z)-o[2]
	cx, cy, cz := float64(p2.X)-o[0], float64(p2.Y)-o[1], float64(p2.Z)-o[2]
	return ax*(by*cz-bz*cy) - ay*(bx*cz-bz*cx) + az*(bx*cy-by*cx)
}

func triangle(positions []math.Vec3, indices []uint32, t int) (math.Vec3, math.Vec3, math.Vec3) {
	return positions[indices[3*t]], positions[indices[3*t+1]], positions[indices[3*t+2]]
}
