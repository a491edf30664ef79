package importer

import (
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/Faultbox/knobsmith/pkg/math"
	"github.com/Faultbox/knobsmith/pkg/mesh"
)

// Component scoring. The weights and floors are tuned on typical ring assets
// (a collar body with loose decoration or a base plate) rather than derived.
const (
	holeLowPercentile  = 0.05
	holeHighPercentile = 0.95

	holeWeight     = 0.55
	medianWeight   = 0.25
	triangleWeight = 0.20

	minComponentTriangles   = 8
	minComponentTriFraction = 0.02
	minComponentVertices    = 8
	minComponentVtxFraction = 0.01
)

// ExtractionReport summarises ExtractComponent.
type ExtractionReport struct {
	Components int
	Selected   int // Index of the chosen component in discovery order, -1 when the mesh was kept whole
	KeptWhole  bool
	Triangles  int // Triangles in the result
	Vertices   int // Vertices in the result
	HoleRatio  float32
	Score      float32
}

type component struct {
	tris   []int32
	verts  []uint32
	hole   float64
	median float64
	score  float64
}

// ExtractComponent selects the connected component that looks most like a
// ring: a large central hole, a large radius and many triangles. The mesh is
// returned unchanged when it is a single component or the winner is too small
// to stand for the asset.
func ExtractComponent(positions []math.Vec3, indices []uint32) ([]math.Vec3, []uint32, ExtractionReport) {
	comps, total := splitComponents(positions, indices)
	report := ExtractionReport{
		Components: len(comps),
		Selected:   -1,
		KeptWhole:  true,
		Triangles:  len(indices) / 3,
		Vertices:   len(positions),
	}
	if len(comps) <= 1 {
		if len(comps) == 1 {
			scoreComponent(positions, &comps[0])
			report.HoleRatio = float32(comps[0].hole)
		}
		return positions, indices, report
	}

	maxMedian := 0.0
	for i := range comps {
		scoreComponent(positions, &comps[i])
		if comps[i].median > maxMedian {
			maxMedian = comps[i].median
		}
	}
	best := -1
	for i := range comps {
		c := &comps[i]
		medianTerm := 0.0
		if maxMedian > 0 {
			medianTerm = c.median / maxMedian
		}
		c.score = holeWeight*c.hole + medianWeight*medianTerm +
			triangleWeight*float64(len(c.tris))/float64(total)
		if best < 0 || c.score > comps[best].score {
			best = i
		}
	}

	c := &comps[best]
	minTris := max(minComponentTriangles, int(minComponentTriFraction*float64(total)))
	minVerts := max(minComponentVertices, int(minComponentVtxFraction*float64(len(positions))))
	report.HoleRatio = float32(c.hole)
	report.Score = float32(c.score)
	if len(c.tris) < minTris || len(c.verts) < minVerts || len(c.tris) >= total {
		return positions, indices, report
	}

	remap := make(map[uint32]uint32, len(c.verts))
	outPos := make([]math.Vec3, 0, len(c.verts))
	outIdx := make([]uint32, 0, 3*len(c.tris))
	for _, t := range c.tris {
		for k := 0; k < 3; k++ {
			v := indices[3*int(t)+k]
			nv, ok := remap[v]
			if !ok {
				nv = uint32(len(outPos))
				remap[v] = nv
				outPos = append(outPos, positions[v])
			}
			outIdx = append(outIdx, nv)
		}
	}

	report.Selected = best
	report.KeptWhole = false
	report.Triangles = len(c.tris)
	report.Vertices = len(outPos)
	return outPos, outIdx, report
}

// splitComponents groups non-degenerate triangles by vertex connectivity and
// returns the groups in order of first triangle, plus the triangle total.
func splitComponents(positions []math.Vec3, indices []uint32) ([]component, int) {
	n := uint32(len(positions))
	uf := mesh.NewUnionFind(len(positions))
	valid := func(t int) bool {
		a, b, c := indices[3*t], indices[3*t+1], indices[3*t+2]
		return a < n && b < n && c < n && !mesh.IsDegenerate(a, b, c)
	}

	tris := len(indices) / 3
	for t := 0; t < tris; t++ {
		if !valid(t) {
			continue
		}
		uf.Union(int(indices[3*t]), int(indices[3*t+1]))
		uf.Union(int(indices[3*t+1]), int(indices[3*t+2]))
	}

	byRoot := make(map[int]int)
	seen := make([]bool, len(positions))
	var comps []component
	total := 0
	for t := 0; t < tris; t++ {
		if !valid(t) {
			continue
		}
		total++
		root := uf.Find(int(indices[3*t]))
		id, ok := byRoot[root]
		if !ok {
			id = len(comps)
			byRoot[root] = id
			comps = append(comps, component{})
		}
		c := &comps[id]
		c.tris = append(c.tris, int32(t))
		for k := 0; k < 3; k++ {
			v := indices[3*t+k]
			if !seen[v] {
				seen[v] = true
				c.verts = append(c.verts, v)
			}
		}
	}
	return comps, total
}

// scoreComponent measures planar radii in the plane across the component's
// thinnest bounding-box axis, about its box center.
func scoreComponent(positions []math.Vec3, c *component) {
	b := mesh.EmptyBounds()
	for _, v := range c.verts {
		b.Extend(positions[v])
	}
	size, center := b.Size(), b.Center()
	thin := 0
	for axis := 1; axis < 3; axis++ {
		if size.Component(axis) < size.Component(thin) {
			thin = axis
		}
	}
	u, w := (thin+1)%3, (thin+2)%3

	radii := make([]float64, len(c.verts))
	for i, v := range c.verts {
		d := positions[v].Sub(center)
		radii[i] = float64(math.Vec2{X: d.Component(u), Y: d.Component(w)}.Length())
	}
	sort.Float64s(radii)

	c.median = stat.Quantile(0.5, stat.Empirical, radii, nil)
	hi := stat.Quantile(holeHighPercentile, stat.Empirical, radii, nil)
	if hi > 0 {
		c.hole = stat.Quantile(holeLowPercentile, stat.Empirical, radii, nil) / hi
	}
}
