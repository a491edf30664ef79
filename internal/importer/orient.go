package importer

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/knobsmith/pkg/math"
	"github.com/Faultbox/knobsmith/pkg/mesh"
)

// Orientation records the axis mapping chosen by AutoOrient: output axis i
// takes input axis Permutation[i] times Signs[i].
type Orientation struct {
	Permutation [3]int
	Signs       [3]float32
	Score       float32 // Out-of-plane extent over the smaller in-plane extent
	Flipped     bool    // Mirrored along Z to put the vertex majority below the middle
}

// Identity reports whether the orientation leaves positions unchanged.
func (o Orientation) Identity() bool {
	return o.Permutation == [3]int{0, 1, 2} && o.Signs == [3]float32{1, 1, 1}
}

// Apply maps p into the oriented frame.
func (o Orientation) Apply(p math.Vec3) math.Vec3 {
	return math.Vec3{
		X: p.Component(o.Permutation[0]) * o.Signs[0],
		Y: p.Component(o.Permutation[1]) * o.Signs[1],
		Z: p.Component(o.Permutation[2]) * o.Signs[2],
	}
}

// Candidate permutations, identity first so ties keep the input frame.
var permutations = [6]struct {
	axes [3]int
	odd  bool
}{
	{[3]int{0, 1, 2}, false},
	{[3]int{1, 2, 0}, false},
	{[3]int{2, 0, 1}, false},
	{[3]int{0, 2, 1}, true},
	{[3]int{2, 1, 0}, true},
	{[3]int{1, 0, 2}, true},
}

// AutoOrient lays the mesh flat: the thinnest extent becomes Z. Odd
// permutations negate Z, and a majority flip along Z also negates X, so the
// mapping is always a proper rotation and winding survives.
func AutoOrient(positions []math.Vec3) ([]math.Vec3, Orientation) {
	size := mesh.BoundsOf(positions).Size()

	best := Orientation{Score: math32.Inf(1)}
	for i, p := range permutations {
		score := flatness(size, p.axes)
		if i > 0 && !(score < best.Score) {
			continue
		}
		best.Permutation = p.axes
		best.Signs = [3]float32{1, 1, 1}
		if p.odd {
			best.Signs[2] = -1
		}
		best.Score = score
	}

	out := make([]math.Vec3, len(positions))
	for i, p := range positions {
		out[i] = best.Apply(p)
	}

	b := mesh.BoundsOf(out)
	mid := 0.5 * (b.Min.Z + b.Max.Z)
	eps := 1e-6 * (b.Max.Z - b.Min.Z)
	above, below := 0, 0
	for _, p := range out {
		switch {
		case p.Z > mid+eps:
			above++
		case p.Z < mid-eps:
			below++
		}
	}
	if above > below {
		best.Flipped = true
		best.Signs[0] = -best.Signs[0]
		best.Signs[2] = -best.Signs[2]
		for i := range out {
			out[i].X = -out[i].X
			out[i].Z = -out[i].Z
		}
	}
	return out, best
}

// flatness scores a permutation. Degenerate in-plane extents score +Inf.
func flatness(size math.Vec3, axes [3]int) float32 {
	in := math32.Min(size.Component(axes[0]), size.Component(axes[1]))
	if !(in > 0) {
		return math32.Inf(1)
	}
	return size.Component(axes[2]) / in
}
