package collar

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/knobsmith/pkg/math"
	"github.com/Faultbox/knobsmith/pkg/mesh"
)

const (
	neckSigma      = 0.35
	tailSigma      = 0.5
	massBiasWeight = 0.35
	minTubeRatio   = 0.05

	reliefCellsAround = 12
	reliefBumpInner   = 0.4
	reliefBumpOuter   = 1.0
)

// TubeRadius returns the local cross-section radius at ring angle alpha:
// the body radius pinched by a neck gaussian at the bite, a tail gaussian on
// the opposite side, and a cosine mass bias.
func TubeRadius(body, neck, tail, massBias, bite, alpha float32) float32 {
	d := math.WrapAngle(alpha - bite)
	r := body *
		(1 - neck*math.Gaussian(d, 0, neckSigma)) *
		(1 - tail*math.Gaussian(math.WrapAngle(d-math.Pi), 0, tailSigma)) *
		(1 + massBiasWeight*massBias*math32.Cos(d))
	return math32.Max(r, body*minTubeRatio)
}

// sweepBody fills every ring with the swept ellipse plus scale relief, then
// derives the basis from the displaced positions.
func (s *sweep) sweepBody() {
	ring := s.ringRadius
	z := s.elevation
	for i := 0; i < s.rings; i++ {
		alpha := s.ringAngle(i)
		sin, cos := math32.Sincos(alpha)
		s.angle[i] = alpha
		s.frameT[i] = math.Vec3{X: -sin, Y: cos}
		s.frameN[i] = math.Vec3{X: cos, Y: sin}
		s.center[i] = math.Vec3{X: ring * cos, Y: ring * sin, Z: z}
		s.radius[i] = TubeRadius(s.bodyRadius, s.collar.NeckTaper, s.collar.TailTaper, s.collar.MassBias, s.bite, alpha)

		rx := s.radius[i]
		ry := rx * s.collar.BodyEllipseYScale
		amp := s.collar.ScaleRelief * rx
		for j := 0; j < s.slices; j++ {
			sp, cp := math32.Sincos(s.sliceAngle(j))
			offset := s.frameN[i].Scale(rx * cp).Add(math.AxisZ.Scale(ry * sp))
			normal := s.frameN[i].Scale(ry * cp).Add(math.AxisZ.Scale(rx * sp)).NormalizeOr(s.frameN[i])
			p := s.center[i].Add(offset)
			if amp > 0 {
				p = p.Add(normal.Scale(amp * s.relief(i, j)))
			}
			s.pos[s.idx(i, j)] = p
		}
	}
	for i := 0; i < s.rings; i++ {
		s.recomputeRing(i)
	}
}

// relief is the staggered cellular scale pattern in [-0.5, 0.5]: raised cell
// centres and grooved borders on a lattice wrapping both around the ring and
// around the cross-section.
func (s *sweep) relief(i, j int) float32 {
	u := float32(i) * float32(s.cellsAlong) / float32(s.rings)
	w := float32(j) * float32(s.cellsAround) / float32(s.slices)
	if int(math32.Floor(u))%2 != 0 {
		w += 0.5
	}
	fu := u - math32.Floor(u) - 0.5
	fw := w - math32.Floor(w) - 0.5
	d := 2 * math32.Hypot(fu, fw)
	return math.SmoothStep(reliefBumpOuter, reliefBumpInner, d) - 0.5
}

// recomputeRing derives normals and tangents of ring i from finite
// differences of the current positions.
func (s *sweep) recomputeRing(i int) {
	for j := 0; j < s.slices; j++ {
		p := s.pos[s.idx(i, j)]
		along := s.pos[s.idx(i+1, j)].Sub(s.pos[s.idx(i-1, j)])
		around := s.pos[s.idx(i, j+1)].Sub(s.pos[s.idx(i, j-1)])
		out := p.Sub(s.center[i])

		n := along.Cross(around)
		if n.Dot(out) < 0 {
			n = n.Neg()
		}
		n = n.NormalizeOr(out.NormalizeOr(s.frameN[i]))

		k := s.idx(i, j)
		s.normal[k] = n
		s.tangent[k] = mesh.Tangent(n, along, math.AxisZ, 1)
	}
}
