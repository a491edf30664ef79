package collar

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/knobsmith/pkg/math"
	"github.com/Faultbox/knobsmith/pkg/mesh"
)

const (
	headCoreRatio = 0.06
	neckRatio     = 0.03
	minHeadCore   = 3
	minNeck       = 2

	neckPinch = 0.12
	headStep  = 1e-3
)

// seamBlends are the partial body-basis weights for the rings just inside each
// weld ring.
var seamBlends = [...]float32{0.35, 0.7}

// window is the contiguous run of rings replaced by the head: neckIn rings,
// headCore rings, then neckOut rings. Its first and last rings are the welds.
type window struct {
	rings   int // Rings in the whole collar
	start   int
	neckIn  int
	core    int
	neckOut int
}

func newWindow(rings, center int) window {
	w := window{
		rings:   rings,
		core:    max(minHeadCore, int(math32.Floor(headCoreRatio*float32(rings)+0.5))),
		neckIn:  max(minNeck, int(math32.Floor(neckRatio*float32(rings)+0.5))),
		neckOut: max(minNeck, int(math32.Floor(neckRatio*float32(rings)+0.5))),
	}
	w.start = ((center-w.size()/2)%rings + rings) % rings
	return w
}

func (w window) size() int {
	return w.neckIn + w.core + w.neckOut
}

// enabled reports whether the collar has enough rings to host the head with
// untouched body on both sides.
func (w window) enabled() bool {
	return w.rings >= 2*w.size()+8
}

// ring maps window position k to a collar ring index.
func (w window) ring(k int) int {
	return (w.start + k) % w.rings
}

// welds returns the collar ring indices of the two weld rings.
func (w window) welds() (int, int) {
	return w.ring(0), w.ring(w.size() - 1)
}

// weight is the head influence at window position k: 0 at both welds, 1
// across the core, smoother-step ramps through the necks.
func (w window) weight(k int) float32 {
	last := w.size() - 1
	switch {
	case k <= 0 || k >= last:
		return 0
	case k < w.neckIn:
		return math.SmootherStep(0, float32(w.neckIn), float32(k))
	case k < w.neckIn+w.core:
		return 1
	default:
		return math.SmootherStep(float32(last), float32(w.neckIn+w.core-1), float32(k))
	}
}

// headPatch is the authored head surface in tube-radius units. U runs from
// the neck (0) to the snout (1); phi runs around the cross-section with 0 on
// the outside of the ring and pi/2 on top. Points are (forward, out, up).
type headPatch struct {
	scale   float32
	jaw     float32
	ellipse float32
}

func (h headPatch) width(u float32) float32 {
	return 1 + 0.3*h.scale*bell(u) - 0.35*math.SmoothStep(0.6, 1, u)
}

func (h headPatch) height(u float32) float32 {
	return h.ellipse * (1 + 0.15*h.scale*bell(u) - 0.3*math.SmoothStep(0.65, 1, u))
}

func (h headPatch) jawDrop(u float32) float32 {
	return 0.35 * h.jaw * math.SmoothStep(0.2, 0.5, u) * math.SmoothStep(1, 0.8, u)
}

func (h headPatch) forward(u float32) float32 {
	return 0.25 * h.scale * math.SmoothStep(0.5, 1, u)
}

// relief sums the facial features as a radial factor around 1.
func (h headPatch) relief(u, phi float32) float32 {
	r := float32(1)
	for _, side := range [...]float32{-1, 1} {
		eye := math.Pi/2 + side*0.7
		r -= 0.12 * math.Gaussian(u, 0.62, 0.05) * angularGaussian(phi, eye, 0.25) // socket
		r += 0.08 * math.Gaussian(u, 0.57, 0.05) * angularGaussian(phi, eye, 0.35) // brow
	}
	r += 0.06 * angularGaussian(phi, math.Pi/2, 0.2) * math.SmoothStep(0.55, 0.9, u) // snout ridge

	mouth := math.SmoothStep(0.45, 0.7, u)
	r -= 0.1 * mouth * (angularGaussian(phi, -0.25, 0.08) + angularGaussian(phi, math.Pi+0.25, 0.08))
	return r
}

func (h headPatch) point(u, phi float32) math.Vec3 {
	s := 1 + (h.scale-1)*bell(u)
	sin, cos := math32.Sincos(phi)
	rho := h.relief(u, phi)
	return math.Vec3{
		X: s * h.forward(u),
		Y: s * h.width(u) * cos * rho,
		Z: s * (h.height(u)*sin*rho - h.jawDrop(u)*math.Saturate(-sin)),
	}
}

// derivatives returns central differences of point along u and phi.
func (h headPatch) derivatives(u, phi float32) (du, dphi math.Vec3) {
	du = h.point(u+headStep, phi).Sub(h.point(u-headStep, phi)).Scale(0.5 / headStep)
	dphi = h.point(u, phi+headStep).Sub(h.point(u, phi-headStep)).Scale(0.5 / headStep)
	return du, dphi
}

func bell(u float32) float32 {
	return math32.Sin(math.Pi * math.Saturate(u))
}

func angularGaussian(a, center, sigma float32) float32 {
	return math.Gaussian(math.AngleDistance(a, center), 0, sigma)
}

// toWorld maps a head-local vector into ring i's (tangent, normal, up) frame.
func (s *sweep) toWorld(i int, v math.Vec3) math.Vec3 {
	return s.frameT[i].Scale(v.X).Add(s.frameN[i].Scale(v.Y)).Add(math.AxisZ.Scale(v.Z))
}

// applyHead replaces the window rings with the head patch, blended into the
// body through the necks, then welds the seams.
func (s *sweep) applyHead(body basis) {
	h := headPatch{
		scale:   s.collar.HeadScale,
		jaw:     s.collar.JawBulge,
		ellipse: s.collar.BodyEllipseYScale,
	}
	last := s.win.size() - 1
	// Centreline arc length per unit u.
	arc := s.ringRadius * float32(last) * math.Tau / float32(s.rings)

	for k := 0; k <= last; k++ {
		w := s.win.weight(k)
		if w <= 0 {
			continue
		}
		i := s.win.ring(k)
		u := float32(k) / float32(last)
		scale := s.radius[i] * (1 - neckPinch*(1-w)*(1-w))

		for j := 0; j < s.slices; j++ {
			phi := s.sliceAngle(j)
			local := h.point(u, phi)
			p := s.center[i].Add(s.toWorld(i, local.Scale(scale)))

			du, dphi := h.derivatives(u, phi)
			along := s.frameT[i].Scale(arc).Add(s.toWorld(i, du.Scale(scale)))
			around := s.toWorld(i, dphi.Scale(scale))
			n := along.Cross(around)
			out := p.Sub(s.center[i])
			if n.Dot(out) < 0 {
				n = n.Neg()
			}
			n = n.NormalizeOr(out.NormalizeOr(s.frameN[i]))
			t := mesh.Tangent(n, along, math.AxisZ, 1)

			idx := s.idx(i, j)
			if w >= 1 {
				s.pos[idx], s.normal[idx], s.tangent[idx] = p, n, t
				continue
			}
			s.pos[idx] = body.pos[idx].Lerp(p, w)
			s.normal[idx], s.tangent[idx] = mesh.BlendBasis(body.normal[idx], body.tangent[idx], n, t, w)
		}
	}
	s.weldSeams(body, nil)
}

// weldSeams hard-overrides the weld rings with the body basis and pulls the
// next rings inward partially towards it. With a non-nil only, the partial
// blend is limited to rings in that set.
func (s *sweep) weldSeams(body basis, only map[int]bool) {
	last := s.win.size() - 1
	for _, k := range [...]int{0, last} {
		i := s.win.ring(k)
		for j := 0; j < s.slices; j++ {
			idx := s.idx(i, j)
			s.normal[idx] = body.normal[idx]
			s.tangent[idx] = body.tangent[idx]
		}
	}
	for step, keep := range seamBlends {
		for _, k := range [...]int{1 + step, last - 1 - step} {
			if k <= 0 || k >= last {
				continue
			}
			i := s.win.ring(k)
			if only != nil && !only[i] {
				continue
			}
			for j := 0; j < s.slices; j++ {
				idx := s.idx(i, j)
				s.normal[idx], s.tangent[idx] = mesh.BlendBasis(body.normal[idx], body.tangent[idx], s.normal[idx], s.tangent[idx], keep)
			}
		}
	}
}
