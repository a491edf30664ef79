package collar

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/knobsmith/pkg/math"
)

const (
	jawSigma       = 0.25
	jawCompress    = 0.25
	behindOffset   = 0.3
	behindSigma    = 0.2
	behindWiden    = 0.12
	tailSigmaLocal = 0.12
	tailPush       = 0.3
	tailSink       = 0.15
	maskCutoff     = 1e-4
)

// deform applies the bite edits: the underside of the jaw is compressed and
// the body just behind the bite widened, then the tail tip is tucked under
// the jaw. Touched rings get their basis recomputed, the weld rings are reset
// and only recomputed seam rings are blended again.
func (s *sweep) deform(body basis) {
	c := s.collar
	tail := s.bite - (0.1 + 0.25*c.TailUnderlap)

	touched := make(map[int]bool)
	for i := 0; i < s.rings; i++ {
		d := math.WrapAngle(s.angle[i] - s.bite)
		jaw := c.JawBulge * math.Gaussian(d, 0, jawSigma)
		behind := c.JawBulge * math.Gaussian(d, -behindOffset, behindSigma)
		tuck := c.TailUnderlap * math.Gaussian(math.WrapAngle(s.angle[i]-tail), 0, tailSigmaLocal)
		if jaw < maskCutoff && behind < maskCutoff && tuck < maskCutoff {
			continue
		}
		touched[i] = true

		T, N, C := s.frameT[i], s.frameN[i], s.center[i]
		rad := s.radius[i]
		for j := 0; j < s.slices; j++ {
			idx := s.idx(i, j)
			off := s.pos[idx].Sub(C)
			dt, dn, dz := off.Dot(T), off.Dot(N), off.Dot(math.AxisZ)
			under := math.Saturate(-math32.Sin(s.sliceAngle(j)))

			dz *= 1 - jawCompress*jaw*under
			dn *= 1 + behindWiden*behind
			dt -= tailPush * rad * tuck * under
			dz -= tailSink * rad * tuck * under

			s.pos[idx] = C.Add(T.Scale(dt)).Add(N.Scale(dn)).Add(math.AxisZ.Scale(dz))
		}
	}
	if len(touched) == 0 {
		return
	}

	// Neighbours of edited rings see new finite differences too.
	rings := make(map[int]bool, len(touched)+2)
	for i := range touched {
		rings[s.wrapRing(i-1)] = true
		rings[i] = true
		rings[s.wrapRing(i+1)] = true
	}
	for i := range rings {
		s.recomputeRing(i)
	}
	s.weldSeams(body, rings)
}
