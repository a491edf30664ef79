package knob

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/knobsmith/internal/params"
	"github.com/Faultbox/knobsmith/pkg/math"
)

const (
	gripDepthScale = 0.25
	gripMaxFade    = 0.05
	sin60          = 0.8660254
)

// gripMask evaluates the knurl mask in [0, 1] at lattice coordinates (u, v).
// U counts ridges around the body; v is the axial distance in ridge spacings.
type gripMask func(g params.Grip, u, v float32) float32

var gripMasks = [...]gripMask{
	params.GripNone: func(params.Grip, float32, float32) float32 { return 0 },
	params.GripFlutes: func(g params.Grip, u, _ float32) float32 {
		return groove(g, u)
	},
	params.GripDiamond: func(g params.Grip, u, v float32) float32 {
		return unite(groove(g, u+v*g.Pitch), groove(g, u-v*g.Pitch))
	},
	params.GripSquare: func(g params.Grip, u, v float32) float32 {
		return unite(groove(g, u), groove(g, v*g.Pitch))
	},
	params.GripHex: func(g params.Grip, u, v float32) float32 {
		s := v * g.Pitch * sin60
		return (groove(g, u) + groove(g, 0.5*u+s) + groove(g, 0.5*u-s)) / 3
	},
}

// groove is a ridge mask on the distance to the nearest lattice line: 1 on the
// line, 0 beyond half the groove width.
func groove(g params.Grip, x float32) float32 {
	d := math32.Abs(x - math32.Floor(x+0.5))
	return math.SmoothStep(0.5*g.Width, 0, d)
}

func unite(a, b float32) float32 {
	return 1 - (1-a)*(1-b)
}

// gripWindow fades the grip in and out at the ends of its axial band.
func gripWindow(g params.Grip, t float32) float32 {
	if g.Height <= 0 {
		return 0
	}
	end := g.Start + g.Height
	fade := math32.Min(gripMaxFade, 0.25*g.Height)
	return math.SmoothStep(g.Start, g.Start+fade, t) * math.SmoothStep(end, end-fade, t)
}

// GripOffset returns the inward radial displacement of the knurl at angle
// theta, side-run parameter t, axial distance from the side start and local
// radius.
func GripOffset(g params.Grip, theta, t, axial, radius float32) float32 {
	if g.Type <= params.GripNone || int(g.Type) >= len(gripMasks) || g.Depth <= 0 {
		return 0
	}
	w := gripWindow(g, t)
	if w <= 0 {
		return 0
	}
	count := math32.Max(3, math32.Floor(g.Density+0.5))
	if g.Type == params.GripHex {
		// The half-rate axes only wrap cleanly for an even count.
		count = 2 * math32.Floor(count/2+0.5)
	}
	span := math.Tau * radius / count
	if span <= 0 {
		return 0
	}
	u := theta * count / math.Tau
	v := axial / span
	m := math.Saturate(gripMasks[g.Type](g, u, v))
	m = math32.Pow(m, g.Sharpness)
	return g.Depth * span * gripDepthScale * m * w
}
