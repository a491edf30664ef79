package knob

import (
	"github.com/chewxy/math32"
	"github.com/soypat/geometry/ms1"
	"github.com/soypat/geometry/ms2"

	"github.com/Faultbox/knobsmith/internal/params"
	"github.com/Faultbox/knobsmith/pkg/math"
)

const (
	indicatorHeightScale = 0.1
	capsuleArcSegments   = 8
	dotSegments          = 24
	minFeatherRatio      = 1e-3
)

// indicator is the pointer mark resolved to cap coordinates. Shapes are laid
// out in a local frame with x across and y along the pointer, centred on the
// band position.
type indicator struct {
	shape   params.IndicatorShape
	profile params.IndicatorProfile
	center  float32 // Distance along +Y from the cap centre
	halfW   float32
	halfL   float32
	radius  float32   // Capsule and dot radius
	poly    []ms2.Vec // Polygon shapes, counter-clockwise
	amp     float32   // Signed relief height
	feather float32
}

func newIndicator(ind params.Indicator, capRadius, height float32) indicator {
	g := indicator{
		shape:   ind.Shape,
		profile: ind.Profile,
		center:  ind.PositionRatio * capRadius,
		halfW:   0.5 * ind.WidthRatio * capRadius,
		halfL:   0.5 * ind.LengthRatio * capRadius,
		amp:     ind.ThicknessRatio * height * indicatorHeightScale * ind.Relief.Sign(),
	}
	g.feather = math32.Max(ind.Roundness*g.halfW, minFeatherRatio*capRadius)

	w, l := g.halfW, g.halfL
	switch g.shape {
	case params.IndicatorBar:
		g.poly = []ms2.Vec{{X: -w, Y: -l}, {X: w, Y: -l}, {X: w, Y: l}, {X: -w, Y: l}}
	case params.IndicatorTapered:
		g.poly = []ms2.Vec{{X: -w, Y: -l}, {X: w, Y: -l}, {X: 0.4 * w, Y: l}, {X: -0.4 * w, Y: l}}
	case params.IndicatorNeedle:
		g.poly = []ms2.Vec{{X: -0.5 * w, Y: -l}, {X: 0.5 * w, Y: -l}, {X: 0.05 * w, Y: l}, {X: -0.05 * w, Y: l}}
	case params.IndicatorTriangle:
		g.poly = []ms2.Vec{{X: -w, Y: -l}, {X: w, Y: -l}, {X: 0, Y: l}}
	case params.IndicatorDiamond:
		g.poly = []ms2.Vec{{X: 0, Y: -l}, {X: w, Y: 0}, {X: 0, Y: l}, {X: -w, Y: 0}}
	case params.IndicatorCapsule:
		g.radius = w
	case params.IndicatorDot:
		g.radius = math32.Max(w, 0.25*l)
	}
	return g
}

func (g indicator) enabled() bool {
	return g.shape > params.IndicatorNone && g.shape <= params.IndicatorDot && g.amp != 0
}

// local maps cap coordinates into the indicator frame.
func (g indicator) local(x, y float32) ms2.Vec {
	return ms2.Vec{X: x, Y: y - g.center}
}

// distance is the signed distance to the contour, negative inside.
func (g indicator) distance(x, y float32) float32 {
	p := g.local(x, y)
	switch g.shape {
	case params.IndicatorCapsule:
		h := math32.Max(g.halfL-g.radius, 0)
		q := ms2.Vec{X: p.X, Y: p.Y - ms1.Clamp(p.Y, -h, h)}
		return ms2.Norm(q) - g.radius
	case params.IndicatorDot:
		return ms2.Norm(p) - g.radius
	}
	if len(g.poly) == 0 {
		return math32.Inf(1)
	}
	return polygonDistance(g.poly, p)
}

// polygonDistance is the signed distance to a closed polygon with an even-odd
// inside test.
func polygonDistance(verts []ms2.Vec, p ms2.Vec) float32 {
	d := ms2.Norm2(ms2.Sub(p, verts[0]))
	s := float32(1)
	j := len(verts) - 1
	for i, v1 := range verts {
		v2 := verts[j]
		e := ms2.Sub(v2, v1)
		w := ms2.Sub(p, v1)
		b := ms2.Sub(w, ms2.Scale(ms1.Clamp(ms2.Dot(w, e)/ms2.Norm2(e), 0, 1), e))
		d = math32.Min(d, ms2.Norm2(b))
		c1 := p.Y >= v1.Y
		c2 := p.Y < v2.Y
		c3 := e.X*w.Y > e.Y*w.X
		if (c1 && c2 && c3) || (!c1 && !c2 && !c3) {
			s = -s
		}
		j = i
	}
	return s * math32.Sqrt(d)
}

// mask returns the edge profile weight in [0, 1] for signed distance d.
func (g indicator) mask(d float32) float32 {
	switch g.profile {
	case params.ProfileStraight:
		if d <= 0 {
			return 1
		}
		return 0
	case params.ProfileChamfer:
		return math.Saturate(-d / g.feather)
	default:
		return math.SmoothStep(0, -g.feather, d)
	}
}

// offset returns the signed axial displacement of the indicator at cap point
// (x, y).
func (g indicator) offset(x, y float32) float32 {
	if !g.enabled() {
		return 0
	}
	return g.amp * g.mask(g.distance(x, y))
}

// contour returns the indicator outline in cap coordinates, counter-clockwise.
func (g indicator) contour() []math.Vec2 {
	var local []ms2.Vec
	switch g.shape {
	case params.IndicatorCapsule:
		h := math32.Max(g.halfL-g.radius, 0)
		for s := 0; s <= capsuleArcSegments; s++ {
			a := float32(s) / capsuleArcSegments * math.Pi
			sin, cos := math32.Sincos(a)
			local = append(local, ms2.Vec{X: g.radius * cos, Y: h + g.radius*sin})
		}
		for s := 0; s <= capsuleArcSegments; s++ {
			a := math.Pi + float32(s)/capsuleArcSegments*math.Pi
			sin, cos := math32.Sincos(a)
			local = append(local, ms2.Vec{X: g.radius * cos, Y: -h + g.radius*sin})
		}
	case params.IndicatorDot:
		for s := 0; s < dotSegments; s++ {
			sin, cos := math32.Sincos(float32(s) / dotSegments * math.Tau)
			local = append(local, ms2.Vec{X: g.radius * cos, Y: g.radius * sin})
		}
	default:
		local = g.poly
	}

	out := make([]math.Vec2, len(local))
	for i, v := range local {
		out[i] = math.Vec2{X: v.X, Y: v.Y + g.center}
	}
	if signedArea(out) < 0 {
		for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
			out[i], out[j] = out[j], out[i]
		}
	}
	return out
}

func signedArea(poly []math.Vec2) float32 {
	var a float32
	j := len(poly) - 1
	for i := range poly {
		a += poly[j].Cross(poly[i])
		j = i
	}
	return 0.5 * a
}
