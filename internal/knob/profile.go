package knob

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/knobsmith/internal/params"
	"github.com/Faultbox/knobsmith/pkg/math"
)

const (
	bevelSegments = 8

	chamferRadiusRatio = 0.03
	chamferHeightRatio = 0.08

	minBodyRadiusRatio = 0.05
	topTaperWeight     = 0.35
	bulgeWeight        = 0.12
)

// profilePoint is one meridian control point. Side is the side-run parameter
// in [0, 1], or -1 for points on the chamfer and bevel.
type profilePoint struct {
	R, Z float32
	Side float32
}

// profile is the meridian cross-section revolved around +Z.
type profile struct {
	points    []profilePoint
	zBack     float32
	zTop      float32
	sideZ0    float32 // Axial start of the side run
	capRadius float32 // Radius of the front cap rim
}

// BodyRadius returns the side radius at side-run parameter t: a linear blend
// from the base radius to the tapered top radius plus a quadratic bulge arch.
func BodyRadius(p params.Knob, t float32) float32 {
	top := p.Radius * p.TopRadiusScale * (1 - topTaperWeight*p.BodyTaper)
	r := math.Lerp(p.Radius, top, t) + p.BodyBulge*p.Radius*bulgeWeight*4*t*(1-t)
	return math32.Max(r, p.Radius*minBodyRadiusRatio)
}

// sideSteps returns the number of side-run intervals.
func sideSteps(segments int) int {
	return max(4, int(math32.Floor(0.75*float32(segments)+0.5)))
}

func bevelFor(p params.Knob, chamfer float32) (float32, int) {
	top := BodyRadius(p, 1)
	b := math.Clamp(p.Bevel, 0, 0.45*math32.Min(top, p.Height-chamfer))
	if b <= 1e-4*p.Radius {
		return 0, 0
	}
	return b, bevelSegments
}

func buildProfile(p params.Knob) profile {
	zBack := -p.Height / 2
	zTop := p.Height / 2
	chamfer := math32.Min(chamferRadiusRatio*p.Radius, chamferHeightRatio*p.Height)
	bevel, bevelSegs := bevelFor(p, chamfer)

	steps := sideSteps(p.RadialSegments)
	pts := make([]profilePoint, 0, steps+2+bevelSegs)

	rBack := BodyRadius(p, 0)
	pts = append(pts, profilePoint{R: rBack - chamfer, Z: zBack, Side: -1})

	z0 := zBack + chamfer
	z1 := zTop - bevel
	for i := 0; i <= steps; i++ {
		t := float32(i) / float32(steps)
		pts = append(pts, profilePoint{R: BodyRadius(p, t), Z: math.Lerp(z0, z1, t), Side: t})
	}

	rSide := BodyRadius(p, 1)
	for s := 1; s <= bevelSegs; s++ {
		theta := float32(s) / float32(bevelSegs) * math.Pi / 2
		sin, cos := math32.Sincos(theta)
		ease := math32.Pow(math32.Max(1-cos, 0), p.BevelCurve)
		pts = append(pts, profilePoint{R: rSide - bevel*ease, Z: z1 + bevel*sin, Side: -1})
	}

	last := pts[len(pts)-1]
	return profile{
		points:    pts,
		zBack:     zBack,
		zTop:      zTop,
		sideZ0:    z0,
		capRadius: last.R,
	}
}

// outward returns the 2D (radial, axial) outward normal of the profile at
// point i, from its neighbours.
func (pr profile) outward(i int) math.Vec2 {
	i0 := max(i-1, 0)
	i1 := min(i+1, len(pr.points)-1)
	dr := pr.points[i1].R - pr.points[i0].R
	dz := pr.points[i1].Z - pr.points[i0].Z
	n := math.Vec2{X: dz, Y: -dr}.Normalize()
	if n.X == 0 && n.Y == 0 {
		return math.Vec2{X: 1}
	}
	return n
}

// arcLengths returns the cumulative profile length at each point, normalized
// to [0, 1].
func (pr profile) arcLengths() []float32 {
	out := make([]float32, len(pr.points))
	var total float32
	for i := 1; i < len(pr.points); i++ {
		a, b := pr.points[i-1], pr.points[i]
		total += math32.Hypot(b.R-a.R, b.Z-a.Z)
		out[i] = total
	}
	if total > 0 {
		for i := range out {
			out[i] /= total
		}
	}
	return out
}
