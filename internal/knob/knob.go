// Package knob builds the revolved knob body: a meridian profile swept around
// +Z with a knurled side, a textured front cap carrying the indicator, and a
// flat back cap.
package knob

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/knobsmith/internal/params"
	"github.com/Faultbox/knobsmith/pkg/math"
	"github.com/Faultbox/knobsmith/pkg/mesh"
)

const (
	minCapRings = 8
	maxCapRings = 96
)

// BodyLayout describes the vertex ranges of a built body, in emission order:
// side rings, front cap rings plus centre, back cap ring plus centre, then
// indicator walls.
type BodyLayout struct {
	SideRings           int
	Segments            int
	FrontCapRings       int
	FrontCapVertexCount int
	BackCapVertexCount  int
	WallVertexCount     int
}

// FrontCapStart returns the index of the first front cap vertex.
func (l BodyLayout) FrontCapStart() int { return l.SideRings * l.Segments }

// BackCapStart returns the index of the first back cap vertex.
func (l BodyLayout) BackCapStart() int { return l.FrontCapStart() + l.FrontCapVertexCount }

// WallStart returns the index of the first indicator wall vertex.
func (l BodyLayout) WallStart() int { return l.BackCapStart() + l.BackCapVertexCount }

// VertexCount returns the total number of vertices.
func (l BodyLayout) VertexCount() int { return l.WallStart() + l.WallVertexCount }

func capRingCount(segments int) int {
	return max(minCapRings, min(segments/2, maxCapRings))
}

// Layout returns the vertex layout Build produces for p.
func Layout(p params.Knob) BodyLayout {
	p.Clamp()
	prof := buildProfile(p)
	return layoutFor(p, prof, newCapSurface(p, prof.capRadius))
}

func layoutFor(p params.Knob, prof profile, surf capSurface) BodyLayout {
	segs := p.RadialSegments
	rings := capRingCount(segs)
	l := BodyLayout{
		SideRings:           len(prof.points),
		Segments:            segs,
		FrontCapRings:       rings,
		FrontCapVertexCount: rings*segs + 1,
		BackCapVertexCount:  segs + 1,
	}
	if wallsEnabled(p) && surf.indicator.enabled() {
		l.WallVertexCount = 4 * len(surf.indicator.contour())
	}
	return l
}

func wallsEnabled(p params.Knob) bool {
	ind := p.Indicator
	return ind.CadWalls && ind.Profile == params.ProfileStraight && ind.Enabled()
}

// Build generates the knob body mesh. Parameters are clamped to their
// documented ranges first; Build never fails.
func Build(p params.Knob) *mesh.Mesh {
	p.Clamp()
	prof := buildProfile(p)
	surf := newCapSurface(p, prof.capRadius)
	lay := layoutFor(p, prof, surf)

	b := &builder{
		knob: p,
		prof: prof,
		surf: surf,
		lay:  lay,
		m: &mesh.Mesh{
			Vertices:        make([]mesh.Vertex, 0, lay.VertexCount()),
			ReferenceRadius: p.Radius,
		},
	}
	b.angles()
	b.side()
	b.frontCap()
	b.backCap()
	if lay.WallVertexCount > 0 {
		b.walls()
	}
	return b.m
}

type builder struct {
	knob params.Knob
	prof profile
	surf capSurface
	lay  BodyLayout
	m    *mesh.Mesh

	sin, cos []float32
	sidePos  []math.Vec3
}

func (b *builder) angles() {
	segs := b.lay.Segments
	b.sin = make([]float32, segs)
	b.cos = make([]float32, segs)
	for j := 0; j < segs; j++ {
		b.sin[j], b.cos[j] = math32.Sincos(b.theta(j))
	}
}

func (b *builder) theta(j int) float32 {
	return float32(j) / float32(b.lay.Segments) * math.Tau
}

func (b *builder) radial(j int) math.Vec3 {
	return math.Vec3{X: b.cos[j], Y: b.sin[j]}
}

// wrap maps a possibly out-of-range segment index onto [0, segs).
func (b *builder) wrap(j int) int {
	segs := b.lay.Segments
	return (j%segs + segs) % segs
}

// quadStrip joins two rings of equal size with outward-facing triangles.
func (b *builder) quadStrip(rowA, rowB int) {
	segs := b.lay.Segments
	for j := 0; j < segs; j++ {
		jn := (j + 1) % segs
		a := uint32(rowA + j)
		bb := uint32(rowA + jn)
		c := uint32(rowB + j)
		d := uint32(rowB + jn)
		b.m.Indices = append(b.m.Indices, a, bb, c, bb, d, c)
	}
}

func (b *builder) side() {
	segs := b.lay.Segments
	rings := b.lay.SideRings
	pts := b.prof.points
	floor := b.knob.Radius * minBodyRadiusRatio

	b.sidePos = make([]math.Vec3, rings*segs)
	for i, pt := range pts {
		for j := 0; j < segs; j++ {
			r := pt.R
			if pt.Side >= 0 {
				r -= GripOffset(b.knob.Grip, b.theta(j), pt.Side, pt.Z-b.prof.sideZ0, pt.R)
				r = math32.Max(r, floor)
			}
			b.sidePos[i*segs+j] = math.Vec3{X: r * b.cos[j], Y: r * b.sin[j], Z: pt.Z}
		}
	}

	at := func(i, j int) math.Vec3 { return b.sidePos[i*segs+b.wrap(j)] }
	arc := b.prof.arcLengths()
	for i := 0; i < rings; i++ {
		i0, i1 := max(i-1, 0), min(i+1, rings-1)
		out := b.prof.outward(i)
		for j := 0; j < segs; j++ {
			dAxial := at(i1, j).Sub(at(i0, j))
			dAngle := at(i, j+1).Sub(at(i, j-1))
			radial := b.radial(j)
			expected := math.Vec3{X: out.X * radial.X, Y: out.X * radial.Y, Z: out.Y}

			n := dAngle.Cross(dAxial)
			if n.Dot(expected) < 0 {
				n = n.Neg()
			}
			n = n.NormalizeOr(expected)

			b.m.Vertices = append(b.m.Vertices, mesh.Vertex{
				Position: at(i, j),
				Normal:   n,
				Tangent:  mesh.Tangent(n, radial, math.AxisZ, 1),
				UV:       math.Vec2{X: foldedU(j, segs), Y: arc[i]},
			})
		}
	}

	for i := 0; i+1 < rings; i++ {
		b.quadStrip(i*segs, (i+1)*segs)
	}
}

// foldedU maps a segment index to a texture coordinate that runs 0..1..0
// around the body, so the side has no texture seam.
func foldedU(j, segs int) float32 {
	return 1 - math32.Abs(1-2*float32(j)/float32(segs))
}

func (b *builder) capUV(p math.Vec3, mirror float32) math.Vec2 {
	r := b.surf.radius
	return math.Vec2{X: 0.5 + 0.5*mirror*p.X/r, Y: 0.5 + 0.5*p.Y/r}
}

func (b *builder) frontCap() {
	segs := b.lay.Segments
	rings := b.lay.FrontCapRings
	start := b.lay.FrontCapStart()
	top := b.prof.zTop
	lastSide := (b.lay.SideRings - 1) * segs

	pos := make([]math.Vec3, rings*segs+1)
	for j := 0; j < segs; j++ {
		pos[j] = b.sidePos[lastSide+j]
	}
	for k := 1; k < rings; k++ {
		rho := 1 - float32(k)/float32(rings)
		r := rho * b.surf.radius
		for j := 0; j < segs; j++ {
			z := top + b.surf.at(rho, b.theta(j))
			pos[k*segs+j] = math.Vec3{X: r * b.cos[j], Y: r * b.sin[j], Z: z}
		}
	}
	center := rings * segs
	pos[center] = math.Vec3{Z: top + b.surf.at(0, 0)}

	at := func(k, j int) math.Vec3 {
		if k >= rings {
			return pos[center]
		}
		return pos[k*segs+b.wrap(j)]
	}

	var centerNormal math.Vec3
	for k := 0; k < rings; k++ {
		for j := 0; j < segs; j++ {
			outer := at(max(k-1, 0), j)
			inner := at(k+1, j)
			n := outer.Sub(inner).Cross(at(k, j+1).Sub(at(k, j-1)))
			if n.Z < 0 {
				n = n.Neg()
			}
			n = n.NormalizeOr(math.AxisZ)
			if k == rings-1 {
				centerNormal = centerNormal.Add(n)
			}
			p := at(k, j)
			b.m.Vertices = append(b.m.Vertices, mesh.Vertex{
				Position: p,
				Normal:   n,
				Tangent:  mesh.Tangent(n, b.radial(j), math.AxisZ, 1),
				UV:       b.capUV(p, 1),
			})
		}
	}
	centerNormal = centerNormal.NormalizeOr(math.AxisZ)
	b.m.Vertices = append(b.m.Vertices, mesh.Vertex{
		Position: pos[center],
		Normal:   centerNormal,
		Tangent:  mesh.Tangent(centerNormal, math.AxisX, math.AxisZ, 1),
		UV:       b.capUV(pos[center], 1),
	})

	for k := 0; k+1 < rings; k++ {
		b.quadStrip(start+k*segs, start+(k+1)*segs)
	}
	inner := start + (rings-1)*segs
	c := uint32(start + center)
	for j := 0; j < segs; j++ {
		b.m.Indices = append(b.m.Indices, uint32(inner+j), uint32(inner+(j+1)%segs), c)
	}
}

func (b *builder) backCap() {
	segs := b.lay.Segments
	start := b.lay.BackCapStart()
	down := math.AxisZ.Neg()

	for j := 0; j < segs; j++ {
		p := b.sidePos[j]
		b.m.Vertices = append(b.m.Vertices, mesh.Vertex{
			Position: p,
			Normal:   down,
			Tangent:  mesh.Tangent(down, b.radial(j), math.AxisZ, 1),
			UV:       b.capUV(p, -1),
		})
	}
	center := math.Vec3{Z: b.prof.zBack}
	b.m.Vertices = append(b.m.Vertices, mesh.Vertex{
		Position: center,
		Normal:   down,
		Tangent:  mesh.Tangent(down, math.AxisX, math.AxisZ, 1),
		UV:       b.capUV(center, -1),
	})

	c := uint32(start + segs)
	for j := 0; j < segs; j++ {
		b.m.Indices = append(b.m.Indices, uint32(start+j), c, uint32(start+(j+1)%segs))
	}
}

// walls appends vertical quads along the indicator outline so a straight
// profile reads as a machined step.
func (b *builder) walls() {
	contour := b.surf.indicator.contour()
	top := b.prof.zTop
	sign := b.knob.Indicator.Relief.Sign()

	var perimeter float32
	n := len(contour)
	for i := range contour {
		perimeter += contour[(i+1)%n].Distance(contour[i])
	}
	if perimeter <= 0 {
		perimeter = 1
	}

	var along float32
	for i := range contour {
		p0, p1 := contour[i], contour[(i+1)%n]
		edge := p1.Sub(p0)
		out := edge.Perp().Normalize().Scale(sign)
		expected := math.Vec3{X: out.X, Y: out.Y}.NormalizeOr(math.AxisX)
		dir := math.Vec3{X: edge.X, Y: edge.Y}.NormalizeOr(math.AxisY)

		base0, h0 := b.surf.atXY(p0.X, p0.Y)
		base1, h1 := b.surf.atXY(p1.X, p1.Y)
		u0 := along / perimeter
		along += edge.Length()
		u1 := along / perimeter

		first := uint32(len(b.m.Vertices))
		for _, v := range [4]struct {
			p  math.Vec2
			z  float32
			uv math.Vec2
		}{
			{p0, top + base0, math.Vec2{X: u0, Y: 0}},
			{p1, top + base1, math.Vec2{X: u1, Y: 0}},
			{p0, top + base0 + h0, math.Vec2{X: u0, Y: 1}},
			{p1, top + base1 + h1, math.Vec2{X: u1, Y: 1}},
		} {
			b.m.Vertices = append(b.m.Vertices, mesh.Vertex{
				Position: math.Vec3{X: v.p.X, Y: v.p.Y, Z: v.z},
				Normal:   expected,
				Tangent:  math.WithW(dir, 1),
				UV:       v.uv,
			})
		}

		v0, v1, v2, v3 := first, first+1, first+2, first+3
		pos := func(i uint32) math.Vec3 { return b.m.Vertices[i].Position }
		face := mesh.FaceNormal(pos(v0), pos(v1), pos(v2))
		if face.Dot(expected) >= 0 {
			b.m.Indices = append(b.m.Indices, v0, v1, v2, v1, v3, v2)
		} else {
			b.m.Indices = append(b.m.Indices, v0, v2, v1, v1, v2, v3)
		}
	}
}
