// Package collar builds the procedural collar: an elliptical tube swept
// around a circle concentric with the knob, with an authored head blended in
// at the bite angle.
//
// The ring carries exactly the pure-body basis at the two weld rings where
// the head meets the body, so the seam never shows in shading.
package collar

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/knobsmith/internal/params"
	"github.com/Faultbox/knobsmith/pkg/math"
	"github.com/Faultbox/knobsmith/pkg/mesh"
)

// sweep holds the closed ring grid during a build. Rings and slices wrap;
// emission duplicates the first ring and slice for texture seams.
type sweep struct {
	knob   params.Knob
	collar params.Collar

	rings, slices int
	ringRadius    float32
	bodyRadius    float32
	elevation     float32
	bite          float32 // Absolute bite angle
	start         float32 // Angle of ring 0

	cellsAlong, cellsAround int

	angle  []float32
	center []math.Vec3
	frameT []math.Vec3
	frameN []math.Vec3
	radius []float32

	pos     []math.Vec3
	normal  []math.Vec3
	tangent []math.Vec4

	win window
}

func newSweep(k params.Knob, c params.Collar) *sweep {
	k.Clamp()
	c.Clamp()

	s := &sweep{
		knob:       k,
		collar:     c,
		rings:      c.PathSegments,
		slices:     c.CrossSegments,
		ringRadius: c.RingRadius(k.Radius),
		bodyRadius: k.Radius * c.BodyRadiusRatio,
		elevation:  c.ElevationRatio * k.Height / 2,
		bite:       math.WrapAngle(c.BiteAngle + c.OverallRotation),
	}
	seam := c.UVSeamOffset
	if c.UVSeamFollowBite {
		seam = c.BiteAngle
	}
	s.start = seam + c.OverallRotation

	// Cells roughly square on the surface, even along the ring so the
	// staggered rows close up.
	s.cellsAround = max(3, min(reliefCellsAround, s.slices/3))
	along := math32.Min(float32(s.cellsAround)*s.ringRadius/s.bodyRadius, float32(s.rings)/3)
	s.cellsAlong = 2 * max(2, int(math32.Floor(along/2+0.5)))

	n := s.rings * s.slices
	s.angle = make([]float32, s.rings)
	s.center = make([]math.Vec3, s.rings)
	s.frameT = make([]math.Vec3, s.rings)
	s.frameN = make([]math.Vec3, s.rings)
	s.radius = make([]float32, s.rings)
	s.pos = make([]math.Vec3, n)
	s.normal = make([]math.Vec3, n)
	s.tangent = make([]math.Vec4, n)
	s.win = newWindow(s.rings, s.biteRing())
	return s
}

func (s *sweep) ringAngle(i int) float32 {
	return s.start + float32(i)/float32(s.rings)*math.Tau
}

func (s *sweep) sliceAngle(j int) float32 {
	return float32(j) / float32(s.slices) * math.Tau
}

// biteRing returns the ring closest to the bite angle.
func (s *sweep) biteRing() int {
	step := math.Tau / float32(s.rings)
	i := int(math32.Floor(math.WrapAngle(s.bite-s.start)/step + 0.5))
	return s.wrapRing(i)
}

func (s *sweep) wrapRing(i int) int {
	return (i%s.rings + s.rings) % s.rings
}

// idx returns the flat index of (ring, slice), wrapping both.
func (s *sweep) idx(i, j int) int {
	return s.wrapRing(i)*s.slices + (j%s.slices+s.slices)%s.slices
}

// Build generates the collar mesh for knob k. Parameters are clamped to their
// documented ranges first; Build never fails.
func Build(k params.Knob, c params.Collar) *mesh.Mesh {
	s := newSweep(k, c)
	s.sweepBody()
	if s.win.enabled() {
		body := s.snapshot()
		s.applyHead(body)
		s.deform(body)
	}
	return s.emit()
}

// basis is a saved copy of the pure-body positions and basis.
type basis struct {
	pos     []math.Vec3
	normal  []math.Vec3
	tangent []math.Vec4
}

func (s *sweep) snapshot() basis {
	return basis{
		pos:     append([]math.Vec3(nil), s.pos...),
		normal:  append([]math.Vec3(nil), s.normal...),
		tangent: append([]math.Vec4(nil), s.tangent...),
	}
}

// emit writes the grid with a duplicated seam ring and slice.
func (s *sweep) emit() *mesh.Mesh {
	cols := s.slices + 1
	m := &mesh.Mesh{
		Vertices: make([]mesh.Vertex, 0, (s.rings+1)*cols),
		Indices:  make([]uint32, 0, s.rings*s.slices*6),
	}
	var reach float32
	for i := 0; i <= s.rings; i++ {
		for j := 0; j <= s.slices; j++ {
			k := s.idx(i, j)
			p := s.pos[k]
			reach = math32.Max(reach, math32.Hypot(p.X, p.Y))
			m.Vertices = append(m.Vertices, mesh.Vertex{
				Position: p,
				Normal:   s.normal[k],
				Tangent:  s.tangent[k],
				UV: math.Vec2{
					X: float32(i) / float32(s.rings),
					Y: float32(j) / float32(s.slices),
				},
			})
		}
	}
	for i := 0; i < s.rings; i++ {
		for j := 0; j < s.slices; j++ {
			a := uint32(i*cols + j)
			b := uint32((i+1)*cols + j)
			c := a + 1
			d := b + 1
			m.Indices = append(m.Indices, a, b, c, b, d, c)
		}
	}
	m.ReferenceRadius = reach
	return m
}
