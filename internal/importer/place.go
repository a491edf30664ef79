package importer

import (
	"sort"

	"github.com/chewxy/math32"
	"gonum.org/v1/gonum/stat"

	"github.com/Faultbox/knobsmith/internal/params"
	"github.com/Faultbox/knobsmith/pkg/math"
	"github.com/Faultbox/knobsmith/pkg/mesh"
)

// minExtent guards the fit scales against flat or point-like imports.
const minExtent = 1e-6

// Place reshapes prepared geometry into a collar around the knob: body/head
// deformation, fitting to the procedural ring radius and tube thickness,
// rotation, offset, mirroring and inflation. prep is not modified.
func Place(prep *Prepared, k params.Knob, c params.Collar) *mesh.Mesh {
	k.Clamp()
	c.Clamp()
	imp := c.Import

	pos := make([]math.Vec3, len(prep.Positions))
	copy(pos, prep.Positions)
	idx := make([]uint32, len(prep.Indices))
	copy(idx, prep.Indices)

	recenter(pos)
	deformBodyHead(pos, imp)
	recenter(pos)

	// Fit the median ring radius and the Z thickness.
	ringR := c.RingRadius(k.Radius)
	bodyR := k.Radius * c.BodyRadiusRatio
	medianR := medianPlanarRadius(pos)
	zExt := mesh.BoundsOf(pos).Size().Z

	xy := imp.Scale * math.SafeDiv(ringR, medianR, minExtent, 1)
	z := math.SafeDiv(imp.Scale*2*bodyR*c.BodyEllipseYScale, zExt, minExtent, xy)
	// Mirroring reflects the placed collar through the knob's axis planes,
	// so it also mirrors the offsets and elevation.
	mirror := math.Vec3{X: 1, Y: 1, Z: 1}
	if imp.Mirror.X {
		mirror.X = -1
	}
	if imp.Mirror.Y {
		mirror.Y = -1
	}
	if imp.Mirror.Z {
		mirror.Z = -1
	}
	if imp.Mirror.Count()%2 == 1 {
		for t := 0; t+2 < len(idx); t += 3 {
			idx[t+1], idx[t+2] = idx[t+2], idx[t+1]
		}
	}

	rot := math.QuatFromAxisAngle(math.AxisZ, c.OverallRotation+imp.Rotation)
	center := math.Vec3{
		X: imp.OffsetX * k.Radius,
		Y: imp.OffsetY * k.Radius,
		Z: c.ElevationRatio * 0.5 * k.Height,
	}
	for i, p := range pos {
		p = rot.Rotate(math.Vec3{X: p.X * xy, Y: p.Y * xy, Z: p.Z * z}).Add(center)
		pos[i] = math.Vec3{X: p.X * mirror.X, Y: p.Y * mirror.Y, Z: p.Z * mirror.Z}
	}
	center = math.Vec3{X: center.X * mirror.X, Y: center.Y * mirror.Y, Z: center.Z * mirror.Z}

	normals := mesh.VertexNormals(pos, idx, math.AxisZ)
	if inflate := imp.InflateRatio * k.Radius; inflate != 0 {
		for i := range pos {
			pos[i] = pos[i].Add(normals[i].Scale(inflate))
		}
		normals = mesh.VertexNormals(pos, idx, math.AxisZ)
	}

	return finish(pos, idx, normals, center)
}

// finish derives tangents and UVs around the ring center and assembles the
// mesh. U follows the angle about the ring center, V the normalized height.
func finish(pos []math.Vec3, idx []uint32, normals []math.Vec3, center math.Vec3) *mesh.Mesh {
	b := mesh.BoundsOf(pos)
	height := b.Max.Z - b.Min.Z

	m := &mesh.Mesh{
		Vertices: make([]mesh.Vertex, len(pos)),
		Indices:  idx,
	}
	for i, p := range pos {
		rel := p.Sub(center)
		angle := rel.XY().Angle()
		s, c := math32.Sincos(angle)

		v := math.SafeDiv(p.Z-b.Min.Z, height, minExtent, 0.5)
		m.Vertices[i] = mesh.Vertex{
			Position: p,
			Normal:   normals[i],
			Tangent:  mesh.Tangent(normals[i], math.Vec3{X: -s, Y: c}, math.AxisZ, 1),
			UV:       math.Vec2{X: math.WrapUnit(angle / math.Tau), Y: v},
		}
		if r := p.XY().Length(); r > m.ReferenceRadius {
			m.ReferenceRadius = r
		}
	}
	return m
}

// recenter moves the bounding box center to the origin.
func recenter(pos []math.Vec3) {
	c := mesh.BoundsOf(pos).Center()
	for i := range pos {
		pos[i] = pos[i].Sub(c)
	}
}

func medianPlanarRadius(pos []math.Vec3) float32 {
	if len(pos) == 0 {
		return 0
	}
	radii := make([]float64, len(pos))
	for i, p := range pos {
		radii[i] = float64(p.XY().Length())
	}
	sort.Float64s(radii)
	return float32(stat.Quantile(0.5, stat.Empirical, radii, nil))
}
