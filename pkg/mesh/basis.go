package mesh

import "github.com/Faultbox/knobsmith/pkg/math"

// FaceNormal returns the unnormalized normal of triangle abc. Its length is
// twice the triangle area.
func FaceNormal(a, b, c math.Vec3) math.Vec3 {
	return b.Sub(a).Cross(c.Sub(a))
}

// VertexNormals returns area-weighted vertex normals for an indexed triangle
// list. Vertices with no usable face get fallback.
func VertexNormals(positions []math.Vec3, indices []uint32, fallback math.Vec3) []math.Vec3 {
	acc := make([]math.Vec3, len(positions))
	n := uint32(len(positions))
	for t := 0; t+2 < len(indices); t += 3 {
		a, b, c := indices[t], indices[t+1], indices[t+2]
		if a >= n || b >= n || c >= n {
			continue
		}
		fn := FaceNormal(positions[a], positions[b], positions[c])
		acc[a] = acc[a].Add(fn)
		acc[b] = acc[b].Add(fn)
		acc[c] = acc[c].Add(fn)
	}
	for i := range acc {
		acc[i] = acc[i].NormalizeOr(fallback)
	}
	return acc
}

// ProjectTangent projects ref onto the plane orthogonal to normal. When ref is
// (nearly) parallel to the normal it falls back to axis x normal, then to a
// fixed axis.
func ProjectTangent(normal, ref, axis math.Vec3) math.Vec3 {
	t := ref.Sub(normal.Scale(normal.Dot(ref)))
	if t.LengthSq() > 1e-10 {
		return t.Normalize()
	}
	t = axis.Cross(normal)
	if t.LengthSq() > 1e-10 {
		return t.Normalize()
	}
	for _, fixed := range [...]math.Vec3{math.AxisX, math.AxisY, math.AxisZ} {
		t = fixed.Sub(normal.Scale(normal.Dot(fixed)))
		if t.LengthSq() > 1e-6 {
			return t.Normalize()
		}
	}
	return math.AxisX
}

// Tangent builds a tangent with handedness sign from a reference direction.
func Tangent(normal, ref, axis math.Vec3, sign float32) math.Vec4 {
	return math.WithW(ProjectTangent(normal, ref, axis), math.Sign(sign))
}

// BlendBasis interpolates two (normal, tangent) frames and re-orthonormalizes
// the result. The second tangent is flipped onto the shortest arc first.
func BlendBasis(n0 math.Vec3, t0 math.Vec4, n1 math.Vec3, t1 math.Vec4, w float32) (math.Vec3, math.Vec4) {
	n := n0.Lerp(n1, w).NormalizeOr(n0)
	a, b := t0.XYZ(), t1.XYZ()
	if a.Dot(b) < 0 {
		b = b.Neg()
	}
	t := ProjectTangent(n, a.Lerp(b, w), math.AxisZ)
	return n, math.WithW(t, t0.W)
}
