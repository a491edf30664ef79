// Package mesh holds the render mesh data shared by the knob, collar and
// import builders, plus the topology and shading-basis helpers they use.
package mesh

import "github.com/Faultbox/knobsmith/pkg/math"

// Vertex is a render vertex. Tangent.W is the bitangent handedness sign.
type Vertex struct {
	Position math.Vec3
	Normal   math.Vec3
	Tangent  math.Vec4
	UV       math.Vec2
}

// Mesh is an indexed triangle list with outward winding.
// Builders never mutate a mesh after returning it.
type Mesh struct {
	Vertices []Vertex
	Indices  []uint32
	// ReferenceRadius is the bounding scale used for camera framing.
	ReferenceRadius float32
}

// Bounds holds an axis-aligned bounding box.
type Bounds struct {
	Min math.Vec3
	Max math.Vec3
}

// Size returns the box extents.
func (b Bounds) Size() math.Vec3 {
	return b.Max.Sub(b.Min)
}

// Center returns the box midpoint.
func (b Bounds) Center() math.Vec3 {
	return b.Min.Add(b.Max).Scale(0.5)
}

// EmptyBounds returns an inverted box ready for Extend.
func EmptyBounds() Bounds {
	return Bounds{
		Min: math.Vec3{X: 1e30, Y: 1e30, Z: 1e30},
		Max: math.Vec3{X: -1e30, Y: -1e30, Z: -1e30},
	}
}

// Extend grows the box to contain p.
func (b *Bounds) Extend(p math.Vec3) {
	if p.X < b.Min.X {
		b.Min.X = p.X
	}
	if p.Y < b.Min.Y {
		b.Min.Y = p.Y
	}
	if p.Z < b.Min.Z {
		b.Min.Z = p.Z
	}
	if p.X > b.Max.X {
		b.Max.X = p.X
	}
	if p.Y > b.Max.Y {
		b.Max.Y = p.Y
	}
	if p.Z > b.Max.Z {
		b.Max.Z = p.Z
	}
}

// BoundsOf returns the bounding box of a point set.
func BoundsOf(points []math.Vec3) Bounds {
	b := EmptyBounds()
	for _, p := range points {
		b.Extend(p)
	}
	return b
}
