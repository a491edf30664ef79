package main

import (
	"github.com/fogleman/fauxgl"
	"github.com/hschendel/stl"

	"github.com/Faultbox/knobsmith/pkg/mesh"
)

// exportStats describes a written STL file.
type exportStats struct {
	Triangles int
	Skipped   int // Degenerate triangles left out of the file
	Size      fauxgl.Vector
}

// toFauxgl converts a render mesh to a fauxgl triangle mesh, dropping
// triangles that repeat a vertex index.
func toFauxgl(m *mesh.Mesh) (*fauxgl.Mesh, int) {
	triangles := make([]*fauxgl.Triangle, 0, m.TriangleCount())
	skipped := 0
	for t := 0; t+2 < len(m.Indices); t += 3 {
		a, b, c := m.Indices[t], m.Indices[t+1], m.Indices[t+2]
		if mesh.IsDegenerate(a, b, c) {
			skipped++
			continue
		}
		triangles = append(triangles, fauxgl.NewTriangleForPoints(
			vector(m.Vertices[a]), vector(m.Vertices[b]), vector(m.Vertices[c]),
		))
	}
	return fauxgl.NewTriangleMesh(triangles), skipped
}

func vector(v mesh.Vertex) fauxgl.Vector {
	p := v.Position
	return fauxgl.V(float64(p.X), float64(p.Y), float64(p.Z))
}

// writeSTL writes m as binary STL through fauxgl, or as ASCII STL.
func writeSTL(m *mesh.Mesh, path string, ascii bool) (exportStats, error) {
	fm, skipped := toFauxgl(m)
	stats := exportStats{
		Triangles: len(fm.Triangles),
		Skipped:   skipped,
		Size:      fm.BoundingBox().Size(),
	}
	if !ascii {
		return stats, fm.SaveSTL(path)
	}

	solid := &stl.Solid{Name: "knobgen", IsAscii: true}
	solid.Triangles = make([]stl.Triangle, 0, len(fm.Triangles))
	for _, tri := range fm.Triangles {
		n := tri.Normal()
		solid.Triangles = append(solid.Triangles, stl.Triangle{
			Normal: stl.Vec3{float32(n.X), float32(n.Y), float32(n.Z)},
			Vertices: [3]stl.Vec3{
				stlVec(tri.V1.Position),
				stlVec(tri.V2.Position),
				stlVec(tri.V3.Position),
			},
		})
	}
	return stats, solid.WriteFile(path)
}

func stlVec(v fauxgl.Vector) stl.Vec3 {
	return stl.Vec3{float32(v.X), float32(v.Y), float32(v.Z)}
}
