package importer

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"testing"

	"github.com/chewxy/math32"
	"github.com/hschendel/stl"

	"github.com/Faultbox/knobsmith/pkg/math"
)

// part is an indexed triangle list used to build fixtures.
type part struct {
	positions []math.Vec3
	indices   []uint32
}

// torus returns an outward-wound torus around +Z centered at the origin.
func torus(major, minor float32, segments, sides int) part {
	var p part
	for i := 0; i < segments; i++ {
		theta := math.Tau * float32(i) / float32(segments)
		st, ct := math32.Sincos(theta)
		for j := 0; j < sides; j++ {
			phi := math.Tau * float32(j) / float32(sides)
			sp, cp := math32.Sincos(phi)
			r := major + minor*cp
			p.positions = append(p.positions, math.Vec3{X: r * ct, Y: r * st, Z: minor * sp})
		}
	}
	at := func(i, j int) uint32 {
		return uint32((i%segments)*sides + j%sides)
	}
	for i := 0; i < segments; i++ {
		for j := 0; j < sides; j++ {
			a, b, c, d := at(i, j), at(i+1, j), at(i+1, j+1), at(i, j+1)
			p.indices = append(p.indices, a, b, c, a, c, d)
		}
	}
	return p
}

// sphere returns an outward-wound latitude/longitude sphere. Pole rows are
// separate vertices, so the pole triangles collapse once welded.
func sphere(center math.Vec3, radius float32, slices, stacks int) part {
	var p part
	for j := 0; j <= stacks; j++ {
		phi := -math.Pi/2 + math.Pi*float32(j)/float32(stacks)
		sp, cp := math32.Sincos(phi)
		for i := 0; i < slices; i++ {
			theta := math.Tau * float32(i) / float32(slices)
			st, ct := math32.Sincos(theta)
			p.positions = append(p.positions, center.Add(math.Vec3{X: cp * ct, Y: cp * st, Z: sp}.Scale(radius)))
		}
	}
	at := func(i, j int) uint32 {
		return uint32(j*slices + i%slices)
	}
	for j := 0; j < stacks; j++ {
		for i := 0; i < slices; i++ {
			a, b, c, d := at(i, j), at(i+1, j), at(i+1, j+1), at(i, j+1)
			p.indices = append(p.indices, a, b, c, a, c, d)
		}
	}
	return p
}

// merge concatenates parts into one indexed list.
func merge(parts ...part) part {
	var out part
	for _, p := range parts {
		base := uint32(len(out.positions))
		out.positions = append(out.positions, p.positions...)
		for _, i := range p.indices {
			out.indices = append(out.indices, base+i)
		}
	}
	return out
}

// transform returns a copy of p with f applied to every position.
func (p part) transform(f func(math.Vec3) math.Vec3) part {
	out := part{
		positions: make([]math.Vec3, len(p.positions)),
		indices:   append([]uint32(nil), p.indices...),
	}
	for i, v := range p.positions {
		out.positions[i] = f(v)
	}
	return out
}

// stlBytes encodes parts as a binary STL triangle soup.
func stlBytes(t *testing.T, parts ...part) []byte {
	t.Helper()
	m := merge(parts...)
	solid := &stl.Solid{Name: "collar"}
	for k := 0; k+2 < len(m.indices); k += 3 {
		var tri stl.Triangle
		for v := 0; v < 3; v++ {
			p := m.positions[m.indices[k+v]]
			tri.Vertices[v] = stl.Vec3{p.X, p.Y, p.Z}
		}
		solid.Triangles = append(solid.Triangles, tri)
	}
	var buf bytes.Buffer
	if err := solid.WriteAll(&buf); err != nil {
		t.Fatalf("writing STL fixture: %v", err)
	}
	return buf.Bytes()
}

// glbBytes encodes p as a single non-indexed triangle primitive, so every
// triangle carries its own three vertices.
func glbBytes(t *testing.T, p part) []byte {
	t.Helper()
	var bin bytes.Buffer
	for _, i := range p.indices {
		v := p.positions[i]
		binary.Write(&bin, binary.LittleEndian, [3]float32{v.X, v.Y, v.Z})
	}
	doc := map[string]any{
		"asset":       map[string]any{"version": "2.0"},
		"buffers":     []any{map[string]any{"byteLength": bin.Len()}},
		"bufferViews": []any{map[string]any{"buffer": 0, "byteOffset": 0, "byteLength": bin.Len()}},
		"accessors": []any{map[string]any{
			"bufferView": 0, "componentType": 5126, "count": len(p.indices), "type": "VEC3",
		}},
		"meshes": []any{map[string]any{
			"primitives": []any{map[string]any{"attributes": map[string]any{"POSITION": 0}}},
		}},
	}
	js, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("encoding glTF JSON: %v", err)
	}
	for len(js)%4 != 0 {
		js = append(js, ' ')
	}
	payload := bin.Bytes()
	for len(payload)%4 != 0 {
		payload = append(payload, 0)
	}

	var out bytes.Buffer
	total := 12 + 8 + len(js) + 8 + len(payload)
	binary.Write(&out, binary.LittleEndian, [3]uint32{0x46546C67, 2, uint32(total)})
	binary.Write(&out, binary.LittleEndian, [2]uint32{uint32(len(js)), 0x4E4F534A})
	out.Write(js)
	binary.Write(&out, binary.LittleEndian, [2]uint32{uint32(len(payload)), 0x004E4942})
	out.Write(payload)
	return out.Bytes()
}

// signedVolume6 returns six times the enclosed volume about the origin.
func signedVolume6(positions []math.Vec3, indices []uint32) float64 {
	var v float64
	for k := 0; k+2 < len(indices); k += 3 {
		v += signedVolume(positions[indices[k]], positions[indices[k+1]], positions[indices[k+2]], [3]float64{})
	}
	return v
}
