package formats

import (
	"bytes"
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// makeGLB assembles a GLB container from a JSON document and an optional BIN
// payload, padding chunks to four bytes.
func makeGLB(doc string, bin []byte) []byte {
	jsonChunk := []byte(doc)
	for len(jsonChunk)%4 != 0 {
		jsonChunk = append(jsonChunk, ' ')
	}
	binChunk := append([]byte{}, bin...)
	for len(binChunk)%4 != 0 {
		binChunk = append(binChunk, 0)
	}

	total := glbHeaderSize + 8 + len(jsonChunk)
	if bin != nil {
		total += 8 + len(binChunk)
	}

	buf := new(bytes.Buffer)
	binary.Write(buf, binary.LittleEndian, uint32(glbMagic))
	binary.Write(buf, binary.LittleEndian, uint32(2))
	binary.Write(buf, binary.LittleEndian, uint32(total))

	binary.Write(buf, binary.LittleEndian, uint32(len(jsonChunk)))
	binary.Write(buf, binary.LittleEndian, uint32(glbChunkJSON))
	buf.Write(jsonChunk)

	if bin != nil {
		binary.Write(buf, binary.LittleEndian, uint32(len(binChunk)))
		binary.Write(buf, binary.LittleEndian, uint32(glbChunkBIN))
		buf.Write(binChunk)
	}
	return buf.Bytes()
}

// triangleBin is one triangle: 3 float32 VEC3 positions (36 bytes) followed by
// 3 uint16 indices (6 bytes).
func triangleBin() []byte {
	buf := new(bytes.Buffer)
	binary.Write(buf, binary.LittleEndian, [9]float32{0, 0, 0, 1, 0, 0, 0, 1, 0})
	binary.Write(buf, binary.LittleEndian, [3]uint16{0, 1, 2})
	return buf.Bytes()
}

const triangleDoc = `{
  "meshes": [{"primitives": [{"attributes": {"POSITION": 0}, "indices": 1}]}],
  "accessors": [
    {"bufferView": 0, "componentType": 5126, "count": 3, "type": "VEC3"},
    {"bufferView": 1, "componentType": 5123, "count": 3, "type": "SCALAR"}
  ],
  "bufferViews": [
    {"buffer": 0, "byteOffset": 0, "byteLength": 36},
    {"buffer": 0, "byteOffset": 36, "byteLength": 6}
  ]
}`

func TestParseGLB_IndexedTriangle(t *testing.T) {
	glb, err := ParseGLB(makeGLB(triangleDoc, triangleBin()))
	if err != nil {
		t.Fatalf("ParseGLB failed: %v", err)
	}
	if glb.Version != 2 {
		t.Errorf("expected version 2, got %d", glb.Version)
	}
	if glb.PrimitiveCount != 1 || glb.TriangleCount() != 1 {
		t.Errorf("expected 1 primitive with 1 triangle, got %d/%d", glb.PrimitiveCount, glb.TriangleCount())
	}
	if len(glb.Positions) != 3 || glb.Positions[1].X != 1 || glb.Positions[2].Y != 1 {
		t.Errorf("unexpected positions: %+v", glb.Positions)
	}
}

func TestParseGLB_NonIndexedAndConcatenated(t *testing.T) {
	doc := `{
  "meshes": [
    {"primitives": [{"attributes": {"POSITION": 0}}]},
    {"primitives": [
      {"attributes": {"POSITION": 0}, "indices": 1, "mode": 4},
      {"attributes": {"POSITION": 0}, "mode": 1}
    ]}
  ],
  "accessors": [
    {"bufferView": 0, "componentType": 5126, "count": 3, "type": "VEC3"},
    {"bufferView": 1, "componentType": 5123, "count": 3, "type": "SCALAR"}
  ],
  "bufferViews": [
    {"buffer": 0, "byteOffset": 0, "byteLength": 36},
    {"buffer": 0, "byteOffset": 36, "byteLength": 6}
  ]
}`
	glb, err := ParseGLB(makeGLB(doc, triangleBin()))
	if err != nil {
		t.Fatalf("ParseGLB failed: %v", err)
	}
	// The line primitive (mode 1) is skipped.
	if glb.PrimitiveCount != 2 {
		t.Errorf("expected 2 triangle primitives, got %d", glb.PrimitiveCount)
	}
	want := []uint32{0, 1, 2, 3, 4, 5}
	if len(glb.Indices) != len(want) {
		t.Fatalf("expected %d indices, got %d", len(want), len(glb.Indices))
	}
	for i := range want {
		if glb.Indices[i] != want[i] {
			t.Errorf("index %d: expected %d, got %d", i, want[i], glb.Indices[i])
		}
	}
}

func TestParseGLB_InterleavedStride(t *testing.T) {
	// Position + normal interleaved, 24-byte stride, uint8 indices.
	buf := new(bytes.Buffer)
	for _, p := range [][3]float32{{0, 0, 0}, {2, 0, 0}, {0, 2, 0}} {
		binary.Write(buf, binary.LittleEndian, p)
		binary.Write(buf, binary.LittleEndian, [3]float32{0, 0, 1})
	}
	buf.Write([]byte{0, 1, 2})

	doc := `{
  "meshes": [{"primitives": [{"attributes": {"POSITION": 0}, "indices": 1}]}],
  "accessors": [
    {"bufferView": 0, "componentType": 5126, "count": 3, "type": "VEC3"},
    {"bufferView": 1, "componentType": 5121, "count": 3, "type": "SCALAR"}
  ],
  "bufferViews": [
    {"buffer": 0, "byteOffset": 0, "byteLength": 72, "byteStride": 24},
    {"buffer": 0, "byteOffset": 72, "byteLength": 3}
  ]
}`
	glb, err := ParseGLB(makeGLB(doc, buf.Bytes()))
	if err != nil {
		t.Fatalf("ParseGLB failed: %v", err)
	}
	if glb.Positions[1].X != 2 || glb.Positions[2].Y != 2 || glb.Positions[1].Z != 0 {
		t.Errorf("stride not honoured: %+v", glb.Positions)
	}
}

func TestParseGLB_Errors(t *testing.T) {
	valid := makeGLB(triangleDoc, triangleBin())

	badMagic := append([]byte{}, valid...)
	copy(badMagic, "gltf")

	badVersion := append([]byte{}, valid...)
	binary.LittleEndian.PutUint32(badVersion[4:], 1)

	overlong := append([]byte{}, valid...)
	binary.LittleEndian.PutUint32(overlong[8:], uint32(len(valid)+4))

	truncatedChunk := append([]byte{}, valid...)
	binary.LittleEndian.PutUint32(truncatedChunk[12:], uint32(len(valid)))

	strayBytes := append(append([]byte{}, valid...), 0, 0, 0, 0)
	binary.LittleEndian.PutUint32(strayBytes[8:], uint32(len(strayBytes)))

	replace := func(from, to string) []byte {
		doc := bytes.Replace([]byte(triangleDoc), []byte(from), []byte(to), 1)
		return makeGLB(string(doc), triangleBin())
	}
	replaceAll := func(pairs ...[2]string) []byte {
		doc := []byte(triangleDoc)
		for _, p := range pairs {
			doc = bytes.Replace(doc, []byte(p[0]), []byte(p[1]), 1)
		}
		return makeGLB(string(doc), triangleBin())
	}

	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"short", valid[:8], ErrTruncatedGLB},
		{"bad magic", badMagic, ErrInvalidGLBMagic},
		{"version 1", badVersion, ErrUnsupportedGLBVersion},
		{"declared length too long", overlong, ErrGLBLength},
		{"chunk overruns", truncatedChunk, ErrTruncatedGLB},
		{"partial chunk header", strayBytes, ErrTruncatedGLB},
		{"invalid json", makeGLB("{not json", triangleBin()), ErrInvalidGLBJSON},
		{"missing bin", makeGLB(triangleDoc, nil), ErrMissingGLBChunk},
		{"buffer 1", replace(`{"buffer": 0, "byteOffset": 0,`, `{"buffer": 1, "byteOffset": 0,`), ErrUnsupportedAccessor},
		{"sparse", replace(`"count": 3, "type": "VEC3"`, `"count": 3, "type": "VEC3", "sparse": {"count": 1}`), ErrUnsupportedAccessor},
		{"no bufferView", replace(`{"bufferView": 0, `, `{`), ErrUnsupportedAccessor},
		{"vec2 positions", replace(`"type": "VEC3"`, `"type": "VEC2"`), ErrUnsupportedAccessor},
		{"float indices", replace(`"componentType": 5123`, `"componentType": 5126`), ErrUnsupportedAccessor},
		{"accessor overruns view", replace(`"count": 3, "type": "VEC3"`, `"count": 4, "type": "VEC3"`), ErrGLBOutOfBounds},
		{"view overruns bin", replace(`"byteOffset": 36, "byteLength": 6`, `"byteOffset": 36, "byteLength": 600`), ErrGLBOutOfBounds},
		{"huge count", replace(`{"bufferView": 0, "componentType": 5126, "count": 3,`,
			`{"bufferView": 0, "componentType": 5126, "count": 1152921504606846977,`), ErrGLBOutOfBounds},
		{"wrapping count with stride", replaceAll(
			[2]string{`"count": 3, "type": "VEC3"`, `"count": 1152921504606846977, "type": "VEC3"`},
			[2]string{`"byteOffset": 0, "byteLength": 36}`, `"byteOffset": 0, "byteLength": 36, "byteStride": 16}`},
		), ErrGLBOutOfBounds},
		{"accessor offset past view", replace(`"componentType": 5126, "count": 3,`, `"byteOffset": 40, "componentType": 5126, "count": 3,`), ErrGLBOutOfBounds},
		{"accessor index", replace(`"indices": 1`, `"indices": 7`), ErrGLBOutOfBounds},
		{"no triangles", replace(`"indices": 1}`, `"indices": 1, "mode": 0}`), ErrNoGLBTriangles},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			glb, err := ParseGLB(tt.data)
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
			if glb != nil {
				t.Error("expected no partial result on error")
			}
		})
	}
}

func TestParseGLB_IndexOutOfRange(t *testing.T) {
	bin := triangleBin()
	binary.LittleEndian.PutUint16(bin[36+4:], 9)

	_, err := ParseGLB(makeGLB(triangleDoc, bin))
	if !errors.Is(err, ErrGLBOutOfBounds) {
		t.Errorf("expected ErrGLBOutOfBounds, got %v", err)
	}
}

func TestParseGLBFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tri.glb")
	if err := os.WriteFile(path, makeGLB(triangleDoc, triangleBin()), 0o644); err != nil {
		t.Fatal(err)
	}

	glb, err := ParseGLBFile(path)
	if err != nil {
		t.Fatalf("ParseGLBFile failed: %v", err)
	}
	if glb.TriangleCount() != 1 {
		t.Errorf("expected 1 triangle, got %d", glb.TriangleCount())
	}
}
