// GLB (binary glTF 2.0) static mesh reader.
package formats

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	gomath "math"
	"os"

	"github.com/Faultbox/knobsmith/pkg/math"
)

// GLB format errors.
var (
	ErrInvalidGLBMagic       = errors.New("invalid GLB magic: expected 'glTF'")
	ErrUnsupportedGLBVersion = errors.New("unsupported GLB version")
	ErrTruncatedGLB          = errors.New("truncated GLB data")
	ErrGLBLength             = errors.New("GLB declared length exceeds data")
	ErrMissingGLBChunk       = errors.New("missing GLB chunk")
	ErrInvalidGLBJSON        = errors.New("invalid GLB JSON chunk")
	ErrUnsupportedAccessor   = errors.New("unsupported glTF accessor")
	ErrGLBOutOfBounds        = errors.New("glTF data out of bounds")
	ErrNoGLBTriangles        = errors.New("GLB contains no triangles")
)

const (
	glbMagic      = 0x46546C67 // "glTF"
	glbHeaderSize = 12
	glbChunkJSON  = 0x4E4F534A // "JSON"
	glbChunkBIN   = 0x004E4942 // "BIN\0"

	gltfModeTriangles = 4

	gltfUnsignedByte  = 5121
	gltfUnsignedShort = 5123
	gltfUnsignedInt   = 5125
	gltfFloat         = 5126
)

// GLB is the triangle geometry of every triangle primitive in a GLB file,
// concatenated in document order.
type GLB struct {
	Version        uint32
	PrimitiveCount int         // Triangle primitives read
	Positions      []math.Vec3 // Vertex positions
	Indices        []uint32    // Triangle list into Positions
}

// TriangleCount returns the number of triangles.
func (g *GLB) TriangleCount() int {
	return len(g.Indices) / 3
}

// gltfDocument is the subset of the glTF JSON the reader consults.
type gltfDocument struct {
	Meshes []struct {
		Primitives []gltfPrimitive `json:"primitives"`
	} `json:"meshes"`
	Accessors   []gltfAccessor   `json:"accessors"`
	BufferViews []gltfBufferView `json:"bufferViews"`
}

type gltfPrimitive struct {
	Attributes map[string]int `json:"attributes"`
	Indices    *int           `json:"indices"`
	Mode       *int           `json:"mode"`
}

type gltfAccessor struct {
	BufferView    *int            `json:"bufferView"`
	ByteOffset    int             `json:"byteOffset"`
	ComponentType int             `json:"componentType"`
	Normalized    bool            `json:"normalized"`
	Count         int             `json:"count"`
	Type          string          `json:"type"`
	Sparse        json.RawMessage `json:"sparse"`
}

type gltfBufferView struct {
	Buffer     int `json:"buffer"`
	ByteOffset int `json:"byteOffset"`
	ByteLength int `json:"byteLength"`
	ByteStride int `json:"byteStride"`
}

// ParseGLB parses GLB data. Any structural violation fails the whole read.
func ParseGLB(data []byte) (*GLB, error) {
	if len(data) < glbHeaderSize {
		return nil, ErrTruncatedGLB
	}
	if binary.LittleEndian.Uint32(data[0:4]) != glbMagic {
		return nil, ErrInvalidGLBMagic
	}
	version := binary.LittleEndian.Uint32(data[4:8])
	if version != 2 {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedGLBVersion, version)
	}
	total := binary.LittleEndian.Uint32(data[8:12])
	if total < glbHeaderSize || uint64(total) > uint64(len(data)) {
		return nil, fmt.Errorf("%w: declared %d, have %d", ErrGLBLength, total, len(data))
	}
	data = data[:total]

	jsonChunk, binChunk, err := readGLBChunks(data)
	if err != nil {
		return nil, err
	}
	if jsonChunk == nil {
		return nil, fmt.Errorf("%w: JSON", ErrMissingGLBChunk)
	}

	var doc gltfDocument
	if err := json.Unmarshal(jsonChunk, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidGLBJSON, err)
	}

	glb := &GLB{Version: version}
	for mi, m := range doc.Meshes {
		for pi, prim := range m.Primitives {
			if err := glb.appendPrimitive(&doc, binChunk, prim); err != nil {
				return nil, fmt.Errorf("mesh %d primitive %d: %w", mi, pi, err)
			}
		}
	}
	if len(glb.Indices) == 0 {
		return nil, ErrNoGLBTriangles
	}
	return glb, nil
}

// ParseGLBFile parses a GLB file from disk.
func ParseGLBFile(path string) (*GLB, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading GLB file: %w", err)
	}
	return ParseGLB(data)
}

// readGLBChunks walks the length-prefixed chunks and returns the first JSON
// and the first BIN payload.
func readGLBChunks(data []byte) (jsonChunk, binChunk []byte, err error) {
	off := uint64(glbHeaderSize)
	end := uint64(len(data))
	for off < end {
		if off+8 > end {
			return nil, nil, fmt.Errorf("%w: chunk header at %d", ErrTruncatedGLB, off)
		}
		length := uint64(binary.LittleEndian.Uint32(data[off:]))
		kind := binary.LittleEndian.Uint32(data[off+4:])
		off += 8
		if off+length > end {
			return nil, nil, fmt.Errorf("%w: chunk of %d bytes at %d", ErrTruncatedGLB, length, off)
		}
		payload := data[off : off+length]
		switch {
		case kind == glbChunkJSON && jsonChunk == nil:
			jsonChunk = payload
		case kind == glbChunkBIN && binChunk == nil:
			binChunk = payload
		}
		off += length
	}
	return jsonChunk, binChunk, nil
}

func (g *GLB) appendPrimitive(doc *gltfDocument, bin []byte, prim gltfPrimitive) error {
	mode := gltfModeTriangles
	if prim.Mode != nil {
		mode = *prim.Mode
	}
	if mode != gltfModeTriangles {
		return nil
	}
	posIndex, ok := prim.Attributes["POSITION"]
	if !ok {
		return nil
	}

	positions, err := readPositions(doc, bin, posIndex)
	if err != nil {
		return fmt.Errorf("POSITION: %w", err)
	}

	var indices []uint32
	if prim.Indices != nil {
		indices, err = readIndices(doc, bin, *prim.Indices)
		if err != nil {
			return fmt.Errorf("indices: %w", err)
		}
	} else {
		indices = make([]uint32, len(positions))
		for i := range indices {
			indices[i] = uint32(i)
		}
	}
	indices = indices[:len(indices)/3*3]
	if len(indices) == 0 {
		return nil
	}

	base := uint32(len(g.Positions))
	for _, idx := range indices {
		if int(idx) >= len(positions) {
			return fmt.Errorf("%w: index %d, %d positions", ErrGLBOutOfBounds, idx, len(positions))
		}
		g.Indices = append(g.Indices, base+idx)
	}
	g.Positions = append(g.Positions, positions...)
	g.PrimitiveCount++
	return nil
}

// accessorData is a validated strided view of an accessor's elements.
type accessorData struct {
	data   []byte
	stride int
	count  int
}

func (a accessorData) element(i int) []byte {
	return a.data[i*a.stride:]
}

// resolveAccessor validates an accessor against its buffer view and the BIN
// chunk. Only buffer 0 and non-sparse accessors are supported.
func resolveAccessor(doc *gltfDocument, bin []byte, index, elemSize int) (accessorData, error) {
	if index < 0 || index >= len(doc.Accessors) {
		return accessorData{}, fmt.Errorf("%w: accessor %d", ErrGLBOutOfBounds, index)
	}
	acc := doc.Accessors[index]
	if len(acc.Sparse) > 0 && string(acc.Sparse) != "null" {
		return accessorData{}, fmt.Errorf("%w: sparse accessor %d", ErrUnsupportedAccessor, index)
	}
	if acc.BufferView == nil {
		return accessorData{}, fmt.Errorf("%w: accessor %d has no bufferView", ErrUnsupportedAccessor, index)
	}
	vi := *acc.BufferView
	if vi < 0 || vi >= len(doc.BufferViews) {
		return accessorData{}, fmt.Errorf("%w: bufferView %d", ErrGLBOutOfBounds, vi)
	}
	view := doc.BufferViews[vi]
	if view.Buffer != 0 {
		return accessorData{}, fmt.Errorf("%w: buffer %d", ErrUnsupportedAccessor, view.Buffer)
	}
	if bin == nil {
		return accessorData{}, fmt.Errorf("%w: BIN", ErrMissingGLBChunk)
	}
	if view.ByteOffset < 0 || view.ByteLength < 0 || acc.ByteOffset < 0 || acc.Count < 0 || view.ByteStride < 0 {
		return accessorData{}, fmt.Errorf("%w: negative offset or length", ErrGLBOutOfBounds)
	}
	if uint64(view.ByteOffset)+uint64(view.ByteLength) > uint64(len(bin)) {
		return accessorData{}, fmt.Errorf("%w: bufferView %d exceeds BIN chunk", ErrGLBOutOfBounds, vi)
	}

	stride := elemSize
	if view.ByteStride > 0 {
		stride = view.ByteStride
	}
	if stride < elemSize {
		return accessorData{}, fmt.Errorf("%w: byteStride %d < element size %d", ErrUnsupportedAccessor, stride, elemSize)
	}
	if acc.Count == 0 {
		return accessorData{}, nil
	}
	// Divide rather than multiply so a huge count cannot wrap the check.
	avail := view.ByteLength - acc.ByteOffset - elemSize
	if avail < 0 || acc.Count-1 > avail/stride {
		return accessorData{}, fmt.Errorf("%w: accessor %d has %d elements of stride %d, view has %d bytes",
			ErrGLBOutOfBounds, index, acc.Count, stride, view.ByteLength)
	}

	start := view.ByteOffset + acc.ByteOffset
	return accessorData{
		data:   bin[start : view.ByteOffset+view.ByteLength],
		stride: stride,
		count:  acc.Count,
	}, nil
}

func readPositions(doc *gltfDocument, bin []byte, index int) ([]math.Vec3, error) {
	if index < 0 || index >= len(doc.Accessors) {
		return nil, fmt.Errorf("%w: accessor %d", ErrGLBOutOfBounds, index)
	}
	acc := doc.Accessors[index]
	if acc.ComponentType != gltfFloat || acc.Type != "VEC3" || acc.Normalized {
		return nil, fmt.Errorf("%w: POSITION must be float32 VEC3, got %d %s",
			ErrUnsupportedAccessor, acc.ComponentType, acc.Type)
	}
	view, err := resolveAccessor(doc, bin, index, 12)
	if err != nil {
		return nil, err
	}
	out := make([]math.Vec3, view.count)
	for i := range out {
		b := view.element(i)
		p := math.Vec3{
			X: gomath.Float32frombits(binary.LittleEndian.Uint32(b)),
			Y: gomath.Float32frombits(binary.LittleEndian.Uint32(b[4:])),
			Z: gomath.Float32frombits(binary.LittleEndian.Uint32(b[8:])),
		}
		if !p.IsFinite() {
			return nil, fmt.Errorf("%w: non-finite position %d", ErrUnsupportedAccessor, i)
		}
		out[i] = p
	}
	return out, nil
}

func readIndices(doc *gltfDocument, bin []byte, index int) ([]uint32, error) {
	if index < 0 || index >= len(doc.Accessors) {
		return nil, fmt.Errorf("%w: accessor %d", ErrGLBOutOfBounds, index)
	}
	acc := doc.Accessors[index]
	if acc.Type != "SCALAR" {
		return nil, fmt.Errorf("%w: indices must be SCALAR, got %s", ErrUnsupportedAccessor, acc.Type)
	}
	var size int
	switch acc.ComponentType {
	case gltfUnsignedByte:
		size = 1
	case gltfUnsignedShort:
		size = 2
	case gltfUnsignedInt:
		size = 4
	default:
		return nil, fmt.Errorf("%w: index component type %d", ErrUnsupportedAccessor, acc.ComponentType)
	}
	view, err := resolveAccessor(doc, bin, index, size)
	if err != nil {
		return nil, err
	}
	out := make([]uint32, view.count)
	for i := range out {
		b := view.element(i)
		switch size {
		case 1:
			out[i] = uint32(b[0])
		case 2:
			out[i] = uint32(binary.LittleEndian.Uint16(b))
		default:
			out[i] = binary.LittleEndian.Uint32(b)
		}
	}
	return out, nil
}
