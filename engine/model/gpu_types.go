package model

import (
	_ "embed"
	"encoding/binary"
	"math"
	"unsafe"
)

// GPUVertexSource is the canonical WGSL definition of the VertexInput struct for the textured quad pipeline.
// Matches GPUVertex layout exactly (20 bytes, tightly packed).
//
//go:embed assets/vertex.wgsl
var GPUVertexSource string

// GPUVertex is a textured vertex: position followed by texture coordinates.
// Matches the WGSL VertexInput struct (see GPUVertexSource). Size: 20 bytes.
type GPUVertex struct {
	Position [3]float32 // offset  0, location 0
	TexCoord [2]float32 // offset 12, location 1
}

// Size returns the size of the GPUVertex struct in bytes.
//
// Returns:
//   - int: the size of the struct in bytes.
func (g *GPUVertex) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the vertex into a little-endian byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 20-byte buffer ready for GPU upload.
func (g *GPUVertex) Marshal() []byte {
	buf := make([]byte, 20)
	putFloats(buf, g.Position[:]...)
	putFloats(buf[12:], g.TexCoord[:]...)
	return buf
}

// GPUModelVertexSource is the canonical WGSL definition of the VertexInput struct for loaded models.
// Matches GPUModelVertex layout exactly (32 bytes, tightly packed).
//
//go:embed assets/model_vertex.wgsl
var GPUModelVertexSource string

// GPUModelVertex is a vertex produced by the model loader: position, texture coordinates and normal.
// Size: 32 bytes.
type GPUModelVertex struct {
	Position [3]float32 // offset  0, location 0
	TexCoord [2]float32 // offset 12, location 1
	Normal   [3]float32 // offset 20, location 2
}

// Size returns the size of the GPUModelVertex struct in bytes.
//
// Returns:
//   - int: the size of the struct in bytes.
func (g *GPUModelVertex) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the vertex into a little-endian byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 32-byte buffer ready for GPU upload.
func (g *GPUModelVertex) Marshal() []byte {
	buf := make([]byte, 32)
	putFloats(buf, g.Position[:]...)
	putFloats(buf[12:], g.TexCoord[:]...)
	putFloats(buf[20:], g.Normal[:]...)
	return buf
}

// GPUInstanceSource is the canonical WGSL definition of the InstanceInput struct. The four
// columns of the model matrix are read from the per-instance vertex buffer at locations 5-8.
//
//go:embed assets/instance.wgsl
var GPUInstanceSource string

// GPUInstance is the raw per-instance transform: a column-major 4x4 model matrix.
// Size: 64 bytes.
type GPUInstance struct {
	Model [16]float32
}

// Size returns the size of the GPUInstance struct in bytes.
//
// Returns:
//   - int: the size of the struct in bytes.
func (g *GPUInstance) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the matrix into a little-endian byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 64-byte buffer ready for GPU upload.
func (g *GPUInstance) Marshal() []byte {
	buf := make([]byte, 64)
	putFloats(buf, g.Model[:]...)
	return buf
}

// MarshalInstances packs a slice of instance transforms back to back.
func MarshalInstances(instances []GPUInstance) []byte {
	buf := make([]byte, 0, len(instances)*64)
	for i := range instances {
		buf = append(buf, instances[i].Marshal()...)
	}
	return buf
}

func putFloats(buf []byte, values ...float32) {
	for i, v := range values {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
}
