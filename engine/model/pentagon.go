package model

// PentagonVertices is the built-in textured pentagon, wound counter-clockwise.
var PentagonVertices = []GPUVertex{
	{Position: [3]float32{-0.0868241, 0.49240386, 0}, TexCoord: [2]float32{0.4131759, 0.00759614}},
	{Position: [3]float32{-0.49513406, 0.06958647, 0}, TexCoord: [2]float32{0.0048659444, 0.43041354}},
	{Position: [3]float32{-0.21918549, -0.44939706, 0}, TexCoord: [2]float32{0.28081453, 0.949397}},
	{Position: [3]float32{0.35966998, -0.3473291, 0}, TexCoord: [2]float32{0.85967, 0.84732914}},
	{Position: [3]float32{0.44147372, 0.2347359, 0}, TexCoord: [2]float32{0.9414737, 0.2652641}},
}

// PentagonIndices triangulates PentagonVertices as a fan around vertex 4.
var PentagonIndices = []uint16{
	0, 1, 4,
	1, 2, 4,
	2, 3, 4,
}

// MarshalVertices packs vertices back to back in GPU layout.
func MarshalVertices(vertices []GPUVertex) []byte {
	buf := make([]byte, 0, len(vertices)*20)
	for i := range vertices {
		buf = append(buf, vertices[i].Marshal()...)
	}
	return buf
}

// MarshalModelVertices packs model vertices back to back in GPU layout.
func MarshalModelVertices(vertices []GPUModelVertex) []byte {
	buf := make([]byte, 0, len(vertices)*32)
	for i := range vertices {
		buf = append(buf, vertices[i].Marshal()...)
	}
	return buf
}

// MarshalIndices16 packs 16-bit indices little-endian.
func MarshalIndices16(indices []uint16) []byte {
	buf := make([]byte, len(indices)*2)
	for i, idx := range indices {
		buf[i*2] = byte(idx)
		buf[i*2+1] = byte(idx >> 8)
	}
	return buf
}

// MarshalIndices32 packs 32-bit indices little-endian.
func MarshalIndices32(indices []uint32) []byte {
	buf := make([]byte, len(indices)*4)
	for i, idx := range indices {
		buf[i*4] = byte(idx)
		buf[i*4+1] = byte(idx >> 8)
		buf[i*4+2] = byte(idx >> 16)
		buf[i*4+3] = byte(idx >> 24)
	}
	return buf
}
