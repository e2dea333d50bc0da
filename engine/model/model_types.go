package model

// ImportedMaterial holds the raw material properties parsed from a model's material library.
type ImportedMaterial struct {
	Name               string
	DiffuseColor       [4]float32
	DiffuseTexturePath string
}

// ImportedMesh is one group of faces parsed from a model file, already de-indexed into unique
// position/texcoord/normal vertices.
type ImportedMesh struct {
	Name          string
	Vertices      []GPUModelVertex
	Indices       []uint32
	MaterialIndex int // -1 when the mesh has no material
}

// ImportedModel is the CPU-side result of parsing a model file, before any GPU upload.
type ImportedModel struct {
	Name      string
	Meshes    []ImportedMesh
	Materials []ImportedMaterial
}
