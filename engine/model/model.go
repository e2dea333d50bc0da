package model

import (
	"cogentcore.org/core/math32"
	"github.com/Carmen-Shannon/oxy-tutorial/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-tutorial/engine/renderer/material"
)

// Mesh is a GPU-ready group of triangles drawn with a single material.
type Mesh struct {
	Name          string
	Provider      bind_group_provider.BindGroupProvider // vertex + index buffers
	MaterialIndex int
	VertexData    []byte
	IndexData     []byte
	IndexCount    int
}

// model is the implementation of the Model interface.
type model struct {
	name           string
	meshes         []*Mesh
	materials      []material.Material
	boundingRadius float32
}

// Model is a loaded 3D model: a list of meshes and the materials they reference.
// It is produced by the Loader after importing a model file and uploading it to the GPU.
type Model interface {
	// Name retrieves the model identifier.
	//
	// Returns:
	//   - string: the model name
	Name() string

	// Meshes retrieves the meshes in file order.
	//
	// Returns:
	//   - []*Mesh: the meshes
	Meshes() []*Mesh

	// Materials retrieves the render-ready materials referenced by Mesh.MaterialIndex.
	//
	// Returns:
	//   - []material.Material: the materials
	Materials() []material.Material

	// MaterialFor returns the material a mesh draws with, or nil when its index is out of range.
	//
	// Parameters:
	//   - mesh: the mesh to look up
	//
	// Returns:
	//   - material.Material: the material or nil
	MaterialFor(mesh *Mesh) material.Material

	// BoundingRadius returns the largest vertex distance from the model origin.
	BoundingRadius() float32

	// Release frees every mesh and material GPU resource.
	Release()
}

var _ Model = &model{}

// NewModel creates a new Model instance with the specified options applied.
//
// Parameters:
//   - options: a variadic list of ModelBuilderOption functions to configure the Model
//
// Returns:
//   - Model: a new instance of Model configured with the provided options
func NewModel(options ...ModelBuilderOption) Model {
	m := &model{}
	for _, opt := range options {
		opt(m)
	}
	return m
}

func (m *model) Name() string {
	return m.name
}

func (m *model) Meshes() []*Mesh {
	return m.meshes
}

func (m *model) Materials() []material.Material {
	return m.materials
}

func (m *model) MaterialFor(mesh *Mesh) material.Material {
	if mesh == nil || mesh.MaterialIndex < 0 || mesh.MaterialIndex >= len(m.materials) {
		return nil
	}
	return m.materials[mesh.MaterialIndex]
}

func (m *model) BoundingRadius() float32 {
	return m.boundingRadius
}

func (m *model) Release() {
	for _, mesh := range m.meshes {
		if mesh.Provider != nil {
			mesh.Provider.Release()
		}
	}
	for _, mat := range m.materials {
		mat.Release()
	}
}

// ComputeBoundingRadius returns the largest distance from the origin of any vertex in meshes.
//
// Parameters:
//   - meshes: the imported meshes to measure
//
// Returns:
//   - float32: the bounding radius, 0 for no vertices
func ComputeBoundingRadius(meshes []ImportedMesh) float32 {
	var r float32
	for _, mesh := range meshes {
		for _, v := range mesh.Vertices {
			if d := math32.Vec3(v.Position[0], v.Position[1], v.Position[2]).Length(); d > r {
				r = d
			}
		}
	}
	return r
}
