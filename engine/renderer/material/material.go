package material

import (
	"github.com/Carmen-Shannon/oxy-tutorial/common"
	"github.com/Carmen-Shannon/oxy-tutorial/engine/renderer/bind_group_provider"
)

// material is the implementation of the Material interface.
type material struct {
	name               string
	diffuseColor       [4]float32
	diffuseTexturePath string
	diffuseTexture     *common.TextureStagingData
	pipelineKey        string
	bindGroupProvider  bind_group_provider.BindGroupProvider
}

// Material is a named surface description plus the GPU bindings used to draw with it.
//
// Surface properties (name, diffuse color, diffuse texture) are set at load time. The pipeline key
// and bind group provider are filled in by the Loader once the texture has been uploaded.
type Material interface {
	// Name retrieves the material identifier.
	//
	// Returns:
	//   - string: the name of the material
	Name() string

	// DiffuseColor retrieves the RGBA color used when no diffuse texture is present.
	//
	// Returns:
	//   - [4]float32: the diffuse color
	DiffuseColor() [4]float32

	// DiffuseTexturePath retrieves the asset name of the diffuse texture, or "" if none is set.
	DiffuseTexturePath() string

	// DiffuseTexture retrieves the decoded diffuse texture, or nil before decoding.
	//
	// Returns:
	//   - *common.TextureStagingData: the decoded texture, or nil
	DiffuseTexture() *common.TextureStagingData

	// PipelineKey retrieves the key of the render pipeline this material draws with.
	PipelineKey() string

	// BindGroupProvider retrieves the provider holding the texture, sampler and bind group.
	BindGroupProvider() bind_group_provider.BindGroupProvider

	SetDiffuseTexture(tex *common.TextureStagingData)
	SetBindGroupProvider(provider bind_group_provider.BindGroupProvider)

	// Release frees the GPU resources held by the material's provider.
	Release()
}

var _ Material = &material{}

// NewMaterial creates a new Material with a white diffuse color.
//
// Parameters:
//   - options: a variadic list of MaterialBuilderOption functions to configure the material
//
// Returns:
//   - Material: the configured material
func NewMaterial(options ...MaterialBuilderOption) Material {
	m := &material{
		diffuseColor: [4]float32{1, 1, 1, 1},
	}
	for _, opt := range options {
		opt(m)
	}
	return m
}

func (m *material) Name() string {
	return m.name
}

func (m *material) DiffuseColor() [4]float32 {
	return m.diffuseColor
}

func (m *material) DiffuseTexturePath() string {
	return m.diffuseTexturePath
}

func (m *material) DiffuseTexture() *common.TextureStagingData {
	return m.diffuseTexture
}

func (m *material) PipelineKey() string {
	return m.pipelineKey
}

func (m *material) BindGroupProvider() bind_group_provider.BindGroupProvider {
	return m.bindGroupProvider
}

func (m *material) SetDiffuseTexture(tex *common.TextureStagingData) {
	m.diffuseTexture = tex
}

func (m *material) SetBindGroupProvider(provider bind_group_provider.BindGroupProvider) {
	m.bindGroupProvider = provider
}

func (m *material) Release() {
	if m.bindGroupProvider != nil {
		m.bindGroupProvider.Release()
	}
}

// FallbackTexture returns the texture to upload for the material: the decoded diffuse texture
// if present, otherwise a 1x1 texture of the diffuse color.
//
// Parameters:
//   - m: the material
//
// Returns:
//   - *common.TextureStagingData: the texture to upload
func FallbackTexture(m Material) *common.TextureStagingData {
	if tex := m.DiffuseTexture(); tex != nil {
		return tex
	}
	c := m.DiffuseColor()
	return common.SolidTexture(toByte(c[0]), toByte(c[1]), toByte(c[2]), toByte(c[3]))
}

func toByte(v float32) byte {
	switch {
	case v <= 0:
		return 0
	case v >= 1:
		return 255
	}
	return byte(v*255 + 0.5)
}
