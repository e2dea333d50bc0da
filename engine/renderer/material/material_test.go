package material

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-tutorial/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMaterialDefaults(t *testing.T) {
	m := NewMaterial(WithName("tree"))
	assert.Equal(t, "tree", m.Name())
	assert.Equal(t, [4]float32{1, 1, 1, 1}, m.DiffuseColor())
	assert.Empty(t, m.DiffuseTexturePath())
	assert.Nil(t, m.DiffuseTexture())
	assert.Nil(t, m.BindGroupProvider())
	assert.NotPanics(t, m.Release)
}

func TestFallbackTextureUsesDiffuseColor(t *testing.T) {
	m := NewMaterial(WithDiffuseColor([4]float32{1, 0.5, 0, 1}))
	tex := FallbackTexture(m)
	require.NotNil(t, tex)
	assert.Equal(t, uint32(1), tex.Width)
	assert.Equal(t, uint32(1), tex.Height)
	assert.Equal(t, []byte{255, 128, 0, 255}, tex.Pixels)
}

func TestFallbackTexturePrefersDecodedTexture(t *testing.T) {
	decoded := &common.TextureStagingData{Pixels: make([]byte, 16), Width: 2, Height: 2}
	m := NewMaterial(WithDiffuseTexturePath("tree.png"))
	m.SetDiffuseTexture(decoded)
	assert.Same(t, decoded, FallbackTexture(m))
	assert.Equal(t, "tree.png", m.DiffuseTexturePath())
}
