package bind_group_provider

import (
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
)

func TestNewBindGroupProviderDefaults(t *testing.T) {
	p := NewBindGroupProvider("camera")
	assert.Equal(t, "camera", p.Label())
	assert.Nil(t, p.BindGroup())
	assert.Nil(t, p.Buffer(0))
	assert.Nil(t, p.TextureView(0))
	assert.Nil(t, p.Sampler(1))
	assert.Equal(t, wgpu.IndexFormatUint32, p.IndexFormat())
	assert.Zero(t, p.IndexCount())
	assert.Zero(t, p.InstanceCount())
}

func TestSetMeshRecordsDrawParameters(t *testing.T) {
	p := NewBindGroupProvider("pentagon", WithIndexFormat(wgpu.IndexFormatUint16))
	assert.Equal(t, wgpu.IndexFormatUint16, p.IndexFormat())

	p.SetMesh(nil, nil, 9, wgpu.IndexFormatUint16)
	assert.Equal(t, 9, p.IndexCount())
	assert.Equal(t, wgpu.IndexFormatUint16, p.IndexFormat())

	p.SetMesh(nil, nil, 3, wgpu.IndexFormatUndefined)
	assert.Equal(t, wgpu.IndexFormatUint32, p.IndexFormat())

	p.SetInstances(nil, 100)
	assert.Equal(t, 100, p.InstanceCount())
}

func TestReleaseClearsDrawCounts(t *testing.T) {
	p := NewBindGroupProvider("mesh")
	p.SetMesh(nil, nil, 36, wgpu.IndexFormatUint16)
	p.SetInstances(nil, 100)

	p.Release()

	assert.Zero(t, p.IndexCount())
	assert.Zero(t, p.InstanceCount())
}

func TestReleaseEmptyProvider(t *testing.T) {
	p := NewBindGroupProvider("empty")
	assert.NotPanics(t, func() {
		p.Release()
		p.Release()
	})
}
