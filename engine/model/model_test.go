package model

import (
	"encoding/binary"
	"math"
	"testing"

	"cogentcore.org/core/math32"
	"github.com/Carmen-Shannon/oxy-tutorial/engine/renderer/material"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGPUTypeSizes(t *testing.T) {
	assert.Equal(t, 20, (&GPUVertex{}).Size())
	assert.Len(t, (&GPUVertex{}).Marshal(), 20)
	assert.Equal(t, 32, (&GPUModelVertex{}).Size())
	assert.Len(t, (&GPUModelVertex{}).Marshal(), 32)
	assert.Equal(t, 64, (&GPUInstance{}).Size())
	assert.Len(t, (&GPUInstance{}).Marshal(), 64)
}

func TestWGSLSourcesDeclareStructs(t *testing.T) {
	assert.Contains(t, GPUVertexSource, "struct VertexInput")
	assert.Contains(t, GPUModelVertexSource, "struct VertexInput")
	assert.Contains(t, GPUInstanceSource, "struct InstanceInput")
}

func TestGPUModelVertexMarshalLayout(t *testing.T) {
	v := GPUModelVertex{
		Position: [3]float32{1, 2, 3},
		TexCoord: [2]float32{0.25, 0.75},
		Normal:   [3]float32{0, 1, 0},
	}
	buf := v.Marshal()
	f := func(off int) float32 { return math.Float32frombits(binary.LittleEndian.Uint32(buf[off:])) }
	assert.Equal(t, float32(3), f(8))
	assert.Equal(t, float32(0.25), f(12))
	assert.Equal(t, float32(0.75), f(16))
	assert.Equal(t, float32(1), f(24))
}

func TestPentagonGeometry(t *testing.T) {
	assert.Len(t, PentagonVertices, 5)
	assert.Len(t, PentagonIndices, 9)
	for _, idx := range PentagonIndices {
		assert.Less(t, int(idx), len(PentagonVertices))
	}
	assert.Len(t, MarshalVertices(PentagonVertices), 100)
	assert.Len(t, MarshalIndices16(PentagonIndices), 18)
	assert.Equal(t, []byte{1, 0, 0, 0, 0, 1, 0, 0}, MarshalIndices32([]uint32{1, 256}))
}

func TestNewInstanceGridLayout(t *testing.T) {
	grid := NewInstanceGrid(10, 3)
	require.Len(t, grid, 100)

	// first instance: x=0, z=0 -> 3*(0-5)
	assert.Equal(t, math32.Vec3(-15, 0, -15), grid[0].Position)
	// x varies fastest
	assert.Equal(t, math32.Vec3(-12, 0, -15), grid[1].Position)
	assert.Equal(t, math32.Vec3(-15, 0, -12), grid[10].Position)
	assert.Equal(t, math32.Vec3(12, 0, 12), grid[99].Position)

	assert.Empty(t, NewInstanceGrid(0, 3))
}

func TestNewInstanceGridOriginKeepsIdentity(t *testing.T) {
	grid := NewInstanceGrid(10, 3)
	centre := grid[5*10+5]
	require.Equal(t, math32.Vector3{}, centre.Position)

	raw := centre.ToRaw()
	for col := 0; col < 4; col++ {
		for row := 0; row < 4; row++ {
			want := float32(0)
			if col == row {
				want = 1
			}
			assert.InDelta(t, want, raw.Model[col*4+row], 1e-6)
		}
	}
}

func TestInstanceToRawRotatesAboutPositionAxis(t *testing.T) {
	grid := NewInstanceGrid(10, 3)
	inst := grid[0]
	raw := inst.ToRaw()

	// translation lives in the last column
	assert.InDelta(t, inst.Position.X, raw.Model[12], 1e-5)
	assert.InDelta(t, inst.Position.Y, raw.Model[13], 1e-5)
	assert.InDelta(t, inst.Position.Z, raw.Model[14], 1e-5)
	assert.InDelta(t, 1, raw.Model[15], 1e-6)

	// a rotation of theta has trace 1+2cos(theta)
	trace := raw.Model[0] + raw.Model[5] + raw.Model[10]
	assert.InDelta(t, 1+2*math.Cos(math.Pi/4), trace, 1e-5)

	// the rotation axis is left unchanged
	n := inst.Position.Normal()
	axis := [3]float32{n.X, n.Y, n.Z}
	for row := 0; row < 3; row++ {
		var got float32
		for col := 0; col < 3; col++ {
			got += raw.Model[col*4+row] * axis[col]
		}
		assert.InDelta(t, axis[row], got, 1e-5)
	}

	assert.Len(t, MarshalInstances(RawInstances(grid)), 100*64)
}

func TestModelMaterialFor(t *testing.T) {
	mat := material.NewMaterial(material.WithName("cube"))
	inRange := &Mesh{Name: "a", MaterialIndex: 0}
	noMaterial := &Mesh{Name: "b", MaterialIndex: -1}
	m := NewModel(WithName("cube"), WithMeshes(inRange, noMaterial), WithMaterials(mat))

	assert.Equal(t, "cube", m.Name())
	assert.Len(t, m.Meshes(), 2)
	assert.Same(t, mat, m.MaterialFor(inRange))
	assert.Nil(t, m.MaterialFor(noMaterial))
	assert.Nil(t, m.MaterialFor(nil))
	assert.NotPanics(t, m.Release)
}

func TestComputeBoundingRadius(t *testing.T) {
	meshes := []ImportedMesh{{
		Vertices: []GPUModelVertex{
			{Position: [3]float32{1, 0, 0}},
			{Position: [3]float32{0, 3, 4}},
		},
	}}
	assert.InDelta(t, 5, ComputeBoundingRadius(meshes), 1e-6)
	assert.Zero(t, ComputeBoundingRadius(nil))
}
