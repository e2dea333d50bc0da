package model

import "cogentcore.org/core/math32"

// Instance places one copy of a mesh in the world.
type Instance struct {
	Position math32.Vector3
	Rotation math32.Quat
}

// ToRaw returns the instance's model matrix, translation * rotation, in GPU layout.
//
// Returns:
//   - GPUInstance: the 64-byte column-major transform
func (i Instance) ToRaw() GPUInstance {
	var m math32.Matrix4
	m.SetTransform(i.Position, i.Rotation, math32.Vec3(1, 1, 1))
	return GPUInstance{Model: [16]float32(m)}
}

// NewInstanceGrid lays out perRow*perRow instances on the XZ plane, spacing units apart and
// centred so that the middle cell sits at the origin. Instances at the origin keep the identity
// rotation; every other instance is rotated 45 degrees about the axis from the origin to it.
//
// Parameters:
//   - perRow: number of instances along each axis
//   - spacing: distance between neighbouring instances
//
// Returns:
//   - []Instance: the instances in row-major order (z outer, x inner)
func NewInstanceGrid(perRow int, spacing float32) []Instance {
	if perRow <= 0 {
		return nil
	}
	half := float32(perRow) / 2
	instances := make([]Instance, 0, perRow*perRow)
	for z := 0; z < perRow; z++ {
		for x := 0; x < perRow; x++ {
			pos := math32.Vec3(spacing*(float32(x)-half), 0, spacing*(float32(z)-half))

			rot := math32.NewQuat(0, 0, 0, 1)
			if pos != (math32.Vector3{}) {
				rot = math32.NewQuatAxisAngle(pos.Normal(), math32.DegToRad(45))
			}
			instances = append(instances, Instance{Position: pos, Rotation: rot})
		}
	}
	return instances
}

// RawInstances converts instances to their GPU transforms.
func RawInstances(instances []Instance) []GPUInstance {
	raw := make([]GPUInstance, len(instances))
	for i, inst := range instances {
		raw[i] = inst.ToRaw()
	}
	return raw
}
