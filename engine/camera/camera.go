package camera

import (
	"strconv"
	"sync"
	"sync/atomic"

	"cogentcore.org/core/math32"
	"github.com/Carmen-Shannon/oxy-tutorial/common"
	"github.com/Carmen-Shannon/oxy-tutorial/engine/renderer/bind_group_provider"
)

// cameraCount is an atomic counter used to generate unique bind group provider names for each camera instance.
var cameraCount atomic.Uint64

type cameraImpl struct {
	mu *sync.Mutex

	eye    math32.Vector3
	target math32.Vector3
	up     math32.Vector3

	fovy   float32 // radians
	aspect float32
	znear  float32
	zfar   float32

	bindGroupProvider bind_group_provider.BindGroupProvider
}

// Camera is a look-at perspective camera.
// The view-projection matrix is derived on demand from eye, target, up, fovy, aspect and the
// clip planes; nothing is cached.
type Camera interface {
	// Eye returns the camera position.
	Eye() math32.Vector3

	// Target returns the point the camera looks at.
	Target() math32.Vector3

	// Up returns the camera's up vector.
	Up() math32.Vector3

	// Fovy returns the vertical field of view in radians.
	//
	// Returns:
	//   - float32: field of view in radians
	Fovy() float32

	// Aspect returns the aspect ratio (width / height).
	//
	// Returns:
	//   - float32: the aspect ratio
	Aspect() float32

	// ZNear returns the near clipping plane distance.
	ZNear() float32

	// ZFar returns the far clipping plane distance.
	ZFar() float32

	// BuildViewProjection returns projection * view as 16 floats (column-major), with WebGPU
	// clip-space depth in [0, 1]. Identical inputs always produce identical output.
	//
	// Returns:
	//   - [16]float32: the combined view-projection matrix
	BuildViewProjection() [16]float32

	// BindGroupProvider returns the camera's bind group provider for GPU resources.
	//
	// Returns:
	//   - bind_group_provider.BindGroupProvider: the bind group provider
	BindGroupProvider() bind_group_provider.BindGroupProvider

	// SetEye moves the camera.
	SetEye(eye math32.Vector3)

	// SetAspect sets the aspect ratio (width / height).
	//
	// Parameters:
	//   - aspect: the aspect ratio
	SetAspect(aspect float32)
}

var _ Camera = &cameraImpl{}

// NewCamera creates a new Camera looking from (0, 1, 2) at the origin with a 45 degree field
// of view, near plane 0.1 and far plane 100.
//
// Parameters:
//   - options: functional options to configure the camera
//
// Returns:
//   - Camera: the newly created camera
func NewCamera(options ...CameraBuilderOption) Camera {
	c := &cameraImpl{
		mu:     &sync.Mutex{},
		eye:    math32.Vec3(0, 1, 2),
		target: math32.Vec3(0, 0, 0),
		up:     math32.Vec3(0, 1, 0),
		fovy:   math32.DegToRad(45),
		aspect: 1.0,
		znear:  0.1,
		zfar:   100.0,
		bindGroupProvider: bind_group_provider.NewBindGroupProvider(
			"camera_" + strconv.FormatUint(cameraCount.Load(), 10),
		),
	}
	for _, option := range options {
		option(c)
	}
	cameraCount.Add(1)
	return c
}

func (c *cameraImpl) Eye() math32.Vector3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.eye
}

func (c *cameraImpl) Target() math32.Vector3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.target
}

func (c *cameraImpl) Up() math32.Vector3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.up
}

func (c *cameraImpl) Fovy() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fovy
}

func (c *cameraImpl) Aspect() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.aspect
}

func (c *cameraImpl) ZNear() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.znear
}

func (c *cameraImpl) ZFar() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.zfar
}

func (c *cameraImpl) SetEye(eye math32.Vector3) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.eye = eye
}

func (c *cameraImpl) SetAspect(aspect float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.aspect = aspect
}

func (c *cameraImpl) BindGroupProvider() bind_group_provider.BindGroupProvider {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.bindGroupProvider
}

func (c *cameraImpl) BuildViewProjection() [16]float32 {
	c.mu.Lock()
	defer c.mu.Unlock()

	var view, proj, viewProj [16]float32
	common.LookAt(view[:], c.eye, c.target, c.up)
	common.Perspective(proj[:], c.fovy, c.aspect, c.znear, c.zfar)
	common.Mul4(viewProj[:], proj[:], view[:])
	return viewProj
}
