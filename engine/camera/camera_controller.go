package camera

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-tutorial/common"
)

// CameraController turns held movement keys into camera motion.
//
// Forward and backward dolly the eye along the view direction. Left and right orbit the eye
// around the target while keeping its distance to the target.
type CameraController interface {
	// ProcessKey records a key press or release.
	//
	// Parameters:
	//   - key: a common.Key* code
	//   - pressed: true on press, false on release
	//
	// Returns:
	//   - bool: true if the key is a movement key and was consumed
	ProcessKey(key int, pressed bool) bool

	// UpdateCamera moves the camera according to the keys currently held.
	//
	// Parameters:
	//   - cam: the camera to move
	UpdateCamera(cam Camera)

	// Speed returns the distance moved per update.
	Speed() float32
}

type cameraControllerImpl struct {
	mu *sync.Mutex

	speed float32

	forwardPressed  bool
	backwardPressed bool
	leftPressed     bool
	rightPressed    bool
}

var _ CameraController = &cameraControllerImpl{}

// NewCameraController creates a CameraController moving 0.2 units per update.
//
// Parameters:
//   - options: functional options to configure the controller
//
// Returns:
//   - CameraController: the newly created controller
func NewCameraController(options ...CameraControllerOption) CameraController {
	cc := &cameraControllerImpl{
		mu:    &sync.Mutex{},
		speed: 0.2,
	}
	for _, option := range options {
		option(cc)
	}
	return cc
}

func (cc *cameraControllerImpl) Speed() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.speed
}

func (cc *cameraControllerImpl) ProcessKey(key int, pressed bool) bool {
	cc.mu.Lock()
	defer cc.mu.Unlock()

	switch key {
	case common.KeyW, common.KeyUp:
		cc.forwardPressed = pressed
	case common.KeyS, common.KeyDown:
		cc.backwardPressed = pressed
	case common.KeyA, common.KeyLeft:
		cc.leftPressed = pressed
	case common.KeyD, common.KeyRight:
		cc.rightPressed = pressed
	default:
		return false
	}
	return true
}

func (cc *cameraControllerImpl) UpdateCamera(cam Camera) {
	cc.mu.Lock()
	defer cc.mu.Unlock()

	eye, target, up := cam.Eye(), cam.Target(), cam.Up()

	forward := target.Sub(eye)
	forwardNorm := forward.Normal()
	forwardMag := forward.Length()

	// stop short of the target so the view direction stays defined
	if cc.forwardPressed && forwardMag > cc.speed {
		eye = eye.Add(forwardNorm.MulScalar(cc.speed))
	}
	if cc.backwardPressed {
		eye = eye.Sub(forwardNorm.MulScalar(cc.speed))
	}

	right := forwardNorm.Cross(up)

	forward = target.Sub(eye)
	forwardMag = forward.Length()

	if cc.rightPressed {
		eye = target.Sub(forward.Add(right.MulScalar(cc.speed)).Normal().MulScalar(forwardMag))
	}
	if cc.leftPressed {
		eye = target.Sub(forward.Sub(right.MulScalar(cc.speed)).Normal().MulScalar(forwardMag))
	}

	cam.SetEye(eye)
}
