package camera

// CameraControllerOption configures a CameraController during construction.
type CameraControllerOption func(*cameraControllerImpl)

// WithSpeed sets the distance moved per update.
//
// Parameters:
//   - speed: movement per update in world units
//
// Returns:
//   - CameraControllerOption: a function that sets the controller speed
func WithSpeed(speed float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.speed = speed
	}
}
