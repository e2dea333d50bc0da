package scene

import (
	"github.com/Carmen-Shannon/oxy-tutorial/engine/camera"
)

// SceneBuilderOption is a functional option for configuring a Scene.
// Use the With* functions to create options.
type SceneBuilderOption func(s *scene)

// WithCamera sets the scene's camera. Its aspect ratio is replaced with the surface's.
//
// Parameters:
//   - cam: the camera to draw with
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithCamera(cam camera.Camera) SceneBuilderOption {
	return func(s *scene) {
		s.cam = cam
	}
}

// WithController sets the controller that moves the camera.
func WithController(cc camera.CameraController) SceneBuilderOption {
	return func(s *scene) {
		s.controller = cc
	}
}

// WithInstanceGrid sets the size and spacing of the instance grid. Defaults to 10 per row,
// 3 units apart.
//
// Parameters:
//   - perRow: instances along each axis
//   - spacing: distance between neighbouring instances
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithInstanceGrid(perRow int, spacing float32) SceneBuilderOption {
	return func(s *scene) {
		s.perRow = perRow
		s.spacing = spacing
	}
}

// WithShader sets the WGSL asset used to draw the pentagon.
func WithShader(name string) SceneBuilderOption {
	return func(s *scene) {
		s.shaderName = name
	}
}

// WithModelShader sets the WGSL asset used to draw a loaded model.
func WithModelShader(name string) SceneBuilderOption {
	return func(s *scene) {
		s.modelShaderName = name
	}
}

// WithTexture sets the image asset applied to the pentagon.
func WithTexture(name string) SceneBuilderOption {
	return func(s *scene) {
		s.textureName = name
	}
}

// WithModel draws the named model asset instead of the pentagon. An empty name keeps the
// pentagon.
func WithModel(name string) SceneBuilderOption {
	return func(s *scene) {
		s.modelName = name
	}
}

// WithShaderValidation compiles the WGSL offline before the pipeline is created.
func WithShaderValidation(enabled bool) SceneBuilderOption {
	return func(s *scene) {
		s.validateShaders = enabled
	}
}
