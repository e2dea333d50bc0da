package engine

import (
	"github.com/Carmen-Shannon/oxy-tutorial/engine/profiler"
	"github.com/cogentcore/webgpu/wgpu"
)

// EngineBuilderOption is a functional option for configuring an Engine.
// Use the With* functions to create options that are applied directly to the engine instance.
type EngineBuilderOption func(*engine)

// WithProfiling enables or disables once-per-second FPS and memory logging.
//
// Parameters:
//   - enabled: if true, enables performance profiling
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiling(enabled bool) EngineBuilderOption {
	return func(e *engine) {
		if enabled {
			e.profiler = profiler.NewProfiler()
		} else {
			e.profiler = nil
		}
	}
}

// WithClearColor sets the clear color used until the cursor first moves.
func WithClearColor(c wgpu.Color) EngineBuilderOption {
	return func(e *engine) {
		e.clearColor = c
	}
}
