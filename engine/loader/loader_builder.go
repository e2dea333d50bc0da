package loader

import (
	"github.com/Carmen-Shannon/oxy-tutorial/engine/model"
	"github.com/Carmen-Shannon/oxy-tutorial/engine/renderer"
)

// LoaderBuilderOption is a functional option for configuring a loader.
type LoaderBuilderOption func(*loader)

// WithRenderer sets the Renderer used for GPU uploads. Without one, LoadModel only builds the
// CPU-side model.
//
// Parameters:
//   - r: the Renderer to use
//
// Returns:
//   - LoaderBuilderOption: a function that applies the renderer option to a loader
func WithRenderer(r renderer.Renderer) LoaderBuilderOption {
	return func(l *loader) {
		l.renderer = r
	}
}

// WithModel pre-populates the model cache.
func WithModel(key string, model model.Model) LoaderBuilderOption {
	return func(l *loader) {
		l.modelCache[key] = model
	}
}

// WithWorkers sets how many textures LoadModel decodes at once. Values below 1 are ignored.
func WithWorkers(n int) LoaderBuilderOption {
	return func(l *loader) {
		if n > 0 {
			l.workers = n
		}
	}
}
