package window

import (
	"fmt"
	"log/slog"
	"runtime"
	"sync"

	"github.com/Carmen-Shannon/oxy-tutorial/common"
	"github.com/cogentcore/webgpu/wgpu"
)

// Window provides a native window and delivers its events to a single handler.
type Window interface {
	// Run pumps the platform event loop until the window closes. Queued input and window events
	// are passed to handler in arrival order, followed by one RedrawRequestedEvent per iteration.
	// A CloseRequestedEvent is the last event handler receives.
	//
	// Run must be called from the goroutine that created the window.
	//
	// Parameters:
	//   - handler: receives every event
	Run(handler func(Event))

	// RequestClose asks Run to return after the current iteration.
	RequestClose()

	// SurfaceDescriptor returns a wgpu.SurfaceDescriptor suitable for creating a WebGPU surface.
	// The descriptor is platform-appropriate (Windows HWND, X11 Xlib, Wayland, macOS Metal, etc.)
	// and is created by the wgpuglfw bridge from the underlying GLFW window.
	//
	// Returns:
	//   - *wgpu.SurfaceDescriptor: the platform-specific surface descriptor, or nil if window is not initialized
	SurfaceDescriptor() *wgpu.SurfaceDescriptor

	// Close destroys the window and releases platform resources.
	//
	// Returns:
	//   - error: error if the window is not initialized
	Close() error

	// Width returns the current framebuffer width in pixels.
	Width() int

	// Height returns the current framebuffer height in pixels.
	Height() int
}

// platformWindow is the native side of a window.
type platformWindow interface {
	pollEvents()
	shouldClose() bool
	setShouldClose()
	surfaceDescriptor() *wgpu.SurfaceDescriptor
	destroy()
}

// engineWindow is the implementation of the Window interface.
type engineWindow struct {
	mu *sync.Mutex

	title  string
	width  int
	height int

	platform platformWindow

	// pending collects events raised by platform callbacks during pollEvents.
	pending []Event
	closed  bool
}

var _ Window = &engineWindow{}

// NewWindow creates and shows a native window.
//
// Parameters:
//   - options: functional options to configure the window
//
// Returns:
//   - Window: the opened window
//   - error: error if the platform window cannot be created
func NewWindow(options ...WindowBuilderOption) (Window, error) {
	w := newEngineWindow(options...)
	if err := newPlatformWindow(w); err != nil {
		return nil, fmt.Errorf("failed to create platform window: %w", err)
	}
	common.Logger().Info("window opened",
		slog.String("title", w.title),
		slog.Int("width", w.width),
		slog.Int("height", w.height),
	)
	return w, nil
}

func newEngineWindow(options ...WindowBuilderOption) *engineWindow {
	w := &engineWindow{
		mu:     &sync.Mutex{},
		title:  "oxy tutorial",
		width:  1280,
		height: 720,
	}
	for _, opt := range options {
		opt(w)
	}
	return w
}

// push queues an event for the next dispatch.
func (w *engineWindow) push(ev Event) {
	w.mu.Lock()
	w.pending = append(w.pending, ev)
	w.mu.Unlock()
}

func (w *engineWindow) drain() []Event {
	w.mu.Lock()
	defer w.mu.Unlock()
	events := w.pending
	w.pending = nil
	return events
}

func (w *engineWindow) Run(handler func(Event)) {
	if w.platform == nil {
		return
	}
	for {
		w.platform.pollEvents()
		for _, ev := range w.drain() {
			if r, ok := ev.(ResizeEvent); ok {
				w.mu.Lock()
				w.width, w.height = r.Width, r.Height
				w.mu.Unlock()
			}
			handler(ev)
			if _, ok := ev.(CloseRequestedEvent); ok {
				return
			}
		}
		if w.platform.shouldClose() {
			handler(CloseRequestedEvent{})
			return
		}

		handler(RedrawRequestedEvent{})
		runtime.Gosched()
	}
}

func (w *engineWindow) RequestClose() {
	if w.platform != nil {
		w.platform.setShouldClose()
	}
}

func (w *engineWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor {
	if w.platform == nil {
		return nil
	}
	return w.platform.surfaceDescriptor()
}

func (w *engineWindow) Close() error {
	if w.platform == nil {
		return fmt.Errorf("window is not initialized")
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil
	}
	w.closed = true
	w.platform.destroy()
	return nil
}

func (w *engineWindow) Width() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.width
}

func (w *engineWindow) Height() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.height
}
