package engine

import (
	"log/slog"

	"cogentcore.org/core/base/errors"
	"github.com/Carmen-Shannon/oxy-tutorial/common"
	"github.com/Carmen-Shannon/oxy-tutorial/engine/profiler"
	"github.com/Carmen-Shannon/oxy-tutorial/engine/renderer"
	"github.com/Carmen-Shannon/oxy-tutorial/engine/window"
	"github.com/cogentcore/webgpu/wgpu"
)

// Surface is the part of the renderer the frame loop drives. renderer.Renderer implements it.
type Surface interface {
	Resize(width, height int) error
	Reconfigure() error
	SurfaceSize() (width, height int)
	BeginFrame(clear wgpu.Color) error
	EndFrame() error
	Present()
}

// Scene is the part of the scene the frame loop drives. scene.Scene implements it.
type Scene interface {
	ProcessKey(key int, pressed bool) bool
	Resize(width, height int)
	Update() error
	Draw() error
}

// EventLoop delivers window events. window.Window implements it.
type EventLoop interface {
	Run(handler func(window.Event))
	RequestClose()
}

// Engine is the frame loop state machine. It turns window events into camera updates, resizes
// and frames, and decides how surface acquire failures are handled:
//   - lost: reconfigure at the current size and retry on the next redraw
//   - out of memory or device lost: exit with the error
//   - anything else: log and skip the frame
type Engine interface {
	// Run drives the loop from events until the window closes or the engine exits.
	//
	// Parameters:
	//   - loop: the event source; asked to close when the engine exits
	//
	// Returns:
	//   - error: the fatal error that ended the loop, or nil for a normal exit
	Run(loop EventLoop) error

	// HandleEvent advances the state machine by one event. Events after exit are ignored.
	HandleEvent(ev window.Event)

	// Phase returns the current phase.
	Phase() Phase

	// ClearColor returns the color the next frame is cleared to.
	ClearColor() wgpu.Color

	// Err returns the fatal error that ended the loop, if any.
	Err() error
}

type engine struct {
	surface Surface
	scene   Scene
	loop    EventLoop

	phase      Phase
	clearColor wgpu.Color
	err        error

	profiler *profiler.Profiler
}

var _ Engine = &engine{}

// NewEngine creates an idle Engine.
//
// Parameters:
//   - surface: the surface frames are rendered to
//   - sc: the scene updated and drawn each frame
//   - options: functional options to configure the engine
//
// Returns:
//   - Engine: the engine, in PhaseIdle
func NewEngine(surface Surface, sc Scene, options ...EngineBuilderOption) Engine {
	e := &engine{
		surface:    surface,
		scene:      sc,
		phase:      PhaseIdle,
		clearColor: wgpu.Color{R: 0.1, G: 0.2, B: 0.3, A: 1},
	}
	for _, option := range options {
		option(e)
	}
	return e
}

func (e *engine) Run(loop EventLoop) error {
	e.loop = loop
	loop.Run(e.HandleEvent)
	if e.phase != PhaseExit {
		e.exit(nil)
	}
	return e.err
}

func (e *engine) Phase() Phase {
	return e.phase
}

func (e *engine) ClearColor() wgpu.Color {
	return e.clearColor
}

func (e *engine) Err() error {
	return e.err
}

func (e *engine) HandleEvent(ev window.Event) {
	if e.phase == PhaseExit {
		return
	}
	switch ev := ev.(type) {
	case window.RedrawRequestedEvent:
		e.frame()
	case window.ResizeEvent:
		e.resize(ev.Width, ev.Height)
	case window.CursorMoveEvent:
		e.handleCursor(ev)
	case window.KeyInputEvent:
		e.handleKey(ev)
	case window.CloseRequestedEvent:
		e.exit(nil)
	}
}

// frame runs Updating, Rendering and Presented and returns to Idle.
func (e *engine) frame() {
	e.phase = PhaseUpdating
	if err := e.scene.Update(); err != nil {
		errors.Log(err)
	}

	e.phase = PhaseRendering
	if err := e.surface.BeginFrame(e.clearColor); err != nil {
		e.acquireFailed(err)
		return
	}
	if err := e.scene.Draw(); err != nil {
		errors.Log(err)
	}
	if err := e.surface.EndFrame(); err != nil {
		errors.Log(err)
	}

	e.phase = PhasePresented
	e.surface.Present()
	if e.profiler != nil {
		e.profiler.Tick()
	}
	e.phase = PhaseIdle
}

func (e *engine) acquireFailed(err error) {
	switch {
	case renderer.IsFatal(err):
		e.exit(err)
		return
	case errors.Is(err, renderer.ErrSurfaceLost):
		w, h := e.surface.SurfaceSize()
		common.Logger().Warn("surface lost, reconfiguring", slog.Int("width", w), slog.Int("height", h))
		if rerr := e.surface.Reconfigure(); rerr != nil {
			if renderer.IsFatal(rerr) {
				e.exit(rerr)
				return
			}
			errors.Log(rerr)
		}
	default:
		common.Logger().Debug("frame skipped", slog.String("reason", err.Error()))
	}
	e.phase = PhaseIdle
}

func (e *engine) resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	e.phase = PhaseResizing
	if err := e.surface.Resize(width, height); err != nil {
		if renderer.IsFatal(err) {
			e.exit(err)
			return
		}
		errors.Log(err)
	}
	e.scene.Resize(width, height)
	common.Logger().Info("resized", slog.Int("width", width), slog.Int("height", height))
	e.phase = PhaseIdle
}

func (e *engine) exit(err error) {
	e.phase = PhaseExit
	e.err = err
	if err != nil {
		common.Logger().Error("frame loop exit", slog.String("error", err.Error()))
	} else {
		common.Logger().Info("frame loop exit")
	}
	if e.loop != nil {
		e.loop.RequestClose()
	}
}
