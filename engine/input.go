package engine

import (
	"github.com/Carmen-Shannon/oxy-tutorial/common"
	"github.com/Carmen-Shannon/oxy-tutorial/engine/window"
	"github.com/cogentcore/webgpu/wgpu"
)

// cursorClearColor maps a cursor position to the clear color (x/width, y/height, 1, 1).
func cursorClearColor(x, y float64, width, height int) wgpu.Color {
	return wgpu.Color{R: x / float64(width), G: y / float64(height), B: 1, A: 1}
}

func (e *engine) handleCursor(ev window.CursorMoveEvent) {
	w, h := e.surface.SurfaceSize()
	if w <= 0 || h <= 0 {
		return
	}
	e.clearColor = cursorClearColor(ev.X, ev.Y, w, h)
}

func (e *engine) handleKey(ev window.KeyInputEvent) {
	if ev.Key == common.KeyEsc && ev.Pressed {
		e.exit(nil)
		return
	}
	e.scene.ProcessKey(ev.Key, ev.Pressed)
}
