package window

// Event is a window or input event delivered by Window.Run.
type Event interface {
	isEvent()
}

// ResizeEvent reports a new framebuffer size in pixels. Either dimension may be zero while the
// window is minimized.
type ResizeEvent struct {
	Width  int
	Height int
}

// CursorMoveEvent reports the cursor position in framebuffer pixels, origin top-left.
type CursorMoveEvent struct {
	X float64
	Y float64
}

// KeyInputEvent reports a key press, repeat or release. Key is a GLFW key code, matching the
// common.Key* constants.
type KeyInputEvent struct {
	Key     int
	Pressed bool
	Repeat  bool
}

// CloseRequestedEvent reports that the user asked to close the window.
type CloseRequestedEvent struct{}

// RedrawRequestedEvent asks the handler to draw a frame.
type RedrawRequestedEvent struct{}

func (ResizeEvent) isEvent()          {}
func (CursorMoveEvent) isEvent()      {}
func (KeyInputEvent) isEvent()        {}
func (CloseRequestedEvent) isEvent()  {}
func (RedrawRequestedEvent) isEvent() {}
