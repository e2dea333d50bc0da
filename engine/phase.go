package engine

// Phase is the frame loop's current state.
//
// A redraw moves Idle through Updating, Rendering and Presented back to Idle. A resize with a
// non-zero size passes through Resizing. Exit is terminal.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseUpdating
	PhaseRendering
	PhasePresented
	PhaseResizing
	PhaseExit
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseUpdating:
		return "updating"
	case PhaseRendering:
		return "rendering"
	case PhasePresented:
		return "presented"
	case PhaseResizing:
		return "resizing"
	case PhaseExit:
		return "exit"
	}
	return "unknown"
}
