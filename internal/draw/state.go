package draw

import "github.com/dshills/indentscope/internal/scope"

// Status is the stage of the scope animation.
type Status uint8

const (
	// StatusNone means nothing is drawn.
	StatusNone Status = iota

	// StatusDrawing means the step loop is running or stopped early.
	StatusDrawing

	// StatusFinished means every body line carries a marker.
	StatusFinished
)

// String returns the string representation of the status.
func (s Status) String() string {
	switch s {
	case StatusNone:
		return "none"
	case StatusDrawing:
		return "drawing"
	case StatusFinished:
		return "finished"
	default:
		return "unknown"
	}
}

// AnimationState is a snapshot of the scheduler state.
type AnimationState struct {
	EventID uint64
	Visible *scope.Scope
	Status  Status
}
