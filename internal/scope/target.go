package scope

// Side selects an edge of a scope.
type Side uint8

const (
	// SideTop is the upper edge.
	SideTop Side = iota
	// SideBottom is the lower edge.
	SideBottom
)

// Target returns the line a "go to scope edge" motion lands on.
// With useBorder the border line is preferred when present; imaginary
// border lines fall back to the body edge.
func Target(s Scope, side Side, useBorder bool, lineCount int) int {
	switch side {
	case SideTop:
		if useBorder && s.Border.HasTop && s.Border.Top >= 1 {
			return s.Border.Top
		}
		return s.Body.Top
	default:
		if useBorder && s.Border.HasBottom && s.Border.Bottom <= lineCount {
			return s.Border.Bottom
		}
		return s.Body.Bottom
	}
}

// TextObject returns the inclusive line range covered by the scope.
// With useBorder present border lines are included, clamped into
// [1, lineCount].
func TextObject(s Scope, useBorder bool, lineCount int) (top, bottom int) {
	top, bottom = s.Body.Top, s.Body.Bottom
	if !useBorder {
		return top, bottom
	}
	if s.Border.HasTop {
		top = max(s.Border.Top, 1)
	}
	if s.Border.HasBottom {
		bottom = min(s.Border.Bottom, max(lineCount, 1))
	}
	return top, bottom
}
