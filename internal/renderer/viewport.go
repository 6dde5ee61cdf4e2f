package renderer

// Viewport is the visible window of document lines. Lines are 1-indexed.
type Viewport struct {
	top    int
	height int

	// margin keeps the cursor this many lines away from the edges.
	margin int
}

// NewViewport creates a viewport. Height is clamped to a minimum of 1.
func NewViewport(height, margin int) *Viewport {
	return &Viewport{top: 1, height: max(1, height), margin: max(0, margin)}
}

// Top returns the first visible line.
func (v *Viewport) Top() int {
	return v.top
}

// Bottom returns the last visible line, which may be past the document.
func (v *Viewport) Bottom() int {
	return v.top + v.height - 1
}

// Height returns the number of visible lines.
func (v *Viewport) Height() int {
	return v.height
}

// SetHeight resizes the viewport.
func (v *Viewport) SetHeight(height int) {
	v.height = max(1, height)
}

// Contains reports whether line is visible.
func (v *Viewport) Contains(line int) bool {
	return line >= v.top && line <= v.Bottom()
}

// ScrollTo puts line at the top, clamped so the last page stays full.
func (v *Viewport) ScrollTo(line, lineCount int) {
	maxTop := max(1, lineCount-v.height+1)
	v.top = min(max(1, line), maxTop)
}

// ScrollBy scrolls by a delta number of lines.
func (v *Viewport) ScrollBy(delta, lineCount int) {
	v.ScrollTo(v.top+delta, lineCount)
}

// Reveal scrolls minimally so line is visible with the margin around it.
// It returns true if the viewport moved.
func (v *Viewport) Reveal(line, lineCount int) bool {
	margin := min(v.margin, (v.height-1)/2)
	old := v.top
	switch {
	case line < v.top+margin:
		v.ScrollTo(line-margin, lineCount)
	case line > v.Bottom()-margin:
		v.ScrollTo(line+margin-v.height+1, lineCount)
	}
	return v.top != old
}

// RowOf returns the screen row of a line, or -1 when it is not visible.
func (v *Viewport) RowOf(line int) int {
	if !v.Contains(line) {
		return -1
	}
	return line - v.top
}
