package renderer

import (
	"strconv"
	"strings"

	"github.com/dshills/indentscope/internal/renderer/backend"
	"github.com/dshills/indentscope/internal/renderer/core"
	"github.com/dshills/indentscope/internal/renderer/overlay"
	"github.com/dshills/indentscope/internal/scope"
)

// SpanSource provides overlay spans per document line.
type SpanSource interface {
	SpansForLine(doc string, line int) []overlay.Span
}

// Cursor is a document position. Col is a display column.
type Cursor struct {
	Line int
	Col  int
}

// Options configures the renderer.
type Options struct {
	ShowLineNumbers bool
	ShowStatusLine  bool

	// ScrollMargin is the number of lines kept above and below the cursor.
	ScrollMargin int

	GutterStyle core.Style
	StatusStyle core.Style
}

// DefaultOptions returns sensible default options.
func DefaultOptions() Options {
	return Options{
		ShowLineNumbers: true,
		ShowStatusLine:  true,
		ScrollMargin:    3,
		GutterStyle:     core.DefaultStyle().Dim(),
		StatusStyle:     core.DefaultStyle().Reverse(),
	}
}

// Renderer paints documents onto a backend. It is driven from the loop
// goroutine and keeps no lock.
type Renderer struct {
	backend  backend.Backend
	spans    SpanSource
	opts     Options
	viewport *Viewport

	gutterWidth int
	frames      uint64
}

// New creates a renderer. spans may be nil.
func New(b backend.Backend, spans SpanSource, opts Options) *Renderer {
	r := &Renderer{backend: b, spans: spans, opts: opts}
	_, height := b.Size()
	r.viewport = NewViewport(r.contentHeight(height), opts.ScrollMargin)
	return r
}

// Viewport returns the viewport for scrolling.
func (r *Renderer) Viewport() *Viewport {
	return r.viewport
}

// Resize adapts the viewport to a new screen size.
func (r *Renderer) Resize(_, height int) {
	r.viewport.SetHeight(r.contentHeight(height))
}

// FrameCount returns the number of frames rendered.
func (r *Renderer) FrameCount() uint64 {
	return r.frames
}

// GutterWidth returns the gutter width of the last frame.
func (r *Renderer) GutterWidth() int {
	return r.gutterWidth
}

func (r *Renderer) contentHeight(height int) int {
	if r.opts.ShowStatusLine {
		height--
	}
	return max(1, height)
}

// Render paints one frame.
func (r *Renderer) Render(doc scope.Document, cur Cursor, status string) {
	width, height := r.backend.Size()
	lineCount := doc.LineCount()
	r.gutterWidth = r.calculateGutterWidth(lineCount)

	for row := 0; row < r.viewport.Height() && row < height; row++ {
		line := r.viewport.Top() + row
		r.renderGutter(line, lineCount, row)
		r.renderLine(doc, line, lineCount, row, width)
	}

	if r.opts.ShowStatusLine && height > 1 {
		r.renderStatus(status, height-1, width)
	}
	r.renderCursor(cur, width)
	r.backend.Show()
	r.frames++
}

func (r *Renderer) renderLine(doc scope.Document, line, lineCount, row, width int) {
	var cells []core.Cell
	if line <= lineCount {
		cells = core.CellsFromString(doc.LineText(line), core.DefaultStyle(), doc.IndentWidth())
		if r.spans != nil {
			cells = overlay.CompositeLine(cells, r.spans.SpansForLine(doc.ID(), line))
		}
	}

	empty := core.EmptyCell()
	for x := 0; x+r.gutterWidth < width; x++ {
		cell := empty
		if x < len(cells) {
			cell = cells[x]
		}
		r.backend.SetCell(r.gutterWidth+x, row, cell)
	}
}

// renderGutter renders the line number column.
func (r *Renderer) renderGutter(line, lineCount, row int) {
	if r.gutterWidth == 0 {
		return
	}
	label := "~"
	if line <= lineCount {
		label = strconv.Itoa(line)
	}
	label = padLeft(label, r.gutterWidth-1) + " "
	for x, ch := range label {
		r.backend.SetCell(x, row, core.Cell{Rune: ch, Width: 1, Style: r.opts.GutterStyle})
	}
}

func (r *Renderer) renderStatus(status string, row, width int) {
	cells := core.CellsFromString(status, r.opts.StatusStyle, 1)
	for x := 0; x < width; x++ {
		cell := core.Cell{Rune: ' ', Width: 1, Style: r.opts.StatusStyle}
		if x < len(cells) {
			cell = cells[x]
		}
		r.backend.SetCell(x, row, cell)
	}
}

func (r *Renderer) renderCursor(cur Cursor, width int) {
	row := r.viewport.RowOf(cur.Line)
	x := r.gutterWidth + cur.Col
	if row < 0 || x >= width {
		r.backend.HideCursor()
		return
	}
	r.backend.ShowCursor(x, row)
}

// calculateGutterWidth returns the gutter width: at least three digits
// plus a separator.
func (r *Renderer) calculateGutterWidth(lineCount int) int {
	if !r.opts.ShowLineNumbers {
		return 0
	}
	return max(3, len(strconv.Itoa(lineCount))) + 1
}

func padLeft(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return strings.Repeat(" ", width-len(s)) + s
}
