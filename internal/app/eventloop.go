package app

import (
	"github.com/dshills/indentscope/internal/renderer/backend"
	"github.com/dshills/indentscope/internal/renderer/core"
	"github.com/dshills/indentscope/internal/scope"
)

// handleEvent processes a backend event.
// Returns ErrQuit if the application should exit.
func (app *Application) handleEvent(ev backend.Event) error {
	switch ev.Type {
	case backend.EventResize:
		return app.handleResize(ev)
	case backend.EventKey:
		return app.handleKey(ev)
	default:
		return nil
	}
}

// handleResize adapts the viewport and redraws the scope.
func (app *Application) handleResize(ev backend.Event) error {
	if app.renderer != nil {
		app.renderer.Resize(ev.Width, ev.Height)
		app.reveal()
	}
	app.ctrl.Scrolled(app.doc)
	app.requestRender()
	return nil
}

// handleKey maps keys to viewer actions.
func (app *Application) handleKey(ev backend.Event) error {
	app.message = ""
	page := app.pageHeight()

	switch ev.Key {
	case backend.KeyEscape, backend.KeyCtrlC:
		return ErrQuit
	case backend.KeyUp:
		app.moveBy(-1)
	case backend.KeyDown:
		app.moveBy(1)
	case backend.KeyLeft:
		app.moveTo(app.cursor.Line, app.cursor.Col-1)
	case backend.KeyRight:
		app.moveTo(app.cursor.Line, app.cursor.Col+1)
	case backend.KeyHome:
		app.moveTo(app.cursor.Line, 0)
	case backend.KeyEnd:
		app.moveTo(app.cursor.Line, app.lineWidth(app.cursor.Line))
	case backend.KeyPageUp:
		app.scrollBy(-page)
	case backend.KeyPageDown:
		app.scrollBy(page)
	case backend.KeyCtrlU:
		app.scrollBy(-max(1, page/2))
	case backend.KeyCtrlD:
		app.scrollBy(max(1, page/2))
	case backend.KeyRune:
		return app.handleRune(ev.Rune)
	}
	return nil
}

func (app *Application) handleRune(r rune) error {
	switch r {
	case 'q':
		return ErrQuit
	case 'k':
		app.moveBy(-1)
	case 'j':
		app.moveBy(1)
	case 'h':
		app.moveTo(app.cursor.Line, app.cursor.Col-1)
	case 'l':
		app.moveTo(app.cursor.Line, app.cursor.Col+1)
	case 'g':
		app.moveTo(1, app.wantCol)
	case 'G':
		app.moveTo(app.lineCount(), app.wantCol)
	case '[':
		app.jump(scope.SideTop)
	case ']':
		app.jump(scope.SideBottom)
	case 't':
		app.toggle()
	}
	return nil
}

// moveBy moves the cursor vertically keeping the wanted column.
func (app *Application) moveBy(delta int) {
	col := app.wantCol
	app.moveTo(app.cursor.Line+delta, col)
	app.wantCol = col
}

// moveTo places the cursor, clamped into the document, scrolls it into
// view and tells the controller.
func (app *Application) moveTo(line, col int) {
	line = min(max(1, line), app.lineCount())
	app.wantCol = max(0, col)
	col = min(app.wantCol, max(0, app.lineWidth(line)-1))
	app.cursor.Line, app.cursor.Col = line, col

	scrolled := app.reveal()
	app.ctrl.CursorMoved(app.doc, line, col)
	if scrolled {
		app.ctrl.Scrolled(app.doc)
	}
	app.requestRender()
}

// scrollBy moves the view and the cursor by the same number of lines.
func (app *Application) scrollBy(delta int) {
	if app.renderer != nil {
		app.renderer.Viewport().ScrollBy(delta, app.lineCount())
	}
	col := app.wantCol
	app.moveTo(app.cursor.Line+delta, col)
	app.wantCol = col
	app.ctrl.Scrolled(app.doc)
}

// jump moves the cursor to an edge of the scope at the cursor.
func (app *Application) jump(side scope.Side) {
	line, err := app.ctrl.Target(app.doc, side, true)
	if err != nil {
		app.message = err.Error()
		app.requestRender()
		return
	}
	col := app.wantCol
	app.moveTo(line, col)
	app.wantCol = col
}

// toggle switches the scope engine on or off.
func (app *Application) toggle() {
	app.enabled = !app.enabled
	app.ctrl.SetEnabled(app.enabled)
	app.requestRender()
}

func (app *Application) reveal() bool {
	if app.renderer == nil {
		return false
	}
	return app.renderer.Viewport().Reveal(app.cursor.Line, app.lineCount())
}

func (app *Application) pageHeight() int {
	if app.renderer == nil {
		return 1
	}
	return max(1, app.renderer.Viewport().Height()-1)
}

func (app *Application) lineCount() int {
	n, _ := app.store.LineCount(app.doc)
	return max(1, n)
}

// lineWidth returns the display width of a line.
func (app *Application) lineWidth(line int) int {
	b, ok := app.store.Get(app.doc)
	if !ok {
		return 0
	}
	return len(core.CellsFromString(b.LineText(line), core.DefaultStyle(), b.IndentWidth()))
}
