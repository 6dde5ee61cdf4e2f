package app

import (
	"github.com/dshills/indentscope/internal/scope"
)

// host exposes the viewer to Lua scripts. Scripts run on the loop, so the
// methods touch application state directly.
type host struct {
	app *Application
}

func (h *host) Setup(settings map[string]any) error {
	return h.app.cfg.Setup(settings)
}

func (h *host) Scope(line, col int, opts map[string]any) (scope.Scope, error) {
	if line <= 0 {
		line, col = h.app.cursor.Line, h.app.cursor.Col
	}
	return h.app.ctrl.Scope(h.app.doc, line, col, opts)
}

func (h *host) Draw() error {
	return h.app.ctrl.Draw(h.app.doc)
}

func (h *host) Undraw() error {
	h.app.ctrl.Undraw()
	return nil
}
