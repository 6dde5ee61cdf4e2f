package main

import (
	"github.com/dshills/indentscope/internal/config"
	"github.com/dshills/indentscope/internal/controller"
	"github.com/dshills/indentscope/internal/document"
	"github.com/dshills/indentscope/internal/draw"
	"github.com/dshills/indentscope/internal/loop"
	"github.com/dshills/indentscope/internal/renderer/overlay"
	"go.uber.org/zap"
)

// engine runs the scope engine without a terminal. Timers fire when the
// manual clock is flushed.
type engine struct {
	store   *document.Store
	markers *overlay.Manager
	clock   *loop.Manual
	sched   *draw.Scheduler
	ctrl    *controller.Controller
}

func newEngine(cfg *config.Config, logger *zap.Logger) *engine {
	e := &engine{store: document.NewStore(), clock: loop.NewManual()}
	e.markers = overlay.NewManager(e.store, overlay.DefaultConfig())
	e.sched = draw.New(e.clock, e.markers,
		draw.WithLogger(logger),
		draw.WithGuard(func(doc string) bool { return e.ctrl.Enabled(doc) }),
	)
	e.ctrl = controller.New(e.store, e.sched, cfg, controller.WithLogger(logger))
	return e
}

// show draws the scope at a position and waits for the animation to end.
func (e *engine) show(doc string, line, col int) draw.AnimationState {
	e.ctrl.CursorMoved(doc, line, col)
	e.clock.Flush()
	return e.sched.State()
}
