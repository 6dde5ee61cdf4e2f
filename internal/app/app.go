// Package app is the interactive scope viewer. It shows one document in the
// terminal and draws the scope at the cursor as the cursor moves.
//
// Terminal events are polled on their own goroutine and posted to the loop,
// which owns every other piece of state.
package app

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/dshills/indentscope/internal/config"
	"github.com/dshills/indentscope/internal/config/watcher"
	"github.com/dshills/indentscope/internal/controller"
	"github.com/dshills/indentscope/internal/document"
	"github.com/dshills/indentscope/internal/draw"
	"github.com/dshills/indentscope/internal/loop"
	"github.com/dshills/indentscope/internal/plugin/lua"
	"github.com/dshills/indentscope/internal/renderer"
	"github.com/dshills/indentscope/internal/renderer/backend"
	"github.com/dshills/indentscope/internal/renderer/overlay"
)

// frameInterval caps repaints at 60 frames per second.
const frameInterval = time.Second / 60

// Options configures the application.
type Options struct {
	// Path is the file to show.
	Path string

	// Script is an optional Lua script run once the viewer is up.
	Script string

	// TabWidth overrides the indent width of the document when positive.
	TabWidth int

	// Config is the settings source. Nil means builtin defaults.
	Config *config.Config

	// Logger receives diagnostics. Nil disables logging.
	Logger *zap.Logger
}

// Application wires the document, the scope engine and the terminal.
type Application struct {
	opts   Options
	logger *zap.Logger
	cfg    *config.Config

	store   *document.Store
	markers *overlay.Manager
	loop    *loop.Loop
	clock   loop.Clock
	post    func(func()) bool
	sched   *draw.Scheduler
	ctrl    *controller.Controller
	script  *lua.Runtime

	backend  backend.Backend
	renderer *renderer.Renderer

	doc     string
	cursor  renderer.Cursor
	wantCol int
	enabled bool
	message string

	renderQueued bool
	running      atomic.Bool
}

// New opens the document and builds the engine.
func New(opts Options) (*Application, error) {
	lp := loop.New(loop.WithLogger(opts.Logger))
	return newApplication(opts, lp, lp.Post)
}

// newApplication builds the application on an arbitrary clock. post queues
// work onto the goroutine owning the clock.
func newApplication(opts Options, clock loop.Clock, post func(func()) bool) (*Application, error) {
	app := &Application{
		opts:    opts,
		logger:  opts.Logger,
		cfg:     opts.Config,
		clock:   clock,
		post:    post,
		enabled: true,
	}
	if app.logger == nil {
		app.logger = zap.NewNop()
	}
	if app.cfg == nil {
		app.cfg = config.New(config.WithLogger(app.logger))
	}
	if lp, ok := clock.(*loop.Loop); ok {
		app.loop = lp
	}

	if err := app.bootstrap(); err != nil {
		return nil, err
	}
	return app, nil
}

// bootstrap initializes all components in dependency order.
func (app *Application) bootstrap() error {
	// 1. Documents
	app.store = document.NewStore()
	var docOpts []document.Option
	if app.opts.TabWidth > 0 {
		docOpts = append(docOpts, document.WithTabWidth(app.opts.TabWidth))
	}
	b, err := app.store.OpenFile(app.opts.Path, docOpts...)
	if err != nil {
		return &InitError{Component: "document", Err: err}
	}
	app.doc = b.ID()

	// 2. Marker layer
	app.markers = overlay.NewManager(app.store, overlay.DefaultConfig())
	app.markers.OnChange(func(string) { app.requestRender() })

	// 3. Scope engine
	app.sched = draw.New(app.clock, app.markers,
		draw.WithLogger(app.logger),
		draw.WithGuard(func(doc string) bool { return app.ctrl.Enabled(doc) }),
	)
	app.ctrl = controller.New(app.store, app.sched, app.cfg, controller.WithLogger(app.logger))
	app.store.OnClose(app.ctrl.DocumentClosed)

	// 4. Configuration changes are applied on the loop
	app.cfg.OnChange(func(ev config.ChangeEvent) {
		app.post(func() {
			app.ctrl.ConfigChanged(ev)
			app.requestRender()
		})
	})

	// 5. Scripting
	if app.opts.Script != "" {
		app.script = lua.NewRuntime(&host{app: app})
	}
	return nil
}

// SetBackend sets the terminal backend.
// Must be called before Run.
func (app *Application) SetBackend(b backend.Backend) error {
	if app.running.Load() {
		return ErrAlreadyRunning
	}
	app.backend = b
	return nil
}

// Run shows the document until the user quits or ctx is done.
func (app *Application) Run(ctx context.Context) error {
	if app.loop == nil {
		return &InitError{Component: "loop", Err: errors.New("application was not created with New")}
	}
	if !app.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer app.running.Store(false)

	if err := app.start(); err != nil {
		return err
	}
	defer app.stop()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	app.watch(ctx)

	go app.pollEvents()

	if app.script != nil {
		app.post(app.runScript)
	}

	err := app.loop.Run(ctx)
	if errors.Is(err, loop.ErrStopped) || errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// start initializes the backend and draws the first frame.
func (app *Application) start() error {
	if app.backend == nil {
		return &InitError{Component: "backend", Err: ErrNoBackend}
	}
	if err := app.backend.Init(); err != nil {
		return &InitError{Component: "backend", Err: err}
	}
	app.renderer = renderer.New(app.backend, app.markers, renderer.DefaultOptions())

	app.moveTo(1, 0)
	app.render()
	return nil
}

// stop releases the backend and the script state.
func (app *Application) stop() {
	app.sched.Undraw()
	if app.script != nil {
		app.script.Close()
	}
	app.backend.Shutdown()
}

// watch reloads the document and configuration files when they change.
func (app *Application) watch(ctx context.Context) {
	if len(app.cfg.Files()) > 0 {
		if err := app.cfg.Watch(ctx); err != nil {
			app.logger.Warn("config watch failed", zap.Error(err))
		}
	}

	b, ok := app.store.Get(app.doc)
	if !ok || b.Path() == "" {
		return
	}
	w, err := watcher.New(watcher.WithLogger(app.logger))
	if err != nil {
		app.logger.Warn("document watch failed", zap.Error(err))
		return
	}
	if err := w.Add(b.Path()); err != nil {
		app.logger.Warn("document watch failed", zap.Error(err))
		_ = w.Close()
		return
	}
	w.OnChange(func(ev watcher.Event) {
		if ev.Op == watcher.OpWrite || ev.Op == watcher.OpCreate {
			app.post(app.reload)
		}
	})
	go func() {
		<-ctx.Done()
		_ = w.Close()
	}()
}

// reload re-reads the document from disk.
func (app *Application) reload() {
	b, ok := app.store.Get(app.doc)
	if !ok {
		return
	}
	if err := b.Load(b.Path()); err != nil {
		app.logger.Warn("reload failed", zap.String("path", b.Path()), zap.Error(err))
		return
	}
	app.moveTo(app.cursor.Line, app.wantCol)
	app.ctrl.TextChanged(app.doc)
	app.message = "reloaded"
	app.requestRender()
}

// pollEvents forwards terminal events to the loop until the backend closes.
func (app *Application) pollEvents() {
	for {
		ev := app.backend.PollEvent()
		if ev.Type == backend.EventClosed {
			return
		}
		app.post(func() {
			if err := app.handleEvent(ev); errors.Is(err, ErrQuit) {
				app.loop.Stop()
			}
		})
	}
}

// runScript executes the configured Lua script.
func (app *Application) runScript() {
	if err := app.script.DoFile(app.opts.Script); err != nil {
		app.logger.Warn("script failed", zap.String("path", app.opts.Script), zap.Error(err))
		app.message = "script error: " + err.Error()
	} else {
		app.message = "ran " + filepath.Base(app.opts.Script)
	}
	app.requestRender()
}

// requestRender schedules a repaint on the next frame.
func (app *Application) requestRender() {
	if app.renderQueued || app.renderer == nil {
		return
	}
	app.renderQueued = true
	app.clock.AfterFunc(frameInterval, app.render)
}

// render paints the current frame.
func (app *Application) render() {
	app.renderQueued = false
	if app.renderer == nil {
		return
	}
	b, ok := app.store.Get(app.doc)
	if !ok {
		return
	}
	app.renderer.Render(b, app.cursor, app.statusLine(b))
}

// statusLine describes the file, the cursor and the shown scope.
func (app *Application) statusLine(b *document.Buffer) string {
	name := filepath.Base(b.Path())
	status := fmt.Sprintf(" %s  %d:%d  ", name, app.cursor.Line, app.cursor.Col+1)

	st := app.sched.State()
	switch {
	case !app.enabled:
		status += "scope off"
	case st.Visible != nil:
		v := st.Visible
		status += fmt.Sprintf("scope %d-%d %s", v.Body.Top, v.Body.Bottom, st.Status)
	default:
		status += "no scope"
	}
	if app.message != "" {
		status += "  " + app.message
	}
	return status
}

// Document returns the id of the shown document.
func (app *Application) Document() string {
	return app.doc
}

// Cursor returns the cursor position.
func (app *Application) Cursor() renderer.Cursor {
	return app.cursor
}

// Controller returns the scope controller.
func (app *Application) Controller() *controller.Controller {
	return app.ctrl
}

// Markers returns the marker layer.
func (app *Application) Markers() *overlay.Manager {
	return app.markers
}

// IsRunning returns true if the application is running.
func (app *Application) IsRunning() bool {
	return app.running.Load()
}
