// Package controller connects documents, configuration and the draw
// scheduler. It decides when a scope is resolved and redrawn.
//
// All methods must be called from the loop goroutine.
package controller

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"github.com/dshills/indentscope/internal/config"
	"github.com/dshills/indentscope/internal/document"
	"github.com/dshills/indentscope/internal/draw"
	"github.com/dshills/indentscope/internal/renderer/overlay"
	"github.com/dshills/indentscope/internal/scope"
)

// ErrNoCursor is returned when a document has no known cursor position.
var ErrNoCursor = errors.New("no cursor position")

// Default scope memo timings.
const (
	DefaultCacheTTL     = time.Minute
	DefaultCacheCleanup = 5 * time.Minute
)

// Position is a cursor position. Line is 1-indexed, Col is a 0-indexed
// display column.
type Position struct {
	Line int
	Col  int
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l.Named("controller")
		}
	}
}

// WithCacheTTL sets how long resolved scopes are memoised.
func WithCacheTTL(ttl time.Duration) Option {
	return func(c *Controller) {
		c.ttl = ttl
	}
}

// Controller reacts to editor events by resolving and drawing scopes.
type Controller struct {
	store  *document.Store
	sched  *draw.Scheduler
	cfg    *config.Config
	logger *zap.Logger

	ttl    time.Duration
	scopes *cache.Cache

	enabled  bool
	cursors  map[string]Position
	settings map[string]config.Settings
}

// New creates a controller.
func New(store *document.Store, sched *draw.Scheduler, cfg *config.Config, opts ...Option) *Controller {
	c := &Controller{
		store:    store,
		sched:    sched,
		cfg:      cfg,
		logger:   zap.NewNop(),
		ttl:      DefaultCacheTTL,
		enabled:  true,
		cursors:  make(map[string]Position),
		settings: make(map[string]config.Settings),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.scopes = cache.New(c.ttl, DefaultCacheCleanup)
	return c
}

// Cursor returns the last known cursor of doc.
func (c *Controller) Cursor(doc string) (Position, bool) {
	p, ok := c.cursors[doc]
	return p, ok
}

// CursorMoved records the cursor and redraws lazily: moving inside the
// shown scope keeps the current animation.
func (c *Controller) CursorMoved(doc string, line, col int) {
	c.cursors[doc] = Position{Line: line, Col: col}
	c.redraw(doc, true)
}

// TextChanged redraws doc after an edit.
func (c *Controller) TextChanged(doc string) {
	c.redraw(doc, false)
}

// Scrolled redraws doc after the view moved.
func (c *Controller) Scrolled(doc string) {
	c.redraw(doc, false)
}

// Draw redraws the scope at the cursor of doc.
func (c *Controller) Draw(doc string) error {
	if _, ok := c.cursors[doc]; !ok {
		return fmt.Errorf("draw %s: %w", doc, ErrNoCursor)
	}
	if _, ok := c.store.Get(doc); !ok {
		return fmt.Errorf("draw %s: %w", doc, document.ErrNotFound)
	}
	c.redraw(doc, false)
	return nil
}

// Undraw removes the shown scope.
func (c *Controller) Undraw() {
	c.sched.Undraw()
}

// DocumentClosed forgets doc and removes its scope if shown.
func (c *Controller) DocumentClosed(doc string) {
	if v := c.sched.State().Visible; v != nil && v.Document == doc {
		c.sched.Undraw()
	}
	delete(c.cursors, doc)
	delete(c.settings, doc)
	c.forgetScopes(doc)
	c.cfg.ClearDocument(doc)
}

// ConfigChanged drops cached settings and scopes and redraws the active
// document.
func (c *Controller) ConfigChanged(ev config.ChangeEvent) {
	if ev.Document == "" {
		clear(c.settings)
		c.scopes.Flush()
	} else {
		delete(c.settings, ev.Document)
		c.forgetScopes(ev.Document)
	}

	if b, ok := c.store.Active(); ok && (ev.Document == "" || ev.Document == b.ID()) {
		if _, ok := c.cursors[b.ID()]; ok {
			c.redraw(b.ID(), false)
		}
	}
}

// SetEnabled turns the engine on or off globally.
func (c *Controller) SetEnabled(on bool) {
	c.enabled = on
	if !on {
		c.sched.Undraw()
		return
	}
	if b, ok := c.store.Active(); ok {
		if _, ok := c.cursors[b.ID()]; ok {
			c.redraw(b.ID(), false)
		}
	}
}

// SetDocumentEnabled turns the engine on or off for one document.
func (c *Controller) SetDocumentEnabled(doc string, on bool) error {
	if err := c.cfg.SetDocumentValue(doc, "disable", !on); err != nil {
		return err
	}
	delete(c.settings, doc)
	if on {
		if _, ok := c.cursors[doc]; ok {
			c.redraw(doc, false)
		}
		return nil
	}
	if v := c.sched.State().Visible; v != nil && v.Document == doc {
		c.sched.Undraw()
	}
	return nil
}

// Enabled reports whether scopes are drawn for doc. It is used as the
// scheduler guard.
func (c *Controller) Enabled(doc string) bool {
	if !c.enabled {
		return false
	}
	s, err := c.settingsFor(doc)
	if err != nil {
		return false
	}
	return !s.Disable
}

// Scope resolves the scope of doc at a position with call-level setting
// overrides. call may be nil.
func (c *Controller) Scope(doc string, line, col int, call map[string]any) (scope.Scope, error) {
	b, ok := c.store.Get(doc)
	if !ok {
		return scope.Scope{}, fmt.Errorf("scope %s: %w", doc, document.ErrNotFound)
	}

	var (
		s   config.Settings
		err error
	)
	if len(call) > 0 {
		s, err = c.cfg.Settings(doc, call)
	} else {
		s, err = c.settingsFor(doc)
	}
	if err != nil {
		return scope.Scope{}, err
	}
	opts, err := s.ScopeOptions()
	if err != nil {
		return scope.Scope{}, err
	}
	return c.resolve(b, Position{Line: line, Col: col}, opts), nil
}

// Target returns the line a "go to scope edge" motion from the cursor of
// doc lands on.
func (c *Controller) Target(doc string, side scope.Side, useBorder bool) (int, error) {
	sc, n, err := c.cursorScope(doc)
	if err != nil {
		return 0, err
	}
	return scope.Target(sc, side, useBorder, n), nil
}

// TextObject returns the line range of the scope at the cursor of doc.
func (c *Controller) TextObject(doc string, useBorder bool) (top, bottom int, err error) {
	sc, n, err := c.cursorScope(doc)
	if err != nil {
		return 0, 0, err
	}
	top, bottom = scope.TextObject(sc, useBorder, n)
	return top, bottom, nil
}

func (c *Controller) cursorScope(doc string) (scope.Scope, int, error) {
	pos, ok := c.cursors[doc]
	if !ok {
		return scope.Scope{}, 0, fmt.Errorf("scope %s: %w", doc, ErrNoCursor)
	}
	b, ok := c.store.Get(doc)
	if !ok {
		return scope.Scope{}, 0, fmt.Errorf("scope %s: %w", doc, document.ErrNotFound)
	}
	sc, err := c.Scope(doc, pos.Line, pos.Col, nil)
	return sc, b.LineCount(), err
}

func (c *Controller) redraw(doc string, lazy bool) {
	b, ok := c.store.Get(doc)
	if !ok {
		return
	}
	pos, ok := c.cursors[doc]
	if !ok {
		return
	}
	if !c.Enabled(doc) {
		c.sched.Undraw()
		return
	}

	s, err := c.settingsFor(doc)
	if err != nil {
		return
	}
	opts, err := s.ScopeOptions()
	if err != nil {
		c.logger.Warn("invalid scope options", zap.Error(err))
		return
	}
	anim, err := s.Animation()
	if err != nil {
		c.logger.Warn("invalid animation", zap.Error(err))
		return
	}

	sc := c.resolve(b, pos, opts)
	if s.Draw.SkipIncomplete && sc.Body.Incomplete {
		c.logger.Debug("skipping incomplete scope", zap.String("doc", doc), zap.Stringer("scope", sc))
		c.sched.Undraw()
		return
	}

	c.sched.RequestShow(draw.Request{
		Scope:     sc,
		Origin:    pos.Line,
		Delay:     s.Delay(),
		Animation: anim,
		Marker: overlay.Marker{
			Symbol:   s.Symbol,
			Style:    StyleFor(sc, b.IndentWidth()),
			Priority: s.Draw.Priority,
		},
		Lazy: lazy,
	})
}

// StyleFor returns the marker style tag: the off style marks a draw column
// that is not on an indent stop.
func StyleFor(sc scope.Scope, indentWidth int) overlay.StyleTag {
	col := scope.DrawIndent(sc)
	if indentWidth > 0 && col%indentWidth != 0 {
		return overlay.TagSymbolOff
	}
	return overlay.TagSymbol
}

func (c *Controller) settingsFor(doc string) (config.Settings, error) {
	if s, ok := c.settings[doc]; ok {
		return s, nil
	}
	s, err := c.cfg.Settings(doc, nil)
	if err != nil {
		c.logger.Warn("invalid settings", zap.String("doc", doc), zap.Error(err))
		return config.Settings{}, err
	}
	c.settings[doc] = s
	return s, nil
}

// resolve memoises scope.Resolve by document revision, position and
// options.
func (c *Controller) resolve(b *document.Buffer, pos Position, opts scope.Options) scope.Scope {
	key := fmt.Sprintf("%s\x00%d\x00%d\x00%d\x00%+v", b.ID(), b.Revision(), pos.Line, pos.Col, opts)
	if v, ok := c.scopes.Get(key); ok {
		return v.(scope.Scope)
	}

	sc := scope.Resolve(b, pos.Line, pos.Col+1, opts)
	c.scopes.SetDefault(key, sc)
	return sc
}

func (c *Controller) forgetScopes(doc string) {
	prefix := doc + "\x00"
	for key := range c.scopes.Items() {
		if strings.HasPrefix(key, prefix) {
			c.scopes.Delete(key)
		}
	}
}

// CachedScopes returns the number of memoised scopes.
func (c *Controller) CachedScopes() int {
	return c.scopes.ItemCount()
}
