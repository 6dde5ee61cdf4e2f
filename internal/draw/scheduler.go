package draw

import (
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/dshills/indentscope/internal/easing"
	"github.com/dshills/indentscope/internal/loop"
	"github.com/dshills/indentscope/internal/renderer/overlay"
	"github.com/dshills/indentscope/internal/scope"
)

// Layer places and clears scope markers.
type Layer interface {
	DrawMarker(doc string, m overlay.Marker) error
	ClearMarkers(doc string)
}

// Request asks the scheduler to show a scope.
type Request struct {
	Scope scope.Scope

	// Origin is the line the animation starts from, usually the cursor
	// line. It is clamped into the body.
	Origin int

	// Delay is the debounce delay before anything is drawn.
	Delay time.Duration

	// Animation gives the wait before each step. Nil means instant.
	Animation easing.Func

	// Marker is the template for every drawn marker. Line and Col are
	// filled in by the scheduler.
	Marker overlay.Marker

	// Lazy requests are ignored when the same scope is already shown.
	Lazy bool
}

// Scheduler drives the scope animation. It is not safe for concurrent use:
// call it from the loop goroutine only.
type Scheduler struct {
	clock  loop.Clock
	layer  Layer
	logger *zap.Logger

	granularity time.Duration
	intersects  func(visible, next scope.Scope) bool
	guard       func(doc string) bool

	eventID uint64
	visible *scope.Scope
	status  Status

	// timer is the single armed timer, for either a pending reveal or the
	// next animation step.
	timer   loop.Timer
	pending *reveal
	active  *animation

	// drawnDoc is the document holding markers when drawn is set.
	drawn    bool
	drawnDoc string
}

type reveal struct {
	id  uint64
	req Request
}

type animation struct {
	id     uint64
	doc    string
	body   scope.Body
	origin int
	total  int
	step   int
	// wait is the accumulated, not yet slept, wait in milliseconds.
	wait   float64
	ease   easing.Func
	marker overlay.Marker
}

// New creates a scheduler drawing into layer with timers from clock.
func New(clock loop.Clock, layer Layer, opts ...Option) *Scheduler {
	s := &Scheduler{
		clock:       clock,
		layer:       layer,
		logger:      zap.NewNop(),
		granularity: DefaultGranularity,
		intersects:  scope.Intersects,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns a snapshot of the animation state.
func (s *Scheduler) State() AnimationState {
	st := AnimationState{EventID: s.eventID, Status: s.status}
	if s.visible != nil {
		v := *s.visible
		st.Visible = &v
	}
	return st
}

// RequestShow schedules a reveal of req.Scope, superseding any pending or
// running one. Scopes with a negative draw indent only tear down what is
// shown.
func (s *Scheduler) RequestShow(req Request) {
	shown := s.status != StatusNone && s.visible != nil
	if req.Lazy && shown && s.settled(req.Scope) {
		return
	}

	s.eventID++
	if req.Animation == nil {
		req.Animation = easing.None()
	}
	if shown && s.intersects(*s.visible, req.Scope) {
		req.Delay = 0
		req.Animation = easing.None()
	}
	if req.Delay > 0 {
		s.clearVisuals()
	}

	s.stopTimer()
	s.active = nil
	r := &reveal{id: s.eventID, req: req}
	s.pending = r
	s.timer = s.clock.AfterFunc(req.Delay, func() {
		if s.pending != r || r.id != s.eventID {
			return
		}
		s.pending = nil
		s.timer = nil
		s.start(r)
	})
}

// settled reports whether sc is visible and no reveal of another scope is
// armed behind it.
func (s *Scheduler) settled(sc scope.Scope) bool {
	if !scope.Equal(*s.visible, sc) {
		return false
	}
	return s.pending == nil || scope.Equal(s.pending.req.Scope, sc)
}

// Undraw stops any pending or running animation and clears the markers.
// It is idempotent.
func (s *Scheduler) Undraw() {
	s.stopTimer()
	s.pending = nil
	s.active = nil
	s.clearVisuals()
}

func (s *Scheduler) stopTimer() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

func (s *Scheduler) clearVisuals() {
	if s.drawn {
		s.layer.ClearMarkers(s.drawnDoc)
		s.drawn = false
	}
	s.visible = nil
	s.status = StatusNone
}

func (s *Scheduler) start(r *reveal) {
	s.clearVisuals()

	sc := r.req.Scope
	col := scope.DrawIndent(sc)
	if col < 0 {
		s.logger.Debug("scope not drawable",
			zap.Uint64("event", r.id),
			zap.Stringer("scope", sc),
		)
		return
	}

	s.visible = &sc
	s.status = StatusDrawing
	s.drawn = true
	s.drawnDoc = sc.Document

	origin := min(max(r.req.Origin, sc.Body.Top), sc.Body.Bottom)
	marker := r.req.Marker
	marker.Col = col
	a := &animation{
		id:     r.id,
		doc:    sc.Document,
		body:   sc.Body,
		origin: origin,
		total:  max(origin-sc.Body.Top, sc.Body.Bottom-origin),
		ease:   r.req.Animation,
		marker: marker,
	}
	s.active = a
	s.advance(a)
}

// advance draws steps of a until a wait reaches the granularity, then arms
// the timer for the whole-granularity part of it.
func (s *Scheduler) advance(a *animation) {
	gran := float64(s.granularity) / float64(time.Millisecond)
	for {
		if !s.drawStep(a) {
			s.active = nil
			return
		}
		if a.step >= a.total {
			s.active = nil
			s.status = StatusFinished
			return
		}

		a.step++
		a.wait += a.ease(a.step, a.total)
		if a.wait < gran {
			continue
		}

		ms := math.Floor(a.wait/gran) * gran
		a.wait -= ms
		s.timer = s.clock.AfterFunc(time.Duration(ms*float64(time.Millisecond)), func() {
			if s.active != a || a.id != s.eventID {
				return
			}
			s.timer = nil
			s.advance(a)
		})
		return
	}
}

// drawStep draws the lines of the current step. Lines outside the body are
// skipped.
func (s *Scheduler) drawStep(a *animation) bool {
	lines := [2]int{a.origin - a.step, a.origin + a.step}
	n := 2
	if a.step == 0 {
		n = 1
	}
	for _, line := range lines[:n] {
		if !a.body.Contains(line) {
			continue
		}
		if !s.drawLine(a, line) {
			return false
		}
	}
	return true
}

func (s *Scheduler) drawLine(a *animation, line int) bool {
	if a.id != s.eventID {
		return false
	}
	if s.guard != nil && !s.guard(a.doc) {
		s.logger.Debug("draw stopped by guard",
			zap.Uint64("event", a.id),
			zap.String("doc", a.doc),
		)
		return false
	}

	m := a.marker
	m.Line = line
	if err := s.layer.DrawMarker(a.doc, m); err != nil {
		s.logger.Debug("draw marker failed",
			zap.Uint64("event", a.id),
			zap.String("doc", a.doc),
			zap.Int("line", line),
			zap.Error(err),
		)
		return false
	}
	return true
}
