package draw

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/indentscope/internal/easing"
	"github.com/dshills/indentscope/internal/loop"
	"github.com/dshills/indentscope/internal/renderer/overlay"
	"github.com/dshills/indentscope/internal/scope"
)

type drawCall struct {
	at   time.Duration
	doc  string
	line int
	col  int
}

type fakeLayer struct {
	clock  *loop.Manual
	draws  []drawCall
	clears []string
	failOn map[int]bool
}

func (l *fakeLayer) DrawMarker(doc string, m overlay.Marker) error {
	if l.failOn[m.Line] {
		return errors.New("boom")
	}
	l.draws = append(l.draws, drawCall{at: l.clock.Now(), doc: doc, line: m.Line, col: m.Col})
	return nil
}

func (l *fakeLayer) ClearMarkers(doc string) {
	l.clears = append(l.clears, doc)
}

func (l *fakeLayer) lines() []int {
	out := make([]int, 0, len(l.draws))
	for _, d := range l.draws {
		out = append(out, d.line)
	}
	return out
}

func newTestScheduler(opts ...Option) (*Scheduler, *fakeLayer, *loop.Manual) {
	clock := loop.NewManual()
	layer := &fakeLayer{clock: clock, failOn: map[int]bool{}}
	return New(clock, layer, opts...), layer, clock
}

// blockScope builds a scope whose markers go to column indent-2.
func blockScope(doc string, top, bottom, indent int) scope.Scope {
	return scope.Scope{
		Document: doc,
		Body:     scope.Body{Top: top, Bottom: bottom, Indent: indent},
		Border: scope.Border{
			Top: top - 1, Bottom: bottom + 1,
			HasTop: true, HasBottom: true,
			Indent: indent - 2,
		},
		Reference: scope.Reference{Line: top, Column: indent, Indent: indent},
	}
}

func linear(t *testing.T, duration float64) easing.Func {
	t.Helper()
	f, err := easing.Make(easing.Linear(easing.In, duration, easing.Total))
	require.NoError(t, err)
	return f
}

func TestInstantReveal(t *testing.T) {
	s, layer, clock := newTestScheduler()
	sc := blockScope("doc", 3, 7, 4)

	s.RequestShow(Request{Scope: sc, Origin: 5})
	assert.Empty(t, layer.draws, "reveal goes through the timer even without delay")
	assert.Equal(t, 1, clock.Pending())

	clock.Advance(0)
	assert.Equal(t, []int{5, 4, 6, 3, 7}, layer.lines())
	for _, d := range layer.draws {
		assert.Equal(t, 2, d.col)
		assert.Equal(t, "doc", d.doc)
		assert.Zero(t, d.at)
	}

	st := s.State()
	assert.Equal(t, StatusFinished, st.Status)
	assert.Equal(t, uint64(1), st.EventID)
	require.NotNil(t, st.Visible)
	assert.True(t, scope.Equal(sc, *st.Visible))
	assert.Zero(t, clock.Pending())
}

func TestLockstepTiming(t *testing.T) {
	s, layer, clock := newTestScheduler()

	s.RequestShow(Request{Scope: blockScope("doc", 1, 9, 4), Origin: 5, Animation: linear(t, 40)})
	clock.Advance(0)
	assert.Equal(t, []int{5}, layer.lines())
	assert.Equal(t, StatusDrawing, s.State().Status)

	clock.Advance(10 * time.Millisecond)
	assert.Equal(t, []int{5, 4, 6}, layer.lines())

	clock.Flush()
	assert.Equal(t, []int{5, 4, 6, 3, 7, 2, 8, 1, 9}, layer.lines())

	var times []time.Duration
	for _, d := range layer.draws {
		times = append(times, d.at)
	}
	ms := time.Millisecond
	assert.Equal(t, []time.Duration{0, 10 * ms, 10 * ms, 20 * ms, 20 * ms, 30 * ms, 30 * ms, 40 * ms, 40 * ms}, times)
	assert.Equal(t, StatusFinished, s.State().Status)
}

func TestOriginClampedIntoBody(t *testing.T) {
	s, layer, clock := newTestScheduler()

	s.RequestShow(Request{Scope: blockScope("doc", 3, 6, 4), Origin: 100})
	clock.Advance(0)
	assert.Equal(t, []int{6, 5, 4, 3}, layer.lines())

	s.RequestShow(Request{Scope: blockScope("doc", 10, 12, 8), Origin: 1})
	clock.Advance(0)
	assert.Equal(t, []int{10, 11, 12}, layer.lines()[4:])
}

func TestSingleLineBody(t *testing.T) {
	s, layer, clock := newTestScheduler()

	s.RequestShow(Request{Scope: blockScope("doc", 4, 4, 4), Origin: 4, Animation: linear(t, 100)})
	clock.Advance(0)
	assert.Equal(t, []int{4}, layer.lines())
	assert.Equal(t, StatusFinished, s.State().Status)
}

func TestGranularityBatching(t *testing.T) {
	s, layer, clock := newTestScheduler()

	// 8 steps of 0.25ms: four steps fit in each 1ms tick.
	s.RequestShow(Request{Scope: blockScope("doc", 1, 17, 4), Origin: 9, Animation: linear(t, 2)})
	clock.Advance(0)
	assert.Len(t, layer.draws, 7)
	assert.Equal(t, 1, clock.Pending())

	clock.Advance(time.Millisecond)
	assert.Len(t, layer.draws, 15)

	clock.Advance(time.Millisecond)
	assert.Len(t, layer.draws, 17)
	assert.Equal(t, StatusFinished, s.State().Status)
}

func TestRemainderCarried(t *testing.T) {
	s, layer, clock := newTestScheduler()

	// 4 steps of 2.5ms: armed waits alternate 2ms and 3ms.
	s.RequestShow(Request{Scope: blockScope("doc", 1, 5, 4), Origin: 1, Animation: linear(t, 10)})
	elapsed := clock.Flush()

	ms := time.Millisecond
	var times []time.Duration
	for _, d := range layer.draws {
		times = append(times, d.at)
	}
	assert.Equal(t, []time.Duration{0, 2 * ms, 5 * ms, 7 * ms, 10 * ms}, times)
	assert.Equal(t, 10*ms, elapsed)
}

func TestCoarseGranularity(t *testing.T) {
	s, layer, clock := newTestScheduler(WithGranularity(5 * time.Millisecond))

	s.RequestShow(Request{Scope: blockScope("doc", 1, 5, 4), Origin: 1, Animation: linear(t, 12)})
	clock.Advance(0)
	assert.Equal(t, []int{1, 2}, layer.lines())

	clock.Flush()
	assert.Equal(t, []int{1, 2, 3, 4, 5}, layer.lines())
	assert.Equal(t, 10*time.Millisecond, layer.draws[4].at)
}

func TestDebounceClearsImmediately(t *testing.T) {
	s, layer, clock := newTestScheduler()

	s.RequestShow(Request{Scope: blockScope("doc", 2, 4, 4), Origin: 3})
	clock.Advance(0)
	require.Len(t, layer.draws, 3)

	s.RequestShow(Request{Scope: blockScope("doc", 10, 12, 8), Origin: 11, Delay: 100 * time.Millisecond})
	assert.Equal(t, []string{"doc"}, layer.clears)
	assert.Equal(t, StatusNone, s.State().Status)
	assert.Nil(t, s.State().Visible)

	clock.Advance(99 * time.Millisecond)
	assert.Len(t, layer.draws, 3)

	clock.Advance(time.Millisecond)
	assert.Equal(t, []int{3, 2, 4, 11, 10, 12}, layer.lines())
}

func TestSupersededRequestNeverDraws(t *testing.T) {
	s, layer, clock := newTestScheduler()

	s.RequestShow(Request{Scope: blockScope("a", 2, 4, 4), Origin: 3, Delay: 100 * time.Millisecond})
	clock.Advance(50 * time.Millisecond)
	s.RequestShow(Request{Scope: blockScope("b", 2, 4, 4), Origin: 3, Delay: 100 * time.Millisecond})
	assert.Equal(t, 1, clock.Pending())

	clock.Flush()
	require.NotEmpty(t, layer.draws)
	for _, d := range layer.draws {
		assert.Equal(t, "b", d.doc)
		assert.Equal(t, 150*time.Millisecond, d.at)
	}
}

func TestImmediateSupersedeBeforeAnyTimer(t *testing.T) {
	s, layer, clock := newTestScheduler()

	s.RequestShow(Request{Scope: blockScope("a", 2, 4, 4), Origin: 3})
	s.RequestShow(Request{Scope: blockScope("b", 6, 8, 4), Origin: 7})
	clock.Flush()

	for _, d := range layer.draws {
		assert.Equal(t, "b", d.doc)
	}
	assert.Equal(t, uint64(2), s.State().EventID)
}

func TestRunningAnimationSuperseded(t *testing.T) {
	s, layer, clock := newTestScheduler()

	s.RequestShow(Request{Scope: blockScope("a", 1, 9, 4), Origin: 5, Animation: linear(t, 40)})
	clock.Advance(10 * time.Millisecond)
	require.Equal(t, []int{5, 4, 6}, layer.lines())

	s.RequestShow(Request{Scope: blockScope("b", 1, 3, 8), Origin: 2})
	clock.Flush()

	assert.Equal(t, []int{5, 4, 6, 2, 1, 3}, layer.lines())
	assert.Equal(t, []string{"a"}, layer.clears)
	assert.Equal(t, "b", s.State().Visible.Document)
}

func TestIntersectingScopeRevealsInstantly(t *testing.T) {
	s, layer, clock := newTestScheduler()

	s.RequestShow(Request{Scope: blockScope("doc", 2, 6, 4), Origin: 4})
	clock.Advance(0)
	require.Len(t, layer.draws, 5)

	grown := blockScope("doc", 2, 8, 4)
	s.RequestShow(Request{Scope: grown, Origin: 4, Delay: 100 * time.Millisecond, Animation: linear(t, 500)})
	assert.Empty(t, layer.clears, "intersecting reveal is not debounced")

	clock.Advance(0)
	assert.Len(t, layer.draws, 12)
	for _, d := range layer.draws[5:] {
		assert.Zero(t, d.at)
	}
	assert.Equal(t, StatusFinished, s.State().Status)
}

func TestIntersectPolicyConfigurable(t *testing.T) {
	never := func(scope.Scope, scope.Scope) bool { return false }
	s, layer, clock := newTestScheduler(WithIntersectPolicy(never))

	s.RequestShow(Request{Scope: blockScope("doc", 2, 6, 4), Origin: 4})
	clock.Advance(0)

	s.RequestShow(Request{Scope: blockScope("doc", 2, 8, 4), Origin: 4, Delay: 100 * time.Millisecond})
	clock.Advance(0)
	assert.Len(t, layer.draws, 5)
	assert.Equal(t, []string{"doc"}, layer.clears)

	clock.Advance(100 * time.Millisecond)
	assert.Len(t, layer.draws, 12)
}

func TestLazyRequestKeepsAnimation(t *testing.T) {
	s, layer, clock := newTestScheduler()
	sc := blockScope("doc", 1, 9, 4)

	s.RequestShow(Request{Scope: sc, Origin: 5, Animation: linear(t, 40)})
	clock.Advance(10 * time.Millisecond)

	moved := sc
	moved.Reference.Line = 7
	s.RequestShow(Request{Scope: moved, Origin: 7, Lazy: true, Delay: 100 * time.Millisecond})
	assert.Equal(t, uint64(1), s.State().EventID)
	assert.Empty(t, layer.clears)

	clock.Flush()
	assert.Equal(t, []int{5, 4, 6, 3, 7, 2, 8, 1, 9}, layer.lines())

	s.RequestShow(Request{Scope: sc, Origin: 5})
	assert.Equal(t, uint64(2), s.State().EventID)
}

func TestLazyRequestAfterPendingReveal(t *testing.T) {
	s, layer, clock := newTestScheduler()
	a := blockScope("doc", 3, 7, 4)
	b := blockScope("doc", 12, 15, 4)

	s.RequestShow(Request{Scope: a, Origin: 5})
	clock.Flush()
	require.Equal(t, []int{5, 4, 6, 3, 7}, layer.lines())

	// The cursor leaves for b and comes back before b is revealed.
	s.RequestShow(Request{Scope: b, Origin: 12, Lazy: true})
	s.RequestShow(Request{Scope: a, Origin: 5, Lazy: true})
	assert.Equal(t, uint64(3), s.State().EventID)
	clock.Flush()

	st := s.State()
	require.NotNil(t, st.Visible)
	assert.Equal(t, 3, st.Visible.Body.Top)
	assert.Equal(t, []int{5, 4, 6, 3, 7, 5, 4, 6, 3, 7}, layer.lines())

	// A pending reveal of the visible scope still absorbs lazy requests.
	s.RequestShow(Request{Scope: a, Origin: 5})
	s.RequestShow(Request{Scope: a, Origin: 6, Lazy: true})
	assert.Equal(t, uint64(4), s.State().EventID)
}

func TestLazyRequestWithNothingShown(t *testing.T) {
	s, layer, clock := newTestScheduler()

	s.RequestShow(Request{Scope: blockScope("doc", 2, 3, 4), Origin: 2, Lazy: true})
	clock.Advance(0)
	assert.Equal(t, []int{2, 3}, layer.lines())
}

func TestDegenerateScopeTearsDown(t *testing.T) {
	s, layer, clock := newTestScheduler()

	s.RequestShow(Request{Scope: blockScope("doc", 2, 4, 4), Origin: 3})
	clock.Advance(0)

	whole := scope.Scope{
		Document:  "doc",
		Body:      scope.Body{Top: 1, Bottom: 10, Indent: 0},
		Reference: scope.Reference{Line: 1, Indent: 0},
	}
	require.Negative(t, scope.DrawIndent(whole))

	s.RequestShow(Request{Scope: whole, Origin: 1})
	clock.Advance(0)

	assert.Len(t, layer.draws, 3)
	assert.Equal(t, []string{"doc"}, layer.clears)
	st := s.State()
	assert.Equal(t, StatusNone, st.Status)
	assert.Nil(t, st.Visible)
}

func TestMarkerFailureStopsAnimation(t *testing.T) {
	s, layer, clock := newTestScheduler()
	layer.failOn[3] = true

	s.RequestShow(Request{Scope: blockScope("doc", 1, 9, 4), Origin: 5, Animation: linear(t, 40)})
	clock.Flush()

	// Step 2 draws line 3 first and fails; line 7 is never reached.
	assert.Equal(t, []int{5, 4, 6}, layer.lines())
	assert.Zero(t, clock.Pending())
	assert.Empty(t, layer.clears, "drawn markers are kept")
	assert.Equal(t, StatusDrawing, s.State().Status)
}

func TestGuardStopsAnimation(t *testing.T) {
	enabled := true
	s, layer, clock := newTestScheduler(WithGuard(func(string) bool { return enabled }))

	s.RequestShow(Request{Scope: blockScope("doc", 1, 9, 4), Origin: 5, Animation: linear(t, 40)})
	clock.Advance(10 * time.Millisecond)
	enabled = false
	clock.Flush()

	assert.Equal(t, []int{5, 4, 6}, layer.lines())
}

func TestUndrawCancelsRunningAnimation(t *testing.T) {
	s, layer, clock := newTestScheduler()

	s.RequestShow(Request{Scope: blockScope("doc", 1, 9, 4), Origin: 5, Animation: linear(t, 40)})
	clock.Advance(10 * time.Millisecond)

	s.Undraw()
	assert.Zero(t, clock.Pending())
	assert.Equal(t, []string{"doc"}, layer.clears)
	st := s.State()
	assert.Equal(t, StatusNone, st.Status)
	assert.Nil(t, st.Visible)
	assert.Equal(t, uint64(1), st.EventID)

	clock.Advance(time.Second)
	assert.Len(t, layer.draws, 3)
}

func TestUndrawIdempotent(t *testing.T) {
	s, layer, clock := newTestScheduler()

	s.Undraw()
	assert.Empty(t, layer.clears)

	s.RequestShow(Request{Scope: blockScope("doc", 2, 4, 4), Origin: 3})
	clock.Advance(0)
	s.Undraw()
	s.Undraw()
	assert.Equal(t, []string{"doc"}, layer.clears)
	assert.Equal(t, StatusNone, s.State().Status)
}

func TestUndrawDropsPendingReveal(t *testing.T) {
	s, layer, clock := newTestScheduler()

	s.RequestShow(Request{Scope: blockScope("doc", 2, 4, 4), Origin: 3, Delay: 50 * time.Millisecond})
	s.Undraw()
	clock.Advance(time.Second)

	assert.Empty(t, layer.draws)
	assert.Equal(t, StatusNone, s.State().Status)
}

func TestStateIsSnapshot(t *testing.T) {
	s, _, clock := newTestScheduler()

	s.RequestShow(Request{Scope: blockScope("doc", 2, 4, 4), Origin: 3})
	clock.Advance(0)

	st := s.State()
	st.Visible.Body.Top = 100
	assert.Equal(t, 2, s.State().Visible.Body.Top)
}

func TestMarkerTemplate(t *testing.T) {
	s, _, clock := newTestScheduler()
	layer := &recordingLayer{}
	s.layer = layer

	tmpl := overlay.Marker{Symbol: "│", Style: overlay.TagSymbolOff, Priority: 7, Line: 99, Col: 99}
	s.RequestShow(Request{Scope: blockScope("doc", 2, 2, 5), Origin: 2, Marker: tmpl})
	clock.Advance(0)

	require.Len(t, layer.markers, 1)
	assert.Equal(t, overlay.Marker{Line: 2, Col: 3, Symbol: "│", Style: overlay.TagSymbolOff, Priority: 7}, layer.markers[0])
}

type recordingLayer struct {
	markers []overlay.Marker
}

func (r *recordingLayer) DrawMarker(_ string, m overlay.Marker) error {
	r.markers = append(r.markers, m)
	return nil
}

func (r *recordingLayer) ClearMarkers(string) {}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "none", StatusNone.String())
	assert.Equal(t, "drawing", StatusDrawing.String())
	assert.Equal(t, "finished", StatusFinished.String())
	assert.Equal(t, "unknown", Status(9).String())
}
