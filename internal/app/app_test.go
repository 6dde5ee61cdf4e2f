package app

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/indentscope/internal/config"
	"github.com/dshills/indentscope/internal/loop"
	"github.com/dshills/indentscope/internal/renderer"
	"github.com/dshills/indentscope/internal/renderer/backend"
)

const sample = "func main() {\n    if x {\n        a()\n        b()\n    }\n}\n"

type testApp struct {
	*Application
	clock *loop.Manual
	term  *backend.NullBackend
	path  string
}

func writeSample(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// newTestApp builds a started application on a manual clock. Posted work
// runs immediately.
func newTestApp(t *testing.T, script string) *testApp {
	t.Helper()
	cfg := config.New()
	require.NoError(t, cfg.SetArgs(map[string]any{"draw.delay": 0, "draw.animation.shape": "none"}))

	clock := loop.NewManual()
	path := writeSample(t, "main.go", sample)
	app, err := newApplication(Options{Path: path, Script: script, Config: cfg}, clock, func(fn func()) bool {
		fn()
		return true
	})
	require.NoError(t, err)

	term := backend.NewNullBackend(80, 10)
	require.NoError(t, app.SetBackend(term))
	require.NoError(t, app.start())
	t.Cleanup(app.stop)
	return &testApp{Application: app, clock: clock, term: term, path: path}
}

func (a *testApp) key(t *testing.T, k backend.Key) {
	t.Helper()
	require.NoError(t, a.handleEvent(backend.Event{Type: backend.EventKey, Key: k}))
	a.clock.Flush()
}

func (a *testApp) runes(t *testing.T, keys string) {
	t.Helper()
	for _, r := range keys {
		require.NoError(t, a.handleEvent(backend.Event{Type: backend.EventKey, Key: backend.KeyRune, Rune: r}))
	}
	a.clock.Flush()
}

func TestNewMissingFile(t *testing.T) {
	_, err := New(Options{Path: filepath.Join(t.TempDir(), "missing.go")})
	var ierr *InitError
	require.ErrorAs(t, err, &ierr)
	assert.Equal(t, "document", ierr.Component)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestRunWithoutBackend(t *testing.T) {
	app, err := New(Options{Path: writeSample(t, "main.go", sample)})
	require.NoError(t, err)
	assert.ErrorIs(t, app.Run(context.Background()), ErrNoBackend)
}

func TestStartRendersDocument(t *testing.T) {
	a := newTestApp(t, "")

	assert.Equal(t, renderer.Cursor{Line: 1, Col: 0}, a.Cursor())
	assert.True(t, strings.HasPrefix(a.term.Row(0), "  1 func main() {"))
	assert.Contains(t, a.term.Row(9), "main.go  1:1  no scope")

	// the top-level line has no scope to draw
	assert.Zero(t, a.Markers().Count(a.Document()))
}

func TestMovingDrawsScope(t *testing.T) {
	a := newTestApp(t, "")

	a.runes(t, "jj")
	a.key(t, backend.KeyEnd)

	assert.Equal(t, renderer.Cursor{Line: 3, Col: 10}, a.Cursor())
	assert.Equal(t, []int{3, 4}, a.Markers().Lines(a.Document()))
	assert.Contains(t, a.term.Row(2), "    ╎   a()")
	assert.Contains(t, a.term.Row(3), "    ╎   b()")
	assert.NotContains(t, a.term.Row(1), "╎")
	assert.Contains(t, a.term.Row(9), "3:11  scope 3-4 finished")

	x, y, visible := a.term.CursorPosition()
	assert.True(t, visible)
	assert.Equal(t, 4+10, x)
	assert.Equal(t, 2, y)
}

func TestStickyColumn(t *testing.T) {
	a := newTestApp(t, "")

	a.runes(t, "jj")
	a.key(t, backend.KeyEnd)
	a.runes(t, "jj") // "    }" is shorter
	assert.Equal(t, renderer.Cursor{Line: 5, Col: 4}, a.Cursor())

	a.runes(t, "kk")
	assert.Equal(t, renderer.Cursor{Line: 3, Col: 10}, a.Cursor())

	a.runes(t, "hh")
	assert.Equal(t, 8, a.Cursor().Col)
	a.key(t, backend.KeyHome)
	assert.Equal(t, 0, a.Cursor().Col)
	a.key(t, backend.KeyRight)
	assert.Equal(t, 1, a.Cursor().Col)
}

func TestTopBottomAndJumps(t *testing.T) {
	a := newTestApp(t, "")

	a.runes(t, "G")
	assert.Equal(t, 6, a.Cursor().Line)
	a.runes(t, "g")
	assert.Equal(t, 1, a.Cursor().Line)

	a.runes(t, "jj")
	a.key(t, backend.KeyEnd)
	a.runes(t, "[")
	assert.Equal(t, 2, a.Cursor().Line)

	a.runes(t, "jj]")
	assert.Equal(t, 5, a.Cursor().Line)
}

func TestToggle(t *testing.T) {
	a := newTestApp(t, "")
	a.runes(t, "jj")
	a.key(t, backend.KeyEnd)
	require.Equal(t, 2, a.Markers().Count(a.Document()))

	a.runes(t, "t")
	assert.Zero(t, a.Markers().Count(a.Document()))
	assert.Contains(t, a.term.Row(9), "scope off")

	a.runes(t, "t")
	assert.Equal(t, 2, a.Markers().Count(a.Document()))
}

func TestScrolling(t *testing.T) {
	lines := []string{"root:"}
	for i := 0; i < 40; i++ {
		lines = append(lines, "    item")
	}
	a := newTestApp(t, "")
	require.NoError(t, os.WriteFile(a.path, []byte(strings.Join(lines, "\n")), 0o644))
	a.reload()
	a.clock.Flush()

	a.key(t, backend.KeyPageDown)
	assert.Equal(t, 9, a.Cursor().Line)
	assert.True(t, a.renderer.Viewport().Contains(9))

	a.key(t, backend.KeyCtrlU)
	assert.Equal(t, 5, a.Cursor().Line)

	a.key(t, backend.KeyCtrlD)
	assert.Equal(t, 9, a.Cursor().Line)

	a.runes(t, "G")
	assert.Equal(t, 41, a.Cursor().Line)
	assert.Equal(t, 41, a.renderer.Viewport().Bottom())
	assert.Contains(t, a.term.Row(8), " 41 ")
}

func TestReloadRedraws(t *testing.T) {
	a := newTestApp(t, "")
	a.runes(t, "jj")
	a.key(t, backend.KeyEnd)
	require.Equal(t, []int{3, 4}, a.Markers().Lines(a.Document()))

	require.NoError(t, os.WriteFile(a.path, []byte("func main() {\n    if x {\n        a()\n        b()\n        c()\n    }\n}\n"), 0o644))
	a.reload()
	a.clock.Flush()

	assert.Equal(t, []int{3, 4, 5}, a.Markers().Lines(a.Document()))
	assert.Contains(t, a.term.Row(9), "reloaded")
}

func TestQuitKeys(t *testing.T) {
	a := newTestApp(t, "")
	assert.ErrorIs(t, a.handleEvent(backend.Event{Type: backend.EventKey, Key: backend.KeyRune, Rune: 'q'}), ErrQuit)
	assert.ErrorIs(t, a.handleEvent(backend.Event{Type: backend.EventKey, Key: backend.KeyEscape}), ErrQuit)
	assert.ErrorIs(t, a.handleEvent(backend.Event{Type: backend.EventKey, Key: backend.KeyCtrlC}), ErrQuit)
	assert.NoError(t, a.handleEvent(backend.Event{Type: backend.EventKey, Key: backend.KeyRune, Rune: 'x'}))
}

func TestScriptHost(t *testing.T) {
	script := writeSample(t, "init.lua", `
		local s = require("indentscope")
		s.setup({ symbol = "|" })
		local sc = s.get_scope()
		if sc.body.top ~= 3 or sc.border.indent ~= 4 then
			error("unexpected scope")
		end
		local other = s.get_scope(1, 0)
		if other.border.top ~= nil then
			error("top level has no border")
		end
	`)
	a := newTestApp(t, script)
	a.runes(t, "jj")
	a.key(t, backend.KeyEnd)

	a.runScript()
	a.clock.Flush()

	assert.Contains(t, a.term.Row(9), "ran init.lua")
	ms := a.Markers().MarkersOnLine(a.Document(), 3)
	require.Len(t, ms, 1)
	assert.Equal(t, "|", ms[0].Symbol)
}

func TestScriptError(t *testing.T) {
	script := writeSample(t, "bad.lua", `error("boom")`)
	a := newTestApp(t, script)

	a.runScript()
	a.clock.Flush()
	assert.Contains(t, a.term.Row(9), "script error")
}

func TestRunQuits(t *testing.T) {
	app, err := New(Options{Path: writeSample(t, "main.go", sample)})
	require.NoError(t, err)
	term := backend.NewNullBackend(40, 10)
	require.NoError(t, app.SetBackend(term))

	done := make(chan error, 1)
	go func() { done <- app.Run(context.Background()) }()

	require.Eventually(t, app.IsRunning, time.Second, 5*time.Millisecond)
	term.PostEvent(backend.Event{Type: backend.EventKey, Key: backend.KeyRune, Rune: 'q'})

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("Run did not return")
	}
	assert.False(t, app.IsRunning())
	assert.NoError(t, app.SetBackend(term))
}
