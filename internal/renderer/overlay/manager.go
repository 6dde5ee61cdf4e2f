package overlay

import (
	"fmt"
	"sort"
	"sync"

	"github.com/dshills/indentscope/internal/renderer/core"
)

// Manager keeps per-document marker sets.
type Manager struct {
	mu sync.RWMutex

	// markers maps document id to line to markers on that line.
	markers map[string]map[int][]Marker

	docs   Documents
	config Config

	onChange []func(doc string)
}

// NewManager creates a marker manager. docs validates marker positions;
// it may be nil to accept any position.
func NewManager(docs Documents, config Config) *Manager {
	return &Manager{
		markers: make(map[string]map[int][]Marker),
		docs:    docs,
		config:  config,
	}
}

// Config returns the current configuration.
func (m *Manager) Config() Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config
}

// SetConfig updates the configuration.
func (m *Manager) SetConfig(config Config) {
	m.mu.Lock()
	m.config = config
	m.mu.Unlock()
}

// OnChange registers a callback run after markers of a document change.
func (m *Manager) OnChange(fn func(doc string)) {
	m.mu.Lock()
	m.onChange = append(m.onChange, fn)
	m.mu.Unlock()
}

// DrawMarker places a marker. A marker at the same cell and priority is
// replaced.
func (m *Manager) DrawMarker(doc string, mk Marker) error {
	if mk.Col < 0 || core.StringWidth(mk.Symbol) != 1 {
		return fmt.Errorf("%w: symbol %q at column %d", ErrInvalidMarker, mk.Symbol, mk.Col)
	}
	if m.docs != nil {
		n, ok := m.docs.LineCount(doc)
		if !ok {
			return fmt.Errorf("%w: %s", ErrDocumentClosed, doc)
		}
		if mk.Line < 1 || mk.Line > n {
			return fmt.Errorf("%w: line %d of %d", ErrLineOutOfRange, mk.Line, n)
		}
	}

	m.mu.Lock()
	lines, ok := m.markers[doc]
	if !ok {
		lines = make(map[int][]Marker)
		m.markers[doc] = lines
	}
	set := lines[mk.Line]
	replaced := false
	for i, x := range set {
		if x.Col == mk.Col && x.Priority == mk.Priority {
			set[i] = mk
			replaced = true
			break
		}
	}
	if !replaced {
		lines[mk.Line] = append(set, mk)
	}
	callbacks := m.onChange
	m.mu.Unlock()

	notify(callbacks, doc)
	return nil
}

// ClearMarkers removes every marker of a document.
func (m *Manager) ClearMarkers(doc string) {
	m.mu.Lock()
	_, had := m.markers[doc]
	delete(m.markers, doc)
	callbacks := m.onChange
	m.mu.Unlock()

	if had {
		notify(callbacks, doc)
	}
}

func notify(callbacks []func(string), doc string) {
	for _, fn := range callbacks {
		fn(doc)
	}
}

// Count returns the number of markers in a document.
func (m *Manager) Count(doc string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, set := range m.markers[doc] {
		n += len(set)
	}
	return n
}

// Lines returns the sorted line numbers carrying markers.
func (m *Manager) Lines(doc string) []int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	lines := make([]int, 0, len(m.markers[doc]))
	for line := range m.markers[doc] {
		lines = append(lines, line)
	}
	sort.Ints(lines)
	return lines
}

// MarkersOnLine returns the markers of a line sorted by priority.
func (m *Manager) MarkersOnLine(doc string, line int) []Marker {
	m.mu.RLock()
	set := append([]Marker(nil), m.markers[doc][line]...)
	m.mu.RUnlock()

	sort.SliceStable(set, func(i, j int) bool {
		return set[i].Priority < set[j].Priority
	})
	return set
}

// SpansForLine returns the styled spans of a line, lowest priority first.
func (m *Manager) SpansForLine(doc string, line int) []Span {
	cfg := m.Config()
	if !cfg.ShowMarkers {
		return nil
	}
	markers := m.MarkersOnLine(doc, line)
	if len(markers) == 0 {
		return nil
	}
	spans := make([]Span, 0, len(markers))
	for _, mk := range markers {
		spans = append(spans, Span{
			Col:      mk.Col,
			Text:     mk.Symbol,
			Style:    cfg.StyleFor(mk.Style),
			Priority: mk.Priority,
		})
	}
	return spans
}

// CompositeLine applies spans onto a line of cells. Spans past the end of
// the line pad it with blanks. Wide characters hit by a span are replaced
// by a blank in their trailing column.
func CompositeLine(base []core.Cell, spans []Span) []core.Cell {
	if len(spans) == 0 {
		return base
	}

	result := make([]core.Cell, len(base))
	copy(result, base)

	for _, span := range spans {
		r := []rune(span.Text)
		if len(r) == 0 || span.Col < 0 {
			continue
		}
		for len(result) <= span.Col {
			result = append(result, core.EmptyCell())
		}

		cur := result[span.Col]
		if cur.IsContinuation() && span.Col > 0 {
			result[span.Col-1] = core.EmptyCell()
		}
		if cur.Width > 1 && span.Col+1 < len(result) {
			result[span.Col+1] = core.EmptyCell()
		}
		result[span.Col] = core.Cell{
			Rune:  r[0],
			Width: 1,
			Style: cur.Style.Merge(span.Style),
		}
	}
	return result
}
