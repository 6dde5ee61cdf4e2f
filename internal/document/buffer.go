package document

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
)

// Errors returned by document operations.
var (
	ErrLineOutOfRange = errors.New("line out of range")
	ErrNotFound       = errors.New("document not found")
)

// DefaultTabWidth is the indent width used when none is configured.
const DefaultTabWidth = 4

// Buffer is a line-oriented text document.
// All methods are thread-safe.
type Buffer struct {
	mu       sync.RWMutex
	id       string
	path     string
	lines    []string
	revision uint64
	tabWidth int
}

// Option is a functional option for configuring a Buffer.
type Option func(*Buffer)

// WithTabWidth sets the buffer's tab width.
func WithTabWidth(width int) Option {
	return func(b *Buffer) {
		if width > 0 {
			b.tabWidth = width
		}
	}
}

// WithPath records the file the buffer was loaded from.
func WithPath(path string) Option {
	return func(b *Buffer) {
		b.path = path
	}
}

// NewBuffer creates a buffer with initial content.
func NewBuffer(id, text string, opts ...Option) *Buffer {
	b := &Buffer{
		id:       id,
		lines:    splitLines(text),
		tabWidth: DefaultTabWidth,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// splitLines normalizes line endings and splits text into lines. A single
// trailing newline terminates the last line instead of starting a new one.
func splitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = strings.TrimSuffix(text, "\n")
	return strings.Split(text, "\n")
}

// ID returns the document id.
func (b *Buffer) ID() string {
	return b.id
}

// Path returns the file path, if any.
func (b *Buffer) Path() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.path
}

// LineCount returns the number of lines.
func (b *Buffer) LineCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.lines)
}

// LineText returns the text of a 1-indexed line, or "" when out of range.
func (b *Buffer) LineText(line int) string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if line < 1 || line > len(b.lines) {
		return ""
	}
	return b.lines[line-1]
}

// IndentWidth returns the tab width.
func (b *Buffer) IndentWidth() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.tabWidth
}

// SetTabWidth sets the buffer's tab width.
func (b *Buffer) SetTabWidth(width int) {
	if width < 1 {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.tabWidth != width {
		b.tabWidth = width
		b.revision++
	}
}

// Revision returns a counter bumped by every change.
func (b *Buffer) Revision() uint64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.revision
}

// Text returns the full content joined with newlines.
func (b *Buffer) Text() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return strings.Join(b.lines, "\n")
}

// SetText replaces the whole content.
func (b *Buffer) SetText(text string) {
	lines := splitLines(text)
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lines = lines
	b.revision++
}

// InsertLine inserts text so it becomes line at. at may be one past the
// last line to append.
func (b *Buffer) InsertLine(at int, text string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if at < 1 || at > len(b.lines)+1 {
		return fmt.Errorf("insert at %d: %w", at, ErrLineOutOfRange)
	}
	b.lines = append(b.lines, "")
	copy(b.lines[at:], b.lines[at-1:])
	b.lines[at-1] = text
	b.revision++
	return nil
}

// DeleteLine removes a line. Deleting the only line leaves it empty.
func (b *Buffer) DeleteLine(line int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if line < 1 || line > len(b.lines) {
		return fmt.Errorf("delete %d: %w", line, ErrLineOutOfRange)
	}
	if len(b.lines) == 1 {
		b.lines[0] = ""
	} else {
		b.lines = append(b.lines[:line-1], b.lines[line:]...)
	}
	b.revision++
	return nil
}

// ReplaceLine sets the text of a line.
func (b *Buffer) ReplaceLine(line int, text string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if line < 1 || line > len(b.lines) {
		return fmt.Errorf("replace %d: %w", line, ErrLineOutOfRange)
	}
	b.lines[line-1] = text
	b.revision++
	return nil
}

// Load replaces the content with the file at path.
func (b *Buffer) Load(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	lines := splitLines(string(data))
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lines = lines
	b.path = path
	b.revision++
	return nil
}
