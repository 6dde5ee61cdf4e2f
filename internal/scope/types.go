package scope

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// ErrInvalidBorder is returned when a border policy name is not recognized.
var ErrInvalidBorder = errors.New("invalid border policy")

// NoColumn is the reference column used when the cursor column must not
// affect the reference indent.
const NoColumn = math.MaxInt

// DefaultNLines is the default limit for a single ray cast.
const DefaultNLines = 10000

// Document is the text source a scope is computed on.
// Lines are 1-indexed.
type Document interface {
	// ID returns the document identifier.
	ID() string

	// LineCount returns the number of lines.
	LineCount() int

	// LineText returns the text of a line, or "" if out of range.
	LineText(line int) string

	// IndentWidth returns the tab stop width used to measure indents.
	IndentWidth() int
}

// BorderPolicy controls which lines are treated as scope border and how the
// indent of blank lines is resolved.
type BorderPolicy uint8

const (
	// BorderBoth uses lines above and below the body as border.
	BorderBoth BorderPolicy = iota
	// BorderTop uses only the line above the body as border.
	BorderTop
	// BorderBottom uses only the line below the body as border.
	BorderBottom
	// BorderNone has no border.
	BorderNone
)

// String returns the configuration name of the policy.
func (p BorderPolicy) String() string {
	switch p {
	case BorderBoth:
		return "both"
	case BorderTop:
		return "top"
	case BorderBottom:
		return "bottom"
	case BorderNone:
		return "none"
	default:
		return "unknown"
	}
}

// ParseBorderPolicy parses a configuration name into a BorderPolicy.
func ParseBorderPolicy(s string) (BorderPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "both":
		return BorderBoth, nil
	case "top":
		return BorderTop, nil
	case "bottom":
		return BorderBottom, nil
	case "none":
		return BorderNone, nil
	default:
		return BorderBoth, fmt.Errorf("%w: %q", ErrInvalidBorder, s)
	}
}

// Options control scope computation.
type Options struct {
	// Border is the border policy.
	Border BorderPolicy

	// IndentAtCursor makes the reference column limit the reference indent.
	IndentAtCursor bool

	// TryAsBorder moves the reference line into the inner scope when it
	// looks like that scope's border.
	TryAsBorder bool

	// NLines limits how far a single ray cast may travel.
	// Zero or negative means unlimited.
	NLines int
}

// DefaultOptions returns the default scope options.
func DefaultOptions() Options {
	return Options{
		Border:         BorderBoth,
		IndentAtCursor: true,
		TryAsBorder:    false,
		NLines:         DefaultNLines,
	}
}

// Body is the core extent of a scope.
type Body struct {
	Top    int
	Bottom int

	// Indent is the minimum indent observed in the body.
	Indent int

	// Incomplete is set when a ray cast hit the NLines limit.
	Incomplete bool
}

// Contains reports whether line is inside the body.
func (b Body) Contains(line int) bool {
	return line >= b.Top && line <= b.Bottom
}

// Border holds the lines just outside a body.
type Border struct {
	Top       int
	Bottom    int
	HasTop    bool
	HasBottom bool

	// Indent is meaningful only when the border is not empty.
	Indent int
}

// Empty reports whether neither border line is present.
func (b Border) Empty() bool {
	return !b.HasTop && !b.HasBottom
}

// Reference records the position a scope was computed for.
type Reference struct {
	Line   int
	Column int
	Indent int
}

// Scope is the result of a scope computation.
type Scope struct {
	Document  string
	Body      Body
	Border    Border
	Reference Reference
}

// IsWholeDocument reports whether the scope is the degenerate top-level
// scope covering the whole document.
func (s Scope) IsWholeDocument() bool {
	return s.Reference.Indent <= 0
}

// DrawIndent returns the column a scope marker is placed at.
// Negative values mean the scope is not drawn.
func DrawIndent(s Scope) int {
	if !s.Border.Empty() {
		return s.Border.Indent
	}
	if s.IsWholeDocument() {
		return -1
	}
	return s.Body.Indent - 1
}

// Drawable reports whether the scope has a non-negative draw indent.
func Drawable(s Scope) bool {
	return DrawIndent(s) >= 0
}

// Equal reports whether two scopes would be drawn identically.
func Equal(a, b Scope) bool {
	return a.Document == b.Document &&
		DrawIndent(a) == DrawIndent(b) &&
		a.Body.Top == b.Body.Top &&
		a.Body.Bottom == b.Body.Bottom
}

// Intersects reports whether two scopes share a draw indent and have
// overlapping bodies.
func Intersects(a, b Scope) bool {
	if a.Document != b.Document || DrawIndent(a) != DrawIndent(b) {
		return false
	}
	return (b.Body.Top <= a.Body.Top && a.Body.Top <= b.Body.Bottom) ||
		(a.Body.Top <= b.Body.Top && b.Body.Top <= a.Body.Bottom)
}

// String returns a compact description used in logs.
func (s Scope) String() string {
	border := "none"
	switch {
	case s.Border.HasTop && s.Border.HasBottom:
		border = fmt.Sprintf("%d..%d@%d", s.Border.Top, s.Border.Bottom, s.Border.Indent)
	case s.Border.HasTop:
		border = fmt.Sprintf("top %d@%d", s.Border.Top, s.Border.Indent)
	case s.Border.HasBottom:
		border = fmt.Sprintf("bottom %d@%d", s.Border.Bottom, s.Border.Indent)
	}
	return fmt.Sprintf("body %d..%d@%d border %s", s.Body.Top, s.Body.Bottom, s.Body.Indent, border)
}
