package scope

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type lines struct {
	text  []string
	width int
}

func newLines(text ...string) *lines {
	return &lines{text: text, width: 4}
}

func (l *lines) ID() string       { return "test" }
func (l *lines) LineCount() int   { return len(l.text) }
func (l *lines) IndentWidth() int { return l.width }
func (l *lines) LineText(line int) string {
	if line < 1 || line > len(l.text) {
		return ""
	}
	return l.text[line-1]
}

var fooDoc = newLines("function foo()", "", "  print('hi')", "", "end")

func TestParseBorderPolicy(t *testing.T) {
	for _, name := range []string{"both", "top", "bottom", "none"} {
		p, err := ParseBorderPolicy(name)
		require.NoError(t, err)
		assert.Equal(t, name, p.String())
	}

	_, err := ParseBorderPolicy("left")
	assert.ErrorIs(t, err, ErrInvalidBorder)
}

func TestOracleIndentOf(t *testing.T) {
	doc := newLines("a", "\tb", "  \tc", "", "    d", "   ")

	tests := []struct {
		border BorderPolicy
		line   int
		want   int
	}{
		{BorderBoth, 0, -1},
		{BorderBoth, 7, -1},
		{BorderBoth, 1, 0},
		{BorderBoth, 2, 4},
		{BorderBoth, 3, 4},
		{BorderBoth, 5, 4},
		// Line 4 sits between indents 4 and 4.
		{BorderNone, 4, 4},
		// Trailing blank line: above 4, below imaginary -1.
		{BorderNone, 6, -1},
		{BorderTop, 6, -1},
		{BorderBottom, 6, 4},
		{BorderBoth, 6, 4},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s/%d", tt.border, tt.line), func(t *testing.T) {
			o := NewOracle(doc, tt.border)
			assert.Equal(t, tt.want, o.IndentOf(tt.line))
		})
	}
}

func TestOracleBlankPolicies(t *testing.T) {
	doc := newLines("x", "", "    y")

	want := map[BorderPolicy]int{
		BorderNone:   0,
		BorderTop:    4,
		BorderBottom: 0,
		BorderBoth:   4,
	}
	for policy, indent := range want {
		assert.Equal(t, indent, NewOracle(doc, policy).IndentOf(2), policy.String())
	}
}

type countingLines struct {
	*lines
	reads int
}

func (c *countingLines) LineText(line int) string {
	c.reads++
	return c.lines.LineText(line)
}

func TestOracleReadsBlankRunOnce(t *testing.T) {
	text := []string{"x"}
	for range 500 {
		text = append(text, "")
	}
	text = append(text, "    y")
	doc := &countingLines{lines: newLines(text...)}

	o := NewOracle(doc, BorderBoth)
	for l := 1; l <= len(text); l++ {
		want := 4
		if l == 1 {
			want = 0
		}
		require.Equal(t, want, o.IndentOf(l), "line %d", l)
	}
	assert.Equal(t, len(text), doc.reads)

	o = NewOracle(doc, BorderNone)
	doc.reads = 0
	for l := len(text); l >= 1; l-- {
		o.IndentOf(l)
	}
	assert.Equal(t, 0, o.IndentOf(250))
	assert.Equal(t, len(text), doc.reads)
}

func TestResolveBothIncludesBlankEdges(t *testing.T) {
	opts := DefaultOptions()
	s := Resolve(fooDoc, 3, 1, opts)

	assert.Equal(t, Body{Top: 2, Bottom: 4, Indent: 2}, s.Body)
	assert.Equal(t, Border{Top: 1, Bottom: 5, HasTop: true, HasBottom: true, Indent: 0}, s.Border)
	assert.Equal(t, "test", s.Document)
	assert.Equal(t, 0, DrawIndent(s))
}

func TestResolveNoneExcludesBlankLines(t *testing.T) {
	opts := DefaultOptions()
	opts.Border = BorderNone
	s := Resolve(fooDoc, 3, 1, opts)

	assert.Equal(t, Body{Top: 3, Bottom: 3, Indent: 2}, s.Body)
	assert.True(t, s.Border.Empty())
	assert.Equal(t, 1, DrawIndent(s))
}

func TestResolveTopAndBottomBorders(t *testing.T) {
	opts := DefaultOptions()

	opts.Border = BorderTop
	s := Resolve(fooDoc, 3, NoColumn, opts)
	assert.Equal(t, 2, s.Body.Top)
	assert.Equal(t, 3, s.Body.Bottom)
	assert.True(t, s.Border.HasTop)
	assert.False(t, s.Border.HasBottom)
	assert.Equal(t, 1, s.Border.Top)
	assert.Equal(t, 0, s.Border.Indent)

	opts.Border = BorderBottom
	s = Resolve(fooDoc, 3, NoColumn, opts)
	assert.Equal(t, 3, s.Body.Top)
	assert.Equal(t, 4, s.Body.Bottom)
	assert.True(t, s.Border.HasBottom)
	assert.Equal(t, 5, s.Border.Bottom)
}

func TestResolveIndentAtCursor(t *testing.T) {
	doc := newLines(
		"a",
		"  b",
		"    c",
		"    d",
		"  e",
		"f",
	)
	opts := DefaultOptions()

	s := Resolve(doc, 3, NoColumn, opts)
	assert.Equal(t, 3, s.Body.Top)
	assert.Equal(t, 4, s.Body.Bottom)
	assert.Equal(t, 4, s.Reference.Indent)

	// Column 3 limits the reference indent to 3, lines 2 and 5 still stop the ray.
	s = Resolve(doc, 3, 3, opts)
	assert.Equal(t, 3, s.Body.Top)
	assert.Equal(t, 4, s.Body.Bottom)
	assert.Equal(t, 3, s.Reference.Indent)

	s = Resolve(doc, 3, 2, opts)
	assert.Equal(t, 2, s.Body.Top)
	assert.Equal(t, 5, s.Body.Bottom)
	assert.Equal(t, 2, s.Body.Indent)
	assert.Equal(t, 0, DrawIndent(s))

	opts.IndentAtCursor = false
	s = Resolve(doc, 3, 2, opts)
	assert.Equal(t, NoColumn, s.Reference.Column)
	assert.Equal(t, 4, s.Reference.Indent)
}

func TestResolveWholeDocument(t *testing.T) {
	s := Resolve(fooDoc, 1, NoColumn, DefaultOptions())

	assert.Equal(t, 1, s.Body.Top)
	assert.Equal(t, 5, s.Body.Bottom)
	assert.Equal(t, 0, s.Body.Indent)
	assert.True(t, s.Border.Empty())
	assert.True(t, s.IsWholeDocument())
	assert.Equal(t, -1, DrawIndent(s))
	assert.False(t, Drawable(s))
}

func TestResolveWholeDocumentFromColumnZero(t *testing.T) {
	opts := DefaultOptions()
	opts.Border = BorderNone
	s := Resolve(fooDoc, 3, 0, opts)

	// Reference indent 0 wins over the line's own indent 2.
	assert.True(t, s.IsWholeDocument())
	assert.Equal(t, 2, s.Body.Indent)
	assert.Equal(t, -1, DrawIndent(s))
}

func TestResolveClampsLine(t *testing.T) {
	s := Resolve(fooDoc, 99, NoColumn, DefaultOptions())
	assert.Equal(t, 5, s.Reference.Line)

	s = Resolve(fooDoc, -3, NoColumn, DefaultOptions())
	assert.Equal(t, 1, s.Reference.Line)

	empty := newLines()
	s = Resolve(empty, 1, 1, DefaultOptions())
	assert.Equal(t, 1, s.Body.Top)
	assert.Equal(t, 1, s.Body.Bottom)
}

func TestResolveNLinesMarksIncomplete(t *testing.T) {
	text := []string{"head"}
	for i := 0; i < 20; i++ {
		text = append(text, "  body")
	}
	text = append(text, "tail")
	doc := newLines(text...)

	opts := DefaultOptions()
	opts.NLines = 5
	s := Resolve(doc, 11, NoColumn, opts)
	assert.Equal(t, 6, s.Body.Top)
	assert.Equal(t, 16, s.Body.Bottom)
	assert.True(t, s.Body.Incomplete)

	opts.NLines = 0
	s = Resolve(doc, 11, NoColumn, opts)
	assert.Equal(t, 2, s.Body.Top)
	assert.Equal(t, 21, s.Body.Bottom)
	assert.False(t, s.Body.Incomplete)
}

func TestResolveTryAsBorder(t *testing.T) {
	doc := newLines(
		"if x {",
		"  a()",
		"  b()",
		"}",
	)

	tests := []struct {
		name   string
		border BorderPolicy
		line   int
		want   int
	}{
		{"top border moves down", BorderTop, 1, 2},
		{"top keeps inner line", BorderTop, 2, 2},
		{"bottom border moves up", BorderBottom, 4, 3},
		{"bottom keeps inner line", BorderBottom, 3, 3},
		{"both from top border", BorderBoth, 1, 2},
		{"both from bottom border", BorderBoth, 4, 3},
		{"both keeps local maximum", BorderBoth, 2, 2},
		{"none never moves", BorderNone, 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultOptions()
			opts.Border = tt.border
			opts.TryAsBorder = true
			s := Resolve(doc, tt.line, NoColumn, opts)
			assert.Equal(t, tt.want, s.Reference.Line)
		})
	}
}

func TestResolveTryAsBorderPrefersBelow(t *testing.T) {
	doc := newLines("  a", "b", "  c")
	opts := DefaultOptions()
	opts.TryAsBorder = true

	s := Resolve(doc, 2, NoColumn, opts)
	assert.Equal(t, 3, s.Reference.Line)
}

// Every line of a mixed document resolves to a scope containing it.
func TestResolveTotality(t *testing.T) {
	src := `package main

func main() {
	if true {

		println("x")
	}
		
	for {
	}
}
`
	doc := newLines(strings.Split(src, "\n")...)
	for _, border := range []BorderPolicy{BorderBoth, BorderTop, BorderBottom, BorderNone} {
		for _, try := range []bool{false, true} {
			for line := 1; line <= doc.LineCount(); line++ {
				for _, col := range []int{0, 1, 3, NoColumn} {
					opts := Options{Border: border, IndentAtCursor: true, TryAsBorder: try}
					s := Resolve(doc, line, col, opts)
					require.LessOrEqual(t, s.Body.Top, s.Reference.Line)
					require.GreaterOrEqual(t, s.Body.Bottom, s.Reference.Line)

					if border == BorderBoth && !s.IsWholeDocument() {
						o := NewOracle(doc, border)
						assert.LessOrEqual(t, o.IndentOf(s.Body.Top-1), s.Border.Indent)
						assert.LessOrEqual(t, o.IndentOf(s.Body.Bottom+1), s.Border.Indent)
					}
				}
			}
		}
	}
}

func TestEqualAndIntersects(t *testing.T) {
	opts := DefaultOptions()
	doc := newLines(
		"a",
		"  b",
		"  c",
		"d",
		"  e",
	)

	first := Resolve(doc, 2, NoColumn, opts)
	second := Resolve(doc, 3, NoColumn, opts)
	other := Resolve(doc, 5, NoColumn, opts)

	assert.True(t, Equal(first, second))
	assert.True(t, Intersects(first, second))
	assert.False(t, Intersects(first, other))

	shifted := first
	shifted.Body.Bottom = 4
	assert.False(t, Equal(first, shifted))
	assert.True(t, Intersects(first, shifted))

	foreign := first
	foreign.Document = "other"
	assert.False(t, Intersects(first, foreign))
}

func TestTargetAndTextObject(t *testing.T) {
	s := Resolve(fooDoc, 3, NoColumn, DefaultOptions())

	assert.Equal(t, 1, Target(s, SideTop, true, 5))
	assert.Equal(t, 2, Target(s, SideTop, false, 5))
	assert.Equal(t, 5, Target(s, SideBottom, true, 5))
	assert.Equal(t, 4, Target(s, SideBottom, false, 5))

	top, bottom := TextObject(s, false, 5)
	assert.Equal(t, [2]int{2, 4}, [2]int{top, bottom})
	top, bottom = TextObject(s, true, 5)
	assert.Equal(t, [2]int{1, 5}, [2]int{top, bottom})

	// Top-level block bordered by imaginary lines.
	doc := newLines("  a", "  b")
	s = Resolve(doc, 1, NoColumn, DefaultOptions())
	assert.Equal(t, 1, Target(s, SideTop, true, 2))
	assert.Equal(t, 2, Target(s, SideBottom, true, 2))
	top, bottom = TextObject(s, true, 2)
	assert.Equal(t, [2]int{1, 2}, [2]int{top, bottom})
}
