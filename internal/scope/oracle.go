package scope

// Oracle computes effective line indents for one document under one border
// policy. It memoises results and is meant to live for a single resolution.
type Oracle struct {
	doc    Document
	border BorderPolicy
	last   int
	width  int
	cache  map[int]int
}

// NewOracle creates an oracle for doc.
func NewOracle(doc Document, border BorderPolicy) *Oracle {
	width := doc.IndentWidth()
	if width < 1 {
		width = 1
	}
	return &Oracle{
		doc:    doc,
		border: border,
		last:   doc.LineCount(),
		width:  width,
		cache:  make(map[int]int),
	}
}

// LastLine returns the number of the last real line.
func (o *Oracle) LastLine() int {
	return o.last
}

// IndentOf returns the effective indent of line.
// Imaginary lines outside [1, LastLine] have indent -1.
func (o *Oracle) IndentOf(line int) int {
	if line < 1 || line > o.last {
		return -1
	}
	if v, ok := o.cache[line]; ok {
		return v
	}

	res, blank := o.literal(line)
	if !blank {
		o.cache[line] = res
		return res
	}
	return o.fillBlankRun(line)
}

// fillBlankRun scans the run of blank lines around line once and caches one
// combined indent for the whole run. A cached line met while scanning is
// never blank: blank runs are cached all at once.
func (o *Oracle) fillBlankRun(line int) int {
	top, above := o.scanRun(line, -1)
	bottom, below := o.scanRun(line, 1)

	res := o.blankIndent(above, below)
	for l := top; l <= bottom; l++ {
		o.cache[l] = res
	}
	return res
}

// scanRun walks from line in direction dir past blank lines. It returns the
// last blank line of the run and the indent of the first non-blank line
// beyond it, or -1 at the document edge.
func (o *Oracle) scanRun(line, dir int) (edge, indent int) {
	edge = line
	for l := line + dir; l >= 1 && l <= o.last; l += dir {
		if v, ok := o.cache[l]; ok {
			return edge, v
		}
		v, blank := o.literal(l)
		if !blank {
			o.cache[l] = v
			return edge, v
		}
		edge = l
	}
	return edge, -1
}

// blankIndent combines neighbor indents of a blank line.
func (o *Oracle) blankIndent(above, below int) int {
	switch o.border {
	case BorderTop:
		return below
	case BorderBottom:
		return above
	case BorderBoth:
		return max(above, below)
	case BorderNone:
		return min(above, below)
	default:
		return min(above, below)
	}
}

// literal measures the leading whitespace of a line in display columns.
// blank is true when the line holds only whitespace.
func (o *Oracle) literal(line int) (indent int, blank bool) {
	return measureIndent(o.doc.LineText(line), o.width)
}

// measureIndent expands tabs to the next multiple of width.
func measureIndent(text string, width int) (int, bool) {
	col := 0
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case ' ':
			col++
		case '\t':
			col += width - col%width
		case '\r', '\n', '\f', '\v':
			// Only meaningful for blank detection.
		default:
			return col, false
		}
	}
	return col, true
}
