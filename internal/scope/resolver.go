package scope

import "math"

// Resolve computes the scope of doc around line and column.
//
// column is 1-indexed and only limits the reference indent when
// opts.IndentAtCursor is set; pass NoColumn to ignore it. line is clamped
// into the document.
func Resolve(doc Document, line, column int, opts Options) Scope {
	o := NewOracle(doc, opts.Border)
	last := max(o.LastLine(), 1)
	line = min(max(line, 1), last)

	if opts.TryAsBorder {
		line = correctBorder(o, line, opts.Border)
	}

	if !opts.IndentAtCursor {
		column = NoColumn
	}

	lineIndent := o.IndentOf(line)
	indent := min(column, lineIndent)

	var body Body
	if indent <= 0 {
		body = Body{Top: 1, Bottom: last, Indent: lineIndent}
		return Scope{
			Document:  doc.ID(),
			Body:      body,
			Reference: Reference{Line: line, Column: column, Indent: indent},
		}
	}

	top, upMin, upCut := castRay(o, line, indent, -1, opts.NLines)
	bottom, downMin, downCut := castRay(o, line, indent, 1, opts.NLines)
	body = Body{
		Top:        top,
		Bottom:     bottom,
		Indent:     min(lineIndent, upMin, downMin),
		Incomplete: upCut || downCut,
	}

	return Scope{
		Document:  doc.ID(),
		Body:      body,
		Border:    borderFromBody(o, body, opts.Border),
		Reference: Reference{Line: line, Column: column, Indent: indent},
	}
}

// castRay walks from line in direction inc while the next line's indent is
// at least indent. It returns the last line walked, the minimum indent of
// the lines walked onto and whether the walk was cut by limit.
func castRay(o *Oracle, line, indent, inc, limit int) (int, int, bool) {
	minIndent := math.MaxInt
	for l, n := line, 0; ; l, n = l+inc, n+1 {
		if limit > 0 && n >= limit {
			return l, minIndent, true
		}
		next := o.IndentOf(l + inc)
		if next < indent {
			return l, minIndent, false
		}
		minIndent = min(minIndent, next)
	}
}

// borderFromBody derives the border lines of body under policy.
func borderFromBody(o *Oracle, body Body, policy BorderPolicy) Border {
	switch policy {
	case BorderTop:
		return Border{
			Top:    body.Top - 1,
			HasTop: true,
			Indent: o.IndentOf(body.Top - 1),
		}
	case BorderBottom:
		return Border{
			Bottom:    body.Bottom + 1,
			HasBottom: true,
			Indent:    o.IndentOf(body.Bottom + 1),
		}
	case BorderBoth:
		return Border{
			Top:       body.Top - 1,
			Bottom:    body.Bottom + 1,
			HasTop:    true,
			HasBottom: true,
			Indent:    max(o.IndentOf(body.Top-1), o.IndentOf(body.Bottom+1)),
		}
	case BorderNone:
		return Border{}
	default:
		return Border{}
	}
}

// correctBorder moves line into the scope it is a border of, if any.
func correctBorder(o *Oracle, line int, policy BorderPolicy) int {
	switch policy {
	case BorderTop:
		if o.IndentOf(line) < o.IndentOf(line+1) {
			return line + 1
		}
	case BorderBottom:
		if o.IndentOf(line) < o.IndentOf(line-1) {
			return line - 1
		}
	case BorderBoth:
		prev, cur, next := o.IndentOf(line-1), o.IndentOf(line), o.IndentOf(line+1)
		if prev <= cur && next <= cur {
			return line
		}
		// Equal neighbors prefer the line below.
		if prev <= next {
			return line + 1
		}
		return line - 1
	case BorderNone:
	}
	return line
}
