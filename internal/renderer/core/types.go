// Package core provides shared types for the renderer subsystem.
// This package breaks import cycles between renderer, overlay and backend.
package core

import (
	"fmt"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/rivo/uniseg"
)

// Attribute represents text attributes (bold, italic, etc.).
type Attribute uint16

// Text attribute flags.
const (
	AttrNone Attribute = 0
	AttrBold Attribute = 1 << iota
	AttrDim
	AttrItalic
	AttrUnderline
	AttrReverse
)

// Has returns true if the attribute set contains the given attribute.
func (a Attribute) Has(attr Attribute) bool {
	return a&attr != 0
}

// Color is a true color or the terminal default.
type Color struct {
	R, G, B uint8
	// Default indicates the terminal's default color; R, G and B are ignored.
	Default bool
}

// ColorDefault represents the terminal's default color.
var ColorDefault = Color{Default: true}

// ColorFromRGB creates a true color from RGB components.
func ColorFromRGB(r, g, b uint8) Color {
	return Color{R: r, G: g, B: b}
}

// ColorFromHex parses "#rrggbb" or "#rgb".
func ColorFromHex(hex string) (Color, error) {
	if len(hex) > 0 && hex[0] != '#' {
		hex = "#" + hex
	}
	if len(hex) != 4 && len(hex) != 7 {
		return Color{}, fmt.Errorf("invalid hex color length: %q", hex)
	}
	c, err := colorful.Hex(hex)
	if err != nil {
		return Color{}, fmt.Errorf("invalid hex color %q: %w", hex, err)
	}
	r, g, b := c.RGB255()
	return Color{R: r, G: g, B: b}, nil
}

// IsDefault returns true if this is the default color.
func (c Color) IsDefault() bool {
	return c.Default
}

// String returns "default" or the hex form.
func (c Color) String() string {
	if c.Default {
		return "default"
	}
	return c.colorful().Hex()
}

func (c Color) colorful() colorful.Color {
	return colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}
}

// Blend mixes c towards other in Lab space. amount 0 yields c, 1 yields
// other. Blending with the default color returns c unchanged.
func (c Color) Blend(other Color, amount float64) Color {
	switch {
	case c.Default || other.Default || amount <= 0:
		return c
	case amount >= 1:
		return other
	}
	r, g, b := c.colorful().BlendLab(other.colorful(), amount).Clamped().RGB255()
	return Color{R: r, G: g, B: b}
}

// Style represents the visual style of text.
type Style struct {
	Foreground Color
	Background Color
	Attributes Attribute
}

// DefaultStyle returns the default terminal style.
func DefaultStyle() Style {
	return Style{Foreground: ColorDefault, Background: ColorDefault}
}

// NewStyle creates a style with the given foreground color.
func NewStyle(fg Color) Style {
	return Style{Foreground: fg, Background: ColorDefault}
}

// WithBackground returns a copy with the background set.
func (s Style) WithBackground(bg Color) Style {
	s.Background = bg
	return s
}

// Dim returns a copy with the dim attribute.
func (s Style) Dim() Style {
	s.Attributes |= AttrDim
	return s
}

// Bold returns a copy with the bold attribute.
func (s Style) Bold() Style {
	s.Attributes |= AttrBold
	return s
}

// Reverse returns a copy with reverse video.
func (s Style) Reverse() Style {
	s.Attributes |= AttrReverse
	return s
}

// Merge overlays other onto s. Non-default colors of other win and
// attributes are combined.
func (s Style) Merge(other Style) Style {
	if !other.Foreground.Default {
		s.Foreground = other.Foreground
	}
	if !other.Background.Default {
		s.Background = other.Background
	}
	s.Attributes |= other.Attributes
	return s
}

// Cell represents a single terminal cell.
type Cell struct {
	Rune  rune
	Width int
	Style Style
}

// EmptyCell returns a blank cell with default style.
func EmptyCell() Cell {
	return Cell{Rune: ' ', Width: 1, Style: DefaultStyle()}
}

// NewStyledCell creates a cell with the given rune and style.
func NewStyledCell(r rune, style Style) Cell {
	return Cell{Rune: r, Width: RuneWidth(r), Style: style}
}

// ContinuationCell fills the second column of a wide character.
func ContinuationCell() Cell {
	return Cell{Style: DefaultStyle()}
}

// IsContinuation returns true for the trailing half of a wide character.
func (c Cell) IsContinuation() bool {
	return c.Width == 0 && c.Rune == 0
}

// RuneWidth returns the display width of a rune.
func RuneWidth(r rune) int {
	if r < 32 || r == 0x7F {
		return 0
	}
	return uniseg.StringWidth(string(r))
}

// StringWidth returns the display width of s.
func StringWidth(s string) int {
	return uniseg.StringWidth(s)
}

// CellsFromString lays s out as cells, expanding tabs to the given width.
// Wide characters are followed by a continuation cell.
func CellsFromString(s string, style Style, tabWidth int) []Cell {
	if tabWidth < 1 {
		tabWidth = 1
	}
	cells := make([]Cell, 0, len(s))
	for _, r := range s {
		switch {
		case r == '\t':
			n := tabWidth - len(cells)%tabWidth
			for i := 0; i < n; i++ {
				cells = append(cells, Cell{Rune: ' ', Width: 1, Style: style})
			}
		case r == '\r' || r == '\n':
		default:
			w := RuneWidth(r)
			if w == 0 {
				continue
			}
			cells = append(cells, Cell{Rune: r, Width: w, Style: style})
			for i := 1; i < w; i++ {
				cells = append(cells, ContinuationCell())
			}
		}
	}
	return cells
}

// StringFromCells converts cells back to a string.
func StringFromCells(cells []Cell) string {
	runes := make([]rune, 0, len(cells))
	for _, c := range cells {
		if !c.IsContinuation() {
			runes = append(runes, c.Rune)
		}
	}
	return string(runes)
}

// ScreenRect is a half-open rectangle in screen coordinates.
type ScreenRect struct {
	Top, Left, Bottom, Right int
}

// RectFromSize creates a rect from an origin and size.
func RectFromSize(top, left, height, width int) ScreenRect {
	return ScreenRect{Top: top, Left: left, Bottom: top + height, Right: left + width}
}

// Width returns the rect width.
func (r ScreenRect) Width() int {
	return max(0, r.Right-r.Left)
}

// Height returns the rect height.
func (r ScreenRect) Height() int {
	return max(0, r.Bottom-r.Top)
}
