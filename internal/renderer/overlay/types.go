// Package overlay holds the one-column markers drawn over document text and
// composites them onto rendered lines.
package overlay

import (
	"errors"

	"github.com/dshills/indentscope/internal/renderer/core"
)

var (
	// ErrDocumentClosed is returned when drawing into a document that is not open.
	ErrDocumentClosed = errors.New("document closed")

	// ErrLineOutOfRange is returned when a marker row is outside the document.
	ErrLineOutOfRange = errors.New("line out of range")

	// ErrInvalidMarker is returned for markers without a single-column symbol
	// or with a negative column.
	ErrInvalidMarker = errors.New("invalid marker")
)

// StyleTag names the highlight a marker is drawn with.
type StyleTag string

const (
	// TagSymbol is the regular scope marker style.
	TagSymbol StyleTag = "IndentscopeSymbol"

	// TagSymbolOff is used when the marker column is not on an indent stop.
	TagSymbolOff StyleTag = "IndentscopeSymbolOff"
)

// Marker is a one-character decoration at a document position.
type Marker struct {
	// Line is 1-indexed.
	Line int

	// Col is the 0-indexed display column.
	Col int

	Symbol string
	Style  StyleTag

	// Priority orders markers sharing a cell; higher draws on top.
	Priority int
}

// Span is a styled piece of overlay content on a single line.
type Span struct {
	Col      int
	Text     string
	Style    core.Style
	Priority int
}

// Documents reports the line count of open documents.
type Documents interface {
	LineCount(id string) (int, bool)
}

// Config holds configuration for marker rendering.
type Config struct {
	// Styles maps style tags to concrete styles.
	Styles map[StyleTag]core.Style

	// ShowMarkers enables marker rendering.
	ShowMarkers bool
}

// DefaultConfig returns the default overlay configuration.
func DefaultConfig() Config {
	symbol := core.ColorFromRGB(0x7f, 0x84, 0x8e)
	background := core.ColorFromRGB(0x28, 0x2c, 0x34)
	return Config{
		Styles: map[StyleTag]core.Style{
			TagSymbol:    core.NewStyle(symbol),
			TagSymbolOff: core.NewStyle(symbol.Blend(background, 0.5)),
		},
		ShowMarkers: true,
	}
}

// StyleFor returns the style for a tag, or the default style.
func (c Config) StyleFor(tag StyleTag) core.Style {
	if s, ok := c.Styles[tag]; ok {
		return s
	}
	return core.DefaultStyle()
}
