// Package document models the host design document as a narrow store
// interface the translation pipeline reads and mutates through, plus an
// in-memory implementation backed by JSON snapshots used by the CLI and
// tests.
package document

import (
	"adt/style"
)

// NodeID identifies a node in the host document.
type NodeID string

// Node kinds we care about. Anything unknown is treated as a container.
const (
	NodeTypeFrame = "FRAME"
	NodeTypeGroup = "GROUP"
	NodeTypeText  = "TEXT"
)

// FontName is the host font descriptor: a family plus a named style
// ("Inter" / "Semi Bold Italic").
type FontName struct {
	Family string `json:"family"`
	Style  string `json:"style"`
}

// Paint is a single fill of a styled range. Only visible solid paints
// contribute color to the canonical style.
type Paint struct {
	Type    string       `json:"type"` // SOLID, GRADIENT_LINEAR, IMAGE, ...
	Visible *bool        `json:"visible,omitempty"`
	Opacity *float64     `json:"opacity,omitempty"`
	Color   *style.Color `json:"color,omitempty"`
}

// Hidden reports whether the paint was explicitly turned off.
func (p Paint) Hidden() bool {
	return p.Visible != nil && !*p.Visible
}

// RawRun is one styled character range as reported by the host. Offsets
// are character (rune) positions within the node text.
type RawRun struct {
	Start         int           `json:"start"`
	End           int           `json:"end"`
	Font          FontName      `json:"font"`
	Size          float64       `json:"size"`
	Fills         []Paint       `json:"fills,omitempty"`
	Decoration    string        `json:"decoration,omitempty"` // NONE, UNDERLINE, STRIKETHROUGH
	LetterSpacing *style.Scaled `json:"letterSpacing,omitempty"`
	LineHeight    *style.Scaled `json:"lineHeight,omitempty"` // nil means AUTO
}

// RangeProperty names a mutable styled-range property understood by
// Store.SetRangeStyle.
type RangeProperty string

const (
	PropFont          RangeProperty = "font"          // value: FontName
	PropSize          RangeProperty = "size"          // value: float64 (pixels)
	PropFill          RangeProperty = "fill"          // value: style.Color
	PropDecoration    RangeProperty = "decoration"    // value: string (UNDERLINE | STRIKETHROUGH)
	PropLetterSpacing RangeProperty = "letterSpacing" // value: style.Scaled
	PropLineHeight    RangeProperty = "lineHeight"    // value: style.Scaled
)
