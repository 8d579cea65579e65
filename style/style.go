// Package style defines the canonical text style representation shared by
// the markup codec, the run extractor and the style applier, together with
// unit conversions and font weight/style-name inference.
package style

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Unit tags every numeric value crossing the document boundary. The host
// document model only understands these two.
type Unit string

const (
	UnitPixels  Unit = "PIXELS"
	UnitPercent Unit = "PERCENT"
)

// Scaled is a numeric value with an explicit unit tag.
type Scaled struct {
	Value float64
	Unit  Unit
}

func Pixels(v float64) Scaled  { return Scaled{Value: v, Unit: UnitPixels} }
func Percent(v float64) Scaled { return Scaled{Value: v, Unit: UnitPercent} }

func (s Scaled) String() string {
	switch s.Unit {
	case UnitPercent:
		return formatNumber(s.Value) + "%"
	default:
		return formatNumber(s.Value) + "px"
	}
}

// Decoration is a normalized text decoration. Anything the host reports
// beyond underline and strikethrough collapses to none.
type Decoration string

const (
	DecorationNone          Decoration = "none"
	DecorationUnderline     Decoration = "underline"
	DecorationStrikethrough Decoration = "line-through"
)

// ParseDecoration normalizes a textual decoration value. Unrecognized
// values map to none.
func ParseDecoration(raw string) Decoration {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "underline":
		return DecorationUnderline
	case "line-through", "strikethrough":
		return DecorationStrikethrough
	default:
		return DecorationNone
	}
}

// Color is a solid fill with channels normalized to [0,1].
type Color struct {
	R, G, B float64
	A       float64 // 1 means fully opaque
}

func (c Color) String() string {
	if c.A < 1 {
		return fmt.Sprintf("rgba(%d,%d,%d,%s)", channelByte(c.R), channelByte(c.G), channelByte(c.B), formatNumber(c.A))
	}
	return fmt.Sprintf("rgb(%d,%d,%d)", channelByte(c.R), channelByte(c.G), channelByte(c.B))
}

func channelByte(v float64) int {
	return int(math.Round(math.Min(math.Max(v, 0), 1) * 255))
}

// ParseColor parses rgb(r,g,b) and rgba(r,g,b,a) textual forms into
// normalized channels. Any other form (hex, named colors) is rejected and
// the caller keeps the prior fill.
func ParseColor(raw string) (Color, error) {
	s := strings.TrimSpace(strings.ToLower(raw))
	var body string
	var hasAlpha bool
	switch {
	case strings.HasPrefix(s, "rgba(") && strings.HasSuffix(s, ")"):
		body, hasAlpha = s[len("rgba("):len(s)-1], true
	case strings.HasPrefix(s, "rgb(") && strings.HasSuffix(s, ")"):
		body = s[len("rgb(") : len(s)-1]
	default:
		return Color{}, fmt.Errorf("unsupported color form %q", raw)
	}

	parts := strings.Split(body, ",")
	want := 3
	if hasAlpha {
		want = 4
	}
	if len(parts) != want {
		return Color{}, fmt.Errorf("malformed color %q", raw)
	}

	var ch [4]float64
	ch[3] = 1
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return Color{}, fmt.Errorf("malformed color component %q: %w", p, err)
		}
		ch[i] = v
	}
	return Color{R: ch[0] / 255, G: ch[1] / 255, B: ch[2] / 255, A: ch[3]}, nil
}

// TextStyle is the canonical resolved style of a span of text.
type TextStyle struct {
	Family        string
	Weight        int
	Italic        bool
	Size          float64 // device independent pixels
	Fill          *Color
	Decoration    Decoration
	LetterSpacing *Scaled
	LineHeight    *Scaled
}

// Equal reports whether two styles are identical, comparing optional
// fields by value.
func (s TextStyle) Equal(o TextStyle) bool {
	if s.Family != o.Family || s.Weight != o.Weight || s.Italic != o.Italic ||
		s.Size != o.Size || s.Decoration != o.Decoration {
		return false
	}
	if !equalColor(s.Fill, o.Fill) {
		return false
	}
	return equalScaled(s.LetterSpacing, o.LetterSpacing) && equalScaled(s.LineHeight, o.LineHeight)
}

func equalColor(a, b *Color) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func equalScaled(a, b *Scaled) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// formatNumber renders a float without a trailing ".0" so encoded markup
// stays byte-stable.
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
