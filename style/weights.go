package style

import "strings"

// Canonical font weights supported by the pipeline.
const (
	WeightThin     = 100
	WeightLight    = 300
	WeightRegular  = 400
	WeightMedium   = 500
	WeightSemiBold = 600
	WeightBold     = 700
	WeightBlack    = 900
)

var weightNames = []struct {
	weight int
	name   string
}{
	{WeightThin, "Thin"},
	{WeightLight, "Light"},
	{WeightRegular, "Regular"},
	{WeightMedium, "Medium"},
	{WeightSemiBold, "Semi Bold"},
	{WeightBold, "Bold"},
	{WeightBlack, "Black"},
}

// WeightName maps a numeric weight to its canonical style name, optionally
// with the italic suffix. Weights between table entries snap to the
// closest entry, lower on ties. A plain italic regular is named "Italic",
// matching font catalog conventions.
func WeightName(weight int, italic bool) string {
	name := "Regular"
	best := 1 << 30
	for _, wn := range weightNames {
		d := weight - wn.weight
		if d < 0 {
			d = -d
		}
		if d < best {
			best = d
			name = wn.name
		}
	}
	if !italic {
		return name
	}
	if name == "Regular" {
		return "Italic"
	}
	return name + " Italic"
}

// ParseStyleName infers (weight, italic) from a font style name. Substring
// checks run in a fixed order: the semi bold check must precede the bold
// check because "Semi Bold" contains "bold", and later checks must never
// re-match an earlier, more specific case.
func ParseStyleName(name string) (weight int, italic bool) {
	s := strings.ToLower(name)
	italic = strings.Contains(s, "italic")
	switch {
	case strings.Contains(s, "semibold") || strings.Contains(s, "semi bold"):
		weight = WeightSemiBold
	case strings.Contains(s, "bold"):
		weight = WeightBold
	case strings.Contains(s, "medium"):
		weight = WeightMedium
	case strings.Contains(s, "light"):
		weight = WeightLight
	case strings.Contains(s, "thin"):
		weight = WeightThin
	case strings.Contains(s, "black") || strings.Contains(s, "heavy"):
		weight = WeightBlack
	default:
		weight = WeightRegular
	}
	return weight, italic
}

var italicLadder = []string{
	"Bold Italic",
	"Semi Bold Italic",
	"SemiBold Italic",
	"Medium Italic",
	"Italic",
}

var uprightLadder = []string{
	"Bold",
	"Semi Bold",
	"SemiBold",
	"Medium",
	"Regular",
}

// FallbackNames returns the ordered ladder of style names to try once the
// exact desired name is unavailable in the font catalog. When italic was
// requested the italic sub-ladder is exhausted before any upright style is
// considered, so an italic request never degrades to upright early.
func FallbackNames(italic bool) []string {
	if !italic {
		return uprightLadder
	}
	out := make([]string, 0, len(italicLadder)+len(uprightLadder))
	out = append(out, italicLadder...)
	out = append(out, uprightLadder...)
	return out
}
