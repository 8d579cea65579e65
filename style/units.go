package style

import (
	"fmt"
	"strconv"
	"strings"
)

// DefaultFontSize is used for em conversion when the font size is unknown
// at the call site.
const DefaultFontSize = 16.0

// EmToPixels converts an em value to absolute pixels against the given
// font size. A non-positive font size falls back to DefaultFontSize.
func EmToPixels(v, fontSize float64) float64 {
	if fontSize <= 0 {
		fontSize = DefaultFontSize
	}
	return v * fontSize
}

// UnitlessLineHeight resolves a unitless line-height number. With a known
// font size the value is a multiplier and converts to absolute pixels.
// Without one the same number is reinterpreted as a percentage. This
// asymmetry is intentional and must not be "fixed" to general CSS rules.
func UnitlessLineHeight(v, fontSize float64) Scaled {
	if fontSize > 0 {
		return Pixels(v * fontSize)
	}
	return Percent(v * 100)
}

// ErrUnknownUnit marks a dimension suffix outside the supported set. The
// applier skips the property and keeps the prior value.
type ErrUnknownUnit struct {
	Raw string
}

func (e ErrUnknownUnit) Error() string {
	return fmt.Sprintf("unrecognized unit in %q", e.Raw)
}

// splitDimension separates the numeric part of a CSS-ish dimension from
// its unit suffix.
func splitDimension(raw string) (value float64, unit string, err error) {
	s := strings.TrimSpace(raw)
	i := len(s)
	for i > 0 {
		c := s[i-1]
		if c >= '0' && c <= '9' || c == '.' {
			break
		}
		i--
	}
	value, err = strconv.ParseFloat(strings.TrimSpace(s[:i]), 64)
	if err != nil {
		return 0, "", fmt.Errorf("malformed dimension %q: %w", raw, err)
	}
	return value, strings.TrimSpace(s[i:]), nil
}

// ParseSpacing converts a letter-spacing value ("0.5px", "-0.025em", "4%")
// into the document's two-unit model.
func ParseSpacing(raw string, fontSize float64) (Scaled, error) {
	v, unit, err := splitDimension(raw)
	if err != nil {
		return Scaled{}, err
	}
	switch unit {
	case "px":
		return Pixels(v), nil
	case "%":
		return Percent(v), nil
	case "em":
		return Pixels(EmToPixels(v, fontSize)), nil
	default:
		return Scaled{}, ErrUnknownUnit{Raw: raw}
	}
}

// ParseLineHeight converts a line-height value into the two-unit model,
// applying the unitless fallback from UnitlessLineHeight.
func ParseLineHeight(raw string, fontSize float64) (Scaled, error) {
	v, unit, err := splitDimension(raw)
	if err != nil {
		return Scaled{}, err
	}
	switch unit {
	case "px":
		return Pixels(v), nil
	case "%":
		return Percent(v), nil
	case "em":
		return Pixels(EmToPixels(v, fontSize)), nil
	case "":
		return UnitlessLineHeight(v, fontSize), nil
	default:
		return Scaled{}, ErrUnknownUnit{Raw: raw}
	}
}

// ParseFontSize extracts a pixel font size from "24px" or a bare number.
func ParseFontSize(raw string) (float64, error) {
	v, unit, err := splitDimension(raw)
	if err != nil {
		return 0, err
	}
	switch unit {
	case "", "px":
		return v, nil
	default:
		return 0, ErrUnknownUnit{Raw: raw}
	}
}
