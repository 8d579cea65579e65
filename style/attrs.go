package style

import (
	"bytes"
	"strconv"
	"strings"

	parse "github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
	"go.uber.org/zap"
)

// Attr renders the style as the flat attribute string carried by a style
// element. Properties are emitted in a fixed canonical order so encoding
// the same style twice is byte identical:
// font-family, font-weight, font-style, font-size, color, text-decoration,
// letter-spacing, line-height.
func (s TextStyle) Attr() string {
	var b strings.Builder
	writeDecl := func(prop, val string) {
		if b.Len() > 0 {
			b.WriteString("; ")
		}
		b.WriteString(prop)
		b.WriteString(": ")
		b.WriteString(val)
	}

	if s.Family != "" {
		writeDecl("font-family", s.Family)
	}
	writeDecl("font-weight", strconv.Itoa(s.Weight))
	if s.Italic {
		writeDecl("font-style", "italic")
	}
	if s.Size > 0 {
		writeDecl("font-size", formatNumber(s.Size)+"px")
	}
	if s.Fill != nil {
		writeDecl("color", s.Fill.String())
	}
	if s.Decoration != "" && s.Decoration != DecorationNone {
		writeDecl("text-decoration", string(s.Decoration))
	}
	if s.LetterSpacing != nil {
		writeDecl("letter-spacing", s.LetterSpacing.String())
	}
	if s.LineHeight != nil {
		writeDecl("line-height", s.LineHeight.String())
	}
	return b.String()
}

// ParseAttr decodes a flat attribute string back into a TextStyle. Parsing
// is tolerant: unknown properties and malformed values are logged and
// skipped, the rest of the declaration list is still consumed.
func ParseAttr(attr string, log *zap.Logger) TextStyle {
	if log == nil {
		log = zap.NewNop()
	}
	out := TextStyle{Weight: WeightRegular, Decoration: DecorationNone}

	input := parse.NewInput(bytes.NewReader([]byte(attr)))
	parser := css.NewParser(input, true)
	for {
		gt, _, data := parser.Next()
		switch gt {
		case css.ErrorGrammar:
			return out
		case css.DeclarationGrammar, css.CustomPropertyGrammar:
			prop := strings.ToLower(string(data))
			raw := joinTokens(parser.Values())
			applyDeclaration(&out, prop, raw, log)
		}
	}
}

func joinTokens(tokens []css.Token) string {
	var b strings.Builder
	for _, t := range tokens {
		b.Write(t.Data)
	}
	return strings.TrimSpace(b.String())
}

func applyDeclaration(s *TextStyle, prop, raw string, log *zap.Logger) {
	switch prop {
	case "font-family":
		s.Family = strings.Trim(raw, `"'`)
	case "font-weight":
		if w, err := strconv.Atoi(raw); err == nil {
			s.Weight = w
			return
		}
		// keyword form, e.g. "bold"
		w, _ := ParseStyleName(raw)
		s.Weight = w
	case "font-style":
		if strings.EqualFold(raw, "italic") || strings.EqualFold(raw, "oblique") {
			s.Italic = true
		}
	case "font-size":
		v, err := ParseFontSize(raw)
		if err != nil {
			log.Debug("Skipping font-size", zap.String("value", raw), zap.Error(err))
			return
		}
		s.Size = v
	case "color":
		c, err := ParseColor(raw)
		if err != nil {
			log.Debug("Skipping color", zap.String("value", raw), zap.Error(err))
			return
		}
		s.Fill = &c
	case "text-decoration":
		s.Decoration = ParseDecoration(raw)
	case "letter-spacing":
		v, err := ParseSpacing(raw, s.Size)
		if err != nil {
			log.Debug("Skipping letter-spacing", zap.String("value", raw), zap.Error(err))
			return
		}
		s.LetterSpacing = &v
	case "line-height":
		v, err := ParseLineHeight(raw, s.Size)
		if err != nil {
			log.Debug("Skipping line-height", zap.String("value", raw), zap.Error(err))
			return
		}
		s.LineHeight = &v
	default:
		log.Debug("Ignoring unsupported property", zap.String("property", prop))
	}
}
