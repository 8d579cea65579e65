// Package convert glues the document store to the markup codec: it builds
// export payloads from style runs, applies decoded segments back onto text
// nodes and prepares frame preview images.
package convert

import (
	"fmt"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"adt/document"
	"adt/markup"
	"adt/style"
)

// ApplySegments writes decoded segments onto one text node. The node's
// text is overwritten with the concatenation of all segment texts first,
// so every range offset below is computed against the new content. Then
// each segment's properties are applied in sequence. A failure applying
// one property is collected and never aborts the remaining properties or
// segments; the aggregate is returned for reporting.
func ApplySegments(s document.Store, id document.NodeID, segments []markup.Segment, log *zap.Logger) error {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("applier").With(zap.String("node", string(id)))

	if err := s.ReplaceText(id, markup.Text(segments)); err != nil {
		return fmt.Errorf("unable to replace text of node %s: %w", id, err)
	}

	var errs error
	cursor := 0
	for i, seg := range segments {
		start := cursor
		end := start + len([]rune(seg.Text))
		cursor = end
		if start >= end {
			continue
		}
		if err := applySegmentStyle(s, id, start, end, seg.Style, log); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("segment %d [%d,%d): %w", i, start, end, err))
		}
	}
	return errs
}

func applySegmentStyle(s document.Store, id document.NodeID, start, end int, ts style.TextStyle, log *zap.Logger) error {
	var errs error

	if ts.Family != "" {
		if font, err := ResolveFont(s, ts.Family, ts.Weight, ts.Italic, log); err != nil {
			// degraded: the range keeps its prior font
			log.Warn("No usable font, keeping prior", zap.String("family", ts.Family),
				zap.Int("weight", ts.Weight), zap.Bool("italic", ts.Italic), zap.Error(err))
			errs = multierr.Append(errs, err)
		} else if err := s.SetRangeStyle(id, start, end, document.PropFont, font); err != nil {
			errs = multierr.Append(errs, err)
		}
	}

	if ts.Size > 0 {
		if err := s.SetRangeStyle(id, start, end, document.PropSize, ts.Size); err != nil {
			errs = multierr.Append(errs, err)
		}
	}

	if ts.Fill != nil {
		if err := s.SetRangeStyle(id, start, end, document.PropFill, *ts.Fill); err != nil {
			errs = multierr.Append(errs, err)
		}
	}

	if d := decorationValue(ts.Decoration); d != "" {
		if err := s.SetRangeStyle(id, start, end, document.PropDecoration, d); err != nil {
			errs = multierr.Append(errs, err)
		}
	}

	if ts.LetterSpacing != nil {
		if err := s.SetRangeStyle(id, start, end, document.PropLetterSpacing, *ts.LetterSpacing); err != nil {
			errs = multierr.Append(errs, err)
		}
	}
	if ts.LineHeight != nil {
		if err := s.SetRangeStyle(id, start, end, document.PropLineHeight, *ts.LineHeight); err != nil {
			errs = multierr.Append(errs, err)
		}
	}
	return errs
}

func decorationValue(d style.Decoration) string {
	switch d {
	case style.DecorationUnderline:
		return "UNDERLINE"
	case style.DecorationStrikethrough:
		return "STRIKETHROUGH"
	default:
		return ""
	}
}

// ResolveFont maps a desired (family, weight, italic) triple to a loadable
// font. The exact style name is tried first, then the ordered fallback
// ladder; an italic request exhausts italic candidates before degrading to
// upright. Every candidate goes through Store.LoadFont so availability is
// decided by the catalog, not by name heuristics.
func ResolveFont(s document.Store, family string, weight int, italic bool, log *zap.Logger) (document.FontName, error) {
	exact := document.FontName{Family: family, Style: style.WeightName(weight, italic)}
	if err := s.LoadFont(exact); err == nil {
		return exact, nil
	}

	for _, name := range style.FallbackNames(italic) {
		if name == exact.Style {
			continue
		}
		candidate := document.FontName{Family: family, Style: name}
		if err := s.LoadFont(candidate); err == nil {
			if log != nil {
				log.Debug("Font fallback", zap.String("requested", exact.Style), zap.String("using", name))
			}
			return candidate, nil
		}
	}
	return document.FontName{}, fmt.Errorf("no style of family %q is available for weight %d (italic %v)", family, weight, italic)
}
