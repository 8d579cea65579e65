package document

import (
	"sort"

	"go.uber.org/zap"

	"adt/markup"
	"adt/style"
)

// ExtractRuns resolves a text node's styled ranges into the gap-filled
// run sequence the markup encoder consumes. Ranges the host iterator
// omits are synthesized from the node's default styling so no character
// is silently lost at default-styled boundaries.
func ExtractRuns(s Store, id NodeID, log *zap.Logger) ([]markup.Run, error) {
	if log == nil {
		log = zap.NewNop()
	}
	text := []rune(s.Text(id))
	raw, err := s.StyleRuns(id)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(raw, func(i, j int) bool { return raw[i].Start < raw[j].Start })

	base := s.BaseRun(id)
	var out []markup.Run
	cursor := 0

	appendRun := func(from, to int, r RawRun) {
		if from < 0 {
			from = 0
		}
		if to > len(text) {
			to = len(text)
		}
		if from >= to {
			return
		}
		out = append(out, markup.Run{Text: string(text[from:to]), Style: ResolveRun(r)})
	}

	for _, r := range raw {
		if r.Start > cursor {
			log.Debug("Filling style run gap", zap.String("node", string(id)),
				zap.Int("from", cursor), zap.Int("to", r.Start))
			appendRun(cursor, r.Start, base)
		}
		appendRun(r.Start, r.End, r)
		if r.End > cursor {
			cursor = r.End
		}
	}
	if cursor < len(text) {
		log.Debug("Filling trailing style run gap", zap.String("node", string(id)),
			zap.Int("from", cursor), zap.Int("to", len(text)))
		appendRun(cursor, len(text), base)
	}
	return out, nil
}

// ResolveRun converts a host styled range to the canonical style: font
// style name decodes to weight+italic, the first visible solid fill wins,
// a "NONE" decoration is dropped, spacing descriptors carry over as is.
func ResolveRun(r RawRun) style.TextStyle {
	weight, italic := style.ParseStyleName(r.Font.Style)
	out := style.TextStyle{
		Family:     r.Font.Family,
		Weight:     weight,
		Italic:     italic,
		Size:       r.Size,
		Decoration: style.ParseDecoration(r.Decoration),
	}

	for _, p := range r.Fills {
		if p.Hidden() || p.Type != "SOLID" || p.Color == nil {
			continue
		}
		c := *p.Color
		if p.Opacity != nil {
			c.A = *p.Opacity
		}
		out.Fill = &c
		break
	}

	if r.LetterSpacing != nil {
		ls := *r.LetterSpacing
		out.LetterSpacing = &ls
	}
	if r.LineHeight != nil {
		lh := *r.LineHeight
		out.LineHeight = &lh
	}
	return out
}
