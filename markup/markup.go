// Package markup implements the bidirectional codec between per-character
// style runs and the constrained inline markup exchanged with the
// translation service.
//
// The grammar has exactly two element kinds: a style element
// (<span style="...">) carrying one flat attribute string, and an emphasis
// element (<em>) that is always italic and carries no attributes. Line
// breaks are <br/>, text is entity escaped. Everything else in a document
// is literal text.
package markup

import "adt/style"

// Run is a maximal span of source text sharing one resolved style, as
// produced by the run extractor. Adjacent runs never overlap and together
// cover the unit's full text.
type Run struct {
	Text  string
	Style style.TextStyle
}

// Segment is a (text, resolved style) pair produced by decoding markup.
// Concatenation of all segment texts equals the markup's visible text with
// line breaks mapped to newlines.
type Segment struct {
	Text  string
	Style style.TextStyle
}

// Text concatenates the visible text of a decoded segment sequence.
func Text(segments []Segment) string {
	n := 0
	for _, s := range segments {
		n += len(s.Text)
	}
	out := make([]byte, 0, n)
	for _, s := range segments {
		out = append(out, s.Text...)
	}
	return string(out)
}
