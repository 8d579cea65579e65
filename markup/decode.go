package markup

import (
	"strings"

	"go.uber.org/zap"
	"golang.org/x/net/html"

	"adt/style"
)

// Decode scans markup left to right and produces ordered segments. The
// tokenizer yields a tagged token stream (text, open/close/self-closing
// tags) which a small stack-based parser folds into segments: a style
// element establishes the base style for its interior, an emphasis element
// inherits the enclosing base style with italic forced on, <br/> decodes
// to a newline, entities decode to literal characters.
//
// Malformed input policy: an element that is never closed keeps its
// interior text in the output (literal passthrough); the unmatched open
// tag only influences styling until end of input. Stray close tags are
// ignored. Unknown elements are dropped as tags, their text is kept.
func Decode(data string, log *zap.Logger) []Segment {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("markup-decoder")

	base := style.TextStyle{Weight: style.WeightRegular, Decoration: style.DecorationNone}
	stack := []style.TextStyle{base}
	top := func() style.TextStyle { return stack[len(stack)-1] }

	var segments []Segment
	emit := func(text string) {
		if text == "" {
			return
		}
		cur := top()
		if n := len(segments); n > 0 && segments[n-1].Style.Equal(cur) {
			segments[n-1].Text += text
			return
		}
		segments = append(segments, Segment{Text: text, Style: cur})
	}

	z := html.NewTokenizer(strings.NewReader(data))
	for {
		switch z.Next() {
		case html.ErrorToken:
			if len(stack) > 1 {
				log.Debug("Unterminated element(s) at end of markup", zap.Int("depth", len(stack)-1))
			}
			return segments

		case html.TextToken:
			emit(z.Token().Data)

		case html.StartTagToken:
			t := z.Token()
			switch t.Data {
			case "span":
				s := style.ParseAttr(styleAttr(t), log)
				stack = append(stack, s)
			case "em", "i":
				s := top()
				s.Italic = true
				stack = append(stack, s)
			case "br":
				emit("\n")
			default:
				log.Debug("Skipping unknown element", zap.String("element", t.Data))
				// keep interior text styled as the surroundings
				stack = append(stack, top())
			}

		case html.SelfClosingTagToken:
			t := z.Token()
			if t.Data == "br" {
				emit("\n")
			} else {
				log.Debug("Skipping unknown self-closing element", zap.String("element", t.Data))
			}

		case html.EndTagToken:
			if len(stack) > 1 {
				stack = stack[:len(stack)-1]
			} else {
				log.Debug("Ignoring stray close tag")
			}
		}
	}
}

func styleAttr(t html.Token) string {
	for _, a := range t.Attr {
		if a.Key == "style" {
			return a.Val
		}
	}
	return ""
}
