package markup

import (
	"html"
	"strings"
)

// Encode renders an ordered, gap-filled run sequence as canonical markup.
// Each run becomes one style element; property order inside the attribute
// string is fixed (see style.TextStyle.Attr), so encoding an identical run
// sequence twice yields byte-identical output.
func Encode(runs []Run) string {
	var b strings.Builder
	for _, r := range runs {
		if r.Text == "" {
			continue
		}
		b.WriteString(`<span style="`)
		b.WriteString(html.EscapeString(r.Style.Attr()))
		b.WriteString(`">`)
		b.WriteString(escapeText(r.Text))
		b.WriteString(`</span>`)
	}
	return b.String()
}

// escapeText entity-escapes text content and turns newlines into line
// break elements.
func escapeText(s string) string {
	return strings.ReplaceAll(html.EscapeString(s), "\n", "<br/>")
}
