// Package workflow coordinates the per-language translation lifecycle:
// concurrent translate fan-out, sequential human review, application of
// translated styling and the final upload.
package workflow

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Language is one validated translation target.
type Language struct {
	Code string // normalized BCP 47 tag, e.g. "de", "pt-BR"
	Name string // English display name for logs and reports
	RTL  bool
}

// rtlBases covers scripts written right to left among the service's
// supported targets.
var rtlBases = map[string]bool{
	"ar": true, "he": true, "fa": true, "ur": true,
	"ps": true, "sd": true, "ug": true, "yi": true, "dv": true,
}

// ParseLanguages validates configured language codes. Invalid tags are an
// error: a typo here would silently produce a useless export.
func ParseLanguages(codes []string, log *zap.Logger) ([]Language, error) {
	if log == nil {
		log = zap.NewNop()
	}
	out := make([]Language, 0, len(codes))
	seen := make(map[string]bool)
	for _, code := range codes {
		tag, err := language.Parse(strings.TrimSpace(code))
		if err != nil {
			return nil, fmt.Errorf("invalid target language %q: %w", code, err)
		}
		normalized := tag.String()
		if seen[normalized] {
			log.Warn("Duplicate target language ignored", zap.String("lang", normalized))
			continue
		}
		seen[normalized] = true

		base, _ := tag.Base()
		out = append(out, Language{
			Code: normalized,
			Name: display.English.Languages().Name(tag),
			RTL:  rtlBases[base.String()],
		})
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no target languages configured")
	}
	return out, nil
}

// Dir returns the writing direction tag used in translation results when
// the service omits it.
func (l Language) Dir() string {
	if l.RTL {
		return "rtl"
	}
	return "ltr"
}
