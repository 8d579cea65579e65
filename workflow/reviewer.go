package workflow

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// ConsoleReviewer drives the review protocol over a line-oriented text
// stream. Each queued item is shown with its proposed translation; an
// empty line accepts it, any other input replaces the translated text.
type ConsoleReviewer struct {
	in  *bufio.Scanner
	out io.Writer
}

func NewConsoleReviewer(in io.Reader, out io.Writer) *ConsoleReviewer {
	return &ConsoleReviewer{in: bufio.NewScanner(in), out: out}
}

func (r *ConsoleReviewer) Review(load *LoadReviewMessage, emit func(*Event) error) error {
	fmt.Fprintf(r.out, "\nReviewing %s (%d of %d), %d item(s). Empty line accepts, text replaces.\n",
		load.Lang, load.LangIndex, load.TotalLangs, len(load.Translations))

	edits := make([]ReviewEdit, 0, len(load.Translations))
	for i, item := range load.Translations {
		if err := emit(&Event{Type: EvtHighlightNode, NodeID: item.NodeID, Lang: load.Lang}); err != nil {
			// highlighting is best effort, the surface may have no focus
			fmt.Fprintf(r.out, "  (cannot highlight %s: %v)\n", item.NodeID, err)
		}
		fmt.Fprintf(r.out, "\n[%d/%d] %s\n  source:     %s\n  translated: %s\n> ",
			i+1, len(load.Translations), item.NodeID, item.Source, item.Translated)

		text := item.Translated
		if r.in.Scan() {
			if line := strings.TrimSpace(r.in.Text()); line != "" {
				text = line
				if err := emit(&Event{Type: EvtApplyChanges, Lang: load.Lang,
					Translation: &ReviewEdit{NodeID: item.NodeID, Characters: text}}); err != nil {
					return err
				}
			}
		} else if err := r.in.Err(); err != nil {
			return fmt.Errorf("review input failed: %w", err)
		}
		edits = append(edits, ReviewEdit{NodeID: item.NodeID, Characters: text})
	}

	fmt.Fprintf(r.out, "\nUploading %d translation(s) for %s\n", len(edits), load.Lang)
	return emit(&Event{Type: EvtUploadTranslations, Translations: edits, Lang: load.Lang})
}
