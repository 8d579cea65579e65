package workflow

// Review UI protocol. The manager sends one load-review message per
// language; the surface answers with events until it uploads or abandons
// the review. Shapes are wire-stable JSON so a remote surface can speak
// the same protocol as the built-in reviewers.

const (
	MsgLoadReview = "load-review"

	EvtHighlightNode      = "highlight-node"
	EvtApplyChanges       = "apply-changes"
	EvtUploadTranslations = "upload-translations"
)

// ReviewItemView is the UI-facing projection of a queued review item.
type ReviewItemView struct {
	NodeID     string `json:"nodeId"`
	Source     string `json:"source"`
	Translated string `json:"translated"`
	Markup     string `json:"markup"`
	Applied    bool   `json:"applied"`
}

// LoadReviewMessage presents one language's pending queue to the review
// surface.
type LoadReviewMessage struct {
	Type         string           `json:"type"` // always MsgLoadReview
	Translations []ReviewItemView `json:"translations"`
	Lang         string           `json:"lang"`
	LangIndex    int              `json:"langIndex"`
	TotalLangs   int              `json:"totalLangs"`
}

// ReviewEdit carries edited plain text for one node.
type ReviewEdit struct {
	NodeID     string `json:"nodeId"`
	Characters string `json:"characters"`
}

// Event is an outbound message from the review surface.
type Event struct {
	Type         string       `json:"type"`
	NodeID       string       `json:"nodeId,omitempty"`       // highlight-node
	Translation  *ReviewEdit  `json:"translation,omitempty"`  // apply-changes
	Translations []ReviewEdit `json:"translations,omitempty"` // upload-translations
	Lang         string       `json:"lang,omitempty"`
}

// Reviewer drives one language's interactive review. Implementations
// receive the load-review message and emit events through the provided
// sink; returning without an upload event abandons the language (already
// applied styling stays in place).
type Reviewer interface {
	Review(load *LoadReviewMessage, emit func(*Event) error) error
}

// AutoApprove is the scripted reviewer used by the non-interactive CLI:
// it accepts every proposed translation unchanged and uploads.
type AutoApprove struct{}

func (AutoApprove) Review(load *LoadReviewMessage, emit func(*Event) error) error {
	edits := make([]ReviewEdit, 0, len(load.Translations))
	for _, item := range load.Translations {
		edits = append(edits, ReviewEdit{NodeID: item.NodeID, Characters: item.Translated})
	}
	return emit(&Event{Type: EvtUploadTranslations, Translations: edits, Lang: load.Lang})
}
