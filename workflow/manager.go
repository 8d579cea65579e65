package workflow

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"text/template"
	"time"

	sprig "github.com/go-task/slim-sprig/v3"
	"github.com/google/uuid"
	"github.com/maruel/natural"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"adt/cache"
	"adt/config"
	"adt/convert"
	"adt/document"
	"adt/markup"
	"adt/style"
	"adt/transport"
)

// State of one language's translation lifecycle.
type State string

const (
	StateTranslating    State = "translating"
	StateAwaitingReview State = "awaiting-review"
	StateReviewing      State = "reviewing"
	StateApplied        State = "applied"
	StateUploaded       State = "uploaded"
	StateCompleted      State = "completed"
	StateFailed         State = "failed"
)

// ReviewItem is one translation awaiting human confirmation.
type ReviewItem struct {
	NodeID     string
	Name       string
	Source     string
	Translated string
	Markup     string
	Applied    bool
}

// DefaultNameTemplate names a language duplicate after the original frame.
const DefaultNameTemplate = `{{.Name}} ({{upper .Lang}})`

// Config assembles one export session's collaborators.
type Config struct {
	Store     document.Store
	Client    *transport.Client
	Cache     *cache.Cache // nil disables caching
	Reviewer  Reviewer     // nil defaults to AutoApprove
	Languages []Language
	Meta      transport.Meta

	DuplicateNameTemplate string
	PreviewMaxWidth       int
	PreviewQuality        int

	Report *config.Report // nil disables debug artifacts
	Log    *zap.Logger
}

type langRun struct {
	lang     Language
	state    State
	dup      document.NodeID
	mapping  document.NodeMapping
	queue    []*ReviewItem
	uploaded []transport.UploadText
	err      error
}

// Manager owns all mutable per-language workflow state for one export
// session. Every mutation of queues and mappings goes through manager
// methods under one mutex; nothing else may touch them.
type Manager struct {
	cfg Config
	log *zap.Logger

	mu        sync.Mutex
	frame     document.NodeID
	frameName string
	version   string
	units     []transport.TextUnit
	unitByID  map[string]transport.TextUnit
	runs      map[string]*langRun
	order     []string // configured language order
	pending   []string // FIFO review discovery order
	current   string   // language currently under review
	nameTmpl  *template.Template
}

// LanguageReport summarizes one language's outcome.
type LanguageReport struct {
	Lang     Language
	State    State
	Uploaded []transport.UploadText
	Err      error
}

// NewManager validates the configuration and builds a session manager.
func NewManager(cfg Config) (*Manager, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("workflow requires a document store")
	}
	if cfg.Client == nil {
		return nil, fmt.Errorf("workflow requires a transport client")
	}
	if len(cfg.Languages) == 0 {
		return nil, fmt.Errorf("workflow requires at least one target language")
	}
	if cfg.Reviewer == nil {
		cfg.Reviewer = AutoApprove{}
	}
	if cfg.Log == nil {
		cfg.Log = zap.NewNop()
	}
	if cfg.DuplicateNameTemplate == "" {
		cfg.DuplicateNameTemplate = DefaultNameTemplate
	}

	tmpl, err := template.New("duplicate-name").Funcs(sprig.FuncMap()).Parse(cfg.DuplicateNameTemplate)
	if err != nil {
		return nil, fmt.Errorf("invalid duplicate name template: %w", err)
	}

	m := &Manager{
		cfg:      cfg,
		log:      cfg.Log.Named("workflow"),
		unitByID: make(map[string]transport.TextUnit),
		runs:     make(map[string]*langRun),
		nameTmpl: tmpl,
	}
	for _, l := range cfg.Languages {
		m.runs[l.Code] = &langRun{lang: l, state: StateTranslating}
		m.order = append(m.order, l.Code)
	}
	return m, nil
}

// Run executes the whole session: pre-flight validation, concurrent
// translation fan-out, then the strictly sequential review loop. Only
// pre-flight failures are fatal; per-language failures are isolated and
// reported in the aggregate error.
func (m *Manager) Run(ctx context.Context) error {
	if err := m.preflight(); err != nil {
		return err
	}

	preview := m.preparePreview()
	hash := cache.ContentHash(m.units)

	var wg sync.WaitGroup
	for _, code := range m.order {
		lr := m.runs[code]
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.translateLanguage(ctx, lr, preview, hash)
		}()
	}
	wg.Wait()

	m.review(ctx)

	var errs error
	for _, code := range m.order {
		if err := m.runs[code].err; err != nil {
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", code, err))
		}
	}
	return errs
}

// preflight validates the selection and collects the export content.
// These are the only fatal failures: nothing has gone over the network
// yet and an empty or ambiguous selection means the user picked nothing
// to translate.
func (m *Manager) preflight() error {
	sel := m.cfg.Store.Selection()
	if len(sel) != 1 {
		return fmt.Errorf("select exactly one frame to translate, have %d nodes selected", len(sel))
	}
	if !m.cfg.Store.IsFrame(sel[0]) {
		return fmt.Errorf("selected node %s is not a frame", sel[0])
	}
	m.frame = sel[0]
	m.frameName = m.cfg.Store.Name(m.frame)

	m.units = convert.CollectTextUnits(m.cfg.Store, m.frame, m.log)
	if len(m.units) == 0 {
		return fmt.Errorf("frame %q contains no text to translate", m.frameName)
	}
	for _, u := range m.units {
		m.unitByID[u.NodeID] = u
	}

	if id, err := uuid.NewV7(); err == nil {
		m.version = id.String()
	} else {
		m.version = uuid.NewString()
	}

	if data, err := json.MarshalIndent(m.units, "", "  "); err == nil {
		m.cfg.Report.StoreData("export/texts.json", data)
	}

	m.log.Info("Export prepared", zap.String("frame", m.frameName),
		zap.Int("units", len(m.units)), zap.Int("languages", len(m.order)))
	return nil
}

func (m *Manager) preparePreview() string {
	data, err := m.cfg.Store.ExportImage(m.frame)
	if err != nil {
		m.log.Debug("Frame has no exportable preview", zap.Error(err))
		return ""
	}
	uri, err := convert.PreparePreview(data, m.cfg.PreviewMaxWidth, m.cfg.PreviewQuality, m.log)
	if err != nil {
		// degrade: payload travels without image
		m.log.Warn("Unable to prepare frame preview", zap.Error(err))
		return ""
	}
	return uri
}

func (m *Manager) payload(lang Language, preview string) *transport.ExportPayload {
	meta := m.cfg.Meta
	if meta.ExportedAt.IsZero() {
		meta.ExportedAt = time.Now().UTC()
	}
	return &transport.ExportPayload{
		Meta:  meta,
		Frame: transport.Frame{ID: string(m.frame), Name: m.frameName, Image: preview},
		Texts: m.units,
		Lang:  lang.Code,
	}
}

// translateLanguage is the per-language fan-out body. A failure here is
// recorded on the language and never cancels siblings.
func (m *Manager) translateLanguage(ctx context.Context, lr *langRun, preview, hash string) {
	log := m.log.With(zap.String("lang", lr.lang.Code))

	result := m.cfg.Cache.Get(string(m.frame), lr.lang.Code, hash)
	if result == nil {
		var err error
		result, err = m.cfg.Client.TranslateChunked(ctx, m.payload(lr.lang, preview))
		if err != nil {
			log.Error("Translation failed", zap.String("language", lr.lang.Name), zap.Error(err))
			m.mu.Lock()
			lr.state = StateFailed
			lr.err = err
			m.mu.Unlock()
			return
		}
		m.cfg.Cache.Put(string(m.frame), lr.lang.Code, hash, result)
	}
	if result.Dir == "" {
		result.Dir = lr.lang.Dir()
	}
	if data, err := json.MarshalIndent(result, "", "  "); err == nil {
		m.cfg.Report.StoreData(fmt.Sprintf("translations/%s.json", lr.lang.Code), data)
	}

	m.applyResult(lr, result, log)
}

// applyResult duplicates the frame for the language, applies immediate
// translations and seeds the review queue from isNew items. Store
// mutations and workflow state are guarded by the manager mutex.
func (m *Manager) applyResult(lr *langRun, result *transport.TranslationResult, log *zap.Logger) {
	m.mu.Lock()
	defer m.mu.Unlock()

	dup, err := m.cfg.Store.CloneSubtree(m.frame)
	if err != nil {
		log.Error("Unable to duplicate frame", zap.Error(err))
		lr.state = StateFailed
		lr.err = err
		return
	}
	lr.dup = dup
	if name, err := m.duplicateName(lr.lang); err == nil {
		if err := m.cfg.Store.SetName(dup, name); err != nil {
			log.Warn("Unable to rename duplicate", zap.Error(err))
		}
	} else {
		log.Warn("Duplicate name template failed, keeping original name", zap.Error(err))
	}

	lr.mapping = document.BuildMapping(m.cfg.Store, m.frame, dup, log)

	for _, t := range result.Texts {
		if t.IsNew {
			m.queueReview(lr, t, log)
			continue
		}
		m.applyTranslation(lr, t, log)
	}

	if len(lr.queue) == 0 {
		// nothing to review, language is done
		lr.state = StateCompleted
		lr.mapping = nil
		log.Info("Language completed without review", zap.String("language", lr.lang.Name))
		return
	}

	sort.SliceStable(lr.queue, func(i, j int) bool {
		return natural.Less(lr.queue[i].Name, lr.queue[j].Name)
	})
	lr.state = StateAwaitingReview
	m.pending = append(m.pending, lr.lang.Code)
	log.Info("Language awaiting review", zap.Int("items", len(lr.queue)))
}

func (m *Manager) duplicateName(lang Language) (string, error) {
	var buf bytes.Buffer
	err := m.nameTmpl.Execute(&buf, struct {
		Name string
		Lang string
	}{Name: m.frameName, Lang: lang.Code})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}

// applyTranslation writes one non-review translation onto the duplicate.
// A node missing from the mapping is the soft MappingMismatch case: skip
// with a warning, keep going.
func (m *Manager) applyTranslation(lr *langRun, t transport.TranslatedText, log *zap.Logger) {
	target, ok := lr.mapping[document.NodeID(t.NodeID)]
	if !ok {
		log.Warn("No duplicate counterpart for node, translation skipped", zap.String("node", t.NodeID))
		return
	}
	segments := markup.Decode(t.Markup, log)
	if len(segments) == 0 {
		log.Warn("Translation decoded to no content, skipped", zap.String("node", t.NodeID))
		return
	}
	if err := convert.ApplySegments(m.cfg.Store, target, segments, log); err != nil {
		// degraded apply is still an apply; details were logged per property
		log.Warn("Translation applied with degradations", zap.String("node", t.NodeID), zap.Error(err))
	}
}

func (m *Manager) queueReview(lr *langRun, t transport.TranslatedText, log *zap.Logger) {
	src, ok := m.unitByID[t.NodeID]
	if !ok {
		log.Warn("Review item references unknown node, skipped", zap.String("node", t.NodeID))
		return
	}
	translated := t.Characters
	if translated == "" {
		translated = markup.Text(markup.Decode(t.Markup, log))
	}
	lr.queue = append(lr.queue, &ReviewItem{
		NodeID:     t.NodeID,
		Name:       src.Name,
		Source:     src.Characters,
		Translated: translated,
		Markup:     t.Markup,
	})
}

// review presents pending languages one at a time, in the order their
// translations arrived for review.
func (m *Manager) review(ctx context.Context) {
	total := len(m.order)
	index := 0
	for {
		m.mu.Lock()
		if len(m.pending) == 0 {
			m.mu.Unlock()
			break
		}
		code := m.pending[0]
		m.pending = m.pending[1:]
		lr := m.runs[code]
		lr.state = StateReviewing
		m.current = code
		index++
		load := &LoadReviewMessage{
			Type:         MsgLoadReview,
			Translations: itemViews(lr.queue),
			Lang:         code,
			LangIndex:    index,
			TotalLangs:   total,
		}
		m.mu.Unlock()

		m.log.Info("Presenting review", zap.String("lang", code), zap.Int("items", len(load.Translations)))
		err := m.cfg.Reviewer.Review(load, func(e *Event) error { return m.HandleEvent(ctx, e) })

		m.mu.Lock()
		if lr.state != StateUploaded {
			// abandoned: applied styling stays, queue and mapping go away
			m.log.Warn("Review abandoned", zap.String("lang", code), zap.Error(err))
			lr.queue = nil
			lr.mapping = nil
			if err != nil && lr.err == nil {
				lr.err = err
			}
		}
		m.current = ""
		m.mu.Unlock()
	}
	m.log.Info("All languages complete")
}

func itemViews(queue []*ReviewItem) []ReviewItemView {
	out := make([]ReviewItemView, 0, len(queue))
	for _, it := range queue {
		out = append(out, ReviewItemView{
			NodeID:     it.NodeID,
			Source:     it.Source,
			Translated: it.Translated,
			Markup:     it.Markup,
			Applied:    it.Applied,
		})
	}
	return out
}

// HandleEvent dispatches one review surface event.
func (m *Manager) HandleEvent(ctx context.Context, e *Event) error {
	switch e.Type {
	case EvtHighlightNode:
		_, err := m.Highlight(e.NodeID)
		return err
	case EvtApplyChanges:
		if e.Translation == nil {
			return fmt.Errorf("apply-changes event without translation")
		}
		return m.ApplyEdit(*e.Translation)
	case EvtUploadTranslations:
		return m.Upload(ctx, e.Translations)
	default:
		return fmt.Errorf("unknown review event %q", e.Type)
	}
}

// Highlight resolves the duplicate node a review item refers to, so the
// surface can focus it. Read-only: no mutation happens here.
func (m *Manager) Highlight(nodeID string) (document.NodeID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	lr := m.currentRun()
	if lr == nil {
		return "", fmt.Errorf("no language under review")
	}
	target, ok := lr.mapping[document.NodeID(nodeID)]
	if !ok {
		return "", fmt.Errorf("node %s has no counterpart in the %s duplicate", nodeID, lr.lang.Code)
	}
	m.log.Debug("Highlighting node", zap.String("node", string(target)), zap.String("lang", lr.lang.Code))
	return target, nil
}

// ApplyEdit regenerates the item's markup by substituting the edited
// plain text into the first style run's attributes and applies it to the
// duplicate. Multi-run styling from the original translation collapses
// to that single style; this is accepted behavior for human edits.
func (m *Manager) ApplyEdit(edit ReviewEdit) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	lr := m.currentRun()
	if lr == nil {
		return fmt.Errorf("no language under review")
	}
	item := findItem(lr.queue, edit.NodeID)
	if item == nil {
		return fmt.Errorf("node %s is not in the %s review queue", edit.NodeID, lr.lang.Code)
	}

	var base style.TextStyle
	if segments := markup.Decode(item.Markup, m.log); len(segments) > 0 {
		base = segments[0].Style
	}
	item.Translated = edit.Characters
	item.Markup = markup.Encode([]markup.Run{{Text: edit.Characters, Style: base}})

	target, ok := lr.mapping[document.NodeID(edit.NodeID)]
	if !ok {
		return fmt.Errorf("node %s has no counterpart in the %s duplicate", edit.NodeID, lr.lang.Code)
	}
	if err := convert.ApplySegments(m.cfg.Store, target, markup.Decode(item.Markup, m.log), m.log); err != nil {
		m.log.Warn("Edit applied with degradations", zap.String("node", edit.NodeID), zap.Error(err))
	}
	item.Applied = true
	lr.state = StateApplied
	m.log.Info("Edit applied", zap.String("node", edit.NodeID), zap.String("lang", lr.lang.Code))
	return nil
}

// Upload packages the current language's review queue for the service.
// On success the queue and mapping are destroyed and the next pending
// language can be presented.
func (m *Manager) Upload(ctx context.Context, finalEdits []ReviewEdit) error {
	m.mu.Lock()
	lr := m.currentRun()
	if lr == nil {
		m.mu.Unlock()
		return fmt.Errorf("no language under review")
	}
	// late edits arriving with the upload event update the queue first
	for _, e := range finalEdits {
		if item := findItem(lr.queue, e.NodeID); item != nil {
			item.Translated = e.Characters
		}
	}
	req := &transport.UploadRequest{}
	req.Frame.ID = string(m.frame)
	req.Frame.Name = m.frameName
	req.Body.Lang = lr.lang.Code
	for _, item := range lr.queue {
		req.Body.Texts = append(req.Body.Texts, transport.UploadText{
			NodeID:               item.NodeID,
			Characters:           item.Source,
			CharactersTranslated: item.Translated,
		})
	}
	m.mu.Unlock()

	if err := m.cfg.Client.Upload(ctx, req); err != nil {
		return err
	}

	m.mu.Lock()
	lr.uploaded = req.Body.Texts
	lr.queue = nil
	lr.mapping = nil
	lr.state = StateUploaded
	m.mu.Unlock()
	return nil
}

func (m *Manager) currentRun() *langRun {
	if m.current == "" {
		return nil
	}
	return m.runs[m.current]
}

func findItem(queue []*ReviewItem, nodeID string) *ReviewItem {
	for _, it := range queue {
		if it.NodeID == nodeID {
			return it
		}
	}
	return nil
}

// Summary reports every language's outcome in configured order.
func (m *Manager) Summary() []LanguageReport {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]LanguageReport, 0, len(m.order))
	for _, code := range m.order {
		lr := m.runs[code]
		out = append(out, LanguageReport{
			Lang:     lr.lang,
			State:    lr.state,
			Uploaded: append([]transport.UploadText(nil), lr.uploaded...),
			Err:      lr.err,
		})
	}
	return out
}

// FrameName returns the exported frame's display name.
func (m *Manager) FrameName() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.frameName
}
