package document

import (
	"encoding/json"
	"fmt"
	"os"

	"go.uber.org/zap"

	"adt/style"
)

// Snapshot is the JSON representation of a document the in-memory store
// loads and saves. It captures exactly what the pipeline needs: node tree,
// per-range styling, the font catalog and the current selection.
type Snapshot struct {
	FileKey   string          `json:"fileKey"`
	FileName  string          `json:"fileName"`
	PageName  string          `json:"pageName"`
	Fonts     []FontName      `json:"fonts"`
	Selection []NodeID        `json:"selection,omitempty"`
	Nodes     []*SnapshotNode `json:"nodes"`
}

// SnapshotNode is one node of the snapshot tree.
type SnapshotNode struct {
	ID         NodeID          `json:"id"`
	Name       string          `json:"name"`
	Type       string          `json:"type"`
	Children   []*SnapshotNode `json:"children,omitempty"`
	Characters string          `json:"characters,omitempty"`
	Runs       []RawRun        `json:"runs,omitempty"`
	Base       *RawRun         `json:"base,omitempty"`
	Image      []byte          `json:"image,omitempty"`
}

// MemStore implements Store over a Snapshot.
type MemStore struct {
	log      *zap.Logger
	snap     *Snapshot
	nodes    map[NodeID]*SnapshotNode
	parents  map[NodeID]NodeID
	fonts    map[FontName]struct{}
	cloneSeq int
}

// New builds a MemStore from an already decoded snapshot.
func New(snap *Snapshot, log *zap.Logger) (*MemStore, error) {
	if log == nil {
		log = zap.NewNop()
	}
	m := &MemStore{
		log:     log.Named("memstore"),
		snap:    snap,
		nodes:   make(map[NodeID]*SnapshotNode),
		parents: make(map[NodeID]NodeID),
		fonts:   make(map[FontName]struct{}),
	}
	for _, f := range snap.Fonts {
		m.fonts[f] = struct{}{}
	}
	for _, n := range snap.Nodes {
		if err := m.register(n, ""); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Load reads a snapshot file and builds a store from it.
func Load(path string, log *zap.Logger) (*MemStore, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read document snapshot: %w", err)
	}
	snap := &Snapshot{}
	if err := json.Unmarshal(data, snap); err != nil {
		return nil, fmt.Errorf("unable to decode document snapshot '%s': %w", path, err)
	}
	return New(snap, log)
}

// Save writes the (possibly mutated) snapshot back to disk.
func (m *MemStore) Save(path string) error {
	data, err := json.MarshalIndent(m.snap, "", "  ")
	if err != nil {
		return fmt.Errorf("unable to encode document snapshot: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("unable to write document snapshot: %w", err)
	}
	return nil
}

// FileKey returns the document identifier from the snapshot header.
func (m *MemStore) FileKey() string { return m.snap.FileKey }

// FileName returns the document display name.
func (m *MemStore) FileName() string { return m.snap.FileName }

// PageName returns the page the snapshot was taken from.
func (m *MemStore) PageName() string { return m.snap.PageName }

func (m *MemStore) register(n *SnapshotNode, parent NodeID) error {
	if _, dup := m.nodes[n.ID]; dup {
		return fmt.Errorf("duplicate node id %q in snapshot", n.ID)
	}
	m.nodes[n.ID] = n
	if parent != "" {
		m.parents[n.ID] = parent
	}
	for _, c := range n.Children {
		if err := m.register(c, n.ID); err != nil {
			return err
		}
	}
	return nil
}

func (m *MemStore) Selection() []NodeID {
	return append([]NodeID(nil), m.snap.Selection...)
}

func (m *MemStore) Children(id NodeID) []NodeID {
	n, ok := m.nodes[id]
	if !ok {
		return nil
	}
	out := make([]NodeID, 0, len(n.Children))
	for _, c := range n.Children {
		out = append(out, c.ID)
	}
	return out
}

func (m *MemStore) Name(id NodeID) string {
	if n, ok := m.nodes[id]; ok {
		return n.Name
	}
	return ""
}

func (m *MemStore) SetName(id NodeID, name string) error {
	n, ok := m.nodes[id]
	if !ok {
		return fmt.Errorf("unknown node %q", id)
	}
	n.Name = name
	return nil
}

func (m *MemStore) IsFrame(id NodeID) bool {
	n, ok := m.nodes[id]
	return ok && n.Type == NodeTypeFrame
}

func (m *MemStore) IsTextUnit(id NodeID) bool {
	n, ok := m.nodes[id]
	return ok && n.Type == NodeTypeText
}

func (m *MemStore) Text(id NodeID) string {
	if n, ok := m.nodes[id]; ok {
		return n.Characters
	}
	return ""
}

func (m *MemStore) StyleRuns(id NodeID) ([]RawRun, error) {
	n, ok := m.nodes[id]
	if !ok {
		return nil, fmt.Errorf("unknown node %q", id)
	}
	if n.Type != NodeTypeText {
		return nil, fmt.Errorf("node %q is not a text node", id)
	}
	return append([]RawRun(nil), n.Runs...), nil
}

func (m *MemStore) BaseRun(id NodeID) RawRun {
	n, ok := m.nodes[id]
	if !ok || n.Base == nil {
		return RawRun{Font: FontName{Family: "Inter", Style: "Regular"}, Size: style.DefaultFontSize}
	}
	return *n.Base
}

func (m *MemStore) ReplaceText(id NodeID, text string) error {
	n, ok := m.nodes[id]
	if !ok {
		return fmt.Errorf("unknown node %q", id)
	}
	if n.Type != NodeTypeText {
		return fmt.Errorf("node %q is not a text node", id)
	}

	// Replacement keeps a single run over the new content, styled like the
	// first prior run (or the node default). Range styling is re-applied by
	// the caller against the new offsets.
	base := m.BaseRun(id)
	if len(n.Runs) > 0 {
		base = n.Runs[0]
	}
	n.Characters = text
	base.Start, base.End = 0, len([]rune(text))
	n.Runs = []RawRun{base}
	return nil
}

func (m *MemStore) SetRangeStyle(id NodeID, start, end int, prop RangeProperty, value any) error {
	n, ok := m.nodes[id]
	if !ok {
		return fmt.Errorf("unknown node %q", id)
	}
	if n.Type != NodeTypeText {
		return fmt.Errorf("node %q is not a text node", id)
	}

	length := len([]rune(n.Characters))
	if start < 0 {
		start = 0
	}
	if end > length {
		end = length
	}
	if start >= end {
		return fmt.Errorf("empty range [%d,%d) on node %q", start, end, id)
	}

	if len(n.Runs) == 0 {
		base := m.BaseRun(id)
		base.Start, base.End = 0, length
		n.Runs = []RawRun{base}
	}
	n.Runs = splitRuns(n.Runs, start)
	n.Runs = splitRuns(n.Runs, end)

	for i := range n.Runs {
		r := &n.Runs[i]
		if r.Start < start || r.End > end {
			continue
		}
		if err := setRunProperty(r, prop, value); err != nil {
			return err
		}
	}
	n.Runs = mergeRuns(n.Runs)
	return nil
}

// splitRuns ensures a run boundary exists at the given offset.
func splitRuns(runs []RawRun, at int) []RawRun {
	for i, r := range runs {
		if r.Start < at && at < r.End {
			left, right := r, r
			left.End = at
			right.Start = at
			out := make([]RawRun, 0, len(runs)+1)
			out = append(out, runs[:i]...)
			out = append(out, left, right)
			out = append(out, runs[i+1:]...)
			return out
		}
	}
	return runs
}

// mergeRuns joins adjacent runs with identical styling so extracted runs
// stay maximal.
func mergeRuns(runs []RawRun) []RawRun {
	if len(runs) < 2 {
		return runs
	}
	out := runs[:1]
	for _, r := range runs[1:] {
		last := &out[len(out)-1]
		if last.End == r.Start && sameRunStyle(*last, r) {
			last.End = r.End
			continue
		}
		out = append(out, r)
	}
	return out
}

func sameRunStyle(a, b RawRun) bool {
	if a.Font != b.Font || a.Size != b.Size || a.Decoration != b.Decoration {
		return false
	}
	if !sameScaled(a.LetterSpacing, b.LetterSpacing) || !sameScaled(a.LineHeight, b.LineHeight) {
		return false
	}
	if len(a.Fills) != len(b.Fills) {
		return false
	}
	for i := range a.Fills {
		if !samePaint(a.Fills[i], b.Fills[i]) {
			return false
		}
	}
	return true
}

func sameScaled(a, b *style.Scaled) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func samePaint(a, b Paint) bool {
	if a.Type != b.Type || a.Hidden() != b.Hidden() {
		return false
	}
	av, bv := 1.0, 1.0
	if a.Opacity != nil {
		av = *a.Opacity
	}
	if b.Opacity != nil {
		bv = *b.Opacity
	}
	if av != bv {
		return false
	}
	if a.Color == nil || b.Color == nil {
		return a.Color == b.Color
	}
	return *a.Color == *b.Color
}

func setRunProperty(r *RawRun, prop RangeProperty, value any) error {
	switch prop {
	case PropFont:
		f, ok := value.(FontName)
		if !ok {
			return fmt.Errorf("font property expects FontName, got %T", value)
		}
		r.Font = f
	case PropSize:
		s, ok := value.(float64)
		if !ok {
			return fmt.Errorf("size property expects float64, got %T", value)
		}
		r.Size = s
	case PropFill:
		c, ok := value.(style.Color)
		if !ok {
			return fmt.Errorf("fill property expects style.Color, got %T", value)
		}
		visible := true
		opacity := c.A
		c.A = 1
		r.Fills = []Paint{{Type: "SOLID", Visible: &visible, Opacity: &opacity, Color: &c}}
	case PropDecoration:
		d, ok := value.(string)
		if !ok {
			return fmt.Errorf("decoration property expects string, got %T", value)
		}
		r.Decoration = d
	case PropLetterSpacing:
		v, ok := value.(style.Scaled)
		if !ok {
			return fmt.Errorf("letterSpacing property expects style.Scaled, got %T", value)
		}
		r.LetterSpacing = &v
	case PropLineHeight:
		v, ok := value.(style.Scaled)
		if !ok {
			return fmt.Errorf("lineHeight property expects style.Scaled, got %T", value)
		}
		r.LineHeight = &v
	default:
		return fmt.Errorf("unknown range property %q", prop)
	}
	return nil
}

func (m *MemStore) LoadFont(f FontName) error {
	if _, ok := m.fonts[f]; !ok {
		return fmt.Errorf("font %s %s is not available", f.Family, f.Style)
	}
	return nil
}

func (m *MemStore) CloneSubtree(id NodeID) (NodeID, error) {
	n, ok := m.nodes[id]
	if !ok {
		return "", fmt.Errorf("unknown node %q", id)
	}

	m.cloneSeq++
	seq := m.cloneSeq
	clone := m.deepCopy(n, seq)

	if parent, ok := m.parents[id]; ok {
		p := m.nodes[parent]
		p.Children = append(p.Children, clone)
	} else {
		m.snap.Nodes = append(m.snap.Nodes, clone)
	}
	if err := m.register(clone, m.parents[id]); err != nil {
		return "", err
	}
	m.log.Debug("Cloned subtree", zap.String("source", string(id)), zap.String("clone", string(clone.ID)))
	return clone.ID, nil
}

func (m *MemStore) deepCopy(n *SnapshotNode, seq int) *SnapshotNode {
	out := &SnapshotNode{
		ID:         NodeID(fmt.Sprintf("%s#%d", n.ID, seq)),
		Name:       n.Name,
		Type:       n.Type,
		Characters: n.Characters,
		Runs:       append([]RawRun(nil), n.Runs...),
		Image:      append([]byte(nil), n.Image...),
	}
	if n.Base != nil {
		base := *n.Base
		out.Base = &base
	}
	for _, c := range n.Children {
		out.Children = append(out.Children, m.deepCopy(c, seq))
	}
	return out
}

func (m *MemStore) ExportImage(id NodeID) ([]byte, error) {
	n, ok := m.nodes[id]
	if !ok {
		return nil, fmt.Errorf("unknown node %q", id)
	}
	if len(n.Image) == 0 {
		return nil, fmt.Errorf("node %q has no preview image", id)
	}
	return append([]byte(nil), n.Image...), nil
}
