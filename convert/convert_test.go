package convert_test

import (
	"strings"
	"testing"

	"go.uber.org/zap"

	"adt/convert"
	"adt/document"
	"adt/markup"
	"adt/style"
)

func newStore(t *testing.T, fonts []document.FontName) *document.MemStore {
	t.Helper()
	base := document.RawRun{Font: document.FontName{Family: "Inter", Style: "Regular"}, Size: 16}
	snap := &document.Snapshot{
		FileKey: "k", FileName: "f", PageName: "p",
		Fonts:     fonts,
		Selection: []document.NodeID{"1:1"},
		Nodes: []*document.SnapshotNode{{
			ID: "1:1", Name: "Hero", Type: document.NodeTypeFrame,
			Children: []*document.SnapshotNode{{
				ID: "1:2", Name: "Headline", Type: document.NodeTypeText,
				Characters: "Hello bold world",
				Base:       &base,
				Runs: []document.RawRun{
					{Start: 0, End: 6, Font: document.FontName{Family: "Inter", Style: "Regular"}, Size: 16},
					{Start: 6, End: 10, Font: document.FontName{Family: "Inter", Style: "Semi Bold"}, Size: 16},
					{Start: 10, End: 16, Font: document.FontName{Family: "Inter", Style: "Regular"}, Size: 16},
				},
			}},
		}},
	}
	m, err := document.New(snap, zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func allFonts() []document.FontName {
	return []document.FontName{
		{Family: "Inter", Style: "Regular"},
		{Family: "Inter", Style: "Italic"},
		{Family: "Inter", Style: "Medium"},
		{Family: "Inter", Style: "Semi Bold"},
		{Family: "Inter", Style: "Bold"},
	}
}

func TestResolveFontExact(t *testing.T) {
	s := newStore(t, allFonts())
	f, err := convert.ResolveFont(s, "Inter", style.WeightSemiBold, false, zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	if f.Style != "Semi Bold" {
		t.Errorf("resolved %q, want Semi Bold", f.Style)
	}
}

func TestResolveFontItalicLadder(t *testing.T) {
	// Catalog has no Black Italic and no other italic weights: the ladder
	// must reach plain "Italic" before considering any upright style.
	s := newStore(t, allFonts())
	f, err := convert.ResolveFont(s, "Inter", style.WeightBlack, true, zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	if f.Style != "Italic" {
		t.Errorf("resolved %q, want Italic", f.Style)
	}
}

func TestResolveFontTotalMiss(t *testing.T) {
	s := newStore(t, nil)
	if _, err := convert.ResolveFont(s, "Inter", style.WeightBold, false, zap.NewNop()); err == nil {
		t.Error("expected failure with empty catalog")
	}
}

func TestCollectTextUnitsScenario(t *testing.T) {
	s := newStore(t, allFonts())
	units := convert.CollectTextUnits(s, "1:1", zap.NewNop())
	if len(units) != 1 {
		t.Fatalf("units = %+v", units)
	}
	u := units[0]
	if u.NodeID != "1:2" || u.Characters != "Hello bold world" {
		t.Errorf("unexpected unit %+v", u)
	}
	if n := strings.Count(u.Markup, "<span "); n != 3 {
		t.Errorf("expected 3 style elements, got %d: %q", n, u.Markup)
	}
	for _, want := range []string{"font-weight: 400", "font-weight: 600", ">Hello </span>", ">bold</span>", "> world</span>"} {
		if !strings.Contains(u.Markup, want) {
			t.Errorf("markup missing %q: %q", want, u.Markup)
		}
	}
}

func TestApplySegments(t *testing.T) {
	s := newStore(t, allFonts())
	fill := style.Color{R: 1, G: 0, B: 0, A: 1}
	lh := style.Percent(120)
	segments := []markup.Segment{
		{Text: "Hallo ", Style: style.TextStyle{Family: "Inter", Weight: style.WeightRegular, Size: 16}},
		{Text: "fette", Style: style.TextStyle{Family: "Inter", Weight: style.WeightSemiBold, Size: 16, Fill: &fill, Decoration: style.DecorationUnderline, LineHeight: &lh}},
		{Text: " Welt", Style: style.TextStyle{Family: "Inter", Weight: style.WeightRegular, Size: 16}},
	}

	if err := convert.ApplySegments(s, "1:2", segments, zap.NewNop()); err != nil {
		t.Fatalf("apply failed: %v", err)
	}

	if got := s.Text("1:2"); got != "Hallo fette Welt" {
		t.Errorf("text = %q", got)
	}
	runs, err := s.StyleRuns("1:2")
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 3 {
		t.Fatalf("expected 3 runs, got %+v", runs)
	}
	mid := runs[1]
	if mid.Start != 6 || mid.End != 11 {
		t.Errorf("middle range [%d,%d), want [6,11)", mid.Start, mid.End)
	}
	if mid.Font.Style != "Semi Bold" {
		t.Errorf("middle font %q", mid.Font.Style)
	}
	if mid.Decoration != "UNDERLINE" {
		t.Errorf("middle decoration %q", mid.Decoration)
	}
	if len(mid.Fills) != 1 || mid.Fills[0].Color == nil || mid.Fills[0].Color.R != 1 {
		t.Errorf("middle fill %+v", mid.Fills)
	}
	if mid.LineHeight == nil || *mid.LineHeight != style.Percent(120) {
		t.Errorf("middle line height %+v", mid.LineHeight)
	}
}

func TestApplySegmentsDegradesPerProperty(t *testing.T) {
	// Catalog without any Bold-ish style: font application fails but the
	// size must still be applied for the same segment.
	s := newStore(t, []document.FontName{{Family: "Inter", Style: "Regular"}})
	segments := []markup.Segment{
		{Text: "Hallo Welt", Style: style.TextStyle{Family: "Other", Weight: style.WeightBold, Size: 42}},
	}

	err := convert.ApplySegments(s, "1:2", segments, zap.NewNop())
	if err == nil {
		t.Fatal("expected aggregated error for missing font")
	}

	runs, _ := s.StyleRuns("1:2")
	if len(runs) != 1 {
		t.Fatalf("runs = %+v", runs)
	}
	if runs[0].Size != 42 {
		t.Errorf("size not applied after font failure: %+v", runs[0])
	}
	if runs[0].Font.Family != "Inter" {
		t.Errorf("prior font not kept: %+v", runs[0].Font)
	}
}
