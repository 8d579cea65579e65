package xliff

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func testFiles() []File {
	return []File{
		{
			Original:   "1:1",
			SourceLang: "en",
			TargetLang: "de",
			Units: []Unit{
				{ID: "1:3", Source: "Goodbye", Target: "Auf Wiedersehen", Note: "body"},
			},
		},
		{
			Original:   "1:1",
			SourceLang: "en",
			TargetLang: "fr",
			Units: []Unit{
				{ID: "1:3", Source: "Goodbye", Target: "Au revoir"},
			},
		},
	}
}

func TestBuild(t *testing.T) {
	doc := Build(testFiles())

	root := doc.SelectElement("xliff")
	if root == nil {
		t.Fatal("missing xliff root")
	}
	if got := root.SelectAttrValue("version", ""); got != "1.2" {
		t.Errorf("unexpected version %q", got)
	}

	files := root.SelectElements("file")
	if len(files) != 2 {
		t.Fatalf("expected 2 file elements, got %d", len(files))
	}
	if got := files[1].SelectAttrValue("target-language", ""); got != "fr" {
		t.Errorf("unexpected target language %q", got)
	}

	tu := files[0].SelectElement("body").SelectElement("trans-unit")
	if tu == nil {
		t.Fatal("missing trans-unit")
	}
	if got := tu.SelectAttrValue("id", ""); got != "1:3" {
		t.Errorf("unexpected unit id %q", got)
	}
	if got := tu.SelectElement("source").Text(); got != "Goodbye" {
		t.Errorf("unexpected source %q", got)
	}
	tgt := tu.SelectElement("target")
	if got := tgt.Text(); got != "Auf Wiedersehen" {
		t.Errorf("unexpected target %q", got)
	}
	if got := tgt.SelectAttrValue("state", ""); got != "translated" {
		t.Errorf("unexpected target state %q", got)
	}
	if note := tu.SelectElement("note"); note == nil || note.Text() != "body" {
		t.Errorf("expected note to survive: %v", note)
	}
	// second unit carries no note
	if note := files[1].SelectElement("body").SelectElement("trans-unit").SelectElement("note"); note != nil {
		t.Errorf("unexpected note element: %v", note)
	}
}

func TestSaveAndFilename(t *testing.T) {
	dir := t.TempDir()

	path := Filename(dir, "Hero Banner / Summer Sale!", []string{"de"})
	if filepath.Base(path) != "hero-banner-summer-sale-de.xlf" {
		t.Errorf("unexpected filename %q", filepath.Base(path))
	}

	multi := Filename(dir, "Hero", []string{"de", "fr"})
	if filepath.Base(multi) != "hero.xlf" {
		t.Errorf("expected no language suffix for multiple targets, got %q", filepath.Base(multi))
	}

	if got := filepath.Base(Filename(dir, "!!!", nil)); got != "translations.xlf" {
		t.Errorf("expected fallback name, got %q", got)
	}

	if err := Save(path, testFiles()); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("unable to read written file: %v", err)
	}
	content := string(data)
	for _, want := range []string{`<?xml`, `urn:oasis:names:tc:xliff:document:1.2`, `Auf Wiedersehen`} {
		if !strings.Contains(content, want) {
			t.Errorf("written file missing %q", want)
		}
	}
}
