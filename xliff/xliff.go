// Package xliff serializes uploaded translations as XLIFF 1.2 so they
// can be fed into downstream translation memory tooling.
package xliff

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/beevik/etree"
	"github.com/gosimple/slug"
)

const xliffNS = "urn:oasis:names:tc:xliff:document:1.2"

// Unit is one translated text node.
type Unit struct {
	ID     string
	Source string
	Target string
	Note   string
}

// File is one language's worth of translations for a frame.
type File struct {
	Original   string // frame identifier the units came from
	SourceLang string
	TargetLang string
	Units      []Unit
}

// Build creates an XLIFF 1.2 document with one file element per language.
func Build(files []File) *etree.Document {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	root := doc.CreateElement("xliff")
	root.CreateAttr("version", "1.2")
	root.CreateAttr("xmlns", xliffNS)

	for _, f := range files {
		fe := root.CreateElement("file")
		fe.CreateAttr("original", f.Original)
		fe.CreateAttr("source-language", f.SourceLang)
		fe.CreateAttr("target-language", f.TargetLang)
		fe.CreateAttr("datatype", "plaintext")

		body := fe.CreateElement("body")
		for _, u := range f.Units {
			tu := body.CreateElement("trans-unit")
			tu.CreateAttr("id", u.ID)

			src := tu.CreateElement("source")
			src.SetText(u.Source)

			tgt := tu.CreateElement("target")
			tgt.CreateAttr("state", "translated")
			tgt.SetText(u.Target)

			if u.Note != "" {
				note := tu.CreateElement("note")
				note.SetText(u.Note)
			}
		}
	}

	doc.Indent(2)
	return doc
}

// Save writes the document for the given files to path, creating parent
// directories as needed.
func Save(path string, files []File) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("unable to create output directory: %w", err)
	}
	doc := Build(files)
	if err := doc.WriteToFile(path); err != nil {
		return fmt.Errorf("unable to write XLIFF file: %w", err)
	}
	return nil
}

// Filename derives a stable file name from the frame name and the set of
// target languages.
func Filename(dir, frameName string, langs []string) string {
	name := slug.Make(frameName)
	if name == "" {
		name = "translations"
	}
	if len(langs) == 1 {
		name += "-" + strings.ToLower(langs[0])
	}
	return filepath.Join(dir, name+".xlf")
}
