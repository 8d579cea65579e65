// Package transport implements the JSON-over-HTTP client for the
// translation service and the payload chunking required for oversized
// exports.
package transport

import "time"

// Meta identifies the source document of an export.
type Meta struct {
	FileKey    string    `json:"fileKey"`
	FileName   string    `json:"fileName"`
	PageName   string    `json:"pageName"`
	ExportedAt time.Time `json:"exportedAt"`
}

// Frame describes the exported frame; Image is an optional data URI with
// the rendered preview.
type Frame struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Image string `json:"image,omitempty"`
}

// TextUnit is one translatable text node.
type TextUnit struct {
	NodeID     string `json:"nodeId"`
	Name       string `json:"name"`
	Characters string `json:"characters"`
	Markup     string `json:"markup"`
}

// Chunk tags one batch of a split export; Index is 1-based.
type Chunk struct {
	Index int `json:"index"`
	Total int `json:"total"`
}

// ExportPayload is the translate request body. Created per export action,
// transient.
type ExportPayload struct {
	Meta  Meta       `json:"meta"`
	Frame Frame      `json:"frame"`
	Texts []TextUnit `json:"texts"`
	Chunk *Chunk     `json:"chunk,omitempty"`
	Lang  string     `json:"lang"`
}

// TranslatedText is one translated node in a service response. Texts
// flagged IsNew require human review before being treated as final.
type TranslatedText struct {
	NodeID     string `json:"nodeId"`
	Characters string `json:"characters,omitempty"`
	Markup     string `json:"markup"`
	IsNew      bool   `json:"isNew,omitempty"`
}

// TranslationResult is the translate response for one language.
type TranslationResult struct {
	FrameID string           `json:"frameId"`
	Version string           `json:"version"`
	Lang    string           `json:"lang"`
	Dir     string           `json:"dir"`
	Texts   []TranslatedText `json:"texts"`
}

// UploadText pairs a source text with its reviewed translation.
type UploadText struct {
	NodeID               string `json:"nodeId"`
	Characters           string `json:"characters"`
	CharactersTranslated string `json:"characters_translated"`
}

// UploadRequest is the upload endpoint body.
type UploadRequest struct {
	Frame struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"frame"`
	Body struct {
		Texts []UploadText `json:"texts"`
		Lang  string       `json:"lang"`
	} `json:"body"`
}
