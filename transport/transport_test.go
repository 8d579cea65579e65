package transport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestSplitTexts(t *testing.T) {
	texts := make([]TextUnit, 450)
	for i := range texts {
		texts[i].NodeID = fmt.Sprintf("n%d", i)
	}

	batches := SplitTexts(texts, 200)
	if len(batches) != 3 {
		t.Fatalf("expected 3 batches, got %d", len(batches))
	}
	for i, want := range []int{200, 200, 50} {
		if len(batches[i]) != want {
			t.Errorf("batch %d size = %d, want %d", i, len(batches[i]), want)
		}
	}
	// order preserved across batch boundaries
	if batches[1][0].NodeID != "n200" || batches[2][0].NodeID != "n400" {
		t.Errorf("batch boundaries broken: %q %q", batches[1][0].NodeID, batches[2][0].NodeID)
	}
}

func TestTranslate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/translate" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer sekrit" {
			t.Errorf("missing bearer token, got %q", got)
		}
		var payload ExportPayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatal(err)
		}
		json.NewEncoder(w).Encode(TranslationResult{
			FrameID: payload.Frame.ID, Version: "v1", Lang: payload.Lang, Dir: "ltr",
			Texts: []TranslatedText{{NodeID: "1:2", Markup: "<span>hi</span>"}},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "sekrit", time.Second, zap.NewNop())
	result, err := c.Translate(context.Background(), &ExportPayload{Frame: Frame{ID: "1:1"}, Lang: "de"})
	if err != nil {
		t.Fatal(err)
	}
	if result.FrameID != "1:1" || result.Lang != "de" || len(result.Texts) != 1 {
		t.Errorf("unexpected result %+v", result)
	}
}

func TestTranslateErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload ExportPayload
		_ = json.NewDecoder(r.Body).Decode(&payload)
		switch payload.Lang {
		case "boom":
			http.Error(w, "translation backend down", http.StatusBadGateway)
		case "garbled":
			fmt.Fprint(w, "<html>not json</html>")
		default:
			fmt.Fprint(w, `{"lang":"x"}`) // missing frameId
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", time.Second, zap.NewNop())

	_, err := c.Translate(context.Background(), &ExportPayload{Lang: "boom"})
	var te *TransportError
	if !errors.As(err, &te) || te.Status != http.StatusBadGateway {
		t.Errorf("expected TransportError with 502, got %v", err)
	}

	var me *MalformedResponseError
	if _, err = c.Translate(context.Background(), &ExportPayload{Lang: "garbled"}); !errors.As(err, &me) {
		t.Errorf("expected MalformedResponseError for non-JSON body, got %v", err)
	}
	if _, err = c.Translate(context.Background(), &ExportPayload{Lang: "incomplete"}); !errors.As(err, &me) {
		t.Errorf("expected MalformedResponseError for missing fields, got %v", err)
	}
}

func TestTranslateChunked(t *testing.T) {
	var gotChunks []Chunk
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload ExportPayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatal(err)
		}
		if payload.Chunk == nil {
			t.Fatal("expected chunk tag on split payload")
		}
		gotChunks = append(gotChunks, *payload.Chunk)

		// echo one translated text per received unit
		out := TranslationResult{FrameID: "1:1", Version: fmt.Sprint(payload.Chunk.Index), Lang: payload.Lang, Dir: "ltr"}
		for _, u := range payload.Texts {
			out.Texts = append(out.Texts, TranslatedText{NodeID: u.NodeID, Markup: u.Markup})
		}
		json.NewEncoder(w).Encode(out)
	}))
	defer srv.Close()

	payload := &ExportPayload{Frame: Frame{ID: "1:1"}, Lang: "de"}
	filler := strings.Repeat("x", 64)
	for i := 0; i < 450; i++ {
		payload.Texts = append(payload.Texts, TextUnit{NodeID: fmt.Sprintf("n%d", i), Markup: filler})
	}

	c := NewClient(srv.URL, "", 10*time.Second, zap.NewNop()).WithChunking(200, 1<<10)
	result, err := c.TranslateChunked(context.Background(), payload)
	if err != nil {
		t.Fatal(err)
	}

	wantChunks := []Chunk{{1, 3}, {2, 3}, {3, 3}}
	if len(gotChunks) != len(wantChunks) {
		t.Fatalf("chunks = %+v", gotChunks)
	}
	for i := range wantChunks {
		if gotChunks[i] != wantChunks[i] {
			t.Errorf("chunk %d = %+v, want %+v", i, gotChunks[i], wantChunks[i])
		}
	}

	// responses merged across batches, last batch authoritative for metadata
	if len(result.Texts) != 450 {
		t.Errorf("merged texts = %d, want 450", len(result.Texts))
	}
	if result.Version != "3" {
		t.Errorf("version = %q, want last batch's", result.Version)
	}
	if result.Texts[0].NodeID != "n0" || result.Texts[449].NodeID != "n449" {
		t.Error("merge lost ordering")
	}
}
