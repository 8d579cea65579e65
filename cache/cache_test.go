package cache

import (
	"fmt"
	"sync"
	"testing"

	"go.uber.org/zap"

	"adt/transport"
)

func TestCacheRoundTrip(t *testing.T) {
	c, err := Open(":memory:", zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	texts := []transport.TextUnit{{NodeID: "1:2", Characters: "Hello", Markup: "<span>Hello</span>"}}
	hash := ContentHash(texts)

	if got := c.Get("1:1", "de", hash); got != nil {
		t.Fatalf("expected miss, got %+v", got)
	}

	want := &transport.TranslationResult{
		FrameID: "1:1", Version: "v1", Lang: "de", Dir: "ltr",
		Texts: []transport.TranslatedText{{NodeID: "1:2", Markup: "<span>Hallo</span>"}},
	}
	c.Put("1:1", "de", hash, want)

	got := c.Get("1:1", "de", hash)
	if got == nil {
		t.Fatal("expected hit")
	}
	if got.Version != "v1" || len(got.Texts) != 1 || got.Texts[0].Markup != "<span>Hallo</span>" {
		t.Errorf("cached result mismatch: %+v", got)
	}

	// different content hash is a different entry
	if got := c.Get("1:1", "de", ContentHash(nil)); got != nil {
		t.Errorf("hash mismatch must miss, got %+v", got)
	}
}

func TestContentHashSensitivity(t *testing.T) {
	a := []transport.TextUnit{{NodeID: "1", Characters: "x", Markup: "m"}}
	b := []transport.TextUnit{{NodeID: "1", Characters: "y", Markup: "m"}}
	if ContentHash(a) == ContentHash(b) {
		t.Error("hash must change with characters")
	}
	if ContentHash(a) != ContentHash([]transport.TextUnit{{NodeID: "1", Characters: "x", Markup: "m"}}) {
		t.Error("hash must be stable for identical content")
	}
}

// Language workers share one cache and hit it from their own goroutines,
// so Get and Put must serialize access to the connection.
func TestConcurrentWorkers(t *testing.T) {
	c, err := Open(":memory:", zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			lang := fmt.Sprintf("l%d", n)
			hash := ContentHash([]transport.TextUnit{{NodeID: "1:2", Characters: lang}})
			for j := 0; j < 50; j++ {
				c.Put("1:1", lang, hash, &transport.TranslationResult{
					FrameID: "1:1", Lang: lang,
					Texts: []transport.TranslatedText{{NodeID: "1:2", Markup: fmt.Sprint(j)}},
				})
				if got := c.Get("1:1", lang, hash); got == nil || got.Lang != lang {
					t.Errorf("worker %d read %+v", n, got)
					return
				}
			}
		}(i)
	}
	wg.Wait()
}

func TestNilCacheIsInert(t *testing.T) {
	var c *Cache
	c.Put("f", "de", "h", &transport.TranslationResult{})
	if got := c.Get("f", "de", "h"); got != nil {
		t.Errorf("nil cache returned %+v", got)
	}
	if err := c.Close(); err != nil {
		t.Errorf("nil cache close: %v", err)
	}
}
