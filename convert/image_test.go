package convert_test

import (
	"bytes"
	"image"
	"image/color"
	"strings"
	"testing"

	"github.com/disintegration/imaging"
	"go.uber.org/zap"

	"adt/convert"
)

func TestPreparePreviewDownscales(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2000, 1000))
	for x := 0; x < 2000; x += 10 {
		for y := 0; y < 1000; y++ {
			img.Set(x, y, color.RGBA{R: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		t.Fatal(err)
	}

	uri, err := convert.PreparePreview(buf.Bytes(), 512, 80, zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(uri, "data:image/jpeg;base64,") {
		t.Errorf("unexpected data URI prefix: %.40s", uri)
	}
	// downscaled preview must be much smaller than a 2000px original
	if len(uri) > 300<<10 {
		t.Errorf("preview suspiciously large: %d bytes", len(uri))
	}
}

func TestPreparePreviewSVG(t *testing.T) {
	svg := `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 100 50"><rect width="100" height="50" fill="#ff0000"/></svg>`
	uri, err := convert.PreparePreview([]byte(svg), 256, 80, zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(uri, "data:image/jpeg;base64,") {
		t.Errorf("unexpected data URI prefix: %.40s", uri)
	}
}

func TestPreparePreviewRejectsGarbage(t *testing.T) {
	if _, err := convert.PreparePreview(nil, 512, 80, zap.NewNop()); err == nil {
		t.Error("expected error for empty data")
	}
	if _, err := convert.PreparePreview([]byte("not an image"), 512, 80, zap.NewNop()); err == nil {
		t.Error("expected error for undecodable data")
	}
}
