package convert

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"math"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/h2non/filetype"
	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
	"go.uber.org/zap"
	"golang.org/x/image/draw"
)

// maxRasterDim caps SVG rasterization output so a hostile viewBox cannot
// allocate an unbounded RGBA buffer.
const maxRasterDim = 4096

// PreparePreview turns exported frame bytes into a bounded JPEG data URI
// for the translate payload. SVG assets are rasterized first, raster
// images wider than maxWidth are downscaled. Any failure degrades to "no
// preview" at the caller.
func PreparePreview(data []byte, maxWidth, quality int, log *zap.Logger) (string, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if len(data) == 0 {
		return "", fmt.Errorf("empty preview data")
	}
	if maxWidth <= 0 {
		maxWidth = 1024
	}
	if quality <= 0 || quality > 100 {
		quality = 80
	}

	var (
		img image.Image
		err error
	)
	if isSVG(data) {
		img, err = rasterizeSVG(data, maxWidth)
	} else {
		img, err = imaging.Decode(bytes.NewReader(data))
	}
	if err != nil {
		return "", fmt.Errorf("unable to decode preview image: %w", err)
	}

	if img.Bounds().Dx() > maxWidth {
		img = imaging.Resize(img, maxWidth, 0, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
		return "", fmt.Errorf("unable to encode preview: %w", err)
	}

	mime := "image/jpeg"
	if kind, err := filetype.Match(buf.Bytes()); err == nil && kind.MIME.Value != "" {
		mime = kind.MIME.Value
	}
	log.Debug("Prepared frame preview", zap.Int("bytes", buf.Len()),
		zap.Int("width", img.Bounds().Dx()), zap.String("mime", mime))
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

func isSVG(data []byte) bool {
	head := strings.TrimSpace(string(data[:min(len(data), 512)]))
	return strings.HasPrefix(head, "<svg") || (strings.HasPrefix(head, "<?xml") && strings.Contains(head, "<svg"))
}

func rasterizeSVG(data []byte, targetW int) (image.Image, error) {
	icon, err := oksvg.ReadIconStream(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	intrW := int(math.Ceil(icon.ViewBox.W))
	intrH := int(math.Ceil(icon.ViewBox.H))
	if intrW <= 0 || intrH <= 0 {
		intrW, intrH = 1024, 1024
	}

	w := intrW
	if targetW > 0 && targetW < w {
		w = targetW
	}
	h := int(math.Round(float64(w) * float64(intrH) / float64(intrW)))
	if w > maxRasterDim || h > maxRasterDim {
		s := math.Min(float64(maxRasterDim)/float64(w), float64(maxRasterDim)/float64(h))
		w = int(math.Round(float64(w) * s))
		h = int(math.Round(float64(h) * s))
	}
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}

	icon.SetTarget(0, 0, float64(w), float64(h))

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), &image.Uniform{C: color.RGBA{255, 255, 255, 255}}, image.Point{}, draw.Src)

	scanner := rasterx.NewScannerGV(w, h, dst, dst.Bounds())
	icon.Draw(rasterx.NewDasher(w, h, scanner), 1.0)
	return dst, nil
}
