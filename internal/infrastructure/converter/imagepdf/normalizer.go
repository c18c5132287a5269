package imagepdf

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"image/jpeg"
	"image/png"
	"log/slog"
	"strings"
	"time"

	"codeberg.org/go-pdf/fpdf"

	"github.com/SigmaByteKing/neu-salaysay-tracker/internal/core/domain"
	"github.com/SigmaByteKing/neu-salaysay-tracker/internal/core/ports"
)

const (
	pageMargin        = 36.0
	ocrFontSize       = 10.0
	avgCharWidthRatio = 0.5
	lineHeightRatio   = 1.2
	ocrLanguage       = "eng"
	scanImageName     = "scan"
)

// Normalizer turns a JPEG or PNG upload into a one-page A4 PDF with an invisible OCR text layer.
type Normalizer struct {
	recognizer ports.Recognizer
	logger     *slog.Logger
	now        func() time.Time
}

func New(recognizer ports.Recognizer, logger *slog.Logger) *Normalizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Normalizer{
		recognizer: recognizer,
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Decode reads the image and re-encodes it as an opaque 8-bit PNG.
func (n *Normalizer) Decode(_ context.Context, upload domain.RawUpload) (*domain.RasterImage, error) {
	var (
		img image.Image
		err error
	)
	switch upload.MimeType {
	case domain.MimeJPEG:
		img, err = jpeg.Decode(bytes.NewReader(upload.Content))
	case domain.MimePNG:
		img, err = png.Decode(bytes.NewReader(upload.Content))
	default:
		err = fmt.Errorf("unsupported image type %q", upload.MimeType)
	}
	if err != nil {
		return nil, domain.WrapError(domain.ErrConversion, "decode image", err)
	}

	bounds := img.Bounds()
	if bounds.Dx() == 0 || bounds.Dy() == 0 {
		return nil, domain.WrapError(domain.ErrConversion, "decode image", errors.New("image has no pixels"))
	}

	// flatten transparency onto white; the PDF writer cannot embed alpha or 16-bit PNGs
	flat := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(flat, flat.Bounds(), image.White, image.Point{}, draw.Src)
	draw.Draw(flat, flat.Bounds(), img, bounds.Min, draw.Over)

	var buf bytes.Buffer
	if err := png.Encode(&buf, flat); err != nil {
		return nil, domain.WrapError(domain.ErrConversion, "encode image", err)
	}
	return &domain.RasterImage{PNG: buf.Bytes(), Width: bounds.Dx(), Height: bounds.Dy()}, nil
}

// placement is the image box on the page, in points from the top-left corner.
type placement struct {
	x, y, w, h float64
}

// fitImage scales an image of w x h pixels into the page minus margins, preserving aspect ratio, and centers it.
func fitImage(pageW, pageH float64, w, h int) placement {
	availW := pageW - 2*pageMargin
	availH := pageH - 2*pageMargin
	scale := min(availW/float64(w), availH/float64(h))
	drawW := float64(w) * scale
	drawH := float64(h) * scale
	return placement{
		x: (pageW - drawW) / 2,
		y: (pageH - drawH) / 2,
		w: drawW,
		h: drawH,
	}
}

// Render runs OCR and draws the page. An empty OCR result still yields a visual-only PDF.
func (n *Normalizer) Render(ctx context.Context, img *domain.RasterImage) ([]byte, error) {
	if img == nil || len(img.PNG) == 0 || img.Width <= 0 || img.Height <= 0 {
		return nil, domain.WrapError(domain.ErrConversion, "render pdf", errors.New("no decoded image"))
	}

	var text string
	if n.recognizer != nil {
		text = n.recognizer.Recognize(ctx, img.PNG, ocrLanguage)
	}
	if strings.TrimSpace(text) == "" {
		n.logger.Info("ocr_empty_visual_only_pdf", "width", img.Width, "height", img.Height)
	}

	doc := fpdf.New("P", "pt", "A4", "")
	now := n.now()
	doc.SetCreationDate(now)
	doc.SetModificationDate(now)
	doc.SetCatalogSort(true)
	doc.SetMargins(0, 0, 0)
	doc.SetAutoPageBreak(false, 0)
	doc.AddPage()

	pageW, pageH := doc.GetPageSize()
	box := fitImage(pageW, pageH, img.Width, img.Height)

	// text first so the image is painted over it
	if lines := wrapText(text, maxLineChars(box.w)); len(lines) > 0 {
		translate := doc.UnicodeTranslatorFromDescriptor("")
		doc.SetFont("Helvetica", "", ocrFontSize)
		doc.SetAlpha(0, "Normal")
		lineHeight := ocrFontSize * lineHeightRatio
		for i, line := range lines {
			baseline := box.y + ocrFontSize + float64(i)*lineHeight
			if baseline > box.y+box.h {
				break
			}
			doc.Text(box.x, baseline, translate(line))
		}
		doc.SetAlpha(1, "Normal")
	}

	opts := fpdf.ImageOptions{ImageType: "PNG"}
	doc.RegisterImageOptionsReader(scanImageName, opts, bytes.NewReader(img.PNG))
	doc.ImageOptions(scanImageName, box.x, box.y, box.w, box.h, false, opts, 0, "")

	if err := doc.Error(); err != nil {
		return nil, domain.WrapError(domain.ErrConversion, "render pdf", err)
	}
	var out bytes.Buffer
	if err := doc.Output(&out); err != nil {
		return nil, domain.WrapError(domain.ErrConversion, "write pdf", err)
	}
	return out.Bytes(), nil
}

func maxLineChars(width float64) int {
	return max(1, int(width/(ocrFontSize*avgCharWidthRatio)))
}

// wrapText breaks each OCR line into lines of at most limit characters. Words longer than limit are split.
func wrapText(text string, limit int) []string {
	var lines []string
	for _, raw := range strings.Split(text, "\n") {
		words := strings.Fields(raw)
		if len(words) == 0 {
			continue
		}
		var current []rune
		for _, word := range words {
			w := []rune(word)
			for len(w) > limit {
				if len(current) > 0 {
					lines = append(lines, string(current))
					current = nil
				}
				lines = append(lines, string(w[:limit]))
				w = w[limit:]
			}
			if len(w) == 0 {
				continue
			}
			switch {
			case len(current) == 0:
				current = append(current, w...)
			case len(current)+1+len(w) <= limit:
				current = append(append(current, ' '), w...)
			default:
				lines = append(lines, string(current))
				current = append([]rune(nil), w...)
			}
		}
		if len(current) > 0 {
			lines = append(lines, string(current))
		}
	}
	return lines
}
