package imagepdf

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SigmaByteKing/neu-salaysay-tracker/internal/core/domain"
	"github.com/SigmaByteKing/neu-salaysay-tracker/internal/infrastructure/extractor/pdflayout"
)

type recognizerFake struct {
	text     string
	language string
	calls    int
}

func (f *recognizerFake) Recognize(_ context.Context, _ []byte, language string) string {
	f.calls++
	f.language = language
	return f.text
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func grayImage(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: 200, G: 200, B: 200, A: 255})
		}
	}
	return img
}

func TestDecodeFlattensTransparentSixteenBitPNG(t *testing.T) {
	src := image.NewNRGBA64(image.Rect(0, 0, 4, 3))
	src.Set(1, 1, color.NRGBA64{R: 0xffff, A: 0x8000})
	upload := domain.RawUpload{MimeType: domain.MimePNG, Content: encodePNG(t, src)}

	raster, err := New(nil, nil).Decode(context.Background(), upload)
	require.NoError(t, err)
	assert.Equal(t, 4, raster.Width)
	assert.Equal(t, 3, raster.Height)

	decoded, err := png.Decode(bytes.NewReader(raster.PNG))
	require.NoError(t, err)
	_, _, _, a := decoded.At(0, 0).RGBA()
	assert.Equal(t, uint32(0xffff), a, "flattened image must be opaque")
	r, g, b, _ := decoded.At(0, 0).RGBA()
	assert.Equal(t, []uint32{0xffff, 0xffff, 0xffff}, []uint32{r, g, b}, "transparent pixels become white")
}

func TestDecodeJPEG(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, grayImage(30, 20), nil))

	raster, err := New(nil, nil).Decode(context.Background(), domain.RawUpload{MimeType: domain.MimeJPEG, Content: buf.Bytes()})
	require.NoError(t, err)
	assert.Equal(t, 30, raster.Width)
	assert.Equal(t, 20, raster.Height)
}

func TestDecodeFailureIsConversionError(t *testing.T) {
	n := New(nil, nil)
	for name, upload := range map[string]domain.RawUpload{
		"garbage png": {MimeType: domain.MimePNG, Content: []byte("not an image")},
		"pdf":         {MimeType: domain.MimePDF, Content: []byte("%PDF-1.4")},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := n.Decode(context.Background(), upload)
			require.Error(t, err)
			assert.True(t, domain.IsKind(err, domain.ErrConversion), "got %v", err)
		})
	}
}

func TestRenderRoundTripKeepsOCRWords(t *testing.T) {
	ocrText := "Dear Sir,\nI was absent because I was sick. I humbly ask for your understanding regarding my absence last Monday during the laboratory session.\nSincerely,\nJuan Dela Cruz"
	recognizer := &recognizerFake{text: ocrText}
	n := New(recognizer, nil)

	raster, err := n.Decode(context.Background(), domain.RawUpload{MimeType: domain.MimePNG, Content: encodePNG(t, grayImage(200, 100))})
	require.NoError(t, err)
	document, err := n.Render(context.Background(), raster)
	require.NoError(t, err)
	assert.Equal(t, 1, recognizer.calls)
	assert.Equal(t, "eng", recognizer.language)

	extracted, err := pdflayout.New(nil).Extract(context.Background(), document)
	require.NoError(t, err)
	assert.Equal(t, 1, extracted.Pages)

	got := strings.ToLower(extracted.Text)
	for _, word := range strings.Fields(strings.ToLower(ocrText)) {
		assert.Contains(t, got, word)
	}
}

func TestRenderWithoutOCRTextIsVisualOnly(t *testing.T) {
	n := New(&recognizerFake{}, nil)
	raster, err := n.Decode(context.Background(), domain.RawUpload{MimeType: domain.MimePNG, Content: encodePNG(t, grayImage(50, 50))})
	require.NoError(t, err)

	document, err := n.Render(context.Background(), raster)
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(document, []byte("%PDF-")))

	extracted, err := pdflayout.New(nil).Extract(context.Background(), document)
	require.NoError(t, err)
	assert.Equal(t, domain.NoTextSentinel, extracted.Text)
}

func TestRenderNeverPlacesTextBelowImage(t *testing.T) {
	// a banner-shaped image leaves no room for even one line of text
	n := New(&recognizerFake{text: "hidden words"}, nil)
	raster, err := n.Decode(context.Background(), domain.RawUpload{MimeType: domain.MimePNG, Content: encodePNG(t, grayImage(1000, 10))})
	require.NoError(t, err)

	document, err := n.Render(context.Background(), raster)
	require.NoError(t, err)

	extracted, err := pdflayout.New(nil).Extract(context.Background(), document)
	require.NoError(t, err)
	assert.Equal(t, domain.NoTextSentinel, extracted.Text)
}

func TestFitImageCentersWithinMargins(t *testing.T) {
	const pageW, pageH = 595.28, 841.89

	tall := fitImage(pageW, pageH, 100, 1000)
	assert.InDelta(t, pageH-2*pageMargin, tall.h, 0.001)
	assert.InDelta(t, pageW/2, tall.x+tall.w/2, 0.001)
	assert.InDelta(t, pageMargin, tall.y, 0.001)

	wide := fitImage(pageW, pageH, 1000, 100)
	assert.InDelta(t, pageW-2*pageMargin, wide.w, 0.001)
	assert.InDelta(t, pageH/2, wide.y+wide.h/2, 0.001)
	assert.InDelta(t, wide.w/10, wide.h, 0.001)
}

func TestWrapText(t *testing.T) {
	assert.Equal(t, []string{"alpha beta", "gamma"}, wrapText("alpha beta gamma", 10))
	assert.Equal(t, []string{"abcde", "fghij", "kl"}, wrapText("abcdefghijkl", 5))
	assert.Equal(t, []string{"one", "two"}, wrapText("one\n\n  \ntwo", 20))
	assert.Empty(t, wrapText("   ", 20))
}

func TestRenderRejectsMissingImage(t *testing.T) {
	_, err := New(nil, nil).Render(context.Background(), nil)
	assert.True(t, domain.IsKind(err, domain.ErrConversion))
}
