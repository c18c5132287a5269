package pdflayout

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"
	"golang.org/x/text/unicode/norm"

	"github.com/SigmaByteKing/neu-salaysay-tracker/internal/core/domain"
)

const (
	// vertical movement above this many points starts a new line
	lineBreakThreshold = 5.0
	// horizontal gap between runs, as a share of the font size, that reads as a word break
	wordGapRatio = 0.25
)

var (
	reSpaceRun    = regexp.MustCompile(`[ \t]{2,}`)
	reTrailingWS  = regexp.MustCompile(`[ \t]+\n`)
	reNewlineRuns = regexp.MustCompile(`\n{3,}`)
)

// Extractor rebuilds reading-order text from the glyph runs of each PDF page.
type Extractor struct {
	logger *slog.Logger
}

func New(logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{logger: logger}
}

// Extract returns the text layer of data with pages separated by a blank line.
// A PDF without any text yields domain.NoTextSentinel.
func (e *Extractor) Extract(ctx context.Context, data []byte) (result domain.ExtractedText, err error) {
	defer func() {
		// the parser panics on some malformed object streams
		if r := recover(); r != nil {
			result = domain.ExtractedText{}
			err = domain.WrapError(domain.ErrExtraction, "extract pdf text", fmt.Errorf("parser panic: %v", r))
		}
	}()

	if len(data) == 0 {
		return domain.ExtractedText{}, domain.WrapError(domain.ErrExtraction, "extract pdf text", errors.New("empty document"))
	}
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return domain.ExtractedText{}, domain.WrapError(domain.ErrExtraction, "open pdf", err)
	}

	numPages := reader.NumPage()
	pages := make([]string, 0, numPages)
	for i := 1; i <= numPages; i++ {
		if err := ctx.Err(); err != nil {
			return domain.ExtractedText{}, err
		}
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		if text := layoutPage(page.Content().Text); strings.TrimSpace(text) != "" {
			pages = append(pages, text)
		}
	}

	text := normalizeText(strings.Join(pages, "\n\n"))
	if text == "" {
		e.logger.Info("pdf_without_text_layer", "pages", numPages)
		text = domain.NoTextSentinel
	}
	return domain.ExtractedText{Text: text, Pages: numPages}, nil
}

// layoutPage joins glyph runs in content-stream order.
func layoutPage(items []pdf.Text) string {
	var b strings.Builder
	var prev *pdf.Text
	for i := range items {
		item := &items[i]
		if item.S == "" {
			continue
		}
		if prev != nil {
			dy := math.Abs(item.Y - prev.Y)
			switch {
			case dy > lineBreakThreshold:
				b.WriteByte('\n')
			case dy > 0:
				b.WriteByte(' ')
			case prev.W > 0 && item.X-(prev.X+prev.W) > item.FontSize*wordGapRatio:
				b.WriteByte(' ')
			}
		}
		b.WriteString(item.S)
		prev = item
	}
	return b.String()
}

func normalizeText(s string) string {
	s = norm.NFC.String(s)
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = reSpaceRun.ReplaceAllString(s, " ")
	s = reTrailingWS.ReplaceAllString(s, "\n")
	s = reNewlineRuns.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}
