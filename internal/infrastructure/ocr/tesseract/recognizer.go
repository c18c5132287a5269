package tesseract

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"strings"
	"time"
)

var (
	reCRLF       = regexp.MustCompile(`\r\n?`)
	reTabs       = regexp.MustCompile(`\t+`)
	reMultiSpace = regexp.MustCompile(` {2,}`)
	reMultiBlank = regexp.MustCompile(`\n{3,}`)
	reBoxNoise   = regexp.MustCompile(`(?m)^[ \t]*[_\-=|]{3,}[ \t]*$`)
)

type Options struct {
	Binary      string
	TessdataDir string
	Timeout     time.Duration
	TempDir     string
}

// Recognizer runs the tesseract CLI over an image. Failures yield empty text.
type Recognizer struct {
	runner Runner
	opts   Options
	logger *slog.Logger
}

func New(runner Runner, opts Options, logger *slog.Logger) *Recognizer {
	if logger == nil {
		logger = slog.Default()
	}
	if runner == nil {
		runner = ExecRunner{Logger: logger}
	}
	if opts.Binary == "" {
		opts.Binary = "tesseract"
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 60 * time.Second
	}
	return &Recognizer{runner: runner, opts: opts, logger: logger}
}

// Recognize writes image to a temporary file and returns the cleaned tesseract output.
func (r *Recognizer) Recognize(ctx context.Context, image []byte, language string) string {
	if len(image) == 0 {
		return ""
	}
	if language == "" {
		language = "eng"
	}

	path, cleanup, err := r.writeTemp(image)
	if err != nil {
		r.logger.Warn("ocr_failed", "stage", "temp_file", "error", err)
		return ""
	}
	defer cleanup()

	ctx, cancel := context.WithTimeout(ctx, r.opts.Timeout)
	defer cancel()

	// tesseract <file> stdout -l <lang>
	args := []string{path, "stdout", "-l", language}
	if r.opts.TessdataDir != "" {
		args = append(args, "--tessdata-dir", r.opts.TessdataDir)
	}
	out, errb, err := r.runner.Run(ctx, r.opts.Binary, args...)
	if err != nil {
		r.logger.Warn("ocr_failed", "stage", "tesseract", "error", err, "stderr", truncate(string(errb), 512))
		return ""
	}
	return normalizeOCR(string(out))
}

func (r *Recognizer) writeTemp(image []byte) (string, func(), error) {
	f, err := os.CreateTemp(r.opts.TempDir, "salaysay-ocr-*.png")
	if err != nil {
		return "", nil, fmt.Errorf("create temp image: %w", err)
	}
	cleanup := func() { _ = os.Remove(f.Name()) }
	if _, err := f.Write(image); err != nil {
		_ = f.Close()
		cleanup()
		return "", nil, fmt.Errorf("write temp image: %w", err)
	}
	if err := f.Close(); err != nil {
		cleanup()
		return "", nil, fmt.Errorf("close temp image: %w", err)
	}
	return f.Name(), cleanup, nil
}

// normalizeOCR keeps line breaks, drops ruler noise and collapses runs of blanks.
func normalizeOCR(s string) string {
	if s == "" {
		return s
	}
	s = reCRLF.ReplaceAllString(s, "\n")
	s = strings.ReplaceAll(s, "\f", "\n")
	s = reBoxNoise.ReplaceAllString(s, "")
	s = reTabs.ReplaceAllString(s, " ")
	s = reMultiSpace.ReplaceAllString(s, " ")
	lines := strings.Split(s, "\n")
	for i := range lines {
		lines[i] = strings.TrimRight(lines[i], " ")
	}
	s = reMultiBlank.ReplaceAllString(strings.Join(lines, "\n"), "\n\n")
	return strings.TrimSpace(s)
}
