package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/SigmaByteKing/neu-salaysay-tracker/internal/core/domain"
	"github.com/SigmaByteKing/neu-salaysay-tracker/internal/core/ports"
)

// DocumentAnalyzer runs the analyzing stage: language, fields, translation and classification.
type DocumentAnalyzer struct {
	detector   *LanguageDetector
	fields     *FieldExtractor
	translator ports.Translator
	classifier *ViolationClassifier
	logger     *slog.Logger
}

func NewDocumentAnalyzer(translator ports.Translator, logger *slog.Logger) *DocumentAnalyzer {
	if logger == nil {
		logger = slog.Default()
	}
	return &DocumentAnalyzer{
		detector:   NewLanguageDetector(),
		fields:     NewFieldExtractor(),
		translator: translator,
		classifier: NewViolationClassifier(),
		logger:     logger,
	}
}

// Analyze builds a complete DocumentInfo from extracted text. Missing date and excuse get their defaults.
func (a *DocumentAnalyzer) Analyze(ctx context.Context, text string, now time.Time) domain.DocumentInfo {
	lang := a.detector.Detect(text)
	fields := a.fields.Extract(text, lang)

	if lang == domain.LanguageTagalog && fields.NatureOfExcuse != "" && a.translator != nil {
		translated := a.translator.Translate(ctx, fields.NatureOfExcuse)
		if translated == fields.NatureOfExcuse {
			a.logger.Debug("excuse_left_untranslated", "length", len(translated))
		}
		fields.NatureOfExcuse = translated
	}

	violation := a.classifier.Classify(fields.NatureOfExcuse, text)

	if fields.SubmissionDate.IsZero() {
		fields.SubmissionDate = domain.DateOnly(now)
	}
	if fields.NatureOfExcuse == "" {
		fields.NatureOfExcuse = domain.DefaultNatureOfExcuse
	}

	return domain.DocumentInfo{
		ExtractedText:  text,
		Language:       lang,
		DocumentFields: fields,
		ViolationType:  violation,
	}
}
