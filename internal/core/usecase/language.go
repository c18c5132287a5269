package usecase

import (
	"strings"

	"github.com/SigmaByteKing/neu-salaysay-tracker/internal/core/domain"
)

// tagalogMarkers are salutation and form-field terms of the Tagalog letter template.
var tagalogMarkers = []string{
	"kapatid na",
	"ang inyong kapatid sa panginoon",
	"petsa:",
	"pangalan:",
	"posisyon:",
	"seksyon:",
	"kurso:",
	"magandang araw",
	"lubos na gumagalang",
	"maraming salamat po",
}

const tagalogMarkerThreshold = 2

type LanguageDetector struct {
	markers   []string
	threshold int
}

func NewLanguageDetector() *LanguageDetector {
	return &LanguageDetector{
		markers:   tagalogMarkers,
		threshold: tagalogMarkerThreshold,
	}
}

// Detect returns Tagalog when at least two distinct markers occur in text.
func (d *LanguageDetector) Detect(text string) domain.Language {
	if d.countMarkers(text) >= d.threshold {
		return domain.LanguageTagalog
	}
	return domain.LanguageEnglish
}

func (d *LanguageDetector) countMarkers(text string) int {
	lower := strings.ToLower(text)
	found := 0
	for _, marker := range d.markers {
		if strings.Contains(lower, marker) {
			found++
		}
	}
	return found
}
