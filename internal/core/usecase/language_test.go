package usecase

import (
	"testing"

	"github.com/SigmaByteKing/neu-salaysay-tracker/internal/core/domain"
)

func TestLanguageDetectorThreshold(t *testing.T) {
	detector := NewLanguageDetector()

	cases := []struct {
		name string
		text string
		want domain.Language
	}{
		{name: "no markers", text: "Dear Sir, I was absent yesterday.", want: domain.LanguageEnglish},
		{name: "one marker", text: "Petsa: April 2, 2025\nDear Sir, I was absent.", want: domain.LanguageEnglish},
		{name: "same marker twice counts once", text: "Magandang araw po. Magandang araw ulit.", want: domain.LanguageEnglish},
		{name: "two markers", text: "Kapatid na Bro. Reyes,\nMagandang araw po.", want: domain.LanguageTagalog},
		{name: "case insensitive", text: "PETSA: Abril 2\nPANGALAN: Ana", want: domain.LanguageTagalog},
		{name: "full template", text: tagalogLetter, want: domain.LanguageTagalog},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := detector.Detect(tc.text); got != tc.want {
				t.Fatalf("Detect() = %s, want %s", got, tc.want)
			}
		})
	}
}
