package usecase

import (
	"regexp"
	"strings"
)

const (
	excuseMaxSentences   = 2
	excuseBoundaryWindow = 150
)

// sentence boundary: terminal punctuation, optional closing quote, then whitespace or end
var reSentenceEnd = regexp.MustCompile(`[.!?]+["'”’]?(?:\s+|$)`)

// bodyBetween returns the span after the first anchor line up to the closing phrase
// (or the end of text when the letter has no closing).
func bodyBetween(text string, anchor *regexp.Regexp, closing *regexp.Regexp) (string, bool) {
	loc := anchor.FindStringIndex(text)
	if loc == nil {
		return "", false
	}
	body := text[loc[1]:]
	if end := closing.FindStringIndex(body); end != nil {
		body = body[:end[0]]
	}
	body = strings.TrimSpace(body)
	return body, body != ""
}

// bodyRule summarizes the body found after an anchor line.
func bodyRule(name string, anchor *regexp.Regexp, closing *regexp.Regexp) fieldRule {
	return fieldRule{
		name: name,
		extract: func(text string) (string, bool) {
			body, ok := bodyBetween(text, anchor, closing)
			if !ok {
				return "", false
			}
			return leadingSentences(body, excuseMaxSentences)
		},
	}
}

// phraseRule returns the single sentence containing the first phrase match.
func phraseRule(name string, phrases []*regexp.Regexp) fieldRule {
	return fieldRule{
		name: name,
		extract: func(text string) (string, bool) {
			for _, re := range phrases {
				loc := re.FindStringIndex(text)
				if loc == nil {
					continue
				}
				if sentence := sentenceAround(text, loc[0]); sentence != "" {
					return sentence, true
				}
			}
			return "", false
		},
	}
}

// sentenceAround expands pos to the enclosing sentence, treating line breaks as hard boundaries.
func sentenceAround(text string, pos int) string {
	start := 0
	if i := strings.LastIndexAny(text[:pos], ".!?\n"); i >= 0 {
		start = i + 1
	}
	end := len(text)
	if i := strings.IndexAny(text[pos:], ".!?\n"); i >= 0 {
		end = pos + i
		if text[end] != '\n' {
			end++
		}
	}
	return collapseWhitespace(text[start:end])
}

// leadingSentences returns the first limit sentences of body. When no sentence boundary
// occurs within the first 150 characters the text is cut there and marked with an ellipsis.
func leadingSentences(body string, limit int) (string, bool) {
	flat := collapseWhitespace(body)
	if flat == "" {
		return "", false
	}

	ends := reSentenceEnd.FindAllStringIndex(flat, -1)
	if len(ends) == 0 || len([]rune(flat[:ends[0][0]])) >= excuseBoundaryWindow {
		runes := []rune(flat)
		if len(runes) <= excuseBoundaryWindow {
			return flat, true
		}
		return strings.TrimSpace(string(runes[:excuseBoundaryWindow])) + "...", true
	}

	n := min(limit, len(ends))
	return strings.TrimSpace(flat[:ends[n-1][1]]), true
}

var (
	reSalutationLoose = regexp.MustCompile(`(?im)^[ \t]*(?:good[ \t]+(?:day|morning|afternoon|evening)|greetings|to[ \t]+whom[ \t]+it[ \t]+may[ \t]+concern|magandang[ \t]+(?:araw|umaga|hapon|gabi)|dear|kapatid[ \t]+na|mahal[ \t]+na)[^\n]*\n`)

	englishExcusePhrases = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\bapologi[sz]e\s+for\b`),
		regexp.MustCompile(`(?i)\b(?:i'?m|i\s+am)\s+(?:very\s+|truly\s+|deeply\s+)?sorry\s+(?:for|that|about)\b`),
		regexp.MustCompile(`(?i)\bthe\s+reason\s+(?:is|was|why|for)\b`),
		regexp.MustCompile(`(?i)\b(?:would\s+like\s+to|humbly|respectfully|kindly)\s+(?:request|ask|explain)\b`),
		regexp.MustCompile(`(?i)\bwriting\s+(?:this\s+letter\s+)?to\s+(?:explain|request|inform|apologi[sz]e)\b`),
		regexp.MustCompile(`(?i)\b(?:was|were)\s+(?:unable|not\s+able)\s+to\b`),
	}

	tagalogExcusePhrases = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\bhumihingi\s+(?:po\s+)?(?:ako\s+)?(?:ng\s+)?(?:paumanhin|tawad)\b`),
		regexp.MustCompile(`(?i)\bang\s+(?:dahilan|rason)\b`),
		regexp.MustCompile(`(?i)\bnais\s+(?:ko\s+)?(?:pong|po)?\s*(?:ipaliwanag|humingi|ipaalam)\b`),
		regexp.MustCompile(`(?i)\bhindi\s+(?:po\s+)?(?:ako\s+)?(?:nakapasok|nakadalo|nakarating)\b`),
		regexp.MustCompile(`(?i)\bdahil\s+(?:po\s+)?(?:sa|ako|kami)\b`),
	}
)
