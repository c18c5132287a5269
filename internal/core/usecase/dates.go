package usecase

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

var monthNames = map[string]time.Month{
	"january": time.January, "jan": time.January, "enero": time.January,
	"february": time.February, "feb": time.February, "pebrero": time.February, "febrero": time.February,
	"march": time.March, "mar": time.March, "marso": time.March,
	"april": time.April, "apr": time.April, "abril": time.April,
	"may": time.May, "mayo": time.May,
	"june": time.June, "jun": time.June, "hunyo": time.June,
	"july": time.July, "jul": time.July, "hulyo": time.July,
	"august": time.August, "aug": time.August, "agosto": time.August,
	"september": time.September, "sept": time.September, "sep": time.September, "setyembre": time.September, "septiyembre": time.September,
	"october": time.October, "oct": time.October, "oktubre": time.October,
	"november": time.November, "nov": time.November, "nobyembre": time.November,
	"december": time.December, "dec": time.December, "disyembre": time.December,
}

var (
	reDateLabeled = regexp.MustCompile(`(?im)\b(?:date|petsa)[ \t]*:[ \t]*([^\n]+)`)
	reDateSlash   = regexp.MustCompile(`\b(\d{1,2}/\d{1,2}/\d{4})\b`)
	reDateISO     = regexp.MustCompile(`\b(\d{4}-\d{2}-\d{2})\b`)

	monthAlternation = buildMonthAlternation()
	// "April 2, 2025", "Abril 2 2025", "Apr. 2nd, 2025"
	reDateMonthFirst = regexp.MustCompile(`(?i)\b(` + monthAlternation + `)\.?[ \t]+(\d{1,2})(?:st|nd|rd|th)?[ \t]*,?[ \t]+(\d{4})\b`)
	// "2 April 2025", "ika-2 ng Abril, 2025"
	reDateDayFirst = regexp.MustCompile(`(?i)\b(?:ika-?)?(\d{1,2})(?:st|nd|rd|th)?[ \t]+(?:ng[ \t]+|of[ \t]+)?(` + monthAlternation + `)\.?[ \t]*,?[ \t]+(\d{4})\b`)
)

func buildMonthAlternation() string {
	names := make([]string, 0, len(monthNames))
	for name := range monthNames {
		names = append(names, name)
	}
	// longest first so "mayo" wins over "may"
	sort.Slice(names, func(i, j int) bool {
		if len(names[i]) != len(names[j]) {
			return len(names[i]) > len(names[j])
		}
		return names[i] < names[j]
	})
	return strings.Join(names, "|")
}

func dateChain() fieldChain {
	return fieldChain{
		regexRule("date-labeled", reDateLabeled, func(candidate string) (string, bool) {
			return canonicalize(parseAnyDate(candidate))
		}),
		regexRule("date-slash", reDateSlash, func(candidate string) (string, bool) {
			return canonicalize(parseSlashDate(candidate))
		}),
		regexRule("date-iso", reDateISO, func(candidate string) (string, bool) {
			return canonicalize(parseISODate(candidate))
		}),
		{name: "date-long-form", extract: func(text string) (string, bool) {
			return canonicalize(parseLongDate(text))
		}},
	}
}

func canonicalize(t time.Time, ok bool) (string, bool) {
	if !ok {
		return "", false
	}
	return t.Format(canonicalDateLayout), true
}

// parseAnyDate parses the value of a labeled date field in any supported format.
func parseAnyDate(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if m := reDateSlash.FindString(value); m != "" {
		if t, ok := parseSlashDate(m); ok {
			return t, true
		}
	}
	if m := reDateISO.FindString(value); m != "" {
		if t, ok := parseISODate(m); ok {
			return t, true
		}
	}
	return parseLongDate(value)
}

func parseSlashDate(value string) (time.Time, bool) {
	t, err := time.Parse("1/2/2006", value)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func parseISODate(value string) (time.Time, bool) {
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// parseLongDate finds the first month-name date in text that forms a real calendar day.
func parseLongDate(text string) (time.Time, bool) {
	for _, m := range reDateMonthFirst.FindAllStringSubmatch(text, -1) {
		if t, ok := buildDate(m[3], m[1], m[2]); ok {
			return t, true
		}
	}
	for _, m := range reDateDayFirst.FindAllStringSubmatch(text, -1) {
		if t, ok := buildDate(m[3], m[2], m[1]); ok {
			return t, true
		}
	}
	return time.Time{}, false
}

func buildDate(yearStr, monthStr, dayStr string) (time.Time, bool) {
	month, ok := monthNames[strings.ToLower(monthStr)]
	if !ok {
		return time.Time{}, false
	}
	year, err := strconv.Atoi(yearStr)
	if err != nil {
		return time.Time{}, false
	}
	day, err := strconv.Atoi(dayStr)
	if err != nil || day < 1 || day > 31 {
		return time.Time{}, false
	}
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	if t.Day() != day {
		return time.Time{}, false
	}
	return t, true
}
