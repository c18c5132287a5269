package usecase

import (
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/SigmaByteKing/neu-salaysay-tracker/internal/core/domain"
)

// fieldRule is one step of an ordered extraction chain.
type fieldRule struct {
	name    string
	extract func(text string) (string, bool)
}

// fieldChain is evaluated in order; the first rule that yields a value wins.
type fieldChain []fieldRule

func (c fieldChain) apply(text string) (value string, rule string) {
	for _, r := range c {
		if v, ok := r.extract(text); ok {
			return v, r.name
		}
	}
	return "", ""
}

func (c fieldChain) names() []string {
	out := make([]string, 0, len(c))
	for _, r := range c {
		out = append(out, r.name)
	}
	return out
}

// regexRule tries every match of re in order and returns the first candidate
// (capture group 1) that accept keeps.
func regexRule(name string, re *regexp.Regexp, accept func(string) (string, bool)) fieldRule {
	if accept == nil {
		accept = acceptNonEmpty
	}
	return fieldRule{
		name: name,
		extract: func(text string) (string, bool) {
			for _, m := range re.FindAllStringSubmatch(text, -1) {
				if len(m) < 2 {
					continue
				}
				if v, ok := accept(m[1]); ok {
					return v, true
				}
			}
			return "", false
		},
	}
}

func acceptNonEmpty(candidate string) (string, bool) {
	v := strings.TrimSpace(candidate)
	return v, v != ""
}

// languageProfile bundles the chains of one letter template.
type languageProfile struct {
	studentID  fieldChain
	senderName fieldChain
	addressee  fieldChain
	date       fieldChain
	section    fieldChain
	course     fieldChain
	excuse     fieldChain
}

type FieldExtractor struct {
	profiles map[domain.Language]languageProfile
}

func NewFieldExtractor() *FieldExtractor {
	return &FieldExtractor{
		profiles: map[domain.Language]languageProfile{
			domain.LanguageEnglish: englishProfile(),
			domain.LanguageTagalog: tagalogProfile(),
		},
	}
}

// Extract recovers the fields it can find. Fields without a match stay empty.
func (e *FieldExtractor) Extract(text string, lang domain.Language) domain.DocumentFields {
	profile, ok := e.profiles[lang]
	if !ok {
		profile = e.profiles[domain.LanguageEnglish]
	}

	var fields domain.DocumentFields
	fields.StudentID, _ = profile.studentID.apply(text)
	fields.StudentName, _ = profile.senderName.apply(text)
	fields.Addressee, _ = profile.addressee.apply(text)
	fields.Section, _ = profile.section.apply(text)
	fields.CourseCode, _ = profile.course.apply(text)
	fields.NatureOfExcuse, _ = profile.excuse.apply(text)

	if canonical, _ := profile.date.apply(text); canonical != "" {
		if parsed, err := time.Parse(canonicalDateLayout, canonical); err == nil {
			fields.SubmissionDate = parsed
		}
	}
	return fields
}

const canonicalDateLayout = "January 2, 2006"

var (
	reStudentIDLabeled     = regexp.MustCompile(`(?i)(?:student\s*(?:no|number|id|#)|id\s*(?:no|number|#)|numero\s*ng\s*(?:estudyante|mag-aaral))\.?\s*[:#]?\s*(\d{2}-\d{4,7}-\d{3})`)
	reStudentIDFormat      = regexp.MustCompile(`\b(\d{2}-\d{4,7}-\d{3})\b`)
	reStudentIDPlaceholder = regexp.MustCompile(`(?i)\b((?:\d{2}|xx)-(?:\d{4,7}|x{4,7})-(?:\d{3}|xxx))\b`)
	reStudentIDLabelDigits = regexp.MustCompile(`(?i)(?:student\s*(?:no|number|id|#)|id\s*(?:no|number|#))\.?\s*[:#]?\s*(\d{6,12})\b`)
	reStudentIDBareDigits  = regexp.MustCompile(`\b(\d{9,12})\b`)
)

func studentIDChain() fieldChain {
	return fieldChain{
		regexRule("student-id-labeled", reStudentIDLabeled, nil),
		regexRule("student-id-format", reStudentIDFormat, nil),
		regexRule("student-id-placeholder", reStudentIDPlaceholder, acceptPlaceholderID),
		regexRule("student-id-labeled-digits", reStudentIDLabelDigits, nil),
		regexRule("student-id-bare-digits", reStudentIDBareDigits, acceptBareDigitID),
	}
}

func acceptPlaceholderID(candidate string) (string, bool) {
	return strings.ToUpper(strings.TrimSpace(candidate)), true
}

// acceptBareDigitID skips Philippine mobile numbers, which share the digit-run shape.
func acceptBareDigitID(candidate string) (string, bool) {
	if len(candidate) == 11 && strings.HasPrefix(candidate, "09") {
		return "", false
	}
	return candidate, true
}

var (
	reLabeledTail    = regexp.MustCompile(`(?i)\s+(?:section|seksyon|seksiyon|pangkat|year|yr|course|kurso|program|programa)\b.*$`)
	reDanglingDashes = regexp.MustCompile(`(?:^|\s)[-–]+(?:\s|$)`)
)

// labeledValue trims a labeled-field capture at the next label on the same line.
func labeledValue(candidate string) (string, bool) {
	v := reLabeledTail.ReplaceAllString(candidate, "")
	v = strings.Trim(strings.TrimSpace(v), ",;")
	return v, v != ""
}

// closingMatcher recognizes complimentary-close lines of one language.
type closingMatcher struct {
	line *regexp.Regexp
	any  *regexp.Regexp
}

func newClosingMatcher(phrases string) closingMatcher {
	return closingMatcher{
		line: regexp.MustCompile(`(?i)^\s*(?:` + phrases + `)\s*[,.]?\s*$`),
		any:  regexp.MustCompile(`(?i)^\s*(?:` + phrases + `)\b`),
	}
}

func (m closingMatcher) isClosing(line string) bool {
	return m.line.MatchString(line)
}

// senderNameAfterClosing captures the first line after a closing line.
func senderNameAfterClosing(phrases string, closing closingMatcher) fieldRule {
	re := regexp.MustCompile(`(?im)^[ \t]*(?:` + phrases + `)[ \t]*,?[ \t]*\n\s*([^\n]+)`)
	return regexRule("sender-after-closing", re, func(candidate string) (string, bool) {
		return acceptSenderName(candidate, closing)
	})
}

// senderNameLineScan looks for any line opening with a closing phrase and takes the next non-empty line.
func senderNameLineScan(closing closingMatcher) fieldRule {
	return fieldRule{
		name: "sender-line-scan",
		extract: func(text string) (string, bool) {
			lines := strings.Split(text, "\n")
			for i, line := range lines {
				if !closing.any.MatchString(line) {
					continue
				}
				for j := i + 1; j < len(lines); j++ {
					next := strings.TrimSpace(lines[j])
					if letterCount(next) == 0 {
						// blank or a signature rule
						continue
					}
					if v, ok := acceptSenderName(next, closing); ok {
						return v, true
					}
					break
				}
			}
			return "", false
		},
	}
}

func acceptSenderName(candidate string, closing closingMatcher) (string, bool) {
	raw := strings.TrimSpace(candidate)
	if raw == "" || isNumericLine(raw) || closing.isClosing(raw) || closing.any.MatchString(raw) {
		return "", false
	}
	if strings.Contains(raw, ":") {
		return "", false
	}
	cleaned := cleanPersonName(raw)
	if letterCount(cleaned) < 4 {
		return "", false
	}
	return cleaned, true
}

// cleanPersonName strips digits and collapses whitespace.
func cleanPersonName(s string) string {
	noDigits := strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return -1
		}
		return r
	}, s)
	noDigits = reDanglingDashes.ReplaceAllString(noDigits, " ")
	return strings.Trim(collapseWhitespace(noDigits), " ,;")
}

func letterCount(s string) int {
	n := 0
	for _, r := range s {
		if unicode.IsLetter(r) {
			n++
		}
	}
	return n
}

func isNumericLine(s string) bool {
	hasDigit := false
	for _, r := range s {
		switch {
		case unicode.IsDigit(r):
			hasDigit = true
		case r == '-' || r == ' ' || r == '.' || r == '/':
		default:
			return false
		}
	}
	return hasDigit
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func acceptAddressee(candidate string) (string, bool) {
	v := strings.TrimSpace(candidate)
	v = strings.TrimRight(v, ",;:!. \t")
	v = collapseWhitespace(v)
	if len([]rune(v)) < 2 {
		return "", false
	}
	return v, true
}
