package usecase

import (
	"regexp"
	"strings"

	"github.com/SigmaByteKing/neu-salaysay-tracker/internal/core/domain"
)

// keywordSet matches any of its fragments at a word start. A fragment ending in \b must match a whole word.
type keywordSet struct {
	re *regexp.Regexp
}

func newKeywordSet(fragments ...string) keywordSet {
	return keywordSet{re: regexp.MustCompile(`(?i)\b(?:` + strings.Join(fragments, "|") + `)`)}
}

func (k keywordSet) match(text string) bool {
	return k.re.MatchString(text)
}

var (
	propertyKeywords = newKeywordSet(
		`broke`, `breaking\b`, `damag`, `destroy`, `vandal`, `shatter`, `scratch`,
		`chair`, `table\b`, `desk`, `window`, `door`, `equipment`, `laboratory`, `lab\b`,
		`property`, `projector`, `computer`, `glass\b`,
	)
	damageActions  = newKeywordSet(`broke`, `damag`, `destroy`)
	damageObjects  = newKeywordSet(`chair`, `laboratory`)
	damageContexts = newKeywordSet(`accident`, `broke`, `damag`)

	attendanceKeywords = newKeywordSet(
		`absent`, `absence`, `late\b`, `tardy`, `tardiness`, `attendance`,
		`missed\s+(?:my\s+|the\s+|our\s+)?(?:class|classes|lecture|exam|quiz)`,
		`(?:did\s+not|didn'?t|could\s+not|couldn'?t|was\s+unable\s+to|were\s+unable\s+to)\s+attend`,
		`cutting\s+class`, `skipp?(?:ed|ing)?\s+class`, `left\s+(?:the\s+)?class\s+early`,
	)
	academicKeywords = newKeywordSet(
		`cheat`, `plagiar`, `copied`, `copying`, `dishonest`, `crib`,
		`unauthori[sz]ed\s+(?:materials?|notes?|devices?)`, `academic\s+(?:misconduct|dishonesty)`,
	)
	behavioralKeywords = newKeywordSet(
		`fight`, `disrespect`, `rude`, `bully`, `harass`, `shout`, `misbehav`, `argument`,
		`threat`, `disrupt`, `vulgar`, `foul\s+language`, `cursing`, `noisy`, `insubordinat`,
	)
	dressCodeKeywords = newKeywordSet(
		`uniform`, `dress\s+code`, `attire`, `haircut`, `hairstyle`, `earring`, `slippers`,
		`shorts`, `sleeveless`, `improperly\s+dressed`, `id\s+lace`,
	)
)

// ViolationClassifier assigns one of the six violation types with gated keyword priority.
type ViolationClassifier struct{}

func NewViolationClassifier() *ViolationClassifier {
	return &ViolationClassifier{}
}

// Classify checks the excuse summary first and falls back to the full text only when the summary matches nothing.
func (c *ViolationClassifier) Classify(excuse, fullText string) domain.ViolationType {
	for _, text := range []string{excuse, fullText} {
		if strings.TrimSpace(text) == "" {
			continue
		}
		if v, ok := c.classifyText(text); ok {
			return v
		}
	}
	return domain.ViolationOther
}

func (c *ViolationClassifier) classifyText(text string) (domain.ViolationType, bool) {
	hasProperty := propertyKeywords.match(text)
	switch {
	case hasProperty && hasDamageAction(text):
		return domain.ViolationPropertyDamage, true
	case attendanceKeywords.match(text):
		return domain.ViolationAttendance, true
	case academicKeywords.match(text):
		return domain.ViolationAcademicMisconduct, true
	case behavioralKeywords.match(text) && !hasProperty:
		return domain.ViolationBehavioral, true
	case dressCodeKeywords.match(text):
		return domain.ViolationDressCode, true
	default:
		return "", false
	}
}

// hasDamageAction requires an explicit damage verb, or a chair/laboratory mention next to an accident or damage word.
func hasDamageAction(text string) bool {
	if damageActions.match(text) {
		return true
	}
	return damageObjects.match(text) && damageContexts.match(text)
}
