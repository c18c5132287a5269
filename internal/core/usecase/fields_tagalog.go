package usecase

import "regexp"

const tagalogClosingPhrases = `ang[ \t]+inyong[ \t]+(?:kapatid|lingkod)[ \t]+sa[ \t]+panginoon|lubos[ \t]+na[ \t]+gumagalang|taos[- \t]?pusong[ \t]+(?:gumagalang|nagpapasalamat)|gumagalang|sumasainyo|nagpapasalamat|` + englishClosingPhrases

var (
	reAddresseeKapatid = regexp.MustCompile(`(?im)^[ \t]*kapatid[ \t]+na[ \t]+([^\n,:;]+)`)
	reAddresseeMahal   = regexp.MustCompile(`(?im)^[ \t]*mahal[ \t]+na[ \t]+([^\n,:;]+)`)
	reAddresseeParaKay = regexp.MustCompile(`(?im)^[ \t]*para[ \t]+(?:kay|sa)[ \t]*:?[ \t]+([^\n,;]+)`)

	reSectionTagalog = regexp.MustCompile(`(?i)\b(?:seksyon|seksiyon|pangkat|section)[ \t]*:[ \t]*([A-Za-z0-9][A-Za-z0-9 \-/]{0,30})`)
	reCourseTagalog  = regexp.MustCompile(`(?i)\b(?:kurso|course|programa|program)[ \t]*:[ \t]*([A-Za-z0-9][A-Za-z0-9 \-/]{0,30})`)

	reAnchorKapatid = regexp.MustCompile(`(?im)^[ \t]*(?:kapatid|mahal)[ \t]+na\b[^\n]*\n`)
)

func tagalogProfile() languageProfile {
	closing := newClosingMatcher(tagalogClosingPhrases)
	closingLine := regexp.MustCompile(`(?im)^[ \t]*(?:` + tagalogClosingPhrases + `)\b`)

	addressee := fieldChain{
		regexRule("addressee-kapatid-na", reAddresseeKapatid, acceptAddressee),
		regexRule("addressee-mahal-na", reAddresseeMahal, acceptAddressee),
		regexRule("addressee-para-kay", reAddresseeParaKay, acceptAddressee),
	}
	addressee = append(addressee, englishAddresseeRules()...)

	phrases := make([]*regexp.Regexp, 0, len(tagalogExcusePhrases)+len(englishExcusePhrases))
	phrases = append(phrases, tagalogExcusePhrases...)
	phrases = append(phrases, englishExcusePhrases...)

	return languageProfile{
		studentID: studentIDChain(),
		senderName: fieldChain{
			senderNameAfterClosing(tagalogClosingPhrases, closing),
			senderNameLineScan(closing),
		},
		addressee: addressee,
		date:      dateChain(),
		section: fieldChain{
			regexRule("section-labeled", reSectionTagalog, labeledValue),
		},
		course: fieldChain{
			regexRule("course-labeled", reCourseTagalog, labeledValue),
		},
		excuse: fieldChain{
			bodyRule("excuse-after-position", reAnchorPosition, closingLine),
			bodyRule("excuse-after-kapatid-na", reAnchorKapatid, closingLine),
			bodyRule("excuse-after-dear", reAnchorDear, closingLine),
			phraseRule("excuse-phrase", phrases),
			bodyRule("excuse-after-salutation", reSalutationLoose, closingLine),
		},
	}
}
