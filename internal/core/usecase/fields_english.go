package usecase

import "regexp"

const englishClosingPhrases = `sincerely(?:[ \t]+yours)?|respectfully(?:[ \t]+yours)?|(?:very[ \t]+)?truly[ \t]+yours|yours[ \t]+(?:truly|sincerely|respectfully|faithfully)|faithfully[ \t]+yours|(?:best|warm|kind)[ \t]+regards|regards`

var (
	reAddresseeDearTitled = regexp.MustCompile(`(?im)^[ \t]*dear[ \t]+((?:bro|sis|br|sr|mr|mrs|ms|dr|prof|engr|atty|fr|rev|dean|sir|ma'?am|madam|professor|brother|sister)\.?[ \t]+[^\n,:;]+)`)
	reAddresseeDear       = regexp.MustCompile(`(?im)^[ \t]*dear[ \t]+([^\n,:;]+)`)
	reAddresseeTo         = regexp.MustCompile(`(?im)^[ \t]*(?:to|attention|attn)[ \t]*:[ \t]*([^\n]+)`)

	reSectionEnglish = regexp.MustCompile(`(?i)\bsection[ \t]*:[ \t]*([A-Za-z0-9][A-Za-z0-9 \-/]{0,30})`)
	reCourseEnglish  = regexp.MustCompile(`(?i)\b(?:course|program)[ \t]*:[ \t]*([A-Za-z0-9][A-Za-z0-9 \-/]{0,30})`)

	reAnchorDear     = regexp.MustCompile(`(?im)^[ \t]*dear\b[^\n]*\n`)
	reAnchorPosition = regexp.MustCompile(`(?im)^[ \t]*(?:position|posisyon)[ \t]*:[^\n]*\n`)
)

func englishAddresseeRules() []fieldRule {
	return []fieldRule{
		regexRule("addressee-dear-titled", reAddresseeDearTitled, acceptAddressee),
		regexRule("addressee-dear", reAddresseeDear, acceptAddressee),
		regexRule("addressee-to", reAddresseeTo, acceptAddressee),
	}
}

func englishProfile() languageProfile {
	closing := newClosingMatcher(englishClosingPhrases)
	closingLine := regexp.MustCompile(`(?im)^[ \t]*(?:` + englishClosingPhrases + `)\b`)

	return languageProfile{
		studentID: studentIDChain(),
		senderName: fieldChain{
			senderNameAfterClosing(englishClosingPhrases, closing),
			senderNameLineScan(closing),
		},
		addressee: fieldChain(englishAddresseeRules()),
		date:      dateChain(),
		section: fieldChain{
			regexRule("section-labeled", reSectionEnglish, labeledValue),
		},
		course: fieldChain{
			regexRule("course-labeled", reCourseEnglish, labeledValue),
		},
		excuse: fieldChain{
			bodyRule("excuse-after-dear", reAnchorDear, closingLine),
			bodyRule("excuse-after-position", reAnchorPosition, closingLine),
			phraseRule("excuse-phrase", englishExcusePhrases),
			bodyRule("excuse-after-salutation", reSalutationLoose, closingLine),
		},
	}
}
