package translator

import (
	"regexp"
	"strings"
)

var (
	prefixRE      = regexp.MustCompile(`(?i)^\s*(?:here is )?(?:the )?(?:translation|translated text|output|result)\s*[:\-]\s*`)
	multiSpaceRE  = regexp.MustCompile(`[ \t]{2,}`)
	spaceBeforeRE = regexp.MustCompile(`\s+([.,;:!?])`)
)

// CleanOutput strips model chatter from a translation: leading
// "Translation:"-style labels, wrapping quotes, doubled spaces and
// stray spaces before punctuation.
func CleanOutput(s string) string {
	s = strings.TrimSpace(s)
	s = prefixRE.ReplaceAllString(s, "")
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			inner := s[1 : len(s)-1]
			if !strings.ContainsAny(inner, `"'`) {
				s = inner
			}
		}
	}
	s = multiSpaceRE.ReplaceAllString(s, " ")
	s = spaceBeforeRE.ReplaceAllString(s, "$1")
	return strings.TrimSpace(s)
}
