package translator

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	linkRE   = regexp.MustCompile(`!?\[[^\]]*\]\([^)]*\)`)
	codeRE   = regexp.MustCompile("`[^`\n]+`")
	braceRE  = regexp.MustCompile(`\{[a-zA-Z0-9_.]+\}`)
	tokenRE  = regexp.MustCompile(`__PH_\d+__`)
	tokenFmt = "__PH_%d__"
)

// Mask replaces markdown links, images, inline code and brace
// placeholders with stable __PH_n__ tokens so the model cannot
// mistranslate them. It returns the masked text, the token list, and
// an unmask function restoring the originals.
func Mask(text string) (string, []string, func(string) string) {
	var tokens []string
	var originals []string

	replace := func(re *regexp.Regexp, s string) string {
		return re.ReplaceAllStringFunc(s, func(m string) string {
			tok := fmt.Sprintf(tokenFmt, len(tokens))
			tokens = append(tokens, tok)
			originals = append(originals, m)
			return tok
		})
	}

	masked := replace(linkRE, text)
	masked = replace(codeRE, masked)
	masked = replace(braceRE, masked)

	unmask := func(s string) string {
		for i, tok := range tokens {
			s = strings.Replace(s, tok, originals[i], 1)
		}
		return s
	}
	return masked, tokens, unmask
}

// TokensSurvived reports whether every masked token is still present
// exactly once in the model output.
func TokensSurvived(output string, tokens []string) bool {
	for _, tok := range tokens {
		if strings.Count(output, tok) != 1 {
			return false
		}
	}
	return true
}

// StripStrayTokens removes any placeholder tokens the model invented.
func StripStrayTokens(s string, tokens []string) string {
	known := make(map[string]bool, len(tokens))
	for _, t := range tokens {
		known[t] = true
	}
	return tokenRE.ReplaceAllStringFunc(s, func(m string) string {
		if known[m] {
			return m
		}
		return ""
	})
}
