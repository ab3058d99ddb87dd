package translator

import (
	"strings"
	"unicode"
)

// SplitSentences splits text at terminal punctuation followed by
// whitespace and an uppercase letter. Abbreviation-heavy text may
// oversplit; single sentences pass through untouched.
func SplitSentences(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	runes := []rune(text)
	var out []string
	start := 0
	for i := 0; i < len(runes); i++ {
		if runes[i] != '.' && runes[i] != '!' && runes[i] != '?' {
			continue
		}
		// absorb closing quotes and a run of terminal marks
		j := i + 1
		for j < len(runes) && (runes[j] == '.' || runes[j] == '!' || runes[j] == '?' || runes[j] == '"' || runes[j] == '\'' || runes[j] == ')') {
			j++
		}
		k := j
		for k < len(runes) && unicode.IsSpace(runes[k]) {
			k++
		}
		if k == j || k >= len(runes) || !unicode.IsUpper(runes[k]) {
			i = j - 1
			continue
		}
		out = append(out, strings.TrimSpace(string(runes[start:j])))
		start = k
		i = k - 1
	}
	if start < len(runes) {
		tail := strings.TrimSpace(string(runes[start:]))
		if tail != "" {
			out = append(out, tail)
		}
	}
	if len(out) == 0 {
		return []string{text}
	}
	return out
}
