// Package parse recovers the translation payload from model output. Models
// in JSON mode still emit fenced blocks, surrounding prose, or plain text
// often enough that a strict json.Unmarshal alone is not workable.
package parse

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

var translationRE = regexp.MustCompile(`(?s)"translation"\s*:\s*"((?:[^"\\]|\\.)*)"`)

// ExtractTranslation pulls the translated text out of a model response that
// was asked for {"translation": "..."} JSON.
func ExtractTranslation(content string) (string, error) {
	s := strings.TrimSpace(content)
	if idx := strings.Index(s, "```"); idx >= 0 {
		rest := s[idx+3:]
		rest = strings.TrimPrefix(rest, "json")
		if j := strings.Index(rest, "```"); j >= 0 {
			s = strings.TrimSpace(rest[:j])
		}
	}
	var obj struct {
		Translation string `json:"translation"`
	}
	if err := json.Unmarshal([]byte(s), &obj); err == nil && obj.Translation != "" {
		return obj.Translation, nil
	}
	if m := translationRE.FindStringSubmatch(s); len(m) == 2 {
		return unescape(m[1]), nil
	}
	if i := strings.Index(s, "{"); i >= 0 {
		if j := strings.LastIndex(s, "}"); j > i {
			inner := s[i : j+1]
			if err := json.Unmarshal([]byte(inner), &obj); err == nil && obj.Translation != "" {
				return obj.Translation, nil
			}
			if m := translationRE.FindStringSubmatch(inner); len(m) == 2 {
				return unescape(m[1]), nil
			}
		}
	}
	// Plain-text answer when JSON mode was ignored.
	if !strings.Contains(s, "{") {
		lower := strings.ToLower(s)
		for _, k := range []string{"translation:", "translated:", "result:", "output:"} {
			if pos := strings.Index(lower, k); pos >= 0 && pos < 80 {
				if cand := strings.TrimSpace(s[pos+len(k):]); cand != "" {
					return cand, nil
				}
			}
		}
		if s != "" {
			return s, nil
		}
	}
	return "", fmt.Errorf("failed to parse translation JSON; content: %s", Abbreviate(s, 2000))
}

// unescape decodes a captured JSON string payload. Raw control
// characters in the payload make strict decoding fail, so a plain
// replacer covers that case.
func unescape(s string) string {
	var out string
	if err := json.Unmarshal([]byte(`"`+s+`"`), &out); err == nil {
		return out
	}
	return strings.NewReplacer(`\n`, "\n", `\t`, "\t", `\"`, `"`, `\\`, `\`).Replace(s)
}

func Abbreviate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 3 {
		return s[:n]
	}
	return s[:n-3] + "..."
}
