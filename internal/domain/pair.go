package domain

import (
	"fmt"
	"strings"
)

// LangPair is a source/target language combination, e.g. fr-en.
type LangPair struct {
	Src string `json:"src"`
	Tgt string `json:"tgt"`
}

func ParsePair(s string) (LangPair, error) {
	parts := strings.Split(strings.TrimSpace(strings.ToLower(s)), "-")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return LangPair{}, fmt.Errorf("invalid language pair %q (want e.g. fr-en)", s)
	}
	if parts[0] == parts[1] {
		return LangPair{}, fmt.Errorf("source and target language are the same: %q", s)
	}
	return LangPair{Src: parts[0], Tgt: parts[1]}, nil
}

func (p LangPair) String() string { return p.Src + "-" + p.Tgt }

// Reverse returns the opposite direction of the pair.
func (p LangPair) Reverse() LangPair { return LangPair{Src: p.Tgt, Tgt: p.Src} }
