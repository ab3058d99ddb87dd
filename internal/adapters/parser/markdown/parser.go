package markdown

import (
	"bytes"
	"strings"

	"github.com/seven-pz/translationmdexe/internal/domain"
	"github.com/seven-pz/translationmdexe/internal/ports"
)

// Parser splits Markdown into line segments. Blank lines, fenced code blocks
// and horizontal rules pass through untouched; everything else is
// translatable. Link and image targets are left in place here and masked by
// the translation layer.
type Parser struct{}

func New() *Parser { return &Parser{} }

func (p *Parser) Format() string { return "markdown" }

func (p *Parser) Parse(data []byte) (ports.ParseResult, error) {
	data = stripBOM(data)
	lines := strings.Split(string(data), "\n")
	segs := make([]*domain.Segment, 0, len(lines))
	inFence := false
	for i, line := range lines {
		kind := domain.SegmentText
		trimmed := strings.TrimSpace(line)
		switch {
		case isFence(trimmed):
			inFence = !inFence
			kind = domain.SegmentPassthrough
		case inFence:
			kind = domain.SegmentPassthrough
		case trimmed == "":
			kind = domain.SegmentPassthrough
		case isHorizontalRule(trimmed):
			kind = domain.SegmentPassthrough
		}
		segs = append(segs, &domain.Segment{Idx: i, Kind: kind, Text: line})
	}
	return ports.ParseResult{Segments: segs}, nil
}

func isFence(line string) bool {
	return strings.HasPrefix(line, "```") || strings.HasPrefix(line, "~~~")
}

func isHorizontalRule(line string) bool {
	if len(line) < 3 {
		return false
	}
	for _, marker := range []rune{'-', '*', '_'} {
		all := true
		for _, r := range line {
			if r != marker && r != ' ' {
				all = false
				break
			}
		}
		if all && strings.Count(line, string(marker)) >= 3 {
			return true
		}
	}
	return false
}

func stripBOM(b []byte) []byte {
	bom := []byte{0xEF, 0xBB, 0xBF}
	if len(b) >= 3 && bytes.Equal(b[:3], bom) {
		return b[3:]
	}
	return b
}
