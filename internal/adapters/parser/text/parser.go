package text

import (
	"strings"

	"github.com/seven-pz/translationmdexe/internal/domain"
	"github.com/seven-pz/translationmdexe/internal/ports"
)

// Parser treats plain text as line segments; blank lines pass through.
type Parser struct{}

func New() *Parser { return &Parser{} }

func (p *Parser) Format() string { return "text" }

func (p *Parser) Parse(data []byte) (ports.ParseResult, error) {
	lines := strings.Split(string(data), "\n")
	segs := make([]*domain.Segment, 0, len(lines))
	for i, line := range lines {
		kind := domain.SegmentText
		if strings.TrimSpace(line) == "" {
			kind = domain.SegmentPassthrough
		}
		segs = append(segs, &domain.Segment{Idx: i, Kind: kind, Text: line})
	}
	return ports.ParseResult{Segments: segs}, nil
}
