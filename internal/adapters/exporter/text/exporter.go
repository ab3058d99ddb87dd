package text

import (
	"strings"

	"github.com/seven-pz/translationmdexe/internal/domain"
	"github.com/seven-pz/translationmdexe/internal/ports"
)

type Exporter struct{}

func New() *Exporter { return &Exporter{} }

func (e *Exporter) Format() string { return "text" }

func (e *Exporter) Export(_ []byte, segs []ports.RenderSegment) ([]byte, error) {
	lines := make([]string, 0, len(segs))
	for _, s := range segs {
		if s.Kind == domain.SegmentPassthrough || s.Translation == "" {
			lines = append(lines, s.Source)
			continue
		}
		lines = append(lines, s.Translation)
	}
	return []byte(strings.Join(lines, "\n")), nil
}
