package markdown

import (
	"strings"

	"github.com/seven-pz/translationmdexe/internal/domain"
	"github.com/seven-pz/translationmdexe/internal/ports"
)

// Exporter rebuilds Markdown line by line. Passthrough segments are emitted
// byte-identical; text segments fall back to the source when no translation
// was produced.
type Exporter struct{}

func New() *Exporter { return &Exporter{} }

func (e *Exporter) Format() string { return "markdown" }

func (e *Exporter) Export(_ []byte, segs []ports.RenderSegment) ([]byte, error) {
	lines := make([]string, 0, len(segs))
	for _, s := range segs {
		switch {
		case s.Kind == domain.SegmentPassthrough:
			lines = append(lines, s.Source)
		case s.Translation != "":
			lines = append(lines, s.Translation)
		default:
			lines = append(lines, s.Source)
		}
	}
	return []byte(strings.Join(lines, "\n")), nil
}
