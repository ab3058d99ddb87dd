package exporter

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/seven-pz/translationmdexe/internal/adapters/exporter/registry"
	"github.com/seven-pz/translationmdexe/internal/domain"
	"github.com/seven-pz/translationmdexe/internal/ports"
)

// Service renders a translated document back into its source format.
type Service struct {
	exporters *registry.Registry
}

func NewService(exporters *registry.Registry) *Service {
	return &Service{exporters: exporters}
}

// OutputPath derives the default output location: the source path with
// a _translated suffix before the extension.
func OutputPath(sourcePath string) string {
	ext := filepath.Ext(sourcePath)
	base := strings.TrimSuffix(sourcePath, ext)
	return base + "_translated" + ext
}

// Build renders segments with their translations into output bytes.
// Translations are matched to segments positionally; passthrough
// segments keep their source text.
func (s *Service) Build(_ context.Context, doc *domain.Document, segs []*domain.Segment, translations map[int64]string, original []byte) ([]byte, error) {
	exp, ok := s.exporters.Get(doc.Format)
	if !ok {
		return nil, fmt.Errorf("no exporter for format %q", doc.Format)
	}
	rsegs := make([]ports.RenderSegment, 0, len(segs))
	for _, sg := range segs {
		rsegs = append(rsegs, ports.RenderSegment{
			Kind:        sg.Kind,
			Source:      sg.Text,
			Translation: translations[sg.ID],
		})
	}
	return exp.Export(original, rsegs)
}

// BuildToFile renders and writes the output, returning the path used.
func (s *Service) BuildToFile(ctx context.Context, doc *domain.Document, segs []*domain.Segment, translations map[int64]string, outPath string) (string, error) {
	original, err := os.ReadFile(doc.Path)
	if err != nil {
		return "", fmt.Errorf("read original %s: %w", doc.Path, err)
	}
	data, err := s.Build(ctx, doc, segs, translations, original)
	if err != nil {
		return "", err
	}
	if outPath == "" {
		outPath = OutputPath(doc.Path)
	}
	if err := os.WriteFile(outPath, data, 0o644); err != nil {
		return "", fmt.Errorf("write output %s: %w", outPath, err)
	}
	return outPath, nil
}
