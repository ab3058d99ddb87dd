package documents

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/seven-pz/translationmdexe/internal/adapters/db/sqlite"
	"github.com/seven-pz/translationmdexe/internal/adapters/parser/registry"
	"github.com/seven-pz/translationmdexe/internal/domain"
	"github.com/seven-pz/translationmdexe/internal/ports"
)

// Service ingests source documents: parses them into segments and
// persists both. Re-ingesting a file whose parsed content is identical
// returns the existing document instead of creating a duplicate.
type Service struct {
	docs    ports.DocumentRepository
	segs    ports.SegmentRepository
	parsers *registry.Registry
}

func NewService(docs ports.DocumentRepository, segs ports.SegmentRepository, parsers *registry.Registry) *Service {
	return &Service{docs: docs, segs: segs, parsers: parsers}
}

// FormatForPath maps a file extension to a parser format name.
func FormatForPath(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown":
		return "markdown", nil
	case ".txt":
		return "text", nil
	case ".docx":
		return "docx", nil
	default:
		return "", fmt.Errorf("unsupported file type: %s", filepath.Ext(path))
	}
}

// IngestFile reads a file from disk and ingests it.
func (s *Service) IngestFile(ctx context.Context, path string) (*domain.Document, []*domain.Segment, error) {
	format, err := FormatForPath(path)
	if err != nil {
		return nil, nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read %s: %w", path, err)
	}
	return s.Ingest(ctx, filepath.Base(path), path, format, data)
}

// Ingest parses raw bytes and persists the document with its segments.
func (s *Service) Ingest(ctx context.Context, name, path, format string, data []byte) (*domain.Document, []*domain.Segment, error) {
	p, ok := s.parsers.Get(format)
	if !ok {
		return nil, nil, fmt.Errorf("no parser for format %q", format)
	}
	res, err := p.Parse(data)
	if err != nil {
		return nil, nil, fmt.Errorf("parse %s: %w", name, err)
	}

	contentHash := sqlite.HashBytes([]byte(joinContent(res.Segments)))
	if existing, err := s.docs.GetByContentHash(ctx, contentHash); err != nil {
		return nil, nil, err
	} else if existing != nil {
		segs, err := s.segs.ListByDocument(ctx, existing.ID)
		if err != nil {
			return nil, nil, err
		}
		return existing, segs, nil
	}

	doc := &domain.Document{
		Name:        name,
		Path:        path,
		Format:      format,
		FileHash:    sqlite.HashBytes(data),
		ContentHash: contentHash,
		Status:      domain.DocumentStatusPending,
	}
	if err := s.docs.Create(ctx, doc); err != nil {
		return nil, nil, err
	}
	for i, sg := range res.Segments {
		sg.DocumentID = doc.ID
		sg.Idx = i
	}
	if err := s.segs.ReplaceForDocument(ctx, doc.ID, res.Segments); err != nil {
		return nil, nil, err
	}
	segs, err := s.segs.ListByDocument(ctx, doc.ID)
	if err != nil {
		return nil, nil, err
	}
	return doc, segs, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*domain.Document, error) {
	return s.docs.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, limit int) ([]*domain.Document, error) {
	return s.docs.List(ctx, limit)
}

// joinContent covers every segment, passthrough included, so that
// documents sharing prose but differing elsewhere never alias.
func joinContent(segs []*domain.Segment) string {
	var b strings.Builder
	for _, sg := range segs {
		b.WriteString(sg.Kind)
		b.WriteByte(':')
		b.WriteString(sg.Text)
		b.WriteByte('\n')
	}
	return b.String()
}
