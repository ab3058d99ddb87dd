package ports

import (
	"github.com/seven-pz/translationmdexe/internal/domain"
)

type ParseResult struct {
	Segments []*domain.Segment
}

// Parser decomposes a document of one format into ordered segments.
// Segment order must match the exporter's traversal of the same bytes.
type Parser interface {
	Format() string
	Parse(data []byte) (ParseResult, error)
}
