package ports

// RenderSegment pairs a source segment with its translation for export.
// Passthrough segments keep Translation empty and are emitted from Source.
type RenderSegment struct {
	Kind        string
	Source      string
	Translation string
}

// Exporter reassembles a translated document. The original bytes are
// available for formats that need the source structure (e.g. docx tables).
type Exporter interface {
	Format() string
	Export(original []byte, segs []RenderSegment) ([]byte, error)
}
