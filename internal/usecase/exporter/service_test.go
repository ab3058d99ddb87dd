package exporter

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mdexport "github.com/seven-pz/translationmdexe/internal/adapters/exporter/markdown"
	"github.com/seven-pz/translationmdexe/internal/adapters/exporter/registry"
	"github.com/seven-pz/translationmdexe/internal/domain"
)

func TestOutputPath(t *testing.T) {
	assert.Equal(t, "/docs/guide_translated.md", OutputPath("/docs/guide.md"))
	assert.Equal(t, "notes_translated.txt", OutputPath("notes.txt"))
	assert.Equal(t, "report_translated.docx", OutputPath("report.docx"))
}

func TestBuildToFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "a.md")
	require.NoError(t, os.WriteFile(src, []byte("Bonjour.\n\nAu revoir."), 0o644))

	reg := registry.New()
	reg.Register(mdexport.New())
	svc := NewService(reg)

	doc := &domain.Document{ID: 1, Name: "a.md", Path: src, Format: "markdown"}
	segs := []*domain.Segment{
		{ID: 10, Idx: 0, Kind: domain.SegmentText, Text: "Bonjour."},
		{ID: 11, Idx: 1, Kind: domain.SegmentPassthrough, Text: ""},
		{ID: 12, Idx: 2, Kind: domain.SegmentText, Text: "Au revoir."},
	}
	translations := map[int64]string{10: "Hello.", 12: "Goodbye."}

	out, err := svc.BuildToFile(context.Background(), doc, segs, translations, "")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "a_translated.md"), out)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "Hello.\n\nGoodbye.", string(data))
}

func TestBuildUnknownFormat(t *testing.T) {
	svc := NewService(registry.New())
	_, err := svc.Build(context.Background(), &domain.Document{Format: "pdf"}, nil, nil, nil)
	require.Error(t, err)
}
