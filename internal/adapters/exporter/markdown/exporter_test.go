package markdown

import (
	"testing"

	"github.com/seven-pz/translationmdexe/internal/domain"
	"github.com/seven-pz/translationmdexe/internal/ports"
	parser "github.com/seven-pz/translationmdexe/internal/adapters/parser/markdown"
)

func TestExportIdentityWithoutTranslations(t *testing.T) {
	src := "# Title\n\nBody text.\n\n```\ncode\n```"
	res, err := parser.New().Parse([]byte(src))
	if err != nil {
		t.Fatal(err)
	}
	segs := make([]ports.RenderSegment, 0, len(res.Segments))
	for _, sg := range res.Segments {
		segs = append(segs, ports.RenderSegment{Kind: sg.Kind, Source: sg.Text})
	}
	out, err := New().Export([]byte(src), segs)
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != src {
		t.Errorf("round trip changed content:\n%s", out)
	}
}

func TestExportUsesTranslations(t *testing.T) {
	segs := []ports.RenderSegment{
		{Kind: domain.SegmentText, Source: "# Titre", Translation: "# Title"},
		{Kind: domain.SegmentPassthrough, Source: ""},
		{Kind: domain.SegmentText, Source: "Bonjour.", Translation: "Hello."},
		{Kind: domain.SegmentText, Source: "Pas traduit."},
	}
	out, err := New().Export(nil, segs)
	if err != nil {
		t.Fatal(err)
	}
	want := "# Title\n\nHello.\nPas traduit."
	if string(out) != want {
		t.Errorf("got:\n%s\nwant:\n%s", out, want)
	}
}
