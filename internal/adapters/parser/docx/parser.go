package docx

import (
	"bytes"
	"fmt"
	"strings"

	godocx "github.com/fumiama/go-docx"

	"github.com/seven-pz/translationmdexe/internal/domain"
	"github.com/seven-pz/translationmdexe/internal/ports"
)

// Parser extracts one segment per paragraph and per table cell, in body
// order. The exporter walks the same order to rebuild the document.
type Parser struct{}

func New() *Parser { return &Parser{} }

func (p *Parser) Format() string { return "docx" }

func (p *Parser) Parse(data []byte) (ports.ParseResult, error) {
	doc, err := godocx.Parse(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return ports.ParseResult{}, fmt.Errorf("parse docx: %w", err)
	}
	var segs []*domain.Segment
	idx := 0
	add := func(kind, text string) {
		segs = append(segs, &domain.Segment{Idx: idx, Kind: kind, Text: text})
		idx++
	}
	for _, it := range doc.Document.Body.Items {
		switch v := it.(type) {
		case *godocx.Paragraph:
			text := ParagraphText(v)
			if strings.TrimSpace(text) == "" {
				add(domain.SegmentPassthrough, "")
			} else {
				add(domain.SegmentText, text)
			}
		case *godocx.Table:
			for _, row := range v.TableRows {
				for _, cell := range row.TableCells {
					var parts []string
					for _, cp := range cell.Paragraphs {
						if t := ParagraphText(cp); strings.TrimSpace(t) != "" {
							parts = append(parts, t)
						}
					}
					text := strings.Join(parts, "\n")
					if strings.TrimSpace(text) == "" {
						add(domain.SegmentPassthrough, "")
					} else {
						add(domain.SegmentText, text)
					}
				}
			}
		}
	}
	return ports.ParseResult{Segments: segs}, nil
}

// ParagraphText concatenates the run text of a paragraph.
func ParagraphText(p *godocx.Paragraph) string {
	var b strings.Builder
	for _, child := range p.Children {
		switch c := child.(type) {
		case *godocx.Run:
			b.WriteString(runText(c))
		case *godocx.Hyperlink:
			b.WriteString(runText(&c.Run))
		}
	}
	return b.String()
}

func runText(r *godocx.Run) string {
	var b strings.Builder
	for _, child := range r.Children {
		if t, ok := child.(*godocx.Text); ok {
			b.WriteString(t.Text)
		}
	}
	return b.String()
}
