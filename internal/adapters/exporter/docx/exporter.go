package docx

import (
	"bytes"
	"fmt"
	"strings"

	godocx "github.com/fumiama/go-docx"

	"github.com/seven-pz/translationmdexe/internal/ports"
)

// Exporter rebuilds a fresh document from the original body structure with
// translated text, walking paragraphs and tables in the same order as the
// parser so segments line up positionally. Character-level run styling is
// not carried over.
type Exporter struct{}

func New() *Exporter { return &Exporter{} }

func (e *Exporter) Format() string { return "docx" }

func (e *Exporter) Export(original []byte, segs []ports.RenderSegment) ([]byte, error) {
	src, err := godocx.Parse(bytes.NewReader(original), int64(len(original)))
	if err != nil {
		return nil, fmt.Errorf("parse source docx: %w", err)
	}
	out := godocx.New().WithDefaultTheme()
	next := segmentCursor(segs)

	for _, it := range src.Document.Body.Items {
		switch v := it.(type) {
		case *godocx.Paragraph:
			text, err := next()
			if err != nil {
				return nil, err
			}
			para := out.AddParagraph()
			if text != "" {
				para.AddText(text)
			}
		case *godocx.Table:
			rowCount := len(v.TableRows)
			// merged cells make rows ragged, so size from the widest row
			colCount := 0
			for _, row := range v.TableRows {
				if n := len(row.TableCells); n > colCount {
					colCount = n
				}
			}
			if rowCount == 0 || colCount == 0 {
				continue
			}
			tbl := out.AddTable(rowCount, colCount, 0, nil)
			for ri, row := range v.TableRows {
				for ci := range row.TableCells {
					text, err := next()
					if err != nil {
						return nil, err
					}
					cell := tbl.TableRows[ri].TableCells[ci]
					for _, line := range strings.Split(text, "\n") {
						cp := cell.AddParagraph()
						if line != "" {
							cp.AddText(line)
						}
					}
				}
			}
		}
	}

	var buf bytes.Buffer
	if _, err := out.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("write docx: %w", err)
	}
	return buf.Bytes(), nil
}

// segmentCursor yields the output text of each segment in order.
func segmentCursor(segs []ports.RenderSegment) func() (string, error) {
	i := 0
	return func() (string, error) {
		if i >= len(segs) {
			return "", fmt.Errorf("segment count mismatch: source has more blocks than stored segments")
		}
		s := segs[i]
		i++
		if s.Translation != "" {
			return s.Translation, nil
		}
		return s.Source, nil
	}
}
