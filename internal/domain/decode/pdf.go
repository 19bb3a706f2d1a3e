// Package decode reads positioned text out of PDF documents.
package decode

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/Mbelalia/facture-engine/internal/domain/layout"
)

// Fallback page size in points when a page carries no usable MediaBox.
const (
	a4Width  = 595.0
	a4Height = 842.0
)

// Document parses PDF bytes into pages of positioned text items. PDF
// coordinates grow upward from the bottom-left corner; the returned items
// use a top-left origin so that reading order matches increasing y.
func Document(data []byte) (layout.Document, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return layout.Document{}, fmt.Errorf("open pdf: %w", err)
	}
	return fromReader(reader)
}

// DocumentFromReader buffers r and decodes it like Document.
func DocumentFromReader(r io.Reader) (layout.Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return layout.Document{}, fmt.Errorf("read pdf: %w", err)
	}
	return Document(data)
}

func fromReader(reader *pdf.Reader) (layout.Document, error) {
	doc := layout.Document{}
	total := reader.NumPage()
	for i := 1; i <= total; i++ {
		p := reader.Page(i)
		if p.V.IsNull() {
			continue
		}
		width, height := pageSize(p)

		var items []layout.TextItem
		for _, t := range p.Content().Text {
			s := strings.TrimSpace(t.S)
			if s == "" {
				continue
			}
			items = append(items, layout.TextItem{
				Text: s,
				X:    t.X,
				Y:    height - t.Y,
			})
		}
		doc.Pages = append(doc.Pages, layout.Page{
			PageNumber: i,
			Width:      width,
			Height:     height,
			Items:      items,
		})
	}
	if len(doc.Pages) == 0 {
		return layout.Document{}, fmt.Errorf("pdf contains no readable pages")
	}
	return doc, nil
}

// pageSize reads the MediaBox extents. MediaBox may be inherited from the
// page tree, in which case the page dict lookup comes back null.
func pageSize(p pdf.Page) (width, height float64) {
	box := p.V.Key("MediaBox")
	if box.IsNull() || box.Len() < 4 {
		return a4Width, a4Height
	}
	left := box.Index(0).Float64()
	bottom := box.Index(1).Float64()
	right := box.Index(2).Float64()
	top := box.Index(3).Float64()
	if right <= left || top <= bottom {
		return a4Width, a4Height
	}
	return right - left, top - bottom
}
