package extract

import (
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/esmgis/platcrawl/internal/model"
	"github.com/esmgis/platcrawl/internal/store"
)

// PageReader extracts per-page text from a document file.
type PageReader interface {
	// PageTexts returns the text of each page of the file at path,
	// one string per page, in page order.
	PageTexts(path string) ([]string, error)
}

// PDFReader reads page text from PDF files.
type PDFReader struct{}

// NewPDFReader creates a PDFReader.
func NewPDFReader() *PDFReader {
	return &PDFReader{}
}

// PageTexts implements PageReader for PDF files.
//
// Pages whose text cannot be decoded are returned as empty strings
// rather than failing the whole document; scanned plat sheets often mix
// readable and unreadable pages.
func (r *PDFReader) PageTexts(path string) ([]string, error) {
	f, doc, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF %s: %w", path, err)
	}
	defer f.Close()

	n := doc.NumPage()
	texts := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		page := doc.Page(i)
		if page.V.IsNull() {
			texts = append(texts, "")
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			// Fall back to raw content spans for pages the plain-text
			// decoder rejects.
			var sb strings.Builder
			for _, span := range page.Content().Text {
				sb.WriteString(span.S)
				sb.WriteByte(' ')
			}
			text = sb.String()
		}
		texts = append(texts, text)
	}
	return texts, nil
}

// DocumentSource resolves a map ID to its page texts via the store.
type DocumentSource struct {
	st     *store.Store
	reader PageReader
}

// NewDocumentSource creates a DocumentSource reading documents from the
// given store.
func NewDocumentSource(st *store.Store, reader PageReader) *DocumentSource {
	return &DocumentSource{st: st, reader: reader}
}

// PageTexts returns the page texts of the stored document for id.
func (d *DocumentSource) PageTexts(id model.MapID) ([]string, error) {
	return d.reader.PageTexts(d.st.Path(id))
}
