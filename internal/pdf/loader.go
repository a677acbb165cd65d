// Package pdf extracts per-page plain text from PDF files.
package pdf

import (
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Loader reads a PDF from disk and returns its pages as plain text.
type Loader struct{}

// NewLoader creates a PDF loader.
func NewLoader() *Loader { return &Loader{} }

// LoadAndSplit opens the PDF at path and returns one text per page, in page
// order. Pages whose text cannot be extracted are skipped rather than
// failing the whole document; an error is returned only when the file
// itself cannot be opened or yields no text at all.
func (l *Loader) LoadAndSplit(path string) ([]string, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf %s: %w", path, err)
	}
	defer f.Close()

	var pages []string
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		pages = append(pages, text)
	}
	if len(pages) == 0 {
		return nil, fmt.Errorf("no extractable text in %s", path)
	}
	return pages, nil
}
