// Package pdf provides the Normaliser for PDF course files.
package pdf

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	pdflib "github.com/ledongthuc/pdf"

	"github.com/syang620/course-materials-rag-chatbot/internal/core/domain"
	"github.com/syang620/course-materials-rag-chatbot/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// PageExtractor returns the plain text of each page of a PDF.
type PageExtractor func(r io.ReaderAt, size int64) ([]string, error)

// Normaliser handles PDF documents.
type Normaliser struct {
	extract PageExtractor
}

// New creates a new PDF normaliser backed by ledongthuc/pdf.
func New() *Normaliser {
	return &Normaliser{extract: extractPages}
}

// NewWithExtractor creates a PDF normaliser with a custom page extractor.
func NewWithExtractor(extract PageExtractor) *Normaliser {
	return &Normaliser{extract: extract}
}

// SupportedExtensions returns the extensions this normaliser handles.
func (n *Normaliser) SupportedExtensions() []string {
	return []string{".pdf"}
}

// Normalise extracts the text of every page, pages separated by a newline.
// Unreadable files are reported as malformed documents.
func (n *Normaliser) Normalise(ctx context.Context, raw *domain.RawDocument) (string, error) {
	if raw == nil {
		return "", domain.ErrInvalidInput
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	pages, err := n.extract(bytes.NewReader(raw.Content), int64(len(raw.Content)))
	if err != nil {
		return "", &domain.DocumentError{
			Path:   raw.Path,
			Reason: fmt.Sprintf("unreadable pdf: %v", err),
			Err:    domain.ErrMalformedDocument,
		}
	}

	var buf strings.Builder
	for _, page := range pages {
		page = strings.TrimSpace(page)
		if page == "" {
			continue
		}
		if buf.Len() > 0 {
			buf.WriteString("\n")
		}
		buf.WriteString(page)
	}
	return buf.String(), nil
}

// extractPages reads page text with ledongthuc/pdf.
// Pages that fail to decode are skipped.
func extractPages(r io.ReaderAt, size int64) (pages []string, err error) {
	// The library panics on some malformed cross-reference tables.
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("pdf reader: %v", p)
		}
	}()

	reader, err := pdflib.NewReader(r, size)
	if err != nil {
		return nil, err
	}

	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		pages = append(pages, text)
	}
	return pages, nil
}
