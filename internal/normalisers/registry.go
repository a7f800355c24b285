package normalisers

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/syang620/course-materials-rag-chatbot/internal/core/domain"
	"github.com/syang620/course-materials-rag-chatbot/internal/core/ports/driven"
	"github.com/syang620/course-materials-rag-chatbot/internal/normalisers/docx"
	"github.com/syang620/course-materials-rag-chatbot/internal/normalisers/html"
	"github.com/syang620/course-materials-rag-chatbot/internal/normalisers/markdown"
	"github.com/syang620/course-materials-rag-chatbot/internal/normalisers/pdf"
	"github.com/syang620/course-materials-rag-chatbot/internal/normalisers/plaintext"
)

// Ensure Registry implements the interface.
var _ driven.NormaliserRegistry = (*Registry)(nil)

// Registry dispatches raw documents to normalisers by file extension.
// A later registration for the same extension replaces the earlier one.
type Registry struct {
	byExt map[string]driven.Normaliser
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{byExt: make(map[string]driven.Normaliser)}
}

// NewDefaultRegistry creates a registry with every built-in normaliser.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(plaintext.New())
	r.Register(markdown.New())
	r.Register(pdf.New())
	r.Register(docx.New())
	r.Register(html.New())
	return r
}

// Register adds a normaliser for each extension it supports.
func (r *Registry) Register(n driven.Normaliser) {
	for _, ext := range n.SupportedExtensions() {
		r.byExt[strings.ToLower(ext)] = n
	}
}

// Supports reports whether a normaliser exists for the extension.
func (r *Registry) Supports(ext string) bool {
	_, ok := r.byExt[strings.ToLower(ext)]
	return ok
}

// SupportedExtensions returns all registered extensions, sorted.
func (r *Registry) SupportedExtensions() []string {
	exts := make([]string, 0, len(r.byExt))
	for ext := range r.byExt {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// Normalise extracts text using the normaliser registered for raw.Extension.
func (r *Registry) Normalise(ctx context.Context, raw *domain.RawDocument) (string, error) {
	if raw == nil {
		return "", domain.ErrInvalidInput
	}
	n, ok := r.byExt[strings.ToLower(raw.Extension)]
	if !ok {
		return "", fmt.Errorf("%w: %q", domain.ErrUnsupportedType, raw.Extension)
	}
	return n.Normalise(ctx, raw)
}
