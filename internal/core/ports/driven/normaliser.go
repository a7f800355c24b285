package driven

import (
	"context"

	"github.com/syang620/course-materials-rag-chatbot/internal/core/domain"
)

// Normaliser extracts plain text from a course file.
// Each normaliser handles specific file extensions (e.g., .pdf, .docx).
type Normaliser interface {
	// SupportedExtensions returns the lower-cased extensions this normaliser handles,
	// including the leading dot.
	SupportedExtensions() []string

	// Normalise returns the document's text with line structure preserved,
	// so the course header and lesson markers remain one per line.
	Normalise(ctx context.Context, raw *domain.RawDocument) (string, error)
}
