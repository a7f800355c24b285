package driven

import (
	"context"

	"github.com/syang620/course-materials-rag-chatbot/internal/core/domain"
)

// NormaliserRegistry selects the appropriate normaliser for a document.
// Dispatch is by file extension.
type NormaliserRegistry interface {
	// Normalise transforms a raw document using the normaliser for its extension.
	// Returns domain.ErrUnsupportedType if no normaliser is registered.
	Normalise(ctx context.Context, raw *domain.RawDocument) (string, error)

	// Register adds a normaliser to the registry.
	Register(normaliser Normaliser)

	// Supports reports whether a normaliser exists for the extension.
	Supports(ext string) bool

	// SupportedExtensions returns all extensions that can be normalised, sorted.
	SupportedExtensions() []string
}
