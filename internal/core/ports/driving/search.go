package driving

import (
	"context"

	"github.com/syang620/course-materials-rag-chatbot/internal/core/domain"
)

// SearchService provides passage retrieval to external actors.
type SearchService interface {
	// Search resolves the optional course name, applies the optional lesson
	// filter and returns the nearest passages.
	// Course-not-found and no-results are reported through the outcome status;
	// the error is reserved for backend failures.
	Search(ctx context.Context, req domain.SearchRequest) (*domain.SearchOutcome, error)
}

// CourseResolver maps a partial or misspelled course name to a canonical title.
type CourseResolver interface {
	// Resolve returns the canonical title of the nearest course.
	// Returns domain.ErrNotFound if no course qualifies.
	Resolve(ctx context.Context, name string) (string, error)
}
