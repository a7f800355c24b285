package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/syang620/course-materials-rag-chatbot/internal/core/domain"
	"github.com/syang620/course-materials-rag-chatbot/internal/core/ports/driven"
	"github.com/syang620/course-materials-rag-chatbot/internal/core/ports/driving"
	"github.com/syang620/course-materials-rag-chatbot/internal/logger"
)

// Ensure Resolver implements the interface.
var _ driving.CourseResolver = (*Resolver)(nil)

// Resolver maps free-text course references to canonical titles by
// nearest-neighbour lookup in the identity collection.
//
// The nearest course is accepted unconditionally unless a positive
// similarity floor is configured.
type Resolver struct {
	courses       driven.Collection
	minSimilarity float64
}

// NewResolver creates a resolver over the identity collection.
// A minSimilarity of zero or less disables the floor.
func NewResolver(courses driven.Collection, minSimilarity float64) *Resolver {
	return &Resolver{
		courses:       courses,
		minSimilarity: minSimilarity,
	}
}

// Resolve returns the canonical title of the course nearest to name.
func (r *Resolver) Resolve(ctx context.Context, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%w: empty course name", domain.ErrInvalidInput)
	}

	hits, err := r.courses.Query(ctx, name, 1, nil)
	if err != nil {
		return "", fmt.Errorf("resolve course %q: %w", name, err)
	}
	if len(hits) == 0 {
		logger.Debug("Resolver: no courses indexed, %q unresolved", name)
		return "", fmt.Errorf("course %q: %w", name, domain.ErrNotFound)
	}

	best := hits[0]
	if r.minSimilarity > 0 && best.Similarity() < r.minSimilarity {
		logger.Debug("Resolver: nearest course %q at similarity %.3f is below floor %.3f",
			best.Record.ID, best.Similarity(), r.minSimilarity)
		return "", fmt.Errorf("course %q: %w", name, domain.ErrNotFound)
	}

	title := best.Record.Metadata[domain.FieldTitle]
	if title == "" {
		title = best.Record.ID
	}
	logger.Debug("Resolver: %q -> %q (similarity %.3f)", name, title, best.Similarity())
	return title, nil
}
