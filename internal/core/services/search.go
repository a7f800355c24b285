package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/syang620/course-materials-rag-chatbot/internal/core/domain"
	"github.com/syang620/course-materials-rag-chatbot/internal/core/ports/driven"
	"github.com/syang620/course-materials-rag-chatbot/internal/core/ports/driving"
	"github.com/syang620/course-materials-rag-chatbot/internal/logger"
)

// Ensure SearchService implements the interface.
var _ driving.SearchService = (*SearchService)(nil)

// SearchService composes course resolution and the filtered passage query.
type SearchService struct {
	index      driven.DualIndex
	resolver   driving.CourseResolver
	catalog    *CatalogService
	maxResults int
}

// NewSearchService creates a new search service.
// A non-positive maxResults falls back to domain.DefaultMaxResults.
func NewSearchService(index driven.DualIndex, resolver driving.CourseResolver, maxResults int) *SearchService {
	if maxResults <= 0 {
		maxResults = domain.DefaultMaxResults
	}
	return &SearchService{
		index:      index,
		resolver:   resolver,
		catalog:    NewCatalogService(index.Courses(), resolver),
		maxResults: maxResults,
	}
}

// Search resolves the optional course, filters by the optional lesson and
// returns the nearest passages with their citations.
func (s *SearchService) Search(ctx context.Context, req domain.SearchRequest) (*domain.SearchOutcome, error) {
	logger.Section("Search Execution")

	req.Query = strings.TrimSpace(req.Query)
	req.CourseName = strings.TrimSpace(req.CourseName)
	logger.Debug("Query: %q, course: %q, lesson: %s", req.Query, req.CourseName, formatLesson(req.LessonNumber))

	if req.Query == "" {
		return nil, fmt.Errorf("%w: query is required", domain.ErrInvalidInput)
	}
	if req.LessonNumber != nil && *req.LessonNumber < 0 {
		return nil, fmt.Errorf("%w: lesson number must not be negative", domain.ErrInvalidInput)
	}

	outcome := &domain.SearchOutcome{Request: req}

	// Resolve the course first; an unresolvable name never falls through to an unfiltered query.
	if req.CourseName != "" {
		title, err := s.resolver.Resolve(ctx, req.CourseName)
		if errors.Is(err, domain.ErrNotFound) {
			logger.Info("No course matches %q", req.CourseName)
			outcome.Status = domain.SearchStatusCourseNotFound
			return outcome, nil
		}
		if err != nil {
			return nil, fmt.Errorf("search: %w", err)
		}
		outcome.ResolvedCourse = title
	}

	limit := req.Limit
	if limit <= 0 {
		limit = s.maxResults
	}

	filter := domain.PassageFilter(outcome.ResolvedCourse, req.LessonNumber)
	logger.Debug("Filter: %v, k: %d", filter, limit)

	hits, err := s.index.Passages().Query(ctx, req.Query, limit, filter)
	if err != nil {
		logger.Warn("Passage query failed: %v", err)
		return nil, fmt.Errorf("search: %w", err)
	}

	for _, hit := range hits {
		p, err := domain.PassageFromRecord(hit.Record)
		if err != nil {
			logger.Warn("Skipping unreadable passage %s: %v", hit.Record.ID, err)
			continue
		}
		outcome.Hits = append(outcome.Hits, domain.PassageHit{Passage: p, Distance: hit.Distance})
	}

	if len(outcome.Hits) == 0 {
		logger.Info("No passages matched")
		outcome.Status = domain.SearchStatusNoResults
		return outcome, nil
	}

	outcome.Status = domain.SearchStatusFound
	outcome.Sources = s.sources(ctx, outcome.Hits)
	logger.Info("Final results: %d passages, %d sources", len(outcome.Hits), len(outcome.Sources))
	return outcome, nil
}

// sources builds the citation list in order of first appearance.
// Lesson links come from the catalog; lookup failures only drop the link.
func (s *SearchService) sources(ctx context.Context, hits []domain.PassageHit) []domain.Source {
	seen := make(map[string]bool)
	var out []domain.Source

	for _, h := range hits {
		label := domain.CitationLabel(h.Passage.CourseTitle, h.Passage.LessonNumber)
		if seen[label] {
			continue
		}
		seen[label] = true

		link, err := s.catalog.LessonLink(ctx, h.Passage.CourseTitle, h.Passage.LessonNumber)
		if err != nil {
			logger.Warn("Lesson link for %q failed: %v", label, err)
		}
		out = append(out, domain.Source{Label: label, Link: link})
	}
	return out
}

func formatLesson(n *int) string {
	if n == nil {
		return "any"
	}
	return fmt.Sprint(*n)
}
