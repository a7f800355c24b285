package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/syang620/course-materials-rag-chatbot/internal/core/domain"
	"github.com/syang620/course-materials-rag-chatbot/internal/core/ports/driven"
	"github.com/syang620/course-materials-rag-chatbot/internal/core/ports/driving"
)

// Ensure CatalogService implements the interface.
var _ driving.CatalogService = (*CatalogService)(nil)

// CatalogService reads course identity records.
type CatalogService struct {
	courses  driven.Collection
	resolver driving.CourseResolver
}

// NewCatalogService creates a new catalog service.
func NewCatalogService(courses driven.Collection, resolver driving.CourseResolver) *CatalogService {
	return &CatalogService{
		courses:  courses,
		resolver: resolver,
	}
}

// Analytics returns the course count and titles in insertion order.
func (s *CatalogService) Analytics(ctx context.Context) (*domain.CourseAnalytics, error) {
	courses, err := s.ListCourses(ctx)
	if err != nil {
		return nil, err
	}

	titles := make([]string, len(courses))
	for i, c := range courses {
		titles[i] = c.Title
	}
	return &domain.CourseAnalytics{
		TotalCourses: len(titles),
		CourseTitles: titles,
	}, nil
}

// ListCourses returns every course identity record in insertion order.
func (s *CatalogService) ListCourses(ctx context.Context) ([]domain.CourseInfo, error) {
	records, err := s.courses.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}

	out := make([]domain.CourseInfo, 0, len(records))
	for _, r := range records {
		info, err := domain.CourseInfoFromRecord(r)
		if err != nil {
			return nil, fmt.Errorf("course %q: %w", r.ID, err)
		}
		out = append(out, *info)
	}
	return out, nil
}

// Outline resolves a course name and returns its identity record.
func (s *CatalogService) Outline(ctx context.Context, courseName string) (*domain.CourseInfo, error) {
	title, err := s.resolver.Resolve(ctx, courseName)
	if err != nil {
		return nil, err
	}
	return s.course(ctx, title)
}

// LessonLink returns the link of a lesson, or "" when unknown.
func (s *CatalogService) LessonLink(ctx context.Context, courseTitle string, lessonNumber int) (string, error) {
	info, err := s.course(ctx, courseTitle)
	if errors.Is(err, domain.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	if lesson, ok := info.Lesson(lessonNumber); ok {
		return lesson.Link, nil
	}
	return "", nil
}

func (s *CatalogService) course(ctx context.Context, title string) (*domain.CourseInfo, error) {
	rec, err := s.courses.Get(ctx, title)
	if err != nil {
		return nil, fmt.Errorf("course %q: %w", title, err)
	}
	return domain.CourseInfoFromRecord(*rec)
}
