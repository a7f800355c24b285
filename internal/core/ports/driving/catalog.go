package driving

import (
	"context"

	"github.com/syang620/course-materials-rag-chatbot/internal/core/domain"
)

// CatalogService answers questions about the set of indexed courses.
type CatalogService interface {
	// Analytics returns the course count and titles in insertion order.
	Analytics(ctx context.Context) (*domain.CourseAnalytics, error)

	// ListCourses returns every course identity record in insertion order.
	ListCourses(ctx context.Context) ([]domain.CourseInfo, error)

	// Outline resolves a course name and returns its identity record.
	// Returns domain.ErrNotFound if the name does not resolve.
	Outline(ctx context.Context, courseName string) (*domain.CourseInfo, error)

	// LessonLink returns the link of a lesson, or "" when unknown.
	LessonLink(ctx context.Context, courseTitle string, lessonNumber int) (string, error)
}
