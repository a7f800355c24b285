package driven

import "github.com/syang620/course-materials-rag-chatbot/internal/core/domain"

// CourseParser turns normalised course text into a Course.
type CourseParser interface {
	// Parse reads the header block and lesson blocks.
	// A missing course title yields an error wrapping domain.ErrMalformedDocument.
	Parse(text string) (*domain.Course, error)
}

// Chunker splits lesson text into context-tagged passages.
type Chunker interface {
	// Name returns the chunker name for logging.
	Name() string

	// Chunk returns the ordered passages of one lesson.
	// Empty lesson text yields no passages.
	Chunk(courseTitle string, lesson domain.Lesson) []domain.Passage
}
