package domain

import (
	"fmt"
	"sort"
	"strings"
)

// Course is the identity record of one ingested course document.
// The title is the sole deduplication key.
type Course struct {
	// Title is the unique course name.
	Title string

	// Link is the optional course URL.
	Link string

	// Instructor is the optional instructor name.
	Instructor string

	// Lessons are ordered by ascending lesson number.
	Lessons []Lesson
}

// Lesson is a numbered subdivision of a course.
type Lesson struct {
	// Number is unique within the course and defines ordering.
	Number int

	// Title is the lesson heading.
	Title string

	// Link is the optional lesson URL.
	Link string

	// Content is the lesson body text.
	Content string
}

// NewCourse validates and builds a course.
// Lessons are sorted by number; duplicate or negative numbers are rejected.
func NewCourse(title, link, instructor string, lessons []Lesson) (*Course, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, Malformed("missing course title")
	}

	sorted := make([]Lesson, len(lessons))
	copy(sorted, lessons)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Number < sorted[j].Number
	})

	for i := range sorted {
		if sorted[i].Number < 0 {
			return nil, Malformed(fmt.Sprintf("negative lesson number %d", sorted[i].Number))
		}
		if i > 0 && sorted[i].Number == sorted[i-1].Number {
			return nil, Malformed(fmt.Sprintf("duplicate lesson number %d", sorted[i].Number))
		}
	}

	return &Course{
		Title:      title,
		Link:       strings.TrimSpace(link),
		Instructor: strings.TrimSpace(instructor),
		Lessons:    sorted,
	}, nil
}

// Lesson returns the lesson with the given number.
func (c *Course) Lesson(number int) (Lesson, bool) {
	for _, l := range c.Lessons {
		if l.Number == number {
			return l, true
		}
	}
	return Lesson{}, false
}

// FirstUnusedLessonNumber returns the smallest non-negative number not taken by a lesson.
func FirstUnusedLessonNumber(lessons []Lesson) int {
	used := make(map[int]bool, len(lessons))
	for _, l := range lessons {
		used[l.Number] = true
	}
	n := 0
	for used[n] {
		n++
	}
	return n
}

// Passage is a contiguous span of lesson text carrying denormalised context.
// Passages are never mutated after creation.
type Passage struct {
	// ID is derived from (CourseTitle, LessonNumber, ChunkIndex).
	ID string

	// CourseTitle is the owning course.
	CourseTitle string

	// LessonNumber is the owning lesson.
	LessonNumber int

	// ChunkIndex is the 0-based position within the lesson.
	ChunkIndex int

	// Content is the raw span of lesson text, without header.
	Content string

	// Start and End are byte offsets of Content within the lesson text.
	Start int
	End   int

	// Text is the context header followed by Content.
	// This is what gets embedded and returned.
	Text string
}

// PassageHeader returns the context header prefixed to every passage of a lesson.
func PassageHeader(courseTitle string, lessonNumber int) string {
	return fmt.Sprintf("Course %s Lesson %d content: ", courseTitle, lessonNumber)
}

// CitationLabel returns the "<course> - Lesson <n>" label used for sources and formatting.
func CitationLabel(courseTitle string, lessonNumber int) string {
	return fmt.Sprintf("%s - Lesson %d", courseTitle, lessonNumber)
}
