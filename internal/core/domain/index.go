package domain

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Collection names of the dual index.
const (
	// CollectionCourses holds one identity record per course.
	CollectionCourses = "course_catalog"

	// CollectionPassages holds one record per passage.
	CollectionPassages = "course_content"
)

// Metadata field names.
const (
	FieldTitle        = "title"
	FieldLink         = "link"
	FieldInstructor   = "instructor"
	FieldLessonCount  = "lesson_count"
	FieldLessons      = "lessons"
	FieldCourseTitle  = "course_title"
	FieldLessonNumber = "lesson_number"
	FieldChunkIndex   = "chunk_index"
)

// Metadata is the flat attribute set stored alongside a record.
// Values are compared by exact string match when filtering.
type Metadata map[string]string

// Filter is a conjunction of exact-match constraints over metadata fields.
// A nil or empty filter matches every record.
type Filter map[string]string

// Matches reports whether every constraint in f holds for m.
func (f Filter) Matches(m Metadata) bool {
	for k, v := range f {
		got, ok := m[k]
		if !ok || got != v {
			return false
		}
	}
	return true
}

// Fields returns the constrained field names in sorted order.
func (f Filter) Fields() []string {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Record is one entry of a semantic collection.
type Record struct {
	// ID is the collection-unique key.
	ID string

	// Document is the text that gets embedded.
	Document string

	// Metadata holds the filterable attributes.
	Metadata Metadata
}

// Hit is a query result: a record and its distance to the query.
type Hit struct {
	Record Record

	// Distance is the cosine distance (1 - cosine similarity); closer is smaller.
	Distance float64
}

// Similarity returns the cosine similarity of the hit.
func (h Hit) Similarity() float64 {
	return 1 - h.Distance
}

// LessonInfo is the lesson summary kept on a course identity record.
type LessonInfo struct {
	Number int    `json:"lesson_number"`
	Title  string `json:"lesson_title"`
	Link   string `json:"lesson_link,omitempty"`
}

// CourseInfo is the typed view of a course identity record.
type CourseInfo struct {
	Title       string
	Link        string
	Instructor  string
	LessonCount int
	Lessons     []LessonInfo
}

// Lesson returns the lesson with the given number.
func (c *CourseInfo) Lesson(number int) (LessonInfo, bool) {
	for _, l := range c.Lessons {
		if l.Number == number {
			return l, true
		}
	}
	return LessonInfo{}, false
}

// CourseEmbeddingText returns the text embedded for a course's identity record.
func CourseEmbeddingText(c *Course) string {
	if c.Instructor == "" {
		return c.Title
	}
	return c.Title + " by " + c.Instructor
}

// CourseRecord builds the identity record for a course, keyed by title.
func CourseRecord(c *Course) Record {
	lessons := make([]LessonInfo, len(c.Lessons))
	for i, l := range c.Lessons {
		lessons[i] = LessonInfo{Number: l.Number, Title: l.Title, Link: l.Link}
	}
	// A slice of plain structs always marshals.
	lessonsJSON, _ := json.Marshal(lessons) //nolint:errchkjson

	return Record{
		ID:       c.Title,
		Document: CourseEmbeddingText(c),
		Metadata: Metadata{
			FieldTitle:       c.Title,
			FieldLink:        c.Link,
			FieldInstructor:  c.Instructor,
			FieldLessonCount: strconv.Itoa(len(c.Lessons)),
			FieldLessons:     string(lessonsJSON),
		},
	}
}

// CourseInfoFromRecord decodes an identity record.
func CourseInfoFromRecord(r Record) (*CourseInfo, error) {
	info := &CourseInfo{
		Title:      r.Metadata[FieldTitle],
		Link:       r.Metadata[FieldLink],
		Instructor: r.Metadata[FieldInstructor],
	}
	if info.Title == "" {
		info.Title = r.ID
	}
	if raw := r.Metadata[FieldLessonCount]; raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: lesson_count %q", ErrInvalidInput, raw)
		}
		info.LessonCount = n
	}
	if raw := r.Metadata[FieldLessons]; raw != "" {
		if err := json.Unmarshal([]byte(raw), &info.Lessons); err != nil {
			return nil, fmt.Errorf("%w: lessons: %w", ErrInvalidInput, err)
		}
	}
	return info, nil
}

// PassageRecord builds the passage-collection record for a passage.
func PassageRecord(p Passage) Record {
	return Record{
		ID:       p.ID,
		Document: p.Text,
		Metadata: Metadata{
			FieldCourseTitle:  p.CourseTitle,
			FieldLessonNumber: strconv.Itoa(p.LessonNumber),
			FieldChunkIndex:   strconv.Itoa(p.ChunkIndex),
		},
	}
}

// PassageFromRecord decodes a passage-collection record.
// Content holds the text with the context header removed when present.
func PassageFromRecord(r Record) (Passage, error) {
	lesson, err := strconv.Atoi(r.Metadata[FieldLessonNumber])
	if err != nil {
		return Passage{}, fmt.Errorf("%w: lesson_number %q", ErrInvalidInput, r.Metadata[FieldLessonNumber])
	}
	chunk, err := strconv.Atoi(r.Metadata[FieldChunkIndex])
	if err != nil {
		return Passage{}, fmt.Errorf("%w: chunk_index %q", ErrInvalidInput, r.Metadata[FieldChunkIndex])
	}

	title := r.Metadata[FieldCourseTitle]
	return Passage{
		ID:           r.ID,
		CourseTitle:  title,
		LessonNumber: lesson,
		ChunkIndex:   chunk,
		Content:      strings.TrimPrefix(r.Document, PassageHeader(title, lesson)),
		Text:         r.Document,
	}, nil
}

// PassageFilter builds the metadata filter for an optional course and lesson scope.
func PassageFilter(courseTitle string, lessonNumber *int) Filter {
	f := Filter{}
	if courseTitle != "" {
		f[FieldCourseTitle] = courseTitle
	}
	if lessonNumber != nil {
		f[FieldLessonNumber] = strconv.Itoa(*lessonNumber)
	}
	return f
}
