package domain

// DefaultMaxResults is the default number of passages returned by a search.
const DefaultMaxResults = 5

// SearchRequest is a retrieval request.
type SearchRequest struct {
	// Query is the free-text question.
	Query string

	// CourseName optionally scopes the search; it is fuzzy-resolved to a title.
	CourseName string

	// LessonNumber optionally scopes the search to one lesson number.
	LessonNumber *int

	// Limit overrides the configured maximum result count when positive.
	Limit int
}

// SearchStatus distinguishes the result variants of a search.
type SearchStatus string

// Search outcome variants.
const (
	// SearchStatusFound means at least one passage was returned.
	SearchStatusFound SearchStatus = "found"

	// SearchStatusNoResults means the passage query matched nothing.
	SearchStatusNoResults SearchStatus = "no_results"

	// SearchStatusCourseNotFound means the course name did not resolve.
	// No passage query was run.
	SearchStatusCourseNotFound SearchStatus = "course_not_found"
)

// String returns the string representation.
func (s SearchStatus) String() string {
	return string(s)
}

// PassageHit is a ranked passage.
type PassageHit struct {
	Passage Passage

	// Distance is the cosine distance to the query; smaller is closer.
	Distance float64
}

// Score returns the cosine similarity of the hit.
func (h PassageHit) Score() float64 {
	return 1 - h.Distance
}

// Source is a citation shown to the caller alongside an answer.
type Source struct {
	// Label is "<course_title> - Lesson <n>".
	Label string `json:"label"`

	// Link is the lesson URL when known.
	Link string `json:"link,omitempty"`
}

// SearchOutcome is the result of a retrieval request.
// CourseNotFound and NoResults are ordinary outcomes, not errors.
type SearchOutcome struct {
	// Status is the outcome variant.
	Status SearchStatus

	// Request echoes the request that produced this outcome.
	Request SearchRequest

	// ResolvedCourse is the canonical title when a course name was resolved.
	ResolvedCourse string

	// Hits are ordered closest first.
	Hits []PassageHit

	// Sources are the citation labels in order of first appearance, deduplicated.
	Sources []Source
}

// CourseAnalytics summarises the identity collection.
type CourseAnalytics struct {
	TotalCourses int      `json:"total_courses"`
	CourseTitles []string `json:"course_titles"`
}
