package domain

// IngestStatus is the per-file outcome of ingestion.
type IngestStatus string

// Ingestion outcomes.
const (
	// IngestStatusAdded means a new course and its passages were inserted.
	IngestStatusAdded IngestStatus = "added"

	// IngestStatusDuplicate means a course with the same title already existed.
	// Nothing was inserted.
	IngestStatusDuplicate IngestStatus = "duplicate"
)

// FileReport describes the ingestion of one course file.
type FileReport struct {
	Path         string
	Status       IngestStatus
	CourseTitle  string
	LessonCount  int
	PassageCount int
}

// IngestOptions controls a folder ingestion run.
type IngestOptions struct {
	// Rebuild clears both collections before ingesting.
	Rebuild bool
}

// IngestSummary aggregates a folder ingestion run.
type IngestSummary struct {
	// Files holds one report per successfully processed file, in processing order.
	Files []FileReport

	// CoursesAdded counts new identity records.
	CoursesAdded int

	// PassagesAdded counts new passage records.
	PassagesAdded int

	// Duplicates counts files skipped because their title was already indexed.
	Duplicates int

	// Failed holds per-file parse and type failures. They never abort the run.
	Failed []*DocumentError
}
