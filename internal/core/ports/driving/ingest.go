package driving

import (
	"context"

	"github.com/syang620/course-materials-rag-chatbot/internal/core/domain"
)

// IngestService loads course files into the dual index.
type IngestService interface {
	// IngestFile normalises, parses, chunks and indexes one file.
	// A file whose course title is already indexed is skipped with status duplicate.
	// Parse and type failures are returned as *domain.DocumentError.
	IngestFile(ctx context.Context, path string) (*domain.FileReport, error)

	// IngestFolder ingests every supported file directly inside dir, in name order.
	// Per-file failures are collected in the summary; backend failures abort the run.
	IngestFolder(ctx context.Context, dir string, opts domain.IngestOptions) (*domain.IngestSummary, error)

	// SupportedExtensions returns the file extensions that can be ingested.
	SupportedExtensions() []string
}
