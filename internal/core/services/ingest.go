package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/syang620/course-materials-rag-chatbot/internal/core/domain"
	"github.com/syang620/course-materials-rag-chatbot/internal/core/ports/driven"
	"github.com/syang620/course-materials-rag-chatbot/internal/core/ports/driving"
	"github.com/syang620/course-materials-rag-chatbot/internal/logger"
)

// Ensure IngestService implements the interface.
var _ driving.IngestService = (*IngestService)(nil)

// IngestService loads course files into the dual index.
//
// Passages are written before the identity record. The identity record is
// what marks a course as ingested, so an interrupted run is retried in full
// on the next ingest and already-written passages are skipped.
type IngestService struct {
	normalisers driven.NormaliserRegistry
	parser      driven.CourseParser
	chunker     driven.Chunker
	index       driven.DualIndex
}

// NewIngestService creates a new ingestion service.
func NewIngestService(
	normalisers driven.NormaliserRegistry,
	parser driven.CourseParser,
	chunker driven.Chunker,
	index driven.DualIndex,
) *IngestService {
	return &IngestService{
		normalisers: normalisers,
		parser:      parser,
		chunker:     chunker,
		index:       index,
	}
}

// SupportedExtensions returns the file extensions that can be ingested.
func (s *IngestService) SupportedExtensions() []string {
	return s.normalisers.SupportedExtensions()
}

// IngestFile normalises, parses, chunks and indexes one file.
func (s *IngestService) IngestFile(ctx context.Context, path string) (*domain.FileReport, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if !s.normalisers.Supports(ext) {
		return nil, &domain.DocumentError{
			Path:   path,
			Reason: fmt.Sprintf("no normaliser for %q files", ext),
			Err:    domain.ErrUnsupportedType,
		}
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, &domain.DocumentError{Path: path, Reason: err.Error(), Err: domain.ErrInvalidInput}
	}

	text, err := s.normalisers.Normalise(ctx, &domain.RawDocument{
		Path:      path,
		Extension: ext,
		Content:   content,
	})
	if err != nil {
		return nil, documentError(path, err)
	}

	course, err := s.parser.Parse(text)
	if err != nil {
		return nil, documentError(path, err)
	}

	report := &domain.FileReport{
		Path:        path,
		CourseTitle: course.Title,
		LessonCount: len(course.Lessons),
	}

	// Titles are the dedup key; an existing identity record means the file was ingested already.
	if _, err := s.index.Courses().Get(ctx, course.Title); err == nil {
		logger.Info("Skipping %s: course %q already indexed", filepath.Base(path), course.Title)
		report.Status = domain.IngestStatusDuplicate
		return report, nil
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("checking course %q: %w", course.Title, err)
	}

	// One embedding batch per lesson; passages left by an interrupted run are skipped.
	for _, lesson := range course.Lessons {
		passages := s.chunker.Chunk(course.Title, lesson)
		if len(passages) == 0 {
			continue
		}
		records := make([]domain.Record, len(passages))
		for i, p := range passages {
			records[i] = domain.PassageRecord(p)
		}
		added, err := s.index.Passages().AddMany(ctx, records)
		if err != nil {
			return nil, fmt.Errorf("indexing lesson %d: %w", lesson.Number, err)
		}
		if skipped := len(records) - added; skipped > 0 {
			logger.Debug("Lesson %d: %d passages already indexed", lesson.Number, skipped)
		}
		report.PassageCount += added
	}

	if err := s.index.Courses().Add(ctx, domain.CourseRecord(course)); err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			report.Status = domain.IngestStatusDuplicate
			return report, nil
		}
		return nil, fmt.Errorf("indexing course %q: %w", course.Title, err)
	}

	report.Status = domain.IngestStatusAdded
	logger.Info("Added %q from %s: %d lessons, %d passages (%s)",
		course.Title, filepath.Base(path), report.LessonCount, report.PassageCount, s.chunker.Name())
	return report, nil
}

// IngestFolder ingests every file directly inside dir, in name order.
func (s *IngestService) IngestFolder(
	ctx context.Context, dir string, opts domain.IngestOptions,
) (*domain.IngestSummary, error) {
	logger.Section("Ingestion")

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading folder %s: %w", dir, err)
	}

	if opts.Rebuild {
		logger.Info("Rebuilding index: clearing both collections")
		if err := s.index.Reset(ctx); err != nil {
			return nil, fmt.Errorf("rebuild: %w", err)
		}
	}

	summary := &domain.IngestSummary{}
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		path := filepath.Join(dir, entry.Name())
		report, err := s.IngestFile(ctx, path)
		if err != nil {
			var docErr *domain.DocumentError
			if errors.As(err, &docErr) {
				logger.Warn("Skipping %s: %v", entry.Name(), docErr)
				summary.Failed = append(summary.Failed, docErr)
				continue
			}
			return summary, err
		}

		summary.Files = append(summary.Files, *report)
		switch report.Status {
		case domain.IngestStatusAdded:
			summary.CoursesAdded++
		case domain.IngestStatusDuplicate:
			summary.Duplicates++
		}
		summary.PassagesAdded += report.PassageCount
	}

	logger.Info("Ingestion complete: %d courses added, %d passages, %d duplicates, %d failed",
		summary.CoursesAdded, summary.PassagesAdded, summary.Duplicates, len(summary.Failed))
	return summary, nil
}

// documentError attaches the path to a per-file failure.
// Errors that are not document-level are returned unchanged.
func documentError(path string, err error) error {
	var docErr *domain.DocumentError
	if errors.As(err, &docErr) {
		out := *docErr
		out.Path = path
		return &out
	}
	if errors.Is(err, domain.ErrUnsupportedType) || errors.Is(err, domain.ErrMalformedDocument) ||
		errors.Is(err, domain.ErrInvalidInput) {
		return &domain.DocumentError{Path: path, Reason: err.Error(), Err: classify(err)}
	}
	return err
}

func classify(err error) error {
	switch {
	case errors.Is(err, domain.ErrUnsupportedType):
		return domain.ErrUnsupportedType
	case errors.Is(err, domain.ErrMalformedDocument):
		return domain.ErrMalformedDocument
	default:
		return domain.ErrInvalidInput
	}
}
