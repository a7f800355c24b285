package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates a file type no normaliser handles.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrMalformedDocument indicates a course document could not be parsed.
	// The file is skipped; ingestion of other files continues.
	ErrMalformedDocument = errors.New("malformed document")

	// ErrBackendUnavailable indicates the embedding or index backend failed.
	// This is the only query-time condition surfaced as a hard error.
	ErrBackendUnavailable = errors.New("backend unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrModelMismatch indicates a persisted index was built with a different embedding model.
	ErrModelMismatch = errors.New("embedding model mismatch")
)

// DocumentError reports a per-file ingestion failure.
type DocumentError struct {
	// Path is the file that failed.
	Path string

	// Reason describes what was wrong with the file.
	Reason string

	// Err is the classification, usually ErrMalformedDocument or ErrUnsupportedType.
	Err error
}

// Error implements the error interface.
func (e *DocumentError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%v: %s", e.Err, e.Reason)
	}
	return fmt.Sprintf("%s: %v: %s", e.Path, e.Err, e.Reason)
}

// Unwrap returns the classification error.
func (e *DocumentError) Unwrap() error {
	return e.Err
}

// Malformed builds a DocumentError classified as ErrMalformedDocument.
func Malformed(reason string) *DocumentError {
	return &DocumentError{Reason: reason, Err: ErrMalformedDocument}
}
