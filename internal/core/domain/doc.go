// Package domain defines the core business entities for the course assistant.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Course: A parsed course document with its ordered lessons
//   - Lesson: A numbered subdivision of a course
//   - Passage: A context-tagged chunk of lesson text, the retrieval unit
//   - Record: An entry in one of the two semantic collections
//   - SearchOutcome: The result variants of a retrieval request
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
