// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - EmbeddingService: Turns text into vectors (hashing, Ollama, OpenAI)
//   - DualIndex / Collection: The identity and passage collections (memory, SQLite)
//   - Normaliser: Extracts plain text from a course file (txt, md, pdf, docx, html)
//   - NormaliserRegistry: Selects a normaliser by file extension
//   - CourseParser: Turns normalised text into a Course
//   - Chunker: Splits lesson text into passages
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
//   - AIConfigValidator: Pings an embedding provider before settings are saved.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or normaliser package
package driven
