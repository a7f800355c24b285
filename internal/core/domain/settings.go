package domain

import (
	"errors"
	"fmt"
)

const unknownDescription = "Unknown"

// Default chunking configuration, in characters.
const (
	DefaultChunkSize    = 800
	DefaultChunkOverlap = 100
)

// EmbeddingProvider identifies the service that turns text into vectors.
type EmbeddingProvider string

// Available embedding providers.
const (
	// EmbeddingProviderHashing is the built-in deterministic feature-hashing embedder.
	EmbeddingProviderHashing EmbeddingProvider = "hashing"

	// EmbeddingProviderOllama is a local Ollama instance.
	EmbeddingProviderOllama EmbeddingProvider = "ollama"

	// EmbeddingProviderOpenAI is the OpenAI (or compatible) cloud API.
	EmbeddingProviderOpenAI EmbeddingProvider = "openai"
)

// IsValid returns true if the provider is recognised.
func (p EmbeddingProvider) IsValid() bool {
	switch p {
	case EmbeddingProviderHashing, EmbeddingProviderOllama, EmbeddingProviderOpenAI:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p EmbeddingProvider) RequiresAPIKey() bool {
	return p == EmbeddingProviderOpenAI
}

// IsRemote returns true if embedding calls leave the process.
func (p EmbeddingProvider) IsRemote() bool {
	return p == EmbeddingProviderOllama || p == EmbeddingProviderOpenAI
}

// String returns the string representation.
func (p EmbeddingProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p EmbeddingProvider) Description() string {
	switch p {
	case EmbeddingProviderHashing:
		return "Hashing (built-in, offline)"
	case EmbeddingProviderOllama:
		return "Ollama (local)"
	case EmbeddingProviderOpenAI:
		return "OpenAI (cloud)"
	default:
		return unknownDescription
	}
}

// IndexBackend selects the dual index implementation.
type IndexBackend string

// Available index backends.
const (
	// IndexBackendMemory keeps both collections in process memory.
	IndexBackendMemory IndexBackend = "memory"

	// IndexBackendSQLite persists both collections in a SQLite database.
	IndexBackendSQLite IndexBackend = "sqlite"
)

// IsValid returns true if the backend is recognised.
func (b IndexBackend) IsValid() bool {
	return b == IndexBackendMemory || b == IndexBackendSQLite
}

// String returns the string representation.
func (b IndexBackend) String() string {
	return string(b)
}

// ChunkingSettings controls passage production.
type ChunkingSettings struct {
	// Size is the target chunk size in characters.
	Size int

	// Overlap is the target overlap between consecutive chunks in characters.
	Overlap int
}

// SearchSettings controls retrieval.
type SearchSettings struct {
	// MaxResults is the number of passages returned per search.
	MaxResults int

	// MinSimilarity is the resolver's similarity floor.
	// Zero or less disables the floor and accepts the nearest course unconditionally.
	MinSimilarity float64
}

// EmbeddingSettings holds embedding provider configuration.
// The model is fixed at process start.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider EmbeddingProvider

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint.
	BaseURL string

	// APIKey is the API key (for OpenAI).
	APIKey string

	// RequestsPerSecond throttles remote providers; zero means unlimited.
	RequestsPerSecond float64
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// IndexSettings selects and locates the dual index.
type IndexSettings struct {
	// Backend is the index implementation.
	Backend IndexBackend

	// Path is the data directory for persisted backends.
	Path string
}

// AppSettings holds all application settings.
type AppSettings struct {
	Chunking  ChunkingSettings
	Search    SearchSettings
	Embedding EmbeddingSettings
	Index     IndexSettings

	// DocsPath is the folder of course documents ingested at startup.
	DocsPath string
}

// DefaultAppSettings returns settings with sensible defaults.
// The index path is left empty so adapters pick their own default location.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Chunking: ChunkingSettings{
			Size:    DefaultChunkSize,
			Overlap: DefaultChunkOverlap,
		},
		Search: SearchSettings{
			MaxResults: DefaultMaxResults,
		},
		Embedding: EmbeddingSettings{
			Provider: EmbeddingProviderHashing,
		},
		Index: IndexSettings{
			Backend: IndexBackendSQLite,
		},
		DocsPath: "docs",
	}
}

// Validate checks settings for values the pipeline cannot work with.
func (s AppSettings) Validate() error {
	var errs []error
	if s.Chunking.Size <= 0 {
		errs = append(errs, fmt.Errorf("chunking.size must be positive, got %d", s.Chunking.Size))
	}
	if s.Chunking.Overlap < 0 {
		errs = append(errs, fmt.Errorf("chunking.overlap must not be negative, got %d", s.Chunking.Overlap))
	}
	if s.Chunking.Size > 0 && s.Chunking.Overlap >= s.Chunking.Size {
		errs = append(errs, fmt.Errorf("chunking.overlap (%d) must be smaller than chunking.size (%d)",
			s.Chunking.Overlap, s.Chunking.Size))
	}
	if s.Search.MaxResults <= 0 {
		errs = append(errs, fmt.Errorf("search.max_results must be positive, got %d", s.Search.MaxResults))
	}
	if !s.Embedding.Provider.IsValid() {
		errs = append(errs, fmt.Errorf("unknown embedding provider %q", s.Embedding.Provider))
	}
	if s.Embedding.RequestsPerSecond < 0 {
		errs = append(errs, fmt.Errorf("embedding.requests_per_second must not be negative"))
	}
	if !s.Index.Backend.IsValid() {
		errs = append(errs, fmt.Errorf("unknown index backend %q", s.Index.Backend))
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalidInput, errors.Join(errs...))
}

// SettingSource records where an effective setting value came from.
type SettingSource string

// Setting sources, lowest precedence first.
const (
	SettingSourceDefault SettingSource = "default"
	SettingSourceFile    SettingSource = "file"
	SettingSourceEnv     SettingSource = "env"
)

// SettingEntry is one effective setting as shown to the user.
type SettingEntry struct {
	Key    string
	Env    string
	Value  string
	Source SettingSource
	Secret bool
}

// DisplayValue returns the value for display, masking secrets.
func (e SettingEntry) DisplayValue() string {
	if !e.Secret || e.Value == "" {
		return e.Value
	}
	if len(e.Value) <= 8 {
		return "********"
	}
	return e.Value[:4] + "..." + e.Value[len(e.Value)-4:]
}
