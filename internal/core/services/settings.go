package services

import (
	"fmt"
	"os"
	"strconv"

	"github.com/syang620/course-materials-rag-chatbot/internal/core/domain"
	"github.com/syang620/course-materials-rag-chatbot/internal/core/ports/driven"
	"github.com/syang620/course-materials-rag-chatbot/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyChunkSize     = "chunking.size"
	keyChunkOverlap  = "chunking.overlap"
	keyMaxResults    = "search.max_results"
	keyMinSimilarity = "search.min_similarity"
	keyEmbedProvider = "embedding.provider"
	keyEmbedModel    = "embedding.model"
	keyEmbedBaseURL  = "embedding.base_url"
	keyEmbedAPIKey   = "embedding.api_key"
	keyEmbedRPS      = "embedding.requests_per_second"
	keyIndexBackend  = "index.backend"
	keyIndexPath     = "index.path"
	keyDocsPath      = "docs.path"
)

type settingKind int

const (
	kindString settingKind = iota
	kindInt
	kindFloat
)

// settingDef binds a config key to its environment override and its field.
type settingDef struct {
	key    string
	env    string
	kind   settingKind
	secret bool
	set    func(s *domain.AppSettings, raw string) error
	get    func(s *domain.AppSettings) string
}

// settingDefs lists every recognised key in display order.
var settingDefs = []settingDef{
	{
		key: keyChunkSize, env: "CHUNK_SIZE", kind: kindInt,
		set: intField(func(s *domain.AppSettings) *int { return &s.Chunking.Size }),
		get: func(s *domain.AppSettings) string { return strconv.Itoa(s.Chunking.Size) },
	},
	{
		key: keyChunkOverlap, env: "CHUNK_OVERLAP", kind: kindInt,
		set: intField(func(s *domain.AppSettings) *int { return &s.Chunking.Overlap }),
		get: func(s *domain.AppSettings) string { return strconv.Itoa(s.Chunking.Overlap) },
	},
	{
		key: keyMaxResults, env: "MAX_RESULTS", kind: kindInt,
		set: intField(func(s *domain.AppSettings) *int { return &s.Search.MaxResults }),
		get: func(s *domain.AppSettings) string { return strconv.Itoa(s.Search.MaxResults) },
	},
	{
		key: keyMinSimilarity, env: "MIN_SIMILARITY", kind: kindFloat,
		set: floatField(func(s *domain.AppSettings) *float64 { return &s.Search.MinSimilarity }),
		get: func(s *domain.AppSettings) string { return formatFloat(s.Search.MinSimilarity) },
	},
	{
		key: keyEmbedProvider, env: "EMBEDDING_PROVIDER", kind: kindString,
		set: func(s *domain.AppSettings, raw string) error {
			s.Embedding.Provider = domain.EmbeddingProvider(raw)
			return nil
		},
		get: func(s *domain.AppSettings) string { return s.Embedding.Provider.String() },
	},
	{
		key: keyEmbedModel, env: "EMBEDDING_MODEL", kind: kindString,
		set: stringField(func(s *domain.AppSettings) *string { return &s.Embedding.Model }),
		get: func(s *domain.AppSettings) string { return s.Embedding.Model },
	},
	{
		key: keyEmbedBaseURL, env: "EMBEDDING_BASE_URL", kind: kindString,
		set: stringField(func(s *domain.AppSettings) *string { return &s.Embedding.BaseURL }),
		get: func(s *domain.AppSettings) string { return s.Embedding.BaseURL },
	},
	{
		key: keyEmbedAPIKey, env: "OPENAI_API_KEY", kind: kindString, secret: true,
		set: stringField(func(s *domain.AppSettings) *string { return &s.Embedding.APIKey }),
		get: func(s *domain.AppSettings) string { return s.Embedding.APIKey },
	},
	{
		key: keyEmbedRPS, env: "EMBEDDING_RPS", kind: kindFloat,
		set: floatField(func(s *domain.AppSettings) *float64 { return &s.Embedding.RequestsPerSecond }),
		get: func(s *domain.AppSettings) string { return formatFloat(s.Embedding.RequestsPerSecond) },
	},
	{
		key: keyIndexBackend, env: "INDEX_BACKEND", kind: kindString,
		set: func(s *domain.AppSettings, raw string) error {
			s.Index.Backend = domain.IndexBackend(raw)
			return nil
		},
		get: func(s *domain.AppSettings) string { return s.Index.Backend.String() },
	},
	{
		key: keyIndexPath, env: "INDEX_PATH", kind: kindString,
		set: stringField(func(s *domain.AppSettings) *string { return &s.Index.Path }),
		get: func(s *domain.AppSettings) string { return s.Index.Path },
	},
	{
		key: keyDocsPath, env: "DOCS_PATH", kind: kindString,
		set: stringField(func(s *domain.AppSettings) *string { return &s.DocsPath }),
		get: func(s *domain.AppSettings) string { return s.DocsPath },
	},
}

// SettingsService manages application settings.
// Effective values are resolved as defaults, then the config file, then environment variables.
type SettingsService struct {
	configStore driven.ConfigStore
	aiValidator driven.AIConfigValidator
	lookupEnv   func(string) (string, bool)
}

// SettingsOption configures a SettingsService.
type SettingsOption func(*SettingsService)

// WithEnvLookup replaces os.LookupEnv as the source of environment overrides.
func WithEnvLookup(lookup func(string) (string, bool)) SettingsOption {
	return func(s *SettingsService) {
		s.lookupEnv = lookup
	}
}

// NewSettingsService creates a new settings service.
// The aiValidator parameter is optional (can be nil).
func NewSettingsService(
	configStore driven.ConfigStore,
	aiValidator driven.AIConfigValidator,
	opts ...SettingsOption,
) *SettingsService {
	s := &SettingsService{
		configStore: configStore,
		aiValidator: aiValidator,
		lookupEnv:   os.LookupEnv,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get retrieves current application settings.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	settings, _, err := s.resolve()
	if err != nil {
		return nil, err
	}
	return settings, nil
}

// Entries returns every effective setting with its origin.
func (s *SettingsService) Entries() ([]domain.SettingEntry, error) {
	settings, sources, err := s.resolve()
	if err != nil {
		return nil, err
	}

	entries := make([]domain.SettingEntry, len(settingDefs))
	for i, def := range settingDefs {
		entries[i] = domain.SettingEntry{
			Key:    def.key,
			Env:    def.env,
			Value:  def.get(settings),
			Source: sources[def.key],
			Secret: def.secret,
		}
	}
	return entries, nil
}

// resolve layers file values and environment overrides over the defaults.
func (s *SettingsService) resolve() (*domain.AppSettings, map[string]domain.SettingSource, error) {
	settings := domain.DefaultAppSettings()
	sources := make(map[string]domain.SettingSource, len(settingDefs))

	for _, def := range settingDefs {
		sources[def.key] = domain.SettingSourceDefault

		if val, ok := s.configStore.Get(def.key); ok && val != nil {
			if err := def.set(&settings, fmt.Sprint(val)); err != nil {
				return nil, nil, fmt.Errorf("%s in %s: %w", def.key, s.configStore.Path(), err)
			}
			sources[def.key] = domain.SettingSourceFile
		}

		if raw, ok := s.lookupEnv(def.env); ok && raw != "" {
			if err := def.set(&settings, raw); err != nil {
				return nil, nil, fmt.Errorf("%s: %w", def.env, err)
			}
			sources[def.key] = domain.SettingSourceEnv
		}
	}

	return &settings, sources, nil
}

// Save persists application settings.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	for _, def := range settingDefs {
		raw := def.get(settings)
		// Secrets are only written when set, so an env-provided key never lands on disk empty.
		if def.secret && raw == "" {
			continue
		}
		value, err := typedValue(def, raw)
		if err != nil {
			return fmt.Errorf("save %s: %w", def.key, err)
		}
		if err := s.configStore.Set(def.key, value); err != nil {
			return fmt.Errorf("save %s: %w", def.key, err)
		}
	}
	return nil
}

// Set parses and persists a single key.
func (s *SettingsService) Set(key, value string) error {
	def, ok := findSetting(key)
	if !ok {
		return fmt.Errorf("%w: unknown settings key %q", domain.ErrInvalidInput, key)
	}

	// Apply to the current settings so the result is validated as a whole.
	settings, err := s.Get()
	if err != nil {
		return err
	}
	if err := def.set(settings, value); err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	if err := settings.Validate(); err != nil {
		return err
	}

	typed, err := typedValue(def, value)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	if err := s.configStore.Set(key, typed); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// Keys returns every recognised settings key in display order.
func (s *SettingsService) Keys() []string {
	keys := make([]string, len(settingDefs))
	for i, def := range settingDefs {
		keys[i] = def.key
	}
	return keys
}

// Validate checks that the effective settings are usable.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}
	if err := settings.Validate(); err != nil {
		return err
	}
	if settings.Embedding.Provider.RequiresAPIKey() && settings.Embedding.APIKey == "" {
		return fmt.Errorf("%w: embedding provider %s requires an API key (set OPENAI_API_KEY)",
			domain.ErrInvalidInput, settings.Embedding.Provider)
	}
	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// ValidateEmbeddingConfig validates the current embedding configuration by pinging the provider.
func (s *SettingsService) ValidateEmbeddingConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateEmbedding(&settings.Embedding)
}

// Helper functions for parsing and storing setting values.

func findSetting(key string) (settingDef, bool) {
	for _, def := range settingDefs {
		if def.key == key {
			return def, true
		}
	}
	return settingDef{}, false
}

func typedValue(def settingDef, raw string) (any, error) {
	switch def.kind {
	case kindInt:
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not an integer", domain.ErrInvalidInput, raw)
		}
		return n, nil
	case kindFloat:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not a number", domain.ErrInvalidInput, raw)
		}
		return f, nil
	default:
		return raw, nil
	}
}

func intField(field func(*domain.AppSettings) *int) func(*domain.AppSettings, string) error {
	return func(s *domain.AppSettings, raw string) error {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("%w: %q is not an integer", domain.ErrInvalidInput, raw)
		}
		*field(s) = n
		return nil
	}
}

func floatField(field func(*domain.AppSettings) *float64) func(*domain.AppSettings, string) error {
	return func(s *domain.AppSettings, raw string) error {
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return fmt.Errorf("%w: %q is not a number", domain.ErrInvalidInput, raw)
		}
		*field(s) = f
		return nil
	}
}

func stringField(field func(*domain.AppSettings) *string) func(*domain.AppSettings, string) error {
	return func(s *domain.AppSettings, raw string) error {
		*field(s) = raw
		return nil
	}
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
