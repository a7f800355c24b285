package driving

import "github.com/syang620/course-materials-rag-chatbot/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current settings: defaults, overridden by the config file,
	// overridden by environment variables.
	Get() (*domain.AppSettings, error)

	// Save persists application settings.
	Save(settings *domain.AppSettings) error

	// Set parses and persists a single dot-separated key.
	Set(key, value string) error

	// Keys returns every recognised settings key in display order.
	Keys() []string

	// Entries returns every effective setting with its origin, in display order.
	Entries() ([]domain.SettingEntry, error)

	// Validate checks if current settings are usable.
	Validate() error

	// GetDefaults returns default settings.
	GetDefaults() domain.AppSettings

	// ValidateEmbeddingConfig validates the current embedding configuration by pinging the provider.
	ValidateEmbeddingConfig() error
}
