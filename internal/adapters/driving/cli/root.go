// Package cli implements the courserag command line interface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/syang620/course-materials-rag-chatbot/internal/core/domain"
	"github.com/syang620/course-materials-rag-chatbot/internal/core/ports/driving"
	"github.com/syang620/course-materials-rag-chatbot/internal/logger"
)

// version is set at build time.
var version = "dev"

var (
	verbose   bool
	configDir string
	envFile   string
)

// Services holds the driving ports shared by the commands.
type Services struct {
	Ingest  driving.IngestService
	Search  driving.SearchService
	Catalog driving.CatalogService
	Tools   driving.ToolRegistry

	// Close releases the index backend. Optional.
	Close func() error
}

// BuildOptions controls how services are constructed.
type BuildOptions struct {
	// Rebuild discards the persisted index, including its embedding model stamp.
	Rebuild bool
}

// Factories construct the settings service and the retrieval services.
// Services are built lazily so that settings commands work without an
// embedding provider.
type Factories struct {
	Settings func(configDir string) (driving.SettingsService, error)
	Services func(ctx context.Context, settings *domain.AppSettings, opts BuildOptions) (*Services, error)
}

var (
	factories       Factories
	settingsService driving.SettingsService
	loaded          *Services
)

var rootCmd = &cobra.Command{
	Use:   "courserag",
	Short: "Search and cite course materials",
	Long: `courserag indexes course transcripts and answers scoped questions about them.

Course files are split into passages and stored in a dual index: one
collection of course records used to resolve fuzzy course names, and one
collection of passages searched by semantic similarity.`,
	SilenceUsage:      true,
	PersistentPreRunE: initRoot,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "configuration directory (default ~/.courserag)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before reading settings")
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	version = v
}

// SetFactories sets the constructors used by the commands.
func SetFactories(f Factories) {
	factories = f
}

// Execute runs the root command and releases any services it opened.
func Execute() error {
	defer closeServices()
	return rootCmd.Execute()
}

func initRoot(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)

	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("loading %s: %w", envFile, err)
		}
	}

	if settingsService != nil {
		return nil
	}
	if factories.Settings == nil {
		return errors.New("settings service not configured")
	}

	svc, err := factories.Settings(configDir)
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}
	settingsService = svc
	logger.Debug("settings loaded (config dir %q)", configDir)
	return nil
}

// currentSettings returns the effective settings.
func currentSettings() (*domain.AppSettings, error) {
	if settingsService == nil {
		return nil, errors.New("settings service not configured")
	}
	settings, err := settingsService.Get()
	if err != nil {
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}
	return settings, nil
}

// loadServices builds the retrieval services on first use.
func loadServices(cmd *cobra.Command, opts BuildOptions) (*Services, error) {
	if loaded != nil {
		return loaded, nil
	}
	if factories.Services == nil {
		return nil, errors.New("services not configured")
	}

	settings, err := currentSettings()
	if err != nil {
		return nil, err
	}

	svc, err := factories.Services(commandContext(cmd), settings, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open index: %w", err)
	}
	loaded = svc
	return loaded, nil
}

func closeServices() {
	if loaded == nil || loaded.Close == nil {
		return
	}
	if err := loaded.Close(); err != nil {
		logger.Warn("closing index: %v", err)
	}
	loaded = nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
