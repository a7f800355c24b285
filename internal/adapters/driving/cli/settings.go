package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/syang620/course-materials-rag-chatbot/internal/core/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure chunking, search, embedding and index settings.

Settings are resolved from built-in defaults, then the config file, then
environment variables. A .env file in the working directory is loaded first.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Set a setting in the config file",
	Long: `Set a single setting in the config file.

If the value is omitted it is read from standard input. Secret values are
read without echo when standard input is a terminal. Flags must come
before the key; everything after it is taken literally.

Examples:
  courserag settings set chunking.size 1000
  courserag settings set embedding.provider openai
  courserag settings set search.min_similarity -0.2
  courserag settings set embedding.api_key`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runSettingsSet,
}

var settingsKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List recognised setting keys",
	RunE:  runSettingsKeys,
}

var settingsValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate settings and check the embedding provider",
	RunE:  runSettingsValidate,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	// Flags end at the key so negative values such as -1 are read as values.
	settingsSetCmd.Flags().SetInterspersed(false)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsKeysCmd)
	settingsCmd.AddCommand(settingsValidateCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	entries, err := settingsService.Entries()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	width := 0
	for _, e := range entries {
		width = max(width, len(e.Key))
	}
	for _, e := range entries {
		value := e.DisplayValue()
		if value == "" {
			value = "(not set)"
		}
		cmd.Printf("  %-*s  %s  %s\n", width, e.Key, value, settingOrigin(e))
	}
	cmd.Println()

	if err := settingsService.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
		cmd.Println("Run 'courserag settings set <key> <value>' to fix configuration issues.")
	} else {
		cmd.Println("Configuration is valid.")
	}
	return nil
}

func settingOrigin(e domain.SettingEntry) string {
	if e.Source == domain.SettingSourceEnv {
		return fmt.Sprintf("(env %s)", e.Env)
	}
	return fmt.Sprintf("(%s)", e.Source)
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	key := args[0]
	entry, ok := findEntry(key)
	if !ok {
		return fmt.Errorf("%w: unknown settings key %q (see 'courserag settings keys')", domain.ErrInvalidInput, key)
	}

	var value string
	if len(args) == 2 {
		value = args[1]
	} else {
		cmd.Printf("Enter %s: ", key)
		value = readValue(cmd.InOrStdin(), entry.Secret)
		cmd.Println()
	}

	if err := settingsService.Set(key, value); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}

	entry.Value = value
	cmd.Printf("Set %s to %s\n", key, entry.DisplayValue())
	if entry.Source == domain.SettingSourceEnv {
		cmd.Printf("Note: %s in the environment overrides this value.\n", entry.Env)
	}
	return nil
}

func findEntry(key string) (domain.SettingEntry, bool) {
	entries, err := settingsService.Entries()
	if err != nil {
		return domain.SettingEntry{}, false
	}
	for _, e := range entries {
		if e.Key == key {
			return e, true
		}
	}
	return domain.SettingEntry{}, false
}

func runSettingsKeys(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	for _, key := range settingsService.Keys() {
		cmd.Println(key)
	}
	return nil
}

func runSettingsValidate(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	if err := settingsService.Validate(); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}
	cmd.Println("Configuration is valid.")

	if err := settingsService.ValidateEmbeddingConfig(); err != nil {
		return fmt.Errorf("embedding provider check failed: %w", err)
	}
	cmd.Println("Embedding provider is reachable.")
	return nil
}

// readValue reads one line, without echo for secrets on a terminal.
//
//nolint:errcheck // CLI helper, error ignored for UX
func readValue(in io.Reader, secret bool) string {
	if f, ok := in.(*os.File); ok && secret && term.IsTerminal(int(f.Fd())) {
		password, err := term.ReadPassword(int(f.Fd()))
		if err == nil {
			return strings.TrimSpace(string(password))
		}
	}
	reader := bufio.NewReader(in)
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}
