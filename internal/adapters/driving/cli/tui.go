package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/syang620/course-materials-rag-chatbot/internal/adapters/driving/tui"
)

// errNotTerminal is returned when the TUI is started without a terminal.
var errNotTerminal = errors.New("the TUI requires an interactive terminal")

var (
	tuiIngest bool
	tuiWatch  bool
)

// tuiCmd represents the tui command.
var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive terminal UI",
	Long: `Launch the interactive terminal user interface for courserag.

The TUI searches course passages, browses indexed courses and outlines,
and edits settings.

Queries may be scoped with directives:
  course:<name>  - Resolve and search within one course
  lesson:<n>     - Restrict to one lesson

Controls:
  ↑/k, ↓/j - Navigate results
  Enter    - Search / Select
  o        - Outline of the selected course
  Esc      - Back / Cancel
  ?        - Toggle help
  q        - Quit`,
	RunE: runTUI,
}

func init() {
	tuiCmd.Flags().BoolVar(&tuiIngest, "ingest", false, "ingest docs.path before starting")
	tuiCmd.Flags().BoolVar(&tuiWatch, "watch", false, "ingest files added to docs.path while running")
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, _ []string) (err error) {
	// Add panic recovery to get stack traces
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in TUI: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
			err = fmt.Errorf("TUI panic: %v", r)
		}
	}()

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return errNotTerminal
	}

	svc, err := loadServices(cmd, BuildOptions{})
	if err != nil {
		return err
	}

	app, err := newTUIApp(svc)
	if err != nil {
		return err
	}

	settings, err := currentSettings()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(commandContext(cmd))
	defer cancel()

	// The alt screen owns the terminal; watcher output would corrupt it.
	if tuiIngest {
		cmd.Printf("Ingesting %s...\n", settings.DocsPath)
	}
	wait := startBackground(ctx, svc, settings.DocsPath, tuiIngest, tuiWatch, io.Discard)
	defer wait()
	defer cancel()

	app.WithContext(ctx)
	if err := app.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}

func newTUIApp(svc *Services) (*tui.App, error) {
	ports := tui.NewPorts(svc.Search, svc.Catalog, settingsService)
	app, err := tui.NewApp(ports)
	if err != nil {
		return nil, fmt.Errorf("failed to create TUI: %w", err)
	}
	return app, nil
}
