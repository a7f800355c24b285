package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/syang620/course-materials-rag-chatbot/internal/connectors/filesystem"
	"github.com/syang620/course-materials-rag-chatbot/internal/core/domain"
)

var watchInitial bool

var watchCmd = &cobra.Command{
	Use:   "watch [folder]",
	Short: "Ingest course files as they are added",
	Long: `Watches a folder and ingests course files when they are created or
written. If no folder is given, the configured docs.path is used.

Only files directly inside the folder are watched. Press Ctrl+C to stop.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().BoolVar(&watchInitial, "initial", true, "ingest existing files before watching")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	dir, err := docsFolder(args)
	if err != nil {
		return err
	}

	svc, err := loadServices(cmd, BuildOptions{})
	if err != nil {
		return err
	}
	if svc.Ingest == nil {
		return errors.New("ingest service not configured")
	}

	ctx, stop := signal.NotifyContext(commandContext(cmd), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if watchInitial {
		summary, err := svc.Ingest.IngestFolder(ctx, dir, domain.IngestOptions{})
		if err != nil {
			return fmt.Errorf("ingest failed: %w", err)
		}
		printIngestSummary(cmd, summary)
	}

	cmd.Printf("Watching %s (Ctrl+C to stop)\n", dir)
	w := filesystem.NewWatcher(dir, svc.Ingest,
		filesystem.WithResultHandler(resultPrinter(cmd.OutOrStdout())),
	)
	return w.Run(ctx)
}

// resultPrinter reports watcher ingestions to out.
func resultPrinter(out io.Writer) func(filesystem.Result) {
	return func(r filesystem.Result) {
		switch {
		case r.Err != nil:
			fmt.Fprintf(out, "  failed     %s: %v\n", r.Path, r.Err)
		case r.Report.Status == domain.IngestStatusDuplicate:
			fmt.Fprintf(out, "  duplicate  %s (%s)\n", r.Report.CourseTitle, r.Path)
		default:
			fmt.Fprintf(out, "  added      %s: %d lessons, %d passages\n",
				r.Report.CourseTitle, r.Report.LessonCount, r.Report.PassageCount)
		}
	}
}

// startBackground ingests the docs folder and optionally watches it.
// Output goes to out; errors are reported there and never stop the caller.
// The returned function waits for the watcher to exit after ctx is cancelled.
func startBackground(ctx context.Context, svc *Services, dir string, ingest, watch bool, out io.Writer) func() {
	done := make(chan struct{})
	if dir == "" || svc.Ingest == nil || (!ingest && !watch) {
		close(done)
		return func() { <-done }
	}

	if ingest {
		summary, err := svc.Ingest.IngestFolder(ctx, dir, domain.IngestOptions{})
		if err != nil {
			fmt.Fprintf(out, "ingest of %s failed: %v\n", dir, err)
		} else {
			fmt.Fprintf(out, "Loaded %d courses (%d passages) from %s\n",
				summary.CoursesAdded, summary.PassagesAdded, dir)
		}
	}

	if !watch {
		close(done)
		return func() { <-done }
	}

	w := filesystem.NewWatcher(dir, svc.Ingest, filesystem.WithResultHandler(resultPrinter(out)))
	go func() {
		defer close(done)
		if err := w.Run(ctx); err != nil {
			fmt.Fprintf(out, "watcher stopped: %v\n", err)
		}
	}()
	return func() { <-done }
}
