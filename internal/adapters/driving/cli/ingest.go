package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/syang620/course-materials-rag-chatbot/internal/core/domain"
)

var ingestRebuild bool

var ingestCmd = &cobra.Command{
	Use:   "ingest [folder]",
	Short: "Load course documents into the index",
	Long: `Parses every supported course file directly inside a folder and adds it to
the index. If no folder is given, the configured docs.path is used.

A course whose title is already indexed is skipped. Files that cannot be
parsed are reported and do not stop the run.

Use --rebuild to clear the index first.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().BoolVar(&ingestRebuild, "rebuild", false, "clear the index before ingesting")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	dir, err := docsFolder(args)
	if err != nil {
		return err
	}

	svc, err := loadServices(cmd, BuildOptions{Rebuild: ingestRebuild})
	if err != nil {
		return err
	}
	if svc.Ingest == nil {
		return errors.New("ingest service not configured")
	}

	if ingestRebuild {
		cmd.Printf("Rebuilding index from %s...\n", dir)
	} else {
		cmd.Printf("Ingesting %s...\n", dir)
	}

	summary, err := svc.Ingest.IngestFolder(commandContext(cmd), dir, domain.IngestOptions{Rebuild: ingestRebuild})
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}

	printIngestSummary(cmd, summary)
	return nil
}

// docsFolder returns the folder argument or the configured docs path.
func docsFolder(args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	settings, err := currentSettings()
	if err != nil {
		return "", err
	}
	if settings.DocsPath == "" {
		return "", fmt.Errorf("%w: no folder given and docs.path is not set", domain.ErrInvalidInput)
	}
	return settings.DocsPath, nil
}

func printIngestSummary(cmd *cobra.Command, summary *domain.IngestSummary) {
	for i := range summary.Files {
		printFileReport(cmd, &summary.Files[i])
	}
	for _, failed := range summary.Failed {
		cmd.Printf("  failed     %s: %s\n", failed.Path, failed.Reason)
	}

	cmd.Println()
	cmd.Printf("Added %d courses (%d passages), skipped %d duplicates, %d failed.\n",
		summary.CoursesAdded, summary.PassagesAdded, summary.Duplicates, len(summary.Failed))
}

func printFileReport(cmd *cobra.Command, report *domain.FileReport) {
	switch report.Status {
	case domain.IngestStatusDuplicate:
		cmd.Printf("  duplicate  %s (%s)\n", report.CourseTitle, report.Path)
	default:
		cmd.Printf("  added      %s: %d lessons, %d passages\n",
			report.CourseTitle, report.LessonCount, report.PassageCount)
	}
}
