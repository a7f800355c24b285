package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/syang620/course-materials-rag-chatbot/internal/core/domain"
	"github.com/syang620/course-materials-rag-chatbot/internal/core/services"
)

var coursesCmd = &cobra.Command{
	Use:   "courses",
	Short: "List indexed courses",
	RunE:  runCourses,
}

var outlineCmd = &cobra.Command{
	Use:   "outline [course]",
	Short: "Show a course outline",
	Long: `Shows the title, link, instructor and lesson list of a course.
The course name may be partial or misspelled.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runOutline,
}

func init() {
	rootCmd.AddCommand(coursesCmd)
	rootCmd.AddCommand(outlineCmd)
}

func runCourses(cmd *cobra.Command, _ []string) error {
	svc, err := loadServices(cmd, BuildOptions{})
	if err != nil {
		return err
	}
	if svc.Catalog == nil {
		return errors.New("catalog service not configured")
	}

	courses, err := svc.Catalog.ListCourses(commandContext(cmd))
	if err != nil {
		return fmt.Errorf("failed to list courses: %w", err)
	}

	if len(courses) == 0 {
		cmd.Println("No courses indexed. Run 'courserag ingest' first.")
		return nil
	}

	cmd.Printf("Courses (%d):\n", len(courses))
	for i := range courses {
		c := &courses[i]
		line := fmt.Sprintf("  %s  %d lessons", c.Title, c.LessonCount)
		if c.Instructor != "" {
			line += ", " + c.Instructor
		}
		cmd.Println(line)
	}
	return nil
}

func runOutline(cmd *cobra.Command, args []string) error {
	svc, err := loadServices(cmd, BuildOptions{})
	if err != nil {
		return err
	}
	if svc.Catalog == nil {
		return errors.New("catalog service not configured")
	}

	name := strings.Join(args, " ")
	info, err := svc.Catalog.Outline(commandContext(cmd), name)
	if errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("no course found matching '%s': %w", name, err)
	}
	if err != nil {
		return fmt.Errorf("failed to get outline: %w", err)
	}

	cmd.Println(services.FormatOutline(info))
	return nil
}
