package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/syang620/course-materials-rag-chatbot/internal/core/domain"
	"github.com/syang620/course-materials-rag-chatbot/internal/core/services"
)

var (
	searchCourse string
	searchLesson int
	searchLimit  int
	searchJSON   bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search course passages",
	Long: `Finds the passages closest in meaning to the query.

Use --course to scope the search to one course. The name may be partial or
misspelled; it is resolved to the nearest indexed course title. Use --lesson
to restrict results to a single lesson.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().StringVarP(&searchCourse, "course", "c", "", "course name (partial match)")
	searchCmd.Flags().IntVarP(&searchLesson, "lesson", "l", -1, "lesson number filter")
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 0, "maximum number of passages (0 = configured default)")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	svc, err := loadServices(cmd, BuildOptions{})
	if err != nil {
		return err
	}
	if svc.Search == nil {
		return errors.New("search service not configured")
	}

	req := domain.SearchRequest{
		Query:      strings.Join(args, " "),
		CourseName: searchCourse,
		Limit:      searchLimit,
	}
	// Negative values are passed on so the service can reject them.
	if cmd.Flags().Changed("lesson") {
		lesson := searchLesson
		req.LessonNumber = &lesson
	}

	outcome, err := svc.Search.Search(commandContext(cmd), req)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return outputSearchJSON(cmd, outcome)
	}
	outputSearchText(cmd, outcome)
	return nil
}

type searchHitJSON struct {
	Course  string  `json:"course"`
	Lesson  int     `json:"lesson"`
	Chunk   int     `json:"chunk"`
	Score   float64 `json:"score"`
	Content string  `json:"content"`
}

type searchOutputJSON struct {
	Status  string          `json:"status"`
	Course  string          `json:"course,omitempty"`
	Results []searchHitJSON `json:"results"`
	Sources []domain.Source `json:"sources"`
}

func outputSearchJSON(cmd *cobra.Command, outcome *domain.SearchOutcome) error {
	out := searchOutputJSON{
		Status:  outcome.Status.String(),
		Course:  outcome.ResolvedCourse,
		Results: make([]searchHitJSON, 0, len(outcome.Hits)),
		Sources: outcome.Sources,
	}
	if out.Sources == nil {
		out.Sources = []domain.Source{}
	}
	for _, hit := range outcome.Hits {
		out.Results = append(out.Results, searchHitJSON{
			Course:  hit.Passage.CourseTitle,
			Lesson:  hit.Passage.LessonNumber,
			Chunk:   hit.Passage.ChunkIndex,
			Score:   hit.Score(),
			Content: hit.Passage.Content,
		})
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputSearchText(cmd *cobra.Command, outcome *domain.SearchOutcome) {
	cmd.Println(services.FormatOutcome(outcome))

	if len(outcome.Sources) == 0 {
		return
	}
	cmd.Println()
	cmd.Println("Sources:")
	for _, src := range outcome.Sources {
		if src.Link != "" {
			cmd.Printf("  - %s (%s)\n", src.Label, src.Link)
		} else {
			cmd.Printf("  - %s\n", src.Label)
		}
	}
}
