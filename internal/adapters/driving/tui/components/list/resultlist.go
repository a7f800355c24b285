// Package list provides list display components for the TUI.
package list

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/syang620/course-materials-rag-chatbot/internal/adapters/driving/tui/styles"
	"github.com/syang620/course-materials-rag-chatbot/internal/core/domain"
)

// ResultList displays retrieved passages in a navigable list.
type ResultList struct {
	hits     []domain.PassageHit
	selected int
	styles   *styles.Styles
	width    int
	height   int
}

// NewResultList creates a new result list component.
func NewResultList(s *styles.Styles) *ResultList {
	if s == nil {
		s = styles.DefaultStyles()
	}

	return &ResultList{
		styles: s,
		width:  80,
		height: 10,
	}
}

// Init initialises the result list.
func (r *ResultList) Init() tea.Cmd {
	return nil
}

// Update handles list navigation messages.
func (r *ResultList) Update(msg tea.Msg) (*ResultList, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "up", "k":
			r.MoveUp()
		case "down", "j":
			r.MoveDown()
		}
	}
	return r, nil
}

// View renders the result list.
func (r *ResultList) View() string {
	if len(r.hits) == 0 {
		return r.styles.Muted.Render("No passages")
	}

	lines := make([]string, 0, len(r.hits)+2)
	lines = append(lines, r.styles.Label.Render(fmt.Sprintf("Passages (%d)", len(r.hits))), "")

	// Each hit renders as a label line and a preview line.
	visible := (r.height - 2) / 2
	if visible < 1 {
		visible = 1
	}

	start := 0
	if r.selected >= visible {
		start = r.selected - visible + 1
	}
	end := start + visible
	if end > len(r.hits) {
		end = len(r.hits)
	}

	for i := start; i < end; i++ {
		lines = append(lines, r.renderHit(i, &r.hits[i]))
	}

	return strings.Join(lines, "\n")
}

func (r *ResultList) renderHit(index int, hit *domain.PassageHit) string {
	indicator := "  "
	if index == r.selected {
		indicator = "> "
	}

	label := truncate(HitLabel(hit), max(r.width-12, 10))
	score := fmt.Sprintf("%.3f", hit.Score())

	var labelLine string
	if index == r.selected {
		labelLine = r.styles.Selected.Render(indicator + label + "  " + score)
	} else {
		labelLine = r.styles.Normal.Render(indicator+label+"  ") + r.styles.Muted.Render(score)
	}

	preview := strings.Join(strings.Fields(hit.Passage.Content), " ")
	preview = truncate(preview, max(r.width-6, 20))

	return labelLine + "\n" + r.styles.Muted.Render("    "+preview)
}

// HitLabel returns the citation-style label of a hit.
func HitLabel(hit *domain.PassageHit) string {
	return domain.CitationLabel(hit.Passage.CourseTitle, hit.Passage.LessonNumber)
}

func truncate(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit-3]) + "..."
}

// SetHits replaces the listed passages and resets the selection.
func (r *ResultList) SetHits(hits []domain.PassageHit) {
	r.hits = hits
	r.selected = 0
}

// Hits returns the current passages.
func (r *ResultList) Hits() []domain.PassageHit {
	return r.hits
}

// Selected returns the index of the selected passage.
func (r *ResultList) Selected() int {
	return r.selected
}

// SetSelected sets the selected index.
func (r *ResultList) SetSelected(index int) {
	if index >= 0 && index < len(r.hits) {
		r.selected = index
	}
}

// SelectedHit returns the currently selected passage, or nil if none.
func (r *ResultList) SelectedHit() *domain.PassageHit {
	if r.selected < 0 || r.selected >= len(r.hits) {
		return nil
	}
	return &r.hits[r.selected]
}

// MoveUp moves selection up.
func (r *ResultList) MoveUp() {
	if r.selected > 0 {
		r.selected--
	}
}

// MoveDown moves selection down.
func (r *ResultList) MoveDown() {
	if r.selected < len(r.hits)-1 {
		r.selected++
	}
}

// SetDimensions sets the component dimensions.
func (r *ResultList) SetDimensions(width, height int) {
	r.width = width
	r.height = height
}

// Width returns the current width.
func (r *ResultList) Width() int {
	return r.width
}

// Height returns the current height.
func (r *ResultList) Height() int {
	return r.height
}

// Count returns the number of passages.
func (r *ResultList) Count() int {
	return len(r.hits)
}

// IsEmpty returns whether the list is empty.
func (r *ResultList) IsEmpty() bool {
	return len(r.hits) == 0
}
