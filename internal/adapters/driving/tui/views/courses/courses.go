// Package courses provides the course list view for the TUI.
package courses

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/syang620/course-materials-rag-chatbot/internal/adapters/driving/tui/messages"
	"github.com/syang620/course-materials-rag-chatbot/internal/adapters/driving/tui/styles"
	"github.com/syang620/course-materials-rag-chatbot/internal/core/domain"
	"github.com/syang620/course-materials-rag-chatbot/internal/core/ports/driving"
)

// ErrNoCatalogService indicates that no catalog service was provided.
var ErrNoCatalogService = errors.New("catalog service not available")

// View lists the indexed courses.
type View struct {
	styles  *styles.Styles
	catalog driving.CatalogService

	courses      []domain.CourseInfo
	selected     int
	scrollOffset int
	width        int
	height       int
	ready        bool
	loading      bool
	err          error
}

// NewView creates a new course list view.
func NewView(s *styles.Styles, catalog driving.CatalogService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &View{
		styles:  s,
		catalog: catalog,
		width:   80,
		height:  24,
	}
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return nil
}

// Load resets the view and returns a command that lists the courses.
func (v *View) Load() tea.Cmd {
	v.loading = true
	v.err = nil
	catalog := v.catalog
	return func() tea.Msg {
		if catalog == nil {
			return messages.CoursesLoaded{Err: ErrNoCatalogService}
		}
		courses, err := catalog.ListCourses(context.Background())
		return messages.CoursesLoaded{Courses: courses, Err: err}
	}
}

// Update handles messages for the course list view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.CoursesLoaded:
		v.loading = false
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		v.courses = msg.Courses
		v.err = nil
		if v.selected >= len(v.courses) {
			v.selected = 0
			v.scrollOffset = 0
		}
		return v, nil

	case messages.ErrorOccurred:
		v.err = msg.Err
		return v, nil
	}

	return v, nil
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if v.selected > 0 {
			v.selected--
			v.adjustScroll()
		}
	case "down", "j":
		if v.selected < len(v.courses)-1 {
			v.selected++
			v.adjustScroll()
		}
	case "enter":
		if c := v.SelectedCourse(); c != nil {
			title := c.Title
			return v, func() tea.Msg {
				return messages.CourseSelected{Title: title}
			}
		}
	case "r":
		return v, v.Load()
	case "esc":
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewMenu}
		}
	}

	return v, nil
}

func (v *View) adjustScroll() {
	visible := v.visibleItemCount()
	if v.selected < v.scrollOffset {
		v.scrollOffset = v.selected
	} else if v.selected >= v.scrollOffset+visible {
		v.scrollOffset = v.selected - visible + 1
	}
}

func (v *View) visibleItemCount() int {
	// Title, scroll indicator and help take eight lines.
	return max(v.height-8, 1)
}

// View renders the course list.
func (v *View) View() string {
	var b strings.Builder

	b.WriteString(v.styles.Title.Render(fmt.Sprintf("Courses (%d)", len(v.courses))))
	b.WriteString("\n\n")

	switch {
	case v.loading:
		b.WriteString(v.styles.Muted.Render("Loading courses..."))
	case v.err != nil:
		b.WriteString(v.styles.Error.Render("Error: " + v.err.Error()))
	case len(v.courses) == 0:
		b.WriteString(v.styles.Muted.Render("No courses indexed. Run 'courserag ingest' first."))
	default:
		visible := v.visibleItemCount()
		end := min(v.scrollOffset+visible, len(v.courses))
		for i := v.scrollOffset; i < end; i++ {
			b.WriteString(v.renderCourse(i, &v.courses[i]))
			b.WriteString("\n")
		}
		if len(v.courses) > visible {
			b.WriteString("\n")
			b.WriteString(v.styles.Muted.Render(fmt.Sprintf("  [%d-%d of %d]",
				v.scrollOffset+1, end, len(v.courses))))
		}
	}

	b.WriteString("\n\n")
	b.WriteString(v.styles.Help.Render("[↑/↓] navigate  [enter] outline  [r] reload  [esc] back"))

	return b.String()
}

func (v *View) renderCourse(index int, c *domain.CourseInfo) string {
	detail := fmt.Sprintf("%d lessons", c.LessonCount)
	if c.Instructor != "" {
		detail += ", " + c.Instructor
	}

	if index == v.selected {
		return v.styles.Selected.Render(fmt.Sprintf("> %s  %s", c.Title, detail))
	}
	return v.styles.Normal.Render("  "+c.Title+"  ") + v.styles.Muted.Render(detail)
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
}

// Courses returns the listed courses.
func (v *View) Courses() []domain.CourseInfo {
	return v.courses
}

// SelectedIndex returns the selected course index.
func (v *View) SelectedIndex() int {
	return v.selected
}

// SelectedCourse returns the selected course, or nil when the list is empty.
func (v *View) SelectedCourse() *domain.CourseInfo {
	if v.selected < len(v.courses) {
		return &v.courses[v.selected]
	}
	return nil
}

// Loading reports whether a load is in flight.
func (v *View) Loading() bool {
	return v.loading
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}
