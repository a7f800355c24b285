// Package outline provides the course outline view for the TUI.
package outline

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/syang620/course-materials-rag-chatbot/internal/adapters/driving/tui/messages"
	"github.com/syang620/course-materials-rag-chatbot/internal/adapters/driving/tui/styles"
	"github.com/syang620/course-materials-rag-chatbot/internal/core/domain"
	"github.com/syang620/course-materials-rag-chatbot/internal/core/ports/driving"
	"github.com/syang620/course-materials-rag-chatbot/internal/core/services"
)

// ErrNoCatalogService indicates that no catalog service was provided.
var ErrNoCatalogService = errors.New("catalog service not available")

// View shows one course outline in a scrollable pane.
type View struct {
	styles  *styles.Styles
	catalog driving.CatalogService
	pane    viewport.Model

	title   string
	outline *domain.CourseInfo
	back    messages.ViewType
	width   int
	height  int
	loading bool
	err     error
}

// NewView creates a new outline view.
func NewView(s *styles.Styles, catalog driving.CatalogService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &View{
		styles:  s,
		catalog: catalog,
		pane:    viewport.New(80, 18),
		back:    messages.ViewCourses,
		width:   80,
		height:  24,
	}
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return nil
}

// Open loads the outline of a course; esc returns to the given view.
func (v *View) Open(title string, back messages.ViewType) tea.Cmd {
	v.title = title
	v.back = back
	v.outline = nil
	v.err = nil
	v.loading = true
	v.pane.SetContent("")

	catalog := v.catalog
	return func() tea.Msg {
		if catalog == nil {
			return messages.OutlineLoaded{Title: title, Err: ErrNoCatalogService}
		}
		info, err := catalog.Outline(context.Background(), title)
		return messages.OutlineLoaded{Title: title, Outline: info, Err: err}
	}
}

// Update handles messages for the outline view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case messages.OutlineLoaded:
		if msg.Title != v.title {
			return v, nil
		}
		v.loading = false
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		v.outline = msg.Outline
		v.pane.SetContent(services.FormatOutline(msg.Outline))
		v.pane.GotoTop()
		return v, nil

	case tea.KeyMsg:
		if msg.String() == "esc" {
			back := v.back
			return v, func() tea.Msg {
				return messages.ViewChanged{View: back}
			}
		}
		var cmd tea.Cmd
		v.pane, cmd = v.pane.Update(msg)
		return v, cmd

	case messages.ErrorOccurred:
		v.err = msg.Err
		return v, nil
	}

	return v, nil
}

// View renders the outline.
func (v *View) View() string {
	var b strings.Builder

	heading := "Outline"
	if v.outline != nil {
		heading = "Outline - " + v.outline.Title
	} else if v.title != "" {
		heading = "Outline - " + v.title
	}
	b.WriteString(v.styles.Title.Render(heading))
	b.WriteString("\n\n")

	switch {
	case v.loading:
		b.WriteString(v.styles.Muted.Render("Loading outline..."))
	case errors.Is(v.err, domain.ErrNotFound):
		b.WriteString(v.styles.Warning.Render(fmt.Sprintf("No course found matching '%s'", v.title)))
	case v.err != nil:
		b.WriteString(v.styles.Error.Render("Error: " + v.err.Error()))
	default:
		b.WriteString(v.pane.View())
	}

	b.WriteString("\n\n")
	b.WriteString(v.styles.Help.Render("[↑/↓] scroll  [pgup/pgdn] page  [esc] back"))

	return b.String()
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.pane.Width = max(width, 20)
	v.pane.Height = max(height-6, 3)
}

// Outline returns the loaded outline, or nil.
func (v *View) Outline() *domain.CourseInfo {
	return v.outline
}

// Title returns the requested course name.
func (v *View) Title() string {
	return v.title
}

// Loading reports whether a load is in flight.
func (v *View) Loading() bool {
	return v.loading
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}
