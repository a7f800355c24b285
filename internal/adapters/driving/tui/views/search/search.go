// Package search provides the main search view for the TUI.
package search

import (
	"context"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/syang620/course-materials-rag-chatbot/internal/adapters/driving/tui/components/input"
	"github.com/syang620/course-materials-rag-chatbot/internal/adapters/driving/tui/components/list"
	"github.com/syang620/course-materials-rag-chatbot/internal/adapters/driving/tui/components/status"
	"github.com/syang620/course-materials-rag-chatbot/internal/adapters/driving/tui/keymap"
	"github.com/syang620/course-materials-rag-chatbot/internal/adapters/driving/tui/messages"
	"github.com/syang620/course-materials-rag-chatbot/internal/adapters/driving/tui/styles"
	"github.com/syang620/course-materials-rag-chatbot/internal/core/domain"
	"github.com/syang620/course-materials-rag-chatbot/internal/core/ports/driving"
	"github.com/syang620/course-materials-rag-chatbot/internal/core/services"
)

// View represents the search view: query input, passage list, passage
// preview and status bar.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	input     *input.SearchInput
	list      *list.ResultList
	preview   viewport.Model
	statusbar *status.Bar

	searchService driving.SearchService
	ctx           context.Context

	width      int
	height     int
	ready      bool
	err        error
	focusInput bool // true = typing a query, false = navigating passages
}

// NewView creates a new search view.
func NewView(s *styles.Styles, km *keymap.KeyMap, searchService driving.SearchService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	return &View{
		styles:        s,
		keymap:        km,
		input:         input.NewSearchInput(s),
		list:          list.NewResultList(s),
		preview:       viewport.New(80, 6),
		statusbar:     status.NewBar(s, km),
		searchService: searchService,
		ctx:           context.Background(),
		width:         80,
		height:        24,
		focusInput:    true,
	}
}

// WithContext sets the context for the view.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return v.input.Init()
}

// Update handles messages for the search view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.SearchCompleted:
		v.handleSearchCompleted(msg)
		return v, nil

	case messages.ErrorOccurred:
		v.setError(msg.Err)
		return v, nil
	}

	var cmd tea.Cmd
	if v.focusInput {
		v.input, cmd = v.input.Update(msg)
	}
	return v, cmd
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	if key.Matches(msg, v.keymap.Back) {
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewMenu}
		}
	}

	if v.focusInput {
		if key.Matches(msg, v.keymap.Submit) {
			return v, v.submit()
		}
		var cmd tea.Cmd
		v.input, cmd = v.input.Update(msg)
		return v, cmd
	}

	switch {
	case key.Matches(msg, v.keymap.Up):
		v.list.MoveUp()
		v.refreshPreview()
	case key.Matches(msg, v.keymap.Down):
		v.list.MoveDown()
		v.refreshPreview()
	case key.Matches(msg, v.keymap.PageUp):
		v.preview.HalfViewUp()
	case key.Matches(msg, v.keymap.PageDown):
		v.preview.HalfViewDown()
	case key.Matches(msg, v.keymap.NewSearch):
		v.focusInput = true
		v.input.SetValue("")
		return v, v.input.Focus()
	case key.Matches(msg, v.keymap.Outline):
		hit := v.list.SelectedHit()
		if hit == nil {
			return v, nil
		}
		title := hit.Passage.CourseTitle
		return v, func() tea.Msg {
			return messages.CourseSelected{Title: title}
		}
	}

	return v, nil
}

// submit parses the query directives and starts the search.
func (v *View) submit() tea.Cmd {
	if v.input.Value() == "" {
		return nil
	}

	req, err := v.input.Request()
	if err != nil {
		v.setError(err)
		return nil
	}

	v.err = nil
	v.statusbar.Clear()
	v.statusbar.SetState(status.StateSearching)
	v.focusInput = false
	v.input.Blur()
	return v.performSearch(req)
}

func (v *View) performSearch(req domain.SearchRequest) tea.Cmd {
	return func() tea.Msg {
		if v.searchService == nil {
			return messages.ErrorOccurred{Err: ErrNoSearchService}
		}

		outcome, err := v.searchService.Search(v.ctx, req)
		return messages.SearchCompleted{Outcome: outcome, Err: err}
	}
}

func (v *View) handleSearchCompleted(msg messages.SearchCompleted) {
	if msg.Err != nil {
		v.setError(msg.Err)
		return
	}
	if msg.Outcome == nil {
		return
	}

	v.err = nil
	v.list.SetHits(msg.Outcome.Hits)
	v.statusbar.SetState(status.StateResults)
	v.statusbar.SetResultCount(len(msg.Outcome.Hits))
	v.statusbar.SetSources(msg.Outcome.Sources)
	if msg.Outcome.Status == domain.SearchStatusFound {
		v.statusbar.SetMessage("")
	} else {
		v.statusbar.SetMessage(services.FormatOutcome(msg.Outcome))
	}
	v.refreshPreview()

	v.focusInput = false
	v.input.Blur()
}

func (v *View) setError(err error) {
	v.err = err
	v.statusbar.SetState(status.StateError)
	v.statusbar.SetMessage(err.Error())
}

// refreshPreview shows the full text of the selected passage.
func (v *View) refreshPreview() {
	hit := v.list.SelectedHit()
	if hit == nil {
		v.preview.SetContent("")
		return
	}
	wrapped := lipgloss.NewStyle().Width(v.preview.Width).Render(hit.Passage.Text)
	v.preview.SetContent(wrapped)
	v.preview.GotoTop()
}

// View renders the search view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	sections := make([]string, 0, 10)
	sections = append(sections, v.styles.Title.Render("courserag"), "", v.input.View(), "")

	if v.err != nil {
		sections = append(sections, v.styles.Error.Render("Error: "+v.err.Error()), "")
	}

	sections = append(sections, v.list.View())

	if !v.list.IsEmpty() {
		sections = append(sections, "", v.styles.Pane.Render(v.preview.View()))
	}

	sections = append(sections, "", v.statusbar.View())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true

	// Header, input, status and pane borders take roughly ten lines.
	body := max(height-10, 6)
	v.input.SetWidth(width)
	v.list.SetDimensions(width, body/2)
	v.preview.Width = max(width-4, 20)
	v.preview.Height = max(body-body/2-2, 3)
	v.statusbar.SetWidth(width)
	v.refreshPreview()
}

// Width returns the current width.
func (v *View) Width() int {
	return v.width
}

// Height returns the current height.
func (v *View) Height() int {
	return v.height
}

// Ready returns whether the view is ready to render.
func (v *View) Ready() bool {
	return v.ready
}

// Query returns the current raw query.
func (v *View) Query() string {
	return v.input.Value()
}

// SetQuery sets the raw query.
func (v *View) SetQuery(query string) {
	v.input.SetValue(query)
}

// Hits returns the passages of the last search.
func (v *View) Hits() []domain.PassageHit {
	return v.list.Hits()
}

// SelectedIndex returns the index of the selected passage.
func (v *View) SelectedIndex() int {
	return v.list.Selected()
}

// SelectedHit returns the currently selected passage.
func (v *View) SelectedHit() *domain.PassageHit {
	return v.list.SelectedHit()
}

// Sources returns the citations of the last search.
func (v *View) Sources() []domain.Source {
	return v.statusbar.Sources()
}

// Notice returns the status message, such as a no-results notice.
func (v *View) Notice() string {
	return v.statusbar.Message()
}

// Preview returns the rendered passage preview.
func (v *View) Preview() string {
	return v.preview.View()
}

// Err returns the current error, if any.
func (v *View) Err() error {
	return v.err
}

// ClearError clears the current error.
func (v *View) ClearError() {
	v.err = nil
	v.statusbar.SetState(status.StateReady)
	v.statusbar.SetMessage("")
}

// Reset resets the view to initial input mode.
func (v *View) Reset() {
	v.focusInput = true
	v.input.Focus()
	v.input.SetValue("")
	v.list.SetHits(nil)
	v.preview.SetContent("")
	v.err = nil
	v.statusbar.Clear()
}

// InputFocused returns whether the input has focus.
func (v *View) InputFocused() bool {
	return v.focusInput
}
