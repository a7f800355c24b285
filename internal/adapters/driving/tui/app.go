package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/syang620/course-materials-rag-chatbot/internal/adapters/driving/tui/keymap"
	"github.com/syang620/course-materials-rag-chatbot/internal/adapters/driving/tui/messages"
	"github.com/syang620/course-materials-rag-chatbot/internal/adapters/driving/tui/styles"
	"github.com/syang620/course-materials-rag-chatbot/internal/adapters/driving/tui/views/courses"
	"github.com/syang620/course-materials-rag-chatbot/internal/adapters/driving/tui/views/menu"
	"github.com/syang620/course-materials-rag-chatbot/internal/adapters/driving/tui/views/outline"
	"github.com/syang620/course-materials-rag-chatbot/internal/adapters/driving/tui/views/search"
	"github.com/syang620/course-materials-rag-chatbot/internal/adapters/driving/tui/views/settings"
	"github.com/syang620/course-materials-rag-chatbot/internal/core/domain"
)

// App is the main TUI application following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	// ports provides access to core services via driving ports.
	ports *Ports

	// ctx is the context for cancellation.
	ctx context.Context

	// styles holds the TUI styles.
	styles *styles.Styles

	menuView     *menu.View
	searchView   *search.View
	coursesView  *courses.View
	outlineView  *outline.View
	settingsView *settings.View

	// currentView tracks which view is active.
	currentView messages.ViewType

	// err holds the last error that occurred.
	err error

	// width and height are terminal dimensions.
	width  int
	height int

	// ready indicates if the app has initialised.
	ready bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new TUI application with the given ports.
func NewApp(ports *Ports) (*App, error) {
	if ports == nil {
		return nil, fmt.Errorf("creating app: %w", ErrMissingSearchService)
	}
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()

	return &App{
		ports:        ports,
		ctx:          context.Background(),
		styles:       s,
		menuView:     menu.NewView(s),
		searchView:   search.NewView(s, km, ports.Search),
		coursesView:  courses.NewView(s, ports.Catalog),
		outlineView:  outline.NewView(s, ports.Catalog),
		settingsView: settings.NewView(s, ports.Settings),
		currentView:  messages.ViewMenu,
	}, nil
}

// WithContext sets the context for the app.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	a.searchView.WithContext(ctx)
	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		tea.EnterAltScreen,
		tea.SetWindowTitle("courserag - Course Materials"),
	)
}

// Update implements tea.Model.
//
//nolint:gocyclo // central message handler
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		if a.currentView == messages.ViewHelp {
			if msg.Type == tea.KeyEsc {
				a.currentView = messages.ViewMenu
			}
			return a, nil
		}
		return a, a.updateCurrent(msg)

	case messages.ViewChanged:
		prev := a.currentView
		a.currentView = msg.View
		switch msg.View {
		case messages.ViewSearch:
			// Returning from an outline keeps the previous results.
			if prev == messages.ViewOutline {
				return a, nil
			}
			a.searchView.Reset()
			return a, a.searchView.Init()
		case messages.ViewCourses:
			return a, a.coursesView.Load()
		case messages.ViewSettings:
			a.settingsView.Reset()
			return a, a.settingsView.Init()
		case messages.ViewMenu, messages.ViewOutline, messages.ViewHelp:
		}
		return a, nil

	case messages.CourseSelected:
		back := a.currentView
		if back != messages.ViewSearch {
			back = messages.ViewCourses
		}
		a.currentView = messages.ViewOutline
		return a, a.outlineView.Open(msg.Title, back)

	case messages.SearchCompleted:
		a.searchView, cmd = a.searchView.Update(msg)
		a.err = a.searchView.Err()
		return a, cmd

	case messages.CoursesLoaded:
		a.coursesView, cmd = a.coursesView.Update(msg)
		a.err = a.coursesView.Err()
		return a, cmd

	case messages.OutlineLoaded:
		a.outlineView, cmd = a.outlineView.Update(msg)
		return a, cmd

	case messages.SettingsLoaded, messages.SettingSaved:
		a.settingsView, cmd = a.settingsView.Update(msg)
		return a, cmd

	case messages.ErrorOccurred:
		a.err = msg.Err
		return a, a.updateCurrent(msg)

	case messages.Quit:
		return a, tea.Quit
	}

	return a, a.updateCurrent(msg)
}

// updateCurrent forwards a message to the active view.
func (a *App) updateCurrent(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch a.currentView {
	case messages.ViewMenu:
		a.menuView, cmd = a.menuView.Update(msg)
	case messages.ViewSearch:
		a.searchView, cmd = a.searchView.Update(msg)
		a.err = a.searchView.Err()
	case messages.ViewCourses:
		a.coursesView, cmd = a.coursesView.Update(msg)
	case messages.ViewOutline:
		a.outlineView, cmd = a.outlineView.Update(msg)
	case messages.ViewSettings:
		a.settingsView, cmd = a.settingsView.Update(msg)
	case messages.ViewHelp:
	}
	return cmd
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	switch a.currentView {
	case messages.ViewSearch:
		return a.searchView.View()
	case messages.ViewCourses:
		return a.coursesView.View()
	case messages.ViewOutline:
		return a.outlineView.View()
	case messages.ViewSettings:
		return a.settingsView.View()
	case messages.ViewHelp:
		return a.viewHelp()
	case messages.ViewMenu:
	}
	return a.menuView.View()
}

func (a *App) viewHelp() string {
	return `Help

Navigation:
  esc         Back
  ctrl+c      Quit

Menu:
  j/k, ↑/↓    Navigate options
  enter       Select option
  q           Quit

Search:
  (type)      Enter a question
  course:X    Scope to a course (quote names with spaces)
  lesson:N    Scope to a lesson number
  enter       Submit search

Results:
  j/k, ↑/↓    Navigate passages
  pgup/pgdn   Scroll the selected passage
  o           Open the course outline
  n           New search

Courses:
  enter       Open outline
  r           Reload

[esc] back to menu`
}

// Run starts the TUI application.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen(), tea.WithContext(a.ctx))
	_, err := p.Run()
	return err
}

// Query returns the current raw search query.
func (a *App) Query() string {
	return a.searchView.Query()
}

// Hits returns the passages of the last search.
func (a *App) Hits() []domain.PassageHit {
	return a.searchView.Hits()
}

// Sources returns the citations of the last search.
func (a *App) Sources() []domain.Source {
	return a.searchView.Sources()
}

// SelectedIndex returns the currently selected passage index.
func (a *App) SelectedIndex() int {
	return a.searchView.SelectedIndex()
}

// CurrentView returns the current view type.
func (a *App) CurrentView() messages.ViewType {
	return a.currentView
}

// Err returns the last error that occurred.
func (a *App) Err() error {
	return a.err
}

// Ready returns whether the app has been initialised.
func (a *App) Ready() bool {
	return a.ready
}

// SetDimensions sets the terminal dimensions on every view.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true
	a.menuView.SetDimensions(width, height)
	a.searchView.SetDimensions(width, height)
	a.coursesView.SetDimensions(width, height)
	a.outlineView.SetDimensions(width, height)
	a.settingsView.SetDimensions(width, height)
}
