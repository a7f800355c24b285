// Package menu is the landing view of the TUI.
package menu

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/syang620/course-materials-rag-chatbot/internal/adapters/driving/tui/messages"
	"github.com/syang620/course-materials-rag-chatbot/internal/adapters/driving/tui/styles"
)

// Entry is one menu option. An entry without a target view quits.
type Entry struct {
	Label string
	Hint  string
	View  messages.ViewType
	Quit  bool
}

// View lists the entries; digits jump straight to an entry.
type View struct {
	styles  *styles.Styles
	entries []Entry
	cursor  int
	width   int
	height  int
	ready   bool
}

// NewView creates the menu with the standard entries.
func NewView(s *styles.Styles) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}

	return &View{
		styles: s,
		entries: []Entry{
			{Label: "Search", Hint: "ask about course content", View: messages.ViewSearch},
			{Label: "Courses", Hint: "browse indexed courses and outlines", View: messages.ViewCourses},
			{Label: "Settings", Hint: "chunking, search and embedding options", View: messages.ViewSettings},
			{Label: "Help", Hint: "key bindings", View: messages.ViewHelp},
			{Label: "Quit", Quit: true},
		},
		width:  80,
		height: 24,
	}
}

// Init implements the view lifecycle.
func (v *View) Init() tea.Cmd {
	return nil
}

// Update moves the cursor and activates entries.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)

	case tea.KeyMsg:
		key := msg.String()
		switch key {
		case "up", "k":
			v.move(-1)
		case "down", "j", "tab":
			v.move(1)
		case "home", "g":
			v.cursor = 0
		case "end", "G":
			v.cursor = len(v.entries) - 1
		case "enter":
			return v, v.activate(v.cursor)
		case "q":
			return v, tea.Quit
		default:
			if len(key) == 1 && key[0] >= '1' && int(key[0]-'1') < len(v.entries) {
				v.cursor = int(key[0] - '1')
				return v, v.activate(v.cursor)
			}
		}
	}

	return v, nil
}

// move shifts the cursor, wrapping at both ends.
func (v *View) move(delta int) {
	n := len(v.entries)
	v.cursor = ((v.cursor+delta)%n + n) % n
}

func (v *View) activate(i int) tea.Cmd {
	entry := v.entries[i]
	if entry.Quit {
		return tea.Quit
	}
	return func() tea.Msg {
		return messages.ViewChanged{View: entry.View}
	}
}

// View renders the menu.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	var b strings.Builder
	b.WriteString(v.styles.Title.Render("courserag"))
	b.WriteString("  ")
	b.WriteString(v.styles.Muted.Render("Course Materials Assistant"))
	b.WriteString("\n\n")

	for i, entry := range v.entries {
		label := fmt.Sprintf("%d. %s", i+1, entry.Label)
		if i == v.cursor {
			b.WriteString("> " + v.styles.Selected.Render(label))
		} else {
			b.WriteString("  " + v.styles.Normal.Render(label))
		}
		if entry.Hint != "" && v.width >= 60 {
			b.WriteString("  " + v.styles.Muted.Render(entry.Hint))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(v.styles.Help.Render("[j/k] Navigate  [1-5] Jump  [Enter] Select  [q] Quit"))

	return b.String()
}

// SetDimensions records the terminal size.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
}

// Selected returns the cursor position.
func (v *View) Selected() int {
	return v.cursor
}
