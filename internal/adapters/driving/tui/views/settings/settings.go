// Package settings provides the settings view for the TUI.
package settings

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/syang620/course-materials-rag-chatbot/internal/adapters/driving/tui/messages"
	"github.com/syang620/course-materials-rag-chatbot/internal/adapters/driving/tui/styles"
	"github.com/syang620/course-materials-rag-chatbot/internal/core/domain"
	"github.com/syang620/course-materials-rag-chatbot/internal/core/ports/driving"
)

// ErrNoSettingsService indicates that no settings service was provided.
var ErrNoSettingsService = errors.New("settings service not available")

// View lists the effective settings and edits one key at a time.
type View struct {
	styles          *styles.Styles
	settingsService driving.SettingsService

	entries  []domain.SettingEntry
	selected int
	editing  bool
	editor   textinput.Model
	notice   string
	err      error

	width  int
	height int
	ready  bool
}

// NewView creates a new settings view.
func NewView(s *styles.Styles, settingsService driving.SettingsService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}

	editor := textinput.New()
	editor.CharLimit = 256

	return &View{
		styles:          s,
		settingsService: settingsService,
		editor:          editor,
	}
}

// Init initialises the view and loads settings.
func (v *View) Init() tea.Cmd {
	return v.loadSettings()
}

func (v *View) loadSettings() tea.Cmd {
	svc := v.settingsService
	return func() tea.Msg {
		if svc == nil {
			return messages.SettingsLoaded{Err: ErrNoSettingsService}
		}
		entries, err := svc.Entries()
		return messages.SettingsLoaded{Entries: entries, Err: err}
	}
}

func (v *View) saveSetting(key, value string) tea.Cmd {
	svc := v.settingsService
	return func() tea.Msg {
		if svc == nil {
			return messages.SettingSaved{Key: key, Err: ErrNoSettingsService}
		}
		return messages.SettingSaved{Key: key, Err: svc.Set(key, value)}
	}
}

// Update handles messages for the settings view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case messages.SettingsLoaded:
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		v.entries = msg.Entries
		v.err = nil
		if v.selected >= len(v.entries) {
			v.selected = 0
		}
		return v, nil

	case messages.SettingSaved:
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		v.err = nil
		v.notice = "Saved " + msg.Key
		return v, v.loadSettings()

	case tea.KeyMsg:
		if v.editing {
			return v.handleEditKeys(msg)
		}
		return v.handleListKeys(msg)
	}

	return v, nil
}

func (v *View) handleListKeys(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if v.selected > 0 {
			v.selected--
		}
	case "down", "j":
		if v.selected < len(v.entries)-1 {
			v.selected++
		}
	case "enter":
		if v.selected >= len(v.entries) {
			return v, nil
		}
		entry := v.entries[v.selected]
		v.editing = true
		v.notice = ""
		v.err = nil
		v.editor.SetValue("")
		v.editor.Placeholder = entry.DisplayValue()
		v.editor.EchoMode = textinput.EchoNormal
		if entry.Secret {
			v.editor.EchoMode = textinput.EchoPassword
		}
		return v, v.editor.Focus()
	case "r":
		v.notice = ""
		return v, v.loadSettings()
	case "esc":
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewMenu}
		}
	}
	return v, nil
}

func (v *View) handleEditKeys(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.String() {
	case "esc":
		v.editing = false
		v.editor.Blur()
		return v, nil
	case "enter":
		v.editing = false
		v.editor.Blur()
		value := strings.TrimSpace(v.editor.Value())
		if value == "" {
			return v, nil
		}
		return v, v.saveSetting(v.entries[v.selected].Key, value)
	}

	var cmd tea.Cmd
	v.editor, cmd = v.editor.Update(msg)
	return v, cmd
}

// View renders the settings view.
func (v *View) View() string {
	var b strings.Builder

	b.WriteString(v.styles.Title.Render("Settings"))
	b.WriteString("\n\n")

	if v.err != nil {
		b.WriteString(v.styles.Error.Render("Error: " + v.err.Error()))
		b.WriteString("\n\n")
	}
	if v.notice != "" {
		b.WriteString(v.styles.Success.Render(v.notice))
		b.WriteString("\n\n")
	}

	if len(v.entries) == 0 && v.err == nil {
		b.WriteString(v.styles.Muted.Render("Loading settings..."))
		b.WriteString("\n\n")
	}

	keyWidth := 0
	for _, e := range v.entries {
		keyWidth = max(keyWidth, len(e.Key))
	}

	for i, e := range v.entries {
		line := fmt.Sprintf("%-*s  %s", keyWidth, e.Key, e.DisplayValue())
		origin := fmt.Sprintf("  (%s)", e.Source)
		if e.Source == domain.SettingSourceEnv {
			origin = fmt.Sprintf("  (env %s)", e.Env)
		}
		if i == v.selected {
			b.WriteString(v.styles.Selected.Render("> " + line))
		} else {
			b.WriteString(v.styles.Normal.Render("  " + line))
		}
		b.WriteString(v.styles.Muted.Render(origin))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if v.editing {
		b.WriteString(v.styles.Label.Render(v.entries[v.selected].Key + ": "))
		b.WriteString(v.editor.View())
		b.WriteString("\n\n")
		b.WriteString(v.styles.Help.Render("[enter] save  [esc] cancel"))
	} else {
		b.WriteString(v.styles.Help.Render("[↑/↓] navigate  [enter] edit  [r] reload  [esc] back"))
	}

	return b.String()
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
	v.editor.Width = max(width-30, 20)
}

// Entries returns the loaded settings.
func (v *View) Entries() []domain.SettingEntry {
	return v.entries
}

// Selected returns the selected entry index.
func (v *View) Selected() int {
	return v.selected
}

// Editing reports whether a value is being edited.
func (v *View) Editing() bool {
	return v.editing
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}

// Reset leaves edit mode and clears notices.
func (v *View) Reset() {
	v.editing = false
	v.editor.Blur()
	v.notice = ""
	v.err = nil
}
