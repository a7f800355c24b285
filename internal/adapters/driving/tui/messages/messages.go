// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/syang620/course-materials-rag-chatbot/internal/core/domain"
)

// SearchCompleted carries a search outcome back to the model.
type SearchCompleted struct {
	Outcome *domain.SearchOutcome
	Err     error
}

// CoursesLoaded carries the indexed courses.
type CoursesLoaded struct {
	Courses []domain.CourseInfo
	Err     error
}

// CourseSelected is sent when a course is chosen from the course list.
type CourseSelected struct {
	Title string
}

// OutlineLoaded carries the outline of one course.
type OutlineLoaded struct {
	Title   string
	Outline *domain.CourseInfo
	Err     error
}

// SettingsLoaded carries the effective settings.
type SettingsLoaded struct {
	Entries []domain.SettingEntry
	Err     error
}

// SettingSaved is sent after a single setting has been written.
type SettingSaved struct {
	Key string
	Err error
}

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewMenu is the main navigation menu.
	ViewMenu ViewType = iota
	// ViewSearch is the search input and results view.
	ViewSearch
	// ViewCourses lists indexed courses.
	ViewCourses
	// ViewOutline shows one course outline.
	ViewOutline
	// ViewSettings shows the effective settings.
	ViewSettings
	// ViewHelp is the help/keybindings view.
	ViewHelp
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewMenu:
		return "menu"
	case ViewSearch:
		return "search"
	case ViewCourses:
		return "courses"
	case ViewOutline:
		return "outline"
	case ViewSettings:
		return "settings"
	case ViewHelp:
		return "help"
	default:
		return "unknown"
	}
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// Quit signals the application should exit.
type Quit struct{}
