// Package coursedoc parses course documents.
//
// A course document starts with a header block naming the course, followed
// by lesson blocks:
//
//	Course Title: <title>
//	Course Link: <url>
//	Course Instructor: <name>
//
//	Lesson 0: <title>
//	Lesson Link: <url>
//	<body>
//
// Header lines may appear in any order within the first few non-empty lines.
// A document without lesson markers becomes a single lesson.
package coursedoc

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/syang620/course-materials-rag-chatbot/internal/core/domain"
	"github.com/syang620/course-materials-rag-chatbot/internal/core/ports/driven"
)

// Ensure Parser implements the interface.
var _ driven.CourseParser = (*Parser)(nil)

// DefaultHeaderLines is how many leading non-empty lines are searched for header keys.
const DefaultHeaderLines = 4

// Header and marker prefixes.
const (
	keyTitle      = "Course Title:"
	keyLink       = "Course Link:"
	keyInstructor = "Course Instructor:"
	keyLessonLink = "Lesson Link:"
)

// lessonMarker matches "Lesson <N>: <title>". Non-numeric markers do not match
// and are kept as ordinary content.
var lessonMarker = regexp.MustCompile(`^Lesson\s+(\d+)\s*:\s*(.*)$`)

// Parser reads course documents.
type Parser struct {
	headerLines int
}

// NewParser creates a parser with the default header window.
func NewParser() *Parser {
	return &Parser{headerLines: DefaultHeaderLines}
}

// header holds the parsed header block and where the body starts.
type header struct {
	title      string
	link       string
	instructor string
	bodyStart  int
}

// Parse turns normalised document text into a Course.
func (p *Parser) Parse(text string) (*domain.Course, error) {
	lines := splitLines(text)

	h := p.parseHeader(lines)
	if h.title == "" {
		return nil, domain.Malformed("missing course title")
	}

	lessons, err := parseLessons(lines[h.bodyStart:], h.title)
	if err != nil {
		return nil, err
	}

	return domain.NewCourse(h.title, h.link, h.instructor, lessons)
}

// parseHeader scans the first non-empty lines for header keys.
// The body begins after the last header line found.
func (p *Parser) parseHeader(lines []string) header {
	var h header
	seen := 0
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if seen == p.headerLines || lessonMarker.MatchString(trimmed) {
			break
		}
		seen++

		switch {
		case hasKey(trimmed, keyTitle):
			h.title = value(trimmed, keyTitle)
		case hasKey(trimmed, keyLink):
			h.link = value(trimmed, keyLink)
		case hasKey(trimmed, keyInstructor):
			h.instructor = value(trimmed, keyInstructor)
		default:
			continue
		}
		h.bodyStart = i + 1
	}
	return h
}

// parseLessons splits the body at lesson markers.
// Text before the first marker is not part of any lesson.
func parseLessons(body []string, courseTitle string) ([]domain.Lesson, error) {
	var (
		lessons []domain.Lesson
		current *domain.Lesson
		content []string
	)

	flush := func() {
		if current != nil {
			current.Content = strings.TrimSpace(strings.Join(content, "\n"))
			lessons = append(lessons, *current)
		}
		content = content[:0]
	}

	for i := 0; i < len(body); i++ {
		trimmed := strings.TrimSpace(body[i])
		if number, title, ok := parseMarker(trimmed); ok {
			flush()
			current = &domain.Lesson{Number: number, Title: title}
			if j := nextNonEmpty(body, i+1); j >= 0 && hasKey(strings.TrimSpace(body[j]), keyLessonLink) {
				current.Link = value(strings.TrimSpace(body[j]), keyLessonLink)
				i = j
			}
			continue
		}
		content = append(content, body[i])
	}

	if current == nil {
		text := strings.TrimSpace(strings.Join(content, "\n"))
		if text == "" {
			return nil, nil
		}
		return []domain.Lesson{{
			Number:  domain.FirstUnusedLessonNumber(nil),
			Title:   courseTitle,
			Content: text,
		}}, nil
	}
	flush()

	return lessons, nil
}

// parseMarker recognises a lesson marker line.
func parseMarker(line string) (int, string, bool) {
	m := lessonMarker.FindStringSubmatch(line)
	if m == nil {
		return 0, "", false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, "", false
	}
	return n, strings.TrimSpace(m[2]), true
}

func nextNonEmpty(lines []string, from int) int {
	for i := from; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) != "" {
			return i
		}
	}
	return -1
}

func hasKey(line, key string) bool {
	return len(line) >= len(key) && strings.EqualFold(line[:len(key)], key)
}

func value(line, key string) string {
	return strings.TrimSpace(line[len(key):])
}

func splitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return strings.Split(text, "\n")
}
