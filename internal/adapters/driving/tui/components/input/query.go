package input

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/syang620/course-materials-rag-chatbot/internal/core/domain"
)

const (
	courseDirective = "course:"
	lessonDirective = "lesson:"
)

// ParseQuery splits a typed line into the question and its scope.
//
// course:<name> and lesson:<n> may appear anywhere in the line. A course
// name containing spaces is written in double quotes: course:"Intro to Chroma".
// The remaining words, in order, form the question.
func ParseQuery(raw string) (domain.SearchRequest, error) {
	var (
		req   domain.SearchRequest
		words []string
	)

	rest := strings.TrimSpace(raw)
	for rest != "" {
		lower := strings.ToLower(rest)
		switch {
		case strings.HasPrefix(lower, courseDirective):
			var value string
			value, rest = directiveValue(rest[len(courseDirective):])
			req.CourseName = value

		case strings.HasPrefix(lower, lessonDirective):
			var value string
			value, rest = directiveValue(rest[len(lessonDirective):])
			n, err := strconv.Atoi(value)
			if err != nil || n < 0 {
				return domain.SearchRequest{}, fmt.Errorf("%w: lesson must be a non-negative number, got %q",
					domain.ErrInvalidInput, value)
			}
			req.LessonNumber = &n

		default:
			word, remainder := nextWord(rest)
			words = append(words, word)
			rest = remainder
		}
		rest = strings.TrimLeft(rest, " \t")
	}

	req.Query = strings.Join(words, " ")
	return req, nil
}

// directiveValue reads a bare word or a double-quoted phrase.
func directiveValue(s string) (string, string) {
	if strings.HasPrefix(s, "\"") {
		if end := strings.Index(s[1:], "\""); end >= 0 {
			return strings.TrimSpace(s[1 : end+1]), s[end+2:]
		}
		return strings.TrimSpace(s[1:]), ""
	}
	return nextWord(s)
}

func nextWord(s string) (string, string) {
	if i := strings.IndexAny(s, " \t"); i >= 0 {
		return s[:i], s[i:]
	}
	return s, ""
}
