package pdf

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syang620/course-materials-rag-chatbot/internal/core/domain"
)

func TestNew(t *testing.T) {
	normaliser := New()
	require.NotNil(t, normaliser)
	assert.IsType(t, &Normaliser{}, normaliser)
}

func TestSupportedExtensions(t *testing.T) {
	assert.Equal(t, []string{".pdf"}, New().SupportedExtensions())
}

func TestNormalise_NilDocument(t *testing.T) {
	_, err := New().Normalise(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestNormalise_JoinsPages(t *testing.T) {
	n := NewWithExtractor(func(_ io.ReaderAt, size int64) ([]string, error) {
		assert.Equal(t, int64(3), size)
		return []string{
			"Course Title: PDF Course\nCourse Instructor: Ada\n",
			"   ",
			"Lesson 1: Intro\nBody text.",
		}, nil
	})

	text, err := n.Normalise(context.Background(), &domain.RawDocument{Path: "a.pdf", Content: []byte("pdf")})
	require.NoError(t, err)
	assert.Equal(t, "Course Title: PDF Course\nCourse Instructor: Ada\nLesson 1: Intro\nBody text.", text)
}

func TestNormalise_ExtractorError(t *testing.T) {
	n := NewWithExtractor(func(_ io.ReaderAt, _ int64) ([]string, error) {
		return nil, errors.New("bad xref")
	})

	_, err := n.Normalise(context.Background(), &domain.RawDocument{Path: "broken.pdf", Content: []byte("x")})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrMalformedDocument)

	var docErr *domain.DocumentError
	require.True(t, errors.As(err, &docErr))
	assert.Equal(t, "broken.pdf", docErr.Path)
	assert.Contains(t, docErr.Reason, "bad xref")
}

func TestNormalise_InvalidBytes(t *testing.T) {
	_, err := New().Normalise(context.Background(), &domain.RawDocument{
		Path:    "not-a.pdf",
		Content: []byte("this is not a pdf file"),
	})
	assert.ErrorIs(t, err, domain.ErrMalformedDocument)
}

func TestNormalise_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New().Normalise(ctx, &domain.RawDocument{Content: []byte("x")})
	assert.ErrorIs(t, err, context.Canceled)
}
