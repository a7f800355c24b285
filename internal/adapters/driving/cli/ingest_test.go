package cli

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syang620/course-materials-rag-chatbot/internal/core/domain"
)

func TestIngestCmd_Use(t *testing.T) {
	assert.Equal(t, "ingest [folder]", ingestCmd.Use)
}

func TestIngestCmd_Short(t *testing.T) {
	assert.Equal(t, "Load course documents into the index", ingestCmd.Short)
}

func TestIngestCmd_Long(t *testing.T) {
	assert.Contains(t, ingestCmd.Long, "docs.path")
	assert.Contains(t, ingestCmd.Long, "--rebuild")
}

func TestIngestCmd_HasRebuildFlag(t *testing.T) {
	flag := ingestCmd.Flags().Lookup("rebuild")
	require.NotNil(t, flag, "rebuild flag should exist")
	assert.Equal(t, "false", flag.DefValue)
}

func TestIngestCmd_AcceptsMaxOneArg(t *testing.T) {
	_, err := executeCommand("ingest", "a", "b")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "accepts at most 1 arg(s)")
}

func TestIngestCmd_IngestsFolderArgument(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	mocks.ingest.summary = &domain.IngestSummary{
		Files: []domain.FileReport{
			{Path: "docs/course1.txt", Status: domain.IngestStatusAdded, CourseTitle: "Intro", LessonCount: 3, PassageCount: 12},
			{Path: "docs/course2.txt", Status: domain.IngestStatusDuplicate, CourseTitle: "Intro"},
		},
		CoursesAdded:  1,
		PassagesAdded: 12,
		Duplicates:    1,
		Failed: []*domain.DocumentError{
			{Path: "docs/bad.txt", Reason: "missing course title", Err: domain.ErrMalformedDocument},
		},
	}

	out, err := executeCommand("ingest", "docs")

	require.NoError(t, err)
	assert.Equal(t, []string{"docs"}, mocks.ingest.folders)
	assert.False(t, mocks.ingest.opts[0].Rebuild)
	assert.Contains(t, out, "Ingesting docs...")
	assert.Contains(t, out, "added      Intro: 3 lessons, 12 passages")
	assert.Contains(t, out, "duplicate  Intro (docs/course2.txt)")
	assert.Contains(t, out, "failed     docs/bad.txt: missing course title")
	assert.Contains(t, out, "Added 1 courses (12 passages), skipped 1 duplicates, 1 failed.")
}

func TestIngestCmd_UsesConfiguredDocsPath(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	mocks.settings.settings.DocsPath = "/srv/docs"

	_, err := executeCommand("ingest")

	require.NoError(t, err)
	assert.Equal(t, []string{"/srv/docs"}, mocks.ingest.folders)
}

func TestIngestCmd_NoFolder(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	mocks.settings.settings.DocsPath = ""

	_, err := executeCommand("ingest")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Empty(t, mocks.ingest.folders)
}

func TestIngestCmd_Rebuild(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := executeCommand("ingest", "--rebuild", "docs")

	require.NoError(t, err)
	require.Len(t, mocks.ingest.opts, 1)
	assert.True(t, mocks.ingest.opts[0].Rebuild)
	assert.Contains(t, out, "Rebuilding index from docs...")
}

func TestIngestCmd_BackendError(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	mocks.ingest.err = errors.New("database is locked")

	_, err := executeCommand("ingest", "docs")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "ingest failed: database is locked")
}
