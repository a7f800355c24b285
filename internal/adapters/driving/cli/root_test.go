package cli

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syang620/course-materials-rag-chatbot/internal/core/domain"
	"github.com/syang620/course-materials-rag-chatbot/internal/core/ports/driving"
)

var (
	_ driving.SettingsService = (*mockSettingsService)(nil)
	_ driving.IngestService   = (*mockIngestService)(nil)
	_ driving.SearchService   = (*mockSearchService)(nil)
	_ driving.CatalogService  = (*mockCatalogService)(nil)
	_ driving.ToolRegistry    = (*mockToolRegistry)(nil)
)

// mockSettingsService implements driving.SettingsService for testing.
type mockSettingsService struct {
	settings    domain.AppSettings
	entries     []domain.SettingEntry
	set         map[string]string
	setErr      error
	validateErr error
	embedErr    error
}

func newMockSettingsService() *mockSettingsService {
	return &mockSettingsService{
		settings: domain.DefaultAppSettings(),
		entries: []domain.SettingEntry{
			{Key: "chunking.size", Env: "CHUNK_SIZE", Value: "800", Source: domain.SettingSourceDefault},
			{Key: "search.max_results", Env: "MAX_RESULTS", Value: "5", Source: domain.SettingSourceFile},
			{Key: "embedding.api_key", Env: "OPENAI_API_KEY", Value: "sk-1234567890abcdef",
				Source: domain.SettingSourceEnv, Secret: true},
		},
		set: make(map[string]string),
	}
}

func (m *mockSettingsService) Get() (*domain.AppSettings, error) {
	s := m.settings
	return &s, nil
}

func (m *mockSettingsService) Save(settings *domain.AppSettings) error {
	m.settings = *settings
	return nil
}

func (m *mockSettingsService) Set(key, value string) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.set[key] = value
	return nil
}

func (m *mockSettingsService) Keys() []string {
	keys := make([]string, len(m.entries))
	for i, e := range m.entries {
		keys[i] = e.Key
	}
	return keys
}

func (m *mockSettingsService) Entries() ([]domain.SettingEntry, error) {
	return m.entries, nil
}

func (m *mockSettingsService) Validate() error { return m.validateErr }

func (m *mockSettingsService) GetDefaults() domain.AppSettings { return domain.DefaultAppSettings() }

func (m *mockSettingsService) ValidateEmbeddingConfig() error { return m.embedErr }

// mockIngestService implements driving.IngestService for testing.
type mockIngestService struct {
	summary *domain.IngestSummary
	err     error
	folders []string
	opts    []domain.IngestOptions
}

func (m *mockIngestService) IngestFile(_ context.Context, path string) (*domain.FileReport, error) {
	return &domain.FileReport{Path: path, Status: domain.IngestStatusAdded}, nil
}

func (m *mockIngestService) IngestFolder(
	_ context.Context, dir string, opts domain.IngestOptions,
) (*domain.IngestSummary, error) {
	m.folders = append(m.folders, dir)
	m.opts = append(m.opts, opts)
	if m.err != nil {
		return nil, m.err
	}
	if m.summary != nil {
		return m.summary, nil
	}
	return &domain.IngestSummary{}, nil
}

func (m *mockIngestService) SupportedExtensions() []string { return []string{".txt"} }

// mockSearchService implements driving.SearchService for testing.
type mockSearchService struct {
	outcome  *domain.SearchOutcome
	err      error
	requests []domain.SearchRequest
}

func (m *mockSearchService) Search(_ context.Context, req domain.SearchRequest) (*domain.SearchOutcome, error) {
	m.requests = append(m.requests, req)
	if m.err != nil {
		return nil, m.err
	}
	if m.outcome != nil {
		return m.outcome, nil
	}
	return &domain.SearchOutcome{Status: domain.SearchStatusNoResults, Request: req}, nil
}

// mockCatalogService implements driving.CatalogService for testing.
type mockCatalogService struct {
	courses []domain.CourseInfo
	err     error
}

func (m *mockCatalogService) Analytics(_ context.Context) (*domain.CourseAnalytics, error) {
	a := &domain.CourseAnalytics{TotalCourses: len(m.courses)}
	for _, c := range m.courses {
		a.CourseTitles = append(a.CourseTitles, c.Title)
	}
	return a, m.err
}

func (m *mockCatalogService) ListCourses(_ context.Context) ([]domain.CourseInfo, error) {
	return m.courses, m.err
}

func (m *mockCatalogService) Outline(_ context.Context, name string) (*domain.CourseInfo, error) {
	if m.err != nil {
		return nil, m.err
	}
	for i := range m.courses {
		if m.courses[i].Title == name {
			return &m.courses[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockCatalogService) LessonLink(_ context.Context, _ string, _ int) (string, error) {
	return "", nil
}

// mockToolRegistry implements driving.ToolRegistry for testing.
type mockToolRegistry struct{}

func (m *mockToolRegistry) Register(_ driving.Tool) {}

func (m *mockToolRegistry) Definitions() []domain.ToolDefinition { return nil }

func (m *mockToolRegistry) Execute(_ context.Context, _ string, _ map[string]any) (string, error) {
	return "", nil
}

func (m *mockToolRegistry) LastSources() []domain.Source { return nil }

func (m *mockToolRegistry) ResetSources() {}

// testMocks holds the mocks installed by setupTestServices.
type testMocks struct {
	settings *mockSettingsService
	ingest   *mockIngestService
	search   *mockSearchService
	catalog  *mockCatalogService
	closed   int
}

var mocks *testMocks

// setupTestServices installs mock services and resets command flags.
func setupTestServices() func() {
	oldSettings := settingsService
	oldServices := loaded
	oldFactories := factories

	mocks = &testMocks{
		settings: newMockSettingsService(),
		ingest:   &mockIngestService{},
		search:   &mockSearchService{},
		catalog: &mockCatalogService{courses: []domain.CourseInfo{
			{
				Title: "Introduction to MCP", Link: "https://example.com/mcp",
				Instructor: "Elie Schoppik", LessonCount: 2,
				Lessons: []domain.LessonInfo{
					{Number: 0, Title: "Welcome"},
					{Number: 1, Title: "Architecture", Link: "https://example.com/mcp/1"},
				},
			},
		}},
	}
	settingsService = mocks.settings
	loaded = &Services{
		Ingest:  mocks.ingest,
		Search:  mocks.search,
		Catalog: mocks.catalog,
		Tools:   &mockToolRegistry{},
		Close: func() error {
			mocks.closed++
			return nil
		},
	}

	return func() {
		settingsService = oldSettings
		loaded = oldServices
		factories = oldFactories
		resetFlags()
	}
}

func resetFlags() {
	verbose = false
	searchCourse = ""
	searchLesson = -1
	searchCmd.Flags().Lookup("lesson").Changed = false
	searchLimit = 0
	searchJSON = false
	ingestRebuild = false
	watchInitial = true
	tuiIngest = false
	tuiWatch = false
}

func executeCommand(args ...string) (string, error) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()
	return buf.String(), err
}

func TestRootCmd_Use(t *testing.T) {
	assert.Equal(t, "courserag", rootCmd.Use)
	assert.True(t, rootCmd.SilenceUsage)
}

func TestRootCmd_HasSubcommands(t *testing.T) {
	names := make([]string, 0)
	for _, cmd := range rootCmd.Commands() {
		names = append(names, cmd.Name())
	}

	for _, want := range []string{"ingest", "search", "courses", "outline", "settings", "mcp", "watch", "tui", "version"} {
		assert.Contains(t, names, want)
	}
}

func TestRootCmd_PersistentFlags(t *testing.T) {
	flag := rootCmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, flag)
	assert.Equal(t, "v", flag.Shorthand)
	assert.Equal(t, "false", flag.DefValue)

	flag = rootCmd.PersistentFlags().Lookup("config-dir")
	require.NotNil(t, flag)
	assert.Equal(t, "", flag.DefValue)

	flag = rootCmd.PersistentFlags().Lookup("env-file")
	require.NotNil(t, flag)
	assert.Equal(t, ".env", flag.DefValue)
}

func TestSetVersion(t *testing.T) {
	original := version
	defer func() { version = original }()

	SetVersion("1.2.3")

	assert.Equal(t, "1.2.3", version)
}

func TestInitRoot_UsesSettingsFactory(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	settingsService = nil
	var gotDir string
	SetFactories(Factories{
		Settings: func(dir string) (driving.SettingsService, error) {
			gotDir = dir
			return mocks.settings, nil
		},
	})

	_, err := executeCommand("settings", "keys", "--config-dir", "/tmp/courserag-test")
	configDir = ""

	require.NoError(t, err)
	assert.Equal(t, "/tmp/courserag-test", gotDir)
	assert.Same(t, mocks.settings, settingsService)
}

func TestInitRoot_SettingsFactoryError(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	settingsService = nil
	SetFactories(Factories{
		Settings: func(string) (driving.SettingsService, error) {
			return nil, errors.New("bad config")
		},
	})

	_, err := executeCommand("settings", "keys")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad config")
}

func TestInitRoot_WithoutSettingsFactory(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	settingsService = nil
	SetFactories(Factories{})

	_, err := executeCommand("settings", "keys")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "settings service not configured")
}

func TestLoadServices_BuildsOnce(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	loaded = nil
	builds := 0
	var gotOpts BuildOptions
	SetFactories(Factories{
		Services: func(_ context.Context, _ *domain.AppSettings, opts BuildOptions) (*Services, error) {
			builds++
			gotOpts = opts
			return &Services{Catalog: mocks.catalog}, nil
		},
	})

	_, err := loadServices(rootCmd, BuildOptions{Rebuild: true})
	require.NoError(t, err)
	_, err = loadServices(rootCmd, BuildOptions{})
	require.NoError(t, err)

	assert.Equal(t, 1, builds)
	assert.True(t, gotOpts.Rebuild)
}

func TestLoadServices_FactoryError(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	loaded = nil
	SetFactories(Factories{
		Services: func(context.Context, *domain.AppSettings, BuildOptions) (*Services, error) {
			return nil, domain.ErrEmbeddingUnavailable
		},
	})

	_, err := loadServices(rootCmd, BuildOptions{})

	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
	assert.Nil(t, loaded)
}

func TestCloseServices(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	closeServices()

	assert.Equal(t, 1, mocks.closed)
	assert.Nil(t, loaded)

	// Closing again is a no-op.
	closeServices()
	assert.Equal(t, 1, mocks.closed)
}
