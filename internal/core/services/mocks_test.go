package services

import (
	"context"
	"sync"

	"github.com/syang620/course-materials-rag-chatbot/internal/core/domain"
	"github.com/syang620/course-materials-rag-chatbot/internal/core/ports/driven"
)

// --- Mock implementations ---

// mockAIValidator implements driven.AIConfigValidator for testing.
type mockAIValidator struct {
	err error
	got *domain.EmbeddingSettings
}

func (m *mockAIValidator) ValidateEmbedding(cfg *domain.EmbeddingSettings) error {
	m.got = cfg
	return m.err
}

// queryCall records the arguments of a Collection.Query call.
type queryCall struct {
	text   string
	k      int
	filter domain.Filter
}

// mockCollection implements driven.Collection with canned results.
type mockCollection struct {
	mu      sync.Mutex
	name    string
	hits    []domain.Hit
	records map[string]domain.Record
	list    []domain.Record

	queryErr error
	getErr   error
	addErr   error
	listErr  error

	queries []queryCall
	added   []domain.Record
}

var _ driven.Collection = (*mockCollection)(nil)

func (m *mockCollection) Name() string { return m.name }

func (m *mockCollection) Add(_ context.Context, r domain.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.addErr != nil {
		return m.addErr
	}
	m.added = append(m.added, r)
	return nil
}

func (m *mockCollection) AddMany(_ context.Context, records []domain.Record) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.addErr != nil {
		return 0, m.addErr
	}
	m.added = append(m.added, records...)
	return len(records), nil
}

func (m *mockCollection) Get(_ context.Context, id string) (*domain.Record, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	r, ok := m.records[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &r, nil
}

func (m *mockCollection) Query(_ context.Context, text string, k int, filter domain.Filter) ([]domain.Hit, error) {
	m.mu.Lock()
	m.queries = append(m.queries, queryCall{text: text, k: k, filter: filter})
	m.mu.Unlock()
	if m.queryErr != nil {
		return nil, m.queryErr
	}
	if len(m.hits) > k {
		return m.hits[:k], nil
	}
	return m.hits, nil
}

func (m *mockCollection) Count(_ context.Context) (int, error) {
	return len(m.list), m.listErr
}

func (m *mockCollection) List(_ context.Context) ([]domain.Record, error) {
	return m.list, m.listErr
}

// mockDualIndex implements driven.DualIndex over two mock collections.
type mockDualIndex struct {
	courses  *mockCollection
	passages *mockCollection
	resetErr error
	resets   int
}

var _ driven.DualIndex = (*mockDualIndex)(nil)

func newMockDualIndex() *mockDualIndex {
	return &mockDualIndex{
		courses:  &mockCollection{name: domain.CollectionCourses, records: map[string]domain.Record{}},
		passages: &mockCollection{name: domain.CollectionPassages, records: map[string]domain.Record{}},
	}
}

func (m *mockDualIndex) Courses() driven.Collection  { return m.courses }
func (m *mockDualIndex) Passages() driven.Collection { return m.passages }
func (m *mockDualIndex) Close() error                { return nil }

func (m *mockDualIndex) Reset(_ context.Context) error {
	m.resets++
	return m.resetErr
}

// mockResolver implements driving.CourseResolver.
type mockResolver struct {
	titles map[string]string
	err    error
	calls  []string
}

func (m *mockResolver) Resolve(_ context.Context, name string) (string, error) {
	m.calls = append(m.calls, name)
	if m.err != nil {
		return "", m.err
	}
	title, ok := m.titles[name]
	if !ok {
		return "", domain.ErrNotFound
	}
	return title, nil
}

// mockSearchService implements driving.SearchService.
type mockSearchService struct {
	outcome *domain.SearchOutcome
	err     error
	got     domain.SearchRequest
}

func (m *mockSearchService) Search(_ context.Context, req domain.SearchRequest) (*domain.SearchOutcome, error) {
	m.got = req
	if m.err != nil {
		return nil, m.err
	}
	out := *m.outcome
	out.Request = req
	return &out, nil
}

// mockTool implements driving.Tool and driving.SourceTracker.
type mockTool struct {
	name    string
	result  string
	sources []domain.Source
	args    map[string]any
}

func (m *mockTool) Definition() domain.ToolDefinition {
	return domain.ToolDefinition{Name: m.name}
}

func (m *mockTool) Execute(_ context.Context, args map[string]any) (string, error) {
	m.args = args
	return m.result, nil
}

func (m *mockTool) LastSources() []domain.Source { return m.sources }
func (m *mockTool) ResetSources()                { m.sources = nil }

// plainTool implements driving.Tool without source tracking.
type plainTool struct{ name string }

func (p plainTool) Definition() domain.ToolDefinition { return domain.ToolDefinition{Name: p.name} }

func (p plainTool) Execute(context.Context, map[string]any) (string, error) { return p.name, nil }
