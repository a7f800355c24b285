package settings

import (
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syang620/course-materials-rag-chatbot/internal/adapters/driving/tui/messages"
	"github.com/syang620/course-materials-rag-chatbot/internal/core/domain"
)

type mockSettingsService struct {
	entries  []domain.SettingEntry
	err      error
	setErr   error
	setCalls [][2]string
}

func (m *mockSettingsService) Get() (*domain.AppSettings, error) {
	s := domain.DefaultAppSettings()
	return &s, m.err
}

func (m *mockSettingsService) Save(_ *domain.AppSettings) error { return nil }

func (m *mockSettingsService) Set(key, value string) error {
	m.setCalls = append(m.setCalls, [2]string{key, value})
	if m.setErr != nil {
		return m.setErr
	}
	for i := range m.entries {
		if m.entries[i].Key == key {
			m.entries[i].Value = value
			m.entries[i].Source = domain.SettingSourceFile
		}
	}
	return nil
}

func (m *mockSettingsService) Keys() []string { return nil }

func (m *mockSettingsService) Entries() ([]domain.SettingEntry, error) {
	if m.err != nil {
		return nil, m.err
	}
	out := make([]domain.SettingEntry, len(m.entries))
	copy(out, m.entries)
	return out, nil
}

func (m *mockSettingsService) Validate() error { return nil }

func (m *mockSettingsService) GetDefaults() domain.AppSettings { return domain.DefaultAppSettings() }

func (m *mockSettingsService) ValidateEmbeddingConfig() error { return nil }

func testEntries() []domain.SettingEntry {
	return []domain.SettingEntry{
		{Key: "chunking.size", Env: "CHUNK_SIZE", Value: "800", Source: domain.SettingSourceDefault},
		{Key: "search.max_results", Env: "MAX_RESULTS", Value: "3", Source: domain.SettingSourceFile},
		{Key: "embedding.api_key", Env: "OPENAI_API_KEY", Value: "sk-abcdefghijkl",
			Source: domain.SettingSourceEnv, Secret: true},
	}
}

func loadedView(t *testing.T, svc *mockSettingsService) *View {
	t.Helper()
	v := NewView(nil, svc)
	v.SetDimensions(100, 30)
	cmd := v.Init()
	require.NotNil(t, cmd)
	v.Update(cmd())
	return v
}

func press(v *View, s string) tea.Cmd {
	var msg tea.KeyMsg
	switch s {
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		msg = tea.KeyMsg{Type: tea.KeyEsc}
	case "down":
		msg = tea.KeyMsg{Type: tea.KeyDown}
	case "up":
		msg = tea.KeyMsg{Type: tea.KeyUp}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
	_, cmd := v.Update(msg)
	return cmd
}

func TestNewView(t *testing.T) {
	v := NewView(nil, nil)

	require.NotNil(t, v)
	assert.NotNil(t, v.styles)
	assert.False(t, v.Editing())
}

func TestView_Load(t *testing.T) {
	v := loadedView(t, &mockSettingsService{entries: testEntries()})

	require.Len(t, v.Entries(), 3)
	out := v.View()
	assert.Contains(t, out, "chunking.size")
	assert.Contains(t, out, "800")
	assert.Contains(t, out, "(default)")
	assert.Contains(t, out, "(file)")
	assert.Contains(t, out, "(env OPENAI_API_KEY)")
	assert.Contains(t, out, "sk-a...ijkl")
	assert.NotContains(t, out, "sk-abcdefghijkl")
}

func TestView_Load_Error(t *testing.T) {
	v := loadedView(t, &mockSettingsService{err: errors.New("bad config")})

	assert.EqualError(t, v.Err(), "bad config")
	assert.Contains(t, v.View(), "Error: bad config")
}

func TestView_Load_NoService(t *testing.T) {
	v := NewView(nil, nil)

	v.Update(v.Init()())

	assert.ErrorIs(t, v.Err(), ErrNoSettingsService)
}

func TestView_Navigation(t *testing.T) {
	v := loadedView(t, &mockSettingsService{entries: testEntries()})

	press(v, "down")
	press(v, "j")
	press(v, "j")
	assert.Equal(t, 2, v.Selected())

	press(v, "up")
	press(v, "k")
	press(v, "k")
	assert.Equal(t, 0, v.Selected())
}

func TestView_EditAndSave(t *testing.T) {
	svc := &mockSettingsService{entries: testEntries()}
	v := loadedView(t, svc)
	press(v, "down")

	press(v, "enter")
	require.True(t, v.Editing())
	assert.Contains(t, v.View(), "search.max_results: ")

	press(v, "7")
	saveCmd := press(v, "enter")
	require.NotNil(t, saveCmd)
	assert.False(t, v.Editing())

	_, reload := v.Update(saveCmd())
	require.NotNil(t, reload)
	v.Update(reload())

	assert.Equal(t, [][2]string{{"search.max_results", "7"}}, svc.setCalls)
	assert.Equal(t, "7", v.Entries()[1].Value)
	assert.Contains(t, v.View(), "Saved search.max_results")
}

func TestView_EditRejected(t *testing.T) {
	svc := &mockSettingsService{
		entries: testEntries(),
		setErr:  errors.New("invalid input: chunk size must be positive"),
	}
	v := loadedView(t, svc)

	press(v, "enter")
	press(v, "0")
	saveCmd := press(v, "enter")
	require.NotNil(t, saveCmd)
	_, cmd := v.Update(saveCmd())

	assert.Nil(t, cmd)
	assert.Contains(t, v.View(), "chunk size must be positive")
	assert.Equal(t, "800", v.Entries()[0].Value)
}

func TestView_EditCancelled(t *testing.T) {
	svc := &mockSettingsService{entries: testEntries()}
	v := loadedView(t, svc)

	press(v, "enter")
	press(v, "9")
	press(v, "esc")

	assert.False(t, v.Editing())
	assert.Empty(t, svc.setCalls)
}

func TestView_EditEmptyIgnored(t *testing.T) {
	svc := &mockSettingsService{entries: testEntries()}
	v := loadedView(t, svc)

	press(v, "enter")
	cmd := press(v, "enter")

	assert.Nil(t, cmd)
	assert.Empty(t, svc.setCalls)
}

func TestView_Reload(t *testing.T) {
	svc := &mockSettingsService{}
	v := loadedView(t, svc)
	svc.entries = testEntries()

	cmd := press(v, "r")
	require.NotNil(t, cmd)
	v.Update(cmd())

	assert.Len(t, v.Entries(), 3)
}

func TestView_Back(t *testing.T) {
	v := loadedView(t, &mockSettingsService{entries: testEntries()})

	cmd := press(v, "esc")

	require.NotNil(t, cmd)
	assert.Equal(t, messages.ViewChanged{View: messages.ViewMenu}, cmd())
}

func TestView_Reset(t *testing.T) {
	v := loadedView(t, &mockSettingsService{entries: testEntries()})
	press(v, "enter")

	v.Reset()

	assert.False(t, v.Editing())
	assert.NoError(t, v.Err())
}
