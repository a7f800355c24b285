package ai

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syang620/course-materials-rag-chatbot/internal/adapters/driven/embedding/hashing"
	ollamaembed "github.com/syang620/course-materials-rag-chatbot/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/syang620/course-materials-rag-chatbot/internal/adapters/driven/embedding/openai"
	"github.com/syang620/course-materials-rag-chatbot/internal/adapters/driven/embedding/ratelimit"
	"github.com/syang620/course-materials-rag-chatbot/internal/core/domain"
)

func TestCreateEmbeddingService(t *testing.T) {
	tests := []struct {
		name     string
		settings *domain.EmbeddingSettings
		wantType any
		wantErr  bool
	}{
		{"nil settings", nil, nil, true},
		{"hashing", &domain.EmbeddingSettings{Provider: domain.EmbeddingProviderHashing}, &hashing.EmbeddingService{}, false},
		{"ollama", &domain.EmbeddingSettings{Provider: domain.EmbeddingProviderOllama}, &ollamaembed.EmbeddingService{}, false},
		{"openai", &domain.EmbeddingSettings{Provider: domain.EmbeddingProviderOpenAI, APIKey: "sk"}, &openaiembed.EmbeddingService{}, false},
		{"openai without key", &domain.EmbeddingSettings{Provider: domain.EmbeddingProviderOpenAI}, nil, true},
		{"unknown provider", &domain.EmbeddingSettings{Provider: "anthropic"}, nil, true},
		{
			"rate limited ollama",
			&domain.EmbeddingSettings{Provider: domain.EmbeddingProviderOllama, RequestsPerSecond: 5},
			&ratelimit.EmbeddingService{},
			false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := CreateEmbeddingService(tt.settings)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, svc)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, tt.wantType, svc)
		})
	}
}

func TestCreateEmbeddingService_OllamaModel(t *testing.T) {
	svc, err := CreateEmbeddingService(&domain.EmbeddingSettings{
		Provider: domain.EmbeddingProviderOllama,
		Model:    "all-minilm",
	})
	require.NoError(t, err)
	assert.Equal(t, "all-minilm", svc.ModelName())
}

func TestCreateAndValidateEmbeddingService(t *testing.T) {
	t.Run("hashing always validates", func(t *testing.T) {
		svc, err := CreateAndValidateEmbeddingService(&domain.EmbeddingSettings{Provider: domain.EmbeddingProviderHashing})
		require.NoError(t, err)
		assert.Equal(t, "hashing-1024", svc.ModelName())
	})

	t.Run("unreachable ollama", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()

		svc, err := CreateAndValidateEmbeddingService(&domain.EmbeddingSettings{
			Provider: domain.EmbeddingProviderOllama,
			BaseURL:  url,
		})
		assert.Nil(t, svc)
		assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
	})

	t.Run("reachable ollama", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"models":[]}`))
		}))
		defer srv.Close()

		svc, err := CreateAndValidateEmbeddingService(&domain.EmbeddingSettings{
			Provider: domain.EmbeddingProviderOllama,
			BaseURL:  srv.URL,
		})
		require.NoError(t, err)
		assert.NotNil(t, svc)
	})

	t.Run("misconfigured", func(t *testing.T) {
		_, err := CreateAndValidateEmbeddingService(&domain.EmbeddingSettings{Provider: domain.EmbeddingProviderOpenAI})
		assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
	})
}

func TestValidateEmbeddingConfig(t *testing.T) {
	assert.NoError(t, ValidateEmbeddingConfig(nil))
	assert.NoError(t, ValidateEmbeddingConfig(&domain.EmbeddingSettings{Provider: domain.EmbeddingProviderHashing}))
	assert.Error(t, ValidateEmbeddingConfig(&domain.EmbeddingSettings{Provider: "nope"}))
}
