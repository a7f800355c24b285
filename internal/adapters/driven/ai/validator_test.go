package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syang620/course-materials-rag-chatbot/internal/core/domain"
	"github.com/syang620/course-materials-rag-chatbot/internal/core/ports/driven"
)

func TestNewConfigValidator(t *testing.T) {
	v := NewConfigValidator()
	require.NotNil(t, v)
}

func TestConfigValidator_ImplementsInterface(t *testing.T) {
	var _ driven.AIConfigValidator = NewConfigValidator()
}

func TestConfigValidator_ValidateEmbedding(t *testing.T) {
	v := NewConfigValidator()
	assert.NoError(t, v.ValidateEmbedding(nil))
	assert.NoError(t, v.ValidateEmbedding(&domain.EmbeddingSettings{Provider: domain.EmbeddingProviderHashing}))
	assert.Error(t, v.ValidateEmbedding(&domain.EmbeddingSettings{Provider: domain.EmbeddingProviderOpenAI}))
}
