package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/syang620/course-materials-rag-chatbot/internal/adapters/driven/ai"
	"github.com/syang620/course-materials-rag-chatbot/internal/adapters/driven/config/file"
	"github.com/syang620/course-materials-rag-chatbot/internal/adapters/driven/storage/memory"
	"github.com/syang620/course-materials-rag-chatbot/internal/adapters/driven/storage/sqlite"
	"github.com/syang620/course-materials-rag-chatbot/internal/adapters/driving/cli"
	"github.com/syang620/course-materials-rag-chatbot/internal/core/domain"
	"github.com/syang620/course-materials-rag-chatbot/internal/core/ports/driven"
	"github.com/syang620/course-materials-rag-chatbot/internal/core/ports/driving"
	"github.com/syang620/course-materials-rag-chatbot/internal/core/services"
	"github.com/syang620/course-materials-rag-chatbot/internal/coursedoc"
	"github.com/syang620/course-materials-rag-chatbot/internal/logger"
	"github.com/syang620/course-materials-rag-chatbot/internal/normalisers"
	"github.com/syang620/course-materials-rag-chatbot/internal/postprocessors/chunker"
)

// newSettingsService opens the TOML config store in configDir.
func newSettingsService(configDir string) (driving.SettingsService, error) {
	store, err := file.NewConfigStore(configDir)
	if err != nil {
		return nil, err
	}
	return services.NewSettingsService(store, ai.NewConfigValidator()), nil
}

// newServices builds the embedding service, the dual index and the
// services that run on top of them.
func newServices(_ context.Context, settings *domain.AppSettings, opts cli.BuildOptions) (*cli.Services, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	embedder, err := ai.CreateAndValidateEmbeddingService(&settings.Embedding)
	if err != nil {
		return nil, err
	}
	logger.Debug("embedding model %s (%d dimensions)", embedder.ModelName(), embedder.Dimensions())

	index, err := openIndex(settings.Index, embedder, opts)
	if err != nil {
		embedder.Close()
		return nil, err
	}

	resolver := services.NewResolver(index.Courses(), settings.Search.MinSimilarity)
	search := services.NewSearchService(index, resolver, settings.Search.MaxResults)
	catalog := services.NewCatalogService(index.Courses(), resolver)
	ingest := services.NewIngestService(
		normalisers.NewDefaultRegistry(),
		coursedoc.NewParser(),
		chunker.FromSettings(settings.Chunking),
		index,
	)

	tools := services.NewToolRegistry()
	tools.Register(services.NewSearchTool(search))
	tools.Register(services.NewOutlineTool(catalog))

	return &cli.Services{
		Ingest:  ingest,
		Search:  search,
		Catalog: catalog,
		Tools:   tools,
		Close: func() error {
			return errors.Join(index.Close(), embedder.Close())
		},
	}, nil
}

// openIndex opens the configured dual index backend.
func openIndex(cfg domain.IndexSettings, embedder driven.EmbeddingService, opts cli.BuildOptions) (driven.DualIndex, error) {
	switch cfg.Backend {
	case domain.IndexBackendMemory:
		logger.Debug("using in-memory index")
		return memory.NewDualIndex(embedder), nil

	case domain.IndexBackendSQLite:
		var storeOpts []sqlite.Option
		if opts.Rebuild {
			storeOpts = append(storeOpts, sqlite.WithModelReset())
		}
		store, err := sqlite.NewStore(cfg.Path, embedder, storeOpts...)
		if err != nil {
			return nil, fmt.Errorf("opening index: %w", err)
		}
		logger.Debug("using index %s", store.Path())
		return store, nil

	default:
		return nil, fmt.Errorf("%w: unknown index backend %q", domain.ErrInvalidInput, cfg.Backend)
	}
}
