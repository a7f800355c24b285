// Package ratelimit throttles calls to a remote embedding service.
package ratelimit

import (
	"context"
	"math"

	"golang.org/x/time/rate"

	"github.com/syang620/course-materials-rag-chatbot/internal/core/ports/driven"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// Config holds rate limiting configuration.
type Config struct {
	// RequestsPerSecond is the sustained number of texts embedded per second.
	RequestsPerSecond float64

	// BurstSize is the maximum burst size. Defaults to ceil(RequestsPerSecond).
	BurstSize int
}

// EmbeddingService wraps another embedding service with a token bucket.
// Each embedded text consumes one token.
type EmbeddingService struct {
	inner   driven.EmbeddingService
	limiter *rate.Limiter
	burst   int
}

// Wrap returns inner unchanged when RequestsPerSecond is not positive,
// otherwise a rate-limited decorator.
func Wrap(inner driven.EmbeddingService, cfg Config) driven.EmbeddingService {
	if cfg.RequestsPerSecond <= 0 {
		return inner
	}
	return New(inner, cfg)
}

// New creates a rate-limited decorator.
func New(inner driven.EmbeddingService, cfg Config) *EmbeddingService {
	burst := cfg.BurstSize
	if burst <= 0 {
		burst = int(math.Ceil(cfg.RequestsPerSecond))
	}
	if burst < 1 {
		burst = 1
	}
	return &EmbeddingService{
		inner:   inner,
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst),
		burst:   burst,
	}
}

// Embed waits for one token, then embeds.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return s.inner.Embed(ctx, text)
}

// EmbedBatch embeds texts in slices no larger than the burst size,
// waiting for one token per text before each slice.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	out := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += s.burst {
		end := min(start+s.burst, len(texts))
		if err := s.limiter.WaitN(ctx, end-start); err != nil {
			return nil, err
		}
		batch, err := s.inner.EmbedBatch(ctx, texts[start:end])
		if err != nil {
			return nil, err
		}
		out = append(out, batch...)
	}
	return out, nil
}

// Dimensions returns the wrapped service's vector size.
func (s *EmbeddingService) Dimensions() int {
	return s.inner.Dimensions()
}

// ModelName returns the wrapped service's model name.
func (s *EmbeddingService) ModelName() string {
	return s.inner.ModelName()
}

// Ping is not throttled.
func (s *EmbeddingService) Ping(ctx context.Context) error {
	return s.inner.Ping(ctx)
}

// Close closes the wrapped service.
func (s *EmbeddingService) Close() error {
	return s.inner.Close()
}
