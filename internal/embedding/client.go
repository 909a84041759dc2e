// Package embedding turns text into fixed-length vectors via any
// OpenAI-compatible embeddings endpoint (Ollama /v1, OpenAI, ...).
package embedding

import (
	"context"
	"fmt"
	"sync"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/gabrielfortuny/neuroclinaical/pkg/logger"
	"github.com/gabrielfortuny/neuroclinaical/pkg/retry"
	"github.com/gabrielfortuny/neuroclinaical/pkg/utils"
)

const batchSize = 100

// Embedder is the provider abstraction the retriever depends on. Results are
// deterministic for identical input and returned in input order.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// VectorCache is satisfied by the redis cache client; a nil cache disables
// caching.
type VectorCache interface {
	GetEmbedding(ctx context.Context, textHash string) ([]float32, bool, error)
	SetEmbedding(ctx context.Context, textHash string, embedding []float32, ttl time.Duration) error
}

type Config struct {
	BaseURL    string
	APIKey     string
	Model      string
	TimeoutSec int
}

type Client struct {
	api         *openai.Client
	model       string
	cache       VectorCache
	retryConfig retry.Config
}

func NewClient(cfg Config, cache VectorCache) *Client {
	apiConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		apiConfig.BaseURL = cfg.BaseURL
	}

	retryConfig := retry.Config{
		MaxAttempts:    3,
		InitialDelay:   500 * time.Millisecond,
		MaxDelay:       5 * time.Second,
		Multiplier:     2.0,
		JitterFraction: 0.1,
		Logger:         logger.GetLogger(),
	}

	logger.Info("Embedding client initialized",
		zap.String("base_url", apiConfig.BaseURL),
		zap.String("model", cfg.Model),
	)

	return &Client{
		api:         openai.NewClientWithConfig(apiConfig),
		model:       cfg.Model,
		cache:       cache,
		retryConfig: retryConfig,
	}
}

var (
	sharedMu sync.Mutex
	shared   *Client
)

// Shared returns the process-wide embedding client, creating it on first use.
// The instance lives for the process lifetime; there is nothing to tear down
// beyond process exit.
func Shared(cfg Config, cache VectorCache) *Client {
	sharedMu.Lock()
	defer sharedMu.Unlock()

	if shared == nil {
		shared = NewClient(cfg, cache)
	}
	return shared
}

// Embed returns one vector per input text, in input order. Cached vectors are
// served from redis when a cache is configured; only misses hit the endpoint.
func (c *Client) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	vectors := make([][]float32, len(texts))
	var missing []int

	for i, text := range texts {
		if vec, ok := c.cached(ctx, text); ok {
			vectors[i] = vec
			continue
		}
		missing = append(missing, i)
	}

	for start := 0; start < len(missing); start += batchSize {
		end := start + batchSize
		if end > len(missing) {
			end = len(missing)
		}

		batch := make([]string, 0, end-start)
		for _, idx := range missing[start:end] {
			batch = append(batch, texts[idx])
		}

		resp, err := retry.DoWithResult(ctx, c.retryConfig, func() (openai.EmbeddingResponse, error) {
			return c.api.CreateEmbeddings(ctx, openai.EmbeddingRequest{
				Input: batch,
				Model: openai.EmbeddingModel(c.model),
			})
		})
		if err != nil {
			return nil, fmt.Errorf("failed to generate embeddings: %w", err)
		}

		if len(resp.Data) != len(batch) {
			return nil, fmt.Errorf("embedding count mismatch: got %d, expected %d", len(resp.Data), len(batch))
		}

		for j, data := range resp.Data {
			vec := make([]float32, len(data.Embedding))
			copy(vec, data.Embedding)

			idx := missing[start+j]
			vectors[idx] = vec
			c.store(ctx, texts[idx], vec)
		}
	}

	logger.Debug("Embeddings generated",
		zap.Int("total", len(texts)),
		zap.Int("cache_hits", len(texts)-len(missing)),
	)

	return vectors, nil
}

func (c *Client) cached(ctx context.Context, text string) ([]float32, bool) {
	if c.cache == nil {
		return nil, false
	}

	vec, ok, err := c.cache.GetEmbedding(ctx, utils.HashString(text))
	if err != nil {
		logger.Warn("Embedding cache lookup failed", zap.Error(err))
		return nil, false
	}
	return vec, ok
}

func (c *Client) store(ctx context.Context, text string, vec []float32) {
	if c.cache == nil {
		return
	}

	if err := c.cache.SetEmbedding(ctx, utils.HashString(text), vec, 24*time.Hour); err != nil {
		logger.Warn("Embedding cache store failed", zap.Error(err))
	}
}
