// Package llm talks to the generative model behind an Ollama-compatible
// /api/generate endpoint.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/gabrielfortuny/neuroclinaical/pkg/circuitbreaker"
	"github.com/gabrielfortuny/neuroclinaical/pkg/logger"
)

// Config is passed explicitly so tests can point the client at a fake server
// instead of reading globals.
type Config struct {
	BaseURL    string
	Model      string
	TimeoutSec int
}

type Client struct {
	baseURL    string
	model      string
	httpClient *http.Client
	cb         *circuitbreaker.CircuitBreaker
}

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type generateResponse struct {
	Response string `json:"response"`
}

func NewClient(cfg Config) *Client {
	timeout := time.Duration(cfg.TimeoutSec) * time.Second
	if cfg.TimeoutSec <= 0 {
		timeout = 120 * time.Second
	}

	cb := circuitbreaker.NewCircuitBreaker("ollama", circuitbreaker.Config{
		MaxRequests:      5,
		Interval:         time.Minute,
		Timeout:          30 * time.Second,
		FailureThreshold: 5,
		SuccessThreshold: 2,
		Logger:           logger.GetLogger(),
	})

	logger.Info("Completion client initialized",
		zap.String("base_url", cfg.BaseURL),
		zap.String("model", cfg.Model),
	)

	return &Client{
		baseURL:    cfg.BaseURL,
		model:      cfg.Model,
		httpClient: &http.Client{Timeout: timeout},
		cb:         cb,
	}
}

// Complete sends one prompt to the model and returns its raw completion text.
// It never returns an error: transport failures, non-2xx responses, and
// undecodable bodies all collapse to an empty string, which downstream
// normalizers treat as zero valid records. Each call is independent; no
// session state is kept between calls.
func (c *Client) Complete(ctx context.Context, prompt string) string {
	var completion string

	err := c.cb.Execute(ctx, func() error {
		text, err := c.generate(ctx, prompt)
		if err != nil {
			return err
		}
		completion = text
		return nil
	})

	if err != nil {
		logger.Warn("Completion request failed",
			zap.Error(err),
			zap.Int("prompt_length", len(prompt)),
		)
		return ""
	}

	return completion
}

func (c *Client) generate(ctx context.Context, prompt string) (string, error) {
	payload, err := json.Marshal(generateRequest{
		Model:  c.model,
		Prompt: prompt,
		Stream: false,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, resp.Body)
		return "", fmt.Errorf("model endpoint returned status %d", resp.StatusCode)
	}

	var decoded generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	logger.Debug("Completion generated",
		zap.Int("prompt_length", len(prompt)),
		zap.Int("response_length", len(decoded.Response)),
	)

	return decoded.Response, nil
}
