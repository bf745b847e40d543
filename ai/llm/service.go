// Package llm wraps the completion provider behind a small streaming
// interface. The provider speaks the OpenAI-compatible protocol; xAI is
// the default endpoint.
package llm

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
)

// Message is a provider-agnostic chat message. Text holds the
// concatenated text content; Images holds attachment URLs (data URIs or
// remote) forwarded as multi-content parts.
type Message struct {
	Role   string // system, user, assistant
	Text   string
	Images []string
}

// CallStats carries timing and token usage for a single completion call.
type CallStats struct {
	PromptTokens       int   `json:"prompt_tokens"`
	CompletionTokens   int   `json:"completion_tokens"`
	TotalTokens        int   `json:"total_tokens"`
	ThinkingDurationMs int64 `json:"thinking_duration_ms"`
	TotalDurationMs    int64 `json:"total_duration_ms"`
}

// Service is the completion service interface.
type Service interface {
	// ChatStream performs streaming chat against the given model. Returns
	// content channel, stats channel, and error channel. The stats channel
	// receives the final stats when the stream completes.
	ChatStream(ctx context.Context, model string, messages []Message) (<-chan string, <-chan *CallStats, <-chan error)

	// Warmup sends a lightweight ping request to establish and warm up the
	// provider connection.
	Warmup(ctx context.Context)
}

// Config represents completion service configuration.
type Config struct {
	APIKey      string
	BaseURL     string // default: https://api.x.ai/v1
	Model       string // model used by Warmup
	MaxTokens   int    // 0 = provider default
	Temperature float32
	Timeout     int // request timeout in seconds (default: 120)
}

type service struct {
	client      *openai.Client
	warmupModel string
	maxTokens   int
	temperature float32
	timeout     int
}

// NewService creates a new completion Service.
func NewService(cfg *Config) (Service, error) {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://api.x.ai/v1"
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	clientConfig.BaseURL = baseURL
	clientConfig.HTTPClient = newHTTPClient()

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 120
	}

	return &service{
		client:      openai.NewClientWithConfig(clientConfig),
		warmupModel: cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		timeout:     timeout,
	}, nil
}

func (s *service) ChatStream(ctx context.Context, model string, messages []Message) (<-chan string, <-chan *CallStats, <-chan error) {
	contentChan := make(chan string, 10)
	statsChan := make(chan *CallStats, 1)
	errChan := make(chan error, 1)

	go func() {
		defer close(contentChan)
		defer close(statsChan)
		defer close(errChan)

		ctx, cancel := context.WithTimeout(ctx, time.Duration(s.timeout)*time.Second)
		defer cancel()

		req := openai.ChatCompletionRequest{
			Model:       model,
			MaxTokens:   s.maxTokens,
			Temperature: s.temperature,
			Messages:    convertMessages(messages),
			StreamOptions: &openai.StreamOptions{
				IncludeUsage: true,
			},
		}

		startTime := time.Now()
		var firstChunkTime time.Time

		slog.Debug("llm: stream starting", "model", model, "messages", len(messages))
		stream, err := s.client.CreateChatCompletionStream(ctx, req)
		if err != nil {
			slog.Error("llm: failed to create stream", "model", model, "error", err)
			select {
			case errChan <- fmt.Errorf("create stream failed: %w", err):
			case <-ctx.Done():
			}
			return
		}
		defer func() { _ = stream.Close() }()

		chunkCount := 0

		finalStats := func(usage *openai.Usage) *CallStats {
			stats := &CallStats{
				TotalDurationMs: time.Since(startTime).Milliseconds(),
			}
			if !firstChunkTime.IsZero() {
				stats.ThinkingDurationMs = firstChunkTime.Sub(startTime).Milliseconds()
			}
			if usage != nil {
				stats.PromptTokens = usage.PromptTokens
				stats.CompletionTokens = usage.CompletionTokens
				stats.TotalTokens = usage.TotalTokens
			}
			return stats
		}

		for {
			response, err := stream.Recv()
			if err != nil {
				if strings.Contains(err.Error(), "EOF") {
					slog.Debug("llm: stream completed", "model", model, "chunks", chunkCount)
					statsChan <- finalStats(nil)
					return
				}
				slog.Error("llm: stream receive error", "model", model, "error", err, "chunks_so_far", chunkCount)
				select {
				case errChan <- fmt.Errorf("stream recv failed: %w", err):
				case <-ctx.Done():
				}
				return
			}

			if firstChunkTime.IsZero() && len(response.Choices) > 0 && response.Choices[0].Delta.Content != "" {
				firstChunkTime = time.Now()
			}

			// The usage frame arrives after the last content chunk.
			if response.Usage != nil && response.Usage.TotalTokens > 0 {
				stats := finalStats(response.Usage)
				slog.Debug("llm: stream finished with usage",
					"model", model,
					"chunks", chunkCount,
					"total_tokens", stats.TotalTokens,
					"duration_ms", stats.TotalDurationMs,
				)
				statsChan <- stats
				return
			}

			if len(response.Choices) == 0 {
				continue
			}

			if delta := response.Choices[0].Delta.Content; delta != "" {
				chunkCount++
				select {
				case contentChan <- delta:
				case <-ctx.Done():
					slog.Warn("llm: context cancelled during stream send", "chunks", chunkCount)
					return
				}
			}

			if response.Choices[0].FinishReason != "" {
				slog.Debug("llm: stream finished",
					"model", model,
					"reason", response.Choices[0].FinishReason,
					"chunks", chunkCount,
				)
				statsChan <- finalStats(nil)
				return
			}
		}
	}()

	return contentChan, statsChan, errChan
}

func (s *service) Warmup(ctx context.Context) {
	warmupCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	startTime := time.Now()

	req := openai.ChatCompletionRequest{
		Model:       s.warmupModel,
		MaxTokens:   1,
		Temperature: 0,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: "Hi"},
		},
	}

	_, err := s.client.CreateChatCompletion(warmupCtx, req)
	if err != nil {
		slog.Warn("llm: warmup ping failed (service will still work, first request may be slower)",
			"model", s.warmupModel,
			"error", err,
			"duration_ms", time.Since(startTime).Milliseconds(),
		)
		return
	}

	slog.Info("llm: connection warmed up",
		"model", s.warmupModel,
		"duration_ms", time.Since(startTime).Milliseconds(),
	)
}

func newHTTPClient() *http.Client {
	return &http.Client{
		Timeout: 0, // per-request deadlines come from the context
		Transport: &http.Transport{
			DialContext: (&net.Dialer{
				Timeout:   30 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			MaxIdleConns:          100,
			IdleConnTimeout:       90 * time.Second,
			TLSHandshakeTimeout:   10 * time.Second,
			ExpectContinueTimeout: 1 * time.Second,
		},
	}
}
