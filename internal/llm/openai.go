package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"

	apperrors "github.com/smartinvest/markets-brief/internal/core/errors"
)

const (
	circuitBreakerThreshold = 5
	circuitBreakerTimeout   = 1 * time.Minute

	defaultMaxRetries     = 3
	defaultInitialBackoff = 2 * time.Second
)

// Options configures a chat client.
type Options struct {
	APIKey      string
	BaseURL     string // empty for the default OpenAI endpoint
	Model       string
	Temperature float32
	RPS         int
	Timeout     time.Duration
	MaxRetries  int

	// InitialBackoff is the first retry delay; it doubles per attempt.
	InitialBackoff time.Duration
}

type openaiClient struct {
	opts        Options
	client      *openai.Client
	logger      *zerolog.Logger
	rateLimiter *rate.Limiter

	// Circuit breaker state
	consecutiveFailures int
	circuitOpenUntil    time.Time
	mu                  sync.Mutex
}

// NewOpenAI creates a chat client against an OpenAI-compatible endpoint.
func NewOpenAI(opts Options, logger *zerolog.Logger) Client {
	cfg := openai.DefaultConfig(opts.APIKey)
	if opts.BaseURL != "" {
		cfg.BaseURL = opts.BaseURL
	}

	if opts.RPS <= 0 {
		opts.RPS = 1
	}

	if opts.MaxRetries <= 0 {
		opts.MaxRetries = defaultMaxRetries
	}

	if opts.InitialBackoff <= 0 {
		opts.InitialBackoff = defaultInitialBackoff
	}

	return &openaiClient{
		opts:        opts,
		client:      openai.NewClientWithConfig(cfg),
		logger:      logger,
		rateLimiter: rate.NewLimiter(rate.Limit(float64(opts.RPS)), 5),
	}
}

func (c *openaiClient) checkCircuit() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if time.Now().Before(c.circuitOpenUntil) {
		return fmt.Errorf("%w until %v", apperrors.ErrCircuitBreakerOpen, c.circuitOpenUntil)
	}

	return nil
}

func (c *openaiClient) recordSuccess() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.consecutiveFailures = 0
}

func (c *openaiClient) recordFailure() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.consecutiveFailures++
	if c.consecutiveFailures >= circuitBreakerThreshold {
		c.circuitOpenUntil = time.Now().Add(circuitBreakerTimeout)
		c.logger.Warn().
			Int("consecutive_failures", c.consecutiveFailures).
			Time("open_until", c.circuitOpenUntil).
			Msg("Circuit breaker opened")
	}
}

func (c *openaiClient) Chat(ctx context.Context, system, user string) (string, error) {
	return c.complete(ctx, system, user, 0, nil)
}

func (c *openaiClient) ChatJSON(ctx context.Context, system, user string, maxTokens int) (string, error) {
	format := &openai.ChatCompletionResponseFormat{
		Type: openai.ChatCompletionResponseFormatTypeJSONObject,
	}

	return c.complete(ctx, system, user, maxTokens, format)
}

func (c *openaiClient) ChatJSONSchema(ctx context.Context, name string, schema json.RawMessage, system, user string, maxTokens int) (string, error) {
	format := &openai.ChatCompletionResponseFormat{
		Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
		JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
			Name:   name,
			Schema: schema,
			Strict: true,
		},
	}

	return c.complete(ctx, system, user, maxTokens, format)
}

func (c *openaiClient) complete(ctx context.Context, system, user string, maxTokens int, format *openai.ChatCompletionResponseFormat) (string, error) {
	if err := c.checkCircuit(); err != nil {
		return "", err
	}

	req := openai.ChatCompletionRequest{
		Model:       c.opts.Model,
		Temperature: c.opts.Temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
	}

	if maxTokens > 0 {
		req.MaxTokens = maxTokens
	}

	if format != nil {
		req.ResponseFormat = format
	}

	backoff := c.opts.InitialBackoff

	var lastErr error

	for attempt := 0; attempt <= c.opts.MaxRetries; attempt++ {
		content, err := c.completeOnce(ctx, req)
		if err == nil {
			c.recordSuccess()

			return content, nil
		}

		lastErr = err
		c.recordFailure()

		if !isRetryable(err) {
			return "", err
		}

		if attempt == c.opts.MaxRetries {
			break
		}

		delay := withJitter(backoff)
		c.logger.Warn().
			Err(err).
			Dur("delay", delay).
			Int("attempt", attempt+1).
			Msg("chat completion failed, retrying")

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(delay):
		}

		backoff *= 2
	}

	return "", fmt.Errorf("%w: %w", apperrors.ErrRetriesExhausted, lastErr)
}

func (c *openaiClient) completeOnce(ctx context.Context, req openai.ChatCompletionRequest) (string, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter error: %w", err)
	}

	if c.opts.Timeout > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, c.opts.Timeout)
		defer cancel()
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", apperrors.ErrEmptyResponse
	}

	return resp.Choices[0].Message.Content, nil
}

// isRetryable reports whether the error is a rate limit, server error, or
// timeout worth retrying with backoff.
func isRetryable(err error) bool {
	var apiErr *openai.APIError
	if apperrors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode == 429 || apiErr.HTTPStatusCode >= 500
	}

	return apperrors.Is(err, context.DeadlineExceeded)
}

// withJitter spreads retries by ±25% to avoid thundering herds.
func withJitter(d time.Duration) time.Duration {
	jitter := 0.75 + rand.Float64()*0.5 //nolint:gosec // scheduling jitter

	return time.Duration(float64(d) * jitter)
}
