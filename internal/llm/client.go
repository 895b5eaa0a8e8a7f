// Package llm talks to an OpenAI-compatible chat completions endpoint. Model output is
// untrusted text; callers validate it with ExtractJSON or their own structural checks.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"alcyxob/coach-core/internal/config"
	"alcyxob/coach-core/internal/logger"
	"alcyxob/coach-core/internal/observability"
)

// Client generates text from a system and a user prompt.
type Client interface {
	GenerateText(ctx context.Context, system, user string) (string, error)
}

var ErrNotConfigured = errors.New("llm client is not configured")

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []message `json:"messages"`
	Temperature float64   `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message      message `json:"message"`
		FinishReason string  `json:"finish_reason"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

type httpError struct {
	StatusCode int
	Body       string
}

func (e *httpError) Error() string {
	return fmt.Sprintf("llm http %d: %s", e.StatusCode, e.Body)
}

type httpClient struct {
	baseURL       string
	apiKey        string
	model         string
	fallbackModel string
	temperature   float64
	maxRetries    int
	backoff       time.Duration
	http          *http.Client
	log           *logger.Logger
}

// NewHTTPClient builds a Client for cfg. The primary model is tried first with retries;
// on failure the fallback model, when set, gets the same treatment.
func NewHTTPClient(cfg config.LLMConfig, log *logger.Logger) Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 90 * time.Second
	}
	return &httpClient{
		baseURL:       strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:        cfg.APIKey,
		model:         cfg.Model,
		fallbackModel: cfg.FallbackModel,
		temperature:   cfg.Temperature,
		maxRetries:    cfg.MaxRetries,
		backoff:       time.Second,
		http:          &http.Client{Timeout: timeout},
		log:           log,
	}
}

func (c *httpClient) GenerateText(ctx context.Context, system, user string) (string, error) {
	ctx, span := observability.Tracer().Start(ctx, "llm.generate_text")
	defer span.End()

	if c.apiKey == "" || c.baseURL == "" {
		span.SetStatus(codes.Error, ErrNotConfigured.Error())
		return "", ErrNotConfigured
	}

	models := []string{c.model}
	if c.fallbackModel != "" && c.fallbackModel != c.model {
		models = append(models, c.fallbackModel)
	}

	var lastErr error
	for _, model := range models {
		span.SetAttributes(attribute.String("llm.model", model))
		text, err := c.withRetries(ctx, model, system, user)
		if err == nil {
			return text, nil
		}
		if ctx.Err() != nil {
			lastErr = err
			break
		}
		c.log.Warn("llm model failed", "model", model, "error", err)
		lastErr = err
	}
	span.RecordError(lastErr)
	span.SetStatus(codes.Error, lastErr.Error())
	return "", lastErr
}

func (c *httpClient) withRetries(ctx context.Context, model, system, user string) (string, error) {
	backoff := c.backoff
	for attempt := 0; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		text, resp, err := c.chatOnce(ctx, model, system, user)
		if err == nil {
			return text, nil
		}
		if !isRetryable(ctx, err) || attempt >= c.maxRetries {
			return "", err
		}

		sleepFor := backoff
		if resp != nil {
			if secs, perr := strconv.Atoi(strings.TrimSpace(resp.Header.Get("Retry-After"))); perr == nil && secs > 0 {
				sleepFor = time.Duration(secs) * time.Second
			}
		}
		if sleepFor > 10*time.Second {
			sleepFor = 10 * time.Second
		}
		sleepFor = jitter(sleepFor)
		c.log.Warn("llm request retrying", "model", model, "attempt", attempt+1, "sleep", sleepFor.String(), "error", err)

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(sleepFor):
		}
		backoff *= 2
	}
}

func (c *httpClient) chatOnce(ctx context.Context, model, system, user string) (string, *http.Response, error) {
	body, err := json.Marshal(chatRequest{
		Model: model,
		Messages: []message{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature: c.temperature,
	})
	if err != nil {
		return "", nil, fmt.Errorf("encode chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", resp, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", resp, &httpError{StatusCode: resp.StatusCode, Body: string(raw)}
	}

	var out chatResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", resp, fmt.Errorf("decode chat response: %w", err)
	}
	if out.Error != nil {
		return "", resp, fmt.Errorf("llm api error: %s", out.Error.Message)
	}
	if len(out.Choices) == 0 {
		return "", resp, errors.New("llm returned no choices")
	}
	return out.Choices[0].Message.Content, resp, nil
}

func isRetryable(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	var he *httpError
	if errors.As(err, &he) {
		return he.StatusCode == http.StatusRequestTimeout || he.StatusCode == http.StatusTooManyRequests || he.StatusCode >= 500
	}
	var ne net.Error
	if errors.As(err, &ne) {
		return ne.Timeout()
	}
	return false
}

// jitter spreads d by +/-20%.
func jitter(d time.Duration) time.Duration {
	if d <= 0 {
		return 0
	}
	delta := float64(d) * 0.2
	return time.Duration(float64(d) - delta + rand.Float64()*2*delta)
}
