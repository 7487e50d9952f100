package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/nachoal/parts-agent-go/internal/metrics"
	"github.com/nachoal/parts-agent-go/llm"
)

const (
	defaultBaseURL = "https://api.openai.com/v1"
	defaultTimeout = 30 * time.Second
	defaultModel   = "gpt-4o-mini"
)

// Client implements llm.Client for any OpenAI-compatible chat-completions endpoint
type Client struct {
	options    llm.ClientOptions
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient creates a new OpenAI client
func NewClient(opts ...llm.ClientOption) (*Client, error) {
	options := llm.ClientOptions{
		BaseURL:      defaultBaseURL,
		Timeout:      defaultTimeout,
		DefaultModel: defaultModel,
		Headers:      make(map[string]string),
		Temperature:  0.3,
		MaxTokens:    500,
	}

	// Apply options
	for _, opt := range opts {
		opt(&options)
	}

	// Get API key from environment if not provided
	if options.APIKey == "" {
		options.APIKey = os.Getenv("OPENAI_API_KEY")
		if options.APIKey == "" {
			return nil, fmt.Errorf("OpenAI API key not provided")
		}
	}
	options.BaseURL = strings.TrimRight(options.BaseURL, "/")

	c := &Client{
		options: options,
		httpClient: &http.Client{
			Timeout: options.Timeout,
		},
	}
	if options.RequestsPerMinute > 0 {
		c.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(options.RequestsPerMinute)), 1)
	}

	return c, nil
}

// Options returns the effective client options
func (c *Client) Options() llm.ClientOptions {
	return c.options
}

// Chat sends a chat request. Failures come back as *llm.APIError.
func (c *Client) Chat(ctx context.Context, request *llm.ChatRequest) (*llm.ChatResponse, error) {
	body, err := json.Marshal(c.applyDefaults(request))
	if err != nil {
		return nil, &llm.APIError{Kind: llm.ErrUnexpected, Message: "failed to marshal request", Err: err}
	}

	var response *llm.ChatResponse
	err = c.doWithRetries(ctx, func() error {
		start := time.Now()
		resp, err := c.send(ctx, body)
		metrics.RecordLLMRequest(outcomeOf(err), time.Since(start).Seconds())
		if err != nil {
			return err
		}
		response = resp
		return nil
	})
	if err != nil {
		return nil, err
	}

	return response, nil
}

// Close cleans up resources
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

// applyDefaults fills unset request fields from the client options without
// mutating the caller's request.
func (c *Client) applyDefaults(request *llm.ChatRequest) *llm.ChatRequest {
	req := *request
	req.Stream = false
	if req.Model == "" {
		req.Model = c.options.DefaultModel
	}
	if req.Temperature == nil {
		req.Temperature = llm.Float32Ptr(c.options.Temperature)
	}
	if req.MaxTokens == nil && c.options.MaxTokens > 0 {
		req.MaxTokens = llm.IntPtr(c.options.MaxTokens)
	}
	if req.TopP == nil && c.options.TopP > 0 {
		req.TopP = llm.Float32Ptr(c.options.TopP)
	}
	if req.FrequencyPenalty == nil && c.options.FrequencyPenalty != 0 {
		req.FrequencyPenalty = llm.Float32Ptr(c.options.FrequencyPenalty)
	}
	if req.PresencePenalty == nil && c.options.PresencePenalty != 0 {
		req.PresencePenalty = llm.Float32Ptr(c.options.PresencePenalty)
	}
	// tool_choice without tools is rejected by the API
	if len(req.Tools) == 0 {
		req.ToolChoice = nil
	}
	return &req
}

// send performs a single POST and classifies any failure
func (c *Client) send(ctx context.Context, body []byte) (*llm.ChatResponse, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, classifyTransportError(err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.options.BaseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, &llm.APIError{Kind: llm.ErrUnexpected, Message: "failed to create request", Err: err}
	}
	c.setHeaders(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, classifyTransportError(err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, classifyTransportError(err)
	}

	if resp.StatusCode != http.StatusOK {
		apiErr := &llm.APIError{
			Kind:       llm.ClassifyStatus(resp.StatusCode),
			StatusCode: resp.StatusCode,
			Message:    upstreamMessage(respBody),
		}
		if resp.StatusCode == http.StatusTooManyRequests {
			apiErr.RetryAfter = parseRetryAfter(resp.Header.Get("Retry-After"))
		}
		return nil, apiErr
	}

	response := &llm.ChatResponse{}
	if err := json.Unmarshal(respBody, response); err != nil {
		return nil, &llm.APIError{Kind: llm.ErrUnexpected, Message: "failed to parse response", Err: err}
	}
	if response.Error != nil {
		return nil, &llm.APIError{Kind: llm.ErrUnexpected, Message: response.Error.Message}
	}

	return response, nil
}

// setHeaders sets common headers for requests
func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.options.APIKey)
	req.Header.Set("User-Agent", "parts-agent-go/1.0")

	if c.options.Organization != "" {
		req.Header.Set("OpenAI-Organization", c.options.Organization)
	}

	// Add custom headers
	for k, v := range c.options.Headers {
		req.Header.Set(k, v)
	}
}

// doWithRetries executes fn, retrying only failures marked retryable
func (c *Client) doWithRetries(ctx context.Context, fn func() error) error {
	var lastErr error

	for i := 0; i <= c.options.MaxRetries; i++ {
		if i > 0 {
			// Linear backoff
			delay := time.Duration(i) * time.Second
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return classifyTransportError(ctx.Err())
			}
			slog.Debug("retrying chat completion", "attempt", i, "error", lastErr)
		}

		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err
		if !llm.IsRetryable(err) {
			return err
		}
	}

	return lastErr
}

func classifyTransportError(err error) *llm.APIError {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return &llm.APIError{Kind: llm.ErrTimeout, Err: err}
	}
	if errors.Is(err, context.Canceled) {
		return &llm.APIError{Kind: llm.ErrUnexpected, Message: "request canceled", Err: err}
	}
	return &llm.APIError{Kind: llm.ErrNetwork, Err: err}
}

// upstreamMessage pulls error.message out of an error body, falling back to
// a bounded slice of the raw body.
func upstreamMessage(body []byte) string {
	var errResp struct {
		Error llm.ErrorResponse `json:"error"`
	}
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error.Message != "" {
		return errResp.Error.Message
	}
	msg := strings.TrimSpace(string(body))
	if len(msg) > 300 {
		msg = msg[:300]
	}
	return msg
}

func parseRetryAfter(v string) time.Duration {
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second
	}
	return 0
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, llm.ErrTimeout):
		return "timeout"
	case errors.Is(err, llm.ErrNetwork):
		return "network"
	case errors.Is(err, llm.ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, llm.ErrRateLimited):
		return "rate_limited"
	case errors.Is(err, llm.ErrBadRequest):
		return "bad_request"
	case errors.Is(err, llm.ErrUpstream):
		return "upstream"
	default:
		return "unexpected"
	}
}
