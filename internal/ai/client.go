// Package ai is the client for the generative completion service behind the
// reader's assistant panel.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

const (
	defaultTimeout     = 60 * time.Second
	maxRetries         = 3
	initialRetryDelay  = 1 * time.Second
	maxRetryDelay      = 30 * time.Second
	retryBackoffFactor = 2
)

type Action string

const (
	ActionQA        Action = "qa"
	ActionSummarize Action = "summarize"
	ActionMindmap   Action = "mindmap"
)

func (a Action) Valid() bool {
	switch a {
	case ActionQA, ActionSummarize, ActionMindmap:
		return true
	}
	return false
}

// Request is the body sent to the completion service.
type Request struct {
	BookTitle string `json:"bookTitle"`
	BookArea  string `json:"bookArea"`
	Action    Action `json:"action"`
	Query     string `json:"query"`
	UserID    string `json:"userId"`
	BookID    uint   `json:"bookId"`
}

func (r Request) Validate() error {
	if !r.Action.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidAction, r.Action)
	}
	if r.Action == ActionQA && strings.TrimSpace(r.Query) == "" {
		return ErrMissingQuery
	}
	return nil
}

// Response is what the completion service answers.
type Response struct {
	Success  bool   `json:"success"`
	Response string `json:"response,omitempty"`
	Error    string `json:"error,omitempty"`
}

type Options struct {
	Endpoint string
	APIKey   string
	Timeout  time.Duration
	// RequestsPerMinute and Burst bound each user independently. Zero disables the limit.
	RequestsPerMinute int
	Burst             int
	RetryDelay        time.Duration
	Logger            zerolog.Logger
}

// Client calls the completion service with retries and per-user rate limiting.
type Client struct {
	httpClient *http.Client
	endpoint   string
	apiKey     string
	retryDelay time.Duration
	log        zerolog.Logger

	limit    rate.Limit
	burst    int
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

func NewClient(opts Options) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	retryDelay := opts.RetryDelay
	if retryDelay <= 0 {
		retryDelay = initialRetryDelay
	}

	c := &Client{
		httpClient: &http.Client{Timeout: timeout},
		endpoint:   opts.Endpoint,
		apiKey:     opts.APIKey,
		retryDelay: retryDelay,
		log:        opts.Logger.With().Str("component", "ai").Logger(),
		limit:      rate.Inf,
		limiters:   make(map[string]*rate.Limiter),
	}
	if opts.RequestsPerMinute > 0 {
		c.limit = rate.Limit(float64(opts.RequestsPerMinute) / 60)
		c.burst = max(opts.Burst, 1)
	}
	return c
}

// Enabled reports whether a completion endpoint is configured.
func (c *Client) Enabled() bool {
	return c.endpoint != ""
}

// Complete validates req and forwards it, retrying rate limits and server errors.
// A response with success=false is returned together with a non-nil error.
func (c *Client) Complete(ctx context.Context, req Request) (*Response, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if !c.Enabled() {
		return nil, ErrDisabled
	}
	if !c.limiter(req.UserID).Allow() {
		return nil, ErrRateLimited
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	var resp *Response
	var lastErr error

	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			delay := c.calculateRetryDelay(attempt)
			c.log.Debug().Err(lastErr).Int("attempt", attempt).Dur("delay", delay).Msg("Retrying completion request")
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}

		resp, lastErr = c.doRequest(ctx, body)
		if lastErr == nil {
			break
		}
		if !isRetryableError(lastErr) {
			return nil, lastErr
		}
	}
	if lastErr != nil {
		return nil, fmt.Errorf("max retries exceeded: %w", lastErr)
	}

	if !resp.Success {
		msg := resp.Error
		if msg == "" {
			msg = "completion failed"
		}
		return resp, &ServiceError{StatusCode: http.StatusOK, Message: msg}
	}
	return resp, nil
}

func (c *Client) doRequest(ctx context.Context, body []byte) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, ErrRateLimited
	}
	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &ServiceError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(data))}
	}

	var out Response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &out, nil
}

func (c *Client) limiter(userID string) *rate.Limiter {
	c.mu.Lock()
	defer c.mu.Unlock()
	l, ok := c.limiters[userID]
	if !ok {
		l = rate.NewLimiter(c.limit, c.burst)
		c.limiters[userID] = l
	}
	return l
}

func (c *Client) calculateRetryDelay(attempt int) time.Duration {
	delay := c.retryDelay
	for i := 1; i < attempt; i++ {
		delay *= time.Duration(retryBackoffFactor)
	}
	if delay > maxRetryDelay {
		delay = maxRetryDelay
	}
	return delay
}

func isRetryableError(err error) bool {
	if errors.Is(err, ErrRateLimited) {
		return true
	}
	var se *ServiceError
	if errors.As(err, &se) {
		return se.Retryable()
	}
	return false
}
