// Package formsapi talks to the backend that owns form submissions: it
// fetches submissions for the local cache and posts employee confirmation
// actions on resolved IT incidents.
package formsapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/garyjia/hr-portal/internal/application/port"
	"github.com/garyjia/hr-portal/internal/domain/entity"
)

// Default action endpoint paths
const (
	DefaultConfirmPath = "confirm-problem-solved"
	DefaultRejectPath  = "reject-resolution"
)

// HTTPClient interface for testability
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Config holds forms API connection settings
type Config struct {
	BaseURL     string
	Token       string
	Timeout     time.Duration
	ConfirmPath string
	RejectPath  string
	// FetchAttempts bounds retries of idempotent reads
	FetchAttempts int
}

// StatusError is a non-2xx response from the forms API
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("forms api returned status %d: %s", e.StatusCode, e.Body)
}

// Permanent reports whether retrying cannot help
func (e *StatusError) Permanent() bool {
	return e.StatusCode >= 400 && e.StatusCode < 500 && e.StatusCode != http.StatusTooManyRequests
}

// Client implements port.ResolutionActionClient over HTTP
type Client struct {
	cfg        Config
	httpClient HTTPClient
	logger     *zap.Logger
	backoff    func(attempt int) time.Duration
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(c HTTPClient) Option {
	return func(cl *Client) { cl.httpClient = c }
}

// WithBackoff replaces the retry backoff schedule
func WithBackoff(fn func(attempt int) time.Duration) Option {
	return func(cl *Client) { cl.backoff = fn }
}

// NewClient creates a new forms API client
func NewClient(cfg Config, logger *zap.Logger, opts ...Option) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.ConfirmPath == "" {
		cfg.ConfirmPath = DefaultConfirmPath
	}
	if cfg.RejectPath == "" {
		cfg.RejectPath = DefaultRejectPath
	}
	if cfg.FetchAttempts <= 0 {
		cfg.FetchAttempts = 3
	}

	c := &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
		backoff: func(attempt int) time.Duration {
			return time.Duration(1<<uint(attempt-1)) * time.Second
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type actionRequest struct {
	RequestID    string `json:"request_id"`
	SubmissionID string `json:"submission_id"`
	EmployeeID   string `json:"employee_id"`
	Action       string `json:"action"`
	Notes        string `json:"notes"`
}

type actionResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// SubmitResolutionAction posts a confirm or reject command. It is attempted
// exactly once; the caller decides whether to retry.
func (c *Client) SubmitResolutionAction(ctx context.Context, cmd entity.ConfirmationCommand) (*port.ActionResult, error) {
	path := c.cfg.ConfirmPath
	if cmd.Action == entity.ActionRejected {
		path = c.cfg.RejectPath
	}

	body, err := json.Marshal(actionRequest{
		RequestID:    cmd.RequestID,
		SubmissionID: cmd.SubmissionID,
		EmployeeID:   cmd.EmployeeID,
		Action:       cmd.Action.String(),
		Notes:        cmd.Notes,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode action: %w", err)
	}

	endpoint, err := c.endpoint(path)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotency-Key", cmd.RequestID)
	c.authorize(req)

	data, err := c.do(req)
	if err != nil {
		c.logger.Warn("Resolution action request failed",
			zap.String("submission_id", cmd.SubmissionID),
			zap.String("action", cmd.Action.String()),
			zap.Error(err))
		return nil, err
	}

	var resp actionResponse
	if len(bytes.TrimSpace(data)) > 0 {
		if err := json.Unmarshal(data, &resp); err != nil {
			return nil, fmt.Errorf("failed to decode action response: %w", err)
		}
	}

	msg := resp.Message
	if !resp.Success && resp.Error != "" {
		msg = resp.Error
	}

	c.logger.Info("Resolution action posted",
		zap.String("submission_id", cmd.SubmissionID),
		zap.String("action", cmd.Action.String()),
		zap.Bool("success", resp.Success))

	return &port.ActionResult{Success: resp.Success, Message: msg}, nil
}

// FetchSubmissions reads every submission of a form type. Transient failures
// are retried with exponential backoff.
func (c *Client) FetchSubmissions(ctx context.Context, formType string) ([]entity.Submission, error) {
	endpoint, err := c.endpoint("forms/" + url.PathEscape(formType) + "/submissions")
	if err != nil {
		return nil, err
	}

	var lastErr error
	for attempt := 1; attempt <= c.cfg.FetchAttempts; attempt++ {
		subs, err := c.fetchOnce(ctx, endpoint)
		if err == nil {
			return subs, nil
		}
		lastErr = err

		var statusErr *StatusError
		if errors.As(err, &statusErr) && statusErr.Permanent() {
			c.logger.Info("Permanent error, not retrying",
				zap.Int("attempt", attempt),
				zap.Error(err))
			return nil, err
		}

		if attempt < c.cfg.FetchAttempts {
			backoff := c.backoff(attempt)
			c.logger.Info("Retrying submission fetch",
				zap.String("form_type", formType),
				zap.Int("attempt", attempt),
				zap.Duration("backoff", backoff),
				zap.Error(err))

			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}
	}

	c.logger.Error("Failed to fetch submissions after retries",
		zap.String("form_type", formType),
		zap.Int("max_attempts", c.cfg.FetchAttempts),
		zap.Error(lastErr))
	return nil, fmt.Errorf("fetch failed after %d attempts: %w", c.cfg.FetchAttempts, lastErr)
}

func (c *Client) fetchOnce(ctx context.Context, endpoint string) ([]entity.Submission, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	c.authorize(req)

	data, err := c.do(req)
	if err != nil {
		return nil, err
	}

	// Both a bare array and {"data": [...]} are accepted
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var envelope struct {
			Data json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal(trimmed, &envelope); err != nil {
			return nil, fmt.Errorf("failed to decode submissions: %w", err)
		}
		trimmed = envelope.Data
	}
	if len(trimmed) == 0 || string(trimmed) == "null" {
		return []entity.Submission{}, nil
	}
	return entity.ParseSubmissions(trimmed)
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(data))}
	}
	return data, nil
}

func (c *Client) endpoint(path string) (string, error) {
	if c.cfg.BaseURL == "" {
		return "", fmt.Errorf("forms api base url is not configured")
	}
	return strings.TrimRight(c.cfg.BaseURL, "/") + "/" + strings.TrimLeft(path, "/"), nil
}

func (c *Client) authorize(req *http.Request) {
	if c.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	}
}

// Verify interface compliance
var _ port.ResolutionActionClient = (*Client)(nil)
