package judge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	judgeRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "quiz",
		Subsystem: "judge",
		Name:      "request_duration_seconds",
		Help:      "Duration of requests to the external judge",
	}, []string{"operation"})

	judgeRequestFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "quiz",
		Subsystem: "judge",
		Name:      "request_failures_total",
		Help:      "Number of failed requests to the external judge",
	}, []string{"operation"})

	judgeLogins = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "quiz",
		Subsystem: "judge",
		Name:      "logins_total",
		Help:      "Number of login calls made against the external judge",
	})
)

// AuthError reports a failed login against the judge.
type AuthError struct {
	Reason string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("judge authentication failed: %s", e.Reason)
}

// RequestError reports a judge request that failed after the one-time
// re-login retry.
type RequestError struct {
	Operation string
	Err       error
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("judge %s failed: %v", e.Operation, e.Err)
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// Config holds connection settings for the external judge.
type Config struct {
	BaseURL  string
	Username string
	Password string
	Timeout  time.Duration
	Logger   zerolog.Logger
}

// Client is a stateful HTTP session against one external judge endpoint
// and one credential pair. The bearer token is cached in memory and
// refreshed transparently when the judge answers 401/403.
type Client struct {
	baseURL    string
	username   string
	password   string
	httpClient *http.Client
	logger     zerolog.Logger
	tracer     trace.Tracer

	mu    sync.Mutex
	token string
}

// NewClient constructs a judge client. The token cache starts empty and
// is populated on first use or by an explicit Login call.
func NewClient(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("judge base url is required")
	}
	if cfg.Username == "" || cfg.Password == "" {
		return nil, fmt.Errorf("judge credentials are required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		username:   cfg.Username,
		password:   cfg.Password,
		httpClient: &http.Client{Timeout: timeout},
		logger:     cfg.Logger.With().Str("component", "judge_client").Logger(),
		tracer:     otel.Tracer("github.com/quizhub/quiz-go-api/pkg/judge"),
	}, nil
}

// Login authenticates against the judge and caches the returned bearer
// token. The judge hands the token back in the Authorization header.
func (c *Client) Login(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loginLocked(ctx)
}

func (c *Client) loginLocked(ctx context.Context) error {
	judgeLogins.Inc()

	body, err := json.Marshal(map[string]string{
		"username": c.username,
		"password": c.password,
	})
	if err != nil {
		return &AuthError{Reason: err.Error()}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/login", bytes.NewReader(body))
	if err != nil {
		return &AuthError{Reason: err.Error()}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &AuthError{Reason: err.Error()}
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &AuthError{Reason: fmt.Sprintf("login returned status %d", resp.StatusCode)}
	}

	token := resp.Header.Get("Authorization")
	if token == "" {
		return &AuthError{Reason: "login response carried no authorization token"}
	}

	c.token = token
	return nil
}

func (c *Client) ensureToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.token == "" {
		if err := c.loginLocked(ctx); err != nil {
			return "", err
		}
	}
	return c.token, nil
}

// do performs an authenticated request. On a 401/403 answer it re-logs-in
// once and retries the same request exactly once more.
func (c *Client) do(ctx context.Context, operation, method, path string, payload any) ([]byte, int, error) {
	ctx, span := c.tracer.Start(ctx, "judge."+operation, trace.WithAttributes(
		attribute.String("judge.operation", operation),
	))
	defer span.End()

	start := time.Now()
	body, status, err := c.doOnce(ctx, method, path, payload, true)
	judgeRequestDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	if err != nil {
		judgeRequestFailures.WithLabelValues(operation).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		if _, ok := err.(*AuthError); ok {
			return nil, status, err
		}
		return nil, status, &RequestError{Operation: operation, Err: err}
	}
	return body, status, nil
}

func (c *Client) doOnce(ctx context.Context, method, path string, payload any, retryAuth bool) ([]byte, int, error) {
	token, err := c.ensureToken(ctx)
	if err != nil {
		return nil, 0, err
	}

	var reqBody io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, 0, err
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, 0, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Authorization", token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, err
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		if !retryAuth {
			return body, resp.StatusCode, fmt.Errorf("unauthorized after re-login (status %d)", resp.StatusCode)
		}
		c.logger.Debug().Int("status", resp.StatusCode).Str("path", path).Msg("judge token rejected, re-logging in")
		if err := c.Login(ctx); err != nil {
			return nil, resp.StatusCode, err
		}
		return c.doOnce(ctx, method, path, payload, false)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return body, resp.StatusCode, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	return body, resp.StatusCode, nil
}

// Submit sends code for the given judge problem and returns the judge's
// submission identifier.
func (c *Client) Submit(ctx context.Context, problemID, code, language string) (int64, error) {
	payload := map[string]any{
		"pid":      problemID,
		"language": language,
		"code":     code,
		"cid":      0,
		"tid":      nil,
		"gid":      nil,
		"isRemote": false,
	}

	body, _, err := c.do(ctx, "submit", http.MethodPost, "/api/submit-problem-judge", payload)
	if err != nil {
		return 0, err
	}

	var parsed struct {
		Data struct {
			SubmitID *int64 `json:"submitId"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return 0, &RequestError{Operation: "submit", Err: fmt.Errorf("malformed response: %w", err)}
	}
	if parsed.Data.SubmitID == nil {
		return 0, &RequestError{Operation: "submit", Err: fmt.Errorf("response carried no submitId")}
	}

	return *parsed.Data.SubmitID, nil
}

// Result fetches the judge status for a submission. The second return is
// false when the response lacks a recognizable status field.
func (c *Client) Result(ctx context.Context, submitID int64) (int, bool, error) {
	path := fmt.Sprintf("/api/get-submission-detail?submitId=%d", submitID)
	body, _, err := c.do(ctx, "result", http.MethodGet, path, nil)
	if err != nil {
		return 0, false, err
	}

	var parsed struct {
		Data struct {
			Submission struct {
				Status *int `json:"status"`
			} `json:"submission"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return 0, false, &RequestError{Operation: "result", Err: fmt.Errorf("malformed response: %w", err)}
	}
	if parsed.Data.Submission.Status == nil {
		return 0, false, nil
	}

	return *parsed.Data.Submission.Status, true, nil
}

// ProblemExists probes the judge for a problem. The gate protects problem
// creation, so any error is reported as "not found" with a reason rather
// than letting a broken judge admit unjudgeable problems.
func (c *Client) ProblemExists(ctx context.Context, problemID string) (bool, string) {
	path := "/api/get-problem-detail?problemId=" + url.QueryEscape(problemID)
	body, status, err := c.do(ctx, "problem_exists", http.MethodGet, path, nil)
	if err != nil {
		if status == http.StatusNotFound {
			return false, "problem not found on judge"
		}
		return false, err.Error()
	}

	var parsed struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return false, "malformed judge response"
	}
	if len(parsed.Data) == 0 || string(parsed.Data) == "null" {
		return false, "judge response carried no problem data"
	}

	return true, ""
}

// Close releases the underlying connections and clears the cached token.
// Safe to call multiple times.
func (c *Client) Close() {
	c.mu.Lock()
	c.token = ""
	c.mu.Unlock()
	c.httpClient.CloseIdleConnections()
}
