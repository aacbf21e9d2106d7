// Package judgeclient talks to the contest/judge HTTP API.
package judgeclient

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

	"contesthub/internal/model"
	pkgerrors "contesthub/pkg/errors"
	"contesthub/pkg/utils/logger"

	"go.uber.org/zap"
)

// ResponseInfo carries response details.
type ResponseInfo struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
	Duration   time.Duration
}

// Client wraps HTTP requests to the judge API.
type Client struct {
	mu      sync.RWMutex
	baseURL string
	timeout time.Duration
	http    *http.Client
}

func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: timeout,
		http:    &http.Client{},
	}
}

func (c *Client) SetBaseURL(baseURL string) {
	c.mu.Lock()
	c.baseURL = strings.TrimRight(baseURL, "/")
	c.mu.Unlock()
}

func (c *Client) SetTimeout(timeout time.Duration) {
	if timeout <= 0 {
		return
	}
	c.mu.Lock()
	c.timeout = timeout
	c.mu.Unlock()
}

func (c *Client) BaseURL() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.baseURL
}

func (c *Client) Timeout() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.timeout
}

// ApprovedContests lists approved contests.
func (c *Client) ApprovedContests(ctx context.Context) ([]model.Contest, error) {
	resp, err := c.Do(ctx, http.MethodGet, "/api/approved_contest", nil)
	if err != nil {
		return nil, err
	}
	var contests []model.Contest
	if err := decode(resp, &contests); err != nil {
		return nil, err
	}
	return contests, nil
}

// ContestProblems lists the problems of one contest with test cases decoded.
func (c *Client) ContestProblems(ctx context.Context, contestID string) ([]model.Problem, error) {
	resp, err := c.Do(ctx, http.MethodGet, "/api/approved_contest/"+url.PathEscape(contestID)+"/problems", nil)
	if err != nil {
		return nil, err
	}
	var problems []model.Problem
	if err := decode(resp, &problems); err != nil {
		return nil, err
	}
	for i := range problems {
		if err := problems[i].Decode(); err != nil {
			return nil, err
		}
	}
	return problems, nil
}

// Submit sends a solution and classifies the reply. A reply that is not a
// verdict array is a Malformed outcome, not an error; only transport
// failures and non-2xx statuses are errors.
func (c *Client) Submit(ctx context.Context, contestID, username string, req model.SubmitRequest) (model.VerdictOutcome, error) {
	path := fmt.Sprintf("/api/approved_contest/submit/%s/%s", url.PathEscape(contestID), url.PathEscape(username))
	resp, err := c.Do(ctx, http.MethodPost, path, req)
	if err != nil {
		return model.VerdictOutcome{}, err
	}
	return model.DecodeVerdict(resp.Body), nil
}

// AddAdmin registers an administrator account.
func (c *Client) AddAdmin(ctx context.Context, req model.AdminRegistration) (model.AddAdminResult, error) {
	var result model.AddAdminResult
	resp, err := c.Do(ctx, http.MethodPost, "/api/admin/add", req)
	if err != nil {
		return result, err
	}
	if err := decode(resp, &result); err != nil {
		return result, err
	}
	return result, nil
}

// UsernameExists asks whether an administrator username is taken.
func (c *Client) UsernameExists(ctx context.Context, username string) (bool, error) {
	resp, err := c.Do(ctx, http.MethodGet, "/api/admin/exists/"+url.PathEscape(username), nil)
	if err != nil {
		return false, err
	}
	var body struct {
		Exists bool `json:"exists"`
	}
	if err := decode(resp, &body); err != nil {
		return false, err
	}
	return body.Exists, nil
}

// Do sends one JSON request. Errors are coded: RequestBuildFailed before
// anything is sent, TransportFailed when no response arrives, ServerRejected
// for non-2xx statuses (details: status, statusText, message).
func (c *Client) Do(ctx context.Context, method, path string, payload interface{}) (ResponseInfo, error) {
	var info ResponseInfo

	var reader io.Reader
	if payload != nil {
		body, err := json.Marshal(payload)
		if err != nil {
			return info, pkgerrors.Wrapf(err, pkgerrors.RequestBuildFailed, "marshal request body failed: %v", err)
		}
		reader = bytes.NewReader(body)
	}

	if timeout := c.Timeout(); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL()+path, reader)
	if err != nil {
		return info, pkgerrors.Wrapf(err, pkgerrors.RequestBuildFailed, "build request failed: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	info.Duration = time.Since(start)
	if err != nil {
		logger.Warn(ctx, "judge request failed", zap.String("method", method), zap.String("path", path), zap.Error(err))
		return info, pkgerrors.Wrapf(err, pkgerrors.TransportFailed, "request failed: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	info.StatusCode = resp.StatusCode
	info.Headers = resp.Header
	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return info, pkgerrors.Wrapf(err, pkgerrors.TransportFailed, "read response body failed: %v", err)
	}
	info.Body = bodyBytes

	logger.Debug(ctx, "judge request completed",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", info.Duration),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return info, rejection(resp.StatusCode, bodyBytes)
	}
	return info, nil
}

func rejection(status int, body []byte) error {
	statusText := http.StatusText(status)
	var envelope struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	_ = json.Unmarshal(body, &envelope)
	message := envelope.Message
	if message == "" {
		message = envelope.Error
	}
	text := message
	if text == "" {
		text = statusText
	}
	return pkgerrors.Newf(pkgerrors.ServerRejected, "server responded %d: %s", status, text).
		WithDetail("status", status).
		WithDetail("statusText", statusText).
		WithDetail("message", message)
}

func decode(resp ResponseInfo, out interface{}) error {
	if err := json.Unmarshal(resp.Body, out); err != nil {
		return pkgerrors.Wrapf(err, pkgerrors.ResponseDecode, "decode response failed: %v", err).
			WithDetail("status", resp.StatusCode)
	}
	return nil
}
