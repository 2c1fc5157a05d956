// Package api is the HTTP client for the CMS backend. It attaches the
// bearer token, maps status codes onto the error taxonomy and leaves
// response bodies untouched for the resource services to normalize.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"cmsadmin/pkg/errors"
)

// ExpiredReason is recorded for the login page when the backend rejects a token
const ExpiredReason = "Invalid credentials or session expired"

// maxBodySize caps how much of a response is read into memory
const maxBodySize = 8 << 20

// TokenSource supplies the bearer token and is told when it stops being valid
type TokenSource interface {
	Token() string
	// Expire discards the token and records why, for display on the next
	// login screen.
	Expire(reason string)
}

// Caller performs authenticated calls against the backend
type Caller interface {
	Do(ctx context.Context, method, path string, body any) (*Response, error)
}

// Response is a successful backend answer
type Response struct {
	Status int
	Body   []byte
}

// NoContent reports an explicit empty result (HTTP 204)
func (r *Response) NoContent() bool {
	return r.Status == http.StatusNoContent
}

// Decode unmarshals the JSON body into v
func (r *Response) Decode(v any) error {
	if r.NoContent() || len(bytes.TrimSpace(r.Body)) == 0 {
		return errors.ErrInvalidResponse.WithContext("reason", "empty body")
	}
	if err := json.Unmarshal(r.Body, v); err != nil {
		return errors.Wrap(err, errors.ErrTypeDecode, "INVALID_RESPONSE", "invalid response from server").
			WithUserMessage("Invalid response from server")
	}
	return nil
}

// Client holds the backend location and transport
type Client struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
}

// New creates a client for baseURL. A nil httpClient uses a default client
// without timeout; a nil logger discards diagnostics.
func New(baseURL string, httpClient *http.Client, logger *zap.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
		logger:  logger,
	}
}

// NewWithTimeout creates a client whose requests give up after timeout;
// zero means no deadline
func NewWithTimeout(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	return New(baseURL, &http.Client{Timeout: timeout}, logger)
}

// BaseURL returns the backend root without trailing slash
func (c *Client) BaseURL() string {
	return c.baseURL
}

// HTTPClient returns the underlying transport, for unauthenticated calls
func (c *Client) HTTPClient() *http.Client {
	return c.http
}

// Logger returns the client's logger
func (c *Client) Logger() *zap.Logger {
	return c.logger
}

// Bind returns a caller that authenticates with tokens
func (c *Client) Bind(tokens TokenSource) *Session {
	return &Session{client: c, tokens: tokens}
}

// Session is a Client bound to one visitor's credentials
type Session struct {
	client *Client
	tokens TokenSource
}

// Get performs a GET request
func (s *Session) Get(ctx context.Context, path string) (*Response, error) {
	return s.Do(ctx, http.MethodGet, path, nil)
}

// Post performs a POST request with a JSON body
func (s *Session) Post(ctx context.Context, path string, body any) (*Response, error) {
	return s.Do(ctx, http.MethodPost, path, body)
}

// Put performs a PUT request with a JSON body
func (s *Session) Put(ctx context.Context, path string, body any) (*Response, error) {
	return s.Do(ctx, http.MethodPut, path, body)
}

// Delete performs a DELETE request
func (s *Session) Delete(ctx context.Context, path string) (*Response, error) {
	return s.Do(ctx, http.MethodDelete, path, nil)
}

// Do sends one request. Without a token it fails with ErrNoSession before
// touching the network. A 401 or 403 expires the token source once and
// yields ErrSessionExpired; any other non-2xx becomes an HTTP error carrying
// the best message found in the body.
func (s *Session) Do(ctx context.Context, method, path string, body any) (*Response, error) {
	c := s.client
	token := s.tokens.Token()
	if token == "" {
		return nil, errors.ErrNoSession
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrTypeApp, "ENCODE_FAILED", "failed to encode request body")
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrTypeApp, "REQUEST_INVALID", "failed to build request").
			WithContext("path", path)
	}
	requestID := uuid.NewString()
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)

	log := c.logger.With(
		zap.String("method", method),
		zap.String("path", path),
		zap.String("request_id", requestID),
	)
	log.Debug("api request")

	resp, err := c.http.Do(req)
	if err != nil {
		log.Warn("api request failed", zap.Error(err))
		return nil, errors.ErrNetwork.WithInternal(err).WithContext("path", path)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, errors.ErrNetwork.WithInternal(err).
			WithContext("path", path).
			WithContext("stage", "read")
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		log.Warn("api session rejected", zap.Int("status", resp.StatusCode))
		s.tokens.Expire(ExpiredReason)
		return nil, errors.ErrSessionExpired.WithStatus(resp.StatusCode)

	case resp.StatusCode < 200 || resp.StatusCode > 299:
		appErr := errors.HTTPError(resp.StatusCode, ErrorMessage(data)).WithContext("path", path)
		log.Warn("api error", zap.Int("status", resp.StatusCode), zap.String("message", appErr.Message))
		return nil, appErr
	}

	log.Debug("api response", zap.Int("status", resp.StatusCode), zap.Int("bytes", len(data)))
	return &Response{Status: resp.StatusCode, Body: data}, nil
}
