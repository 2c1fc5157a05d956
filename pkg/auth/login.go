// Package auth signs the admin in against the CMS backend and keeps the
// resulting bearer token in a cookie session.
package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"cmsadmin/pkg/api"
	"cmsadmin/pkg/errors"
	"cmsadmin/pkg/models"
)

// Login modes
const (
	ModeForm = "form" // POST /auth/login, form encoded
	ModeJSON = "json" // POST /login, JSON body
)

// Client exchanges credentials for a backend token
type Client struct {
	baseURL   string
	http      *http.Client
	mode      string
	logger    *zap.Logger
	validator *errors.Validator
}

// NewClient creates a login client sharing the api client's transport
func NewClient(c *api.Client, mode string) *Client {
	if mode != ModeJSON {
		mode = ModeForm
	}
	return &Client{
		baseURL:   c.BaseURL(),
		http:      c.HTTPClient(),
		mode:      mode,
		logger:    c.Logger().Named("login"),
		validator: errors.NewValidator(),
	}
}

// Login validates creds and posts them to the backend. A rejected login
// yields ErrInvalidCredentials carrying the backend's message; a success
// without access_token yields ErrMissingToken.
func (c *Client) Login(ctx context.Context, creds models.Credentials) (*models.LoginResponse, error) {
	if err := c.validator.ValidateCredentials(creds.Username, creds.Password).Err(); err != nil {
		return nil, err
	}

	req, err := c.request(ctx, creds)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrTypeApp, "REQUEST_INVALID", "failed to build login request")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("login request failed", zap.Error(err))
		return nil, errors.ErrNetwork.WithInternal(err).WithContext("mode", c.mode)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, errors.ErrNetwork.WithInternal(err).
			WithContext("mode", c.mode).
			WithContext("stage", "read")
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		e := errors.ErrInvalidCredentials.WithStatus(resp.StatusCode)
		if msg := api.ErrorMessage(body); msg != "" {
			e = e.WithUserMessage(msg)
		}
		c.logger.Info("login rejected", zap.String("user", creds.Username), zap.Int("status", resp.StatusCode))
		return nil, e
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, errors.HTTPError(resp.StatusCode, api.ErrorMessage(body))
	}

	var out models.LoginResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, errors.ErrMissingToken.WithContext("decode", err.Error())
	}
	if out.AccessToken == "" {
		return nil, errors.ErrMissingToken
	}
	return &out, nil
}

func (c *Client) request(ctx context.Context, creds models.Credentials) (*http.Request, error) {
	if c.mode == ModeJSON {
		data, err := json.Marshal(creds)
		if err != nil {
			return nil, err
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/login", bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")
		return req, nil
	}

	form := url.Values{}
	form.Set("username", creds.Username)
	form.Set("password", creds.Password)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/auth/login", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	return req, nil
}
