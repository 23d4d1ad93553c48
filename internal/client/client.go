// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const defaultTimeout = 10 * time.Second

// APIError is a non-2xx response decoded from the server's error envelope.
type APIError struct {
	Status  int
	Code    string        `json:"code"`
	Message string        `json:"error"`
	Details []FieldDetail `json:"details"`
}

// FieldDetail is one field-level validation failure.
type FieldDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server returned %d", e.Status)
	}
	if len(e.Details) == 0 {
		return e.Message
	}

	parts := make([]string, 0, len(e.Details))
	for _, detail := range e.Details {
		parts = append(parts, detail.Field+": "+detail.Message)
	}
	return e.Message + " (" + strings.Join(parts, "; ") + ")"
}

// IsUnauthorized reports whether err is a 401 from the server.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized
}

// Member is one entry of the member directory.
type Member struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"createdAt"`
}

// Option configures a [Client].
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) { c.http = httpClient }
}

// Client talks to the account API and manages the stored session.
type Client struct {
	baseURL string
	http    *http.Client
	store   SessionStore
}

// New creates a client for the API at baseURL.
func New(baseURL string, store SessionStore, options ...Option) (*Client, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("client: invalid base URL %q", baseURL)
	}

	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: defaultTimeout},
		store:   store,
	}
	for _, option := range options {
		option(c)
	}
	return c, nil
}

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Register creates an account and stores the returned session.
func (c *Client) Register(ctx context.Context, username, password string) (*Session, error) {
	return c.authenticate(ctx, "/api/account/register", username, password)
}

// Login authenticates and stores the returned session.
func (c *Client) Login(ctx context.Context, username, password string) (*Session, error) {
	return c.authenticate(ctx, "/api/account/login", username, password)
}

// Logout forgets the stored session. Tokens are stateless, so the server is not called.
func (c *Client) Logout() error {
	return c.store.Clear()
}

// Current returns the stored session, or ErrNoSession.
func (c *Client) Current() (*Session, error) {
	return c.store.Load()
}

// ListUsers fetches one page of the member directory.
func (c *Client) ListUsers(ctx context.Context, page, limit int) ([]Member, error) {
	query := url.Values{}
	query.Set("page", strconv.Itoa(page))
	query.Set("limit", strconv.Itoa(limit))

	var members []Member
	if err := c.do(ctx, http.MethodGet, "/api/users?"+query.Encode(), nil, true, &members); err != nil {
		return nil, err
	}
	return members, nil
}

// Me fetches the member behind the stored session.
func (c *Client) Me(ctx context.Context) (*Member, error) {
	var member Member
	if err := c.do(ctx, http.MethodGet, "/api/users/me", nil, true, &member); err != nil {
		return nil, err
	}
	return &member, nil
}

func (c *Client) authenticate(ctx context.Context, path, username, password string) (*Session, error) {
	var session Session
	if err := c.do(ctx, http.MethodPost, path, credentials{Username: username, Password: password}, false, &session); err != nil {
		return nil, err
	}

	if err := c.store.Save(&session); err != nil {
		return nil, err
	}
	return &session, nil
}

// do sends one request. With authenticated set, the stored bearer token is
// attached and a missing session fails before any network call.
func (c *Client) do(ctx context.Context, method, path string, body any, authenticated bool, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("client: encode request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	request, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("client: build request: %w", err)
	}
	request.Header.Set("Accept", "application/json")
	if body != nil {
		request.Header.Set("Content-Type", "application/json")
	}

	if authenticated {
		session, err := c.store.Load()
		if err != nil {
			return err
		}
		request.Header.Set("Authorization", "Bearer "+session.Token)
	}

	response, err := c.http.Do(request)
	if err != nil {
		return fmt.Errorf("client: %s %s: %w", method, path, err)
	}
	defer response.Body.Close()

	if response.StatusCode < 200 || response.StatusCode > 299 {
		apiErr := &APIError{Status: response.StatusCode}
		_ = json.NewDecoder(io.LimitReader(response.Body, 1<<16)).Decode(apiErr)
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(response.Body).Decode(out); err != nil {
		return fmt.Errorf("client: decode response: %w", err)
	}
	return nil
}
