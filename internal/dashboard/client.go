package dashboard

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

	"github.com/folio-cms/folio/internal/session"
)

// ErrUnauthorized is returned when the server rejects the credentials or
// the session cookie.
var ErrUnauthorized = errors.New("unauthorized")

// Client calls the folio auth API and carries the session cookie itself.
// The cookie is Secure in production, so a cookie jar would drop it on plain
// http during development; replaying the token by hand works on both.
type Client struct {
	baseURL string
	http    *http.Client

	mu    sync.Mutex
	token string
}

// ClientOption customises a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the default client (10s timeout).
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.http = hc }
}

// WithToken resumes a session saved by an earlier run.
func WithToken(token string) ClientOption {
	return func(c *Client) { c.token = token }
}

func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Token returns the current session token, or "" when logged out.
func (c *Client) Token() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token
}

// envelope is the server's response wrapper.
type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// Check returns the email of the signed-in administrator.
func (c *Client) Check(ctx context.Context) (string, error) {
	env, err := c.do(ctx, http.MethodGet, "/api/auth/check", nil)
	if err != nil {
		return "", err
	}
	var data struct {
		Email string `json:"email"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return "", fmt.Errorf("decode check response: %w", err)
	}
	return data.Email, nil
}

// Login exchanges credentials for a session cookie.
func (c *Client) Login(ctx context.Context, email, password string) error {
	_, err := c.do(ctx, http.MethodPost, "/api/auth/login", map[string]string{
		"email":    email,
		"password": password,
	})
	return err
}

// Logout asks the server to clear the cookie. The local token is dropped
// even when the request fails.
func (c *Client) Logout(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodPost, "/api/auth/logout", nil)
	c.mu.Lock()
	c.token = ""
	c.mu.Unlock()
	return err
}

// Refresh extends the session by another full lifetime.
func (c *Client) Refresh(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodPost, "/api/auth/refresh", nil)
	return err
}

func (c *Client) do(ctx context.Context, method, path string, body interface{}) (*envelope, error) {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.Token(); token != "" {
		req.AddCookie(&http.Cookie{Name: session.CookieName, Value: token})
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	c.captureCookie(resp)

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("%s %s: status %d: decode response: %w", method, path, resp.StatusCode, err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, fmt.Errorf("%w: %s", ErrUnauthorized, env.Message)
	case resp.StatusCode != http.StatusOK || !env.Success:
		return nil, fmt.Errorf("%s %s: status %d: %s", method, path, resp.StatusCode, env.Message)
	}
	return &env, nil
}

// captureCookie tracks the session cookie the server set or cleared.
func (c *Client) captureCookie(resp *http.Response) {
	for _, ck := range resp.Cookies() {
		if ck.Name != session.CookieName {
			continue
		}
		c.mu.Lock()
		if ck.MaxAge < 0 || ck.Value == "" {
			c.token = ""
		} else {
			c.token = ck.Value
		}
		c.mu.Unlock()
	}
}
