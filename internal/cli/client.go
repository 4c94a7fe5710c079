package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/dmarquez/idlempire/internal/api/handler"
)

// Client is a thin wrapper over the server's HTTP API. Responses use a
// success flag in the body rather than HTTP status codes for domain
// failures, so every call checks the flag before decoding the result.
type Client struct {
	baseURL string
	token   string
	verbose bool
	http    *http.Client

	// sessionToken holds a token captured from a Set-Cookie header on
	// the most recent response, if any.
	sessionToken string
}

func NewClient(cfg *Config) *Client {
	return &Client{
		baseURL: cfg.ServerURL,
		token:   cfg.Token,
		verbose: cfg.Verbose,
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// SessionToken returns the token from the last response that set the
// session cookie, or empty if none did.
func (c *Client) SessionToken() string {
	return c.sessionToken
}

func (c *Client) Get(path string, result any) error {
	return c.do(http.MethodGet, path, nil, result)
}

func (c *Client) Post(path string, body any, result any) error {
	return c.do(http.MethodPost, path, body, result)
}

// GetRaw performs a GET against an endpoint that does not use the
// success-flag envelope, such as the health check.
func (c *Client) GetRaw(path string, result any) error {
	resp, err := c.http.Get(c.baseURL + path)
	if err != nil {
		return fmt.Errorf("request GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("server returned %s: %s", resp.Status, truncate(data, 200))
	}
	if result != nil {
		if err := json.Unmarshal(data, result); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

func (c *Client) do(method, path string, body any, result any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	url := c.baseURL + path
	req, err := http.NewRequest(method, url, reqBody)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.AddCookie(&http.Cookie{Name: handler.SessionCookieName, Value: c.token})
	}

	if c.verbose {
		fmt.Fprintf(os.Stderr, "> %s %s\n", method, url)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if c.verbose {
		fmt.Fprintf(os.Stderr, "< %s\n", resp.Status)
	}

	for _, cookie := range resp.Cookies() {
		if cookie.Name == handler.SessionCookieName && cookie.Value != "" {
			c.sessionToken = cookie.Value
		}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	var envelope struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return fmt.Errorf("server returned %s: %s", resp.Status, truncate(data, 200))
	}
	if !envelope.Success {
		if envelope.Message != "" {
			return fmt.Errorf("%s", envelope.Message)
		}
		return fmt.Errorf("server returned %s", resp.Status)
	}

	if result != nil {
		if err := json.Unmarshal(data, result); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

func truncate(data []byte, n int) string {
	if len(data) <= n {
		return string(data)
	}
	return string(data[:n]) + "..."
}
