// ABOUTME: HTTP client for the techhub API used by the companion process
// ABOUTME: Logs in once, then polls the queue with the bearer token

package companion

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/techguides/techhub/internal/queue"
)

// ErrLoginRejected is returned when the server refuses the credentials.
var ErrLoginRejected = errors.New("login rejected")

// RemoteTool is the listing entry the server returns for a tool.
type RemoteTool struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
}

// Client talks to one techhub server on behalf of one user.
type Client struct {
	baseURL string
	http    *http.Client
	token   string
}

// NewClient creates a client for the server at baseURL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

// Login authenticates and stores the session token for later calls.
func (c *Client) Login(ctx context.Context, username, password string) error {
	var resp struct {
		Token string `json:"token"`
	}
	err := c.post(ctx, "/api/login", map[string]string{
		"username": username,
		"password": password,
	}, &resp)
	if err != nil {
		var se *statusError
		if errors.As(err, &se) && se.code == http.StatusUnauthorized {
			return ErrLoginRejected
		}
		return err
	}
	if resp.Token == "" {
		return fmt.Errorf("login response carried no token")
	}
	c.token = resp.Token
	return nil
}

// CheckExternalFeatures asks whether this account may use external tools.
func (c *Client) CheckExternalFeatures(ctx context.Context) (bool, error) {
	var resp struct {
		HasExternalFeatures bool `json:"has_external_features"`
	}
	if err := c.get(ctx, "/api/external-features", &resp); err != nil {
		return false, err
	}
	return resp.HasExternalFeatures, nil
}

// ListTools fetches the effective tool list for this account.
func (c *Client) ListTools(ctx context.Context) ([]RemoteTool, error) {
	var resp struct {
		HasAccess bool         `json:"hasAccess"`
		Tools     []RemoteTool `json:"tools"`
	}
	if err := c.get(ctx, "/api/external-tools", &resp); err != nil {
		return nil, err
	}
	return resp.Tools, nil
}

// FetchQueue returns the account's pending commands. Fetching never
// consumes entries; only CompleteTask removes them.
func (c *Client) FetchQueue(ctx context.Context) ([]queue.Command, error) {
	var resp struct {
		Queue []queue.Command `json:"queue"`
	}
	if err := c.get(ctx, "/api/client-service/queue", &resp); err != nil {
		return nil, err
	}
	return resp.Queue, nil
}

// CompleteTask reports a locally executed command back to the server.
func (c *Client) CompleteTask(ctx context.Context, taskID string) error {
	return c.post(ctx, "/api/client-service/queue", map[string]string{
		"action":  "complete",
		"task_id": taskID,
	}, nil)
}

type statusError struct {
	code int
	body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.code, e.body)
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	return c.send(req, out)
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.send(req, out)
}

func (c *Client) send(req *http.Request, out any) error {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("calling %s: %w", req.URL.Path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("reading response from %s: %w", req.URL.Path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &statusError{code: resp.StatusCode, body: strings.TrimSpace(string(data))}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decoding response from %s: %w", req.URL.Path, err)
	}
	return nil
}
