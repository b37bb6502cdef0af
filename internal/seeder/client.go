package seeder

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client talks to the pool API.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a client with the given request timeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{baseURL: baseURL, http: &http.Client{Timeout: timeout}}
}

// Community is the subset of the community view the seeder checks.
type Community struct {
	Period int `json:"period"`
	Stats  struct {
		Submissions int `json:"submissions"`
		TopCaptains []struct {
			Player struct {
				ID int `json:"id"`
			} `json:"player"`
			Captain int `json:"captain"`
		} `json:"top_captains"`
	} `json:"stats"`
}

// Health checks GET /healthz.
func (c *Client) Health(ctx context.Context) error {
	status, _, err := c.do(ctx, http.MethodGet, "/healthz", nil)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrUnhealthy, status)
	}
	return nil
}

// CreateSession opens a session and returns its id.
func (c *Client) CreateSession(ctx context.Context) (string, error) {
	var out struct {
		ID string `json:"id"`
	}
	if err := c.expect(ctx, http.MethodPost, "/sessions", nil, http.StatusCreated, &out); err != nil {
		return "", err
	}
	return out.ID, nil
}

// AddPlayer adds one player to a session squad.
func (c *Client) AddPlayer(ctx context.Context, sid string, pid int) error {
	return c.expect(ctx, http.MethodPost, "/sessions/"+sid+"/roster/players",
		map[string]int{"player_id": pid}, http.StatusOK, nil)
}

// Submit submits the session squad. It returns the HTTP status so callers can
// tell rejections from transport failures.
func (c *Client) Submit(ctx context.Context, sid string, captain, vice int) (int, error) {
	status, _, err := c.do(ctx, http.MethodPost, "/sessions/"+sid+"/submission",
		map[string]int{"captain_id": captain, "vice_captain_id": vice})
	return status, err
}

// Community fetches the current period view.
func (c *Client) Community(ctx context.Context) (Community, error) {
	var out Community
	err := c.expect(ctx, http.MethodGet, "/community", nil, http.StatusOK, &out)
	return out, err
}

func (c *Client) expect(ctx context.Context, method, path string, body any, want int, out any) error {
	status, raw, err := c.do(ctx, method, path, body)
	if err != nil {
		return err
	}
	if status != want {
		return fmt.Errorf("%w: %s %s: %d %s", ErrUnexpected, method, path, status, bytes.TrimSpace(raw))
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, body any) (int, []byte, error) {
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return 0, nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		r = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, r)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("read %s: %w", path, err)
	}
	return resp.StatusCode, raw, nil
}
