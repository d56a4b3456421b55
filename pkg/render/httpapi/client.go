package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/user/draftgen/pkg/render"
)

// Client implements the render.Renderer interface over the backend's HTTP
// API. It never retries on its own; retry policy belongs to the caller.
type Client struct {
	config     *render.Config
	httpClient *http.Client
}

// New creates a new HTTP renderer client with the given configuration.
func New(config *render.Config) *Client {
	timeout := 60 * time.Second
	if config.Timeout > 0 {
		timeout = time.Duration(config.Timeout) * time.Second
	}
	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// errorResponse is the backend's error body shape for non-2xx responses.
type errorResponse struct {
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

// Generate submits a request in synchronous mode.
func (c *Client) Generate(ctx context.Context, req *render.GenerateRequest) (*render.SyncResult, error) {
	var result render.SyncResult
	status, err := c.post(ctx, "/api/v1/drafts/generate", req, &result)
	if err != nil {
		return nil, err
	}
	// Some deployments omit status_code from the body; the HTTP status is
	// equally authoritative.
	if result.StatusCode == 0 {
		result.StatusCode = status
	}
	return &result, nil
}

// Submit submits a request in asynchronous mode and returns the initial
// task acknowledgement.
func (c *Client) Submit(ctx context.Context, req *render.GenerateRequest) (*render.TaskInfo, error) {
	var info render.TaskInfo
	if _, err := c.post(ctx, "/api/v1/tasks", req, &info); err != nil {
		return nil, err
	}
	if info.TaskID == "" {
		return nil, fmt.Errorf("backend returned no task_id")
	}
	return &info, nil
}

// Task fetches the current status of a task.
func (c *Client) Task(ctx context.Context, taskID string) (*render.TaskInfo, error) {
	httpReq, err := c.newRequest(ctx, http.MethodGet, "/api/v1/tasks/"+taskID, nil)
	if err != nil {
		return nil, err
	}

	var info render.TaskInfo
	if _, err := c.do(httpReq, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// Cancel asks the backend to cancel a task. Fire-and-forget: a 2xx means
// the cancel was accepted, not that it will win any race with completion.
func (c *Client) Cancel(ctx context.Context, taskID string) error {
	httpReq, err := c.newRequest(ctx, http.MethodPost, "/api/v1/tasks/"+taskID+"/cancel", nil)
	if err != nil {
		return err
	}
	_, err = c.do(httpReq, nil)
	return err
}

func (c *Client) post(ctx context.Context, path string, body any, out any) (int, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return 0, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := c.newRequest(ctx, http.MethodPost, path, bytes.NewReader(data))
	if err != nil {
		return 0, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	return c.do(httpReq, out)
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.config.BaseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.config.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	}
	return req, nil
}

// do executes the request, decodes a 2xx body into out (when out is
// non-nil), and turns any other status into an error carrying the backend's
// message.
func (c *Client) do(req *http.Request, out any) (int, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("render request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errResp errorResponse
		if json.Unmarshal(data, &errResp) == nil {
			if errResp.Error != "" {
				return resp.StatusCode, fmt.Errorf("backend %d: %s", resp.StatusCode, errResp.Error)
			}
			if errResp.Message != "" {
				return resp.StatusCode, fmt.Errorf("backend %d: %s", resp.StatusCode, errResp.Message)
			}
		}
		return resp.StatusCode, fmt.Errorf("backend returned status %d", resp.StatusCode)
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return resp.StatusCode, fmt.Errorf("unmarshal response: %w", err)
		}
	}
	return resp.StatusCode, nil
}
