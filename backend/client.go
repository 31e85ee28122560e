package backend

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"

	"tasktrack/domain"
)

const maxResponseSize = 4 * 1024 * 1024 // 4 MiB

// Client talks to the remote task-collection resource. Every call hits
// the network; nothing is cached or retried here. Failures surface as
// typed errors for the caller to report.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a Client for the resource rooted at baseURL.
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// ListTasks retrieves all tasks in the order the resource returns them.
// The order is server-defined and preserved as-is.
func (c *Client) ListTasks(ctx context.Context) ([]domain.Task, error) {
	var tasks []domain.Task
	if err := c.do(ctx, "list tasks", http.MethodGet, c.baseURL+"/tasks/", nil, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// FetchSummary retrieves the aggregate completion counts.
func (c *Client) FetchSummary(ctx context.Context) (domain.Summary, error) {
	var sum domain.Summary
	if err := c.do(ctx, "fetch summary", http.MethodGet, c.baseURL+"/tasks/summary", nil, &sum); err != nil {
		return domain.Summary{}, err
	}
	return sum, nil
}

// CreateTask persists a new task and returns it with its server-assigned
// ID. Invalid drafts are rejected before any network round-trip.
func (c *Client) CreateTask(ctx context.Context, draft domain.Draft) (domain.Task, error) {
	d := draft.Normalize()
	if err := d.Validate(); err != nil {
		return domain.Task{}, err
	}
	var task domain.Task
	if err := c.do(ctx, "create task", http.MethodPost, c.baseURL+"/tasks/", d, &task); err != nil {
		return domain.Task{}, err
	}
	return task, nil
}

// UpdateTask replaces the full field set of an existing task. The
// resource treats the body as a total replacement, so callers must send
// every field, including the unchanged ones.
func (c *Client) UpdateTask(ctx context.Context, id int64, draft domain.Draft) (domain.Task, error) {
	d := draft.Normalize()
	if err := d.Validate(); err != nil {
		return domain.Task{}, err
	}
	var task domain.Task
	url := c.baseURL + "/tasks/" + strconv.FormatInt(id, 10)
	if err := c.do(ctx, "update task", http.MethodPut, url, d, &task); err != nil {
		return domain.Task{}, err
	}
	return task, nil
}

// DeleteTask removes a task. No response body is assumed.
func (c *Client) DeleteTask(ctx context.Context, id int64) error {
	url := c.baseURL + "/tasks/" + strconv.FormatInt(id, 10)
	return c.do(ctx, "delete task", http.MethodDelete, url, nil, nil)
}

func (c *Client) do(ctx context.Context, op, method, url string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := sonic.ConfigStd.Marshal(body)
		if err != nil {
			return &domain.DecodeError{Op: op, Err: err}
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return &domain.TransportError{Op: op, Err: err}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if method != http.MethodGet {
		req.Header.Set("X-Request-ID", uuid.NewString())
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &domain.TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &domain.TransportError{Op: op, Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}
	if out == nil {
		return nil
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return &domain.TransportError{Op: op, Err: err}
	}
	if err := sonic.ConfigStd.Unmarshal(data, out); err != nil {
		return &domain.DecodeError{Op: op, Err: err}
	}
	return nil
}
