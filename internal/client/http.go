package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/phrazzld/kanban-api/internal/domain"
)

// TaskAPI is the server surface the cache depends on.
type TaskAPI interface {
	ListTasks(ctx context.Context) ([]domain.Task, error)
	CreateTask(ctx context.Context, input CreateTaskInput) (domain.Task, error)
	UpdateTask(ctx context.Context, id int64, patch domain.TaskPatch) (domain.Task, error)
	DeleteTask(ctx context.Context, id int64) error
}

// CreateTaskInput is the body of POST /tasks.
type CreateTaskInput struct {
	Title       string        `json:"title"`
	Description *string       `json:"description,omitempty"`
	Status      domain.Status `json:"status,omitempty"`
}

// envelope mirrors the server response body. Data is decoded lazily
// because its shape depends on the endpoint.
type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// HTTPClient talks to the kanban JSON API.
type HTTPClient struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger
}

var _ TaskAPI = (*HTTPClient)(nil)

// NewHTTPClient returns a client for the API rooted at baseURL
// (for example http://localhost:8080/api). A non-positive timeout
// falls back to 10 seconds.
func NewHTTPClient(baseURL string, timeout time.Duration, logger *slog.Logger) *HTTPClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		logger:  logger.With("component", "http_client"),
	}
}

// ListTasks fetches every task, newest first.
func (c *HTTPClient) ListTasks(ctx context.Context) ([]domain.Task, error) {
	var tasks []domain.Task
	if err := c.do(ctx, http.MethodGet, "/tasks", nil, &tasks); err != nil {
		return nil, err
	}
	if tasks == nil {
		tasks = []domain.Task{}
	}
	return tasks, nil
}

// CreateTask creates a task and returns it with the server-assigned ID.
func (c *HTTPClient) CreateTask(ctx context.Context, input CreateTaskInput) (domain.Task, error) {
	var task domain.Task
	err := c.do(ctx, http.MethodPost, "/tasks", input, &task)
	return task, err
}

// UpdateTask sends patch as a merge-patch.
func (c *HTTPClient) UpdateTask(ctx context.Context, id int64, patch domain.TaskPatch) (domain.Task, error) {
	var task domain.Task
	err := c.do(ctx, http.MethodPatch, taskPath(id), patch, &task)
	return task, err
}

// DeleteTask removes a task. A missing task surfaces as a 404 APIError.
func (c *HTTPClient) DeleteTask(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, taskPath(id), nil, nil)
}

// ListUsers returns the public user directory.
func (c *HTTPClient) ListUsers(ctx context.Context) ([]domain.PublicUser, error) {
	var users []domain.PublicUser
	if err := c.do(ctx, http.MethodGet, "/users", nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func taskPath(id int64) string {
	return "/tasks/" + strconv.FormatInt(id, 10)
}

// do performs one request and decodes the envelope's data into out.
func (c *HTTPClient) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug("request failed", "method", method, "path", path, "error", err)
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	var env envelope
	decodeErr := json.NewDecoder(resp.Body).Decode(&env)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := env.Message
		if decodeErr != nil || msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		c.logger.Debug("request rejected", "method", method, "path", path, "status", resp.StatusCode)
		return &APIError{StatusCode: resp.StatusCode, Message: msg}
	}
	if decodeErr != nil {
		if errors.Is(decodeErr, io.EOF) {
			return fmt.Errorf("%s %s: empty response body", method, path)
		}
		return fmt.Errorf("%s %s: decode response: %w", method, path, decodeErr)
	}
	if !env.Success {
		return fmt.Errorf("%w: %s", ErrUnsuccessful, env.Message)
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("%s %s: decode data: %w", method, path, err)
		}
	}
	return nil
}
