// Package client is a typed HTTP client for the taskboard REST API. The
// session cookie issued at login is kept in the client's cookie jar.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"

	"github.com/TWRT/taskboard/internal/models"
)

const sessionCookie = "token"

type Client struct {
	baseUrl    *url.URL
	httpClient *http.Client
}

// NewClient creates a client for the server at baseURL. Requests carry no
// timeout of their own; bound them with the context.
func NewClient(baseURL string) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}
	return NewClientWithHTTPClient(baseURL, &http.Client{Jar: jar})
}

// NewClientWithHTTPClient uses httpClient as is. It must have a cookie jar for
// sessions to work.
func NewClientWithHTTPClient(baseURL string, httpClient *http.Client) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse server url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("server url %q must include scheme and host", baseURL)
	}
	return &Client{baseUrl: u, httpClient: httpClient}, nil
}

// Token returns the current session token, or "" when there is none.
func (c *Client) Token() string {
	if c.httpClient.Jar == nil {
		return ""
	}
	for _, ck := range c.httpClient.Jar.Cookies(c.baseUrl) {
		if ck.Name == sessionCookie {
			return ck.Value
		}
	}
	return ""
}

// SetToken restores a session saved from an earlier Token call.
func (c *Client) SetToken(token string) {
	if c.httpClient.Jar == nil || token == "" {
		return
	}
	c.httpClient.Jar.SetCookies(c.baseUrl, []*http.Cookie{{
		Name:  sessionCookie,
		Value: token,
		Path:  "/",
	}})
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return &APIError{Kind: KindValidation, Err: fmt.Errorf("encode request: %w", err)}
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseUrl.String()+path, reader)
	if err != nil {
		return &APIError{Kind: KindNetwork, Err: fmt.Errorf("build request: %w", err)}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &APIError{Kind: KindNetwork, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &APIError{Kind: KindNetwork, Status: resp.StatusCode, Err: fmt.Errorf("read response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Message is only what the server chose to tell the user.
		var msg models.MessageResponse
		_ = json.Unmarshal(data, &msg)
		return &APIError{
			Kind:    kindForStatus(resp.StatusCode),
			Status:  resp.StatusCode,
			Message: msg.Message,
			Err:     errors.New(http.StatusText(resp.StatusCode)),
		}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &APIError{Kind: KindServer, Status: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

func (c *Client) Me(ctx context.Context) (models.User, error) {
	var user models.User
	err := c.do(ctx, http.MethodGet, "/api/auth/me", nil, &user)
	return user, err
}

func (c *Client) Register(ctx context.Context, in models.RegisterInput) (models.User, error) {
	var user models.User
	err := c.do(ctx, http.MethodPost, "/api/auth/register", in, &user)
	return user, err
}

func (c *Client) Login(ctx context.Context, in models.LoginInput) (models.User, error) {
	var user models.User
	err := c.do(ctx, http.MethodPost, "/api/auth/login", in, &user)
	return user, err
}

func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/api/auth/logout", struct{}{}, nil)
}

func (c *Client) ListTasks(ctx context.Context) ([]models.Task, error) {
	var tasks []models.Task
	if err := c.do(ctx, http.MethodGet, "/api/tasks", nil, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

func (c *Client) CreateTask(ctx context.Context, in models.CreateTaskInput) (models.Task, error) {
	var task models.Task
	err := c.do(ctx, http.MethodPost, "/api/tasks", in, &task)
	return task, err
}

func (c *Client) UpdateTask(ctx context.Context, id string, in models.UpdateTaskInput) (models.Task, error) {
	var task models.Task
	err := c.do(ctx, http.MethodPut, "/api/tasks/"+url.PathEscape(id), in, &task)
	return task, err
}

// ToggleTask sets completion to *completed, or lets the server flip it when
// completed is nil.
func (c *Client) ToggleTask(ctx context.Context, id string, completed *bool) (models.Task, error) {
	var task models.Task
	err := c.do(ctx, http.MethodPatch, "/api/tasks/"+url.PathEscape(id)+"/toggle", models.ToggleInput{Completed: completed}, &task)
	return task, err
}

func (c *Client) DeleteTask(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/tasks/"+url.PathEscape(id), nil, nil)
}

func (c *Client) ReorderTasks(ctx context.Context, updates []models.OrderUpdate) error {
	if updates == nil {
		updates = []models.OrderUpdate{}
	}
	return c.do(ctx, http.MethodPost, "/api/tasks/reorder", models.ReorderInput{Tasks: updates}, nil)
}

// AsAPIError converts any error into an *APIError, defaulting to KindNetwork.
func AsAPIError(err error) *APIError {
	if err == nil {
		return nil
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return &APIError{Kind: KindNetwork, Err: err}
}
