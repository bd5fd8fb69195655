// Package api implements the HTTP client for the TaskDeck server. It keeps
// the token pair in memory and retries once with a refreshed access token
// when a request is rejected as expired.
package api

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
	"time"

	"github.com/dkazakov/taskdeck/internal/common"
)

// Client talks to the TaskDeck HTTP API.
type Client struct {
	baseURL      string
	http         *http.Client
	accessToken  string
	refreshToken string
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

// Task mirrors the server's task wire shape.
type Task struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description *string `json:"description"`
	Status      string  `json:"status"`
	CreatedAt   string  `json:"createdAt"`
}

// Pagination mirrors the server's listing bookkeeping.
type Pagination struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"totalPages"`
}

// TaskPage mirrors the server's listing wire shape.
type TaskPage struct {
	Data       []Task     `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// Attachment mirrors the server's attachment wire shape. URL is presigned
// and short-lived.
type Attachment struct {
	ID       string `json:"id"`
	FileName string `json:"fileName"`
	URL      string `json:"url"`
}

type apiError struct {
	Message string `json:"message"`
}

// IsLoggedIn reports whether the client holds a token pair.
func (c *Client) IsLoggedIn() bool {
	return c.accessToken != ""
}

// Logout discards the locally held tokens after acknowledging with the
// server.
func (c *Client) Logout(ctx context.Context) error {
	_ = c.doJSON(ctx, http.MethodPost, "/auth/logout", nil, nil, true)
	c.accessToken = ""
	c.refreshToken = ""
	return nil
}

func (c *Client) Register(ctx context.Context, email string, password []byte) error {
	body := map[string]string{"email": email, "password": string(password)}
	return c.doJSON(ctx, http.MethodPost, "/auth/register", body, nil, false)
}

func (c *Client) Login(ctx context.Context, email string, password []byte) error {
	body := map[string]string{"email": email, "password": string(password)}
	var resp struct {
		AccessToken  string `json:"accessToken"`
		RefreshToken string `json:"refreshToken"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/auth/login", body, &resp, false); err != nil {
		return err
	}
	c.accessToken = resp.AccessToken
	c.refreshToken = resp.RefreshToken
	return nil
}

// Refresh exchanges the stored refresh token for a fresh pair.
func (c *Client) Refresh(ctx context.Context) error {
	if c.refreshToken == "" {
		return common.ErrMissingToken
	}
	body := map[string]string{"refreshToken": c.refreshToken}
	var resp struct {
		AccessToken  string `json:"accessToken"`
		RefreshToken string `json:"refreshToken"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/auth/refresh", body, &resp, false); err != nil {
		return err
	}
	c.accessToken = resp.AccessToken
	c.refreshToken = resp.RefreshToken
	return nil
}

func (c *Client) CreateTask(ctx context.Context, title, description string) (*Task, error) {
	body := map[string]string{"title": title}
	if description != "" {
		body["description"] = description
	}
	var task Task
	if err := c.doJSON(ctx, http.MethodPost, "/tasks", body, &task, true); err != nil {
		return nil, err
	}
	return &task, nil
}

func (c *Client) GetTask(ctx context.Context, id string) (*Task, error) {
	var task Task
	if err := c.doJSON(ctx, http.MethodGet, "/tasks/"+url.PathEscape(id), nil, &task, true); err != nil {
		return nil, err
	}
	return &task, nil
}

func (c *Client) ListTasks(ctx context.Context, page, limit int, status, search string) (*TaskPage, error) {
	q := url.Values{}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	if status != "" {
		q.Set("status", status)
	}
	if search != "" {
		q.Set("search", search)
	}

	target := "/tasks"
	if len(q) > 0 {
		target += "?" + q.Encode()
	}

	var result TaskPage
	if err := c.doJSON(ctx, http.MethodGet, target, nil, &result, true); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) ToggleTask(ctx context.Context, id string) (*Task, error) {
	var task Task
	if err := c.doJSON(ctx, http.MethodPatch, "/tasks/"+url.PathEscape(id)+"/toggle", nil, &task, true); err != nil {
		return nil, err
	}
	return &task, nil
}

func (c *Client) DeleteTask(ctx context.Context, id string) error {
	return c.doJSON(ctx, http.MethodDelete, "/tasks/"+url.PathEscape(id), nil, nil, true)
}

// AttachFile registers an attachment and returns the presigned upload URL.
func (c *Client) AttachFile(ctx context.Context, taskID, fileName string) (*Attachment, error) {
	body := map[string]string{"fileName": fileName}
	var a Attachment
	if err := c.doJSON(ctx, http.MethodPost, "/tasks/"+url.PathEscape(taskID)+"/attachments", body, &a, true); err != nil {
		return nil, err
	}
	return &a, nil
}

func (c *Client) ListAttachments(ctx context.Context, taskID string) ([]Attachment, error) {
	var list []Attachment
	if err := c.doJSON(ctx, http.MethodGet, "/tasks/"+url.PathEscape(taskID)+"/attachments", nil, &list, true); err != nil {
		return nil, err
	}
	return list, nil
}

// doJSON performs one API call. When authed is true the access token is
// attached; a 403 triggers a single refresh-and-retry before giving up.
func (c *Client) doJSON(ctx context.Context, method, target string, body, out any, authed bool) error {
	err := c.doJSONOnce(ctx, method, target, body, out, authed)
	if err == nil || !authed {
		return err
	}
	if !errors.Is(err, common.ErrInvalidToken) || c.refreshToken == "" {
		return err
	}

	if refreshErr := c.Refresh(ctx); refreshErr != nil {
		return err
	}
	return c.doJSONOnce(ctx, method, target, body, out, authed)
}

func (c *Client) doJSONOnce(ctx context.Context, method, target string, body, out any, authed bool) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+target, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authed {
		req.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+c.accessToken)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return apiErrorFromResponse(resp)
	}

	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

func apiErrorFromResponse(resp *http.Response) error {
	var e apiError
	_ = json.NewDecoder(resp.Body).Decode(&e)

	switch resp.StatusCode {
	case http.StatusUnauthorized:
		if e.Message == "No token provided" {
			return common.ErrMissingToken
		}
		return common.ErrorInvalidCredentials
	case http.StatusForbidden:
		return common.ErrInvalidToken
	case http.StatusNotFound:
		return common.ErrorNotFound
	case http.StatusBadRequest:
		if e.Message == "User already exists" {
			return common.ErrorDuplicateUser
		}
		return common.ErrorValidation
	default:
		if e.Message != "" {
			return fmt.Errorf("server error: %s", e.Message)
		}
		return common.ErrorInternal
	}
}
