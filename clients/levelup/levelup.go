// Package levelup is a client for the levelup HTTP API.
package levelup

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/go-querystring/query"

	"levelup/internal/models"
)

type Client struct {
	baseURL string
	client  *http.Client
}

type APIError struct {
	Response *http.Response `json:"-"`
	Message  string         `json:"error"`
}

func (e APIError) Error() string {
	return fmt.Sprintf("%v %v: %d %v",
		e.Response.Request.Method, e.Response.Request.URL,
		e.Response.StatusCode, e.Message)
}

func (e APIError) StatusCode() int {
	return e.Response.StatusCode
}

func NewClient(baseURL string) *Client {
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), client: http.DefaultClient}
}

// WithHTTPClient swaps the underlying http.Client.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.client = hc
	return c
}

func (c *Client) levelupRequest(ctx context.Context, method, path string, opts any, body any) (*http.Request, error) {
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("unable to encode body: %w", err)
		}
		r = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, r)
	if err != nil {
		return nil, fmt.Errorf("unable to create request: %w", err)
	}
	if opts != nil {
		v, err := query.Values(opts)
		if err != nil {
			return nil, fmt.Errorf("unable to encode options: %w", err)
		}
		req.URL.RawQuery = v.Encode()
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	return req, nil
}

func do[T any](c *Client, req *http.Request) (T, error) {
	var out T
	resp, err := c.client.Do(req)
	if err != nil {
		return out, fmt.Errorf("unable to perform request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := APIError{Response: resp}
		body, _ := io.ReadAll(resp.Body)
		if json.Unmarshal(body, &apiErr) != nil || apiErr.Message == "" {
			apiErr.Message = strings.TrimSpace(string(body))
		}
		return out, apiErr
	}

	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return out, fmt.Errorf("error decoding response: %w", err)
	}
	return out, nil
}

func get[T any](ctx context.Context, c *Client, path string, opts any) (T, error) {
	req, err := c.levelupRequest(ctx, http.MethodGet, path, opts, nil)
	if err != nil {
		var zero T
		return zero, err
	}
	return do[T](c, req)
}

func send[T any](ctx context.Context, c *Client, method, path string, body any) (T, error) {
	req, err := c.levelupRequest(ctx, method, path, nil, body)
	if err != nil {
		var zero T
		return zero, err
	}
	return do[T](c, req)
}

func (c *Client) Health(ctx context.Context) (map[string]string, error) {
	return get[map[string]string](ctx, c, "/health", nil)
}

func (c *Client) Dashboard(ctx context.Context) (models.Dashboard, error) {
	return get[models.Dashboard](ctx, c, "/api/dashboard", nil)
}

func (c *Client) Profile(ctx context.Context) (models.UserProfile, error) {
	return get[models.UserProfile](ctx, c, "/api/profile", nil)
}

func (c *Client) UpdateProfile(ctx context.Context, update models.ProfileUpdate) (models.UserProfile, error) {
	return send[models.UserProfile](ctx, c, http.MethodPatch, "/api/profile", update)
}

func (c *Client) Habits(ctx context.Context, filter *models.HabitFilter) ([]models.Habit, error) {
	var opts any
	if filter != nil {
		opts = filter
	}
	return get[[]models.Habit](ctx, c, "/api/habits", opts)
}

func (c *Client) AddHabit(ctx context.Context, name, category string) (models.Habit, error) {
	return send[models.Habit](ctx, c, http.MethodPost, "/api/habits", models.NewHabitRequest{Name: name, Category: category})
}

func (c *Client) ToggleHabit(ctx context.Context, id string) (models.ToggleResult, error) {
	return send[models.ToggleResult](ctx, c, http.MethodPost, "/api/habits/"+url.PathEscape(id)+"/toggle", nil)
}

func (c *Client) HabitProgress(ctx context.Context, id string, opts models.ProgressOptions) (models.HabitProgress, error) {
	return get[models.HabitProgress](ctx, c, "/api/habits/"+url.PathEscape(id)+"/progress", opts)
}

func (c *Client) Objectives(ctx context.Context) ([]models.DailyObjective, error) {
	return get[[]models.DailyObjective](ctx, c, "/api/objectives", nil)
}

func (c *Client) RegenerateObjectives(ctx context.Context) ([]models.DailyObjective, error) {
	return send[[]models.DailyObjective](ctx, c, http.MethodPost, "/api/objectives/generate", nil)
}

func (c *Client) CompleteObjective(ctx context.Context, id string) (models.CompleteResult, error) {
	return send[models.CompleteResult](ctx, c, http.MethodPost, "/api/objectives/"+url.PathEscape(id)+"/complete", nil)
}

func (c *Client) Motivation(ctx context.Context) (string, error) {
	resp, err := get[map[string]string](ctx, c, "/api/motivation", nil)
	if err != nil {
		return "", err
	}
	return resp["message"], nil
}

func (c *Client) Stats(ctx context.Context, opts models.StatsOptions) (models.StatsSummary, error) {
	return get[models.StatsSummary](ctx, c, "/api/stats", opts)
}
