// Package api is the HTTP client for the kasegi server.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"kasegi/internal/analytics"
	"kasegi/internal/coach"
	"kasegi/internal/core"
)

// Service is the surface the views depend on. *Client implements it; tests
// substitute a mock.
type Service interface {
	Dashboard(ctx context.Context) (*analytics.Dashboard, error)
	Analytics(ctx context.Context, period string) (*analytics.Analytics, error)
	Coach(ctx context.Context) (*coach.Motivation, error)

	ListSources(ctx context.Context) ([]core.IncomeSource, error)
	CreateSource(ctx context.Context, src core.IncomeSource) (*core.IncomeSource, error)
	UpdateSource(ctx context.Context, src core.IncomeSource) (*core.IncomeSource, error)
	DeleteSource(ctx context.Context, id int64) error

	ListLogs(ctx context.Context, date string) ([]core.DailyLog, error)
	CreateLog(ctx context.Context, entry core.DailyLog) (*core.DailyLog, error)
	DeleteLog(ctx context.Context, id int64) error

	Settings(ctx context.Context) (*core.Settings, error)
	UpdateSettings(ctx context.Context, s core.Settings) error
}

// Client talks to one kasegi server.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a client for the server at baseURL. A zero timeout defaults
// to 15 seconds.
func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// envelope mirrors the server's response wrapper.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reqBody = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("%s %s: status %d, bad response body: %w", method, path, resp.StatusCode, err)
	}
	if !env.Success {
		if env.Error == "" {
			env.Error = http.StatusText(resp.StatusCode)
		}
		return fmt.Errorf("%s %s: %s", method, path, env.Error)
	}
	if out != nil {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("%s %s: decode data: %w", method, path, err)
		}
	}
	return nil
}

func (c *Client) Dashboard(ctx context.Context) (*analytics.Dashboard, error) {
	var dash analytics.Dashboard
	if err := c.do(ctx, http.MethodGet, "/api/dashboard", nil, &dash); err != nil {
		return nil, err
	}
	return &dash, nil
}

func (c *Client) Analytics(ctx context.Context, period string) (*analytics.Analytics, error) {
	path := "/api/analytics"
	if period != "" {
		path += "?period=" + url.QueryEscape(period)
	}
	var report analytics.Analytics
	if err := c.do(ctx, http.MethodGet, path, nil, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

func (c *Client) Coach(ctx context.Context) (*coach.Motivation, error) {
	var m coach.Motivation
	if err := c.do(ctx, http.MethodGet, "/api/coach", nil, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

func (c *Client) ListSources(ctx context.Context) ([]core.IncomeSource, error) {
	var sources []core.IncomeSource
	if err := c.do(ctx, http.MethodGet, "/api/income-sources", nil, &sources); err != nil {
		return nil, err
	}
	return sources, nil
}

func (c *Client) CreateSource(ctx context.Context, src core.IncomeSource) (*core.IncomeSource, error) {
	var created core.IncomeSource
	if err := c.do(ctx, http.MethodPost, "/api/income-sources", src, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *Client) UpdateSource(ctx context.Context, src core.IncomeSource) (*core.IncomeSource, error) {
	var updated core.IncomeSource
	path := fmt.Sprintf("/api/income-sources/%d", src.ID)
	if err := c.do(ctx, http.MethodPut, path, src, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (c *Client) DeleteSource(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/income-sources/%d", id), nil, nil)
}

// ListLogs returns logs, optionally filtered to one date (YYYY-MM-DD).
func (c *Client) ListLogs(ctx context.Context, date string) ([]core.DailyLog, error) {
	path := "/api/daily-logs"
	if date != "" {
		path += "?date=" + url.QueryEscape(date)
	}
	var logs []core.DailyLog
	if err := c.do(ctx, http.MethodGet, path, nil, &logs); err != nil {
		return nil, err
	}
	return logs, nil
}

func (c *Client) CreateLog(ctx context.Context, entry core.DailyLog) (*core.DailyLog, error) {
	var created core.DailyLog
	if err := c.do(ctx, http.MethodPost, "/api/daily-logs", entry, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *Client) DeleteLog(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/daily-logs/%d", id), nil, nil)
}

func (c *Client) Settings(ctx context.Context) (*core.Settings, error) {
	var s core.Settings
	if err := c.do(ctx, http.MethodGet, "/api/settings", nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *Client) UpdateSettings(ctx context.Context, s core.Settings) error {
	return c.do(ctx, http.MethodPut, "/api/settings", s, nil)
}
