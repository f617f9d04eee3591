package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

var (
	ErrUnauthorized = errors.New("backend rejected the token")
	ErrBadRequest   = errors.New("backend rejected the request")
)

// Schedule is the backend's view of one master's day.
type Schedule struct {
	Appointments []string `json:"appointments"`
	Slots        []string `json:"slots"`
	DaysOff      []string `json:"days_off"`
}

// Client talks to the scheduling backend's REST API with a bearer token per
// call. It holds no token state itself; the identity store does.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	payload := map[string]string{
		"username": username,
		"password": password,
	}

	var res struct {
		Token string `json:"token"`
	}
	if err := c.do(ctx, http.MethodPost, "/login", "", nil, payload, &res); err != nil {
		return "", err
	}
	if res.Token == "" {
		return "", fmt.Errorf("login response carried no token")
	}

	return res.Token, nil
}

func (c *Client) SetDayOff(ctx context.Context, token, date string, isDayOff bool) error {
	payload := map[string]any{
		"date":       date,
		"is_day_off": isDayOff,
	}
	return c.do(ctx, http.MethodPut, "/schedule/dayoff", token, nil, payload, nil)
}

func (c *Client) SetWorkingSlotsByWeekday(ctx context.Context, token, dayOfWeek string, slots []string) error {
	payload := map[string]any{
		"day_of_week": dayOfWeek,
		"slots":       slots,
	}
	return c.do(ctx, http.MethodPut, "/schedule/hours/weekday", token, nil, payload, nil)
}

func (c *Client) SetWorkingSlotsByDate(ctx context.Context, token, date string, slots []string) error {
	payload := map[string]any{
		"date":  date,
		"slots": slots,
	}
	return c.do(ctx, http.MethodPut, "/schedule/hours/date", token, nil, payload, nil)
}

func (c *Client) DeleteWorkingSlotsByDate(ctx context.Context, token, date string) error {
	query := url.Values{"date": {date}}
	return c.do(ctx, http.MethodDelete, "/schedule/hours/date", token, query, nil, nil)
}

func (c *Client) GetSchedule(ctx context.Context, token string, masterID int64, date string) (*Schedule, error) {
	query := url.Values{"date": {date}}

	var res Schedule
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/schedule/%d", masterID), token, query, nil, &res); err != nil {
		return nil, err
	}

	return &res, nil
}

func (c *Client) do(ctx context.Context, method, path, token string, query url.Values, payload, out any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var body io.Reader
	if payload != nil {
		buf, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to encode %s %s payload: %w", method, path, err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return fmt.Errorf("failed to build %s %s request: %w", method, path, err)
	}

	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return fmt.Errorf("%s %s: %w", method, path, ErrUnauthorized)
	case resp.StatusCode == http.StatusBadRequest:
		text, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%s %s: %w: %s", method, path, ErrBadRequest, strings.TrimSpace(string(text)))
	case resp.StatusCode >= 300:
		return fmt.Errorf("%s %s: unexpected status %d", method, path, resp.StatusCode)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode %s %s response: %w", method, path, err)
		}
	}

	return nil
}
