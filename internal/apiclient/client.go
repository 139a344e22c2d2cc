package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"attendance-console/internal/metrics"
)

// ErrInvalidCredentials is returned for any rejected login. The backend's
// detail message is deliberately not echoed to the caller.
var ErrInvalidCredentials = errors.New("invalid credentials")

// StatusError reports a non-success HTTP status from the backend.
type StatusError struct {
	Op   string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: request failed: %d", e.Op, e.Code)
}

// Unauthorized reports whether the status means the session is not accepted.
func (e *StatusError) Unauthorized() bool {
	return e.Code == http.StatusUnauthorized || e.Code == http.StatusForbidden
}

// Session is the opaque credential the backend issued at login. The console
// never interprets the value; it is attached to every authenticated request.
type Session struct {
	Value string
}

// Client calls the attendance backend API.
type Client struct {
	BaseURL    string
	CookieName string
	HTTP       *http.Client
}

// New creates a client for the configured backend origin.
func New(baseURL, cookieName string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		BaseURL:    baseURL,
		CookieName: cookieName,
		HTTP:       &http.Client{Timeout: timeout},
	}
}

// Login authenticates and returns the session credential from the response
// cookie. Any non-2xx outcome maps to ErrInvalidCredentials.
func (c *Client) Login(ctx context.Context, username, password string) (Session, error) {
	body, _ := json.Marshal(map[string]string{"username": username, "password": password})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/api/auth/login", bytes.NewReader(body))
	if err != nil {
		return Session{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.do(req, "login")
	if err != nil {
		return Session{}, fmt.Errorf("login request failed: %w", err)
	}
	defer resp.Body.Close()
	drain(resp.Body)

	if resp.StatusCode >= 300 {
		return Session{}, ErrInvalidCredentials
	}

	for _, ck := range resp.Cookies() {
		if ck.Name == c.CookieName && ck.Value != "" {
			return Session{Value: ck.Value}, nil
		}
	}
	return Session{}, errors.New("login response missing session cookie")
}

// Ping reports whether the backend answers HTTP at all. Any status counts as
// reachable; only transport failure is an error.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/api/auth/me", nil)
	if err != nil {
		return err
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("backend unreachable: %w", err)
	}
	drain(resp.Body)
	resp.Body.Close()
	return nil
}

// Bind returns a client that attaches the session credential to every request.
func (c *Client) Bind(s Session) *SessionClient {
	return &SessionClient{c: c, session: s}
}

// SessionClient issues authenticated calls on behalf of one session.
type SessionClient struct {
	c       *Client
	session Session
}

// Me performs the who-am-I check. It succeeds only when the backend accepts
// the session; the identity payload itself is not used.
func (s *SessionClient) Me(ctx context.Context) error {
	return s.getJSON(ctx, "me", "/api/auth/me", nil)
}

// Logout terminates the session on the backend.
func (s *SessionClient) Logout(ctx context.Context) error {
	req, err := s.newRequest(ctx, http.MethodPost, "/api/auth/logout")
	if err != nil {
		return err
	}
	resp, err := s.c.do(req, "logout")
	if err != nil {
		return fmt.Errorf("logout request failed: %w", err)
	}
	defer resp.Body.Close()
	drain(resp.Body)
	if resp.StatusCode >= 300 {
		return &StatusError{Op: "logout", Code: resp.StatusCode}
	}
	return nil
}

// Stats fetches the aggregate attendance statistics snapshot.
func (s *SessionClient) Stats(ctx context.Context) (Stats, error) {
	var out Stats
	if err := s.getJSON(ctx, "stats", "/api/stats", &out); err != nil {
		return Stats{}, err
	}
	return out, nil
}

// WeeklyStats fetches the per-day attendance counts for the trailing week.
func (s *SessionClient) WeeklyStats(ctx context.Context) ([]DailyCount, error) {
	var out struct {
		Data []DailyCount `json:"data"`
	}
	if err := s.getJSON(ctx, "weekly_stats", "/api/stats/weekly", &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

// Attendance fetches raw attendance records for a YYYY-MM-DD date key. The
// backend returns either a bare array or an object wrapping the rows under
// "data"; both shapes are accepted.
func (s *SessionClient) Attendance(ctx context.Context, dateKey string) ([]RawRecord, error) {
	req, err := s.newRequest(ctx, http.MethodGet, "/api/attendance?date="+url.QueryEscape(dateKey))
	if err != nil {
		return nil, err
	}
	resp, err := s.c.do(req, "attendance")
	if err != nil {
		return nil, fmt.Errorf("attendance request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		drain(resp.Body)
		return nil, &StatusError{Op: "attendance", Code: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("attendance: read response: %w", err)
	}
	return decodeRecords(body)
}

func decodeRecords(body []byte) ([]RawRecord, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var rows []RawRecord
		if err := json.Unmarshal(trimmed, &rows); err != nil {
			return nil, fmt.Errorf("attendance: decode response: %w", err)
		}
		return rows, nil
	}
	var wrapped struct {
		Data []RawRecord `json:"data"`
	}
	if err := json.Unmarshal(trimmed, &wrapped); err != nil {
		return nil, fmt.Errorf("attendance: decode response: %w", err)
	}
	return wrapped.Data, nil
}

func (s *SessionClient) newRequest(ctx context.Context, method, path string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, s.c.BaseURL+path, nil)
	if err != nil {
		return nil, err
	}
	// Stats and attendance reads are freshness-sensitive.
	req.Header.Set("Cache-Control", "no-store")
	req.AddCookie(&http.Cookie{Name: s.c.CookieName, Value: s.session.Value})
	return req, nil
}

func (s *SessionClient) getJSON(ctx context.Context, op, path string, out any) error {
	req, err := s.newRequest(ctx, http.MethodGet, path)
	if err != nil {
		return err
	}
	resp, err := s.c.do(req, op)
	if err != nil {
		return fmt.Errorf("%s request failed: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		drain(resp.Body)
		return &StatusError{Op: op, Code: resp.StatusCode}
	}
	if out == nil {
		drain(resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: decode response: %w", op, err)
	}
	return nil
}

func (c *Client) do(req *http.Request, op string) (*http.Response, error) {
	start := time.Now()
	resp, err := c.HTTP.Do(req)
	outcome := metrics.OutcomeOK
	switch {
	case err != nil:
		outcome = metrics.OutcomeTransport
	case resp.StatusCode >= 300:
		outcome = metrics.OutcomeHTTPError
	}
	metrics.ObserveAPIRequest(op, outcome, time.Since(start))
	return resp, err
}

func drain(r io.Reader) {
	_, _ = io.Copy(io.Discard, io.LimitReader(r, 4096))
}
