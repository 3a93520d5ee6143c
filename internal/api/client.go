package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// ErrAPIUnavailable is returned when no daemon API is configured or reachable.
var ErrAPIUnavailable = errors.New("daemon API unavailable")

// Session actions accepted by POST /api/session/{action}.
const (
	ActionToggle     = "toggle"
	ActionPlay       = "play"
	ActionPause      = "pause"
	ActionStop       = "stop"
	ActionRestart    = "restart"
	ActionNext       = "next"
	ActionPrevious   = "previous"
	ActionRepeatLast = "repeat-last"
)

// Actions lists every session action in display order.
var Actions = []string{ActionToggle, ActionPlay, ActionPause, ActionStop, ActionRestart, ActionNext, ActionPrevious, ActionRepeatLast}

// StatusError is a non-2xx API response.
type StatusError struct {
	Status  int
	Message string
	Kind    string
}

func (e *StatusError) Error() string {
	if e.Kind != "" {
		return fmt.Sprintf("api returned status %d (%s): %s", e.Status, e.Kind, e.Message)
	}
	return fmt.Sprintf("api returned status %d: %s", e.Status, e.Message)
}

// Client talks to the daemon HTTP API.
type Client struct {
	base  *url.URL
	token string
	http  *http.Client
}

// NewClient builds a client for bind (host:port or URL). An empty bind
// yields a nil client whose methods return ErrAPIUnavailable.
func NewClient(bind, token string) (*Client, error) {
	bind = strings.TrimSpace(bind)
	if bind == "" {
		return nil, nil
	}
	if !strings.Contains(bind, "://") {
		bind = "http://" + bind
	}
	base, err := url.Parse(bind)
	if err != nil {
		return nil, err
	}
	base.Path = ""
	base.RawQuery = ""
	base.Fragment = ""

	return &Client{
		base:  base,
		token: strings.TrimSpace(token),
		http:  &http.Client{Timeout: 10 * time.Second},
	}, nil
}

// Status fetches daemon status.
func (c *Client) Status(ctx context.Context) (DaemonStatus, error) {
	var out DaemonStatus
	err := c.do(ctx, http.MethodGet, "/api/status", nil, &out)
	return out, err
}

// Scripts lists catalogued scripts.
func (c *Client) Scripts(ctx context.Context) ([]Script, error) {
	var out ScriptListResponse
	if err := c.do(ctx, http.MethodGet, "/api/scripts", nil, &out); err != nil {
		return nil, err
	}
	return out.Scripts, nil
}

// StartSession activates script, replacing any active session.
func (c *Client) StartSession(ctx context.Context, script string) (Session, error) {
	var out Session
	err := c.do(ctx, http.MethodPost, "/api/session", SessionRequest{Script: script}, &out)
	return out, err
}

// Session fetches the active session.
func (c *Client) Session(ctx context.Context) (Session, error) {
	var out Session
	err := c.do(ctx, http.MethodGet, "/api/session", nil, &out)
	return out, err
}

// Timeline fetches the active session's timeline.
func (c *Client) Timeline(ctx context.Context) (TimelineResponse, error) {
	var out TimelineResponse
	err := c.do(ctx, http.MethodGet, "/api/session/timeline", nil, &out)
	return out, err
}

// Action runs a transport action on the active session.
func (c *Client) Action(ctx context.Context, action string) (Session, error) {
	var out Session
	err := c.do(ctx, http.MethodPost, "/api/session/"+url.PathEscape(action), nil, &out)
	return out, err
}

// Seek jumps to phrase index.
func (c *Client) Seek(ctx context.Context, index int) (Session, error) {
	var out Session
	err := c.do(ctx, http.MethodPost, "/api/session/seek/"+strconv.Itoa(index), nil, &out)
	return out, err
}

// Repeat repeats phrase index at the reduced rate.
func (c *Client) Repeat(ctx context.Context, index int) (Session, error) {
	var out Session
	err := c.do(ctx, http.MethodPost, "/api/session/repeat/"+strconv.Itoa(index), nil, &out)
	return out, err
}

// EndSession detaches the active session.
func (c *Client) EndSession(ctx context.Context) error {
	return c.do(ctx, http.MethodDelete, "/api/session", nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	if c == nil {
		return ErrAPIUnavailable
	}
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	endpoint := c.base.ResolveReference(&url.URL{Path: path})
	req, err := http.NewRequestWithContext(ctx, method, endpoint.String(), reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var payload ErrorResponse
		if decodeErr := json.NewDecoder(resp.Body).Decode(&payload); decodeErr != nil || payload.Error == "" {
			payload.Error = http.StatusText(resp.StatusCode)
		}
		return &StatusError{Status: resp.StatusCode, Message: payload.Error, Kind: payload.Kind}
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// IsAPIUnavailable reports whether err means the daemon could not be reached.
func IsAPIUnavailable(err error) bool {
	if err == nil {
		return false
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Err != nil {
		err = urlErr.Err
	}
	var opErr *net.OpError
	return errors.Is(err, ErrAPIUnavailable) || errors.As(err, &opErr)
}

// IsNotFound reports whether err is a 404 from the API.
func IsNotFound(err error) bool {
	var statusErr *StatusError
	return errors.As(err, &statusErr) && statusErr.Status == http.StatusNotFound
}
