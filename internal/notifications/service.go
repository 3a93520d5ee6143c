package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"phrasesync/internal/config"
)

const userAgent = "phrasesync/0.1.0"

// Event identifies a notification template.
type Event string

const (
	EventSessionStarted   Event = "session_started"
	EventPlaybackFinished Event = "playback_finished"
	EventSessionEnded     Event = "session_ended"
	EventTest             Event = "test"
)

// Payload carries the template values for an event.
type Payload map[string]any

// Service publishes events.
type Service interface {
	Publish(ctx context.Context, event Event, payload Payload) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	if cfg == nil {
		return noopService{}
	}
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := cfg.NotifyTimeout()
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &ntfyService{
		endpoint: topic,
		client:   &http.Client{Timeout: timeout},
	}
}

type message struct {
	title    string
	body     string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint string
	client   *http.Client
}

func (n *ntfyService) Publish(ctx context.Context, event Event, payload Payload) error {
	msg, err := render(event, payload)
	if err != nil {
		return err
	}
	return n.send(ctx, msg)
}

func render(event Event, payload Payload) (message, error) {
	script := payload.text("script")
	switch event {
	case EventSessionStarted:
		return message{
			title: "phrasesync - Session Started",
			body:  fmt.Sprintf("▶ Playing %s: %d phrases, %s", script, payload.number("phrases"), payload.text("total")),
			tags:  []string{"phrasesync", "session", "started"},
		}, nil
	case EventPlaybackFinished:
		return message{
			title: "phrasesync - Finished",
			body:  fmt.Sprintf("✅ Finished %s at %s", script, payload.text("total")),
			tags:  []string{"phrasesync", "playback", "finished"},
		}, nil
	case EventSessionEnded:
		return message{
			title:    "phrasesync - Session Ended",
			body:     fmt.Sprintf("⏹ Session for %s ended at %s", script, payload.text("position")),
			tags:     []string{"phrasesync", "session", "ended"},
			priority: "low",
		}, nil
	case EventTest:
		return message{
			title:    "phrasesync - Test",
			body:     "🧪 Notification system test",
			tags:     []string{"phrasesync", "test"},
			priority: "low",
		}, nil
	default:
		return message{}, fmt.Errorf("unknown notification event %q", event)
	}
}

func (p Payload) text(key string) string {
	if p == nil {
		return ""
	}
	switch v := p[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

func (p Payload) number(key string) int {
	if p == nil {
		return 0
	}
	switch v := p[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}

func (n *ntfyService) send(ctx context.Context, msg message) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(msg.body))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if msg.title != "" {
		req.Header.Set("Title", msg.title)
	}
	if len(msg.tags) > 0 {
		req.Header.Set("Tags", strings.Join(msg.tags, ","))
	}
	if msg.priority != "" && msg.priority != "default" {
		req.Header.Set("Priority", msg.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) Publish(context.Context, Event, Payload) error { return nil }
