// Package notification pushes operator alerts (a signup waiting for
// approval, a failed geographic import) to Slack or a generic webhook.
//
//	n := notification.New(config.SlackWebhook())
//	n.Send(ctx, PendingSignup{Name: u.Name, Email: u.Email})
package notification

import (
	"context"
	"errors"
	"fmt"
	"time"

	uhttp "github.com/shashiranjanraj/uniformhub/pkg/http"
	"github.com/shashiranjanraj/uniformhub/pkg/logger"
)

var ErrNotConfigured = errors.New("notification: channel not configured")

type SlackData struct {
	Text        string
	Attachments []SlackAttachment
}

type SlackAttachment struct {
	Color  string `json:"color,omitempty"`
	Title  string `json:"title,omitempty"`
	Text   string `json:"text,omitempty"`
	Footer string `json:"footer,omitempty"`
}

type WebhookData struct {
	URL     string
	Payload any
	Headers map[string]string
}

// Notification names the channels it goes out on: "slack", "webhook".
type Notification interface {
	Via() []string
}

type Slackable interface {
	ToSlack() SlackData
}

type Webhookable interface {
	ToWebhook() WebhookData
}

type Notifier struct {
	slackWebhook string
	timeout      time.Duration
}

// New returns a notifier posting Slack messages to slackWebhook. An empty
// URL turns the slack channel into a no-op.
func New(slackWebhook string) *Notifier {
	return &Notifier{slackWebhook: slackWebhook, timeout: 5 * time.Second}
}

// Send delivers n on every channel it asks for and returns the failures.
func (nt *Notifier) Send(ctx context.Context, n Notification) []error {
	var errs []error
	for _, channel := range n.Via() {
		err := nt.dispatch(ctx, channel, n)
		if errors.Is(err, ErrNotConfigured) {
			logger.WithCtx(ctx).Debug("notification: channel skipped", "channel", channel)
			continue
		}
		if err != nil {
			logger.WithCtx(ctx).Error("notification: channel failed", "channel", channel, "error", err)
			errs = append(errs, err)
		}
	}
	return errs
}

func (nt *Notifier) dispatch(ctx context.Context, channel string, n Notification) error {
	switch channel {
	case "slack":
		s, ok := n.(Slackable)
		if !ok {
			return fmt.Errorf("notification: %T does not implement Slackable", n)
		}
		return nt.sendSlack(ctx, s.ToSlack())
	case "webhook":
		wh, ok := n.(Webhookable)
		if !ok {
			return fmt.Errorf("notification: %T does not implement Webhookable", n)
		}
		return nt.sendWebhook(ctx, wh.ToWebhook())
	default:
		return fmt.Errorf("notification: unknown channel %q", channel)
	}
}

type slackPayload struct {
	Text        string            `json:"text,omitempty"`
	Attachments []SlackAttachment `json:"attachments,omitempty"`
}

func (nt *Notifier) sendSlack(ctx context.Context, d SlackData) error {
	if nt.slackWebhook == "" {
		return ErrNotConfigured
	}
	_, err := uhttp.Post(nt.slackWebhook).
		WithContext(ctx).
		Timeout(nt.timeout).
		Retry(2, 500*time.Millisecond).
		JSON(slackPayload{Text: d.Text, Attachments: d.Attachments}).
		Send()
	if err != nil {
		return fmt.Errorf("notification: slack: %w", err)
	}
	return nil
}

func (nt *Notifier) sendWebhook(ctx context.Context, d WebhookData) error {
	if d.URL == "" {
		return ErrNotConfigured
	}
	req := uhttp.Post(d.URL).WithContext(ctx).Timeout(10 * time.Second).JSON(d.Payload)
	for k, v := range d.Headers {
		req.Header(k, v)
	}
	if _, err := req.Send(); err != nil {
		return fmt.Errorf("notification: webhook: %w", err)
	}
	return nil
}
