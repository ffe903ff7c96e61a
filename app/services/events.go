package services

import (
	"context"
	"fmt"

	"github.com/shashiranjanraj/uniformhub/pkg/event"
	"github.com/shashiranjanraj/uniformhub/pkg/notification"
	"github.com/shashiranjanraj/uniformhub/pkg/queue"
)

const (
	EventUserPending  = "user.pending"
	EventUserApproved = "user.approved"
	EventUserRejected = "user.rejected"
)

// UserEvent is the payload of every user.* event.
type UserEvent struct {
	UserID uint
	Name   string
	Email  string
}

// pendingSignup is the operator alert for a signup waiting on review.
type pendingSignup struct{ UserEvent }

func (pendingSignup) Via() []string { return []string{"slack"} }

func (p pendingSignup) ToSlack() notification.SlackData {
	return notification.SlackData{
		Text: "A new account is waiting for approval",
		Attachments: []notification.SlackAttachment{{
			Color: "warning",
			Title: p.Name,
			Text:  p.Email,
		}},
	}
}

// RegisterListeners wires user events to outgoing mail and operator alerts.
func RegisterListeners(bus *event.Bus, q *queue.Manager, emails *EmailService, notifier *notification.Notifier) {
	bus.Listen(EventUserApproved, func(ctx context.Context, payload any) error {
		u, ok := payload.(UserEvent)
		if !ok {
			return fmt.Errorf("unexpected payload %T", payload)
		}
		return q.Dispatch(ctx, emails.TemplateJob(u.Email, "user-approved", map[string]any{
			"name":    u.Name,
			"subject": "Your account has been approved",
			"message": "Your account has been approved. You can now sign in.",
		}))
	})

	bus.Listen(EventUserRejected, func(ctx context.Context, payload any) error {
		u, ok := payload.(UserEvent)
		if !ok {
			return fmt.Errorf("unexpected payload %T", payload)
		}
		return q.Dispatch(ctx, emails.TemplateJob(u.Email, "user-rejected", map[string]any{
			"name":    u.Name,
			"subject": "Your account request was declined",
			"message": "Unfortunately your account request was not approved.",
		}))
	})

	if notifier != nil {
		bus.Listen(EventUserPending, func(ctx context.Context, payload any) error {
			u, ok := payload.(UserEvent)
			if !ok {
				return fmt.Errorf("unexpected payload %T", payload)
			}
			if errs := notifier.Send(ctx, pendingSignup{u}); len(errs) > 0 {
				return errs[0]
			}
			return nil
		})
	}
}
