// Package notify delivers account notifications (verification links,
// reset links, security alerts) outside the request path.
package notify

import (
	"context"
	"time"
)

type Kind string

const (
	KindEmailVerification Kind = "email_verification"
	KindPasswordReset     Kind = "password_reset"
	KindTwoFactorEnabled  Kind = "two_factor_enabled"
	KindPasswordChanged   Kind = "password_changed"
)

// Notification is one outbound message. Link may embed a single-use token.
type Notification struct {
	Kind       Kind       `json:"kind"`
	UserID     string     `json:"user_id"`
	Email      string     `json:"email"`
	Link       string     `json:"link,omitempty"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty"`
	OccurredAt time.Time  `json:"occurred_at"`
}

// Notifier is fire-and-forget: it never reports failure to the caller, so a
// delivery problem cannot undo the operation that triggered it.
type Notifier interface {
	Notify(ctx context.Context, n Notification)
}

// Sink performs the actual delivery.
type Sink interface {
	Send(ctx context.Context, n Notification) error
}

// Discard drops every notification.
type Discard struct{}

func (Discard) Notify(context.Context, Notification) {}
