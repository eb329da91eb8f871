package notify

import (
	"context"
	"log/slog"
)

// LogSink writes notifications to the log. Links carry bearer tokens and
// are only included when IncludeLinks is set, which should be limited to
// local development.
type LogSink struct {
	Logger       *slog.Logger
	IncludeLinks bool
}

func (s LogSink) Send(ctx context.Context, n Notification) error {
	attrs := []any{
		"kind", n.Kind,
		"user_id", n.UserID,
		"email", n.Email,
	}
	if n.ExpiresAt != nil {
		attrs = append(attrs, "expires_at", n.ExpiresAt)
	}
	if s.IncludeLinks && n.Link != "" {
		attrs = append(attrs, "link", n.Link)
	}

	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.InfoContext(ctx, "notification", attrs...)
	return nil
}
