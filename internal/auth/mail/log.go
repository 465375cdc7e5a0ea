package mail

import (
	"context"
	"log/slog"

	"github.com/tetgift/commerce/pkg/slogx"
)

// LogMailer writes mail to the log instead of sending it. Used in dev when
// no SMTP host is configured.
type LogMailer struct{}

func (LogMailer) SendOtp(ctx context.Context, to, code string) error {
	slogx.FromContext(ctx).Info("mail (dev): otp",
		slog.String("to", to), slog.String("code", code))
	return nil
}

func (LogMailer) SendPasswordReset(ctx context.Context, to, link string) error {
	slogx.FromContext(ctx).Info("mail (dev): password reset",
		slog.String("to", to), slog.String("link", link))
	return nil
}
