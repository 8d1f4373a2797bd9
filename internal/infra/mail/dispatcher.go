package mail

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/ThanhLong2006/personal-expense-tracker/internal/core/port"
	"github.com/ThanhLong2006/personal-expense-tracker/internal/infra/logger"
)

type noopDispatcher struct{}

func (noopDispatcher) SendOTP(context.Context, string, string, time.Time) error {
	return nil
}

func (noopDispatcher) SendPasswordReset(context.Context, string, string, time.Time) error {
	return nil
}

// LoggingDispatcher records credential dispatch events for observability
// without delivering them. Actual mail transport is owned by a downstream
// consumer of the published auth events.
type LoggingDispatcher struct {
	logger *zap.Logger
}

// NewLoggingDispatcher constructs a mail dispatcher backed by structured logging.
func NewLoggingDispatcher(log *zap.Logger) port.MailDispatcher {
	if log == nil {
		return noopDispatcher{}
	}
	return &LoggingDispatcher{logger: log}
}

// SendOTP logs an activation code dispatch. The code itself stays out of the
// log line; only its expiry and masked destination are recorded.
func (d *LoggingDispatcher) SendOTP(_ context.Context, email, _ string, expiresAt time.Time) error {
	d.logger.Info("dispatch activation code",
		zap.String("email", logger.MaskEmail(email)),
		zap.Time("expires_at", expiresAt),
	)
	return nil
}

// SendPasswordReset logs a reset token dispatch with the token masked.
func (d *LoggingDispatcher) SendPasswordReset(_ context.Context, email, token string, expiresAt time.Time) error {
	d.logger.Info("dispatch password reset",
		zap.String("email", logger.MaskEmail(email)),
		zap.String("token", logger.MaskString(token)),
		zap.Time("expires_at", expiresAt),
	)
	return nil
}
