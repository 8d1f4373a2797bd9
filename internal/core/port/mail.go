package port

import (
	"context"
	"time"
)

// MailDispatcher delivers auth credentials out of band. Implementations are
// expected to be fast and side-effect free from the caller's perspective;
// actual transport lives outside this service.
type MailDispatcher interface {
	SendOTP(ctx context.Context, email, code string, expiresAt time.Time) error
	SendPasswordReset(ctx context.Context, email, token string, expiresAt time.Time) error
}
