package interfaces

import (
	"context"

	"github.com/oneboxhq/onebox/internal/models"
)

// IMAPService owns the mailbox connection lifecycle. The raw connection
// never leaves the service; callers only get Start/Stop and an on-demand
// sync trigger.
type IMAPService interface {
	Start(ctx context.Context) error
	Stop() error
	// TriggerSync runs one poll cycle. It returns ErrSyncInProgress when a
	// cycle is already running; overlapping cycles are never executed.
	TriggerSync(ctx context.Context) error
}

// AIService generates reply text for an email body via a language-model
// completion service.
type AIService interface {
	GenerateReply(ctx context.Context, emailBody string) (string, error)
}

// SMTPService sends outbound mail and records the result.
type SMTPService interface {
	Send(ctx context.Context, to, subject, body string) (*models.Email, error)
}
