package interfaces

import (
	"context"

	"github.com/oneboxhq/onebox/internal/enum"
	"github.com/oneboxhq/onebox/internal/models"
)

type EmailRepository interface {
	// Create persists an email. It is safe for concurrent use and
	// deduplicates on Message-ID: creating an email whose Message-ID is
	// already stored returns the existing record's ID.
	Create(ctx context.Context, email *models.Email) (string, error)
	GetByID(ctx context.Context, id string) (*models.Email, error)
	GetByMessageID(ctx context.Context, messageID string) (*models.Email, error)
	ListByCategory(ctx context.Context, category enum.EmailCategory) ([]*models.Email, error)
	Update(ctx context.Context, email *models.Email) error
}

type EmailAttachmentRepository interface {
	CreateForEmail(ctx context.Context, emailID string, attachments []*models.EmailAttachment) error
	ListByEmailID(ctx context.Context, emailID string) ([]*models.EmailAttachment, error)
}
