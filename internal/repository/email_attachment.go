package repository

import (
	"context"

	"github.com/opentracing/opentracing-go"
	"gorm.io/gorm"

	"github.com/oneboxhq/onebox/interfaces"
	"github.com/oneboxhq/onebox/internal/models"
	"github.com/oneboxhq/onebox/internal/tracing"
)

type emailAttachmentRepository struct {
	db *gorm.DB
}

func NewEmailAttachmentRepository(db *gorm.DB) interfaces.EmailAttachmentRepository {
	return &emailAttachmentRepository{
		db: db,
	}
}

func (r *emailAttachmentRepository) CreateForEmail(ctx context.Context, emailID string, attachments []*models.EmailAttachment) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "emailAttachmentRepository.CreateForEmail")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)
	span.SetTag("email.id", emailID)

	if len(attachments) == 0 {
		return nil
	}

	for _, attachment := range attachments {
		attachment.EmailID = emailID
	}

	if err := r.db.WithContext(ctx).Create(attachments).Error; err != nil {
		tracing.TraceErr(span, err)
		return err
	}
	return nil
}

func (r *emailAttachmentRepository) ListByEmailID(ctx context.Context, emailID string) ([]*models.EmailAttachment, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "emailAttachmentRepository.ListByEmailID")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)
	span.SetTag("email.id", emailID)

	var attachments []*models.EmailAttachment
	if err := r.db.WithContext(ctx).
		Where("email_id = ?", emailID).
		Order("created_at ASC").
		Find(&attachments).Error; err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}
	return attachments, nil
}
