package dto

import (
	"time"

	"github.com/oneboxhq/onebox/internal/models"
)

// EmailRecord is the wire shape of a persisted email. Field names are the
// contract for the category listing endpoint and must round-trip exactly.
type EmailRecord struct {
	ID          string             `json:"id"`
	Sender      string             `json:"sender"`
	Subject     string             `json:"subject"`
	Body        string             `json:"body"`
	ReceivedAt  *time.Time         `json:"receivedAt"`
	Folder      string             `json:"folder"`
	Category    string             `json:"category"`
	IsRead      bool               `json:"isRead"`
	IsStarred   bool               `json:"isStarred"`
	Attachments []AttachmentRecord `json:"attachments"`
}

type AttachmentRecord struct {
	ID          string `json:"id"`
	Filename    string `json:"filename"`
	ContentType string `json:"contentType"`
	Size        int    `json:"size"`
	IsInline    bool   `json:"isInline"`
}

func MapEmailToRecord(email *models.Email, attachments []*models.EmailAttachment) EmailRecord {
	record := EmailRecord{
		ID:          email.ID,
		Sender:      email.Sender(),
		Subject:     email.Subject,
		Body:        email.BodyText,
		ReceivedAt:  email.ReceivedAt,
		Folder:      email.Folder,
		Category:    email.Category.String(),
		IsRead:      email.IsRead,
		IsStarred:   email.IsStarred,
		Attachments: make([]AttachmentRecord, 0, len(attachments)),
	}

	for _, attachment := range attachments {
		record.Attachments = append(record.Attachments, AttachmentRecord{
			ID:          attachment.ID,
			Filename:    attachment.Filename,
			ContentType: attachment.ContentType,
			Size:        attachment.Size,
			IsInline:    attachment.IsInline,
		})
	}

	return record
}
