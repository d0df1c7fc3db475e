package models

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/oneboxhq/onebox/internal/enum"
	"github.com/oneboxhq/onebox/internal/utils"
)

// Email represents a single mail message stored in the database, either
// ingested from the mailbox or sent through the outbound mailer.
type Email struct {
	ID        string `gorm:"column:id;type:varchar(50);primaryKey"`
	// MessageID is unique only when present; messages without one are
	// stored as distinct rows.
	MessageID string `gorm:"column:message_id;type:varchar(255);not null;uniqueIndex:uq_emails_message_id,where:message_id <> ''"`
	ImapUID   uint32 `gorm:"column:imap_uid;index"`
	Folder    string `gorm:"column:folder;type:varchar(100);index;not null"`

	Direction   enum.EmailDirection `gorm:"column:direction;type:varchar(20);index;not null"`
	FromAddress string              `gorm:"column:from_address;type:varchar(255);index"`
	FromName    string              `gorm:"column:from_name;type:varchar(255)"`
	ToAddresses pq.StringArray      `gorm:"column:to_addresses;type:text[]"`

	Subject  string `gorm:"column:subject;type:varchar(1000)"`
	BodyText string `gorm:"column:body_text;type:text"`
	BodyHTML string `gorm:"column:body_html;type:text"`

	// Headers keeps threading headers (In-Reply-To, References) for replies.
	Headers JSONMap `gorm:"column:headers;type:jsonb"`

	// ReceivedAt is assigned at ingestion time, not taken from the Date header.
	ReceivedAt *time.Time `gorm:"column:received_at;type:timestamp;index"`
	SentAt     *time.Time `gorm:"column:sent_at;type:timestamp"`

	Category enum.EmailCategory `gorm:"column:category;type:varchar(50);index"`
	Status   enum.EmailStatus   `gorm:"column:status;type:varchar(20);index"`

	IsRead        bool `gorm:"column:is_read;default:false"`
	IsStarred     bool `gorm:"column:is_starred;default:false"`
	HasAttachment bool `gorm:"column:has_attachment;default:false"`

	CreatedAt time.Time      `gorm:"column:created_at;type:timestamp;default:current_timestamp"`
	UpdatedAt time.Time      `gorm:"column:updated_at;type:timestamp;default:current_timestamp"`
	DeletedAt gorm.DeletedAt `gorm:"column:deleted_at;index"`
}

func (Email) TableName() string {
	return "emails"
}

func (e *Email) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = utils.GenerateNanoIDWithPrefix("email", 24)
	}
	e.CreatedAt = utils.Now()
	return nil
}

// Sender renders the origin header as a display-and-address string.
func (e *Email) Sender() string {
	return utils.FormatAddress(e.FromName, e.FromAddress)
}
