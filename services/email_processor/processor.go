package email_processor

import (
	"bytes"
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/customeros/mailsherpa/mailvalidate"
	go_imap "github.com/emersion/go-imap"
	"github.com/jhillyerd/enmime"
	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"

	"github.com/oneboxhq/onebox/interfaces"
	"github.com/oneboxhq/onebox/internal/enum"
	"github.com/oneboxhq/onebox/internal/logger"
	"github.com/oneboxhq/onebox/internal/models"
	"github.com/oneboxhq/onebox/internal/tracing"
	"github.com/oneboxhq/onebox/internal/utils"
	"github.com/oneboxhq/onebox/services/email_filter"
)

// InboundMessage carries one fetched mailbox message into the processor.
type InboundMessage struct {
	Folder   string
	UID      uint32
	Envelope *go_imap.Envelope
	Raw      []byte
}

type Processor struct {
	emailRepository      interfaces.EmailRepository
	attachmentRepository interfaces.EmailAttachmentRepository
	log                  logger.Logger
}

func NewProcessor(emailRepo interfaces.EmailRepository, attachmentRepo interfaces.EmailAttachmentRepository, log logger.Logger) *Processor {
	return &Processor{
		emailRepository:      emailRepo,
		attachmentRepository: attachmentRepo,
		log:                  log,
	}
}

// ProcessMessage parses, categorizes and persists a single fetched message.
// Each message is independent: a failure here never affects sibling messages
// in the same poll cycle.
func (p *Processor) ProcessMessage(ctx context.Context, msg InboundMessage) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "Processor.ProcessMessage")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	span.SetTag("folder", msg.Folder)
	span.SetTag("uid", msg.UID)

	email, attachments, err := p.parseMessage(msg)
	if err != nil {
		tracing.TraceErr(span, err)
		return errors.Wrap(err, "failed to parse message")
	}

	email.Category = email_filter.Categorize(email.Subject)
	span.SetTag("category", email.Category.String())

	id, err := p.emailRepository.Create(ctx, email)
	if err != nil {
		tracing.TraceErr(span, err)
		return errors.Wrap(err, "failed to persist email")
	}

	// Create returns the existing record's ID on a Message-ID duplicate;
	// attachments were already stored with the first copy.
	if id != email.ID {
		span.SetTag("duplicate", true)
		p.log.Infof("Skipping duplicate message %s in %s", email.MessageID, msg.Folder)
		return nil
	}

	if len(attachments) > 0 {
		if err := p.attachmentRepository.CreateForEmail(ctx, email.ID, attachments); err != nil {
			tracing.TraceErr(span, err)
			return errors.Wrap(err, "failed to persist attachments")
		}
	}

	p.log.Infof("New %s email: %s", email.Category, email.Subject)
	return nil
}

// parseMessage decodes the raw message bytes into an email record plus
// attachment metadata. receivedAt is the ingestion time, not the Date header.
func (p *Processor) parseMessage(msg InboundMessage) (*models.Email, []*models.EmailAttachment, error) {
	if len(msg.Raw) == 0 {
		return nil, nil, errors.New("message has no content")
	}

	envelope, err := enmime.ReadEnvelope(bytes.NewReader(msg.Raw))
	if err != nil {
		return nil, nil, err
	}

	email := &models.Email{
		Folder:     msg.Folder,
		ImapUID:    msg.UID,
		Direction:  enum.EmailInbound,
		Status:     enum.EmailStatusReceived,
		ReceivedAt: utils.NowPtr(),
		Subject:    envelope.GetHeader("Subject"),
		MessageID:  utils.NormalizeMessageID(envelope.GetHeader("Message-Id")),
		BodyText:   envelope.Text,
		BodyHTML:   envelope.HTML,
	}

	p.applySender(email, envelope, msg.Envelope)
	applyThreadingHeaders(email, envelope)

	if email.Subject == "" && msg.Envelope != nil {
		email.Subject = msg.Envelope.Subject
	}
	if email.MessageID == "" && msg.Envelope != nil {
		email.MessageID = utils.NormalizeMessageID(msg.Envelope.MessageId)
	}

	// HTML-only messages degrade to a best-effort text body.
	if email.BodyText == "" && email.BodyHTML != "" {
		email.BodyText = htmlToText(email.BodyHTML)
	}

	attachments := collectAttachments(envelope)
	email.HasAttachment = len(attachments) > 0

	return email, attachments, nil
}

func (p *Processor) applySender(email *models.Email, envelope *enmime.Envelope, imapEnvelope *go_imap.Envelope) {
	if addresses, err := envelope.AddressList("From"); err == nil && len(addresses) > 0 {
		email.FromName = addresses[0].Name
		email.FromAddress = addresses[0].Address
	} else if imapEnvelope != nil && len(imapEnvelope.From) > 0 {
		sender := imapEnvelope.From[0]
		email.FromName = sender.PersonalName
		email.FromAddress = sender.Address()
	}

	if email.FromAddress != "" {
		validation := mailvalidate.ValidateEmailSyntax(email.FromAddress)
		if validation.IsValid {
			email.FromAddress = validation.CleanEmail
		}
	}
}

func applyThreadingHeaders(email *models.Email, envelope *enmime.Envelope) {
	headers := models.JSONMap{}
	for _, name := range []string{"In-Reply-To", "References"} {
		if value := envelope.GetHeader(name); value != "" {
			headers[name] = value
		}
	}
	if len(headers) > 0 {
		email.Headers = headers
	}
}

func collectAttachments(envelope *enmime.Envelope) []*models.EmailAttachment {
	attachments := make([]*models.EmailAttachment, 0, len(envelope.Attachments)+len(envelope.Inlines))

	for _, part := range envelope.Attachments {
		attachments = append(attachments, &models.EmailAttachment{
			Filename:    part.FileName,
			ContentType: part.ContentType,
			Size:        len(part.Content),
		})
	}

	for _, part := range envelope.Inlines {
		if part.FileName == "" && part.ContentID == "" {
			continue
		}
		attachments = append(attachments, &models.EmailAttachment{
			Filename:    part.FileName,
			ContentType: part.ContentType,
			ContentID:   part.ContentID,
			Size:        len(part.Content),
			IsInline:    true,
		})
	}

	return attachments
}

// htmlToText extracts readable text from an HTML body.
func htmlToText(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}
	doc.Find("script,style").Remove()
	return strings.TrimSpace(strings.Join(strings.Fields(doc.Text()), " "))
}
