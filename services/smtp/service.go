package smtp

import (
	"bytes"
	"context"
	"fmt"
	"net/smtp"

	"github.com/customeros/mailsherpa/mailvalidate"
	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"

	"github.com/oneboxhq/onebox/config"
	"github.com/oneboxhq/onebox/interfaces"
	"github.com/oneboxhq/onebox/internal/enum"
	onebox_errors "github.com/oneboxhq/onebox/internal/errors"
	"github.com/oneboxhq/onebox/internal/models"
	"github.com/oneboxhq/onebox/internal/repository"
	"github.com/oneboxhq/onebox/internal/tracing"
	"github.com/oneboxhq/onebox/internal/utils"
)

type smtpService struct {
	smtpConfig    *config.SMTPConfig
	mailboxConfig *config.MailboxConfig
	repositories  *repository.Repositories
}

func NewSMTPService(smtpConfig *config.SMTPConfig, mailboxConfig *config.MailboxConfig, repos *repository.Repositories) interfaces.SMTPService {
	return &smtpService{
		smtpConfig:    smtpConfig,
		mailboxConfig: mailboxConfig,
		repositories:  repos,
	}
}

// Send transmits a plain-text message using the mailbox credentials and
// records the outbound email with its final status. Auth, connection and
// rejected-recipient errors are returned without retry.
func (s *smtpService) Send(ctx context.Context, to, subject, body string) (*models.Email, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "smtpService.Send")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)

	validation := mailvalidate.ValidateEmailSyntax(to)
	if !validation.IsValid {
		err := errors.Wrap(onebox_errors.ErrInvalidRecipient, to)
		tracing.TraceErr(span, err)
		return nil, err
	}

	email := s.buildOutboundEmail(validation.CleanEmail, subject, body)

	message := s.prepareMessage(email)

	sendErr := s.sendToServer(ctx, email.FromAddress, email.ToAddresses, message)
	if sendErr != nil {
		email.Status = enum.EmailStatusFailed
	} else {
		email.Status = enum.EmailStatusSent
		email.SentAt = utils.NowPtr()
	}

	if _, err := s.repositories.EmailRepository.Create(ctx, email); err != nil {
		tracing.TraceErr(span, err)
	}

	if sendErr != nil {
		tracing.TraceErr(span, sendErr)
		return email, sendErr
	}

	return email, nil
}

func (s *smtpService) buildOutboundEmail(to, subject, body string) *models.Email {
	fromDomain := s.smtpConfig.FromDomain
	if fromDomain == "" {
		fromDomain = s.smtpConfig.Host
	}

	return &models.Email{
		MessageID:   utils.GenerateMessageID(fromDomain, ""),
		Folder:      "Sent",
		Direction:   enum.EmailOutbound,
		FromAddress: s.mailboxConfig.ImapUsername,
		ToAddresses: []string{to},
		Subject:     subject,
		BodyText:    body,
	}
}

// prepareMessage builds a plain-text RFC 5322 message.
func (s *smtpService) prepareMessage(email *models.Email) *bytes.Buffer {
	buffer := bytes.NewBuffer(nil)

	headers := map[string]string{
		"From":         email.FromAddress,
		"To":           email.ToAddresses[0],
		"Subject":      email.Subject,
		"Message-ID":   email.MessageID,
		"MIME-Version": "1.0",
		"Content-Type": "text/plain; charset=UTF-8",
	}

	for key, value := range headers {
		fmt.Fprintf(buffer, "%s: %s\r\n", key, value)
	}
	buffer.WriteString("\r\n")
	buffer.WriteString(email.BodyText)

	return buffer
}

func (s *smtpService) sendToServer(ctx context.Context, from string, recipients []string, buffer *bytes.Buffer) error {
	span, _ := opentracing.StartSpanFromContext(ctx, "smtpService.sendToServer")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)

	addr := fmt.Sprintf("%s:%d", s.smtpConfig.Host, s.smtpConfig.Port)
	auth := smtp.PlainAuth("", s.mailboxConfig.ImapUsername, s.mailboxConfig.ImapPassword, s.smtpConfig.Host)

	err := smtp.SendMail(addr, auth, from, recipients, buffer.Bytes())
	if err != nil {
		err = fmt.Errorf("failed to send email: %w", err)
		tracing.TraceErr(span, err)
		return err
	}

	return nil
}
