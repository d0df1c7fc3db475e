package services

import (
	"github.com/oneboxhq/onebox/config"
	"github.com/oneboxhq/onebox/interfaces"
	"github.com/oneboxhq/onebox/internal/logger"
	"github.com/oneboxhq/onebox/internal/repository"
	"github.com/oneboxhq/onebox/services/ai"
	"github.com/oneboxhq/onebox/services/email_processor"
	"github.com/oneboxhq/onebox/services/imap"
	"github.com/oneboxhq/onebox/services/smtp"
)

type Services struct {
	IMAPService interfaces.IMAPService
	AIService   interfaces.AIService
	SMTPService interfaces.SMTPService
}

func InitServices(cfg *config.Config, log logger.Logger, repos *repository.Repositories) *Services {
	processor := email_processor.NewProcessor(repos.EmailRepository, repos.EmailAttachmentRepository, log)

	return &Services{
		IMAPService: imap.NewIMAPService(cfg.MailboxConfig, processor, log),
		AIService:   ai.NewAIService(cfg.OpenAIConfig),
		SMTPService: smtp.NewSMTPService(cfg.SMTPConfig, cfg.MailboxConfig, repos),
	}
}
