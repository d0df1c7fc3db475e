package handlers

import (
	"context"
	"sync"

	"github.com/oneboxhq/onebox/internal/enum"
	"github.com/oneboxhq/onebox/internal/models"
)

type fakeEmailRepository struct {
	mu     sync.Mutex
	emails []*models.Email

	listErr      error
	getByIDCtx   context.Context
	getByIDCalls int
}

func (r *fakeEmailRepository) Create(ctx context.Context, email *models.Email) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.emails = append(r.emails, email)
	return email.ID, nil
}

func (r *fakeEmailRepository) GetByID(ctx context.Context, id string) (*models.Email, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.getByIDCtx = ctx
	r.getByIDCalls++
	for _, email := range r.emails {
		if email.ID == id {
			return email, nil
		}
	}
	return nil, nil
}

func (r *fakeEmailRepository) GetByMessageID(ctx context.Context, messageID string) (*models.Email, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, email := range r.emails {
		if email.MessageID == messageID {
			return email, nil
		}
	}
	return nil, nil
}

func (r *fakeEmailRepository) ListByCategory(ctx context.Context, category enum.EmailCategory) ([]*models.Email, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.listErr != nil {
		return nil, r.listErr
	}
	var result []*models.Email
	for _, email := range r.emails {
		if email.Category == category {
			result = append(result, email)
		}
	}
	return result, nil
}

func (r *fakeEmailRepository) Update(ctx context.Context, email *models.Email) error {
	return nil
}

type fakeAttachmentRepository struct {
	attachments map[string][]*models.EmailAttachment
}

func (r *fakeAttachmentRepository) CreateForEmail(ctx context.Context, emailID string, attachments []*models.EmailAttachment) error {
	if r.attachments == nil {
		r.attachments = map[string][]*models.EmailAttachment{}
	}
	r.attachments[emailID] = append(r.attachments[emailID], attachments...)
	return nil
}

func (r *fakeAttachmentRepository) ListByEmailID(ctx context.Context, emailID string) ([]*models.EmailAttachment, error) {
	return r.attachments[emailID], nil
}

type stubAIService struct {
	reply string
	err   error

	calls      int
	lastPrompt string
}

func (s *stubAIService) GenerateReply(ctx context.Context, emailBody string) (string, error) {
	s.calls++
	s.lastPrompt = emailBody
	if s.err != nil {
		return "", s.err
	}
	return s.reply, nil
}

type stubSMTPService struct {
	err error

	calls         int
	lastRecipient string
	lastSubject   string
	lastBody      string
}

func (s *stubSMTPService) Send(ctx context.Context, to, subject, body string) (*models.Email, error) {
	s.calls++
	s.lastRecipient = to
	s.lastSubject = subject
	s.lastBody = body
	if s.err != nil {
		return nil, s.err
	}
	return &models.Email{
		ToAddresses: []string{to},
		Subject:     subject,
		BodyText:    body,
		Direction:   enum.EmailOutbound,
		Status:      enum.EmailStatusSent,
	}, nil
}
