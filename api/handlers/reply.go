package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/oneboxhq/onebox/interfaces"
	oneboxErrors "github.com/oneboxhq/onebox/internal/errors"
	"github.com/oneboxhq/onebox/internal/tracing"
	"github.com/oneboxhq/onebox/internal/utils"
)

type ReplyRequest struct {
	Body string `json:"body"`
	// EmailID optionally references the stored email being replied to; when
	// set, the reply is addressed to that email's original sender.
	EmailID string `json:"emailId"`
}

type ReplyHandler struct {
	aiService        interfaces.AIService
	smtpService      interfaces.SMTPService
	emailRepository  interfaces.EmailRepository
	defaultRecipient string
}

func NewReplyHandler(aiService interfaces.AIService, smtpService interfaces.SMTPService, emailRepo interfaces.EmailRepository, defaultRecipient string) *ReplyHandler {
	return &ReplyHandler{
		aiService:        aiService,
		smtpService:      smtpService,
		emailRepository:  emailRepo,
		defaultRecipient: defaultRecipient,
	}
}

// Reply generates a reply for the submitted email body and sends it. The
// mailer is only invoked after a successful generation; a send failure still
// returns the generated text so the caller can decide whether to re-send.
func (h *ReplyHandler) Reply() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := tracing.StartHttpServerTracerSpanWithHeader(c.Request.Context(), "ReplyHandler.Reply", c.Request.Header)
		defer span.Finish()
		tracing.TagComponentRest(span)

		var request ReplyRequest
		if err := c.ShouldBindJSON(&request); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
			return
		}

		if strings.TrimSpace(request.Body) == "" {
			tracing.TraceErr(span, oneboxErrors.ErrMissingBody)
			c.JSON(http.StatusBadRequest, gin.H{"error": "Missing email body"})
			return
		}

		recipient, subject, err := h.resolveRecipient(ctx, &request)
		if err != nil {
			tracing.TraceErr(span, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to resolve recipient"})
			return
		}
		if recipient == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "No recipient available for reply"})
			return
		}

		reply, err := h.aiService.GenerateReply(ctx, request.Body)
		if err != nil {
			tracing.TraceErr(span, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate reply"})
			return
		}

		if _, err := h.smtpService.Send(ctx, recipient, subject, reply); err != nil {
			tracing.TraceErr(span, err)
			// The generated text stays visible so the caller can re-send.
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to send reply",
				"reply": reply,
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"message": "Reply sent successfully",
			"reply":   reply,
		})
	}
}

// resolveRecipient addresses the reply to the original message's sender when
// the request references a stored email, otherwise to the configured default.
func (h *ReplyHandler) resolveRecipient(ctx context.Context, request *ReplyRequest) (recipient, subject string, err error) {
	subject = "Re: Your Email"

	if request.EmailID == "" {
		return h.defaultRecipient, subject, nil
	}

	email, err := h.emailRepository.GetByID(ctx, request.EmailID)
	if err != nil {
		return "", "", err
	}
	if email == nil {
		return h.defaultRecipient, subject, nil
	}

	// Stored subjects may already carry reply prefixes; normalize so the
	// outbound subject never stacks "Re: Re:".
	if normalized := utils.NormalizeEmailSubject(email.Subject); normalized != "" {
		subject = "Re: " + normalized
	}
	return email.FromAddress, subject, nil
}
