package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oneboxhq/onebox/dto"
	"github.com/oneboxhq/onebox/interfaces"
	"github.com/oneboxhq/onebox/internal/enum"
	"github.com/oneboxhq/onebox/internal/tracing"
)

// ListEmailsByCategory returns all stored emails whose category exactly
// matches the path parameter, in ingestion order.
func ListEmailsByCategory(emailRepo interfaces.EmailRepository, attachmentRepo interfaces.EmailAttachmentRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := tracing.StartHttpServerTracerSpanWithHeader(c.Request.Context(), "ListEmailsByCategory", c.Request.Header)
		defer span.Finish()
		tracing.TagComponentRest(span)

		category := enum.EmailCategory(c.Param("category"))
		span.SetTag("category", category.String())

		emails, err := emailRepo.ListByCategory(ctx, category)
		if err != nil {
			tracing.TraceErr(span, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to retrieve emails"})
			return
		}

		records := make([]dto.EmailRecord, 0, len(emails))
		for _, email := range emails {
			attachments, err := attachmentRepo.ListByEmailID(ctx, email.ID)
			if err != nil {
				tracing.TraceErr(span, err)
				c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to retrieve attachments"})
				return
			}
			records = append(records, dto.MapEmailToRecord(email, attachments))
		}

		c.JSON(http.StatusOK, records)
	}
}
