package api

import (
	"github.com/gin-gonic/gin"
	"github.com/opentracing/opentracing-go"

	"github.com/oneboxhq/onebox/api/handlers"
	"github.com/oneboxhq/onebox/config"
	"github.com/oneboxhq/onebox/internal/repository"
	"github.com/oneboxhq/onebox/internal/tracing"
	"github.com/oneboxhq/onebox/services"
)

// RegisterRoutes sets up all API endpoints
func RegisterRoutes(r *gin.Engine, cfg *config.Config, s *services.Services, repos *repository.Repositories) {
	if s == nil {
		panic("Services cannot be nil")
	}
	if repos == nil {
		panic("Repositories cannot be nil")
	}

	r.Use(gin.Recovery())
	r.Use(tracing.RecoveryWithJaeger(opentracing.GlobalTracer()))

	r.GET("/", handlers.Liveness)

	emails := r.Group("/api/emails")
	{
		emails.GET("/category/:category", handlers.ListEmailsByCategory(repos.EmailRepository, repos.EmailAttachmentRepository))
	}

	replyHandler := handlers.NewReplyHandler(s.AIService, s.SMTPService, repos.EmailRepository, cfg.SMTPConfig.DefaultRecipient)
	r.POST("/reply", replyHandler.Reply())
}
