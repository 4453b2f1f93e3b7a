package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/TutorHub-2025/messaging-service/internal/services"
	"github.com/TutorHub-2025/messaging-service/internal/utils"
)

type HandlerManager struct {
	authHandler         *AuthHandler
	conversationHandler *ConversationHandler
	messageHandler      *MessageHandler
	userHandler         *UserHandler
	reviewHandler       *ReviewHandler
	exportHandler       *ExportHandler
	sessionAuth         *SessionAuthMiddleware
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	logger utils.Logger,
	secureCookies bool,
) *HandlerManager {
	sessionAuth := NewSessionAuthMiddleware(serviceManager.Auth(), secureCookies)

	return &HandlerManager{
		authHandler:         NewAuthHandler(serviceManager.Auth(), sessionAuth, logger),
		conversationHandler: NewConversationHandler(serviceManager.Messaging(), logger),
		messageHandler:      NewMessageHandler(serviceManager.Messaging(), logger),
		userHandler:         NewUserHandler(serviceManager.Users(), logger),
		reviewHandler:       NewReviewHandler(serviceManager.Reviews(), logger),
		exportHandler:       NewExportHandler(serviceManager.Export(), logger),
		sessionAuth:         sessionAuth,
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	api := router.Group("/api")
	{
		// Public routes
		api.POST("/auth/register", hm.authHandler.Register)
		api.POST("/auth/login", hm.authHandler.Login)
		api.POST("/auth/logout", hm.authHandler.Logout)
		api.POST("/setup-admin", hm.authHandler.SetupAdmin)
		api.GET("/reviews", hm.reviewHandler.ListReviews)
		api.POST("/submit-review", hm.reviewHandler.SubmitReview)

		// Session-authenticated routes
		authed := api.Group("")
		authed.Use(hm.sessionAuth.AuthMiddleware())
		{
			authed.GET("/auth/me", hm.authHandler.Me)

			authed.POST("/conversations", hm.conversationHandler.CreateConversation)
			authed.GET("/conversations", hm.conversationHandler.GetConversations)
			authed.PUT("/conversations", hm.conversationHandler.UpdateConversation)
			authed.POST("/start-consultation", hm.conversationHandler.StartConsultation)

			authed.POST("/messages", hm.messageHandler.SendMessage)
			authed.GET("/messages", hm.messageHandler.GetMessages)
			authed.PUT("/messages", hm.messageHandler.MarkMessageRead)

			authed.GET("/users", hm.userHandler.GetUsers)
			authed.PUT("/users", hm.userHandler.UpdateUser)

			// Admin-only exports
			admin := authed.Group("/admin")
			admin.Use(hm.sessionAuth.RequireAdminMiddleware())
			{
				admin.GET("/export/messages", hm.exportHandler.ExportMessages)
				admin.GET("/export/reviews", hm.exportHandler.ExportReviews)
			}
		}
	}

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"service": "messaging-service",
		})
	})
}
