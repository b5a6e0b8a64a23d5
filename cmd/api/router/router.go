package router

import (
	"context"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"yt-summary/cmd/api/handlers"
	"yt-summary/cmd/api/middleware"
	"yt-summary/cmd/api/services"
	_ "yt-summary/docs"
)

// Deps are the services the HTTP routes are built on.
type Deps struct {
	Auth           *services.AuthService
	Users          *services.UserService
	Summarizations *services.SummarizationService
	Chat           *services.ChatService
	Ping           func(ctx context.Context) error
	// RateLimiter is optional; nil disables per-client limiting.
	RateLimiter *middleware.RateLimiter
}

func New(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestTrace())
	if d.RateLimiter != nil {
		r.Use(d.RateLimiter.Middleware())
	}

	r.GET("/", handlers.RootHandler())
	r.GET("/health", handlers.HealthHandler(d.Ping))

	// Swagger
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	r.POST("/auth", handlers.LoginHandler(d.Auth))
	r.POST("/user", handlers.RegisterHandler(d.Users))

	authed := r.Group("/", middleware.UserAuthMiddleware(d.Auth))
	{
		authed.GET("/user/me", handlers.GetCurrentUserHandler(d.Users))
		authed.PUT("/user/password", handlers.ChangePasswordHandler(d.Users))

		authed.POST("/summarization", handlers.CreateSummarizationHandler(d.Summarizations))
		authed.GET("/summarization", handlers.ListSummarizationsHandler(d.Summarizations))
		authed.GET("/summarization/:id", handlers.GetSummarizationHandler(d.Summarizations))
		authed.POST("/summarization/:id/chat", handlers.AskHandler(d.Chat))
		authed.GET("/summarization/:id/chat", handlers.ChatHistoryHandler(d.Chat))
	}

	return r
}
