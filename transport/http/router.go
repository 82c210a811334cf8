package http

import (
	"github.com/gin-gonic/gin"
	"github.com/layer-3/mintgate/service"
	"go.uber.org/zap"
)

// SetupRouter sets up the Gin router.
func SetupRouter(auth *service.AuthService, milestones *service.MilestoneService, mints *service.MintService, logger *zap.Logger) *gin.Engine {
	router := gin.Default()

	handlers := NewHandlers(auth, milestones, mints, logger)

	// Auth routes
	authGroup := router.Group("/auth")
	{
		authGroup.POST("/nonce", handlers.Challenge)
		authGroup.POST("/verify", handlers.Verify)
	}

	// Protected API routes
	api := router.Group("/api")
	api.Use(AuthMiddleware(auth))
	{
		api.GET("/me", handlers.Me)
		api.GET("/milestones/:accountId", handlers.Milestones)
		api.POST("/mint", handlers.Mint)
		api.GET("/mint/:milestoneId", handlers.MintStatus)
		api.POST("/airdrop", handlers.Airdrop)
	}

	return router
}
