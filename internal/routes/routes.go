package routes

import (
	"rentproof_backend/internal/auth"
	"rentproof_backend/internal/handlers"
	"rentproof_backend/internal/logger"
	"rentproof_backend/internal/middleware"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes регистрирует все HTTP и WebSocket маршруты.
// Totals are public; everything tied to a rental requires a token.
func RegisterRoutes(
	ginRouter *gin.Engine,
	appHandlers *handlers.AppHandlers,
	verifier *auth.Verifier,
) {
	api := ginRouter.Group("/api/v1")
	{
		protected := api.Group("")
		protected.Use(middleware.AuthMiddleware(verifier))

		appHandlers.RentalHandler.RegisterRoutes(protected)
		appHandlers.EvidenceHandler.RegisterRoutes(protected)
		appHandlers.ReviewHandler.RegisterRoutes(api, protected)
	}

	// Регистрация WebSocket
	wsGroup := ginRouter.Group("/ws")
	wsGroup.Use(middleware.AuthMiddleware(verifier))
	appHandlers.WSHandler.RegisterRoutes(wsGroup)
	logger.Info("WebSocket route /ws registered")
}
