package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/kurtarapp/kurtar-backend/internal/handlers"
	"github.com/kurtarapp/kurtar-backend/internal/middleware"
	"github.com/kurtarapp/kurtar-backend/internal/services"
)

type RouterConfig struct {
	AuthMiddleware *middleware.AuthMiddleware
	ProfileGuard   services.ProfileGuard
	UserHandler    *handlers.UserHandler
	OrderHandler   *handlers.OrderHandler
	RatingHandler  *handlers.RatingHandler
	CORSOrigins    []string
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	router.GET("/healthcheck", handlers.HealthCheck)

	// Every authenticated request passes the schema guard before business
	// logic, so no handler ever sees a pre-migration profile.
	protected := router.Group("/api")
	protected.Use(cfg.AuthMiddleware.RequireAuth())
	protected.Use(middleware.SchemaGuard(cfg.ProfileGuard))

	// Profile
	protected.GET("/user", cfg.UserHandler.GetMe)
	protected.POST("/user/favorites/:restaurantId", cfg.UserHandler.AddFavorite)
	protected.DELETE("/user/favorites/:restaurantId", cfg.UserHandler.RemoveFavorite)
	protected.POST("/user/push-tokens", cfg.UserHandler.RegisterPushToken)
	protected.PUT("/user/notification-preferences", cfg.UserHandler.SetNotificationPrefs)

	// Orders
	protected.POST("/orders", cfg.OrderHandler.Create)
	protected.GET("/orders", cfg.OrderHandler.ListMine)
	protected.GET("/orders/:id", cfg.OrderHandler.Get)
	protected.PATCH("/orders/:id/status", cfg.OrderHandler.UpdateStatus)
	protected.GET("/restaurants/:restaurantId/orders", cfg.OrderHandler.ListForRestaurant)

	// Ratings
	protected.POST("/ratings", cfg.RatingHandler.Create)
	protected.PUT("/ratings/:id", cfg.RatingHandler.Update)
	protected.GET("/restaurants/:restaurantId/rating", cfg.RatingHandler.RestaurantAggregate)

	return router
}
