package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/kurtarapp/kurtar-backend/internal/clients/rabbitmq"
	redisclient "github.com/kurtarapp/kurtar-backend/internal/clients/redis"
	"github.com/kurtarapp/kurtar-backend/internal/config"
	"github.com/kurtarapp/kurtar-backend/internal/db"
	"github.com/kurtarapp/kurtar-backend/internal/handlers"
	"github.com/kurtarapp/kurtar-backend/internal/logger"
	"github.com/kurtarapp/kurtar-backend/internal/middleware"
	"github.com/kurtarapp/kurtar-backend/internal/repos"
	"github.com/kurtarapp/kurtar-backend/internal/server"
	"github.com/kurtarapp/kurtar-backend/internal/services"
)

func main() {
	// Logger
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Config
	log.Info("Loading configuration...")
	cfg := config.Load(log)

	// Mongo
	mongoService, err := db.NewMongoService(cfg.MongoURI, cfg.MongoDatabase, log)
	if err != nil {
		log.Error("Mongo init failed", "error", err)
		os.Exit(1)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		mongoService.Close(ctx)
	}()
	{
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		if err := mongoService.EnsureIndexes(ctx); err != nil {
			log.Warn("Index creation failed", "error", err)
		}
		cancel()
	}

	// Repos
	log.Info("Setting up repos...")
	userRepo := repos.NewUserRepo(mongoService.Collection(db.UsersCollection), log)
	orderRepo := repos.NewOrderRepo(mongoService.Collection(db.OrdersCollection), log)
	ratingRepo := repos.NewRatingRepo(mongoService.Collection(db.RatingsCollection), log)
	restaurantRepo := repos.NewRestaurantRepo(mongoService.Collection(db.RestaurantsCollection), log)

	// Clients (both optional: the service degrades to uncached, unpublished)
	var ratingCache redisclient.RatingCache
	if cfg.RedisAddr != "" {
		ratingCache, err = redisclient.NewRatingCache(cfg.RedisAddr, cfg.AggregateTTL, log)
		if err != nil {
			log.Warn("Redis init failed, running without aggregate cache", "error", err)
			ratingCache = nil
		}
	}
	var publisher rabbitmq.EventPublisher
	if cfg.AMQPURL != "" {
		publisher, err = rabbitmq.NewPublisher(cfg.AMQPURL, log)
		if err != nil {
			log.Warn("RabbitMQ init failed, running without events", "error", err)
			publisher = nil
		} else {
			defer publisher.Close()
		}
	}

	// Services
	log.Info("Setting up services...")
	profileGuard := services.NewProfileGuard(log, userRepo)
	profileService := services.NewProfileService(log, userRepo)
	notificationService := services.NewNotificationService(log, userRepo, publisher)
	orderService := services.NewOrderService(log, orderRepo, userRepo, restaurantRepo, notificationService, publisher)
	ratingService := services.NewRatingService(log, ratingRepo, restaurantRepo, ratingCache, publisher)

	// Handlers
	log.Info("Setting up handlers...")
	userHandler := handlers.NewUserHandler(profileService)
	orderHandler := handlers.NewOrderHandler(orderService)
	ratingHandler := handlers.NewRatingHandler(ratingService)

	// Middleware
	authMiddleware := middleware.NewAuthMiddleware(log, cfg.JWTSecret)

	// Router
	log.Info("Setting up router...")
	router := server.NewRouter(server.RouterConfig{
		AuthMiddleware: authMiddleware,
		ProfileGuard:   profileGuard,
		UserHandler:    userHandler,
		OrderHandler:   orderHandler,
		RatingHandler:  ratingHandler,
		CORSOrigins:    cfg.CORSOrigins,
	})

	fmt.Printf("Server listening on :%s\n", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Error("Server failed", "error", err)
	}
}
