package config

import (
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/kurtarapp/kurtar-backend/internal/logger"
	"github.com/kurtarapp/kurtar-backend/internal/utils"
)

// Config holds everything the process reads from the environment.
type Config struct {
	Port          string
	MongoURI      string
	MongoDatabase string
	RedisAddr     string
	AMQPURL       string
	JWTSecret     string
	CORSOrigins   []string
	AggregateTTL  time.Duration
}

// Load reads configuration from the environment, honoring a local .env file.
func Load(log *logger.Logger) Config {
	if err := godotenv.Load(); err != nil {
		if log != nil {
			log.Debug("no .env file found", "error", err)
		}
	}

	origins := strings.Split(utils.GetEnv("CORS_ORIGINS", "http://localhost:3000", log), ",")
	for i := range origins {
		origins[i] = strings.TrimSpace(origins[i])
	}

	aggregateTTLSeconds := utils.GetEnvAsInt("RATING_CACHE_TTL", 600, log)

	return Config{
		Port:          utils.GetEnv("PORT", "8080", log),
		MongoURI:      utils.GetEnv("MONGO_URI", "mongodb://localhost:27017", log),
		MongoDatabase: utils.GetEnv("MONGO_DATABASE", "kurtar", log),
		RedisAddr:     utils.GetEnv("REDIS_ADDR", "", log),
		AMQPURL:       utils.GetEnv("AMQP_URL", "", log),
		JWTSecret:     utils.GetEnv("JWT_SECRET_KEY", "defaultsecret", log),
		CORSOrigins:   origins,
		AggregateTTL:  time.Duration(aggregateTTLSeconds) * time.Second,
	}
}
