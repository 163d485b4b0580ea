package main

import (
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/hackcampus/apply-backend/internal/config"
	"github.com/hackcampus/apply-backend/internal/database"
	"github.com/hackcampus/apply-backend/internal/handlers"
	"github.com/hackcampus/apply-backend/internal/middleware"
	"github.com/hackcampus/apply-backend/internal/services"
)

func main() {
	// 1. Environment & config
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using process environment")
	}
	cfg := config.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	// 2. Database
	db := database.Connect(cfg.PostgresDSN)

	// 3. Services
	userService := services.NewUserService(db, logger)
	applicationService := services.NewApplicationService(db, logger)
	eventService := services.NewEventService(db, logger)
	companyService := services.NewCompanyService(db, eventService, logger)

	// 4. Sessions & rate limiting
	sessions := middleware.NewSessions(cfg.SessionSecret, cfg.SessionTTL)
	var limiter middleware.Limiter = middleware.NewRateLimiter()
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Fatal("Invalid REDIS_URL:", err)
		}
		limiter = middleware.NewRedisLimiter(redis.NewClient(opts))
		logger.Info("rate limiting via redis")
	}

	// 5. Handlers & routes
	router := handlers.NewRouter(handlers.RouterDeps{
		Auth:         handlers.NewAuthHandler(userService, sessions),
		Applications: handlers.NewApplicationHandler(applicationService),
		Companies:    handlers.NewCompanyHandler(companyService),
		Staff:        handlers.NewStaffHandler(applicationService, eventService, companyService),
		Sessions:     sessions,
		Limiter:      limiter,
		RateLimit:    cfg.RateLimit,
		RateWindow:   cfg.RateWindow,
		CORSOrigins:  strings.Split(cfg.CORSOrigins, ","),
	})

	logger.Info("started", "port", cfg.HTTPPort)
	if err := router.Run(":" + cfg.HTTPPort); err != nil {
		log.Fatal("Server failed to start:", err)
	}
}
