package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/JonasLeetTheWay/eventbook/internal/auth"
	"github.com/JonasLeetTheWay/eventbook/internal/config"
	"github.com/JonasLeetTheWay/eventbook/internal/database"
	"github.com/JonasLeetTheWay/eventbook/internal/logger"
	"github.com/JonasLeetTheWay/eventbook/internal/payment"
	"github.com/JonasLeetTheWay/eventbook/internal/redis"
	"github.com/JonasLeetTheWay/eventbook/internal/services/account"
	"github.com/JonasLeetTheWay/eventbook/internal/services/booking"
	"github.com/JonasLeetTheWay/eventbook/internal/services/catalog"
	"github.com/JonasLeetTheWay/eventbook/internal/services/gateway"
	"github.com/JonasLeetTheWay/eventbook/internal/services/orders"
	"github.com/JonasLeetTheWay/eventbook/internal/services/profile"
	"github.com/JonasLeetTheWay/eventbook/internal/services/stats"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.New("info", "text", os.Stderr).Error("failed to load config", "error", err)
		os.Exit(1)
	}
	log := logger.New(cfg.LogLevel, cfg.LogFormat, os.Stdout)
	gin.SetMode(gin.ReleaseMode)

	// Connect to database
	db, err := database.Connect(cfg, log)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	checks := map[string]gateway.Pinger{
		"database": gateway.PingFunc(func(ctx context.Context) error { return database.Ping(ctx, db) }),
	}

	// Booking sessions live in redis; fall back to process memory when it is
	// not reachable so the rest of the API still works.
	var store booking.Store
	rdb := redis.NewClient(cfg)
	defer rdb.Close()
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	if err := rdb.Ping(ctx); err != nil {
		log.Warn("redis unavailable, keeping booking sessions in memory", "addr", cfg.RedisAddr(), "error", err)
		store = booking.NewMemoryStore(cfg.BookingSessionTTL)
	} else {
		store = booking.NewRedisStore(rdb, cfg.BookingSessionTTL)
		checks["redis"] = rdb
	}
	cancel()

	tokens := auth.NewTokenIssuer(cfg.JWTSecret, cfg.JWTExpiry)
	r := gateway.NewRouter(log, gateway.Options{
		AllowOrigin: cfg.CORSAllowOrigin,
		Tokens:      tokens,
		Checks:      checks,
	}, services(cfg, db, store, tokens, log)...)

	// Start server
	log.Info("eventbook starting", "port", cfg.HTTPPort)
	if err := r.Run(":" + cfg.HTTPPort); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func services(cfg *config.Config, db *gorm.DB, store booking.Store, tokens *auth.TokenIssuer, log *slog.Logger) []gateway.Routes {
	catalogService := catalog.NewService(db, log)
	profileService := profile.NewService(db, log)
	orderService := orders.NewService(db, log)

	bookingService := booking.NewService(booking.Deps{
		Store:    store,
		Events:   catalogService,
		Profiles: profileService,
		Orders:   orderService,
		Payments: payment.NewSimulator(),
	}, cfg.MinLeadTime, log)

	return []gateway.Routes{
		account.NewService(db, tokens, cfg.BcryptCost, log),
		catalogService,
		orderService,
		profileService,
		bookingService,
		stats.NewService(db, log),
	}
}
