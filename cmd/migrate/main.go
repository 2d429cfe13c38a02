package main

import (
	"context"
	"flag"
	"os"

	"github.com/JonasLeetTheWay/eventbook/internal/config"
	"github.com/JonasLeetTheWay/eventbook/internal/database"
	"github.com/JonasLeetTheWay/eventbook/internal/logger"
)

func main() {
	seed := flag.Bool("seed", false, "insert sample users, events and orders into an empty database")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.New("info", "text", os.Stderr).Error("failed to load config", "error", err)
		os.Exit(1)
	}
	log := logger.New(cfg.LogLevel, cfg.LogFormat, os.Stdout)

	// Connect to database; Connect also runs the migrations.
	db, err := database.Connect(cfg, log)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	if *seed || cfg.SeedOnMigrate {
		if err := database.SeedData(context.Background(), db, cfg.BcryptCost, log); err != nil {
			log.Error("failed to seed data", "error", err)
			os.Exit(1)
		}
	}

	log.Info("database migration completed successfully")
}
