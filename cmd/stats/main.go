package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"time"

	"github.com/JonasLeetTheWay/eventbook/internal/config"
	"github.com/JonasLeetTheWay/eventbook/internal/database"
	"github.com/JonasLeetTheWay/eventbook/internal/logger"
	"github.com/JonasLeetTheWay/eventbook/internal/services/stats"
)

func main() {
	asJSON := flag.Bool("json", false, "print the report as JSON")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logger.New("info", "text", os.Stderr).Error("failed to load config", "error", err)
		os.Exit(1)
	}
	// Logs go to stderr so stdout carries only the report.
	log := logger.New(cfg.LogLevel, cfg.LogFormat, os.Stderr)

	db, err := database.Connect(cfg, log)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	rep, err := stats.NewService(db, log).Report(ctx)
	if err != nil {
		log.Error("failed to build registration statistics", "error", err)
		os.Exit(1)
	}

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		err = enc.Encode(rep)
	} else {
		err = stats.Print(os.Stdout, rep)
	}
	if err != nil {
		log.Error("failed to write report", "error", err)
		os.Exit(1)
	}
}
