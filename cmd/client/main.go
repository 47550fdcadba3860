// Package main is the entry point for the nodering demo.
package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/Faultbox/nodering/internal/app"
	"github.com/Faultbox/nodering/internal/config"
	"github.com/Faultbox/nodering/internal/logger"
)

func main() {
	// Parse CLI flags first
	config.ParseFlags()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("=== nodering ===")
	logger.Sugar.Debugf("Config: %+v", cfg)

	a, err := app.New(cfg)
	if err != nil {
		logger.Error("failed to create app", zap.Error(err))
		os.Exit(1)
	}

	// Run the main loop
	runErr := a.Run()
	a.Close()
	if runErr != nil {
		logger.Error("app error", zap.Error(runErr))
		logger.Sync()
		os.Exit(1)
	}

	logger.Info("app closed normally")
}
