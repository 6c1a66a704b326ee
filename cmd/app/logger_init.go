package main

import (
	"github.com/geoclaim/geoclaim/internal/config"
	"github.com/geoclaim/geoclaim/internal/handler"
	"github.com/geoclaim/geoclaim/internal/logger"
)

// initLogger initializes the logger from app configuration
func initLogger(cfg *config.Config) {
	// Source locations only in dev, they are noise in production JSON logs
	addSource := cfg.Environment == "dev" || cfg.Environment == "development"

	logger.Init(logger.Config{
		Level:       cfg.LogLevel,
		Format:      cfg.LogFormat,
		ServiceName: logger.DefaultServiceName,
		Version:     handler.Version,
		Environment: cfg.Environment,
		AddSource:   addSource,
	})
}
