// Copyright 2025 LazyUncle Project
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package main runs the LazyUncle backend: the gift recommendation
// endpoint with its resilience pipeline, plus recipient/gift CRUD and
// health checks.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/your-org/lazyuncle/internal/catalog"
	"github.com/your-org/lazyuncle/internal/config"
	"github.com/your-org/lazyuncle/internal/health"
	"github.com/your-org/lazyuncle/internal/provider"
	"github.com/your-org/lazyuncle/internal/recommend"
	"github.com/your-org/lazyuncle/internal/resilience"
	"github.com/your-org/lazyuncle/internal/server"
	"github.com/your-org/lazyuncle/internal/store"
)

func main() {
	configPath := flag.String("config", "", "Path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := initializeLogger(cfg)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	maskedConfig := cfg.MaskSensitiveValues()
	logger.Info("Configuration loaded successfully",
		zap.String("service", "recommend"),
		zap.String("environment", os.Getenv("ENVIRONMENT")),
		zap.String("model", maskedConfig.Provider.Model),
		zap.Int("max_tokens", maskedConfig.Provider.MaxTokens),
		zap.String("api_key", maskedConfig.Provider.APIKey),
		zap.Int("port", maskedConfig.Server.Port))

	providerClient, err := provider.NewClient(cfg.Provider, logger)
	if err != nil {
		logger.Fatal("Failed to initialize provider client", zap.Error(err))
	}

	catalogStore, err := catalog.NewStore(cfg.Catalog.DBPath)
	if err != nil {
		logger.Fatal("Failed to open catalog database", zap.Error(err))
	}
	defer func() { _ = catalogStore.Close() }()

	appStore, err := store.NewStore(cfg.Store.DBPath)
	if err != nil {
		logger.Fatal("Failed to open application database", zap.Error(err))
	}
	defer func() { _ = appStore.Close() }()

	breaker := resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
		Name:         "recommendation-provider",
		MaxFailures:  cfg.Breaker.MaxFailures,
		ResetTimeout: time.Duration(cfg.Breaker.ResetTimeoutSeconds) * time.Second,
	}, logger)

	executor := resilience.NewExecutor(resilience.RetryConfig{
		MaxRetries:        cfg.Retry.MaxRetries,
		BaseDelay:         time.Duration(cfg.Retry.BaseDelayMs) * time.Millisecond,
		MaxDelay:          time.Duration(cfg.Retry.MaxDelayMs) * time.Millisecond,
		PerAttemptTimeout: time.Duration(cfg.Provider.TimeoutSeconds) * time.Second,
		RetryOnFunc:       provider.IsRetryable,
	}, breaker, logger)

	service := recommend.NewService(
		providerClient,
		executor,
		breaker,
		recommend.NewNormalizer(logger, nil),
		recommend.NewGenerator(logger, nil),
		catalogStore,
		logger,
	)

	healthMgr := health.NewManager("recommend", "1.0.0", logger)
	healthMgr.AddChecker("catalog_db", health.DatabaseChecker("catalog", catalogStore.Ping))
	healthMgr.AddChecker("store_db", health.DatabaseChecker("store", appStore.Ping))
	healthMgr.AddChecker("provider_breaker", health.BreakerChecker(service.BreakerState))

	if cfg.Logging.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	srv := server.New(service, appStore, healthMgr, logger)
	router := srv.Router()

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	logger.Info("Starting recommend service",
		zap.String("addr", addr),
		zap.String("model", cfg.Provider.Model))

	if err := router.Run(addr); err != nil {
		logger.Fatal("Failed to start server", zap.Error(err))
	}
}

// initializeLogger creates a logger based on configuration settings
func initializeLogger(cfg *config.Config) (*zap.Logger, error) {
	var zapConfig zap.Config

	if cfg.Logging.Format == "json" {
		zapConfig = zap.NewProductionConfig()
	} else {
		zapConfig = zap.NewDevelopmentConfig()
	}

	switch cfg.Logging.Level {
	case "debug":
		zapConfig.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	case "info":
		zapConfig.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	case "warn":
		zapConfig.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	case "error":
		zapConfig.Level = zap.NewAtomicLevelAt(zapcore.ErrorLevel)
	default:
		zapConfig.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	}

	if cfg.Logging.Output == "file" {
		zapConfig.OutputPaths = []string{"recommend.log"}
		zapConfig.ErrorOutputPaths = []string{"recommend.log"}
	} else {
		zapConfig.OutputPaths = []string{"stdout"}
		zapConfig.ErrorOutputPaths = []string{"stderr"}
	}

	return zapConfig.Build()
}
