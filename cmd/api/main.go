package main

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"spendtrack/internal/config"
	"spendtrack/internal/database"
	"spendtrack/internal/logger"
	"spendtrack/internal/router"
	"spendtrack/internal/services"
)

// @title           Spendtrack API
// @version         1.0
// @description     Spendtrack records income and expense transactions: a short description, a category and an amount.
// @termsOfService  http://swagger.io/terms/

// @host      localhost:8080
// @BasePath  /

func main() {
	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger.Init(cfg.Env, cfg.LogLevel)
	defer logger.Sync()
	log := logger.Get()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Create database manager
	dbManager, err := database.NewManager(database.NewConfig(cfg))
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}
	defer func() {
		if err := dbManager.Close(); err != nil {
			log.Warnf("failed to close database: %v", err)
		}
	}()

	// Run migrations
	if err := dbManager.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	transactionService := services.NewTransactionService(dbManager.DB())
	r := router.New(cfg, transactionService)

	log.Infow("Starting Spendtrack server", "port", cfg.Port, "env", cfg.Env, "db_driver", cfg.DBDriver)
	if cfg.SwaggerEnabled {
		log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", cfg.Port)
	}
	return r.Run(":" + cfg.Port)
}
