package main

import (
	"fmt"
	"os"

	"github.com/devstore/sales-backend/internal/db"
	"github.com/devstore/sales-backend/internal/handlers"
	"github.com/devstore/sales-backend/internal/logger"
	"github.com/devstore/sales-backend/internal/repos"
	"github.com/devstore/sales-backend/internal/server"
	"github.com/devstore/sales-backend/internal/services"
	"github.com/devstore/sales-backend/internal/utils"
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

	// Postgres
	postgresService, err := db.NewPostgresService(log)
	if err != nil {
		log.Error("Postgres init failed", "error", err)
		os.Exit(1)
	}
	if err := postgresService.AutoMigrateAll(); err != nil {
		log.Error("Postgres auto migration failed", "error", err)
		os.Exit(1)
	}
	theDB := postgresService.DB()

	// Repos
	saleRepo := repos.NewSaleRepo(theDB, log)

	// Services
	eventPublisher := services.NewLogEventPublisher(log)
	saleService := services.NewSaleService(theDB, log, saleRepo, eventPublisher)

	// Handlers
	saleHandler := handlers.NewSaleHandler(log, saleService)

	// Router
	router := server.NewRouter(server.RouterConfig{
		SaleHandler: saleHandler,
	})

	port := utils.GetEnv("PORT", "8080", log)
	log.Info("Server listening", "port", port)
	if err := router.Run(":" + port); err != nil {
		log.Error("Server failed", "error", err)
		os.Exit(1)
	}
}
