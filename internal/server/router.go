package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/devstore/sales-backend/internal/handlers"
)

type RouterConfig struct {
	SaleHandler *handlers.SaleHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: false,
	}))

	router.GET("/healthcheck", handlers.HealthCheck)

	api := router.Group("/api")
	{
		sales := api.Group("/sales")
		{
			sales.POST("", cfg.SaleHandler.CreateSale)
			sales.GET("", cfg.SaleHandler.ListSales)
			sales.GET("/number/:number", cfg.SaleHandler.GetSaleByNumber)
			sales.GET("/:id", cfg.SaleHandler.GetSale)
			sales.PUT("/:id", cfg.SaleHandler.UpdateSale)
			sales.DELETE("/:id", cfg.SaleHandler.DeleteSale)
			sales.POST("/:id/cancel", cfg.SaleHandler.CancelSale)
			sales.POST("/:id/items/:itemId/cancel", cfg.SaleHandler.CancelSaleItem)
		}
	}

	return router
}
