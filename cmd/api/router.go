package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"livraria/internal/shared/middleware"
	"livraria/internal/shared/response"
	"livraria/pkg/container"
)

func SetupRouter(c *container.Container) *gin.Engine {
	router := gin.New()
	router.HandleMethodNotAllowed = true

	// Global middlewares
	router.Use(
		middleware.RequestID(),
		middleware.ClientIP(),
		middleware.Logger(),
		middleware.Recovery(),
	)
	if c.Limits != nil {
		router.Use(middleware.RateLimit(c.Limits))
	}

	router.NoRoute(func(ctx *gin.Context) {
		response.NotFound(ctx, "route not found")
	})
	router.NoMethod(func(ctx *gin.Context) {
		response.MethodNotAllowed(ctx)
	})

	router.GET("/health", healthCheckHandler(c))

	setupBookRoutes(router, c)
	setupReportRoutes(router, c)

	return router
}

// ========================================
// BOOK ROUTES
// ========================================
func setupBookRoutes(r *gin.Engine, c *container.Container) {
	books := r.Group("/books")
	{
		books.POST("", c.BookHandler.CreateBook)
		books.GET("", c.BookHandler.ListBooks)
		books.GET("/:id", c.BookHandler.GetBook)
		books.PUT("/:id", c.BookHandler.UpdateBook)
		books.PATCH("/:id", c.BookHandler.UpdateBook)
		books.DELETE("/:id", c.BookHandler.DeleteBook)
		books.POST("/:id/stock", c.BookHandler.AdjustStock)
		books.POST("/:id/purchases", c.BookHandler.Purchase)
	}
}

// ========================================
// REPORT ROUTES
// ========================================
func setupReportRoutes(r *gin.Engine, c *container.Container) {
	reports := r.Group("/reports")
	{
		reports.GET("/activity", c.ActivityHandler.Report)
		reports.GET("/catalog.xlsx", c.BookHandler.ExportCatalog)
	}
}

// ========================================
// HEALTH CHECK HANDLER
// ========================================
func healthCheckHandler(appCtx *container.Container) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		status := "ok"
		services := gin.H{"store": appCtx.Config.Store.Driver}
		for name, err := range appCtx.HealthCheck(ctx) {
			if err != nil {
				services[name] = "error"
				status = "degraded"
				continue
			}
			services[name] = "ok"
		}

		code := http.StatusOK
		if status != "ok" {
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, gin.H{
			"status":    status,
			"version":   appCtx.Config.App.Version,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"services":  services,
		})
	}
}
