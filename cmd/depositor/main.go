package main

import (
	"context"
	"fmt"
	"os"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/arkivo/depositor/cmd/depositor/container"
	"github.com/arkivo/depositor/cmd/depositor/routes"
)

func main() {
	ctx := context.Background()

	c, err := container.NewContainer(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize depositor: %v\n", err)
		os.Exit(1)
	}
	defer c.Shutdown()

	e := echo.New()
	e.HideBanner = true

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())

	setupHealthCheck(e, c)
	routes.RegisterDepositRoutes(e, c)

	port := c.Config.Service.Port
	c.Logger.Info("Starting depositor", "port", port)

	if err := e.Start(fmt.Sprintf(":%d", port)); err != nil {
		c.Logger.Error("Server error", "error", err)
		os.Exit(1)
	}
}

// setupHealthCheck registers the health check endpoint
func setupHealthCheck(e *echo.Echo, c *container.Container) {
	e.GET("/health", func(ec echo.Context) error {
		if err := c.DB.Health(ec.Request().Context()); err != nil {
			return ec.JSON(503, map[string]string{
				"status": "degraded",
				"error":  err.Error(),
			})
		}
		return ec.JSON(200, map[string]string{
			"status":  "ok",
			"service": "depositor",
		})
	})
}
