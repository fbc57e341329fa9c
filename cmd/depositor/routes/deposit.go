package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/arkivo/depositor/cmd/depositor/container"
	"github.com/arkivo/depositor/cmd/depositor/handlers"
)

// RegisterDepositRoutes registers all deposit routes
func RegisterDepositRoutes(e *echo.Echo, c *container.Container) {
	h := handlers.NewDepositHandler(c)

	api := e.Group("/api/v1")
	{
		api.POST("/packages/:id/insert", h.InsertPackage) // POST /api/v1/packages/pkg-1/insert
		api.POST("/packages/:id/update", h.UpdatePackage) // POST /api/v1/packages/pkg-1/update
		api.POST("/files/insert", h.InsertFile)           // POST /api/v1/files/insert
		api.POST("/deposits/run", h.Run)                  // POST /api/v1/deposits/run
	}
}
