package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/arkivo/depositor/cmd/depositor/container"
	"github.com/arkivo/depositor/common/inventory"
	"github.com/arkivo/depositor/deposit"
)

// DepositHandler handles deposit requests
type DepositHandler struct {
	c *container.Container
}

// NewDepositHandler creates a new deposit handler
func NewDepositHandler(c *container.Container) *DepositHandler {
	return &DepositHandler{c: c}
}

// InsertPackage runs the insertion state machine for one package
// POST /api/v1/packages/:id/insert
func (h *DepositHandler) InsertPackage(c echo.Context) error {
	packageID := c.Param("id")

	result, err := h.c.Depositor.InsertPackage(c.Request().Context(), packageID)
	if err != nil {
		return depositError(c, err)
	}

	return c.JSON(http.StatusOK, result)
}

// UpdatePackage re-publishes a package under its new identifiers
// POST /api/v1/packages/:id/update
func (h *DepositHandler) UpdatePackage(c echo.Context) error {
	packageID := c.Param("id")

	records, err := h.c.Depositor.UpdatePackage(c.Request().Context(), packageID)
	if err != nil {
		return depositError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"package_id": packageID,
		"records":    records,
	})
}

// InsertFile processes a single loose file
// POST /api/v1/files/insert
func (h *DepositHandler) InsertFile(c echo.Context) error {
	var req struct {
		File string `json:"file"`
	}
	if err := c.Bind(&req); err != nil || req.File == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "file is required"})
	}

	records, err := h.c.Depositor.InsertFile(c.Request().Context(), req.File)
	if err != nil {
		return depositError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{"records": records})
}

// Run inserts all ready packages matching the selector, children first
// POST /api/v1/deposits/run
func (h *DepositHandler) Run(c echo.Context) error {
	var req struct {
		Selector string `json:"selector"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if req.Selector == "" {
		req.Selector = h.c.Config.Deposit.Selector
	}

	results, err := h.c.Depositor.Run(c.Request().Context(), req.Selector)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{"results": results})
}

func depositError(c echo.Context, err error) error {
	var precondition *deposit.PreconditionError
	switch {
	case errors.As(err, &precondition):
		return c.JSON(http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
	case errors.Is(err, inventory.ErrNotFound):
		return c.JSON(http.StatusNotFound, map[string]string{"error": err.Error()})
	default:
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
}
