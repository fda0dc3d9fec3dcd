package handler

import (
	"github.com/gin-gonic/gin"

	apppos "github.com/storecore/backend/internal/application/pos"
)

// POSHandler serves the point-of-sale checkout endpoint
type POSHandler struct {
	BaseHandler
	service *apppos.SaleService
}

// NewPOSHandler creates a new POS handler
func NewPOSHandler(service *apppos.SaleService) *POSHandler {
	return &POSHandler{service: service}
}

// RegisterRoutes registers POS routes on the API group
func (h *POSHandler) RegisterRoutes(rg *gin.RouterGroup) {
	pos := rg.Group("/pos")
	{
		pos.POST("/sales", h.ExecuteSale)
	}
}

// ExecuteSale handles POST /pos/sales. The cashier is the authenticated
// user; a sale either fully commits (order, payment, stock, ledger) or
// leaves no trace.
// @Summary      Execute a point-of-sale sale
// @Description  Creates the order, deducts stock, and records payment in one transaction.
// @Tags         pos
// @Accept       json
// @Produce      json
// @Param        request body pos.ExecuteSaleCommand true "Execute a point-of-sale sale"
// @Success      201 {object} dto.Response{data=pos.SaleResult}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /pos/sales [post]
func (h *POSHandler) ExecuteSale(c *gin.Context) {
	var cmd apppos.ExecuteSaleCommand
	if err := c.ShouldBindJSON(&cmd); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	cashier, err := getActorID(c)
	if err != nil {
		h.Unauthorized(c, "Authenticated cashier required")
		return
	}
	cmd.CashierID = cashier

	result, err := h.service.ExecuteSale(c.Request.Context(), cmd)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}
