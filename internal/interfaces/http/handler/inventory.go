package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	appinventory "github.com/storecore/backend/internal/application/inventory"
	"github.com/storecore/backend/internal/domain/inventory"
)

// AdjustStockRequest is the request body for a manual stock adjustment.
// The acting staff member comes from the JWT, never from the payload.
type AdjustStockRequest struct {
	VariantID      uuid.UUID  `json:"variant_id" binding:"required"`
	QuantityChange int        `json:"quantity_change" binding:"required"`
	ChangeType     string     `json:"change_type" binding:"required,oneof=RESTOCK ADJUSTMENT SALE RETURN"`
	Reason         string     `json:"reason" binding:"required,max=255"`
	OrderID        *uuid.UUID `json:"order_id"`
}

// InventoryHandler serves stock adjustment and ledger endpoints
type InventoryHandler struct {
	BaseHandler
	service *appinventory.StockService
}

// NewInventoryHandler creates a new inventory handler
func NewInventoryHandler(service *appinventory.StockService) *InventoryHandler {
	return &InventoryHandler{service: service}
}

// RegisterRoutes registers inventory routes on the API group
func (h *InventoryHandler) RegisterRoutes(rg *gin.RouterGroup) {
	inv := rg.Group("/inventory")
	{
		inv.POST("/adjustments", h.CreateAdjustment)
		inv.GET("/ledger", h.ListLedger)
		inv.GET("/variants/:id/ledger", h.ListVariantLedger)
		inv.GET("/variants/:id/verify", h.VerifyLedger)
	}
}

// CreateAdjustment handles POST /inventory/adjustments
// @Summary      Adjust stock for a variant
// @Description  The only write path for stock. Appends a ledger entry atomically with the quantity change.
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        request body AdjustStockRequest true "Adjust stock for a variant"
// @Success      201 {object} dto.Response{data=inventory.AdjustStockResult}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /inventory/adjustments [post]
func (h *InventoryHandler) CreateAdjustment(c *gin.Context) {
	var req AdjustStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	actor, err := getActorID(c)
	if err != nil {
		h.Unauthorized(c, "Authenticated staff member required")
		return
	}

	result, err := h.service.Adjust(c.Request.Context(), appinventory.AdjustStockCommand{
		VariantID:      req.VariantID,
		QuantityChange: req.QuantityChange,
		ChangeType:     inventory.ChangeType(req.ChangeType),
		Reason:         req.Reason,
		PerformedBy:    actor,
		OrderID:        req.OrderID,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

// ListLedger handles GET /inventory/ledger
// @Summary      List ledger entries
// @Tags         inventory
// @Produce      json
// @Param        page query int false "Page number"
// @Param        page_size query int false "Page size"
// @Success      200 {object} dto.Response{data=[]inventory.LedgerEntryDTO}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /inventory/ledger [get]
func (h *InventoryHandler) ListLedger(c *gin.Context) {
	req, err := bindListRequest(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	filter := toFilter(req)
	if changeType := c.Query("change_type"); changeType != "" {
		filter.Filters["change_type"] = changeType
	}
	if raw := c.Query("order_id"); raw != "" {
		orderID, err := uuid.Parse(raw)
		if err != nil {
			h.BadRequest(c, "invalid order_id")
			return
		}
		filter.Filters["order_id"] = orderID
	}
	if raw := c.Query("performed_by"); raw != "" {
		performedBy, err := uuid.Parse(raw)
		if err != nil {
			h.BadRequest(c, "invalid performed_by")
			return
		}
		filter.Filters["performed_by"] = performedBy
	}

	entries, total, err := h.service.ListLedger(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, entries, total, req.Page, req.PageSize)
}

// ListVariantLedger handles GET /inventory/variants/:id/ledger
// @Summary      List ledger entries for a variant
// @Tags         inventory
// @Produce      json
// @Param        id path string true "UUID"
// @Param        page query int false "Page number"
// @Param        page_size query int false "Page size"
// @Success      200 {object} dto.Response{data=[]inventory.LedgerEntryDTO}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /inventory/variants/{id}/ledger [get]
func (h *InventoryHandler) ListVariantLedger(c *gin.Context) {
	variantID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	req, err := bindListRequest(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	entries, total, err := h.service.ListLedgerByVariant(c.Request.Context(), variantID, toFilter(req))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, entries, total, req.Page, req.PageSize)
}

// VerifyLedger handles GET /inventory/variants/:id/verify. It reports
// whether the variant's materialized quantity still equals the ledger's
// running sum.
// @Summary      Verify a variant ledger against its materialized quantity
// @Tags         inventory
// @Produce      json
// @Param        id path string true "UUID"
// @Success      200 {object} dto.Response{data=inventory.LedgerVerification}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /inventory/variants/{id}/verify [get]
func (h *InventoryHandler) VerifyLedger(c *gin.Context) {
	variantID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	verification, err := h.service.VerifyLedger(c.Request.Context(), variantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, verification)
}
