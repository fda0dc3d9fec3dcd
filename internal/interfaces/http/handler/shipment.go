package handler

import (
	"github.com/gin-gonic/gin"

	apporder "github.com/storecore/backend/internal/application/order"
)

// ShipmentHandler serves dispatch and delivery endpoints
type ShipmentHandler struct {
	BaseHandler
	service *apporder.ShipmentService
}

// NewShipmentHandler creates a new shipment handler
func NewShipmentHandler(service *apporder.ShipmentService) *ShipmentHandler {
	return &ShipmentHandler{service: service}
}

// RegisterRoutes registers shipment routes on the API group
func (h *ShipmentHandler) RegisterRoutes(rg *gin.RouterGroup) {
	shipments := rg.Group("/shipments")
	{
		shipments.POST("", h.Create)
		shipments.GET("", h.List)
		shipments.GET("/:id", h.Get)
		shipments.POST("/:id/delivered", h.MarkDelivered)
	}

	// Order-scoped lookup lives under /orders for discoverability.
	rg.GET("/orders/:id/shipment", h.GetByOrder)
}

// Create handles POST /shipments. Creating a shipment moves the order to
// SHIPPED in the same transaction.
// @Summary      Create a shipment for an order
// @Description  Moves the order to SHIPPED in the same transaction.
// @Tags         shipments
// @Accept       json
// @Produce      json
// @Param        request body order.CreateShipmentCommand true "Create a shipment for an order"
// @Success      201 {object} dto.Response{data=order.ShipmentResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /shipments [post]
func (h *ShipmentHandler) Create(c *gin.Context) {
	var cmd apporder.CreateShipmentCommand
	if err := c.ShouldBindJSON(&cmd); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	actor, err := getActorID(c)
	if err != nil {
		h.Unauthorized(c, "Authenticated staff member required")
		return
	}
	cmd.Actor = actor

	resp, err := h.service.CreateShipment(c.Request.Context(), cmd)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// List handles GET /shipments
// @Summary      List shipments
// @Tags         shipments
// @Produce      json
// @Param        page query int false "Page number"
// @Param        page_size query int false "Page size"
// @Success      200 {object} dto.Response{data=[]order.ShipmentResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /shipments [get]
func (h *ShipmentHandler) List(c *gin.Context) {
	req, err := bindListRequest(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	filter := toFilter(req)
	if status := c.Query("status"); status != "" {
		filter.Filters["status"] = status
	}
	if carrier := c.Query("carrier"); carrier != "" {
		filter.Filters["carrier"] = carrier
	}

	shipments, total, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, shipments, total, req.Page, req.PageSize)
}

// Get handles GET /shipments/:id
// @Summary      Get a shipment
// @Tags         shipments
// @Produce      json
// @Param        id path string true "UUID"
// @Success      200 {object} dto.Response{data=order.ShipmentResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /shipments/{id} [get]
func (h *ShipmentHandler) Get(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// GetByOrder handles GET /orders/:id/shipment
// @Summary      Get the shipment for an order
// @Tags         shipments
// @Produce      json
// @Param        id path string true "UUID"
// @Success      200 {object} dto.Response{data=order.ShipmentResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /orders/{id}/shipment [get]
func (h *ShipmentHandler) GetByOrder(c *gin.Context) {
	orderID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.service.GetByOrder(c.Request.Context(), orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// MarkDelivered handles POST /shipments/:id/delivered. Delivery
// confirmation moves the order to DELIVERED.
// @Summary      Mark a shipment delivered
// @Tags         shipments
// @Produce      json
// @Param        id path string true "UUID"
// @Success      200 {object} dto.Response{data=order.ShipmentResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /shipments/{id}/delivered [post]
func (h *ShipmentHandler) MarkDelivered(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.service.MarkDelivered(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
