package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	apporder "github.com/storecore/backend/internal/application/order"
	"github.com/storecore/backend/internal/domain/order"
)

// OrderHandler serves online checkout and fulfillment endpoints
type OrderHandler struct {
	BaseHandler
	service *apporder.OrderService
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(service *apporder.OrderService) *OrderHandler {
	return &OrderHandler{service: service}
}

// RegisterRoutes registers order routes on the API group
func (h *OrderHandler) RegisterRoutes(rg *gin.RouterGroup) {
	orders := rg.Group("/orders")
	{
		orders.POST("", h.Create)
		orders.GET("", h.List)
		orders.GET("/:id", h.Get)
		orders.GET("/number/:order_number", h.GetByNumber)
		orders.GET("/stats/summary", h.StatusSummary)
		orders.POST("/:id/transition", h.Transition)
		orders.POST("/:id/confirm", h.transitionTo(order.OrderStatusConfirmed))
		orders.POST("/:id/process", h.transitionTo(order.OrderStatusProcessing))
		orders.POST("/:id/ready", h.transitionTo(order.OrderStatusReadyForPickup))
		orders.POST("/:id/pickup", h.transitionTo(order.OrderStatusDelivered))
		orders.POST("/:id/cancel", h.Cancel)
	}
}

// Create handles POST /orders, the online checkout
// @Summary      Create an online order
// @Description  Checkout records the order as PENDING; stock is deducted when payment confirms.
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        request body order.CreateOrderCommand true "Create an online order"
// @Success      201 {object} dto.Response{data=order.OrderResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /orders [post]
func (h *OrderHandler) Create(c *gin.Context) {
	var cmd apporder.CreateOrderCommand
	if err := c.ShouldBindJSON(&cmd); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.service.CreateOrder(c.Request.Context(), cmd)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// Get handles GET /orders/:id
// @Summary      Get an order
// @Tags         orders
// @Produce      json
// @Param        id path string true "UUID"
// @Success      200 {object} dto.Response{data=order.OrderResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /orders/{id} [get]
func (h *OrderHandler) Get(c *gin.Context) {
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

// GetByNumber handles GET /orders/number/:order_number
// @Summary      Get an order by number
// @Tags         orders
// @Produce      json
// @Param        order_number path string true "Order number"
// @Success      200 {object} dto.Response{data=order.OrderResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /orders/number/{order_number} [get]
func (h *OrderHandler) GetByNumber(c *gin.Context) {
	number := c.Param("order_number")
	if number == "" {
		h.BadRequest(c, "order_number is required")
		return
	}

	resp, err := h.service.GetByNumber(c.Request.Context(), number)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// List handles GET /orders
// @Summary      List orders
// @Tags         orders
// @Produce      json
// @Param        page query int false "Page number"
// @Param        page_size query int false "Page size"
// @Param        status query string false "Filter by status"
// @Param        payment_status query string false "Filter by payment status"
// @Success      200 {object} dto.Response{data=[]order.OrderResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /orders [get]
func (h *OrderHandler) List(c *gin.Context) {
	req, err := bindListRequest(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	query := apporder.ListOrdersQuery{
		Page:     req.Page,
		PageSize: req.PageSize,
	}
	if status := c.Query("status"); status != "" {
		query.Status = &status
	}
	if paymentStatus := c.Query("payment_status"); paymentStatus != "" {
		query.PaymentStatus = &paymentStatus
	}
	if source := c.Query("source"); source != "" {
		query.Source = &source
	}
	if raw := c.Query("customer_id"); raw != "" {
		customerID, err := uuid.Parse(raw)
		if err != nil {
			h.BadRequest(c, "invalid customer_id")
			return
		}
		query.CustomerID = &customerID
	}
	if raw := c.Query("start_date"); raw != "" {
		start, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			h.BadRequest(c, "invalid start_date, expected RFC3339")
			return
		}
		query.StartDate = &start
	}
	if raw := c.Query("end_date"); raw != "" {
		end, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			h.BadRequest(c, "invalid end_date, expected RFC3339")
			return
		}
		query.EndDate = &end
	}

	orders, total, err := h.service.List(c.Request.Context(), query)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, orders, total, req.Page, req.PageSize)
}

// StatusSummary handles GET /orders/stats/summary
// @Summary      Count orders per status
// @Tags         orders
// @Produce      json
// @Success      200 {object} dto.Response{data=order.StatusSummaryResponse}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /orders/stats/summary [get]
func (h *OrderHandler) StatusSummary(c *gin.Context) {
	summary, err := h.service.StatusSummary(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, summary)
}

// Transition handles POST /orders/:id/transition with an explicit target
// @Summary      Transition an order to an explicit status
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        id path string true "UUID"
// @Param        request body order.TransitionOrderCommand true "Transition an order to an explicit status"
// @Success      200 {object} dto.Response{data=order.OrderResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /orders/{id}/transition [post]
func (h *OrderHandler) Transition(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	var cmd apporder.TransitionOrderCommand
	if err := c.ShouldBindJSON(&cmd); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	h.applyTransition(c, id, cmd)
}

// Cancel handles POST /orders/:id/cancel. The reason is optional in the
// body; the transition requires an actor either way.
// @Summary      Cancel an order
// @Description  Cancelling a confirmed or processing order restores any deducted stock.
// @Tags         orders
// @Produce      json
// @Param        id path string true "UUID"
// @Success      200 {object} dto.Response{data=order.OrderResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /orders/{id}/cancel [post]
func (h *OrderHandler) Cancel(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	var body struct {
		Reason string `json:"reason" binding:"max=255"`
	}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&body); err != nil {
			h.BadRequest(c, err.Error())
			return
		}
	}

	h.applyTransition(c, id, apporder.TransitionOrderCommand{
		Target: string(order.OrderStatusCancelled),
		Reason: body.Reason,
	})
}

// transitionTo builds a convenience handler fixing the transition target
func (h *OrderHandler) transitionTo(target order.OrderStatus) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := parseIDParam(c, "id")
		if err != nil {
			h.BadRequest(c, err.Error())
			return
		}
		h.applyTransition(c, id, apporder.TransitionOrderCommand{Target: string(target)})
	}
}

func (h *OrderHandler) applyTransition(c *gin.Context, id uuid.UUID, cmd apporder.TransitionOrderCommand) {
	actor, err := getActorID(c)
	if err != nil {
		h.Unauthorized(c, "Authenticated staff member required")
		return
	}
	cmd.Actor = actor

	resp, err := h.service.TransitionOrder(c.Request.Context(), id, cmd)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
