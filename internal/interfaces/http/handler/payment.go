package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apppayment "github.com/storecore/backend/internal/application/payment"
	"github.com/storecore/backend/internal/domain/payment"
	"github.com/storecore/backend/internal/interfaces/http/dto"
	"github.com/storecore/backend/internal/interfaces/http/middleware"
)

// PaymentHandler serves reconciliation endpoints: the provider webhook,
// staff manual verification and transaction lookups
type PaymentHandler struct {
	BaseHandler
	service *apppayment.ReconciliationService
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(service *apppayment.ReconciliationService) *PaymentHandler {
	return &PaymentHandler{service: service}
}

// RegisterRoutes registers the JWT-protected payment routes. The webhook
// is registered separately by the router on the public group behind HMAC
// authentication.
func (h *PaymentHandler) RegisterRoutes(rg *gin.RouterGroup) {
	payments := rg.Group("/payments")
	{
		payments.POST("/verify", middleware.RequireManager(), h.Verify)
		payments.GET("/:id", h.Get)
	}

	rg.GET("/orders/:id/transactions", h.ListByOrder)
}

// Webhook handles POST /payments/webhook. The HMAC middleware already
// authenticated the raw body; replays of the same reference+outcome are
// acknowledged without reprocessing.
// @Summary      Payment provider webhook
// @Description  HMAC-authenticated. Replays of an already-applied event are acknowledged without reprocessing.
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        request body payment.WebhookPayload true "Payment provider webhook"
// @Success      200 {object} dto.Response
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /payments/webhook [post]
func (h *PaymentHandler) Webhook(c *gin.Context) {
	var payload apppayment.WebhookPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	err := h.service.ApplyPaymentEvent(c.Request.Context(), payload.Reference, payment.Outcome(payload.Outcome), nil)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewSuccessResponse(gin.H{"received": true}))
}

// Verify handles POST /payments/verify, the manager-only manual
// reconciliation path for provider outages
// @Summary      Manually verify a payment outcome
// @Description  Manager only. Fallback reconciliation path for provider outages.
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        request body payment.VerifyPaymentCommand true "Manually verify a payment outcome"
// @Success      200 {object} dto.Response{data=payment.TransactionResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /payments/verify [post]
func (h *PaymentHandler) Verify(c *gin.Context) {
	var cmd apppayment.VerifyPaymentCommand
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

	resp, err := h.service.VerifyPayment(c.Request.Context(), cmd)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Get handles GET /payments/:id
// @Summary      Get a payment transaction
// @Tags         payments
// @Produce      json
// @Param        id path string true "UUID"
// @Success      200 {object} dto.Response{data=payment.TransactionResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /payments/{id} [get]
func (h *PaymentHandler) Get(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.service.GetTransaction(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// ListByOrder handles GET /orders/:id/transactions
// @Summary      List payment transactions for an order
// @Tags         payments
// @Produce      json
// @Param        id path string true "UUID"
// @Success      200 {object} dto.Response{data=[]payment.TransactionResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /orders/{id}/transactions [get]
func (h *PaymentHandler) ListByOrder(c *gin.Context) {
	orderID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	transactions, err := h.service.ListByOrder(c.Request.Context(), orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, transactions)
}
