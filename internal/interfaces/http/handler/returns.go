package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	appreturns "github.com/storecore/backend/internal/application/returns"
	"github.com/storecore/backend/internal/domain/returns"
	"github.com/storecore/backend/internal/interfaces/http/dto"
	"github.com/storecore/backend/internal/interfaces/http/middleware"
)

// ReturnHandler serves the RMA endpoints
type ReturnHandler struct {
	BaseHandler
	service *appreturns.ReturnService
}

// NewReturnHandler creates a new return handler
func NewReturnHandler(service *appreturns.ReturnService) *ReturnHandler {
	return &ReturnHandler{service: service}
}

// RegisterRoutes registers return routes on the API group. Approval and
// rejection are manager-only; the rest is open to all staff.
func (h *ReturnHandler) RegisterRoutes(rg *gin.RouterGroup) {
	ret := rg.Group("/returns")
	{
		ret.POST("", h.Create)
		ret.GET("", h.List)
		ret.GET("/:id", h.Get)
		ret.GET("/number/:rma_number", h.GetByRMANumber)
		ret.POST("/:id/transition", h.Transition)
		ret.POST("/:id/approve", middleware.RequireManager(), h.transitionTo(returns.StatusApproved))
		ret.POST("/:id/reject", middleware.RequireManager(), h.Reject)
		ret.POST("/:id/receive", h.transitionTo(returns.StatusReceived))
		ret.POST("/:id/refund", h.transitionTo(returns.StatusRefunded))
		ret.POST("/:id/complete", h.transitionTo(returns.StatusCompleted))
	}
}

// Create handles POST /returns
// @Summary      Create a return request
// @Tags         returns
// @Accept       json
// @Produce      json
// @Param        request body returns.CreateReturnCommand true "Create a return request"
// @Success      201 {object} dto.Response{data=returns.ReturnResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /returns [post]
func (h *ReturnHandler) Create(c *gin.Context) {
	var cmd appreturns.CreateReturnCommand
	if err := c.ShouldBindJSON(&cmd); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	actor, err := getActorID(c)
	if err != nil {
		h.Unauthorized(c, "Authenticated staff member required")
		return
	}
	cmd.RequestedBy = actor

	resp, err := h.service.CreateReturn(c.Request.Context(), cmd)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// Get handles GET /returns/:id
// @Summary      Get a return
// @Tags         returns
// @Produce      json
// @Param        id path string true "UUID"
// @Success      200 {object} dto.Response{data=returns.ReturnResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /returns/{id} [get]
func (h *ReturnHandler) Get(c *gin.Context) {
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

// GetByRMANumber handles GET /returns/number/:rma_number
// @Summary      Get a return by RMA number
// @Tags         returns
// @Produce      json
// @Param        rma_number path string true "RMA number"
// @Success      200 {object} dto.Response{data=returns.ReturnResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /returns/number/{rma_number} [get]
func (h *ReturnHandler) GetByRMANumber(c *gin.Context) {
	rmaNumber := c.Param("rma_number")
	if rmaNumber == "" {
		h.BadRequest(c, "rma_number is required")
		return
	}

	resp, err := h.service.GetByRMANumber(c.Request.Context(), rmaNumber)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// List handles GET /returns with an optional status filter
// @Summary      List returns
// @Tags         returns
// @Produce      json
// @Param        page query int false "Page number"
// @Param        page_size query int false "Page size"
// @Param        status query string false "Filter by status"
// @Success      200 {object} dto.Response{data=[]returns.ReturnResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /returns [get]
func (h *ReturnHandler) List(c *gin.Context) {
	req, err := bindListRequest(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	var status *string
	if raw := c.Query("status"); raw != "" {
		status = &raw
	}

	items, total, err := h.service.List(c.Request.Context(), status, toFilter(req))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, items, total, req.Page, req.PageSize)
}

// Transition handles POST /returns/:id/transition with an explicit target
// @Summary      Transition a return to an explicit status
// @Tags         returns
// @Accept       json
// @Produce      json
// @Param        id path string true "UUID"
// @Param        request body returns.TransitionReturnCommand true "Transition a return to an explicit status"
// @Success      200 {object} dto.Response{data=returns.ReturnResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /returns/{id}/transition [post]
func (h *ReturnHandler) Transition(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	var cmd appreturns.TransitionReturnCommand
	if err := c.ShouldBindJSON(&cmd); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	// Approval and rejection stay manager-only through the generic route.
	target := returns.Status(cmd.Target)
	if target == returns.StatusApproved || target == returns.StatusRejected {
		claims := middleware.GetJWTClaims(c)
		if claims == nil || !claims.IsManager() {
			h.Error(c, http.StatusForbidden, dto.ErrCodeForbidden, "Manager role required")
			return
		}
	}

	h.applyTransition(c, id, cmd)
}

// Reject handles POST /returns/:id/reject with a required reason
// @Summary      Reject a return
// @Description  Manager only. A rejection reason is required.
// @Tags         returns
// @Produce      json
// @Param        id path string true "UUID"
// @Success      200 {object} dto.Response{data=returns.ReturnResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /returns/{id}/reject [post]
func (h *ReturnHandler) Reject(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	var body struct {
		Reason string `json:"reason" binding:"required,max=255"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	h.applyTransition(c, id, appreturns.TransitionReturnCommand{
		Target: string(returns.StatusRejected),
		Reason: body.Reason,
	})
}

// transitionTo builds a convenience handler fixing the transition target
func (h *ReturnHandler) transitionTo(target returns.Status) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := parseIDParam(c, "id")
		if err != nil {
			h.BadRequest(c, err.Error())
			return
		}
		h.applyTransition(c, id, appreturns.TransitionReturnCommand{Target: string(target)})
	}
}

func (h *ReturnHandler) applyTransition(c *gin.Context, id uuid.UUID, cmd appreturns.TransitionReturnCommand) {
	actor, err := getActorID(c)
	if err != nil {
		h.Unauthorized(c, "Authenticated staff member required")
		return
	}
	cmd.Actor = actor

	resp, err := h.service.TransitionReturn(c.Request.Context(), id, cmd)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
