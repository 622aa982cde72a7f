package api

import (
	"errors"
	"net/http"

	reqdto "keyshop/internal/handler/dto/request"
	resdto "keyshop/internal/handler/dto/response"
	"keyshop/internal/usecase/commands"
	"keyshop/internal/usecase/queries"

	"github.com/gin-gonic/gin"
)

type AdminOrderHandler struct {
	adminCommands commands.AdminCommands
	orderQueries  queries.OrderQueries
}

func NewAdminOrderHandler(adminCommands commands.AdminCommands, orderQueries queries.OrderQueries) *AdminOrderHandler {
	return &AdminOrderHandler{
		adminCommands: adminCommands,
		orderQueries:  orderQueries,
	}
}

// @Summary Get order
// @Description Get order details by ID
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path string true "Order ID"
// @Success 200 {object} queries.OrderView
// @Failure 401 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /admin/orders/{id} [get]
func (h *AdminOrderHandler) GetOrder(c *gin.Context) {
	orderView, err := h.orderQueries.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, queries.ErrOrderNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Order not found",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Internal server error",
			})
		}
		return
	}

	c.JSON(http.StatusOK, orderView)
}

// @Summary Manually complete order
// @Description Bind a specific inventory unit to a pending order and complete it
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Order ID"
// @Param request body reqdto.CompleteOrderRequest true "Unit to bind"
// @Success 200 {object} resdto.OrderResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /admin/orders/{id}/complete [post]
func (h *AdminOrderHandler) CompleteOrder(c *gin.Context) {
	var req reqdto.CompleteOrderRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	completed, err := h.adminCommands.CompleteManually(c.Request.Context(), c.Param("id"), req.UnitID)
	if err != nil {
		switch {
		case errors.Is(err, commands.ErrOrderNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Order not found",
			})
		case errors.Is(err, commands.ErrUnitNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Inventory unit not found",
			})
		case errors.Is(err, commands.ErrOrderNotPending):
			c.JSON(http.StatusConflict, gin.H{
				"error": "Order is no longer pending",
			})
		case errors.Is(err, commands.ErrUnitUnavailable):
			c.JSON(http.StatusConflict, gin.H{
				"error": "Inventory unit is already sold",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Internal server error",
			})
		}
		return
	}

	c.JSON(http.StatusOK, resdto.FromOrder(completed))
}

// @Summary Cancel order
// @Description Cancel a pending order with a reason
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Order ID"
// @Param request body reqdto.CancelOrderRequest true "Cancellation reason"
// @Success 200 {object} resdto.OrderResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /admin/orders/{id}/cancel [post]
func (h *AdminOrderHandler) CancelOrder(c *gin.Context) {
	var req reqdto.CancelOrderRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	cancelled, err := h.adminCommands.Cancel(c.Request.Context(), c.Param("id"), req.Reason)
	if err != nil {
		switch {
		case errors.Is(err, commands.ErrOrderNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Order not found",
			})
		case errors.Is(err, commands.ErrOrderNotPending):
			c.JSON(http.StatusConflict, gin.H{
				"error": "Order is no longer pending",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Internal server error",
			})
		}
		return
	}

	c.JSON(http.StatusOK, resdto.FromOrder(cancelled))
}

// @Summary Resend fulfillment notification
// @Description Re-dispatch the credential delivery for a completed order
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path string true "Order ID"
// @Success 202 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Failure 502 {object} map[string]string
// @Router /admin/orders/{id}/resend [post]
func (h *AdminOrderHandler) ResendNotification(c *gin.Context) {
	err := h.adminCommands.ResendNotification(c.Request.Context(), c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, commands.ErrOrderNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Order not found",
			})
		case errors.Is(err, commands.ErrOrderNotCompleted):
			c.JSON(http.StatusConflict, gin.H{
				"error": "Order is not completed",
			})
		case errors.Is(err, commands.ErrUnitNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"error": "No inventory unit bound to order",
			})
		case errors.Is(err, commands.ErrNotificationSend):
			c.JSON(http.StatusBadGateway, gin.H{
				"error": "Failed to dispatch notification",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Internal server error",
			})
		}
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"status": "queued",
	})
}
