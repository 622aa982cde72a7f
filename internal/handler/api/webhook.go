package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"keyshop/internal/domain/payment"
	reqdto "keyshop/internal/handler/dto/request"
	resdto "keyshop/internal/handler/dto/response"
	"keyshop/internal/pkg/config"
	"keyshop/internal/usecase/commands"

	"github.com/gin-gonic/gin"
)

const signatureHeader = "X-Webhook-Signature"

type WebhookHandler struct {
	webhookCommands commands.WebhookCommands
	secret          string
}

func NewWebhookHandler(webhookCommands commands.WebhookCommands, cfg config.Config) *WebhookHandler {
	return &WebhookHandler{
		webhookCommands: webhookCommands,
		secret:          cfg.Webhook.Secret,
	}
}

// @Summary Payment gateway webhook
// @Description Ingest an asynchronous payment notification and reconcile the order
// @Tags webhooks
// @Accept json
// @Produce json
// @Param X-Webhook-Signature header string false "Hex HMAC-SHA256 of the raw body"
// @Param request body reqdto.PaymentEventRequest true "Payment event"
// @Success 200 {object} resdto.WebhookAckResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /webhooks/payment [post]
func (h *WebhookHandler) HandlePaymentEvent(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Failed to read request body",
		})
		return
	}

	// Signature is checked over the raw body before any parsing.
	if h.secret != "" {
		if !payment.VerifySignature(h.secret, body, c.GetHeader(signatureHeader)) {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid webhook signature",
			})
			return
		}
	}

	var req reqdto.PaymentEventRequest
	if unmarshalErr := json.Unmarshal(body, &req); unmarshalErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	ack, err := h.webhookCommands.HandlePaymentEvent(c.Request.Context(), req.ToDomain())
	if err != nil {
		switch {
		case errors.Is(err, commands.ErrMalformedEvent):
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Malformed payment event",
			})
		case errors.Is(err, commands.ErrAmountMismatch):
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error": "Event amount does not match order amount",
			})
		case errors.Is(err, commands.ErrRepositoryUnavailable):
			// A failure-equivalent tells the gateway to redeliver.
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"error": "Temporarily unable to process event",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Internal server error",
			})
		}
		return
	}

	c.JSON(http.StatusOK, resdto.FromAck(ack))
}
