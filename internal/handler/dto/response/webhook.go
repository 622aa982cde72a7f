package response

import (
	"keyshop/internal/usecase/commands"
)

type WebhookAckResponse struct {
	Received bool   `json:"received"`
	OrderID  string `json:"order_id"`
	Status   string `json:"status,omitempty"`
	Outcome  string `json:"outcome"`
	Warning  string `json:"warning,omitempty"`
}

func FromAck(ack *commands.Ack) *WebhookAckResponse {
	return &WebhookAckResponse{
		Received: ack.Received,
		OrderID:  ack.OrderID,
		Status:   ack.OrderStatus.String(),
		Outcome:  string(ack.Outcome),
		Warning:  ack.Warning,
	}
}
