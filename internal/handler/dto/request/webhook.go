package request

import (
	"time"

	"keyshop/internal/domain/payment"
)

// PaymentEventRequest mirrors the gateway notification body. Field presence
// is validated in the use case so that malformed payloads are classified
// (and logged) there, not silently dropped by binding.
type PaymentEventRequest struct {
	OrderID       string     `json:"order_id"`
	Amount        int64      `json:"amount"`
	Status        string     `json:"status"`
	PaymentMethod string     `json:"payment_method,omitempty"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
}

func (r PaymentEventRequest) ToDomain() payment.Event {
	return payment.Event{
		OrderID:       r.OrderID,
		Amount:        r.Amount,
		Status:        r.Status,
		PaymentMethod: r.PaymentMethod,
		CompletedAt:   r.CompletedAt,
	}
}
