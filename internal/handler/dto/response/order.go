package response

import (
	"time"

	"keyshop/internal/domain/order"

	"github.com/google/uuid"
)

type OrderResponse struct {
	ID            string     `json:"id"`
	CustomerEmail string     `json:"customer_email"`
	ProductID     string     `json:"product_id"`
	Amount        int64      `json:"amount"`
	Status        string     `json:"status"`
	UnitID        *uuid.UUID `json:"unit_id,omitempty"`
	FailureReason *string    `json:"failure_reason,omitempty"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

func FromOrder(o *order.Order) *OrderResponse {
	return &OrderResponse{
		ID:            o.ID,
		CustomerEmail: o.CustomerEmail,
		ProductID:     o.ProductID,
		Amount:        o.Amount,
		Status:        o.Status.String(),
		UnitID:        o.UnitID,
		FailureReason: o.FailureReason,
		CompletedAt:   o.CompletedAt,
		UpdatedAt:     o.UpdatedAt,
	}
}
