package request

import "github.com/google/uuid"

type CompleteOrderRequest struct {
	UnitID uuid.UUID `json:"unit_id" binding:"required"`
}

type CancelOrderRequest struct {
	Reason string `json:"reason" binding:"required,max=255"`
}
