//go:build unit || e2e

package builder

import (
	"time"

	"keyshop/internal/domain/payment"
	reqdto "keyshop/internal/handler/dto/request"
)

type EventBuilder struct {
	OrderID       string
	Amount        int64
	Status        string
	PaymentMethod string
	CompletedAt   *time.Time
}

func NewEventBuilder() *EventBuilder {
	return &EventBuilder{
		OrderID:       "ord_12345678",
		Amount:        2999,
		Status:        payment.StatusCompleted,
		PaymentMethod: "card",
	}
}

func (b *EventBuilder) With(mutate func(*EventBuilder)) *EventBuilder {
	mutate(b)
	return b
}

func (b *EventBuilder) Build() payment.Event {
	return payment.Event{
		OrderID:       b.OrderID,
		Amount:        b.Amount,
		Status:        b.Status,
		PaymentMethod: b.PaymentMethod,
		CompletedAt:   b.CompletedAt,
	}
}

func (b *EventBuilder) BuildRequestDTO() reqdto.PaymentEventRequest {
	return reqdto.PaymentEventRequest{
		OrderID:       b.OrderID,
		Amount:        b.Amount,
		Status:        b.Status,
		PaymentMethod: b.PaymentMethod,
		CompletedAt:   b.CompletedAt,
	}
}

func (b *EventBuilder) WithOrderID(orderID string) *EventBuilder {
	b.OrderID = orderID
	return b
}

func (b *EventBuilder) WithAmount(amount int64) *EventBuilder {
	b.Amount = amount
	return b
}

func (b *EventBuilder) WithStatus(status string) *EventBuilder {
	b.Status = status
	return b
}

func (b *EventBuilder) ForOrder(orderID string, amount int64) *EventBuilder {
	b.OrderID = orderID
	b.Amount = amount
	return b
}
