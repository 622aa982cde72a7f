//go:build unit || e2e

package builder

import (
	"time"

	domorder "keyshop/internal/domain/order"

	"github.com/google/uuid"
)

type OrderBuilder struct {
	ID            string
	CustomerEmail string
	ProductID     string
	Amount        int64
	Status        domorder.Status
	UnitID        *uuid.UUID
	FailureReason *string
	CreatedAt     time.Time
}

func NewOrderBuilder() *OrderBuilder {
	return &OrderBuilder{
		ID:            "ord_" + uuid.NewString()[:8],
		CustomerEmail: "buyer@example.com",
		ProductID:     "prod-steam-key",
		Amount:        2999,
		Status:        domorder.StatusPending,
		CreatedAt:     time.Now(),
	}
}

func (b *OrderBuilder) With(mutate func(*OrderBuilder)) *OrderBuilder {
	mutate(b)
	return b
}

func (b *OrderBuilder) BuildDomain() (*domorder.Order, error) {
	return domorder.New(b.ID, b.CustomerEmail, b.ProductID, b.Amount, b.CreatedAt)
}

// Build returns the order with the builder's status applied directly,
// bypassing constructor validation. For seeding fakes and fixtures.
func (b *OrderBuilder) Build() *domorder.Order {
	return &domorder.Order{
		ID:            b.ID,
		CustomerEmail: b.CustomerEmail,
		ProductID:     b.ProductID,
		Amount:        b.Amount,
		Status:        b.Status,
		UnitID:        b.UnitID,
		FailureReason: b.FailureReason,
		CreatedAt:     b.CreatedAt,
		UpdatedAt:     b.CreatedAt,
	}
}

func (b *OrderBuilder) WithID(id string) *OrderBuilder {
	b.ID = id
	return b
}

func (b *OrderBuilder) WithCustomerEmail(email string) *OrderBuilder {
	b.CustomerEmail = email
	return b
}

func (b *OrderBuilder) WithProductID(productID string) *OrderBuilder {
	b.ProductID = productID
	return b
}

func (b *OrderBuilder) WithAmount(amount int64) *OrderBuilder {
	b.Amount = amount
	return b
}

func (b *OrderBuilder) WithStatus(status domorder.Status) *OrderBuilder {
	b.Status = status
	return b
}

func (b *OrderBuilder) WithCreatedAt(createdAt time.Time) *OrderBuilder {
	b.CreatedAt = createdAt
	return b
}

func (b *OrderBuilder) AsCompleted(unitID uuid.UUID) *OrderBuilder {
	b.Status = domorder.StatusCompleted
	b.UnitID = &unitID
	return b
}

func (b *OrderBuilder) AsFailed(reason string) *OrderBuilder {
	b.Status = domorder.StatusFailed
	b.FailureReason = &reason
	return b
}
