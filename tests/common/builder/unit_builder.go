//go:build unit || e2e

package builder

import (
	"encoding/json"
	"time"

	"keyshop/internal/domain/inventory"

	"github.com/google/uuid"
)

type UnitBuilder struct {
	ID          uuid.UUID
	ProductID   string
	Credentials json.RawMessage
	Status      inventory.UnitStatus
	OrderID     *string
	CreatedAt   time.Time
}

func NewUnitBuilder() *UnitBuilder {
	return &UnitBuilder{
		ID:          uuid.New(),
		ProductID:   "prod-steam-key",
		Credentials: json.RawMessage(`{"key":"AAAA-BBBB-CCCC"}`),
		Status:      inventory.UnitAvailable,
		CreatedAt:   time.Now(),
	}
}

func (b *UnitBuilder) Build() *inventory.Unit {
	return &inventory.Unit{
		ID:          b.ID,
		ProductID:   b.ProductID,
		Credentials: b.Credentials,
		Status:      b.Status,
		OrderID:     b.OrderID,
		CreatedAt:   b.CreatedAt,
	}
}

func (b *UnitBuilder) WithID(id uuid.UUID) *UnitBuilder {
	b.ID = id
	return b
}

func (b *UnitBuilder) WithProductID(productID string) *UnitBuilder {
	b.ProductID = productID
	return b
}

func (b *UnitBuilder) WithCredentials(credentials json.RawMessage) *UnitBuilder {
	b.Credentials = credentials
	return b
}

func (b *UnitBuilder) AsSoldTo(orderID string) *UnitBuilder {
	b.Status = inventory.UnitSold
	b.OrderID = &orderID
	return b
}
