package inventory

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type UnitStatus string

const (
	UnitAvailable UnitStatus = "available"
	UnitSold      UnitStatus = "sold"
)

func (s UnitStatus) String() string {
	return string(s)
}

// Unit is one sellable credential bundle. The credential payload is opaque to
// the fulfillment core; it is handed to the notification dispatcher as-is.
// A unit goes available -> sold exactly once and never reverses here; manual
// reversal is an explicit back-office operation.
type Unit struct {
	ID            uuid.UUID
	ProductID     string
	Credentials   json.RawMessage
	Status        UnitStatus
	OrderID       *string
	CustomerEmail *string
	ClaimedAt     *time.Time
	CreatedAt     time.Time
}

func (u *Unit) IsAvailable() bool {
	return u.Status == UnitAvailable
}

// BoundTo reports whether the unit is already sold to the given order, which
// makes a repeated allocation an idempotent no-op.
func (u *Unit) BoundTo(orderID string) bool {
	return u.Status == UnitSold && u.OrderID != nil && *u.OrderID == orderID
}
