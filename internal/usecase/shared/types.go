package shared

import (
	"time"

	"github.com/google/uuid"
)

// OrderPatch carries the optional fields an update or transition may set.
// Nil fields are left untouched.
type OrderPatch struct {
	PaymentMethod    *string
	UnitID           *uuid.UUID
	FailureReason    *string
	CustomerNotified *bool
	AdminNotified    *bool
	LastEventAt      *time.Time
	CompletedAt      *time.Time
	FailedAt         *time.Time
}

// OrphanedUnit is a sold unit whose order is missing or never completed,
// surfaced by the stock report for manual reconciliation.
type OrphanedUnit struct {
	UnitID      uuid.UUID
	ProductID   string
	OrderID     *string
	OrderStatus *string
}
