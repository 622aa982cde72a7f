package payment

import (
	"errors"
	"strings"
	"time"
)

// Gateway status tags. Anything that is neither completed nor pending is a
// terminal failure tag and is recorded verbatim as the failure reason.
const (
	StatusCompleted = "completed"
	StatusPending   = "pending"
)

var (
	ErrMissingOrderID = errors.New("payment event missing order id")
	ErrMissingAmount  = errors.New("payment event missing amount")
	ErrMissingStatus  = errors.New("payment event missing status")
)

// Event is the transient gateway notification. It is not persisted;
// idempotency rides on the order status, not on an event ledger.
type Event struct {
	OrderID       string
	Amount        int64
	Status        string
	PaymentMethod string
	CompletedAt   *time.Time
}

func (e Event) Validate() error {
	if strings.TrimSpace(e.OrderID) == "" {
		return ErrMissingOrderID
	}
	if e.Amount <= 0 {
		return ErrMissingAmount
	}
	if strings.TrimSpace(e.Status) == "" {
		return ErrMissingStatus
	}
	return nil
}

func (e Event) IsCompleted() bool {
	return e.Status == StatusCompleted
}

func (e Event) IsPending() bool {
	return e.Status == StatusPending
}
