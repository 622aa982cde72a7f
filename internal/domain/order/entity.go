package order

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrEmptyOrderID      = errors.New("order id cannot be empty")
	ErrEmptyCustomer     = errors.New("customer email cannot be empty")
	ErrEmptyProductID    = errors.New("product id cannot be empty")
	ErrNonPositiveAmount = errors.New("amount must be positive")
)

// Order is the durable record driven by the payment-event reconciler. The
// identifier is caller-generated at creation time; amount is immutable after
// creation and is the value incoming events are checked against.
type Order struct {
	ID            string
	CustomerEmail string
	ProductID     string
	// Amount is in the smallest currency unit.
	Amount        int64
	PaymentMethod string
	Status        Status
	// UnitID is set if and only if the order is completed.
	UnitID           *uuid.UUID
	FailureReason    *string
	CustomerNotified bool
	AdminNotified    bool
	LastEventAt      *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
	CompletedAt      *time.Time
	FailedAt         *time.Time
}

func New(id, customerEmail, productID string, amount int64, now time.Time) (*Order, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ErrEmptyOrderID
	}
	if strings.TrimSpace(customerEmail) == "" {
		return nil, ErrEmptyCustomer
	}
	if strings.TrimSpace(productID) == "" {
		return nil, ErrEmptyProductID
	}
	if amount <= 0 {
		return nil, ErrNonPositiveAmount
	}

	return &Order{
		ID:            strings.TrimSpace(id),
		CustomerEmail: strings.TrimSpace(customerEmail),
		ProductID:     strings.TrimSpace(productID),
		Amount:        amount,
		Status:        StatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

func (o *Order) IsTerminal() bool {
	return o.Status.IsTerminal()
}

// AmountMatches checks an incoming event's amount against the stored one. A
// mismatch signals tampering or gateway misconfiguration and must leave the
// order untouched.
func (o *Order) AmountMatches(amount int64) bool {
	return o.Amount == amount
}

// ExpiredBy reports whether a pending order has outlived the given TTL.
func (o *Order) ExpiredBy(now time.Time, ttl time.Duration) bool {
	return o.Status == StatusPending && now.Sub(o.CreatedAt) > ttl
}
