package commands

import (
	"context"

	"keyshop/internal/domain/inventory"
	"keyshop/internal/domain/order"
)

// CatalogStore is the denormalized storefront view. The fulfillment core
// treats it as read-only except for the stock sync reconciler, which is the
// single writer of the cached stock number.
type CatalogStore interface {
	Products(ctx context.Context) ([]string, error)
	GetStock(ctx context.Context, productID string) (stock int64, ok bool, err error)
	SetStock(ctx context.Context, productID string, stock int64) error
}

// NotificationDispatcher delivers fulfillment results to the customer and the
// operator channel. At-least-once with logged failure; a dispatch error never
// rolls back a completed order.
type NotificationDispatcher interface {
	SendFulfillment(ctx context.Context, o *order.Order, unit *inventory.Unit) error
	NotifyAdmin(ctx context.Context, subject string, o *order.Order) error
}
