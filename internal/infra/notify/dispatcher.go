package notify

import (
	"context"
	"log/slog"

	"keyshop/internal/domain/inventory"
	"keyshop/internal/domain/order"
)

// SlogDispatcher hands fulfillment results to the log stream the delivery
// worker tails. Delivery itself (transactional email, messenger) runs out of
// process with its own retry policy; failures here never block completion.
type SlogDispatcher struct {
	logger *slog.Logger
}

func NewSlogDispatcher(logger *slog.Logger) *SlogDispatcher {
	return &SlogDispatcher{logger: logger}
}

func (d *SlogDispatcher) SendFulfillment(_ context.Context, o *order.Order, unit *inventory.Unit) error {
	// Credential payload is intentionally not logged.
	d.logger.Info("fulfillment notification queued",
		"order_id", o.ID,
		"customer", o.CustomerEmail,
		"product_id", o.ProductID,
		"unit_id", unit.ID.String(),
	)
	return nil
}

func (d *SlogDispatcher) NotifyAdmin(_ context.Context, subject string, o *order.Order) error {
	d.logger.Info("operator notification queued",
		"subject", subject,
		"order_id", o.ID,
		"status", o.Status.String(),
	)
	return nil
}
