//go:build unit || e2e

package fake

import (
	"context"
	"errors"
	"sync"

	"keyshop/internal/domain/inventory"
	"keyshop/internal/domain/order"
)

// Notifier records dispatched notifications and can be told to fail.
type Notifier struct {
	mu           sync.Mutex
	fulfillments []string
	adminNotes   []string
	failSend     bool
}

func NewNotifier() *Notifier {
	return &Notifier{}
}

func (n *Notifier) FailSends(fail bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.failSend = fail
}

func (n *Notifier) SendFulfillment(_ context.Context, o *order.Order, _ *inventory.Unit) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.failSend {
		return errors.New("smtp unreachable")
	}
	n.fulfillments = append(n.fulfillments, o.ID)
	return nil
}

func (n *Notifier) NotifyAdmin(_ context.Context, subject string, _ *order.Order) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.failSend {
		return errors.New("smtp unreachable")
	}
	n.adminNotes = append(n.adminNotes, subject)
	return nil
}

// Fulfillments returns order IDs that received a credential delivery.
func (n *Notifier) Fulfillments() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.fulfillments...)
}

func (n *Notifier) AdminNotes() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.adminNotes...)
}
