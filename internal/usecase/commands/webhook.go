package commands

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"keyshop/internal/domain/inventory"
	"keyshop/internal/domain/order"
	"keyshop/internal/domain/payment"
	"keyshop/internal/infra"
	"keyshop/internal/pkg/clock"
	"keyshop/internal/pkg/config"
	"keyshop/internal/pkg/errs"
	"keyshop/internal/usecase/shared"
)

var (
	ErrMalformedEvent        = errs.New("malformed payment event")
	ErrAmountMismatch        = errs.New("event amount does not match order amount")
	ErrRepositoryUnavailable = errs.New("repository unavailable")
)

type Outcome string

const (
	OutcomeProcessed        Outcome = "processed"
	OutcomeAlreadyProcessed Outcome = "already_processed"
	OutcomeOrderNotFound    Outcome = "order_not_found"
)

// Ack is what the transport layer maps to a response. Order-not-found and
// already-processed both acknowledge receipt so the gateway stops
// redelivering; only malformed payloads, amount mismatches and
// infrastructure faults surface as errors.
type Ack struct {
	Received    bool
	OrderID     string
	OrderStatus order.Status
	Outcome     Outcome
	Warning     string
}

type WebhookCommands interface {
	HandlePaymentEvent(ctx context.Context, ev payment.Event) (*Ack, error)
}

type webhookCommandsImpl struct {
	uow       shared.UnitOfWork
	allocator Allocator
	notifier  NotificationDispatcher
	clock     clock.Clock
	cfg       config.WebhookConfig
	logger    *slog.Logger
}

func NewWebhookCommands(
	uow shared.UnitOfWork,
	allocator Allocator,
	notifier NotificationDispatcher,
	clock clock.Clock,
	cfg config.Config,
	logger *slog.Logger,
) WebhookCommands {
	return &webhookCommandsImpl{
		uow:       uow,
		allocator: allocator,
		notifier:  notifier,
		clock:     clock,
		cfg:       cfg.Webhook,
		logger:    logger,
	}
}

func (w *webhookCommandsImpl) HandlePaymentEvent(ctx context.Context, ev payment.Event) (*Ack, error) {
	if err := ev.Validate(); err != nil {
		return nil, errs.Mark(err, ErrMalformedEvent)
	}

	// Overall deadline covers the bounded lookup retries.
	ctx, cancel := context.WithTimeout(ctx, w.cfg.HandleTimeout)
	defer cancel()

	o, err := w.findOrderWithRetry(ctx, ev.OrderID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			// The event is unrecoverable once the order is truly missing;
			// a 5xx here would only trigger an endless redelivery storm.
			w.logger.Warn("order not found for payment event",
				"order_id", ev.OrderID, "event_status", ev.Status)
			return &Ack{
				Received: true,
				OrderID:  ev.OrderID,
				Outcome:  OutcomeOrderNotFound,
				Warning:  "order not found",
			}, nil
		}
		return nil, errs.Mark(err, ErrRepositoryUnavailable)
	}

	if !o.AmountMatches(ev.Amount) {
		w.logger.Warn("payment event amount mismatch",
			"order_id", o.ID, "order_amount", o.Amount, "event_amount", ev.Amount)
		return nil, errs.Mark(
			errs.Newf("order %s expects amount %d, event carries %d", o.ID, o.Amount, ev.Amount),
			ErrAmountMismatch,
		)
	}

	if o.IsTerminal() {
		w.logger.Info("payment event for already processed order",
			"order_id", o.ID, "order_status", o.Status.String(), "event_status", ev.Status)
		return w.ack(o, OutcomeAlreadyProcessed, ""), nil
	}

	switch {
	case ev.IsCompleted():
		return w.completeOrder(ctx, o, ev)
	case ev.IsPending():
		return w.touchPending(ctx, o)
	default:
		return w.failOrder(ctx, o, ev.Status)
	}
}

// completeOrder runs allocation and the conditional transition in one
// transaction: losing the status race rolls the freshly claimed unit back, so
// the race leaves no orphaned allocation behind.
func (w *webhookCommandsImpl) completeOrder(ctx context.Context, o *order.Order, ev payment.Event) (*Ack, error) {
	now := w.clock.Now()
	completedAt := now
	if ev.CompletedAt != nil {
		completedAt = *ev.CompletedAt
	}

	var (
		updated    *order.Order
		unit       *inventory.Unit
		outOfStock bool
	)
	err := w.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		claimed, aerr := w.allocator.Allocate(ctx, tx, o.ProductID, o.ID, o.CustomerEmail)
		if aerr != nil {
			if errors.Is(aerr, ErrOutOfStock) {
				reason := order.ReasonOutOfStock.String()
				failed, terr := tx.Orders().TransitionIfStatus(ctx, o.ID,
					order.StatusPending, order.StatusFailed,
					shared.OrderPatch{FailureReason: &reason, FailedAt: &now, LastEventAt: &now})
				if terr != nil {
					return terr
				}
				updated = failed
				outOfStock = true
				return nil
			}
			return aerr
		}

		patch := shared.OrderPatch{
			UnitID:      &claimed.ID,
			CompletedAt: &completedAt,
			LastEventAt: &now,
		}
		if ev.PaymentMethod != "" {
			patch.PaymentMethod = &ev.PaymentMethod
		}
		completed, terr := tx.Orders().TransitionIfStatus(ctx, o.ID,
			order.StatusPending, order.StatusCompleted, patch)
		if terr != nil {
			return terr
		}
		updated = completed
		unit = claimed
		return nil
	})
	if err != nil {
		if infra.IsKind(err, infra.KindConflict) {
			// Another path (duplicate delivery, manual completion) won; the
			// claim rolled back with the transaction.
			w.logger.Info("completion lost status race, treating as already processed", "order_id", o.ID)
			return w.ack(o, OutcomeAlreadyProcessed, ""), nil
		}
		return nil, errs.Mark(err, ErrRepositoryUnavailable)
	}

	if outOfStock {
		w.logger.Warn("order failed: out of stock", "order_id", o.ID, "product_id", o.ProductID)
		w.notifyAdmin(ctx, "order failed: out of stock", updated)
		return w.ack(updated, OutcomeProcessed, ""), nil
	}

	w.logger.Info("order completed",
		"order_id", updated.ID, "product_id", updated.ProductID, "unit_id", unit.ID.String())
	w.dispatchFulfillment(ctx, updated, unit)
	return w.ack(updated, OutcomeProcessed, ""), nil
}

// touchPending records that the gateway re-sent a still-pending notification.
func (w *webhookCommandsImpl) touchPending(ctx context.Context, o *order.Order) (*Ack, error) {
	now := w.clock.Now()
	updated, err := w.uow.Orders().Update(ctx, o.ID, shared.OrderPatch{LastEventAt: &now})
	if err != nil {
		return nil, errs.Mark(err, ErrRepositoryUnavailable)
	}
	return w.ack(updated, OutcomeProcessed, ""), nil
}

func (w *webhookCommandsImpl) failOrder(ctx context.Context, o *order.Order, reason string) (*Ack, error) {
	now := w.clock.Now()
	failed, err := w.uow.Orders().TransitionIfStatus(ctx, o.ID,
		order.StatusPending, order.StatusFailed,
		shared.OrderPatch{FailureReason: &reason, FailedAt: &now, LastEventAt: &now})
	if err != nil {
		if infra.IsKind(err, infra.KindConflict) {
			w.logger.Info("failure event lost status race, treating as already processed", "order_id", o.ID)
			return w.ack(o, OutcomeAlreadyProcessed, ""), nil
		}
		return nil, errs.Mark(err, ErrRepositoryUnavailable)
	}

	w.logger.Info("order failed by gateway status", "order_id", o.ID, "reason", reason)
	return w.ack(failed, OutcomeProcessed, ""), nil
}

func (w *webhookCommandsImpl) findOrderWithRetry(ctx context.Context, orderID string) (*order.Order, error) {
	attempts := w.cfg.LookupRetries + 1
	var lastErr error

	for attempt := range attempts {
		o, err := w.uow.Orders().FindByID(ctx, orderID)
		if err == nil {
			return o, nil
		}
		if !infra.IsKind(err, infra.KindNotFound) {
			return nil, err
		}
		lastErr = err

		if attempt == attempts-1 {
			break
		}
		// The order-creation write may not be visible yet; back off and look
		// again a bounded number of times.
		wait := w.cfg.LookupBackoff * time.Duration(1<<attempt)
		select {
		case <-ctx.Done():
			return nil, infra.WrapRepoErr("order lookup cancelled", ctx.Err(), infra.KindUnavailable)
		case <-time.After(wait):
		}
	}
	return nil, lastErr
}

// Notification failures are logged and recoverable via the resend operation;
// they never roll back the completion.
func (w *webhookCommandsImpl) dispatchFulfillment(ctx context.Context, o *order.Order, unit *inventory.Unit) {
	customerNotified := w.notifier.SendFulfillment(ctx, o, unit) == nil
	if !customerNotified {
		w.logger.Error("failed to send fulfillment notification", "order_id", o.ID)
	}
	adminNotified := w.notifier.NotifyAdmin(ctx, "order completed", o) == nil
	if !adminNotified {
		w.logger.Error("failed to notify operator channel", "order_id", o.ID)
	}

	patch := shared.OrderPatch{CustomerNotified: &customerNotified, AdminNotified: &adminNotified}
	if _, err := w.uow.Orders().Update(ctx, o.ID, patch); err != nil {
		w.logger.Error("failed to record notification flags", "order_id", o.ID, "error", err.Error())
	}
}

func (w *webhookCommandsImpl) notifyAdmin(ctx context.Context, subject string, o *order.Order) {
	if err := w.notifier.NotifyAdmin(ctx, subject, o); err != nil {
		w.logger.Error("failed to notify operator channel", "order_id", o.ID, "error", err.Error())
	}
}

func (w *webhookCommandsImpl) ack(o *order.Order, outcome Outcome, warning string) *Ack {
	return &Ack{
		Received:    true,
		OrderID:     o.ID,
		OrderStatus: o.Status,
		Outcome:     outcome,
		Warning:     warning,
	}
}
