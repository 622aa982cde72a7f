package commands

import (
	"context"
	"log/slog"

	"keyshop/internal/domain/order"
	"keyshop/internal/infra"
	"keyshop/internal/pkg/clock"
	"keyshop/internal/pkg/errs"
	"keyshop/internal/usecase/shared"

	"github.com/google/uuid"
)

var (
	ErrOrderNotFound     = errs.New("order not found")
	ErrOrderNotPending   = errs.New("order is not pending")
	ErrOrderNotCompleted = errs.New("order is not completed")
	ErrUnitNotFound      = errs.New("inventory unit not found")
	ErrUnitUnavailable   = errs.New("inventory unit is not available")
	ErrNotificationSend  = errs.New("notification dispatch failed")
)

type AdminCommands interface {
	// CompleteManually binds one specific unit and completes the order; it
	// goes through the same claim + conditional transition sequence as the
	// webhook path, so it races safely against concurrent deliveries.
	CompleteManually(ctx context.Context, orderID string, unitID uuid.UUID) (*order.Order, error)
	Cancel(ctx context.Context, orderID, reason string) (*order.Order, error)
	ResendNotification(ctx context.Context, orderID string) error
}

type adminCommandsImpl struct {
	uow      shared.UnitOfWork
	notifier NotificationDispatcher
	clock    clock.Clock
	logger   *slog.Logger
}

func NewAdminCommands(
	uow shared.UnitOfWork,
	notifier NotificationDispatcher,
	clock clock.Clock,
	logger *slog.Logger,
) AdminCommands {
	return &adminCommandsImpl{
		uow:      uow,
		notifier: notifier,
		clock:    clock,
		logger:   logger,
	}
}

func (a *adminCommandsImpl) CompleteManually(ctx context.Context, orderID string, unitID uuid.UUID) (*order.Order, error) {
	o, err := a.uow.Orders().FindByID(ctx, orderID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, errs.Mark(err, ErrOrderNotFound)
		}
		return nil, errs.Mark(err, ErrRepositoryUnavailable)
	}

	now := a.clock.Now()
	var updated *order.Order
	err = a.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		unit, cerr := tx.Inventory().ClaimByID(ctx, unitID, o.ID, o.CustomerEmail, now)
		if cerr != nil {
			return cerr
		}

		completed, terr := tx.Orders().TransitionIfStatus(ctx, o.ID,
			order.StatusPending, order.StatusCompleted,
			shared.OrderPatch{UnitID: &unit.ID, CompletedAt: &now})
		if terr != nil {
			return terr
		}
		updated = completed
		return nil
	})
	if err != nil {
		switch {
		case infra.IsKind(err, infra.KindNotFound):
			return nil, errs.Mark(err, ErrUnitNotFound)
		case infra.IsKind(err, infra.KindConflict):
			// Either the unit is sold elsewhere or a webhook delivery won
			// the completion race first.
			return nil, errs.Mark(err, ErrOrderNotPending)
		default:
			return nil, errs.Mark(err, ErrRepositoryUnavailable)
		}
	}

	a.logger.Info("order completed manually", "order_id", updated.ID, "unit_id", unitID.String())
	if sendErr := a.ResendNotification(ctx, updated.ID); sendErr != nil {
		a.logger.Error("failed to send fulfillment after manual completion",
			"order_id", updated.ID, "error", sendErr.Error())
	}
	return updated, nil
}

func (a *adminCommandsImpl) Cancel(ctx context.Context, orderID, reason string) (*order.Order, error) {
	cancelled, err := a.uow.Orders().TransitionIfStatus(ctx, orderID,
		order.StatusPending, order.StatusCancelled,
		shared.OrderPatch{FailureReason: &reason})
	if err != nil {
		switch {
		case infra.IsKind(err, infra.KindNotFound):
			return nil, errs.Mark(err, ErrOrderNotFound)
		case infra.IsKind(err, infra.KindConflict):
			return nil, errs.Mark(err, ErrOrderNotPending)
		default:
			return nil, errs.Mark(err, ErrRepositoryUnavailable)
		}
	}

	a.logger.Info("order cancelled", "order_id", orderID, "reason", reason)
	return cancelled, nil
}

func (a *adminCommandsImpl) ResendNotification(ctx context.Context, orderID string) error {
	o, err := a.uow.Orders().FindByID(ctx, orderID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return errs.Mark(err, ErrOrderNotFound)
		}
		return errs.Mark(err, ErrRepositoryUnavailable)
	}
	if o.Status != order.StatusCompleted {
		return errs.Mark(errs.Newf("order %s is %s", o.ID, o.Status), ErrOrderNotCompleted)
	}

	unit, err := a.uow.Inventory().FindByOrderID(ctx, o.ID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return errs.Mark(err, ErrUnitNotFound)
		}
		return errs.Mark(err, ErrRepositoryUnavailable)
	}

	customerNotified := a.notifier.SendFulfillment(ctx, o, unit) == nil
	adminNotified := a.notifier.NotifyAdmin(ctx, "order completed", o) == nil

	patch := shared.OrderPatch{CustomerNotified: &customerNotified, AdminNotified: &adminNotified}
	if _, uerr := a.uow.Orders().Update(ctx, o.ID, patch); uerr != nil {
		a.logger.Error("failed to record notification flags", "order_id", o.ID, "error", uerr.Error())
	}

	if !customerNotified {
		return ErrNotificationSend
	}
	return nil
}
