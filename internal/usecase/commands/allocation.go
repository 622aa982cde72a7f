package commands

import (
	"context"

	"keyshop/internal/domain/inventory"
	"keyshop/internal/infra"
	"keyshop/internal/pkg/clock"
	"keyshop/internal/pkg/errs"
	"keyshop/internal/usecase/shared"
)

var ErrOutOfStock = errs.New("product out of stock")

// Allocator claims exactly one inventory unit for an order. Re-invoking for
// an order that already holds a unit returns that unit unchanged instead of
// claiming a second one.
type Allocator interface {
	Allocate(ctx context.Context, tx shared.Tx, productID, orderID, customerEmail string) (*inventory.Unit, error)
}

type allocatorImpl struct {
	clock clock.Clock
}

func NewAllocator(clock clock.Clock) Allocator {
	return &allocatorImpl{clock: clock}
}

func (a *allocatorImpl) Allocate(ctx context.Context, tx shared.Tx, productID, orderID, customerEmail string) (*inventory.Unit, error) {
	existing, err := tx.Inventory().FindByOrderID(ctx, orderID)
	if err == nil {
		return existing, nil
	}
	if !infra.IsKind(err, infra.KindNotFound) {
		return nil, err
	}

	unit, err := tx.Inventory().ClaimAvailable(ctx, productID, orderID, customerEmail, a.clock.Now())
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, errs.Mark(err, ErrOutOfStock)
		}
		return nil, err
	}
	return unit, nil
}
