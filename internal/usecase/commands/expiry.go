package commands

import (
	"context"
	"log/slog"

	"keyshop/internal/domain/order"
	"keyshop/internal/infra"
	"keyshop/internal/pkg/clock"
	"keyshop/internal/pkg/config"
	"keyshop/internal/usecase/shared"
)

const sweepBatchSize = 500

// ExpirySweeper moves pending orders past their TTL to expired. Each
// transition is a CAS, so a sweep racing a late completion loses cleanly.
type ExpirySweeper interface {
	Sweep(ctx context.Context) (expired int, err error)
}

type expirySweeperImpl struct {
	orders shared.OrderRepository
	clock  clock.Clock
	cfg    config.OrdersConfig
	logger *slog.Logger
}

func NewExpirySweeper(uow shared.UnitOfWork, clock clock.Clock, cfg config.Config, logger *slog.Logger) ExpirySweeper {
	return &expirySweeperImpl{
		orders: uow.Orders(),
		clock:  clock,
		cfg:    cfg.Orders,
		logger: logger,
	}
}

func (e *expirySweeperImpl) Sweep(ctx context.Context) (int, error) {
	before := e.clock.Now().Add(-e.cfg.PendingTTL)
	ids, err := e.orders.ListExpiredPending(ctx, before, sweepBatchSize)
	if err != nil {
		return 0, err
	}

	reason := order.ReasonTimeout.String()
	expired := 0
	for _, id := range ids {
		_, terr := e.orders.TransitionIfStatus(ctx, id,
			order.StatusPending, order.StatusExpired,
			shared.OrderPatch{FailureReason: &reason})
		if terr != nil {
			// A concurrent completion between listing and transition is fine.
			if infra.IsKind(terr, infra.KindConflict) || infra.IsKind(terr, infra.KindNotFound) {
				continue
			}
			return expired, terr
		}
		e.logger.Info("order expired", "order_id", id, "ttl", e.cfg.PendingTTL.String())
		expired++
	}
	return expired, nil
}
