package bootstrap

import (
	"context"
	"log/slog"
	"time"

	"keyshop/internal/pkg/config"
	"keyshop/internal/usecase/commands"

	"go.uber.org/fx"
)

// SchedulerModule owns the background loops: the periodic stock cache
// reconciliation and the pending-order expiry sweep.
var SchedulerModule = fx.Module("scheduler",
	fx.Invoke(
		startStockSyncLoop,
		startExpirySweepLoop,
	),
)

func startStockSyncLoop(lc fx.Lifecycle, stockSync commands.StockSync, cfg config.Config, logger *slog.Logger) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			go func() {
				defer close(done)
				if cfg.StockSync.RunOnStartup {
					runStockSync(ctx, stockSync, logger)
				}
				ticker := time.NewTicker(cfg.StockSync.Interval)
				defer ticker.Stop()
				for {
					select {
					case <-ctx.Done():
						return
					case <-ticker.C:
						runStockSync(ctx, stockSync, logger)
					}
				}
			}()
			return nil
		},
		OnStop: func(_ context.Context) error {
			cancel()
			<-done
			return nil
		},
	})
}

func runStockSync(ctx context.Context, stockSync commands.StockSync, logger *slog.Logger) {
	summary, err := stockSync.Reconcile(ctx)
	if err != nil {
		logger.Error("Stock reconciliation run failed", "error", err)
		return
	}
	logger.Info("Stock reconciliation run finished",
		"checked", summary.Checked,
		"updated", summary.Updated,
	)
}

func startExpirySweepLoop(lc fx.Lifecycle, sweeper commands.ExpirySweeper, cfg config.Config, logger *slog.Logger) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			go func() {
				defer close(done)
				ticker := time.NewTicker(cfg.Orders.SweepInterval)
				defer ticker.Stop()
				for {
					select {
					case <-ctx.Done():
						return
					case <-ticker.C:
						expired, err := sweeper.Sweep(ctx)
						if err != nil {
							logger.Error("Expiry sweep failed", "error", err)
							continue
						}
						if expired > 0 {
							logger.Info("Expired stale pending orders", "count", expired)
						}
					}
				}
			}()
			return nil
		},
		OnStop: func(_ context.Context) error {
			cancel()
			<-done
			return nil
		},
	})
}
