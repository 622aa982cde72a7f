//go:build unit

package commands_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"keyshop/internal/domain/order"
	"keyshop/internal/pkg/clock"
	"keyshop/internal/pkg/config"
	"keyshop/internal/usecase/commands"
	"keyshop/tests/common/builder"
	"keyshop/tests/common/fake"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSweeperFixture(t *testing.T) (*fake.Store, *clock.MockClock, commands.ExpirySweeper) {
	t.Helper()
	store := fake.NewStore()
	clk := clock.NewMockClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return store, clk, commands.NewExpirySweeper(store, clk, config.NewTestConfig(), logger)
}

func TestSweep(t *testing.T) {
	ttl := config.NewTestConfig().Orders.PendingTTL

	t.Run("expires only stale pending orders", func(t *testing.T) {
		store, clk, sweeper := newSweeperFixture(t)
		now := clk.Now()

		stale := builder.NewOrderBuilder().WithID("ord_stale").WithCreatedAt(now.Add(-ttl - time.Minute)).Build()
		fresh := builder.NewOrderBuilder().WithID("ord_fresh").WithCreatedAt(now.Add(-time.Minute)).Build()
		done := builder.NewOrderBuilder().WithID("ord_done").WithCreatedAt(now.Add(-2 * ttl)).WithStatus(order.StatusCompleted).Build()
		store.SeedOrder(stale)
		store.SeedOrder(fresh)
		store.SeedOrder(done)

		expired, err := sweeper.Sweep(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 1, expired)

		got := store.Order("ord_stale")
		assert.Equal(t, order.StatusExpired, got.Status)
		require.NotNil(t, got.FailureReason)
		assert.Equal(t, order.ReasonTimeout.String(), *got.FailureReason)

		assert.Equal(t, order.StatusPending, store.Order("ord_fresh").Status)
		assert.Equal(t, order.StatusCompleted, store.Order("ord_done").Status)
	})

	t.Run("empty sweep", func(t *testing.T) {
		_, _, sweeper := newSweeperFixture(t)
		expired, err := sweeper.Sweep(context.Background())
		require.NoError(t, err)
		assert.Zero(t, expired)
	})

	t.Run("rerun after expiry is a no-op", func(t *testing.T) {
		store, clk, sweeper := newSweeperFixture(t)
		store.SeedOrder(builder.NewOrderBuilder().WithCreatedAt(clk.Now().Add(-2 * ttl)).Build())

		first, err := sweeper.Sweep(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 1, first)

		second, err := sweeper.Sweep(context.Background())
		require.NoError(t, err)
		assert.Zero(t, second)
	})

	t.Run("sweeps many stale orders in one pass", func(t *testing.T) {
		store, clk, sweeper := newSweeperFixture(t)
		for i := range 20 {
			store.SeedOrder(builder.NewOrderBuilder().
				WithID(fmt.Sprintf("ord_stale_%02d", i)).
				WithCreatedAt(clk.Now().Add(-2 * ttl)).
				Build())
		}

		expired, err := sweeper.Sweep(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 20, expired)
	})
}
