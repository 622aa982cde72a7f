//go:build unit

package commands_test

import (
	"context"
	"testing"
	"time"

	"keyshop/internal/domain/inventory"
	"keyshop/internal/pkg/clock"
	"keyshop/internal/usecase/commands"
	"keyshop/internal/usecase/shared"
	"keyshop/tests/common/builder"
	"keyshop/tests/common/fake"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllocate(t *testing.T) {
	clk := clock.NewMockClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	allocator := commands.NewAllocator(clk)

	allocate := func(store *fake.Store, productID, orderID string) (*inventory.Unit, error) {
		var unit *inventory.Unit
		err := store.Within(context.Background(), func(ctx context.Context, tx shared.Tx) error {
			u, aerr := allocator.Allocate(ctx, tx, productID, orderID, "buyer@example.com")
			unit = u
			return aerr
		})
		return unit, err
	}

	t.Run("claims one available unit and binds it", func(t *testing.T) {
		store := fake.NewStore()
		seeded := builder.NewUnitBuilder().Build()
		store.SeedUnit(seeded)

		unit, err := allocate(store, seeded.ProductID, "ord_1")
		require.NoError(t, err)

		assert.Equal(t, seeded.ID, unit.ID)
		assert.Equal(t, inventory.UnitSold, unit.Status)
		require.NotNil(t, unit.OrderID)
		assert.Equal(t, "ord_1", *unit.OrderID)
		require.NotNil(t, unit.ClaimedAt)
		assert.Equal(t, clk.Now(), *unit.ClaimedAt)
	})

	t.Run("repeated allocation returns the already bound unit", func(t *testing.T) {
		store := fake.NewStore()
		store.SeedUnit(builder.NewUnitBuilder().Build())
		store.SeedUnit(builder.NewUnitBuilder().Build())

		first, err := allocate(store, "prod-steam-key", "ord_1")
		require.NoError(t, err)

		second, err := allocate(store, "prod-steam-key", "ord_1")
		require.NoError(t, err)
		assert.Equal(t, first.ID, second.ID)

		available, err := store.Inventory().CountAvailable(context.Background(), "prod-steam-key")
		require.NoError(t, err)
		assert.Equal(t, int64(1), available)
	})

	t.Run("drained product reports out of stock", func(t *testing.T) {
		store := fake.NewStore()
		store.SeedUnit(builder.NewUnitBuilder().AsSoldTo("ord_other").Build())

		_, err := allocate(store, "prod-steam-key", "ord_1")
		require.ErrorIs(t, err, commands.ErrOutOfStock)
	})
}
