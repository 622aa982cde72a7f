//go:build unit

package commands_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"keyshop/internal/domain/inventory"
	"keyshop/internal/domain/order"
	"keyshop/internal/domain/payment"
	"keyshop/internal/pkg/clock"
	"keyshop/internal/pkg/config"
	"keyshop/internal/usecase/commands"
	"keyshop/tests/common/builder"
	"keyshop/tests/common/fake"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newWebhookFixture(t *testing.T) (*fake.Store, *fake.Notifier, *clock.MockClock, commands.WebhookCommands) {
	t.Helper()
	store := fake.NewStore()
	notifier := fake.NewNotifier()
	clk := clock.NewMockClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	cmds := commands.NewWebhookCommands(
		store,
		commands.NewAllocator(clk),
		notifier,
		clk,
		config.NewTestConfig(),
		logger,
	)
	return store, notifier, clk, cmds
}

func TestHandlePaymentEvent_Completed(t *testing.T) {
	t.Run("completes pending order and binds one unit", func(t *testing.T) {
		store, notifier, clk, cmds := newWebhookFixture(t)
		o := builder.NewOrderBuilder().Build()
		u := builder.NewUnitBuilder().WithProductID(o.ProductID).Build()
		store.SeedOrder(o)
		store.SeedUnit(u)

		ack, err := cmds.HandlePaymentEvent(context.Background(), builder.NewEventBuilder().ForOrder(o.ID, o.Amount).Build())
		require.NoError(t, err)
		require.NotNil(t, ack)

		assert.True(t, ack.Received)
		assert.Equal(t, commands.OutcomeProcessed, ack.Outcome)
		assert.Equal(t, order.StatusCompleted, ack.OrderStatus)

		stored := store.Order(o.ID)
		require.NotNil(t, stored)
		assert.Equal(t, order.StatusCompleted, stored.Status)
		require.NotNil(t, stored.UnitID)
		assert.Equal(t, u.ID, *stored.UnitID)
		require.NotNil(t, stored.CompletedAt)
		assert.Equal(t, clk.Now(), *stored.CompletedAt)
		assert.True(t, stored.CustomerNotified)
		assert.True(t, stored.AdminNotified)

		soldUnit := store.Unit(u.ID)
		require.NotNil(t, soldUnit)
		assert.Equal(t, inventory.UnitSold, soldUnit.Status)
		require.NotNil(t, soldUnit.OrderID)
		assert.Equal(t, o.ID, *soldUnit.OrderID)

		assert.Equal(t, []string{o.ID}, notifier.Fulfillments())
	})

	t.Run("uses event completion time when present", func(t *testing.T) {
		store, _, _, cmds := newWebhookFixture(t)
		o := builder.NewOrderBuilder().Build()
		store.SeedOrder(o)
		store.SeedUnit(builder.NewUnitBuilder().WithProductID(o.ProductID).Build())

		gatewayTime := time.Date(2026, 3, 1, 11, 59, 30, 0, time.UTC)
		ev := builder.NewEventBuilder().ForOrder(o.ID, o.Amount).Build()
		ev.CompletedAt = &gatewayTime

		_, err := cmds.HandlePaymentEvent(context.Background(), ev)
		require.NoError(t, err)

		stored := store.Order(o.ID)
		require.NotNil(t, stored.CompletedAt)
		assert.Equal(t, gatewayTime, *stored.CompletedAt)
	})

	t.Run("duplicate delivery is acknowledged without a second unit", func(t *testing.T) {
		store, notifier, _, cmds := newWebhookFixture(t)
		o := builder.NewOrderBuilder().Build()
		store.SeedOrder(o)
		store.SeedUnit(builder.NewUnitBuilder().WithProductID(o.ProductID).Build())
		store.SeedUnit(builder.NewUnitBuilder().WithProductID(o.ProductID).Build())

		ev := builder.NewEventBuilder().ForOrder(o.ID, o.Amount).Build()

		first, err := cmds.HandlePaymentEvent(context.Background(), ev)
		require.NoError(t, err)
		assert.Equal(t, commands.OutcomeProcessed, first.Outcome)

		second, err := cmds.HandlePaymentEvent(context.Background(), ev)
		require.NoError(t, err)
		assert.Equal(t, commands.OutcomeAlreadyProcessed, second.Outcome)
		assert.Equal(t, order.StatusCompleted, second.OrderStatus)

		inv := store.Inventory()
		available, err := inv.CountAvailable(context.Background(), o.ProductID)
		require.NoError(t, err)
		assert.Equal(t, int64(1), available, "second delivery must not claim another unit")
		assert.Equal(t, []string{o.ID}, notifier.Fulfillments(), "fulfillment sent exactly once")
	})

	t.Run("fails the order when the product is drained", func(t *testing.T) {
		store, notifier, _, cmds := newWebhookFixture(t)
		o := builder.NewOrderBuilder().Build()
		store.SeedOrder(o)

		ack, err := cmds.HandlePaymentEvent(context.Background(), builder.NewEventBuilder().ForOrder(o.ID, o.Amount).Build())
		require.NoError(t, err)
		assert.Equal(t, commands.OutcomeProcessed, ack.Outcome)
		assert.Equal(t, order.StatusFailed, ack.OrderStatus)

		stored := store.Order(o.ID)
		assert.Equal(t, order.StatusFailed, stored.Status)
		require.NotNil(t, stored.FailureReason)
		assert.Equal(t, order.ReasonOutOfStock.String(), *stored.FailureReason)
		assert.Nil(t, stored.UnitID)

		assert.Empty(t, notifier.Fulfillments())
		assert.NotEmpty(t, notifier.AdminNotes(), "operators are told about the stockout")
	})

	t.Run("concurrent deliveries never double-allocate", func(t *testing.T) {
		store, _, _, cmds := newWebhookFixture(t)

		const orders = 5
		const units = 3
		productID := "prod-contended"

		orderIDs := make([]string, orders)
		for i := range orders {
			o := builder.NewOrderBuilder().
				WithID(fmt.Sprintf("ord_race_%d", i)).
				WithProductID(productID).
				Build()
			store.SeedOrder(o)
			orderIDs[i] = o.ID
		}
		for range units {
			store.SeedUnit(builder.NewUnitBuilder().WithProductID(productID).Build())
		}

		var wg sync.WaitGroup
		for _, id := range orderIDs {
			wg.Add(1)
			go func() {
				defer wg.Done()
				ev := builder.NewEventBuilder().ForOrder(id, 2999).Build()
				_, err := cmds.HandlePaymentEvent(context.Background(), ev)
				assert.NoError(t, err)
			}()
		}
		wg.Wait()

		completed := 0
		failed := 0
		seenUnits := make(map[string]bool)
		for _, id := range orderIDs {
			o := store.Order(id)
			switch o.Status {
			case order.StatusCompleted:
				completed++
				require.NotNil(t, o.UnitID)
				assert.False(t, seenUnits[o.UnitID.String()], "unit %s sold twice", o.UnitID)
				seenUnits[o.UnitID.String()] = true
			case order.StatusFailed:
				failed++
				require.NotNil(t, o.FailureReason)
				assert.Equal(t, order.ReasonOutOfStock.String(), *o.FailureReason)
			default:
				t.Fatalf("order %s left in status %s", id, o.Status)
			}
		}
		assert.Equal(t, units, completed)
		assert.Equal(t, orders-units, failed)
	})

	t.Run("notification failure does not undo completion", func(t *testing.T) {
		store, notifier, _, cmds := newWebhookFixture(t)
		notifier.FailSends(true)

		o := builder.NewOrderBuilder().Build()
		store.SeedOrder(o)
		store.SeedUnit(builder.NewUnitBuilder().WithProductID(o.ProductID).Build())

		ack, err := cmds.HandlePaymentEvent(context.Background(), builder.NewEventBuilder().ForOrder(o.ID, o.Amount).Build())
		require.NoError(t, err)
		assert.Equal(t, commands.OutcomeProcessed, ack.Outcome)

		stored := store.Order(o.ID)
		assert.Equal(t, order.StatusCompleted, stored.Status)
		assert.False(t, stored.CustomerNotified)
		assert.False(t, stored.AdminNotified)
	})
}

func TestHandlePaymentEvent_NonCompleted(t *testing.T) {
	t.Run("pending event touches the order and keeps it pending", func(t *testing.T) {
		store, _, clk, cmds := newWebhookFixture(t)
		o := builder.NewOrderBuilder().Build()
		store.SeedOrder(o)

		ev := builder.NewEventBuilder().ForOrder(o.ID, o.Amount).WithStatus(payment.StatusPending).Build()
		ack, err := cmds.HandlePaymentEvent(context.Background(), ev)
		require.NoError(t, err)
		assert.Equal(t, commands.OutcomeProcessed, ack.Outcome)
		assert.Equal(t, order.StatusPending, ack.OrderStatus)

		stored := store.Order(o.ID)
		assert.Equal(t, order.StatusPending, stored.Status)
		require.NotNil(t, stored.LastEventAt)
		assert.Equal(t, clk.Now(), *stored.LastEventAt)
	})

	t.Run("failure tag is recorded verbatim as the reason", func(t *testing.T) {
		store, _, _, cmds := newWebhookFixture(t)
		o := builder.NewOrderBuilder().Build()
		store.SeedOrder(o)

		ev := builder.NewEventBuilder().ForOrder(o.ID, o.Amount).WithStatus("declined").Build()
		ack, err := cmds.HandlePaymentEvent(context.Background(), ev)
		require.NoError(t, err)
		assert.Equal(t, commands.OutcomeProcessed, ack.Outcome)

		stored := store.Order(o.ID)
		assert.Equal(t, order.StatusFailed, stored.Status)
		require.NotNil(t, stored.FailureReason)
		assert.Equal(t, "declined", *stored.FailureReason)
	})

	t.Run("terminal orders are never touched again", func(t *testing.T) {
		for _, status := range []order.Status{
			order.StatusCompleted,
			order.StatusFailed,
			order.StatusCancelled,
			order.StatusExpired,
		} {
			t.Run(status.String(), func(t *testing.T) {
				store, notifier, _, cmds := newWebhookFixture(t)
				o := builder.NewOrderBuilder().WithStatus(status).Build()
				store.SeedOrder(o)
				store.SeedUnit(builder.NewUnitBuilder().WithProductID(o.ProductID).Build())

				ack, err := cmds.HandlePaymentEvent(context.Background(), builder.NewEventBuilder().ForOrder(o.ID, o.Amount).Build())
				require.NoError(t, err)
				assert.Equal(t, commands.OutcomeAlreadyProcessed, ack.Outcome)
				assert.Equal(t, status, ack.OrderStatus)

				stored := store.Order(o.ID)
				assert.Equal(t, status, stored.Status)
				assert.Empty(t, notifier.Fulfillments())
			})
		}
	})
}

func TestHandlePaymentEvent_Lookup(t *testing.T) {
	t.Run("order appearing after a retry is processed normally", func(t *testing.T) {
		store, _, _, cmds := newWebhookFixture(t)
		o := builder.NewOrderBuilder().Build()
		store.SeedOrder(o)
		store.SeedUnit(builder.NewUnitBuilder().WithProductID(o.ProductID).Build())
		// First lookup misses; the bounded retry finds the order.
		store.HideOrderFor(o.ID, 1)

		ack, err := cmds.HandlePaymentEvent(context.Background(), builder.NewEventBuilder().ForOrder(o.ID, o.Amount).Build())
		require.NoError(t, err)
		assert.Equal(t, commands.OutcomeProcessed, ack.Outcome)
		assert.Equal(t, order.StatusCompleted, store.Order(o.ID).Status)
	})

	t.Run("order missing after all retries is acknowledged with a warning", func(t *testing.T) {
		_, _, _, cmds := newWebhookFixture(t)

		ack, err := cmds.HandlePaymentEvent(context.Background(), builder.NewEventBuilder().WithOrderID("ord_ghost").Build())
		require.NoError(t, err)
		assert.True(t, ack.Received)
		assert.Equal(t, commands.OutcomeOrderNotFound, ack.Outcome)
		assert.Equal(t, "ord_ghost", ack.OrderID)
		assert.NotEmpty(t, ack.Warning)
	})

	t.Run("infrastructure failure surfaces as repository unavailable", func(t *testing.T) {
		store, _, _, cmds := newWebhookFixture(t)
		o := builder.NewOrderBuilder().Build()
		store.SeedOrder(o)
		store.FailNextFinds(1)

		_, err := cmds.HandlePaymentEvent(context.Background(), builder.NewEventBuilder().ForOrder(o.ID, o.Amount).Build())
		require.ErrorIs(t, err, commands.ErrRepositoryUnavailable)
	})
}

func TestHandlePaymentEvent_Rejections(t *testing.T) {
	t.Run("malformed events", func(t *testing.T) {
		_, _, _, cmds := newWebhookFixture(t)

		cases := []struct {
			name   string
			mutate func(*builder.EventBuilder)
		}{
			{name: "missing order id", mutate: func(b *builder.EventBuilder) { b.OrderID = "" }},
			{name: "missing amount", mutate: func(b *builder.EventBuilder) { b.Amount = 0 }},
			{name: "missing status", mutate: func(b *builder.EventBuilder) { b.Status = "" }},
		}
		for _, c := range cases {
			t.Run(c.name, func(t *testing.T) {
				ev := builder.NewEventBuilder().With(c.mutate).Build()
				_, err := cmds.HandlePaymentEvent(context.Background(), ev)
				require.ErrorIs(t, err, commands.ErrMalformedEvent)
			})
		}
	})

	t.Run("amount mismatch leaves the order untouched", func(t *testing.T) {
		store, notifier, _, cmds := newWebhookFixture(t)
		o := builder.NewOrderBuilder().WithAmount(2999).Build()
		store.SeedOrder(o)
		store.SeedUnit(builder.NewUnitBuilder().WithProductID(o.ProductID).Build())

		ev := builder.NewEventBuilder().ForOrder(o.ID, 100).Build()
		_, err := cmds.HandlePaymentEvent(context.Background(), ev)
		require.ErrorIs(t, err, commands.ErrAmountMismatch)

		stored := store.Order(o.ID)
		assert.Equal(t, order.StatusPending, stored.Status)
		assert.Nil(t, stored.UnitID)
		assert.Empty(t, notifier.Fulfillments())

		available, cerr := store.Inventory().CountAvailable(context.Background(), o.ProductID)
		require.NoError(t, cerr)
		assert.Equal(t, int64(1), available)
	})
}
