//go:build unit

package payment_test

import (
	"testing"

	"keyshop/internal/domain/payment"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventValidate(t *testing.T) {
	valid := payment.Event{
		OrderID: "ord_1",
		Amount:  1500,
		Status:  payment.StatusCompleted,
	}

	t.Run("valid event", func(t *testing.T) {
		require.NoError(t, valid.Validate())
	})

	cases := []struct {
		name   string
		mutate func(*payment.Event)
		errIs  error
	}{
		{
			name:   "missing order id",
			mutate: func(e *payment.Event) { e.OrderID = " " },
			errIs:  payment.ErrMissingOrderID,
		},
		{
			name:   "zero amount",
			mutate: func(e *payment.Event) { e.Amount = 0 },
			errIs:  payment.ErrMissingAmount,
		},
		{
			name:   "negative amount",
			mutate: func(e *payment.Event) { e.Amount = -1 },
			errIs:  payment.ErrMissingAmount,
		},
		{
			name:   "missing status",
			mutate: func(e *payment.Event) { e.Status = "" },
			errIs:  payment.ErrMissingStatus,
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			ev := valid
			c.mutate(&ev)
			require.ErrorIs(t, ev.Validate(), c.errIs)
		})
	}
}

func TestEventStatusTags(t *testing.T) {
	assert.True(t, payment.Event{Status: payment.StatusCompleted}.IsCompleted())
	assert.True(t, payment.Event{Status: payment.StatusPending}.IsPending())

	// Any other tag is a terminal failure; classification happens upstream.
	declined := payment.Event{Status: "declined"}
	assert.False(t, declined.IsCompleted())
	assert.False(t, declined.IsPending())
}
