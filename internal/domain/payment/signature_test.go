//go:build unit

package payment_test

import (
	"testing"

	"keyshop/internal/domain/payment"

	"github.com/stretchr/testify/assert"
)

func TestVerifySignature(t *testing.T) {
	secret := "whsec_test"
	body := []byte(`{"order_id":"ord_1","amount":1500,"status":"completed"}`)

	t.Run("accepts own signature", func(t *testing.T) {
		sig := payment.Sign(secret, body)
		assert.True(t, payment.VerifySignature(secret, body, sig))
	})

	t.Run("rejects tampered body", func(t *testing.T) {
		sig := payment.Sign(secret, body)
		tampered := []byte(`{"order_id":"ord_1","amount":9999,"status":"completed"}`)
		assert.False(t, payment.VerifySignature(secret, tampered, sig))
	})

	t.Run("rejects wrong secret", func(t *testing.T) {
		sig := payment.Sign("whsec_other", body)
		assert.False(t, payment.VerifySignature(secret, body, sig))
	})

	t.Run("rejects empty and malformed signatures", func(t *testing.T) {
		assert.False(t, payment.VerifySignature(secret, body, ""))
		assert.False(t, payment.VerifySignature(secret, body, "not-hex"))
	})
}
