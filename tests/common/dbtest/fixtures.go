//go:build unit || e2e

package dbtest

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"keyshop/internal/domain/inventory"
	"keyshop/internal/domain/order"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
)

// CreateTestOrder inserts a pending order and returns its id.
func CreateTestOrder(t *testing.T, pool *pgxpool.Pool, id, productID string, amount int64) string {
	t.Helper()

	_, err := pool.Exec(context.Background(), `
		INSERT INTO orders (id, customer_email, product_id, amount, status)
		VALUES ($1, $2, $3, $4, $5)`,
		id, "buyer@example.com", productID, amount, order.StatusPending.String())
	require.NoError(t, err)
	return id
}

// CreateTestUnit inserts an available inventory unit and returns its id.
func CreateTestUnit(t *testing.T, pool *pgxpool.Pool, productID string) uuid.UUID {
	t.Helper()

	unitID := uuid.New()
	credentials, err := json.Marshal(map[string]string{"key": "KEY-" + unitID.String()[:8]})
	require.NoError(t, err)

	_, err = pool.Exec(context.Background(), `
		INSERT INTO inventory_units (id, product_id, credentials, status)
		VALUES ($1, $2, $3, $4)`,
		unitID, productID, credentials, inventory.UnitAvailable.String())
	require.NoError(t, err)
	return unitID
}

// FetchOrderStatus reads the current status straight from the table.
func FetchOrderStatus(t *testing.T, pool *pgxpool.Pool, orderID string) string {
	t.Helper()

	var status string
	err := pool.QueryRow(context.Background(),
		"SELECT status FROM orders WHERE id = $1", orderID).Scan(&status)
	require.NoError(t, err)
	return status
}

// CountSoldUnits counts units sold for a product.
func CountSoldUnits(t *testing.T, pool *pgxpool.Pool, productID string) int64 {
	t.Helper()

	var n int64
	err := pool.QueryRow(context.Background(),
		"SELECT COUNT(*) FROM inventory_units WHERE product_id = $1 AND status = 'sold'", productID).Scan(&n)
	require.NoError(t, err)
	return n
}

// ResetDB truncates all fulfillment tables between subtests.
func ResetDB(pool *pgxpool.Pool) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := pool.Exec(ctx, "TRUNCATE TABLE orders, inventory_units")
	return err
}
