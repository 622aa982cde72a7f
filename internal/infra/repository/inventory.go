package repository

import (
	"context"
	"errors"
	"time"

	"keyshop/internal/domain/inventory"
	"keyshop/internal/infra"
	"keyshop/internal/infra/db"
	"keyshop/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const unitColumns = `id, product_id, credentials, status, order_id, customer_email, claimed_at, created_at`

type InventoryRepository struct {
	db db.DBTX
}

func NewInventoryRepository(dbtx db.DBTX) *InventoryRepository {
	return &InventoryRepository{db: dbtx}
}

func (r *InventoryRepository) FindByOrderID(ctx context.Context, orderID string) (*inventory.Unit, error) {
	row := r.db.QueryRow(ctx, `SELECT `+unitColumns+` FROM inventory_units WHERE order_id = $1`, orderID)

	u, err := scanUnit(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, infra.WrapRepoErr("no unit bound to order", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find unit by order id", err)
	}
	return u, nil
}

// ClaimAvailable picks one available unit and marks it sold in a single
// statement. SKIP LOCKED makes concurrent claims for the last unit resolve to
// exactly one winner; the losers see NOT_FOUND (out of stock).
func (r *InventoryRepository) ClaimAvailable(ctx context.Context, productID, orderID, customerEmail string, now time.Time) (*inventory.Unit, error) {
	row := r.db.QueryRow(ctx, `
		UPDATE inventory_units
		SET status = 'sold', order_id = $2, customer_email = $3, claimed_at = $4
		WHERE id = (
			SELECT id FROM inventory_units
			WHERE product_id = $1 AND status = 'available'
			ORDER BY created_at
			LIMIT 1
			FOR UPDATE SKIP LOCKED
		)
		RETURNING `+unitColumns,
		productID, orderID, customerEmail, now,
	)

	u, err := scanUnit(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, infra.WrapRepoErr("no available unit for product", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to claim unit", err)
	}
	return u, nil
}

func (r *InventoryRepository) ClaimByID(ctx context.Context, unitID uuid.UUID, orderID, customerEmail string, now time.Time) (*inventory.Unit, error) {
	row := r.db.QueryRow(ctx, `
		UPDATE inventory_units
		SET status = 'sold', order_id = $2, customer_email = $3, claimed_at = $4
		WHERE id = $1 AND status = 'available'
		RETURNING `+unitColumns,
		unitID, orderID, customerEmail, now,
	)

	u, err := scanUnit(row)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, infra.WrapRepoErr("failed to claim unit by id", err)
	}

	// Distinguish a retried bind of the same unit from a genuinely taken one.
	existing, findErr := scanUnit(r.db.QueryRow(ctx,
		`SELECT `+unitColumns+` FROM inventory_units WHERE id = $1`, unitID))
	if findErr != nil {
		if errors.Is(findErr, pgx.ErrNoRows) {
			return nil, infra.WrapRepoErr("unit not found", findErr, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to inspect unit", findErr)
	}
	if existing.BoundTo(orderID) {
		return existing, nil
	}
	return nil, infra.WrapRepoErr("unit is already sold", err, infra.KindConflict)
}

func (r *InventoryRepository) CountAvailable(ctx context.Context, productID string) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM inventory_units WHERE product_id = $1 AND status = 'available'`,
		productID,
	).Scan(&count)
	if err != nil {
		return 0, infra.WrapRepoErr("failed to count available units", err)
	}
	return count, nil
}

// AvailableByProduct returns the authoritative available counts. Products
// whose units are all sold appear with a zero count.
func (r *InventoryRepository) AvailableByProduct(ctx context.Context) (map[string]int64, error) {
	rows, err := r.db.Query(ctx, `
		SELECT product_id, COUNT(*) FILTER (WHERE status = 'available')
		FROM inventory_units
		GROUP BY product_id`,
	)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to count units by product", err)
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var productID string
		var count int64
		if err := rows.Scan(&productID, &count); err != nil {
			return nil, infra.WrapRepoErr("failed to scan product count", err)
		}
		counts[productID] = count
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to read product counts", err)
	}
	return counts, nil
}

func (r *InventoryRepository) SoldOrphans(ctx context.Context) ([]shared.OrphanedUnit, error) {
	rows, err := r.db.Query(ctx, `
		SELECT u.id, u.product_id, u.order_id, o.status
		FROM inventory_units u
		LEFT JOIN orders o ON o.id = u.order_id
		WHERE u.status = 'sold' AND (o.id IS NULL OR o.status <> 'completed')`,
	)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list orphaned units", err)
	}
	defer rows.Close()

	var orphans []shared.OrphanedUnit
	for rows.Next() {
		var o shared.OrphanedUnit
		if err := rows.Scan(&o.UnitID, &o.ProductID, &o.OrderID, &o.OrderStatus); err != nil {
			return nil, infra.WrapRepoErr("failed to scan orphaned unit", err)
		}
		orphans = append(orphans, o)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to read orphaned units", err)
	}
	return orphans, nil
}

func scanUnit(row pgx.Row) (*inventory.Unit, error) {
	var u inventory.Unit
	var status string
	var credentials []byte
	err := row.Scan(
		&u.ID, &u.ProductID, &credentials, &status,
		&u.OrderID, &u.CustomerEmail, &u.ClaimedAt, &u.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	u.Status = inventory.UnitStatus(status)
	u.Credentials = credentials
	return &u, nil
}
