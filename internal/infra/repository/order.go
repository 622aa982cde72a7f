package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"keyshop/internal/domain/order"
	"keyshop/internal/infra"
	"keyshop/internal/infra/db"
	"keyshop/internal/usecase/shared"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const pgErrCodeUniqueViolation = "23505"

const orderColumns = `id, customer_email, product_id, amount, payment_method, status,
	unit_id, failure_reason, customer_notified, admin_notified,
	last_event_at, created_at, updated_at, completed_at, failed_at`

type OrderRepository struct {
	db db.DBTX
}

func NewOrderRepository(dbtx db.DBTX) *OrderRepository {
	return &OrderRepository{db: dbtx}
}

func (r *OrderRepository) FindByID(ctx context.Context, id string) (*order.Order, error) {
	row := r.db.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)

	o, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, infra.WrapRepoErr("order not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find order by id", err)
	}
	return o, nil
}

func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO orders (id, customer_email, product_id, amount, payment_method, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $7)`,
		o.ID, o.CustomerEmail, o.ProductID, o.Amount, o.PaymentMethod, o.Status.String(), o.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgErrCodeUniqueViolation {
			return infra.WrapRepoErr("order id already exists", err, infra.KindDuplicateKey)
		}
		return infra.WrapRepoErr("failed to create order", err)
	}
	return nil
}

func (r *OrderRepository) Update(ctx context.Context, id string, patch shared.OrderPatch) (*order.Order, error) {
	sets, args := patchClauses(patch, 2)
	query := fmt.Sprintf(
		`UPDATE orders SET %s WHERE id = $1 RETURNING %s`,
		strings.Join(sets, ", "), orderColumns,
	)
	args = append([]any{id}, args...)

	o, err := scanOrder(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, infra.WrapRepoErr("order not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to update order", err)
	}
	return o, nil
}

// TransitionIfStatus is the compare-and-swap primitive: the status change and
// patch apply only when the current status still equals expected.
func (r *OrderRepository) TransitionIfStatus(ctx context.Context, id string, expected, next order.Status, patch shared.OrderPatch) (*order.Order, error) {
	sets, args := patchClauses(patch, 4)
	sets = append([]string{"status = $3"}, sets...)
	query := fmt.Sprintf(
		`UPDATE orders SET %s WHERE id = $1 AND status = $2 RETURNING %s`,
		strings.Join(sets, ", "), orderColumns,
	)
	args = append([]any{id, expected.String(), next.String()}, args...)

	o, err := scanOrder(r.db.QueryRow(ctx, query, args...))
	if err == nil {
		return o, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, infra.WrapRepoErr("failed to transition order", err)
	}

	// No row matched: either the order is gone or another path won the race.
	var current string
	scanErr := r.db.QueryRow(ctx, `SELECT status FROM orders WHERE id = $1`, id).Scan(&current)
	if scanErr != nil {
		if errors.Is(scanErr, pgx.ErrNoRows) {
			return nil, infra.WrapRepoErr("order not found", scanErr, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to inspect order status", scanErr)
	}
	return nil, infra.WrapRepoErr(
		fmt.Sprintf("order status is %q, expected %q", current, expected),
		err, infra.KindConflict,
	)
}

func (r *OrderRepository) ListExpiredPending(ctx context.Context, before time.Time, limit int32) ([]string, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id FROM orders
		WHERE status = 'pending' AND created_at < $1
		ORDER BY created_at
		LIMIT $2`,
		before, limit,
	)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list expired pending orders", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, infra.WrapRepoErr("failed to scan order id", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to read expired pending orders", err)
	}
	return ids, nil
}

func patchClauses(patch shared.OrderPatch, nextArg int) ([]string, []any) {
	sets := []string{"updated_at = now()"}
	var args []any

	add := func(column string, value any) {
		sets = append(sets, fmt.Sprintf("%s = $%d", column, nextArg))
		args = append(args, value)
		nextArg++
	}

	if patch.PaymentMethod != nil {
		add("payment_method", *patch.PaymentMethod)
	}
	if patch.UnitID != nil {
		add("unit_id", *patch.UnitID)
	}
	if patch.FailureReason != nil {
		add("failure_reason", *patch.FailureReason)
	}
	if patch.CustomerNotified != nil {
		add("customer_notified", *patch.CustomerNotified)
	}
	if patch.AdminNotified != nil {
		add("admin_notified", *patch.AdminNotified)
	}
	if patch.LastEventAt != nil {
		add("last_event_at", *patch.LastEventAt)
	}
	if patch.CompletedAt != nil {
		add("completed_at", *patch.CompletedAt)
	}
	if patch.FailedAt != nil {
		add("failed_at", *patch.FailedAt)
	}

	return sets, args
}

func scanOrder(row pgx.Row) (*order.Order, error) {
	var o order.Order
	var status string
	err := row.Scan(
		&o.ID, &o.CustomerEmail, &o.ProductID, &o.Amount, &o.PaymentMethod, &status,
		&o.UnitID, &o.FailureReason, &o.CustomerNotified, &o.AdminNotified,
		&o.LastEventAt, &o.CreatedAt, &o.UpdatedAt, &o.CompletedAt, &o.FailedAt,
	)
	if err != nil {
		return nil, err
	}
	o.Status = order.Status(status)
	return &o, nil
}
