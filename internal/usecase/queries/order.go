package queries

import (
	"context"
	"time"

	"keyshop/internal/domain/order"
	"keyshop/internal/infra"
	"keyshop/internal/pkg/errs"
	"keyshop/internal/usecase/shared"

	"github.com/google/uuid"
)

var ErrOrderNotFound = errs.New("order not found")

// Read model (DTO for read side)
type OrderView struct {
	ID               string     `json:"id"`
	CustomerEmail    string     `json:"customer_email"`
	ProductID        string     `json:"product_id"`
	Amount           int64      `json:"amount"`
	PaymentMethod    string     `json:"payment_method,omitempty"`
	Status           string     `json:"status"`
	UnitID           *uuid.UUID `json:"unit_id,omitempty"`
	FailureReason    *string    `json:"failure_reason,omitempty"`
	CustomerNotified bool       `json:"customer_notified"`
	AdminNotified    bool       `json:"admin_notified"`
	LastEventAt      *time.Time `json:"last_event_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
	CompletedAt      *time.Time `json:"completed_at,omitempty"`
	FailedAt         *time.Time `json:"failed_at,omitempty"`
}

type OrderQueries interface {
	GetByID(ctx context.Context, id string) (*OrderView, error)
}

type orderQueriesImpl struct {
	orders shared.OrderRepository
}

func NewOrderQueries(uow shared.UnitOfWork) OrderQueries {
	return &orderQueriesImpl{orders: uow.Orders()}
}

func (q *orderQueriesImpl) GetByID(ctx context.Context, id string) (*OrderView, error) {
	o, err := q.orders.FindByID(ctx, id)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, errs.Mark(err, ErrOrderNotFound)
		}
		return nil, err
	}
	return toOrderView(o), nil
}

func toOrderView(o *order.Order) *OrderView {
	return &OrderView{
		ID:               o.ID,
		CustomerEmail:    o.CustomerEmail,
		ProductID:        o.ProductID,
		Amount:           o.Amount,
		PaymentMethod:    o.PaymentMethod,
		Status:           o.Status.String(),
		UnitID:           o.UnitID,
		FailureReason:    o.FailureReason,
		CustomerNotified: o.CustomerNotified,
		AdminNotified:    o.AdminNotified,
		LastEventAt:      o.LastEventAt,
		CreatedAt:        o.CreatedAt,
		UpdatedAt:        o.UpdatedAt,
		CompletedAt:      o.CompletedAt,
		FailedAt:         o.FailedAt,
	}
}
