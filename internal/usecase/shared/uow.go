package shared

import (
	"context"
	"time"

	"keyshop/internal/domain/inventory"
	"keyshop/internal/domain/order"
	"keyshop/internal/infra/db"

	"github.com/google/uuid"
)

type UnitOfWork interface {
	// Within: full transaction for write operations with retry logic.
	// Allocation and the conditional order transition run inside one Within
	// call so a lost completion race rolls the claim back with it.
	Within(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	// Orders/Inventory: pool-bound repositories using implicit transactions.
	Orders() OrderRepository
	Inventory() InventoryRepository
}

type Tx interface {
	Orders() OrderRepository
	Inventory() InventoryRepository
	DB() db.DBTX
}

type OrderRepository interface {
	FindByID(ctx context.Context, id string) (*order.Order, error)
	Create(ctx context.Context, o *order.Order) error
	// Update is for non-concurrent fields only (notification flags, last
	// seen); status changes must go through TransitionIfStatus.
	Update(ctx context.Context, id string, patch OrderPatch) (*order.Order, error)
	// TransitionIfStatus applies the patch and the new status only when the
	// current status equals expected; a CONFLICT kind error reports the race.
	TransitionIfStatus(ctx context.Context, id string, expected, next order.Status, patch OrderPatch) (*order.Order, error)
	ListExpiredPending(ctx context.Context, before time.Time, limit int32) ([]string, error)
}

type InventoryRepository interface {
	FindByOrderID(ctx context.Context, orderID string) (*inventory.Unit, error)
	// ClaimAvailable atomically marks one available unit of the product sold
	// and binds it to the order. NOT_FOUND means the product is out of stock.
	ClaimAvailable(ctx context.Context, productID, orderID, customerEmail string, now time.Time) (*inventory.Unit, error)
	// ClaimByID claims one specific unit (manual completion path).
	ClaimByID(ctx context.Context, unitID uuid.UUID, orderID, customerEmail string, now time.Time) (*inventory.Unit, error)
	CountAvailable(ctx context.Context, productID string) (int64, error)
	AvailableByProduct(ctx context.Context) (map[string]int64, error)
	// SoldOrphans lists sold units whose order is missing or not completed.
	SoldOrphans(ctx context.Context) ([]OrphanedUnit, error)
}
