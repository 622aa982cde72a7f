//go:build unit || e2e

package fake

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"keyshop/internal/domain/inventory"
	"keyshop/internal/domain/order"
	"keyshop/internal/infra"
	"keyshop/internal/infra/db"
	"keyshop/internal/usecase/shared"

	"github.com/google/uuid"
)

var errConnDown = errors.New("connection refused")

// Store is an in-memory shared.UnitOfWork. Within holds the store lock for
// the whole callback and restores a snapshot on error, which mirrors the
// serializable rollback behavior the command layer relies on.
type Store struct {
	mu     sync.Mutex
	orders map[string]*order.Order
	units  map[uuid.UUID]*inventory.Unit

	// hideOrder makes FindByID report NOT_FOUND for the first n calls per
	// order, emulating an order-creation write that is not yet visible.
	hideOrder map[string]int
	// failFinds makes the next n FindByID calls fail with DB_FAILURE.
	failFinds int
}

func NewStore() *Store {
	return &Store{
		orders:    make(map[string]*order.Order),
		units:     make(map[uuid.UUID]*inventory.Unit),
		hideOrder: make(map[string]int),
	}
}

func (s *Store) SeedOrder(o *order.Order) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders[o.ID] = cloneOrder(o)
}

func (s *Store) SeedUnit(u *inventory.Unit) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.units[u.ID] = cloneUnit(u)
}

// Order returns a snapshot of the stored order, or nil.
func (s *Store) Order(id string) *order.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	if o, ok := s.orders[id]; ok {
		return cloneOrder(o)
	}
	return nil
}

// Unit returns a snapshot of the stored unit, or nil.
func (s *Store) Unit(id uuid.UUID) *inventory.Unit {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.units[id]; ok {
		return cloneUnit(u)
	}
	return nil
}

func (s *Store) HideOrderFor(id string, calls int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hideOrder[id] = calls
}

func (s *Store) FailNextFinds(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failFinds = n
}

func (s *Store) Within(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ordersSnap := make(map[string]*order.Order, len(s.orders))
	for k, v := range s.orders {
		ordersSnap[k] = cloneOrder(v)
	}
	unitsSnap := make(map[uuid.UUID]*inventory.Unit, len(s.units))
	for k, v := range s.units {
		unitsSnap[k] = cloneUnit(v)
	}

	if err := fn(ctx, &fakeTx{store: s}); err != nil {
		s.orders = ordersSnap
		s.units = unitsSnap
		return err
	}
	return nil
}

func (s *Store) Orders() shared.OrderRepository {
	return &orderRepo{store: s, locking: true}
}

func (s *Store) Inventory() shared.InventoryRepository {
	return &inventoryRepo{store: s, locking: true}
}

type fakeTx struct {
	store *Store
}

func (t *fakeTx) Orders() shared.OrderRepository {
	return &orderRepo{store: t.store}
}

func (t *fakeTx) Inventory() shared.InventoryRepository {
	return &inventoryRepo{store: t.store}
}

func (t *fakeTx) DB() db.DBTX { return nil }

type orderRepo struct {
	store *Store
	// locking is set on pool-bound repos; tx-bound repos run under the lock
	// Within already holds.
	locking bool
}

func (r *orderRepo) lock() func() {
	if !r.locking {
		return func() {}
	}
	r.store.mu.Lock()
	return r.store.mu.Unlock
}

func (r *orderRepo) FindByID(_ context.Context, id string) (*order.Order, error) {
	defer r.lock()()

	if r.store.failFinds > 0 {
		r.store.failFinds--
		return nil, infra.WrapRepoErr("find order", errConnDown)
	}
	if n := r.store.hideOrder[id]; n > 0 {
		r.store.hideOrder[id] = n - 1
		return nil, infra.WrapRepoErr("order not found", nil, infra.KindNotFound)
	}
	o, ok := r.store.orders[id]
	if !ok {
		return nil, infra.WrapRepoErr("order not found", nil, infra.KindNotFound)
	}
	return cloneOrder(o), nil
}

func (r *orderRepo) Create(_ context.Context, o *order.Order) error {
	defer r.lock()()

	if _, exists := r.store.orders[o.ID]; exists {
		return infra.WrapRepoErr("order already exists", nil, infra.KindDuplicateKey)
	}
	r.store.orders[o.ID] = cloneOrder(o)
	return nil
}

func (r *orderRepo) Update(_ context.Context, id string, patch shared.OrderPatch) (*order.Order, error) {
	defer r.lock()()

	o, ok := r.store.orders[id]
	if !ok {
		return nil, infra.WrapRepoErr("order not found", nil, infra.KindNotFound)
	}
	applyPatch(o, patch)
	return cloneOrder(o), nil
}

func (r *orderRepo) TransitionIfStatus(_ context.Context, id string, expected, next order.Status, patch shared.OrderPatch) (*order.Order, error) {
	defer r.lock()()

	o, ok := r.store.orders[id]
	if !ok {
		return nil, infra.WrapRepoErr("order not found", nil, infra.KindNotFound)
	}
	if o.Status != expected {
		return nil, infra.WrapRepoErr("order status is \""+o.Status.String()+"\", expected \""+expected.String()+"\"", nil, infra.KindConflict)
	}
	o.Status = next
	applyPatch(o, patch)
	return cloneOrder(o), nil
}

func (r *orderRepo) ListExpiredPending(_ context.Context, before time.Time, limit int32) ([]string, error) {
	defer r.lock()()

	var ids []string
	for id, o := range r.store.orders {
		if o.Status == order.StatusPending && o.CreatedAt.Before(before) {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	if int32(len(ids)) > limit {
		ids = ids[:limit]
	}
	return ids, nil
}

type inventoryRepo struct {
	store   *Store
	locking bool
}

func (r *inventoryRepo) lock() func() {
	if !r.locking {
		return func() {}
	}
	r.store.mu.Lock()
	return r.store.mu.Unlock
}

func (r *inventoryRepo) FindByOrderID(_ context.Context, orderID string) (*inventory.Unit, error) {
	defer r.lock()()

	for _, u := range r.store.units {
		if u.OrderID != nil && *u.OrderID == orderID {
			return cloneUnit(u), nil
		}
	}
	return nil, infra.WrapRepoErr("no unit bound to order", nil, infra.KindNotFound)
}

func (r *inventoryRepo) ClaimAvailable(_ context.Context, productID, orderID, customerEmail string, now time.Time) (*inventory.Unit, error) {
	defer r.lock()()

	var candidates []*inventory.Unit
	for _, u := range r.store.units {
		if u.ProductID == productID && u.Status == inventory.UnitAvailable {
			candidates = append(candidates, u)
		}
	}
	if len(candidates) == 0 {
		return nil, infra.WrapRepoErr("no available unit", nil, infra.KindNotFound)
	}
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].ID.String() < candidates[j].ID.String()
	})
	return claim(candidates[0], orderID, customerEmail, now), nil
}

func (r *inventoryRepo) ClaimByID(_ context.Context, unitID uuid.UUID, orderID, customerEmail string, now time.Time) (*inventory.Unit, error) {
	defer r.lock()()

	u, ok := r.store.units[unitID]
	if !ok {
		return nil, infra.WrapRepoErr("unit not found", nil, infra.KindNotFound)
	}
	if u.Status == inventory.UnitAvailable {
		return claim(u, orderID, customerEmail, now), nil
	}
	if u.BoundTo(orderID) {
		return cloneUnit(u), nil
	}
	return nil, infra.WrapRepoErr("unit is already sold", nil, infra.KindConflict)
}

func (r *inventoryRepo) CountAvailable(_ context.Context, productID string) (int64, error) {
	defer r.lock()()

	var n int64
	for _, u := range r.store.units {
		if u.ProductID == productID && u.Status == inventory.UnitAvailable {
			n++
		}
	}
	return n, nil
}

func (r *inventoryRepo) AvailableByProduct(_ context.Context) (map[string]int64, error) {
	defer r.lock()()

	counts := make(map[string]int64)
	for _, u := range r.store.units {
		if u.Status == inventory.UnitAvailable {
			counts[u.ProductID]++
		}
	}
	return counts, nil
}

func (r *inventoryRepo) SoldOrphans(_ context.Context) ([]shared.OrphanedUnit, error) {
	defer r.lock()()

	var orphans []shared.OrphanedUnit
	for _, u := range r.store.units {
		if u.Status != inventory.UnitSold {
			continue
		}
		orphan := shared.OrphanedUnit{UnitID: u.ID, ProductID: u.ProductID, OrderID: u.OrderID}
		if u.OrderID == nil {
			orphans = append(orphans, orphan)
			continue
		}
		o, ok := r.store.orders[*u.OrderID]
		if !ok {
			orphans = append(orphans, orphan)
			continue
		}
		if o.Status != order.StatusCompleted {
			status := o.Status.String()
			orphan.OrderStatus = &status
			orphans = append(orphans, orphan)
		}
	}
	sort.Slice(orphans, func(i, j int) bool {
		return orphans[i].UnitID.String() < orphans[j].UnitID.String()
	})
	return orphans, nil
}

func claim(u *inventory.Unit, orderID, customerEmail string, now time.Time) *inventory.Unit {
	u.Status = inventory.UnitSold
	oid := orderID
	email := customerEmail
	claimedAt := now
	u.OrderID = &oid
	u.CustomerEmail = &email
	u.ClaimedAt = &claimedAt
	return cloneUnit(u)
}

func applyPatch(o *order.Order, patch shared.OrderPatch) {
	if patch.PaymentMethod != nil {
		o.PaymentMethod = *patch.PaymentMethod
	}
	if patch.UnitID != nil {
		id := *patch.UnitID
		o.UnitID = &id
	}
	if patch.FailureReason != nil {
		reason := *patch.FailureReason
		o.FailureReason = &reason
	}
	if patch.CustomerNotified != nil {
		o.CustomerNotified = *patch.CustomerNotified
	}
	if patch.AdminNotified != nil {
		o.AdminNotified = *patch.AdminNotified
	}
	if patch.LastEventAt != nil {
		t := *patch.LastEventAt
		o.LastEventAt = &t
	}
	if patch.CompletedAt != nil {
		t := *patch.CompletedAt
		o.CompletedAt = &t
	}
	if patch.FailedAt != nil {
		t := *patch.FailedAt
		o.FailedAt = &t
	}
	o.UpdatedAt = time.Now()
}

func cloneOrder(o *order.Order) *order.Order {
	c := *o
	if o.UnitID != nil {
		id := *o.UnitID
		c.UnitID = &id
	}
	if o.FailureReason != nil {
		r := *o.FailureReason
		c.FailureReason = &r
	}
	if o.LastEventAt != nil {
		t := *o.LastEventAt
		c.LastEventAt = &t
	}
	if o.CompletedAt != nil {
		t := *o.CompletedAt
		c.CompletedAt = &t
	}
	if o.FailedAt != nil {
		t := *o.FailedAt
		c.FailedAt = &t
	}
	return &c
}

func cloneUnit(u *inventory.Unit) *inventory.Unit {
	c := *u
	if u.OrderID != nil {
		id := *u.OrderID
		c.OrderID = &id
	}
	if u.CustomerEmail != nil {
		e := *u.CustomerEmail
		c.CustomerEmail = &e
	}
	if u.ClaimedAt != nil {
		t := *u.ClaimedAt
		c.ClaimedAt = &t
	}
	if len(u.Credentials) > 0 {
		c.Credentials = append([]byte(nil), u.Credentials...)
	}
	return &c
}
