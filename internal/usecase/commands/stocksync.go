package commands

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"keyshop/internal/pkg/clock"
	"keyshop/internal/usecase/shared"
)

// ProductStock is one line of the cached-vs-actual comparison.
type ProductStock struct {
	ProductID    string
	CachedStock  int64
	ActualStock  int64
	CacheMissing bool
	NeedsUpdate  bool
}

type StockReport struct {
	GeneratedAt time.Time
	Products    []ProductStock
	// Orphans are sold units whose order is missing or not completed;
	// they need manual reconciliation.
	Orphans []shared.OrphanedUnit
}

type StockCorrection struct {
	ProductID string
	Before    int64
	After     int64
}

type ReconcileSummary struct {
	Checked     int
	Updated     int
	Corrections []StockCorrection
}

// StockSync repairs the catalog's cached stock numbers from the authoritative
// inventory counts. Strictly one-directional: it never touches orders or
// inventory units, and nothing else writes the cached stock.
type StockSync interface {
	Reconcile(ctx context.Context) (*ReconcileSummary, error)
	Report(ctx context.Context) (*StockReport, error)
}

type stockSyncImpl struct {
	inventory shared.InventoryRepository
	catalog   CatalogStore
	clock     clock.Clock
	logger    *slog.Logger
}

func NewStockSync(
	uow shared.UnitOfWork,
	catalog CatalogStore,
	clock clock.Clock,
	logger *slog.Logger,
) StockSync {
	return &stockSyncImpl{
		inventory: uow.Inventory(),
		catalog:   catalog,
		clock:     clock,
		logger:    logger,
	}
}

func (s *stockSyncImpl) Reconcile(ctx context.Context) (*ReconcileSummary, error) {
	products, err := s.compare(ctx)
	if err != nil {
		return nil, err
	}

	summary := &ReconcileSummary{Checked: len(products)}
	for _, p := range products {
		if !p.NeedsUpdate {
			continue
		}
		if err := s.catalog.SetStock(ctx, p.ProductID, p.ActualStock); err != nil {
			return nil, err
		}
		s.logger.Info("corrected cached stock",
			"product_id", p.ProductID,
			"before", p.CachedStock,
			"after", p.ActualStock,
			"cache_missing", p.CacheMissing,
		)
		summary.Updated++
		summary.Corrections = append(summary.Corrections, StockCorrection{
			ProductID: p.ProductID,
			Before:    p.CachedStock,
			After:     p.ActualStock,
		})
	}
	return summary, nil
}

func (s *stockSyncImpl) Report(ctx context.Context) (*StockReport, error) {
	products, err := s.compare(ctx)
	if err != nil {
		return nil, err
	}

	orphans, err := s.inventory.SoldOrphans(ctx)
	if err != nil {
		return nil, err
	}

	return &StockReport{
		GeneratedAt: s.clock.Now(),
		Products:    products,
		Orphans:     orphans,
	}, nil
}

// compare works over the union of products the inventory knows and products
// the catalog lists, so stale catalog entries for drained products are still
// corrected to zero.
func (s *stockSyncImpl) compare(ctx context.Context) ([]ProductStock, error) {
	actual, err := s.inventory.AvailableByProduct(ctx)
	if err != nil {
		return nil, err
	}

	listed, err := s.catalog.Products(ctx)
	if err != nil {
		return nil, err
	}

	ids := make(map[string]struct{}, len(actual)+len(listed))
	for id := range actual {
		ids[id] = struct{}{}
	}
	for _, id := range listed {
		ids[id] = struct{}{}
	}

	products := make([]ProductStock, 0, len(ids))
	for id := range ids {
		cached, ok, err := s.catalog.GetStock(ctx, id)
		if err != nil {
			return nil, err
		}
		p := ProductStock{
			ProductID:    id,
			CachedStock:  cached,
			ActualStock:  actual[id],
			CacheMissing: !ok,
		}
		p.NeedsUpdate = p.CacheMissing || p.CachedStock != p.ActualStock
		products = append(products, p)
	}
	sort.Slice(products, func(i, j int) bool { return products[i].ProductID < products[j].ProductID })
	return products, nil
}
