package response

import (
	"time"

	"keyshop/internal/usecase/commands"
	"keyshop/internal/usecase/shared"

	"github.com/google/uuid"
)

type ProductStockResponse struct {
	ProductID    string `json:"product_id"`
	CachedStock  int64  `json:"cached_stock"`
	ActualStock  int64  `json:"actual_stock"`
	CacheMissing bool   `json:"cache_missing"`
	NeedsUpdate  bool   `json:"needs_update"`
}

type OrphanedUnitResponse struct {
	UnitID      uuid.UUID `json:"unit_id"`
	ProductID   string    `json:"product_id"`
	OrderID     *string   `json:"order_id,omitempty"`
	OrderStatus *string   `json:"order_status,omitempty"`
}

type StockReportResponse struct {
	GeneratedAt time.Time              `json:"generated_at"`
	Products    []ProductStockResponse `json:"products"`
	Orphans     []OrphanedUnitResponse `json:"orphans"`
}

type StockCorrectionResponse struct {
	ProductID string `json:"product_id"`
	Before    int64  `json:"before"`
	After     int64  `json:"after"`
}

type ReconcileResponse struct {
	Checked     int                       `json:"checked"`
	Updated     int                       `json:"updated"`
	Corrections []StockCorrectionResponse `json:"corrections"`
}

func FromStockReport(report *commands.StockReport) *StockReportResponse {
	resp := &StockReportResponse{
		GeneratedAt: report.GeneratedAt,
		Products:    make([]ProductStockResponse, len(report.Products)),
		Orphans:     make([]OrphanedUnitResponse, len(report.Orphans)),
	}
	for i, p := range report.Products {
		resp.Products[i] = ProductStockResponse{
			ProductID:    p.ProductID,
			CachedStock:  p.CachedStock,
			ActualStock:  p.ActualStock,
			CacheMissing: p.CacheMissing,
			NeedsUpdate:  p.NeedsUpdate,
		}
	}
	for i, o := range report.Orphans {
		resp.Orphans[i] = fromOrphan(o)
	}
	return resp
}

func FromReconcileSummary(summary *commands.ReconcileSummary) *ReconcileResponse {
	resp := &ReconcileResponse{
		Checked:     summary.Checked,
		Updated:     summary.Updated,
		Corrections: make([]StockCorrectionResponse, len(summary.Corrections)),
	}
	for i, c := range summary.Corrections {
		resp.Corrections[i] = StockCorrectionResponse{
			ProductID: c.ProductID,
			Before:    c.Before,
			After:     c.After,
		}
	}
	return resp
}

func fromOrphan(o shared.OrphanedUnit) OrphanedUnitResponse {
	return OrphanedUnitResponse{
		UnitID:      o.UnitID,
		ProductID:   o.ProductID,
		OrderID:     o.OrderID,
		OrderStatus: o.OrderStatus,
	}
}
