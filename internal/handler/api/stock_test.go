//go:build unit

package api_test

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"keyshop/internal/handler/api"
	resdto "keyshop/internal/handler/dto/response"
	"keyshop/internal/usecase/commands"
	"keyshop/internal/usecase/shared"
	"keyshop/tests/common/httptest"
	commandsmock "keyshop/tests/mock/commands"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type StockHandlerTestSuite struct {
	suite.Suite
	router        *gin.Engine
	mockCtrl      *gomock.Controller
	mockStockSync *commandsmock.MockStockSync
}

func (s *StockHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.router = gin.New()

	s.mockCtrl = gomock.NewController(s.T())
	s.mockStockSync = commandsmock.NewMockStockSync(s.mockCtrl)
	handler := api.NewStockHandler(s.mockStockSync)

	s.router.POST("/admin/stock/reconcile", handler.Reconcile)
	s.router.GET("/admin/stock/report", handler.Report)
}

func (s *StockHandlerTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func TestStockHandlerSuite(t *testing.T) {
	suite.Run(t, new(StockHandlerTestSuite))
}

func (s *StockHandlerTestSuite) TestReconcile() {
	s.Run("success: returns the corrections", func() {
		s.mockStockSync.EXPECT().Reconcile(gomock.Any()).
			Return(&commands.ReconcileSummary{
				Checked: 2,
				Updated: 1,
				Corrections: []commands.StockCorrection{
					{ProductID: "prod-a", Before: 10, After: 3},
				},
			}, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/admin/stock/reconcile", nil, "")

		var response resdto.ReconcileResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &response)
		s.Equal(2, response.Checked)
		s.Equal(1, response.Updated)
		s.Require().Len(response.Corrections, 1)
		s.Equal("prod-a", response.Corrections[0].ProductID)
		s.Equal(int64(3), response.Corrections[0].After)
	})

	s.Run("error: 500 when reconciliation fails", func() {
		s.mockStockSync.EXPECT().Reconcile(gomock.Any()).
			Return(nil, errors.New("redis unreachable")).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/admin/stock/reconcile", nil, "")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusInternalServerError, "")
	})
}

func (s *StockHandlerTestSuite) TestReport() {
	s.Run("success: returns discrepancies and orphans", func() {
		unitID := uuid.New()
		orderID := "ord_failed"
		status := "failed"
		s.mockStockSync.EXPECT().Report(gomock.Any()).
			Return(&commands.StockReport{
				GeneratedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
				Products: []commands.ProductStock{
					{ProductID: "prod-a", CachedStock: 10, ActualStock: 3, NeedsUpdate: true},
				},
				Orphans: []shared.OrphanedUnit{
					{UnitID: unitID, ProductID: "prod-a", OrderID: &orderID, OrderStatus: &status},
				},
			}, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/admin/stock/report", nil, "")

		var response resdto.StockReportResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &response)
		s.Require().Len(response.Products, 1)
		s.True(response.Products[0].NeedsUpdate)
		s.Require().Len(response.Orphans, 1)
		s.Equal(unitID, response.Orphans[0].UnitID)
	})

	s.Run("error: 500 when the report fails", func() {
		s.mockStockSync.EXPECT().Report(gomock.Any()).
			Return(nil, errors.New("db down")).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/admin/stock/report", nil, "")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusInternalServerError, "")
	})
}
