//go:build e2e

package fulfillment_test

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	resdto "keyshop/internal/handler/dto/response"
	"keyshop/internal/pkg/jwt"
	"keyshop/internal/usecase/queries"
	"keyshop/tests/common/builder"
	"keyshop/tests/common/dbtest"
	"keyshop/tests/common/httptest"
	"keyshop/tests/e2e"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

const (
	webhookURL   = "/api/webhooks/payment"
	orderURL     = "/api/admin/orders/"
	reconcileURL = "/api/admin/stock/reconcile"
	reportURL    = "/api/admin/stock/report"
)

type FulfillmentSuite struct {
	e2e.SharedSuite
}

func (s *FulfillmentSuite) SetupSubTest() {
	s.SharedSuite.SetupSubTest()
}

func TestFulfillmentSuite(t *testing.T) {
	t.Parallel()
	suite.Run(t, new(FulfillmentSuite))
}

func (s *FulfillmentSuite) adminToken() string {
	token, err := jwt.NewService(s.Config.Auth.Secret).
		GenerateToken("ops@example.com", jwt.RoleAdmin, time.Hour)
	require.NoError(s.T(), err)
	return token
}

func (s *FulfillmentSuite) postEvent(orderID string, amount int64, status string) *resdto.WebhookAckResponse {
	t := s.T()
	raw, err := json.Marshal(builder.NewEventBuilder().
		ForOrder(orderID, amount).
		WithStatus(status).
		BuildRequestDTO())
	require.NoError(t, err)

	w := httptest.PerformSignedRequest(t, s.Router, webhookURL, raw, s.Config.Webhook.Secret)
	require.Equal(t, http.StatusOK, w.Code, "unexpected webhook status: %s", w.Body.String())

	var ack resdto.WebhookAckResponse
	require.NoError(t, httptest.DecodeResponseBody(t, w.Body, &ack))
	return &ack
}

func (s *FulfillmentSuite) TestWebhookFulfillment() {
	s.Run("Normal case: completed event fulfills the order end to end", func() {
		t := s.T()
		dbtest.CreateTestOrder(t, s.DB, "ord_e2e_1", "prod-a", 2999)
		unitID := dbtest.CreateTestUnit(t, s.DB, "prod-a")

		ack := s.postEvent("ord_e2e_1", 2999, "completed")
		require.True(t, ack.Received)
		require.Equal(t, "processed", ack.Outcome)
		require.Equal(t, "completed", ack.Status)

		require.Equal(t, "completed", dbtest.FetchOrderStatus(t, s.DB, "ord_e2e_1"))
		require.Equal(t, int64(1), dbtest.CountSoldUnits(t, s.DB, "prod-a"))

		w := httptest.PerformRequest(t, s.Router, http.MethodGet, orderURL+"ord_e2e_1", nil, s.adminToken())
		require.Equal(t, http.StatusOK, w.Code)
		var view queries.OrderView
		require.NoError(t, httptest.DecodeResponseBody(t, w.Body, &view))
		require.NotNil(t, view.UnitID)
		require.Equal(t, unitID, *view.UnitID)
	})

	s.Run("Normal case: duplicate delivery is idempotent", func() {
		t := s.T()
		dbtest.CreateTestOrder(t, s.DB, "ord_e2e_2", "prod-a", 2999)
		dbtest.CreateTestUnit(t, s.DB, "prod-a")
		dbtest.CreateTestUnit(t, s.DB, "prod-a")

		first := s.postEvent("ord_e2e_2", 2999, "completed")
		require.Equal(t, "processed", first.Outcome)

		second := s.postEvent("ord_e2e_2", 2999, "completed")
		require.Equal(t, "already_processed", second.Outcome)

		require.Equal(t, int64(1), dbtest.CountSoldUnits(t, s.DB, "prod-a"))
	})

	s.Run("Normal case: stockout fails the order", func() {
		t := s.T()
		dbtest.CreateTestOrder(t, s.DB, "ord_e2e_3", "prod-empty", 999)

		ack := s.postEvent("ord_e2e_3", 999, "completed")
		require.Equal(t, "processed", ack.Outcome)
		require.Equal(t, "failed", ack.Status)
		require.Equal(t, "failed", dbtest.FetchOrderStatus(t, s.DB, "ord_e2e_3"))
	})

	s.Run("Error case: amount mismatch returns 422 and leaves the order pending", func() {
		t := s.T()
		dbtest.CreateTestOrder(t, s.DB, "ord_e2e_4", "prod-a", 2999)
		dbtest.CreateTestUnit(t, s.DB, "prod-a")

		raw, err := json.Marshal(builder.NewEventBuilder().ForOrder("ord_e2e_4", 100).BuildRequestDTO())
		require.NoError(t, err)
		w := httptest.PerformSignedRequest(t, s.Router, webhookURL, raw, s.Config.Webhook.Secret)
		require.Equal(t, http.StatusUnprocessableEntity, w.Code)

		require.Equal(t, "pending", dbtest.FetchOrderStatus(t, s.DB, "ord_e2e_4"))
		require.Equal(t, int64(0), dbtest.CountSoldUnits(t, s.DB, "prod-a"))
	})

	s.Run("Error case: bad signature is rejected", func() {
		t := s.T()
		raw, err := json.Marshal(builder.NewEventBuilder().BuildRequestDTO())
		require.NoError(t, err)

		w := httptest.PerformSignedRequest(t, s.Router, webhookURL, raw, "wrong-secret")
		require.Equal(t, http.StatusUnauthorized, w.Code)
	})

	s.Run("Normal case: unknown order is acknowledged with a warning", func() {
		ack := s.postEvent("ord_ghost", 500, "completed")
		require.True(s.T(), ack.Received)
		require.Equal(s.T(), "order_not_found", ack.Outcome)
	})
}

func (s *FulfillmentSuite) TestAdminOperations() {
	s.Run("Normal case: cancel wins against a late webhook", func() {
		t := s.T()
		dbtest.CreateTestOrder(t, s.DB, "ord_e2e_5", "prod-a", 2999)
		dbtest.CreateTestUnit(t, s.DB, "prod-a")

		w := httptest.PerformRequest(t, s.Router, http.MethodPost, orderURL+"ord_e2e_5/cancel",
			map[string]string{"reason": "customer request"}, s.adminToken())
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		ack := s.postEvent("ord_e2e_5", 2999, "completed")
		require.Equal(t, "already_processed", ack.Outcome)
		require.Equal(t, "cancelled", dbtest.FetchOrderStatus(t, s.DB, "ord_e2e_5"))
		require.Equal(t, int64(0), dbtest.CountSoldUnits(t, s.DB, "prod-a"))
	})

	s.Run("Normal case: manual completion binds the chosen unit", func() {
		t := s.T()
		dbtest.CreateTestOrder(t, s.DB, "ord_e2e_6", "prod-a", 2999)
		unitID := dbtest.CreateTestUnit(t, s.DB, "prod-a")

		w := httptest.PerformRequest(t, s.Router, http.MethodPost, orderURL+"ord_e2e_6/complete",
			map[string]uuid.UUID{"unit_id": unitID}, s.adminToken())
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var resp resdto.OrderResponse
		require.NoError(t, httptest.DecodeResponseBody(t, w.Body, &resp))
		require.Equal(t, "completed", resp.Status)
		require.NotNil(t, resp.UnitID)
		require.Equal(t, unitID, *resp.UnitID)
	})

	s.Run("Error case: admin surface requires a token", func() {
		t := s.T()
		w := httptest.PerformRequest(t, s.Router, http.MethodGet, orderURL+"ord_any", nil, "")
		require.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func (s *FulfillmentSuite) TestStockReconciliation() {
	s.Run("Normal case: reconcile corrects the cached stock after sales", func() {
		t := s.T()
		dbtest.CreateTestOrder(t, s.DB, "ord_e2e_7", "prod-b", 1500)
		dbtest.CreateTestUnit(t, s.DB, "prod-b")
		dbtest.CreateTestUnit(t, s.DB, "prod-b")

		ack := s.postEvent("ord_e2e_7", 1500, "completed")
		require.Equal(t, "processed", ack.Outcome)

		w := httptest.PerformRequest(t, s.Router, http.MethodPost, reconcileURL, nil, s.adminToken())
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var summary resdto.ReconcileResponse
		require.NoError(t, httptest.DecodeResponseBody(t, w.Body, &summary))
		require.GreaterOrEqual(t, summary.Updated, 1)

		// A second run finds nothing left to correct.
		w = httptest.PerformRequest(t, s.Router, http.MethodPost, reconcileURL, nil, s.adminToken())
		require.Equal(t, http.StatusOK, w.Code)
		require.NoError(t, httptest.DecodeResponseBody(t, w.Body, &summary))
		require.Zero(t, summary.Updated)

		w = httptest.PerformRequest(t, s.Router, http.MethodGet, reportURL, nil, s.adminToken())
		require.Equal(t, http.StatusOK, w.Code)
		var report resdto.StockReportResponse
		require.NoError(t, httptest.DecodeResponseBody(t, w.Body, &report))
		for _, p := range report.Products {
			require.False(t, p.NeedsUpdate, "product %s still out of sync", p.ProductID)
		}
	})
}
