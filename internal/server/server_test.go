package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	auditdomain "github.com/smallbiznis/courierfare/internal/audit/domain"
	auditrepo "github.com/smallbiznis/courierfare/internal/audit/repository"
	auditservice "github.com/smallbiznis/courierfare/internal/audit/service"
	catalogdomain "github.com/smallbiznis/courierfare/internal/catalog/domain"
	catalogrepo "github.com/smallbiznis/courierfare/internal/catalog/repository"
	"github.com/smallbiznis/courierfare/internal/clock"
	"github.com/smallbiznis/courierfare/internal/config"
	distancedomain "github.com/smallbiznis/courierfare/internal/distance/domain"
	"github.com/smallbiznis/courierfare/internal/distance/provider"
	distancerepo "github.com/smallbiznis/courierfare/internal/distance/repository"
	distanceservice "github.com/smallbiznis/courierfare/internal/distance/service"
	"github.com/smallbiznis/courierfare/internal/geo"
	ruledomain "github.com/smallbiznis/courierfare/internal/pricingrule/domain"
	rulerepo "github.com/smallbiznis/courierfare/internal/pricingrule/repository"
	ruleservice "github.com/smallbiznis/courierfare/internal/pricingrule/service"
	quoteservice "github.com/smallbiznis/courierfare/internal/quote/service"
)

type stubResolver struct {
	result distancedomain.ChainResult
	calls  int
}

func (s *stubResolver) Resolve(context.Context, geo.Location, geo.Location) (distancedomain.ChainResult, error) {
	s.calls++
	return s.result, nil
}

type testEnv struct {
	server   *Server
	db       *gorm.DB
	node     *snowflake.Node
	clock    *clock.FakeClock
	resolver *stubResolver
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	stub := &stubResolver{result: distancedomain.ChainResult{
		Result:   distancedomain.Result{DistanceMeters: 3200},
		Provider: "google_distance_matrix",
	}}
	env := newTestEnvWith(t, stub)
	env.resolver = stub
	return env
}

func newTestEnvWith(t *testing.T, resolver distancedomain.Resolver) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&ruledomain.Rule{},
		&distancedomain.CacheEntry{},
		&auditdomain.QuoteAuditRecord{},
		&catalogdomain.Product{},
	))

	node, err := snowflake.NewNode(4)
	require.NoError(t, err)

	fake := clock.NewFakeClock(time.Now().UTC().Add(-time.Minute))

	cfg := config.Config{HTTPAddr: ":0"}
	cfg.Delivery.DefaultBaseFee = 60
	cfg.Delivery.DefaultPerKmFee = 12
	cfg.Delivery.SoftTTLMinutes = 180
	cfg.Delivery.HardTTLMinutes = 1440
	cfg.Delivery.OriginLat = -1.28333
	cfg.Delivery.OriginLng = 36.81667

	ruleSvc := ruleservice.NewService(ruleservice.Params{
		Log:   zap.NewNop(),
		GenID: node,
		Clock: fake,
		Repo:  rulerepo.NewRepository(db),
	})
	cacheSvc := distanceservice.NewService(zap.NewNop(), cfg, fake, node, distancerepo.NewRepository(db), resolver, nil, nil)
	auditSvc := auditservice.NewService(zap.NewNop(), fake, node, auditrepo.NewRepository(db), cacheSvc)
	quoteSvc := quoteservice.NewService(zap.NewNop(), cfg, ruleSvc, cacheSvc, auditSvc, nil)

	srv := NewServer(ServerParams{
		Log:      zap.NewNop(),
		Gin:      gin.New(),
		Cfg:      cfg,
		Clock:    fake,
		RuleSvc:  ruleSvc,
		QuoteSvc: quoteSvc,
		CacheSvc: cacheSvc,
		AuditSvc: auditSvc,
		Catalog:  catalogrepo.NewRepository(db),
	})

	return &testEnv{server: srv, db: db, node: node, clock: fake}
}

func (e *testEnv) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.server.Engine().ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
	return payload
}

func TestUpsertAndListRules(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/admin/delivery-pricing/rules", gin.H{
		"name":            "City core",
		"priority":        1,
		"distance_min_km": 0,
		"distance_max_km": 5,
		"base_fee":        50,
		"per_km_fee":      15,
		"is_active":       true,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = env.do(t, http.MethodGet, "/api/admin/delivery-pricing/rules", nil)
	require.Equal(t, http.StatusOK, w.Code)
	payload := decode(t, w)
	assert.Len(t, payload["rules"], 1)
}

func TestUpsertOverlappingRuleRejected(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/admin/delivery-pricing/rules", gin.H{
		"name":            "City core",
		"distance_min_km": 0,
		"distance_max_km": 5,
		"base_fee":        50,
		"per_km_fee":      15,
		"is_active":       true,
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodPost, "/api/admin/delivery-pricing/rules", gin.H{
		"name":            "Inner ring",
		"distance_min_km": 3,
		"distance_max_km": 8,
		"base_fee":        60,
		"per_km_fee":      12,
		"is_active":       true,
	})
	require.Equal(t, http.StatusBadRequest, w.Code)

	payload := decode(t, w)
	assert.Equal(t, false, payload["success"])
	assert.Contains(t, payload["message"], "overlaps")
	assert.Contains(t, payload["message"], "City core")
}

func TestDeleteUnknownRule(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodDelete, "/api/admin/delivery-pricing/rules/123456789", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestQuoteOrderDelivery(t *testing.T) {
	env := newTestEnv(t)

	product := catalogdomain.Product{
		ID:      env.node.Generate(),
		Name:    "Margherita",
		Price:   12.50,
		TaxRate: 16,
		Active:  true,
	}
	require.NoError(t, env.db.Create(&product).Error)

	w := env.do(t, http.MethodPost, "/api/orders/quote", gin.H{
		"order_type":  "delivery",
		"delivery_latitude": -1.265, "delivery_longitude": 36.805,
		"items": []gin.H{
			{"product_id": product.ID.String(), "qty": 2},
		},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	payload := decode(t, w)
	totals := payload["totals"].(map[string]interface{})
	assert.Equal(t, 25.0, totals["subtotal"])
	assert.Equal(t, 4.0, totals["tax"])
	// 60 + 12*3.2 with no rules configured.
	assert.Equal(t, 98.40, totals["delivery_fee"])
	assert.Equal(t, 127.40, totals["total"])

	quote := payload["quote"].(map[string]interface{})
	assert.NotEmpty(t, quote["request_id"])
	assert.Equal(t, false, quote["cache_hit"])
}

func TestQuoteOrderPickup(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/orders/quote", gin.H{
		"order_type": "pickup",
	})
	require.Equal(t, http.StatusOK, w.Code)

	payload := decode(t, w)
	totals := payload["totals"].(map[string]interface{})
	assert.Equal(t, 0.0, totals["delivery_fee"])
	assert.Zero(t, env.resolver.calls)
}

func TestQuoteOrderUnknownProduct(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/orders/quote", gin.H{
		"order_type":  "delivery",
		"delivery_latitude": -1.265, "delivery_longitude": 36.805,
		"items": []gin.H{
			{"product_id": "999999999", "qty": 1},
		},
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestQuoteOrderClientPriceFallback(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/orders/quote", gin.H{
		"order_type":  "delivery",
		"delivery_latitude": -1.265, "delivery_longitude": 36.805,
		"items": []gin.H{
			{"product_id": "999999999", "qty": 3, "price": 8.0},
		},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	payload := decode(t, w)
	totals := payload["totals"].(map[string]interface{})
	assert.Equal(t, 24.0, totals["subtotal"])
	assert.Equal(t, 0.0, totals["tax"])
}

func TestQuoteOrderMissingCoordinatesDegraded(t *testing.T) {
	chain := provider.NewChain(zap.NewNop(), nil, provider.NewHaversine(1.5))
	env := newTestEnvWith(t, chain)

	// No delivery_latitude/delivery_longitude in the body: the destination
	// decodes to (0, 0) and must not be priced as a real address.
	w := env.do(t, http.MethodPost, "/api/orders/quote", gin.H{
		"order_type": "delivery",
		"items":      []gin.H{{"product_id": "812931", "qty": 1, "price": 10.0}},
	})
	require.Equal(t, http.StatusOK, w.Code)

	payload := decode(t, w)
	quote := payload["quote"].(map[string]interface{})
	assert.Equal(t, true, quote["degraded"])
	assert.Equal(t, 0.0, quote["distance_km"])

	totals := payload["totals"].(map[string]interface{})
	assert.Equal(t, 60.0, totals["delivery_fee"])

	var cached int64
	require.NoError(t, env.db.Model(&distancedomain.CacheEntry{}).Count(&cached).Error)
	assert.Zero(t, cached)
}

func TestQuoteOrderInvalidOrderType(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/orders/quote", gin.H{
		"order_type": "dine_in",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/orders/quote", gin.H{
		"order_type":  "delivery",
		"delivery_latitude": -1.265, "delivery_longitude": 36.805,
	})
	require.Equal(t, http.StatusOK, w.Code)

	env.clock.Advance(time.Minute)

	w = env.do(t, http.MethodGet, "/api/admin/delivery-pricing/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)

	payload := decode(t, w)
	metrics := payload["metrics"].(map[string]interface{})
	assert.Equal(t, 1.0, metrics["total_requests"])
	assert.Equal(t, 1.0, metrics["cache_entries"])

	w = env.do(t, http.MethodGet, "/api/admin/delivery-pricing/metrics?days=abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPurgeCacheEndpoint(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/orders/quote", gin.H{
		"order_type":  "delivery",
		"delivery_latitude": -1.265, "delivery_longitude": 36.805,
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodPost, "/api/admin/delivery-pricing/cache/purge", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var count int64
	require.NoError(t, env.db.Model(&distancedomain.CacheEntry{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestAttachOrderReference(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/orders/quote", gin.H{
		"order_type":  "delivery",
		"delivery_latitude": -1.265, "delivery_longitude": 36.805,
	})
	require.Equal(t, http.StatusOK, w.Code)
	payload := decode(t, w)
	requestID := payload["quote"].(map[string]interface{})["request_id"].(string)

	w = env.do(t, http.MethodPost, fmt.Sprintf("/api/orders/%d/pricing-reference", 4401), gin.H{
		"request_id": requestID,
	})
	require.Equal(t, http.StatusOK, w.Code)

	var record auditdomain.QuoteAuditRecord
	require.NoError(t, env.db.Where("request_id = ?", requestID).First(&record).Error)
	require.NotNil(t, record.OrderID)
	assert.Equal(t, int64(4401), *record.OrderID)

	w = env.do(t, http.MethodPost, "/api/orders/4402/pricing-reference", gin.H{
		"request_id": "missing",
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
}
